// Package validate filters candidate phrasings before they reach the
// corpus: structural checks first, then a safety blocklist, then near
// duplicate rejection against everything already accepted.
package validate

import (
	"io"
	"log/slog"
	"strings"
)

const (
	// DefaultBubbleSeparator splits a candidate into chat bubbles.
	DefaultBubbleSeparator = "|"

	DefaultMaxBubbles     = 3
	DefaultMaxBubbleChars = 160

	// DefaultJaccardThreshold is the token-set similarity at which a
	// candidate counts as a duplicate.
	DefaultJaccardThreshold = 0.85
)

// Validator applies the acceptance rules to generated candidates.
type Validator struct {
	separator      string
	maxBubbles     int
	maxBubbleChars int
	threshold      float64
	blocklist      []string
	logger         *slog.Logger
}

// Option configures the validator.
type Option func(*Validator)

// WithBubbleLimits overrides the per-candidate bubble count and length caps.
func WithBubbleLimits(maxBubbles, maxChars int) Option {
	return func(v *Validator) {
		if maxBubbles > 0 {
			v.maxBubbles = maxBubbles
		}
		if maxChars > 0 {
			v.maxBubbleChars = maxChars
		}
	}
}

// WithSeparator overrides the bubble separator.
func WithSeparator(sep string) Option {
	return func(v *Validator) {
		if sep != "" {
			v.separator = sep
		}
	}
}

// WithThreshold overrides the duplicate similarity threshold.
func WithThreshold(threshold float64) Option {
	return func(v *Validator) {
		if threshold > 0 {
			v.threshold = threshold
		}
	}
}

// WithBlocklist sets the substrings that disqualify a candidate outright.
// Matching is case-insensitive.
func WithBlocklist(words []string) Option {
	return func(v *Validator) {
		v.blocklist = make([]string, 0, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				v.blocklist = append(v.blocklist, w)
			}
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// New creates a validator with the given rules.
func New(opts ...Option) *Validator {
	v := &Validator{
		separator:      DefaultBubbleSeparator,
		maxBubbles:     DefaultMaxBubbles,
		maxBubbleChars: DefaultMaxBubbleChars,
		threshold:      DefaultJaccardThreshold,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Filter returns the candidates that pass every rule, in their original
// order. Duplicate checks run against the existing corpus lines and
// against candidates accepted earlier in the same call.
func (v *Validator) Filter(candidates, existing []string) []string {
	priorSets := make([]map[string]struct{}, 0, len(existing))
	for _, line := range existing {
		priorSets = append(priorSets, tokenSet(line))
	}

	accepted := make([]string, 0, len(candidates))
	for _, raw := range candidates {
		line := normalize(raw)
		if reason := v.reject(line); reason != "" {
			v.logger.Debug("candidate rejected", "reason", reason, "candidate", line)
			continue
		}

		set := tokenSet(line)
		dup := false
		for _, prior := range priorSets {
			if jaccard(set, prior) >= v.threshold {
				dup = true
				break
			}
		}
		if dup {
			v.logger.Debug("candidate rejected", "reason", "near-duplicate", "candidate", line)
			continue
		}

		accepted = append(accepted, line)
		priorSets = append(priorSets, set)
	}
	return accepted
}

// reject applies the structural and blocklist rules, returning the reason
// for the first failure or "" when the line is clean.
func (v *Validator) reject(line string) string {
	if line == "" {
		return "empty"
	}
	if !bracesBalanced(line) {
		return "unbalanced placeholder braces"
	}

	bubbles := strings.Split(line, v.separator)
	if len(bubbles) > v.maxBubbles {
		return "too many bubbles"
	}
	for _, b := range bubbles {
		if len(strings.TrimSpace(b)) > v.maxBubbleChars {
			return "bubble too long"
		}
	}

	lower := strings.ToLower(line)
	for _, word := range v.blocklist {
		if strings.Contains(lower, word) {
			return "blocklisted term"
		}
	}
	return ""
}

func normalize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\t", " "))
}

// bracesBalanced checks curly nesting so a truncated {placeholder} can
// never reach the corpus.
func bracesBalanced(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// tokenSet lowercases, strips everything outside [a-z0-9|], and splits on
// whitespace.
func tokenSet(s string) map[string]struct{} {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '|':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n':
			b.WriteRune(' ')
		}
	}
	set := map[string]struct{}{}
	for _, tok := range strings.Fields(b.String()) {
		set[tok] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
