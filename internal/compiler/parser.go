// Package compiler parses the pipeline's indentation-based configuration
// subset into a conf.Value tree. The format is a deliberately constrained
// cousin of YAML: nested maps and lists by indentation, dash-prefixed list
// items, flow-style inline lists, quoted or bare scalars, and full-line
// comments. Anything outside the subset is a structural error, not a
// best-effort guess.
package compiler

import (
	"fmt"
	"strings"

	"github.com/rvielma/cultivar/pkg/conf"
)

// ParseError is a structural error with the source line that caused it.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Parser converts configuration text into a value tree.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

type srcLine struct {
	no     int
	indent int
	text   string
}

type frame struct {
	indent int
	val    *conf.Value
}

// Parse reads the full text and returns the root value. The root container
// kind follows the first significant line: a dash item makes it a list,
// anything else a map.
func (p *Parser) Parse(text string) (*conf.Value, error) {
	sig, err := scan(text)
	if err != nil {
		return nil, err
	}
	if len(sig) == 0 {
		return conf.NewMap(), nil
	}

	var root *conf.Value
	if isListItem(sig[0].text) {
		root = conf.NewList()
	} else {
		root = conf.NewMap()
	}
	stack := []*frame{{indent: sig[0].indent, val: root}}

	for idx := 0; idx < len(sig); idx++ {
		ln := sig[idx]

		// Unwind closed blocks.
		for len(stack) > 1 && ln.indent < stack[len(stack)-1].indent {
			stack = stack[:len(stack)-1]
		}
		top := stack[len(stack)-1]
		if ln.indent != top.indent {
			return nil, &ParseError{ln.no, fmt.Sprintf("indentation %d does not match any open block", ln.indent)}
		}

		if isListItem(ln.text) {
			if top.val.Kind != conf.List {
				return nil, &ParseError{ln.no, "list item inside a mapping block"}
			}
			rest := strings.TrimSpace(strings.TrimPrefix(ln.text, "-"))
			switch {
			case rest == "":
				// Dash-only line: the item is a nested container built from
				// the deeper lines that follow.
				child, pushed := containerFromLookahead(sig, idx, ln.indent)
				top.val.Append(child)
				if pushed != nil {
					stack = append(stack, pushed)
				}
			case hasKey(rest):
				// Inline "- key: value" starts a map item; further entries
				// align two columns past the dash.
				item := conf.NewMap()
				top.val.Append(item)
				itemFrame := &frame{indent: ln.indent + 2, val: item}
				stack = append(stack, itemFrame)
				var perr *ParseError
				stack, perr = p.mapEntry(stack, itemFrame, sig, idx, srcLine{ln.no, ln.indent + 2, rest})
				if perr != nil {
					return nil, perr
				}
			default:
				top.val.Append(scalarOrFlow(rest))
			}
			continue
		}

		if top.val.Kind != conf.Map {
			return nil, &ParseError{ln.no, "mapping entry inside a list block"}
		}
		var perr *ParseError
		stack, perr = p.mapEntry(stack, top, sig, idx, ln)
		if perr != nil {
			return nil, perr
		}
	}

	return root, nil
}

// mapEntry handles one "key: value" line inside the map frame, possibly
// opening a nested block. Returns the (possibly grown) stack.
func (p *Parser) mapEntry(stack []*frame, top *frame, sig []srcLine, idx int, ln srcLine) ([]*frame, *ParseError) {
	key, rest, ok := splitKey(ln.text)
	if !ok {
		return nil, &ParseError{ln.no, fmt.Sprintf("expected 'key:' entry, got %q", ln.text)}
	}
	if rest != "" {
		top.val.Set(key, scalarOrFlow(rest))
		return stack, nil
	}

	// Empty value: a single lookahead decides whether the nested block is a
	// list, a map, or simply absent (null).
	child, pushed := containerFromLookahead(sig, idx, ln.indent)
	top.val.Set(key, child)
	if pushed != nil {
		stack = append(stack, pushed)
	}
	return stack, nil
}

// containerFromLookahead inspects the next significant line. A deeper line
// opens a container (list when it starts with a dash); otherwise the value
// is null and no frame is pushed.
func containerFromLookahead(sig []srcLine, idx, indent int) (*conf.Value, *frame) {
	if idx+1 >= len(sig) || sig[idx+1].indent <= indent {
		return &conf.Value{Kind: conf.Null}, nil
	}
	next := sig[idx+1]
	var child *conf.Value
	if isListItem(next.text) {
		child = conf.NewList()
	} else {
		child = conf.NewMap()
	}
	return child, &frame{indent: next.indent, val: child}
}

// scan splits text into significant lines, dropping blanks and comments.
func scan(text string) ([]srcLine, error) {
	var out []srcLine
	for i, raw := range strings.Split(text, "\n") {
		raw = strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.HasPrefix(raw, "\t") {
			return nil, &ParseError{i + 1, "tab indentation is not supported"}
		}
		indent := len(raw) - len(strings.TrimLeft(raw, " "))
		out = append(out, srcLine{no: i + 1, indent: indent, text: strings.TrimSpace(raw)})
	}
	return out, nil
}

func isListItem(text string) bool {
	return text == "-" || strings.HasPrefix(text, "- ")
}

func hasKey(text string) bool {
	_, _, ok := splitKey(text)
	return ok
}

// splitKey locates the first colon outside quotes and splits the line into
// key and remainder.
func splitKey(text string) (key, rest string, ok bool) {
	inSingle, inDouble := false, false
	for i, r := range text {
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case r == ':' && !inSingle && !inDouble:
			key = strings.TrimSpace(text[:i])
			rest = strings.TrimSpace(text[i+1:])
			if key == "" {
				return "", "", false
			}
			key = unquote(key)
			return key, rest, true
		}
	}
	return "", "", false
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// scalarOrFlow coerces a value token, handling flow-style lists like
// "[a, b, c]" with per-element coercion.
func scalarOrFlow(token string) *conf.Value {
	token = strings.TrimSpace(token)
	if strings.HasPrefix(token, "[") && strings.HasSuffix(token, "]") {
		list := conf.NewList()
		inner := strings.TrimSpace(token[1 : len(token)-1])
		if inner == "" {
			return list
		}
		for _, elem := range splitFlow(inner) {
			list.Append(conf.Coerce(elem))
		}
		return list
	}
	return conf.Coerce(token)
}

// splitFlow splits flow list elements on commas outside quotes.
func splitFlow(inner string) []string {
	var parts []string
	start := 0
	inSingle, inDouble := false, false
	for i, r := range inner {
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case r == ',' && !inSingle && !inDouble:
			parts = append(parts, inner[start:i])
			start = i + 1
		}
	}
	parts = append(parts, inner[start:])
	return parts
}
