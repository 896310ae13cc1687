// Package config loads the pipeline configuration and run inputs: the
// config document, the optional state specification, and target lists.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/rvielma/cultivar/internal/compiler"
)

// Config is the typed pipeline configuration.
type Config struct {
	Provider   ProviderConfig   `mapstructure:"provider"`
	Generation GenerationConfig `mapstructure:"generation"`
	Context    ContextConfig    `mapstructure:"context"`
	Style      StyleConfig      `mapstructure:"style"`
	IO         IOConfig         `mapstructure:"io"`
	Retry      RetryConfig      `mapstructure:"retry"`
	Safety     SafetyConfig     `mapstructure:"safety"`
	Cache      CacheConfig      `mapstructure:"cache"`
}

// ProviderConfig is the generation backend section.
type ProviderConfig struct {
	Name        string   `mapstructure:"name"`
	BaseURL     string   `mapstructure:"base_url"`
	Model       string   `mapstructure:"model"`
	TimeoutSecs int      `mapstructure:"timeout_seconds"`
	Temperature *float64 `mapstructure:"temperature"`
	TopP        *float64 `mapstructure:"top_p"`
	MaxTokens   int      `mapstructure:"max_tokens"`
}

// Timeout returns the transport timeout as a duration.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSecs) * time.Second
}

// GenerationConfig controls what is asked of the backend per target.
type GenerationConfig struct {
	Variants     int    `mapstructure:"variants"`
	System       string `mapstructure:"system"`
	Instructions string `mapstructure:"instructions"`
}

// ContextConfig sizes the conversation window.
type ContextConfig struct {
	Window    int `mapstructure:"window"`
	Exemplars int `mapstructure:"exemplars"`
	Siblings  int `mapstructure:"siblings"`
}

// StyleConfig carries the bubble rules candidates must satisfy.
type StyleConfig struct {
	BubbleSeparator string `mapstructure:"bubble_separator"`
	MaxBubbles      int    `mapstructure:"max_bubbles"`
	MaxBubbleChars  int    `mapstructure:"max_bubble_chars"`
}

// IOConfig is the I/O behavior section.
type IOConfig struct {
	SequencesDir string `mapstructure:"sequences_dir"`
	ContentDir   string `mapstructure:"content_dir"`
	ArchiveDir   string `mapstructure:"archive_dir"`
	DryRun       bool   `mapstructure:"dry_run"`
	Verbose      bool   `mapstructure:"verbose"`
	FailFast     bool   `mapstructure:"fail_fast"`
}

// RetryConfig is the transient-failure policy.
type RetryConfig struct {
	MaxRetries  int `mapstructure:"max_retries"`
	BackoffSecs int `mapstructure:"backoff_seconds"`
}

// Backoff returns the fixed delay between attempts.
func (r RetryConfig) Backoff() time.Duration {
	return time.Duration(r.BackoffSecs) * time.Second
}

// SafetyConfig holds the blocklist and dedup threshold.
type SafetyConfig struct {
	Blocklist      []string `mapstructure:"blocklist"`
	DedupThreshold float64  `mapstructure:"dedup_threshold"`
}

// CacheConfig is the optional variant cache section.
type CacheConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTLMins  int    `mapstructure:"ttl_minutes"`
}

// TTL returns the cache expiry as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMins) * time.Minute
}

// Default returns the configuration used when a section is absent.
func Default() Config {
	return Config{
		Provider: ProviderConfig{
			Name:        "openai",
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			TimeoutSecs: 60,
		},
		Generation: GenerationConfig{
			Variants: 5,
			System:   "You write short, warm, colloquial chat lines for a habit coach.",
		},
		Context: ContextConfig{Window: 6, Exemplars: 8, Siblings: 6},
		Style:   StyleConfig{BubbleSeparator: "|", MaxBubbles: 3, MaxBubbleChars: 160},
		IO: IOConfig{
			SequencesDir: "sequences",
			ContentDir:   ".",
			ArchiveDir:   "archive",
		},
		Retry:  RetryConfig{MaxRetries: 3, BackoffSecs: 2},
		Safety: SafetyConfig{DedupThreshold: 0.85},
		Cache:  CacheConfig{Address: "localhost:6379", TTLMins: 24 * 60},
	}
}

// Load reads and decodes a config document. Absent fields keep their
// defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(string(data))
}

// Parse decodes config text into a Config over the defaults.
func Parse(text string) (Config, error) {
	cfg := Default()
	if text == "" {
		return cfg, nil
	}

	tree, err := compiler.NewParser().Parse(text)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	in := tree.Interface()
	if in == nil {
		return cfg, nil
	}
	if err := decode(in, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func decode(in any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
