// Package generate drives the remote generation backend. A Client speaks
// one of a few recognized provider shapes over HTTP; Mock produces
// deterministic variants for dry runs and tests.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rvielma/cultivar/pkg/domain"
)

// Provider profiles understood by the client.
const (
	// ProviderOpenAI posts a chat-completions body and expects each
	// choice's message content to itself be JSON carrying a variants
	// list.
	ProviderOpenAI = "openai"
	// ProviderDirect posts to the base URL and expects a top-level
	// variants list back.
	ProviderDirect = "direct"
	// ProviderCompletion posts a completions body and takes each
	// choice's text as one variant.
	ProviderCompletion = "completion"
)

// APIKeyEnv is the environment variable holding the bearer credential.
const APIKeyEnv = "CULTIVAR_API_KEY"

const (
	defaultTimeout = 60 * time.Second
	defaultRetries = 3
	defaultBackoff = 2 * time.Second
)

// samplingParams are the request fields a backend may reject as
// unsupported; rejection of one triggers a single strip-and-retry.
var samplingParams = []string{"temperature", "top_p", "max_tokens", "frequency_penalty", "presence_penalty"}

// Config carries the provider settings section of the pipeline config.
type Config struct {
	Provider    string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxRetries  int
	Backoff     time.Duration
	Temperature *float64
	TopP        *float64
	MaxTokens   int
}

// Client is the live HTTP generator.
type Client struct {
	cfg    Config
	http   *http.Client
	apiKey string
	logger *slog.Logger
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithAPIKey overrides the credential read from the environment.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a generator for the given provider config. The bearer
// credential comes from the process environment unless WithAPIKey is given.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultRetries
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultBackoff
	}
	c := &Client{
		cfg:    cfg,
		apiKey: os.Getenv(APIKeyEnv),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: cfg.Timeout}
	}
	return c
}

// Generate sends the prompt to the backend and extracts variants from the
// response. Transient failures are retried with fixed backoff; a rejection
// naming an unsupported sampling parameter strips it and retries once.
func (c *Client) Generate(ctx context.Context, prompt *domain.GenerationPrompt) (*domain.GenerationResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("generation credential missing: set %s", APIKeyEnv)
	}

	body := c.requestBody(prompt)
	stripped := false
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying generation", "attempt", attempt, "err", lastErr)
			time.Sleep(c.cfg.Backoff)
		}

		sent, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}

		raw, status, err := c.post(ctx, sent)
		if err != nil {
			lastErr = err
			continue
		}

		if status == http.StatusOK {
			variants, err := c.extractVariants(raw)
			if err != nil {
				return nil, err
			}
			return &domain.GenerationResult{
				Variants: variants,
				Raw:      raw,
				Request:  sent,
				Provider: c.cfg.Provider,
				Model:    c.cfg.Model,
			}, nil
		}

		// A 4xx naming a sampling parameter gets one adapted retry
		// without that parameter; it does not consume the budget.
		if !stripped && status >= 400 && status < 500 {
			if param := rejectedParam(raw); param != "" {
				c.logger.Warn("backend rejected sampling parameter, retrying without it", "param", param)
				delete(body, param)
				stripped = true
				attempt--
				continue
			}
		}

		lastErr = fmt.Errorf("backend returned status %d: %s", status, truncate(string(raw), 300))
		if status >= 400 && status < 500 && status != http.StatusTooManyRequests {
			return nil, lastErr
		}
	}
	return nil, fmt.Errorf("generation failed after %d attempts: %w", c.cfg.MaxRetries+1, lastErr)
}

func (c *Client) post(ctx context.Context, body []byte) (json.RawMessage, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return raw, resp.StatusCode, nil
}

func (c *Client) endpoint() string {
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	switch c.cfg.Provider {
	case ProviderOpenAI:
		return base + "/chat/completions"
	case ProviderCompletion:
		return base + "/completions"
	default:
		return base
	}
}

// requestBody builds the provider-specific payload as a loose map so a
// rejected sampling parameter can be removed by name.
func (c *Client) requestBody(prompt *domain.GenerationPrompt) map[string]any {
	body := map[string]any{"model": c.cfg.Model}
	if c.cfg.Temperature != nil {
		body["temperature"] = *c.cfg.Temperature
	}
	if c.cfg.TopP != nil {
		body["top_p"] = *c.cfg.TopP
	}
	if c.cfg.MaxTokens > 0 {
		body["max_tokens"] = c.cfg.MaxTokens
	}

	switch c.cfg.Provider {
	case ProviderOpenAI:
		body["messages"] = []map[string]string{
			{"role": "system", "content": prompt.System},
			{"role": "user", "content": RenderUser(prompt)},
		}
	case ProviderCompletion:
		body["prompt"] = prompt.System + "\n\n" + RenderUser(prompt)
		body["n"] = prompt.Variants
	default:
		body["system"] = prompt.System
		body["prompt"] = RenderUser(prompt)
		body["variants"] = prompt.Variants
	}
	return body
}

type chatResponse struct {
	Variants []string `json:"variants"`
	Choices  []struct {
		Text    string `json:"text"`
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// extractVariants recognizes the three response shapes in order: a direct
// variants list, chat choices whose content is JSON with variants, then
// plain completion text per choice.
func (c *Client) extractVariants(raw json.RawMessage) ([]string, error) {
	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("backend error: %s", resp.Error.Message)
	}
	if len(resp.Variants) > 0 {
		return resp.Variants, nil
	}

	var out []string
	for _, choice := range resp.Choices {
		if content := strings.TrimSpace(choice.Message.Content); content != "" {
			var inner struct {
				Variants []string `json:"variants"`
			}
			if err := json.Unmarshal([]byte(content), &inner); err == nil && len(inner.Variants) > 0 {
				out = append(out, inner.Variants...)
				continue
			}
			out = append(out, content)
			continue
		}
		if text := strings.TrimSpace(choice.Text); text != "" {
			out = append(out, text)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no variants in response: %s", truncate(string(raw), 300))
	}
	return out, nil
}

// rejectedParam scans an error body for the name of a sampling parameter
// the backend refused.
func rejectedParam(raw []byte) string {
	body := strings.ToLower(string(raw))
	for _, p := range samplingParams {
		if strings.Contains(body, p) {
			return p
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
