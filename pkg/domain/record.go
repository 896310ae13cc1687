package domain

import (
	"encoding/json"
	"time"
)

// GenerationPrompt is the structured request handed to the generator client.
// It is assembled once per target and serialized verbatim into the archive.
type GenerationPrompt struct {
	System       string `json:"system"`
	Instructions string `json:"instructions"`

	TargetKey  string `json:"target_key"`
	TargetText string `json:"target_text,omitempty"`

	Context   []ContextTurn `json:"context,omitempty"`
	Exemplars []string      `json:"exemplars,omitempty"`

	Variants int `json:"variants"`
}

// GenerationResult is the backend's answer plus the exact request that
// produced it, kept for reproducibility.
type GenerationResult struct {
	Variants []string        `json:"variants"`
	Raw      json.RawMessage `json:"raw,omitempty"`
	Request  json.RawMessage `json:"request,omitempty"`

	// Provider and Model echo what actually served the request.
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	// Cached is set when the result came from the variant cache.
	Cached bool `json:"cached,omitempty"`
}

// ArchiveRecord is the full audit trail of one generation attempt. Records
// are written for every attempt, including dry runs and failures.
type ArchiveRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Target     NodeAddress `json:"target"`
	ContentKey string      `json:"content_key"`

	Config json.RawMessage `json:"config,omitempty"`
	State  StateSpec       `json:"state"`

	Path         ResolvedPath `json:"path"`
	PathFallback bool         `json:"path_fallback,omitempty"`

	Prompt   GenerationPrompt  `json:"prompt"`
	Result   *GenerationResult `json:"result,omitempty"`
	Accepted []string          `json:"accepted"`

	DryRun bool   `json:"dry_run,omitempty"`
	Error  string `json:"error,omitempty"`
}

// TargetFailure names one target that could not be processed.
type TargetFailure struct {
	Target NodeAddress `json:"target"`
	Reason string      `json:"reason"`
}

// BatchReport aggregates a whole run over one or more targets.
type BatchReport struct {
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Accepted  int             `json:"accepted"`
	Failures  []TargetFailure `json:"failures,omitempty"`
}

// Ok reports whether every target completed.
func (r BatchReport) Ok() bool {
	return r.Failed == 0
}
