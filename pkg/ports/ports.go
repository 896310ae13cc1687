// Package ports defines the interfaces between the pipeline core and its
// collaborators: sequence documents, the phrasing corpus, the generation
// backend, the variant cache and the archive. Adapters implement these so
// the core stays decoupled from storage and transport.
package ports

import (
	"context"

	"github.com/rvielma/cultivar/pkg/domain"
)

// SequenceLoader retrieves sequence documents. Implementations return the
// document's nodes in declared order; the sequence index caches the result.
type SequenceLoader interface {
	// GetSequence returns all nodes of a sequence plus its entry node id.
	// Returns domain.ErrSequenceNotFound when the document does not exist.
	GetSequence(id string) ([]domain.DialogueNode, int, error)

	// ListSequences returns the ids of every known sequence document, for
	// graph validation and introspection.
	ListSequences() ([]string, error)
}

// CorpusStore reads and appends phrasing corpora addressed by content key.
type CorpusStore interface {
	// Lines returns the existing phrasings for a key, blank lines dropped.
	// A missing corpus is an empty slice, not an error.
	Lines(key string) ([]string, error)

	// Siblings returns existing phrasings from every corpus sharing the
	// key's sibling directory, capped at max lines, for style grounding.
	Siblings(key string, max int) ([]string, error)

	// Append adds accepted phrasings to the key's corpus, one per line.
	Append(key string, lines []string) error
}

// Generator produces candidate phrasings for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt *domain.GenerationPrompt) (*domain.GenerationResult, error)
}

// VariantCache stores generation results keyed by prompt fingerprint so
// repeated dev runs skip the backend. Get returns domain.ErrCacheMiss when
// no entry exists.
type VariantCache interface {
	Get(ctx context.Context, fingerprint string) (*domain.GenerationResult, error)
	Put(ctx context.Context, fingerprint string, result *domain.GenerationResult) error
}

// ArchiveStore persists audit records.
type ArchiveStore interface {
	// Write stores the record and returns the address it was written to.
	Write(record *domain.ArchiveRecord) (string, error)
}
