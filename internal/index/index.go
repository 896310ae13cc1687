// Package index is the arena-style cache over sequence documents: each
// sequence is loaded once, turned into an id -> node table plus its entry
// node, and reused for every lookup afterwards. Cross-sequence jumps address
// nodes by (sequence-id, message-id) through the index instead of holding
// pointers across documents.
package index

import (
	"fmt"
	"io"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rvielma/cultivar/pkg/domain"
	"github.com/rvielma/cultivar/pkg/ports"
)

const defaultCacheSize = 256

type table struct {
	nodes map[int]*domain.DialogueNode
	entry int
}

// Index lazily loads and caches per-sequence node tables.
type Index struct {
	loader ports.SequenceLoader
	cache  *lru.Cache[string, *table]
	logger *slog.Logger
}

// Option configures the index.
type Option func(*Index)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Index) {
		ix.logger = logger
	}
}

// New creates an index over the given loader.
func New(loader ports.SequenceLoader, opts ...Option) *Index {
	cache, _ := lru.New[string, *table](defaultCacheSize)
	ix := &Index{
		loader: loader,
		cache:  cache,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Node returns the node with the given message-id in a sequence.
func (ix *Index) Node(sequence string, id int) (*domain.DialogueNode, error) {
	t, err := ix.load(sequence)
	if err != nil {
		return nil, err
	}
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("sequence %s node %d: %w", sequence, id, domain.ErrNodeNotFound)
	}
	return n, nil
}

// Entry returns the sequence's entry node.
func (ix *Index) Entry(sequence string) (*domain.DialogueNode, error) {
	t, err := ix.load(sequence)
	if err != nil {
		return nil, err
	}
	return ix.Node(sequence, t.entry)
}

// Has reports whether a message-id exists in the sequence without treating
// absence as an error. Load failures also report false.
func (ix *Index) Has(sequence string, id int) bool {
	t, err := ix.load(sequence)
	if err != nil {
		return false
	}
	_, ok := t.nodes[id]
	return ok
}

func (ix *Index) load(sequence string) (*table, error) {
	if t, ok := ix.cache.Get(sequence); ok {
		return t, nil
	}

	nodes, entry, err := ix.loader.GetSequence(sequence)
	if err != nil {
		return nil, fmt.Errorf("load sequence %s: %w", sequence, err)
	}

	t := &table{nodes: make(map[int]*domain.DialogueNode, len(nodes)), entry: entry}
	for i := range nodes {
		n := nodes[i]
		n.Sequence = sequence
		if _, dup := t.nodes[n.ID]; dup {
			return nil, fmt.Errorf("sequence %s: duplicate node id %d", sequence, n.ID)
		}
		t.nodes[n.ID] = &n
	}
	if _, ok := t.nodes[entry]; !ok {
		return nil, fmt.Errorf("sequence %s: entry node %d missing", sequence, entry)
	}

	ix.cache.Add(sequence, t)
	ix.logger.Debug("sequence indexed", "sequence", sequence, "nodes", len(nodes), "entry", entry)
	return t, nil
}
