// Package memory provides in-memory implementations of the loader and
// corpus ports, used by tests and by embedders that build graphs
// programmatically.
package memory

import (
	"sort"
	"sync"

	"github.com/rvielma/cultivar/pkg/contentkey"
	"github.com/rvielma/cultivar/pkg/domain"
)

type sequenceDoc struct {
	nodes []domain.DialogueNode
	entry int
}

// Loader keeps sequence documents in a map. It counts loads so tests can
// assert the index caches.
type Loader struct {
	mu        sync.Mutex
	sequences map[string]sequenceDoc
	loads     map[string]int
}

// NewLoader creates an empty loader.
func NewLoader() *Loader {
	return &Loader{
		sequences: map[string]sequenceDoc{},
		loads:     map[string]int{},
	}
}

// AddSequence registers a document with its entry node id.
func (l *Loader) AddSequence(id string, entry int, nodes ...domain.DialogueNode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sequences[id] = sequenceDoc{nodes: nodes, entry: entry}
}

// GetSequence implements ports.SequenceLoader.
func (l *Loader) GetSequence(id string) ([]domain.DialogueNode, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	doc, ok := l.sequences[id]
	if !ok {
		return nil, 0, domain.ErrSequenceNotFound
	}
	l.loads[id]++
	out := make([]domain.DialogueNode, len(doc.nodes))
	copy(out, doc.nodes)
	return out, doc.entry, nil
}

// ListSequences implements ports.SequenceLoader.
func (l *Loader) ListSequences() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make([]string, 0, len(l.sequences))
	for id := range l.sequences {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Loads returns how many times a sequence was fetched.
func (l *Loader) Loads(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads[id]
}

// Corpus keeps phrasing corpora in a map keyed by content key.
type Corpus struct {
	mu    sync.Mutex
	lines map[string][]string
}

// NewCorpus creates an empty corpus store.
func NewCorpus() *Corpus {
	return &Corpus{lines: map[string][]string{}}
}

// SetLines replaces the corpus for a key.
func (c *Corpus) SetLines(key string, lines ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines[key] = append([]string(nil), lines...)
}

// Lines implements ports.CorpusStore.
func (c *Corpus) Lines(key string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines[key]...), nil
}

// Siblings implements ports.CorpusStore: every corpus whose key shares the
// actor.action prefix, capped at max lines total.
func (c *Corpus) Siblings(key string, max int) ([]string, error) {
	k, err := contentkey.Decode(key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.lines))
	for other := range c.lines {
		ok, derr := contentkey.Decode(other)
		if derr != nil {
			continue
		}
		if ok.Actor == k.Actor && ok.Action == k.Action {
			keys = append(keys, other)
		}
	}
	sort.Strings(keys)

	var out []string
	for _, other := range keys {
		for _, line := range c.lines[other] {
			if max > 0 && len(out) >= max {
				return out, nil
			}
			out = append(out, line)
		}
	}
	return out, nil
}

// Append implements ports.CorpusStore.
func (c *Corpus) Append(key string, lines []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines[key] = append(c.lines[key], lines...)
	return nil
}
