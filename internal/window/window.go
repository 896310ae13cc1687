// Package window turns a resolved path into the short conversational
// context handed to the generation backend: the last few displayable turns
// leading up to the target, with corpus phrasings attached where a turn is
// addressed by content key.
package window

import (
	"io"
	"log/slog"

	"github.com/rvielma/cultivar/internal/index"
	"github.com/rvielma/cultivar/pkg/domain"
	"github.com/rvielma/cultivar/pkg/ports"
)

const (
	// DefaultSize is the turn budget when the config leaves it unset.
	DefaultSize = 6

	maxExamples = 3

	// placeholder stands in for a selection that carried neither a key
	// nor display text.
	placeholder = "(user selects an option)"
)

// Builder assembles context windows from resolved paths.
type Builder struct {
	index  *index.Index
	corpus ports.CorpusStore
	logger *slog.Logger
}

// Option configures the builder.
type Option func(*Builder)

// WithCorpus attaches a phrasing corpus so key-addressed turns carry
// example lines.
func WithCorpus(corpus ports.CorpusStore) Option {
	return func(b *Builder) {
		b.corpus = corpus
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// New creates a builder over the given sequence index.
func New(ix *index.Index, opts ...Option) *Builder {
	b := &Builder{
		index:  ix,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns at most size turns ending just before the path's final
// node. The target itself never appears in its own context. Routing and
// action nodes contribute nothing; choice nodes become a user turn built
// from the selection the resolver recorded on the step that followed them.
func (b *Builder) Build(path domain.ResolvedPath, size int) []domain.ContextTurn {
	if size <= 0 {
		size = DefaultSize
	}
	if len(path) < 2 {
		return nil
	}

	turns := make([]domain.ContextTurn, 0, len(path)-1)
	for i, pn := range path[:len(path)-1] {
		switch pn.Kind {
		case domain.KindMessage:
			node, err := b.index.Node(pn.Sequence, pn.ID)
			if err != nil {
				b.logger.Debug("context node unavailable", "node", pn.Address(), "err", err)
				continue
			}
			turns = append(turns, b.botTurn(node))
		case domain.KindChoice:
			turns = append(turns, b.userTurn(selectionAfter(path, i)))
		}
	}

	if len(turns) > size {
		turns = turns[len(turns)-size:]
	}
	return turns
}

func (b *Builder) botTurn(node *domain.DialogueNode) domain.ContextTurn {
	turn := domain.ContextTurn{Sender: domain.SenderBot, Kind: node.Kind}
	switch {
	case node.ContentKey != "":
		turn.Reference = node.ContentKey
		turn.IsKey = true
		turn.Examples = b.examples(node.ContentKey)
	case node.Text != "":
		turn.Reference = node.Text
	default:
		turn.Reference = placeholder
	}
	return turn
}

func (b *Builder) userTurn(via *domain.Selection) domain.ContextTurn {
	turn := domain.ContextTurn{Sender: domain.SenderUser, Kind: domain.KindChoice}
	switch {
	case via != nil && via.ContentKey != "":
		turn.Reference = via.ContentKey
		turn.IsKey = true
		turn.Examples = b.examples(via.ContentKey)
	case via != nil && via.Text != "":
		turn.Reference = via.Text
	default:
		turn.Reference = placeholder
	}
	return turn
}

// selectionAfter finds the selection metadata for the choice at path[i],
// which the resolver records on the step taken out of the choice.
func selectionAfter(path domain.ResolvedPath, i int) *domain.Selection {
	if i+1 < len(path) {
		return path[i+1].Via
	}
	return nil
}

func (b *Builder) examples(key string) []string {
	if b.corpus == nil {
		return nil
	}
	lines, err := b.corpus.Lines(key)
	if err != nil {
		b.logger.Debug("no corpus lines for key", "key", key, "err", err)
		return nil
	}
	if len(lines) > maxExamples {
		lines = lines[:maxExamples]
	}
	return lines
}
