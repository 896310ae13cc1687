package window_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvielma/cultivar/internal/adapters/memory"
	"github.com/rvielma/cultivar/internal/index"
	"github.com/rvielma/cultivar/internal/window"
	"github.com/rvielma/cultivar/pkg/domain"
)

func pathNode(id int, kind string, via *domain.Selection) domain.ResolvedPathNode {
	return domain.ResolvedPathNode{Sequence: "intro", ID: id, Kind: kind, Via: via}
}

func TestBuild_ExcludesTargetAndRoutingNodes(t *testing.T) {
	loader := memory.NewLoader()
	loader.AddSequence("intro", 1,
		domain.DialogueNode{ID: 1, Kind: domain.KindMessage, ContentKey: "bot.greet.morning"},
		domain.DialogueNode{ID: 2, Kind: domain.KindBranch},
		domain.DialogueNode{ID: 3, Kind: domain.KindMessage, Text: "Logged it."},
		domain.DialogueNode{ID: 4, Kind: domain.KindMessage, ContentKey: "bot.ask.mood"},
	)
	b := window.New(index.New(loader))

	path := domain.ResolvedPath{
		pathNode(1, domain.KindMessage, nil),
		pathNode(2, domain.KindBranch, nil),
		pathNode(3, domain.KindMessage, nil),
		pathNode(4, domain.KindMessage, nil),
	}
	turns := b.Build(path, 6)

	require.Len(t, turns, 2)
	assert.Equal(t, domain.SenderBot, turns[0].Sender)
	assert.Equal(t, "bot.greet.morning", turns[0].Reference)
	assert.True(t, turns[0].IsKey)
	assert.Equal(t, "Logged it.", turns[1].Reference)
	assert.False(t, turns[1].IsKey)
}

func TestBuild_ChoiceBecomesUserTurn(t *testing.T) {
	loader := memory.NewLoader()
	loader.AddSequence("intro", 1,
		domain.DialogueNode{ID: 1, Kind: domain.KindChoice},
		domain.DialogueNode{ID: 2, Kind: domain.KindMessage},
	)
	b := window.New(index.New(loader))

	t.Run("Key Wins Over Text", func(t *testing.T) {
		path := domain.ResolvedPath{
			pathNode(1, domain.KindChoice, nil),
			pathNode(2, domain.KindMessage, &domain.Selection{Index: 0, Text: "Sure", ContentKey: "user.agree.plan"}),
		}
		turns := b.Build(path, 6)
		require.Len(t, turns, 1)
		assert.Equal(t, domain.SenderUser, turns[0].Sender)
		assert.Equal(t, "user.agree.plan", turns[0].Reference)
		assert.True(t, turns[0].IsKey)
	})

	t.Run("Text When No Key", func(t *testing.T) {
		path := domain.ResolvedPath{
			pathNode(1, domain.KindChoice, nil),
			pathNode(2, domain.KindMessage, &domain.Selection{Index: 1, Text: "Maybe later"}),
		}
		turns := b.Build(path, 6)
		require.Len(t, turns, 1)
		assert.Equal(t, "Maybe later", turns[0].Reference)
		assert.False(t, turns[0].IsKey)
	})

	t.Run("Placeholder When Nothing Recorded", func(t *testing.T) {
		path := domain.ResolvedPath{
			pathNode(1, domain.KindChoice, nil),
			pathNode(2, domain.KindMessage, nil),
		}
		turns := b.Build(path, 6)
		require.Len(t, turns, 1)
		assert.NotEmpty(t, turns[0].Reference)
		assert.False(t, turns[0].IsKey)
	})
}

func TestBuild_KeepsMostRecentTurns(t *testing.T) {
	loader := memory.NewLoader()
	nodes := make([]domain.DialogueNode, 0, 6)
	for i := 1; i <= 6; i++ {
		nodes = append(nodes, domain.DialogueNode{ID: i, Kind: domain.KindMessage, Text: string(rune('a' + i - 1))})
	}
	loader.AddSequence("intro", 1, nodes...)
	b := window.New(index.New(loader))

	path := make(domain.ResolvedPath, 0, 6)
	for i := 1; i <= 6; i++ {
		path = append(path, pathNode(i, domain.KindMessage, nil))
	}

	turns := b.Build(path, 2)
	require.Len(t, turns, 2)
	assert.Equal(t, "d", turns[0].Reference)
	assert.Equal(t, "e", turns[1].Reference)
}

func TestBuild_CorpusExamplesAttached(t *testing.T) {
	loader := memory.NewLoader()
	loader.AddSequence("intro", 1,
		domain.DialogueNode{ID: 1, Kind: domain.KindMessage, ContentKey: "bot.greet.morning"},
		domain.DialogueNode{ID: 2, Kind: domain.KindMessage},
	)
	corpus := memory.NewCorpus()
	corpus.SetLines("bot.greet.morning", "Morning!", "Hey, good morning.", "Rise and shine.", "A fourth one.")

	b := window.New(index.New(loader), window.WithCorpus(corpus))
	turns := b.Build(domain.ResolvedPath{
		pathNode(1, domain.KindMessage, nil),
		pathNode(2, domain.KindMessage, nil),
	}, 6)

	require.Len(t, turns, 1)
	assert.Len(t, turns[0].Examples, 3)
	assert.Equal(t, "Morning!", turns[0].Examples[0])
}

func TestBuild_SingleNodePathIsEmpty(t *testing.T) {
	b := window.New(index.New(memory.NewLoader()))
	assert.Empty(t, b.Build(domain.ResolvedPath{pathNode(9, domain.KindMessage, nil)}, 6))
}
