package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvielma/cultivar/internal/adapters/memory"
	"github.com/rvielma/cultivar/internal/index"
	"github.com/rvielma/cultivar/internal/resolver"
	"github.com/rvielma/cultivar/pkg/domain"
)

func newResolver(loader *memory.Loader) *resolver.Resolver {
	return resolver.New(index.New(loader))
}

func msg(id int, key string) domain.DialogueNode {
	return domain.DialogueNode{ID: id, Kind: domain.KindMessage, ContentKey: key}
}

func TestResolve_LinearChain(t *testing.T) {
	loader := memory.NewLoader()
	loader.AddSequence("intro", 1,
		msg(1, ""), msg(2, ""), msg(3, ""), msg(4, ""), msg(5, "bot.wrap.day"),
	)

	r := newResolver(loader)
	state := domain.NewStateSpec("intro")

	path, found, err := r.Resolve(state, domain.NodeAddress{Sequence: "intro", ID: 5})
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, path, 5)
	for i, n := range path {
		assert.Equal(t, i+1, n.ID)
		assert.Equal(t, "intro", n.Sequence)
	}
}

func TestResolve_ExplicitNextSkipsIDs(t *testing.T) {
	loader := memory.NewLoader()
	loader.AddSequence("intro", 1,
		domain.DialogueNode{ID: 1, Kind: domain.KindMessage, Next: 10},
		domain.DialogueNode{ID: 10, Kind: domain.KindMessage},
	)

	r := newResolver(loader)
	path, found, err := r.Resolve(domain.NewStateSpec("intro"), domain.NodeAddress{Sequence: "intro", ID: 10})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"intro:1", "intro:10"}, path.Addresses())
}

func TestResolve_ChoicePicksShortestBranch(t *testing.T) {
	loader := memory.NewLoader()
	loader.AddSequence("intro", 1,
		domain.DialogueNode{ID: 1, Kind: domain.KindChoice, Options: []domain.ChoiceOption{
			{Text: "long way", Next: 10},
			{Text: "short way", Next: 20, ContentKey: "user.pick.short"},
			{Text: "longer way", Next: 30},
		}},
		// Option 1: three hops to the goal.
		domain.DialogueNode{ID: 10, Kind: domain.KindMessage, Next: 11},
		domain.DialogueNode{ID: 11, Kind: domain.KindMessage, Next: 12},
		domain.DialogueNode{ID: 12, Kind: domain.KindMessage, Next: 99},
		// Option 2: direct.
		domain.DialogueNode{ID: 20, Kind: domain.KindMessage, Next: 99},
		// Option 3: four hops.
		domain.DialogueNode{ID: 30, Kind: domain.KindMessage, Next: 31},
		domain.DialogueNode{ID: 31, Kind: domain.KindMessage, Next: 32},
		domain.DialogueNode{ID: 32, Kind: domain.KindMessage, Next: 33},
		domain.DialogueNode{ID: 33, Kind: domain.KindMessage, Next: 99},
		domain.DialogueNode{ID: 99, Kind: domain.KindMessage, ContentKey: "bot.wrap.day"},
	)

	r := newResolver(loader)
	path, found, err := r.Resolve(domain.NewStateSpec("intro"), domain.NodeAddress{Sequence: "intro", ID: 99})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"intro:1", "intro:20", "intro:99"}, path.Addresses())

	// The winning step records which option was taken.
	require.NotNil(t, path[1].Via)
	assert.Equal(t, 1, path[1].Via.Index)
	assert.Equal(t, "user.pick.short", path[1].Via.ContentKey)
}

func TestResolve_ChoiceDirectives(t *testing.T) {
	build := func() *memory.Loader {
		loader := memory.NewLoader()
		loader.AddSequence("intro", 1,
			domain.DialogueNode{ID: 1, Kind: domain.KindChoice, Options: []domain.ChoiceOption{
				{Text: "a", Next: 2, ContentKey: "user.say.a"},
				{Text: "b", Next: 3, ContentKey: "user.say.b"},
			}},
			domain.DialogueNode{ID: 2, Kind: domain.KindMessage, Next: 4},
			domain.DialogueNode{ID: 3, Kind: domain.KindMessage, Next: 4},
			domain.DialogueNode{ID: 4, Kind: domain.KindMessage},
		)
		return loader
	}
	target := domain.NodeAddress{Sequence: "intro", ID: 4}
	at := domain.NodeAddress{Sequence: "intro", ID: 1}

	t.Run("By Index", func(t *testing.T) {
		state := domain.NewStateSpec("intro")
		state.Directives = []domain.ChoiceDirective{{At: at, Method: domain.SelectByIndex, Index: 1}}

		path, found, err := newResolver(build()).Resolve(state, target)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []string{"intro:1", "intro:3", "intro:4"}, path.Addresses())
	})

	t.Run("By Text", func(t *testing.T) {
		state := domain.NewStateSpec("intro")
		state.Directives = []domain.ChoiceDirective{{At: at, Method: domain.SelectByText, Value: "b"}}

		path, _, err := newResolver(build()).Resolve(state, target)
		require.NoError(t, err)
		assert.Equal(t, []string{"intro:1", "intro:3", "intro:4"}, path.Addresses())
	})

	t.Run("By Content Key", func(t *testing.T) {
		state := domain.NewStateSpec("intro")
		state.Directives = []domain.ChoiceDirective{{At: at, Method: domain.SelectByKey, Value: "user.say.b"}}

		path, _, err := newResolver(build()).Resolve(state, target)
		require.NoError(t, err)
		assert.Equal(t, []string{"intro:1", "intro:3", "intro:4"}, path.Addresses())
	})

	t.Run("Out Of Range Index Falls Back To Explore All", func(t *testing.T) {
		state := domain.NewStateSpec("intro")
		state.Directives = []domain.ChoiceDirective{{At: at, Method: domain.SelectByIndex, Index: 9}}

		path, found, err := newResolver(build()).Resolve(state, target)
		require.NoError(t, err)
		assert.True(t, found)
		require.Len(t, path, 3)
	})
}

func TestResolve_BranchModes(t *testing.T) {
	build := func() *memory.Loader {
		loader := memory.NewLoader()
		loader.AddSequence("intro", 1,
			domain.DialogueNode{ID: 1, Kind: domain.KindBranch, Routes: []domain.Route{
				{When: "mood == 'low'", Next: 2},
				{When: "streak.days >= 3", Next: 3},
				{Default: true, Next: 4},
			}},
			domain.DialogueNode{ID: 2, Kind: domain.KindMessage},
			domain.DialogueNode{ID: 3, Kind: domain.KindMessage},
			domain.DialogueNode{ID: 4, Kind: domain.KindMessage},
		)
		return loader
	}

	t.Run("Resolve Mode Takes First Match", func(t *testing.T) {
		state := domain.NewStateSpec("intro")
		state.Vars = map[string]any{"mood": "fine", "streak.days": 7}

		path, found, err := newResolver(build()).Resolve(state, domain.NodeAddress{Sequence: "intro", ID: 3})
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []string{"intro:1", "intro:3"}, path.Addresses())
	})

	t.Run("No Match Takes Default", func(t *testing.T) {
		state := domain.NewStateSpec("intro")

		path, found, err := newResolver(build()).Resolve(state, domain.NodeAddress{Sequence: "intro", ID: 4})
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []string{"intro:1", "intro:4"}, path.Addresses())
	})

	t.Run("Always Default Mode Skips Conditions", func(t *testing.T) {
		state := domain.NewStateSpec("intro")
		state.Mode = domain.BranchAlwaysDefault
		state.Vars = map[string]any{"mood": "low"}

		// Under resolve mode the walk would land on 2; always-default pins 4.
		path, found, err := newResolver(build()).Resolve(state, domain.NodeAddress{Sequence: "intro", ID: 4})
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []string{"intro:1", "intro:4"}, path.Addresses())
	})
}

func TestResolve_CrossSequenceJump(t *testing.T) {
	loader := memory.NewLoader()
	loader.AddSequence("intro", 1,
		domain.DialogueNode{ID: 1, Kind: domain.KindMessage},
		domain.DialogueNode{ID: 2, Kind: domain.KindJump, JumpTo: "evening"},
	)
	loader.AddSequence("evening", 7,
		domain.DialogueNode{ID: 7, Kind: domain.KindMessage},
		domain.DialogueNode{ID: 8, Kind: domain.KindMessage, ContentKey: "bot.wind.down"},
	)

	r := newResolver(loader)
	path, found, err := r.Resolve(domain.NewStateSpec("intro"), domain.NodeAddress{Sequence: "evening", ID: 8})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"intro:1", "intro:2", "evening:7", "evening:8"}, path.Addresses())
}

func TestResolve_UnreachableFallsBackToTargetOnly(t *testing.T) {
	loader := memory.NewLoader()
	loader.AddSequence("intro", 1,
		domain.DialogueNode{ID: 1, Kind: domain.KindMessage}, // dead ends at 1
		domain.DialogueNode{ID: 5, Kind: domain.KindMessage, ContentKey: "bot.orphan.line"},
	)

	r := newResolver(loader)
	path, found, err := r.Resolve(domain.NewStateSpec("intro"), domain.NodeAddress{Sequence: "intro", ID: 5})
	require.NoError(t, err)
	assert.False(t, found)
	require.Len(t, path, 1)
	assert.Equal(t, 5, path[0].ID)
}

func TestResolve_DepthLimit(t *testing.T) {
	loader := memory.NewLoader()
	nodes := make([]domain.DialogueNode, 0, 10)
	for i := 1; i <= 10; i++ {
		nodes = append(nodes, msg(i, ""))
	}
	loader.AddSequence("long", 1, nodes...)

	state := domain.NewStateSpec("long")
	state.MaxDepth = 3

	path, found, err := newResolver(loader).Resolve(state, domain.NodeAddress{Sequence: "long", ID: 10})
	require.NoError(t, err)
	assert.False(t, found)
	require.Len(t, path, 1)
	assert.Equal(t, 10, path[0].ID)
}

func TestResolve_CycleDoesNotLoopForever(t *testing.T) {
	loader := memory.NewLoader()
	loader.AddSequence("loop", 1,
		domain.DialogueNode{ID: 1, Kind: domain.KindMessage, Next: 2},
		domain.DialogueNode{ID: 2, Kind: domain.KindMessage, Next: 1},
		domain.DialogueNode{ID: 9, Kind: domain.KindMessage},
	)

	path, found, err := newResolver(loader).Resolve(domain.NewStateSpec("loop"), domain.NodeAddress{Sequence: "loop", ID: 9})
	require.NoError(t, err)
	assert.False(t, found)
	require.Len(t, path, 1)
}

func TestResolve_MissingTargetIsError(t *testing.T) {
	loader := memory.NewLoader()
	loader.AddSequence("intro", 1, msg(1, ""))

	_, _, err := newResolver(loader).Resolve(domain.NewStateSpec("intro"), domain.NodeAddress{Sequence: "intro", ID: 7})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestResolve_EntryNodeOverride(t *testing.T) {
	loader := memory.NewLoader()
	loader.AddSequence("intro", 1, msg(1, ""), msg(2, ""), msg(3, ""))

	state := domain.NewStateSpec("intro")
	state.EntryNode = 2

	path, found, err := newResolver(loader).Resolve(state, domain.NodeAddress{Sequence: "intro", ID: 3})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"intro:2", "intro:3"}, path.Addresses())
}
