package graph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rvielma/cultivar/internal/presentation/graph"
	"github.com/rvielma/cultivar/pkg/domain"
)

func TestMermaid_Shapes(t *testing.T) {
	nodes := []domain.DialogueNode{
		{ID: 1, Kind: domain.KindMessage, ContentKey: "bot.greet.morning"},
		{ID: 2, Kind: domain.KindChoice, Options: []domain.ChoiceOption{
			{Text: "Sure", Next: 3},
			{Text: "Later", Next: 4},
		}},
		{ID: 3, Kind: domain.KindBranch, Routes: []domain.Route{
			{When: "streak.days >= 3", Next: 4},
			{Default: true, Next: 5},
		}},
		{ID: 4, Kind: domain.KindJump, JumpTo: "evening"},
		{ID: 5, Kind: domain.KindMessage, Text: "See you."},
	}

	out := graph.Mermaid("intro", nodes, nil)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, `intro_1["1: bot.greet.morning"]`)
	assert.Contains(t, out, `intro_2[/"2: choice"/]`)
	assert.Contains(t, out, `intro_3{"3: branch"}`)
	assert.Contains(t, out, `intro_4[["4: jump"]]`)
	assert.Contains(t, out, `intro_2 -- "Sure" --> intro_3`)
	assert.Contains(t, out, `intro_3 -- "streak.days >= 3" --> intro_4`)
	assert.Contains(t, out, `intro_3 -- "default" --> intro_5`)
	assert.Contains(t, out, "intro_4 -.-> evening")
	// Implicit successor: node 1 flows to node 2.
	assert.Contains(t, out, "intro_1 --> intro_2")
}

func TestMermaid_DeclarationsIgnoreNodeStamping(t *testing.T) {
	plain := []domain.DialogueNode{
		{ID: 1, Kind: domain.KindMessage, Text: "Hi"},
		{ID: 2, Kind: domain.KindMessage, Text: "Bye"},
	}
	stamped := make([]domain.DialogueNode, len(plain))
	copy(stamped, plain)
	for i := range stamped {
		stamped[i].Sequence = "intro"
	}

	// Loaders that don't stamp node sequences produce the same diagram.
	assert.Equal(t, graph.Mermaid("intro", stamped, nil), graph.Mermaid("intro", plain, nil))
	assert.Contains(t, graph.Mermaid("intro", plain, nil), "intro_1 --> intro_2")
}

func TestMermaid_Overlay(t *testing.T) {
	nodes := []domain.DialogueNode{
		{ID: 1, Kind: domain.KindMessage},
		{ID: 2, Kind: domain.KindMessage, ContentKey: "bot.greet.morning"},
	}
	overlay := &graph.Overlay{
		PathNodes: []domain.NodeAddress{{Sequence: "intro", ID: 1}, {Sequence: "intro", ID: 2}},
		Target:    domain.NodeAddress{Sequence: "intro", ID: 2},
	}

	out := graph.Mermaid("intro", nodes, overlay)
	assert.Contains(t, out, "class intro_1 onpath;")
	assert.Contains(t, out, "class intro_2 target;")
	assert.Contains(t, out, "classDef onpath")
}
