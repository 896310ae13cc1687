package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvielma/cultivar/internal/adapters/memory"
	"github.com/rvielma/cultivar/internal/validator"
	"github.com/rvielma/cultivar/pkg/domain"
)

func TestValidateAll_CleanGraph(t *testing.T) {
	loader := memory.NewLoader()
	loader.AddSequence("intro", 1,
		domain.DialogueNode{ID: 1, Kind: domain.KindMessage, ContentKey: "bot.greet.morning"},
		domain.DialogueNode{ID: 2, Kind: domain.KindChoice, Options: []domain.ChoiceOption{
			{Text: "Sure", Next: 3},
			{Text: "Later", Next: 4},
		}},
		domain.DialogueNode{ID: 3, Kind: domain.KindJump, JumpTo: "evening"},
		domain.DialogueNode{ID: 4, Kind: domain.KindMessage},
	)
	loader.AddSequence("evening", 1, domain.DialogueNode{ID: 1, Kind: domain.KindMessage})

	issues, err := validator.ValidateAll(loader)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestValidateSequence_Findings(t *testing.T) {
	loader := memory.NewLoader()
	loader.AddSequence("intro", 1,
		domain.DialogueNode{ID: 1, Kind: domain.KindMessage, ContentKey: "bot.greet", Next: 99},
		domain.DialogueNode{ID: 2, Kind: domain.KindChoice, Options: []domain.ChoiceOption{
			{Text: "Nowhere"},
		}},
		domain.DialogueNode{ID: 3, Kind: domain.KindBranch, Routes: []domain.Route{
			{When: "mood == 'low'", Next: 2},
		}},
		domain.DialogueNode{ID: 4, Kind: domain.KindJump, JumpTo: "ghost"},
	)

	issues, err := validator.ValidateSequence(loader, "intro")
	require.NoError(t, err)

	msgs := make([]string, 0, len(issues))
	for _, issue := range issues {
		msgs = append(msgs, issue.String())
	}

	assert.Contains(t, msgs, `intro:1: malformed content key "bot.greet"`)
	assert.Contains(t, msgs, "intro:1: next points at missing node 99")
	assert.Contains(t, msgs, "intro:2: option 1 has no destination")
	assert.Contains(t, msgs, "intro:3: branch node has no default route")
	assert.Contains(t, msgs, `intro:4: jump to unknown sequence "ghost"`)
	// Node 1's next dangles, so everything after it is unreachable.
	assert.Contains(t, msgs, "intro:2: unreachable from entry node 1")
}

func TestValidateAll_UnreachableNode(t *testing.T) {
	loader := memory.NewLoader()
	loader.AddSequence("intro", 1,
		domain.DialogueNode{ID: 1, Kind: domain.KindMessage, Next: 3},
		domain.DialogueNode{ID: 2, Kind: domain.KindMessage},
		domain.DialogueNode{ID: 3, Kind: domain.KindMessage},
	)

	issues, err := validator.ValidateAll(loader)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 2, issues[0].Node)
	assert.Contains(t, issues[0].Msg, "unreachable")
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "all sequences valid", validator.Summary(nil))
	out := validator.Summary([]validator.Issue{{Sequence: "intro", Node: 3, Msg: "boom"}})
	assert.Contains(t, out, "found 1 issues")
	assert.Contains(t, out, "intro:3: boom")
}
