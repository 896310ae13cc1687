package generate

import (
	"fmt"
	"strings"

	"github.com/rvielma/cultivar/pkg/domain"
)

// RenderUser serializes a prompt into the user-facing message sent to the
// backend: conversation so far, style exemplars, then the ask.
func RenderUser(p *domain.GenerationPrompt) string {
	var b strings.Builder

	if len(p.Context) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, turn := range p.Context {
			fmt.Fprintf(&b, "%s: %s\n", turn.Sender, turnText(turn))
		}
		b.WriteString("\n")
	}

	if len(p.Exemplars) > 0 {
		fmt.Fprintf(&b, "Existing phrasings for %s (match this voice):\n", p.TargetKey)
		for _, line := range p.Exemplars {
			fmt.Fprintf(&b, "- %s\n", line)
		}
		b.WriteString("\n")
	}

	if p.Instructions != "" {
		b.WriteString(p.Instructions)
		b.WriteString("\n\n")
	}

	n := p.Variants
	if n <= 0 {
		n = 1
	}
	fmt.Fprintf(&b, "Write %d new variants of the next line (%s)", n, p.TargetKey)
	if p.TargetText != "" {
		fmt.Fprintf(&b, ", currently phrased as: %q", p.TargetText)
	}
	b.WriteString(".\nRespond with JSON: {\"variants\": [\"...\"]}")
	return b.String()
}

func turnText(turn domain.ContextTurn) string {
	if turn.IsKey && len(turn.Examples) > 0 {
		return turn.Examples[0]
	}
	return turn.Reference
}
