package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/rvielma/cultivar/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
// It uses a dark theme by default, but could be configurable.
func NewRenderer() func(string) (string, error) {
	// Initialize renderer with standard dark style
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// PreviewMarkdown formats a resolved path plus its context window as
// markdown for the preview command.
func PreviewMarkdown(target string, found bool, path domain.ResolvedPath, turns []domain.ContextTurn) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Preview %s\n\n", target)
	if !found {
		sb.WriteString("> Target is unreachable from the entry point; showing target-only context.\n\n")
	}

	sb.WriteString("## Path\n\n")
	for _, node := range path {
		marker := ""
		if node.Via != nil {
			marker = fmt.Sprintf(" *(chose option %d)*", node.Via.Index+1)
		}
		fmt.Fprintf(&sb, "- `%s` %s%s\n", node.Address(), node.Kind, marker)
	}

	sb.WriteString("\n## Context Window\n\n")
	if len(turns) == 0 {
		sb.WriteString("*(empty)*\n")
		return sb.String()
	}
	for _, turn := range turns {
		ref := turn.Reference
		if turn.IsKey && len(turn.Examples) > 0 {
			ref = fmt.Sprintf("%s (e.g. %q)", turn.Reference, turn.Examples[0])
		}
		fmt.Fprintf(&sb, "- **%s**: %s\n", turn.Sender, ref)
	}
	return sb.String()
}
