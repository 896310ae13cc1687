// Package graph renders sequence documents as Mermaid flowcharts for
// authoring and review.
package graph

import (
	"fmt"
	"strings"

	"github.com/rvielma/cultivar/pkg/domain"
)

// Overlay contains a resolved path to highlight on the graph.
type Overlay struct {
	PathNodes []domain.NodeAddress
	Target    domain.NodeAddress
}

// Mermaid produces a flowchart for one sequence. Node shapes follow kind:
// messages are rectangles, choices parallelograms, branches diamonds and
// jumps subroutines. Cross-sequence edges are dotted.
func Mermaid(sequence string, nodes []domain.DialogueNode, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	present := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID] = true
	}

	for i, n := range nodes {
		// Declared ids key off the sequence argument, not the node's own
		// Sequence field, so unstamped nodes still join their edges.
		id := mermaidID(domain.NodeAddress{Sequence: sequence, ID: n.ID})

		opener, closer := "[", "]"
		switch n.Kind {
		case domain.KindChoice:
			opener, closer = "[/", "/]"
		case domain.KindBranch:
			opener, closer = "{", "}"
		case domain.KindJump, domain.KindAction:
			opener, closer = "[[", "]]"
		}

		label := n.ContentKey
		if label == "" {
			label = escapeLabel(n.Text)
		}
		if label == "" {
			label = n.Kind
		}
		fmt.Fprintf(&sb, "    %s%s\"%d: %s\"%s\n", id, opener, n.ID, label, closer)

		switch n.Kind {
		case domain.KindJump:
			fmt.Fprintf(&sb, "    %s -.-> %s\n", id, mermaidID(domain.NodeAddress{Sequence: n.JumpTo}))
		case domain.KindChoice:
			for _, opt := range n.Options {
				arrow := fmt.Sprintf("-- \"%s\" -->", escapeLabel(opt.Text))
				fmt.Fprintf(&sb, "    %s %s %s\n", id, arrow, edgeTarget(sequence, opt.Next, opt.Sequence))
			}
		case domain.KindBranch:
			for _, route := range n.Routes {
				cond := escapeLabel(route.When)
				if route.Default {
					cond = "default"
				}
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", id, cond, edgeTarget(sequence, route.Next, route.Sequence))
			}
		default:
			next := n.Next
			if next == 0 && i+1 < len(nodes) {
				next = nodes[i+1].ID
			}
			if present[next] {
				fmt.Fprintf(&sb, "    %s --> %s\n", id, mermaidID(domain.NodeAddress{Sequence: sequence, ID: next}))
			}
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef onpath fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef target fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, addr := range overlay.PathNodes {
			id := mermaidID(addr)
			if addr.Sequence == sequence && !seen[id] {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s onpath;\n", id)
			}
		}
		if overlay.Target.Sequence == sequence {
			fmt.Fprintf(&sb, "    class %s target;\n", mermaidID(overlay.Target))
		}
	}

	return sb.String()
}

func edgeTarget(sequence string, next int, jumpSequence string) string {
	if jumpSequence != "" {
		return mermaidID(domain.NodeAddress{Sequence: jumpSequence})
	}
	return mermaidID(domain.NodeAddress{Sequence: sequence, ID: next})
}

func mermaidID(addr domain.NodeAddress) string {
	s := addr.Sequence
	if addr.ID != 0 {
		s = fmt.Sprintf("%s_%d", addr.Sequence, addr.ID)
	}
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
