// Package validator checks sequence documents for authoring mistakes:
// dangling destinations, unreachable nodes, malformed content keys and
// choice options that lead nowhere.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rvielma/cultivar/pkg/contentkey"
	"github.com/rvielma/cultivar/pkg/domain"
	"github.com/rvielma/cultivar/pkg/ports"
)

// Issue is one finding in a sequence document.
type Issue struct {
	Sequence string
	Node     int
	Msg      string
}

func (i Issue) String() string {
	if i.Node != 0 {
		return fmt.Sprintf("%s:%d: %s", i.Sequence, i.Node, i.Msg)
	}
	return fmt.Sprintf("%s: %s", i.Sequence, i.Msg)
}

// ValidateAll checks every sequence the loader knows about.
func ValidateAll(loader ports.SequenceLoader) ([]Issue, error) {
	ids, err := loader.ListSequences()
	if err != nil {
		return nil, fmt.Errorf("list sequences: %w", err)
	}

	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}

	var issues []Issue
	for _, id := range ids {
		found, err := validateSequence(loader, id, known)
		if err != nil {
			issues = append(issues, Issue{Sequence: id, Msg: err.Error()})
			continue
		}
		issues = append(issues, found...)
	}
	return issues, nil
}

// ValidateSequence checks a single sequence document. Jump destinations
// are verified against the loader's full sequence list.
func ValidateSequence(loader ports.SequenceLoader, id string) ([]Issue, error) {
	ids, err := loader.ListSequences()
	if err != nil {
		return nil, fmt.Errorf("list sequences: %w", err)
	}
	known := make(map[string]bool, len(ids))
	for _, sid := range ids {
		known[sid] = true
	}
	return validateSequence(loader, id, known)
}

func validateSequence(loader ports.SequenceLoader, id string, known map[string]bool) ([]Issue, error) {
	nodes, entry, err := loader.GetSequence(id)
	if err != nil {
		return nil, err
	}

	present := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID] = true
	}

	var issues []Issue
	report := func(node int, format string, args ...any) {
		issues = append(issues, Issue{Sequence: id, Node: node, Msg: fmt.Sprintf(format, args...)})
	}

	if !present[entry] {
		report(0, "entry node %d does not exist", entry)
	}

	reachable := crawl(nodes, entry)

	for i, n := range nodes {
		if n.ContentKey != "" {
			if _, err := contentkey.Decode(n.ContentKey); err != nil {
				report(n.ID, "malformed content key %q", n.ContentKey)
			}
		}

		switch n.Kind {
		case domain.KindChoice:
			if len(n.Options) == 0 {
				report(n.ID, "choice node has no options")
			}
			for oi, opt := range n.Options {
				if opt.Sequence != "" {
					if !known[opt.Sequence] {
						report(n.ID, "option %d jumps to unknown sequence %q", oi+1, opt.Sequence)
					}
					continue
				}
				if opt.Next == 0 {
					report(n.ID, "option %d has no destination", oi+1)
				} else if !present[opt.Next] {
					report(n.ID, "option %d points at missing node %d", oi+1, opt.Next)
				}
			}
		case domain.KindBranch:
			if len(n.Routes) == 0 {
				report(n.ID, "branch node has no routes")
			}
			hasDefault := false
			for ri, route := range n.Routes {
				if route.Default {
					hasDefault = true
				}
				if route.Sequence != "" {
					if !known[route.Sequence] {
						report(n.ID, "route %d jumps to unknown sequence %q", ri+1, route.Sequence)
					}
					continue
				}
				if route.Next != 0 && !present[route.Next] {
					report(n.ID, "route %d points at missing node %d", ri+1, route.Next)
				}
			}
			if !hasDefault {
				report(n.ID, "branch node has no default route")
			}
		case domain.KindJump:
			if n.JumpTo == "" {
				report(n.ID, "jump node has no destination sequence")
			} else if !known[n.JumpTo] {
				report(n.ID, "jump to unknown sequence %q", n.JumpTo)
			}
		default:
			if n.Next != 0 && !present[n.Next] {
				report(n.ID, "next points at missing node %d", n.Next)
			}
			if n.Next == 0 && i+1 < len(nodes) && !present[nodes[i+1].ID] {
				report(n.ID, "implicit successor %d does not exist", nodes[i+1].ID)
			}
		}

		if !reachable[n.ID] {
			report(n.ID, "unreachable from entry node %d", entry)
		}
	}

	sort.Slice(issues, func(a, b int) bool {
		if issues[a].Node != issues[b].Node {
			return issues[a].Node < issues[b].Node
		}
		return issues[a].Msg < issues[b].Msg
	})
	return issues, nil
}

// crawl walks the in-sequence edges from entry and reports which nodes a
// run could ever touch. Cross-sequence edges are ignored here; the target
// sequence file is checked on its own.
func crawl(nodes []domain.DialogueNode, entry int) map[int]bool {
	byID := make(map[int]*domain.DialogueNode, len(nodes))
	follows := make(map[int]int, len(nodes))
	for i := range nodes {
		byID[nodes[i].ID] = &nodes[i]
		if i+1 < len(nodes) {
			follows[nodes[i].ID] = nodes[i+1].ID
		}
	}

	visited := map[int]bool{}
	queue := []int{entry}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		n, ok := byID[id]
		if !ok {
			continue
		}
		visited[id] = true

		var next []int
		switch n.Kind {
		case domain.KindChoice:
			for _, opt := range n.Options {
				if opt.Sequence == "" && opt.Next != 0 {
					next = append(next, opt.Next)
				}
			}
		case domain.KindBranch:
			for _, route := range n.Routes {
				if route.Sequence == "" && route.Next != 0 {
					next = append(next, route.Next)
				}
			}
		case domain.KindJump:
			// Leaves the sequence.
		default:
			if n.Next != 0 {
				next = append(next, n.Next)
			} else if f, ok := follows[id]; ok {
				next = append(next, f)
			}
		}
		for _, id := range next {
			if !visited[id] {
				queue = append(queue, id)
			}
		}
	}
	return visited
}

// Summary formats issues for CLI output.
func Summary(issues []Issue) string {
	if len(issues) == 0 {
		return "all sequences valid"
	}
	lines := make([]string, 0, len(issues))
	for _, issue := range issues {
		lines = append(lines, "- "+issue.String())
	}
	return fmt.Sprintf("found %d issues:\n%s", len(issues), strings.Join(lines, "\n"))
}
