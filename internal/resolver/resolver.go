// Package resolver performs breadth-first search over the dialogue graph to
// find a concrete walk from a state's entry point to a target node. The
// frontier carries whole paths rather than backpointers, so the winning walk
// is reconstructed for free at the cost of some copying.
package resolver

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/rvielma/cultivar/internal/expr"
	"github.com/rvielma/cultivar/internal/index"
	"github.com/rvielma/cultivar/pkg/domain"
)

// Resolver searches the graph through a sequence index.
type Resolver struct {
	index  *index.Index
	logger *slog.Logger
}

// Option configures the resolver.
type Option func(*Resolver)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates a resolver over the given index.
func New(ix *index.Index, opts ...Option) *Resolver {
	r := &Resolver{
		index:  ix,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type successor struct {
	node *domain.DialogueNode
	via  *domain.Selection
}

// Resolve searches from the state's entry point to the target. The second
// return value reports whether the target was actually reached; when the
// search exhausts, the path degenerates to the target node alone and found
// is false. Only load failures of the entry or target node are errors.
func (r *Resolver) Resolve(state domain.StateSpec, target domain.NodeAddress) (domain.ResolvedPath, bool, error) {
	maxDepth := state.MaxDepth
	if maxDepth <= 0 {
		maxDepth = domain.DefaultMaxDepth
	}
	maxPaths := state.MaxPaths
	if maxPaths <= 0 {
		maxPaths = domain.DefaultMaxPaths
	}

	start, err := r.startNode(state)
	if err != nil {
		return nil, false, err
	}

	queue := []domain.ResolvedPath{{step(start, nil)}}
	visited := map[domain.NodeAddress]bool{}
	expanded := 0

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		last := path.Target()

		if last.Address() == target {
			return path, true, nil
		}
		if len(path) > maxDepth {
			continue
		}
		// Marked after expansion, not on enqueue: equal-length alternates
		// may revisit a node within the same layer before it is pruned.
		if visited[last.Address()] {
			continue
		}

		node, nerr := r.index.Node(last.Sequence, last.ID)
		if nerr != nil {
			r.logger.Debug("skipping unloadable node", "node", last.Address(), "err", nerr)
			continue
		}

		succ := r.successors(node, &state)
		visited[last.Address()] = true
		expanded++
		if expanded > maxPaths {
			r.logger.Debug("search budget exhausted", "target", target, "expanded", expanded)
			break
		}

		// A successor that is exactly the target goes first. This narrows
		// average breadth without changing the answer on acyclic graphs.
		ordered := make([]successor, 0, len(succ))
		for _, s := range succ {
			if s.node.Address() == target {
				ordered = append(ordered, s)
			}
		}
		for _, s := range succ {
			if s.node.Address() != target {
				ordered = append(ordered, s)
			}
		}

		for _, s := range ordered {
			next := make(domain.ResolvedPath, len(path), len(path)+1)
			copy(next, path)
			next = append(next, step(s.node, s.via))
			queue = append(queue, next)
		}
	}

	// Exhausted: degrade to the target alone so the pipeline can still
	// work from the node's own default text.
	tnode, terr := r.index.Node(target.Sequence, target.ID)
	if terr != nil {
		return nil, false, fmt.Errorf("target %s: %w", target, terr)
	}
	r.logger.Debug("target unreachable, falling back to single-node path", "target", target)
	return domain.ResolvedPath{step(tnode, nil)}, false, nil
}

func (r *Resolver) startNode(state domain.StateSpec) (*domain.DialogueNode, error) {
	if state.EntryNode != 0 {
		n, err := r.index.Node(state.EntrySequence, state.EntryNode)
		if err != nil {
			return nil, fmt.Errorf("entry point: %w", err)
		}
		return n, nil
	}
	n, err := r.index.Entry(state.EntrySequence)
	if err != nil {
		return nil, fmt.Errorf("entry point: %w", err)
	}
	return n, nil
}

// successors expands one node according to its kind.
func (r *Resolver) successors(n *domain.DialogueNode, state *domain.StateSpec) []successor {
	switch {
	case n.IsJump():
		entry, err := r.index.Entry(n.JumpTo)
		if err != nil {
			r.logger.Debug("jump to unloadable sequence", "node", n.Address(), "to", n.JumpTo, "err", err)
			return nil
		}
		return []successor{{node: entry}}

	case n.Kind == domain.KindBranch:
		route := pickRoute(n, state)
		if route == nil {
			return nil
		}
		dest := r.destination(n.Sequence, route.Next, route.Sequence)
		if dest == nil {
			return nil
		}
		return []successor{{node: dest}}

	case n.Kind == domain.KindChoice:
		return r.choiceSuccessors(n, state)

	default:
		if n.Next != 0 {
			if dest := r.destination(n.Sequence, n.Next, ""); dest != nil {
				return []successor{{node: dest}}
			}
			return nil
		}
		if r.index.Has(n.Sequence, n.ID+1) {
			dest, _ := r.index.Node(n.Sequence, n.ID+1)
			return []successor{{node: dest}}
		}
		return nil
	}
}

func (r *Resolver) choiceSuccessors(n *domain.DialogueNode, state *domain.StateSpec) []successor {
	if d, ok := state.DirectiveFor(n.Address()); ok {
		if i, opt := matchDirective(n, d); opt != nil {
			if dest := r.destination(n.Sequence, opt.Next, opt.Sequence); dest != nil {
				return []successor{{node: dest, via: selection(i, opt)}}
			}
			return nil
		}
		// Selector matched no option: fall through to explore-all rather
		// than failing the search.
		r.logger.Debug("choice directive matched nothing", "node", n.Address(), "method", d.Method)
	}

	var out []successor
	for i := range n.Options {
		opt := &n.Options[i]
		dest := r.destination(n.Sequence, opt.Next, opt.Sequence)
		if dest == nil {
			continue
		}
		out = append(out, successor{node: dest, via: selection(i, opt)})
	}
	return out
}

// destination resolves a transition target: an explicit sequence wins and
// lands on that sequence's entry node, otherwise next addresses the current
// sequence. Unloadable destinations are dead ends, not errors.
func (r *Resolver) destination(current string, next int, sequence string) *domain.DialogueNode {
	if sequence != "" {
		dest, err := r.index.Entry(sequence)
		if err != nil {
			r.logger.Debug("unloadable destination sequence", "sequence", sequence, "err", err)
			return nil
		}
		return dest
	}
	if next == 0 {
		return nil
	}
	dest, err := r.index.Node(current, next)
	if err != nil {
		r.logger.Debug("dangling next id", "sequence", current, "next", next)
		return nil
	}
	return dest
}

// pickRoute applies the branch resolution mode: evaluate conditions in
// declared order under resolve mode, then fall back to the default-flagged
// route, then to the first declared route.
func pickRoute(n *domain.DialogueNode, state *domain.StateSpec) *domain.Route {
	if len(n.Routes) == 0 {
		return nil
	}
	if state.Mode != domain.BranchAlwaysDefault {
		for i := range n.Routes {
			rt := &n.Routes[i]
			if rt.Default || rt.When == "" {
				continue
			}
			if expr.Evaluate(rt.When, state.Vars) {
				return rt
			}
		}
	}
	for i := range n.Routes {
		if n.Routes[i].Default {
			return &n.Routes[i]
		}
	}
	return &n.Routes[0]
}

func matchDirective(n *domain.DialogueNode, d domain.ChoiceDirective) (int, *domain.ChoiceOption) {
	switch d.Method {
	case domain.SelectByIndex:
		if d.Index >= 0 && d.Index < len(n.Options) {
			return d.Index, &n.Options[d.Index]
		}
	case domain.SelectByText:
		for i := range n.Options {
			if n.Options[i].Text == d.Value {
				return i, &n.Options[i]
			}
		}
	case domain.SelectByKey:
		for i := range n.Options {
			if n.Options[i].ContentKey == d.Value {
				return i, &n.Options[i]
			}
		}
	}
	return 0, nil
}

func selection(i int, opt *domain.ChoiceOption) *domain.Selection {
	return &domain.Selection{Index: i, Text: opt.Text, ContentKey: opt.ContentKey}
}

func step(n *domain.DialogueNode, via *domain.Selection) domain.ResolvedPathNode {
	return domain.ResolvedPathNode{Sequence: n.Sequence, ID: n.ID, Kind: n.Kind, Via: via}
}
