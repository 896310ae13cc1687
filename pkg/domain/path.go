package domain

// Selection records which option was taken at a choice node to reach the
// node carrying it.
type Selection struct {
	Index      int    `json:"index"`
	Text       string `json:"text,omitempty"`
	ContentKey string `json:"key,omitempty"`
}

// ResolvedPathNode is one step of a resolved traversal.
type ResolvedPathNode struct {
	Sequence string `json:"sequence"`
	ID       int    `json:"id"`
	Kind     string `json:"kind"`

	// Via is set when the preceding node was a choice: the selection taken
	// to reach this node.
	Via *Selection `json:"via,omitempty"`
}

// Address returns the step's global node identity.
func (n ResolvedPathNode) Address() NodeAddress {
	return NodeAddress{Sequence: n.Sequence, ID: n.ID}
}

// ResolvedPath is an ordered, non-empty walk through the dialogue graph.
// Consecutive nodes are connected by a valid single-step transition under
// the StateSpec the path was resolved with.
type ResolvedPath []ResolvedPathNode

// Target returns the final node of the path.
func (p ResolvedPath) Target() ResolvedPathNode {
	return p[len(p)-1]
}

// Addresses returns the walk as plain node addresses, mostly for logging.
func (p ResolvedPath) Addresses() []string {
	out := make([]string, len(p))
	for i, n := range p {
		out[i] = n.Address().String()
	}
	return out
}
