package domain

// BranchMode controls how branch nodes are resolved during path search.
type BranchMode string

const (
	// BranchResolve evaluates each route's condition against the state vars.
	BranchResolve BranchMode = "resolve"
	// BranchAlwaysDefault skips evaluation and takes the default route.
	BranchAlwaysDefault BranchMode = "default"
)

// SelectionMethod identifies how a choice directive picks an option.
type SelectionMethod string

const (
	SelectByIndex SelectionMethod = "index"
	SelectByText  SelectionMethod = "text"
	SelectByKey   SelectionMethod = "key"
)

// ChoiceDirective pins the selection at one specific choice node. A directive
// whose selector matches no option is ignored and the resolver falls back to
// exploring every option.
type ChoiceDirective struct {
	At     NodeAddress     `json:"at"`
	Method SelectionMethod `json:"method"`

	// Index is used by SelectByIndex (zero-based).
	Index int `json:"index,omitempty"`
	// Value is the exact display text or content key to match.
	Value string `json:"value,omitempty"`
}

// Traversal limit defaults. Generous enough for every production sequence
// while still bounding pathological graphs.
const (
	DefaultMaxDepth = 64
	DefaultMaxPaths = 4096
)

// StateSpec is the hypothetical user state a path is resolved under. It is
// built once per invocation and read-only thereafter.
type StateSpec struct {
	// EntrySequence and EntryNode locate the search start. EntryNode zero
	// means the sequence's own entry node.
	EntrySequence string `json:"entry_sequence"`
	EntryNode     int    `json:"entry_node,omitempty"`

	Mode BranchMode `json:"mode"`

	// Vars maps dotted variable names to literal values
	// (string/number/bool/nil) for condition evaluation.
	Vars map[string]any `json:"vars,omitempty"`

	Directives []ChoiceDirective `json:"directives,omitempty"`

	MaxDepth int `json:"max_depth,omitempty"`
	MaxPaths int `json:"max_paths,omitempty"`
}

// NewStateSpec returns a StateSpec with default mode and limits, entering at
// the given sequence's entry node.
func NewStateSpec(entrySequence string) StateSpec {
	return StateSpec{
		EntrySequence: entrySequence,
		Mode:          BranchResolve,
		Vars:          map[string]any{},
		MaxDepth:      DefaultMaxDepth,
		MaxPaths:      DefaultMaxPaths,
	}
}

// DirectiveFor returns the directive pinned to the given address, if any.
func (s *StateSpec) DirectiveFor(at NodeAddress) (ChoiceDirective, bool) {
	for _, d := range s.Directives {
		if d.At == at {
			return d, true
		}
	}
	return ChoiceDirective{}, false
}
