package domain

import "fmt"

// NodeKind constants define how a node routes control flow.
const (
	// KindMessage displays scripted bot content and continues.
	KindMessage = "message"
	// KindChoice offers the user a set of options, each with its own destination.
	KindChoice = "choice"
	// KindBranch routes by evaluating conditions against the user state.
	KindBranch = "branch"
	// KindAction performs an app-side effect (notification, animation) and continues.
	KindAction = "action"
	// KindJump transfers control to another sequence's entry node.
	KindJump = "jump"
)

// NodeAddress identifies a node globally: (sequence-id, integer message-id).
type NodeAddress struct {
	Sequence string `json:"sequence" yaml:"sequence"`
	ID       int    `json:"id" yaml:"id"`
}

func (a NodeAddress) String() string {
	return fmt.Sprintf("%s:%d", a.Sequence, a.ID)
}

// ChoiceOption is one user-selectable branch of a choice node.
type ChoiceOption struct {
	Text       string `json:"text,omitempty" yaml:"text,omitempty"`
	ContentKey string `json:"key,omitempty" yaml:"key,omitempty"`

	// Next is the destination message-id within the current sequence.
	// Zero means unset.
	Next int `json:"next,omitempty" yaml:"next,omitempty"`

	// Sequence, when set, sends the flow to that sequence's entry node instead.
	Sequence string `json:"sequence,omitempty" yaml:"sequence,omitempty"`
}

// Route is one conditional branch of a branch node. Routes are evaluated in
// declared order; the first matching condition wins. A route with Default set
// is taken when nothing matches (or always, in always-default mode).
type Route struct {
	When    string `json:"when,omitempty" yaml:"when,omitempty"`
	Default bool   `json:"default,omitempty" yaml:"default,omitempty"`

	Next     int    `json:"next,omitempty" yaml:"next,omitempty"`
	Sequence string `json:"sequence,omitempty" yaml:"sequence,omitempty"`
}

// DialogueNode is one scripted unit of the dialogue graph. Nodes are
// immutable once loaded; the sequence index owns them, keyed by sequence-id.
type DialogueNode struct {
	Sequence string `json:"sequence" yaml:"-"`
	ID       int    `json:"id" yaml:"id"`
	Kind     string `json:"kind" yaml:"kind"`

	// ContentKey addresses this node's phrasing corpus, when it has one.
	ContentKey string `json:"key,omitempty" yaml:"key,omitempty"`

	// Text is the literal default phrasing, used when no corpus exists yet.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// Next is an explicit next message-id. Zero means implicit routing
	// (message-id + 1 for linear kinds).
	Next int `json:"next,omitempty" yaml:"next,omitempty"`

	// JumpTo names another sequence whose entry node follows this one.
	JumpTo string `json:"jump_to,omitempty" yaml:"jump_to,omitempty"`

	Options []ChoiceOption `json:"options,omitempty" yaml:"options,omitempty"`
	Routes  []Route        `json:"routes,omitempty" yaml:"routes,omitempty"`
}

// Address returns the node's global identity.
func (n *DialogueNode) Address() NodeAddress {
	return NodeAddress{Sequence: n.Sequence, ID: n.ID}
}

// IsJump reports whether the node transfers control to another sequence.
func (n *DialogueNode) IsJump() bool {
	return n.Kind == KindJump || (n.JumpTo != "" && n.JumpTo != n.Sequence)
}

// Displayable reports whether the node contributes a visible turn to the
// conversation transcript. Routing and action nodes are silent.
func (n *DialogueNode) Displayable() bool {
	switch n.Kind {
	case KindMessage, KindChoice:
		return true
	default:
		return false
	}
}
