package domain

// Sender identifies which side of the conversation produced a turn.
type Sender string

const (
	SenderBot  Sender = "bot"
	SenderUser Sender = "user"
)

// ContextTurn is one displayable turn of the conversation window handed to
// the generation backend. Turns are derived data, rebuilt per invocation.
type ContextTurn struct {
	Sender Sender `json:"sender"`
	Kind   string `json:"kind"`

	// Reference is either the literal scripted text or, when IsKey is set,
	// a content key whose corpus holds the turn's phrasings.
	Reference string `json:"reference"`
	IsKey     bool   `json:"is_key,omitempty"`

	// Examples are phrasings sampled from the referenced corpus, giving the
	// backend concrete wording instead of an opaque key.
	Examples []string `json:"examples,omitempty"`
}
