package config

import (
	"fmt"
	"os"

	"github.com/rvielma/cultivar/internal/compiler"
	"github.com/rvielma/cultivar/pkg/domain"
)

// stateDoc is the on-disk shape of a state specification.
type stateDoc struct {
	Entry     string         `mapstructure:"entry"`
	EntryNode int            `mapstructure:"entry_node"`
	Mode      string         `mapstructure:"mode"`
	Vars      map[string]any `mapstructure:"vars"`
	Choices   []choiceDoc    `mapstructure:"choices"`
	MaxDepth  int            `mapstructure:"max_depth"`
	MaxPaths  int            `mapstructure:"max_paths"`
}

type choiceDoc struct {
	At    string `mapstructure:"at"`
	Index *int   `mapstructure:"index"`
	Text  string `mapstructure:"text"`
	Key   string `mapstructure:"key"`
}

// LoadState reads a state specification document. entrySequence seeds the
// entry point when the document leaves it unset (the target's sequence,
// typically).
func LoadState(path, entrySequence string) (domain.StateSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.StateSpec{}, fmt.Errorf("read state spec: %w", err)
	}
	return ParseState(string(data), entrySequence)
}

// ParseState decodes state specification text.
func ParseState(text, entrySequence string) (domain.StateSpec, error) {
	state := domain.NewStateSpec(entrySequence)
	if text == "" {
		return state, nil
	}

	tree, err := compiler.NewParser().Parse(text)
	if err != nil {
		return domain.StateSpec{}, fmt.Errorf("parse state spec: %w", err)
	}

	var doc stateDoc
	if in := tree.Interface(); in != nil {
		if err := decode(in, &doc); err != nil {
			return domain.StateSpec{}, fmt.Errorf("decode state spec: %w", err)
		}
	}

	if doc.Entry != "" {
		state.EntrySequence = doc.Entry
	}
	state.EntryNode = doc.EntryNode
	if doc.Mode != "" {
		switch doc.Mode {
		case string(domain.BranchResolve), string(domain.BranchAlwaysDefault):
			state.Mode = domain.BranchMode(doc.Mode)
		default:
			return domain.StateSpec{}, fmt.Errorf("state spec: unknown branch mode %q", doc.Mode)
		}
	}
	state.Vars = doc.Vars
	state.MaxDepth = doc.MaxDepth
	state.MaxPaths = doc.MaxPaths

	for _, cd := range doc.Choices {
		directive, err := cd.toDomain(state.EntrySequence)
		if err != nil {
			return domain.StateSpec{}, err
		}
		state.Directives = append(state.Directives, directive)
	}
	return state, nil
}

func (cd choiceDoc) toDomain(defaultSequence string) (domain.ChoiceDirective, error) {
	at, err := ParseAddress(cd.At, defaultSequence)
	if err != nil {
		return domain.ChoiceDirective{}, fmt.Errorf("state spec: choice directive: %w", err)
	}

	d := domain.ChoiceDirective{At: at}
	switch {
	case cd.Index != nil:
		d.Method = domain.SelectByIndex
		d.Index = *cd.Index
	case cd.Key != "":
		d.Method = domain.SelectByKey
		d.Value = cd.Key
	case cd.Text != "":
		d.Method = domain.SelectByText
		d.Value = cd.Text
	default:
		return domain.ChoiceDirective{}, fmt.Errorf("state spec: choice directive at %s selects nothing", at)
	}
	return d, nil
}
