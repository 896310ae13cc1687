// Package adapters holds the filesystem-facing implementations of the
// ports: sequence documents, the phrasing corpus, and target lists.
package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rvielma/cultivar/pkg/domain"
)

// sequenceDoc is the on-disk shape of one sequence file.
type sequenceDoc struct {
	Entry int       `yaml:"entry"`
	Nodes []nodeDoc `yaml:"nodes"`
}

type nodeDoc struct {
	ID      int         `yaml:"id"`
	Kind    string      `yaml:"kind"`
	Key     string      `yaml:"key"`
	Text    string      `yaml:"text"`
	Next    int         `yaml:"next"`
	Jump    string      `yaml:"jump"`
	Options []optionDoc `yaml:"options"`
	Routes  []routeDoc  `yaml:"routes"`
}

type optionDoc struct {
	Text     string `yaml:"text"`
	Key      string `yaml:"key"`
	Next     int    `yaml:"next"`
	Sequence string `yaml:"sequence"`
}

type routeDoc struct {
	When     string `yaml:"when"`
	Default  bool   `yaml:"default"`
	Next     int    `yaml:"next"`
	Sequence string `yaml:"sequence"`
}

// FileSequenceLoader implements ports.SequenceLoader over a directory of
// YAML sequence documents, one file per sequence-id.
type FileSequenceLoader struct {
	BasePath string
}

// NewFileSequenceLoader creates a loader rooted at basePath. If basePath is
// empty it defaults to "sequences".
func NewFileSequenceLoader(basePath string) *FileSequenceLoader {
	if basePath == "" {
		basePath = "sequences"
	}
	return &FileSequenceLoader{BasePath: basePath}
}

// GetSequence reads and decodes one sequence document.
func (l *FileSequenceLoader) GetSequence(id string) ([]domain.DialogueNode, int, error) {
	data, err := os.ReadFile(l.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, fmt.Errorf("sequence %s: %w", id, domain.ErrSequenceNotFound)
		}
		return nil, 0, fmt.Errorf("read sequence %s: %w", id, err)
	}

	var doc sequenceDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, 0, fmt.Errorf("decode sequence %s: %w", id, err)
	}
	if len(doc.Nodes) == 0 {
		return nil, 0, fmt.Errorf("sequence %s: no nodes", id)
	}
	if doc.Entry == 0 {
		doc.Entry = doc.Nodes[0].ID
	}

	nodes := make([]domain.DialogueNode, 0, len(doc.Nodes))
	for _, nd := range doc.Nodes {
		nodes = append(nodes, nd.toDomain(id))
	}
	return nodes, doc.Entry, nil
}

// ListSequences returns the sequence-ids present in the base directory,
// sorted.
func (l *FileSequenceLoader) ListSequences() ([]string, error) {
	entries, err := os.ReadDir(l.BasePath)
	if err != nil {
		return nil, fmt.Errorf("list sequences: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".yaml"))
	}
	sort.Strings(ids)
	return ids, nil
}

func (l *FileSequenceLoader) path(id string) string {
	return filepath.Join(l.BasePath, id+".yaml")
}

func (nd nodeDoc) toDomain(sequence string) domain.DialogueNode {
	kind := nd.Kind
	if kind == "" {
		switch {
		case nd.Jump != "":
			kind = domain.KindJump
		case len(nd.Options) > 0:
			kind = domain.KindChoice
		case len(nd.Routes) > 0:
			kind = domain.KindBranch
		default:
			kind = domain.KindMessage
		}
	}

	n := domain.DialogueNode{
		Sequence:   sequence,
		ID:         nd.ID,
		Kind:       kind,
		ContentKey: nd.Key,
		Text:       nd.Text,
		Next:       nd.Next,
		JumpTo:     nd.Jump,
	}
	for _, o := range nd.Options {
		n.Options = append(n.Options, domain.ChoiceOption{
			Text: o.Text, ContentKey: o.Key, Next: o.Next, Sequence: o.Sequence,
		})
	}
	for _, r := range nd.Routes {
		n.Routes = append(n.Routes, domain.Route{
			When: r.When, Default: r.Default, Next: r.Next, Sequence: r.Sequence,
		})
	}
	return n
}
