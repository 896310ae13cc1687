// Package contentkey maps dotted content identifiers to their corpus
// addresses on disk. The mapping is bit-exact and round-trip stable: it
// decides where generated lines are appended, so any drift would orphan
// existing corpora.
package contentkey

import (
	"fmt"
	"path"
	"strings"
)

// Root is the corpus directory prefix shared by all content keys.
const Root = "content"

// Key is a decoded content identifier: actor.action.subject[.modifier]*.
type Key struct {
	Actor     string
	Action    string
	Subject   string
	Modifiers []string
}

// Decode splits a dotted identifier into its segments. A key needs at least
// actor, action and subject; anything shorter is invalid.
func Decode(raw string) (Key, error) {
	parts := strings.Split(raw, ".")
	if len(parts) < 3 {
		return Key{}, fmt.Errorf("content key %q: need at least 3 dot-separated segments, got %d", raw, len(parts))
	}
	for i, p := range parts {
		if p == "" {
			return Key{}, fmt.Errorf("content key %q: empty segment at position %d", raw, i)
		}
	}
	return Key{
		Actor:     parts[0],
		Action:    parts[1],
		Subject:   parts[2],
		Modifiers: parts[3:],
	}, nil
}

// Valid reports whether raw decodes cleanly.
func Valid(raw string) bool {
	_, err := Decode(raw)
	return err == nil
}

// String re-encodes the key to its dotted form.
func (k Key) String() string {
	parts := append([]string{k.Actor, k.Action, k.Subject}, k.Modifiers...)
	return strings.Join(parts, ".")
}

// Path returns the corpus file address:
// content/<actor>/<action>/<subject>[_<modifier>...].txt
func (k Key) Path() string {
	name := k.Subject
	if len(k.Modifiers) > 0 {
		name += "_" + strings.Join(k.Modifiers, "_")
	}
	return path.Join(Root, k.Actor, k.Action, name+".txt")
}

// SiblingsDir returns the directory shared by the key's sibling corpora,
// used for exemplar discovery: content/<actor>/<action>/
func (k Key) SiblingsDir() string {
	return path.Join(Root, k.Actor, k.Action) + "/"
}
