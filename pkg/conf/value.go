// Package conf models the loosely-typed configuration tree produced by the
// pipeline's config parser as a closed tagged union, so consumers can
// pattern-match on Kind exhaustively instead of type-switching on any.
package conf

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags the variant a Value holds.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Int
	Float
	String
	List
	Map
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case List:
		return "list"
	case Map:
		return "map"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is one node of the configuration tree. Exactly the fields matching
// Kind are meaningful.
type Value struct {
	Kind Kind

	BoolVal  bool
	IntVal   int64
	FloatVal float64
	StrVal   string

	Items  []*Value
	Fields map[string]*Value
	// Keys preserves map insertion order for deterministic traversal.
	Keys []string
}

// NewMap returns an empty map value.
func NewMap() *Value {
	return &Value{Kind: Map, Fields: map[string]*Value{}}
}

// NewList returns an empty list value.
func NewList() *Value {
	return &Value{Kind: List}
}

// Set adds or replaces a map entry, tracking insertion order.
func (v *Value) Set(key string, child *Value) {
	if _, exists := v.Fields[key]; !exists {
		v.Keys = append(v.Keys, key)
	}
	v.Fields[key] = child
}

// Append adds a list item.
func (v *Value) Append(child *Value) {
	v.Items = append(v.Items, child)
}

// Get returns the map entry for key, or nil.
func (v *Value) Get(key string) *Value {
	if v == nil || v.Kind != Map {
		return nil
	}
	return v.Fields[key]
}

// Lookup walks a dotted path through nested maps.
func (v *Value) Lookup(path string) *Value {
	cur := v
	for _, part := range strings.Split(path, ".") {
		cur = cur.Get(part)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Interface converts the tree to plain Go values (map[string]any, []any,
// scalars) for decoding with mapstructure.
func (v *Value) Interface() any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case Null:
		return nil
	case Bool:
		return v.BoolVal
	case Int:
		return v.IntVal
	case Float:
		return v.FloatVal
	case String:
		return v.StrVal
	case List:
		out := make([]any, len(v.Items))
		for i, it := range v.Items {
			out[i] = it.Interface()
		}
		return out
	case Map:
		out := make(map[string]any, len(v.Fields))
		for k, f := range v.Fields {
			out[k] = f.Interface()
		}
		return out
	}
	return nil
}

// Coerce parses a scalar token: null, booleans, quoted strings, integers,
// floats, with bare-string fallback. Unparsable tokens never error; they
// stay opaque strings.
func Coerce(token string) *Value {
	token = strings.TrimSpace(token)
	switch token {
	case "", "null", "~":
		return &Value{Kind: Null}
	case "true":
		return &Value{Kind: Bool, BoolVal: true}
	case "false":
		return &Value{Kind: Bool, BoolVal: false}
	}
	if len(token) >= 2 {
		if (token[0] == '\'' && token[len(token)-1] == '\'') ||
			(token[0] == '"' && token[len(token)-1] == '"') {
			return &Value{Kind: String, StrVal: token[1 : len(token)-1]}
		}
	}
	if i, err := strconv.ParseInt(token, 10, 64); err == nil {
		return &Value{Kind: Int, IntVal: i}
	}
	if f, err := strconv.ParseFloat(token, 64); err == nil {
		return &Value{Kind: Float, FloatVal: f}
	}
	return &Value{Kind: String, StrVal: token}
}
