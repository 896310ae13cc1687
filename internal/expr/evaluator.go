// Package expr evaluates the boolean routing conditions used by branch
// nodes, e.g. "mood == 'low' && streak.days >= 3". The grammar is small on
// purpose: OR over AND over a single comparison over bare truthiness.
// Evaluation never fails; malformed input resolves to opaque strings and
// impossible comparisons are simply false.
package expr

import (
	"reflect"
	"strconv"
	"strings"
)

// comparison operators in match order: two-character operators first so
// ">=" is not misread as ">".
var compareOps = []string{"==", "!=", ">=", "<=", ">", "<"}

// Evaluate resolves the expression against the supplied variable mapping
// and reports whether it holds.
func Evaluate(expression string, values map[string]any) bool {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return false
	}

	if parts := splitOutsideQuotes(expression, "||"); len(parts) > 1 {
		for _, p := range parts {
			if Evaluate(p, values) {
				return true
			}
		}
		return false
	}

	if parts := splitOutsideQuotes(expression, "&&"); len(parts) > 1 {
		for _, p := range parts {
			if !Evaluate(p, values) {
				return false
			}
		}
		return true
	}

	if op, lhs, rhs, ok := splitComparison(expression); ok {
		return compare(op, resolve(lhs, values), resolve(rhs, values))
	}

	return Truthy(resolve(expression, values))
}

// resolve turns an operand into a value: variable lookup first (exact key,
// then a dotted walk through nested maps), literal parse otherwise.
func resolve(token string, values map[string]any) any {
	token = strings.TrimSpace(token)
	if v, ok := values[token]; ok {
		return v
	}
	if strings.Contains(token, ".") {
		if v, ok := walk(token, values); ok {
			return v
		}
		// An unquoted dotted name that resolves nowhere is an undefined
		// variable, not a string literal.
		if s, ok := parseLiteral(token).(string); ok && s == token {
			return nil
		}
	}
	return parseLiteral(token)
}

func walk(path string, values map[string]any) (any, bool) {
	parts := strings.Split(path, ".")
	var cur any = values
	for _, part := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// parseLiteral interprets a token as null/bool/quoted string/number, with
// bare-string fallback. Unparsable tokens are opaque strings, never errors.
func parseLiteral(token string) any {
	switch token {
	case "null", "":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if len(token) >= 2 {
		if (token[0] == '\'' && token[len(token)-1] == '\'') ||
			(token[0] == '"' && token[len(token)-1] == '"') {
			return token[1 : len(token)-1]
		}
	}
	if i, err := strconv.ParseInt(token, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(token, 64); err == nil {
		return f
	}
	return token
}

func compare(op string, lhs, rhs any) bool {
	lf, lok := toNumber(lhs)
	rf, rok := toNumber(rhs)

	switch op {
	case "==", "!=":
		var eq bool
		if lok && rok {
			eq = lf == rf
		} else {
			eq = equal(lhs, rhs)
		}
		if op == "!=" {
			return !eq
		}
		return eq
	}

	// Ordering fails closed when either side is not numeric.
	if !lok || !rok {
		return false
	}
	switch op {
	case ">":
		return lf > rf
	case "<":
		return lf < rf
	case ">=":
		return lf >= rf
	case "<=":
		return lf <= rf
	}
	return false
}

func equal(lhs, rhs any) bool {
	if lhs == nil || rhs == nil {
		return lhs == nil && rhs == nil
	}
	if reflect.TypeOf(lhs).Comparable() && reflect.TypeOf(rhs).Comparable() && lhs == rhs {
		return true
	}
	return stringify(lhs) == stringify(rhs)
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := toNumber(v); ok {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return reflect.ValueOf(v).String()
}

// toNumber converts numeric types and numeric-looking strings to float64.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Truthy reports the bare-expression truth value: nil, false, zero, empty
// string and empty collections are falsy; everything else is truthy.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if f, ok := toNumber(v); ok {
		return f != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	}
	return true
}

// splitOutsideQuotes splits on op occurrences that sit outside single or
// double quoted literals. Returns a single-element slice when op is absent.
func splitOutsideQuotes(s, op string) []string {
	var parts []string
	start := 0
	inSingle, inDouble := false, false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\'' && !inDouble:
			inSingle = !inSingle
		case s[i] == '"' && !inSingle:
			inDouble = !inDouble
		case !inSingle && !inDouble && strings.HasPrefix(s[i:], op):
			parts = append(parts, s[start:i])
			start = i + len(op)
			i += len(op) - 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// splitComparison locates the first comparison operator outside quotes.
func splitComparison(s string) (op, lhs, rhs string, ok bool) {
	inSingle, inDouble := false, false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\'' && !inDouble:
			inSingle = !inSingle
			continue
		case s[i] == '"' && !inSingle:
			inDouble = !inDouble
			continue
		}
		if inSingle || inDouble {
			continue
		}
		for _, cand := range compareOps {
			if strings.HasPrefix(s[i:], cand) {
				return cand, s[:i], s[i+len(cand):], true
			}
		}
	}
	return "", "", "", false
}
