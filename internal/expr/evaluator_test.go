package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate_Literals(t *testing.T) {
	cases := []struct {
		expr string
		want bool
	}{
		{"3 > 2 && 1 == 1", true},
		{"'a' == 'b' || 2 >= 2", true},
		{"1 == 1.0", true},
		{"1 != 2", true},
		{"2 <= 1", false},
		{"'10' > '9'", true}, // numeric strings compare numerically
		{"'a' > 'b'", false}, // non-numeric ordering fails closed
		{"'a' < 'b'", false},
		{"true", true},
		{"false", false},
		{"null", false},
		{"0", false},
		{"0.0", false},
		{"1", true},
		{"''", false},
		{"'x'", true},
		{"'quoted && literal' == 'quoted && literal'", true},
		{"'a || b' == 'a || b'", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Evaluate(tc.expr, nil), "expr: %s", tc.expr)
	}
}

func TestEvaluate_Variables(t *testing.T) {
	values := map[string]any{
		"mood":        "low",
		"streak.days": 5,
		"profile": map[string]any{
			"premium": true,
		},
		"count": 0,
		"tags":  []any{},
	}

	t.Run("Lookup And Compare", func(t *testing.T) {
		assert.True(t, Evaluate("mood == 'low'", values))
		assert.False(t, Evaluate("mood == 'high'", values))
		assert.True(t, Evaluate("streak.days >= 3", values))
	})

	t.Run("Dotted Walk Through Nested Maps", func(t *testing.T) {
		assert.True(t, Evaluate("profile.premium", values))
	})

	t.Run("Missing Key Is Falsy", func(t *testing.T) {
		assert.False(t, Evaluate("missing.key", values))
		assert.False(t, Evaluate("mood == 'high' || missing.flag", values))
	})

	t.Run("Missing Key Resolves To Null", func(t *testing.T) {
		assert.True(t, Evaluate("missing.key == null", values))
		assert.False(t, Evaluate("missing.key == 'missing.key'", values))
		assert.False(t, Evaluate("missing.key > 0", values))
	})

	t.Run("Zero And Empty Are Falsy", func(t *testing.T) {
		assert.False(t, Evaluate("count", values))
		assert.False(t, Evaluate("tags", values))
	})

	t.Run("Boolean Combinators", func(t *testing.T) {
		assert.True(t, Evaluate("mood == 'low' && streak.days > 1", values))
		assert.True(t, Evaluate("mood == 'high' || profile.premium", values))
		assert.False(t, Evaluate("mood == 'high' && profile.premium", values))
	})
}

func TestEvaluate_NoSideEffects(t *testing.T) {
	values := map[string]any{"a": 1}
	_ = Evaluate("a == 1 || b == 2", values)
	assert.Equal(t, map[string]any{"a": 1}, values)
}

func TestEvaluate_MalformedNeverPanics(t *testing.T) {
	for _, expr := range []string{"", "&&", "== 1", "a >", "'unterminated", "a == == b"} {
		assert.NotPanics(t, func() { Evaluate(expr, nil) }, "expr: %s", expr)
	}
}
