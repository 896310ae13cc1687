package contentkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("Full Key With Modifier", func(t *testing.T) {
		k, err := Decode("bot.acknowledge.completion.positive")
		require.NoError(t, err)
		assert.Equal(t, "bot", k.Actor)
		assert.Equal(t, "acknowledge", k.Action)
		assert.Equal(t, "completion", k.Subject)
		assert.Equal(t, []string{"positive"}, k.Modifiers)
	})

	t.Run("Minimal Key", func(t *testing.T) {
		k, err := Decode("bot.greet.morning")
		require.NoError(t, err)
		assert.Empty(t, k.Modifiers)
	})

	t.Run("Too Few Segments", func(t *testing.T) {
		_, err := Decode("bot.greet")
		assert.Error(t, err)
		assert.False(t, Valid("bot.greet"))
	})

	t.Run("Empty Segment", func(t *testing.T) {
		_, err := Decode("bot..morning")
		assert.Error(t, err)
	})
}

func TestKey_Path(t *testing.T) {
	k, err := Decode("bot.acknowledge.completion.positive")
	require.NoError(t, err)
	assert.Equal(t, "content/bot/acknowledge/completion_positive.txt", k.Path())

	plain, err := Decode("bot.greet.morning")
	require.NoError(t, err)
	assert.Equal(t, "content/bot/greet/morning.txt", plain.Path())

	multi, err := Decode("user.confirm.plan.hesitant.short")
	require.NoError(t, err)
	assert.Equal(t, "content/user/confirm/plan_hesitant_short.txt", multi.Path())
}

func TestKey_SiblingsDir(t *testing.T) {
	k, err := Decode("bot.acknowledge.completion.positive")
	require.NoError(t, err)
	assert.Equal(t, "content/bot/acknowledge/", k.SiblingsDir())
}

func TestKey_RoundTrip(t *testing.T) {
	for _, raw := range []string{
		"bot.greet.morning",
		"bot.acknowledge.completion.positive",
		"user.confirm.plan.hesitant.short",
	} {
		k, err := Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, k.String())
	}
}
