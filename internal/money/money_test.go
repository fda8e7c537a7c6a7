package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- ParseCents Tests ---

func TestParseCents(t *testing.T) {
	t.Run("whole amount", func(t *testing.T) {
		cents, err := ParseCents("100")
		require.NoError(t, err)
		assert.Equal(t, int64(10000), cents)
	})

	t.Run("two decimal places", func(t *testing.T) {
		cents, err := ParseCents("100.50")
		require.NoError(t, err)
		assert.Equal(t, int64(10050), cents)
	})

	t.Run("one decimal place", func(t *testing.T) {
		cents, err := ParseCents("0.5")
		require.NoError(t, err)
		assert.Equal(t, int64(50), cents)
	})

	t.Run("zero", func(t *testing.T) {
		cents, err := ParseCents("0")
		require.NoError(t, err)
		assert.Equal(t, int64(0), cents)
	})

	t.Run("negative passes through", func(t *testing.T) {
		cents, err := ParseCents("-5.25")
		require.NoError(t, err)
		assert.Equal(t, int64(-525), cents)
	})

	t.Run("whitespace trimmed", func(t *testing.T) {
		cents, err := ParseCents("  42.00 ")
		require.NoError(t, err)
		assert.Equal(t, int64(4200), cents)
	})

	t.Run("empty string", func(t *testing.T) {
		_, err := ParseCents("")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("not a number", func(t *testing.T) {
		_, err := ParseCents("ten")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("sub-cent precision rejected", func(t *testing.T) {
		_, err := ParseCents("10.005")
		assert.ErrorIs(t, err, ErrTooManyDecimals)
	})

	t.Run("classic float trap is exact", func(t *testing.T) {
		cents, err := ParseCents("0.1")
		require.NoError(t, err)
		cents2, err := ParseCents("0.2")
		require.NoError(t, err)
		assert.Equal(t, int64(30), cents+cents2)
	})
}

// --- FormatCents Tests ---

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "100.50", FormatCents(10050))
	assert.Equal(t, "0.00", FormatCents(0))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "-5.25", FormatCents(-525))
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, s := range []string{"0.01", "1.00", "999999.99"} {
		cents, err := ParseCents(s)
		require.NoError(t, err)
		assert.Equal(t, s, FormatCents(cents))
	}
}
