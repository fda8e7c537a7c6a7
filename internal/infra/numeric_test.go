package infra

import (
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Numeric Conversion Tests ---

func TestNumericToInt64(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		for _, v := range []int64{0, 1, -1, 10050, 999999999999999} {
			got, err := NumericToInt64(Int64ToNumeric(v))
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("positive exponent", func(t *testing.T) {
		n := pgtype.Numeric{Int: big.NewInt(5), Exp: 3, Valid: true}
		got, err := NumericToInt64(n)
		require.NoError(t, err)
		assert.Equal(t, int64(5000), got)
	})

	t.Run("negative exponent truncates", func(t *testing.T) {
		n := pgtype.Numeric{Int: big.NewInt(12345), Exp: -2, Valid: true}
		got, err := NumericToInt64(n)
		require.NoError(t, err)
		assert.Equal(t, int64(123), got)
	})

	t.Run("NULL is an error", func(t *testing.T) {
		_, err := NumericToInt64(pgtype.Numeric{})
		assert.Error(t, err)
	})

	t.Run("overflow is an error", func(t *testing.T) {
		huge := new(big.Int).Lsh(big.NewInt(1), 80)
		_, err := NumericToInt64(pgtype.Numeric{Int: huge, Exp: 0, Valid: true})
		assert.Error(t, err)
	})
}

func TestNumericToDecimal(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		for _, s := range []string{"0", "10.5", "-3.25", "0.01"} {
			d := decimal.RequireFromString(s)
			got, err := NumericToDecimal(DecimalToNumeric(d))
			require.NoError(t, err)
			assert.True(t, d.Equal(got), "want %s got %s", d, got)
		}
	})

	t.Run("NULL is an error", func(t *testing.T) {
		_, err := NumericToDecimal(pgtype.Numeric{})
		assert.Error(t, err)
	})

	t.Run("NaN is an error", func(t *testing.T) {
		_, err := NumericToDecimal(pgtype.Numeric{NaN: true, Valid: true})
		assert.Error(t, err)
	})
}
