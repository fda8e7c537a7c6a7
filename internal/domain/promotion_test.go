package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// --- BonusTerms Tests ---

func TestPercentageBonus(t *testing.T) {
	t.Run("percentage of deposit", func(t *testing.T) {
		terms := PercentageBonus{Percent: decimal.NewFromInt(100)}
		assert.Equal(t, int64(5000), terms.CashAmount(5000))
	})

	t.Run("fractional result floors", func(t *testing.T) {
		terms := PercentageBonus{Percent: decimal.NewFromInt(33)}
		// 33% of 1.00 is 0.33, of 0.01 is 0.0033 which floors to 0.
		assert.Equal(t, int64(33), terms.CashAmount(100))
		assert.Equal(t, int64(0), terms.CashAmount(1))
	})

	t.Run("cap applies", func(t *testing.T) {
		terms := PercentageBonus{Percent: decimal.NewFromInt(100), Cap: 20000}
		assert.Equal(t, int64(20000), terms.CashAmount(50000))
		assert.Equal(t, int64(10000), terms.CashAmount(10000))
	})

	t.Run("zero cap means uncapped", func(t *testing.T) {
		terms := PercentageBonus{Percent: decimal.NewFromInt(50)}
		assert.Equal(t, int64(500000), terms.CashAmount(1000000))
	})
}

func TestFlatCashback(t *testing.T) {
	terms := FlatCashback{Value: 1500}
	assert.Equal(t, int64(1500), terms.CashAmount(100))
	assert.Equal(t, int64(1500), terms.CashAmount(1000000))
}

func TestFreeSpins(t *testing.T) {
	terms := FreeSpins{Count: 50}
	assert.Equal(t, int64(0), terms.CashAmount(10000))
}

// --- Turnover Requirement Tests ---

func TestTurnoverRequirementFor(t *testing.T) {
	t.Run("deposit plus bonus basis", func(t *testing.T) {
		p := Promotion{
			TurnoverMultiplier: decimal.NewFromInt(10),
			TurnoverBasis:      TurnoverDepositPlusBonus,
		}
		assert.Equal(t, int64(40000), p.TurnoverRequirementFor(2000, 2000))
	})

	t.Run("bonus only basis", func(t *testing.T) {
		p := Promotion{
			TurnoverMultiplier: decimal.NewFromInt(10),
			TurnoverBasis:      TurnoverBonusOnly,
		}
		assert.Equal(t, int64(20000), p.TurnoverRequirementFor(2000, 2000))
	})

	t.Run("fractional multiplier floors", func(t *testing.T) {
		p := Promotion{
			TurnoverMultiplier: decimal.RequireFromString("2.5"),
			TurnoverBasis:      TurnoverBonusOnly,
		}
		assert.Equal(t, int64(252), p.TurnoverRequirementFor(0, 101))
	})
}

// --- Schedule Tests ---

func TestScheduleContains(t *testing.T) {
	// Friday 2026-01-02 18:30 UTC.
	friday := time.Date(2026, 1, 2, 18, 30, 0, 0, time.UTC)

	t.Run("zero schedule allows anything", func(t *testing.T) {
		assert.True(t, Schedule{}.Contains(friday))
	})

	t.Run("day restriction", func(t *testing.T) {
		s := Schedule{DaysOfWeek: []time.Weekday{time.Friday, time.Saturday}}
		assert.True(t, s.Contains(friday))

		s = Schedule{DaysOfWeek: []time.Weekday{time.Monday}}
		assert.False(t, s.Contains(friday))
	})

	t.Run("time window", func(t *testing.T) {
		s := Schedule{WindowStart: "18:00", WindowEnd: "22:00"}
		assert.True(t, s.Contains(friday))

		s = Schedule{WindowStart: "19:00"}
		assert.False(t, s.Contains(friday))

		s = Schedule{WindowEnd: "18:30"}
		assert.False(t, s.Contains(friday), "window end is exclusive")
	})

	t.Run("timezone shifts the local day", func(t *testing.T) {
		// 18:30 UTC Friday is already Saturday 03:30 in Tokyo.
		s := Schedule{
			DaysOfWeek: []time.Weekday{time.Saturday},
			Timezone:   "Asia/Tokyo",
		}
		assert.True(t, s.Contains(friday))

		s.DaysOfWeek = []time.Weekday{time.Friday}
		assert.False(t, s.Contains(friday))
	})
}
