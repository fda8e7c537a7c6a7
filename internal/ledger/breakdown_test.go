package ledger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spinhall/platform/internal/domain"
)

// --- Breakdown Tests ---

func TestComputeBreakdown(t *testing.T) {
	t.Run("no grants", func(t *testing.T) {
		bd := ComputeBreakdown(10000, nil)
		assert.Equal(t, int64(10000), bd.TotalBalance)
		assert.Equal(t, int64(0), bd.BonusBalance)
		assert.Equal(t, int64(10000), bd.RealBalance)
		assert.Equal(t, int64(10000), bd.AvailableForWithdrawal)
		assert.False(t, bd.HasActiveBonus)
	})

	t.Run("active grant locks withdrawal", func(t *testing.T) {
		grants := []domain.BonusGrant{
			{Status: domain.GrantStatusActive, BonusAmount: 2000},
		}
		bd := ComputeBreakdown(7000, grants)
		assert.Equal(t, int64(2000), bd.BonusBalance)
		assert.Equal(t, int64(5000), bd.RealBalance)
		assert.Equal(t, int64(0), bd.AvailableForWithdrawal)
		assert.True(t, bd.HasActiveBonus)
	})

	t.Run("multiple active grants sum", func(t *testing.T) {
		grants := []domain.BonusGrant{
			{Status: domain.GrantStatusActive, BonusAmount: 2000},
			{Status: domain.GrantStatusActive, BonusAmount: 1500},
		}
		bd := ComputeBreakdown(10000, grants)
		assert.Equal(t, int64(3500), bd.BonusBalance)
		assert.Equal(t, int64(6500), bd.RealBalance)
	})

	t.Run("terminal grants are ignored", func(t *testing.T) {
		grants := []domain.BonusGrant{
			{Status: domain.GrantStatusCompleted, BonusAmount: 2000},
			{Status: domain.GrantStatusCancelled, BonusAmount: 1500},
		}
		bd := ComputeBreakdown(10000, grants)
		assert.Equal(t, int64(0), bd.BonusBalance)
		assert.Equal(t, int64(10000), bd.AvailableForWithdrawal)
		assert.False(t, bd.HasActiveBonus)
	})

	t.Run("losses erode bonus last", func(t *testing.T) {
		grants := []domain.BonusGrant{
			{Status: domain.GrantStatusActive, BonusAmount: 5000},
		}
		bd := ComputeBreakdown(3000, grants)
		assert.Equal(t, int64(3000), bd.BonusBalance, "bonus capped at total")
		assert.Equal(t, int64(0), bd.RealBalance)
		assert.Equal(t, int64(0), bd.AvailableForWithdrawal)
	})

	t.Run("zero total", func(t *testing.T) {
		grants := []domain.BonusGrant{
			{Status: domain.GrantStatusActive, BonusAmount: 5000},
		}
		bd := ComputeBreakdown(0, grants)
		assert.Equal(t, int64(0), bd.BonusBalance)
		assert.Equal(t, int64(0), bd.RealBalance)
		assert.True(t, bd.HasActiveBonus)
	})
}

// --- Helper Tests ---

func TestStrPtr(t *testing.T) {
	assert.Nil(t, strPtr(""))

	p := strPtr("ext-1")
	require.NotNil(t, p)
	assert.Equal(t, "ext-1", *p)
}

func TestMergeMeta(t *testing.T) {
	t.Run("extra over base", func(t *testing.T) {
		base := json.RawMessage(`{"gameId":"g1","realStake":100}`)
		out := mergeMeta(base, map[string]interface{}{"realStake": 50, "bonusStake": 50})

		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(out, &m))
		assert.Equal(t, "g1", m["gameId"])
		assert.Equal(t, float64(50), m["realStake"])
		assert.Equal(t, float64(50), m["bonusStake"])
	})

	t.Run("nil base", func(t *testing.T) {
		out := mergeMeta(nil, map[string]interface{}{"forfeit": true})

		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(out, &m))
		assert.Equal(t, true, m["forfeit"])
	})
}
