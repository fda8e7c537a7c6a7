package bonus

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spinhall/platform/internal/domain"
)

func activeGrant(requirement, progress int64) domain.BonusGrant {
	return domain.BonusGrant{
		ID:                  uuid.New(),
		Status:              domain.GrantStatusActive,
		TurnoverRequirement: requirement,
		WageringProgress:    progress,
	}
}

// --- DistributeWager Tests ---

func TestDistributeWager(t *testing.T) {
	t.Run("single grant partial progress", func(t *testing.T) {
		g := activeGrant(40000, 0)
		allocs := DistributeWager([]domain.BonusGrant{g}, 1500)

		require.Len(t, allocs, 1)
		assert.Equal(t, g.ID, allocs[0].GrantID)
		assert.Equal(t, int64(1500), allocs[0].Credited)
		assert.Equal(t, int64(1500), allocs[0].NewProgress)
		assert.Equal(t, domain.GrantStatusActive, allocs[0].NewStatus)
	})

	t.Run("credit capped at remaining requirement", func(t *testing.T) {
		g := activeGrant(40000, 39000)
		allocs := DistributeWager([]domain.BonusGrant{g}, 5000)

		require.Len(t, allocs, 1)
		assert.Equal(t, int64(1000), allocs[0].Credited)
		assert.Equal(t, int64(40000), allocs[0].NewProgress)
		assert.Equal(t, domain.GrantStatusCompleted, allocs[0].NewStatus)
	})

	t.Run("reaching requirement exactly completes", func(t *testing.T) {
		g := activeGrant(1000, 500)
		allocs := DistributeWager([]domain.BonusGrant{g}, 500)

		require.Len(t, allocs, 1)
		assert.Equal(t, domain.GrantStatusCompleted, allocs[0].NewStatus)
	})

	t.Run("overflow spills to the next grant oldest first", func(t *testing.T) {
		first := activeGrant(1000, 800)
		second := activeGrant(5000, 0)
		allocs := DistributeWager([]domain.BonusGrant{first, second}, 1000)

		require.Len(t, allocs, 2)
		assert.Equal(t, first.ID, allocs[0].GrantID)
		assert.Equal(t, int64(200), allocs[0].Credited)
		assert.Equal(t, domain.GrantStatusCompleted, allocs[0].NewStatus)

		assert.Equal(t, second.ID, allocs[1].GrantID)
		assert.Equal(t, int64(800), allocs[1].Credited)
		assert.Equal(t, domain.GrantStatusActive, allocs[1].NewStatus)
	})

	t.Run("skips non-active grants", func(t *testing.T) {
		done := activeGrant(1000, 1000)
		done.Status = domain.GrantStatusCompleted
		open := activeGrant(5000, 0)

		allocs := DistributeWager([]domain.BonusGrant{done, open}, 300)
		require.Len(t, allocs, 1)
		assert.Equal(t, open.ID, allocs[0].GrantID)
	})

	t.Run("zero stake or no grants", func(t *testing.T) {
		assert.Nil(t, DistributeWager([]domain.BonusGrant{activeGrant(1000, 0)}, 0))
		assert.Nil(t, DistributeWager(nil, 1000))
	})
}

// --- SplitStake Tests ---

func TestSplitStake(t *testing.T) {
	t.Run("real funds cover the stake", func(t *testing.T) {
		bd := domain.BalanceBreakdown{RealBalance: 5000, BonusBalance: 2000}
		real, bonusPart := SplitStake(bd, 3000)
		assert.Equal(t, int64(3000), real)
		assert.Equal(t, int64(0), bonusPart)
	})

	t.Run("bonus covers the shortfall", func(t *testing.T) {
		bd := domain.BalanceBreakdown{RealBalance: 1000, BonusBalance: 4000}
		real, bonusPart := SplitStake(bd, 3000)
		assert.Equal(t, int64(1000), real)
		assert.Equal(t, int64(2000), bonusPart)
	})

	t.Run("no real funds at all", func(t *testing.T) {
		bd := domain.BalanceBreakdown{RealBalance: 0, BonusBalance: 4000}
		real, bonusPart := SplitStake(bd, 2500)
		assert.Equal(t, int64(0), real)
		assert.Equal(t, int64(2500), bonusPart)
	})
}
