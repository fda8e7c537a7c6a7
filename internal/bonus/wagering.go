package bonus

import (
	"github.com/google/uuid"

	"github.com/spinhall/platform/internal/domain"
)

// WagerAllocation is the result of distributing one bet's stake onto a grant.
type WagerAllocation struct {
	GrantID     uuid.UUID
	NewProgress int64
	NewStatus   domain.GrantStatus
	Credited    int64
}

// DistributeWager spreads a bet's wagering credit across the active grants,
// oldest first, up to each grant's remaining requirement. Progress only ever
// increases. A grant whose progress reaches its requirement completes.
//
// Policy: the full bet amount counts toward wagering regardless of how the
// stake notionally splits between real and bonus funds. The split is recorded
// in transaction metadata for audit but never changes the credit.
func DistributeWager(grants []domain.BonusGrant, stake int64) []WagerAllocation {
	if stake <= 0 || len(grants) == 0 {
		return nil
	}

	allocations := make([]WagerAllocation, 0, len(grants))
	remaining := stake
	for i := range grants {
		if remaining <= 0 {
			break
		}
		g := &grants[i]
		if g.Status != domain.GrantStatusActive {
			continue
		}

		credit := g.RemainingRequirement()
		if credit > remaining {
			credit = remaining
		}
		if credit == 0 {
			continue
		}

		progress := g.WageringProgress + credit
		status := domain.GrantStatusActive
		if progress >= g.TurnoverRequirement {
			status = domain.GrantStatusCompleted
		}
		allocations = append(allocations, WagerAllocation{
			GrantID:     g.ID,
			NewProgress: progress,
			NewStatus:   status,
			Credited:    credit,
		})
		remaining -= credit
	}
	return allocations
}

// SplitStake reports how a bet's stake is consumed: real funds first, then
// bonus funds. Informational only (audit metadata); see DistributeWager for
// the wagering-credit policy.
func SplitStake(breakdown domain.BalanceBreakdown, stake int64) (realStake, bonusStake int64) {
	realStake = stake
	if realStake > breakdown.RealBalance {
		realStake = breakdown.RealBalance
		bonusStake = stake - realStake
	}
	return realStake, bonusStake
}
