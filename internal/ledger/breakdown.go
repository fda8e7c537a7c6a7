package ledger

import "github.com/spinhall/platform/internal/domain"

// ComputeBreakdown derives the real/bonus/withdrawable split from the stored
// total and the active grant set. The split is never persisted; it is a pure
// function of these two inputs, so any snapshot of them yields a consistent
// view.
//
// Rules:
//   - bonus = min(sum of active grant bonus amounts, total)
//   - real  = total - bonus
//   - availableForWithdrawal = real, or 0 while any grant is active
func ComputeBreakdown(total int64, grants []domain.BonusGrant) domain.BalanceBreakdown {
	var bonusTotal int64
	hasActive := false
	for i := range grants {
		if grants[i].Status == domain.GrantStatusActive {
			hasActive = true
			bonusTotal += grants[i].BonusAmount
		}
	}

	// Losses erode the bonus portion last, so it can never exceed the total.
	if bonusTotal > total {
		bonusTotal = total
	}

	real := total - bonusTotal
	available := real
	if hasActive {
		available = 0
	}

	return domain.BalanceBreakdown{
		TotalBalance:           total,
		BonusBalance:           bonusTotal,
		RealBalance:            real,
		AvailableForWithdrawal: available,
		HasActiveBonus:         hasActive,
	}
}
