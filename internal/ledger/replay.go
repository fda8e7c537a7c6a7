package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spinhall/platform/internal/repository"
)

// ReplayResult holds the outcome of a deterministic replay of one user's
// ledger history.
type ReplayResult struct {
	UserID           uuid.UUID        `json:"user_id"`
	TransactionCount int              `json:"transaction_count"`
	ReplayedBalance  int64            `json:"replayed_balance"`
	StoredBalance    int64            `json:"stored_balance"`
	Invariants       []InvariantCheck `json:"invariants"`
	AllPassed        bool             `json:"all_passed"`
}

// InvariantCheck records a single invariant validation.
type InvariantCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Replay folds the signed deltas of the user's full history from zero and
// validates the result against the stored balance row. The read runs under
// the balance lock so concurrent writers cannot skew the comparison.
//
// Invariants:
//  1. Running balance never goes negative at any point in the history
//  2. Each row's before matches the previous row's after (chain continuity)
//  3. Replayed balance equals the stored total (ledger parity)
//  4. Last row's after matches the stored total (snapshot parity)
func (e *Engine) Replay(ctx context.Context, tx pgx.Tx, txRepo repository.TransactionRepository, userID uuid.UUID) (*ReplayResult, error) {
	balance, err := e.LockBalanceForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	history, err := txRepo.ListByUserAsc(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("replay history: %w", err)
	}

	var running int64
	nonNegative := true
	chainOK := true
	var chainDetail string
	for i := range history {
		row := &history[i]
		if row.BalanceBefore != running && chainOK {
			chainOK = false
			chainDetail = fmt.Sprintf("row %s: before=%d, expected %d", row.ID, row.BalanceBefore, running)
		}
		running += row.Delta()
		if running < 0 {
			nonNegative = false
		}
	}
	if chainDetail == "" {
		chainDetail = fmt.Sprintf("%d rows", len(history))
	}

	lastParity := true
	lastDetail := "no transactions (empty ledger)"
	if n := len(history); n > 0 {
		lastParity = history[n-1].BalanceAfter == balance.TotalBalance
		lastDetail = fmt.Sprintf("lastTx=%d stored=%d", history[n-1].BalanceAfter, balance.TotalBalance)
	}

	checks := []InvariantCheck{
		{Name: "balance_non_negative", Passed: nonNegative, Detail: fmt.Sprintf("final=%d", running)},
		{Name: "chain_continuity", Passed: chainOK, Detail: chainDetail},
		{Name: "ledger_parity", Passed: running == balance.TotalBalance, Detail: fmt.Sprintf("replayed=%d stored=%d", running, balance.TotalBalance)},
		{Name: "snapshot_parity", Passed: lastParity, Detail: lastDetail},
	}

	allPassed := true
	for _, c := range checks {
		if !c.Passed {
			allPassed = false
		}
	}

	return &ReplayResult{
		UserID:           userID,
		TransactionCount: len(history),
		ReplayedBalance:  running,
		StoredBalance:    balance.TotalBalance,
		Invariants:       checks,
		AllPassed:        allPassed,
	}, nil
}
