package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spinhall/platform/internal/bonus"
	"github.com/spinhall/platform/internal/domain"
)

// ExecuteBet deducts the stake from the user's balance and credits the full
// stake toward active wagering requirements, oldest grant first. The notional
// real/bonus split of the stake is recorded in metadata for audit.
func (e *Engine) ExecuteBet(ctx context.Context, tx pgx.Tx, params domain.BetParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, err
	}

	// Lock
	balance, err := e.LockBalanceForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("bet: %w", err)
	}

	// Idempotency check
	if params.ExternalTransactionID != "" {
		existing, err := e.FindExistingTransaction(ctx, tx, domain.IdempotencyKey{
			UserID:                params.UserID,
			ExternalTransactionID: params.ExternalTransactionID,
		})
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &domain.CommandResult{Transaction: existing, Balance: balance, Idempotent: true}, nil
		}
	}

	if balance.TotalBalance < params.Amount {
		return nil, domain.ErrInsufficientBalance()
	}

	// Grants are read under the balance lock, so the split and the wagering
	// credit see the same snapshot.
	grants, err := e.tracker.ActiveGrants(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("bet grants: %w", err)
	}
	breakdown := ComputeBreakdown(balance.TotalBalance, grants)
	realStake, bonusStake := bonus.SplitStake(breakdown, params.Amount)

	meta := mergeMeta(params.Metadata, map[string]interface{}{
		"realStake":  realStake,
		"bonusStake": bonusStake,
	})

	entry, updated, err := e.PostEntry(ctx, tx, domain.PostEntryParams{
		UserID:                params.UserID,
		Type:                  domain.TxBet,
		Amount:                params.Amount,
		Delta:                 -params.Amount,
		ExternalTransactionID: strPtr(params.ExternalTransactionID),
		Metadata:              meta,
	}, balance.TotalBalance)
	if err != nil {
		return nil, fmt.Errorf("bet post: %w", err)
	}

	touched, err := e.tracker.RecordWager(ctx, tx, params.UserID, params.Amount)
	if err != nil {
		return nil, fmt.Errorf("bet wagering: %w", err)
	}
	var completed []domain.BonusGrant
	for i := range touched {
		if touched[i].Status == domain.GrantStatusCompleted {
			completed = append(completed, touched[i])
		}
	}
	if err := e.emitGrantEvents(ctx, tx, domain.EventGrantCompleted, completed); err != nil {
		return nil, fmt.Errorf("bet grant events: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, Balance: updated}, nil
}
