package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spinhall/platform/internal/domain"
)

// ExecuteWithdraw debits a withdrawal against the withdrawable portion of the
// balance. While any grant is active nothing is withdrawable, so the bonus
// funds stay locked until wagering completes or the grant is cancelled.
func (e *Engine) ExecuteWithdraw(ctx context.Context, tx pgx.Tx, params domain.WithdrawParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, err
	}

	// Lock
	balance, err := e.LockBalanceForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("withdraw: %w", err)
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

	grants, err := e.tracker.ActiveGrants(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("withdraw grants: %w", err)
	}
	breakdown := ComputeBreakdown(balance.TotalBalance, grants)
	if breakdown.AvailableForWithdrawal < params.Amount {
		return nil, domain.ErrInsufficientBalance()
	}

	entry, updated, err := e.PostEntry(ctx, tx, domain.PostEntryParams{
		UserID:                params.UserID,
		Type:                  domain.TxWithdrawal,
		Amount:                params.Amount,
		Delta:                 -params.Amount,
		ExternalTransactionID: strPtr(params.ExternalTransactionID),
		Metadata:              params.Metadata,
	}, balance.TotalBalance)
	if err != nil {
		return nil, fmt.Errorf("withdraw post: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, Balance: updated}, nil
}
