package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spinhall/platform/internal/domain"
)

// ExecuteWin credits a game win to the user's balance. Wins never advance
// wagering progress; only stakes do.
func (e *Engine) ExecuteWin(ctx context.Context, tx pgx.Tx, params domain.WinParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, err
	}

	// Lock
	balance, err := e.LockBalanceForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("win: %w", err)
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

	entry, updated, err := e.PostEntry(ctx, tx, domain.PostEntryParams{
		UserID:                params.UserID,
		Type:                  domain.TxWin,
		Amount:                params.Amount,
		Delta:                 params.Amount,
		ExternalTransactionID: strPtr(params.ExternalTransactionID),
		Metadata:              params.Metadata,
	}, balance.TotalBalance)
	if err != nil {
		return nil, fmt.Errorf("win post: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, Balance: updated}, nil
}
