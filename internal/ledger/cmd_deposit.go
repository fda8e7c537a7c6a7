package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spinhall/platform/internal/domain"
)

// ExecuteDeposit credits funds to the user's balance.
func (e *Engine) ExecuteDeposit(ctx context.Context, tx pgx.Tx, params domain.DepositParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, err
	}

	// Lock
	balance, err := e.LockBalanceForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
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
		Type:                  domain.TxDeposit,
		Amount:                params.Amount,
		Delta:                 params.Amount,
		ExternalTransactionID: strPtr(params.ExternalTransactionID),
		Metadata:              params.Metadata,
	}, balance.TotalBalance)
	if err != nil {
		return nil, fmt.Errorf("deposit post: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, Balance: updated}, nil
}
