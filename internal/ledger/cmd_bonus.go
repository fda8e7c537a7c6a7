package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spinhall/platform/internal/domain"
)

// ExecuteBonusCredit credits bonus cash tied to a grant. Called by the
// activation flow after the grant row exists, in the same transaction.
func (e *Engine) ExecuteBonusCredit(ctx context.Context, tx pgx.Tx, params domain.BonusCreditParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, err
	}

	// Lock
	balance, err := e.LockBalanceForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("bonus credit: %w", err)
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

	// Ad-hoc bonus credits carry no grant.
	meta := params.Metadata
	if params.GrantID != uuid.Nil {
		meta = mergeMeta(meta, map[string]interface{}{
			"grantId": params.GrantID.String(),
		})
	}

	entry, updated, err := e.PostEntry(ctx, tx, domain.PostEntryParams{
		UserID:                params.UserID,
		Type:                  domain.TxBonus,
		Amount:                params.Amount,
		Delta:                 params.Amount,
		ExternalTransactionID: strPtr(params.ExternalTransactionID),
		Metadata:              meta,
	}, balance.TotalBalance)
	if err != nil {
		return nil, fmt.Errorf("bonus credit post: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, Balance: updated}, nil
}

// ExecuteBonusForfeit removes a cancelled grant's bonus cash from the balance.
// The deduction is clamped at zero: losses may already have consumed part or
// all of the bonus portion, and cancellation must never drive the total
// negative.
func (e *Engine) ExecuteBonusForfeit(ctx context.Context, tx pgx.Tx, params domain.BonusForfeitParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, err
	}

	// Lock
	balance, err := e.LockBalanceForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("bonus forfeit: %w", err)
	}

	meta := mergeMeta(params.Metadata, map[string]interface{}{
		"grantId": params.GrantID.String(),
		"forfeit": true,
	})

	entry, updated, err := e.PostEntry(ctx, tx, domain.PostEntryParams{
		UserID:      params.UserID,
		Type:        domain.TxBonus,
		Amount:      params.Amount,
		Delta:       -params.Amount,
		ClampAtZero: true,
		Metadata:    meta,
	}, balance.TotalBalance)
	if err != nil {
		return nil, fmt.Errorf("bonus forfeit post: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, Balance: updated}, nil
}
