package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spinhall/platform/internal/bonus"
	"github.com/spinhall/platform/internal/domain"
	"github.com/spinhall/platform/internal/repository"
)

// Engine provides the 3 foundational ledger operations:
//  1. LockBalanceForUpdate — row-level pessimistic lock on the balance row
//  2. FindExistingTransaction — idempotency check
//  3. PostEntry — atomic balance delta + append-only insert + outbox event
//
// Every command locks the balance row FIRST and only then reads or writes
// grants, so all per-user state changes are serialized behind one lock.
type Engine struct {
	balances     repository.BalanceRepository
	transactions repository.TransactionRepository
	outbox       repository.OutboxRepository
	tracker      *bonus.Tracker
}

// NewEngine creates a ledger engine with the given repositories.
func NewEngine(
	balances repository.BalanceRepository,
	transactions repository.TransactionRepository,
	outbox repository.OutboxRepository,
	tracker *bonus.Tracker,
) *Engine {
	return &Engine{
		balances:     balances,
		transactions: transactions,
		outbox:       outbox,
		tracker:      tracker,
	}
}

// LockBalanceForUpdate creates the balance row if absent, acquires a row-level
// lock and returns the current row. Must be called within a transaction.
func (e *Engine) LockBalanceForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Balance, error) {
	balance, err := e.balances.LockForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock balance: %w", err)
	}
	return balance, nil
}

// FindExistingTransaction checks if a transaction with the same idempotency key exists.
// Returns nil if no duplicate found.
func (e *Engine) FindExistingTransaction(ctx context.Context, tx pgx.Tx, key domain.IdempotencyKey) (*domain.Transaction, error) {
	existing, err := e.transactions.FindExisting(ctx, tx, key)
	if err != nil {
		return nil, fmt.Errorf("find existing transaction: %w", err)
	}
	return existing, nil
}

// PostEntry atomically applies a signed delta and appends the ledger entry.
// This is the core write primitive all commands delegate to.
//
// Steps:
//  1. Apply the delta with server-side arithmetic (clamped at zero if asked)
//  2. Insert the transaction row with before/after balance snapshot
//  3. Insert the outbox event
//
// All 3 steps run within the caller's transaction.
func (e *Engine) PostEntry(ctx context.Context, tx pgx.Tx, params domain.PostEntryParams, balanceBefore int64) (*domain.Transaction, *domain.Balance, error) {
	updated, err := e.balances.ApplyDelta(ctx, tx, params.UserID, params.Delta, params.ClampAtZero)
	if err != nil {
		return nil, nil, fmt.Errorf("apply delta: %w", err)
	}

	entry, err := e.transactions.Insert(ctx, tx, params, balanceBefore, updated.TotalBalance)
	if err != nil {
		return nil, nil, fmt.Errorf("insert transaction: %w", err)
	}

	event := domain.NewTransactionPostedEvent(entry)
	if err := e.outbox.Insert(ctx, tx, event); err != nil {
		return nil, nil, fmt.Errorf("insert outbox event: %w", err)
	}

	return entry, updated, nil
}

// emitGrantEvents writes a lifecycle outbox event for each grant that just
// completed within the caller's transaction.
func (e *Engine) emitGrantEvents(ctx context.Context, tx pgx.Tx, eventType domain.EventType, grants []domain.BonusGrant) error {
	for i := range grants {
		if err := e.outbox.Insert(ctx, tx, domain.NewGrantEvent(eventType, &grants[i])); err != nil {
			return fmt.Errorf("insert grant event: %w", err)
		}
	}
	return nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func mergeMeta(base json.RawMessage, extra map[string]interface{}) json.RawMessage {
	merged := make(map[string]interface{})
	if len(base) > 0 {
		_ = json.Unmarshal(base, &merged)
	}
	for k, v := range extra {
		merged[k] = v
	}
	out, _ := json.Marshal(merged)
	return out
}
