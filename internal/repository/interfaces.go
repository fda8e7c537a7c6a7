package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/spinhall/platform/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// BalanceRepository provides access to the balances table.
type BalanceRepository interface {
	// FindByUser returns a user's balance row, or nil if none exists yet.
	FindByUser(ctx context.Context, db DBTX, userID uuid.UUID) (*domain.Balance, error)

	// LockForUpdate creates the balance row if absent, then acquires a
	// row-level lock (SELECT FOR UPDATE) and returns it. Must be called
	// within a transaction; it serializes all mutations for one user.
	LockForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Balance, error)

	// ApplyDelta atomically adjusts total_balance using server-side
	// arithmetic. With clampAtZero the result floors at zero instead of
	// violating the non-negativity constraint.
	ApplyDelta(ctx context.Context, tx pgx.Tx, userID uuid.UUID, delta int64, clampAtZero bool) (*domain.Balance, error)
}

// GrantRepository provides access to the bonus_grants table.
type GrantRepository interface {
	// Insert creates a new grant row. Returns the inserted row.
	Insert(ctx context.Context, db DBTX, grant *domain.BonusGrant) (*domain.BonusGrant, error)

	// FindByID returns a grant by id, or nil if not found.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.BonusGrant, error)

	// ListActiveByUser returns the user's active grants, oldest first.
	ListActiveByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.BonusGrant, error)

	// UpdateProgress persists new wagering progress and status for a grant.
	UpdateProgress(ctx context.Context, tx pgx.Tx, id uuid.UUID, progress int64, status domain.GrantStatus) error

	// UpdateStatus transitions a grant's status.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.GrantStatus) error

	// CountActivationsSince counts grants of one promotion created by the
	// user at or after the given instant (daily usage cap checks).
	CountActivationsSince(ctx context.Context, db DBTX, userID, promotionID uuid.UUID, since time.Time) (int, error)
}

// PromotionRepository provides read access to the promotions catalog plus the
// admin management writes.
type PromotionRepository interface {
	// FindByID returns a promotion, or nil if not found.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Promotion, error)

	// ListActive returns all currently active promotions.
	ListActive(ctx context.Context, db DBTX) ([]domain.Promotion, error)

	// ListAll returns every promotion, active or not (admin catalog view).
	ListAll(ctx context.Context, db DBTX) ([]domain.Promotion, error)

	// Insert creates a promotion definition.
	Insert(ctx context.Context, db DBTX, p *domain.Promotion) (*domain.Promotion, error)

	// SetActive toggles a promotion's active flag.
	SetActive(ctx context.Context, db DBTX, id uuid.UUID, active bool) error
}

// TransactionRepository provides access to the append-only transactions table.
type TransactionRepository interface {
	// FindExisting checks the idempotency index for a duplicate transaction.
	// Returns nil if no duplicate is found.
	FindExisting(ctx context.Context, db DBTX, key domain.IdempotencyKey) (*domain.Transaction, error)

	// FindByID returns a transaction by id, or nil if not found.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Transaction, error)

	// Insert appends a ledger entry capturing before/after balances.
	Insert(ctx context.Context, db DBTX, params domain.PostEntryParams, balanceBefore, balanceAfter int64) (*domain.Transaction, error)

	// ListByUser returns transactions for a user, newest first.
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.Transaction, error)

	// ListByUserAsc returns the user's full history oldest first (replay).
	ListByUserAsc(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.Transaction, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the
	// ledger entry it describes).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error
}
