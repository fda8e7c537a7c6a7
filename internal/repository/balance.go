package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/spinhall/platform/internal/domain"
	"github.com/spinhall/platform/internal/infra"
)

type balanceRepo struct{}

// NewBalanceRepository returns a pgx-backed BalanceRepository.
func NewBalanceRepository() BalanceRepository {
	return &balanceRepo{}
}

func (r *balanceRepo) FindByUser(ctx context.Context, db DBTX, userID uuid.UUID) (*domain.Balance, error) {
	row := db.QueryRow(ctx, `
		SELECT user_id, total_balance, created_at, updated_at
		FROM balances WHERE user_id = $1`, userID)
	return scanBalance(row)
}

// LockForUpdate lazily creates the zero-balance row, then takes the per-user
// row lock that serializes every mutation for this user.
func (r *balanceRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Balance, error) {
	_, err := tx.Exec(ctx, `
		INSERT INTO balances (user_id, total_balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return nil, fmt.Errorf("ensure balance row: %w", err)
	}

	row := tx.QueryRow(ctx, `
		SELECT user_id, total_balance, created_at, updated_at
		FROM balances WHERE user_id = $1 FOR UPDATE`, userID)
	return scanBalance(row)
}

// ApplyDelta uses server-side arithmetic so the update composes with the row
// lock rather than racing a read-then-write.
func (r *balanceRepo) ApplyDelta(ctx context.Context, tx pgx.Tx, userID uuid.UUID, delta int64, clampAtZero bool) (*domain.Balance, error) {
	expr := "total_balance + $1"
	if clampAtZero {
		expr = "GREATEST(total_balance + $1, 0)"
	}
	query := fmt.Sprintf(`
		UPDATE balances SET total_balance = %s, updated_at = now()
		WHERE user_id = $2
		RETURNING user_id, total_balance, created_at, updated_at`, expr)

	row := tx.QueryRow(ctx, query, infra.Int64ToNumeric(delta), userID)
	return scanBalance(row)
}

func scanBalance(row pgx.Row) (*domain.Balance, error) {
	var b domain.Balance
	var totalNum pgtype.Numeric
	err := row.Scan(&b.UserID, &totalNum, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan balance: %w", err)
	}

	b.TotalBalance, err = infra.NumericToInt64(totalNum)
	if err != nil {
		return nil, fmt.Errorf("convert total_balance: %w", err)
	}
	return &b, nil
}
