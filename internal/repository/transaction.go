package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/spinhall/platform/internal/domain"
	"github.com/spinhall/platform/internal/infra"
)

type transactionRepo struct{}

// NewTransactionRepository returns a pgx-backed TransactionRepository.
func NewTransactionRepository() TransactionRepository {
	return &transactionRepo{}
}

const transactionColumns = `id, user_id, type, amount, balance_before, balance_after,
	external_transaction_id, metadata, created_at`

func (r *transactionRepo) FindExisting(ctx context.Context, db DBTX, key domain.IdempotencyKey) (*domain.Transaction, error) {
	row := db.QueryRow(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = $1 AND external_transaction_id = $2`,
		key.UserID, key.ExternalTransactionID)
	return scanTransaction(row)
}

func (r *transactionRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Transaction, error) {
	row := db.QueryRow(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE id = $1`, id)
	return scanTransaction(row)
}

func (r *transactionRepo) Insert(ctx context.Context, db DBTX, params domain.PostEntryParams, balanceBefore, balanceAfter int64) (*domain.Transaction, error) {
	meta := params.Metadata
	if meta == nil {
		meta = json.RawMessage(`{}`)
	}

	row := db.QueryRow(ctx, `
		INSERT INTO transactions
		  (user_id, type, amount, balance_before, balance_after,
		   external_transaction_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+transactionColumns,
		params.UserID,
		string(params.Type),
		infra.Int64ToNumeric(params.Amount),
		infra.Int64ToNumeric(balanceBefore),
		infra.Int64ToNumeric(balanceAfter),
		params.ExternalTransactionID,
		meta,
	)
	return scanTransaction(row)
}

func (r *transactionRepo) ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.Transaction, error) {
	rows, err := db.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func (r *transactionRepo) ListByUserAsc(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.Transaction, error) {
	rows, err := db.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query transaction history: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	var amountNum, beforeNum, afterNum pgtype.Numeric
	err := row.Scan(&tx.ID, &tx.UserID, &tx.Type,
		&amountNum, &beforeNum, &afterNum,
		&tx.ExternalTransactionID, &tx.Metadata, &tx.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}

	if tx.Amount, err = infra.NumericToInt64(amountNum); err != nil {
		return nil, fmt.Errorf("convert amount: %w", err)
	}
	if tx.BalanceBefore, err = infra.NumericToInt64(beforeNum); err != nil {
		return nil, fmt.Errorf("convert balance_before: %w", err)
	}
	if tx.BalanceAfter, err = infra.NumericToInt64(afterNum); err != nil {
		return nil, fmt.Errorf("convert balance_after: %w", err)
	}
	return &tx, nil
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var amountNum, beforeNum, afterNum pgtype.Numeric
		err := rows.Scan(&tx.ID, &tx.UserID, &tx.Type,
			&amountNum, &beforeNum, &afterNum,
			&tx.ExternalTransactionID, &tx.Metadata, &tx.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		if tx.Amount, err = infra.NumericToInt64(amountNum); err != nil {
			return nil, err
		}
		if tx.BalanceBefore, err = infra.NumericToInt64(beforeNum); err != nil {
			return nil, err
		}
		if tx.BalanceAfter, err = infra.NumericToInt64(afterNum); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
