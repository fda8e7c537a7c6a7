package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spinhall/platform/internal/bonus"
	"github.com/spinhall/platform/internal/domain"
	"github.com/spinhall/platform/internal/ledger"
	"github.com/spinhall/platform/internal/repository"
)

// Notifier receives post-commit balance updates for near-real-time delivery.
// The WebSocket hub implements this; a nil notifier disables push.
type Notifier interface {
	BalanceUpdated(userID uuid.UUID, breakdown domain.BalanceBreakdown)
}

// WalletService orchestrates all balance operations. Each mutation runs in a
// single database transaction opened here; the ledger engine and bonus
// tracker do their work inside it.
type WalletService struct {
	pool     *pgxpool.Pool
	engine   *ledger.Engine
	tracker  *bonus.Tracker
	balances repository.BalanceRepository
	grants   repository.GrantRepository
	txRepo   repository.TransactionRepository
	notifier Notifier
	logger   *slog.Logger
}

// NewWalletService creates a WalletService.
func NewWalletService(
	pool *pgxpool.Pool,
	engine *ledger.Engine,
	tracker *bonus.Tracker,
	balances repository.BalanceRepository,
	grants repository.GrantRepository,
	txRepo repository.TransactionRepository,
	notifier Notifier,
	logger *slog.Logger,
) *WalletService {
	return &WalletService{
		pool:     pool,
		engine:   engine,
		tracker:  tracker,
		balances: balances,
		grants:   grants,
		txRepo:   txRepo,
		notifier: notifier,
		logger:   logger,
	}
}

// inTx runs fn in a transaction. Domain errors pass through untouched; any
// other failure is reported as retryable since the transaction rolled back.
func (s *WalletService) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
	if err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return domain.ErrStorageUnavailable(err)
	}
	return nil
}

// GetBalance returns the derived balance breakdown for a user. Users with no
// history get the zero-state breakdown rather than an error. The balance row
// and grant set are read in one repeatable-read transaction so the breakdown
// is internally consistent.
func (s *WalletService) GetBalance(ctx context.Context, userID uuid.UUID) (*domain.BalanceBreakdown, error) {
	var breakdown domain.BalanceBreakdown
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		balance, err := s.balances.FindByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		var total int64
		if balance != nil {
			total = balance.TotalBalance
		}
		grants, err := s.grants.ListActiveByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		breakdown = ledger.ComputeBreakdown(total, grants)
		return nil
	})
	if err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, domain.ErrStorageUnavailable(err)
	}
	return &breakdown, nil
}

// ApplyOperation applies one of the caller-facing operations (bet, win,
// deposit, bonus) and returns the resulting transaction with the new
// breakdown.
func (s *WalletService) ApplyOperation(ctx context.Context, userID uuid.UUID, kind domain.TransactionType, amount int64, externalTxID string, metadata []byte) (*domain.CommandResult, *domain.BalanceBreakdown, error) {
	if err := domain.ValidateOperationKind(kind); err != nil {
		return nil, nil, err
	}

	var result *domain.CommandResult
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		switch kind {
		case domain.TxDeposit:
			result, err = s.engine.ExecuteDeposit(ctx, tx, domain.DepositParams{
				UserID: userID, Amount: amount, ExternalTransactionID: externalTxID, Metadata: metadata,
			})
		case domain.TxBet:
			result, err = s.engine.ExecuteBet(ctx, tx, domain.BetParams{
				UserID: userID, Amount: amount, ExternalTransactionID: externalTxID, Metadata: metadata,
			})
		case domain.TxWin:
			result, err = s.engine.ExecuteWin(ctx, tx, domain.WinParams{
				UserID: userID, Amount: amount, ExternalTransactionID: externalTxID, Metadata: metadata,
			})
		case domain.TxBonus:
			result, err = s.engine.ExecuteBonusCredit(ctx, tx, domain.BonusCreditParams{
				UserID: userID, Amount: amount, ExternalTransactionID: externalTxID, Metadata: metadata,
			})
		}
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	breakdown := s.notifyBalance(ctx, userID)
	s.logger.Info("operation applied",
		"user_id", userID, "kind", kind, "amount", amount, "idempotent", result.Idempotent)
	return result, breakdown, nil
}

// Withdraw debits the withdrawable portion of the user's balance.
func (s *WalletService) Withdraw(ctx context.Context, userID uuid.UUID, amount int64, externalTxID string) (*domain.CommandResult, *domain.BalanceBreakdown, error) {
	var result *domain.CommandResult
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		result, err = s.engine.ExecuteWithdraw(ctx, tx, domain.WithdrawParams{
			UserID: userID, Amount: amount, ExternalTransactionID: externalTxID,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	breakdown := s.notifyBalance(ctx, userID)
	s.logger.Info("withdrawal applied", "user_id", userID, "amount", amount, "idempotent", result.Idempotent)
	return result, breakdown, nil
}

// GetHistory returns the user's most recent transactions, newest first.
func (s *WalletService) GetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Transaction, error) {
	if err := domain.ValidateHistoryLimit(limit); err != nil {
		return nil, err
	}

	txs, err := s.txRepo.ListByUser(ctx, s.pool, userID, limit)
	if err != nil {
		return nil, domain.ErrStorageUnavailable(err)
	}
	return txs, nil
}

// VerifyLedger replays the user's full history from zero and reports the
// invariant checks against the stored balance.
func (s *WalletService) VerifyLedger(ctx context.Context, userID uuid.UUID) (*ledger.ReplayResult, error) {
	var result *ledger.ReplayResult
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		result, err = s.engine.Replay(ctx, tx, s.txRepo, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// notifyBalance recomputes the breakdown after a commit and pushes it to the
// notifier. Failures here never fail the committed operation.
func (s *WalletService) notifyBalance(ctx context.Context, userID uuid.UUID) *domain.BalanceBreakdown {
	breakdown, err := s.GetBalance(ctx, userID)
	if err != nil {
		s.logger.Warn("post-commit balance read failed", "user_id", userID, "error", err)
		return nil
	}
	if s.notifier != nil {
		s.notifier.BalanceUpdated(userID, *breakdown)
	}
	return breakdown
}
