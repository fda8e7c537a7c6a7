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

// PromotionService handles promotion activation and cancellation plus the
// admin catalog management.
type PromotionService struct {
	pool       *pgxpool.Pool
	engine     *ledger.Engine
	tracker    *bonus.Tracker
	promotions repository.PromotionRepository
	grants     repository.GrantRepository
	txRepo     repository.TransactionRepository
	outbox     repository.OutboxRepository
	wallet     *WalletService
	logger     *slog.Logger
}

// NewPromotionService creates a PromotionService.
func NewPromotionService(
	pool *pgxpool.Pool,
	engine *ledger.Engine,
	tracker *bonus.Tracker,
	promotions repository.PromotionRepository,
	grants repository.GrantRepository,
	txRepo repository.TransactionRepository,
	outbox repository.OutboxRepository,
	wallet *WalletService,
	logger *slog.Logger,
) *PromotionService {
	return &PromotionService{
		pool:       pool,
		engine:     engine,
		tracker:    tracker,
		promotions: promotions,
		grants:     grants,
		txRepo:     txRepo,
		outbox:     outbox,
		wallet:     wallet,
		logger:     logger,
	}
}

// ActivationResult is returned from a successful promotion activation.
type ActivationResult struct {
	Grant     *domain.BonusGrant       `json:"grant"`
	Breakdown *domain.BalanceBreakdown `json:"balance"`
}

// ActivatePromotion creates a bonus grant from a qualifying deposit and
// credits the bonus cash, all in one transaction. The balance row is locked
// first, so activation serializes with bets, wins and withdrawals for the
// same user.
func (s *PromotionService) ActivatePromotion(ctx context.Context, userID, promotionID, depositID uuid.UUID) (*ActivationResult, error) {
	var grant *domain.BonusGrant
	err := s.wallet.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.engine.LockBalanceForUpdate(ctx, tx, userID); err != nil {
			return err
		}

		promo, err := s.promotions.FindByID(ctx, tx, promotionID)
		if err != nil {
			return err
		}
		if promo == nil {
			return domain.ErrNotFound("promotion", promotionID.String())
		}

		deposit, err := s.txRepo.FindByID(ctx, tx, depositID)
		if err != nil {
			return err
		}
		if deposit == nil || deposit.UserID != userID {
			return domain.ErrNotFound("deposit", depositID.String())
		}
		if deposit.Type != domain.TxDeposit {
			return domain.ErrValidation("source transaction is not a deposit")
		}

		grant, err = s.tracker.GrantBonus(ctx, tx, bonus.GrantParams{
			UserID:          userID,
			Promotion:       promo,
			SourceDepositID: depositID,
			DepositAmount:   deposit.Amount,
		})
		if err != nil {
			return err
		}

		if err := s.outbox.Insert(ctx, tx, domain.NewGrantEvent(domain.EventGrantCreated, grant)); err != nil {
			return err
		}
		// Zero-requirement grants complete immediately.
		if grant.Status == domain.GrantStatusCompleted {
			if err := s.outbox.Insert(ctx, tx, domain.NewGrantEvent(domain.EventGrantCompleted, grant)); err != nil {
				return err
			}
		}

		if grant.BonusAmount > 0 {
			_, err = s.engine.ExecuteBonusCredit(ctx, tx, domain.BonusCreditParams{
				UserID:                userID,
				Amount:                grant.BonusAmount,
				GrantID:               grant.ID,
				ExternalTransactionID: "grant_" + grant.ID.String(),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	breakdown := s.wallet.notifyBalance(ctx, userID)
	s.logger.Info("promotion activated",
		"user_id", userID, "promotion_id", promotionID, "grant_id", grant.ID,
		"bonus_amount", grant.BonusAmount, "turnover_requirement", grant.TurnoverRequirement)
	return &ActivationResult{Grant: grant, Breakdown: breakdown}, nil
}

// CancelPromotion cancels an active grant and removes the bonus funds still
// attributable to it. The forfeit is computed as the drop in the derived
// bonus portion once the grant leaves the active set, so real funds are never
// touched and an eroded bonus forfeits only what remains.
func (s *PromotionService) CancelPromotion(ctx context.Context, userID, grantID uuid.UUID) (*ActivationResult, error) {
	var grant *domain.BonusGrant
	err := s.wallet.inTx(ctx, func(tx pgx.Tx) error {
		balance, err := s.engine.LockBalanceForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}

		before, err := s.tracker.ActiveGrants(ctx, tx, userID)
		if err != nil {
			return err
		}

		grant, err = s.tracker.Cancel(ctx, tx, userID, grantID)
		if err != nil {
			return err
		}

		after := make([]domain.BonusGrant, 0, len(before))
		for i := range before {
			if before[i].ID != grantID {
				after = append(after, before[i])
			}
		}
		forfeit := ledger.ComputeBreakdown(balance.TotalBalance, before).BonusBalance -
			ledger.ComputeBreakdown(balance.TotalBalance, after).BonusBalance

		if forfeit > 0 {
			_, err = s.engine.ExecuteBonusForfeit(ctx, tx, domain.BonusForfeitParams{
				UserID:  userID,
				Amount:  forfeit,
				GrantID: grant.ID,
			})
			if err != nil {
				return err
			}
		}

		return s.outbox.Insert(ctx, tx, domain.NewGrantEvent(domain.EventGrantCancelled, grant))
	})
	if err != nil {
		return nil, err
	}

	breakdown := s.wallet.notifyBalance(ctx, userID)
	s.logger.Info("promotion cancelled", "user_id", userID, "grant_id", grantID)
	return &ActivationResult{Grant: grant, Breakdown: breakdown}, nil
}

// ListActivePromotions returns the promotion catalog entries open for
// activation.
func (s *PromotionService) ListActivePromotions(ctx context.Context) ([]domain.Promotion, error) {
	promos, err := s.promotions.ListActive(ctx, s.pool)
	if err != nil {
		return nil, domain.ErrStorageUnavailable(err)
	}
	return promos, nil
}

// ListAllPromotions returns every promotion, including inactive ones (admin).
func (s *PromotionService) ListAllPromotions(ctx context.Context) ([]domain.Promotion, error) {
	promos, err := s.promotions.ListAll(ctx, s.pool)
	if err != nil {
		return nil, domain.ErrStorageUnavailable(err)
	}
	return promos, nil
}

// ListGrants returns the user's active grants with their wagering progress.
func (s *PromotionService) ListGrants(ctx context.Context, userID uuid.UUID) ([]domain.BonusGrant, error) {
	grants, err := s.grants.ListActiveByUser(ctx, s.pool, userID)
	if err != nil {
		return nil, domain.ErrStorageUnavailable(err)
	}
	return grants, nil
}

// CreatePromotion adds a promotion definition to the catalog (admin).
func (s *PromotionService) CreatePromotion(ctx context.Context, p *domain.Promotion) (*domain.Promotion, error) {
	if p.Name == "" || p.Code == "" {
		return nil, domain.ErrValidation("promotion name and code are required")
	}
	if p.Terms == nil {
		return nil, domain.ErrValidation("promotion bonus terms are required")
	}
	if p.TurnoverMultiplier.IsNegative() {
		return nil, domain.ErrValidation("turnover multiplier must not be negative")
	}

	created, err := s.promotions.Insert(ctx, s.pool, p)
	if err != nil {
		return nil, domain.ErrStorageUnavailable(err)
	}
	s.logger.Info("promotion created", "promotion_id", created.ID, "code", created.Code)
	return created, nil
}

// SetPromotionActive toggles a promotion's active flag (admin).
func (s *PromotionService) SetPromotionActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.promotions.SetActive(ctx, s.pool, id, active); err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return domain.ErrStorageUnavailable(err)
	}
	return nil
}
