package bonus

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spinhall/platform/internal/domain"
	"github.com/spinhall/platform/internal/repository"
)

// Tracker owns the bonus-grant lifecycle: eligibility, creation, wagering
// progress, and cancellation. Every method runs inside the caller's
// transaction while the user's balance row is locked, so grant reads and
// writes are serialized per user.
type Tracker struct {
	grants     repository.GrantRepository
	promotions repository.PromotionRepository
	now        func() time.Time
}

// NewTracker creates a Tracker backed by the given repositories.
func NewTracker(grants repository.GrantRepository, promotions repository.PromotionRepository) *Tracker {
	return &Tracker{grants: grants, promotions: promotions, now: time.Now}
}

// ActiveGrants returns the user's active grants, oldest first.
func (t *Tracker) ActiveGrants(ctx context.Context, db repository.DBTX, userID uuid.UUID) ([]domain.BonusGrant, error) {
	return t.grants.ListActiveByUser(ctx, db, userID)
}

// GrantParams carries the inputs for creating a grant from a promotion
// activation.
type GrantParams struct {
	UserID          uuid.UUID
	Promotion       *domain.Promotion
	SourceDepositID uuid.UUID
	DepositAmount   int64
}

// GrantBonus validates eligibility and creates the grant for a qualifying
// deposit. A grant whose turnover requirement works out to zero is created
// already completed; its bonus cash is unrestricted from the start.
func (t *Tracker) GrantBonus(ctx context.Context, tx pgx.Tx, params GrantParams) (*domain.BonusGrant, error) {
	p := params.Promotion
	now := t.now()

	if err := CheckEligibility(p, params.DepositAmount, now); err != nil {
		return nil, err
	}
	if p.MaxUsagePerDay > 0 {
		count, err := t.grants.CountActivationsSince(ctx, tx, params.UserID, p.ID, DayStart(p, now))
		if err != nil {
			return nil, fmt.Errorf("count activations: %w", err)
		}
		if count >= p.MaxUsagePerDay {
			return nil, domain.ErrIneligiblePromotion(
				fmt.Sprintf("daily activation limit of %d reached", p.MaxUsagePerDay))
		}
	}

	bonusAmount := p.BonusAmountFor(params.DepositAmount)
	requirement := p.TurnoverRequirementFor(params.DepositAmount, bonusAmount)

	status := domain.GrantStatusActive
	if requirement <= 0 {
		requirement = 0
		status = domain.GrantStatusCompleted
	}

	grant := &domain.BonusGrant{
		UserID:              params.UserID,
		PromotionID:         p.ID,
		SourceDepositID:     params.SourceDepositID,
		BonusAmount:         bonusAmount,
		TurnoverRequirement: requirement,
		WageringProgress:    0,
		Status:              status,
	}
	return t.grants.Insert(ctx, tx, grant)
}

// RecordWager credits a bet's stake toward the user's active grants and
// persists the new progress. It returns the grants it touched with their
// updated progress and status; callers emit completion events from these.
func (t *Tracker) RecordWager(ctx context.Context, tx pgx.Tx, userID uuid.UUID, stake int64) ([]domain.BonusGrant, error) {
	grants, err := t.grants.ListActiveByUser(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("list active grants: %w", err)
	}

	allocations := DistributeWager(grants, stake)
	if len(allocations) == 0 {
		return nil, nil
	}

	byID := make(map[uuid.UUID]*domain.BonusGrant, len(grants))
	for i := range grants {
		byID[grants[i].ID] = &grants[i]
	}

	updated := make([]domain.BonusGrant, 0, len(allocations))
	for _, a := range allocations {
		if err := t.grants.UpdateProgress(ctx, tx, a.GrantID, a.NewProgress, a.NewStatus); err != nil {
			return nil, fmt.Errorf("update grant %s: %w", a.GrantID, err)
		}
		g := byID[a.GrantID]
		g.WageringProgress = a.NewProgress
		g.Status = a.NewStatus
		updated = append(updated, *g)
	}
	return updated, nil
}

// Cancel transitions an active grant to cancelled and returns it. The caller
// removes the bonus funds from the balance in the same transaction.
func (t *Tracker) Cancel(ctx context.Context, tx pgx.Tx, userID, grantID uuid.UUID) (*domain.BonusGrant, error) {
	grant, err := t.grants.FindByID(ctx, tx, grantID)
	if err != nil {
		return nil, fmt.Errorf("find grant: %w", err)
	}
	if grant == nil || grant.UserID != userID {
		return nil, domain.ErrGrantNotFound(grantID.String())
	}
	if grant.Status != domain.GrantStatusActive {
		return nil, domain.ErrGrantNotActive(grantID.String(), grant.Status)
	}

	if err := t.grants.UpdateStatus(ctx, tx, grantID, domain.GrantStatusCancelled); err != nil {
		return nil, fmt.Errorf("cancel grant: %w", err)
	}
	grant.Status = domain.GrantStatusCancelled
	return grant, nil
}
