package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/spinhall/platform/internal/domain"
	"github.com/spinhall/platform/internal/infra"
)

type grantRepo struct{}

// NewGrantRepository returns a pgx-backed GrantRepository.
func NewGrantRepository() GrantRepository {
	return &grantRepo{}
}

const grantColumns = `id, user_id, promotion_id, source_deposit_id, bonus_amount,
	turnover_requirement, wagering_progress, status, created_at, updated_at`

func (r *grantRepo) Insert(ctx context.Context, db DBTX, grant *domain.BonusGrant) (*domain.BonusGrant, error) {
	row := db.QueryRow(ctx, `
		INSERT INTO bonus_grants
		  (user_id, promotion_id, source_deposit_id, bonus_amount,
		   turnover_requirement, wagering_progress, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+grantColumns,
		grant.UserID,
		grant.PromotionID,
		grant.SourceDepositID,
		infra.Int64ToNumeric(grant.BonusAmount),
		infra.Int64ToNumeric(grant.TurnoverRequirement),
		infra.Int64ToNumeric(grant.WageringProgress),
		string(grant.Status),
	)
	return scanGrant(row)
}

func (r *grantRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.BonusGrant, error) {
	row := db.QueryRow(ctx, `
		SELECT `+grantColumns+` FROM bonus_grants WHERE id = $1`, id)
	return scanGrant(row)
}

// ListActiveByUser orders oldest first: the oldest grant absorbs wagering
// credit before newer ones, keeping distribution deterministic.
func (r *grantRepo) ListActiveByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.BonusGrant, error) {
	rows, err := db.Query(ctx, `
		SELECT `+grantColumns+` FROM bonus_grants
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at ASC, id ASC`, userID, string(domain.GrantStatusActive))
	if err != nil {
		return nil, fmt.Errorf("query active grants: %w", err)
	}
	defer rows.Close()

	return collectGrants(rows)
}

func (r *grantRepo) UpdateProgress(ctx context.Context, tx pgx.Tx, id uuid.UUID, progress int64, status domain.GrantStatus) error {
	tag, err := tx.Exec(ctx, `
		UPDATE bonus_grants
		SET wagering_progress = $2, status = $3, updated_at = now()
		WHERE id = $1 AND wagering_progress <= $2`,
		id, infra.Int64ToNumeric(progress), string(status))
	if err != nil {
		return fmt.Errorf("update grant progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("grant %s progress update affected no rows", id)
	}
	return nil
}

func (r *grantRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.GrantStatus) error {
	_, err := tx.Exec(ctx, `
		UPDATE bonus_grants SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status))
	if err != nil {
		return fmt.Errorf("update grant status: %w", err)
	}
	return nil
}

func (r *grantRepo) CountActivationsSince(ctx context.Context, db DBTX, userID, promotionID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := db.QueryRow(ctx, `
		SELECT count(*) FROM bonus_grants
		WHERE user_id = $1 AND promotion_id = $2 AND created_at >= $3`,
		userID, promotionID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count activations: %w", err)
	}
	return count, nil
}

func scanGrant(row pgx.Row) (*domain.BonusGrant, error) {
	var g domain.BonusGrant
	var bonusNum, reqNum, progNum pgtype.Numeric
	var status string
	err := row.Scan(&g.ID, &g.UserID, &g.PromotionID, &g.SourceDepositID,
		&bonusNum, &reqNum, &progNum, &status, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan grant: %w", err)
	}

	g.Status = domain.GrantStatus(status)
	if g.BonusAmount, err = infra.NumericToInt64(bonusNum); err != nil {
		return nil, fmt.Errorf("convert bonus_amount: %w", err)
	}
	if g.TurnoverRequirement, err = infra.NumericToInt64(reqNum); err != nil {
		return nil, fmt.Errorf("convert turnover_requirement: %w", err)
	}
	if g.WageringProgress, err = infra.NumericToInt64(progNum); err != nil {
		return nil, fmt.Errorf("convert wagering_progress: %w", err)
	}
	return &g, nil
}

func collectGrants(rows pgx.Rows) ([]domain.BonusGrant, error) {
	var grants []domain.BonusGrant
	for rows.Next() {
		g, err := scanGrantFromRows(rows)
		if err != nil {
			return nil, err
		}
		grants = append(grants, *g)
	}
	return grants, rows.Err()
}

func scanGrantFromRows(rows pgx.Rows) (*domain.BonusGrant, error) {
	var g domain.BonusGrant
	var bonusNum, reqNum, progNum pgtype.Numeric
	var status string
	err := rows.Scan(&g.ID, &g.UserID, &g.PromotionID, &g.SourceDepositID,
		&bonusNum, &reqNum, &progNum, &status, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan grant row: %w", err)
	}

	g.Status = domain.GrantStatus(status)
	if g.BonusAmount, err = infra.NumericToInt64(bonusNum); err != nil {
		return nil, err
	}
	if g.TurnoverRequirement, err = infra.NumericToInt64(reqNum); err != nil {
		return nil, err
	}
	if g.WageringProgress, err = infra.NumericToInt64(progNum); err != nil {
		return nil, err
	}
	return &g, nil
}
