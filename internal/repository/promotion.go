package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/spinhall/platform/internal/domain"
	"github.com/spinhall/platform/internal/infra"
)

type promotionRepo struct{}

// NewPromotionRepository returns a pgx-backed PromotionRepository.
func NewPromotionRepository() PromotionRepository {
	return &promotionRepo{}
}

const promotionColumns = `id, name, code, bonus_kind, bonus_value, max_bonus, min_deposit,
	turnover_multiplier, turnover_basis, max_usage_per_day, days_of_week,
	window_start, window_end, timezone, active, created_at`

func (r *promotionRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Promotion, error) {
	row := db.QueryRow(ctx, `
		SELECT `+promotionColumns+` FROM promotions WHERE id = $1`, id)
	return scanPromotion(row)
}

func (r *promotionRepo) ListActive(ctx context.Context, db DBTX) ([]domain.Promotion, error) {
	return r.list(ctx, db, `
		SELECT `+promotionColumns+` FROM promotions
		WHERE active ORDER BY name ASC`)
}

func (r *promotionRepo) ListAll(ctx context.Context, db DBTX) ([]domain.Promotion, error) {
	return r.list(ctx, db, `
		SELECT `+promotionColumns+` FROM promotions
		ORDER BY created_at DESC`)
}

func (r *promotionRepo) list(ctx context.Context, db DBTX, sql string) ([]domain.Promotion, error) {
	rows, err := db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query promotions: %w", err)
	}
	defer rows.Close()

	var promos []domain.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		promos = append(promos, *p)
	}
	return promos, rows.Err()
}

func (r *promotionRepo) Insert(ctx context.Context, db DBTX, p *domain.Promotion) (*domain.Promotion, error) {
	kind, value, maxBonus := flattenTerms(p.Terms)
	days := make([]int32, 0, len(p.Schedule.DaysOfWeek))
	for _, d := range p.Schedule.DaysOfWeek {
		days = append(days, int32(d))
	}

	row := db.QueryRow(ctx, `
		INSERT INTO promotions
		  (name, code, bonus_kind, bonus_value, max_bonus, min_deposit,
		   turnover_multiplier, turnover_basis, max_usage_per_day, days_of_week,
		   window_start, window_end, timezone, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+promotionColumns,
		p.Name, p.Code, string(kind),
		infra.DecimalToNumeric(value),
		infra.Int64ToNumeric(maxBonus),
		infra.Int64ToNumeric(p.MinDeposit),
		infra.DecimalToNumeric(p.TurnoverMultiplier),
		string(p.TurnoverBasis),
		p.MaxUsagePerDay,
		days,
		p.Schedule.WindowStart, p.Schedule.WindowEnd, p.Schedule.Timezone,
		p.Active,
	)
	return scanPromotion(row)
}

func (r *promotionRepo) SetActive(ctx context.Context, db DBTX, id uuid.UUID, active bool) error {
	tag, err := db.Exec(ctx, `UPDATE promotions SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set promotion active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("promotion", id.String())
	}
	return nil
}

// flattenTerms projects the BonusTerms union onto the discriminated columns.
func flattenTerms(t domain.BonusTerms) (domain.BonusKind, decimal.Decimal, int64) {
	switch b := t.(type) {
	case domain.PercentageBonus:
		return domain.KindPercentage, b.Percent, b.Cap
	case domain.FlatCashback:
		return domain.KindFlatCashback, decimal.NewFromInt(b.Value), 0
	case domain.FreeSpins:
		return domain.KindFreeSpins, decimal.NewFromInt(int64(b.Count)), 0
	default:
		return domain.KindFlatCashback, decimal.Zero, 0
	}
}

// buildTerms reconstructs the BonusTerms union from the discriminator row.
// Conversion happens here, at the storage boundary, so downstream arithmetic
// never inspects the kind string.
func buildTerms(kind string, value decimal.Decimal, maxBonus int64) (domain.BonusTerms, error) {
	switch domain.BonusKind(kind) {
	case domain.KindPercentage:
		return domain.PercentageBonus{Percent: value, Cap: maxBonus}, nil
	case domain.KindFlatCashback:
		return domain.FlatCashback{Value: value.Floor().IntPart()}, nil
	case domain.KindFreeSpins:
		return domain.FreeSpins{Count: int(value.IntPart())}, nil
	default:
		return nil, fmt.Errorf("unknown bonus kind: %s", kind)
	}
}

func scanPromotion(row pgx.Row) (*domain.Promotion, error) {
	var p domain.Promotion
	var kind, basis string
	var valueNum, maxBonusNum, minDepositNum, multiplierNum pgtype.Numeric
	var days []int32
	err := row.Scan(&p.ID, &p.Name, &p.Code, &kind, &valueNum, &maxBonusNum,
		&minDepositNum, &multiplierNum, &basis, &p.MaxUsagePerDay, &days,
		&p.Schedule.WindowStart, &p.Schedule.WindowEnd, &p.Schedule.Timezone,
		&p.Active, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan promotion: %w", err)
	}

	value, err := infra.NumericToDecimal(valueNum)
	if err != nil {
		return nil, fmt.Errorf("convert bonus_value: %w", err)
	}
	maxBonus, err := infra.NumericToInt64(maxBonusNum)
	if err != nil {
		return nil, fmt.Errorf("convert max_bonus: %w", err)
	}
	if p.MinDeposit, err = infra.NumericToInt64(minDepositNum); err != nil {
		return nil, fmt.Errorf("convert min_deposit: %w", err)
	}
	if p.TurnoverMultiplier, err = infra.NumericToDecimal(multiplierNum); err != nil {
		return nil, fmt.Errorf("convert turnover_multiplier: %w", err)
	}
	if p.Terms, err = buildTerms(kind, value, maxBonus); err != nil {
		return nil, err
	}

	p.TurnoverBasis = domain.TurnoverBasis(basis)
	for _, d := range days {
		p.Schedule.DaysOfWeek = append(p.Schedule.DaysOfWeek, time.Weekday(d))
	}
	return &p, nil
}
