package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BonusTerms is the sealed union of promotion bonus shapes. Loosely-typed
// bonus fields are converted into one of these at the storage boundary so the
// wagering arithmetic never branches on runtime string contents.
type BonusTerms interface {
	// CashAmount returns the cash credited for a qualifying deposit, in cents.
	CashAmount(depositCents int64) int64
	kind() BonusKind
}

// BonusKind is the discriminator column value for BonusTerms.
type BonusKind string

const (
	KindPercentage   BonusKind = "percentage"
	KindFlatCashback BonusKind = "flat_cashback"
	KindFreeSpins    BonusKind = "free_spins"
)

// PercentageBonus credits a percentage of the deposit, capped at Cap cents.
type PercentageBonus struct {
	Percent decimal.Decimal
	Cap     int64
}

func (b PercentageBonus) CashAmount(depositCents int64) int64 {
	amount := decimal.NewFromInt(depositCents).
		Mul(b.Percent).
		Div(decimal.NewFromInt(100)).
		Floor().
		IntPart()
	if b.Cap > 0 && amount > b.Cap {
		return b.Cap
	}
	return amount
}

func (b PercentageBonus) kind() BonusKind { return KindPercentage }

// FlatCashback credits a fixed cash amount regardless of deposit size.
type FlatCashback struct {
	Value int64
}

func (b FlatCashback) CashAmount(int64) int64 { return b.Value }
func (b FlatCashback) kind() BonusKind        { return KindFlatCashback }

// FreeSpins grants spin entitlements; no cash is credited by this core.
type FreeSpins struct {
	Count int
}

func (b FreeSpins) CashAmount(int64) int64 { return 0 }
func (b FreeSpins) kind() BonusKind        { return KindFreeSpins }

// Kind exposes the discriminator for persistence.
func Kind(t BonusTerms) BonusKind { return t.kind() }

// TurnoverBasis selects which amounts the turnover multiplier applies to.
// Real systems vary per promotion, so this is promotion-level configuration
// rather than a hardcoded formula.
type TurnoverBasis string

const (
	TurnoverDepositPlusBonus TurnoverBasis = "deposit_plus_bonus"
	TurnoverBonusOnly        TurnoverBasis = "bonus_only"
)

// Schedule restricts a promotion to certain days and a daily time window in
// its own timezone. A zero Schedule allows activation at any time.
type Schedule struct {
	DaysOfWeek  []time.Weekday // empty = every day
	WindowStart string         // "15:04", empty = from midnight
	WindowEnd   string         // "15:04", empty = until midnight
	Timezone    string         // IANA name, empty = UTC
}

// Contains reports whether t falls inside the schedule, evaluated in the
// schedule's timezone.
func (s Schedule) Contains(t time.Time) bool {
	loc := time.UTC
	if s.Timezone != "" {
		if l, err := time.LoadLocation(s.Timezone); err == nil {
			loc = l
		}
	}
	local := t.In(loc)

	if len(s.DaysOfWeek) > 0 {
		ok := false
		for _, d := range s.DaysOfWeek {
			if local.Weekday() == d {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	minutes := local.Hour()*60 + local.Minute()
	if s.WindowStart != "" {
		if start, err := parseClock(s.WindowStart); err == nil && minutes < start {
			return false
		}
	}
	if s.WindowEnd != "" {
		if end, err := parseClock(s.WindowEnd); err == nil && minutes >= end {
			return false
		}
	}
	return true
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Promotion is a read-mostly catalog entry describing one bonus offer.
type Promotion struct {
	ID                 uuid.UUID       `json:"id"`
	Name               string          `json:"name"`
	Code               string          `json:"code"`
	Terms              BonusTerms      `json:"-"`
	MinDeposit         int64           `json:"min_deposit"`
	TurnoverMultiplier decimal.Decimal `json:"turnover_multiplier"`
	TurnoverBasis      TurnoverBasis   `json:"turnover_basis"`
	MaxUsagePerDay     int             `json:"max_usage_per_day"` // 0 = unlimited
	Schedule           Schedule        `json:"schedule"`
	Active             bool            `json:"active"`
	CreatedAt          time.Time       `json:"created_at"`
}

// BonusAmountFor returns the cash credited for a qualifying deposit.
func (p *Promotion) BonusAmountFor(depositCents int64) int64 {
	return p.Terms.CashAmount(depositCents)
}

// TurnoverRequirementFor computes the total wagering required before the
// grant completes, per the promotion's turnover basis.
func (p *Promotion) TurnoverRequirementFor(depositCents, bonusCents int64) int64 {
	base := bonusCents
	if p.TurnoverBasis == TurnoverDepositPlusBonus {
		base = depositCents + bonusCents
	}
	return decimal.NewFromInt(base).
		Mul(p.TurnoverMultiplier).
		Floor().
		IntPart()
}
