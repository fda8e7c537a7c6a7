package domain

import (
	"time"

	"github.com/google/uuid"
)

// GrantStatus tracks the lifecycle of a bonus grant. Completed and cancelled
// are terminal.
type GrantStatus string

const (
	GrantStatusActive    GrantStatus = "active"
	GrantStatusCompleted GrantStatus = "completed"
	GrantStatusCancelled GrantStatus = "cancelled"
)

// IsTerminal reports whether the status permits no further transitions.
func (s GrantStatus) IsTerminal() bool {
	return s == GrantStatusCompleted || s == GrantStatusCancelled
}

// BonusGrant is one activated promotion instance for one user, tracking the
// credited bonus and its wagering obligation.
type BonusGrant struct {
	ID                  uuid.UUID   `json:"id"`
	UserID              uuid.UUID   `json:"user_id"`
	PromotionID         uuid.UUID   `json:"promotion_id"`
	SourceDepositID     uuid.UUID   `json:"source_deposit_id"`
	BonusAmount         int64       `json:"bonus_amount"`
	TurnoverRequirement int64       `json:"turnover_requirement"`
	WageringProgress    int64       `json:"wagering_progress"`
	Status              GrantStatus `json:"status"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// RemainingRequirement returns the wagering still owed before completion.
func (g *BonusGrant) RemainingRequirement() int64 {
	remaining := g.TurnoverRequirement - g.WageringProgress
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsWageringComplete reports whether the wagering requirement has been met.
func (g *BonusGrant) IsWageringComplete() bool {
	return g.WageringProgress >= g.TurnoverRequirement
}
