package bonus

import (
	"fmt"
	"time"

	"github.com/spinhall/platform/internal/domain"
	"github.com/spinhall/platform/internal/money"
)

// CheckEligibility validates the promotion-side rules for an activation:
// the promotion must be active, the qualifying deposit must meet the
// minimum, and the activation instant must fall inside the schedule.
// The per-day usage cap needs storage access and is checked by the Tracker.
func CheckEligibility(p *domain.Promotion, depositCents int64, now time.Time) error {
	if !p.Active {
		return domain.ErrIneligiblePromotion("promotion is not active")
	}
	if depositCents < p.MinDeposit {
		return domain.ErrIneligiblePromotion(fmt.Sprintf(
			"deposit %s below minimum %s",
			money.FormatCents(depositCents), money.FormatCents(p.MinDeposit)))
	}
	if !p.Schedule.Contains(now) {
		return domain.ErrIneligiblePromotion("promotion not available at this time")
	}
	return nil
}

// DayStart returns midnight of now's calendar day in the promotion's
// timezone, converted back to UTC. Usage caps count activations since this
// instant so "per day" means the promotion's local day, not the server's.
func DayStart(p *domain.Promotion, now time.Time) time.Time {
	loc := time.UTC
	if p.Schedule.Timezone != "" {
		if l, err := time.LoadLocation(p.Schedule.Timezone); err == nil {
			loc = l
		}
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start.UTC()
}
