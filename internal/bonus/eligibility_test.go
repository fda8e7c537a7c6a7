package bonus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spinhall/platform/internal/domain"
)

func ineligibleCode(t *testing.T, err error) {
	t.Helper()
	var appErr *domain.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "INELIGIBLE_PROMOTION", appErr.Code)
	assert.Equal(t, 422, appErr.Status)
}

// --- Eligibility Tests ---

func TestCheckEligibility(t *testing.T) {
	now := time.Date(2026, 1, 2, 18, 30, 0, 0, time.UTC)
	base := domain.Promotion{
		Active:     true,
		MinDeposit: 2000,
	}

	t.Run("eligible", func(t *testing.T) {
		p := base
		assert.NoError(t, CheckEligibility(&p, 2000, now))
	})

	t.Run("inactive promotion", func(t *testing.T) {
		p := base
		p.Active = false
		ineligibleCode(t, CheckEligibility(&p, 5000, now))
	})

	t.Run("deposit below minimum", func(t *testing.T) {
		p := base
		err := CheckEligibility(&p, 1999, now)
		ineligibleCode(t, err)
		assert.Contains(t, err.Error(), "19.99")
		assert.Contains(t, err.Error(), "20.00")
	})

	t.Run("outside schedule", func(t *testing.T) {
		p := base
		p.Schedule = domain.Schedule{WindowStart: "20:00"}
		ineligibleCode(t, CheckEligibility(&p, 5000, now))
	})
}

// --- Day Start Tests ---

func TestDayStart(t *testing.T) {
	now := time.Date(2026, 1, 2, 18, 30, 0, 0, time.UTC)

	t.Run("UTC by default", func(t *testing.T) {
		p := domain.Promotion{}
		assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), DayStart(&p, now))
	})

	t.Run("promotion-local day", func(t *testing.T) {
		// 18:30 UTC on Jan 2 is already Jan 3 in Tokyo, so the local day
		// started at Jan 2 15:00 UTC.
		p := domain.Promotion{Schedule: domain.Schedule{Timezone: "Asia/Tokyo"}}
		assert.Equal(t, time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC), DayStart(&p, now))
	})
}
