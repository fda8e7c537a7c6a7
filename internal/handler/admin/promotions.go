package admin

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spinhall/platform/internal/domain"
	"github.com/spinhall/platform/internal/handler"
	"github.com/spinhall/platform/internal/money"
	"github.com/spinhall/platform/internal/service"
)

// PromotionAdminHandler handles admin promotion catalog management.
type PromotionAdminHandler struct {
	promotions *service.PromotionService
}

// NewPromotionAdminHandler creates a new PromotionAdminHandler.
func NewPromotionAdminHandler(promotions *service.PromotionService) *PromotionAdminHandler {
	return &PromotionAdminHandler{promotions: promotions}
}

// bonusTermsInput is the loosely-typed wire shape of promotion bonus terms.
// It is converted into the typed union here, at the boundary.
type bonusTermsInput struct {
	Kind    string `json:"kind"`
	Percent string `json:"percent,omitempty"`
	Cap     string `json:"cap,omitempty"`
	Value   string `json:"value,omitempty"`
	Count   int    `json:"count,omitempty"`
}

type scheduleInput struct {
	DaysOfWeek  []int  `json:"days_of_week,omitempty"`
	WindowStart string `json:"window_start,omitempty"`
	WindowEnd   string `json:"window_end,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
}

type createPromotionRequest struct {
	Name               string          `json:"name"`
	Code               string          `json:"code"`
	Bonus              bonusTermsInput `json:"bonus"`
	MinDeposit         string          `json:"min_deposit"`
	TurnoverMultiplier string          `json:"turnover_multiplier"`
	TurnoverBasis      string          `json:"turnover_basis,omitempty"`
	MaxUsagePerDay     int             `json:"max_usage_per_day,omitempty"`
	Schedule           *scheduleInput  `json:"schedule,omitempty"`
}

// ListPromotions handles GET /admin/promotions. Unlike the player-facing
// catalog it includes inactive promotions.
func (h *PromotionAdminHandler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	promos, err := h.promotions.ListAllPromotions(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{"promotions": promos})
}

// CreatePromotion handles POST /admin/promotions.
func (h *PromotionAdminHandler) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	var input createPromotionRequest
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	terms, err := buildTerms(input.Bonus)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	minDeposit := int64(0)
	if input.MinDeposit != "" {
		if minDeposit, err = money.ParseCents(input.MinDeposit); err != nil {
			handler.RespondError(w, domain.ErrValidation("invalid min_deposit"))
			return
		}
	}

	multiplier, err := decimal.NewFromString(input.TurnoverMultiplier)
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid turnover_multiplier"))
		return
	}

	basis := domain.TurnoverDepositPlusBonus
	if input.TurnoverBasis != "" {
		basis = domain.TurnoverBasis(input.TurnoverBasis)
		if basis != domain.TurnoverDepositPlusBonus && basis != domain.TurnoverBonusOnly {
			handler.RespondError(w, domain.ErrValidation("invalid turnover_basis"))
			return
		}
	}

	promo := &domain.Promotion{
		Name:               input.Name,
		Code:               input.Code,
		Terms:              terms,
		MinDeposit:         minDeposit,
		TurnoverMultiplier: multiplier,
		TurnoverBasis:      basis,
		MaxUsagePerDay:     input.MaxUsagePerDay,
		Active:             true,
	}
	if input.Schedule != nil {
		days := make([]time.Weekday, 0, len(input.Schedule.DaysOfWeek))
		for _, d := range input.Schedule.DaysOfWeek {
			if d < 0 || d > 6 {
				handler.RespondError(w, domain.ErrValidation("invalid day of week"))
				return
			}
			days = append(days, time.Weekday(d))
		}
		promo.Schedule = domain.Schedule{
			DaysOfWeek:  days,
			WindowStart: input.Schedule.WindowStart,
			WindowEnd:   input.Schedule.WindowEnd,
			Timezone:    input.Schedule.Timezone,
		}
	}

	created, err := h.promotions.CreatePromotion(r.Context(), promo)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, created)
}

// UpdatePromotionStatus handles PATCH /admin/promotions/{id}/status.
func (h *PromotionAdminHandler) UpdatePromotionStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid promotion id"))
		return
	}

	var input struct {
		Active bool `json:"active"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	if err := h.promotions.SetPromotionActive(r.Context(), id, input.Active); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func buildTerms(input bonusTermsInput) (domain.BonusTerms, error) {
	switch domain.BonusKind(input.Kind) {
	case domain.KindPercentage:
		percent, err := decimal.NewFromString(input.Percent)
		if err != nil || percent.IsNegative() {
			return nil, domain.ErrValidation("invalid bonus percent")
		}
		var capCents int64
		if input.Cap != "" {
			if capCents, err = money.ParseCents(input.Cap); err != nil {
				return nil, domain.ErrValidation("invalid bonus cap")
			}
		}
		return domain.PercentageBonus{Percent: percent, Cap: capCents}, nil
	case domain.KindFlatCashback:
		value, err := money.ParseCents(input.Value)
		if err != nil {
			return nil, domain.ErrValidation("invalid cashback value")
		}
		return domain.FlatCashback{Value: value}, nil
	case domain.KindFreeSpins:
		if input.Count <= 0 {
			return nil, domain.ErrValidation("free spins count must be positive")
		}
		return domain.FreeSpins{Count: input.Count}, nil
	default:
		return nil, domain.ErrValidation("unknown bonus kind: " + input.Kind)
	}
}
