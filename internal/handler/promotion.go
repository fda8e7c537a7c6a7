package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/spinhall/platform/internal/domain"
	"github.com/spinhall/platform/internal/service"
)

// PromotionHandler handles the user-facing promotion endpoints.
type PromotionHandler struct {
	promotions *service.PromotionService
}

// NewPromotionHandler creates a new PromotionHandler.
func NewPromotionHandler(promotions *service.PromotionService) *PromotionHandler {
	return &PromotionHandler{promotions: promotions}
}

// ListPromotions handles GET /promotions.
func (h *PromotionHandler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	promos, err := h.promotions.ListActivePromotions(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, promos)
}

// ListGrants handles GET /bonuses/grants.
func (h *PromotionHandler) ListGrants(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	grants, err := h.promotions.ListGrants(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, grants)
}

// activateRequest is the body of POST /promotions/{id}/activate.
type activateRequest struct {
	DepositID string `json:"deposit_id"`
}

// Activate handles POST /promotions/{id}/activate.
func (h *PromotionHandler) Activate(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	promotionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid promotion id"))
		return
	}

	var input activateRequest
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	depositID, err := uuid.Parse(input.DepositID)
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid deposit id"))
		return
	}

	result, err := h.promotions.ActivatePromotion(r.Context(), userID, promotionID, depositID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, result)
}

// Cancel handles POST /bonuses/grants/{id}/cancel.
func (h *PromotionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	grantID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid grant id"))
		return
	}

	result, err := h.promotions.CancelPromotion(r.Context(), userID, grantID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}
