package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/spinhall/platform/internal/auth"
	"github.com/spinhall/platform/internal/domain"
	"github.com/spinhall/platform/internal/money"
	"github.com/spinhall/platform/internal/service"
)

// WalletHandler handles balance, operation and history endpoints.
type WalletHandler struct {
	wallet *service.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(wallet *service.WalletService) *WalletHandler {
	return &WalletHandler{wallet: wallet}
}

// GetBalance handles GET /wallet/balance.
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	breakdown, err := h.wallet.GetBalance(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, breakdown)
}

// operationRequest is the body of POST /wallet/operations. Amount is a
// decimal string in major units ("10.50"); it is converted to cents at this
// boundary and stays integer everywhere below.
type operationRequest struct {
	Kind                  string          `json:"kind"`
	Amount                string          `json:"amount"`
	ExternalTransactionID string          `json:"external_transaction_id,omitempty"`
	Metadata              json.RawMessage `json:"metadata,omitempty"`
}

// operationResponse is the shape returned by operation and withdrawal posts.
type operationResponse struct {
	Transaction *domain.Transaction      `json:"transaction"`
	Balance     *domain.BalanceBreakdown `json:"balance"`
	Idempotent  bool                     `json:"idempotent,omitempty"`
}

// ApplyOperation handles POST /wallet/operations.
func (h *WalletHandler) ApplyOperation(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var input operationRequest
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	amount, err := money.ParseCents(input.Amount)
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid amount: "+input.Amount))
		return
	}

	result, breakdown, err := h.wallet.ApplyOperation(r.Context(), userID,
		domain.TransactionType(input.Kind), amount, input.ExternalTransactionID, input.Metadata)
	if err != nil {
		RespondError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Idempotent {
		status = http.StatusOK
	}
	RespondJSON(w, status, operationResponse{
		Transaction: result.Transaction,
		Balance:     breakdown,
		Idempotent:  result.Idempotent,
	})
}

// withdrawRequest is the body of POST /wallet/withdrawals.
type withdrawRequest struct {
	Amount                string `json:"amount"`
	ExternalTransactionID string `json:"external_transaction_id,omitempty"`
}

// Withdraw handles POST /wallet/withdrawals.
func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var input withdrawRequest
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	amount, err := money.ParseCents(input.Amount)
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid amount: "+input.Amount))
		return
	}

	result, breakdown, err := h.wallet.Withdraw(r.Context(), userID, amount, input.ExternalTransactionID)
	if err != nil {
		RespondError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Idempotent {
		status = http.StatusOK
	}
	RespondJSON(w, status, operationResponse{
		Transaction: result.Transaction,
		Balance:     breakdown,
		Idempotent:  result.Idempotent,
	})
}

// txListResponse wraps a list of transactions.
type txListResponse struct {
	Transactions []domain.Transaction `json:"transactions"`
}

// GetHistory handles GET /wallet/transactions.
func (h *WalletHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			RespondError(w, domain.ErrValidation("invalid limit: "+limitStr))
			return
		}
		limit = n
	}

	txs, err := h.wallet.GetHistory(r.Context(), userID, limit)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, txListResponse{Transactions: txs})
}

// VerifyLedger handles GET /wallet/verify, replaying the caller's history.
func (h *WalletHandler) VerifyLedger(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.wallet.VerifyLedger(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, result)
}

// userIDFromContext extracts and validates the user UUID from auth context.
func userIDFromContext(r *http.Request) (uuid.UUID, error) {
	sub := auth.SubjectFromContext(r.Context())
	if sub == "" {
		return uuid.Nil, domain.ErrUnauthorized("no subject in context")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, domain.ErrUnauthorized("invalid subject")
	}
	return id, nil
}
