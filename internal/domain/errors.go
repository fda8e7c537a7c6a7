package domain

import "fmt"

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

func ErrInvalidAmount(amount int64) *AppError {
	return &AppError{Code: "INVALID_AMOUNT", Message: fmt.Sprintf("amount must be positive, got %d", amount), Status: 400}
}

func ErrInsufficientBalance() *AppError {
	return &AppError{Code: "INSUFFICIENT_BALANCE", Message: "insufficient balance", Status: 400}
}

func ErrIneligiblePromotion(reason string) *AppError {
	return &AppError{Code: "INELIGIBLE_PROMOTION", Message: fmt.Sprintf("promotion not available: %s", reason), Status: 422}
}

func ErrGrantNotFound(id string) *AppError {
	return &AppError{Code: "GRANT_NOT_FOUND", Message: fmt.Sprintf("bonus grant %s not found", id), Status: 404}
}

func ErrGrantNotActive(id string, status GrantStatus) *AppError {
	return &AppError{Code: "GRANT_NOT_ACTIVE", Message: fmt.Sprintf("bonus grant %s is %s", id, status), Status: 409}
}

func ErrInvalidLimit(limit int) *AppError {
	return &AppError{Code: "INVALID_LIMIT", Message: fmt.Sprintf("history limit must be between 1 and 100, got %d", limit), Status: 400}
}

// ErrStorageUnavailable wraps an unexpected storage failure. The enclosing
// transaction did not commit, so the caller may safely retry.
func ErrStorageUnavailable(cause error) *AppError {
	return &AppError{Code: "STORAGE_UNAVAILABLE", Message: "storage temporarily unavailable, retry", Status: 503, Cause: cause}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}
