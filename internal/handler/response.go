package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/josh-kwaku/neobank-ledger/internal/domain"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondSuccess(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Error:   nil,
	})
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, details any) {
	RespondJSON(w, appErr.Status, APIResponse{
		Success: false,
		Data:    nil,
		Error: &APIError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		},
	})
}

func RespondValidationError(w http.ResponseWriter, fields []FieldError) {
	RespondAppError(w, ErrValidationFailed, fields)
}

// RespondDomainError maps err onto the wire error for the first domain
// sentinel it wraps. ErrPartialCommit is checked before ErrStoreIO since a
// partial commit also wraps the underlying storage failure.
func RespondDomainError(w http.ResponseWriter, err error) {
	RespondAppError(w, appErrorFor(err), nil)
}

func appErrorFor(err error) *AppError {
	switch {
	case errors.Is(err, domain.ErrPartialCommit):
		return ErrPartialCommit
	case errors.Is(err, domain.ErrInvalidAmount):
		return ErrInvalidAmount
	case errors.Is(err, domain.ErrInvalidRecipient):
		return ErrInvalidRecipient
	case errors.Is(err, domain.ErrSelfTransfer):
		return ErrSelfTransfer
	case errors.Is(err, domain.ErrAccountNotFound):
		return ErrAccountNotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		return ErrInsufficientFunds
	case errors.Is(err, domain.ErrAccountExists):
		return ErrAccountExists
	case errors.Is(err, domain.ErrInvalidNationalID):
		return ErrInvalidNationalID
	case errors.Is(err, domain.ErrInvalidCredentials):
		return ErrInvalidCredentials
	case errors.Is(err, domain.ErrNotFound):
		return ErrResourceNotFound
	case errors.Is(err, domain.ErrInvalidRequest):
		return ErrInvalidRequest
	case errors.Is(err, domain.ErrStoreIO):
		return ErrStoreIO
	default:
		slog.Error("unhandled domain error", "error", err)
		return ErrInternalError
	}
}
