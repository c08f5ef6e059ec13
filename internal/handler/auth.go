package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/josh-kwaku/neobank-ledger/internal/auth"
	"github.com/josh-kwaku/neobank-ledger/internal/domain"
	"github.com/josh-kwaku/neobank-ledger/internal/logging"
)

type authenticator interface {
	Authenticate(ctx context.Context, nationalID, secret string) (*domain.Account, error)
}

type AuthHandler struct {
	accounts  authenticator
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthHandler(accounts authenticator, jwtSecret string, jwtExpiry time.Duration) *AuthHandler {
	return &AuthHandler{
		accounts:  accounts,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

type loginRequest struct {
	CPF      string `json:"cpf"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() []FieldError {
	var errs []FieldError
	if r.CPF == "" {
		errs = append(errs, FieldError{Field: "cpf", Message: "required"})
	}
	if r.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "required"})
	}
	return errs
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	account, err := h.accounts.Authenticate(r.Context(), req.CPF, req.Password)
	if err != nil {
		logging.FromContext(r.Context()).Info("login rejected", "error", err)
		RespondDomainError(w, err)
		return
	}

	token, err := auth.GenerateToken(account.ID, account.AccountNumber, h.jwtSecret, h.jwtExpiry)
	if err != nil {
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	RespondSuccess(w, http.StatusOK, sessionResponse{
		Token:   token,
		Account: toAccountDTO(account),
	})
}
