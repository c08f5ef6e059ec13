package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/josh-kwaku/neobank-ledger/internal/domain"
	"github.com/josh-kwaku/neobank-ledger/internal/logging"
)

type accountAdministrator interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	ReplaceAll(ctx context.Context, accounts []domain.Account) ([]domain.Account, error)
	HashSecret(secret string) (string, error)
}

type transactionLister interface {
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
}

// AdminHandler exposes the raw collections for operators. It is only mounted
// behind the admin token check.
type AdminHandler struct {
	accounts     accountAdministrator
	transactions transactionLister
}

func NewAdminHandler(accounts accountAdministrator, transactions transactionLister) *AdminHandler {
	return &AdminHandler{accounts: accounts, transactions: transactions}
}

type adminAccountDTO struct {
	CPF           string    `json:"cpf"`
	Name          string    `json:"name"`
	Password      string    `json:"password,omitempty"`
	Balance       int64     `json:"balance"`
	AccountNumber string    `json:"account_number"`
	BranchCode    string    `json:"branch_code"`
	CreatedAt     time.Time `json:"created_at"`
}

// toDomain leaves CredentialSecret empty when no password is supplied, which
// keeps the stored secret. A supplied password is hashed before the replacement.
func (d adminAccountDTO) toDomain() domain.Account {
	return domain.Account{
		ID:            domain.NormalizeNationalID(d.CPF),
		DisplayName:   d.Name,
		Balance:       d.Balance,
		AccountNumber: d.AccountNumber,
		BranchCode:    d.BranchCode,
		CreatedAt:     d.CreatedAt,
	}
}

func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListAccounts(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list accounts", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]accountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = toAccountDTO(&accounts[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *AdminHandler) ReplaceAccounts(w http.ResponseWriter, r *http.Request) {
	var req []adminAccountDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	accounts := make([]domain.Account, len(req))
	for i := range req {
		accounts[i] = req[i].toDomain()
		if req[i].Password != "" {
			hash, err := h.accounts.HashSecret(req[i].Password)
			if err != nil {
				RespondDomainError(w, err)
				return
			}
			accounts[i].CredentialSecret = hash
		}
	}

	stored, err := h.accounts.ReplaceAll(r.Context(), accounts)
	if err != nil {
		logging.FromContext(r.Context()).Warn("account replacement rejected", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]accountDTO, len(stored))
	for i := range stored {
		dtos[i] = toAccountDTO(&stored[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *AdminHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.transactions.ListTransactions(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list transactions", "error", err)
		RespondAppError(w, ErrStoreIO, nil)
		return
	}
	RespondSuccess(w, http.StatusOK, toTransactionDTOs(txs))
}
