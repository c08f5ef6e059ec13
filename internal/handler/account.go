package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/josh-kwaku/neobank-ledger/internal/auth"
	"github.com/josh-kwaku/neobank-ledger/internal/domain"
	"github.com/josh-kwaku/neobank-ledger/internal/logging"
	"github.com/josh-kwaku/neobank-ledger/internal/service"
)

const maxStatementLimit = 500

type accountService interface {
	Register(ctx context.Context, req service.RegisterRequest) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
}

type statementService interface {
	Statement(ctx context.Context, accountID string, q service.StatementQuery) (*service.Statement, error)
}

type AccountHandler struct {
	accounts   accountService
	statements statementService
	jwtSecret  string
	jwtExpiry  time.Duration
}

func NewAccountHandler(accounts accountService, statements statementService, jwtSecret string, jwtExpiry time.Duration) *AccountHandler {
	return &AccountHandler{
		accounts:   accounts,
		statements: statements,
		jwtSecret:  jwtSecret,
		jwtExpiry:  jwtExpiry,
	}
}

type registerRequest struct {
	CPF      string `json:"cpf"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (r registerRequest) Validate() []FieldError {
	var errs []FieldError
	if r.CPF == "" {
		errs = append(errs, FieldError{Field: "cpf", Message: "required"})
	} else if !domain.IsValidNationalID(r.CPF) {
		errs = append(errs, FieldError{Field: "cpf", Message: "must be a valid CPF"})
	}
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if len(r.Password) < 6 {
		errs = append(errs, FieldError{Field: "password", Message: "must have at least 6 characters"})
	}
	return errs
}

type accountDTO struct {
	CPF           string    `json:"cpf"`
	Name          string    `json:"name"`
	Balance       int64     `json:"balance"`
	BalanceBRL    string    `json:"balance_brl"`
	AccountNumber string    `json:"account_number"`
	BranchCode    string    `json:"branch_code"`
	CreatedAt     time.Time `json:"created_at"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	return accountDTO{
		CPF:           domain.FormatNationalID(a.ID),
		Name:          a.DisplayName,
		Balance:       a.Balance,
		BalanceBRL:    domain.FormatMinorUnits(a.Balance),
		AccountNumber: a.AccountNumber,
		BranchCode:    a.BranchCode,
		CreatedAt:     a.CreatedAt,
	}
}

type sessionResponse struct {
	Token   string     `json:"token"`
	Account accountDTO `json:"account"`
}

type transactionDTO struct {
	ID            string    `json:"id"`
	CorrelationID string    `json:"correlation_id"`
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	Amount        int64     `json:"amount"`
	AmountBRL     string    `json:"amount_brl"`
	Date          time.Time `json:"date"`
	Status        string    `json:"status"`
	Category      string    `json:"category"`
	FromCPF       string    `json:"from_cpf"`
	ToCPF         string    `json:"to_cpf"`
}

func toTransactionDTO(t *domain.Transaction) transactionDTO {
	return transactionDTO{
		ID:            t.ID,
		CorrelationID: t.CorrelationID,
		Type:          string(t.Kind),
		Description:   t.Description,
		Amount:        t.Amount,
		AmountBRL:     domain.FormatMinorUnits(t.Amount),
		Date:          t.Timestamp,
		Status:        string(t.Status),
		Category:      t.Category,
		FromCPF:       t.FromID,
		ToCPF:         t.ToID,
	}
}

func toTransactionDTOs(txs []domain.Transaction) []transactionDTO {
	dtos := make([]transactionDTO, len(txs))
	for i := range txs {
		dtos[i] = toTransactionDTO(&txs[i])
	}
	return dtos
}

type statementDTO struct {
	CPF             string           `json:"cpf"`
	Transactions    []transactionDTO `json:"transactions"`
	TotalIncome     int64            `json:"total_income"`
	TotalIncomeBRL  string           `json:"total_income_brl"`
	TotalExpense    int64            `json:"total_expense"`
	TotalExpenseBRL string           `json:"total_expense_brl"`
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	account, err := h.accounts.Register(r.Context(), service.RegisterRequest{
		NationalID:  req.CPF,
		DisplayName: req.Name,
		Secret:      req.Password,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("account registration failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	token, err := auth.GenerateToken(account.ID, account.AccountNumber, h.jwtSecret, h.jwtExpiry)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to issue token", "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	w.Header().Set("Location", "/api/v1/accounts/"+account.ID)
	RespondSuccess(w, http.StatusCreated, sessionResponse{
		Token:   token,
		Account: toAccountDTO(account),
	})
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := ownerFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), id)
	if err != nil {
		logging.FromContext(r.Context()).Warn("account lookup failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

func (h *AccountHandler) Statement(w http.ResponseWriter, r *http.Request) {
	id, appErr := ownerFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	q, fields := parseStatementQuery(r)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	st, err := h.statements.Statement(r.Context(), id, q)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to build statement", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, statementDTO{
		CPF:             domain.FormatNationalID(st.AccountID),
		Transactions:    toTransactionDTOs(st.Transactions),
		TotalIncome:     st.TotalIncome,
		TotalIncomeBRL:  domain.FormatMinorUnits(st.TotalIncome),
		TotalExpense:    st.TotalExpense,
		TotalExpenseBRL: domain.FormatMinorUnits(st.TotalExpense),
	})
}

func parseStatementQuery(r *http.Request) (service.StatementQuery, []FieldError) {
	var (
		q    service.StatementQuery
		errs []FieldError
	)
	values := r.URL.Query()

	if t := values.Get("type"); t != "" {
		q.Type = service.StatementType(t)
		if !q.Type.IsValid() {
			errs = append(errs, FieldError{Field: "type", Message: "must be all, income, expense, pix, or ted"})
		}
	}

	var err error
	if q.From, err = parseTimeParam(values.Get("from")); err != nil {
		errs = append(errs, FieldError{Field: "from", Message: "must be RFC 3339 or YYYY-MM-DD"})
	}
	if q.To, err = parseTimeParam(values.Get("to")); err != nil {
		errs = append(errs, FieldError{Field: "to", Message: "must be RFC 3339 or YYYY-MM-DD"})
	}
	if !q.From.IsZero() && !q.To.IsZero() && !q.From.Before(q.To) {
		errs = append(errs, FieldError{Field: "to", Message: "must be after from"})
	}

	if l := values.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 || n > maxStatementLimit {
			errs = append(errs, FieldError{Field: "limit", Message: "must be between 1 and " + strconv.Itoa(maxStatementLimit)})
		} else {
			q.Limit = n
		}
	}

	return q, errs
}

func parseTimeParam(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}
