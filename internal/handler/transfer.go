package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/josh-kwaku/neobank-ledger/internal/auth"
	"github.com/josh-kwaku/neobank-ledger/internal/domain"
	"github.com/josh-kwaku/neobank-ledger/internal/logging"
	"github.com/josh-kwaku/neobank-ledger/internal/metrics"
	"github.com/josh-kwaku/neobank-ledger/internal/service/transfer"
)

type transferEngine interface {
	Transfer(ctx context.Context, req transfer.Request) (*transfer.Result, error)
}

type TransferHandler struct {
	engine transferEngine
}

func NewTransferHandler(engine transferEngine) *TransferHandler {
	return &TransferHandler{engine: engine}
}

// createTransferRequest takes the amount either as integer centavos in
// Amount or as a decimal reais string in AmountBRL, never both.
type createTransferRequest struct {
	RecipientKey string `json:"recipient_key"`
	Amount       int64  `json:"amount"`
	AmountBRL    string `json:"amount_brl"`
	Channel      string `json:"channel"`
}

func (r createTransferRequest) Validate() []FieldError {
	var errs []FieldError
	if r.RecipientKey == "" {
		errs = append(errs, FieldError{Field: "recipient_key", Message: "required"})
	}
	if r.Amount != 0 && r.AmountBRL != "" {
		errs = append(errs, FieldError{Field: "amount", Message: "send either amount or amount_brl"})
	}
	if r.Channel != "" && !domain.Channel(r.Channel).IsValid() {
		errs = append(errs, FieldError{Field: "channel", Message: "must be pix or ted"})
	}
	return errs
}

func (r createTransferRequest) minorUnits() (int64, error) {
	if r.AmountBRL == "" {
		return r.Amount, nil
	}
	return domain.ParseMajorUnits(r.AmountBRL)
}

type transferDTO struct {
	CorrelationID       string         `json:"correlation_id"`
	Channel             string         `json:"channel"`
	Amount              int64          `json:"amount"`
	AmountBRL           string         `json:"amount_brl"`
	SenderBalance       int64          `json:"sender_balance"`
	SenderBalanceBRL    string         `json:"sender_balance_brl"`
	RecipientBalance    int64          `json:"recipient_balance"`
	RecipientBalanceBRL string         `json:"recipient_balance_brl"`
	Sent                transactionDTO `json:"sent"`
	Received            transactionDTO `json:"received"`
}

func toTransferDTO(res *transfer.Result) transferDTO {
	return transferDTO{
		CorrelationID:       res.CorrelationID,
		Channel:             string(res.Sent.Channel()),
		Amount:              res.Received.Amount,
		AmountBRL:           domain.FormatMinorUnits(res.Received.Amount),
		SenderBalance:       res.SenderBalance,
		SenderBalanceBRL:    domain.FormatMinorUnits(res.SenderBalance),
		RecipientBalance:    res.RecipientBalance,
		RecipientBalanceBRL: domain.FormatMinorUnits(res.RecipientBalance),
		Sent:                toTransactionDTO(&res.Sent),
		Received:            toTransactionDTO(&res.Received),
	}
}

func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	senderID, ok := auth.AccountIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req createTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	channel := domain.Channel(req.Channel)
	amount, err := req.minorUnits()
	if err != nil {
		metrics.ObserveTransfer(channel, 0, err)
		RespondDomainError(w, err)
		return
	}

	res, err := h.engine.Transfer(r.Context(), transfer.Request{
		SenderID:     senderID,
		RecipientKey: req.RecipientKey,
		Amount:       amount,
		Channel:      channel,
	})
	metrics.ObserveTransfer(channel, amount, err)
	if err != nil {
		log.Warn("transfer failed", "error", err, "outcome", metrics.TransferOutcome(err))
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/accounts/"+senderID+"/statement")
	RespondSuccess(w, http.StatusCreated, toTransferDTO(res))
}
