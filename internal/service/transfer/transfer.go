package transfer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/josh-kwaku/neobank-ledger/internal/domain"
	"github.com/josh-kwaku/neobank-ledger/internal/logging"
)

const publishTimeout = 5 * time.Second

type Request struct {
	SenderID     string
	RecipientKey string
	Amount       int64
	Channel      domain.Channel
}

type Result struct {
	CorrelationID    string
	SenderBalance    int64
	RecipientBalance int64
	Sent             domain.Transaction
	Received         domain.Transaction
}

// Transfer debits the sender and credits the recipient named by
// RecipientKey. Validation failures leave the store untouched. Once the
// balances are written the remaining steps ignore cancellation of ctx, and
// a failure to log either record is reported as ErrPartialCommit with the
// new balances already in place. Nothing is retried.
func (e *Engine) Transfer(ctx context.Context, req Request) (*Result, error) {
	log := logging.FromContext(ctx)

	senderID, recipientID, channel, err := validateRequest(req)
	if err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	res, err := e.execute(ctx, senderID, recipientID, req.Amount, channel)
	if err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	log.Info("transfer completed",
		"correlation_id", res.CorrelationID,
		"channel", channel,
		"sender_id", senderID,
		"recipient_id", recipientID,
		"amount", req.Amount,
		"sender_balance", res.SenderBalance,
	)

	e.publish(ctx, res, channel)
	return res, nil
}

func validateRequest(req Request) (senderID, recipientID string, channel domain.Channel, err error) {
	if req.Amount <= 0 {
		return "", "", "", fmt.Errorf("validateRequest: %w", domain.ErrInvalidAmount)
	}

	recipientID, ok := domain.ParseNationalIDKey(req.RecipientKey)
	if !ok {
		return "", "", "", fmt.Errorf("validateRequest: %w", domain.ErrInvalidRecipient)
	}

	senderID = domain.NormalizeNationalID(req.SenderID)
	if senderID == recipientID {
		return "", "", "", fmt.Errorf("validateRequest: %w", domain.ErrSelfTransfer)
	}

	channel = req.Channel
	if channel == "" {
		channel = domain.ChannelPix
	}
	if !channel.IsValid() {
		return "", "", "", fmt.Errorf("validateRequest: unknown channel %q: %w", req.Channel, domain.ErrInvalidRequest)
	}

	return senderID, recipientID, channel, nil
}

func (e *Engine) execute(ctx context.Context, senderID, recipientID string, amount int64, channel domain.Channel) (*Result, error) {
	e.writes.Lock()
	defer e.writes.Unlock()

	accounts, err := e.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("execute: load accounts: %w: %w", domain.ErrStoreIO, err)
	}

	si := domain.FindAccount(accounts, senderID)
	if si < 0 {
		return nil, fmt.Errorf("execute: sender: %w", domain.ErrAccountNotFound)
	}
	ri := domain.FindAccount(accounts, recipientID)
	if ri < 0 {
		return nil, fmt.Errorf("execute: recipient: %w", domain.ErrAccountNotFound)
	}
	sender, recipient := &accounts[si], &accounts[ri]

	if amount > sender.Balance {
		return nil, fmt.Errorf("execute: %w", domain.ErrInsufficientFunds)
	}
	if recipient.Balance > math.MaxInt64-amount {
		return nil, fmt.Errorf("execute: recipient balance overflow: %w", domain.ErrInvalidAmount)
	}

	sender.Balance -= amount
	recipient.Balance += amount

	persistCtx := context.WithoutCancel(ctx)

	if err := e.accounts.ReplaceAllAccounts(persistCtx, accounts); err != nil {
		return nil, fmt.Errorf("execute: persist balances: %w: %w", domain.ErrStoreIO, err)
	}

	sent, received := e.buildRecords(sender, recipient, amount, channel)

	if err := e.appendRecords(persistCtx, sent, received); err != nil {
		logging.FromContext(ctx).Error("transfer partially committed",
			"correlation_id", sent.CorrelationID,
			"sender_id", senderID,
			"recipient_id", recipientID,
			"amount", amount,
			"error", err,
		)
		return nil, fmt.Errorf("execute: %w", err)
	}

	return &Result{
		CorrelationID:    sent.CorrelationID,
		SenderBalance:    sender.Balance,
		RecipientBalance: recipient.Balance,
		Sent:             *sent,
		Received:         *received,
	}, nil
}

func (e *Engine) buildRecords(sender, recipient *domain.Account, amount int64, channel domain.Channel) (*domain.Transaction, *domain.Transaction) {
	correlationID := e.newID()
	now := e.now()
	sentKind, receivedKind := channel.Kinds()

	sent := &domain.Transaction{
		ID:            correlationID + "_out",
		CorrelationID: correlationID,
		Kind:          sentKind,
		Description:   sentDescription(channel, recipient.DisplayName),
		Amount:        -amount,
		Timestamp:     now,
		Status:        domain.TransactionStatusCompleted,
		Category:      domain.CategoryTransfer,
		FromID:        sender.ID,
		ToID:          recipient.ID,
	}
	received := &domain.Transaction{
		ID:            correlationID + "_in",
		CorrelationID: correlationID,
		Kind:          receivedKind,
		Description:   receivedDescription(channel, sender.DisplayName),
		Amount:        amount,
		Timestamp:     now,
		Status:        domain.TransactionStatusCompleted,
		Category:      domain.CategoryTransfer,
		FromID:        sender.ID,
		ToID:          recipient.ID,
	}
	return sent, received
}

func sentDescription(channel domain.Channel, counterparty string) string {
	if channel == domain.ChannelTED {
		return "TED enviada para " + counterparty
	}
	return "PIX enviado para " + counterparty
}

func receivedDescription(channel domain.Channel, counterparty string) string {
	if channel == domain.ChannelTED {
		return "TED recebida de " + counterparty
	}
	return "PIX recebido de " + counterparty
}

// appendRecords tries both records even if the first fails, so the error
// names exactly what is missing from the log.
func (e *Engine) appendRecords(ctx context.Context, sent, received *domain.Transaction) error {
	var missing []string
	var causes []error

	if err := e.log.AppendTransaction(ctx, sent); err != nil {
		missing = append(missing, sent.ID)
		causes = append(causes, err)
	}
	if err := e.log.AppendTransaction(ctx, received); err != nil {
		missing = append(missing, received.ID)
		causes = append(causes, err)
	}

	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("appendRecords: missing %v: %w: %w", missing, domain.ErrPartialCommit, errors.Join(causes...))
}

func (e *Engine) publish(ctx context.Context, res *Result, channel domain.Channel) {
	if e.events == nil {
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := &domain.TransferCompleted{
		CorrelationID:    res.CorrelationID,
		Channel:          channel,
		SenderID:         res.Sent.FromID,
		RecipientID:      res.Sent.ToID,
		Amount:           res.Received.Amount,
		SenderBalance:    res.SenderBalance,
		RecipientBalance: res.RecipientBalance,
		OccurredAt:       res.Sent.Timestamp,
	}
	if err := e.events.Publish(pubCtx, event); err != nil {
		logging.FromContext(ctx).Warn("failed to publish transfer event",
			"correlation_id", res.CorrelationID,
			"error", err,
		)
	}
}
