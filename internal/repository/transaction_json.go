package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/josh-kwaku/neobank-ledger/internal/domain"
)

type transactionRecord struct {
	ID            string    `json:"id"`
	CorrelationID string    `json:"correlationId"`
	Kind          string    `json:"kind"`
	Description   string    `json:"description"`
	Amount        int64     `json:"amount"`
	Timestamp     time.Time `json:"timestamp"`
	Status        string    `json:"status"`
	Category      string    `json:"category"`
	FromID        string    `json:"fromId"`
	ToID          string    `json:"toId"`
}

func toTransactionRecord(t *domain.Transaction) transactionRecord {
	return transactionRecord{
		ID:            t.ID,
		CorrelationID: t.CorrelationID,
		Kind:          string(t.Kind),
		Description:   t.Description,
		Amount:        t.Amount,
		Timestamp:     t.Timestamp,
		Status:        string(t.Status),
		Category:      t.Category,
		FromID:        t.FromID,
		ToID:          t.ToID,
	}
}

func (r transactionRecord) toDomain() domain.Transaction {
	return domain.Transaction{
		ID:            r.ID,
		CorrelationID: r.CorrelationID,
		Kind:          domain.TransactionKind(r.Kind),
		Description:   r.Description,
		Amount:        r.Amount,
		Timestamp:     r.Timestamp,
		Status:        domain.TransactionStatus(r.Status),
		Category:      r.Category,
		FromID:        r.FromID,
		ToID:          r.ToID,
	}
}

// JSONTransactionLog is an append-only log in <dir>/transactions.json.
type JSONTransactionLog struct {
	file *jsonFile[transactionRecord]
}

func NewJSONTransactionLog(dir string) *JSONTransactionLog {
	return &JSONTransactionLog{file: newJSONFile[transactionRecord](dir, TransactionsFile)}
}

func (l *JSONTransactionLog) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	records, err := l.file.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}
	txs := make([]domain.Transaction, len(records))
	for i, rec := range records {
		txs[i] = rec.toDomain()
	}
	return txs, nil
}

func (l *JSONTransactionLog) AppendTransaction(ctx context.Context, tx *domain.Transaction) error {
	if err := l.file.append(ctx, toTransactionRecord(tx)); err != nil {
		return fmt.Errorf("AppendTransaction: %w", err)
	}
	return nil
}
