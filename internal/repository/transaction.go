package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/josh-kwaku/neobank-ledger/internal/domain"
)

const transactionColumns = `id, correlation_id, kind, description, amount,
	occurred_at, status, category, from_id, to_id`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}
	defer rows.Close()

	txs := []domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: scan: %w", err)
		}
		txs = append(txs, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListTransactions: rows: %w", err)
	}
	return txs, nil
}

func (r *TransactionRepository) AppendTransaction(ctx context.Context, t *domain.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.CorrelationID, t.Kind, t.Description, t.Amount,
		t.Timestamp, t.Status, t.Category, t.FromID, t.ToID,
	)
	if err != nil {
		return fmt.Errorf("AppendTransaction: %w", err)
	}
	return nil
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var t domain.Transaction
	err := s.Scan(
		&t.ID, &t.CorrelationID, &t.Kind, &t.Description, &t.Amount,
		&t.Timestamp, &t.Status, &t.Category, &t.FromID, &t.ToID,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
