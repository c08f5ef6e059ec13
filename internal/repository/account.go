package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/josh-kwaku/neobank-ledger/internal/domain"
)

const accountColumns = `id, display_name, credential_secret, balance,
	account_number, branch_code, created_at`

// AccountRepository is the Postgres-backed account store. Row order follows
// insertion via the seq column.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("ListAccounts: scan: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListAccounts: rows: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) AppendAccount(ctx context.Context, account *domain.Account) error {
	if err := insertAccount(ctx, r.db, account); err != nil {
		return fmt.Errorf("AppendAccount: %w", err)
	}
	return nil
}

func (r *AccountRepository) ReplaceAllAccounts(ctx context.Context, accounts []domain.Account) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ReplaceAllAccounts: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return fmt.Errorf("ReplaceAllAccounts: delete: %w", err)
	}
	for i := range accounts {
		if err := insertAccount(ctx, tx, &accounts[i]); err != nil {
			return fmt.Errorf("ReplaceAllAccounts: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ReplaceAllAccounts: commit: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertAccount(ctx context.Context, db execer, a *domain.Account) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.DisplayName, a.CredentialSecret, a.Balance,
		a.AccountNumber, a.BranchCode, a.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("insertAccount %s: %w", a.ID, domain.ErrAccountExists)
		}
		return fmt.Errorf("insertAccount %s: %w", a.ID, err)
	}
	return nil
}

func scanAccount(s scanner) (*domain.Account, error) {
	var a domain.Account
	err := s.Scan(
		&a.ID, &a.DisplayName, &a.CredentialSecret, &a.Balance,
		&a.AccountNumber, &a.BranchCode, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
