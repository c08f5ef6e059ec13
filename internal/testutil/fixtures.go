package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/neobank-ledger/internal/domain"
)

const TestSecret = "password123"

// Valid CPFs for fixtures.
const (
	AliceID = "52998224725"
	BobID   = "11144477735"
	CarolID = "12345678909"
)

type accountAppender interface {
	AppendAccount(ctx context.Context, account *domain.Account) error
}

func NewTestAccount(t *testing.T, id, name string, balance int64) *domain.Account {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestSecret), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash secret: %v", err)
	}
	return &domain.Account{
		ID:               id,
		DisplayName:      name,
		CredentialSecret: string(hash),
		Balance:          balance,
		AccountNumber:    id[:domain.AccountNumberDigits],
		BranchCode:       domain.DefaultBranchCode,
		CreatedAt:        time.Now().UTC().Truncate(time.Microsecond),
	}
}

// SeedAccount appends a fresh account through any account store.
func SeedAccount(t *testing.T, store accountAppender, id, name string, balance int64) *domain.Account {
	t.Helper()

	a := NewTestAccount(t, id, name, balance)
	if err := store.AppendAccount(context.Background(), a); err != nil {
		t.Fatalf("seed account %s: %v", id, err)
	}
	return a
}

func GetAccountBalance(t *testing.T, db *sql.DB, accountID string) int64 {
	t.Helper()

	var balance int64
	err := db.QueryRow(`SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	if err != nil {
		t.Fatalf("get account balance %s: %v", accountID, err)
	}
	return balance
}

func CountTransactions(t *testing.T, db *sql.DB, correlationID string) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE correlation_id = $1`, correlationID).Scan(&count)
	if err != nil {
		t.Fatalf("count transactions for %s: %v", correlationID, err)
	}
	return count
}
