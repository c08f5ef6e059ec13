package repository

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/josh-kwaku/neobank-ledger/internal/domain"
)

type accountRecord struct {
	ID               string    `json:"id"`
	DisplayName      string    `json:"displayName"`
	CredentialSecret string    `json:"credentialSecret"`
	Balance          int64     `json:"balance"`
	AccountNumber    string    `json:"accountNumber"`
	BranchCode       string    `json:"branchCode"`
	CreatedAt        time.Time `json:"createdAt"`
}

func toAccountRecord(a *domain.Account) accountRecord {
	return accountRecord{
		ID:               a.ID,
		DisplayName:      a.DisplayName,
		CredentialSecret: a.CredentialSecret,
		Balance:          a.Balance,
		AccountNumber:    a.AccountNumber,
		BranchCode:       a.BranchCode,
		CreatedAt:        a.CreatedAt,
	}
}

func (r accountRecord) toDomain() domain.Account {
	return domain.Account{
		ID:               r.ID,
		DisplayName:      r.DisplayName,
		CredentialSecret: r.CredentialSecret,
		Balance:          r.Balance,
		AccountNumber:    r.AccountNumber,
		BranchCode:       r.BranchCode,
		CreatedAt:        r.CreatedAt,
	}
}

// JSONAccountStore keeps every account in <dir>/accounts.json.
type JSONAccountStore struct {
	dir  string
	file *jsonFile[accountRecord]
}

func NewJSONAccountStore(dir string) *JSONAccountStore {
	return &JSONAccountStore{dir: dir, file: newJSONFile[accountRecord](dir, AccountsFile)}
}

func (s *JSONAccountStore) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	records, err := s.file.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}
	accounts := make([]domain.Account, len(records))
	for i, rec := range records {
		accounts[i] = rec.toDomain()
	}
	return accounts, nil
}

func (s *JSONAccountStore) AppendAccount(ctx context.Context, account *domain.Account) error {
	if err := s.file.append(ctx, toAccountRecord(account)); err != nil {
		return fmt.Errorf("AppendAccount: %w", err)
	}
	return nil
}

func (s *JSONAccountStore) ReplaceAllAccounts(ctx context.Context, accounts []domain.Account) error {
	records := make([]accountRecord, len(accounts))
	for i := range accounts {
		records[i] = toAccountRecord(&accounts[i])
	}
	if err := s.file.store(ctx, records); err != nil {
		return fmt.Errorf("ReplaceAllAccounts: %w", err)
	}
	return nil
}

// PingContext checks that the data directory is reachable.
func (s *JSONAccountStore) PingContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("PingContext: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("PingContext: %s is not a directory", s.dir)
	}
	return nil
}
