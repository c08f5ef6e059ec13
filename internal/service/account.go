package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/neobank-ledger/internal/domain"
	"github.com/josh-kwaku/neobank-ledger/internal/logging"
)

const (
	minSecretLength         = 6
	accountNumberAttempts   = 50
	accountNumberLowerBound = 100_000
)

type accountStore interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	AppendAccount(ctx context.Context, account *domain.Account) error
	ReplaceAllAccounts(ctx context.Context, accounts []domain.Account) error
}

type AccountConfig struct {
	StartingBalance int64
	BranchCode      string
	BcryptCost      int
}

// AccountService owns registration and the administrative bulk update.
// Mutations take the same ledger write lock as the transfer engine.
type AccountService struct {
	accounts accountStore
	writes   sync.Locker
	cfg      AccountConfig
	now      func() time.Time
}

func NewAccountService(accounts accountStore, writes sync.Locker, cfg AccountConfig) *AccountService {
	if cfg.BranchCode == "" {
		cfg.BranchCode = domain.DefaultBranchCode
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AccountService{
		accounts: accounts,
		writes:   writes,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type RegisterRequest struct {
	NationalID  string
	DisplayName string
	Secret      string
}

func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return nil, fmt.Errorf("Register: display name required: %w", domain.ErrInvalidRequest)
	}
	if !domain.IsValidNationalID(req.NationalID) {
		return nil, fmt.Errorf("Register: %w", domain.ErrInvalidNationalID)
	}
	id := domain.NormalizeNationalID(req.NationalID)

	hash, err := s.HashSecret(req.Secret)
	if err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}

	s.writes.Lock()
	defer s.writes.Unlock()

	existing, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("Register: %w: %w", domain.ErrStoreIO, err)
	}
	if domain.FindAccount(existing, id) >= 0 {
		return nil, fmt.Errorf("Register: %w", domain.ErrAccountExists)
	}

	taken := make(map[string]struct{}, len(existing))
	for i := range existing {
		taken[existing[i].AccountNumber] = struct{}{}
	}
	acctNum, err := generateAccountNumber(taken)
	if err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}

	account := &domain.Account{
		ID:               id,
		DisplayName:      name,
		CredentialSecret: hash,
		Balance:          s.cfg.StartingBalance,
		AccountNumber:    acctNum,
		BranchCode:       s.cfg.BranchCode,
		CreatedAt:        s.now(),
	}

	if err := s.accounts.AppendAccount(ctx, account); err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			return nil, fmt.Errorf("Register: %w", err)
		}
		return nil, fmt.Errorf("Register: %w: %w", domain.ErrStoreIO, err)
	}

	log.Info("account registered",
		"account_id", account.ID,
		"account_number", account.AccountNumber,
		"branch_code", account.BranchCode,
	)

	return account, nil
}

func (s *AccountService) HashSecret(secret string) (string, error) {
	if len(secret) < minSecretLength {
		return "", fmt.Errorf("HashSecret: secret shorter than %d characters: %w", minSecretLength, domain.ErrInvalidRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("HashSecret: %w", err)
	}
	return string(hash), nil
}

func (s *AccountService) Authenticate(ctx context.Context, nationalID, secret string) (*domain.Account, error) {
	account, err := s.GetAccount(ctx, nationalID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, fmt.Errorf("Authenticate: %w", domain.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("Authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.CredentialSecret), []byte(secret)); err != nil {
		return nil, fmt.Errorf("Authenticate: %w", domain.ErrInvalidCredentials)
	}
	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetAccount: %w: %w", domain.ErrStoreIO, err)
	}
	i := domain.FindAccount(accounts, domain.NormalizeNationalID(id))
	if i < 0 {
		return nil, fmt.Errorf("GetAccount: %w", domain.ErrAccountNotFound)
	}
	return &accounts[i], nil
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: %w: %w", domain.ErrStoreIO, err)
	}
	return accounts, nil
}

// ReplaceAll overwrites the account collection. An entry with an empty
// CredentialSecret keeps the stored secret of the account with the same ID.
// It returns the collection as stored, with branch and creation defaults filled.
func (s *AccountService) ReplaceAll(ctx context.Context, accounts []domain.Account) ([]domain.Account, error) {
	if err := validateReplacement(accounts); err != nil {
		return nil, fmt.Errorf("ReplaceAll: %w", err)
	}

	s.writes.Lock()
	defer s.writes.Unlock()

	current, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("ReplaceAll: %w: %w", domain.ErrStoreIO, err)
	}

	next := make([]domain.Account, len(accounts))
	copy(next, accounts)
	for i := range next {
		if next[i].BranchCode == "" {
			next[i].BranchCode = s.cfg.BranchCode
		}
		if next[i].CreatedAt.IsZero() {
			next[i].CreatedAt = s.now()
		}
		if next[i].CredentialSecret != "" {
			continue
		}
		j := domain.FindAccount(current, next[i].ID)
		if j < 0 {
			return nil, fmt.Errorf("ReplaceAll: account %s has no credential secret: %w", next[i].ID, domain.ErrInvalidRequest)
		}
		next[i].CredentialSecret = current[j].CredentialSecret
	}

	if err := s.accounts.ReplaceAllAccounts(ctx, next); err != nil {
		return nil, fmt.Errorf("ReplaceAll: %w: %w", domain.ErrStoreIO, err)
	}

	logging.FromContext(ctx).Warn("account collection replaced",
		"previous_count", len(current),
		"count", len(next),
	)
	return next, nil
}

func validateReplacement(accounts []domain.Account) error {
	ids := make(map[string]struct{}, len(accounts))
	numbers := make(map[string]struct{}, len(accounts))

	for i := range accounts {
		a := &accounts[i]
		if a.ID != domain.NormalizeNationalID(a.ID) || !domain.IsValidNationalID(a.ID) {
			return fmt.Errorf("validateReplacement: account %d: %w", i, domain.ErrInvalidNationalID)
		}
		if strings.TrimSpace(a.DisplayName) == "" {
			return fmt.Errorf("validateReplacement: account %s: display name required: %w", a.ID, domain.ErrInvalidRequest)
		}
		if a.Balance < 0 {
			return fmt.Errorf("validateReplacement: account %s: negative balance: %w", a.ID, domain.ErrInvalidRequest)
		}
		if len(a.AccountNumber) != domain.AccountNumberDigits {
			return fmt.Errorf("validateReplacement: account %s: account number must have %d digits: %w", a.ID, domain.AccountNumberDigits, domain.ErrInvalidRequest)
		}
		if _, dup := ids[a.ID]; dup {
			return fmt.Errorf("validateReplacement: duplicate id %s: %w", a.ID, domain.ErrInvalidRequest)
		}
		if _, dup := numbers[a.AccountNumber]; dup {
			return fmt.Errorf("validateReplacement: duplicate account number %s: %w", a.AccountNumber, domain.ErrInvalidRequest)
		}
		ids[a.ID] = struct{}{}
		numbers[a.AccountNumber] = struct{}{}
	}
	return nil
}

func generateAccountNumber(taken map[string]struct{}) (string, error) {
	span := big.NewInt(1_000_000 - accountNumberLowerBound)
	for range accountNumberAttempts {
		n, err := rand.Int(rand.Reader, span)
		if err != nil {
			return "", fmt.Errorf("generateAccountNumber: %w", err)
		}
		candidate := fmt.Sprintf("%06d", n.Int64()+accountNumberLowerBound)
		if _, used := taken[candidate]; !used {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("generateAccountNumber: no free number after %d attempts", accountNumberAttempts)
}
