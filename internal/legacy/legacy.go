// Package legacy converts the JSON data files of the previous web app into
// ledger records.
package legacy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/josh-kwaku/neobank-ledger/internal/domain"
	"github.com/josh-kwaku/neobank-ledger/internal/logging"
)

// Account is one entry of the legacy accounts.json. Balance is in reais and
// Password is plaintext.
type Account struct {
	CPF           string  `json:"cpf"`
	Password      string  `json:"password"`
	Name          string  `json:"name"`
	Balance       float64 `json:"balance"`
	AccountNumber string  `json:"accountNumber"`
	Agency        string  `json:"agency"`
	CreatedAt     string  `json:"createdAt"`
}

// Transaction is one entry of the legacy transactions.json. IDs look like
// "<millis>_out" and "<millis>_in".
type Transaction struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Status      string  `json:"status"`
	Category    string  `json:"category"`
	FromCPF     string  `json:"fromCPF"`
	ToCPF       string  `json:"toCPF"`
}

type Skipped struct {
	ID     string
	Reason string
}

type Report struct {
	Accounts            int
	Transactions        int
	SkippedTransactions []Skipped
}

type accountReplacer interface {
	ReplaceAll(ctx context.Context, accounts []domain.Account) ([]domain.Account, error)
	HashSecret(secret string) (string, error)
}

type transactionLog interface {
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
	AppendTransaction(ctx context.Context, tx *domain.Transaction) error
}

type Importer struct {
	accounts accountReplacer
	log      transactionLog
}

func NewImporter(accounts accountReplacer, log transactionLog) *Importer {
	return &Importer{accounts: accounts, log: log}
}

// Import replaces the account collection with the legacy accounts and
// appends every convertible legacy transaction. The target transaction log
// must be empty.
func (im *Importer) Import(ctx context.Context, accountsJSON, transactionsJSON io.Reader) (*Report, error) {
	log := logging.FromContext(ctx)

	var legacyAccounts []Account
	if err := json.NewDecoder(accountsJSON).Decode(&legacyAccounts); err != nil {
		return nil, fmt.Errorf("Import: decode accounts: %w", err)
	}
	var legacyTxs []Transaction
	if transactionsJSON != nil {
		if err := json.NewDecoder(transactionsJSON).Decode(&legacyTxs); err != nil {
			return nil, fmt.Errorf("Import: decode transactions: %w", err)
		}
	}

	existing, err := im.log.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("Import: %w: %w", domain.ErrStoreIO, err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("Import: transaction log already has %d records: %w", len(existing), domain.ErrInvalidRequest)
	}

	accounts, err := im.convertAccounts(legacyAccounts)
	if err != nil {
		return nil, fmt.Errorf("Import: %w", err)
	}
	if _, err := im.accounts.ReplaceAll(ctx, accounts); err != nil {
		return nil, fmt.Errorf("Import: %w", err)
	}

	report := &Report{Accounts: len(accounts)}
	txs, skipped := ConvertTransactions(legacyTxs)
	report.SkippedTransactions = skipped
	for _, s := range skipped {
		log.Warn("legacy transaction skipped", "id", s.ID, "reason", s.Reason)
	}

	for i := range txs {
		if err := im.log.AppendTransaction(ctx, &txs[i]); err != nil {
			return report, fmt.Errorf("Import: append %s: %w: %w", txs[i].ID, domain.ErrStoreIO, err)
		}
		report.Transactions++
	}

	log.Info("legacy data imported",
		"accounts", report.Accounts,
		"transactions", report.Transactions,
		"skipped", len(report.SkippedTransactions),
	)
	return report, nil
}

func (im *Importer) convertAccounts(in []Account) ([]domain.Account, error) {
	out := make([]domain.Account, 0, len(in))
	for i := range in {
		a, err := ConvertAccount(in[i])
		if err != nil {
			return nil, fmt.Errorf("convertAccounts: entry %d: %w", i, err)
		}
		a.CredentialSecret, err = im.accounts.HashSecret(in[i].Password)
		if err != nil {
			return nil, fmt.Errorf("convertAccounts: %s: %w", a.ID, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// ConvertAccount maps everything except the credential, which the caller
// hashes.
func ConvertAccount(in Account) (domain.Account, error) {
	if !domain.IsValidNationalID(in.CPF) {
		return domain.Account{}, fmt.Errorf("ConvertAccount: cpf %q: %w", in.CPF, domain.ErrInvalidNationalID)
	}
	if in.Balance < 0 {
		return domain.Account{}, fmt.Errorf("ConvertAccount: negative balance: %w", domain.ErrInvalidAmount)
	}

	createdAt, err := parseTimestamp(in.CreatedAt)
	if err != nil {
		return domain.Account{}, fmt.Errorf("ConvertAccount: createdAt: %w", err)
	}

	return domain.Account{
		ID:            domain.NormalizeNationalID(in.CPF),
		DisplayName:   strings.TrimSpace(in.Name),
		Balance:       domain.RoundToMinorUnits(in.Balance),
		AccountNumber: in.AccountNumber,
		BranchCode:    in.Agency,
		CreatedAt:     createdAt,
	}, nil
}

// ConvertTransactions converts what it can and reports the rest. Records
// without both parties or with an unknown type cannot be attributed and are
// skipped.
func ConvertTransactions(in []Transaction) ([]domain.Transaction, []Skipped) {
	var (
		out     []domain.Transaction
		skipped []Skipped
	)
	for i := range in {
		tx, err := convertTransaction(in[i])
		if err != nil {
			skipped = append(skipped, Skipped{ID: in[i].ID, Reason: err.Error()})
			continue
		}
		out = append(out, tx)
	}
	return out, skipped
}

func convertTransaction(in Transaction) (domain.Transaction, error) {
	kind := domain.TransactionKind(in.Type)
	switch kind {
	case domain.KindPixSent, domain.KindPixReceived, domain.KindTEDSent, domain.KindTEDReceived:
	default:
		return domain.Transaction{}, fmt.Errorf("unknown type %q", in.Type)
	}

	from := domain.NormalizeNationalID(in.FromCPF)
	to := domain.NormalizeNationalID(in.ToCPF)
	if from == "" || to == "" {
		return domain.Transaction{}, fmt.Errorf("missing fromCPF or toCPF")
	}

	amount := domain.RoundToMinorUnits(in.Amount)
	if amount == 0 {
		return domain.Transaction{}, fmt.Errorf("zero amount")
	}

	ts, err := parseTimestamp(in.Date)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("date: %w", err)
	}

	status := domain.TransactionStatus(in.Status)
	if status == "" {
		status = domain.TransactionStatusCompleted
	}
	category := in.Category
	if category == "" {
		category = domain.CategoryTransfer
	}

	return domain.Transaction{
		ID:            in.ID,
		CorrelationID: correlationID(in.ID),
		Kind:          kind,
		Description:   in.Description,
		Amount:        amount,
		Timestamp:     ts,
		Status:        status,
		Category:      category,
		FromID:        from,
		ToID:          to,
	}, nil
}

func correlationID(id string) string {
	if i := strings.LastIndexByte(id, '_'); i > 0 {
		return id[:i]
	}
	return id
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
