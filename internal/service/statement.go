package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/josh-kwaku/neobank-ledger/internal/domain"
)

type StatementType string

const (
	StatementAll     StatementType = "all"
	StatementIncome  StatementType = "income"
	StatementExpense StatementType = "expense"
	StatementPix     StatementType = "pix"
	StatementTED     StatementType = "ted"
)

func (t StatementType) IsValid() bool {
	switch t {
	case StatementAll, StatementIncome, StatementExpense, StatementPix, StatementTED:
		return true
	}
	return false
}

type transactionLister interface {
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
}

type StatementQuery struct {
	Type StatementType
	// From is inclusive, To exclusive. Zero values leave that side open.
	From  time.Time
	To    time.Time
	Limit int
}

type Statement struct {
	AccountID    string
	Transactions []domain.Transaction
	TotalIncome  int64
	TotalExpense int64
}

type StatementService struct {
	log transactionLister
}

func NewStatementService(log transactionLister) *StatementService {
	return &StatementService{log: log}
}

// TransactionsFor returns every record naming accountID as either party,
// most recent first.
func (s *StatementService) TransactionsFor(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	all, err := s.log.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("TransactionsFor: %w: %w", domain.ErrStoreIO, err)
	}

	var out []domain.Transaction
	for i := range all {
		if all[i].BelongsTo(accountID) {
			out = append(out, all[i])
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// Statement is the account holder's view: only their own half of each
// transfer, filtered by q, with income and expense totals over the filtered
// set before Limit is applied.
func (s *StatementService) Statement(ctx context.Context, accountID string, q StatementQuery) (*Statement, error) {
	if q.Type == "" {
		q.Type = StatementAll
	}
	if !q.Type.IsValid() || q.Limit < 0 {
		return nil, fmt.Errorf("Statement: %w", domain.ErrInvalidRequest)
	}

	related, err := s.TransactionsFor(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("Statement: %w", err)
	}

	st := &Statement{AccountID: accountID, Transactions: []domain.Transaction{}}
	for i := range related {
		tx := &related[i]
		if !tx.IsSideOf(accountID) || !q.matches(tx) {
			continue
		}
		if tx.IsIncome() {
			st.TotalIncome += tx.Amount
		} else {
			st.TotalExpense -= tx.Amount
		}
		st.Transactions = append(st.Transactions, *tx)
	}

	if q.Limit > 0 && len(st.Transactions) > q.Limit {
		st.Transactions = st.Transactions[:q.Limit]
	}
	return st, nil
}

func (q StatementQuery) matches(tx *domain.Transaction) bool {
	if !q.From.IsZero() && tx.Timestamp.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && !tx.Timestamp.Before(q.To) {
		return false
	}

	switch q.Type {
	case StatementIncome:
		return tx.IsIncome()
	case StatementExpense:
		return tx.IsExpense()
	case StatementPix:
		return tx.Channel() == domain.ChannelPix
	case StatementTED:
		return tx.Channel() == domain.ChannelTED
	default:
		return true
	}
}

func sortNewestFirst(txs []domain.Transaction) {
	slices.SortStableFunc(txs, func(a, b domain.Transaction) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}
