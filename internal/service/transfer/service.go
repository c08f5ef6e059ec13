package transfer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/neobank-ledger/internal/domain"
)

type accountStore interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	ReplaceAllAccounts(ctx context.Context, accounts []domain.Account) error
}

type transactionLog interface {
	AppendTransaction(ctx context.Context, tx *domain.Transaction) error
}

type eventPublisher interface {
	Publish(ctx context.Context, event *domain.TransferCompleted) error
}

// Engine moves money between two accounts. Every transfer runs entirely
// under writes, which must be the same lock guarding every other writer of
// the account collection.
type Engine struct {
	accounts accountStore
	log      transactionLog
	events   eventPublisher
	writes   sync.Locker
	now      func() time.Time
	newID    func() string
}

func NewEngine(accounts accountStore, log transactionLog, events eventPublisher, writes sync.Locker) *Engine {
	return &Engine{
		accounts: accounts,
		log:      log,
		events:   events,
		writes:   writes,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}
