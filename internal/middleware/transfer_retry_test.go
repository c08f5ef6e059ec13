package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/neobank-ledger/internal/auth"
	"github.com/josh-kwaku/neobank-ledger/internal/domain"
	"github.com/josh-kwaku/neobank-ledger/internal/handler"
	"github.com/josh-kwaku/neobank-ledger/internal/repository"
	"github.com/josh-kwaku/neobank-ledger/internal/service/transfer"
	"github.com/josh-kwaku/neobank-ledger/internal/testutil"
)

// failingLog rejects the first n appends.
type failingLog struct {
	*repository.JSONTransactionLog
	mu       sync.Mutex
	failures int
}

func (l *failingLog) AppendTransaction(ctx context.Context, tx *domain.Transaction) error {
	l.mu.Lock()
	if l.failures > 0 {
		l.failures--
		l.mu.Unlock()
		return errors.New("disk full")
	}
	l.mu.Unlock()
	return l.JSONTransactionLog.AppendTransaction(ctx, tx)
}

func TestIdempotency_PartialCommitRetryDoesNotDebitTwice(t *testing.T) {
	dir := t.TempDir()
	accounts := repository.NewJSONAccountStore(dir)
	txLog := &failingLog{JSONTransactionLog: repository.NewJSONTransactionLog(dir), failures: 2}

	testutil.SeedAccount(t, accounts, testutil.AliceID, "Alice", 5000)
	testutil.SeedAccount(t, accounts, testutil.BobID, "Bob", 1500)

	engine := transfer.NewEngine(accounts, txLog, nil, &sync.Mutex{})
	h := Idempotency(repository.NewMemoryIdempotencyCache())(http.HandlerFunc(handler.NewTransferHandler(engine).Create))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers",
			strings.NewReader(`{"recipient_key":"`+testutil.BobID+`","amount":1500}`))
		req.Header.Set("Idempotency-Key", "same-key")
		req = req.WithContext(auth.ContextWithAccountID(req.Context(), testutil.AliceID))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	require.Equal(t, http.StatusInternalServerError, first.Code)
	assert.Contains(t, first.Body.String(), "PARTIAL_COMMIT")

	retry := send()
	assert.Equal(t, http.StatusInternalServerError, retry.Code)
	assert.Equal(t, "true", retry.Header().Get("X-Idempotent-Replayed"))

	stored, err := accounts.ListAccounts(context.Background())
	require.NoError(t, err)
	balances := map[string]int64{}
	for _, a := range stored {
		balances[a.ID] = a.Balance
	}
	assert.Equal(t, int64(3500), balances[testutil.AliceID])
	assert.Equal(t, int64(3000), balances[testutil.BobID])
}
