package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/neobank-ledger/internal/domain"
)

func sampleAccount(id, number string, balance int64) *domain.Account {
	return &domain.Account{
		ID:               id,
		DisplayName:      "Holder " + id,
		CredentialSecret: "hash",
		Balance:          balance,
		AccountNumber:    number,
		BranchCode:       domain.DefaultBranchCode,
		CreatedAt:        time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestJSONAccountStore_ListMissingFileInitializesEmpty(t *testing.T) {
	dir := t.TempDir()
	store := NewJSONAccountStore(dir)

	accounts, err := store.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, accounts)

	data, err := os.ReadFile(filepath.Join(dir, AccountsFile))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestJSONAccountStore_AppendPreservesOrder(t *testing.T) {
	ctx := context.Background()
	store := NewJSONAccountStore(t.TempDir())

	require.NoError(t, store.AppendAccount(ctx, sampleAccount("52998224725", "100001", 500)))
	require.NoError(t, store.AppendAccount(ctx, sampleAccount("11144477735", "100002", 700)))

	accounts, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "52998224725", accounts[0].ID)
	assert.Equal(t, "11144477735", accounts[1].ID)
	assert.Equal(t, int64(700), accounts[1].Balance)
	assert.True(t, accounts[0].CreatedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestJSONAccountStore_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	store := NewJSONAccountStore(t.TempDir())

	require.NoError(t, store.AppendAccount(ctx, sampleAccount("52998224725", "100001", 500)))

	replacement := []domain.Account{
		*sampleAccount("11144477735", "100002", 10),
		*sampleAccount("12345678909", "100003", 20),
	}
	require.NoError(t, store.ReplaceAllAccounts(ctx, replacement))

	accounts, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, replacement, accounts)
}

func TestJSONAccountStore_CorruptFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, AccountsFile), []byte("{not json"), 0o644))

	_, err := NewJSONAccountStore(dir).ListAccounts(context.Background())
	require.Error(t, err)
}

func TestJSONAccountStore_FailedWriteKeepsPreviousFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewJSONAccountStore(dir)
	require.NoError(t, store.AppendAccount(ctx, sampleAccount("52998224725", "100001", 500)))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err := store.ReplaceAllAccounts(cancelled, nil)
	require.ErrorIs(t, err, context.Canceled)

	accounts, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestJSONAccountStore_PingContext(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, NewJSONAccountStore(dir).PingContext(context.Background()))
	assert.Error(t, NewJSONAccountStore(filepath.Join(dir, "missing")).PingContext(context.Background()))
}

func TestJSONTransactionLog_AppendAndList(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	log := NewJSONTransactionLog(dir)

	txs, err := log.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)

	sent := &domain.Transaction{
		ID:            "abc_out",
		CorrelationID: "abc",
		Kind:          domain.KindPixSent,
		Description:   "PIX sent to Bob",
		Amount:        -1500,
		Timestamp:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Status:        domain.TransactionStatusCompleted,
		Category:      domain.CategoryTransfer,
		FromID:        "52998224725",
		ToID:          "11144477735",
	}
	require.NoError(t, log.AppendTransaction(ctx, sent))

	txs, err = log.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, *sent, txs[0])

	data, err := os.ReadFile(filepath.Join(dir, TransactionsFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"correlationId": "abc"`)
	assert.Contains(t, string(data), `"kind": "pix_sent"`)
}
