package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/neobank-ledger/internal/domain"
	"github.com/josh-kwaku/neobank-ledger/internal/repository"
	"github.com/josh-kwaku/neobank-ledger/internal/testutil"
)

func TestAccountRepository_AppendListReplace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAccountRepository(db)
	ctx := context.Background()

	accounts, err := repo.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)

	alice := testutil.SeedAccount(t, repo, testutil.AliceID, "Alice", 10_000)
	testutil.SeedAccount(t, repo, testutil.BobID, "Bob", 500)

	err = repo.AppendAccount(ctx, testutil.NewTestAccount(t, testutil.AliceID, "Alice again", 0))
	require.ErrorIs(t, err, domain.ErrAccountExists)

	accounts, err = repo.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, testutil.AliceID, accounts[0].ID)
	assert.Equal(t, alice.AccountNumber, accounts[0].AccountNumber)

	accounts[0].Balance = 7_000
	accounts[1].Balance = 3_500
	require.NoError(t, repo.ReplaceAllAccounts(ctx, accounts))

	assert.Equal(t, int64(7_000), testutil.GetAccountBalance(t, db, testutil.AliceID))
	assert.Equal(t, int64(3_500), testutil.GetAccountBalance(t, db, testutil.BobID))
}

func TestAccountRepository_ReplaceAllRollsBackOnNegativeBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAccountRepository(db)
	ctx := context.Background()

	testutil.SeedAccount(t, repo, testutil.AliceID, "Alice", 10_000)

	accounts, err := repo.ListAccounts(ctx)
	require.NoError(t, err)
	accounts[0].Balance = -1

	require.Error(t, repo.ReplaceAllAccounts(ctx, accounts))
	assert.Equal(t, int64(10_000), testutil.GetAccountBalance(t, db, testutil.AliceID))
}

func TestTransactionRepository_AppendAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTransactionRepository(db)
	ctx := context.Background()

	ts := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	for _, tx := range []domain.Transaction{
		{ID: "c1_out", CorrelationID: "c1", Kind: domain.KindPixSent, Description: "out", Amount: -100, Timestamp: ts, Status: domain.TransactionStatusCompleted, Category: domain.CategoryTransfer, FromID: testutil.AliceID, ToID: testutil.BobID},
		{ID: "c1_in", CorrelationID: "c1", Kind: domain.KindPixReceived, Description: "in", Amount: 100, Timestamp: ts, Status: domain.TransactionStatusCompleted, Category: domain.CategoryTransfer, FromID: testutil.AliceID, ToID: testutil.BobID},
	} {
		require.NoError(t, repo.AppendTransaction(ctx, &tx))
	}

	txs, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "c1_out", txs[0].ID)
	assert.Equal(t, "c1_in", txs[1].ID)
	assert.True(t, txs[0].Timestamp.Equal(ts))
	assert.Equal(t, 2, testutil.CountTransactions(t, db, "c1"))
}

func TestIdempotencyRepository_SetGetClean(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewIdempotencyRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Set(ctx, &repository.IdempotencyCacheEntry{
		Key: "k1", AccountID: testutil.AliceID, RequestHash: "h", StatusCode: 201,
		ResponseBody: []byte(`{}`), CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, repo.Set(ctx, &repository.IdempotencyCacheEntry{
		Key: "k2", AccountID: testutil.AliceID, RequestHash: "h", StatusCode: 201,
		ResponseBody: []byte(`{}`), CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	}))

	got, err := repo.Get(ctx, "k1", testutil.AliceID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 201, got.StatusCode)

	expired, err := repo.Get(ctx, "k2", testutil.AliceID)
	require.NoError(t, err)
	assert.Nil(t, expired)

	n, err := repo.CleanExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
