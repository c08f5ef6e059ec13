// Command import-legacy loads the accounts.json and transactions.json files
// of the previous web app into the configured ledger store.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/josh-kwaku/neobank-ledger/internal/config"
	"github.com/josh-kwaku/neobank-ledger/internal/legacy"
	"github.com/josh-kwaku/neobank-ledger/internal/logging"
	"github.com/josh-kwaku/neobank-ledger/internal/repository"
	"github.com/josh-kwaku/neobank-ledger/internal/service"
)

func main() {
	accountsPath := flag.String("accounts", "data/accounts.json", "legacy accounts file")
	transactionsPath := flag.String("transactions", "data/transactions.json", "legacy transactions file, skipped if missing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Init("neobank-ledger-import", cfg.LogLevel, cfg.AppEnv)

	if err := run(context.Background(), cfg, *accountsPath, *transactionsPath); err != nil {
		slog.Error("legacy import failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, accountsPath, transactionsPath string) error {
	accountsFile, err := os.Open(accountsPath)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer accountsFile.Close()

	var transactions io.Reader
	txFile, err := os.Open(transactionsPath)
	switch {
	case err == nil:
		defer txFile.Close()
		transactions = txFile
	case os.IsNotExist(err):
		slog.Warn("no legacy transactions file, importing accounts only", "path", transactionsPath)
	default:
		return fmt.Errorf("run: %w", err)
	}

	importer, closeStore, err := newImporter(ctx, cfg)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer closeStore()

	report, err := importer.Import(ctx, accountsFile, transactions)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	fmt.Printf("imported %d accounts and %d transactions, skipped %d\n",
		report.Accounts, report.Transactions, len(report.SkippedTransactions))
	return nil
}

func newImporter(ctx context.Context, cfg *config.Config) (*legacy.Importer, func(), error) {
	accountCfg := service.AccountConfig{
		StartingBalance: cfg.StartingBalance,
		BranchCode:      cfg.BranchCode,
	}

	if cfg.StoreBackend != config.StoreBackendPostgres {
		accounts := service.NewAccountService(repository.NewJSONAccountStore(cfg.DataDir), &sync.Mutex{}, accountCfg)
		return legacy.NewImporter(accounts, repository.NewJSONTransactionLog(cfg.DataDir)), func() {}, nil
	}

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("newImporter: %w", err)
	}
	if err := repository.RunMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("newImporter: %w", err)
	}

	accounts := service.NewAccountService(repository.NewAccountRepository(db), &sync.Mutex{}, accountCfg)
	return legacy.NewImporter(accounts, repository.NewTransactionRepository(db)), closeDB(db), nil
}

func closeDB(db *sql.DB) func() {
	return func() { db.Close() }
}
