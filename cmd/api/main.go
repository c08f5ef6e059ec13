package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/josh-kwaku/neobank-ledger/api"
	"github.com/josh-kwaku/neobank-ledger/internal/broker"
	"github.com/josh-kwaku/neobank-ledger/internal/config"
	"github.com/josh-kwaku/neobank-ledger/internal/domain"
	"github.com/josh-kwaku/neobank-ledger/internal/handler"
	"github.com/josh-kwaku/neobank-ledger/internal/logging"
	"github.com/josh-kwaku/neobank-ledger/internal/metrics"
	"github.com/josh-kwaku/neobank-ledger/internal/middleware"
	"github.com/josh-kwaku/neobank-ledger/internal/repository"
	"github.com/josh-kwaku/neobank-ledger/internal/service"
	"github.com/josh-kwaku/neobank-ledger/internal/service/transfer"
)

const (
	serviceName = "neobank-ledger"
	version     = "1.0.0"
)

type accountStore interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	AppendAccount(ctx context.Context, account *domain.Account) error
	ReplaceAllAccounts(ctx context.Context, accounts []domain.Account) error
}

type transactionLog interface {
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
	AppendTransaction(ctx context.Context, tx *domain.Transaction) error
}

type idempotencyCache interface {
	Get(ctx context.Context, key, accountID string) (*repository.IdempotencyCacheEntry, error)
	Set(ctx context.Context, entry *repository.IdempotencyCacheEntry) error
	CleanExpired(ctx context.Context) (int64, error)
}

type pinger interface {
	PingContext(ctx context.Context) error
}

type eventPublisher interface {
	Publish(ctx context.Context, event *domain.TransferCompleted) error
}

type backend struct {
	accounts     accountStore
	transactions transactionLog
	idempotency  idempotencyCache
	health       pinger
	close        func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init(serviceName, cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openBackend(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer store.close()

	events, closeEvents, err := openPublisher(cfg, logger)
	if err != nil {
		slog.Error("failed to connect to message broker", "error", err)
		os.Exit(1)
	}
	defer closeEvents()

	// One lock for every writer of the account collection.
	writes := &sync.Mutex{}

	accountSvc := service.NewAccountService(store.accounts, writes, service.AccountConfig{
		StartingBalance: cfg.StartingBalance,
		BranchCode:      cfg.BranchCode,
	})
	statementSvc := service.NewStatementService(store.transactions)
	engine := transfer.NewEngine(store.accounts, store.transactions, events, writes)

	sweeper := service.NewIdempotencySweeper(store.idempotency, logger, cfg.IdempotencySweepInterval)
	go sweeper.Start(ctx)

	healthH := handler.NewHealthHandler(store.health, version)
	accountH := handler.NewAccountHandler(accountSvc, statementSvc, cfg.JWTSecret, cfg.JWTExpiry)
	authH := handler.NewAuthHandler(accountSvc, cfg.JWTSecret, cfg.JWTExpiry)
	transferH := handler.NewTransferHandler(engine)

	authMW := middleware.Auth(cfg.JWTSecret)
	idemMW := middleware.Idempotency(store.idempotency)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthH.Liveness)
	mux.HandleFunc("GET /health/ready", healthH.Readiness)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /docs", handler.ServeDocs())
	mux.HandleFunc("GET /docs/openapi.yaml", handler.ServeSpec(api.OpenAPISpec))

	mux.HandleFunc("POST /api/v1/accounts", accountH.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authH.Login)
	mux.Handle("GET /api/v1/accounts/{id}", authMW(http.HandlerFunc(accountH.Get)))
	mux.Handle("GET /api/v1/accounts/{id}/statement", authMW(http.HandlerFunc(accountH.Statement)))
	mux.Handle("POST /api/v1/transfers", authMW(idemMW(http.HandlerFunc(transferH.Create))))

	if cfg.AdminToken != "" {
		adminH := handler.NewAdminHandler(accountSvc, store.transactions)
		adminMW := middleware.AdminToken(cfg.AdminToken)
		mux.Handle("GET /api/v1/admin/accounts", adminMW(http.HandlerFunc(adminH.ListAccounts)))
		mux.Handle("PUT /api/v1/admin/accounts", adminMW(http.HandlerFunc(adminH.ReplaceAccounts)))
		mux.Handle("GET /api/v1/admin/transactions", adminMW(http.HandlerFunc(adminH.ListTransactions)))
	} else {
		slog.Info("admin routes disabled: ADMIN_TOKEN not set")
	}

	var h http.Handler = mux
	h = middleware.Metrics(h)
	h = middleware.Logging(h)
	h = middleware.Tracing(h)
	h = middleware.Recovery(h)
	h = otelhttp.NewHandler(h, serviceName)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr, "backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		db, err := connectDB(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("openBackend: %w", err)
		}
		if cfg.AutoMigrate {
			if err := repository.RunMigrations(ctx, db, cfg.MigrationsDir); err != nil {
				db.Close()
				return nil, fmt.Errorf("openBackend: %w", err)
			}
		}
		return &backend{
			accounts:     repository.NewAccountRepository(db),
			transactions: repository.NewTransactionRepository(db),
			idempotency:  repository.NewIdempotencyRepository(db),
			health:       db,
			close:        func() { db.Close() },
		}, nil
	default:
		accounts := repository.NewJSONAccountStore(cfg.DataDir)
		return &backend{
			accounts:     accounts,
			transactions: repository.NewJSONTransactionLog(cfg.DataDir),
			idempotency:  repository.NewMemoryIdempotencyCache(),
			health:       accounts,
			close:        func() {},
		}, nil
	}
}

func connectDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	pool := repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	}

	var err error
	for i := range 30 {
		var db *sql.DB
		if db, err = repository.NewPostgresDB(ctx, cfg.DatabaseURL, pool); err == nil {
			return db, nil
		}
		slog.Info("waiting for database", "attempt", i+1)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connectDB: %w", ctx.Err())
		case <-time.After(time.Second):
		}
	}
	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", err)
}

func openPublisher(cfg *config.Config, logger *slog.Logger) (eventPublisher, func(), error) {
	if cfg.AMQPURL == "" {
		slog.Info("AMQP_URL not set, transfer events are only logged")
		return broker.NewLogPublisher(logger), func() {}, nil
	}

	rmq := broker.NewRabbitMQ(cfg.AMQPURL)
	if err := rmq.Connect(cfg.AMQPExchange); err != nil {
		return nil, nil, fmt.Errorf("openPublisher: %w", err)
	}
	return broker.NewRabbitMQPublisher(rmq.Channel, cfg.AMQPExchange, cfg.AMQPRoutingKey), rmq.Close, nil
}
