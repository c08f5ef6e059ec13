package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

const (
	StoreBackendFile     = "file"
	StoreBackendPostgres = "postgres"
)

type Config struct {
	StoreBackend  string `env:"STORE_BACKEND" envDefault:"file"`
	DataDir       string `env:"DATA_DIR" envDefault:"./data"`
	DatabaseURL   string `env:"DATABASE_URL"`
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"migrations"`
	AutoMigrate   bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	JWTSecret  string        `env:"JWT_SECRET,required,notEmpty"`
	JWTExpiry  time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	AdminToken string        `env:"ADMIN_TOKEN"`

	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv   string `env:"APP_ENV" envDefault:"production"`

	StartingBalance int64  `env:"STARTING_BALANCE" envDefault:"500000"`
	BranchCode      string `env:"BRANCH_CODE" envDefault:"0001"`

	AMQPURL        string `env:"AMQP_URL"`
	AMQPExchange   string `env:"AMQP_EXCHANGE" envDefault:"ledger.events"`
	AMQPRoutingKey string `env:"AMQP_ROUTING_KEY" envDefault:"transfer.completed"`

	IdempotencySweepInterval time.Duration `env:"IDEMPOTENCY_SWEEP_INTERVAL" envDefault:"10m"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case StoreBackendFile:
		if c.DataDir == "" {
			return fmt.Errorf("DATA_DIR is required for the file backend")
		}
	case StoreBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.StartingBalance < 0 {
		return fmt.Errorf("STARTING_BALANCE must not be negative")
	}
	if c.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive")
	}
	if c.IdempotencySweepInterval <= 0 {
		return fmt.Errorf("IDEMPOTENCY_SWEEP_INTERVAL must be positive")
	}
	return nil
}
