package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

type Config struct {
	DatabaseURL    string        `env:"DATABASE_URL,required"`
	JWTSecret      string        `env:"JWT_SECRET,required"`
	JWTExpiry      time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	Port           int           `env:"PORT" envDefault:"8080"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv         string        `env:"APP_ENV" envDefault:"production"`
	MigrationsPath string        `env:"MIGRATIONS_PATH" envDefault:"file://migrations"`

	DepositLimit         decimal.Decimal `env:"DEPOSIT_LIMIT" envDefault:"100000"`
	WithdrawalLimit      decimal.Decimal `env:"WITHDRAWAL_LIMIT" envDefault:"50000"`
	TransferLimit        decimal.Decimal `env:"TRANSFER_LIMIT" envDefault:"100000"`
	TransferFee          decimal.Decimal `env:"TRANSFER_FEE" envDefault:"10"`
	TransferFeeThreshold decimal.Decimal `env:"TRANSFER_FEE_THRESHOLD" envDefault:"1000"`

	StatementDefaultLimit    int `env:"STATEMENT_DEFAULT_LIMIT" envDefault:"100"`
	AccountNumberMaxAttempts int `env:"ACCOUNT_NUMBER_MAX_ATTEMPTS" envDefault:"100"`
	TxIDMaxAttempts          int `env:"TXID_MAX_ATTEMPTS" envDefault:"5"`
	TxRetryMaxAttempts       int `env:"TX_RETRY_MAX_ATTEMPTS" envDefault:"5"`

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
	return &cfg, nil
}

// Defaults returns the business defaults without reading the environment.
// Tests and tools that do not need a database use it.
func Defaults() *Config {
	return &Config{
		JWTExpiry:                24 * time.Hour,
		DepositLimit:             decimal.NewFromInt(100000),
		WithdrawalLimit:          decimal.NewFromInt(50000),
		TransferLimit:            decimal.NewFromInt(100000),
		TransferFee:              decimal.NewFromInt(10),
		TransferFeeThreshold:     decimal.NewFromInt(1000),
		StatementDefaultLimit:    100,
		AccountNumberMaxAttempts: 100,
		TxIDMaxAttempts:          5,
		TxRetryMaxAttempts:       5,
		IdempotencySweepInterval: 10 * time.Minute,
	}
}
