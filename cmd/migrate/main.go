package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/mbank/ledger/internal/config"
	"github.com/mbank/ledger/internal/logging"
	"github.com/mbank/ledger/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("ledger-migrate", cfg.LogLevel, cfg.AppEnv)

	db, err := repository.NewPostgresDB(context.Background(), cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns: 2,
		MaxIdleConns: 1,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	before, after, err := repository.Migrate(db, cfg.MigrationsPath)
	if err != nil {
		slog.Error("migration failed", "error", err, "source", cfg.MigrationsPath)
		os.Exit(1)
	}

	if before == after {
		slog.Info("schema up to date", "version", after)
		return
	}
	slog.Info("migrations applied", "from_version", before, "to_version", after)
}
