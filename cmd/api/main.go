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
	"syscall"
	"time"

	"github.com/mbank/ledger/api"
	"github.com/mbank/ledger/internal/config"
	"github.com/mbank/ledger/internal/handler"
	"github.com/mbank/ledger/internal/logging"
	"github.com/mbank/ledger/internal/middleware"
	"github.com/mbank/ledger/internal/repository"
	"github.com/mbank/ledger/internal/service"
	"github.com/mbank/ledger/internal/service/ledger"
	"github.com/mbank/ledger/internal/txid"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init("ledger-api", cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := repository.NewDB(db, cfg.TxRetryMaxAttempts)
	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	recorder := service.NewRecorder(transactionRepo, txid.NewGenerator(transactionRepo, cfg.TxIDMaxAttempts))
	accounts := service.NewAccountService(accountRepo, recorder, store, cfg.AccountNumberMaxAttempts)
	ledgerSvc := ledger.NewService(store, accounts, recorder, ledger.LimitsFromConfig(cfg))

	go service.NewIdempotencySweeper(idempotencyRepo, logger, cfg.IdempotencySweepInterval).Start(ctx)

	mux := routes(cfg, db, ledgerSvc, accounts, idempotencyRepo)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           middleware.Chain(mux, middleware.Recovery, middleware.Tracing, middleware.Logging),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr, "version", version)
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

func routes(
	cfg *config.Config,
	db *sql.DB,
	ledgerSvc *ledger.Service,
	accounts *service.AccountService,
	idempotency *repository.IdempotencyRepository,
) *http.ServeMux {
	health := handler.NewHealthHandler(db, version)
	authH := handler.NewAuthHandler(ledgerSvc, cfg.JWTSecret, cfg.JWTExpiry)
	accountH := handler.NewAccountHandler(ledgerSvc, accounts)
	ledgerH := handler.NewLedgerHandler(ledgerSvc)

	protected := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h, middleware.Auth(cfg.JWTSecret), middleware.Idempotency(idempotency))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health/live", health.Liveness)
	mux.HandleFunc("GET /health/ready", health.Readiness)
	mux.HandleFunc("GET /docs", handler.ServeDocs("/docs/openapi.yaml"))
	mux.HandleFunc("GET /docs/openapi.yaml", handler.ServeSpec(api.OpenAPI))

	mux.HandleFunc("POST /api/v1/accounts", accountH.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authH.Login)

	mux.Handle("GET /api/v1/accounts/{number}", protected(accountH.Get))
	mux.Handle("GET /api/v1/accounts/{number}/holder", protected(accountH.Holder))
	mux.Handle("GET /api/v1/accounts/{number}/statement", protected(ledgerH.Statement))
	mux.Handle("POST /api/v1/accounts/{number}/deposits", protected(ledgerH.Deposit))
	mux.Handle("POST /api/v1/accounts/{number}/withdrawals", protected(ledgerH.Withdraw))
	mux.Handle("POST /api/v1/accounts/{number}/transfers", protected(ledgerH.Transfer))

	return mux
}
