package service

import (
	"context"
	"database/sql"

	"github.com/mbank/ledger/internal/domain"
	"github.com/mbank/ledger/internal/repository"
	"github.com/shopspring/decimal"
)

type txRunner interface {
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type accountRepository interface {
	GetByNumber(ctx context.Context, number int64) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, number int64) (*domain.Account, error)
	Exists(ctx context.Context, tx *sql.Tx, number int64) (bool, error)
	EmailExists(ctx context.Context, tx *sql.Tx, email string) (bool, error)
	Create(ctx context.Context, tx *sql.Tx, account *domain.Account) error
	UpdateBalance(ctx context.Context, tx *sql.Tx, number int64, newBalance decimal.Decimal, newVersion int64) error
}

type transactionRepository interface {
	Create(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error
	Query(ctx context.Context, q repository.TransactionQuery) ([]domain.Transaction, error)
}

type idGenerator interface {
	New(ctx context.Context, tx *sql.Tx, t domain.TransactionType) (string, error)
}

type transactionRecorder interface {
	Record(ctx context.Context, tx *sql.Tx, req domain.RecordRequest) (*domain.Transaction, error)
}

type idempotencyCleaner interface {
	CleanExpired(ctx context.Context) (int64, error)
}
