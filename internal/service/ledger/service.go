// Package ledger is the core of the bank: it moves money between balances
// and records the matching transaction entries as one atomic unit.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mbank/ledger/internal/config"
	"github.com/mbank/ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type txRunner interface {
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type accountRegistry interface {
	Register(ctx context.Context, holderName, email, secret string) (*domain.Account, error)
	Authenticate(ctx context.Context, email, secret string) (*domain.Account, error)
	Lookup(ctx context.Context, number int64) (*domain.Account, error)
	LockForUpdate(ctx context.Context, tx *sql.Tx, numbers ...int64) (map[int64]*domain.Account, error)
	SetBalance(ctx context.Context, tx *sql.Tx, account *domain.Account, newBalance decimal.Decimal) error
}

type transactionRecorder interface {
	Record(ctx context.Context, tx *sql.Tx, req domain.RecordRequest) (*domain.Transaction, error)
	ByAccountAndRange(ctx context.Context, number int64, filter domain.TypeFilter, start, end time.Time) ([]domain.Transaction, error)
}

// Limits holds the per-operation caps and the transfer fee schedule.
type Limits struct {
	Deposit              decimal.Decimal
	Withdrawal           decimal.Decimal
	Transfer             decimal.Decimal
	TransferFee          decimal.Decimal
	TransferFeeThreshold decimal.Decimal
	StatementRows        int
}

func LimitsFromConfig(cfg *config.Config) Limits {
	return Limits{
		Deposit:              cfg.DepositLimit,
		Withdrawal:           cfg.WithdrawalLimit,
		Transfer:             cfg.TransferLimit,
		TransferFee:          cfg.TransferFee,
		TransferFeeThreshold: cfg.TransferFeeThreshold,
		StatementRows:        cfg.StatementDefaultLimit,
	}
}

type Service struct {
	db       txRunner
	accounts accountRegistry
	recorder transactionRecorder
	limits   Limits
	now      func() time.Time
}

func NewService(db txRunner, accounts accountRegistry, recorder transactionRecorder, limits Limits) *Service {
	if limits.StatementRows <= 0 {
		limits.StatementRows = defaultStatementRows
	}
	return &Service{
		db:       db,
		accounts: accounts,
		recorder: recorder,
		limits:   limits,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for statement range defaults.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Register(ctx context.Context, holderName, email, secret string) (*domain.Account, error) {
	a, err := s.accounts.Register(ctx, holderName, email, secret)
	if err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}
	return a, nil
}

func (s *Service) Login(ctx context.Context, email, secret string) (*domain.Account, error) {
	a, err := s.accounts.Authenticate(ctx, email, secret)
	if err != nil {
		return nil, fmt.Errorf("Login: %w", err)
	}
	return a, nil
}

func (s *Service) Account(ctx context.Context, number int64) (*domain.Account, error) {
	a, err := s.accounts.Lookup(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("Account: %w", err)
	}
	return a, nil
}

// FeeFor returns the fee a transfer of amount incurs.
func (s *Service) FeeFor(amount decimal.Decimal) decimal.Decimal {
	if amount.GreaterThan(s.limits.TransferFeeThreshold) {
		return s.limits.TransferFee
	}
	return decimal.Zero
}

func validateAmount(amount, limit decimal.Decimal, op string) error {
	if !amount.IsPositive() {
		return domain.Rule(domain.ErrInvalidAmount, "Amount must be greater than zero")
	}
	if amount.Exponent() > domain.MaxAmountExponent {
		return domain.Rule(domain.ErrLimitExceeded, "Maximum %s is %s per transaction!", op, rands(limit))
	}
	if amount.Exponent() < domain.MinAmountExponent {
		return domain.Rule(domain.ErrInvalidAmount, "Amount cannot have more than two decimal places")
	}
	if !amount.Equal(amount.Round(2)) {
		return domain.Rule(domain.ErrInvalidAmount, "Amount cannot have more than two decimal places")
	}
	if amount.GreaterThan(limit) {
		return domain.Rule(domain.ErrLimitExceeded, "Maximum %s is %s per transaction!", op, rands(limit))
	}
	return nil
}

// rands formats a monetary value for display, e.g. R2990.00.
func rands(v decimal.Decimal) string {
	return "R" + v.StringFixed(2)
}
