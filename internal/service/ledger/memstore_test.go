package ledger_test

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/mbank/ledger/internal/config"
	"github.com/mbank/ledger/internal/domain"
	"github.com/mbank/ledger/internal/repository"
	"github.com/mbank/ledger/internal/service"
	"github.com/mbank/ledger/internal/service/ledger"
	"github.com/mbank/ledger/internal/txid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var errDiskFull = errors.New("disk full")

// memStore is an in-memory ledger store. WithinTx serializes units of work
// and restores the previous state when a unit fails.
type memStore struct {
	mu       sync.Mutex
	accounts map[int64]domain.Account
	txns     []domain.Transaction

	// failInsertAt makes the n-th transaction insert (1-based) fail.
	failInsertAt int
	inserts      int
}

func newMemStore() *memStore {
	return &memStore{accounts: make(map[int64]domain.Account)}
}

func (m *memStore) WithinTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	accounts := maps.Clone(m.accounts)
	n := len(m.txns)
	if err := fn(nil); err != nil {
		m.accounts = accounts
		m.txns = m.txns[:n]
		return err
	}
	return nil
}

func (m *memStore) seed(number int64, balance string) {
	m.accounts[number] = domain.Account{
		Number:     number,
		HolderName: fmt.Sprintf("Holder %d", number),
		Balance:    decimal.RequireFromString(balance),
		Email:      fmt.Sprintf("holder%d@mbank.test", number),
		Version:    1,
		CreatedAt:  time.Now().UTC(),
	}
}

func (m *memStore) balance(number int64) decimal.Decimal {
	return m.accounts[number].Balance
}

func (m *memStore) entries(number int64) []domain.Transaction {
	var out []domain.Transaction
	for _, t := range m.txns {
		if t.AccountNumber == number {
			out = append(out, t)
		}
	}
	return out
}

type memAccountRepo struct{ *memStore }

func (r memAccountRepo) GetByNumber(_ context.Context, number int64) (*domain.Account, error) {
	a, ok := r.accounts[number]
	if !ok {
		return nil, fmt.Errorf("GetByNumber: %w", domain.ErrAccountNotFound)
	}
	return &a, nil
}

func (r memAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("GetByEmail: %w", domain.ErrAccountNotFound)
}

func (r memAccountRepo) GetForUpdate(ctx context.Context, _ *sql.Tx, number int64) (*domain.Account, error) {
	return r.GetByNumber(ctx, number)
}

func (r memAccountRepo) Exists(_ context.Context, _ *sql.Tx, number int64) (bool, error) {
	_, ok := r.accounts[number]
	return ok, nil
}

func (r memAccountRepo) EmailExists(ctx context.Context, _ *sql.Tx, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r memAccountRepo) Create(_ context.Context, _ *sql.Tx, account *domain.Account) error {
	if _, ok := r.accounts[account.Number]; ok {
		return fmt.Errorf("Create: %w", domain.ErrAccountNumberTaken)
	}
	r.accounts[account.Number] = *account
	return nil
}

func (r memAccountRepo) UpdateBalance(_ context.Context, _ *sql.Tx, number int64, newBalance decimal.Decimal, newVersion int64) error {
	a, ok := r.accounts[number]
	if !ok || a.Version != newVersion-1 {
		return fmt.Errorf("UpdateBalance: %w", domain.ErrVersionConflict)
	}
	a.Balance = newBalance
	a.Version = newVersion
	r.accounts[number] = a
	return nil
}

type memTransactionRepo struct{ *memStore }

func (r memTransactionRepo) Create(_ context.Context, _ *sql.Tx, t *domain.Transaction) error {
	r.inserts++
	if r.inserts == r.failInsertAt {
		return fmt.Errorf("Create: %w", errDiskFull)
	}
	t.ID = int64(len(r.txns) + 1)
	r.txns = append(r.txns, *t)
	return nil
}

func (r memTransactionRepo) ExistsByTransactionID(_ context.Context, _ *sql.Tx, id string) (bool, error) {
	for _, t := range r.txns {
		if t.TransactionID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r memTransactionRepo) Query(_ context.Context, q repository.TransactionQuery) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, t := range r.txns {
		if t.AccountNumber != q.AccountNumber || t.OccurredAt.Before(q.Start) || t.OccurredAt.After(q.End) {
			continue
		}
		if q.Type != nil && t.Type != *q.Type {
			continue
		}
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b domain.Transaction) int {
		if c := b.OccurredAt.Compare(a.OccurredAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

// tickingClock advances by one minute on every read.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

var clockStart = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T, store *memStore) *ledger.Service {
	t.Helper()

	clock := &tickingClock{now: clockStart}
	txns := memTransactionRepo{store}
	recorder := service.NewRecorder(txns, txid.NewGenerator(txns, 5)).WithClock(clock.Now)
	accounts := service.NewAccountService(memAccountRepo{store}, recorder, store, 100).WithHashCost(bcrypt.MinCost)

	return ledger.NewService(store, accounts, recorder, ledger.LimitsFromConfig(config.Defaults())).WithClock(clock.Now)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
