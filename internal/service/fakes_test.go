package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mbank/ledger/internal/domain"
	"github.com/mbank/ledger/internal/repository"
	"github.com/shopspring/decimal"
)

type inlineTx struct{ calls int }

func (r *inlineTx) WithinTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	r.calls++
	return fn(nil)
}

type memAccounts struct {
	byNumber  map[int64]domain.Account
	createErr []error
}

func newMemAccounts(accounts ...domain.Account) *memAccounts {
	m := &memAccounts{byNumber: make(map[int64]domain.Account)}
	for _, a := range accounts {
		m.byNumber[a.Number] = a
	}
	return m
}

func (m *memAccounts) GetByNumber(_ context.Context, number int64) (*domain.Account, error) {
	a, ok := m.byNumber[number]
	if !ok {
		return nil, fmt.Errorf("GetByNumber: %w", domain.ErrAccountNotFound)
	}
	return &a, nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, a := range m.byNumber {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("GetByEmail: %w", domain.ErrAccountNotFound)
}

func (m *memAccounts) GetForUpdate(ctx context.Context, _ *sql.Tx, number int64) (*domain.Account, error) {
	return m.GetByNumber(ctx, number)
}

func (m *memAccounts) Exists(_ context.Context, _ *sql.Tx, number int64) (bool, error) {
	_, ok := m.byNumber[number]
	return ok, nil
}

func (m *memAccounts) EmailExists(ctx context.Context, tx *sql.Tx, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

func (m *memAccounts) Create(_ context.Context, _ *sql.Tx, account *domain.Account) error {
	if len(m.createErr) > 0 {
		err := m.createErr[0]
		m.createErr = m.createErr[1:]
		if err != nil {
			return err
		}
	}
	m.byNumber[account.Number] = *account
	return nil
}

func (m *memAccounts) UpdateBalance(_ context.Context, _ *sql.Tx, number int64, newBalance decimal.Decimal, newVersion int64) error {
	a, ok := m.byNumber[number]
	if !ok || a.Version != newVersion-1 {
		return fmt.Errorf("UpdateBalance: %w", domain.ErrVersionConflict)
	}
	a.Balance = newBalance
	a.Version = newVersion
	m.byNumber[number] = a
	return nil
}

type memTransactions struct {
	rows    []domain.Transaction
	queries []repository.TransactionQuery
}

func (m *memTransactions) Create(_ context.Context, _ *sql.Tx, t *domain.Transaction) error {
	t.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, *t)
	return nil
}

func (m *memTransactions) Query(_ context.Context, q repository.TransactionQuery) ([]domain.Transaction, error) {
	m.queries = append(m.queries, q)
	var out []domain.Transaction
	for i := len(m.rows) - 1; i >= 0; i-- {
		t := m.rows[i]
		if t.AccountNumber != q.AccountNumber || t.OccurredAt.Before(q.Start) || t.OccurredAt.After(q.End) {
			continue
		}
		if q.Type != nil && t.Type != *q.Type {
			continue
		}
		out = append(out, t)
	}
	sortNewestFirst(out)
	return out, nil
}

type seqIDs struct{ n int }

func (g *seqIDs) New(_ context.Context, _ *sql.Tx, t domain.TransactionType) (string, error) {
	g.n++
	return fmt.Sprintf("%s%032d", t.IDPrefix(), g.n), nil
}
