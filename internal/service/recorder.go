package service

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/mbank/ledger/internal/domain"
	"github.com/mbank/ledger/internal/repository"
	"github.com/shopspring/decimal"
)

// Recorder appends transaction entries and reads them back per account.
type Recorder struct {
	transactions transactionRepository
	ids          idGenerator
	now          func() time.Time
}

func NewRecorder(transactions transactionRepository, ids idGenerator) *Recorder {
	return &Recorder{transactions: transactions, ids: ids, now: time.Now}
}

// WithClock replaces the time source used to stamp new entries.
func (r *Recorder) WithClock(now func() time.Time) *Recorder {
	r.now = now
	return r
}

// Record stamps OccurredAt at microsecond precision, the resolution the store
// keeps, so the returned entry matches what a later query reads back.
func (r *Recorder) Record(ctx context.Context, tx *sql.Tx, req domain.RecordRequest) (*domain.Transaction, error) {
	if !req.Type.IsValid() {
		return nil, fmt.Errorf("Record: unknown type %q: %w", req.Type, domain.ErrValidation)
	}

	fee := decimal.Zero
	if req.Fee != nil {
		fee = *req.Fee
	}
	if fee.IsNegative() {
		return nil, fmt.Errorf("Record: negative fee: %w", domain.ErrValidation)
	}

	id, err := r.ids.New(ctx, tx, req.Type)
	if err != nil {
		return nil, fmt.Errorf("Record: %w", err)
	}

	t := &domain.Transaction{
		TransactionID: id,
		AccountNumber: req.AccountNumber,
		Type:          req.Type,
		Amount:        req.Amount,
		Counterparty:  req.Counterparty,
		Description:   req.Description,
		Fee:           fee,
		OccurredAt:    r.now().UTC().Truncate(time.Microsecond),
	}
	if err := r.transactions.Create(ctx, tx, t); err != nil {
		return nil, fmt.Errorf("Record: %w", err)
	}
	return t, nil
}

// ByAccountAndRange returns the account's entries with OccurredAt in
// [start, end], newest first. FilterTransfer selects both transfer legs.
func (r *Recorder) ByAccountAndRange(ctx context.Context, number int64, filter domain.TypeFilter, start, end time.Time) ([]domain.Transaction, error) {
	if !filter.IsValid() {
		return nil, fmt.Errorf("ByAccountAndRange: %w", domain.Rule(domain.ErrInvalidFilter, "Unknown transaction type %q", filter))
	}

	q := repository.TransactionQuery{AccountNumber: number, Start: start, End: end}

	switch filter {
	case domain.FilterAll:
		txns, err := r.transactions.Query(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("ByAccountAndRange: %w", err)
		}
		return txns, nil

	case domain.FilterTransfer:
		var merged []domain.Transaction
		for _, t := range []domain.TransactionType{domain.TransactionTypeTransferDebit, domain.TransactionTypeTransferCredit} {
			q.Type = &t
			txns, err := r.transactions.Query(ctx, q)
			if err != nil {
				return nil, fmt.Errorf("ByAccountAndRange: %s: %w", t, err)
			}
			merged = append(merged, txns...)
		}
		sortNewestFirst(merged)
		return merged, nil

	default:
		t := domain.TransactionType(filter)
		q.Type = &t
		txns, err := r.transactions.Query(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("ByAccountAndRange: %w", err)
		}
		return txns, nil
	}
}

func sortNewestFirst(txns []domain.Transaction) {
	slices.SortStableFunc(txns, func(a, b domain.Transaction) int {
		if c := b.OccurredAt.Compare(a.OccurredAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}
