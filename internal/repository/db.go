package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mbank/ledger/internal/domain"
	"github.com/mbank/ledger/internal/logging"
)

type scanner interface {
	Scan(dest ...any) error
}

type DB struct {
	pool       *sql.DB
	maxRetries uint64
}

func NewDB(pool *sql.DB, maxRetries int) *DB {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &DB{pool: pool, maxRetries: uint64(maxRetries)}
}

func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	tx, err := d.pool.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("BeginTx: %w", err)
	}
	return tx, nil
}

// WithinTx runs fn in one database transaction, committing when fn returns
// nil and rolling back otherwise. A unit that fails with an optimistic lock
// conflict or a transaction id collision is replayed from the start with
// exponential backoff; every other error is returned as is.
func (d *DB) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	attempt := 0
	op := func() error {
		attempt++
		err := d.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrVersionConflict) || errors.Is(err, domain.ErrTransactionIDTaken) {
			logging.FromContext(ctx).Warn("transaction conflict, retrying", "attempt", attempt, "error", err)
			return err
		}
		return backoff.Permanent(err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond
	policy := backoff.WithContext(backoff.WithMaxRetries(b, d.maxRetries-1), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		return fmt.Errorf("WithinTx: %w", err)
	}
	return nil
}

func (d *DB) runOnce(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
