package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/mbank/ledger/internal/domain"
)

const transactionColumns = `id, transaction_id, account_number, transaction_type, amount,
	counterparty_account, description, fee, occurred_at`

// TransactionQuery selects one account's transactions in an inclusive time
// range. A nil Type matches every type.
type TransactionQuery struct {
	AccountNumber int64
	Type          *domain.TransactionType
	Start         time.Time
	End           time.Time
}

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts t and fills in the store-assigned surrogate id. There is no
// update or delete counterpart.
func (r *TransactionRepository) Create(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO transactions (
			transaction_id, account_number, transaction_type, amount,
			counterparty_account, description, fee, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		t.TransactionID, t.AccountNumber, t.Type, t.Amount,
		nullInt64(t.Counterparty), t.Description, t.Fee, t.OccurredAt,
	).Scan(&t.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("Create: %w", domain.ErrTransactionIDTaken)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *TransactionRepository) ExistsByTransactionID(ctx context.Context, tx *sql.Tx, transactionID string) (bool, error) {
	var exists bool
	err := r.conn(tx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE transaction_id = $1)`, transactionID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ExistsByTransactionID: %w", err)
	}
	return exists, nil
}

// Query returns matching rows newest first; rows sharing a timestamp are
// ordered by descending surrogate id.
func (r *TransactionRepository) Query(ctx context.Context, q TransactionQuery) ([]domain.Transaction, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + transactionColumns + ` FROM transactions
		WHERE account_number = $1 AND occurred_at >= $2 AND occurred_at <= $3`)
	args := []any{q.AccountNumber, q.Start, q.End}
	if q.Type != nil {
		args = append(args, *q.Type)
		fmt.Fprintf(&sb, ` AND transaction_type = $%d`, len(args))
	}
	sb.WriteString(` ORDER BY occurred_at DESC, id DESC`)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("Query: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("Query: scan: %w", err)
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Query: rows: %w", err)
	}
	return txns, nil
}

func (r *TransactionRepository) conn(tx *sql.Tx) queryer {
	if tx != nil {
		return tx
	}
	return r.db
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var (
		t            domain.Transaction
		counterparty sql.NullInt64
	)
	err := s.Scan(
		&t.ID, &t.TransactionID, &t.AccountNumber, &t.Type, &t.Amount,
		&counterparty, &t.Description, &t.Fee, &t.OccurredAt,
	)
	if err != nil {
		return nil, err
	}
	if counterparty.Valid {
		n := counterparty.Int64
		t.Counterparty = &n
	}
	t.OccurredAt = t.OccurredAt.UTC()
	return &t, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
