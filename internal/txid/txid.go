// Package txid issues the business identifiers carried by every recorded
// transaction: a three-letter type prefix followed by a UUIDv7 rendered as
// 32 upper-case hex digits, e.g. DPT0192F3A4C1D27B5E8F0A1B2C3D4E5F60.
package txid

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mbank/ledger/internal/domain"
)

// Len is the length of every generated id.
const Len = 3 + 32

type existenceChecker interface {
	ExistsByTransactionID(ctx context.Context, tx *sql.Tx, transactionID string) (bool, error)
}

type Generator struct {
	store       existenceChecker
	maxAttempts int
	newUUID     func() (uuid.UUID, error)
}

func NewGenerator(store existenceChecker, maxAttempts int) *Generator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Generator{store: store, maxAttempts: maxAttempts, newUUID: uuid.NewV7}
}

// New returns an id for a transaction of type t that the store has not seen.
// The millisecond timestamp in the UUIDv7 makes ids roughly time-ordered; the
// random bits make collisions improbable, and the store check rules them out
// within tx.
func (g *Generator) New(ctx context.Context, tx *sql.Tx, t domain.TransactionType) (string, error) {
	prefix := t.IDPrefix()
	for range g.maxAttempts {
		u, err := g.newUUID()
		if err != nil {
			return "", fmt.Errorf("New: %w", err)
		}
		id := prefix + strings.ToUpper(hex.EncodeToString(u[:]))

		taken, err := g.store.ExistsByTransactionID(ctx, tx, id)
		if err != nil {
			return "", fmt.Errorf("New: %w", err)
		}
		if !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("New: %d attempts: %w", g.maxAttempts, domain.ErrExhausted)
}
