package txid

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/mbank/ledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type takenSet struct {
	ids   map[string]bool
	calls int
	err   error
}

func (s *takenSet) ExistsByTransactionID(_ context.Context, _ *sql.Tx, id string) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	return s.ids[id], nil
}

var idPattern = regexp.MustCompile(`^(DPT|WDR|TRF|TXN)[0-9A-F]{32}$`)

func TestNew_Format(t *testing.T) {
	g := NewGenerator(&takenSet{}, 5)

	tests := []struct {
		typ    domain.TransactionType
		prefix string
	}{
		{domain.TransactionTypeDeposit, "DPT"},
		{domain.TransactionTypeWithdrawal, "WDR"},
		{domain.TransactionTypeTransferDebit, "TRF"},
		{domain.TransactionTypeTransferCredit, "TRF"},
		{domain.TransactionTypeInitialDeposit, "TXN"},
	}

	for _, tc := range tests {
		t.Run(string(tc.typ), func(t *testing.T) {
			id, err := g.New(context.Background(), nil, tc.typ)
			require.NoError(t, err)
			assert.Len(t, id, Len)
			assert.Regexp(t, idPattern, id)
			assert.Equal(t, tc.prefix, id[:3])
		})
	}
}

func TestNew_Unique(t *testing.T) {
	g := NewGenerator(&takenSet{}, 5)
	seen := make(map[string]bool)

	for range 1000 {
		id, err := g.New(context.Background(), nil, domain.TransactionTypeDeposit)
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNew_RedrawsOnCollision(t *testing.T) {
	fixed := []uuid.UUID{
		uuid.MustParse("0192f3a4-c1d2-7b5e-8f0a-1b2c3d4e5f60"),
		uuid.MustParse("0192f3a4-c1d2-7b5e-8f0a-1b2c3d4e5f61"),
	}
	store := &takenSet{ids: map[string]bool{"DPT0192F3A4C1D27B5E8F0A1B2C3D4E5F60": true}}
	g := NewGenerator(store, 5)
	i := 0
	g.newUUID = func() (uuid.UUID, error) {
		u := fixed[i]
		i++
		return u, nil
	}

	id, err := g.New(context.Background(), nil, domain.TransactionTypeDeposit)
	require.NoError(t, err)
	assert.Equal(t, "DPT0192F3A4C1D27B5E8F0A1B2C3D4E5F61", id)
	assert.Equal(t, 2, store.calls)
}

func TestNew_Exhausted(t *testing.T) {
	u := uuid.MustParse("0192f3a4-c1d2-7b5e-8f0a-1b2c3d4e5f60")
	store := &takenSet{ids: map[string]bool{"WDR0192F3A4C1D27B5E8F0A1B2C3D4E5F60": true}}
	g := NewGenerator(store, 3)
	g.newUUID = func() (uuid.UUID, error) { return u, nil }

	_, err := g.New(context.Background(), nil, domain.TransactionTypeWithdrawal)
	require.ErrorIs(t, err, domain.ErrExhausted)
	assert.Equal(t, 3, store.calls)
}

func TestNew_StoreError(t *testing.T) {
	boom := errors.New("connection reset")
	g := NewGenerator(&takenSet{err: boom}, 5)

	_, err := g.New(context.Background(), nil, domain.TransactionTypeDeposit)
	require.ErrorIs(t, err, boom)
	assert.False(t, domain.IsBusiness(err))
}
