package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		kind     error
		business bool
	}{
		{"account not found", ErrAccountNotFound, ErrNotFound, true},
		{"invalid credentials", ErrInvalidCredentials, ErrNotFound, true},
		{"insufficient funds", ErrInsufficientFunds, ErrValidation, true},
		{"limit exceeded", ErrLimitExceeded, ErrValidation, true},
		{"self transfer", ErrSelfTransfer, ErrValidation, true},
		{"duplicate email", ErrDuplicateEmail, ErrValidation, true},
		{"wrapped rule error", fmt.Errorf("Withdraw: %w", Rule(ErrInsufficientFunds, "Available: R10.00")), ErrValidation, true},
		{"exhausted", fmt.Errorf("Register: %w", ErrExhausted), ErrExhausted, true},
		{"version conflict is not a business error", ErrVersionConflict, nil, false},
		{"driver failure", errors.New("connection refused"), nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.kind != nil {
				assert.ErrorIs(t, tc.err, tc.kind)
			}
			assert.Equal(t, tc.business, IsBusiness(tc.err))
		})
	}
}

func TestReason(t *testing.T) {
	err := fmt.Errorf("Transfer: %w", Rule(ErrInsufficientFunds, "Available: R%s", "5.00"))

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, "Available: R5.00", Reason(err))
	assert.Equal(t, "", Reason(ErrAccountNotFound))
}

func TestTransactionTypeIDPrefix(t *testing.T) {
	assert.Equal(t, "DPT", TransactionTypeDeposit.IDPrefix())
	assert.Equal(t, "WDR", TransactionTypeWithdrawal.IDPrefix())
	assert.Equal(t, "TRF", TransactionTypeTransferDebit.IDPrefix())
	assert.Equal(t, "TRF", TransactionTypeTransferCredit.IDPrefix())
	assert.Equal(t, "TXN", TransactionTypeInitialDeposit.IDPrefix())
}

func TestTypeFilterIsValid(t *testing.T) {
	assert.True(t, FilterAll.IsValid())
	assert.True(t, FilterTransfer.IsValid())
	assert.True(t, TypeFilter("DEPOSIT").IsValid())
	assert.True(t, TypeFilter("TRANSFER_DEBIT").IsValid())
	assert.False(t, TypeFilter("deposit").IsValid())
	assert.False(t, TypeFilter("").IsValid())
}

func TestAmountInRange(t *testing.T) {
	tests := []struct {
		amount string
		want   bool
	}{
		{"250.75", true},
		{"1e12", true},
		{"1e13", false},
		{"1.0000000000", true},
		{"1.00000000000", false},
		{"1e50000000", false},
		{"1e-50000000", false},
	}

	for _, tc := range tests {
		t.Run(tc.amount, func(t *testing.T) {
			assert.Equal(t, tc.want, AmountInRange(decimal.RequireFromString(tc.amount)))
		})
	}
}
