package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

// Exponent bounds for incoming amounts. Balances are NUMERIC(15,2), so a
// positive amount with an exponent above MaxAmountExponent is at least 10^13
// and can never be stored.
const (
	MinAmountExponent = -10
	MaxAmountExponent = 12
)

// AmountInRange reports whether d's exponent lies within the bounds above.
// Amounts outside them must be rejected before any rescaling arithmetic.
func AmountInRange(d decimal.Decimal) bool {
	e := d.Exponent()
	return e >= MinAmountExponent && e <= MaxAmountExponent
}

const (
	TransactionTypeInitialDeposit TransactionType = "INITIAL_DEPOSIT"
	TransactionTypeDeposit        TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal     TransactionType = "WITHDRAWAL"
	TransactionTypeTransferDebit  TransactionType = "TRANSFER_DEBIT"
	TransactionTypeTransferCredit TransactionType = "TRANSFER_CREDIT"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeInitialDeposit, TransactionTypeDeposit, TransactionTypeWithdrawal,
		TransactionTypeTransferDebit, TransactionTypeTransferCredit:
		return true
	}
	return false
}

func (t TransactionType) IsTransfer() bool {
	return t == TransactionTypeTransferDebit || t == TransactionTypeTransferCredit
}

// IDPrefix is the three-letter tag that leads every business transaction id.
func (t TransactionType) IDPrefix() string {
	switch t {
	case TransactionTypeDeposit:
		return "DPT"
	case TransactionTypeWithdrawal:
		return "WDR"
	case TransactionTypeTransferDebit, TransactionTypeTransferCredit:
		return "TRF"
	default:
		return "TXN"
	}
}

// TypeFilter narrows statement queries. Besides the concrete transaction
// types it accepts ALL and TRANSFER (both transfer legs).
type TypeFilter string

const (
	FilterAll      TypeFilter = "ALL"
	FilterTransfer TypeFilter = "TRANSFER"
)

func (f TypeFilter) IsValid() bool {
	return f == FilterAll || f == FilterTransfer || TransactionType(f).IsValid()
}

type Transaction struct {
	ID            int64
	TransactionID string
	AccountNumber int64
	Type          TransactionType
	Amount        decimal.Decimal
	Counterparty  *int64
	Description   string
	Fee           decimal.Decimal
	OccurredAt    time.Time
}

// RecordRequest is the input to the transaction recorder. Fee is optional
// and treated as zero when nil.
type RecordRequest struct {
	AccountNumber int64
	Type          TransactionType
	Amount        decimal.Decimal
	Counterparty  *int64
	Description   string
	Fee           *decimal.Decimal
}
