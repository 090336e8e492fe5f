package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinAccountNumber int64 = 100000
	MaxAccountNumber int64 = 999999
)

type Account struct {
	Number     int64
	HolderName string
	Balance    decimal.Decimal
	Email      string
	SecretHash string
	Version    int64
	CreatedAt  time.Time
}
