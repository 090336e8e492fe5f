package testutil

import (
	"database/sql"
	"strconv"
	"testing"
	"time"

	"github.com/mbank/ledger/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const TestSecret = "password123"

// SeedAccount inserts an account directly, bypassing the registry, so tests
// can start from an arbitrary balance.
func SeedAccount(t *testing.T, db *sql.DB, number int64, holder string, balance decimal.Decimal) *domain.Account {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestSecret), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash secret: %v", err)
	}
	a := &domain.Account{
		Number:     number,
		HolderName: holder,
		Balance:    balance,
		Email:      holderEmail(number),
		SecretHash: string(hash),
		Version:    1,
		CreatedAt:  time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO accounts (account_number, holder_name, balance, email, secret_hash, version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.Number, a.HolderName, a.Balance, a.Email, a.SecretHash, a.Version, a.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed account %d: %v", number, err)
	}
	return a
}

func GetAccountBalance(t *testing.T, db *sql.DB, number int64) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal
	err := db.QueryRow(`SELECT balance FROM accounts WHERE account_number = $1`, number).Scan(&balance)
	if err != nil {
		t.Fatalf("get account balance %d: %v", number, err)
	}
	return balance
}

func CountTransactions(t *testing.T, db *sql.DB, number int64) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE account_number = $1`, number).Scan(&count)
	if err != nil {
		t.Fatalf("count transactions for account %d: %v", number, err)
	}
	return count
}

func holderEmail(number int64) string {
	return "holder" + strconv.FormatInt(number, 10) + "@mbank.test"
}
