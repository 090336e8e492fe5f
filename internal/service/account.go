package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/mbank/ledger/internal/domain"
	"github.com/mbank/ledger/internal/logging"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// numberRaceRetries bounds how often Register restarts after losing an insert
// race on a freshly drawn account number.
const numberRaceRetries = 3

// AccountService is the account registry: it opens accounts, resolves them by
// number or credentials, and is the only writer of account balances.
type AccountService struct {
	accounts    accountRepository
	recorder    transactionRecorder
	db          txRunner
	maxAttempts int
	hashCost    int
	drawNumber  func() (int64, error)
	now         func() time.Time
}

func NewAccountService(accounts accountRepository, recorder transactionRecorder, db txRunner, maxAttempts int) *AccountService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &AccountService{
		accounts:    accounts,
		recorder:    recorder,
		db:          db,
		maxAttempts: maxAttempts,
		hashCost:    bcrypt.DefaultCost,
		drawNumber:  drawAccountNumber,
		now:         time.Now,
	}
}

// WithHashCost overrides the bcrypt cost used for new secrets.
func (s *AccountService) WithHashCost(cost int) *AccountService {
	s.hashCost = cost
	return s
}

func (s *AccountService) Register(ctx context.Context, holderName, email, secret string) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	holderName = strings.TrimSpace(holderName)
	email = strings.TrimSpace(email)
	if err := validateRegistration(holderName, email, secret); err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("Register: hash secret: %w", err)
	}

	var account *domain.Account
	for range numberRaceRetries {
		err = s.db.WithinTx(ctx, func(tx *sql.Tx) error {
			a, err := s.open(ctx, tx, holderName, email, string(hash))
			if err != nil {
				return err
			}
			account = a
			return nil
		})
		if !errors.Is(err, domain.ErrAccountNumberTaken) {
			break
		}
		log.Warn("account number claimed concurrently, redrawing")
	}
	if errors.Is(err, domain.ErrAccountNumberTaken) {
		return nil, fmt.Errorf("Register: %w", domain.ErrExhausted)
	}
	if err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}

	log.Info("account registered", "account_number", account.Number)
	return account, nil
}

func (s *AccountService) open(ctx context.Context, tx *sql.Tx, holderName, email, secretHash string) (*domain.Account, error) {
	taken, err := s.accounts.EmailExists(ctx, tx, email)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("open: %w", domain.ErrDuplicateEmail)
	}

	number, err := s.freeNumber(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	account := &domain.Account{
		Number:     number,
		HolderName: holderName,
		Balance:    decimal.Zero,
		Email:      email,
		SecretHash: secretHash,
		Version:    1,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.accounts.Create(ctx, tx, account); err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	_, err = s.recorder.Record(ctx, tx, domain.RecordRequest{
		AccountNumber: number,
		Type:          domain.TransactionTypeInitialDeposit,
		Amount:        decimal.Zero,
		Description:   "Account opening",
	})
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	return account, nil
}

func (s *AccountService) freeNumber(ctx context.Context, tx *sql.Tx) (int64, error) {
	for range s.maxAttempts {
		n, err := s.drawNumber()
		if err != nil {
			return 0, fmt.Errorf("freeNumber: %w", err)
		}
		exists, err := s.accounts.Exists(ctx, tx, n)
		if err != nil {
			return 0, fmt.Errorf("freeNumber: %w", err)
		}
		if !exists {
			return n, nil
		}
	}
	return 0, fmt.Errorf("freeNumber: %d draws: %w", s.maxAttempts, domain.ErrExhausted)
}

// Authenticate resolves an account by exact email and verifies the secret.
// An unknown email and a wrong secret are indistinguishable to the caller.
func (s *AccountService) Authenticate(ctx context.Context, email, secret string) (*domain.Account, error) {
	account, err := s.accounts.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, fmt.Errorf("Authenticate: %w", domain.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("Authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.SecretHash), []byte(secret)); err != nil {
		return nil, fmt.Errorf("Authenticate: %w", domain.ErrInvalidCredentials)
	}
	return account, nil
}

func (s *AccountService) Lookup(ctx context.Context, number int64) (*domain.Account, error) {
	account, err := s.accounts.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, fmt.Errorf("Lookup: %w", domain.MissingAccount(number))
		}
		return nil, fmt.Errorf("Lookup: %w", err)
	}
	return account, nil
}

func (s *AccountService) Exists(ctx context.Context, number int64) (bool, error) {
	exists, err := s.accounts.Exists(ctx, nil, number)
	if err != nil {
		return false, fmt.Errorf("Exists: %w", err)
	}
	return exists, nil
}

// HolderName lets a sender confirm who owns a recipient account before
// transferring to it.
func (s *AccountService) HolderName(ctx context.Context, number int64) (string, error) {
	account, err := s.Lookup(ctx, number)
	if err != nil {
		return "", fmt.Errorf("HolderName: %w", err)
	}
	return account.HolderName, nil
}

// LockForUpdate re-reads the given accounts under row locks, always in
// ascending number order so concurrent multi-account operations cannot
// deadlock. Duplicate numbers are locked once.
func (s *AccountService) LockForUpdate(ctx context.Context, tx *sql.Tx, numbers ...int64) (map[int64]*domain.Account, error) {
	sorted := slices.Clone(numbers)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	result := make(map[int64]*domain.Account, len(sorted))
	for _, n := range sorted {
		account, err := s.accounts.GetForUpdate(ctx, tx, n)
		if err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				return nil, fmt.Errorf("LockForUpdate: %w", domain.MissingAccount(n))
			}
			return nil, fmt.Errorf("LockForUpdate: %w", err)
		}
		result[n] = account
	}
	return result, nil
}

// SetBalance persists a new balance for an account previously returned by
// LockForUpdate and advances its version. The account value is updated in
// place on success.
func (s *AccountService) SetBalance(ctx context.Context, tx *sql.Tx, account *domain.Account, newBalance decimal.Decimal) error {
	if newBalance.IsNegative() {
		return fmt.Errorf("SetBalance: account %d: %w", account.Number, domain.ErrInsufficientFunds)
	}
	if err := s.accounts.UpdateBalance(ctx, tx, account.Number, newBalance, account.Version+1); err != nil {
		return fmt.Errorf("SetBalance: %w", err)
	}
	account.Balance = newBalance
	account.Version++
	return nil
}

func validateRegistration(holderName, email, secret string) error {
	switch {
	case holderName == "":
		return domain.Rule(domain.ErrInvalidRegistration, "Holder name is required")
	case email == "" || !strings.Contains(email, "@"):
		return domain.Rule(domain.ErrInvalidRegistration, "A valid email address is required")
	case secret == "":
		return domain.Rule(domain.ErrInvalidRegistration, "Secret is required")
	}
	return nil
}

var accountNumberSpan = big.NewInt(domain.MaxAccountNumber - domain.MinAccountNumber + 1)

func drawAccountNumber() (int64, error) {
	n, err := rand.Int(rand.Reader, accountNumberSpan)
	if err != nil {
		return 0, fmt.Errorf("drawAccountNumber: %w", err)
	}
	return domain.MinAccountNumber + n.Int64(), nil
}
