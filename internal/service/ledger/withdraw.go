package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mbank/ledger/internal/domain"
	"github.com/mbank/ledger/internal/logging"
	"github.com/shopspring/decimal"
)

func (s *Service) Withdraw(ctx context.Context, number int64, amount decimal.Decimal) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	var updated *domain.Account
	var recorded *domain.Transaction
	err := s.db.WithinTx(ctx, func(tx *sql.Tx) error {
		locked, err := s.accounts.LockForUpdate(ctx, tx, number)
		if err != nil {
			return err
		}
		account := locked[number]

		if err := validateAmount(amount, s.limits.Withdrawal, "withdrawal"); err != nil {
			return err
		}
		if amount.GreaterThan(account.Balance) {
			return domain.Rule(domain.ErrInsufficientFunds, "Insufficient funds! Available: %s", rands(account.Balance))
		}

		if err := s.accounts.SetBalance(ctx, tx, account, account.Balance.Sub(amount)); err != nil {
			return err
		}

		recorded, err = s.recorder.Record(ctx, tx, domain.RecordRequest{
			AccountNumber: number,
			Type:          domain.TransactionTypeWithdrawal,
			Amount:        amount.Neg(),
			Description:   "Withdrawal from account",
		})
		if err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	log.Info("withdrawal completed",
		"account_number", number,
		"transaction_id", recorded.TransactionID,
		"amount", amount,
	)
	return updated, nil
}
