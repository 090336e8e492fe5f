package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mbank/ledger/internal/domain"
	"github.com/mbank/ledger/internal/logging"
	"github.com/shopspring/decimal"
)

func (s *Service) Deposit(ctx context.Context, number int64, amount decimal.Decimal) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	var updated *domain.Account
	var recorded *domain.Transaction
	err := s.db.WithinTx(ctx, func(tx *sql.Tx) error {
		locked, err := s.accounts.LockForUpdate(ctx, tx, number)
		if err != nil {
			return err
		}
		account := locked[number]

		if err := validateAmount(amount, s.limits.Deposit, "deposit"); err != nil {
			return err
		}

		if err := s.accounts.SetBalance(ctx, tx, account, account.Balance.Add(amount)); err != nil {
			return err
		}

		recorded, err = s.recorder.Record(ctx, tx, domain.RecordRequest{
			AccountNumber: number,
			Type:          domain.TransactionTypeDeposit,
			Amount:        amount,
			Description:   "Deposit to account",
		})
		if err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	log.Info("deposit completed",
		"account_number", number,
		"transaction_id", recorded.TransactionID,
		"amount", amount,
	)
	return updated, nil
}
