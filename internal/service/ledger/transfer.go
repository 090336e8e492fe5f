package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mbank/ledger/internal/domain"
	"github.com/mbank/ledger/internal/logging"
	"github.com/shopspring/decimal"
)

type TransferRequest struct {
	From        int64
	To          int64
	Amount      decimal.Decimal
	Description string
}

type TransferResult struct {
	From          *domain.Account
	To            *domain.Account
	Amount        decimal.Decimal
	Fee           decimal.Decimal
	TotalDebit    decimal.Decimal
	TransactionID string
	Description   string
}

// Transfer moves Amount from one account to another and charges the sender
// the transfer fee. Both balance writes and both entries commit together.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	log := logging.FromContext(ctx)

	var result *TransferResult
	err := s.db.WithinTx(ctx, func(tx *sql.Tx) error {
		locked, err := s.accounts.LockForUpdate(ctx, tx, req.From, req.To)
		if err != nil {
			return err
		}
		from, to := locked[req.From], locked[req.To]

		if err := s.validateTransfer(req); err != nil {
			return err
		}

		fee := s.FeeFor(req.Amount)
		total := req.Amount.Add(fee)
		if from.Balance.LessThan(total) {
			return domain.Rule(domain.ErrInsufficientFunds,
				"Insufficient funds. Available: %s, Required: %s (including %s fee)",
				rands(from.Balance), rands(total), rands(fee))
		}

		if err := s.accounts.SetBalance(ctx, tx, from, from.Balance.Sub(total)); err != nil {
			return err
		}
		if err := s.accounts.SetBalance(ctx, tx, to, to.Balance.Add(req.Amount)); err != nil {
			return err
		}

		debit, err := s.recorder.Record(ctx, tx, domain.RecordRequest{
			AccountNumber: from.Number,
			Type:          domain.TransactionTypeTransferDebit,
			Amount:        req.Amount.Neg(),
			Counterparty:  &to.Number,
			Description:   describe(req.Description, "Transfer to account #%d", to.Number),
			Fee:           &fee,
		})
		if err != nil {
			return fmt.Errorf("debit: %w", err)
		}

		_, err = s.recorder.Record(ctx, tx, domain.RecordRequest{
			AccountNumber: to.Number,
			Type:          domain.TransactionTypeTransferCredit,
			Amount:        req.Amount,
			Counterparty:  &from.Number,
			Description:   describe(req.Description, "Transfer from account #%d", from.Number),
		})
		if err != nil {
			return fmt.Errorf("credit: %w", err)
		}

		result = &TransferResult{
			From:          from,
			To:            to,
			Amount:        req.Amount,
			Fee:           fee,
			TotalDebit:    total,
			TransactionID: debit.TransactionID,
			Description:   debit.Description,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	log.Info("transfer completed",
		"transaction_id", result.TransactionID,
		"from_account", req.From,
		"to_account", req.To,
		"amount", req.Amount,
		"fee", result.Fee,
	)
	return result, nil
}

func (s *Service) validateTransfer(req TransferRequest) error {
	if err := validateAmount(req.Amount, s.limits.Transfer, "transfer"); err != nil {
		return err
	}
	if req.From == req.To {
		return domain.Rule(domain.ErrSelfTransfer, "Cannot transfer to the same account")
	}
	return nil
}

func describe(given, fallback string, number int64) string {
	if given != "" {
		return given
	}
	return fmt.Sprintf(fallback, number)
}
