package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/mbank/ledger/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	defaultStatementRows   = 100
	defaultStatementWindow = 30 * 24 * time.Hour
)

type StatementRequest struct {
	Account int64
	Filter  domain.TypeFilter
	Start   time.Time
	End     time.Time
	Limit   int
}

type Summary struct {
	TotalDeposits     decimal.Decimal
	TotalWithdrawals  decimal.Decimal
	TotalTransfers    decimal.Decimal
	TotalTransfersIn  decimal.Decimal
	TotalTransfersOut decimal.Decimal
	TotalFees         decimal.Decimal
	Count             int
}

type Statement struct {
	Account      *domain.Account
	Filter       domain.TypeFilter
	Start        time.Time
	End          time.Time
	Transactions []domain.Transaction
	Summary      Summary
}

// Statement lists an account's entries for a period, newest first, with
// totals computed over the rows returned. A zero End means now; a zero Start,
// or one after End, means 30 days before End. An empty Filter means ALL.
func (s *Service) Statement(ctx context.Context, req StatementRequest) (*Statement, error) {
	account, err := s.accounts.Lookup(ctx, req.Account)
	if err != nil {
		return nil, fmt.Errorf("Statement: %w", err)
	}

	filter := req.Filter
	if filter == "" {
		filter = domain.FilterAll
	}
	start, end := s.statementRange(req.Start, req.End)
	limit := req.Limit
	if limit <= 0 {
		limit = s.limits.StatementRows
	}

	txns, err := s.recorder.ByAccountAndRange(ctx, req.Account, filter, start, end)
	if err != nil {
		return nil, fmt.Errorf("Statement: %w", err)
	}
	if len(txns) > limit {
		txns = txns[:limit]
	}

	return &Statement{
		Account:      account,
		Filter:       filter,
		Start:        start,
		End:          end,
		Transactions: txns,
		Summary:      summarize(txns),
	}, nil
}

func (s *Service) statementRange(start, end time.Time) (time.Time, time.Time) {
	if end.IsZero() {
		end = s.now().UTC()
	}
	if start.IsZero() || start.After(end) {
		start = end.Add(-defaultStatementWindow)
	}
	return start, end
}

func summarize(txns []domain.Transaction) Summary {
	sum := Summary{
		TotalDeposits:     decimal.Zero,
		TotalWithdrawals:  decimal.Zero,
		TotalTransfers:    decimal.Zero,
		TotalTransfersIn:  decimal.Zero,
		TotalTransfersOut: decimal.Zero,
		TotalFees:         decimal.Zero,
		Count:             len(txns),
	}
	for _, t := range txns {
		switch {
		case t.Type == domain.TransactionTypeDeposit:
			sum.TotalDeposits = sum.TotalDeposits.Add(t.Amount)
		case t.Type == domain.TransactionTypeWithdrawal:
			sum.TotalWithdrawals = sum.TotalWithdrawals.Add(t.Amount.Abs())
		case t.Type.IsTransfer() && t.Amount.IsNegative():
			sum.TotalTransfers = sum.TotalTransfers.Add(t.Amount.Abs())
			sum.TotalTransfersOut = sum.TotalTransfersOut.Add(t.Amount.Abs())
		case t.Type.IsTransfer():
			sum.TotalTransfersIn = sum.TotalTransfersIn.Add(t.Amount)
		}
		sum.TotalFees = sum.TotalFees.Add(t.Fee)
	}
	return sum
}
