package handler

import (
	"time"

	"github.com/mbank/ledger/internal/domain"
	"github.com/mbank/ledger/internal/service/ledger"
	"github.com/shopspring/decimal"
)

// Money is rendered as a fixed two-place string so clients never see
// float rounding, e.g. "2990.00".
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type accountDTO struct {
	AccountNumber int64     `json:"account_number"`
	HolderName    string    `json:"holder_name"`
	Email         string    `json:"email"`
	Balance       string    `json:"balance"`
	CreatedAt     time.Time `json:"created_at"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	return accountDTO{
		AccountNumber: a.Number,
		HolderName:    a.HolderName,
		Email:         a.Email,
		Balance:       money(a.Balance),
		CreatedAt:     a.CreatedAt,
	}
}

type transactionDTO struct {
	TransactionID       string    `json:"transaction_id"`
	Type                string    `json:"type"`
	Amount              string    `json:"amount"`
	Fee                 string    `json:"fee"`
	CounterpartyAccount *int64    `json:"counterparty_account"`
	Description         string    `json:"description"`
	OccurredAt          time.Time `json:"occurred_at"`
}

func toTransactionDTO(t *domain.Transaction) transactionDTO {
	return transactionDTO{
		TransactionID:       t.TransactionID,
		Type:                string(t.Type),
		Amount:              money(t.Amount),
		Fee:                 money(t.Fee),
		CounterpartyAccount: t.Counterparty,
		Description:         t.Description,
		OccurredAt:          t.OccurredAt,
	}
}

type transferDTO struct {
	TransactionID string `json:"transaction_id"`
	FromAccount   int64  `json:"from_account"`
	ToAccount     int64  `json:"to_account"`
	RecipientName string `json:"recipient_name"`
	Amount        string `json:"amount"`
	Fee           string `json:"fee"`
	TotalDebit    string `json:"total_debit"`
	Description   string `json:"description"`
	Balance       string `json:"balance"`
}

func toTransferDTO(res *ledger.TransferResult) transferDTO {
	return transferDTO{
		TransactionID: res.TransactionID,
		FromAccount:   res.From.Number,
		ToAccount:     res.To.Number,
		RecipientName: res.To.HolderName,
		Amount:        money(res.Amount),
		Fee:           money(res.Fee),
		TotalDebit:    money(res.TotalDebit),
		Description:   res.Description,
		Balance:       money(res.From.Balance),
	}
}

type summaryDTO struct {
	TotalDeposits     string `json:"total_deposits"`
	TotalWithdrawals  string `json:"total_withdrawals"`
	TotalTransfers    string `json:"total_transfers"`
	TotalTransfersIn  string `json:"total_transfers_in"`
	TotalTransfersOut string `json:"total_transfers_out"`
	TotalFees         string `json:"total_fees"`
	Count             int    `json:"count"`
}

type statementDTO struct {
	Account      accountDTO       `json:"account"`
	Filter       string           `json:"filter"`
	Start        time.Time        `json:"start"`
	End          time.Time        `json:"end"`
	Transactions []transactionDTO `json:"transactions"`
	Summary      summaryDTO       `json:"summary"`
}

func toStatementDTO(st *ledger.Statement) statementDTO {
	txns := make([]transactionDTO, len(st.Transactions))
	for i := range st.Transactions {
		txns[i] = toTransactionDTO(&st.Transactions[i])
	}
	return statementDTO{
		Account:      toAccountDTO(st.Account),
		Filter:       string(st.Filter),
		Start:        st.Start,
		End:          st.End,
		Transactions: txns,
		Summary: summaryDTO{
			TotalDeposits:     money(st.Summary.TotalDeposits),
			TotalWithdrawals:  money(st.Summary.TotalWithdrawals),
			TotalTransfers:    money(st.Summary.TotalTransfers),
			TotalTransfersIn:  money(st.Summary.TotalTransfersIn),
			TotalTransfersOut: money(st.Summary.TotalTransfersOut),
			TotalFees:         money(st.Summary.TotalFees),
			Count:             st.Summary.Count,
		},
	}
}
