package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mbank/ledger/internal/domain"
	"github.com/mbank/ledger/internal/logging"
	"github.com/mbank/ledger/internal/service/ledger"
	"github.com/shopspring/decimal"
)

type ledgerService interface {
	Deposit(ctx context.Context, number int64, amount decimal.Decimal) (*domain.Account, error)
	Withdraw(ctx context.Context, number int64, amount decimal.Decimal) (*domain.Account, error)
	Transfer(ctx context.Context, req ledger.TransferRequest) (*ledger.TransferResult, error)
	Statement(ctx context.Context, req ledger.StatementRequest) (*ledger.Statement, error)
}

type LedgerHandler struct {
	ledger ledgerService
}

func NewLedgerHandler(svc ledgerService) *LedgerHandler {
	return &LedgerHandler{ledger: svc}
}

// Amounts are accepted as JSON strings or numbers; strings are preferred to
// keep cents exact.
type amountRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

func (r amountRequest) Validate() []FieldError {
	if r.Amount == nil {
		return []FieldError{{Field: "amount", Message: "required"}}
	}
	if !domain.AmountInRange(*r.Amount) {
		return []FieldError{{Field: "amount", Message: "out of range"}}
	}
	return nil
}

type transferRequest struct {
	ToAccount   int64            `json:"to_account"`
	Amount      *decimal.Decimal `json:"amount"`
	Description string           `json:"description"`
}

func (r transferRequest) Validate() []FieldError {
	var errs []FieldError
	if r.ToAccount <= 0 {
		errs = append(errs, FieldError{Field: "to_account", Message: "required"})
	}
	if r.Amount == nil {
		errs = append(errs, FieldError{Field: "amount", Message: "required"})
	} else if !domain.AmountInRange(*r.Amount) {
		errs = append(errs, FieldError{Field: "amount", Message: "out of range"})
	}
	if len(r.Description) > 255 {
		errs = append(errs, FieldError{Field: "description", Message: "must be at most 255 characters"})
	}
	return errs
}

func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.moveCash(w, r, "deposit", h.ledger.Deposit)
}

func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.moveCash(w, r, "withdrawal", h.ledger.Withdraw)
}

func (h *LedgerHandler) moveCash(w http.ResponseWriter, r *http.Request, op string,
	move func(ctx context.Context, number int64, amount decimal.Decimal) (*domain.Account, error),
) {
	number, appErr := ownerFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	account, err := move(r.Context(), number, *req.Amount)
	if err != nil {
		logging.FromContext(r.Context()).Warn(op+" rejected", "error", err, "amount", req.Amount.String())
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toAccountDTO(account))
}

func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	number, appErr := ownerFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	res, err := h.ledger.Transfer(r.Context(), ledger.TransferRequest{
		From:        number,
		To:          req.ToAccount,
		Amount:      *req.Amount,
		Description: req.Description,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("transfer rejected",
			"error", err, "to_account", req.ToAccount, "amount", req.Amount.String())
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toTransferDTO(res))
}
