package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mbank/ledger/internal/domain"
	"github.com/mbank/ledger/internal/logging"
)

type accountService interface {
	Register(ctx context.Context, holderName, email, secret string) (*domain.Account, error)
	Account(ctx context.Context, number int64) (*domain.Account, error)
}

type holderDirectory interface {
	HolderName(ctx context.Context, number int64) (string, error)
}

type AccountHandler struct {
	accounts accountService
	holders  holderDirectory
}

func NewAccountHandler(accounts accountService, holders holderDirectory) *AccountHandler {
	return &AccountHandler{accounts: accounts, holders: holders}
}

type registerRequest struct {
	HolderName string `json:"holder_name"`
	Email      string `json:"email"`
	Secret     string `json:"secret"`
}

func (r registerRequest) Validate() []FieldError {
	var errs []FieldError
	if r.HolderName == "" {
		errs = append(errs, FieldError{Field: "holder_name", Message: "required"})
	}
	if r.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "required"})
	}
	if r.Secret == "" {
		errs = append(errs, FieldError{Field: "secret", Message: "required"})
	}
	return errs
}

type holderDTO struct {
	AccountNumber int64  `json:"account_number"`
	HolderName    string `json:"holder_name"`
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	account, err := h.accounts.Register(r.Context(), req.HolderName, req.Email, req.Secret)
	if err != nil {
		logging.FromContext(r.Context()).Warn("registration failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/accounts/%d", account.Number))
	RespondSuccess(w, http.StatusCreated, toAccountDTO(account))
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	number, appErr := ownerFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	account, err := h.accounts.Account(r.Context(), number)
	if err != nil {
		logging.FromContext(r.Context()).Warn("account lookup failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

// Holder shows the name on any account so a sender can confirm a recipient
// before transferring.
func (h *AccountHandler) Holder(w http.ResponseWriter, r *http.Request) {
	number, appErr := numberFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	name, err := h.holders.HolderName(r.Context(), number)
	if err != nil {
		logging.FromContext(r.Context()).Warn("holder lookup failed", "error", err, "target_account", number)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, holderDTO{AccountNumber: number, HolderName: name})
}
