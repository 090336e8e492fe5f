package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mbank/ledger/internal/auth"
	"github.com/mbank/ledger/internal/domain"
	"github.com/mbank/ledger/internal/logging"
)

type authenticator interface {
	Login(ctx context.Context, email, secret string) (*domain.Account, error)
}

type AuthHandler struct {
	accounts  authenticator
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthHandler(accounts authenticator, jwtSecret string, jwtExpiry time.Duration) *AuthHandler {
	return &AuthHandler{
		accounts:  accounts,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

type loginRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
}

func (r loginRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "required"})
	}
	if r.Secret == "" {
		errs = append(errs, FieldError{Field: "secret", Message: "required"})
	}
	return errs
}

type loginResponse struct {
	Token   string     `json:"token"`
	Account accountDTO `json:"account"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	account, err := h.accounts.Login(r.Context(), req.Email, req.Secret)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			logging.FromContext(r.Context()).Warn("login rejected")
			RespondAppError(w, ErrInvalidCredentials, nil)
			return
		}
		RespondDomainError(w, err)
		return
	}

	token, err := auth.GenerateToken(account.Number, account.Email, h.jwtSecret, h.jwtExpiry)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to sign token", "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	RespondSuccess(w, http.StatusOK, loginResponse{
		Token:   token,
		Account: toAccountDTO(account),
	})
}
