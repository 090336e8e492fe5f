package handler

import (
	"net/http"
	"strconv"

	"github.com/mbank/ledger/internal/auth"
)

// ownerFromPath returns the {number} path account when it belongs to the
// caller. Someone else's account is reported as not found.
func ownerFromPath(r *http.Request) (int64, *AppError) {
	authNumber, ok := auth.AccountNumberFromContext(r.Context())
	if !ok {
		return 0, ErrMissingToken
	}

	number, appErr := numberFromPath(r)
	if appErr != nil {
		return 0, appErr
	}

	if number != authNumber {
		return 0, ErrResourceNotFound
	}

	return number, nil
}

func numberFromPath(r *http.Request) (int64, *AppError) {
	number, err := strconv.ParseInt(r.PathValue("number"), 10, 64)
	if err != nil || number <= 0 {
		return 0, ErrResourceNotFound
	}
	return number, nil
}
