package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every business error wraps exactly one of ErrNotFound,
// ErrValidation or ErrExhausted; anything else is an infrastructure failure.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrExhausted  = errors.New("identifier space exhausted")
)

var (
	ErrAccountNotFound     = fmt.Errorf("%w: account not found", ErrNotFound)
	ErrInvalidCredentials  = fmt.Errorf("%w: invalid email or secret", ErrNotFound)
	ErrInvalidAmount       = fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	ErrLimitExceeded       = fmt.Errorf("%w: transaction limit exceeded", ErrValidation)
	ErrInsufficientFunds   = fmt.Errorf("%w: insufficient funds", ErrValidation)
	ErrSelfTransfer        = fmt.Errorf("%w: cannot transfer to same account", ErrValidation)
	ErrDuplicateEmail      = fmt.Errorf("%w: email already registered", ErrValidation)
	ErrInvalidFilter       = fmt.Errorf("%w: invalid transaction type filter", ErrValidation)
	ErrInvalidRegistration = fmt.Errorf("%w: invalid registration", ErrValidation)

	ErrVersionConflict = errors.New("optimistic lock conflict")

	// Unique-key races reported by the store. Callers redraw the key.
	ErrAccountNumberTaken = errors.New("account number taken")
	ErrTransactionIDTaken = errors.New("transaction id taken")
)

// RuleError carries the human-readable reason a business rule rejected an
// operation, e.g. the exact shortfall on an overdraft.
type RuleError struct {
	Err    error
	Reason string
}

func (e *RuleError) Error() string { return e.Err.Error() + ": " + e.Reason }

func (e *RuleError) Unwrap() error { return e.Err }

func Rule(err error, format string, args ...any) error {
	return &RuleError{Err: err, Reason: fmt.Sprintf(format, args...)}
}

// Reason returns the display reason of the first RuleError in the chain,
// or "" when there is none.
func Reason(err error) string {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Reason
	}
	return ""
}

// IsBusiness reports whether err is a rejection the caller caused, as
// opposed to a failure of the system.
func IsBusiness(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) || errors.Is(err, ErrExhausted)
}

// MissingAccount is the not-found error for a specific account number.
func MissingAccount(number int64) error {
	return Rule(ErrAccountNotFound, "Account #%d not found", number)
}
