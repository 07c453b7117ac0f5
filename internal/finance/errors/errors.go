package errors

import (
	"errors"
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	return errors.As(err, &validationError)
}

var (
	// ErrAccountNotFound covers both "no such account" and "owned by someone
	// else"; read paths fold it into the combined-scope fallback, mutating
	// handlers surface it as 403.
	ErrAccountNotFound = errors.New("account not found or unauthorized")

	ErrTransactionNotFound = errors.New("transaction not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidCategory     = NewValidationError("Invalid category")
	ErrNoAccountsLinked    = errors.New("no bank accounts linked")
)
