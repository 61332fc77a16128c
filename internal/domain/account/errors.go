package account

import "errors"

var (
	// ErrAccountNotFound is returned when the account doesn't exist
	ErrAccountNotFound = errors.New("account not found")

	// ErrEmailTaken is returned when the email is already registered
	ErrEmailTaken = errors.New("email already registered")

	ErrInternal = errors.New("internal error")
)
