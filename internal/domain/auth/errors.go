package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for a wrong email or password
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrBanned is returned when a banned account tries to log in
	ErrBanned = errors.New("account is banned")

	ErrInternal = errors.New("internal error")
)
