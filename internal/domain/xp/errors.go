package xp

import "errors"

var (
	// ErrInvalidAmount is returned for negative award requests
	ErrInvalidAmount = errors.New("invalid amount: must not be negative")

	// ErrAccountNotFound is returned when the account doesn't exist
	ErrAccountNotFound = errors.New("account not found")

	// ErrConcurrentUpdate is returned when the conditional write kept
	// losing to concurrent writers after retries
	ErrConcurrentUpdate = errors.New("concurrent account update, retry the operation")

	ErrInternal = errors.New("internal error")
)
