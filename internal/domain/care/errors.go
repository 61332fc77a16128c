package care

import "errors"

var (
	// ErrUnknownAction is returned for an action with no payout entry
	ErrUnknownAction = errors.New("unknown care action")

	// ErrRateLimited is returned when the per-account action window is full
	ErrRateLimited = errors.New("too many care actions")

	ErrInternal = errors.New("internal error")
)
