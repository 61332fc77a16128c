package rewards

import "errors"

var (
	// ErrInvalidDateRange is returned for a malformed or reversed
	// backfill range
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrRangeTooWide is returned when a backfill range exceeds the
	// safety cap
	ErrRangeTooWide = errors.New("date range too wide")

	// ErrRunFailed is returned when the run itself (not individual
	// accounts) could not complete
	ErrRunFailed = errors.New("reward run failed")

	ErrInternal = errors.New("internal error")
)
