package ledger

import "errors"

var (
	// ErrUnknownLog is returned for a log name outside gems/coins/xp
	ErrUnknownLog = errors.New("unknown transaction log")

	// ErrEmptyEntry is returned when an entry carries no non-zero delta
	ErrEmptyEntry = errors.New("entry has no non-zero delta")

	// ErrRecordFailed is returned when one or more log writes failed.
	// The balance mutation that preceded the write is NOT rolled back;
	// the audit pass reconciles the resulting drift.
	ErrRecordFailed = errors.New("transaction record failed")

	ErrInternal = errors.New("internal error")
)
