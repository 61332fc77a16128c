package xp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pawhaven/pawhaven-api/internal/domain/ledger"
)

// awardRetries bounds the conditional-write retry loop under contention.
const awardRetries = 3

// AwardResult is the outcome of an XP award attempt. A capped or zero award
// is a soft negative result, never an error: Success is false and Reason
// says why, and callers surface it as an informational message.
type AwardResult struct {
	Success   bool   `json:"success"`
	XPAwarded int    `json:"xp_awarded"`
	Reason    string `json:"reason,omitempty"`
	NewTotal  int    `json:"new_total,omitempty"`
	NewLevel  int    `json:"new_level,omitempty"`
	Remaining int    `json:"daily_remaining"`
}

// Service enforces the rolling daily XP cap and drives level progression.
type Service struct {
	repo     Repository
	recorder ledger.Recorder
}

func NewService(repo Repository, recorder ledger.Recorder) *Service {
	return &Service{repo: repo, recorder: recorder}
}

// CheckAndAward clamps the requested amount to what is left under today's
// cap and applies it. The daily counter resets lazily: when last_xp_date is
// not today (UTC), the earned-today value is treated as 0. There is no
// separate reset job; a reset job would race a concurrent award.
func (s *Service) CheckAndAward(ctx context.Context, accountID uuid.UUID, amount int, activity string) (*AwardResult, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}

	today := time.Now().UTC().Format("2006-01-02")

	for attempt := 0; attempt < awardRetries; attempt++ {
		prev, err := s.repo.GetProgress(ctx, accountID)
		if err != nil {
			return nil, err
		}

		effectiveDaily := prev.DailyXPEarned
		if prev.LastXPDate == nil || *prev.LastXPDate != today {
			effectiveDaily = 0
		}

		limit := DailyLimitFor(prev.IsPremium)
		remaining := limit - effectiveDaily

		if remaining <= 0 {
			return &AwardResult{
				Success:   false,
				XPAwarded: 0,
				Reason:    "daily XP limit reached",
				NewTotal:  prev.XP,
				NewLevel:  LevelForXP(prev.XP),
				Remaining: 0,
			}, nil
		}

		if amount == 0 {
			return &AwardResult{
				Success:   false,
				XPAwarded: 0,
				Reason:    "nothing to award",
				NewTotal:  prev.XP,
				NewLevel:  LevelForXP(prev.XP),
				Remaining: remaining,
			}, nil
		}

		awarded := amount
		if awarded > remaining {
			awarded = remaining
		}

		applied, err := s.repo.ApplyAward(ctx, accountID, awarded, effectiveDaily+awarded, today, prev)
		if err != nil {
			return nil, err
		}
		if !applied {
			// Lost to a concurrent writer; re-read and recompute.
			continue
		}

		// Best effort: the balance write stands even if the log write
		// fails. The audit pass reconciles the drift.
		if err := s.recorder.Record(ctx, ledger.Entry{
			AccountID:   accountID,
			XPDelta:     awarded,
			Activity:    activity,
			Description: fmt.Sprintf("xp for %s", activity),
		}); err != nil {
			log.Error().Err(err).
				Str("account_id", accountID.String()).
				Int("xp", awarded).
				Msg("XP awarded but transaction record failed")
		}

		result := &AwardResult{
			Success:   true,
			XPAwarded: awarded,
			NewTotal:  prev.XP + awarded,
			NewLevel:  LevelForXP(prev.XP + awarded),
			Remaining: remaining - awarded,
		}
		if awarded < amount {
			result.Reason = "partial award, daily XP limit reached"
		}
		return result, nil
	}

	return nil, ErrConcurrentUpdate
}
