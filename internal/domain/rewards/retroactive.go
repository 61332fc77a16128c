package rewards

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pawhaven/pawhaven-api/internal/domain/ledger"
)

// maxBackfillDays caps an operator-supplied range; a typo like a wrong year
// must not turn into a months-long grant loop.
const maxBackfillDays = 90

const dateLayout = "2006-01-02"

// Backfill replays missed daily rewards over [startDate, endDate],
// day-by-day. Each accepted grant advances the account's reward date by
// exactly one day before the next date is evaluated, so multi-day gaps are
// backfilled sequentially rather than granted in bulk. An account whose
// reward date is already at or past a date is skipped for that date.
// Errors are collected per (account, date) and never abort the range scan.
func (p *Processor) Backfill(ctx context.Context, startDate, endDate string) (*BackfillResult, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start date %q", ErrInvalidDateRange, startDate)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end date %q", ErrInvalidDateRange, endDate)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end before start", ErrInvalidDateRange)
	}

	today := time.Now().UTC().Format(dateLayout)
	if endDate > today {
		return nil, fmt.Errorf("%w: end date is in the future", ErrInvalidDateRange)
	}

	days := int(end.Sub(start).Hours()/24) + 1
	if days > maxBackfillDays {
		return nil, fmt.Errorf("%w: %d days exceeds the %d day cap", ErrRangeTooWide, days, maxBackfillDays)
	}

	log.Info().
		Str("start", startDate).
		Str("end", endDate).
		Int("days", days).
		Msg("Retroactive reward backfill started")

	result := &BackfillResult{Errors: []RunError{}}
	var processed int

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format(dateLayout)
		result.DaysProcessed++

		candidates, err := p.repo.ListEligible(ctx, dateStr)
		if err != nil {
			// The day's query failed; record it and move on to the
			// next date rather than aborting the scan.
			result.Errors = append(result.Errors, RunError{
				Date:    dateStr,
				Message: fmt.Sprintf("eligibility query failed: %v", err),
			})
			continue
		}

		for _, c := range candidates {
			processed++

			if err := p.grantOne(ctx, c, dateStr, ledger.ActivityBackfill); err != nil {
				if err == errAlreadyGranted {
					continue
				}
				result.Errors = append(result.Errors, RunError{
					AccountID: c.ID.String(),
					Date:      dateStr,
					Message:   err.Error(),
				})
				continue
			}
			result.TotalRewardsGiven++
		}
	}

	result.ErrorsCount = len(result.Errors)

	p.logBackfillRun(ctx, result, processed)

	log.Info().
		Int("rewards", result.TotalRewardsGiven).
		Int("days", result.DaysProcessed).
		Int("errors", result.ErrorsCount).
		Msg("Retroactive reward backfill completed")

	return result, nil
}

// logBackfillRun writes an execution-log row for the backfill so it shows
// up next to regular runs in the operator status view. The counts carry the
// same per-account meaning as regular rows: processed is candidate
// evaluations, rewarded is accepted grants. Best effort: the grants already
// happened.
func (p *Processor) logBackfillRun(ctx context.Context, result *BackfillResult, processed int) {
	run := &Run{
		ID:          uuid.New(),
		RunDate:     time.Now().UTC().Format(dateLayout),
		Status:      RunStatusRunning,
		TriggeredBy: TriggerBackfill,
		StartedAt:   time.Now().UTC(),
	}
	if err := p.repo.CreateRun(ctx, run); err != nil {
		log.Warn().Err(err).Msg("Failed to create backfill execution log row")
		return
	}

	detail := RunErrorList(result.Errors)
	if detail == nil {
		detail = RunErrorList{}
	}
	if err := p.repo.FinalizeRun(ctx, run.ID, RunStatusCompleted, processed, result.TotalRewardsGiven, result.ErrorsCount, detail); err != nil {
		log.Warn().Err(err).Msg("Failed to finalize backfill execution log row")
		return
	}

	run.Status = RunStatusCompleted
	run.UsersProcessed = processed
	run.UsersRewarded = result.TotalRewardsGiven
	run.ErrorsCount = result.ErrorsCount
	run.ErrorDetail = detail

	if p.notifier != nil {
		p.notifier.Publish(run)
	}
}
