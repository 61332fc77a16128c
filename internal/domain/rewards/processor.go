package rewards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pawhaven/pawhaven-api/internal/domain/ledger"
)

// Notifier pushes run summaries to subscribed operator connections.
type Notifier interface {
	Publish(event interface{})
}

// Archiver persists finalized run summaries outside the database.
type Archiver interface {
	ArchiveRun(ctx context.Context, run *Run) error
}

// Processor grants the daily stipend to every eligible account. It is
// logically single-threaded (accounts are processed sequentially) but may
// overlap in time with user actions and with a second trigger of itself;
// the conditional write in GrantDaily keeps that safe.
type Processor struct {
	repo     Repository
	recorder ledger.Recorder
	notifier Notifier // optional
	archiver Archiver // optional
}

func NewProcessor(repo Repository, recorder ledger.Recorder) *Processor {
	return &Processor{repo: repo, recorder: recorder}
}

// WithNotifier attaches an ops-feed notifier.
func (p *Processor) WithNotifier(n Notifier) *Processor {
	p.notifier = n
	return p
}

// WithArchiver attaches a run archiver.
func (p *Processor) WithArchiver(a Archiver) *Processor {
	p.archiver = a
	return p
}

// RunDaily executes one daily reward batch. Per-account failures are
// isolated, counted and recorded in the execution log; only failures of the
// run machinery itself (creating/finalizing the log row, the eligibility
// query) fail the whole run.
func (p *Processor) RunDaily(ctx context.Context, trigger TriggerSource) (*Run, error) {
	today := time.Now().UTC().Format("2006-01-02")

	run := &Run{
		ID:          uuid.New(),
		RunDate:     today,
		Status:      RunStatusRunning,
		TriggeredBy: trigger,
		StartedAt:   time.Now().UTC(),
	}

	if err := p.repo.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("%w: create execution log row: %v", ErrRunFailed, err)
	}

	log.Info().
		Str("run_id", run.ID.String()).
		Str("run_date", today).
		Str("trigger", string(trigger)).
		Msg("Daily reward run started")

	candidates, err := p.repo.ListEligible(ctx, today)
	if err != nil {
		p.finalize(ctx, run, RunStatusFailed, 0, 0, 1, RunErrorList{{
			Date:    today,
			Message: fmt.Sprintf("eligibility query failed: %v", err),
		}})
		return nil, fmt.Errorf("%w: eligibility query: %v", ErrRunFailed, err)
	}

	var processed, rewarded int
	var errs RunErrorList

	for _, c := range candidates {
		processed++

		if err := p.grantOne(ctx, c, today, ledger.ActivityDailyReward); err != nil {
			if err == errAlreadyGranted {
				// Another writer advanced the row since the
				// eligibility query; not an error.
				continue
			}
			errs = append(errs, RunError{
				AccountID: c.ID.String(),
				Date:      today,
				Message:   err.Error(),
			})
			continue
		}

		rewarded++
	}

	run.Status = RunStatusCompleted
	run.UsersProcessed = processed
	run.UsersRewarded = rewarded
	run.ErrorsCount = len(errs)
	run.ErrorDetail = errs

	if err := p.finalize(ctx, run, RunStatusCompleted, processed, rewarded, len(errs), errs); err != nil {
		return nil, fmt.Errorf("%w: finalize execution log row: %v", ErrRunFailed, err)
	}

	log.Info().
		Str("run_id", run.ID.String()).
		Int("processed", processed).
		Int("rewarded", rewarded).
		Int("errors", len(errs)).
		Msg("Daily reward run completed")

	p.publishAndArchive(ctx, run)

	return run, nil
}

var errAlreadyGranted = errors.New("already granted")

// grantOne applies one day's grant for one account: balance write first,
// transaction rows second. A failed transaction write does not undo the
// grant; it is reported as a per-account error and left to the audit pass.
func (p *Processor) grantOne(ctx context.Context, c Candidate, date, activity string) error {
	gems := 0
	if c.IsPremium {
		gems = PremiumGemBonus
	}

	applied, err := p.repo.GrantDaily(ctx, c.ID, DailyCoinsReward, gems, date, c.LastDailyRewardDate)
	if err != nil {
		return err
	}
	if !applied {
		return errAlreadyGranted
	}

	if err := p.recorder.Record(ctx, ledger.Entry{
		AccountID:   c.ID,
		CoinsDelta:  DailyCoinsReward,
		GemsDelta:   gems,
		Activity:    activity,
		Description: fmt.Sprintf("daily reward for %s", date),
	}); err != nil {
		return fmt.Errorf("reward granted but record failed: %v", err)
	}

	return nil
}

func (p *Processor) finalize(ctx context.Context, run *Run, status RunStatus, processed, rewarded, errorsCount int, detail RunErrorList) error {
	if err := p.repo.FinalizeRun(ctx, run.ID, status, processed, rewarded, errorsCount, detail); err != nil {
		log.Error().Err(err).
			Str("run_id", run.ID.String()).
			Str("status", string(status)).
			Msg("Failed to finalize reward run")
		return err
	}
	now := time.Now().UTC()
	run.CompletedAt = &now
	return nil
}

// publishAndArchive is best effort: neither the ops feed nor the archive
// may fail a completed run.
func (p *Processor) publishAndArchive(ctx context.Context, run *Run) {
	if p.notifier != nil {
		p.notifier.Publish(run)
	}
	if p.archiver != nil {
		if err := p.archiver.ArchiveRun(ctx, run); err != nil {
			log.Warn().Err(err).
				Str("run_id", run.ID.String()).
				Msg("Failed to archive reward run")
		}
	}
}
