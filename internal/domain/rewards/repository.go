package rewards

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const queryTimeout = 5 * time.Second

type Repository interface {
	CreateRun(ctx context.Context, run *Run) error
	FinalizeRun(ctx context.Context, runID uuid.UUID, status RunStatus, processed, rewarded, errorsCount int, detail RunErrorList) error
	HasCompletedRun(ctx context.Context, date string) (bool, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	CountPending(ctx context.Context, date string) (int, error)

	// ListEligible returns non-banned accounts whose last reward date is
	// null or strictly before the given date.
	ListEligible(ctx context.Context, date string) ([]Candidate, error)

	// GrantDaily applies one day's grant in a single conditional write.
	// The update only succeeds while last_daily_reward_date still equals
	// the value the caller read AND is still before the grant date, so a
	// concurrent second trigger can never double-grant. Returns false
	// when the row was already advanced by another writer.
	GrantDaily(ctx context.Context, accountID uuid.UUID, coins, gems int, date string, prevDate *string) (bool, error)
}

// RewardsRepository persists execution-log rows and applies grants.
type RewardsRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *RewardsRepository {
	return &RewardsRepository{db: db}
}

func (r *RewardsRepository) CreateRun(ctx context.Context, run *Run) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx2, `
		INSERT INTO daily_reward_runs (
			id, run_date, status, triggered_by, users_processed,
			users_rewarded, errors_count, error_detail, started_at
		)
		VALUES ($1, $2, $3, $4, 0, 0, 0, '[]', $5)
	`, run.ID, run.RunDate, run.Status, run.TriggeredBy, run.StartedAt)
	if err != nil {
		return fmt.Errorf("%w: insert run", ErrInternal)
	}

	return nil
}

func (r *RewardsRepository) FinalizeRun(ctx context.Context, runID uuid.UUID, status RunStatus, processed, rewarded, errorsCount int, detail RunErrorList) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx2, `
		UPDATE daily_reward_runs
		SET status = $2,
		    users_processed = $3,
		    users_rewarded = $4,
		    errors_count = $5,
		    error_detail = $6,
		    completed_at = NOW()
		WHERE id = $1 AND status = $7
	`, runID, status, processed, rewarded, errorsCount, detail, RunStatusRunning)
	if err != nil {
		return fmt.Errorf("%w: finalize run", ErrInternal)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected", ErrInternal)
	}
	if rows == 0 {
		// Already finalized; the state machine transitions exactly once.
		return fmt.Errorf("%w: run already finalized", ErrInternal)
	}

	return nil
}

func (r *RewardsRepository) HasCompletedRun(ctx context.Context, date string) (bool, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var count int
	err := r.db.GetContext(ctx2, &count, `
		SELECT COUNT(*) FROM daily_reward_runs
		WHERE run_date = $1 AND status = $2 AND triggered_by != $3
	`, date, RunStatusCompleted, TriggerBackfill)
	if err != nil {
		return false, fmt.Errorf("%w: check completed run", ErrInternal)
	}

	return count > 0, nil
}

func (r *RewardsRepository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 10
	}

	runs := make([]Run, 0)
	err := r.db.SelectContext(ctx2, &runs, `
		SELECT id, run_date::text AS run_date, status, triggered_by, users_processed,
		       users_rewarded, errors_count, error_detail, started_at, completed_at
		FROM daily_reward_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list runs", ErrInternal)
	}

	return runs, nil
}

func (r *RewardsRepository) CountPending(ctx context.Context, date string) (int, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var count int
	err := r.db.GetContext(ctx2, &count, `
		SELECT COUNT(*) FROM accounts
		WHERE is_banned = FALSE
		  AND (last_daily_reward_date IS NULL OR last_daily_reward_date < $1)
	`, date)
	if err != nil {
		return 0, fmt.Errorf("%w: count pending", ErrInternal)
	}

	return count, nil
}

func (r *RewardsRepository) ListEligible(ctx context.Context, date string) ([]Candidate, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// DATE columns are cast so they scan as "2006-01-02" strings; the
	// raw value would come back as time.Time and break the day keys.
	candidates := make([]Candidate, 0)
	err := r.db.SelectContext(ctx2, &candidates, `
		SELECT id, is_premium, care_badge_days,
		       last_daily_reward_date::text AS last_daily_reward_date
		FROM accounts
		WHERE is_banned = FALSE
		  AND (last_daily_reward_date IS NULL OR last_daily_reward_date < $1)
		ORDER BY created_at
	`, date)
	if err != nil {
		return nil, fmt.Errorf("%w: list eligible accounts", ErrInternal)
	}

	return candidates, nil
}

func (r *RewardsRepository) GrantDaily(ctx context.Context, accountID uuid.UUID, coins, gems int, date string, prevDate *string) (bool, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx2, `
		UPDATE accounts
		SET coins = coins + $2,
		    gems = gems + $3,
		    last_daily_reward_date = $4,
		    care_badge_days = care_badge_days + 1,
		    updated_at = NOW()
		WHERE id = $1
		  AND is_banned = FALSE
		  AND last_daily_reward_date IS NOT DISTINCT FROM $5
		  AND (last_daily_reward_date IS NULL OR last_daily_reward_date < $4)
	`, accountID, coins, gems, date, prevDate)
	if err != nil {
		return false, fmt.Errorf("%w: grant daily reward", ErrInternal)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: rows affected", ErrInternal)
	}

	return rows > 0, nil
}
