package rewards

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Grant amounts. Every eligible account gets the coin stipend; the gem
// bonus is premium-tier only.
const (
	DailyCoinsReward = 1000
	PremiumGemBonus  = 10
)

// RunStatus is the execution-log state machine: running -> completed on the
// happy path, running -> failed only on batch-level failure. Per-account
// failures inside the loop never fail the run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// TriggerSource records what started a run.
type TriggerSource string

const (
	TriggerCron     TriggerSource = "automated_cron"
	TriggerManual   TriggerSource = "manual"
	TriggerBackfill TriggerSource = "manual_backfill"
)

// Run is one row of the daily rewards execution log. Created in running
// state at batch start, finalized exactly once at batch end.
type Run struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	RunDate        string        `db:"run_date" json:"run_date"`
	Status         RunStatus     `db:"status" json:"status"`
	TriggeredBy    TriggerSource `db:"triggered_by" json:"triggered_by"`
	UsersProcessed int           `db:"users_processed" json:"users_processed"`
	UsersRewarded  int           `db:"users_rewarded" json:"users_rewarded"`
	ErrorsCount    int           `db:"errors_count" json:"errors_count"`
	ErrorDetail    RunErrorList  `db:"error_detail" json:"error_detail,omitempty"`
	StartedAt      time.Time     `db:"started_at" json:"started_at"`
	CompletedAt    *time.Time    `db:"completed_at" json:"completed_at,omitempty"`
}

// RunError is one isolated per-account failure inside a run.
type RunError struct {
	AccountID string `json:"account_id"`
	Date      string `json:"date"`
	Message   string `json:"message"`
}

// RunErrorList stores structured error detail as jsonb.
type RunErrorList []RunError

func (l RunErrorList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *RunErrorList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported error_detail type")
	}
}

// Candidate is an account eligible for a grant on a given date.
type Candidate struct {
	ID                  uuid.UUID `db:"id"`
	IsPremium           bool      `db:"is_premium"`
	CareBadgeDays       int       `db:"care_badge_days"`
	LastDailyRewardDate *string   `db:"last_daily_reward_date"`
}

// BackfillResult summarizes a retroactive range scan.
type BackfillResult struct {
	TotalRewardsGiven int        `json:"total_rewards_given"`
	DaysProcessed     int        `json:"days_processed"`
	ErrorsCount       int        `json:"errors_count"`
	Errors            []RunError `json:"errors"`
}
