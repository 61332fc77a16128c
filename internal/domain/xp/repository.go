package xp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

// Progress is the slice of the account row the accrual engine works on.
type Progress struct {
	XP            int     `db:"xp"`
	DailyXPEarned int     `db:"daily_xp_earned"`
	LastXPDate    *string `db:"last_xp_date"`
	IsPremium     bool    `db:"is_premium"`
}

type Repository interface {
	GetProgress(ctx context.Context, accountID uuid.UUID) (*Progress, error)

	// ApplyAward adds the award in a single conditional write. The write
	// only succeeds while the progress fields still match what the caller
	// read, closing the lost-update race between concurrent awards.
	// Returns false when another writer got there first.
	ApplyAward(ctx context.Context, accountID uuid.UUID, award, newDaily int, today string, prev *Progress) (bool, error)
}

// XPRepository reads and conditionally updates XP progress on account rows.
type XPRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *XPRepository {
	return &XPRepository{db: db}
}

func (r *XPRepository) GetProgress(ctx context.Context, accountID uuid.UUID) (*Progress, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// last_xp_date is a DATE column; without the cast lib/pq hands it
	// over as time.Time and the string destination ends up RFC3339,
	// which never matches a "2006-01-02" day key.
	var p Progress
	err := r.db.GetContext(ctx2, &p, `
		SELECT xp, daily_xp_earned, last_xp_date::text AS last_xp_date, is_premium
		FROM accounts
		WHERE id = $1
	`, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: get xp progress", ErrInternal)
	}

	return &p, nil
}

func (r *XPRepository) ApplyAward(ctx context.Context, accountID uuid.UUID, award, newDaily int, today string, prev *Progress) (bool, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx2, `
		UPDATE accounts
		SET xp = xp + $2,
		    daily_xp_earned = $3,
		    last_xp_date = $4,
		    updated_at = NOW()
		WHERE id = $1
		  AND last_xp_date IS NOT DISTINCT FROM $5
		  AND daily_xp_earned = $6
	`, accountID, award, newDaily, today, prev.LastXPDate, prev.DailyXPEarned)
	if err != nil {
		return false, fmt.Errorf("%w: apply xp award", ErrInternal)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: rows affected", ErrInternal)
	}

	return rows > 0, nil
}
