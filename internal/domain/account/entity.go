package account

import (
	"time"

	"github.com/google/uuid"
)

// Roles
const (
	RolePlayer = "player"
	RoleAdmin  = "admin"
)

// Account is a player's persistent record. The gems/coins/xp columns are
// cached balances: modulo in-flight operations they must equal the sum of
// the account's rows in the corresponding transaction log (the audit pass
// checks exactly this).
type Account struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`

	Gems  int `db:"gems"`  // spendable premium currency
	Coins int `db:"coins"` // earned soft currency
	XP    int `db:"xp"`

	// DailyXPEarned resets lazily: it is treated as 0 whenever LastXPDate
	// is not today (UTC). There is no separate reset job.
	DailyXPEarned int     `db:"daily_xp_earned"`
	LastXPDate    *string `db:"last_xp_date"` // ISO date, UTC

	LastDailyRewardDate *string `db:"last_daily_reward_date"` // ISO date, UTC
	CareBadgeDays       int     `db:"care_badge_days"`        // consecutive reward days, never reset

	IsPremium bool `db:"is_premium"`
	IsBanned  bool `db:"is_banned"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Balances is the cached-balance view read by the audit pass.
type Balances struct {
	Gems  int `db:"gems"`
	Coins int `db:"coins"`
	XP    int `db:"xp"`
}

// Today returns the current UTC calendar date as an ISO string. All daily
// gates in the economy compare against this value.
func Today() string {
	return time.Now().UTC().Format("2006-01-02")
}
