package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Log identifies one of the three parallel transaction logs.
type Log string

const (
	LogGems  Log = "gems"  // premium currency
	LogCoins Log = "coins" // earned soft currency
	LogXP    Log = "xp"
)

// Activity tags categorize transactions for filtering and audit.
const (
	ActivityDailyReward  = "daily_reward"
	ActivityBackfill     = "retro_daily_reward"
	ActivityCareAction   = "care_action"
	ActivitySignupBonus  = "signup_bonus"
	ActivityAdminGrant   = "admin_grant"
	ActivityPetSale      = "pet_sale"
	ActivityPetPurchase  = "pet_purchase"
	ActivityLevelUpBonus = "level_up_bonus"
)

// Transaction is an immutable ledger row. Rows are created exactly once per
// economic event and never updated or deleted.
type Transaction struct {
	ID          uuid.UUID `db:"id" json:"id"`
	AccountID   uuid.UUID `db:"account_id" json:"account_id"`
	AmountDelta int       `db:"amount_delta" json:"amount_delta"`
	Activity    string    `db:"activity" json:"activity"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Entry describes one logical economic event. Each non-zero delta produces
// exactly one row in the matching log; rows of the same entry share the
// activity and description for correlation.
type Entry struct {
	AccountID   uuid.UUID
	GemsDelta   int
	CoinsDelta  int
	XPDelta     int
	Activity    string
	Description string
}

// Pagination controls simple list pagination.
type Pagination struct {
	Limit  int
	Offset int
}
