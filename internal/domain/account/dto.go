package account

// ProfileResponse is the player-facing account view. PasswordHash and the
// banned flag never leave the server through this shape.
type ProfileResponse struct {
	ID                  string  `json:"id"`
	Email               string  `json:"email"`
	Role                string  `json:"role"`
	Gems                int     `json:"gems"`
	Coins               int     `json:"coins"`
	XP                  int     `json:"xp"`
	Level               int     `json:"level"`
	DailyXPEarned       int     `json:"daily_xp_earned"`
	DailyXPLimit        int     `json:"daily_xp_limit"`
	CareBadgeDays       int     `json:"care_badge_days"`
	IsPremium           bool    `json:"is_premium"`
	LastDailyRewardDate *string `json:"last_daily_reward_date,omitempty"`
}
