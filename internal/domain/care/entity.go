package care

// Reward is what one care action pays out. Coins land immediately; XP goes
// through the daily-cap engine and may be clamped or refused.
type Reward struct {
	Coins int
	XP    int
}

// rewards maps each care action to its payout.
var rewards = map[string]Reward{
	"feed":  {Coins: 50, XP: 100},
	"water": {Coins: 20, XP: 40},
	"play":  {Coins: 30, XP: 150},
	"groom": {Coins: 60, XP: 80},
}

// RewardFor returns the payout for an action.
func RewardFor(action string) (Reward, bool) {
	r, ok := rewards[action]
	return r, ok
}
