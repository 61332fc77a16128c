package xp

// Daily XP caps. Premium membership doubles the cap.
const (
	DailyCapFree    = 10000
	DailyCapPremium = 20000
)

// DailyLimitFor returns the daily XP cap for a tier.
func DailyLimitFor(isPremium bool) int {
	if isPremium {
		return DailyCapPremium
	}
	return DailyCapFree
}

// LevelForXP returns the progression level for a total XP amount. Each
// level costs 1000 XP more than the previous one: level 2 at 1000, level 3
// at 3000, level 4 at 6000, and so on.
func LevelForXP(totalXP int) int {
	level := 1
	need := 1000
	for totalXP >= need {
		level++
		totalXP -= need
		need += 1000
	}
	return level
}
