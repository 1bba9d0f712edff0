// Package gamification tracks XP, levels and daily streaks. It is the
// Awarder collaborator behind the review and quiz engines: they signal
// outcomes, this package turns them into progress.
package gamification

// Level thresholds: total XP required to reach each level. Level n is the
// highest index i with total >= levelThresholds[i], plus one.
var levelThresholds = []int{
	0, 100, 250, 500, 1000, 2000, 3500, 5500, 8000, 12000,
	17000, 23000, 30000, 40000, 52000, 67000, 85000, 110000,
}

// Display names for levels. Levels past the list reuse the last name.
var levelNames = []string{
	"Curious Beginner", "Eager Learner", "Rising Star", "Knowledge Seeker",
	"Quick Thinker", "Dedicated Scholar", "Master Student", "Wisdom Keeper",
	"Enlightened Mind", "Grand Sage",
}

// DayXP is one day's earned XP in the history ledger. Date is a UTC
// calendar day in YYYY-MM-DD form.
type DayXP struct {
	Date   string `json:"date"`
	Amount int    `json:"amount"`
}

// Streak tracks consecutive active days. A freeze covers a missed gap of
// up to two days; two freezes are granted and never replenished.
type Streak struct {
	Current          int    `json:"current"`
	Longest          int    `json:"longest"`
	LastActiveDate   string `json:"lastActiveDate"`
	FreezesAvailable int    `json:"freezesAvailable"`
	FreezesUsed      int    `json:"freezesUsed"`
}

// UserStats is the persisted gamification state.
type UserStats struct {
	TotalXP int      `json:"totalXp"`
	History []*DayXP `json:"history"`
	Streak  Streak   `json:"streak"`
	Level   int      `json:"level"`
}

// Stats is the derived view handed to callers: the persisted state plus
// day- and week-scoped XP and level progress computed at read time.
type Stats struct {
	TotalXP     int      `json:"totalXp"`
	TodayXP     int      `json:"todayXp"`
	WeekXP      int      `json:"weekXp"`
	Level       int      `json:"level"`
	LevelName   string   `json:"levelName"`
	Streak      Streak   `json:"streak"`
	History     []*DayXP `json:"history"`
	NextLevelXP Progress `json:"nextLevel"`
}

// Progress describes how far into the current level the user is.
type Progress struct {
	Current int     `json:"current"`
	Needed  int     `json:"needed"`
	Percent float64 `json:"percent"`
	AtMax   bool    `json:"atMaxLevel"`
}

func levelForXP(total int) int {
	for i := len(levelThresholds) - 1; i >= 0; i-- {
		if total >= levelThresholds[i] {
			return i + 1
		}
	}
	return 1
}

func levelName(level int) string {
	i := level - 1
	if i < 0 {
		i = 0
	}
	if i >= len(levelNames) {
		i = len(levelNames) - 1
	}
	return levelNames[i]
}

func progressForXP(total, level int) Progress {
	if level >= len(levelThresholds) {
		return Progress{AtMax: true, Percent: 100}
	}
	currentThreshold := levelThresholds[level-1]
	nextThreshold := levelThresholds[level]
	current := total - currentThreshold
	needed := nextThreshold - currentThreshold
	percent := float64(current) / float64(needed) * 100
	if percent > 100 {
		percent = 100
	}
	return Progress{Current: current, Needed: needed, Percent: percent}
}
