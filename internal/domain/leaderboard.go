package domain

import "time"

// MaxLeaderboardEntries caps the stored leaderboard
const MaxLeaderboardEntries = 50

// LeaderboardEntry is one ranked player. Name is the unique key.
type LeaderboardEntry struct {
	Name        string     `json:"name"`
	Avatar      string     `json:"avatar"`
	Score       int        `json:"score"`
	Streak      int        `json:"streak"`
	Accuracy    int        `json:"accuracy"`
	GamesPlayed int        `json:"games_played"`
	JoinDate    *time.Time `json:"join_date,omitempty"`
}

// Achievement is a badge derived from a player's numbers
type Achievement struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

type achievementRule struct {
	threshold   int
	achievement Achievement
}

var (
	scoreAchievements = []achievementRule{
		{1000, Achievement{"Score Master", "🏆", "Reached 1000 points"}},
		{500, Achievement{"High Scorer", "⭐", "Reached 500 points"}},
		{100, Achievement{"Getting Started", "🎯", "Reached 100 points"}},
	}
	streakAchievements = []achievementRule{
		{20, Achievement{"Unstoppable", "🔥", "20+ answer streak"}},
		{10, Achievement{"On Fire", "🚀", "10+ answer streak"}},
		{5, Achievement{"Hot Streak", "⚡", "5+ answer streak"}},
	}
	accuracyAchievements = []achievementRule{
		{95, Achievement{"Perfectionist", "💎", "95%+ accuracy"}},
		{85, Achievement{"Sharp Shooter", "🎯", "85%+ accuracy"}},
		{75, Achievement{"Good Aim", "👍", "75%+ accuracy"}},
	}
	gamesAchievements = []achievementRule{
		{100, Achievement{"Dedicated", "🎮", "Played 100+ games"}},
		{50, Achievement{"Regular Player", "🎲", "Played 50+ games"}},
		{10, Achievement{"Getting Hooked", "🎪", "Played 10+ games"}},
	}
)

// Achievements returns every badge the entry has earned, highest first
// within each group
func Achievements(e LeaderboardEntry) []Achievement {
	var out []Achievement
	collect := func(value int, rules []achievementRule) {
		for _, r := range rules {
			if value >= r.threshold {
				out = append(out, r.achievement)
			}
		}
	}
	collect(e.Score, scoreAchievements)
	collect(e.Streak, streakAchievements)
	collect(e.Accuracy, accuracyAchievements)
	collect(e.GamesPlayed, gamesAchievements)
	return out
}
