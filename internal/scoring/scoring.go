package scoring

import (
	"time"

	"github.com/felixgeelhaar/learnhub/internal/domain"
)

// Policy holds the reward constants
type Policy struct {
	RevealPenalty     int
	StreakBonus       int
	TimeBonus         int
	TimeBonusDeadline time.Duration
}

// DefaultPolicy returns the standard reward table
func DefaultPolicy() Policy {
	return Policy{
		RevealPenalty:     5,
		StreakBonus:       5,
		TimeBonus:         2,
		TimeBonusDeadline: 30 * time.Second,
	}
}

// Points returns the signed reward for one attempt. A reveal always costs
// the penalty, whatever the answer was.
func (p Policy) Points(q *domain.Question, correct, revealed bool, streakBefore int, timeSpent time.Duration) int {
	if revealed {
		return -p.RevealPenalty
	}
	if !correct {
		return 0
	}

	points := q.BasePoints()
	if streakBefore > 0 {
		points += p.StreakBonus
	}
	if timeSpent < p.TimeBonusDeadline {
		points += p.TimeBonus
	}
	return points
}

// Apply folds one attempt into stats. Revealed attempts count as incorrect.
func (p Policy) Apply(stats *domain.Stats, correct, revealed bool, points int) {
	stats.TotalQuestions++
	if correct && !revealed {
		stats.CorrectAnswers++
		stats.Streak++
		stats.MaxStreak = max(stats.MaxStreak, stats.Streak)
	} else {
		stats.Streak = 0
	}
	stats.Score += points
}
