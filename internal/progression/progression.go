package progression

import (
	"math"

	"github.com/felixgeelhaar/learnhub/internal/domain"
)

// DefaultQuestionsPerTier is how many correct answers advance a tier
const DefaultQuestionsPerTier = 3

// Tracker is the easy -> medium -> hard state machine. Only correct,
// non-revealed answers move it.
type Tracker struct {
	perTier int
	tier    domain.Difficulty
	count   int
}

// NewTracker creates a tracker on the easy tier. perTier <= 0 selects
// DefaultQuestionsPerTier.
func NewTracker(perTier int) *Tracker {
	if perTier <= 0 {
		perTier = DefaultQuestionsPerTier
	}
	return &Tracker{perTier: perTier, tier: domain.DifficultyEasy}
}

// Restore loads persisted progress, clamping bad values
func (t *Tracker) Restore(tier domain.Difficulty, count int) {
	if !tier.Valid() {
		tier, count = domain.DifficultyEasy, 0
	}
	t.tier = tier
	t.count = min(max(count, 0), t.perTier)
	if t.count == t.perTier && tier != domain.DifficultyHard {
		t.count = t.perTier - 1
	}
}

// RecordCorrect counts one correct answer and reports whether the tier
// changed. On hard the counter saturates at the threshold.
func (t *Tracker) RecordCorrect() (advanced bool) {
	if t.tier == domain.DifficultyHard {
		t.count = min(t.count+1, t.perTier)
		return false
	}

	t.count++
	if t.count >= t.perTier {
		t.tier = t.tier.Next()
		t.count = 0
		return true
	}
	return false
}

// Reset returns to easy with an empty counter
func (t *Tracker) Reset() {
	t.tier = domain.DifficultyEasy
	t.count = 0
}

// Difficulty returns the current tier
func (t *Tracker) Difficulty() domain.Difficulty { return t.tier }

// Count returns correct answers recorded in the current tier
func (t *Tracker) Count() int { return t.count }

// QuestionsPerTier returns the advance threshold
func (t *Tracker) QuestionsPerTier() int { return t.perTier }

// ProgressPercent returns rounded progress toward the next tier
func (t *Tracker) ProgressPercent() int {
	return int(math.Round(float64(t.count) / float64(t.perTier) * 100))
}

// SyncTo copies the tracker state into stats
func (t *Tracker) SyncTo(stats *domain.Stats) {
	stats.CurrentDifficulty = t.tier
	stats.QuestionsInTier = t.count
}
