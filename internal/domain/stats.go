package domain

import (
	"encoding/json"
	"math"
	"time"
)

// Stats is the persisted progress record of one learner
type Stats struct {
	Score             int        `json:"score"`
	Streak            int        `json:"streak"`
	MaxStreak         int        `json:"max_streak"`
	TotalQuestions    int        `json:"total_questions"`
	CorrectAnswers    int        `json:"correct_answers"`
	CurrentDifficulty Difficulty `json:"current_difficulty"`
	QuestionsInTier   int        `json:"questions_in_tier"`
	GamesPlayed       int        `json:"games_played"`
	LastPlayed        *time.Time `json:"last_played,omitempty"`
}

// NewStats returns a zeroed record starting on the easy tier
func NewStats() Stats {
	return Stats{CurrentDifficulty: DifficultyEasy}
}

// Normalize repairs records that violate the counter invariants, which
// can happen with hand-edited or partially written stored data.
func (s *Stats) Normalize() {
	if !s.CurrentDifficulty.Valid() {
		s.CurrentDifficulty = DifficultyEasy
	}
	if s.TotalQuestions < 0 {
		s.TotalQuestions = 0
	}
	if s.CorrectAnswers < 0 {
		s.CorrectAnswers = 0
	}
	if s.CorrectAnswers > s.TotalQuestions {
		s.CorrectAnswers = s.TotalQuestions
	}
	if s.Streak < 0 {
		s.Streak = 0
	}
	if s.MaxStreak < s.Streak {
		s.MaxStreak = s.Streak
	}
	if s.QuestionsInTier < 0 {
		s.QuestionsInTier = 0
	}
}

// Accuracy returns the rounded percentage of correct answers, 0 with no attempts
func (s Stats) Accuracy() int {
	if s.TotalQuestions <= 0 {
		return 0
	}
	return int(math.Round(float64(s.CorrectAnswers) / float64(s.TotalQuestions) * 100))
}

// Snapshot returns a read-only view with derived fields
func (s Stats) Snapshot(questionsPerTier int) StatsSnapshot {
	progress := 0
	if questionsPerTier > 0 {
		progress = int(math.Round(float64(s.QuestionsInTier) / float64(questionsPerTier) * 100))
	}
	return StatsSnapshot{
		Score:              s.Score,
		Streak:             s.Streak,
		MaxStreak:          s.MaxStreak,
		TotalQuestions:     s.TotalQuestions,
		CorrectAnswers:     s.CorrectAnswers,
		Accuracy:           s.Accuracy(),
		CurrentDifficulty:  s.CurrentDifficulty,
		QuestionsInTier:    s.QuestionsInTier,
		QuestionsPerTier:   questionsPerTier,
		ProgressToNextTier: progress,
		GamesPlayed:        s.GamesPlayed,
		LastPlayed:         s.LastPlayed,
	}
}

// StatsSnapshot is a copy of Stats plus derived values
type StatsSnapshot struct {
	Score              int        `json:"score"`
	Streak             int        `json:"streak"`
	MaxStreak          int        `json:"max_streak"`
	TotalQuestions     int        `json:"total_questions"`
	CorrectAnswers     int        `json:"correct_answers"`
	Accuracy           int        `json:"accuracy"`
	CurrentDifficulty  Difficulty `json:"current_difficulty"`
	QuestionsInTier    int        `json:"questions_in_tier"`
	QuestionsPerTier   int        `json:"questions_per_tier"`
	ProgressToNextTier int        `json:"progress_to_next_tier"`
	GamesPlayed        int        `json:"games_played"`
	LastPlayed         *time.Time `json:"last_played,omitempty"`
}

// AttemptResult is the outcome of one submission
type AttemptResult struct {
	IsCorrect    bool          `json:"is_correct"`
	PointsEarned int           `json:"points_earned"`
	Feedback     string        `json:"feedback"`
	TimeSpent    time.Duration `json:"-"`
	Explanation  string        `json:"explanation,omitempty"`
	Solution     string        `json:"solution,omitempty"`
	Revealed     bool          `json:"revealed"`
	Difficulty   Difficulty    `json:"difficulty"`
	Advanced     bool          `json:"advanced"`
}

type attemptResultJSON AttemptResult

// MarshalJSON encodes TimeSpent as whole milliseconds under time_spent_ms
func (r AttemptResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		attemptResultJSON
		TimeSpentMs int64 `json:"time_spent_ms"`
	}{attemptResultJSON(r), r.TimeSpent.Milliseconds()})
}

// UnmarshalJSON implements json.Unmarshaler
func (r *AttemptResult) UnmarshalJSON(data []byte) error {
	var v struct {
		attemptResultJSON
		TimeSpentMs int64 `json:"time_spent_ms"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = AttemptResult(v.attemptResultJSON)
	r.TimeSpent = time.Duration(v.TimeSpentMs) * time.Millisecond
	return nil
}
