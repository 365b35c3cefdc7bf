package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewStats(t *testing.T) {
	s := NewStats()
	if s.CurrentDifficulty != DifficultyEasy {
		t.Errorf("CurrentDifficulty = %s, want easy", s.CurrentDifficulty)
	}
	if s.Score != 0 || s.TotalQuestions != 0 || s.LastPlayed != nil {
		t.Errorf("NewStats() = %+v, want zero values", s)
	}
}

func TestStats_Accuracy(t *testing.T) {
	tests := []struct {
		correct, total, want int
	}{
		{0, 0, 0},
		{1, 1, 100},
		{2, 3, 67},
		{1, 3, 33},
		{1, 8, 13},
		{0, 5, 0},
	}

	for _, tt := range tests {
		s := Stats{CorrectAnswers: tt.correct, TotalQuestions: tt.total}
		if got := s.Accuracy(); got != tt.want {
			t.Errorf("Accuracy(%d/%d) = %d, want %d", tt.correct, tt.total, got, tt.want)
		}
	}
}

func TestStats_Snapshot(t *testing.T) {
	s := Stats{
		Score:             42,
		Streak:            2,
		MaxStreak:         4,
		TotalQuestions:    4,
		CorrectAnswers:    3,
		CurrentDifficulty: DifficultyMedium,
		QuestionsInTier:   2,
	}

	snap := s.Snapshot(3)

	if snap.Accuracy != 75 {
		t.Errorf("Accuracy = %d, want 75", snap.Accuracy)
	}
	if snap.ProgressToNextTier != 67 {
		t.Errorf("ProgressToNextTier = %d, want 67", snap.ProgressToNextTier)
	}
	if snap.QuestionsPerTier != 3 {
		t.Errorf("QuestionsPerTier = %d, want 3", snap.QuestionsPerTier)
	}
	if snap.CurrentDifficulty != DifficultyMedium {
		t.Errorf("CurrentDifficulty = %s, want medium", snap.CurrentDifficulty)
	}
}

func TestStats_SnapshotZeroTotals(t *testing.T) {
	snap := NewStats().Snapshot(0)
	if snap.Accuracy != 0 || snap.ProgressToNextTier != 0 {
		t.Errorf("Snapshot() = %+v, want zero accuracy and progress", snap)
	}
}

func TestStats_Normalize(t *testing.T) {
	s := Stats{
		Streak:            5,
		MaxStreak:         2,
		TotalQuestions:    3,
		CorrectAnswers:    9,
		CurrentDifficulty: "legendary",
		QuestionsInTier:   -1,
	}
	s.Normalize()

	if s.CorrectAnswers != 3 {
		t.Errorf("CorrectAnswers = %d, want 3", s.CorrectAnswers)
	}
	if s.MaxStreak != 5 {
		t.Errorf("MaxStreak = %d, want 5", s.MaxStreak)
	}
	if s.CurrentDifficulty != DifficultyEasy {
		t.Errorf("CurrentDifficulty = %s, want easy", s.CurrentDifficulty)
	}
	if s.QuestionsInTier != 0 {
		t.Errorf("QuestionsInTier = %d, want 0", s.QuestionsInTier)
	}
}

func TestAttemptResult_JSONMilliseconds(t *testing.T) {
	in := AttemptResult{IsCorrect: true, PointsEarned: 12, TimeSpent: 1500 * time.Millisecond, Difficulty: DifficultyEasy}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal() into map error = %v", err)
	}
	if got := fields["time_spent_ms"]; got != float64(1500) {
		t.Errorf("time_spent_ms = %v, want 1500", got)
	}
	if _, ok := fields["time_spent"]; ok {
		t.Errorf("unexpected time_spent field in %s", data)
	}
	if fields["points_earned"] != float64(12) {
		t.Errorf("points_earned = %v, want 12", fields["points_earned"])
	}

	var out AttemptResult
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out != in {
		t.Errorf("Unmarshal() = %+v, want %+v", out, in)
	}
}
