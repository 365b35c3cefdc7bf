package progression

import (
	"testing"

	"github.com/felixgeelhaar/learnhub/internal/domain"
)

func TestTracker_AdvancesEveryThreeCorrect(t *testing.T) {
	tr := NewTracker(0)

	wantTiers := []domain.Difficulty{
		domain.DifficultyEasy, domain.DifficultyEasy, domain.DifficultyMedium,
		domain.DifficultyMedium, domain.DifficultyMedium, domain.DifficultyHard,
		domain.DifficultyHard, domain.DifficultyHard, domain.DifficultyHard, domain.DifficultyHard,
	}
	wantAdvanced := map[int]bool{2: true, 5: true}

	for i, want := range wantTiers {
		advanced := tr.RecordCorrect()
		if advanced != wantAdvanced[i] {
			t.Errorf("answer %d: advanced = %v, want %v", i+1, advanced, wantAdvanced[i])
		}
		if tr.Difficulty() != want {
			t.Errorf("answer %d: Difficulty() = %s, want %s", i+1, tr.Difficulty(), want)
		}
	}
}

func TestTracker_SaturatesOnHard(t *testing.T) {
	tr := NewTracker(3)
	tr.Restore(domain.DifficultyHard, 0)

	for i := 0; i < 10; i++ {
		tr.RecordCorrect()
	}
	if tr.Count() != 3 {
		t.Errorf("Count() = %d, want 3", tr.Count())
	}
	if tr.ProgressPercent() != 100 {
		t.Errorf("ProgressPercent() = %d, want 100", tr.ProgressPercent())
	}
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker(3)
	tr.Restore(domain.DifficultyMedium, 2)

	tr.Reset()

	if tr.Difficulty() != domain.DifficultyEasy || tr.Count() != 0 {
		t.Errorf("after Reset: %s/%d, want easy/0", tr.Difficulty(), tr.Count())
	}
}

func TestTracker_Restore(t *testing.T) {
	tests := []struct {
		name      string
		tier      domain.Difficulty
		count     int
		wantTier  domain.Difficulty
		wantCount int
	}{
		{"valid", domain.DifficultyMedium, 1, domain.DifficultyMedium, 1},
		{"unknown tier", "expert", 2, domain.DifficultyEasy, 0},
		{"negative count", domain.DifficultyEasy, -4, domain.DifficultyEasy, 0},
		{"count at threshold below hard", domain.DifficultyEasy, 7, domain.DifficultyEasy, 2},
		{"count at threshold on hard", domain.DifficultyHard, 7, domain.DifficultyHard, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(3)
			tr.Restore(tt.tier, tt.count)
			if tr.Difficulty() != tt.wantTier || tr.Count() != tt.wantCount {
				t.Errorf("Restore(%s, %d) = %s/%d, want %s/%d",
					tt.tier, tt.count, tr.Difficulty(), tr.Count(), tt.wantTier, tt.wantCount)
			}
		})
	}
}

func TestTracker_CustomThreshold(t *testing.T) {
	tr := NewTracker(1)
	if !tr.RecordCorrect() {
		t.Fatal("threshold 1 should advance on the first correct answer")
	}
	if tr.Difficulty() != domain.DifficultyMedium {
		t.Errorf("Difficulty() = %s, want medium", tr.Difficulty())
	}
}

func TestTracker_SyncTo(t *testing.T) {
	tr := NewTracker(3)
	tr.RecordCorrect()

	stats := domain.NewStats()
	tr.SyncTo(&stats)

	if stats.QuestionsInTier != 1 || stats.CurrentDifficulty != domain.DifficultyEasy {
		t.Errorf("SyncTo() = %s/%d, want easy/1", stats.CurrentDifficulty, stats.QuestionsInTier)
	}
	if got := tr.ProgressPercent(); got != 33 {
		t.Errorf("ProgressPercent() = %d, want 33", got)
	}
}
