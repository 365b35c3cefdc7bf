package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/learnhub/internal/domain"
)

func attemptEvent(session domain.SessionID, questionID string, correct, revealed bool, at time.Time) domain.AttemptRecordedEvent {
	q := &domain.Question{ID: questionID, Category: domain.CategoryFlexbox, Difficulty: domain.DifficultyEasy}
	res := domain.AttemptResult{
		IsCorrect:    correct,
		Revealed:     revealed,
		PointsEarned: 10,
		TimeSpent:    1500 * time.Millisecond,
	}
	return domain.NewAttemptRecordedEvent(session, q, res, 10, 1, at)
}

func TestAttemptLog_RecordAndRecent(t *testing.T) {
	ctx := context.Background()
	log := NewAttemptLog(openTestDB(t))

	s1 := domain.GenerateSessionID()
	s2 := domain.GenerateSessionID()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	events := []domain.AttemptRecordedEvent{
		attemptEvent(s1, "flex-easy-1", true, false, base),
		attemptEvent(s1, "flex-easy-2", false, false, base.Add(time.Minute)),
		attemptEvent(s2, "flex-easy-1", true, false, base.Add(2*time.Minute)),
	}
	for _, e := range events {
		if err := log.Record(ctx, e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	// Replays are ignored.
	if err := log.Record(ctx, events[0]); err != nil {
		t.Fatalf("Record() replay error = %v", err)
	}

	all, err := log.Recent(ctx, "", 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(Recent()) = %d; want 3", len(all))
	}
	if all[0].SessionID != s2.String() {
		t.Errorf("newest attempt session = %s; want %s", all[0].SessionID, s2)
	}

	mine, err := log.Recent(ctx, s1.String(), 1)
	if err != nil {
		t.Fatalf("Recent(session) error = %v", err)
	}
	if len(mine) != 1 || mine[0].QuestionID != "flex-easy-2" {
		t.Fatalf("Recent(session, 1) = %+v; want flex-easy-2", mine)
	}
	if mine[0].TimeSpent != 1500*time.Millisecond {
		t.Errorf("TimeSpent = %v; want 1.5s", mine[0].TimeSpent)
	}
	if mine[0].Correct {
		t.Error("Correct = true; want false")
	}
	if mine[0].Category != domain.CategoryFlexbox {
		t.Errorf("Category = %s; want flexbox", mine[0].Category)
	}
}

func TestAttemptLog_ByQuestion(t *testing.T) {
	ctx := context.Background()
	log := NewAttemptLog(openTestDB(t))
	s := domain.GenerateSessionID()
	now := time.Now().UTC()

	_ = log.Record(ctx, attemptEvent(s, "easy-one", true, false, now))
	_ = log.Record(ctx, attemptEvent(s, "easy-one", true, false, now))
	_ = log.Record(ctx, attemptEvent(s, "hard-one", false, false, now))
	_ = log.Record(ctx, attemptEvent(s, "hard-one", false, true, now))

	summary, err := log.ByQuestion(ctx)
	if err != nil {
		t.Fatalf("ByQuestion() error = %v", err)
	}
	if len(summary) != 2 {
		t.Fatalf("len(ByQuestion()) = %d; want 2", len(summary))
	}
	if summary[0].QuestionID != "hard-one" {
		t.Errorf("hardest question = %s; want hard-one", summary[0].QuestionID)
	}
	if summary[0].Attempts != 2 || summary[0].Correct != 0 || summary[0].Revealed != 1 {
		t.Errorf("hard-one summary = %+v; want 2 attempts, 0 correct, 1 revealed", summary[0])
	}
	if summary[1].Correct != 2 {
		t.Errorf("easy-one correct = %d; want 2", summary[1].Correct)
	}
}

func TestAttemptLog_Prune(t *testing.T) {
	ctx := context.Background()
	log := NewAttemptLog(openTestDB(t))
	s := domain.GenerateSessionID()

	_ = log.Record(ctx, attemptEvent(s, "old", true, false, time.Now().UTC().Add(-48*time.Hour)))
	_ = log.Record(ctx, attemptEvent(s, "new", true, false, time.Now().UTC()))

	n, err := log.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Prune() = %d; want 1", n)
	}

	left, _ := log.Recent(ctx, "", 0)
	if len(left) != 1 || left[0].QuestionID != "new" {
		t.Errorf("Recent() after Prune = %+v; want only new", left)
	}
}
