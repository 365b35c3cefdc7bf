package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/learnhub/internal/domain"
)

// Attempt is one row of the attempt history.
type Attempt struct {
	ID           int64             `json:"id"`
	SessionID    string            `json:"session_id"`
	QuestionID   string            `json:"question_id"`
	Category     domain.Category   `json:"category"`
	Difficulty   domain.Difficulty `json:"difficulty"`
	Correct      bool              `json:"correct"`
	Revealed     bool              `json:"revealed"`
	PointsEarned int               `json:"points_earned"`
	TimeSpent    time.Duration     `json:"time_spent"`
	CreatedAt    time.Time         `json:"created_at"`
}

// QuestionSummary aggregates attempts of one question.
type QuestionSummary struct {
	QuestionID string `json:"question_id"`
	Attempts   int    `json:"attempts"`
	Correct    int    `json:"correct"`
	Revealed   int    `json:"revealed"`
}

// AttemptLog records graded attempts in SQLite.
type AttemptLog struct {
	db *DB
}

// NewAttemptLog creates a new SQLite-backed attempt log.
func NewAttemptLog(db *DB) *AttemptLog {
	return &AttemptLog{db: db}
}

// Record stores an attempt event. Replayed events are ignored.
func (l *AttemptLog) Record(ctx context.Context, e domain.AttemptRecordedEvent) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO attempts (event_id, session_id, question_id, category, difficulty,
			correct, revealed, points_earned, time_spent_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EventID().String(), e.AggregateID().String(), e.QuestionID, string(e.Category), string(e.Difficulty),
		e.Correct, e.Revealed, e.PointsEarned, e.TimeSpentMs, e.OccurredAt().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// Recent returns the newest attempts, optionally filtered by session.
func (l *AttemptLog) Recent(ctx context.Context, sessionID string, limit int) ([]Attempt, error) {
	query := `SELECT id, session_id, question_id, category, difficulty, correct, revealed,
		points_earned, time_spent_ms, created_at FROM attempts`
	var args []any

	if sessionID != "" {
		query += " WHERE session_id = ?"
		args = append(args, sessionID)
	}
	query += " ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var spentMs int64
		if err := rows.Scan(&a.ID, &a.SessionID, &a.QuestionID, &a.Category, &a.Difficulty,
			&a.Correct, &a.Revealed, &a.PointsEarned, &spentMs, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.TimeSpent = time.Duration(spentMs) * time.Millisecond
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// ByQuestion summarises attempts per question, hardest (lowest success) first.
func (l *AttemptLog) ByQuestion(ctx context.Context) ([]QuestionSummary, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT question_id, COUNT(*), SUM(correct AND NOT revealed), SUM(revealed)
		FROM attempts
		GROUP BY question_id
		ORDER BY CAST(SUM(correct AND NOT revealed) AS REAL) / COUNT(*) ASC, question_id`)
	if err != nil {
		return nil, fmt.Errorf("query question summary: %w", err)
	}
	defer rows.Close()

	var out []QuestionSummary
	for rows.Next() {
		var s QuestionSummary
		if err := rows.Scan(&s.QuestionID, &s.Attempts, &s.Correct, &s.Revealed); err != nil {
			return nil, fmt.Errorf("scan question summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Prune deletes attempts older than the given duration.
func (l *AttemptLog) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	result, err := l.db.ExecContext(ctx, "DELETE FROM attempts WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune attempts: %w", err)
	}
	return result.RowsAffected()
}
