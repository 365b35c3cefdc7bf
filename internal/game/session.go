// Package game runs one learner's practice session: picking questions,
// grading answers, scoring, tier progression and persisting stats.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/felixgeelhaar/learnhub/internal/domain"
	"github.com/felixgeelhaar/learnhub/internal/progression"
	"github.com/felixgeelhaar/learnhub/internal/scoring"
	"github.com/felixgeelhaar/learnhub/internal/storage"
)

// dayLayout keys the daily challenge by calendar day
const dayLayout = "2006-01-02"

// Config tunes a session
type Config struct {
	// ID identifies the session; the zero value generates one
	ID domain.SessionID

	// QuestionsPerTier correct answers advance the tier (default 3)
	QuestionsPerTier int

	// AvoidRepeats prefers questions not yet asked in this session
	AvoidRepeats bool

	// Policy is the reward table; the zero value selects scoring.DefaultPolicy
	Policy scoring.Policy

	Logger *slog.Logger

	// Clock returns the current time (default time.Now)
	Clock func() time.Time
}

// Session is one learner's game. It holds at most one active question and
// is not safe for concurrent use.
type Session struct {
	id        domain.SessionID
	store     storage.Store
	questions QuestionSource
	validator AnswerValidator
	policy    scoring.Policy
	tracker   *progression.Tracker
	publisher Publisher
	statsHook StatsHook
	logger    *slog.Logger
	now       func() time.Time

	avoidRepeats bool
	asked        map[string]struct{}

	stats     domain.Stats
	category  domain.Category
	current   *domain.Question
	startedAt time.Time
	revealed  bool
	daily     bool
}

// NewSession restores the learner's stats from store and returns an idle
// session. Missing or corrupt stats start from defaults.
func NewSession(ctx context.Context, store storage.Store, questions QuestionSource, validator AnswerValidator, cfg Config) *Session {
	if cfg.Policy == (scoring.Policy{}) {
		cfg.Policy = scoring.DefaultPolicy()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	if cfg.ID.IsZero() {
		cfg.ID = domain.GenerateSessionID()
	}

	s := &Session{
		id:           cfg.ID,
		store:        store,
		questions:    questions,
		validator:    validator,
		policy:       cfg.Policy,
		tracker:      progression.NewTracker(cfg.QuestionsPerTier),
		publisher:    nopPublisher{},
		now:          cfg.Clock,
		avoidRepeats: cfg.AvoidRepeats,
		asked:        make(map[string]struct{}),
	}
	s.logger = cfg.Logger.With("session_id", s.id.String())

	s.stats = storage.LoadJSON(ctx, store, storage.KeyStats, domain.NewStats())
	s.stats.Normalize()
	s.tracker.Restore(s.stats.CurrentDifficulty, s.stats.QuestionsInTier)
	s.tracker.SyncTo(&s.stats)

	return s
}

// SetPublisher sets where session events go
func (s *Session) SetPublisher(p Publisher) {
	if p == nil {
		p = nopPublisher{}
	}
	s.publisher = p
}

// SetStatsHook sets a callback run after every stats change
func (s *Session) SetStatsHook(hook StatsHook) {
	s.statsHook = hook
}

// ID returns the session identifier
func (s *Session) ID() domain.SessionID { return s.id }

// Category returns the selected category, empty when none
func (s *Session) Category() domain.Category { return s.category }

// Current returns the active question, nil when idle
func (s *Session) Current() *domain.Question { return s.current }

// SelectCategory switches category. Difficulty restarts at easy and any
// active question is dropped.
func (s *Session) SelectCategory(ctx context.Context, category domain.Category) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}
	if len(s.questions.QuestionsOf(category)) == 0 {
		return fmt.Errorf("%w: category %s", domain.ErrNoQuestions, category)
	}

	s.category = category
	s.clearQuestion()
	clear(s.asked)
	s.tracker.Reset()
	s.tracker.SyncTo(&s.stats)
	s.stats.GamesPlayed++
	s.saveStats(ctx)

	s.logger.Info("category selected", "category", category)
	return nil
}

// NextQuestion draws a question for the selected category at the current
// tier and starts its timer
func (s *Session) NextQuestion(ctx context.Context) (*domain.Question, error) {
	if s.category == "" {
		return nil, domain.ErrNoCategory
	}

	var asked map[string]struct{}
	if s.avoidRepeats {
		asked = s.asked
	}
	q, exhausted, err := s.questions.RandomExcluding(s.category, s.tracker.Difficulty(), asked)
	if err != nil {
		return nil, err
	}
	if s.avoidRepeats {
		if exhausted {
			clear(s.asked)
		}
		s.asked[q.ID] = struct{}{}
	}

	s.start(q, false)
	s.logger.Debug("question selected", "question_id", q.ID, "difficulty", q.Difficulty)
	return q, nil
}

func (s *Session) start(q *domain.Question, daily bool) {
	s.current = q
	s.startedAt = s.now()
	s.revealed = false
	s.daily = daily
}

func (s *Session) clearQuestion() {
	s.current = nil
	s.revealed = false
	s.daily = false
}

// RevealSolution returns the active question's solution. The following
// submission counts as revealed.
func (s *Session) RevealSolution(ctx context.Context) (string, error) {
	if s.current == nil {
		return "", domain.ErrInvalidState
	}
	s.revealed = true
	s.logger.Debug("solution revealed", "question_id", s.current.ID)
	return s.current.Solution, nil
}

// Hint returns a hint for the active question's kind
func (s *Session) Hint() (string, error) {
	if s.current == nil {
		return "", domain.ErrInvalidState
	}
	return HintFor(s.current.ValidatorKind()), nil
}

// SubmitAnswer grades text against the active question, updates score,
// streak and tier, and persists the stats. A store failure is logged and
// the graded result is still returned. The active question is cleared.
func (s *Session) SubmitAnswer(ctx context.Context, text string, revealed bool) (domain.AttemptResult, error) {
	q := s.current
	if q == nil {
		return domain.AttemptResult{}, domain.ErrInvalidState
	}
	revealed = revealed || s.revealed

	now := s.now()
	timeSpent := max(now.Sub(s.startedAt), 0)

	correct, err := s.validator.ValidateQuestion(q, text)
	if err != nil {
		return domain.AttemptResult{}, err
	}
	if revealed {
		correct = false
	}

	points := s.policy.Points(q, correct, revealed, s.stats.Streak, timeSpent)
	s.policy.Apply(&s.stats, correct, revealed, points)

	from := s.tracker.Difficulty()
	advanced := false
	if correct {
		advanced = s.tracker.RecordCorrect()
	}
	s.tracker.SyncTo(&s.stats)

	result := domain.AttemptResult{
		IsCorrect:    correct,
		PointsEarned: points,
		Feedback:     feedback(q, correct, revealed, advanced, s.tracker.Difficulty()),
		TimeSpent:    timeSpent,
		Explanation:  q.Explanation,
		Revealed:     revealed,
		Difficulty:   s.tracker.Difficulty(),
		Advanced:     advanced,
	}
	if revealed {
		result.Solution = q.Solution
	}

	wasDaily := s.daily
	s.clearQuestion()
	s.saveStats(ctx)
	if wasDaily {
		if err := s.CompleteDaily(ctx); err != nil {
			s.logger.Error("failed to mark daily challenge", "error", err)
		}
	}

	s.logger.Info("answer graded",
		"question_id", q.ID,
		"correct", correct,
		"revealed", revealed,
		"points", points,
		"score", s.stats.Score,
	)

	s.publish(ctx, domain.NewAttemptRecordedEvent(s.id, q, result, s.stats.Score, s.stats.Streak, now))
	if advanced {
		s.publish(ctx, domain.NewDifficultyAdvancedEvent(s.id, s.category, from, s.tracker.Difficulty(), now))
	}

	return result, nil
}

func feedback(q *domain.Question, correct, revealed, advanced bool, tier domain.Difficulty) string {
	switch {
	case revealed:
		return "💡 Answer revealed: " + q.Explanation
	case correct:
		msg := "🎉 Correct! " + q.Explanation
		if advanced {
			msg += fmt.Sprintf(" 🎉 Difficulty increased to %s!", strings.ToUpper(string(tier)))
		}
		return msg
	default:
		return "❌ Incorrect. " + q.Explanation
	}
}

// CurrentStats returns a read-only snapshot with derived accuracy and
// tier progress
func (s *Session) CurrentStats() domain.StatsSnapshot {
	return s.stats.Snapshot(s.tracker.QuestionsPerTier())
}

// ResetStats wipes the learner's progress back to defaults. A store
// failure is logged only.
func (s *Session) ResetStats(ctx context.Context) {
	previous := s.stats.Score

	s.stats = domain.NewStats()
	s.tracker.Reset()
	s.tracker.SyncTo(&s.stats)
	s.clearQuestion()
	clear(s.asked)

	if err := storage.SaveJSON(ctx, s.store, storage.KeyStats, s.stats); err != nil {
		s.logger.Error("failed to save stats", "error", fmt.Errorf("%w: %w", domain.ErrPersistence, err))
	}
	s.runHook(ctx)

	s.logger.Info("stats reset", "previous_score", previous)
	s.publish(ctx, domain.NewStatsResetEvent(s.id, previous, s.now()))
}

// saveStats stamps and persists the stats. Failures are logged only.
func (s *Session) saveStats(ctx context.Context) {
	at := s.now().UTC()
	s.stats.LastPlayed = &at
	if err := storage.SaveJSON(ctx, s.store, storage.KeyStats, s.stats); err != nil {
		s.logger.Error("failed to save stats", "error", fmt.Errorf("%w: %w", domain.ErrPersistence, err))
	}
	s.runHook(ctx)
}

func (s *Session) runHook(ctx context.Context) {
	if s.statsHook != nil {
		s.statsHook(ctx, s.CurrentStats())
	}
}

func (s *Session) publish(ctx context.Context, event domain.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "type", event.EventType(), "error", err)
	}
}

// dailyRecord is the stored daily challenge
type dailyRecord struct {
	Date       string          `json:"date"`
	QuestionID string          `json:"question_id"`
	Category   domain.Category `json:"category"`
}

// completedRecord marks the day the daily challenge was answered
type completedRecord struct {
	Date string `json:"date"`
}

func (s *Session) today() string {
	return s.now().Format(dayLayout)
}

// DailyChallenge makes today's challenge the active question. Every call
// on the same day yields the same question.
func (s *Session) DailyChallenge(ctx context.Context) (*domain.Question, error) {
	today := s.today()

	saved := storage.LoadJSON(ctx, s.store, storage.KeyDailyChallenge, dailyRecord{})
	if saved.Date == today {
		q, err := s.questions.Lookup(saved.QuestionID)
		if err == nil {
			s.start(q, true)
			return q, nil
		}
		if !errors.Is(err, domain.ErrQuestionNotFound) {
			return nil, err
		}
		s.logger.Warn("stored daily challenge no longer exists", "question_id", saved.QuestionID)
	}

	q, err := s.questions.ForDay(today)
	if err != nil {
		return nil, err
	}
	record := dailyRecord{Date: today, QuestionID: q.ID, Category: q.Category}
	if err := storage.SaveJSON(ctx, s.store, storage.KeyDailyChallenge, record); err != nil {
		s.logger.Error("failed to save daily challenge", "error", err)
	}

	s.start(q, true)
	s.logger.Info("daily challenge", "date", today, "question_id", q.ID)
	return q, nil
}

// DailyAvailable reports whether today's challenge is still open
func (s *Session) DailyAvailable(ctx context.Context) bool {
	done := storage.LoadJSON(ctx, s.store, storage.KeyDailyCompleted, completedRecord{})
	return done.Date != s.today()
}

// CompleteDaily marks today's challenge as done
func (s *Session) CompleteDaily(ctx context.Context) error {
	if err := storage.SaveJSON(ctx, s.store, storage.KeyDailyCompleted, completedRecord{Date: s.today()}); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return nil
}
