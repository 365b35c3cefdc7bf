package game

import (
	"context"

	"github.com/felixgeelhaar/learnhub/internal/domain"
)

// QuestionSource is the catalog a session draws questions from
type QuestionSource interface {
	QuestionsOf(category domain.Category) []*domain.Question
	RandomExcluding(category domain.Category, difficulty domain.Difficulty, asked map[string]struct{}) (*domain.Question, bool, error)
	Lookup(id string) (*domain.Question, error)
	ForDay(day string) (*domain.Question, error)
}

// AnswerValidator grades a submission against a question
type AnswerValidator interface {
	ValidateQuestion(q *domain.Question, submission string) (bool, error)
}

// Publisher receives the events a session produces
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// StatsHook is called with a fresh snapshot after stats change, e.g. to
// mirror the learner onto the leaderboard
type StatsHook func(ctx context.Context, snap domain.StatsSnapshot)

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, domain.Event) error { return nil }
