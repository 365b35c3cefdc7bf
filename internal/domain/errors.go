package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// These errors classify failures so callers can decide whether to abort,
// re-fetch a question, or carry on with degraded persistence.
// -----------------------------------------------------------------------------

// Failure classes
var (
	// ErrConfiguration marks malformed or missing question data. Fatal.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidState marks an operation that needs an active question.
	ErrInvalidState = errors.New("no active question")

	// ErrPersistence marks a store read/write failure. Logged, not surfaced.
	ErrPersistence = errors.New("persistence error")
)

// Session errors
var (
	ErrNoCategory = errors.New("no category selected")
)

// Question bank errors
var (
	ErrUnknownCategory  = errors.New("unknown category")
	ErrNoQuestions      = errors.New("no questions available")
	ErrQuestionNotFound = errors.New("question not found")
)

// Leaderboard errors
var (
	ErrInvalidName = errors.New("invalid player name")
	ErrNameTaken   = errors.New("player name already taken")
)
