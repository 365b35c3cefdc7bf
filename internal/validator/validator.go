package validator

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/learnhub/internal/domain"
)

// DefaultMatchThreshold is the share of required parts a fuzzy match needs
const DefaultMatchThreshold = 0.8

// Validator grades one submission against a solution
type Validator interface {
	Validate(submission string, spec domain.SolutionSpec) bool
}

// Func adapts a plain function to the Validator interface
type Func func(submission string, spec domain.SolutionSpec) bool

// Validate calls f
func (f Func) Validate(submission string, spec domain.SolutionSpec) bool {
	return f(submission, spec)
}

// Options tunes the fuzzy heuristics
type Options struct {
	// MatchThreshold is the fraction (0,1] of solution parts that must be
	// found in the submission. Zero means DefaultMatchThreshold.
	MatchThreshold float64
}

// Engine dispatches submissions to the validator registered for a category
type Engine struct {
	validators map[domain.Category]Validator
	fallback   Validator
}

// New creates an engine with the built-in validators
func New(opts Options) *Engine {
	threshold := opts.MatchThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultMatchThreshold
	}

	return &Engine{
		validators: map[domain.Category]Validator{
			domain.CategoryFixBug:      FixBug{Threshold: threshold},
			domain.CategoryFlexbox:     Flexbox{Threshold: threshold},
			domain.CategorySelector:    Selector{},
			domain.CategoryHTMLBuilder: HTML{Threshold: threshold},
		},
		fallback: Func(exactFold),
	}
}

// Register installs or replaces the validator for a category
func (e *Engine) Register(category domain.Category, v Validator) {
	e.validators[category] = v
}

// Validate grades a submission. Unknown categories use trimmed,
// case-insensitive equality.
func (e *Engine) Validate(category domain.Category, submission string, spec domain.SolutionSpec) (bool, error) {
	if strings.TrimSpace(spec.Solution) == "" {
		return false, fmt.Errorf("%w: empty solution", domain.ErrConfiguration)
	}

	v, ok := e.validators[category]
	if !ok {
		v = e.fallback
	}
	return v.Validate(submission, spec), nil
}

// ValidateQuestion grades a submission for q using its validator kind
func (e *Engine) ValidateQuestion(q *domain.Question, submission string) (bool, error) {
	ok, err := e.Validate(q.ValidatorKind(), submission, q.Spec())
	if err != nil {
		return false, fmt.Errorf("question %s: %w", q.ID, err)
	}
	return ok, nil
}

func exactFold(submission string, spec domain.SolutionSpec) bool {
	return strings.EqualFold(strings.TrimSpace(submission), strings.TrimSpace(spec.Solution))
}

// meetsThreshold reports whether found/total reaches threshold. An empty
// requirement list never passes; callers handle exact matches first.
func meetsThreshold(found, total int, threshold float64) bool {
	if total == 0 {
		return false
	}
	return float64(found) >= float64(total)*threshold
}
