package domain

import (
	"fmt"
	"strings"
)

// Category groups questions and selects the answer validator
type Category string

const (
	CategoryFixBug      Category = "fix-bug"
	CategoryFlexbox     Category = "flexbox"
	CategorySelector    Category = "selector"
	CategoryHTMLBuilder Category = "html-builder"
	CategoryMixed       Category = "mixed"
)

// Categories lists every playable category in display order
func Categories() []Category {
	return []Category{
		CategoryFixBug,
		CategoryFlexbox,
		CategorySelector,
		CategoryHTMLBuilder,
		CategoryMixed,
	}
}

// ParseCategory converts user input into a Category
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	switch c {
	case CategoryFixBug, CategoryFlexbox, CategorySelector, CategoryHTMLBuilder, CategoryMixed:
		return true
	}
	return false
}

// Difficulty is one of the three progression tiers
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty converts a string into a Difficulty
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: unknown difficulty %q", ErrConfiguration, s)
	}
	return d, nil
}

// Valid reports whether d is a known tier
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Next returns the following tier. Hard is terminal.
func (d Difficulty) Next() Difficulty {
	switch d {
	case DifficultyEasy:
		return DifficultyMedium
	case DifficultyMedium:
		return DifficultyHard
	default:
		return DifficultyHard
	}
}

// Rank orders tiers: easy=0, medium=1, hard=2
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyMedium:
		return 1
	case DifficultyHard:
		return 2
	default:
		return 0
	}
}

// DefaultPoints is the base reward when a question does not set one
const DefaultPoints = 10

// Question is an immutable catalog record
type Question struct {
	ID          string
	Category    Category
	Kind        Category // validator for mixed questions; empty means Category
	Difficulty  Difficulty
	Title       string
	Prompt      string
	Code        string   // buggy snippet shown for fix-bug questions
	Markup      string   // HTML the question operates on
	Template    string   // CSS starter the answer is written into
	Options     []string // multiple choice answers for selector questions
	Expected    string   // expected behaviour of the fixed code
	Solution    string
	Explanation string
	Points      int
}

// SolutionSpec carries everything a validator needs to grade a submission
type SolutionSpec struct {
	Solution  string
	BuggyCode string
	Options   []string
}

// ValidatorKind returns the category whose heuristics grade this question
func (q *Question) ValidatorKind() Category {
	if q.Kind != "" {
		return q.Kind
	}
	return q.Category
}

// Spec returns the grading input for this question
func (q *Question) Spec() SolutionSpec {
	return SolutionSpec{
		Solution:  q.Solution,
		BuggyCode: q.Code,
		Options:   q.Options,
	}
}

// BasePoints returns the configured reward or DefaultPoints
func (q *Question) BasePoints() int {
	if q.Points > 0 {
		return q.Points
	}
	return DefaultPoints
}

// HasOptions reports whether the question is multiple choice
func (q *Question) HasOptions() bool {
	return len(q.Options) > 0
}

// Validate checks that a question is usable by the engine
func (q *Question) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("%w: question without id", ErrConfiguration)
	}
	if !q.Category.Valid() {
		return fmt.Errorf("%w: question %s has unknown category %q", ErrConfiguration, q.ID, q.Category)
	}
	if q.Kind != "" && (!q.Kind.Valid() || q.Kind == CategoryMixed) {
		return fmt.Errorf("%w: question %s has invalid kind %q", ErrConfiguration, q.ID, q.Kind)
	}
	if !q.Difficulty.Valid() {
		return fmt.Errorf("%w: question %s has unknown difficulty %q", ErrConfiguration, q.ID, q.Difficulty)
	}
	if strings.TrimSpace(q.Solution) == "" {
		return fmt.Errorf("%w: question %s has no solution", ErrConfiguration, q.ID)
	}
	if q.Points < 0 {
		return fmt.Errorf("%w: question %s has negative points", ErrConfiguration, q.ID)
	}
	return nil
}
