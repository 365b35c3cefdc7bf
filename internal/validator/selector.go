package validator

import (
	"strings"

	"github.com/felixgeelhaar/learnhub/internal/domain"
)

// Selector grades CSS selectors. Multiple choice questions accept only the
// exact solution; free text answers may differ in case.
type Selector struct{}

// Validate implements Validator
func (Selector) Validate(submission string, spec domain.SolutionSpec) bool {
	solution := strings.TrimSpace(spec.Solution)
	answer := strings.TrimSpace(submission)

	if answer == solution {
		return true
	}
	if len(spec.Options) > 0 {
		return false
	}
	return strings.EqualFold(answer, solution)
}
