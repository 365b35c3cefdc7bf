package validator

import (
	"strings"

	"github.com/felixgeelhaar/learnhub/internal/domain"
)

// flexProperties may be written with any value and still count as present
var flexProperties = []string{
	"justify-content",
	"align-items",
	"flex-direction",
	"flex-wrap",
	"align-content",
	"flex-grow",
}

// Flexbox grades CSS declaration lists
type Flexbox struct {
	Threshold float64
}

// Validate implements Validator
func (v Flexbox) Validate(submission string, spec domain.SolutionSpec) bool {
	solution := stripSpace(strings.ToLower(spec.Solution))
	answer := stripSpace(strings.ToLower(submission))

	if answer == solution {
		return true
	}

	var required []string
	for _, part := range strings.Split(solution, ";") {
		if part != "" {
			required = append(required, part)
		}
	}

	found := 0
	for _, part := range required {
		if declarationPresent(part, answer) {
			found++
		}
	}

	threshold := v.Threshold
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	return meetsThreshold(found, len(required), threshold)
}

func declarationPresent(part, answer string) bool {
	for _, prop := range flexProperties {
		if strings.Contains(part, prop) {
			return strings.Contains(answer, prop)
		}
	}
	return strings.Contains(answer, part)
}

// stripSpace removes every whitespace character
func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
