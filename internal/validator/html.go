package validator

import (
	"regexp"
	"slices"
	"strings"

	"github.com/felixgeelhaar/learnhub/internal/domain"
)

var (
	htmlTag     = regexp.MustCompile(`<[^>]+>`)
	htmlTagName = regexp.MustCompile(`^</?([a-z][a-z0-9]*)`)
)

// HTML grades markup snippets
type HTML struct {
	Threshold float64
}

// Validate implements Validator
func (v HTML) Validate(submission string, spec domain.SolutionSpec) bool {
	solution := stripSpace(strings.ToLower(spec.Solution))
	answer := stripSpace(strings.ToLower(submission))

	if answer == solution || strings.Contains(answer, solution) {
		return true
	}

	required := htmlTag.FindAllString(solution, -1)
	offered := htmlTag.FindAllString(answer, -1)

	found := 0
	for _, tag := range required {
		if tagPresent(tag, offered) {
			found++
		}
	}

	threshold := v.Threshold
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	return meetsThreshold(found, len(required), threshold)
}

// tagPresent matches by tag name when one can be read, else by the whole tag
func tagPresent(tag string, offered []string) bool {
	m := htmlTagName.FindStringSubmatch(tag)
	if m == nil {
		return slices.Contains(offered, tag)
	}
	for _, candidate := range offered {
		if strings.Contains(candidate, m[1]) {
			return true
		}
	}
	return false
}
