package validator

import (
	"regexp"
	"strings"

	"github.com/felixgeelhaar/learnhub/internal/domain"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	codeToken     = regexp.MustCompile(`[a-zA-Z_$][a-zA-Z0-9_$]*|[{}();=<>!&|+\-*/]`)
)

// fixRule recognises one common class of bug fix
type fixRule struct {
	name    string
	applies func(solution, buggy string) bool
	accept  func(answer string) bool
}

// fixRules are checked in order; the first rule that applies decides.
var fixRules = []fixRule{
	{
		name: "missing semicolon",
		applies: func(solution, buggy string) bool {
			return strings.Contains(solution, ";") && !strings.Contains(buggy, ";")
		},
		accept: func(answer string) bool {
			return strings.Contains(answer, ";")
		},
	},
	{
		name: "var to let",
		applies: func(solution, buggy string) bool {
			return strings.Contains(solution, "let ") && strings.Contains(buggy, "var ")
		},
		accept: func(answer string) bool {
			return strings.Contains(answer, "let ") && !strings.Contains(answer, "var ")
		},
	},
	{
		name: "assignment to comparison",
		applies: func(solution, buggy string) bool {
			return strings.Contains(solution, "===") && strings.Contains(buggy, "=")
		},
		accept: func(answer string) bool {
			return strings.Contains(answer, "==")
		},
	},
	{
		name: "missing async",
		applies: func(solution, buggy string) bool {
			return strings.Contains(solution, "async ") && !strings.Contains(buggy, "async ")
		},
		accept: func(answer string) bool {
			return strings.Contains(answer, "async ")
		},
	},
}

// FixBug grades corrected code snippets
type FixBug struct {
	Threshold float64
}

// Validate implements Validator
func (v FixBug) Validate(submission string, spec domain.SolutionSpec) bool {
	solution := normalizeCode(spec.Solution)
	answer := normalizeCode(submission)

	if answer == solution {
		return true
	}

	// Rules look at the raw buggy snippet, not the normalized one.
	for _, r := range fixRules {
		if r.applies(solution, spec.BuggyCode) {
			return r.accept(answer)
		}
	}

	return tokenOverlap(solution, answer, v.threshold())
}

func (v FixBug) threshold() float64 {
	if v.Threshold <= 0 {
		return DefaultMatchThreshold
	}
	return v.Threshold
}

func normalizeCode(s string) string {
	return strings.ToLower(strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " ")))
}

// tokenOverlap counts every solution token, duplicates included, that
// appears anywhere in the answer.
func tokenOverlap(solution, answer string, threshold float64) bool {
	required := codeToken.FindAllString(solution, -1)

	present := make(map[string]struct{})
	for _, tok := range codeToken.FindAllString(answer, -1) {
		present[tok] = struct{}{}
	}

	found := 0
	for _, tok := range required {
		if _, ok := present[tok]; ok {
			found++
		}
	}
	return meetsThreshold(found, len(required), threshold)
}
