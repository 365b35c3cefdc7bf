package game

import "github.com/felixgeelhaar/learnhub/internal/domain"

var hints = map[domain.Category]string{
	domain.CategoryFixBug:      "Look for syntax errors like missing semicolons, wrong operators, or scope issues.",
	domain.CategoryFlexbox:     "Think about justify-content for horizontal alignment and align-items for vertical alignment.",
	domain.CategorySelector:    "Remember: . for classes, # for IDs, > for direct children, and : for pseudo-classes.",
	domain.CategoryHTMLBuilder: "Consider the semantic meaning and proper nesting of HTML elements.",
}

const defaultHint = "Read the question carefully and think about the expected output."

// HintFor returns the generic hint for a validator category
func HintFor(category domain.Category) string {
	if h, ok := hints[category]; ok {
		return h
	}
	return defaultHint
}
