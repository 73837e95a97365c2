package normalize

import (
	"regexp"
	"strings"
)

// minClauses is the floor for any clause estimate.
const minClauses = 5

var numberedItemRe = regexp.MustCompile(`\d+\.`)

// EstimateClauses derives a clause count from surface features of the
// contract text: structural keywords, substantial paragraphs and numbered
// list markers. Never fails; degrades to minClauses on featureless input.
func EstimateClauses(content string) int {
	lower := strings.ToLower(content)

	keywords := strings.Count(lower, "section") +
		strings.Count(lower, "clause") +
		strings.Count(lower, "article")

	paragraphs := 0
	for _, p := range strings.Split(content, "\n\n") {
		if len(strings.TrimSpace(p)) > 50 {
			paragraphs++
		}
	}

	numbered := len(numberedItemRe.FindAllString(content, -1))

	est := minClauses
	for _, n := range []int{keywords, paragraphs, numbered} {
		if n > est {
			est = n
		}
	}
	return est
}

// TotalClauses passes a positive model-supplied count through unchanged and
// falls back to the heuristic estimate otherwise.
func TotalClauses(modelCount int, content string) int {
	if modelCount > 0 {
		return modelCount
	}
	return EstimateClauses(content)
}
