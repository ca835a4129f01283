package retrieval

import (
	"regexp"
	"strings"
)

// minKeywordLength is the exclusive length cutoff for keyword terms.
// Short function words ("the", "for", "how") fall below it.
const minKeywordLength = 3

var punctuation = regexp.MustCompile(`[^\w\s]`)

// extractKeywords derives search terms from a query: lowercase, strip
// punctuation, split on whitespace and keep words longer than three
// characters. An empty result means keyword search should be skipped.
func extractKeywords(query string) []string {
	cleaned := punctuation.ReplaceAllString(strings.ToLower(query), "")
	words := strings.Fields(cleaned)

	terms := make([]string, 0, len(words))
	for _, word := range words {
		if len(word) > minKeywordLength {
			terms = append(terms, word)
		}
	}
	return terms
}
