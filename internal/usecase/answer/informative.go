package answer

import "strings"

// Phrases that signal a bare reference ("it's like X") rather than an explanation.
var referencePhrases = []string{"like", "similar to", "same as"}

// IsInformative reports whether a retrieved chat message carries information
// beyond the question itself. Circular content (the question echoed back,
// one-word replies, bare comparisons) gets filtered out before prompting.
func IsInformative(text, query string) bool {
	textLower := strings.ToLower(text)
	queryLower := strings.TrimRight(strings.ToLower(query), "?")

	// Strip the query text from the candidate before measuring it.
	cleaned := strings.TrimSpace(strings.ReplaceAll(textLower, queryLower, ""))

	if len(strings.Fields(cleaned)) < 5 {
		return false
	}

	// A message that opens with the question and still asks one is the
	// question restated, not an answer.
	if strings.HasPrefix(textLower, queryLower) && strings.Contains(text, "?") {
		return false
	}

	// Short comparisons without substance ("it's like the other one").
	if len(strings.Fields(cleaned)) < 10 {
		for _, phrase := range referencePhrases {
			if strings.Contains(cleaned, phrase) {
				return false
			}
		}
	}

	return true
}
