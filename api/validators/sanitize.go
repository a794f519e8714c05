package validators

import "strings"

// SanitizeString trims surrounding whitespace and caps the length. Query
// filters like category and free-text search go through this before they
// reach a repository.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		trimmed = trimmed[:maxLen]
	}
	return trimmed
}
