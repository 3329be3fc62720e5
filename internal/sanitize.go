package internal

import "strings"

// SanitizeString strips control characters that would allow log forging before
// user-supplied values are written to the log or echoed in error responses
func SanitizeString(s string) string {
	replacer := strings.NewReplacer("\n", "", "\r", "", "\t", " ")
	return replacer.Replace(s)
}
