package domain

import "strings"

// NormalizeText trims leading/trailing whitespace and collapses internal
// whitespace runs. It is used for titles, names, and store labels before
// validation and persistence.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
