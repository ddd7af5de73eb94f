// Package util provides common helpers for decoding host call arguments.
package util

import "strings"

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// CleanArg applies both fixes, the way every host argument arrives.
func CleanArg(s string) string {
	return FixEscapeQuotes(TrimQuotes(s))
}
