// Package slug derives URL-safe identifiers from display names.
package slug

import (
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Make lowercases the name, collapses every run of non-alphanumeric
// characters into a single hyphen, and trims leading and trailing
// hyphens. The result is deterministic for a given input.
func Make(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	hyphenated := slugPattern.ReplaceAllString(lowered, "-")
	return strings.Trim(hyphenated, "-")
}
