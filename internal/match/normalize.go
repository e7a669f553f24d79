package match

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes a raw skill string into a comparable token:
// lowercased with every whitespace rune removed, so "  Node JS " becomes
// "nodejs". Empty or all-whitespace input yields the empty string; callers
// drop empty tokens before aggregation.
func Normalize(skill string) string {
	var b strings.Builder
	b.Grow(len(skill))
	for _, r := range strings.ToLower(skill) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
