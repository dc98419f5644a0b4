// ABOUTME: Person name canonicalization used as the join key between GHL contacts and candidates
// ABOUTME: Title-cases each single-space-delimited token of a name
package ghl

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeName trims name, lower-cases it, splits it on single spaces,
// upper-cases the first character of every token, and re-joins with single
// spaces. Trimming up front keeps a leading tab or newline from hiding the
// first token, so N(N(x)) == N(x). Runs of inner spaces are not collapsed, so
// "Jane  Doe" and "Jane Doe" produce different keys.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	words := strings.Split(strings.ToLower(name), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}

	return strings.TrimSpace(strings.Join(words, " "))
}

// NormalizeNamePtr treats a nil name as empty.
func NormalizeNamePtr(name *string) string {
	if name == nil {
		return ""
	}
	return NormalizeName(*name)
}
