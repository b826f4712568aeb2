package refdata

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fold canonicalizes a label for alias matching: NFKC normalization,
// lower-casing, whitespace collapse, and trailing punctuation removal.
// "Gluc." and "gluc" fold to the same key.
func Fold(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), ".:;,")
}

// FoldUnit canonicalizes a unit string: NFKC, lower-casing, micro-sign
// unification, and stripping of spaces and trailing periods, so "mg/dl",
// "MG/DL" and "mg/dL." compare equal.
func FoldUnit(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "μ", "µ")
	s = strings.ReplaceAll(s, "/ul", "/µl")
	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), ".")
}
