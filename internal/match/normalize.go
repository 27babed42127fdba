// Package match provides the string-normalization and similarity
// primitives the resolution pipeline compares labels with.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// lower is a locale-independent case folder. Diacritics are deliberately
// preserved: over-aggressive folding has caused silent mis-merges, so
// labels differing only in diacritics fall through to the fuzzy path.
var lower = cases.Lower(language.Und)

// Normalize canonicalizes a label for comparison: case folding, trimming,
// collapsing whitespace, and stripping everything that is not a letter or
// digit. A run of stripped characters inside the label acts as a single
// word separator, so "Boiler-Room" and "Boiler Room" canonicalize
// identically. Total on any input; empty input normalizes to "".
func Normalize(text string) string {
	folded := lower.String(text)

	var b strings.Builder
	b.Grow(len(folded))
	sep := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if sep && b.Len() > 0 {
				b.WriteByte(' ')
			}
			sep = false
			b.WriteRune(r)
			continue
		}
		sep = true
	}
	return b.String()
}
