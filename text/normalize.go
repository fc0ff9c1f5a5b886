package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKC normalization and collapses runs of whitespace to
// single spaces. Ligatures and full-width forms become their plain
// equivalents.
func Normalize(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

// FoldKey returns a comparison key for running header and footer detection:
// normalized, case folded, with every digit replaced by '#' so page numbers
// do not defeat the match.
func FoldKey(s string) string {
	folded := cases.Fold().String(Normalize(s))
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return '#'
		}
		return r
	}, folded)
}

// CountNonSpace returns the number of non-whitespace runes in s
func CountNonSpace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// HasLetter reports whether s contains at least one letter
func HasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
