package lineclass

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// abbreviations end a line without ending its sentence
var abbreviations = map[string]bool{
	"e.g.": true, "i.e.": true, "mr.": true, "mrs.": true, "ms.": true, "dr.": true,
	"no.": true, "nos.": true, "vs.": true, "v.": true, "st.": true, "co.": true,
	"corp.": true, "inc.": true, "ltd.": true, "jr.": true, "sr.": true, "u.s.": true,
	"fig.": true, "figs.": true, "sec.": true, "art.": true, "para.": true, "pp.": true,
	"p.": true, "vol.": true, "approx.": true, "cf.": true, "al.": true, "ref.": true,
}

var (
	loneInitial   = regexp.MustCompile(`^\(?[A-Z]\.$`)
	closingMarks  = "\"'”’)]»"
	terminators   = ".!?:;"
	continuations = ",;:)]}…"
)

// IsAbbreviation reports whether a token is a known abbreviation
func IsAbbreviation(token string) bool {
	return abbreviations[strings.ToLower(token)]
}

// EndsWithTerminator reports whether text ends with a sentence terminator,
// ignoring trailing closing quotes and brackets.
func EndsWithTerminator(text string) bool {
	s := strings.TrimRight(strings.TrimSpace(text), closingMarks)
	if s == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return r == '.' || r == '!' || r == '?'
}

// IsIncomplete reports whether a line leaves its sentence open: no terminal
// delimiter, a trailing known abbreviation, or a trailing lone initial.
func IsIncomplete(text string) bool {
	s := strings.TrimSpace(text)
	if s == "" {
		return false
	}
	fields := strings.Fields(s)
	last := fields[len(fields)-1]
	if IsAbbreviation(last) || loneInitial.MatchString(last) {
		return true
	}
	trimmed := strings.TrimRight(s, closingMarks)
	if trimmed == "" {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(trimmed)
	return !strings.ContainsRune(terminators, r)
}

// IsContinuing reports whether a line reads as the continuation of a previous
// one: it starts with a lowercase letter or a continuation mark.
func IsContinuing(text string) bool {
	s := strings.TrimSpace(text)
	if s == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	if unicode.IsLower(r) {
		return true
	}
	return strings.ContainsRune(continuations, r)
}
