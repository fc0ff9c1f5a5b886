package text

import (
	"strings"
	"unicode"
)

// SentenceTokenizer splits text into sentences. Implementations must be pure
// functions of their input.
type SentenceTokenizer interface {
	Sentences(text string) []string
}

// defaultAbbreviations never end a sentence when followed by a period
var defaultAbbreviations = []string{
	"mr", "mrs", "ms", "dr", "prof", "sr", "jr", "st", "no", "nos", "vs", "v",
	"e.g", "i.e", "etc", "inc", "ltd", "co", "corp", "fig", "figs", "sec",
	"art", "para", "pp", "p", "vol", "approx", "cf", "al", "jan", "feb", "mar",
	"apr", "jun", "jul", "aug", "sep", "sept", "oct", "nov", "dec", "u.s",
}

// RuleTokenizer is an abbreviation-aware sentence splitter. A sentence ends
// at '.', '!' or '?' (plus trailing quotes and brackets) followed by
// whitespace and an uppercase letter, digit or opening quote, unless the
// word before the period is a known abbreviation or a lone initial.
type RuleTokenizer struct {
	abbreviations map[string]bool
}

// NewSentenceTokenizer creates a tokenizer with the default abbreviations
func NewSentenceTokenizer(extra ...string) *RuleTokenizer {
	abbr := make(map[string]bool, len(defaultAbbreviations)+len(extra))
	for _, a := range defaultAbbreviations {
		abbr[a] = true
	}
	for _, a := range extra {
		abbr[strings.TrimSuffix(strings.ToLower(a), ".")] = true
	}
	return &RuleTokenizer{abbreviations: abbr}
}

// Sentences splits text into trimmed, non-empty sentences
func (t *RuleTokenizer) Sentences(text string) []string {
	runes := []rune(strings.Join(strings.Fields(text), " "))
	var out []string
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		end := i + 1
		for end < len(runes) && strings.ContainsRune("\"'”’)]", runes[end]) {
			end++
		}
		if end >= len(runes) || runes[end] != ' ' || end+1 >= len(runes) {
			continue
		}
		if !opensSentence(runes[end+1]) {
			continue
		}
		if r == '.' && t.isAbbreviation(runes[start:i]) {
			continue
		}
		out = appendSentence(out, runes[start:end])
		start = end + 1
		i = end
	}
	return appendSentence(out, runes[start:])
}

func appendSentence(out []string, runes []rune) []string {
	if s := strings.TrimSpace(string(runes)); s != "" {
		out = append(out, s)
	}
	return out
}

func opensSentence(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsDigit(r) || strings.ContainsRune("\"'“‘(", r)
}

// isAbbreviation reports whether the word ending the runes (just before a
// period) is an abbreviation or a lone initial.
func (t *RuleTokenizer) isAbbreviation(before []rune) bool {
	j := len(before)
	for j > 0 && before[j-1] != ' ' {
		j--
	}
	word := strings.TrimLeft(string(before[j:]), "(\"'“")
	if word == "" {
		return false
	}
	w := []rune(word)
	if len(w) == 1 && unicode.IsUpper(w[0]) {
		return true
	}
	return t.abbreviations[strings.ToLower(word)]
}
