package lineclass

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	numberPattern  = regexp.MustCompile(`^[(\-+]?[$€£¥]?\(?[+-]?\d[\d,]*(\.\d+)?\)?[%]?$`)
	decimalPattern = regexp.MustCompile(`^[+-]?\.\d+$`)
	rangePattern   = regexp.MustCompile(`^[$€£¥]?\d[\d,.]*\s*[-–—]\s*[$€£¥]?\d[\d,.]*%?$`)
	numDatePattern = regexp.MustCompile(`^\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}$`)
	isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}(-\d{2})?$`)
	yearPattern    = regexp.MustCompile(`^(19|20)\d{2}$`)
	currencyCodes  = map[string]bool{"usd": true, "eur": true, "gbp": true, "jpy": true, "cad": true, "aud": true, "inr": true}
)

var months = map[string]bool{
	"jan": true, "january": true, "feb": true, "february": true, "mar": true, "march": true,
	"apr": true, "april": true, "may": true, "jun": true, "june": true, "jul": true, "july": true,
	"aug": true, "august": true, "sep": true, "sept": true, "september": true, "oct": true,
	"october": true, "nov": true, "november": true, "dec": true, "december": true,
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true, "be": true,
	"but": true, "by": true, "for": true, "from": true, "if": true, "in": true, "into": true,
	"is": true, "it": true, "its": true, "nor": true, "not": true, "of": true, "on": true,
	"or": true, "so": true, "such": true, "that": true, "the": true, "their": true,
	"then": true, "there": true, "these": true, "they": true, "this": true, "to": true,
	"upon": true, "was": true, "were": true, "will": true, "with": true, "within": true,
	"via": true, "vs": true, "per": true, "under": true, "over": true, "than": true,
}

// Token is one whitespace separated token with its lexical features
type Token struct {
	Raw  string
	Word string // Raw stripped of surrounding punctuation

	Number   bool
	Currency bool
	Percent  bool
	Range    bool
	Date     bool
	Stopword bool
	Title    bool // starts with an uppercase letter
	Upper    bool // every letter is uppercase and there is at least one
	Alpha    bool // contains at least one letter
	Chunk    bool // member of a noun chunk
}

// Numeric reports whether the token counts as a numeric cell value
func (t Token) Numeric() bool {
	return t.Number || t.Currency || t.Percent || t.Range || t.Date
}

// Tokenize splits text on whitespace and derives per-token features
func Tokenize(text string) []Token {
	fields := strings.Fields(text)
	tokens := make([]Token, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, newToken(f))
	}
	markChunks(tokens)
	return tokens
}

func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		switch r {
		case '$', '€', '£', '¥', '%', '(', ')', '-', '+':
			return false
		}
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

func newToken(raw string) Token {
	t := Token{Raw: raw}
	w := trimPunct(raw)
	// A trailing period belongs to the number ("1." stays numeric) but not to
	// a word.
	w = strings.TrimRight(w, ".,;:")
	t.Word = w
	lower := strings.ToLower(w)

	t.Percent = strings.HasSuffix(w, "%") && numberPattern.MatchString(w)
	t.Currency = strings.ContainsAny(w, "$€£¥") && numberPattern.MatchString(w) || currencyCodes[lower]
	t.Range = rangePattern.MatchString(w) && strings.ContainsAny(w, "-–—")
	t.Date = numDatePattern.MatchString(w) || isoDatePattern.MatchString(w) || yearPattern.MatchString(w) || months[strings.TrimSuffix(lower, ".")]
	t.Number = !t.Percent && !t.Currency && (numberPattern.MatchString(w) || decimalPattern.MatchString(w))
	t.Stopword = stopwords[lower]

	letters, upper := 0, 0
	first := true
	for _, r := range w {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		}
		if first {
			t.Title = unicode.IsUpper(r)
			first = false
		}
	}
	t.Alpha = letters > 0
	t.Upper = letters > 0 && letters == upper
	return t
}

// markChunks flags tokens belonging to a noun chunk: a run of two or more
// capitalised non-stopword words, optionally joined by "of", "and" or "the".
func markChunks(tokens []Token) {
	for _, span := range chunkSpans(tokens) {
		for i := span[0]; i < span[1]; i++ {
			tokens[i].Chunk = true
		}
	}
}

func chunkSpans(tokens []Token) [][2]int {
	var spans [][2]int
	i := 0
	for i < len(tokens) {
		if !isChunkHead(tokens[i]) {
			i++
			continue
		}
		j := i + 1
		last := i
		for j < len(tokens) && !endsClause(tokens[j-1].Raw) {
			if opensQuote(tokens[j].Raw) {
				break
			}
			if isChunkHead(tokens[j]) {
				last = j
				j++
				continue
			}
			if isChunkGlue(tokens[j]) && j+1 < len(tokens) && isChunkHead(tokens[j+1]) && !opensQuote(tokens[j+1].Raw) {
				j++
				continue
			}
			break
		}
		if last > i {
			spans = append(spans, [2]int{i, last + 1})
		}
		i = last + 1
	}
	return spans
}

func isChunkHead(t Token) bool {
	return t.Alpha && t.Title && !t.Stopword && !t.Numeric()
}

func isChunkGlue(t Token) bool {
	switch strings.ToLower(t.Raw) {
	case "of", "and", "the", "&", "for":
		return true
	}
	return false
}

func endsClause(raw string) bool {
	return strings.HasSuffix(raw, ",") || strings.HasSuffix(raw, ".") || strings.HasSuffix(raw, ";") ||
		strings.HasSuffix(raw, "\"") || strings.HasSuffix(raw, "”")
}

func opensQuote(raw string) bool {
	return strings.HasPrefix(raw, "\"") || strings.HasPrefix(raw, "“")
}
