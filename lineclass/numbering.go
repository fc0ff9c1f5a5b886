package lineclass

import (
	"strconv"
	"strings"

	"github.com/tsawler/blocktree/model"
)

var romanValues = map[rune]int{'i': 1, 'v': 5, 'x': 10, 'l': 50, 'c': 100, 'd': 500, 'm': 1000}

// maxRoman bounds roman markers so abbreviations like "MD" or "MI" are not
// read as numerals.
const maxRoman = 100

// ParseNumbering parses a numbering marker such as "1.", "2.1", "(iv)",
// "B)" or "IX.". The marker must end with "." or ")", be wrapped in
// parentheses, or be a dotted multi-segment arabic number. It returns nil
// when the token is not a numbering marker.
func ParseNumbering(token string) *model.Numbering {
	return parseNumbering(token, false)
}

// parseNumbering implements ParseNumbering; bare allows a marker without
// trailing punctuation, as in "Article IV".
func parseNumbering(token string, bare bool) *model.Numbering {
	s := strings.TrimSpace(token)
	if s == "" || len(s) > 16 {
		return nil
	}
	// Mixed patterns like "a)(b" are never markers.
	if strings.Contains(s, ")(") {
		return nil
	}

	opened := strings.HasPrefix(s, "(")
	s = strings.TrimPrefix(s, "(")
	closed := false
	switch {
	case strings.HasSuffix(s, ")"):
		s = strings.TrimSuffix(s, ")")
		closed = true
	case strings.HasSuffix(s, "."):
		s = strings.TrimSuffix(s, ".")
		closed = true
	}
	if opened && !strings.HasSuffix(strings.TrimSpace(token), ")") {
		return nil
	}
	if s == "" || strings.ContainsAny(s, "()") {
		return nil
	}

	segments := strings.Split(s, ".")
	if len(segments) > 1 && opened {
		return nil
	}

	n := &model.Numbering{Marker: strings.TrimSpace(token)}
	for i, seg := range segments {
		kind, value, upper, ambiguous, ok := classifySegment(seg)
		if !ok {
			return nil
		}
		if i == 0 {
			n.Kind, n.Upper, n.Ambiguous = kind, upper, ambiguous
		} else if kind != n.Kind {
			// "1.a" style mixes are allowed only when the tail letter is the
			// sole non-arabic segment.
			if !(n.Kind == model.NumberArabic && i == len(segments)-1 && kind != model.NumberArabic) {
				return nil
			}
		}
		n.Values = append(n.Values, value)
	}

	if !closed && !bare && !(len(segments) > 1 && n.Kind == model.NumberArabic) {
		return nil
	}
	return n
}

// classifySegment classifies one dotted segment: a number of at most two
// digits, a roman numeral of at most six characters, or a single letter.
func classifySegment(seg string) (kind model.NumberKind, value int, upper, ambiguous, ok bool) {
	if seg == "" {
		return "", 0, false, false, false
	}
	if isDigits(seg) {
		if len(seg) > 2 {
			return "", 0, false, false, false
		}
		v, err := strconv.Atoi(seg)
		if err != nil {
			return "", 0, false, false, false
		}
		return model.NumberArabic, v, false, false, true
	}

	lower := strings.ToLower(seg)
	upper = seg != lower
	if upper && seg != strings.ToUpper(seg) {
		// Mixed case is a word, not a marker.
		return "", 0, false, false, false
	}

	r := []rune(lower)
	if len(r) == 1 && r[0] >= 'a' && r[0] <= 'z' {
		// Single letters that are also roman digits stay letters but are
		// flagged so the hierarchy pass can reinterpret them.
		_, isRoman := romanValues[r[0]]
		return model.NumberLetter, int(r[0]-'a') + 1, upper, isRoman, true
	}
	if len(r) <= 6 {
		if v, valid := RomanValue(lower); valid && v <= maxRoman {
			return model.NumberRoman, v, upper, false, true
		}
	}
	return "", 0, false, false, false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// RomanValue converts a lowercase roman numeral to its value. It rejects
// characters outside the roman charset and non-canonical forms like "iiii".
func RomanValue(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	total, prev := 0, 0
	runes := []rune(s)
	for i := len(runes) - 1; i >= 0; i-- {
		v, ok := romanValues[runes[i]]
		if !ok {
			return 0, false
		}
		if v < prev {
			total -= v
		} else {
			total += v
			prev = v
		}
	}
	if total <= 0 || toRoman(total) != s {
		return 0, false
	}
	return total, true
}

func toRoman(n int) string {
	vals := []int{1000, 900, 500, 400, 100, 90, 50, 40, 10, 9, 5, 4, 1}
	syms := []string{"m", "cm", "d", "cd", "c", "xc", "l", "xl", "x", "ix", "v", "iv", "i"}
	var sb strings.Builder
	for i, v := range vals {
		for n >= v {
			sb.WriteString(syms[i])
			n -= v
		}
	}
	return sb.String()
}

// AsRoman reinterprets an ambiguous single-letter numbering as a roman
// numeral. It returns nil when no roman reading exists.
func AsRoman(n *model.Numbering) *model.Numbering {
	if n == nil || n.Kind != model.NumberLetter || !n.Ambiguous || len(n.Values) != 1 {
		return nil
	}
	letter := rune('a' + n.Values[0] - 1)
	v, ok := RomanValue(string(letter))
	if !ok {
		return nil
	}
	return &model.Numbering{Kind: model.NumberRoman, Values: []int{v}, Marker: n.Marker, Upper: n.Upper}
}
