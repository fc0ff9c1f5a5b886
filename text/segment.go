package text

import (
	_ "embed"
	"math"
	"strings"
	"unicode"
)

// WordSegmenter splits a run of joined letters into words. Implementations
// must be pure functions of their input and must return words whose
// concatenation equals the input.
type WordSegmenter interface {
	Segment(letters string) []string
}

//go:embed words.txt
var defaultWords string

// maxWordLen bounds the dictionary lookups per position
const maxWordLen = 24

// DictionarySegmenter splits joined letters with a dynamic program over a
// ranked word list; common words cost less than rare ones. Input that the
// dictionary cannot fully explain is returned as a single word.
type DictionarySegmenter struct {
	cost map[string]float64
}

// NewDictionarySegmenter creates a segmenter over the built-in word list
func NewDictionarySegmenter() *DictionarySegmenter {
	return NewDictionarySegmenterWithWords(strings.Fields(defaultWords))
}

// NewDictionarySegmenterWithWords creates a segmenter over words ordered
// from most to least frequent.
func NewDictionarySegmenterWithWords(words []string) *DictionarySegmenter {
	cost := make(map[string]float64, len(words))
	logN := math.Log(float64(len(words) + 1))
	for rank, w := range words {
		w = strings.ToLower(w)
		if _, dup := cost[w]; dup {
			continue
		}
		// Zipf: cost grows with the log of the rank.
		cost[w] = math.Log(float64(rank+1)*logN) + 1
	}
	return &DictionarySegmenter{cost: cost}
}

// Segment splits letters into words. Non-letter characters split the input
// into independent pieces that are segmented separately.
func (s *DictionarySegmenter) Segment(letters string) []string {
	var out []string
	var piece []rune
	flush := func() {
		if len(piece) > 0 {
			out = append(out, s.segmentPiece(piece)...)
			piece = piece[:0]
		}
	}
	for _, r := range letters {
		if unicode.IsLetter(r) {
			piece = append(piece, r)
			continue
		}
		flush()
		if !unicode.IsSpace(r) {
			out = append(out, string(r))
		}
	}
	flush()
	return out
}

func (s *DictionarySegmenter) segmentPiece(piece []rune) []string {
	n := len(piece)
	lower := []rune(strings.ToLower(string(piece)))
	if len(lower) != n {
		return []string{string(piece)}
	}
	best := make([]float64, n+1)
	from := make([]int, n+1)
	for i := 1; i <= n; i++ {
		best[i] = math.Inf(1)
		for j := max(0, i-maxWordLen); j < i; j++ {
			if math.IsInf(best[j], 1) {
				continue
			}
			c, ok := s.cost[string(lower[j:i])]
			if !ok {
				continue
			}
			if best[j]+c < best[i] {
				best[i] = best[j] + c
				from[i] = j
			}
		}
	}
	if math.IsInf(best[n], 1) {
		return []string{string(piece)}
	}
	var words []string
	for i := n; i > 0; i = from[i] {
		words = append(words, string(piece[from[i]:i]))
	}
	for l, r := 0, len(words)-1; l < r; l, r = l+1, r-1 {
		words[l], words[r] = words[r], words[l]
	}
	return words
}
