package lineclass

import (
	"regexp"
	"strings"
)

var quotedPattern = regexp.MustCompile(`["“]([^"“”]{1,80})["”]`)

// QuotedTerms returns the phrases in double quotes, in order of appearance
func QuotedTerms(text string) []string {
	var out []string
	for _, m := range quotedPattern.FindAllStringSubmatch(text, -1) {
		if t := strings.TrimSpace(m[1]); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// NounChunks returns the capitalised multi-word phrases in the tokens
func NounChunks(tokens []Token) []string {
	var out []string
	for _, span := range chunkSpans(tokens) {
		words := make([]string, 0, span[1]-span[0])
		for i := span[0]; i < span[1]; i++ {
			words = append(words, tokens[i].Word)
		}
		out = append(out, strings.Join(words, " "))
	}
	return out
}
