package lineclass

import (
	"strings"
	"unicode/utf8"
)

// Bullet kinds
const (
	BulletDisc     = "disc"
	BulletCircle   = "circle"
	BulletSquare   = "square"
	BulletDash     = "dash"
	BulletAsterisk = "asterisk"
	BulletArrow    = "arrow"
	BulletTriangle = "triangle"
	BulletCheck    = "check"
)

// bulletGlyphs maps each recognised bullet glyph to its kind
var bulletGlyphs = map[rune]string{
	'•': BulletDisc, '●': BulletDisc, '·': BulletDisc, '\uf0b7': BulletDisc,
	'○': BulletCircle, '◦': BulletCircle, '◉': BulletCircle, 'o': BulletCircle,
	'■': BulletSquare, '□': BulletSquare, '▪': BulletSquare, '▫': BulletSquare, '\uf0a7': BulletSquare,
	'-': BulletDash, '–': BulletDash, '—': BulletDash,
	'*': BulletAsterisk, '✱': BulletAsterisk, '✲': BulletAsterisk,
	'→': BulletArrow, '▶': BulletArrow, '►': BulletArrow, '➤': BulletArrow, '➜': BulletArrow, '\uf0d8': BulletArrow,
	'‣': BulletTriangle, '⁃': BulletTriangle, '▸': BulletTriangle,
	'☐': BulletCheck, '☑': BulletCheck, '✓': BulletCheck, '✔': BulletCheck, '✗': BulletCheck, '✘': BulletCheck,
}

// ruleGlyphs are the characters a text-drawn horizontal rule is made of
var ruleGlyphs = map[rune]bool{
	'_': true, '-': true, '–': true, '—': true, '=': true, '─': true, '━': true, '═': true, '*': true, '~': true,
}

// asciiBullets need a following space to count; "-5" is a number and
// "*emphasis*" is not a list.
var asciiBullets = map[rune]bool{'-': true, '–': true, '—': true, '*': true, 'o': true, '·': true}

// DetectBullet reports the bullet glyph and kind a line starts with, and the
// text that follows it. The text after the glyph must start with a content
// token rather than further punctuation.
func DetectBullet(text string) (glyph, kind, rest string) {
	s := strings.TrimLeft(text, " \t")
	if s == "" {
		return "", "", ""
	}
	r, size := utf8.DecodeRuneInString(s)
	k, ok := bulletGlyphs[r]
	if !ok {
		return "", "", ""
	}
	after := s[size:]
	if asciiBullets[r] && !strings.HasPrefix(after, " ") && !strings.HasPrefix(after, "\t") {
		return "", "", ""
	}
	rest = strings.TrimSpace(after)
	if rest == "" {
		return "", "", ""
	}
	next, _ := utf8.DecodeRuneInString(rest)
	if _, isBullet := bulletGlyphs[next]; isBullet && next != 'o' {
		return "", "", ""
	}
	if ruleGlyphs[next] || next == '.' || next == ')' || next == ':' {
		return "", "", ""
	}
	return string(r), k, rest
}

// IsRule reports whether the line is drawn entirely with rule glyphs, at
// least min of them.
func IsRule(text string, min int) bool {
	count := 0
	for _, r := range text {
		switch {
		case ruleGlyphs[r]:
			count++
		case r == ' ' || r == '\t':
		default:
			return false
		}
	}
	return count >= min
}
