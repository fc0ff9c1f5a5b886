package layout

import (
	"math"
	"strings"
	"unicode"

	"github.com/tsawler/blocktree/model"
	"github.com/tsawler/blocktree/text"
)

// band is the margin region a line sits in
type band int

const (
	bandNone band = iota
	bandTop
	bandBottom
)

// marginKey identifies a margin line across pages: its band, its rounded
// distance from the page edge and its folded text.
type marginKey struct {
	band band
	pos  int
	text string
}

// pageNumberPatterns are folded page number forms, digits collapsed to "#"
var pageNumberPatterns = map[string]bool{
	"#":           true,
	"page #":      true,
	"- # -":       true,
	"-#-":         true,
	"# of #":      true,
	"page # of #": true,
	"#/#":         true,
	"p. #":        true,
	"p.#":         true,
	"pg #":        true,
	"pg. #":       true,
	"(#)":         true,
	"[#]":         true,
}

func (a *Assembler) bandOf(ps *pageState, l *model.VisualLine) band {
	h := ps.input.Height
	if h <= 0 {
		return bandNone
	}
	limit := h * a.config.MarginBandRatio
	switch {
	case l.BBox.Top < limit:
		return bandTop
	case l.BBox.Top >= h-limit:
		return bandBottom
	}
	return bandNone
}

func (a *Assembler) marginKey(ps *pageState, i int) (marginKey, bool) {
	l := &ps.lines[i]
	b := a.bandOf(ps, l)
	if b == bandNone {
		return marginKey{}, false
	}
	folded := collapseHashes(text.FoldKey(l.Text))
	if folded == "" {
		return marginKey{}, false
	}
	// Footers are measured from the bottom edge so pages of slightly
	// different heights still line up.
	dist := l.BBox.Top
	if b == bandBottom {
		dist = ps.input.Height - l.BBox.Top
	}
	step := a.config.MarginPositionStep
	if step <= 0 {
		step = 1
	}
	return marginKey{band: b, pos: int(math.Round(dist / step)), text: folded}, true
}

// collapseHashes turns every run of '#' into a single '#', so page numbers
// of different widths share a key.
func collapseHashes(s string) string {
	var sb strings.Builder
	prev := false
	for _, r := range s {
		if r == '#' {
			if !prev {
				sb.WriteRune(r)
			}
			prev = true
			continue
		}
		prev = false
		sb.WriteRune(r)
	}
	return sb.String()
}

// isPageNumber reports whether a margin line reads as a page number: a
// known page number form, or short text made mostly of digits.
func (a *Assembler) isPageNumber(s string) bool {
	folded := collapseHashes(text.FoldKey(s))
	if pageNumberPatterns[folded] {
		return true
	}
	total, digits := 0, 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return total > 0 && total <= 12 && float64(digits)/float64(total) >= a.config.PageNumberDigitRatio
}

// meanGap returns the mean distance between consecutive page indices
func meanGap(pages []int) float64 {
	if len(pages) < 2 {
		return 0
	}
	return float64(pages[len(pages)-1]-pages[0]) / float64(len(pages)-1)
}

// filterMargins removes running headers, running footers and page numbers
// from every page. A margin key is running when it recurs on at least
// MarginRepeatRatio of the pages with a mean page gap of at most
// MaxMeanPageGap. Lines in the topmost and bottommost rows of a page are
// also removed when they read as page numbers.
func (a *Assembler) filterMargins() {
	n := len(a.pages)
	if a.config.KeepMargins || n < a.config.MinMarginPages || n < 2 {
		return
	}

	seen := make(map[marginKey][]int)
	var order []marginKey
	for pi, ps := range a.pages {
		for li := range ps.lines {
			k, ok := a.marginKey(ps, li)
			if !ok {
				continue
			}
			pages := seen[k]
			if len(pages) > 0 && pages[len(pages)-1] == pi {
				continue
			}
			if len(pages) == 0 {
				order = append(order, k)
			}
			seen[k] = append(pages, pi)
		}
	}

	need := max(int(math.Ceil(a.config.MarginRepeatRatio*float64(n))), 2)
	running := make(map[marginKey]bool)
	for _, k := range order {
		pages := seen[k]
		if len(pages) >= need && meanGap(pages) <= a.config.MaxMeanPageGap {
			running[k] = true
		}
	}

	recorded := make(map[marginKey]bool)
	for _, ps := range a.pages {
		drop := make([]bool, len(ps.lines))
		for li := range ps.lines {
			k, ok := a.marginKey(ps, li)
			if !ok {
				continue
			}
			l := &ps.lines[li]
			switch {
			case running[k]:
				drop[li] = true
				if !recorded[k] {
					recorded[k] = true
					a.recordRunning(k.band, l.Text)
				}
				a.dc.Log.Debug().Int("page", ps.input.Index).Str("text", l.Text).Msg("running margin line removed")
			case ps.inEdgeRow(li) && a.isPageNumber(l.Text):
				drop[li] = true
				a.dc.Log.Debug().Int("page", ps.input.Index).Str("text", l.Text).Msg("page number removed")
			}
		}
		ps.remove(drop)
	}
}

func (a *Assembler) recordRunning(b band, s string) {
	s = text.Normalize(s)
	if b == bandTop {
		a.headers = append(a.headers, s)
		return
	}
	a.footers = append(a.footers, s)
}
