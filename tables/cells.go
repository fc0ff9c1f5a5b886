package tables

import (
	"sort"
	"strings"
	"unicode"

	"github.com/tsawler/blocktree/model"
)

// placement is one fragment's position among the spans
type placement struct {
	line  *model.VisualLine
	first int
	last  int
}

// cells aligns a row's fragments to the spans. Fragments overlapping spans
// take the spans they overlap; any other fragment goes to the span that
// contains, or is nearest to, its centre. Fragments starting in the same
// span share a cell, their text joined in reading order. resolved is false
// when two cells claim the same span.
func cells(b *model.Block, spans []model.ColumnSpan) (out []model.Cell, resolved bool) {
	if len(b.Lines) == 0 {
		return []model.Cell{{Text: b.Text, Column: 0, ColSpan: max(len(spans), 1)}}, len(spans) <= 1
	}
	places := make([]placement, 0, len(b.Lines))
	for i := range b.Lines {
		l := &b.Lines[i]
		first, last := coveredSpans(l.BBox.Left, l.BBox.Right(), spans)
		if first < 0 {
			first = nearestSpan(l.BBox.CenterX(), spans)
			last = first
		}
		places = append(places, placement{line: l, first: first, last: last})
	}
	sort.SliceStable(places, func(i, j int) bool {
		a, c := places[i], places[j]
		if a.first != c.first {
			return a.first < c.first
		}
		if a.line.BBox.Top != c.line.BBox.Top {
			return a.line.BBox.Top < c.line.BBox.Top
		}
		return a.line.BBox.Left < c.line.BBox.Left
	})

	resolved = true
	for _, p := range places {
		if n := len(out); n > 0 && out[n-1].Column == p.first {
			c := &out[n-1]
			c.Text += " " + p.line.Text
			c.ColSpan = max(c.ColSpan, p.last-p.first+1)
			continue
		}
		if n := len(out); n > 0 && out[n-1].Column+out[n-1].ColSpan > p.first {
			resolved = false
		}
		out = append(out, model.Cell{Text: p.line.Text, Column: p.first, ColSpan: p.last - p.first + 1})
	}
	return out, resolved
}

// rowGroup returns the single full width cell of a row that could not be
// split into cells.
func rowGroup(b *model.Block, spans []model.ColumnSpan) []model.Cell {
	return []model.Cell{{Text: b.Text, Column: 0, ColSpan: max(len(spans), 1)}}
}

// isRowGroup reports whether a data row's cells describe a full width
// annotation rather than a row of values.
func isRowGroup(cs []model.Cell, resolved bool, spans []model.ColumnSpan) bool {
	if !resolved {
		return true
	}
	return len(spans) >= 2 && len(cs) == 1 && cs[0].ColSpan >= 2
}

// hasDigits reports whether any cell holds a digit
func hasDigits(cs []model.Cell) bool {
	for _, c := range cs {
		if strings.IndexFunc(c.Text, unicode.IsDigit) >= 0 {
			return true
		}
	}
	return false
}

// isGroupHeader reports whether a header row has a cell covering several
// columns.
func isGroupHeader(cs []model.Cell) bool {
	for _, c := range cs {
		if c.ColSpan > 1 {
			return true
		}
	}
	return false
}
