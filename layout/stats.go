package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/blocktree/model"
	"github.com/tsawler/blocktree/style"
)

// pageState is one page's lines and statistics between Prepare and
// AssemblePage.
type pageState struct {
	input   model.PageInput
	lines   []model.VisualLine
	rows    [][]int
	rowOf   []int
	stats   pageStats
	dropped int
	columns int
}

// pageStats are the per-page measurements grouping decisions consult
type pageStats struct {
	textLeft  float64
	textRight float64

	// modal holds the most common gap between consecutive lines of the
	// same style class, keyed by style id.
	modal     map[int]float64
	pageModal float64

	// sizes is the font size histogram, rounded to half points, weighted
	// by characters.
	sizes   map[float64]int
	largest float64
}

func newPageState(in model.PageInput, lines []model.VisualLine, rows [][]int, dropped int) *pageState {
	ps := &pageState{input: in, lines: lines, rows: rows, dropped: dropped}
	ps.index()
	return ps
}

func (ps *pageState) index() {
	ps.rowOf = make([]int, len(ps.lines))
	for r, row := range ps.rows {
		for _, i := range row {
			ps.rowOf[i] = r
		}
	}
}

// inEdgeRow reports whether line i is in the page's first or last row
func (ps *pageState) inEdgeRow(i int) bool {
	if len(ps.rows) == 0 {
		return false
	}
	r := ps.rowOf[i]
	return r == 0 || r == len(ps.rows)-1
}

// remove deletes the flagged lines, counting their runs as dropped, and
// rebuilds the row index.
func (ps *pageState) remove(drop []bool) {
	found := false
	for _, d := range drop {
		found = found || d
	}
	if !found {
		return
	}
	remap := make([]int, len(ps.lines))
	kept := make([]model.VisualLine, 0, len(ps.lines))
	for i, l := range ps.lines {
		if drop[i] {
			ps.dropped += len(l.Runs)
			remap[i] = -1
			continue
		}
		remap[i] = len(kept)
		kept = append(kept, l)
	}
	var rows [][]int
	for _, row := range ps.rows {
		var nr []int
		for _, i := range row {
			if remap[i] >= 0 {
				nr = append(nr, remap[i])
			}
		}
		if len(nr) > 0 {
			rows = append(rows, nr)
		}
	}
	ps.lines = kept
	ps.rows = rows
	ps.index()
}

// runCount returns the number of runs held by the page's lines
func (ps *pageState) runCount() int {
	n := 0
	for _, l := range ps.lines {
		n += len(l.Runs)
	}
	return n
}

// geometry returns the page's geometry record
func (ps *pageState) geometry() model.PageGeometry {
	return model.PageGeometry{
		Index:           ps.input.Index,
		Width:           ps.input.Width,
		Height:          ps.input.Height,
		LargestFontSize: ps.stats.largest,
		ModalSpacing:    ps.stats.pageModal,
		Columns:         ps.columns,
	}
}

// measure computes text margins, assigns alignment and style class to every
// line, feeds the style registry, and derives the page's spacing and font
// size statistics.
func (a *Assembler) measure(ps *pageState) {
	st := &ps.stats
	st.modal = make(map[int]float64)
	st.sizes = make(map[float64]int)
	first := true
	for _, l := range ps.lines {
		if first || l.BBox.Left < st.textLeft {
			st.textLeft = l.BBox.Left
		}
		if first || l.BBox.Right() > st.textRight {
			st.textRight = l.BBox.Right()
		}
		first = false
	}

	for i := range ps.lines {
		l := &ps.lines[i]
		if l.Unstyled {
			l.StyleID = style.NoStyle
			continue
		}
		l.Alignment = a.alignment(l, st.textLeft, st.textRight)
		if l.Alignment == model.AlignCenter && a.sharesLeft(ps.lines, i) {
			l.Alignment = model.AlignLeft
		}
		l.StyleID = a.dc.Styles.Classify(style.FromFont(l.Font, l.Alignment))
		a.dc.Styles.Observe(l.StyleID, len(strings.Fields(l.Text)))

		size := math.Round(l.Size()*2) / 2
		st.sizes[size] += len([]rune(l.Text))
		if size > st.largest {
			st.largest = size
		}
	}

	byStyle := make(map[int]map[float64]int)
	all := make(map[float64]int)
	for i := range ps.lines {
		l := &ps.lines[i]
		if l.Unstyled {
			continue
		}
		j := ps.below(i)
		if j < 0 || ps.lines[j].StyleID != l.StyleID {
			continue
		}
		gap := ps.lines[j].BBox.Top - l.BBox.Bottom()
		if gap < -l.BBox.Height/2 || gap > 3*l.BBox.Height {
			continue
		}
		g := math.Round(gap*2) / 2
		if byStyle[l.StyleID] == nil {
			byStyle[l.StyleID] = make(map[float64]int)
		}
		byStyle[l.StyleID][g]++
		all[g]++
	}
	for id, hist := range byStyle {
		st.modal[id] = mode(hist)
	}
	if len(all) > 0 {
		st.pageModal = mode(all)
	}
}

// sharesLeft reports whether another line on the page starts at the same
// left edge as line i. Sibling list items share an indent; centred lines
// of differing widths do not.
func (a *Assembler) sharesLeft(lines []model.VisualLine, i int) bool {
	for j := range lines {
		if j == i || lines[j].Unstyled {
			continue
		}
		if math.Abs(lines[j].BBox.Left-lines[i].BBox.Left) <= a.config.EdgeTolerance {
			return true
		}
	}
	return false
}

// below returns the nearest line under line i that overlaps it
// horizontally, or -1.
func (ps *pageState) below(i int) int {
	l := &ps.lines[i]
	best := -1
	for r := ps.rowOf[i] + 1; r < len(ps.rows); r++ {
		for _, j := range ps.rows[r] {
			if ps.lines[j].BBox.HorizontalOverlap(l.BBox) > 0 {
				if best < 0 || ps.lines[j].BBox.Top < ps.lines[best].BBox.Top {
					best = j
				}
			}
		}
		if best >= 0 {
			return best
		}
	}
	return best
}

// mode returns the most frequent value of a histogram; ties go to the
// smaller value.
func mode(hist map[float64]int) float64 {
	keys := make([]float64, 0, len(hist))
	for k := range hist {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	best, count := 0.0, -1
	for _, k := range keys {
		if hist[k] > count {
			best, count = k, hist[k]
		}
	}
	return best
}

// alignment places a line relative to the page's text margins. Only lines
// indented from the left margin can be centred or right aligned; a right
// aligned line must also be short and start past the middle, so the lines
// of a right-hand column stay left aligned.
func (a *Assembler) alignment(l *model.VisualLine, left, right float64) model.Alignment {
	width := right - left
	if width <= 0 {
		return model.AlignLeft
	}
	tol := a.config.AlignTolerance
	center := left + width/2
	indented := l.BBox.Left > left+tol
	switch {
	case indented && l.BBox.Right() < right-tol && math.Abs(l.BBox.CenterX()-center) <= tol:
		return model.AlignCenter
	case indented && math.Abs(l.BBox.Right()-right) <= tol && l.BBox.Left > center && l.BBox.Width < width/4:
		return model.AlignRight
	}
	return model.AlignLeft
}

// spacingLimit is the largest gap below line l that still continues its
// block: the modal spacing of l's style class plus SpacingSlack times its
// height.
func (a *Assembler) spacingLimit(st *pageStats, l *model.VisualLine) float64 {
	h := l.BBox.Height
	modal, ok := st.modal[l.StyleID]
	if !ok {
		modal = h * a.config.FallbackSpacingRatio
		if st.pageModal > modal {
			modal = st.pageModal
		}
	}
	return modal + math.Max(a.config.SpacingSlack*h, 1)
}
