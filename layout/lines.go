package layout

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tsawler/blocktree/model"
	"github.com/tsawler/blocktree/text"
)

// buildLines merges a page's runs into visual lines and groups the lines
// into rows. Rows are ordered top to bottom and the lines of a row left to
// right. Runs without text or with an unusable box are counted as dropped.
func (a *Assembler) buildLines(in model.PageInput) (lines []model.VisualLine, rows [][]int, dropped int) {
	var styled []model.TextRun
	var loose []model.VisualLine
	for _, r := range in.Runs {
		if strings.TrimSpace(r.Text) == "" || !usableBox(r.BBox) {
			dropped++
			continue
		}
		if r.Unstyled() {
			loose = append(loose, unstyledLine(in.Index, r))
			continue
		}
		styled = append(styled, r)
	}

	type lineRow struct {
		center float64
		lines  []model.VisualLine
	}
	var all []lineRow
	for _, runs := range groupRows(styled) {
		row := lineRow{center: rowCenter(runs)}
		for _, seg := range a.splitSegments(runs) {
			row.lines = append(row.lines, a.mergeRuns(in.Index, seg))
		}
		all = append(all, row)
	}
	// Unstyled runs never merge with anything, so each is a row of its own.
	for _, l := range loose {
		all = append(all, lineRow{center: l.BBox.CenterY(), lines: []model.VisualLine{l}})
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].center < all[j].center
	})

	for _, row := range all {
		idx := make([]int, 0, len(row.lines))
		for _, l := range row.lines {
			idx = append(idx, len(lines))
			lines = append(lines, l)
		}
		rows = append(rows, idx)
	}
	return lines, rows, dropped
}

func usableBox(b model.BBox) bool {
	for _, v := range []float64{b.Left, b.Top, b.Width, b.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.Width >= 0 && b.Height >= 0
}

// unstyledLine wraps a run without style metadata. Its text is split on
// line breaks and rejoined with single spaces; no geometry is used.
func unstyledLine(page int, r model.TextRun) model.VisualLine {
	var parts []string
	for _, p := range strings.Split(r.Text, "\n") {
		if p = strings.Join(strings.Fields(p), " "); p != "" {
			parts = append(parts, p)
		}
	}
	return model.VisualLine{
		Runs:     []model.TextRun{r},
		Text:     strings.Join(parts, " "),
		BBox:     r.BBox,
		StyleID:  -1,
		Unstyled: true,
		Page:     page,
	}
}

// groupRows groups runs whose vertical centres differ by less than half the
// smaller height. Runs are visited top to bottom; each row keeps a running
// mean centre.
func groupRows(runs []model.TextRun) [][]model.TextRun {
	if len(runs) == 0 {
		return nil
	}
	sorted := make([]model.TextRun, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		ci, cj := sorted[i].BBox.CenterY(), sorted[j].BBox.CenterY()
		if ci != cj {
			return ci < cj
		}
		return sorted[i].BBox.Left < sorted[j].BBox.Left
	})

	var rows [][]model.TextRun
	var cur []model.TextRun
	var center, minHeight float64
	for _, r := range sorted {
		if len(cur) > 0 && math.Abs(r.BBox.CenterY()-center) < math.Min(minHeight, r.BBox.Height)/2 {
			cur = append(cur, r)
			center += (r.BBox.CenterY() - center) / float64(len(cur))
			minHeight = math.Min(minHeight, r.BBox.Height)
			continue
		}
		if len(cur) > 0 {
			rows = append(rows, cur)
		}
		cur = []model.TextRun{r}
		center = r.BBox.CenterY()
		minHeight = r.BBox.Height
	}
	rows = append(rows, cur)
	return rows
}

func rowCenter(runs []model.TextRun) float64 {
	sum := 0.0
	for _, r := range runs {
		sum += r.BBox.CenterY()
	}
	return sum / float64(len(runs))
}

// splitSegments orders a row's runs left to right and cuts it wherever the
// horizontal gap exceeds SplitGapRatio times the line height. Each segment
// becomes one visual line: a table cell, or a line of one column.
func (a *Assembler) splitSegments(runs []model.TextRun) [][]model.TextRun {
	sorted := make([]model.TextRun, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BBox.Left < sorted[j].BBox.Left
	})

	var segs [][]model.TextRun
	cur := []model.TextRun{sorted[0]}
	right := sorted[0].BBox.Right()
	for _, r := range sorted[1:] {
		h := math.Min(r.BBox.Height, cur[len(cur)-1].BBox.Height)
		if r.BBox.Left-right > a.config.SplitGapRatio*h {
			segs = append(segs, cur)
			cur = []model.TextRun{r}
			right = r.BBox.Right()
			continue
		}
		cur = append(cur, r)
		right = math.Max(right, r.BBox.Right())
	}
	return append(segs, cur)
}

// mergeRuns builds one visual line from runs ordered left to right.
func (a *Assembler) mergeRuns(page int, runs []model.TextRun) model.VisualLine {
	l := model.VisualLine{
		Runs:    runs,
		Text:    a.respace(a.joinRuns(runs)),
		Font:    modalFont(runs),
		StyleID: -1,
		Page:    page,
	}
	for _, r := range runs {
		l.BBox = l.BBox.Union(r.BBox)
	}
	return l
}

// joinRuns concatenates run texts, inserting a space where the gap between
// two runs is wider than SpaceGapRatio times the line height. Narrower gaps
// are sub-word splits from the backend and are closed. Runs of a
// right-to-left line are joined from the rightmost run.
func (a *Assembler) joinRuns(runs []model.TextRun) string {
	parts := make([]string, 0, 2*len(runs))
	right := 0.0
	for i, r := range runs {
		if i > 0 {
			h := math.Min(r.BBox.Height, runs[i-1].BBox.Height)
			if r.BBox.Left-right > a.config.SpaceGapRatio*h {
				parts = append(parts, " ")
			}
		}
		parts = append(parts, r.Text)
		if i == 0 || r.BBox.Right() > right {
			right = r.BBox.Right()
		}
	}
	if rightToLeft(runs) {
		for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
			parts[i], parts[j] = parts[j], parts[i]
		}
	}
	return strings.Join(strings.Fields(strings.Join(parts, "")), " ")
}

func rightToLeft(runs []model.TextRun) bool {
	if len(runs) < 2 {
		return false
	}
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Text)
	}
	return text.DetectDirection(sb.String()) == text.RTL
}

// respace re-segments letter-spaced text ("T E R M S") into words with the
// document's word segmenter. The segmenter must account for every letter,
// otherwise the text is kept as it is.
func (a *Assembler) respace(s string) string {
	fields := strings.Fields(s)
	if len(fields) < 4 || a.dc.Segmenter == nil {
		return s
	}
	single := 0
	for _, f := range fields {
		r, size := utf8.DecodeRuneInString(f)
		if size == len(f) && unicode.IsLetter(r) {
			single++
		}
	}
	if float64(single)/float64(len(fields)) < a.config.LetterSpacedRatio {
		return s
	}
	joined := strings.Join(fields, "")
	words := a.dc.Segmenter.Segment(joined)
	if len(words) == 0 || strings.Join(words, "") != joined {
		return s
	}
	return strings.Join(words, " ")
}

// modalFont returns the font covering the most characters. Ties go to the
// font seen first.
func modalFont(runs []model.TextRun) *model.FontDescriptor {
	type entry struct {
		font  *model.FontDescriptor
		chars int
	}
	var entries []entry
	for _, r := range runs {
		if r.Font == nil {
			continue
		}
		n := utf8.RuneCountInString(strings.TrimSpace(r.Text))
		found := false
		for i := range entries {
			if *entries[i].font == *r.Font {
				entries[i].chars += n
				found = true
				break
			}
		}
		if !found {
			entries = append(entries, entry{font: r.Font, chars: n})
		}
	}
	if len(entries) == 0 {
		return nil
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.chars > best.chars {
			best = e
		}
	}
	f := *best.font
	return &f
}

// rowText joins the text of a row's lines
func rowText(lines []model.VisualLine, row []int) string {
	parts := make([]string, 0, len(row))
	for _, i := range row {
		parts = append(parts, lines[i].Text)
	}
	return strings.Join(parts, " ")
}
