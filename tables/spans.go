package tables

import (
	"math"
	"sort"

	"github.com/tsawler/blocktree/model"
)

// interval is the horizontal extent of one row fragment
type interval struct {
	left  float64
	right float64
}

func (iv interval) overlaps(o interval) bool {
	return math.Min(iv.right, o.right) > math.Max(iv.left, o.left)
}

// fragments returns the horizontal extents of a row's fragments, left to
// right, with overlapping fragments merged into one.
func fragments(b *model.Block) []interval {
	ivs := make([]interval, 0, len(b.Lines))
	for _, l := range b.Lines {
		ivs = append(ivs, interval{left: l.BBox.Left, right: l.BBox.Right()})
	}
	if len(ivs) == 0 {
		return []interval{{left: b.BBox.Left, right: b.BBox.Right()}}
	}
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].left < ivs[j].left })

	out := []interval{ivs[0]}
	for _, iv := range ivs[1:] {
		last := &out[len(out)-1]
		if iv.overlaps(*last) {
			last.right = math.Max(last.right, iv.right)
			continue
		}
		out = append(out, iv)
	}
	return out
}

// nominalColumns returns the fragment count most of the leading rows agree
// on. Ties go to the larger count.
func (r *Resolver) nominalColumns(rows []*model.Block) int {
	votes := make(map[int]int)
	for i, b := range rows {
		if i >= r.config.Lookahead {
			break
		}
		votes[len(fragments(b))]++
	}
	best, count := 0, 0
	for n, v := range votes {
		if v > count || (v == count && n > best) {
			best, count = n, v
		}
	}
	return best
}

// buildSpans derives the table's column spans from the rows that have the
// nominal fragment count. A fragment overlapping no span opens one; a
// fragment overlapping exactly one span widens it, unless another fragment
// of the same row already claimed it; a fragment overlapping several spans
// covers merged columns and is left out. Spans that grow into each other
// are merged, so the result is disjoint and ordered left to right.
func (r *Resolver) buildSpans(rows []*model.Block, nominal int) []model.ColumnSpan {
	var spans []model.ColumnSpan
	for _, b := range rows {
		frags := fragments(b)
		if len(frags) != nominal {
			continue
		}
		claimed := make([]bool, len(spans))
		for _, f := range frags {
			var hits []int
			for k, s := range spans {
				if s.Overlap(f.left, f.right) > 0 {
					hits = append(hits, k)
				}
			}
			switch len(hits) {
			case 0:
				spans = append(spans, model.ColumnSpan{Left: f.left, Right: f.right})
				claimed = append(claimed, true)
			case 1:
				if !claimed[hits[0]] {
					spans[hits[0]] = spans[hits[0]].Expand(f.left, f.right)
					claimed[hits[0]] = true
				}
			}
		}
		spans = mergeSpans(spans)
	}
	return spans
}

// mergeSpans sorts spans and merges the ones that overlap
func mergeSpans(spans []model.ColumnSpan) []model.ColumnSpan {
	if len(spans) < 2 {
		return spans
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Left < spans[j].Left })
	out := []model.ColumnSpan{spans[0]}
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if s.Left < last.Right {
			*last = last.Expand(s.Left, s.Right)
			continue
		}
		out = append(out, s)
	}
	return out
}

// alignRatio is the share of a block's fragment width held by fragments
// that overlap at least one span. A block without width counts as aligned.
func alignRatio(b *model.Block, spans []model.ColumnSpan) float64 {
	total, covered := 0.0, 0.0
	for _, f := range fragments(b) {
		w := f.right - f.left
		total += w
		if k, _ := coveredSpans(f.left, f.right, spans); k >= 0 {
			covered += w
		}
	}
	if total <= 0 {
		return 1
	}
	return covered / total
}

// nearestSpan returns the span containing x, or the span closest to it
func nearestSpan(x float64, spans []model.ColumnSpan) int {
	best, bestDist := 0, math.Inf(1)
	for k, s := range spans {
		if s.Contains(x) {
			return k
		}
		d := math.Min(math.Abs(x-s.Left), math.Abs(x-s.Right))
		if d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}

// coveredSpans returns the first and last span a fragment overlaps, or -1
// for both when it overlaps none.
func coveredSpans(left, right float64, spans []model.ColumnSpan) (first, last int) {
	first, last = -1, -1
	for k, s := range spans {
		if s.Overlap(left, right) > 0 {
			if first < 0 {
				first = k
			}
			last = k
		}
	}
	return first, last
}

// rowHeight is the median line height of the rows
func rowHeight(rows []*model.Block) float64 {
	var hs []float64
	for _, b := range rows {
		for _, l := range b.Lines {
			hs = append(hs, l.BBox.Height)
		}
	}
	if len(hs) == 0 {
		return 0
	}
	sort.Float64s(hs)
	return hs[len(hs)/2]
}
