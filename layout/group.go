package layout

import (
	"math"

	"github.com/tsawler/blocktree/lineclass"
	"github.com/tsawler/blocktree/model"
)

// verdict is the outcome of a grouping or joining rule
type verdict int

const (
	// pass means the rule does not apply and the next one is consulted.
	pass verdict = iota
	join
	split
)

func (v verdict) String() string {
	switch v {
	case join:
		return "join"
	case split:
		return "split"
	default:
		return "pass"
	}
}

// groupInput is what a grouping rule sees: the candidate block, its last
// line, the incoming line with its classification, and the page statistics.
type groupInput struct {
	block   *model.Block
	last    *model.VisualLine
	line    *model.VisualLine
	res     lineclass.Result
	sameRow bool
	stats   *pageStats
}

// groupRule is one named entry of the grouping rule table
type groupRule struct {
	name  string
	apply func(a *Assembler, in *groupInput) verdict
}

// groupRules decide whether an incoming line joins the candidate block. The
// first rule that does not pass wins; when every rule passes the line joins.
var groupRules = []groupRule{
	{"unstyled", groupUnstyled},
	{"table-row-same-top", groupTableRowSameTop},
	{"table-row-close", groupTableRowClose},
	{"same-top-regression", groupSameTop},
	{"upward", groupUpward},
	{"rule-line", groupRuleLine},
	{"marker-start", groupMarkerStart},
	{"wrapped-title", groupWrappedTitle},
	{"header-start", groupHeaderStart},
	{"header-end", groupHeaderEnd},
	{"style-change", groupStyleChange},
	{"spacing", groupSpacing},
	{"disjoint", groupDisjoint},
}

// decideGroup runs the grouping rule table and names the deciding rule
func (a *Assembler) decideGroup(in *groupInput) (verdict, string) {
	for _, r := range groupRules {
		if v := r.apply(a, in); v != pass {
			return v, r.name
		}
	}
	return join, "default"
}

// Unstyled lines take no part in visual joins.
func groupUnstyled(_ *Assembler, in *groupInput) verdict {
	if in.line.Unstyled || in.last.Unstyled {
		return split
	}
	return pass
}

// Once a table row starts, further fragments on the same row join it.
func groupTableRowSameTop(_ *Assembler, in *groupInput) verdict {
	if in.block.Is(model.TypeTableRow) && in.sameRow {
		return join
	}
	return pass
}

// A fragment on a different row closes a table row.
func groupTableRowClose(_ *Assembler, in *groupInput) verdict {
	if in.block.Is(model.TypeTableRow) {
		return split
	}
	return pass
}

// A separate fragment on the same row as the block's last line belongs to
// another column or cell.
func groupSameTop(_ *Assembler, in *groupInput) verdict {
	if in.sameRow {
		return split
	}
	return pass
}

// The line does not continue downward from the block.
func groupUpward(_ *Assembler, in *groupInput) verdict {
	if !continuesDown(in.last, in.line) {
		return split
	}
	return pass
}

func groupRuleLine(_ *Assembler, in *groupInput) verdict {
	if in.res.Type == model.TypeRule || in.block.Is(model.TypeRule) {
		return split
	}
	return pass
}

// A list or table marker begins a new block.
func groupMarkerStart(_ *Assembler, in *groupInput) verdict {
	if in.res.Type == model.TypeListItem || in.res.Type == model.TypeTableRow {
		return split
	}
	return pass
}

// A short capitalised line inside an open paragraph of the same style is
// the paragraph's next line, not a heading.
func groupWrappedTitle(a *Assembler, in *groupInput) verdict {
	if in.res.Type != model.TypeHeader || !in.block.Is(model.TypePara) {
		return pass
	}
	f := in.res.Features
	if f.Numbering != nil || f.Keyword != "" || f.AllCaps {
		return pass
	}
	if in.line.StyleID != in.last.StyleID || a.dc.Styles.IsLikelyHeader(in.line.StyleID) {
		return pass
	}
	if !in.block.Flags.Incomplete {
		return pass
	}
	return join
}

func groupHeaderStart(_ *Assembler, in *groupInput) verdict {
	if in.res.Type == model.TypeHeader {
		return split
	}
	return pass
}

func groupHeaderEnd(_ *Assembler, in *groupInput) verdict {
	if in.block.Is(model.TypeHeader) {
		return split
	}
	return pass
}

func groupStyleChange(_ *Assembler, in *groupInput) verdict {
	if in.line.StyleID != in.last.StyleID {
		return split
	}
	return pass
}

// The gap above the line exceeds the style's modal spacing.
func groupSpacing(a *Assembler, in *groupInput) verdict {
	if lineGap(in.last, in.line) > a.spacingLimit(in.stats, in.last) {
		return split
	}
	return pass
}

func groupDisjoint(_ *Assembler, in *groupInput) verdict {
	if in.block.BBox.HorizontalOverlap(in.line.BBox) <= 0 {
		return split
	}
	return pass
}

// sameRow reports whether two lines share a baseline: their vertical
// centres differ by less than half the smaller height.
func sameRow(a, b *model.VisualLine) bool {
	return math.Abs(a.BBox.CenterY()-b.BBox.CenterY()) < math.Min(a.BBox.Height, b.BBox.Height)/2
}

// continuesDown reports whether next starts below prev, allowing half a
// line of overlap.
func continuesDown(prev, next *model.VisualLine) bool {
	return next.BBox.Top >= prev.BBox.Bottom()-prev.BBox.Height/2
}

// lineGap is the vertical whitespace between prev and the line below it
func lineGap(prev, next *model.VisualLine) float64 {
	return next.BBox.Top - prev.BBox.Bottom()
}
