package layout

import (
	"strings"

	"github.com/tsawler/blocktree/model"
)

// joinInput is what a join rule sees: the earlier block, the block below
// it, and the page statistics.
type joinInput struct {
	prev  *model.Block
	cur   *model.Block
	stats *pageStats
}

type joinRule struct {
	name  string
	apply func(a *Assembler, in *joinInput) verdict
}

// joinRules decide whether a block continues the block above it. The first
// rule that does not pass wins; when every rule passes the blocks stay
// apart.
var joinRules = []joinRule{
	{"unstyled", joinUnstyled},
	{"row-or-list", joinRowOrList},
	{"gap", joinGap},
	{"continuing", joinContinuing},
	{"header-body", joinHeaderBody},
	{"body-header", joinBodyHeader},
	{"header-wrap", joinHeaderWrap},
	{"incomplete", joinIncomplete},
}

func (a *Assembler) decideJoin(in *joinInput) (verdict, string) {
	for _, r := range joinRules {
		if v := r.apply(a, in); v != pass {
			return v, r.name
		}
	}
	return split, "default"
}

func joinUnstyled(_ *Assembler, in *joinInput) verdict {
	if in.prev.Unstyled() || in.cur.Unstyled() {
		return split
	}
	return pass
}

// Table rows, list items and rules are never folded into the block above,
// and nothing is folded into a table row or rule.
func joinRowOrList(_ *Assembler, in *joinInput) verdict {
	switch in.cur.Type() {
	case model.TypeTableRow, model.TypeListItem, model.TypeRule, model.TypeTable:
		return split
	}
	switch in.prev.Type() {
	case model.TypeTableRow, model.TypeRule, model.TypeTable:
		return split
	}
	return pass
}

// Blocks too far apart, or out of vertical order, stay apart.
func joinGap(a *Assembler, in *joinInput) verdict {
	last := in.prev.LastLine()
	if last == nil {
		return split
	}
	h := last.BBox.Height
	gap := in.cur.BBox.Top - in.prev.BBox.Bottom()
	if gap > a.config.MaxJoinGapRatio*h || gap < -h/2 {
		return split
	}
	return pass
}

// A block starting in lowercase or with a continuation mark continues the
// block above.
func joinContinuing(_ *Assembler, in *joinInput) verdict {
	if in.cur.Flags.Continuing {
		return join
	}
	return pass
}

func joinHeaderBody(_ *Assembler, in *joinInput) verdict {
	if in.prev.Is(model.TypeHeader) && !in.cur.Is(model.TypeHeader) {
		return split
	}
	return pass
}

func joinBodyHeader(_ *Assembler, in *joinInput) verdict {
	if !in.prev.Is(model.TypeHeader) && in.cur.Is(model.TypeHeader) {
		return split
	}
	return pass
}

// A heading broken over two lines of the same style is one heading.
func joinHeaderWrap(_ *Assembler, in *joinInput) verdict {
	if !in.prev.Is(model.TypeHeader) || !in.cur.Is(model.TypeHeader) {
		return pass
	}
	if in.prev.Flags.Incomplete && in.prev.StyleID == in.cur.StyleID && in.cur.Numbering() == nil {
		return join
	}
	return split
}

// A paragraph left open continues into the next paragraph of its style.
func joinIncomplete(_ *Assembler, in *joinInput) verdict {
	if in.prev.Flags.Incomplete && in.prev.StyleID == in.cur.StyleID {
		return join
	}
	return pass
}

// joinPass applies the join rule table to a page's blocks in scan order.
// Each block is compared with the nearest earlier block above it that
// overlaps it horizontally.
func (a *Assembler) joinPass(run *pageRun) {
	run.joining = true
	for run.next < len(run.blocks) {
		cur := run.blocks[run.next]
		if prev := previousAbove(run.joined, cur); prev != nil {
			in := &joinInput{prev: prev, cur: cur, stats: &run.page.stats}
			if v, rule := a.decideJoin(in); v == join {
				a.join(prev, cur)
				run.next++
				a.dc.Log.Debug().Int("page", run.page.input.Index).Str("rule", rule).Str("block", prev.Label()).Msg("blocks joined")
				continue
			}
		}
		run.joined = append(run.joined, cur)
		run.next++
	}
	run.blocks = run.joined
	run.joining = false
}

// previousAbove returns the most recent block that overlaps cur
// horizontally and starts above it.
func previousAbove(blocks []*model.Block, cur *model.Block) *model.Block {
	for i := len(blocks) - 1; i >= 0; i-- {
		b := blocks[i]
		if b.BBox.HorizontalOverlap(cur.BBox) > 0 && b.BBox.Top < cur.BBox.Top {
			return b
		}
	}
	return nil
}

// join folds cur into prev. The earlier block keeps its type, except that a
// list item is classified again on the joined text.
func (a *Assembler) join(prev, cur *model.Block) {
	prev.Absorb(cur)
	if prev.Is(model.TypeListItem) {
		res := a.dc.Classifier.Classify(prev.Text, nil)
		if res.Type != model.TypeListItem {
			prev.Payload = PayloadFor(res)
		}
	}
}

// SpliceAcrossPages appends a page's blocks to the document so far. When the
// document ends in an open paragraph or list item and the page starts with a
// continuing paragraph, the two are joined; the joined block keeps the
// earlier page and box.
func SpliceAcrossPages(doc, page []*model.Block) []*model.Block {
	if len(doc) == 0 || len(page) == 0 {
		return append(doc, page...)
	}
	prev, cur := doc[len(doc)-1], page[0]
	if canSplice(prev, cur) {
		box := prev.BBox
		prev.Absorb(cur)
		prev.BBox = box
		page = page[1:]
	}
	return append(doc, page...)
}

func canSplice(prev, cur *model.Block) bool {
	if prev.Page == cur.Page || prev.Unstyled() || cur.Unstyled() {
		return false
	}
	if !prev.Is(model.TypePara) && !prev.Is(model.TypeListItem) {
		return false
	}
	if !cur.Is(model.TypePara) {
		return false
	}
	return prev.Flags.Incomplete && cur.Flags.Continuing && strings.TrimSpace(cur.Text) != ""
}
