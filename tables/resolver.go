package tables

import (
	"github.com/tsawler/blocktree/docctx"
	"github.com/tsawler/blocktree/model"
)

// Resolver turns runs of table row blocks into tables. One Resolver serves
// one document; table ids count up from 1 in reading order.
type Resolver struct {
	config Config
	dc     *docctx.Context
	nextID int
}

// NewResolver creates a resolver with the default configuration
func NewResolver(dc *docctx.Context) *Resolver {
	return NewResolverWithConfig(dc, DefaultConfig())
}

// NewResolverWithConfig creates a resolver with a custom configuration
func NewResolverWithConfig(dc *docctx.Context, config Config) *Resolver {
	return &Resolver{config: config, dc: dc}
}

// Config returns the resolver configuration
func (r *Resolver) Config() Config {
	return r.config
}

// table is the footprint of a resolved table, consulted when looking for
// its footers.
type table struct {
	id     int
	page   int
	spans  []model.ColumnSpan
	bottom float64
	rowH   float64
	size   float64
}

// runResult is the outcome of resolving one run of rows
type runResult struct {
	blocks []*model.Block
	// adopted is set when the block above the run became its header row
	// and is part of blocks.
	adopted bool
	last    *table
}

// Resolve resolves every run of table rows in blocks, which must be in
// reading order. Rows gain cells, spans and table markers; paragraphs folded
// into rows disappear from the result, and runs that do not form a table
// revert to paragraphs. Resolve never fails.
func (r *Resolver) Resolve(blocks []*model.Block) []*model.Block {
	out := make([]*model.Block, 0, len(blocks))
	for i := 0; i < len(blocks); {
		if !blocks[i].Is(model.TypeTableRow) {
			out = append(out, blocks[i])
			i++
			continue
		}
		end := extent(blocks, i)
		var above *model.Block
		if n := len(out); n > 0 {
			above = out[n-1]
		}
		res := r.resolveRun(above, blocks[i:end])
		if res.adopted {
			out = out[:len(out)-1]
		}
		out = append(out, res.blocks...)
		if res.last != nil {
			r.markFooters(blocks[end:], res.last)
		}
		i = end
	}
	return out
}

// extent returns the end of the run of rows starting at start. A run stays
// on one page; a single paragraph between two rows stays in the run as a
// possible wrapped key or value.
func extent(blocks []*model.Block, start int) int {
	page := blocks[start].Page
	j := start + 1
	for j < len(blocks) {
		b := blocks[j]
		if b.Page != page {
			break
		}
		if b.Is(model.TypeTableRow) {
			j++
			continue
		}
		if b.Is(model.TypePara) && !b.Unstyled() && j+1 < len(blocks) &&
			blocks[j+1].Is(model.TypeTableRow) && blocks[j+1].Page == page {
			j += 2
			continue
		}
		break
	}
	return j
}

func rowsOf(run []*model.Block) []*model.Block {
	rows := make([]*model.Block, 0, len(run))
	for _, b := range run {
		if b.Is(model.TypeTableRow) {
			rows = append(rows, b)
		}
	}
	return rows
}

// resolveRun resolves one run. A paragraph that is neither a wrapped key,
// a wrapped value nor a section label, or a row that falls outside the
// spans, closes the table; the rest of the run is resolved on its own.
func (r *Resolver) resolveRun(above *model.Block, run []*model.Block) runResult {
	if len(run) == 0 {
		return runResult{}
	}
	rows := rowsOf(run)
	nominal := r.nominalColumns(rows)
	spans := r.buildSpans(rows, nominal)
	if len(spans) < 2 {
		return runResult{blocks: []*model.Block{r.collapse(run)}}
	}

	var res runResult
	members := make([]*model.Block, 0, len(run)+1)
	if above != nil && r.canAdopt(above, run[0], rows, spans) {
		members = append(members, above)
		res.adopted = true
	}

	closeAt := func(k int, breaker *model.Block) runResult {
		blocks, last := r.finish(members, spans, nominal, res.adopted)
		res.blocks = append(res.blocks, blocks...)
		res.last = last
		next := k
		if breaker != nil {
			res.blocks = append(res.blocks, breaker)
			res.last = nil
			next = k + 1
		}
		if next < len(run) {
			rest := r.resolveRun(nil, run[next:])
			res.blocks = append(res.blocks, rest.blocks...)
			res.last = rest.last
		}
		return res
	}

	var key *model.Block
	for k, b := range run {
		if !b.Is(model.TypeTableRow) {
			side, ok := r.wrapSide(b, spans)
			switch {
			case ok && side == 0:
				key = b
				continue
			case ok && side == 1 && len(members) > 0 && members[len(members)-1].Is(model.TypeTableRow):
				members[len(members)-1].Absorb(b)
				r.dc.Log.Debug().Int("page", b.Page).Str("block", b.Label()).Msg("wrapped table value folded into row")
				continue
			case len(members) > 0 && r.isLabel(b, spans):
				b.Payload = &model.TableRowPayload{RowGroup: true}
				members = append(members, b)
				r.dc.Log.Debug().Int("page", b.Page).Str("block", b.Label()).Msg("label between rows kept as row group")
				continue
			}
			return closeAt(k, b)
		}
		if key != nil {
			prepend(b, key)
			r.dc.Log.Debug().Int("page", b.Page).Str("block", key.Label()).Msg("wrapped table key folded into row")
			key = nil
		}
		if len(members) > 0 && alignRatio(b, spans) < r.config.MinAlignRatio {
			r.dc.Log.Debug().Int("page", b.Page).Str("block", b.Label()).Msg("row outside column spans closes table")
			return closeAt(k, nil)
		}
		members = append(members, b)
	}
	blocks, last := r.finish(members, spans, nominal, res.adopted)
	res.blocks = append(res.blocks, blocks...)
	res.last = last
	if key != nil {
		res.blocks = append(res.blocks, key)
		res.last = nil
	}
	return res
}

// canAdopt reports whether the block above a run reads as its header row:
// a header or paragraph on the same page, close above the first row, with
// two or more fragments that line up with the spans.
func (r *Resolver) canAdopt(above, first *model.Block, rows []*model.Block, spans []model.ColumnSpan) bool {
	if above.Page != first.Page || above.Unstyled() {
		return false
	}
	if !above.Is(model.TypeHeader) && !above.Is(model.TypePara) {
		return false
	}
	h := rowHeight(rows)
	gap := first.BBox.Top - above.BBox.Bottom()
	if gap < -h/2 || gap > r.config.MaxHeaderGapRatio*h {
		return false
	}
	frags := fragments(above)
	if len(frags) < 2 || abs(len(frags)-len(spans)) > 1 {
		return false
	}
	for _, f := range frags {
		if k, _ := coveredSpans(f.left, f.right, spans); k < 0 {
			return false
		}
	}
	return alignRatio(above, spans) >= r.config.MinAlignRatio
}

// wrapSide reports which column of a two-column table a paragraph wraps
// into: 0 for a key, 1 for a value. Every fragment must sit inside that one
// column.
func (r *Resolver) wrapSide(b *model.Block, spans []model.ColumnSpan) (int, bool) {
	if len(spans) != 2 || alignRatio(b, spans) < r.config.MinAlignRatio {
		return 0, false
	}
	side := -1
	for _, f := range fragments(b) {
		first, last := coveredSpans(f.left, f.right, spans)
		if first < 0 || first != last || (side >= 0 && first != side) {
			return 0, false
		}
		side = first
	}
	return side, side >= 0
}

// isLabel reports whether a paragraph between the rows of a table with
// three or more columns is a section label: every fragment sits inside one
// and the same span.
func (r *Resolver) isLabel(b *model.Block, spans []model.ColumnSpan) bool {
	if len(spans) < 3 || b.Unstyled() {
		return false
	}
	col := -1
	for _, f := range fragments(b) {
		first, last := coveredSpans(f.left, f.right, spans)
		if first < 0 || first != last || (col >= 0 && first != col) {
			return false
		}
		col = first
	}
	return col >= 0
}

// prepend folds a wrapped key above a row into the row
func prepend(row, key *model.Block) {
	lines := make([]model.VisualLine, 0, len(key.Lines)+len(row.Lines))
	lines = append(lines, key.Lines...)
	row.Lines = append(lines, row.Lines...)
	row.BBox = row.BBox.Union(key.BBox)
	switch {
	case row.Text == "":
		row.Text = key.Text
	case key.Text != "":
		row.Text = key.Text + " " + row.Text
	}
}

// finish turns a table's members into rows with cells and markers. Tables
// shorter than MinRows revert to paragraphs.
func (r *Resolver) finish(members []*model.Block, spans []model.ColumnSpan, nominal int, adopted bool) ([]*model.Block, *table) {
	if len(members) == 0 {
		return nil, nil
	}
	if len(members) < r.config.MinRows {
		for _, b := range members {
			if b.Is(model.TypeTableRow) {
				b.Payload = &model.ParagraphPayload{}
			}
		}
		r.dc.Log.Debug().Int("page", members[0].Page).Int("rows", len(members)).Msg("table too short, rows reverted to paragraphs")
		return members, nil
	}

	r.nextID++
	id := r.nextID
	header, headers := r.headerRows(members, spans, nominal, adopted)

	groups := 0
	for i, b := range members {
		cs, resolved := cells(b, spans)
		label := b.TableRow() != nil && b.TableRow().RowGroup
		p := &model.TableRowPayload{TableID: id, Spans: spans}
		switch {
		case i >= header && i < header+headers && !label:
			p.Header = true
			p.Cells = cs
		case label || isRowGroup(cs, resolved, spans):
			p.RowGroup = true
			p.Cells = rowGroup(b, spans)
			groups++
		default:
			p.Cells = cs
		}
		b.Payload = p
	}
	members[0].TableRow().TableStart = true
	last := members[len(members)-1]
	last.TableRow().TableEnd = true

	r.dc.Log.Debug().
		Int("table", id).
		Int("page", members[0].Page).
		Int("rows", len(members)).
		Int("columns", len(spans)).
		Int("row_groups", groups).
		Msg("table resolved")

	return members, &table{
		id:     id,
		page:   last.Page,
		spans:  spans,
		bottom: last.BBox.Bottom(),
		rowH:   rowHeight(members),
		size:   last.Size(),
	}
}

// headerRows returns the index of the header row and the number of header
// rows. An adopted block is the header; otherwise the first leading row
// whose fragment count is within one of the nominal count. A header with a
// cell covering several columns is a group header, and the row under it is
// a second header row when it holds no figures.
func (r *Resolver) headerRows(members []*model.Block, spans []model.ColumnSpan, nominal int, adopted bool) (int, int) {
	header := -1
	if adopted {
		header = 0
	} else {
		for i, b := range members {
			if i >= r.config.Lookahead {
				break
			}
			if abs(len(fragments(b))-nominal) <= 1 {
				header = i
				break
			}
		}
	}
	if header < 0 {
		return 0, 0
	}
	first, _ := cells(members[header], spans)
	if next := header + 1; isGroupHeader(first) && next < len(members)-1 {
		cs, ok := cells(members[next], spans)
		if ok && !hasDigits(cs) && abs(len(fragments(members[next]))-nominal) <= 1 {
			return header, 2
		}
	}
	return header, 1
}

// collapse folds a single-column run into one paragraph
func (r *Resolver) collapse(run []*model.Block) *model.Block {
	merged := run[0]
	for _, b := range run[1:] {
		merged.Absorb(b)
	}
	merged.Payload = &model.ParagraphPayload{}
	r.dc.Log.Debug().Int("page", merged.Page).Int("blocks", len(run)).Msg("single column table collapsed to paragraph")
	return merged
}

// markFooters flags the paragraphs trailing a table as its footers when no
// more than MaxFooterBlocks of them stay aligned with its columns.
// Footnote-sized lines qualify without the alignment check, and a numbered
// note such as "(1) Amounts in thousands" is turned back into a paragraph.
func (r *Resolver) markFooters(following []*model.Block, t *table) {
	var cands []*model.Block
	prevBottom := t.bottom
	for _, b := range following {
		if len(cands) > r.config.MaxFooterBlocks {
			break
		}
		if b.Page != t.page || b.Unstyled() {
			break
		}
		note := r.dc.Styles.IsLikelyFootnote(b.StyleID)
		if !b.Is(model.TypePara) && !(note && b.Is(model.TypeListItem)) {
			break
		}
		if b.BBox.Top-prevBottom > r.config.MaxFooterGapRatio*t.rowH {
			break
		}
		if b.Size() > t.size || (!note && alignRatio(b, t.spans) < r.config.MinAlignRatio) {
			break
		}
		cands = append(cands, b)
		prevBottom = b.BBox.Bottom()
	}
	if len(cands) == 0 || len(cands) > r.config.MaxFooterBlocks {
		return
	}
	for _, b := range cands {
		p := b.Paragraph()
		if p == nil {
			p = &model.ParagraphPayload{}
			b.Payload = p
		}
		p.TableFooter = true
		p.TableID = t.id
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
