package layout

import (
	"context"
	"fmt"
	"strings"

	"github.com/tsawler/blocktree/docctx"
	"github.com/tsawler/blocktree/lineclass"
	"github.com/tsawler/blocktree/model"
	"github.com/tsawler/blocktree/style"
)

// Assembler builds blocks from the positioned text runs of a document's
// pages. One Assembler serves one document.
type Assembler struct {
	dc      *docctx.Context
	config  Config
	columns *ColumnReorderer

	pages   []*pageState
	headers []string
	footers []string
	dropped int
}

// NewAssembler creates an assembler with the default configuration
func NewAssembler(dc *docctx.Context) *Assembler {
	return NewAssemblerWithConfig(dc, DefaultConfig())
}

// NewAssemblerWithConfig creates an assembler with a custom configuration
func NewAssemblerWithConfig(dc *docctx.Context, config Config) *Assembler {
	a := &Assembler{
		dc:      dc,
		config:  config,
		columns: NewColumnReordererWithConfig(config.Columns),
	}
	a.columns.Rebuild = a.Rebuild
	a.columns.log = dc.Log
	return a
}

// Config returns the assembler configuration
func (a *Assembler) Config() Config {
	return a.config
}

// Prepare builds visual lines for every page, removes running headers,
// footers and page numbers, and records every line's style in the
// document's style registry. It must run before AssemblePage.
func (a *Assembler) Prepare(pages []model.PageInput) {
	a.pages = make([]*pageState, len(pages))
	a.headers, a.footers, a.dropped = nil, nil, 0
	for i, p := range pages {
		lines, rows, dropped := a.buildLines(p)
		a.pages[i] = newPageState(p, lines, rows, dropped)
	}
	a.filterMargins()
	for _, ps := range a.pages {
		a.measure(ps)
		a.dropped += ps.dropped
	}
	a.dc.Log.Debug().
		Int("pages", len(a.pages)).
		Int("styles", a.dc.Styles.Len()).
		Int("dropped", a.dropped).
		Msg("pages prepared")
}

// PageCount returns the number of prepared pages
func (a *Assembler) PageCount() int {
	return len(a.pages)
}

// pageRun is the state of one page's assembly. The blocks it holds are
// consistent after every step, so a failure part way through still leaves
// a usable block list.
type pageRun struct {
	page    *pageState
	blocks  []*model.Block
	joined  []*model.Block
	next    int
	joining bool
}

// committed returns the blocks built so far
func (r *pageRun) committed() []*model.Block {
	if !r.joining {
		return r.blocks
	}
	out := append([]*model.Block(nil), r.joined...)
	return append(out, r.blocks[r.next:]...)
}

// AssemblePage groups one prepared page's lines into blocks in scan order
// and applies the paragraph-join correction. A failure on the page is
// recovered: the blocks committed so far are returned, the runs they do not
// hold are counted as dropped, and a warning is recorded.
func (a *Assembler) AssemblePage(i int) (blocks []*model.Block) {
	if i < 0 || i >= len(a.pages) {
		return nil
	}
	run := &pageRun{page: a.pages[i]}
	defer func() {
		if r := recover(); r != nil {
			blocks = run.committed()
			lost := run.page.runCount() - countRuns(blocks)
			a.dropped += lost
			a.dc.Warn(run.page.input.Index, "assemble", "page assembly failed: %v; kept %d blocks, dropped %d runs", r, len(blocks), lost)
		}
	}()

	results := a.classifyLines(run.page)
	a.group(run, results)
	a.joinPass(run)
	a.dc.Log.Debug().
		Int("page", run.page.input.Index).
		Int("lines", len(run.page.lines)).
		Int("blocks", len(run.blocks)).
		Msg("page assembled")
	return run.blocks
}

// OrderPage restores the reading order of an assembled page's blocks and
// records the page's column count.
func (a *Assembler) OrderPage(i int, blocks []*model.Block) []*model.Block {
	ord := a.columns.Reorder(blocks)
	if i >= 0 && i < len(a.pages) {
		a.pages[i].columns = ord.Columns
	}
	a.dc.Log.Debug().Int("page", i).Str("mode", ord.Mode.String()).Int("columns", ord.Columns).Msg("page ordered")
	return ord.Blocks
}

// Assemble runs every prepared page through assembly, column ordering and
// cross-page splicing. The context is checked between pages only.
func (a *Assembler) Assemble(ctx context.Context) ([]*model.Block, error) {
	var doc []*model.Block
	for i := range a.pages {
		if err := ctx.Err(); err != nil {
			return doc, fmt.Errorf("assemble page %d: %w", i, err)
		}
		blocks := a.OrderPage(i, a.AssemblePage(i))
		doc = SpliceAcrossPages(doc, blocks)
	}
	return doc, nil
}

// Geometry returns the geometry and statistics of every prepared page
func (a *Assembler) Geometry() []model.PageGeometry {
	out := make([]model.PageGeometry, 0, len(a.pages))
	for _, ps := range a.pages {
		out = append(out, ps.geometry())
	}
	return out
}

// RunningHeaders returns the running header texts removed from the pages
func (a *Assembler) RunningHeaders() []string {
	return a.headers
}

// RunningFooters returns the running footer texts removed from the pages
func (a *Assembler) RunningFooters() []string {
	return a.footers
}

// DroppedRuns returns the number of input runs not held by any block
func (a *Assembler) DroppedRuns() int {
	return a.dropped
}

// classifyLines classifies every line of a page. A row of two or more
// fragments is first classified as a whole; when it reads as a table row
// every fragment carries that result, otherwise each fragment is classified
// on its own.
func (a *Assembler) classifyLines(ps *pageState) []lineclass.Result {
	results := make([]lineclass.Result, len(ps.lines))
	for _, row := range ps.rows {
		if len(row) > 1 && !ps.lines[row[0]].Unstyled {
			res := a.dc.Classifier.Classify(rowText(ps.lines, row), a.visual(&ps.lines[row[0]], len(row)))
			if res.Type == model.TypeTableRow {
				for _, i := range row {
					results[i] = res
				}
				continue
			}
		}
		for _, i := range row {
			results[i] = a.classifyLine(&ps.lines[i])
		}
	}
	return results
}

// classifyLine classifies a single line. Unstyled lines are always
// paragraphs.
func (a *Assembler) classifyLine(l *model.VisualLine) lineclass.Result {
	if l.Unstyled {
		return lineclass.Result{Type: model.TypePara}
	}
	return a.dc.Classifier.Classify(l.Text, a.visual(l, 1))
}

// visual gathers the typographic evidence for a line
func (a *Assembler) visual(l *model.VisualLine, cells int) *lineclass.Visual {
	if l.Unstyled {
		return nil
	}
	v := &lineclass.Visual{
		Bold:         a.dc.Styles.IsBold(l.StyleID),
		Centered:     l.Alignment == model.AlignCenter,
		LikelyHeader: a.dc.Styles.IsLikelyHeader(l.StyleID),
		Footnote:     a.dc.Styles.IsLikelyFootnote(l.StyleID),
		Cells:        cells,
	}
	if med := a.dc.Styles.MedianSize(); med > 0 {
		v.SizeRatio = l.Size() / med
	}
	return v
}

// group walks a page's lines in row order and either adds each line to a
// candidate block or starts a new block with it.
func (a *Assembler) group(run *pageRun, results []lineclass.Result) {
	ps := run.page
	lastRow := make(map[*model.Block]int)
	var last *model.Block
	for i := range ps.lines {
		l := &ps.lines[i]
		row := ps.rowOf[i]
		cand := candidate(run.blocks, last, lastRow, l, row)
		if cand != nil {
			in := &groupInput{
				block:   cand,
				last:    cand.LastLine(),
				line:    l,
				res:     results[i],
				sameRow: lastRow[cand] == row,
				stats:   &ps.stats,
			}
			if v, _ := a.decideGroup(in); v == join {
				cand.AppendLines(" ", *l)
				cand.Flags.Incomplete = results[i].Features.Flags.Incomplete
				lastRow[cand] = row
				last = cand
				continue
			}
		}
		b := newBlock(ps.input.Index, *l, results[i])
		run.blocks = append(run.blocks, b)
		lastRow[b] = row
		last = b
	}
}

// candidate picks the block an incoming line may join: a table row last
// extended on the line's own row, otherwise the lowest block above the line
// that overlaps it horizontally.
func candidate(blocks []*model.Block, last *model.Block, lastRow map[*model.Block]int, l *model.VisualLine, row int) *model.Block {
	if last != nil && lastRow[last] == row && last.Is(model.TypeTableRow) {
		return last
	}
	var best *model.Block
	for _, b := range blocks {
		if b.BBox.HorizontalOverlap(l.BBox) <= 0 {
			continue
		}
		if b.BBox.Bottom() > l.BBox.Top+l.BBox.Height/2 {
			continue
		}
		if best == nil || b.BBox.Bottom() > best.BBox.Bottom() {
			best = b
		}
	}
	return best
}

// newBlock starts a block from its first line
func newBlock(page int, l model.VisualLine, res lineclass.Result) *model.Block {
	b := &model.Block{
		Page:      page,
		StyleID:   l.StyleID,
		Font:      l.Font,
		Alignment: l.Alignment,
		Payload:   PayloadFor(res),
		Flags:     res.Features.Flags,
	}
	if l.Unstyled {
		b.StyleID = style.NoStyle
	}
	b.AppendLines(" ", l)
	return b
}

// Rebuild creates a block from lines split off another block, classifying
// the joined text again.
func (a *Assembler) Rebuild(page int, lines []model.VisualLine) *model.Block {
	if len(lines) == 0 {
		return nil
	}
	first := &lines[0]
	res := a.classifyLine(first)
	if !first.Unstyled && len(lines) > 1 {
		texts := make([]string, 0, len(lines))
		for _, l := range lines {
			texts = append(texts, l.Text)
		}
		res = a.dc.Classifier.Classify(strings.Join(texts, " "), a.visual(first, 1))
	}
	b := newBlock(page, lines[0], res)
	b.AppendLines(" ", lines[1:]...)
	return b
}

// PayloadFor builds the block payload matching a line classification
func PayloadFor(res lineclass.Result) model.Payload {
	switch res.Type {
	case model.TypeHeader:
		return &model.HeaderPayload{Numbering: res.Numbering(), Caps: res.Features.AllCaps}
	case model.TypeListItem:
		marker := res.Features.Bullet
		if marker == "" && res.Features.Numbering != nil {
			marker = res.Features.Numbering.Marker
		}
		return &model.ListItemPayload{
			Marker:    marker,
			Bullet:    res.Features.BulletKind,
			Numbering: res.Features.Numbering,
		}
	case model.TypeTableRow:
		return &model.TableRowPayload{}
	case model.TypeRule:
		return &model.RulePayload{}
	}
	return &model.ParagraphPayload{}
}

func countRuns(blocks []*model.Block) int {
	n := 0
	for _, b := range blocks {
		for _, l := range b.Lines {
			n += len(l.Runs)
		}
	}
	return n
}
