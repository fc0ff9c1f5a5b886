package tables

import (
	"strings"
	"testing"

	"github.com/tsawler/blocktree/docctx"
	"github.com/tsawler/blocktree/model"
	"github.com/tsawler/blocktree/style"
)

// fr is a fragment of a row: its text, left edge and width
type fr struct {
	text  string
	left  float64
	width float64
}

// Helper to create a block whose lines are the given fragments on one row
func fragBlock(p model.Payload, top, size float64, frs ...fr) *model.Block {
	lines := make([]model.VisualLine, 0, len(frs))
	for _, f := range frs {
		lines = append(lines, model.VisualLine{
			Text: f.text,
			BBox: model.NewBBox(f.left, top, f.width, size),
			Font: &model.FontDescriptor{Family: "Times", Size: size, Weight: 400},
		})
	}
	b := model.NewParagraph(0, lines...)
	b.Payload = p
	return b
}

func row(top float64, frs ...fr) *model.Block {
	return fragBlock(&model.TableRowPayload{}, top, 10, frs...)
}

func para(top float64, frs ...fr) *model.Block {
	return fragBlock(&model.ParagraphPayload{}, top, 10, frs...)
}

func productRows() []*model.Block {
	return []*model.Block{
		row(200, fr{"Widget", 72, 40}, fr{"Blue", 200, 30}, fr{"$10.00", 400, 40}),
		row(215, fr{"Gadget", 72, 40}, fr{"Red", 200, 25}, fr{"$20.00", 400, 40}),
		row(230, fr{"Gizmo", 72, 35}, fr{"Green", 200, 35}, fr{"$30.00", 400, 40}),
	}
}

func resolve(blocks []*model.Block) []*model.Block {
	return NewResolver(docctx.New()).Resolve(blocks)
}

func cellTexts(b *model.Block) []string {
	row := b.TableRow()
	if row == nil {
		return nil
	}
	out := make([]string, 0, len(row.Cells))
	for _, c := range row.Cells {
		out = append(out, c.Text)
	}
	return out
}

// ============================================================================
// Resolve
// ============================================================================

func TestResolveHeaderAndDataRows(t *testing.T) {
	out := resolve(productRows())

	if len(out) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(out))
	}
	for i, b := range out {
		r := b.TableRow()
		if r == nil {
			t.Fatalf("block %d is %s, want table_row", i, b.Type())
		}
		if r.TableID != 1 {
			t.Errorf("row %d TableID = %d, want 1", i, r.TableID)
		}
		if len(r.Spans) != 3 {
			t.Errorf("row %d has %d spans, want 3", i, len(r.Spans))
		}
		if got := r.Header; got != (i == 0) {
			t.Errorf("row %d Header = %v", i, got)
		}
	}
	if !out[0].TableRow().TableStart || !out[2].TableRow().TableEnd {
		t.Error("expected start marker on the first row and end marker on the last")
	}
	if out[1].TableRow().TableStart || out[1].TableRow().TableEnd {
		t.Error("middle row should carry no markers")
	}
	want := []string{"Gadget", "Red", "$20.00"}
	got := cellTexts(out[1])
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("row 1 cells = %q, want %q", got, want)
	}
}

func TestResolveMissingCell(t *testing.T) {
	blocks := productRows()
	blocks = append(blocks, row(245, fr{"Doohickey", 72, 50}, fr{"$40.00", 400, 40}))
	out := resolve(blocks)

	r := out[3].TableRow()
	if r == nil || r.RowGroup {
		t.Fatalf("row 3 should be a plain row, got %+v", r)
	}
	if len(r.Cells) != 2 || r.Cells[0].Column != 0 || r.Cells[1].Column != 2 {
		t.Errorf("cells = %+v, want columns 0 and 2", r.Cells)
	}
}

func TestResolveRowGroup(t *testing.T) {
	blocks := productRows()
	blocks = append(blocks[:2:2], row(222, fr{"Discontinued products below this line", 72, 360}), blocks[2])
	out := resolve(blocks)

	if len(out) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(out))
	}
	r := out[2].TableRow()
	if r == nil || !r.RowGroup {
		t.Fatalf("row 2 should be a row group, got %+v", r)
	}
	if len(r.Cells) != 1 || r.Cells[0].ColSpan != 3 {
		t.Errorf("row group cells = %+v, want one cell spanning 3 columns", r.Cells)
	}
}

func TestResolveSingleColumnCollapses(t *testing.T) {
	out := resolve([]*model.Block{
		row(100, fr{"2021 1,200", 72, 80}),
		row(112, fr{"2022 1,450", 72, 80}),
	})

	if len(out) != 1 {
		t.Fatalf("expected 1 block, got %d", len(out))
	}
	if !out[0].Is(model.TypePara) {
		t.Errorf("type = %s, want para", out[0].Type())
	}
	if out[0].Text != "2021 1,200 2022 1,450" {
		t.Errorf("text = %q", out[0].Text)
	}
}

func TestResolveShortRunReverts(t *testing.T) {
	out := resolve([]*model.Block{
		para(80, fr{"Prices as of today.", 72, 200}),
		row(100, fr{"Widget", 72, 40}, fr{"$10.00", 400, 40}),
	})

	if len(out) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(out))
	}
	if !out[1].Is(model.TypePara) {
		t.Errorf("lone row type = %s, want para", out[1].Type())
	}
}

func TestResolveAdoptsHeaderAbove(t *testing.T) {
	header := fragBlock(&model.HeaderPayload{}, 185, 10, fr{"Item", 72, 30}, fr{"Colour", 200, 40}, fr{"Price", 400, 35})
	blocks := append([]*model.Block{header}, productRows()...)

	out := resolve(blocks)

	if len(out) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(out))
	}
	first := out[0].TableRow()
	if first == nil || !first.Header || !first.TableStart {
		t.Fatalf("adopted header should be the first, header row: %+v", first)
	}
	if out[1].TableRow().Header {
		t.Error("first data row should not be a header once a header is adopted")
	}
}

func TestResolveGroupHeader(t *testing.T) {
	out := resolve([]*model.Block{
		row(100, fr{"Item", 72, 30}, fr{"Price Range", 200, 240}),
		row(112, fr{"Name", 72, 30}, fr{"Low", 200, 20}, fr{"High", 400, 25}),
		row(124, fr{"Widget", 72, 40}, fr{"10", 200, 10}, fr{"20", 400, 10}),
		row(136, fr{"Gadget", 72, 40}, fr{"5", 200, 5}, fr{"15", 400, 10}),
	})

	if len(out) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(out))
	}
	for i, want := range []bool{true, true, false, false} {
		if got := out[i].TableRow().Header; got != want {
			t.Errorf("row %d Header = %v, want %v", i, got, want)
		}
	}
	group := out[0].TableRow().Cells
	if len(group) != 2 || group[1].ColSpan != 2 {
		t.Errorf("group header cells = %+v, want the second cell spanning 2 columns", group)
	}
}

func TestResolveKeyWrap(t *testing.T) {
	out := resolve([]*model.Block{
		row(100, fr{"Revenue", 72, 70}, fr{"$100", 400, 40}),
		para(115, fr{"Total operating", 72, 100}),
		row(127, fr{"expenses", 72, 60}, fr{"$50", 400, 30}),
	})

	if len(out) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out))
	}
	if out[1].Text != "Total operating expenses $50" {
		t.Errorf("text = %q", out[1].Text)
	}
	got := cellTexts(out[1])
	if len(got) != 2 || got[0] != "Total operating expenses" || got[1] != "$50" {
		t.Errorf("cells = %q", got)
	}
}

func TestResolveValueWrap(t *testing.T) {
	out := resolve([]*model.Block{
		row(100, fr{"Address", 72, 50}, fr{"12 Main Street,", 300, 100}),
		para(112, fr{"Springfield", 300, 60}),
		row(130, fr{"Phone", 72, 40}, fr{"555-1234", 300, 50}),
	})

	if len(out) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out))
	}
	got := cellTexts(out[0])
	if len(got) != 2 || got[1] != "12 Main Street, Springfield" {
		t.Errorf("cells = %q", got)
	}
}

func TestResolveParagraphBreaksWideTable(t *testing.T) {
	blocks := productRows()
	note := para(250, fr{"A note that runs across every column of the table", 72, 380})
	blocks = append(blocks[:2:2], note, blocks[2])

	out := resolve(blocks)

	if len(out) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(out))
	}
	if out[2] != note || !note.Is(model.TypePara) {
		t.Error("a paragraph across a three column table should stay a paragraph")
	}
	if !out[1].TableRow().TableEnd {
		t.Error("the table should end before the paragraph")
	}
	if !out[3].Is(model.TypePara) {
		t.Errorf("the lone row after the paragraph should revert, got %s", out[3].Type())
	}
}

func TestResolveLabelBetweenRows(t *testing.T) {
	label := para(145, fr{"Operating expenses", 72, 110})
	blocks := []*model.Block{
		row(100, fr{"Item", 72, 30}, fr{"2019", 300, 30}, fr{"2018", 400, 30}),
		row(115, fr{"Revenue", 72, 50}, fr{"500", 300, 25}, fr{"450", 400, 25}),
		row(130, fr{"Cost of sales", 72, 80}, fr{"200", 300, 25}, fr{"180", 400, 25}),
		label,
		row(160, fr{"Research", 72, 60}, fr{"120", 300, 25}, fr{"110", 400, 25}),
		row(175, fr{"Marketing", 72, 60}, fr{"80", 300, 20}, fr{"70", 400, 20}),
		row(190, fr{"Other", 72, 40}, fr{"10", 300, 15}, fr{"12", 400, 15}),
	}

	out := resolve(blocks)

	if len(out) != 7 {
		t.Fatalf("expected 7 rows, got %d", len(out))
	}
	for i, b := range out {
		r := b.TableRow()
		if r == nil || r.TableID != 1 {
			t.Fatalf("block %d should be a row of table 1, got %s", i, b.Type())
		}
		if r.Header != (i == 0) {
			t.Errorf("row %d header = %v", i, r.Header)
		}
		if r.TableStart != (i == 0) || r.TableEnd != (i == 6) {
			t.Errorf("row %d markers = start %v end %v", i, r.TableStart, r.TableEnd)
		}
	}
	r := label.TableRow()
	if out[3] != label || !r.RowGroup {
		t.Fatalf("the label should be a row group, got %+v", r)
	}
	if len(r.Cells) != 1 || r.Cells[0].ColSpan != 3 || r.Cells[0].Text != "Operating expenses" {
		t.Errorf("label cells = %+v, want one cell spanning 3 columns", r.Cells)
	}
}

func TestResolveMisalignedRowClosesTable(t *testing.T) {
	blocks := productRows()
	blocks = append(blocks, row(245, fr{"Subtotal", 130, 50}, fr{"$60.00", 480, 40}))

	out := resolve(blocks)

	if len(out) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(out))
	}
	if !out[2].TableRow().TableEnd {
		t.Error("the table should end at the last aligned row")
	}
	if !out[3].Is(model.TypePara) {
		t.Errorf("misaligned row should revert to a paragraph, got %s", out[3].Type())
	}
}

func TestResolveTableIDs(t *testing.T) {
	first := productRows()
	second := productRows()
	for _, b := range second {
		b.Page = 1
	}
	out := resolve(append(first, second...))

	if len(out) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(out))
	}
	if out[0].TableRow().TableID != 1 || out[3].TableRow().TableID != 2 {
		t.Errorf("table ids = %d and %d, want 1 and 2", out[0].TableRow().TableID, out[3].TableRow().TableID)
	}

	// Every start marker pairs with exactly one end marker.
	open := false
	for i, b := range out {
		r := b.TableRow()
		if r.TableStart {
			if open {
				t.Fatalf("row %d starts a table inside another", i)
			}
			open = true
		}
		if r.TableEnd {
			if !open {
				t.Fatalf("row %d ends a table that was never started", i)
			}
			open = false
		}
	}
	if open {
		t.Error("last table was never closed")
	}
}

// ============================================================================
// Footers
// ============================================================================

func TestResolveFooters(t *testing.T) {
	footer := fragBlock(&model.ParagraphPayload{}, 246, 8, fr{"* Unaudited", 72, 40})
	blocks := append(productRows(), footer)

	resolve(blocks)

	p := footer.Paragraph()
	if p == nil || !p.TableFooter || p.TableID != 1 {
		t.Errorf("footer payload = %+v, want a footer of table 1", p)
	}
}

func TestResolveFootnoteSizedNote(t *testing.T) {
	dc := docctx.New()
	body := dc.Styles.Classify(style.FromFont(&model.FontDescriptor{Family: "Times", Size: 10, Weight: 400}, model.AlignLeft))
	small := dc.Styles.Classify(style.FromFont(&model.FontDescriptor{Family: "Times", Size: 8, Weight: 400}, model.AlignLeft))
	dc.Styles.Observe(body, 400)
	dc.Styles.Observe(small, 4)

	blocks := productRows()
	for _, b := range blocks {
		b.StyleID = body
	}
	note := fragBlock(&model.ListItemPayload{Marker: "(1)", Numbering: &model.Numbering{Kind: model.NumberArabic, Values: []int{1}}},
		246, 8, fr{"(1) Amounts in thousands", 250, 110})
	note.StyleID = small
	blocks = append(blocks, note)

	NewResolver(dc).Resolve(blocks)

	p := note.Paragraph()
	if p == nil || !p.TableFooter || p.TableID != 1 {
		t.Errorf("note payload = %+v, want a footer of table 1", note.Payload)
	}
	if note.Is(model.TypeHeader) || note.Is(model.TypeListItem) {
		t.Errorf("note type = %v, want para", note.Type())
	}
}

func TestResolveTooManyFooters(t *testing.T) {
	var notes []*model.Block
	blocks := productRows()
	for i := 0; i < 3; i++ {
		n := fragBlock(&model.ParagraphPayload{}, 246+float64(i)*10, 8, fr{"* Note", 72, 40})
		notes = append(notes, n)
		blocks = append(blocks, n)
	}

	resolve(blocks)

	for i, n := range notes {
		if n.Paragraph().TableFooter {
			t.Errorf("note %d should not be a footer", i)
		}
	}
}

// ============================================================================
// Group
// ============================================================================

func TestGroup(t *testing.T) {
	intro := para(150, fr{"Our products:", 72, 80})
	blocks := append([]*model.Block{intro}, productRows()...)
	out := Group(resolve(blocks))

	if len(out) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(out))
	}
	tb := out[1].Table()
	if tb == nil {
		t.Fatalf("block 1 is %s, want table", out[1].Type())
	}
	if tb.RowCount() != 3 || tb.ColCount() != 3 || tb.HeaderRows != 1 {
		t.Errorf("table = %s with %d header rows", tb, tb.HeaderRows)
	}
	if got := tb.Grid(2); got[0] != "Gizmo" || got[2] != "$30.00" {
		t.Errorf("row 2 grid = %q", got)
	}
	if strings.Count(out[1].Text, "\n") != 2 {
		t.Errorf("table text = %q, want one line per row", out[1].Text)
	}
}

// ============================================================================
// Spans and cells
// ============================================================================

func TestNominalColumns(t *testing.T) {
	r := NewResolver(docctx.New())
	rows := []*model.Block{
		row(100, fr{"a", 72, 10}, fr{"b", 200, 10}),
		row(112, fr{"a", 72, 10}, fr{"b", 200, 10}, fr{"c", 300, 10}),
		row(124, fr{"a", 72, 10}, fr{"b", 200, 10}, fr{"c", 300, 10}),
	}
	if got := r.nominalColumns(rows); got != 3 {
		t.Errorf("nominalColumns = %d, want 3", got)
	}
	if got := r.nominalColumns(rows[:2]); got != 3 {
		t.Errorf("nominalColumns on a tie = %d, want the larger count 3", got)
	}
}

func TestFragmentsMergeOverlaps(t *testing.T) {
	b := row(100, fr{"a", 72, 50}, fr{"b", 100, 50}, fr{"c", 300, 10})
	if got := fragments(b); len(got) != 2 || got[0].right != 150 {
		t.Errorf("fragments = %+v, want two with the first ending at 150", got)
	}
}

func TestMergeSpans(t *testing.T) {
	got := mergeSpans([]model.ColumnSpan{{Left: 200, Right: 260}, {Left: 72, Right: 120}, {Left: 240, Right: 300}})
	if len(got) != 2 || got[0].Left != 72 || got[1].Right != 300 {
		t.Errorf("mergeSpans = %+v", got)
	}
}

func TestCellsNearestSpan(t *testing.T) {
	spans := []model.ColumnSpan{{Left: 72, Right: 120}, {Left: 300, Right: 340}}
	b := row(100, fr{"left", 72, 40}, fr{"stray", 250, 30})
	cs, ok := cells(b, spans)
	if !ok {
		t.Fatal("cells should resolve")
	}
	if len(cs) != 2 || cs[1].Column != 1 || cs[1].Text != "stray" {
		t.Errorf("cells = %+v, want the stray fragment in column 1", cs)
	}
}

func TestAlignRatio(t *testing.T) {
	spans := []model.ColumnSpan{{Left: 0, Right: 100}}
	b := row(100, fr{"x", 50, 20}, fr{"y", 200, 20})
	if got := alignRatio(b, spans); got != 0.5 {
		t.Errorf("alignRatio = %v, want 0.5", got)
	}
}
