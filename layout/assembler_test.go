package layout

import (
	"context"
	"strings"
	"testing"
	"unicode"

	"github.com/tsawler/blocktree/docctx"
	"github.com/tsawler/blocktree/model"
)

// Helper to create a styled run
func makeRun(txt string, left, top, width, size float64) model.TextRun {
	return model.TextRun{
		Text: txt,
		BBox: model.NewBBox(left, top, width, size),
		Font: &model.FontDescriptor{Family: "Times", Size: size, Weight: 400},
	}
}

// Helper to create a bold run
func makeBold(txt string, left, top, width, size float64) model.TextRun {
	r := makeRun(txt, left, top, width, size)
	r.Font.Weight = 700
	return r
}

// Helper to create a page of runs, numbering them in order
func makePage(index int, runs ...model.TextRun) model.PageInput {
	for i := range runs {
		runs[i].Page = index
		runs[i].Ordinal = i
	}
	return model.PageInput{Index: index, Width: 612, Height: 792, Runs: runs}
}

func assemblePages(t *testing.T, pages ...model.PageInput) (*Assembler, []*model.Block) {
	t.Helper()
	a := NewAssembler(docctx.New())
	a.Prepare(pages)
	blocks, err := a.Assemble(context.Background())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	return a, blocks
}

func nonSpace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// ============================================================================
// Grouping
// ============================================================================

func TestAssembleHeaderAndParagraphs(t *testing.T) {
	_, blocks := assemblePages(t, makePage(0,
		makeBold("1. Introduction", 72, 100, 120, 14),
		makeRun("This report describes the results of the annual", 72, 120, 400, 10),
		makeRun("review of the company and its subsidiaries.", 72, 132, 350, 10),
		makeRun("The board approved the plan.", 72, 160, 250, 10),
	))

	if len(blocks) != 3 {
		for _, b := range blocks {
			t.Logf("block %s", b.Label())
		}
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	if !blocks[0].Is(model.TypeHeader) {
		t.Errorf("block 0 type = %s, want header", blocks[0].Type())
	}
	if n := blocks[0].Numbering(); n == nil || n.Last() != 1 {
		t.Errorf("block 0 numbering = %+v, want 1", n)
	}
	want := "This report describes the results of the annual review of the company and its subsidiaries."
	if blocks[1].Text != want {
		t.Errorf("block 1 text = %q, want %q", blocks[1].Text, want)
	}
	if !blocks[1].Is(model.TypePara) || !blocks[2].Is(model.TypePara) {
		t.Errorf("blocks 1 and 2 should be paragraphs, got %s and %s", blocks[1].Type(), blocks[2].Type())
	}
}

func TestAssembleJoinsContinuation(t *testing.T) {
	_, blocks := assemblePages(t, makePage(0,
		makeBold("1. Introduction", 72, 100, 120, 14),
		makeRun("to the annual report", 72, 116, 150, 10),
	))

	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if got := blocks[0].Text; got != "1. Introduction to the annual report" {
		t.Errorf("text = %q", got)
	}
	if !blocks[0].Is(model.TypeHeader) {
		t.Errorf("type = %s, want header kept from the first block", blocks[0].Type())
	}
}

func TestAssembleTableRows(t *testing.T) {
	var runs []model.TextRun
	rows := [][3]string{
		{"Widget", "Blue", "$10.00"},
		{"Gadget", "Red", "$20.00"},
		{"Gizmo", "Green", "$30.00"},
	}
	for i, r := range rows {
		top := 200 + float64(i)*15
		runs = append(runs,
			makeRun(r[0], 72, top, 40, 10),
			makeRun(r[1], 200, top, 30, 10),
			makeRun(r[2], 400, top, 40, 10),
		)
	}
	_, blocks := assemblePages(t, makePage(0, runs...))

	if len(blocks) != 3 {
		t.Fatalf("expected 3 row blocks, got %d", len(blocks))
	}
	for i, b := range blocks {
		if !b.Is(model.TypeTableRow) {
			t.Errorf("block %d type = %s, want table_row", i, b.Type())
		}
		if len(b.Lines) != 3 {
			t.Errorf("block %d has %d fragments, want 3", i, len(b.Lines))
		}
	}
	if blocks[0].Text != "Widget Blue $10.00" {
		t.Errorf("row 0 text = %q", blocks[0].Text)
	}
}

func TestAssembleListItems(t *testing.T) {
	_, blocks := assemblePages(t, makePage(0,
		makeRun("The following applies:", 72, 100, 200, 10),
		makeRun("• first item of the list", 90, 114, 200, 10),
		makeRun("• second item of the list", 90, 128, 200, 10),
	))

	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	for _, b := range blocks[1:] {
		li := b.ListItem()
		if li == nil {
			t.Fatalf("block %q is %s, want list_item", b.Text, b.Type())
		}
		if li.Marker != "•" {
			t.Errorf("marker = %q, want •", li.Marker)
		}
	}
}

func TestAssembleUnstyledRun(t *testing.T) {
	r := model.TextRun{Text: "12 / 34 -- 56", BBox: model.NewBBox(72, 100, 100, 10)}
	_, blocks := assemblePages(t, makePage(0, r))

	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if !blocks[0].Is(model.TypePara) {
		t.Errorf("type = %s, want para", blocks[0].Type())
	}
	if !blocks[0].Unstyled() {
		t.Error("block should be unstyled")
	}
}

// ============================================================================
// Conservation and recovery
// ============================================================================

func TestAssembleConservesCharacters(t *testing.T) {
	pages := []model.PageInput{
		makePage(0,
			makeBold("ANNUAL REPORT", 200, 100, 150, 16),
			makeRun("Rev", 72, 140, 20, 10),
			makeRun("enue grew in the", 92, 140, 120, 10),
			makeRun("Region", 72, 160, 40, 10),
			makeRun("Q1", 200, 160, 20, 10),
			makeRun("$1,200", 400, 160, 40, 10),
			makeRun("   ", 72, 180, 10, 10),
			model.TextRun{Text: "no style here", BBox: model.NewBBox(72, 200, 90, 10)},
		),
		makePage(1,
			makeRun("and continued to grow", 72, 100, 150, 10),
		),
	}
	a, blocks := assemblePages(t, pages...)

	in := 0
	for _, p := range pages {
		for _, r := range p.Runs {
			in += nonSpace(r.Text)
		}
	}
	out := 0
	for _, b := range blocks {
		out += nonSpace(b.Text)
	}
	if out != in {
		t.Errorf("output has %d characters, input has %d", out, in)
	}
	if a.DroppedRuns() != 1 {
		t.Errorf("DroppedRuns() = %d, want 1 (the blank run)", a.DroppedRuns())
	}
}

func TestAssemblePageRecovers(t *testing.T) {
	dc := docctx.New()
	a := NewAssembler(dc)
	a.Prepare([]model.PageInput{makePage(0,
		makeRun("A line of text.", 72, 100, 200, 10),
		makeRun("Another line of text.", 72, 112, 200, 10),
	)})

	// A missing registry makes classification fail part way through.
	dc.Styles = nil
	blocks := a.AssemblePage(0)

	if len(blocks) != 0 {
		t.Errorf("expected no committed blocks, got %d", len(blocks))
	}
	warnings := dc.Warnings()
	if len(warnings) != 1 || warnings[0].Stage != "assemble" {
		t.Fatalf("warnings = %v, want one assemble warning", warnings)
	}
	if a.DroppedRuns() != 2 {
		t.Errorf("DroppedRuns() = %d, want 2", a.DroppedRuns())
	}
}

func TestAssembleCancelled(t *testing.T) {
	a := NewAssembler(docctx.New())
	a.Prepare([]model.PageInput{makePage(0, makeRun("Text.", 72, 100, 50, 10))})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Assemble(ctx); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}

func TestAssembleIdempotent(t *testing.T) {
	page := makePage(0,
		makeBold("SECTION 1. DEFINITIONS", 72, 100, 200, 12),
		makeRun("Terms used in this agreement have", 72, 120, 300, 10),
		makeRun("the meanings given below.", 72, 132, 200, 10),
	)
	_, first := assemblePages(t, page)
	_, second := assemblePages(t, page)

	if len(first) != len(second) {
		t.Fatalf("block counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Text != second[i].Text || first[i].Type() != second[i].Type() {
			t.Errorf("block %d differs: %s vs %s", i, first[i].Label(), second[i].Label())
		}
	}
}

func TestGeometry(t *testing.T) {
	a, _ := assemblePages(t, makePage(0,
		makeBold("Title", 72, 100, 60, 18),
		makeRun("Body line one", 72, 130, 200, 10),
		makeRun("Body line two", 72, 142, 200, 10),
	))

	geo := a.Geometry()
	if len(geo) != 1 {
		t.Fatalf("expected 1 page, got %d", len(geo))
	}
	if geo[0].LargestFontSize != 18 {
		t.Errorf("LargestFontSize = %v, want 18", geo[0].LargestFontSize)
	}
	if geo[0].ModalSpacing != 2 {
		t.Errorf("ModalSpacing = %v, want 2", geo[0].ModalSpacing)
	}
	if geo[0].Columns != 1 {
		t.Errorf("Columns = %d, want 1", geo[0].Columns)
	}
}

func TestPayloadFor(t *testing.T) {
	a := NewAssembler(docctx.New())
	l := model.VisualLine{Text: "(a) the first condition", Font: &model.FontDescriptor{Size: 10}}
	res := a.dc.Classifier.Classify(l.Text, nil)
	p := PayloadFor(res)
	li, ok := p.(*model.ListItemPayload)
	if !ok {
		t.Fatalf("payload = %T, want list item", p)
	}
	if !strings.Contains(li.Marker, "a") {
		t.Errorf("marker = %q", li.Marker)
	}
}
