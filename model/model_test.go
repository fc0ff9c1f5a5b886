package model

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

// ============================================================================
// BBox Tests
// ============================================================================

func TestNewBBoxFromEdges(t *testing.T) {
	tests := []struct {
		name                     string
		left, top, right, bottom float64
		want                     BBox
	}{
		{"normal", 10, 20, 50, 70, BBox{10, 20, 40, 50}},
		{"reversed", 50, 70, 10, 20, BBox{10, 20, 40, 50}},
		{"degenerate", 10, 10, 10, 10, BBox{10, 10, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewBBoxFromEdges(tt.left, tt.top, tt.right, tt.bottom)
			if got != tt.want {
				t.Errorf("NewBBoxFromEdges() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBBoxEdges(t *testing.T) {
	b := NewBBox(10, 20, 100, 50)
	if b.Right() != 110 {
		t.Errorf("Right() = %v, want 110", b.Right())
	}
	if b.Bottom() != 70 {
		t.Errorf("Bottom() = %v, want 70", b.Bottom())
	}
	if b.CenterX() != 60 || b.CenterY() != 45 {
		t.Errorf("center = (%v, %v), want (60, 45)", b.CenterX(), b.CenterY())
	}
}

func TestBBoxUnion(t *testing.T) {
	a := NewBBox(0, 0, 10, 10)
	b := NewBBox(20, 5, 10, 10)

	got := a.Union(b)
	want := BBox{0, 0, 30, 15}
	if got != want {
		t.Errorf("Union() = %+v, want %+v", got, want)
	}
	if (BBox{}).Union(b) != b {
		t.Error("zero box should be the identity for Union")
	}
}

func TestBBoxOverlap(t *testing.T) {
	tests := []struct {
		name        string
		a, b        BBox
		horizontal  float64
		vertical    float64
		ratio       float64
		intersected bool
	}{
		{"disjoint", BBox{0, 0, 10, 10}, BBox{20, 20, 10, 10}, 0, 0, 0, false},
		{"half", BBox{0, 0, 10, 10}, BBox{5, 0, 10, 10}, 5, 10, 0.5, true},
		{"contained", BBox{0, 0, 100, 100}, BBox{10, 10, 10, 10}, 10, 10, 1, true},
		{"stacked", BBox{0, 0, 10, 10}, BBox{0, 30, 10, 10}, 10, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.HorizontalOverlap(tt.b); math.Abs(got-tt.horizontal) > 1e-9 {
				t.Errorf("HorizontalOverlap() = %v, want %v", got, tt.horizontal)
			}
			if got := tt.a.VerticalOverlap(tt.b); math.Abs(got-tt.vertical) > 1e-9 {
				t.Errorf("VerticalOverlap() = %v, want %v", got, tt.vertical)
			}
			if got := tt.a.OverlapRatio(tt.b); math.Abs(got-tt.ratio) > 1e-9 {
				t.Errorf("OverlapRatio() = %v, want %v", got, tt.ratio)
			}
			if got := tt.a.Intersects(tt.b); got != tt.intersected {
				t.Errorf("Intersects() = %v, want %v", got, tt.intersected)
			}
		})
	}
}

func TestColumnSpan(t *testing.T) {
	s := ColumnSpan{Left: 10, Right: 50}
	if s.Width() != 40 {
		t.Errorf("Width() = %v, want 40", s.Width())
	}
	if s.Overlap(40, 80) != 10 {
		t.Errorf("Overlap() = %v, want 10", s.Overlap(40, 80))
	}
	if !s.Contains(10) || s.Contains(51) {
		t.Error("Contains() boundary check failed")
	}
	if got := s.Expand(0, 20); got != (ColumnSpan{0, 50}) {
		t.Errorf("Expand() = %+v", got)
	}
}

// ============================================================================
// Run Tests
// ============================================================================

func TestRunRecord(t *testing.T) {
	rec := RunRecord{Text: "Hello", Top: 100, Left: 72, Right: 110, Height: 12, FontFamily: "Times", FontSize: 11, FontWeight: 700}
	run := rec.Run(2, 7)

	if run.Page != 2 || run.Ordinal != 7 {
		t.Errorf("page/ordinal = %d/%d, want 2/7", run.Page, run.Ordinal)
	}
	if run.BBox != (BBox{72, 100, 38, 12}) {
		t.Errorf("BBox = %+v", run.BBox)
	}
	if run.Unstyled() {
		t.Error("run with a font size should be styled")
	}
	if !run.Font.IsBold(600) {
		t.Error("weight 700 should be bold")
	}

	bare := RunRecord{Text: "x", Top: 1, Left: 1, Right: 2, Height: 1}.Run(0, 0)
	if !bare.Unstyled() {
		t.Error("run without font size should be unstyled")
	}
}

func TestPageRecord(t *testing.T) {
	var rec PageRecord
	data := `{"width":612,"height":792,"runs":[{"text":"a","top":10,"left":10,"right":20,"height":10,"font_family":"Arial","font_size":10}]}`
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	page := rec.Page(3)
	if page.Index != 3 || len(page.Runs) != 1 || page.Runs[0].Page != 3 {
		t.Errorf("Page() = %+v", page)
	}
}

// ============================================================================
// Numbering Tests
// ============================================================================

func TestNumberingContinues(t *testing.T) {
	n := func(kind NumberKind, v ...int) *Numbering { return &Numbering{Kind: kind, Values: v} }

	tests := []struct {
		name      string
		cur, prev *Numbering
		want      bool
	}{
		{"next", n(NumberArabic, 2), n(NumberArabic, 1), true},
		{"skip one", n(NumberArabic, 3), n(NumberArabic, 1), true},
		{"skip too far", n(NumberArabic, 5), n(NumberArabic, 1), false},
		{"same", n(NumberArabic, 1), n(NumberArabic, 1), false},
		{"kind mismatch", n(NumberRoman, 2), n(NumberArabic, 1), false},
		{"nested", n(NumberArabic, 2, 2), n(NumberArabic, 2, 1), true},
		{"other parent", n(NumberArabic, 3, 2), n(NumberArabic, 2, 1), false},
		{"nil", nil, n(NumberArabic, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cur.Continues(tt.prev, 2); got != tt.want {
				t.Errorf("Continues() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNumberingExtends(t *testing.T) {
	parent := &Numbering{Kind: NumberArabic, Values: []int{2}}
	if !(&Numbering{Kind: NumberArabic, Values: []int{2, 1}}).Extends(parent) {
		t.Error("2.1 should extend 2")
	}
	if (&Numbering{Kind: NumberArabic, Values: []int{3, 1}}).Extends(parent) {
		t.Error("3.1 should not extend 2")
	}
}

// ============================================================================
// Block Tests
// ============================================================================

func line(text string, left, top, width float64) VisualLine {
	return VisualLine{Text: text, BBox: NewBBox(left, top, width, 12), Font: &FontDescriptor{Family: "Times", Size: 11}}
}

func TestBlockType(t *testing.T) {
	tests := []struct {
		payload Payload
		want    BlockType
	}{
		{nil, TypePara},
		{&HeaderPayload{}, TypeHeader},
		{&ParagraphPayload{}, TypePara},
		{&ListItemPayload{Marker: "-"}, TypeListItem},
		{&TableRowPayload{}, TypeTableRow},
		{&TablePayload{}, TypeTable},
		{&RulePayload{}, TypeRule},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			b := &Block{Payload: tt.payload}
			if got := b.Type(); got != tt.want {
				t.Errorf("Type() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlockAccessorsNilSafe(t *testing.T) {
	var b *Block
	if b.Header() != nil || b.ListItem() != nil || b.TableRow() != nil || b.Table() != nil || b.Paragraph() != nil {
		t.Error("accessors on nil block should return nil")
	}
	p := NewParagraph(0, line("text", 0, 0, 10))
	if p.Header() != nil {
		t.Error("Header() on paragraph should be nil")
	}
	if p.Paragraph() == nil {
		t.Error("Paragraph() should return the payload")
	}
}

func TestBlockAppendLines(t *testing.T) {
	b := NewParagraph(0, line("first", 72, 100, 200))
	b.AppendLines(" ", line("second", 72, 114, 180))

	if b.Text != "first second" {
		t.Errorf("Text = %q", b.Text)
	}
	if b.BBox != (BBox{72, 100, 200, 26}) {
		t.Errorf("BBox = %+v", b.BBox)
	}
	if b.LineCount() != 2 {
		t.Errorf("LineCount() = %d, want 2", b.LineCount())
	}
}

func TestBlockLineCountSameRow(t *testing.T) {
	b := &Block{Payload: &TableRowPayload{}}
	b.AppendLines(" ", line("Apples", 72, 100, 50), line("$1.50", 300, 101, 40))
	if b.LineCount() != 1 {
		t.Errorf("LineCount() = %d, want 1 for cells on one row", b.LineCount())
	}
}

func TestBlockAbsorb(t *testing.T) {
	a := NewParagraph(0, line("The quick", 72, 100, 100))
	a.Flags.Incomplete = true
	b := NewParagraph(0, line("brown fox.", 72, 114, 100))

	a.Absorb(b)
	if a.Text != "The quick brown fox." {
		t.Errorf("Text = %q", a.Text)
	}
	if a.Flags.Incomplete {
		t.Error("flags should follow the absorbed tail")
	}
	if len(a.Lines) != 2 {
		t.Errorf("Lines = %d, want 2", len(a.Lines))
	}
}

func TestBlockMarshalJSON(t *testing.T) {
	b := &Block{
		Index:   3,
		Page:    1,
		Text:    "1. Scope",
		Level:   0,
		BBox:    NewBBox(72, 90, 60, 14),
		Payload: &HeaderPayload{LevelChain: []string{}, Numbering: &Numbering{Kind: NumberArabic, Values: []int{1}, Marker: "1."}},
	}
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s := string(data)
	for _, want := range []string{`"index":3`, `"page_index":1`, `"type":"header"`, `"sentences":[]`, `"type_payload":{`, `"kind":"arabic"`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON %s missing %s", s, want)
		}
	}
	if strings.Contains(s, "Lines") {
		t.Error("assembly state should not be serialised")
	}
}

// ============================================================================
// Document and Table Tests
// ============================================================================

func rowBlock(page int, start, end, header bool, cells ...string) *Block {
	row := &TableRowPayload{TableID: 1, Header: header, TableStart: start, TableEnd: end}
	for i, c := range cells {
		row.Cells = append(row.Cells, Cell{Text: c, Column: i, ColSpan: 1})
	}
	return &Block{Page: page, Text: strings.Join(cells, " "), Payload: row}
}

func TestDocumentTables(t *testing.T) {
	doc := &Document{Blocks: []*Block{
		NewParagraph(0, line("intro", 0, 0, 10)),
		rowBlock(0, true, false, true, "Item", "Price"),
		rowBlock(0, false, false, false, "Apples", "$1.50"),
		rowBlock(0, false, true, false, "Pears", "$2.00"),
		NewParagraph(0, line("outro", 0, 0, 10)),
	}}

	tables := doc.Tables()
	if len(tables) != 1 {
		t.Fatalf("Tables() = %d tables, want 1", len(tables))
	}
	tbl := tables[0]
	if tbl.RowCount() != 3 || tbl.ColCount() != 2 || tbl.HeaderRows != 1 {
		t.Errorf("table = %v header rows %d", tbl, tbl.HeaderRows)
	}
	if c := tbl.GetCell(2, 1); c == nil || c.Text != "$2.00" {
		t.Errorf("GetCell(2,1) = %+v", c)
	}
}

func TestTableExport(t *testing.T) {
	tbl := &Table{Spans: []ColumnSpan{{0, 10}, {20, 30}}}
	tbl.AddRow([]Cell{{Text: "Name", Column: 0, ColSpan: 1}, {Text: "Note", Column: 1, ColSpan: 1}}, true, BBox{})
	tbl.AddRow([]Cell{{Text: "a, b", Column: 0, ColSpan: 1}, {Text: "say \"hi\"", Column: 1, ColSpan: 1}}, false, BBox{})
	tbl.AddRow([]Cell{{Text: "Subtotal", Column: 0, ColSpan: 2}}, false, BBox{})

	md := tbl.ToMarkdown()
	if !strings.HasPrefix(md, "| Name | Note |\n|---|---|\n") {
		t.Errorf("ToMarkdown() header = %q", md)
	}
	if !strings.Contains(md, "| Subtotal |  |") {
		t.Errorf("ToMarkdown() spanning row = %q", md)
	}

	csv := tbl.ToCSV()
	if !strings.Contains(csv, `"a, b","say ""hi"""`) {
		t.Errorf("ToCSV() = %q", csv)
	}
}

func TestDocumentOutline(t *testing.T) {
	doc := &Document{Blocks: []*Block{
		{Text: "Title", Payload: &HeaderPayload{}},
		{Text: "Body", Payload: &ParagraphPayload{}},
		{Text: "Next", Page: 1, Payload: &HeaderPayload{}},
	}, Pages: make([]PageGeometry, 2)}
	if got := len(doc.Outline()); got != 2 {
		t.Errorf("Outline() = %d headers, want 2", got)
	}
	if doc.PlainText() != "Title\n\nBody\n\nNext" {
		t.Errorf("PlainText() = %q", doc.PlainText())
	}
	if doc.PageCount() != 2 || len(doc.BlocksOnPage(0)) != 2 || len(doc.BlocksOnPage(1)) != 1 {
		t.Errorf("PageCount() = %d, page blocks = %d/%d", doc.PageCount(), len(doc.BlocksOnPage(0)), len(doc.BlocksOnPage(1)))
	}
}

func TestWarningString(t *testing.T) {
	if got := (Warning{Page: -1, Stage: "input", Message: "empty"}).String(); got != "input: empty" {
		t.Errorf("String() = %q", got)
	}
	if got := (Warning{Page: 2, Stage: "layout", Message: "recovered"}).String(); got != "page 2: layout: recovered" {
		t.Errorf("String() = %q", got)
	}
}
