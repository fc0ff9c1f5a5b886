package hierarchy

import (
	"reflect"
	"strings"
	"testing"

	"github.com/tsawler/blocktree/docctx"
	"github.com/tsawler/blocktree/model"
	"github.com/tsawler/blocktree/style"
)

// fixture builds blocks whose style ids come from one registry
type fixture struct {
	dc *docctx.Context
}

func newFixture() *fixture {
	return &fixture{dc: docctx.New()}
}

func (f *fixture) block(p model.Payload, txt string, size float64, weight int, left float64, align model.Alignment) *model.Block {
	font := &model.FontDescriptor{Family: "Times", Size: size, Weight: weight}
	return &model.Block{
		Text:      txt,
		Payload:   p,
		Font:      font,
		Alignment: align,
		BBox:      model.NewBBox(left, 0, 300, size),
		StyleID:   f.dc.Styles.Classify(style.FromFont(font, align)),
	}
}

func (f *fixture) header(txt string, size float64) *model.Block {
	return f.block(&model.HeaderPayload{}, txt, size, 700, 72, model.AlignLeft)
}

func (f *fixture) numbered(txt string, size float64, n *model.Numbering) *model.Block {
	return f.block(&model.HeaderPayload{Numbering: n}, txt, size, 700, 72, model.AlignLeft)
}

func (f *fixture) caps(txt string, size float64, align model.Alignment) *model.Block {
	return f.block(&model.HeaderPayload{Caps: true}, txt, size, 700, 72, align)
}

func (f *fixture) item(txt string, left float64, n *model.Numbering) *model.Block {
	return f.block(&model.ListItemPayload{Marker: strings.Fields(txt)[0], Numbering: n}, txt, 11, 400, left, model.AlignLeft)
}

func (f *fixture) bullet(txt string, left float64) *model.Block {
	return f.block(&model.ListItemPayload{Marker: "•", Bullet: "•"}, txt, 11, 400, left, model.AlignLeft)
}

func (f *fixture) para(txt string) *model.Block {
	return f.block(&model.ParagraphPayload{}, txt, 11, 400, 72, model.AlignLeft)
}

func num(kind model.NumberKind, values ...int) *model.Numbering {
	return &model.Numbering{Kind: kind, Values: values}
}

func (f *fixture) assign(blocks []*model.Block, collapse bool) []int {
	cfg := DefaultConfig()
	cfg.CollapseSingletons = collapse
	NewIndenterWithConfig(f.dc, cfg).Assign(blocks)
	return levels(blocks)
}

func levels(blocks []*model.Block) []int {
	out := make([]int, len(blocks))
	for i, b := range blocks {
		out[i] = b.Level
	}
	return out
}

func assertLevels(t *testing.T, got, want []int) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("levels = %v, want %v", got, want)
	}
}

// ============================================================================
// Assign
// ============================================================================

func TestAssignCapsNumberedSection(t *testing.T) {
	f := newFixture()
	h := f.block(&model.HeaderPayload{Numbering: num(model.NumberArabic, 1), Caps: true},
		"SECTION 1. DEFINITIONS", 12, 700, 72, model.AlignLeft)
	blocks := []*model.Block{h, f.para("In this agreement the following terms apply.")}

	f.assign(blocks, true)

	if h.Level != 0 {
		t.Errorf("header level = %d, want 0", h.Level)
	}
	if chain := h.Header().LevelChain; len(chain) != 1 || chain[0] != "SECTION 1. DEFINITIONS" {
		t.Errorf("level chain = %q", chain)
	}
}

func TestAssignNestedBySize(t *testing.T) {
	f := newFixture()
	outlook := f.header("Outlook", 14)
	blocks := []*model.Block{
		f.header("Annual Report", 18),
		f.header("Overview", 14),
		f.para("Revenue grew."),
		outlook,
		f.para("We expect growth."),
	}

	assertLevels(t, f.assign(blocks, false), []int{0, 1, 2, 1, 2})

	want := []string{"Annual Report", "Outlook"}
	if got := outlook.Header().LevelChain; !reflect.DeepEqual(got, want) {
		t.Errorf("level chain = %q, want %q", got, want)
	}
}

func TestAssignNumberedHeaders(t *testing.T) {
	f := newFixture()
	sub := f.numbered("1.1 Purpose", 12, num(model.NumberArabic, 1, 1))
	blocks := []*model.Block{
		f.numbered("1. Introduction", 14, num(model.NumberArabic, 1)),
		f.para("Opening text."),
		sub,
		f.para("Purpose text."),
		f.numbered("2. Scope", 14, num(model.NumberArabic, 2)),
		f.para("Scope text."),
	}

	assertLevels(t, f.assign(blocks, false), []int{0, 1, 1, 2, 0, 1})

	want := []string{"1. Introduction", "1.1 Purpose"}
	if got := sub.Header().LevelChain; !reflect.DeepEqual(got, want) {
		t.Errorf("level chain = %q, want %q", got, want)
	}
}

func TestAssignOrdinalContinuation(t *testing.T) {
	f := newFixture()
	blocks := []*model.Block{
		f.header("Terms", 14),
		f.item("1. first", 72, num(model.NumberArabic, 1)),
		f.item("(a) nested", 100, num(model.NumberLetter, 1)),
		// misaligned but continues "1."
		f.item("2. second", 100, num(model.NumberArabic, 2)),
		// "3." was merged away
		f.item("4. fourth", 72, num(model.NumberArabic, 4)),
		f.item("7. seventh", 72, num(model.NumberArabic, 7)),
	}

	assertLevels(t, f.assign(blocks, false), []int{0, 1, 2, 1, 1, 1})
}

func TestAssignListKinds(t *testing.T) {
	f := newFixture()
	blocks := []*model.Block{
		f.header("Obligations", 14),
		f.item("1. The supplier shall", 72, num(model.NumberArabic, 1)),
		f.item("(a) deliver", 72, num(model.NumberLetter, 1)),
		f.item("(i) on time", 72, num(model.NumberRoman, 1)),
		f.item("(b) invoice", 72, num(model.NumberLetter, 2)),
		f.bullet("• monthly", 72),
		f.item("2. The buyer shall", 72, num(model.NumberArabic, 2)),
	}

	assertLevels(t, f.assign(blocks, false), []int{0, 1, 2, 3, 2, 3, 1})
}

func TestAssignAmbiguousLetter(t *testing.T) {
	ambiguous := func(v int) *model.Numbering {
		return &model.Numbering{Kind: model.NumberLetter, Values: []int{v}, Ambiguous: true}
	}
	f := newFixture()
	blocks := []*model.Block{
		f.header("Scope", 14),
		f.item("(a) goods", 72, num(model.NumberLetter, 1)),
		f.item("(i) delivered", 72, ambiguous(9)),
		f.item("(ii) installed", 72, num(model.NumberRoman, 2)),
		f.item("(b) services", 72, num(model.NumberLetter, 2)),
		f.item("(h) repairs", 72, num(model.NumberLetter, 8)),
		f.item("(i) upgrades", 72, ambiguous(9)),
	}

	assertLevels(t, f.assign(blocks, false), []int{0, 1, 2, 2, 1, 1, 1})
	if n := blocks[2].Numbering(); n.Kind != model.NumberRoman || n.Last() != 1 {
		t.Errorf("numbering = %+v, want roman 1", n)
	}
	if n := blocks[6].Numbering(); n.Kind != model.NumberLetter || n.Last() != 9 {
		t.Errorf("numbering = %+v, want letter 9", n)
	}
}

func TestAssignRomanNestedInLetters(t *testing.T) {
	ambiguous := func(v int) *model.Numbering {
		return &model.Numbering{Kind: model.NumberLetter, Values: []int{v}, Ambiguous: true}
	}
	f := newFixture()
	blocks := []*model.Block{
		f.header("Obligations", 14),
		f.item("(a) notice", 72, num(model.NumberLetter, 1)),
		f.item("(b) delivery", 72, num(model.NumberLetter, 2)),
		f.item("(i) by courier", 100, ambiguous(9)),
		f.item("(ii) by post", 100, num(model.NumberRoman, 2)),
		f.item("(iv) by hand", 100, num(model.NumberRoman, 4)),
		f.item("(v) by fax", 100, ambiguous(22)),
		f.item("(c) payment", 72, ambiguous(3)),
	}

	assertLevels(t, f.assign(blocks, false), []int{0, 1, 1, 2, 2, 2, 2, 1})
	if n := blocks[3].Numbering(); n.Kind != model.NumberRoman || n.Last() != 1 {
		t.Errorf("(i) numbering = %+v, want roman 1", n)
	}
	if n := blocks[6].Numbering(); n.Kind != model.NumberRoman || n.Last() != 5 {
		t.Errorf("(v) numbering = %+v, want roman 5", n)
	}
	if n := blocks[7].Numbering(); n.Kind != model.NumberLetter || n.Last() != 3 {
		t.Errorf("(c) numbering = %+v, want letter 3", n)
	}
}

func TestAssignLoneLetterStaysLetter(t *testing.T) {
	f := newFixture()
	blocks := []*model.Block{
		f.header("Terms", 14),
		f.item("(c) fees", 72, &model.Numbering{Kind: model.NumberLetter, Values: []int{3}, Ambiguous: true}),
	}

	assertLevels(t, f.assign(blocks, false), []int{0, 1})
	if n := blocks[1].Numbering(); n.Kind != model.NumberLetter || n.Last() != 3 {
		t.Errorf("numbering = %+v, want letter 3", n)
	}
}

func TestAssignCapsRestart(t *testing.T) {
	f := newFixture()
	blocks := []*model.Block{
		f.header("Preamble", 16),
		f.caps("ARTICLE I", 14, model.AlignCenter),
		f.header("Section 1", 12),
		f.para("Body."),
		f.caps("ARTICLE II", 14, model.AlignCenter),
		f.para("More body."),
	}

	assertLevels(t, f.assign(blocks, false), []int{0, 0, 1, 2, 0, 1})
}

func TestAssignBlocksBeforeFirstHeader(t *testing.T) {
	f := newFixture()
	row := f.block(&model.TableRowPayload{}, "Widget 10", 11, 400, 72, model.AlignLeft)
	blocks := []*model.Block{
		f.para("Cover note."),
		row,
		f.header("Summary", 14),
		f.para("Body."),
	}

	assertLevels(t, f.assign(blocks, false), []int{0, 0, 0, 1})
}

func TestAssignLevelValidity(t *testing.T) {
	f := newFixture()
	blocks := []*model.Block{
		f.para("Preface."),
		f.header("Report", 18),
		f.numbered("1. Scope", 14, num(model.NumberArabic, 1)),
		f.item("(a) one", 90, num(model.NumberLetter, 1)),
		f.item("(i) deep", 120, num(model.NumberRoman, 1)),
		f.para("Text."),
		f.caps("SCHEDULE A", 18, model.AlignCenter),
		f.bullet("• note", 72),
		f.numbered("2. Terms", 14, num(model.NumberArabic, 2)),
		f.numbered("2.1 Payment", 12, num(model.NumberArabic, 2, 1)),
		f.para("Pay on time."),
	}

	for _, collapse := range []bool{false, true} {
		got := f.assign(blocks, collapse)
		highest := -1
		for i, level := range got {
			if level < 0 {
				t.Errorf("collapse=%v: block %d has negative level %d", collapse, i, level)
			}
			if level > highest+1 {
				t.Errorf("collapse=%v: block %d level %d exceeds preceding max %d by more than one", collapse, i, level, highest)
			}
			if level > highest {
				highest = level
			}
		}
	}
}

// ============================================================================
// Collapse
// ============================================================================

func TestCollapse(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		want []int
	}{
		{"no singletons", []int{0, 1, 2, 1, 2}, []int{0, 1, 2, 1, 2}},
		{"deepest singleton", []int{0, 1, 2, 1}, []int{0, 1, 1, 1}},
		{"cascading singletons", []int{0, 1, 2, 3, 3}, []int{0, 0, 0, 1, 1}},
		{"single root kept", []int{0, 1, 1}, []int{0, 1, 1}},
		{"one block", []int{0}, []int{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := make([]*model.Block, len(tt.in))
			for i, level := range tt.in {
				blocks[i] = &model.Block{Level: level}
			}
			NewIndenter(docctx.New()).collapse(blocks)
			assertLevels(t, levels(blocks), tt.want)
		})
	}
}

func TestAssignCollapsesByDefault(t *testing.T) {
	f := newFixture()
	blocks := []*model.Block{
		f.header("Report", 18),
		f.header("Only Section", 14),
		f.para("First."),
		f.para("Second."),
	}

	NewIndenter(f.dc).Assign(blocks)

	assertLevels(t, levels(blocks), []int{0, 0, 1, 1})
}

// ============================================================================
// Outranks
// ============================================================================

func TestOutranks(t *testing.T) {
	m := &machine{in: NewIndenter(docctx.New())}
	base := record{size: 11, left: 72}

	tests := []struct {
		name string
		e, r func(record) record
		want bool
	}{
		{"larger", func(r record) record { r.size = 14; return r }, nil, true},
		{"smaller", nil, func(r record) record { r.size = 14; return r }, false},
		{"within size tolerance", func(r record) record { r.size = 11.5; return r }, nil, false},
		{"bolder", func(r record) record { r.bold = true; return r }, nil, true},
		{"header over list item", func(r record) record { r.header = true; return r }, nil, true},
		{"caps", func(r record) record { r.caps = true; return r }, nil, true},
		{"further left", nil, func(r record) record { r.left = 100; return r }, true},
		{"indent within tolerance", nil, func(r record) record { r.left = 85; return r }, false},
		{"centred", func(r record) record { r.align = model.AlignCenter; return r }, nil, true},
		{"outer list kind", func(r record) record { r.kind = "arabic"; return r }, func(r record) record { r.kind = "letter"; return r }, true},
		{"inner list kind", func(r record) record { r.kind = "roman"; return r }, func(r record) record { r.kind = "letter"; return r }, false},
		{"same class", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, r := base, base
			if tt.e != nil {
				e = tt.e(e)
			}
			if tt.r != nil {
				r = tt.r(r)
			}
			if got := m.outranks(&e, &r); got != tt.want {
				t.Errorf("outranks = %v, want %v", got, tt.want)
			}
		})
	}
}
