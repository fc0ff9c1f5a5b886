package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// BlockType is the semantic type of a block
type BlockType string

const (
	TypeHeader   BlockType = "header"
	TypePara     BlockType = "para"
	TypeListItem BlockType = "list_item"
	TypeTableRow BlockType = "table_row"
	TypeTable    BlockType = "table"
	TypeRule     BlockType = "rule"
)

// NumberKind identifies the numbering scheme of a numbered line
type NumberKind string

const (
	NumberArabic NumberKind = "arabic"
	NumberRoman  NumberKind = "roman"
	NumberLetter NumberKind = "letter"
)

// Numbering is the parsed prefix of a numbered line such as "2.1." or "(iv)".
type Numbering struct {
	Kind NumberKind `json:"kind"`
	// Values holds one ordinal per dotted segment; "2.1" yields [2 1].
	Values []int  `json:"values"`
	Marker string `json:"marker"`
	Upper  bool   `json:"upper,omitempty"`
	// Ambiguous is set for single letters that are also roman numerals ("i", "v").
	Ambiguous bool `json:"ambiguous,omitempty"`
}

// Depth returns the number of dotted segments
func (n *Numbering) Depth() int {
	if n == nil {
		return 0
	}
	return len(n.Values)
}

// Last returns the final ordinal, or 0 for a nil numbering
func (n *Numbering) Last() int {
	if n == nil || len(n.Values) == 0 {
		return 0
	}
	return n.Values[len(n.Values)-1]
}

// Continues reports whether n follows prev in the same sequence: same kind,
// same depth, equal parent segments and a final ordinal advanced by 1..slack.
func (n *Numbering) Continues(prev *Numbering, slack int) bool {
	if n == nil || prev == nil || n.Kind != prev.Kind || n.Depth() != prev.Depth() {
		return false
	}
	for i := 0; i < len(n.Values)-1; i++ {
		if n.Values[i] != prev.Values[i] {
			return false
		}
	}
	d := n.Last() - prev.Last()
	return d >= 1 && d <= slack
}

// Extends reports whether n is a direct child of parent ("2.1" under "2").
func (n *Numbering) Extends(parent *Numbering) bool {
	if n == nil || parent == nil || n.Kind != parent.Kind || n.Depth() != parent.Depth()+1 {
		return false
	}
	for i, v := range parent.Values {
		if n.Values[i] != v {
			return false
		}
	}
	return true
}

// LineFlags are the derived line flags the assembler uses for join decisions
type LineFlags struct {
	Incomplete bool
	Continuing bool
	Numbered   bool
	Caps       bool
}

// Payload is the type-specific part of a block. The set of implementations is
// closed: HeaderPayload, ParagraphPayload, ListItemPayload, TableRowPayload,
// TablePayload and RulePayload.
type Payload interface {
	BlockType() BlockType
	payload()
}

// HeaderPayload carries the heading chain from the outermost ancestor header
// down to this one.
type HeaderPayload struct {
	LevelChain []string   `json:"level_chain"`
	Numbering  *Numbering `json:"numbering,omitempty"`
	Caps       bool       `json:"caps,omitempty"`
}

// ParagraphPayload marks plain text. TableFooter is set on notes trailing a
// table that stayed column aligned with it.
type ParagraphPayload struct {
	TableFooter bool `json:"table_footer,omitempty"`
	TableID     int  `json:"table_id,omitempty"`
}

// ListItemPayload carries the list marker
type ListItemPayload struct {
	Marker    string     `json:"marker"`
	Bullet    string     `json:"bullet,omitempty"`
	Numbering *Numbering `json:"numbering,omitempty"`
}

// TableRowPayload carries a table row's cells and table membership markers
type TableRowPayload struct {
	TableID    int          `json:"table_id"`
	Cells      []Cell       `json:"cells,omitempty"`
	Spans      []ColumnSpan `json:"spans,omitempty"`
	Header     bool         `json:"header,omitempty"`
	RowGroup   bool         `json:"row_group,omitempty"`
	TableStart bool         `json:"table_start,omitempty"`
	TableEnd   bool         `json:"table_end,omitempty"`
}

// TablePayload holds a whole table when rows are grouped into one block
type TablePayload struct {
	Table *Table `json:"table"`
}

// RulePayload marks a horizontal rule drawn with text glyphs
type RulePayload struct{}

func (HeaderPayload) BlockType() BlockType    { return TypeHeader }
func (ParagraphPayload) BlockType() BlockType { return TypePara }
func (ListItemPayload) BlockType() BlockType  { return TypeListItem }
func (TableRowPayload) BlockType() BlockType  { return TypeTableRow }
func (TablePayload) BlockType() BlockType     { return TypeTable }
func (RulePayload) BlockType() BlockType      { return TypeRule }

func (HeaderPayload) payload()    {}
func (ParagraphPayload) payload() {}
func (ListItemPayload) payload()  {}
func (TableRowPayload) payload()  {}
func (TablePayload) payload()     {}
func (RulePayload) payload()      {}

// Block is the output unit of the pipeline.
type Block struct {
	// Index is assigned once reading order is final.
	Index     int
	Page      int
	Text      string
	Sentences []string
	Level     int
	BBox      BBox
	Payload   Payload

	// Assembly state, not serialised.
	Lines     []VisualLine
	StyleID   int
	Font      *FontDescriptor
	Alignment Alignment
	Flags     LineFlags
}

// Type returns the block's semantic type, derived from its payload
func (b *Block) Type() BlockType {
	if b == nil || b.Payload == nil {
		return TypePara
	}
	return b.Payload.BlockType()
}

// Is reports whether the block has type t
func (b *Block) Is(t BlockType) bool {
	return b.Type() == t
}

// Header returns the header payload, or nil if the block is not a header
func (b *Block) Header() *HeaderPayload {
	if b == nil {
		return nil
	}
	if p, ok := b.Payload.(*HeaderPayload); ok {
		return p
	}
	return nil
}

// ListItem returns the list item payload, or nil if the block is not a list item
func (b *Block) ListItem() *ListItemPayload {
	if b == nil {
		return nil
	}
	if p, ok := b.Payload.(*ListItemPayload); ok {
		return p
	}
	return nil
}

// TableRow returns the table row payload, or nil if the block is not a table row
func (b *Block) TableRow() *TableRowPayload {
	if b == nil {
		return nil
	}
	if p, ok := b.Payload.(*TableRowPayload); ok {
		return p
	}
	return nil
}

// Paragraph returns the paragraph payload, or nil if the block is not a paragraph
func (b *Block) Paragraph() *ParagraphPayload {
	if b == nil {
		return nil
	}
	if p, ok := b.Payload.(*ParagraphPayload); ok {
		return p
	}
	return nil
}

// Table returns the grouped table, or nil if the block is not a table
func (b *Block) Table() *Table {
	if b == nil {
		return nil
	}
	if p, ok := b.Payload.(*TablePayload); ok {
		return p.Table
	}
	return nil
}

// Numbering returns the numbering of a header or list item, if any
func (b *Block) Numbering() *Numbering {
	switch p := b.Payload.(type) {
	case *HeaderPayload:
		return p.Numbering
	case *ListItemPayload:
		return p.Numbering
	}
	return nil
}

// Size returns the block's representative font size
func (b *Block) Size() float64 {
	if b.Font != nil && b.Font.Size > 0 {
		return b.Font.Size
	}
	if len(b.Lines) > 0 {
		return b.Lines[0].Size()
	}
	return b.BBox.Height
}

// Weight returns the block's representative font weight
func (b *Block) Weight() int {
	if b.Font == nil {
		return 0
	}
	return b.Font.Weight
}

// Unstyled reports whether every line of the block lacked style metadata
func (b *Block) Unstyled() bool {
	if len(b.Lines) == 0 {
		return b.Font == nil
	}
	for _, l := range b.Lines {
		if !l.Unstyled {
			return false
		}
	}
	return true
}

// LastLine returns the block's last visual line, or nil
func (b *Block) LastLine() *VisualLine {
	if len(b.Lines) == 0 {
		return nil
	}
	return &b.Lines[len(b.Lines)-1]
}

// LineCount returns the number of distinct visual rows in the block. Lines
// whose tops differ by less than half a line height count once.
func (b *Block) LineCount() int {
	if len(b.Lines) == 0 {
		if b.Text == "" {
			return 0
		}
		return 1
	}
	count := 0
	var tops []float64
	for _, l := range b.Lines {
		seen := false
		for _, t := range tops {
			if math.Abs(t-l.BBox.Top) < l.BBox.Height/2 {
				seen = true
				break
			}
		}
		if !seen {
			tops = append(tops, l.BBox.Top)
			count++
		}
	}
	return count
}

// AppendLines adds lines to the block, extending its box and text
func (b *Block) AppendLines(sep string, lines ...VisualLine) {
	for _, l := range lines {
		b.Lines = append(b.Lines, l)
		b.BBox = b.BBox.Union(l.BBox)
		if b.Text == "" {
			b.Text = l.Text
		} else if l.Text != "" {
			b.Text += sep + l.Text
		}
	}
}

// Absorb appends other's lines and text onto b
func (b *Block) Absorb(other *Block) {
	b.Lines = append(b.Lines, other.Lines...)
	b.BBox = b.BBox.Union(other.BBox)
	switch {
	case b.Text == "":
		b.Text = other.Text
	case other.Text != "":
		b.Text = strings.TrimRight(b.Text, " ") + " " + strings.TrimLeft(other.Text, " ")
	}
	b.Flags.Incomplete = other.Flags.Incomplete
}

// Label returns a short human readable description used in logs and warnings
func (b *Block) Label() string {
	t := b.Text
	if r := []rune(t); len(r) > 40 {
		t = string(r[:40]) + "..."
	}
	return string(b.Type()) + "@" + strconv.Itoa(b.Page) + " " + strconv.Quote(t)
}

type blockJSON struct {
	Index     int       `json:"index"`
	Page      int       `json:"page_index"`
	Type      BlockType `json:"type"`
	Text      string    `json:"text"`
	Sentences []string  `json:"sentences"`
	Level     int       `json:"level"`
	BBox      BBox      `json:"bbox"`
	Payload   Payload   `json:"type_payload,omitempty"`
}

// MarshalJSON encodes the block as an output record
func (b *Block) MarshalJSON() ([]byte, error) {
	sentences := b.Sentences
	if sentences == nil {
		sentences = []string{}
	}
	return json.Marshal(blockJSON{
		Index:     b.Index,
		Page:      b.Page,
		Type:      b.Type(),
		Text:      b.Text,
		Sentences: sentences,
		Level:     b.Level,
		BBox:      b.BBox,
		Payload:   b.Payload,
	})
}

// NewParagraph creates a paragraph block from lines
func NewParagraph(page int, lines ...VisualLine) *Block {
	b := &Block{Page: page, Payload: &ParagraphPayload{}}
	b.AppendLines(" ", lines...)
	if len(lines) > 0 {
		b.StyleID = lines[0].StyleID
		b.Font = lines[0].Font
		b.Alignment = lines[0].Alignment
	}
	return b
}
