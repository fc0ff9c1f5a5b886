package model

// FontDescriptor is the typographic metadata an extraction backend attaches
// to a text run.
type FontDescriptor struct {
	Family string  `json:"family"`
	Style  string  `json:"style,omitempty"`
	Size   float64 `json:"size"`
	Weight int     `json:"weight,omitempty"`
}

// IsBold reports whether the descriptor's weight is at or above threshold
func (f *FontDescriptor) IsBold(threshold int) bool {
	return f != nil && f.Weight >= threshold
}

// TextRun is an atomic positioned text fragment produced by an extraction
// backend. Runs are read-only once produced.
type TextRun struct {
	Text string
	BBox BBox
	// Font is nil when the backend supplied no usable style metadata.
	Font    *FontDescriptor
	Page    int
	Ordinal int
}

// Unstyled reports whether the run carries no usable style metadata
func (r TextRun) Unstyled() bool {
	return r.Font == nil || r.Font.Size <= 0
}

// RunRecord is the wire form of a text run as emitted by the extraction backend
type RunRecord struct {
	Text       string  `json:"text"`
	Top        float64 `json:"top"`
	Left       float64 `json:"left"`
	Right      float64 `json:"right"`
	Width      float64 `json:"width,omitempty"`
	Height     float64 `json:"height"`
	FontFamily string  `json:"font_family,omitempty"`
	FontStyle  string  `json:"font_style,omitempty"`
	FontSize   float64 `json:"font_size,omitempty"`
	FontWeight int     `json:"font_weight,omitempty"`
}

// Run converts the record into a TextRun. A record without a font size is
// treated as unstyled.
func (r RunRecord) Run(page, ordinal int) TextRun {
	right := r.Right
	if right == 0 && r.Width > 0 {
		right = r.Left + r.Width
	}
	run := TextRun{
		Text:    r.Text,
		BBox:    NewBBoxFromEdges(r.Left, r.Top, right, r.Top+r.Height),
		Page:    page,
		Ordinal: ordinal,
	}
	if r.FontSize > 0 {
		run.Font = &FontDescriptor{
			Family: r.FontFamily,
			Style:  r.FontStyle,
			Size:   r.FontSize,
			Weight: r.FontWeight,
		}
	}
	return run
}

// PageRecord is the wire form of one page of backend output
type PageRecord struct {
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Runs   []RunRecord `json:"runs"`
}

// PageInput is one page of positioned text runs. Run order need not match
// reading order.
type PageInput struct {
	Index  int
	Width  float64
	Height float64
	Runs   []TextRun
}

// Page converts the record into a PageInput, numbering runs in record order
func (p PageRecord) Page(index int) PageInput {
	in := PageInput{
		Index:  index,
		Width:  p.Width,
		Height: p.Height,
		Runs:   make([]TextRun, 0, len(p.Runs)),
	}
	for i, r := range p.Runs {
		in.Runs = append(in.Runs, r.Run(index, i))
	}
	return in
}

// Alignment is the horizontal placement of a line relative to the page's
// text margins.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// String returns the alignment name
func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// VisualLine is one or more runs sharing a visual baseline, merged into a
// single string. Lines exist only while a page is being assembled and inside
// blocks that still need geometry for the table and hierarchy passes.
type VisualLine struct {
	Runs      []TextRun
	Text      string
	BBox      BBox
	Font      *FontDescriptor // modal font by character count
	StyleID   int
	Alignment Alignment
	Unstyled  bool
	Page      int
}

// Size returns the line's representative font size, or its box height when
// the line is unstyled.
func (l *VisualLine) Size() float64 {
	if l.Font != nil && l.Font.Size > 0 {
		return l.Font.Size
	}
	return l.BBox.Height
}

// Weight returns the representative font weight (0 when unknown)
func (l *VisualLine) Weight() int {
	if l.Font == nil {
		return 0
	}
	return l.Font.Weight
}
