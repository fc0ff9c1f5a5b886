package hierarchy

import (
	"strings"

	"github.com/tsawler/blocktree/docctx"
	"github.com/tsawler/blocktree/lineclass"
	"github.com/tsawler/blocktree/model"
	"github.com/tsawler/blocktree/style"
)

// Indenter assigns block levels for one document
type Indenter struct {
	config Config
	dc     *docctx.Context
}

// NewIndenter creates an indenter with the default configuration
func NewIndenter(dc *docctx.Context) *Indenter {
	return NewIndenterWithConfig(dc, DefaultConfig())
}

// NewIndenterWithConfig creates an indenter with a custom configuration
func NewIndenterWithConfig(dc *docctx.Context, config Config) *Indenter {
	return &Indenter{config: config, dc: dc}
}

// Config returns the indenter configuration
func (in *Indenter) Config() Config {
	return in.config
}

// record is one header or list item class in the arena
type record struct {
	header  bool
	styleID int
	size    float64
	bold    bool
	caps    bool
	align   model.Alignment
	left    float64
	kind    string
	last    *model.Numbering
	level   int
	text    string
}

// kindRank orders list kinds from outermost to innermost
func kindRank(kind string) int {
	switch kind {
	case string(model.NumberArabic):
		return 0
	case string(model.NumberLetter):
		return 1
	case string(model.NumberRoman):
		return 2
	case "bullet":
		return 3
	}
	return -1
}

// machine is the state of one Assign call. stack holds arena indices,
// outermost first.
type machine struct {
	in      *Indenter
	arena   []record
	stack   []int
	largest map[int]float64
}

// Assign sets the level of every block and the level chain of every header.
// Blocks must be in final reading order.
func (in *Indenter) Assign(blocks []*model.Block) {
	m := &machine{in: in, largest: pageLargest(blocks)}
	nearest := -1
	for _, b := range blocks {
		if !b.Is(model.TypeHeader) && !b.Is(model.TypeListItem) {
			b.Level = nearest + 1
			continue
		}
		r := m.recordOf(b)
		b.Level = m.place(b, r)
		if p := b.Header(); p != nil {
			p.LevelChain = m.chain()
			nearest = b.Level
		}
	}
	if in.config.CollapseSingletons {
		in.collapse(blocks)
	}
}

func (m *machine) recordOf(b *model.Block) record {
	r := record{
		header:  b.Is(model.TypeHeader),
		styleID: b.StyleID,
		size:    b.Size(),
		bold:    b.Weight() >= m.boldWeight(),
		caps:    b.Flags.Caps,
		align:   b.Alignment,
		left:    b.BBox.Left,
		last:    b.Numbering(),
		text:    strings.Join(strings.Fields(b.Text), " "),
	}
	switch p := b.Payload.(type) {
	case *model.HeaderPayload:
		r.caps = r.caps || p.Caps
	case *model.ListItemPayload:
		r.kind = "bullet"
	}
	if r.last != nil {
		r.kind = string(r.last.Kind)
	}
	if b.Unstyled() {
		r.styleID = style.NoStyle
	}
	return r
}

func (m *machine) boldWeight() int {
	if m.in.dc != nil && m.in.dc.Styles != nil {
		return m.in.dc.Styles.Config().BoldWeight
	}
	return style.DefaultConfig().BoldWeight
}

// place positions one header or list item and returns its level
func (m *machine) place(b *model.Block, r record) int {
	r = m.disambiguate(b, r)
	if k := m.continuation(r); k >= 0 {
		return m.replace(k, r)
	}
	if k := m.parent(r); k >= 0 {
		m.stack = m.stack[:k+1]
		r.level = m.at(k).level + 1
		m.push(r)
		return r.level
	}
	if m.restarts(b, r) {
		if k := m.sameClass(r); k >= 0 {
			return m.replace(k, r)
		}
		m.stack = m.stack[:0]
		r.level = 0
		m.push(r)
		m.in.dc.Log.Debug().Int("page", b.Page).Str("block", b.Label()).Msg("caps header restarts hierarchy")
		return 0
	}
	for len(m.stack) > 0 {
		top := m.at(len(m.stack) - 1)
		if m.outranks(top, &r) {
			r.level = top.level + 1
			m.push(r)
			return r.level
		}
		m.stack = m.stack[:len(m.stack)-1]
	}
	r.level = 0
	m.push(r)
	return 0
}

func (m *machine) at(k int) *record {
	return &m.arena[m.stack[k]]
}

func (m *machine) push(r record) {
	m.arena = append(m.arena, r)
	m.stack = append(m.stack, len(m.arena)-1)
}

// replace closes everything from stack position k up and opens r as a
// sibling of the class that was at k.
func (m *machine) replace(k int, r record) int {
	r.level = m.at(k).level
	m.stack = m.stack[:k]
	m.push(r)
	return r.level
}

// continuation returns the stack position of the open class whose numbering
// r continues, searching from the top, or -1.
func (m *machine) continuation(r record) int {
	if r.last == nil {
		return -1
	}
	for k := len(m.stack) - 1; k >= 0; k-- {
		e := m.at(k)
		if e.header == r.header && r.last.Continues(e.last, m.in.config.OrdinalSlack) {
			return k
		}
	}
	return -1
}

// disambiguate reads a single letter from the roman charset as a roman
// numeral when it opens a roman sequence ("i", "I") or continues an open
// one. A letter that continues an open letter sequence stays a letter, and
// so does any other lone letter: "c" after "b" is 3, never 100.
func (m *machine) disambiguate(b *model.Block, r record) record {
	roman := lineclass.AsRoman(r.last)
	if roman == nil || m.continuation(r) >= 0 {
		return r
	}
	if roman.Last() != 1 {
		alt := r
		alt.last = roman
		alt.kind = string(model.NumberRoman)
		if m.continuation(alt) < 0 {
			return r
		}
	}
	*r.last = *roman
	r.kind = string(model.NumberRoman)
	m.in.dc.Log.Debug().Int("page", b.Page).Str("block", b.Label()).Msg("letter numbering read as roman")
	return r
}

// parent returns the stack position of the open class whose numbering r
// extends, or -1.
func (m *machine) parent(r record) int {
	if r.last == nil {
		return -1
	}
	for k := len(m.stack) - 1; k >= 0; k-- {
		if r.last.Extends(m.at(k).last) {
			return k
		}
	}
	return -1
}

// restarts reports whether r is an all-caps header set at the largest size
// on its page or centred.
func (m *machine) restarts(b *model.Block, r record) bool {
	if !r.header || !r.caps || r.styleID == style.NoStyle {
		return false
	}
	return r.size >= m.largest[b.Page]-m.in.config.SizeTolerance || r.align == model.AlignCenter
}

// sameClass returns the stack position of an open header of r's class, or -1
func (m *machine) sameClass(r record) int {
	for k := len(m.stack) - 1; k >= 0; k-- {
		e := m.at(k)
		if e.header && e.styleID == r.styleID && e.caps == r.caps {
			return k
		}
	}
	return -1
}

// outranks reports whether r nests under e. Size decides first, then
// weight, then headers over list items, capitalisation, indentation,
// centring and list kind.
func (m *machine) outranks(e, r *record) bool {
	tol := m.in.config.SizeTolerance
	switch {
	case e.size-r.size >= tol:
		return true
	case r.size-e.size >= tol:
		return false
	case e.bold != r.bold:
		return e.bold
	case e.header != r.header:
		return e.header
	case e.caps != r.caps:
		return e.caps
	}
	indent := m.in.config.IndentTolerance
	switch {
	case e.left < r.left-indent:
		return true
	case r.left < e.left-indent:
		return false
	case e.align != r.align:
		return e.align == model.AlignCenter
	case !e.header && e.kind != r.kind:
		return kindRank(e.kind) < kindRank(r.kind)
	}
	return false
}

// chain returns the text of the open headers, outermost first
func (m *machine) chain() []string {
	var out []string
	for k := range m.stack {
		if e := m.at(k); e.header {
			out = append(out, e.text)
		}
	}
	return out
}

// pageLargest returns the largest styled block size on each page
func pageLargest(blocks []*model.Block) map[int]float64 {
	out := make(map[int]float64)
	for _, b := range blocks {
		if b.Unstyled() {
			continue
		}
		if s := b.Size(); s > out[b.Page] {
			out[b.Page] = s
		}
	}
	return out
}

// collapse removes every level above 0 that exactly one block uses: that
// block and everything deeper move up one level.
func (in *Indenter) collapse(blocks []*model.Block) {
	counts := levelCounts(blocks)
	for level := 1; level < len(counts); {
		if counts[level] != 1 {
			level++
			continue
		}
		for _, b := range blocks {
			if b.Level >= level {
				b.Level--
			}
		}
		in.dc.Log.Debug().Int("level", level).Msg("single block level collapsed")
		counts = levelCounts(blocks)
	}
}

func levelCounts(blocks []*model.Block) []int {
	var counts []int
	for _, b := range blocks {
		for len(counts) <= b.Level {
			counts = append(counts, 0)
		}
		counts[b.Level]++
	}
	return counts
}
