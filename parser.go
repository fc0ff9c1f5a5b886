package blocktree

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"

	"github.com/rs/zerolog"

	"github.com/tsawler/blocktree/config"
	"github.com/tsawler/blocktree/docctx"
	"github.com/tsawler/blocktree/hierarchy"
	"github.com/tsawler/blocktree/layout"
	"github.com/tsawler/blocktree/lineclass"
	"github.com/tsawler/blocktree/model"
	"github.com/tsawler/blocktree/render"
	"github.com/tsawler/blocktree/tables"
	"github.com/tsawler/blocktree/text"
)

// Parser builds a document from pages of text runs. Every configuration
// method returns a new Parser, so a configured Parser can be reused and
// shared between goroutines.
type Parser struct {
	pages   []model.PageInput
	options parseOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Parser with a deep copy of options
func (p *Parser) clone() *Parser {
	return &Parser{
		pages:   p.pages,
		options: p.options.clone(),
		err:     p.err,
	}
}

// ============================================================================
// Configuration Methods (return new Parser instance)
// ============================================================================

// WithConfig replaces the configuration of every pipeline stage. The
// configuration is validated when the document is built.
//
// Example:
//
//	cfg, err := config.Load("blocktree.yaml")
//	doc, _, err := blocktree.Parse(pages).WithConfig(cfg).Document()
func (p *Parser) WithConfig(cfg config.Config) *Parser {
	newP := p.clone()
	newP.options.config = cfg
	newP.options.groupTables = cfg.Output.GroupTables
	return newP
}

// WithLogger sets the logger the pipeline reports to. The default logger
// discards everything.
func (p *Parser) WithLogger(logger zerolog.Logger) *Parser {
	newP := p.clone()
	newP.options.logger = logger
	return newP
}

// WithTokenizer sets the sentence tokenizer used to fill block sentences
func (p *Parser) WithTokenizer(t text.SentenceTokenizer) *Parser {
	newP := p.clone()
	newP.options.tokenizer = t
	return newP
}

// WithSegmenter sets the word segmenter used to re-space letter-spaced text
func (p *Parser) WithSegmenter(s text.WordSegmenter) *Parser {
	newP := p.clone()
	newP.options.segmenter = s
	return newP
}

// Pages restricts parsing to the pages with the given indices. Multiple
// calls are cumulative. A negative index fails the terminal call.
//
// Example:
//
//	doc, _, err := blocktree.Parse(pages).Pages(0, 2).Document()
func (p *Parser) Pages(indices ...int) *Parser {
	newP := p.clone()
	for _, idx := range indices {
		if idx < 0 && newP.err == nil {
			newP.err = fmt.Errorf("page index %d: %w", idx, ErrInvalidPage)
		}
	}
	newP.options.pages = append(newP.options.pages, indices...)
	return newP
}

// KeepMargins keeps running headers, footers and page numbers in the
// output instead of removing them.
func (p *Parser) KeepMargins() *Parser {
	newP := p.clone()
	newP.options.config.Layout.KeepMargins = true
	return newP
}

// GroupTables folds the rows of each resolved table into a single table
// block.
func (p *Parser) GroupTables() *Parser {
	newP := p.clone()
	newP.options.groupTables = true
	return newP
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Document builds the document. It returns the document, the non-fatal
// warnings met along the way, and an error if the input or configuration
// is unusable.
//
// Example:
//
//	doc, warnings, err := blocktree.Parse(pages).Document()
func (p *Parser) Document() (*model.Document, []Warning, error) {
	return p.DocumentContext(context.Background())
}

// DocumentContext is Document with a context. The context is checked
// between pages.
func (p *Parser) DocumentContext(ctx context.Context) (*model.Document, []Warning, error) {
	if p.err != nil {
		return nil, nil, p.err
	}
	cfg := p.options.config
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	pages, err := p.selectPages()
	if err != nil {
		return nil, nil, err
	}

	dc := p.newContext()
	asm := layout.NewAssemblerWithConfig(dc, cfg.Layout)
	asm.Prepare(pages)
	blocks, err := asm.Assemble(ctx)
	if err != nil {
		return nil, dc.Warnings(), fmt.Errorf("parse: %w", err)
	}

	blocks = tables.NewResolverWithConfig(dc, cfg.Tables).Resolve(blocks)
	hierarchy.NewIndenterWithConfig(dc, cfg.Hierarchy).Assign(blocks)
	if p.options.groupTables {
		blocks = tables.Group(blocks)
	}
	finish(dc, blocks)

	doc := &model.Document{
		Blocks:         blocks,
		Pages:          asm.Geometry(),
		Styles:         dc.Styles.Snapshot(),
		RunningHeaders: asm.RunningHeaders(),
		RunningFooters: asm.RunningFooters(),
		Anchor:         hierarchy.Anchor(blocks, dc.Styles),
		DroppedRuns:    asm.DroppedRuns(),
		Warnings:       dc.Warnings(),
	}
	dc.Log.Debug().
		Int("pages", len(doc.Pages)).
		Int("blocks", len(doc.Blocks)).
		Int("warnings", len(doc.Warnings)).
		Msg("document built")
	return doc, doc.Warnings, nil
}

// Markdown builds the document and renders it as Markdown
func (p *Parser) Markdown() (string, []Warning, error) {
	return p.rendered(render.Markdown)
}

// Text builds the document and returns its block text separated by blank
// lines.
func (p *Parser) Text() (string, []Warning, error) {
	doc, warnings, err := p.Document()
	if err != nil {
		return "", warnings, err
	}
	return doc.PlainText(), warnings, nil
}

func (p *Parser) rendered(write func(io.Writer, *model.Document) error) (string, []Warning, error) {
	doc, warnings, err := p.Document()
	if err != nil {
		return "", warnings, err
	}
	var buf bytes.Buffer
	if err := write(&buf, doc); err != nil {
		return "", warnings, err
	}
	return buf.String(), warnings, nil
}

// ============================================================================
// Pipeline
// ============================================================================

// selectPages validates the input and applies the page selection
func (p *Parser) selectPages() ([]model.PageInput, error) {
	if len(p.pages) == 0 {
		return nil, fmt.Errorf("parse: %w", ErrNoPages)
	}
	for i, pg := range p.pages {
		if invalidSize(pg.Width) || invalidSize(pg.Height) {
			return nil, fmt.Errorf("page %d: size %vx%v: %w", i, pg.Width, pg.Height, ErrInvalidPage)
		}
	}
	if p.options.pages == nil {
		return p.pages, nil
	}

	want := make(map[int]bool, len(p.options.pages))
	for _, idx := range p.options.pages {
		want[idx] = true
	}
	var out []model.PageInput
	for _, pg := range p.pages {
		if want[pg.Index] {
			out = append(out, pg)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("parse: pages %v: %w", p.options.pages, ErrNoPages)
	}
	return out, nil
}

func invalidSize(v float64) bool {
	return v < 0 || math.IsNaN(v) || math.IsInf(v, 0)
}

// newContext creates the per-document context for one run
func (p *Parser) newContext() *docctx.Context {
	cfg := p.options.config
	opts := []docctx.Option{
		docctx.WithStyleConfig(cfg.Style),
		docctx.WithClassifier(lineclass.NewClassifierWithConfig(cfg.Lines)),
		docctx.WithLogger(p.options.logger),
	}
	if p.options.tokenizer != nil {
		opts = append(opts, docctx.WithTokenizer(p.options.tokenizer))
	}
	if p.options.segmenter != nil {
		opts = append(opts, docctx.WithSegmenter(p.options.segmenter))
	}
	return docctx.New(opts...)
}

// finish numbers the blocks in reading order and splits their text into
// sentences. Blocks without a letter get no sentences.
func finish(dc *docctx.Context, blocks []*model.Block) {
	for i, b := range blocks {
		b.Index = i
		b.Sentences = nil
		if text.HasLetter(b.Text) {
			b.Sentences = dc.Tokenizer.Sentences(b.Text)
		}
	}
}
