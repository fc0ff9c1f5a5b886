// Package docctx carries the per-document state every pipeline stage shares:
// the style registry, the line classifier, the text collaborators, the logger
// and the warnings collected so far.
//
// A Context is created for one document and discarded afterwards. Nothing in
// it is shared between documents, so independent documents can be processed
// in parallel, each with its own Context.
package docctx

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tsawler/blocktree/lineclass"
	"github.com/tsawler/blocktree/model"
	"github.com/tsawler/blocktree/style"
	"github.com/tsawler/blocktree/text"
)

// Context is the state of one document's run
type Context struct {
	Styles     *style.Registry
	Classifier *lineclass.Classifier
	Tokenizer  text.SentenceTokenizer
	Segmenter  text.WordSegmenter
	Log        zerolog.Logger

	warnings []model.Warning
}

// Option configures a Context
type Option func(*Context)

// WithStyleConfig sets the style registry configuration
func WithStyleConfig(cfg style.Config) Option {
	return func(c *Context) { c.Styles = style.NewRegistryWithConfig(cfg) }
}

// WithClassifier sets the line classifier
func WithClassifier(cl *lineclass.Classifier) Option {
	return func(c *Context) { c.Classifier = cl }
}

// WithTokenizer sets the sentence tokenizer
func WithTokenizer(t text.SentenceTokenizer) Option {
	return func(c *Context) { c.Tokenizer = t }
}

// WithSegmenter sets the word segmenter
func WithSegmenter(s text.WordSegmenter) Option {
	return func(c *Context) { c.Segmenter = s }
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(c *Context) { c.Log = l }
}

// New creates a document context. Unset collaborators get their defaults
// and the logger defaults to a no-op logger.
func New(opts ...Option) *Context {
	c := &Context{Log: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	if c.Styles == nil {
		c.Styles = style.NewRegistry()
	}
	if c.Classifier == nil {
		c.Classifier = lineclass.NewClassifier()
	}
	if c.Tokenizer == nil {
		c.Tokenizer = text.NewSentenceTokenizer()
	}
	if c.Segmenter == nil {
		c.Segmenter = text.NewDictionarySegmenter()
	}
	return c
}

// Warn records a non-fatal issue and logs it at warn level. Use page -1 for
// document level issues.
func (c *Context) Warn(page int, stage, format string, args ...any) {
	w := model.Warning{Page: page, Stage: stage, Message: fmt.Sprintf(format, args...)}
	c.warnings = append(c.warnings, w)
	c.Log.Warn().Int("page", page).Str("stage", stage).Msg(w.Message)
}

// Warnings returns a copy of the warnings recorded so far
func (c *Context) Warnings() []model.Warning {
	return append([]model.Warning(nil), c.warnings...)
}
