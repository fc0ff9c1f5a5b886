package blocktree

import (
	"github.com/rs/zerolog"

	"github.com/tsawler/blocktree/config"
	"github.com/tsawler/blocktree/text"
)

// parseOptions holds the configuration of one Parser
type parseOptions struct {
	// Page selection by page index; nil means all pages
	pages []int

	config config.Config
	logger zerolog.Logger

	// Collaborators; nil means the defaults from package text
	tokenizer text.SentenceTokenizer
	segmenter text.WordSegmenter

	groupTables bool
}

// defaultOptions returns the default parse options
func defaultOptions() parseOptions {
	return parseOptions{
		config: config.Default(),
		logger: zerolog.Nop(),
	}
}

// clone creates a copy of parseOptions. The page selection and keyword
// list are copied; collaborators are shared.
func (o parseOptions) clone() parseOptions {
	newOpts := o
	if o.pages != nil {
		newOpts.pages = append([]int(nil), o.pages...)
	}
	if o.config.Lines.Keywords != nil {
		newOpts.config.Lines.Keywords = append([]string(nil), o.config.Lines.Keywords...)
	}
	return newOpts
}
