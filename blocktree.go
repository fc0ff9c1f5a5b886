// Package blocktree reconstructs structured documents from the positioned
// text runs of an extraction backend. It groups runs into headers,
// paragraphs, list items, table rows and rules, restores the reading order
// of multi-column pages, resolves table structure and assigns every block a
// nesting level.
//
// Basic usage:
//
//	doc, warnings, err := blocktree.Parse(pages).Document()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", blocktree.FormatWarnings(warnings))
//	}
//
// With options:
//
//	doc, _, err := blocktree.Parse(pages).
//	    WithConfig(cfg).
//	    WithLogger(logger).
//	    GroupTables().
//	    Document()
//
// The pipeline stages are also available on their own in the style,
// lineclass, layout, tables and hierarchy packages.
package blocktree

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tsawler/blocktree/model"
)

// ErrNoPages is returned when a document has no pages to parse
var ErrNoPages = errors.New("no pages")

// ErrInvalidPage is returned for a page whose size is negative or not a number
var ErrInvalidPage = errors.New("invalid page")

// Parse returns a Parser for the given pages. The pages are not modified.
//
// Example:
//
//	doc, warnings, err := blocktree.Parse(pages).Document()
func Parse(pages []model.PageInput) *Parser {
	return &Parser{
		pages:   pages,
		options: defaultOptions(),
	}
}

// ParseRecords returns a Parser for pages in their wire form. Pages are
// indexed in slice order.
func ParseRecords(records []model.PageRecord) *Parser {
	return Parse(pagesOf(records))
}

// DecodePages reads a JSON document of the form {"pages": [...]} and
// returns its pages.
func DecodePages(r io.Reader) ([]model.PageInput, error) {
	var in struct {
		Pages []model.PageRecord `json:"pages"`
	}
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("decode pages: %w", err)
	}
	return pagesOf(in.Pages), nil
}

func pagesOf(records []model.PageRecord) []model.PageInput {
	pages := make([]model.PageInput, 0, len(records))
	for i, r := range records {
		pages = append(pages, r.Page(i))
	}
	return pages
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil.
//
// Example:
//
//	pages := blocktree.Must(blocktree.DecodePages(f))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustResult wraps a terminal call such as Document() or Markdown() and
// panics if the error is non-nil. Warnings are discarded.
//
// Example:
//
//	doc := blocktree.MustResult(blocktree.Parse(pages).Document())
func MustResult[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
