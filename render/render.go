// Package render writes a reconstructed document as HTML, Markdown, JSON or
// plain text.
//
// Table rows between start and end markers are rendered as one table;
// consecutive list items are rendered as one list. Header levels map to
// heading depth, capped at six.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tsawler/blocktree/model"
)

// ErrUnknownFormat is returned by Write for an unsupported format name
var ErrUnknownFormat = errors.New("unknown output format")

// Write renders doc in the named format: json, markdown, html or text
func Write(w io.Writer, doc *model.Document, format string) error {
	switch strings.ToLower(format) {
	case "json":
		return JSON(w, doc)
	case "markdown", "md":
		return Markdown(w, doc)
	case "html":
		return HTML(w, doc)
	case "text", "txt":
		return Text(w, doc)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// JSON writes the document as indented JSON
func JSON(w io.Writer, doc *model.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}

// Text writes the block text separated by blank lines
func Text(w io.Writer, doc *model.Document) error {
	_, err := io.WriteString(w, doc.PlainText()+"\n")
	return err
}

// segment is a run of blocks rendered as one unit: a single block, a table
// or a list.
type segment struct {
	block *model.Block
	table *model.Table
	items []*model.Block
}

// segments groups blocks into render units in reading order
func segments(blocks []*model.Block) []segment {
	var out []segment
	var cur *model.Table
	for _, b := range blocks {
		if t := b.Table(); t != nil {
			cur = nil
			out = append(out, segment{block: b, table: t})
			continue
		}
		if row := b.TableRow(); row != nil {
			if cur == nil || row.TableStart {
				cur = &model.Table{ID: row.TableID, Page: b.Page, Spans: row.Spans}
				out = append(out, segment{block: b, table: cur})
			}
			cur.AddRow(row.Cells, row.Header, b.BBox)
			if row.TableEnd {
				cur = nil
			}
			continue
		}
		cur = nil
		if b.Is(model.TypeListItem) {
			if n := len(out); n > 0 && out[n-1].items != nil {
				out[n-1].items = append(out[n-1].items, b)
				continue
			}
			out = append(out, segment{items: []*model.Block{b}})
			continue
		}
		out = append(out, segment{block: b})
	}
	return out
}

// depth returns the heading depth of a header level, 1 to 6
func depth(level int) int {
	return min(max(level, 0), 5) + 1
}

// itemText returns a list item's text without its bullet glyph
func itemText(b *model.Block) string {
	p := b.ListItem()
	if p == nil || p.Bullet == "" {
		return b.Text
	}
	return strings.TrimSpace(strings.TrimPrefix(b.Text, p.Marker))
}
