package model

import (
	"fmt"
	"strings"
)

// PageGeometry records a page's size and the per-page statistics later
// passes consult.
type PageGeometry struct {
	Index           int     `json:"index"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	LargestFontSize float64 `json:"largest_font_size,omitempty"`
	ModalSpacing    float64 `json:"modal_spacing,omitempty"`
	Columns         int     `json:"columns,omitempty"`
}

// StyleStat is the document-wide frequency record of one style class
type StyleStat struct {
	ID        int     `json:"id"`
	Family    string  `json:"family"`
	Style     string  `json:"style,omitempty"`
	Size      float64 `json:"size"`
	Weight    int     `json:"weight,omitempty"`
	Alignment string  `json:"alignment"`
	Lines     int     `json:"lines"`
	Words     int     `json:"words"`
	Rank      int     `json:"rank"`
	Header    bool    `json:"header,omitempty"`
	Footnote  bool    `json:"footnote,omitempty"`
}

// TitleAnchor holds the title/summary candidates taken from the largest
// above-median fonts on the earliest page that carries headers.
type TitleAnchor struct {
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Third    string `json:"third,omitempty"`
}

// IsEmpty reports whether no anchor candidate was found
func (a TitleAnchor) IsEmpty() bool {
	return a.Title == "" && a.Subtitle == "" && a.Third == ""
}

// Warning is a non-fatal issue encountered while building a document.
// Page is -1 for document level warnings.
type Warning struct {
	Page    int    `json:"page"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Page < 0 {
		return fmt.Sprintf("%s: %s", w.Stage, w.Message)
	}
	return fmt.Sprintf("page %d: %s: %s", w.Page, w.Stage, w.Message)
}

// Document is the reconstructed block tree of one input document
type Document struct {
	Blocks         []*Block       `json:"blocks"`
	Pages          []PageGeometry `json:"pages"`
	Styles         []StyleStat    `json:"styles"`
	RunningHeaders []string       `json:"running_headers,omitempty"`
	RunningFooters []string       `json:"running_footers,omitempty"`
	Anchor         TitleAnchor    `json:"anchor"`
	// DroppedRuns counts input runs removed as margin repeats or noise.
	DroppedRuns int       `json:"dropped_runs"`
	Warnings    []Warning `json:"warnings,omitempty"`
}

// PageCount returns the number of pages
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// BlocksOfType returns the blocks with type t in reading order
func (d *Document) BlocksOfType(t BlockType) []*Block {
	var out []*Block
	for _, b := range d.Blocks {
		if b.Type() == t {
			out = append(out, b)
		}
	}
	return out
}

// BlocksOnPage returns the blocks of one page in reading order
func (d *Document) BlocksOnPage(page int) []*Block {
	var out []*Block
	for _, b := range d.Blocks {
		if b.Page == page {
			out = append(out, b)
		}
	}
	return out
}

// Outline returns the header blocks in reading order
func (d *Document) Outline() []*Block {
	return d.BlocksOfType(TypeHeader)
}

// Tables reassembles table grids from grouped table blocks and from runs of
// table rows delimited by start/end markers.
func (d *Document) Tables() []*Table {
	var tables []*Table
	var cur *Table
	for _, b := range d.Blocks {
		if t := b.Table(); t != nil {
			tables = append(tables, t)
			continue
		}
		row := b.TableRow()
		if row == nil {
			continue
		}
		if row.TableStart || cur == nil {
			cur = &Table{ID: row.TableID, Page: b.Page, Spans: row.Spans}
			tables = append(tables, cur)
		}
		cur.AddRow(row.Cells, row.Header, b.BBox)
		if row.TableEnd {
			cur = nil
		}
	}
	return tables
}

// PlainText returns the document's block text separated by blank lines
func (d *Document) PlainText() string {
	var sb strings.Builder
	for i, b := range d.Blocks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(b.Text)
	}
	return sb.String()
}
