package model

import (
	"fmt"
	"strings"
)

// Cell is one table cell. Column is the index of the first span the cell
// covers; ColSpan is the number of spans it covers.
type Cell struct {
	Text    string `json:"text"`
	Column  int    `json:"column"`
	ColSpan int    `json:"colspan"`
}

// Table is a table grid reassembled from table rows
type Table struct {
	ID         int          `json:"id"`
	Page       int          `json:"page"`
	Spans      []ColumnSpan `json:"spans"`
	Rows       [][]Cell     `json:"rows"`
	HeaderRows int          `json:"header_rows"`
	BBox       BBox         `json:"bbox"`
}

// AddRow appends a row of cells. Header rows are only counted while no data
// row has been added.
func (t *Table) AddRow(cells []Cell, header bool, box BBox) {
	if header && t.HeaderRows == len(t.Rows) {
		t.HeaderRows++
	}
	t.Rows = append(t.Rows, cells)
	t.BBox = t.BBox.Union(box)
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the number of column spans, falling back to the widest row
func (t *Table) ColCount() int {
	if len(t.Spans) > 0 {
		return len(t.Spans)
	}
	n := 0
	for _, row := range t.Rows {
		w := 0
		for _, c := range row {
			w = max(w, c.Column+max(c.ColSpan, 1))
		}
		n = max(n, w)
	}
	return n
}

// GetCell returns the cell covering the given row and column (0-indexed)
func (t *Table) GetCell(row, col int) *Cell {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	for i := range t.Rows[row] {
		c := &t.Rows[row][i]
		if col >= c.Column && col < c.Column+max(c.ColSpan, 1) {
			return c
		}
	}
	return nil
}

// Grid expands a row into one string per column. A cell spanning several
// columns fills its first column and leaves the rest empty.
func (t *Table) Grid(row int) []string {
	out := make([]string, t.ColCount())
	if row < 0 || row >= len(t.Rows) {
		return out
	}
	for _, c := range t.Rows[row] {
		if c.Column >= 0 && c.Column < len(out) {
			out[c.Column] = c.Text
		}
	}
	return out
}

// ToMarkdown converts the table to markdown format
func (t *Table) ToMarkdown() string {
	if len(t.Rows) == 0 {
		return ""
	}
	cols := t.ColCount()
	var sb strings.Builder
	writeRow := func(cells []string) {
		for _, c := range cells {
			sb.WriteString("| ")
			sb.WriteString(strings.ReplaceAll(strings.ReplaceAll(c, "\n", " "), "|", "\\|"))
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}

	// The first row doubles as the header when none was detected.
	writeRow(t.Grid(0))
	sb.WriteString(strings.Repeat("|---", cols))
	sb.WriteString("|\n")
	for i := 1; i < len(t.Rows); i++ {
		writeRow(t.Grid(i))
	}
	return sb.String()
}

// ToCSV converts the table to CSV format
func (t *Table) ToCSV() string {
	var sb strings.Builder
	for i := range t.Rows {
		for j, text := range t.Grid(i) {
			if strings.ContainsAny(text, ",\"\n") {
				text = "\"" + strings.ReplaceAll(text, "\"", "\"\"") + "\""
			}
			sb.WriteString(text)
			if j < t.ColCount()-1 {
				sb.WriteString(",")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Table) String() string {
	return fmt.Sprintf("table %d (page %d, %dx%d)", t.ID, t.Page, t.RowCount(), t.ColCount())
}
