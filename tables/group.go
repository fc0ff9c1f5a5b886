package tables

import "github.com/tsawler/blocktree/model"

// Group folds the rows of every resolved table into one table block holding
// the whole grid. The table block takes the first row's page and the union
// of the rows' boxes, and the first row's level; its text is the rows' text, one row per line. Blocks
// outside tables are kept as they are.
func Group(blocks []*model.Block) []*model.Block {
	out := make([]*model.Block, 0, len(blocks))
	var cur *model.Block
	for _, b := range blocks {
		row := b.TableRow()
		if row == nil {
			cur = nil
			out = append(out, b)
			continue
		}
		if cur == nil || row.TableStart {
			cur = &model.Block{
				Page:      b.Page,
				Level:     b.Level,
				BBox:      b.BBox,
				StyleID:   b.StyleID,
				Font:      b.Font,
				Alignment: b.Alignment,
				Payload: &model.TablePayload{Table: &model.Table{
					ID:    row.TableID,
					Page:  b.Page,
					Spans: row.Spans,
				}},
			}
			out = append(out, cur)
		}
		cur.Table().AddRow(row.Cells, row.Header, b.BBox)
		cur.Lines = append(cur.Lines, b.Lines...)
		cur.BBox = cur.BBox.Union(b.BBox)
		if cur.Text == "" {
			cur.Text = b.Text
		} else {
			cur.Text += "\n" + b.Text
		}
		if row.TableEnd {
			cur = nil
		}
	}
	return out
}
