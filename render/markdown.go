package render

import (
	"io"
	"strings"

	"github.com/tsawler/blocktree/model"
)

// Markdown writes the document as Markdown. Bulleted items become "-"
// items; numbered items keep their own marker. Table footers follow their
// table as emphasised text.
func Markdown(w io.Writer, doc *model.Document) error {
	var sb strings.Builder
	for i, s := range segments(doc.Blocks) {
		if i > 0 {
			sb.WriteString("\n")
		}
		switch {
		case s.table != nil:
			sb.WriteString(s.table.ToMarkdown())
		case s.items != nil:
			base := s.items[0].Level
			for _, b := range s.items {
				sb.WriteString(strings.Repeat("  ", max(b.Level-base, 0)))
				if p := b.ListItem(); p.Bullet != "" || p.Numbering == nil {
					sb.WriteString("- ")
				}
				sb.WriteString(oneLine(itemText(b)))
				sb.WriteString("\n")
			}
		default:
			sb.WriteString(markdownBlock(s.block))
			sb.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func markdownBlock(b *model.Block) string {
	switch b.Type() {
	case model.TypeHeader:
		return strings.Repeat("#", depth(b.Level)) + " " + oneLine(b.Text)
	case model.TypeRule:
		return "---"
	}
	if p := b.Paragraph(); p != nil && p.TableFooter {
		return "*" + oneLine(b.Text) + "*"
	}
	return oneLine(b.Text)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
