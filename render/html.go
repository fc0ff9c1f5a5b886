package render

import (
	"fmt"
	"io"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/blocktree/model"
)

var headings = []atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

func elem(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(key string, val any) html.Attribute {
	return html.Attribute{Key: key, Val: fmt.Sprint(val)}
}

// withText appends a text child and returns n
func withText(n *html.Node, s string) *html.Node {
	n.AppendChild(textNode(s))
	return n
}

// HTML writes the document as a standalone HTML page. Every block element
// carries its page and level in data attributes.
func HTML(w io.Writer, doc *model.Document) error {
	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	page := elem(atom.Html)
	root.AppendChild(page)

	head := elem(atom.Head)
	head.AppendChild(elem(atom.Meta, attr("charset", "utf-8")))
	if doc.Anchor.Title != "" {
		head.AppendChild(withText(elem(atom.Title), doc.Anchor.Title))
	}
	page.AppendChild(head)

	body := elem(atom.Body)
	page.AppendChild(body)
	for _, s := range segments(doc.Blocks) {
		switch {
		case s.table != nil:
			body.AppendChild(tableNode(s.table))
		case s.items != nil:
			body.AppendChild(listNode(s.items))
		default:
			body.AppendChild(blockNode(s.block))
		}
	}

	if err := html.Render(w, root); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func blockAttrs(b *model.Block) []html.Attribute {
	return []html.Attribute{attr("data-page", b.Page), attr("data-level", b.Level)}
}

func blockNode(b *model.Block) *html.Node {
	switch b.Type() {
	case model.TypeHeader:
		return withText(elem(headings[depth(b.Level)-1], blockAttrs(b)...), oneLine(b.Text))
	case model.TypeRule:
		return elem(atom.Hr, blockAttrs(b)...)
	}
	attrs := blockAttrs(b)
	if p := b.Paragraph(); p != nil && p.TableFooter {
		attrs = append(attrs, attr("class", "table-footer"), attr("data-table", p.TableID))
	}
	return withText(elem(atom.P, attrs...), oneLine(b.Text))
}

func listNode(items []*model.Block) *html.Node {
	list := elem(atom.Ul)
	if items[0].Numbering() != nil {
		list = elem(atom.Ol)
	}
	for _, b := range items {
		li := elem(atom.Li, blockAttrs(b)...)
		if p := b.ListItem(); p.Numbering != nil {
			li.Attr = append(li.Attr, attr("data-marker", p.Marker))
		}
		list.AppendChild(withText(li, oneLine(itemText(b))))
	}
	return list
}

// tableNode renders a table grid. Header rows go into thead; a cell
// spanning several columns gets a colspan.
func tableNode(t *model.Table) *html.Node {
	table := elem(atom.Table, attr("data-table", t.ID), attr("data-page", t.Page))
	var thead *html.Node
	tbody := elem(atom.Tbody)
	for i, row := range t.Rows {
		tr := elem(atom.Tr)
		cell := atom.Td
		if i < t.HeaderRows {
			cell = atom.Th
			if thead == nil {
				thead = elem(atom.Thead)
			}
			thead.AppendChild(tr)
		} else {
			tbody.AppendChild(tr)
		}
		next := 0
		for _, c := range row {
			// pad columns with no cell so later cells keep their position
			for ; next < c.Column; next++ {
				tr.AppendChild(elem(cell))
			}
			td := elem(cell)
			if c.ColSpan > 1 {
				td.Attr = append(td.Attr, attr("colspan", strconv.Itoa(c.ColSpan)))
			}
			tr.AppendChild(withText(td, oneLine(c.Text)))
			next = c.Column + max(c.ColSpan, 1)
		}
	}
	if thead != nil {
		table.AppendChild(thead)
	}
	table.AppendChild(tbody)
	return table
}
