// Package layout turns positioned text runs into per-page block lists in
// reading order.
//
// # Assembly
//
// The [Assembler] works in two passes over a document. [Assembler.Prepare]
// builds visual lines for every page, removes running headers and footers,
// and feeds every line's style into the document's style registry so that
// header detection can compare against corpus-wide statistics.
// [Assembler.AssemblePage] then groups one page's lines into blocks and
// applies the paragraph-join correction:
//
//	dc := docctx.New()
//	a := layout.NewAssembler(dc)
//	a.Prepare(pages)
//	for i := range pages {
//		blocks := a.AssemblePage(i)
//		...
//	}
//
// Grouping and joining are driven by ordered rule tables. Each rule is a
// named predicate over the candidate block, the incoming line and the page
// statistics; the first rule that matches decides.
//
// # Column Order
//
// The [ColumnReorderer] restores reading order for a page whose blocks come
// from a multi-column layout. Blocks are clustered by left edge; a dominant
// cluster absorbs minor blocks by vertical position, while two or three
// balanced clusters are emitted column by column.
//
// # Page Splicing
//
// [SpliceAcrossPages] joins a paragraph left open at the bottom of one page
// with its continuation at the top of the next.
package layout
