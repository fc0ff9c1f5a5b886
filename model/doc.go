// Package model defines the data types shared by every stage of block tree
// reconstruction.
//
// Input arrives as [PageInput] values holding positioned [TextRun]s. The
// layout stage merges runs into [VisualLine]s and lines into [Block]s. A
// block's semantic type is carried by its [Payload], a closed union:
//
//   - [HeaderPayload] - headings with their level chain and numbering
//   - [ParagraphPayload] - body text
//   - [ListItemPayload] - bulleted or numbered items
//   - [TableRowPayload] - table rows with cells and start/end markers
//   - [TablePayload] - a whole table when rows are grouped
//   - [RulePayload] - horizontal rules drawn with glyphs
//
// Use the typed accessors rather than type switches where possible:
//
//	if row := block.TableRow(); row != nil && row.TableStart {
//	    ...
//	}
//
// # Geometry
//
// [BBox] uses top-down page units: Top grows toward the bottom of the page.
//
// # Tables
//
// [Document.Tables] reassembles [Table] grids from the row markers. Tables
// export to Markdown and CSV.
package model
