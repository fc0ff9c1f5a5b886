// Package hierarchy assigns nesting levels to a document's blocks once
// reading order and table structure are final.
//
// # Levels
//
// The [Indenter] walks the blocks in reading order with a stack of the
// header and list item classes that are still open. Each open class is a
// record in an arena holding its style, numbering, alignment, left edge
// and capitalisation. A header or list item is placed by the first rule
// that applies:
//
//   - its numbering continues an open class ("3." after "2.") and takes
//     that class's level
//   - its numbering extends an open class ("2.1" under "2") and nests
//     one level under it
//   - it is an all-caps header at the page's largest size or centred, and
//     restarts at level 0 unless the same class is already open
//   - otherwise the stack is popped until the top outranks it: larger,
//     bolder, capitalised where it is not, further left, or an outer list
//     kind
//
// Every other block sits one level under the nearest header. A final pass
// removes levels that only one block uses.
//
//	in := hierarchy.NewIndenter(dc)
//	in.Assign(blocks)
//	anchor := hierarchy.Anchor(blocks, dc.Styles)
//
// # Anchor
//
// [Anchor] picks the title, subtitle and third-level candidates from the
// largest above-median fonts on the earliest page carrying headers.
package hierarchy
