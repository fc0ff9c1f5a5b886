// Package lineclass classifies a line of text as a header, list item, table
// row, rule or paragraph from its lexical features and optional visual
// metadata.
//
// Classification never fails. Empty input yields a paragraph with no
// features:
//
//	c := lineclass.NewClassifier()
//	res := c.Classify("SECTION 1. DEFINITIONS", nil)
//	// res.Type == model.TypeHeader
//
// Besides the type, [Features] carries the token statistics, the parsed
// numbering prefix, the bullet glyph, the join flags the layout stage uses
// (incomplete and continuing lines), noun chunks and quoted terms.
package lineclass
