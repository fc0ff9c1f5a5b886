package tables

// Config holds resolver configuration
type Config struct {
	// Lookahead is the number of leading rows that vote on the nominal
	// column count.
	// Default: 5
	Lookahead int

	// MinRows is the smallest number of rows, header included, that still
	// forms a table. Shorter runs revert to paragraphs.
	// Default: 2
	MinRows int

	// MinAlignRatio is the share of a row's fragment width that must belong
	// to fragments overlapping a column span; a row below it closes the
	// table.
	// Default: 0.5
	MinAlignRatio float64

	// MaxFooterBlocks is the largest number of aligned trailing paragraphs
	// treated as table footers. A longer aligned stretch is body text.
	// Default: 2
	MaxFooterBlocks int

	// MaxFooterGapRatio bounds the gap above a footer, in row heights.
	// Default: 3
	MaxFooterGapRatio float64

	// MaxHeaderGapRatio bounds the gap between an adopted header block and
	// the first row, in row heights.
	// Default: 2
	MaxHeaderGapRatio float64
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Lookahead:         5,
		MinRows:           2,
		MinAlignRatio:     0.5,
		MaxFooterBlocks:   2,
		MaxFooterGapRatio: 3,
		MaxHeaderGapRatio: 2,
	}
}
