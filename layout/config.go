package layout

// Config holds the thresholds used while assembling pages
type Config struct {
	// MarginBandRatio is the share of the page height at the top and at the
	// bottom where running headers and footers are looked for.
	// Default: 0.1
	MarginBandRatio float64

	// MarginRepeatRatio is the share of pages a margin line must recur on to
	// count as a running header or footer.
	// Default: 0.66
	MarginRepeatRatio float64

	// MaxMeanPageGap bounds the mean distance between the pages a running
	// header or footer appears on.
	// Default: 2
	MaxMeanPageGap float64

	// MarginPositionStep is the rounding step applied to a margin line's top
	// before it is compared across pages.
	// Default: 4 points
	MarginPositionStep float64

	// KeepMargins disables the removal of running headers, footers and
	// page numbers.
	// Default: false
	KeepMargins bool

	// MinMarginPages is the fewest pages a document needs before running
	// headers, footers and page numbers are removed.
	// Default: 2
	MinMarginPages int

	// PageNumberDigitRatio is the share of digits above which the first or
	// last line in a margin band is treated as a page number.
	// Default: 0.5
	PageNumberDigitRatio float64

	// SplitGapRatio is the horizontal gap, relative to the line height, that
	// separates two fragments on the same baseline.
	// Default: 1.2
	SplitGapRatio float64

	// SpaceGapRatio is the horizontal gap, relative to the line height, above
	// which a space is inserted between two merged runs.
	// Default: 0.15
	SpaceGapRatio float64

	// SpacingSlack is the extra vertical gap, relative to the line height,
	// tolerated above a style's modal spacing before a new block starts.
	// Default: 0.3
	SpacingSlack float64

	// FallbackSpacingRatio is used as the modal spacing, relative to the line
	// height, for styles with no measured spacing on the page.
	// Default: 0.8
	FallbackSpacingRatio float64

	// MaxJoinGapRatio bounds the vertical gap, relative to the line height,
	// across which two blocks may still be joined.
	// Default: 2.5
	MaxJoinGapRatio float64

	// LetterSpacedRatio is the share of single-letter tokens above which a
	// line is treated as letter spaced and re-segmented into words.
	// Default: 0.75
	LetterSpacedRatio float64

	// AlignTolerance is the distance within which two edges are considered
	// aligned.
	// Default: 20 points
	AlignTolerance float64

	// EdgeTolerance is the distance within which two lines are taken to
	// start at the same indent. A line sharing its indent with another line
	// is never read as centred.
	// Default: 1.5 points
	EdgeTolerance float64

	// Columns configures the column reorderer.
	Columns ColumnConfig
}

// DefaultConfig returns the default assembler configuration
func DefaultConfig() Config {
	return Config{
		MarginBandRatio:      0.1,
		MarginRepeatRatio:    0.66,
		MaxMeanPageGap:       2,
		MarginPositionStep:   4,
		MinMarginPages:       2,
		PageNumberDigitRatio: 0.5,
		SplitGapRatio:        1.2,
		SpaceGapRatio:        0.15,
		SpacingSlack:         0.3,
		FallbackSpacingRatio: 0.8,
		MaxJoinGapRatio:      2.5,
		LetterSpacedRatio:    0.75,
		AlignTolerance:       20,
		EdgeTolerance:        1.5,
		Columns:              DefaultColumnConfig(),
	}
}

// ColumnConfig holds configuration for column reordering
type ColumnConfig struct {
	// AlignTolerance is the largest left-edge distance between blocks of
	// the same cluster.
	// Default: 20 points
	AlignTolerance float64

	// DominantShare is the share of a page's lines above which one cluster
	// is treated as the page's only column.
	// Default: 0.8
	DominantShare float64

	// MinColumnShare is the smallest share of lines a cluster needs to
	// count as a column.
	// Default: 0.05
	MinColumnShare float64

	// MaxColumns is the most columns a page is split into.
	// Default: 3
	MaxColumns int

	// MergeOverlap is the overlap, relative to the narrower interval, above
	// which two clusters are treated as one column.
	// Default: 0.5
	MergeOverlap float64
}

// DefaultColumnConfig returns the default column configuration
func DefaultColumnConfig() ColumnConfig {
	return ColumnConfig{
		AlignTolerance: 20,
		DominantShare:  0.8,
		MinColumnShare: 0.05,
		MaxColumns:     3,
		MergeOverlap:   0.5,
	}
}
