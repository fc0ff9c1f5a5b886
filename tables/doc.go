// Package tables resolves the structure of tables from runs of table row
// blocks.
//
// The page assembler marks lines that read as table rows, keeping each
// horizontally separated fragment of a row as its own visual line. The
// [Resolver] takes the document's blocks in reading order and turns every
// maximal run of table rows into a table: column spans, cells, header rows,
// row groups and start/end markers.
//
// # Resolution
//
// For each run of rows on one page the resolver:
//
//  1. Votes on the nominal column count over the first rows of the run
//     (see [Config.Lookahead]); overlapping fragments count once.
//  2. Builds disjoint column spans from the rows that have the nominal
//     count, widening a span only when a fragment overlaps it and no other
//     fragment of the same row has claimed it.
//  3. Adopts a header or paragraph block directly above the run as the
//     header row when its fragments line up with the spans; otherwise the
//     first row is the header when its fragment count is within one of the
//     nominal count. A header cell covering several spans is a header group.
//  4. Aligns every row's fragments to spans. A row that cannot be split
//     cleanly becomes a full width row group.
//  5. In two-column tables, folds paragraph lines between rows into the row
//     they wrap: a key that wraps onto the line above its row, or a value
//     that wraps below it.
//  6. Marks up to [Config.MaxFooterBlocks] trailing aligned paragraphs as
//     table footers. A row whose fragments mostly fall outside the spans
//     closes the table.
//
// Degenerate runs degrade instead of failing: a single column run collapses
// into one paragraph and a run shorter than [Config.MinRows] reverts to
// paragraphs.
//
// # Configuration
//
//	config := tables.DefaultConfig()
//	config.MinAlignRatio = 0.6
//	r := tables.NewResolverWithConfig(dc, config)
//	blocks = r.Resolve(blocks)
//
// [Group] folds every resolved table into a single table block for callers
// that prefer whole tables to row blocks.
package tables
