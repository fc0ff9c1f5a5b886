package layout

import (
	"math"
	"sort"

	"github.com/rs/zerolog"
	"github.com/tidwall/rtree"

	"github.com/tsawler/blocktree/model"
)

// OrderMode is the strategy the reorderer applied to a page
type OrderMode int

const (
	// OrderUnchanged keeps the scan order: no dominant or balanced clusters.
	OrderUnchanged OrderMode = iota
	// OrderDominant splices minor blocks into one dominant column.
	OrderDominant
	// OrderColumns emits two or three columns left to right.
	OrderColumns
)

func (m OrderMode) String() string {
	switch m {
	case OrderDominant:
		return "dominant"
	case OrderColumns:
		return "columns"
	default:
		return "unchanged"
	}
}

// Ordering is the result of reordering one page's blocks
type Ordering struct {
	Blocks  []*model.Block
	Mode    OrderMode
	Columns int
	// Splits counts blocks that straddled a column boundary and were
	// replaced by one block per column.
	Splits int
}

// ColumnReorderer restores top-to-bottom, left-to-right reading order for
// the blocks of one page.
type ColumnReorderer struct {
	config ColumnConfig
	log    zerolog.Logger

	// Rebuild creates a block from the lines of a block split at a column
	// boundary. When nil, the parts become paragraphs.
	Rebuild func(page int, lines []model.VisualLine) *model.Block
}

// NewColumnReorderer creates a reorderer with the default configuration
func NewColumnReorderer() *ColumnReorderer {
	return NewColumnReordererWithConfig(DefaultColumnConfig())
}

// NewColumnReordererWithConfig creates a reorderer with a custom configuration
func NewColumnReordererWithConfig(config ColumnConfig) *ColumnReorderer {
	return &ColumnReorderer{config: config, log: zerolog.Nop()}
}

// cluster is a set of blocks with nearby left edges. left and right are
// the medians of the members' edges.
type cluster struct {
	members  []int
	lines    int
	left     float64
	right    float64
	spanning bool
}

func (c *cluster) width() float64 {
	return c.right - c.left
}

// Reorder returns the page's blocks in reading order. The result is a
// permutation of the input, except that a block split at a column boundary
// is replaced by its parts.
func (r *ColumnReorderer) Reorder(blocks []*model.Block) Ordering {
	if len(blocks) < 2 {
		return Ordering{Blocks: blocks, Mode: OrderUnchanged, Columns: len(blocks)}
	}
	roots := r.merge(r.cluster(blocks), blocks)
	total := 0
	for _, c := range roots {
		total += c.lines
	}
	if total == 0 {
		return Ordering{Blocks: blocks, Mode: OrderUnchanged, Columns: 1}
	}

	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].lines > roots[j].lines
	})
	if !roots[0].spanning && share(roots[0], total) > r.config.DominantShare {
		return r.splice(blocks, roots[0])
	}

	var cols []*cluster
	for _, c := range roots {
		if !c.spanning && share(c, total) >= r.config.MinColumnShare {
			cols = append(cols, c)
		}
	}
	if len(cols) >= 2 && len(cols) <= r.config.MaxColumns {
		return r.columns(blocks, cols)
	}
	r.log.Debug().Int("clusters", len(roots)).Msg("no dominant or balanced column clusters")
	return Ordering{Blocks: blocks, Mode: OrderUnchanged, Columns: 1}
}

func share(c *cluster, total int) float64 {
	return float64(c.lines) / float64(total)
}

func blockLines(b *model.Block) int {
	return max(b.LineCount(), 1)
}

// cluster groups blocks whose left edges chain within AlignTolerance
func (r *ColumnReorderer) cluster(blocks []*model.Block) []*cluster {
	idx := make([]int, len(blocks))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return blocks[idx[i]].BBox.Left < blocks[idx[j]].BBox.Left
	})

	var out []*cluster
	var cur *cluster
	prev := 0.0
	for _, i := range idx {
		left := blocks[i].BBox.Left
		if cur == nil || left-prev >= r.config.AlignTolerance {
			cur = &cluster{}
			out = append(out, cur)
		}
		cur.members = append(cur.members, i)
		cur.lines += blockLines(blocks[i])
		prev = left
	}
	for _, c := range out {
		c.left, c.right = medianEdges(blocks, c.members)
	}
	r.narrow(out, blocks)
	return out
}

// narrow recomputes a cluster's edges without its full-width members. A
// member is full width when it reaches past the left edge of a column
// cluster further right; the first such cluster that leaves the narrow
// members holding most of the lines sets the gutter. A full-width abstract
// sharing its left edge with the left column would otherwise stretch that
// column over the next one.
func (r *ColumnReorderer) narrow(clusters []*cluster, blocks []*model.Block) {
	total := 0
	for _, c := range clusters {
		total += c.lines
	}
	for _, c := range clusters {
		for _, d := range clusters {
			if d.left <= c.left+r.config.AlignTolerance || share(d, total) < r.config.MinColumnShare {
				continue
			}
			var kept []int
			keptLines, wideLines := 0, 0
			for _, i := range c.members {
				if blocks[i].BBox.Right() > d.left+r.config.AlignTolerance {
					wideLines += blockLines(blocks[i])
					continue
				}
				kept = append(kept, i)
				keptLines += blockLines(blocks[i])
			}
			if wideLines == 0 || keptLines <= wideLines {
				continue
			}
			c.left, c.right = medianEdges(blocks, kept)
			r.log.Debug().Int("full_width", len(c.members)-len(kept)).Float64("gutter", d.left).Msg("column edges exclude full-width blocks")
			break
		}
	}
}

func medianEdges(blocks []*model.Block, members []int) (left, right float64) {
	lefts := make([]float64, 0, len(members))
	rights := make([]float64, 0, len(members))
	for _, i := range members {
		lefts = append(lefts, blocks[i].BBox.Left)
		rights = append(rights, blocks[i].BBox.Right())
	}
	return median(lefts), median(rights)
}

func median(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sort.Float64s(v)
	n := len(v)
	if n%2 == 1 {
		return v[n/2]
	}
	return (v[n/2-1] + v[n/2]) / 2
}

// merge folds clusters that occupy the same horizontal interval: an
// indented list sits inside the body column, a centred heading inside the
// column it is centred on. Clusters are visited largest first; a cluster
// overlapping one larger cluster by MergeOverlap of the narrower width joins
// it, keeping the larger cluster's interval. A cluster overlapping two or
// more larger clusters spans columns and stays apart.
func (r *ColumnReorderer) merge(clusters []*cluster, blocks []*model.Block) []*cluster {
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].lines > clusters[j].lines
	})
	var roots []*cluster
	for _, c := range clusters {
		var hits []*cluster
		for _, root := range roots {
			if root.spanning {
				continue
			}
			if intervalOverlap(c, root) >= r.config.MergeOverlap {
				hits = append(hits, root)
			}
		}
		switch len(hits) {
		case 0:
			roots = append(roots, c)
		case 1:
			hits[0].members = append(hits[0].members, c.members...)
			hits[0].lines += c.lines
		default:
			c.spanning = true
			roots = append(roots, c)
		}
	}
	return roots
}

// intervalOverlap is the overlap of two clusters' intervals relative to the
// narrower one.
func intervalOverlap(a, b *cluster) float64 {
	ov := math.Min(a.right, b.right) - math.Max(a.left, b.left)
	if ov <= 0 {
		return 0
	}
	w := math.Min(a.width(), b.width())
	if w <= 0 {
		return 1
	}
	return ov / w
}

// splice orders a single-column page: the dominant cluster's blocks top to
// bottom, with every other block placed next to the dominant block nearest
// to it vertically. Ties go to the block further left.
func (r *ColumnReorderer) splice(blocks []*model.Block, dom *cluster) Ordering {
	main := append([]int(nil), dom.members...)
	sort.SliceStable(main, func(i, j int) bool {
		return topLeftLess(blocks[main[i]], blocks[main[j]])
	})
	inMain := make(map[int]bool, len(main))
	var tr rtree.RTreeG[int]
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for pos, i := range main {
		b := blocks[i].BBox
		inMain[i] = true
		tr.Insert([2]float64{b.Left, b.Top}, [2]float64{b.Right(), b.Bottom()}, pos)
		minX, maxX = math.Min(minX, b.Left), math.Max(maxX, b.Right())
		minY, maxY = math.Min(minY, b.Top), math.Max(maxY, b.Bottom())
	}

	before := make(map[int][]int)
	after := make(map[int][]int)
	for i, b := range blocks {
		if inMain[i] {
			continue
		}
		pos := nearestVertical(&tr, blocks, main, b, minX, maxX, maxY-minY)
		anchor := blocks[main[pos]]
		if b.BBox.CenterY() < anchor.BBox.CenterY() {
			before[pos] = append(before[pos], i)
		} else {
			after[pos] = append(after[pos], i)
		}
	}

	out := make([]*model.Block, 0, len(blocks))
	emit := func(ids []int) {
		sort.SliceStable(ids, func(x, y int) bool {
			return topLeftLess(blocks[ids[x]], blocks[ids[y]])
		})
		for _, i := range ids {
			out = append(out, blocks[i])
		}
	}
	for pos, i := range main {
		emit(before[pos])
		out = append(out, blocks[i])
		emit(after[pos])
	}
	return Ordering{Blocks: out, Mode: OrderDominant, Columns: 1}
}

// nearestVertical finds the dominant block whose vertical centre is nearest
// to b's, searching a full-width band around b that doubles until it hits.
func nearestVertical(tr *rtree.RTreeG[int], blocks []*model.Block, main []int, b *model.Block, minX, maxX, span float64) int {
	cy := b.BBox.CenterY()
	reach := math.Max(b.BBox.Height, 1)
	best, bestDist, bestLeft := 0, math.Inf(1), math.Inf(1)
	for step := 0; step < 64; step++ {
		found := false
		tr.Search([2]float64{minX - 1, cy - reach}, [2]float64{maxX + 1, cy + reach},
			func(_, _ [2]float64, pos int) bool {
				c := blocks[main[pos]].BBox
				d := math.Abs(c.CenterY() - cy)
				if d < bestDist || (d == bestDist && c.Left < bestLeft) {
					best, bestDist, bestLeft = pos, d, c.Left
				}
				found = true
				return true
			})
		if found || reach > span+b.BBox.Height {
			break
		}
		reach *= 2
	}
	return best
}

func topLeftLess(a, b *model.Block) bool {
	if a.BBox.Top != b.BBox.Top {
		return a.BBox.Top < b.BBox.Top
	}
	return a.BBox.Left < b.BBox.Left
}

// placed is a block with its column, or -1 when it spans columns
type placed struct {
	block *model.Block
	col   int
}

// columns orders a multi-column page. Blocks spanning columns split the page
// into horizontal sections; each section is emitted column by column, left
// to right, each column top to bottom, followed by the spanning block that
// closes it.
func (r *ColumnReorderer) columns(blocks []*model.Block, cols []*cluster) Ordering {
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].left < cols[j].left })
	bounds := make([]float64, 0, len(cols)-1)
	for k := 0; k+1 < len(cols); k++ {
		bounds = append(bounds, (cols[k].right+cols[k+1].left)/2)
	}

	member := make(map[int]int)
	for k, c := range cols {
		for _, i := range c.members {
			member[i] = k
		}
	}

	var items []placed
	var spanning []*model.Block
	splits := 0
	for i, b := range blocks {
		if r.touches(b, cols) < 2 {
			col, ok := member[i]
			if !ok {
				col = r.columnOf(b, cols, bounds)
			}
			items = append(items, placed{block: b, col: col})
			continue
		}
		if parts := r.split(b, bounds); parts != nil {
			items = append(items, parts...)
			splits++
			continue
		}
		spanning = append(spanning, b)
	}
	sort.SliceStable(spanning, func(i, j int) bool { return topLeftLess(spanning[i], spanning[j]) })

	// section s holds the blocks above spanning block s
	sections := make([][][]*model.Block, len(spanning)+1)
	for s := range sections {
		sections[s] = make([][]*model.Block, len(cols))
	}
	for _, it := range items {
		s := 0
		for s < len(spanning) && spanning[s].BBox.CenterY() <= it.block.BBox.CenterY() {
			s++
		}
		sections[s][it.col] = append(sections[s][it.col], it.block)
	}

	out := make([]*model.Block, 0, len(blocks)+splits)
	for s, section := range sections {
		for _, col := range section {
			sort.SliceStable(col, func(i, j int) bool { return topLeftLess(col[i], col[j]) })
			out = append(out, col...)
		}
		if s < len(spanning) {
			out = append(out, spanning[s])
		}
	}
	r.log.Debug().Int("columns", len(cols)).Int("spanning", len(spanning)).Int("splits", splits).Msg("multi-column page")
	return Ordering{Blocks: out, Mode: OrderColumns, Columns: len(cols), Splits: splits}
}

// touches counts the column intervals b overlaps by more than AlignTolerance
func (r *ColumnReorderer) touches(b *model.Block, cols []*cluster) int {
	n := 0
	for _, c := range cols {
		ov := math.Min(b.BBox.Right(), c.right) - math.Max(b.BBox.Left, c.left)
		if ov > r.config.AlignTolerance {
			n++
		}
	}
	return n
}

// columnOf assigns a block to the column it overlaps most, or to the column
// whose boundaries contain its centre.
func (r *ColumnReorderer) columnOf(b *model.Block, cols []*cluster, bounds []float64) int {
	best, bestOv := -1, 0.0
	for k, c := range cols {
		ov := math.Min(b.BBox.Right(), c.right) - math.Max(b.BBox.Left, c.left)
		if ov > bestOv {
			best, bestOv = k, ov
		}
	}
	if best >= 0 {
		return best
	}
	return slot(b.BBox.CenterX(), bounds)
}

// slot returns the index of the column whose boundaries contain x
func slot(x float64, bounds []float64) int {
	k := 0
	for k < len(bounds) && x >= bounds[k] {
		k++
	}
	return k
}

// split divides a block straddling column boundaries into one block per
// column, provided none of its lines crosses a boundary. It returns nil when
// the block does not separate cleanly.
func (r *ColumnReorderer) split(b *model.Block, bounds []float64) []placed {
	if len(b.Lines) < 2 {
		return nil
	}
	groups := make(map[int][]model.VisualLine)
	var order []int
	for _, l := range b.Lines {
		for _, x := range bounds {
			if l.BBox.Left < x && l.BBox.Right() > x {
				return nil
			}
		}
		k := slot(l.BBox.CenterX(), bounds)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], l)
	}
	if len(order) < 2 {
		return nil
	}
	sort.Ints(order)
	out := make([]placed, 0, len(order))
	for _, k := range order {
		var nb *model.Block
		if r.Rebuild != nil {
			nb = r.Rebuild(b.Page, groups[k])
		}
		if nb == nil {
			nb = model.NewParagraph(b.Page, groups[k]...)
		}
		out = append(out, placed{block: nb, col: k})
	}
	return out
}
