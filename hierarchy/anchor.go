package hierarchy

import (
	"sort"
	"strings"

	"github.com/tsawler/blocktree/model"
	"github.com/tsawler/blocktree/style"
)

// Anchor returns the title, subtitle and third candidates of a document:
// the first block in each of the three largest above-median size tiers on
// the earliest page that carries a header. The median comes from the style
// registry, or from the blocks themselves when the registry saw no words.
func Anchor(blocks []*model.Block, styles *style.Registry) model.TitleAnchor {
	page := -1
	for _, b := range blocks {
		if b.Is(model.TypeHeader) {
			page = b.Page
			break
		}
	}
	if page < 0 {
		return model.TitleAnchor{}
	}

	tol := style.DefaultConfig().SizeTolerance
	median := 0.0
	if styles != nil {
		tol = styles.Config().SizeTolerance
		median = styles.MedianSize()
	}
	if median == 0 {
		median = medianSize(blocks)
	}

	var cands []*model.Block
	for _, b := range blocks {
		if b.Page != page || b.Unstyled() || strings.TrimSpace(b.Text) == "" {
			continue
		}
		if !b.Is(model.TypeHeader) && !b.Is(model.TypePara) {
			continue
		}
		if b.Size()-median >= tol {
			cands = append(cands, b)
		}
	}

	tiers := sizeTiers(cands, tol)
	picked := make([]string, 3)
	for t := 0; t < len(tiers) && t < 3; t++ {
		for _, b := range cands {
			if s := b.Size(); s <= tiers[t] && tiers[t]-s < tol {
				picked[t] = strings.Join(strings.Fields(b.Text), " ")
				break
			}
		}
	}
	return model.TitleAnchor{Title: picked[0], Subtitle: picked[1], Third: picked[2]}
}

// sizeTiers returns the distinct block sizes, largest first, treating sizes
// within tol of a larger tier as that tier.
func sizeTiers(blocks []*model.Block, tol float64) []float64 {
	sizes := make([]float64, 0, len(blocks))
	for _, b := range blocks {
		sizes = append(sizes, b.Size())
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sizes)))
	var tiers []float64
	for _, s := range sizes {
		if len(tiers) == 0 || tiers[len(tiers)-1]-s >= tol {
			tiers = append(tiers, s)
		}
	}
	return tiers
}

// medianSize is the word-weighted median size of the styled blocks
func medianSize(blocks []*model.Block) float64 {
	type sized struct {
		size  float64
		words int
	}
	var all []sized
	total := 0
	for _, b := range blocks {
		if b.Unstyled() {
			continue
		}
		w := len(strings.Fields(b.Text))
		all = append(all, sized{b.Size(), w})
		total += w
	}
	if total == 0 {
		return 0
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].size < all[j].size })
	acc := 0
	for _, s := range all {
		acc += s.words
		if acc >= (total+1)/2 {
			return s.size
		}
	}
	return all[len(all)-1].size
}
