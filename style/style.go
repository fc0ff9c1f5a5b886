package style

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tsawler/blocktree/model"
)

// NoStyle is the class id of lines without usable style metadata
const NoStyle = -1

// Config holds the thresholds used by the registry
type Config struct {
	// SizeTolerance is the size difference below which two descriptors
	// share a class.
	// Default: 1.0
	SizeTolerance float64

	// BoldWeight is the weight at or above which a font counts as bold.
	// Default: 600
	BoldWeight int

	// HeaderSizeDelta is how far above the median size a class must be to
	// count as a likely header on size alone.
	// Default: 0.5
	HeaderSizeDelta float64

	// FootnoteSizeDelta is how far below the median size a class must be to
	// count as a likely footnote.
	// Default: 1.0
	FootnoteSizeDelta float64
}

// DefaultConfig returns the default registry configuration
func DefaultConfig() Config {
	return Config{
		SizeTolerance:     1.0,
		BoldWeight:        600,
		HeaderSizeDelta:   0.5,
		FootnoteSizeDelta: 1.0,
	}
}

// Descriptor is the full style signature of a line
type Descriptor struct {
	Family    string
	Style     string
	Size      float64
	Weight    int
	Alignment model.Alignment
}

// FromFont builds a descriptor from a run's font, filling in weight and
// style from the family name when the backend left them empty.
func FromFont(f *model.FontDescriptor, align model.Alignment) Descriptor {
	if f == nil {
		return Descriptor{Alignment: align}
	}
	family := normalizeFamily(f.Family)
	d := Descriptor{
		Family:    family,
		Style:     strings.ToLower(strings.TrimSpace(f.Style)),
		Size:      f.Size,
		Weight:    f.Weight,
		Alignment: align,
	}
	if d.Weight <= 0 {
		d.Weight = weightFromName(f.Family)
	}
	if d.Style == "" {
		d.Style = styleFromName(f.Family)
	}
	return d
}

// normalizeFamily strips a PDF subset prefix ("ABCDEF+Times") and lowercases.
func normalizeFamily(family string) string {
	if i := strings.IndexByte(family, '+'); i == 6 {
		family = family[i+1:]
	}
	return strings.ToLower(strings.TrimSpace(family))
}

func weightFromName(name string) int {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "black"), strings.Contains(n, "heavy"):
		return 900
	case strings.Contains(n, "extrabold"), strings.Contains(n, "ultrabold"):
		return 800
	case strings.Contains(n, "semibold"), strings.Contains(n, "demibold"), strings.Contains(n, "demi"):
		return 600
	case strings.Contains(n, "bold"):
		return 700
	case strings.Contains(n, "medium"):
		return 500
	case strings.Contains(n, "light"), strings.Contains(n, "thin"):
		return 300
	}
	return 400
}

func styleFromName(name string) string {
	n := strings.ToLower(name)
	if strings.Contains(n, "italic") || strings.Contains(n, "oblique") {
		return "italic"
	}
	return "normal"
}

type class struct {
	desc  Descriptor
	lines int
	words int
}

// Registry assigns style classes for one document and accumulates their
// frequency statistics. It is not safe for concurrent use.
type Registry struct {
	config  Config
	classes []class
	// byKey lists class ids per exact (family, style, weight, alignment) key
	// in creation order.
	byKey map[string][]int
}

// NewRegistry creates a registry with the default configuration
func NewRegistry() *Registry {
	return NewRegistryWithConfig(DefaultConfig())
}

// NewRegistryWithConfig creates a registry with a custom configuration
func NewRegistryWithConfig(config Config) *Registry {
	return &Registry{
		config: config,
		byKey:  make(map[string][]int),
	}
}

// Config returns the registry configuration
func (r *Registry) Config() Config {
	return r.config
}

func key(d Descriptor) string {
	var sb strings.Builder
	sb.WriteString(d.Family)
	sb.WriteByte('|')
	sb.WriteString(d.Style)
	sb.WriteByte('|')
	sb.WriteString(strconv.Itoa(d.Weight))
	sb.WriteByte('|')
	sb.WriteString(d.Alignment.String())
	return sb.String()
}

// Classify returns the class id for d, creating a new class when no existing
// class matches. Descriptors without a size map to NoStyle.
func (r *Registry) Classify(d Descriptor) int {
	if d.Size <= 0 {
		return NoStyle
	}
	k := key(d)
	for _, id := range r.byKey[k] {
		if math.Abs(r.classes[id].desc.Size-d.Size) < r.config.SizeTolerance {
			return id
		}
	}
	id := len(r.classes)
	r.classes = append(r.classes, class{desc: d})
	r.byKey[k] = append(r.byKey[k], id)
	return id
}

// Observe records one line of the class with the given word count
func (r *Registry) Observe(id, words int) {
	if !r.valid(id) {
		return
	}
	r.classes[id].lines++
	r.classes[id].words += words
}

func (r *Registry) valid(id int) bool {
	return id >= 0 && id < len(r.classes)
}

// Len returns the number of classes
func (r *Registry) Len() int {
	return len(r.classes)
}

// Descriptor returns the canonical descriptor of a class
func (r *Registry) Descriptor(id int) (Descriptor, bool) {
	if !r.valid(id) {
		return Descriptor{}, false
	}
	return r.classes[id].desc, true
}

// Size returns the canonical size of a class, or 0 for NoStyle
func (r *Registry) Size(id int) float64 {
	if !r.valid(id) {
		return 0
	}
	return r.classes[id].desc.Size
}

// IsBold reports whether the class weight reaches the bold threshold
func (r *Registry) IsBold(id int) bool {
	return r.valid(id) && r.classes[id].desc.Weight >= r.config.BoldWeight
}

// MedianSize returns the word-weighted median font size across all observed
// classes, or 0 when nothing has been observed.
func (r *Registry) MedianSize() float64 {
	type sized struct {
		size  float64
		words int
	}
	var all []sized
	total := 0
	for _, c := range r.classes {
		if c.words > 0 {
			all = append(all, sized{c.desc.Size, c.words})
			total += c.words
		}
	}
	if total == 0 {
		return 0
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].size < all[j].size })
	half := (total + 1) / 2
	acc := 0
	for _, s := range all {
		acc += s.words
		if acc >= half {
			return s.size
		}
	}
	return all[len(all)-1].size
}

// BodyID returns the class carrying the most words, or NoStyle
func (r *Registry) BodyID() int {
	best, bestWords := NoStyle, 0
	for id, c := range r.classes {
		if c.words > bestWords {
			best, bestWords = id, c.words
		}
	}
	return best
}

// BodySize returns the size of the class carrying the most words
func (r *Registry) BodySize() float64 {
	return r.Size(r.BodyID())
}

// IsLikelyHeader reports whether a class is typographically set apart from
// the body: larger than the median, or bold at no less than the median.
func (r *Registry) IsLikelyHeader(id int) bool {
	if !r.valid(id) || id == r.BodyID() {
		return false
	}
	median := r.MedianSize()
	if median == 0 {
		return false
	}
	size := r.classes[id].desc.Size
	if size-median >= r.config.HeaderSizeDelta {
		return true
	}
	return r.IsBold(id) && size >= median-r.config.HeaderSizeDelta
}

// IsLikelyFootnote reports whether a class is clearly smaller than the
// median and not bold.
func (r *Registry) IsLikelyFootnote(id int) bool {
	if !r.valid(id) {
		return false
	}
	median := r.MedianSize()
	if median == 0 {
		return false
	}
	return median-r.classes[id].desc.Size >= r.config.FootnoteSizeDelta && !r.IsBold(id)
}

// Rank returns the position of the class's size among the distinct sizes in
// the document, largest first. NoStyle ranks after every class.
func (r *Registry) Rank(id int) int {
	if !r.valid(id) {
		return len(r.classes)
	}
	size := r.classes[id].desc.Size
	var larger []float64
	for _, c := range r.classes {
		if c.desc.Size-size >= r.config.SizeTolerance {
			dup := false
			for _, s := range larger {
				if math.Abs(s-c.desc.Size) < r.config.SizeTolerance {
					dup = true
					break
				}
			}
			if !dup {
				larger = append(larger, c.desc.Size)
			}
		}
	}
	return len(larger)
}

// Snapshot returns the statistics of every class in id order, with its size
// rank and its header and footnote bands.
func (r *Registry) Snapshot() []model.StyleStat {
	out := make([]model.StyleStat, 0, len(r.classes))
	for id, c := range r.classes {
		out = append(out, model.StyleStat{
			ID:        id,
			Family:    c.desc.Family,
			Style:     c.desc.Style,
			Size:      c.desc.Size,
			Weight:    c.desc.Weight,
			Alignment: c.desc.Alignment.String(),
			Lines:     c.lines,
			Words:     c.words,
			Rank:      r.Rank(id),
			Header:    r.IsLikelyHeader(id),
			Footnote:  r.IsLikelyFootnote(id),
		})
	}
	return out
}
