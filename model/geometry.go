package model

import "math"

// BBox is an axis-aligned rectangle in page units. Coordinates are top-down:
// Top grows toward the bottom of the page, matching what extraction backends
// report for text runs.
type BBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewBBox creates a bounding box from its left/top corner and size
func NewBBox(left, top, width, height float64) BBox {
	return BBox{Left: left, Top: top, Width: width, Height: height}
}

// NewBBoxFromEdges creates a bounding box from its four edges. Edges given in
// the wrong order are swapped.
func NewBBoxFromEdges(left, top, right, bottom float64) BBox {
	if right < left {
		left, right = right, left
	}
	if bottom < top {
		top, bottom = bottom, top
	}
	return BBox{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// Right returns the right edge
func (b BBox) Right() float64 {
	return b.Left + b.Width
}

// Bottom returns the bottom edge
func (b BBox) Bottom() float64 {
	return b.Top + b.Height
}

// CenterX returns the horizontal center
func (b BBox) CenterX() float64 {
	return b.Left + b.Width/2
}

// CenterY returns the vertical center
func (b BBox) CenterY() float64 {
	return b.Top + b.Height/2
}

// Intersects checks if two bounding boxes intersect
func (b BBox) Intersects(other BBox) bool {
	return !(b.Right() < other.Left ||
		b.Left > other.Right() ||
		b.Bottom() < other.Top ||
		b.Top > other.Bottom())
}

// Intersection returns the intersection of two bounding boxes
func (b BBox) Intersection(other BBox) BBox {
	if !b.Intersects(other) {
		return BBox{}
	}
	return NewBBoxFromEdges(
		math.Max(b.Left, other.Left),
		math.Max(b.Top, other.Top),
		math.Min(b.Right(), other.Right()),
		math.Min(b.Bottom(), other.Bottom()),
	)
}

// Union returns the smallest box containing both boxes. A zero box is the
// identity so callers can fold over a slice starting from BBox{}.
func (b BBox) Union(other BBox) BBox {
	if b.IsZero() {
		return other
	}
	if other.IsZero() {
		return b
	}
	return NewBBoxFromEdges(
		math.Min(b.Left, other.Left),
		math.Min(b.Top, other.Top),
		math.Max(b.Right(), other.Right()),
		math.Max(b.Bottom(), other.Bottom()),
	)
}

// HorizontalOverlap returns the width shared by the two boxes' x-ranges
func (b BBox) HorizontalOverlap(other BBox) float64 {
	return math.Max(0, math.Min(b.Right(), other.Right())-math.Max(b.Left, other.Left))
}

// VerticalOverlap returns the height shared by the two boxes' y-ranges
func (b BBox) VerticalOverlap(other BBox) float64 {
	return math.Max(0, math.Min(b.Bottom(), other.Bottom())-math.Max(b.Top, other.Top))
}

// Area returns the area of the bounding box
func (b BBox) Area() float64 {
	return b.Width * b.Height
}

// OverlapRatio calculates the overlap ratio with another box
// Returns value between 0 and 1
func (b BBox) OverlapRatio(other BBox) float64 {
	if !b.Intersects(other) {
		return 0
	}
	minArea := math.Min(b.Area(), other.Area())
	if minArea == 0 {
		return 0
	}
	return b.Intersection(other).Area() / minArea
}

// IsZero reports whether the box is the zero value
func (b BBox) IsZero() bool {
	return b == BBox{}
}

// ColumnSpan is one of a table's disjoint horizontal intervals
type ColumnSpan struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// Width returns the span width
func (s ColumnSpan) Width() float64 {
	return s.Right - s.Left
}

// Overlap returns how much of [left, right] falls inside the span
func (s ColumnSpan) Overlap(left, right float64) float64 {
	return math.Max(0, math.Min(s.Right, right)-math.Max(s.Left, left))
}

// Contains reports whether x falls inside the span
func (s ColumnSpan) Contains(x float64) bool {
	return x >= s.Left && x <= s.Right
}

// Expand widens the span to cover [left, right]
func (s ColumnSpan) Expand(left, right float64) ColumnSpan {
	return ColumnSpan{Left: math.Min(s.Left, left), Right: math.Max(s.Right, right)}
}
