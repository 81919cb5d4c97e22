package geom

import "math"

// BoundingBox is an axis-aligned box. The box returned by NewBoundingBox is
// empty and grows through Expand and ExpandBox.
type BoundingBox struct {
	Min Point
	Max Point
}

// NewBoundingBox creates an empty bounding box.
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Point{X: math.MaxInt32, Y: math.MaxInt32},
		Max: Point{X: math.MinInt32, Y: math.MinInt32},
	}
}

// Box returns the bounding box spanned by two corners in any order.
func Box(a, b Point) BoundingBox {
	bb := NewBoundingBox()
	bb.Expand(a)
	bb.Expand(b)
	return bb
}

// IsEmpty reports whether no point has been added to the box.
func (bb BoundingBox) IsEmpty() bool {
	return bb.Min.X > bb.Max.X || bb.Min.Y > bb.Max.Y
}

// Expand grows the box to include p.
func (bb *BoundingBox) Expand(p Point) {
	if p.X < bb.Min.X {
		bb.Min.X = p.X
	}
	if p.Y < bb.Min.Y {
		bb.Min.Y = p.Y
	}
	if p.X > bb.Max.X {
		bb.Max.X = p.X
	}
	if p.Y > bb.Max.Y {
		bb.Max.Y = p.Y
	}
}

// ExpandBox grows the box to include other. Empty boxes are ignored.
func (bb *BoundingBox) ExpandBox(other BoundingBox) {
	if !other.IsEmpty() {
		bb.Expand(other.Min)
		bb.Expand(other.Max)
	}
}

// Width returns the horizontal extent, or 0 for an empty box.
func (bb BoundingBox) Width() int64 {
	if bb.IsEmpty() {
		return 0
	}
	return int64(bb.Max.X) - int64(bb.Min.X)
}

// Height returns the vertical extent, or 0 for an empty box.
func (bb BoundingBox) Height() int64 {
	if bb.IsEmpty() {
		return 0
	}
	return int64(bb.Max.Y) - int64(bb.Min.Y)
}

// Corners returns the four corners in LL, LR, UR, UL order.
func (bb BoundingBox) Corners() [4]Point {
	return [4]Point{
		bb.Min,
		{X: bb.Max.X, Y: bb.Min.Y},
		bb.Max,
		{X: bb.Min.X, Y: bb.Max.Y},
	}
}

// Contains reports whether p lies inside or on the edge of the box.
func (bb BoundingBox) Contains(p Point) bool {
	return p.X >= bb.Min.X && p.X <= bb.Max.X &&
		p.Y >= bb.Min.Y && p.Y <= bb.Max.Y
}
