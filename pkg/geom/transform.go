package geom

import (
	"fmt"
	"math"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
)

// Rotation is a counter-clockwise rotation by a multiple of 90 degrees.
type Rotation uint8

const (
	R0 Rotation = iota
	R90
	R180
	R270
)

// Rotations lists every rotation in ascending order.
var Rotations = [4]Rotation{R0, R90, R180, R270}

// Degrees returns the rotation angle in degrees.
func (r Rotation) Degrees() int {
	return int(r%4) * 90
}

// String returns e.g. "R90".
func (r Rotation) String() string {
	return fmt.Sprintf("R%d", r.Degrees())
}

// RotationFromDegrees converts a multiple of 90 degrees, positive or negative.
func RotationFromDegrees(deg int) (Rotation, error) {
	if deg%90 != 0 {
		return R0, errors.New(errors.ErrCodeUnsupported, "rotation %d is not a multiple of 90 degrees", deg)
	}
	q := (deg / 90) % 4
	if q < 0 {
		q += 4
	}
	return Rotation(q), nil
}

// Transform places a cell inside its parent. Points are mirrored first
// (x becomes -x), then rotated counter-clockwise, then magnified, then displaced.
type Transform struct {
	Displacement  Point
	Rotation      Rotation
	Mirror        bool
	Magnification float64
}

// Identity returns the transform that leaves points unchanged.
func Identity() Transform {
	return Transform{Magnification: 1}
}

// Scale returns the magnification, treating 0 as 1.
func (t Transform) Scale() float64 {
	if t.Magnification == 0 {
		return 1
	}
	return t.Magnification
}

// Apply maps p from the child's coordinate system into the parent's.
// Results that do not fit a Coord saturate.
func (t Transform) Apply(p Point) Point {
	x, y := int64(p.X), int64(p.Y)
	if t.Mirror {
		x = -x
	}
	x, y = rotate(x, y, t.Rotation)
	if s := t.Scale(); s != 1 {
		x = int64(math.Round(float64(x) * s))
		y = int64(math.Round(float64(y) * s))
	}
	return Point{
		X: clamp(x + int64(t.Displacement.X)),
		Y: clamp(y + int64(t.Displacement.Y)),
	}
}

// ApplyBox maps every corner of bb and returns their bounding box.
func (t Transform) ApplyBox(bb BoundingBox) BoundingBox {
	out := NewBoundingBox()
	if bb.IsEmpty() {
		return out
	}
	for _, c := range bb.Corners() {
		out.Expand(t.Apply(c))
	}
	return out
}

// Orientation returns t without its displacement.
func (t Transform) Orientation() Transform {
	t.Displacement = Point{}
	return t
}

// PlaceBox returns the box covered by a cell with extent bb placed by t,
// where the displacement names the lower-left corner of the placed cell
// rather than the image of its origin.
func (t Transform) PlaceBox(bb BoundingBox) BoundingBox {
	if bb.IsEmpty() {
		return NewBoundingBox()
	}
	placed := t.Orientation().ApplyBox(bb)
	return Box(t.Displacement, Point{
		X: clamp(int64(t.Displacement.X) + placed.Width()),
		Y: clamp(int64(t.Displacement.Y) + placed.Height()),
	})
}

func rotate(x, y int64, r Rotation) (int64, int64) {
	switch r % 4 {
	case R90:
		return -y, x
	case R180:
		return -x, -y
	case R270:
		return y, -x
	}
	return x, y
}
