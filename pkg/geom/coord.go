// Package geom provides the integer geometry primitives shared by the layout
// model, the stream-format exporter and the grid-snap walker.
//
// All coordinates use a single fixed-width integer type, [Coord], which matches
// the 4-byte XY precision of the stream format. Values computed in wider types
// (offsets, magnified points, micron values from LEF/DEF) are brought back
// through [CoordFromInt64] or [CoordFromFloat], which fail instead of wrapping.
package geom

import (
	"fmt"
	"math"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
)

// Coord is a database-unit coordinate.
type Coord = int32

// Point is a location in database units.
type Point struct {
	X Coord `json:"x" yaml:"x" toml:"x"`
	Y Coord `json:"y" yaml:"y" toml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y Coord) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by d without overflow checks.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// String returns "(x, y)".
func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// CoordFromInt64 converts v to a Coord, failing if it does not fit.
func CoordFromInt64(v int64) (Coord, error) {
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, errors.New(errors.ErrCodeCoordinateOverflow, "coordinate %d out of range", v)
	}
	return Coord(v), nil
}

// CoordFromFloat rounds v half away from zero and converts it to a Coord.
func CoordFromFloat(v float64) (Coord, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New(errors.ErrCodeCoordinateOverflow, "coordinate %v is not finite", v)
	}
	r := math.Round(v)
	if r > math.MaxInt32 || r < math.MinInt32 {
		return 0, errors.New(errors.ErrCodeCoordinateOverflow, "coordinate %v out of range", v)
	}
	return Coord(r), nil
}

// PointFromInt64 converts a wide point, failing if either axis does not fit.
func PointFromInt64(x, y int64) (Point, error) {
	cx, err := CoordFromInt64(x)
	if err != nil {
		return Point{}, err
	}
	cy, err := CoordFromInt64(y)
	if err != nil {
		return Point{}, err
	}
	return Point{X: cx, Y: cy}, nil
}

func clamp(v int64) Coord {
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	}
	return Coord(v)
}
