package hier

import (
	"math"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
	"github.com/cloudcalvin/gdsutil/pkg/gds"
	"github.com/cloudcalvin/gdsutil/pkg/geom"
)

// Extents computes struct bounding boxes of one library, memoizing results.
type Extents struct {
	lib    *gds.Library
	boxes  map[string]geom.BoundingBox
	active map[string]bool
}

// NewExtents creates an extent calculator for lib.
func NewExtents(lib *gds.Library) *Extents {
	return &Extents{
		lib:    lib,
		boxes:  make(map[string]geom.BoundingBox),
		active: make(map[string]bool),
	}
}

// Of returns the extent of the named struct in its own coordinates, including
// everything it references. References rotated by anything but a multiple of
// 90 degrees are not supported.
func (x *Extents) Of(name string) (geom.BoundingBox, error) {
	if bb, ok := x.boxes[name]; ok {
		return bb, nil
	}
	s := x.lib.Struct(name)
	if s == nil {
		return geom.BoundingBox{}, errors.New(errors.ErrCodeUnresolvedReference, "no struct named %q", name).For(name)
	}
	if x.active[name] {
		return geom.BoundingBox{}, errors.New(errors.ErrCodeReferenceCycle, "struct %q references itself", name).For(name)
	}
	x.active[name] = true
	defer delete(x.active, name)

	bb := geom.NewBoundingBox()
	for _, el := range s.Elements {
		eb, err := x.element(el)
		if err != nil {
			return geom.BoundingBox{}, err
		}
		bb.ExpandBox(eb)
	}
	x.boxes[name] = bb
	return bb, nil
}

func (x *Extents) element(el gds.Element) (geom.BoundingBox, error) {
	bb := geom.NewBoundingBox()
	switch e := el.(type) {
	case *gds.Boundary:
		expand(&bb, e.XY...)
	case *gds.Path:
		return pathExtent(e), nil
	case *gds.Text:
		bb.Expand(e.XY)
	case *gds.Node:
		expand(&bb, e.XY...)
	case *gds.Box:
		expand(&bb, e.XY[:]...)
	case *gds.StructRef:
		child, err := x.Of(e.Name)
		if err != nil {
			return bb, err
		}
		return placeBox(child, e.Strans, e.XY)
	case *gds.ArrayRef:
		child, err := x.Of(e.Name)
		if err != nil {
			return bb, err
		}
		for _, origin := range arrayCorners(e) {
			pb, err := placeBox(child, e.Strans, origin)
			if err != nil {
				return bb, err
			}
			bb.ExpandBox(pb)
		}
	}
	return bb, nil
}

func expand(bb *geom.BoundingBox, pts ...geom.Point) {
	for _, p := range pts {
		bb.Expand(p)
	}
}

func pathExtent(p *gds.Path) geom.BoundingBox {
	bb := geom.NewBoundingBox()
	expand(&bb, p.XY...)
	if bb.IsEmpty() || p.Width == nil {
		return bb
	}
	grow := abs64(int64(*p.Width)) / 2
	if p.PathType != nil && *p.PathType == gds.PathTypeExtended {
		var ext int64
		if p.BeginExtn != nil {
			ext = max(ext, int64(*p.BeginExtn))
		}
		if p.EndExtn != nil {
			ext = max(ext, int64(*p.EndExtn))
		}
		grow += ext
	}
	out := geom.NewBoundingBox()
	for _, c := range bb.Corners() {
		out.Expand(geom.Point{X: sat(int64(c.X) - grow), Y: sat(int64(c.Y) - grow)})
		out.Expand(geom.Point{X: sat(int64(c.X) + grow), Y: sat(int64(c.Y) + grow)})
	}
	return out
}

// arrayCorners returns the origins of the four corner copies of an array.
func arrayCorners(a *gds.ArrayRef) []geom.Point {
	cols, rows := max(int64(a.Cols), 1), max(int64(a.Rows), 1)
	o, c, r := a.XY[0], a.XY[1], a.XY[2]
	at := func(i, j int64) geom.Point {
		x := int64(o.X) + i*(int64(c.X)-int64(o.X))/cols + j*(int64(r.X)-int64(o.X))/rows
		y := int64(o.Y) + i*(int64(c.Y)-int64(o.Y))/cols + j*(int64(r.Y)-int64(o.Y))/rows
		return geom.Point{X: sat(x), Y: sat(y)}
	}
	return []geom.Point{at(0, 0), at(cols-1, 0), at(0, rows-1), at(cols-1, rows-1)}
}

// placeBox maps a child extent through a reference transform: reflect about
// the x-axis, magnify, rotate, then translate to origin.
func placeBox(child geom.BoundingBox, st *gds.Strans, origin geom.Point) (geom.BoundingBox, error) {
	out := geom.NewBoundingBox()
	if child.IsEmpty() {
		return out, nil
	}
	deg := st.Degrees()
	if deg != math.Trunc(deg) {
		return out, errors.New(errors.ErrCodeUnsupported, "reference angle %v is not a multiple of 90 degrees", deg)
	}
	rot, err := geom.RotationFromDegrees(int(deg))
	if err != nil {
		return out, err
	}
	mag := st.Magnification()
	for _, c := range child.Corners() {
		x, y := float64(c.X), float64(c.Y)
		if st.IsReflected() {
			y = -y
		}
		x, y = x*mag, y*mag
		switch rot {
		case geom.R90:
			x, y = -y, x
		case geom.R180:
			x, y = -x, -y
		case geom.R270:
			x, y = y, -x
		}
		px, err := geom.CoordFromFloat(x + float64(origin.X))
		if err != nil {
			return out, err
		}
		py, err := geom.CoordFromFloat(y + float64(origin.Y))
		if err != nil {
			return out, err
		}
		out.Expand(geom.Pt(px, py))
	}
	return out, nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func sat(v int64) geom.Coord {
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	}
	return geom.Coord(v)
}
