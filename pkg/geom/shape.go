package geom

// Geometry is one of the shape variants a layout cell can hold.
// The set of variants is closed; see Rect, SimplePolygon, Polygon, Path,
// PointShape and Edge.
type Geometry interface {
	// BoundingBox returns the extent of the shape.
	BoundingBox() BoundingBox
	// Kind returns a short lower-case name of the variant.
	Kind() string

	geometry()
}

// Rect is an axis-aligned rectangle given by its lower-left and upper-right corners.
type Rect struct {
	Min Point
	Max Point
}

// NewRect returns the rectangle spanned by two corners in any order.
func NewRect(a, b Point) Rect {
	bb := Box(a, b)
	return Rect{Min: bb.Min, Max: bb.Max}
}

func (r Rect) BoundingBox() BoundingBox { return Box(r.Min, r.Max) }
func (Rect) Kind() string                { return "rect" }
func (Rect) geometry()                   {}

// SimplePolygon is a polygon without holes. The ring is implicitly closed:
// the last point is not a repeat of the first.
type SimplePolygon struct {
	Points []Point
}

func (p SimplePolygon) BoundingBox() BoundingBox { return boxOf(p.Points) }
func (SimplePolygon) Kind() string                { return "polygon" }
func (SimplePolygon) geometry()                   {}

// Polygon is a polygon with an exterior ring and zero or more holes.
type Polygon struct {
	Exterior SimplePolygon
	Holes    []SimplePolygon
}

func (p Polygon) BoundingBox() BoundingBox { return p.Exterior.BoundingBox() }
func (Polygon) Kind() string                { return "polygon-with-holes" }
func (Polygon) geometry()                   {}

// EndStyle selects how a path is terminated at its first and last point.
type EndStyle uint8

const (
	// EndFlat ends the path flush with its end points.
	EndFlat EndStyle = iota
	// EndRound ends the path with half-circles.
	EndRound
	// EndExtended extends the path past its end points by PathEnd.Begin and PathEnd.End.
	EndExtended
)

// String returns the lower-case style name.
func (s EndStyle) String() string {
	switch s {
	case EndFlat:
		return "flat"
	case EndRound:
		return "round"
	case EndExtended:
		return "extended"
	default:
		return "unknown"
	}
}

// PathEnd describes the termination of a path.
type PathEnd struct {
	Style EndStyle
	Begin Coord // extension past the first point, EndExtended only
	End   Coord // extension past the last point, EndExtended only
}

// Path is a center-line with a width.
type Path struct {
	Points []Point
	Width  Coord
	End    PathEnd
}

// BoundingBox returns the center-line box grown by half the width and the
// larger extension on every side.
func (p Path) BoundingBox() BoundingBox {
	bb := boxOf(p.Points)
	if bb.IsEmpty() {
		return bb
	}
	grow := int64(p.Width) / 2
	if p.End.Style == EndExtended {
		grow += max(int64(p.End.Begin), int64(p.End.End), 0)
	}
	return BoundingBox{
		Min: Point{X: clamp(int64(bb.Min.X) - grow), Y: clamp(int64(bb.Min.Y) - grow)},
		Max: Point{X: clamp(int64(bb.Max.X) + grow), Y: clamp(int64(bb.Max.Y) + grow)},
	}
}
func (Path) Kind() string { return "path" }
func (Path) geometry()    {}

// PointShape is a single zero-area point.
type PointShape struct {
	At Point
}

func (p PointShape) BoundingBox() BoundingBox { return Box(p.At, p.At) }
func (PointShape) Kind() string                { return "point" }
func (PointShape) geometry()                   {}

// Edge is a zero-width line segment.
type Edge struct {
	Start Point
	End   Point
}

func (e Edge) BoundingBox() BoundingBox { return Box(e.Start, e.End) }
func (Edge) Kind() string                { return "edge" }
func (Edge) geometry()                   {}

func boxOf(pts []Point) BoundingBox {
	bb := NewBoundingBox()
	for _, p := range pts {
		bb.Expand(p)
	}
	return bb
}

// Translate returns a copy of g moved by d.
func Translate(g Geometry, d Point) Geometry {
	switch s := g.(type) {
	case Rect:
		return Rect{Min: s.Min.Add(d), Max: s.Max.Add(d)}
	case SimplePolygon:
		return SimplePolygon{Points: translatePoints(s.Points, d)}
	case Polygon:
		holes := make([]SimplePolygon, len(s.Holes))
		for i, h := range s.Holes {
			holes[i] = SimplePolygon{Points: translatePoints(h.Points, d)}
		}
		return Polygon{Exterior: SimplePolygon{Points: translatePoints(s.Exterior.Points, d)}, Holes: holes}
	case Path:
		return Path{Points: translatePoints(s.Points, d), Width: s.Width, End: s.End}
	case PointShape:
		return PointShape{At: s.At.Add(d)}
	case Edge:
		return Edge{Start: s.Start.Add(d), End: s.End.Add(d)}
	}
	return g
}

func translatePoints(pts []Point, d Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = p.Add(d)
	}
	return out
}
