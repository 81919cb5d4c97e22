package hier

import (
	"github.com/cloudcalvin/gdsutil/pkg/errors"
	"github.com/cloudcalvin/gdsutil/pkg/gds"
	"github.com/cloudcalvin/gdsutil/pkg/geom"
)

// Snap rounds v to the nearest multiple of grid, rounding ties away from
// zero so that mirrored coordinates snap symmetrically. grid must be
// positive.
func Snap(v, grid geom.Coord) (geom.Coord, error) {
	if grid <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidGridTolerance, "grid %d must be positive", grid)
	}
	g, x := int64(grid), int64(v)
	neg := x < 0
	if neg {
		x = -x
	}
	q := (2*x + g) / (2 * g) * g
	if neg {
		q = -q
	}
	return geom.CoordFromInt64(q)
}

// Quantize snaps the hierarchy below root to grid. Boundaries, paths, texts,
// array references, nodes and boxes have every point snapped; references
// matching opts.Patterns have their origin snapped and are descended while
// depth remains.
//
// A non-positive grid fails with ErrCodeInvalidGridTolerance before the
// library is touched.
func Quantize(lib *gds.Library, root string, grid geom.Coord, opts Options) error {
	if grid <= 0 {
		return errors.New(errors.ErrCodeInvalidGridTolerance, "grid %d must be positive", grid)
	}
	return walk(lib, root, opts, &quantizer{grid: grid})
}

type quantizer struct {
	grid geom.Coord
}

func (q *quantizer) point(s *gds.Struct, p *geom.Point) error {
	x, err := Snap(p.X, q.grid)
	if err != nil {
		return errors.Wrap(errors.GetCode(err), err, "snap %v in %q", *p, s.Name).For(s.Name)
	}
	y, err := Snap(p.Y, q.grid)
	if err != nil {
		return errors.Wrap(errors.GetCode(err), err, "snap %v in %q", *p, s.Name).For(s.Name)
	}
	p.X, p.Y = x, y
	return nil
}

func (q *quantizer) points(s *gds.Struct, pts []geom.Point) error {
	for i := range pts {
		if err := q.point(s, &pts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (q *quantizer) element(s *gds.Struct, el gds.Element) error {
	switch e := el.(type) {
	case *gds.Boundary:
		return q.points(s, e.XY)
	case *gds.Path:
		return q.points(s, e.XY)
	case *gds.ArrayRef:
		return q.points(s, e.XY[:])
	case *gds.Text:
		return q.point(s, &e.XY)
	case *gds.Node:
		return q.points(s, e.XY)
	case *gds.Box:
		return q.points(s, e.XY[:])
	}
	return nil
}

func (q *quantizer) reference(s *gds.Struct, ref *gds.StructRef) error {
	return q.point(s, &ref.XY)
}
