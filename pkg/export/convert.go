package export

import (
	"slices"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
	"github.com/cloudcalvin/gdsutil/pkg/gds"
	"github.com/cloudcalvin/gdsutil/pkg/geom"
)

// Convert turns one geometry into a stream element on the given layer and
// datatype, carrying props as element properties.
//
// Rectangles become five-point closed boundaries (LL, LR, UR, UL, LL).
// Polygons become boundaries whose ring is closed by repeating the first
// point, so the output always has one point more than the input. Polygons
// with holes keep only their exterior ring. Paths keep their width and map
// flat, round and extended ends to pathtypes 0, 1 and 2.
// Every other variant fails with ErrCodeUnrepresentableGeometry.
func Convert(g geom.Geometry, layer, datatype int16, props []gds.Property) (gds.Element, error) {
	switch s := g.(type) {
	case geom.Rect:
		c := s.BoundingBox().Corners()
		return &gds.Boundary{
			Layer:      layer,
			Datatype:   datatype,
			XY:         []geom.Point{c[0], c[1], c[2], c[3], c[0]},
			Properties: props,
		}, nil

	case geom.SimplePolygon:
		return polygon(s, layer, datatype, props)

	case geom.Polygon:
		return polygon(s.Exterior, layer, datatype, props)

	case geom.Path:
		return path(s, layer, datatype, props)

	case nil:
		return nil, errors.New(errors.ErrCodeUnrepresentableGeometry, "missing geometry")
	}
	return nil, errors.New(errors.ErrCodeUnrepresentableGeometry,
		"%s geometry has no stream-format equivalent", g.Kind()).For(g.Kind())
}

func polygon(p geom.SimplePolygon, layer, datatype int16, props []gds.Property) (gds.Element, error) {
	if len(p.Points) < 3 {
		return nil, errors.New(errors.ErrCodeUnrepresentableGeometry,
			"polygon with %d points", len(p.Points)).For("polygon")
	}
	return &gds.Boundary{
		Layer:      layer,
		Datatype:   datatype,
		XY:         append(slices.Clone(p.Points), p.Points[0]),
		Properties: props,
	}, nil
}

func path(p geom.Path, layer, datatype int16, props []gds.Property) (gds.Element, error) {
	width := p.Width
	out := &gds.Path{
		Layer:      layer,
		Datatype:   datatype,
		Width:      &width,
		XY:         append([]geom.Point(nil), p.Points...),
		Properties: props,
	}

	var pathType int16
	switch p.End.Style {
	case geom.EndFlat:
		pathType = gds.PathTypeFlat
	case geom.EndRound:
		pathType = gds.PathTypeRound
	case geom.EndExtended:
		if p.End.Begin != p.End.End {
			return nil, errors.New(errors.ErrCodeUnrepresentableGeometry,
				"path extensions %d/%d differ", p.End.Begin, p.End.End).For("path")
		}
		pathType = gds.PathTypeSquare
		begin, end := p.End.Begin, p.End.End
		out.BeginExtn, out.EndExtn = &begin, &end
	default:
		return nil, errors.New(errors.ErrCodeUnrepresentableGeometry,
			"path end style %s", p.End.Style).For("path")
	}
	out.PathType = &pathType
	return out, nil
}
