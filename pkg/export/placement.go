package export

import (
	"github.com/cloudcalvin/gdsutil/pkg/errors"
	"github.com/cloudcalvin/gdsutil/pkg/gds"
	"github.com/cloudcalvin/gdsutil/pkg/geom"
)

// Placement is an instance transform expressed the way a stream-format
// reference needs it: reflect about the x-axis, rotate, then translate to
// Origin.
type Placement struct {
	Origin    geom.Point
	Angle     geom.Rotation
	Reflected bool
}

type extent uint8

const (
	none extent = iota
	byWidth
	byHeight
)

func (e extent) of(w, h int64) int64 {
	switch e {
	case byWidth:
		return w
	case byHeight:
		return h
	}
	return 0
}

type orientation struct {
	dx, dy extent
	angle  geom.Rotation
}

// orientations is indexed by [mirror][rotation]. Layout displacements name
// the lower-left corner of the placed template, whereas references rotate
// about the template origin, so the origin moves by a width/height-dependent
// offset that is not itself rotated. The table holds that offset for a
// template whose box starts at its origin; otherwise the oriented box corner
// is subtracted as well:
//
//	mirror rotation  offset  angle
//	no     0         (0,0)   0
//	no     90        (h,0)   90
//	no     180       (w,h)   180
//	no     270       (0,w)   270
//	yes    0         (w,0)   180
//	yes    90        (h,w)   270
//	yes    180       (0,h)   0
//	yes    270       (0,0)   90
var orientations = [2][4]orientation{
	{
		{none, none, geom.R0},
		{byHeight, none, geom.R90},
		{byWidth, byHeight, geom.R180},
		{none, byWidth, geom.R270},
	},
	{
		{byWidth, none, geom.R180},
		{byHeight, byWidth, geom.R270},
		{none, byHeight, geom.R0},
		{none, none, geom.R90},
	},
}

func mirrorIndex(m bool) int {
	if m {
		return 1
	}
	return 0
}

type offset struct{ x, y int64 }

// orientedMin maps the lower-left corner of bbox through the orientation
// alone.
func orientedMin(r geom.Rotation, mirror bool, bbox geom.BoundingBox) offset {
	x, y := int64(bbox.Min.X), int64(bbox.Min.Y)
	if mirror {
		x = -x
	}
	switch r % 4 {
	case geom.R90:
		x, y = -y, x
	case geom.R180:
		x, y = -x, -y
	case geom.R270:
		x, y = y, -x
	}
	return offset{x, y}
}

// ResolvePlacement converts a layout transform (mirror x, rotate, displace)
// into a reference placement for a template whose bounding box is bbox.
// An empty bbox fails with ErrCodeEmptyBoundingBox.
func ResolvePlacement(tf geom.Transform, bbox geom.BoundingBox) (Placement, error) {
	if bbox.IsEmpty() {
		return Placement{}, errors.New(errors.ErrCodeEmptyBoundingBox, "template has an empty bounding box")
	}
	w, h := bbox.Width(), bbox.Height()
	o := orientations[mirrorIndex(tf.Mirror)][tf.Rotation%4]
	lo := orientedMin(tf.Rotation, tf.Mirror, bbox)

	origin, err := geom.PointFromInt64(
		int64(tf.Displacement.X)+o.dx.of(w, h)-lo.x,
		int64(tf.Displacement.Y)+o.dy.of(w, h)-lo.y,
	)
	if err != nil {
		return Placement{}, err
	}
	return Placement{Origin: origin, Angle: o.angle, Reflected: tf.Mirror}, nil
}

// LayoutTransform is the inverse of ResolvePlacement: it recovers the layout
// transform (lower-left displacement, mirror, rotation) of a reference
// placement. The magnification is left at 1.
func LayoutTransform(p Placement, bbox geom.BoundingBox) (geom.Transform, error) {
	if bbox.IsEmpty() {
		return geom.Transform{}, errors.New(errors.ErrCodeEmptyBoundingBox, "template has an empty bounding box")
	}
	w, h := bbox.Width(), bbox.Height()
	row := orientations[mirrorIndex(p.Reflected)]
	for rot, o := range row {
		if o.angle != p.Angle%4 {
			continue
		}
		lo := orientedMin(geom.Rotation(rot), p.Reflected, bbox)
		disp, err := geom.PointFromInt64(
			int64(p.Origin.X)-o.dx.of(w, h)+lo.x,
			int64(p.Origin.Y)-o.dy.of(w, h)+lo.y,
		)
		if err != nil {
			return geom.Transform{}, err
		}
		return geom.Transform{
			Displacement:  disp,
			Rotation:      geom.Rotation(rot),
			Mirror:        p.Reflected,
			Magnification: 1,
		}, nil
	}
	return geom.Transform{}, errors.New(errors.ErrCodeInternal, "no orientation for %s", p.Angle)
}

// Strans returns the reference transform for p with magnification mag.
func (p Placement) Strans(mag float64) *gds.Strans {
	return &gds.Strans{
		Reflected: p.Reflected,
		Mag:       gds.RealPtr(mag),
		Angle:     gds.RealPtr(float64(p.Angle.Degrees())),
	}
}
