package hier

import (
	"math"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
	"github.com/cloudcalvin/gdsutil/pkg/export"
	"github.com/cloudcalvin/gdsutil/pkg/gds"
	"github.com/cloudcalvin/gdsutil/pkg/geom"
)

// Placement records one matching reference found by Extract.
type Placement struct {
	Parent string          `json:"parent" yaml:"parent" toml:"parent"`
	Name   string          `json:"name" yaml:"name" toml:"name"`
	Layout PlacementLayout `json:"layout" yaml:"layout" toml:"layout"`
}

// PlacementLayout is where and how a reference places its target. Rotation
// is in degrees.
type PlacementLayout struct {
	Position geom.Point `json:"position" yaml:"position" toml:"position"`
	Rotation float64    `json:"rotation" yaml:"rotation" toml:"rotation"`
	Scale    float64    `json:"scale" yaml:"scale" toml:"scale"`
	Mirrored bool       `json:"mirrored" yaml:"mirrored" toml:"mirrored"`
}

// Extract lists the references matching opts.Patterns in the hierarchy below
// root, in visiting order. Positions are reference origins as stored in the
// library; see LowerLeft for layout-style positions.
func Extract(lib *gds.Library, root string, opts Options) ([]Placement, error) {
	c := &collector{}
	if err := walk(lib, root, opts, c); err != nil {
		return nil, err
	}
	return c.out, nil
}

type collector struct {
	out []Placement
}

func (c *collector) element(*gds.Struct, gds.Element) error { return nil }

func (c *collector) reference(s *gds.Struct, ref *gds.StructRef) error {
	c.out = append(c.out, Placement{
		Parent: s.Name,
		Name:   ref.Name,
		Layout: PlacementLayout{
			Position: ref.XY,
			Rotation: ref.Strans.Degrees(),
			Scale:    ref.Strans.Magnification(),
			Mirrored: ref.Strans.IsReflected(),
		},
	})
	return nil
}

// LowerLeft rewrites extracted placements from reference origins into layout
// placements: the position becomes the lower-left corner of the placed
// target and the rotation is applied after mirroring about the y-axis. Only
// unmagnified references rotated by a multiple of 90 degrees are supported.
func LowerLeft(lib *gds.Library, placements []Placement) error {
	ext := NewExtents(lib)
	for i := range placements {
		p := &placements[i]
		if p.Layout.Scale != 1 {
			return errors.New(errors.ErrCodeUnsupported,
				"reference to %q is magnified by %v", p.Name, p.Layout.Scale).For(p.Name)
		}
		deg := p.Layout.Rotation
		if deg != math.Trunc(deg) {
			return errors.New(errors.ErrCodeUnsupported,
				"reference to %q is rotated by %v degrees", p.Name, deg).For(p.Name)
		}
		angle, err := geom.RotationFromDegrees(int(deg))
		if err != nil {
			return errors.Wrap(errors.GetCode(err), err, "reference to %q", p.Name).For(p.Name)
		}

		bbox, err := ext.Of(p.Name)
		if err != nil {
			return err
		}
		tf, err := export.LayoutTransform(export.Placement{
			Origin:    p.Layout.Position,
			Angle:     angle,
			Reflected: p.Layout.Mirrored,
		}, bbox)
		if err != nil {
			return errors.Wrap(errors.GetCode(err), err, "reference to %q", p.Name).For(p.Name)
		}
		p.Layout.Position = tf.Displacement
		p.Layout.Rotation = float64(tf.Rotation.Degrees())
	}
	return nil
}
