package lefdef

import (
	"github.com/charmbracelet/log"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
	"github.com/cloudcalvin/gdsutil/pkg/geom"
	"github.com/cloudcalvin/gdsutil/pkg/layout"
)

// DefaultOutlineLayer names the layer that carries macro footprints and the
// die area.
const DefaultOutlineLayer = "OUTLINE"

// LayerSpec is the stream-format number of a layer.
type LayerSpec struct {
	Index    int16 `toml:"index" yaml:"index" json:"index" validate:"gte=0"`
	Datatype int16 `toml:"datatype" yaml:"datatype" json:"datatype" validate:"gte=0"`
}

// Options configures Import.
type Options struct {
	// OutlineLayer names the footprint layer. Defaults to DefaultOutlineLayer.
	OutlineLayer string
	// OutlineIndex is the stream-format number of the footprint layer.
	OutlineIndex int16
	// Layers overrides the numbering of individual layers by name,
	// including the outline layer.
	Layers map[string]LayerSpec
	// Logger receives debug messages. Defaults to log.Default().
	Logger *log.Logger
}

var orientTransforms = map[Orient]struct {
	rot    geom.Rotation
	mirror bool
}{
	"N": {geom.R0, false}, "W": {geom.R90, false},
	"S": {geom.R180, false}, "E": {geom.R270, false},
	"FN": {geom.R0, true}, "FE": {geom.R90, true},
	"FS": {geom.R180, true}, "FW": {geom.R270, true},
}

// Transform returns the layout transform of a component placed at (x, y)
// in database units with orientation o.
func Transform(o Orient, x, y float64) (geom.Transform, error) {
	ot, ok := orientTransforms[o]
	if !ok {
		return geom.Transform{}, errors.New(errors.ErrCodeInvalidInput, "unknown orientation %q", o)
	}
	at, err := point(x, y, 1)
	if err != nil {
		return geom.Transform{}, err
	}
	return geom.Transform{Displacement: at, Rotation: ot.rot, Mirror: ot.mirror, Magnification: 1}, nil
}

type importer struct {
	opts   Options
	lay    *layout.Layout
	widths map[string]float64 // LEF layer default widths in microns
	cells  map[string]layout.CellID
	next   int16
}

// Import builds a layout from LEF techs and a DEF design. The layout uses
// the design's database units. The returned cell is the top cell, named
// after the design.
//
// Layers come from every tech in order; a layer or macro defined more than
// once keeps its first definition. Components naming an unknown macro and
// wires on an unknown layer fail with ErrCodeUnresolvedReference.
func Import(techs []*Tech, d *Design, opts Options) (*layout.Layout, layout.CellID, error) {
	if d == nil {
		return nil, layout.NoCell, errors.New(errors.ErrCodeInvalidInput, "no design")
	}
	if opts.OutlineLayer == "" {
		opts.OutlineLayer = DefaultOutlineLayer
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	im := &importer{
		opts:   opts,
		lay:    layout.New(d.DBU),
		widths: make(map[string]float64),
		cells:  make(map[string]layout.CellID),
		next:   1,
	}

	outline := LayerSpec{Index: opts.OutlineIndex}
	if spec, ok := opts.Layers[opts.OutlineLayer]; ok {
		outline = spec
	}
	if err := im.addLayer(opts.OutlineLayer, outline); err != nil {
		return nil, layout.NoCell, err
	}
	for _, t := range techs {
		for _, l := range t.Layers {
			if _, dup := im.lay.LayerByName(l.Name); dup {
				continue
			}
			spec, ok := opts.Layers[l.Name]
			if !ok {
				spec = LayerSpec{Index: im.next}
				im.next++
			}
			if err := im.addLayer(l.Name, spec); err != nil {
				return nil, layout.NoCell, err
			}
			im.widths[l.Name] = l.Width
		}
	}

	for _, t := range techs {
		for i := range t.Macros {
			m := &t.Macros[i]
			if _, dup := im.cells[m.Name]; dup {
				opts.Logger.Debug("ignoring duplicate macro", "macro", m.Name)
				continue
			}
			if err := im.macro(m); err != nil {
				return nil, layout.NoCell, err
			}
		}
	}

	top, err := im.design(d)
	if err != nil {
		return nil, layout.NoCell, err
	}
	return im.lay, top, nil
}

func (im *importer) addLayer(name string, spec LayerSpec) error {
	_, err := im.lay.AddLayer(layout.LayerInfo{Index: spec.Index, Datatype: spec.Datatype, Name: name})
	return err
}

func (im *importer) layer(name, owner string) (layout.LayerID, error) {
	id, ok := im.lay.LayerByName(name)
	if !ok {
		return 0, errors.New(errors.ErrCodeUnresolvedReference, "%s uses undefined layer %q", owner, name).For(name)
	}
	return id, nil
}

func (im *importer) macro(m *Macro) error {
	cell, err := im.lay.AddCell(m.Name)
	if err != nil {
		return err
	}
	im.cells[m.Name] = cell
	scale := float64(im.lay.DBU())

	nets := make(map[string]layout.NetID)
	for _, pin := range m.Pins {
		if _, dup := nets[pin.Name]; dup {
			continue
		}
		id, err := im.lay.AddNet(cell, pin.Name, pin.Use == "POWER" || pin.Use == "GROUND")
		if err != nil {
			return err
		}
		nets[pin.Name] = id
	}

	for _, sh := range m.Shapes {
		lid, err := im.layer(sh.Layer, "macro "+m.Name)
		if err != nil {
			return err
		}
		pts := make([]geom.Point, len(sh.Points))
		for i, p := range sh.Points {
			if pts[i], err = point(p.X+m.Origin.X, p.Y+m.Origin.Y, scale); err != nil {
				return errors.Wrap(errors.ErrCodeCoordinateOverflow, err, "macro %s", m.Name).For(m.Name)
			}
		}

		var g geom.Geometry
		switch sh.Kind {
		case ShapeRect:
			g = geom.NewRect(pts[0], pts[1])
		case ShapePolygon:
			g = geom.SimplePolygon{Points: pts}
		case ShapePath:
			width := sh.Width
			if width == 0 {
				width = im.widths[sh.Layer]
			}
			if g, err = path(pts, width*scale, true); err != nil {
				return errors.Wrap(errors.ErrCodeUnrepresentableGeometry, err, "macro %s", m.Name).For(m.Name)
			}
		default:
			return errors.New(errors.ErrCodeUnsupported, "unknown shape kind %q", sh.Kind).For(m.Name)
		}
		if _, err := im.lay.AddShape(cell, lid, g, nets[sh.Pin]); err != nil {
			return err
		}
	}

	if m.Size.X > 0 && m.Size.Y > 0 {
		size, err := point(m.Size.X, m.Size.Y, scale)
		if err != nil {
			return errors.Wrap(errors.ErrCodeCoordinateOverflow, err, "macro %s size", m.Name).For(m.Name)
		}
		lid, _ := im.lay.LayerByName(im.opts.OutlineLayer)
		if _, err := im.lay.AddShape(cell, lid, geom.NewRect(geom.Point{}, size), layout.NoNet); err != nil {
			return err
		}
	}
	return nil
}

func (im *importer) design(d *Design) (layout.CellID, error) {
	top, err := im.lay.AddCell(d.Name)
	if err != nil {
		return layout.NoCell, err
	}

	if len(d.DieArea) > 0 {
		pts := make([]geom.Point, len(d.DieArea))
		for i, p := range d.DieArea {
			if pts[i], err = point(p.X, p.Y, 1); err != nil {
				return layout.NoCell, errors.Wrap(errors.ErrCodeCoordinateOverflow, err, "die area").For(d.Name)
			}
		}
		var g geom.Geometry = geom.SimplePolygon{Points: pts}
		if len(pts) == 2 {
			g = geom.NewRect(pts[0], pts[1])
		}
		lid, _ := im.lay.LayerByName(im.opts.OutlineLayer)
		if _, err := im.lay.AddShape(top, lid, g, layout.NoNet); err != nil {
			return layout.NoCell, err
		}
	}

	for _, c := range d.Components {
		tmpl, ok := im.cells[c.Macro]
		if !ok {
			return layout.NoCell, errors.New(errors.ErrCodeUnresolvedReference,
				"component %s uses undefined macro %q", c.Name, c.Macro).For(c.Macro)
		}
		tf, err := Transform(c.Orient, c.At.X, c.At.Y)
		if err != nil {
			return layout.NoCell, errors.Wrap(errors.GetCode(err), err, "component %s", c.Name).For(c.Name)
		}
		if _, err := im.lay.AddInstance(top, tmpl, c.Name, tf); err != nil {
			return layout.NoCell, err
		}
	}

	scale := float64(im.lay.DBU())
	for _, n := range d.Nets {
		net, err := im.lay.AddNet(top, n.Name, n.Constant())
		if err != nil {
			return layout.NoCell, err
		}
		for _, w := range n.Wires {
			if len(w.Points) < 2 {
				continue
			}
			lid, err := im.layer(w.Layer, "net "+n.Name)
			if err != nil {
				return layout.NoCell, err
			}
			width := w.Width
			if width == 0 {
				width = im.widths[w.Layer] * scale
			}
			pts := make([]geom.Point, len(w.Points))
			for i, p := range w.Points {
				if pts[i], err = point(p.X, p.Y, 1); err != nil {
					return layout.NoCell, errors.Wrap(errors.ErrCodeCoordinateOverflow, err, "net %s", n.Name).For(n.Name)
				}
			}
			g, err := path(pts, width, !n.Special)
			if err != nil {
				return layout.NoCell, errors.Wrap(errors.ErrCodeUnrepresentableGeometry, err, "net %s", n.Name).For(n.Name)
			}
			if _, err := im.lay.AddShape(top, lid, g, net); err != nil {
				return layout.NoCell, err
			}
		}
	}
	return top, nil
}

// path builds a wire of the given width in database units. Extended wires
// reach half their width past both end points.
func path(pts []geom.Point, width float64, extended bool) (geom.Path, error) {
	w, err := geom.CoordFromFloat(width)
	if err != nil {
		return geom.Path{}, err
	}
	if w <= 0 {
		return geom.Path{}, errors.New(errors.ErrCodeInvalidInput, "wire has no width")
	}
	p := geom.Path{Points: pts, Width: w}
	if extended {
		p.End = geom.PathEnd{Style: geom.EndExtended, Begin: w / 2, End: w / 2}
	}
	return p, nil
}

func point(x, y, scale float64) (geom.Point, error) {
	cx, err := geom.CoordFromFloat(x * scale)
	if err != nil {
		return geom.Point{}, err
	}
	cy, err := geom.CoordFromFloat(y * scale)
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Point{X: cx, Y: cy}, nil
}
