// Package export converts a hierarchical layout model into a stream-format
// library.
//
// The conversion is pure: the model is only read, and a failure returns no
// partial library. Every cell that takes part in the hierarchy becomes a
// struct; the top cell becomes the root struct carrying its single outline
// shape, its own geometry, the geometry of its signal nets and the
// placements of its instances.
//
// # Usage
//
//	lib, err := export.Export(model, top, export.Options{Timestamp: time.Now()})
//	if err != nil {
//	    return err
//	}
//	return gds.Save("chip.gds", lib)
package export

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
	"github.com/cloudcalvin/gdsutil/pkg/gds"
	"github.com/cloudcalvin/gdsutil/pkg/geom"
	"github.com/cloudcalvin/gdsutil/pkg/layout"
)

// DefaultOutlineLayer names the layer holding a cell's boundary shape.
const DefaultOutlineLayer = "OUTLINE"

// UnnamedCell is the struct name used for cells without a name.
const UnnamedCell = "UNNAMED"

// Options configures an export.
type Options struct {
	// OutlineLayer names the layer whose single shape marks the top cell's
	// boundary. Defaults to DefaultOutlineLayer.
	OutlineLayer string

	// Timestamp stamps the library and every struct. The zero time leaves
	// the dates zero, which keeps output reproducible.
	Timestamp time.Time

	// Logger receives warnings about dropped geometry. Defaults to a
	// discarding logger.
	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.OutlineLayer == "" {
		o.OutlineLayer = DefaultOutlineLayer
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Exporter converts cells of one model.
type Exporter struct {
	model layout.Model
	opts  Options
}

// NewExporter creates an exporter for m.
func NewExporter(m layout.Model, opts Options) *Exporter {
	opts.setDefaults()
	return &Exporter{model: m, opts: opts}
}

// Export converts the hierarchy under top into a library named after top.
func Export(m layout.Model, top layout.CellID, opts Options) (*gds.Library, error) {
	return NewExporter(m, opts).Library(top)
}

// StructName returns the struct name of a cell, UnnamedCell if it has none.
// References use the same name, so placements always resolve.
func (e *Exporter) StructName(id layout.CellID) string {
	if name := e.model.CellName(id); name != "" {
		return name
	}
	return UnnamedCell
}

// =============================================================================
// Library
// =============================================================================

// Library exports every cell that instantiates or is instantiated by another
// cell, followed by the top cell as the root struct.
func (e *Exporter) Library(top layout.CellID) (*gds.Library, error) {
	m := e.model
	if !m.HasCell(top) {
		return nil, errors.New(errors.ErrCodeUnresolvedReference, "top cell %s not found", top).For(top.String())
	}

	lib := gds.NewLibrary(e.StructName(top), e.opts.Timestamp)
	lib.Units = gds.UnitsForDBU(m.DBU())
	names := make(map[string]bool)

	add := func(s *gds.Struct) error {
		if names[s.Name] {
			return errors.New(errors.ErrCodeDuplicateName, "struct %q exported twice", s.Name).For(s.Name)
		}
		names[s.Name] = true
		lib.Structs = append(lib.Structs, s)
		return nil
	}

	for _, id := range m.Cells() {
		if id == top {
			continue
		}
		if m.NumDependencies(id) == 0 && m.NumDependents(id) == 0 {
			continue
		}
		s, err := e.Cell(id)
		if err != nil {
			return nil, err
		}
		if err := add(s); err != nil {
			return nil, err
		}
	}

	root, err := e.Top(top)
	if err != nil {
		return nil, err
	}
	if err := add(root); err != nil {
		return nil, err
	}

	e.opts.Logger.Debug("exported library", "name", lib.Name, "structs", len(lib.Structs))
	return lib, nil
}

// Top exports the root struct: the outline shape, then the top cell's other
// geometry except shapes of constant nets, then its placements. Net shapes
// carry the net name as a property.
func (e *Exporter) Top(top layout.CellID) (*gds.Struct, error) {
	m := e.model
	name := e.StructName(top)

	outline, ok := m.LayerByName(e.opts.OutlineLayer)
	if !ok {
		return nil, errors.New(errors.ErrCodeMissingBoundaryLayer,
			"layout has no %q layer", e.opts.OutlineLayer).For(e.opts.OutlineLayer)
	}
	boundary := m.Shapes(top, outline)
	if len(boundary) != 1 {
		return nil, errors.New(errors.ErrCodeAmbiguousBoundary,
			"top cell %q has %d shapes on layer %q, want exactly 1", name, len(boundary), e.opts.OutlineLayer).For(name)
	}

	s := gds.NewStruct(name, e.opts.Timestamp)
	el, err := e.shape(name, m.LayerInfo(outline), boundary[0], nil)
	if err != nil {
		return nil, err
	}
	s.Elements = append(s.Elements, el)

	for _, layer := range m.Layers() {
		if layer == outline {
			continue
		}
		info := m.LayerInfo(layer)
		for _, sh := range m.Shapes(top, layer) {
			var props []gds.Property
			if sh.Net != layout.NoNet {
				net, ok := m.Net(sh.Net)
				if ok && net.Constant {
					continue
				}
				if ok && net.Name != "" {
					props = []gds.Property{{Attr: gds.InstanceNameAttr, Value: net.Name}}
				}
			}
			el, err := e.shape(name, info, sh, props)
			if err != nil {
				return nil, err
			}
			s.Elements = append(s.Elements, el)
		}
	}

	refs, err := e.placements(top)
	if err != nil {
		return nil, err
	}
	s.Elements = append(s.Elements, refs...)
	return s, nil
}

// =============================================================================
// Cells
// =============================================================================

// Cell exports one cell: all of its shapes, layer by layer in model order,
// followed by one reference per instance.
func (e *Exporter) Cell(id layout.CellID) (*gds.Struct, error) {
	m := e.model
	if !m.HasCell(id) {
		return nil, errors.New(errors.ErrCodeUnresolvedReference, "cell %s not found", id).For(id.String())
	}
	name := e.StructName(id)
	s := gds.NewStruct(name, e.opts.Timestamp)

	for _, layer := range m.Layers() {
		info := m.LayerInfo(layer)
		for _, sh := range m.Shapes(id, layer) {
			el, err := e.shape(name, info, sh, nil)
			if err != nil {
				return nil, err
			}
			s.Elements = append(s.Elements, el)
		}
	}

	refs, err := e.placements(id)
	if err != nil {
		return nil, err
	}
	s.Elements = append(s.Elements, refs...)
	return s, nil
}

func (e *Exporter) shape(cell string, info layout.LayerInfo, sh layout.Shape, props []gds.Property) (gds.Element, error) {
	if p, ok := sh.Geometry.(geom.Polygon); ok && len(p.Holes) > 0 {
		e.opts.Logger.Warn("dropping polygon holes", "cell", cell, "layer", info.Name, "holes", len(p.Holes))
	}
	el, err := Convert(sh.Geometry, info.Index, info.Datatype, props)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "cell %q layer %q", cell, info.Name).For(cell)
	}
	return el, nil
}

func (e *Exporter) placements(id layout.CellID) ([]gds.Element, error) {
	m := e.model
	var out []gds.Element
	for _, inst := range m.Instances(id) {
		if !m.HasCell(inst.Template) {
			return nil, errors.New(errors.ErrCodeUnresolvedReference,
				"instance %q in %q references unknown cell %s", inst.Name, e.StructName(id), inst.Template).For(inst.Name)
		}
		target := e.StructName(inst.Template)

		p, err := ResolvePlacement(inst.Transform, m.BoundingBox(inst.Template))
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "place %q", target).For(target)
		}

		label := inst.Name
		if label == "" {
			label = target
		}
		out = append(out, &gds.StructRef{
			Name:       target,
			XY:         p.Origin,
			Strans:     p.Strans(inst.Transform.Scale()),
			Properties: []gds.Property{{Attr: gds.InstanceNameAttr, Value: label}},
		})
	}
	return out, nil
}
