package layout

import (
	"github.com/google/uuid"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
	"github.com/cloudcalvin/gdsutil/pkg/geom"
)

// DefaultDBU is the database resolution used when none is given: 1000 units
// per micron, i.e. one nanometre.
const DefaultDBU = 1000

type cell struct {
	id        CellID
	name      string
	shapes    map[LayerID][]Shape
	instances []Instance
	nets      []NetID
}

// Layout is the in-memory Model implementation. The zero value is not
// usable; create layouts with New.
type Layout struct {
	dbu int

	cells     map[CellID]*cell
	cellOrder []CellID
	byName    map[string]CellID

	layers      []LayerInfo
	layerByName map[string]LayerID

	nets []Net

	// outgoing[parent][template] and incoming[template][parent] count instances.
	outgoing map[CellID]map[CellID]int
	incoming map[CellID]map[CellID]int

	nextShape    ShapeID
	nextInstance InstanceID

	boxes map[CellID]geom.BoundingBox
}

// New creates an empty layout with the given database units per micron.
// A non-positive dbu selects DefaultDBU.
func New(dbu int) *Layout {
	if dbu <= 0 {
		dbu = DefaultDBU
	}
	return &Layout{
		dbu:         dbu,
		cells:       make(map[CellID]*cell),
		byName:      make(map[string]CellID),
		layerByName: make(map[string]LayerID),
		outgoing:    make(map[CellID]map[CellID]int),
		incoming:    make(map[CellID]map[CellID]int),
		boxes:       make(map[CellID]geom.BoundingBox),
	}
}

// AddCell creates a cell. Non-empty names must be unique; several cells may
// be unnamed.
func (l *Layout) AddCell(name string) (CellID, error) {
	if name != "" {
		if _, dup := l.byName[name]; dup {
			return NoCell, errors.New(errors.ErrCodeDuplicateName, "cell %q already exists", name).For(name)
		}
	}
	id := CellID(uuid.New())
	l.cells[id] = &cell{id: id, name: name, shapes: make(map[LayerID][]Shape)}
	l.cellOrder = append(l.cellOrder, id)
	if name != "" {
		l.byName[name] = id
	}
	return id, nil
}

// AddLayer registers a layer. Non-empty names must be unique.
func (l *Layout) AddLayer(info LayerInfo) (LayerID, error) {
	if info.Name != "" {
		if _, dup := l.layerByName[info.Name]; dup {
			return 0, errors.New(errors.ErrCodeDuplicateName, "layer %q already exists", info.Name).For(info.Name)
		}
	}
	id := LayerID(len(l.layers))
	l.layers = append(l.layers, info)
	if info.Name != "" {
		l.layerByName[info.Name] = id
	}
	return id, nil
}

// AddNet creates a net inside a cell.
func (l *Layout) AddNet(c CellID, name string, constant bool) (NetID, error) {
	cl, err := l.cell(c)
	if err != nil {
		return NoNet, err
	}
	id := NetID(len(l.nets) + 1)
	l.nets = append(l.nets, Net{ID: id, Name: name, Cell: c, Constant: constant})
	cl.nets = append(cl.nets, id)
	return id, nil
}

// AddShape adds a geometry to a cell on a layer, attributed to net (or NoNet).
func (l *Layout) AddShape(c CellID, layer LayerID, g geom.Geometry, net NetID) (ShapeID, error) {
	cl, err := l.cell(c)
	if err != nil {
		return 0, err
	}
	if int(layer) < 0 || int(layer) >= len(l.layers) {
		return 0, errors.New(errors.ErrCodeInvalidInput, "unknown layer %d", layer)
	}
	if g == nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "nil geometry in cell %q", cl.name).For(cl.name)
	}
	if net != NoNet {
		if _, ok := l.Net(net); !ok {
			return 0, errors.New(errors.ErrCodeInvalidInput, "unknown net %d", net)
		}
	}
	l.nextShape++
	cl.shapes[layer] = append(cl.shapes[layer], Shape{ID: l.nextShape, Layer: layer, Geometry: g, Net: net})
	l.invalidate()
	return l.nextShape, nil
}

// AddInstance places template inside parent. Instances that would make a
// cell contain itself, directly or transitively, are rejected.
func (l *Layout) AddInstance(parent, template CellID, name string, tf geom.Transform) (InstanceID, error) {
	pc, err := l.cell(parent)
	if err != nil {
		return 0, err
	}
	tc, err := l.cell(template)
	if err != nil {
		return 0, err
	}
	if parent == template || l.reaches(template, parent) {
		return 0, errors.New(errors.ErrCodeReferenceCycle,
			"placing %q inside %q creates a cycle", tc.name, pc.name).For(tc.name)
	}

	l.nextInstance++
	pc.instances = append(pc.instances, Instance{
		ID:        l.nextInstance,
		Name:      name,
		Parent:    parent,
		Template:  template,
		Transform: tf,
	})
	if l.outgoing[parent] == nil {
		l.outgoing[parent] = make(map[CellID]int)
	}
	if l.incoming[template] == nil {
		l.incoming[template] = make(map[CellID]int)
	}
	l.outgoing[parent][template]++
	l.incoming[template][parent]++
	l.invalidate()
	return l.nextInstance, nil
}

// reaches reports whether to is reachable from from along instance edges.
func (l *Layout) reaches(from, to CellID) bool {
	const (
		white = iota
		gray
		black
	)
	color := make(map[CellID]int)
	var found bool

	var dfs func(id CellID)
	dfs = func(id CellID) {
		if id == to {
			found = true
			return
		}
		color[id] = gray
		for child := range l.outgoing[id] {
			if color[child] == white {
				dfs(child)
				if found {
					return
				}
			}
		}
		color[id] = black
	}
	dfs(from)
	return found
}

func (l *Layout) cell(id CellID) (*cell, error) {
	c, ok := l.cells[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnresolvedReference, "unknown cell %s", id).For(id.String())
	}
	return c, nil
}

func (l *Layout) invalidate() {
	clear(l.boxes)
}

// =============================================================================
// Model
// =============================================================================

func (l *Layout) DBU() int { return l.dbu }

func (l *Layout) Cells() []CellID { return l.cellOrder }

func (l *Layout) HasCell(id CellID) bool {
	_, ok := l.cells[id]
	return ok
}

func (l *Layout) CellName(id CellID) string {
	if c, ok := l.cells[id]; ok {
		return c.name
	}
	return ""
}

func (l *Layout) CellByName(name string) (CellID, bool) {
	if name == "" {
		return NoCell, false
	}
	id, ok := l.byName[name]
	return id, ok
}

func (l *Layout) Layers() []LayerID {
	ids := make([]LayerID, len(l.layers))
	for i := range l.layers {
		ids[i] = LayerID(i)
	}
	return ids
}

func (l *Layout) LayerInfo(id LayerID) LayerInfo {
	if int(id) < 0 || int(id) >= len(l.layers) {
		return LayerInfo{}
	}
	return l.layers[id]
}

func (l *Layout) LayerByName(name string) (LayerID, bool) {
	id, ok := l.layerByName[name]
	return id, ok
}

func (l *Layout) Shapes(c CellID, layer LayerID) []Shape {
	if cl, ok := l.cells[c]; ok {
		return cl.shapes[layer]
	}
	return nil
}

func (l *Layout) Instances(c CellID) []Instance {
	if cl, ok := l.cells[c]; ok {
		return cl.instances
	}
	return nil
}

func (l *Layout) NumDependencies(c CellID) int { return len(l.outgoing[c]) }

func (l *Layout) NumDependents(c CellID) int { return len(l.incoming[c]) }

func (l *Layout) Nets(c CellID) []Net {
	cl, ok := l.cells[c]
	if !ok {
		return nil
	}
	out := make([]Net, len(cl.nets))
	for i, id := range cl.nets {
		out[i] = l.nets[id-1]
	}
	return out
}

func (l *Layout) Net(id NetID) (Net, bool) {
	if id <= NoNet || int(id) > len(l.nets) {
		return Net{}, false
	}
	return l.nets[id-1], true
}

// BoundingBox returns the union of the cell's shapes and its placed
// instance boxes. An instance's displacement is the lower-left corner of
// its placed template. Results are memoized until the next mutation.
func (l *Layout) BoundingBox(c CellID) geom.BoundingBox {
	if bb, ok := l.boxes[c]; ok {
		return bb
	}
	bb := geom.NewBoundingBox()
	cl, ok := l.cells[c]
	if !ok {
		return bb
	}
	for _, shapes := range cl.shapes {
		for _, s := range shapes {
			bb.ExpandBox(s.Geometry.BoundingBox())
		}
	}
	for _, inst := range cl.instances {
		bb.ExpandBox(inst.Transform.PlaceBox(l.BoundingBox(inst.Template)))
	}
	l.boxes[c] = bb
	return bb
}

// Ensure Layout implements Model.
var _ Model = (*Layout)(nil)
