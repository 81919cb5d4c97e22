// Package layout provides the hierarchical layout model consumed by the
// stream-format exporter.
//
// A layout is a set of cells. Each cell owns shapes on layers, instances of
// other cells (placements) and nets. [Model] is the read-only view the exporter
// depends on; [Layout] is the in-memory implementation filled by the LEF/DEF
// importer.
//
// Cells are identified by a [CellID] (a UUID) rather than by name because
// names are optional in the model and only need to be unique once exported.
// Layers, nets, shapes and instances use dense integer IDs. Every iteration
// accessor returns items in insertion order.
package layout

import (
	"github.com/google/uuid"

	"github.com/cloudcalvin/gdsutil/pkg/geom"
)

// CellID identifies a cell. The zero value, NoCell, never names a cell.
type CellID uuid.UUID

// NoCell is the zero CellID.
var NoCell CellID

// String returns the canonical UUID text.
func (id CellID) String() string { return uuid.UUID(id).String() }

// LayerID identifies a layer within a layout.
type LayerID int

// NetID identifies a net. NoNet marks shapes without electrical attribution.
type NetID int

// NoNet is the zero NetID.
const NoNet NetID = 0

// ShapeID identifies a shape within a layout.
type ShapeID int

// InstanceID identifies an instance within a layout.
type InstanceID int

// LayerInfo describes a layer: its stream-format index and datatype plus an
// optional symbolic name (e.g. "OUTLINE", "metal1").
type LayerInfo struct {
	Index    int16
	Datatype int16
	Name     string
}

// Shape is a geometry on a layer, optionally attributed to a net.
type Shape struct {
	ID       ShapeID
	Layer    LayerID
	Geometry geom.Geometry
	Net      NetID
}

// Instance places a template cell inside a parent cell.
type Instance struct {
	ID        InstanceID
	Name      string
	Parent    CellID
	Template  CellID
	Transform geom.Transform
}

// Net is a named electrical connection inside a cell. Constant nets are
// power and ground supplies.
type Net struct {
	ID       NetID
	Name     string
	Cell     CellID
	Constant bool
}

// Model is the read-only view of a hierarchical layout.
type Model interface {
	// DBU returns the number of database units per micron.
	DBU() int

	// Cells returns every cell in insertion order.
	Cells() []CellID
	// HasCell reports whether id names a cell of this layout.
	HasCell(id CellID) bool
	// CellName returns the cell's name, which may be empty.
	CellName(id CellID) string
	// CellByName looks a cell up by its non-empty name.
	CellByName(name string) (CellID, bool)

	// Layers returns every layer in insertion order.
	Layers() []LayerID
	// LayerInfo returns the layer's index, datatype and name.
	LayerInfo(id LayerID) LayerInfo
	// LayerByName looks a layer up by its name.
	LayerByName(name string) (LayerID, bool)

	// Shapes returns the shapes of a cell on one layer in insertion order.
	Shapes(cell CellID, layer LayerID) []Shape
	// Instances returns the placements inside a cell in insertion order.
	Instances(cell CellID) []Instance
	// NumDependencies returns how many distinct cells the cell instantiates.
	NumDependencies(cell CellID) int
	// NumDependents returns how many distinct cells instantiate the cell.
	NumDependents(cell CellID) int

	// Nets returns the nets defined in a cell.
	Nets(cell CellID) []Net
	// Net returns a net by ID.
	Net(id NetID) (Net, bool)

	// BoundingBox returns the extent of a cell including its instances.
	// The box is empty when the cell has no geometry at any level.
	BoundingBox(cell CellID) geom.BoundingBox
}
