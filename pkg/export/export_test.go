package export

import (
	"bytes"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
	"github.com/cloudcalvin/gdsutil/pkg/gds"
	"github.com/cloudcalvin/gdsutil/pkg/geom"
	"github.com/cloudcalvin/gdsutil/pkg/layout"
)

type fixture struct {
	l       *layout.Layout
	top     layout.CellID
	a       layout.CellID
	outline layout.LayerID
	metal   layout.LayerID
}

// newFixture builds TOP placing a 50x30 cell A at (100, 200), mirrored and
// rotated by 90 degrees, plus an orphan cell that takes no part in the
// hierarchy.
func newFixture(t *testing.T) fixture {
	t.Helper()
	l := layout.New(1000)
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}

	outline, err := l.AddLayer(layout.LayerInfo{Index: 0, Name: DefaultOutlineLayer})
	must(err)
	metal, err := l.AddLayer(layout.LayerInfo{Index: 1, Name: "metal1"})
	must(err)

	top, err := l.AddCell("TOP")
	must(err)
	a, err := l.AddCell("A")
	must(err)
	_, err = l.AddCell("ORPHAN")
	must(err)

	_, err = l.AddShape(a, metal, geom.NewRect(geom.Pt(0, 0), geom.Pt(50, 30)), layout.NoNet)
	must(err)
	_, err = l.AddShape(top, outline, geom.NewRect(geom.Pt(0, 0), geom.Pt(1000, 1000)), layout.NoNet)
	must(err)
	_, err = l.AddInstance(top, a, "u1", geom.Transform{
		Displacement:  geom.Pt(100, 200),
		Rotation:      geom.R90,
		Mirror:        true,
		Magnification: 1,
	})
	must(err)

	return fixture{l: l, top: top, a: a, outline: outline, metal: metal}
}

func structNames(lib *gds.Library) []string {
	names := make([]string, len(lib.Structs))
	for i, s := range lib.Structs {
		names[i] = s.Name
	}
	return names
}

func TestExportLibrary(t *testing.T) {
	f := newFixture(t)

	lib, err := Export(f.l, f.top, Options{})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	if lib.Name != "TOP" {
		t.Errorf("Name = %q, want TOP", lib.Name)
	}
	if got := structNames(lib); strings.Join(got, ",") != "A,TOP" {
		t.Errorf("structs = %v, want [A TOP]", got)
	}
	if lib.Units != gds.UnitsForDBU(1000) {
		t.Errorf("Units = %+v, want %+v", lib.Units, gds.UnitsForDBU(1000))
	}

	root := lib.Struct("TOP")
	if len(root.Elements) != 2 {
		t.Fatalf("TOP has %d elements, want 2", len(root.Elements))
	}
	if _, ok := root.Elements[0].(*gds.Boundary); !ok {
		t.Errorf("first element = %T, want outline boundary", root.Elements[0])
	}
	ref, ok := root.Elements[1].(*gds.StructRef)
	if !ok {
		t.Fatalf("second element = %T, want *gds.StructRef", root.Elements[1])
	}
	if ref.Name != "A" {
		t.Errorf("ref.Name = %q, want A", ref.Name)
	}
	if ref.XY != geom.Pt(130, 250) {
		t.Errorf("ref.XY = %v, want (130, 250)", ref.XY)
	}
	if ref.Strans == nil || !ref.Strans.Reflected || ref.Strans.Degrees() != 270 {
		t.Errorf("ref.Strans = %+v, want reflected at 270 degrees", ref.Strans)
	}
	if ref.Strans.Magnification() != 1 {
		t.Errorf("magnification = %v, want 1", ref.Strans.Magnification())
	}
	if len(ref.Properties) != 1 || ref.Properties[0].Value != "u1" {
		t.Errorf("ref.Properties = %v, want instance name u1", ref.Properties)
	}
}

func TestExportOutline(t *testing.T) {
	tests := []struct {
		name     string
		outlines int
		wantCode errors.Code
	}{
		{"none", 0, errors.ErrCodeAmbiguousBoundary},
		{"one", 1, ""},
		{"two", 2, errors.ErrCodeAmbiguousBoundary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := layout.New(0)
			outline, _ := l.AddLayer(layout.LayerInfo{Name: DefaultOutlineLayer})
			top, _ := l.AddCell("TOP")
			for i := 0; i < tt.outlines; i++ {
				r := geom.NewRect(geom.Pt(0, 0), geom.Pt(int32(10*(i+1)), 10))
				if _, err := l.AddShape(top, outline, r, layout.NoNet); err != nil {
					t.Fatal(err)
				}
			}

			lib, err := Export(l, top, Options{})
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Export() error: %v", err)
				}
				if len(lib.Structs) != 1 {
					t.Errorf("structs = %v, want just TOP", structNames(lib))
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("Export() error = %v, want %s", err, tt.wantCode)
			}
			if lib != nil {
				t.Error("Export() returned a partial library")
			}
			if errors.GetSubject(err) != "TOP" {
				t.Errorf("subject = %q, want TOP", errors.GetSubject(err))
			}
		})
	}
}

func TestExportMissingOutlineLayer(t *testing.T) {
	f := newFixture(t)

	_, err := Export(f.l, f.top, Options{OutlineLayer: "DIEAREA"})
	if !errors.Is(err, errors.ErrCodeMissingBoundaryLayer) {
		t.Errorf("Export() error = %v, want %s", err, errors.ErrCodeMissingBoundaryLayer)
	}
}

func TestExportNets(t *testing.T) {
	f := newFixture(t)
	signal, _ := f.l.AddNet(f.top, "clk", false)
	supply, _ := f.l.AddNet(f.top, "VDD", true)

	wire := geom.Path{Points: []geom.Point{{X: 0, Y: 500}, {X: 900, Y: 500}}, Width: 20}
	if _, err := f.l.AddShape(f.top, f.metal, wire, signal); err != nil {
		t.Fatal(err)
	}
	rail := geom.NewRect(geom.Pt(0, 0), geom.Pt(1000, 40))
	if _, err := f.l.AddShape(f.top, f.metal, rail, supply); err != nil {
		t.Fatal(err)
	}

	lib, err := Export(f.l, f.top, Options{})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	root := lib.Struct("TOP")

	// outline, clk wire, placement of A; the supply rail is left out.
	if len(root.Elements) != 3 {
		t.Fatalf("TOP has %d elements, want 3", len(root.Elements))
	}
	p, ok := root.Elements[1].(*gds.Path)
	if !ok {
		t.Fatalf("second element = %T, want *gds.Path", root.Elements[1])
	}
	if len(p.Properties) != 1 || p.Properties[0].Value != "clk" {
		t.Errorf("net shape properties = %v, want net name clk", p.Properties)
	}
	if _, ok := root.Elements[2].(*gds.StructRef); !ok {
		t.Errorf("last element = %T, want placements after geometry", root.Elements[2])
	}
}

func TestExportUnnamedCell(t *testing.T) {
	l := layout.New(0)
	outline, _ := l.AddLayer(layout.LayerInfo{Name: DefaultOutlineLayer})
	metal, _ := l.AddLayer(layout.LayerInfo{Index: 5, Name: "m"})
	top, _ := l.AddCell("TOP")
	anon, _ := l.AddCell("")
	l.AddShape(top, outline, geom.NewRect(geom.Pt(0, 0), geom.Pt(10, 10)), layout.NoNet)
	l.AddShape(anon, metal, geom.NewRect(geom.Pt(0, 0), geom.Pt(2, 2)), layout.NoNet)
	if _, err := l.AddInstance(top, anon, "", geom.Identity()); err != nil {
		t.Fatal(err)
	}

	lib, err := Export(l, top, Options{})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if lib.Struct(UnnamedCell) == nil {
		t.Fatalf("structs = %v, want %s", structNames(lib), UnnamedCell)
	}
	ref := lib.Struct("TOP").Elements[1].(*gds.StructRef)
	if ref.Name != UnnamedCell {
		t.Errorf("ref.Name = %q, want %s", ref.Name, UnnamedCell)
	}
	if ref.Properties[0].Value != UnnamedCell {
		t.Errorf("unnamed instance label = %q, want template name", ref.Properties[0].Value)
	}
}

func TestExportDuplicateUnnamed(t *testing.T) {
	l := layout.New(0)
	outline, _ := l.AddLayer(layout.LayerInfo{Name: DefaultOutlineLayer})
	top, _ := l.AddCell("TOP")
	l.AddShape(top, outline, geom.NewRect(geom.Pt(0, 0), geom.Pt(10, 10)), layout.NoNet)
	for i := 0; i < 2; i++ {
		c, _ := l.AddCell("")
		l.AddShape(c, outline, geom.NewRect(geom.Pt(0, 0), geom.Pt(1, 1)), layout.NoNet)
		l.AddInstance(top, c, "", geom.Identity())
	}

	_, err := Export(l, top, Options{})
	if !errors.Is(err, errors.ErrCodeDuplicateName) {
		t.Errorf("Export() error = %v, want %s", err, errors.ErrCodeDuplicateName)
	}
}

func TestExportEmptyTemplate(t *testing.T) {
	f := newFixture(t)
	empty, _ := f.l.AddCell("EMPTY")
	f.l.AddInstance(f.top, empty, "e1", geom.Identity())

	_, err := Export(f.l, f.top, Options{})
	if !errors.Is(err, errors.ErrCodeEmptyBoundingBox) {
		t.Fatalf("Export() error = %v, want %s", err, errors.ErrCodeEmptyBoundingBox)
	}
	if errors.GetSubject(err) != "EMPTY" {
		t.Errorf("subject = %q, want EMPTY", errors.GetSubject(err))
	}
}

// danglingModel adds an instance whose template is not part of the layout.
type danglingModel struct {
	*layout.Layout
	parent layout.CellID
}

func (m danglingModel) Instances(c layout.CellID) []layout.Instance {
	insts := m.Layout.Instances(c)
	if c != m.parent {
		return insts
	}
	return append(insts[:len(insts):len(insts)], layout.Instance{
		Name:      "ghost",
		Parent:    c,
		Template:  layout.CellID(uuid.New()),
		Transform: geom.Identity(),
	})
}

func TestExportUnresolvedReference(t *testing.T) {
	f := newFixture(t)

	_, err := Export(danglingModel{Layout: f.l, parent: f.top}, f.top, Options{})
	if !errors.Is(err, errors.ErrCodeUnresolvedReference) {
		t.Fatalf("Export() error = %v, want %s", err, errors.ErrCodeUnresolvedReference)
	}
	if errors.GetSubject(err) != "ghost" {
		t.Errorf("subject = %q, want ghost", errors.GetSubject(err))
	}

	_, err = Export(f.l, layout.CellID(uuid.New()), Options{})
	if !errors.Is(err, errors.ErrCodeUnresolvedReference) {
		t.Errorf("Export(unknown top) error = %v, want %s", err, errors.ErrCodeUnresolvedReference)
	}
}

func TestExportUnrepresentable(t *testing.T) {
	f := newFixture(t)
	f.l.AddShape(f.a, f.metal, geom.Edge{Start: geom.Pt(0, 0), End: geom.Pt(5, 5)}, layout.NoNet)

	lib, err := Export(f.l, f.top, Options{})
	if !errors.Is(err, errors.ErrCodeUnrepresentableGeometry) {
		t.Fatalf("Export() error = %v, want %s", err, errors.ErrCodeUnrepresentableGeometry)
	}
	if lib != nil {
		t.Error("Export() returned a partial library")
	}
	if errors.GetSubject(err) != "A" {
		t.Errorf("subject = %q, want A", errors.GetSubject(err))
	}
}

func TestExportHolesWarn(t *testing.T) {
	f := newFixture(t)
	donut := geom.Polygon{
		Exterior: geom.SimplePolygon{Points: []geom.Point{{X: 0, Y: 0}, {X: 40, Y: 0}, {X: 40, Y: 20}, {X: 0, Y: 20}}},
		Holes:    []geom.SimplePolygon{{Points: []geom.Point{{X: 5, Y: 5}, {X: 10, Y: 5}, {X: 10, Y: 10}}}},
	}
	f.l.AddShape(f.a, f.metal, donut, layout.NoNet)

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel})
	if _, err := Export(f.l, f.top, Options{Logger: logger}); err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if !strings.Contains(buf.String(), "dropping polygon holes") {
		t.Errorf("log = %q, want a hole warning", buf.String())
	}
}

func TestExportTimestamp(t *testing.T) {
	f := newFixture(t)
	stamp := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)

	lib, err := Export(f.l, f.top, Options{Timestamp: stamp})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	want := gds.Dates(stamp)
	for _, s := range lib.Structs {
		if !slices.Equal(s.Dates, want) {
			t.Errorf("%s dates = %v, want %v", s.Name, s.Dates, want)
		}
	}

	lib, _ = Export(f.l, f.top, Options{})
	if !slices.Equal(lib.Structs[0].Dates, gds.Dates(time.Time{})) {
		t.Errorf("zero timestamp dates = %v, want zeros", lib.Structs[0].Dates)
	}
}

func TestExportRoundTrip(t *testing.T) {
	f := newFixture(t)
	lib, err := Export(f.l, f.top, Options{})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	var buf bytes.Buffer
	if err := gds.Write(&buf, lib); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	got, err := gds.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	if strings.Join(structNames(got), ",") != strings.Join(structNames(lib), ",") {
		t.Errorf("struct names = %v, want %v", structNames(got), structNames(lib))
	}
	ref := got.Struct("TOP").Elements[1].(*gds.StructRef)
	if ref.Name != "A" || ref.XY != geom.Pt(130, 250) {
		t.Errorf("round-tripped ref = %s at %v, want A at (130, 250)", ref.Name, ref.XY)
	}
}

// flatten returns the boxes of every boundary on layer below name, mapped
// into absolute coordinates through place.
func flatten(t *testing.T, lib *gds.Library, name string, layer int16, place func(geom.Point) geom.Point) []geom.BoundingBox {
	t.Helper()
	s := lib.Struct(name)
	if s == nil {
		t.Fatalf("no struct %q", name)
	}
	var out []geom.BoundingBox
	for _, el := range s.Elements {
		switch e := el.(type) {
		case *gds.Boundary:
			if e.Layer != layer {
				continue
			}
			bb := geom.NewBoundingBox()
			for _, pt := range e.XY {
				bb.Expand(place(pt))
			}
			out = append(out, bb)
		case *gds.StructRef:
			angle, err := geom.RotationFromDegrees(int(e.Strans.Degrees()))
			if err != nil {
				t.Fatal(err)
			}
			p := Placement{Origin: e.XY, Angle: angle, Reflected: e.Strans.IsReflected()}
			out = append(out, flatten(t, lib, e.Name, layer, func(pt geom.Point) geom.Point {
				return place(streamApply(p, pt))
			})...)
		}
	}
	return out
}

func TestExportNestedRotations(t *testing.T) {
	l := layout.New(1000)
	outline, _ := l.AddLayer(layout.LayerInfo{Index: 0, Name: DefaultOutlineLayer})
	metal, _ := l.AddLayer(layout.LayerInfo{Index: 1, Name: "metal1"})
	top, _ := l.AddCell("TOP")
	a, _ := l.AddCell("A")
	b, _ := l.AddCell("B")

	steps := []error{}
	add := func(_ any, err error) { steps = append(steps, err) }
	add(l.AddShape(top, outline, geom.NewRect(geom.Pt(0, 0), geom.Pt(1000, 1000)), layout.NoNet))
	add(l.AddShape(b, metal, geom.NewRect(geom.Pt(0, 0), geom.Pt(10, 20)), layout.NoNet))
	add(l.AddShape(a, metal, geom.NewRect(geom.Pt(0, 0), geom.Pt(10, 10)), layout.NoNet))
	// B stands upright next to A's own square: A covers (0,0)..(30,10).
	add(l.AddInstance(a, b, "b0", geom.Transform{Displacement: geom.Pt(10, 0), Rotation: geom.R90, Magnification: 1}))
	add(l.AddInstance(top, a, "a0", geom.Transform{Displacement: geom.Pt(100, 100), Rotation: geom.R180, Magnification: 1}))
	for _, err := range steps {
		if err != nil {
			t.Fatal(err)
		}
	}

	lib, err := Export(l, top, Options{})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	got := flatten(t, lib, "TOP", 1, func(pt geom.Point) geom.Point { return pt })
	want := []geom.BoundingBox{
		geom.Box(geom.Pt(120, 100), geom.Pt(130, 110)), // A's square
		geom.Box(geom.Pt(100, 100), geom.Pt(120, 110)), // B
	}
	if !slices.Equal(got, want) {
		t.Errorf("flattened metal = %v, want %v", got, want)
	}

	placed := geom.NewBoundingBox()
	for _, bb := range got {
		placed.ExpandBox(bb)
	}
	a0 := geom.Transform{Displacement: geom.Pt(100, 100), Rotation: geom.R180, Magnification: 1}
	if want := a0.PlaceBox(l.BoundingBox(a)); placed != want {
		t.Errorf("flattened extent = %v, model places A at %v", placed, want)
	}
}
