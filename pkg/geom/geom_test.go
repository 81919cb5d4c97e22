package geom

import (
	"math"
	"testing"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
)

func TestCoordFromInt64(t *testing.T) {
	tests := []struct {
		name    string
		in      int64
		want    Coord
		wantErr bool
	}{
		{"zero", 0, 0, false},
		{"max", math.MaxInt32, math.MaxInt32, false},
		{"min", math.MinInt32, math.MinInt32, false},
		{"above", math.MaxInt32 + 1, 0, true},
		{"below", math.MinInt32 - 1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoordFromInt64(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CoordFromInt64(%d) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeCoordinateOverflow) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeCoordinateOverflow)
			}
			if got != tt.want {
				t.Errorf("CoordFromInt64(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestCoordFromFloat(t *testing.T) {
	tests := []struct {
		in      float64
		want    Coord
		wantErr bool
	}{
		{0.4, 0, false},
		{1.5, 2, false},
		{-1.5, -2, false},
		{1234.4999, 1234, false},
		{math.NaN(), 0, true},
		{1e12, 0, true},
	}

	for _, tt := range tests {
		got, err := CoordFromFloat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("CoordFromFloat(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("CoordFromFloat(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestBoundingBox(t *testing.T) {
	bb := NewBoundingBox()
	if !bb.IsEmpty() {
		t.Fatal("NewBoundingBox() should be empty")
	}
	if bb.Width() != 0 || bb.Height() != 0 {
		t.Errorf("empty box size = %dx%d, want 0x0", bb.Width(), bb.Height())
	}

	bb.Expand(Pt(10, -5))
	bb.Expand(Pt(-2, 7))
	if bb.IsEmpty() {
		t.Fatal("box should not be empty after Expand")
	}
	if bb.Min != Pt(-2, -5) || bb.Max != Pt(10, 7) {
		t.Errorf("box = %v..%v, want (-2, -5)..(10, 7)", bb.Min, bb.Max)
	}
	if bb.Width() != 12 || bb.Height() != 12 {
		t.Errorf("size = %dx%d, want 12x12", bb.Width(), bb.Height())
	}

	other := NewBoundingBox()
	bb.ExpandBox(other)
	if bb.Min != Pt(-2, -5) {
		t.Error("ExpandBox with empty box should be a no-op")
	}
}

func TestShapeBoundingBox(t *testing.T) {
	tests := []struct {
		name  string
		shape Geometry
		want  BoundingBox
	}{
		{"rect", NewRect(Pt(5, 5), Pt(0, 0)), Box(Pt(0, 0), Pt(5, 5))},
		{"polygon", SimplePolygon{Points: []Point{{0, 0}, {4, 0}, {2, 3}}}, Box(Pt(0, 0), Pt(4, 3))},
		{"holes ignored", Polygon{
			Exterior: SimplePolygon{Points: []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}},
			Holes:    []SimplePolygon{{Points: []Point{{2, 2}, {3, 2}, {3, 3}}}},
		}, Box(Pt(0, 0), Pt(10, 10))},
		{"flat path", Path{Points: []Point{{0, 0}, {10, 0}}, Width: 4}, Box(Pt(-2, -2), Pt(12, 2))},
		{"extended path", Path{Points: []Point{{0, 0}, {10, 0}}, Width: 4, End: PathEnd{Style: EndExtended, Begin: 1, End: 3}}, Box(Pt(-5, -5), Pt(15, 5))},
		{"edge", Edge{Start: Pt(3, 1), End: Pt(1, 3)}, Box(Pt(1, 1), Pt(3, 3))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shape.BoundingBox(); got != tt.want {
				t.Errorf("BoundingBox() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTranslate(t *testing.T) {
	g := Translate(Path{Points: []Point{{0, 0}, {1, 1}}, Width: 2}, Pt(10, 20))
	p, ok := g.(Path)
	if !ok {
		t.Fatalf("Translate returned %T, want Path", g)
	}
	if p.Points[1] != Pt(11, 21) || p.Width != 2 {
		t.Errorf("translated path = %+v", p)
	}
}

func TestRotationFromDegrees(t *testing.T) {
	tests := []struct {
		deg     int
		want    Rotation
		wantErr bool
	}{
		{0, R0, false},
		{90, R90, false},
		{180, R180, false},
		{270, R270, false},
		{360, R0, false},
		{-90, R270, false},
		{45, R0, true},
	}

	for _, tt := range tests {
		got, err := RotationFromDegrees(tt.deg)
		if (err != nil) != tt.wantErr {
			t.Errorf("RotationFromDegrees(%d) error = %v, wantErr %v", tt.deg, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("RotationFromDegrees(%d) = %v, want %v", tt.deg, got, tt.want)
		}
	}
}

func TestTransformApply(t *testing.T) {
	p := Pt(3, 1)
	tests := []struct {
		name string
		tf   Transform
		want Point
	}{
		{"identity", Identity(), Pt(3, 1)},
		{"R90", Transform{Rotation: R90}, Pt(-1, 3)},
		{"R180", Transform{Rotation: R180}, Pt(-3, -1)},
		{"R270", Transform{Rotation: R270}, Pt(1, -3)},
		{"mirror", Transform{Mirror: true}, Pt(-3, 1)},
		{"mirror R90", Transform{Mirror: true, Rotation: R90}, Pt(-1, -3)},
		{"displaced", Transform{Displacement: Pt(100, 200)}, Pt(103, 201)},
		{"magnified", Transform{Magnification: 2}, Pt(6, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tf.Apply(p); got != tt.want {
				t.Errorf("Apply(%v) = %v, want %v", p, got, tt.want)
			}
		})
	}
}

func TestTransformApplyBox(t *testing.T) {
	bb := Box(Pt(0, 0), Pt(50, 30))
	got := Transform{Rotation: R90, Displacement: Pt(10, 0)}.ApplyBox(bb)
	want := Box(Pt(-20, 0), Pt(10, 50))
	if got != want {
		t.Errorf("ApplyBox() = %v, want %v", got, want)
	}
	if !Identity().ApplyBox(NewBoundingBox()).IsEmpty() {
		t.Error("ApplyBox(empty) should stay empty")
	}
}

func TestTransformPlaceBox(t *testing.T) {
	tests := []struct {
		name string
		tf   Transform
		bb   BoundingBox
		want BoundingBox
	}{
		{"R0", Transform{Displacement: Pt(10, 20)}, Box(Pt(0, 0), Pt(50, 30)), Box(Pt(10, 20), Pt(60, 50))},
		{"R90 swaps extent", Transform{Displacement: Pt(10, 20), Rotation: R90}, Box(Pt(0, 0), Pt(50, 30)), Box(Pt(10, 20), Pt(40, 70))},
		{"R180 stays put", Transform{Rotation: R180}, Box(Pt(-10, -10), Pt(10, 10)), Box(Pt(0, 0), Pt(20, 20))},
		{"mirror R270", Transform{Displacement: Pt(-5, 5), Rotation: R270, Mirror: true}, Box(Pt(3, 4), Pt(13, 24)), Box(Pt(-5, 5), Pt(15, 15))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tf.PlaceBox(tt.bb); got != tt.want {
				t.Errorf("PlaceBox() = %v, want %v", got, tt.want)
			}
		})
	}
	if !Identity().PlaceBox(NewBoundingBox()).IsEmpty() {
		t.Error("PlaceBox(empty) should stay empty")
	}
}
