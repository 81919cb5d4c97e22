package gds

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
	"github.com/cloudcalvin/gdsutil/pkg/geom"
)

func TestRealEncoding(t *testing.T) {
	tests := []struct {
		in   float64
		want Real
	}{
		{0, 0},
		{1, 0x4110000000000000},
		{-1, 0xc110000000000000},
		{0.5, 0x4080000000000000},
		{90, 0x425a000000000000},
		{270, 0x4310e00000000000},
		{1e-9, 0x3944b82fa09b5a54},
		{0.001, 0x3e4189374bc6a7f0},
	}

	for _, tt := range tests {
		got := RealOf(tt.in)
		if got != tt.want {
			t.Errorf("RealOf(%v) = %#x, want %#x", tt.in, uint64(got), uint64(tt.want))
		}
		if back := got.Float(); back != tt.in {
			t.Errorf("RealOf(%v).Float() = %v", tt.in, back)
		}
	}
}

func sampleLibrary() *Library {
	lib := NewLibrary("LIB", time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC))
	width := int32(20)
	pathType := PathTypeSquare
	ext := int32(10)
	pres := uint16(0x0005)
	flags := uint16(1)

	leaf := NewStruct("LEAF", time.Time{})
	leaf.Elements = []Element{
		&Boundary{Layer: 1, XY: closedRing([]geom.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 50}, {X: 0, Y: 50}})},
		&Path{Layer: 2, Datatype: 3, PathType: &pathType, Width: &width, BeginExtn: &ext, EndExtn: &ext,
			XY: []geom.Point{{X: 0, Y: 25}, {X: 100, Y: 25}}},
		&Text{Layer: 5, TextType: 0, Presentation: &pres, XY: geom.Pt(10, 10), String: "odd"},
		&Node{Layer: 6, NodeType: 1, XY: []geom.Point{{X: 1, Y: 1}}},
		&Box{Layer: 7, BoxType: 2, XY: [5]geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 0}}, ElFlags: &flags},
	}

	top := NewStruct("TOP", time.Time{})
	top.Elements = []Element{
		&StructRef{Name: "LEAF", XY: geom.Pt(130, 250),
			Strans:     &Strans{Reflected: true, Mag: RealPtr(1), Angle: RealPtr(270)},
			Properties: []Property{{Attr: InstanceNameAttr, Value: "u1"}}},
		&ArrayRef{Name: "LEAF", Cols: 2, Rows: 3,
			XY: [3]geom.Point{{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 0, Y: 150}}},
	}
	lib.Structs = []*Struct{leaf, top}
	return lib
}

func TestWriteReadRoundTrip(t *testing.T) {
	lib := sampleLibrary()

	var buf bytes.Buffer
	if err := Write(&buf, lib); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	first := append([]byte(nil), buf.Bytes()...)

	got, err := Read(bytes.NewReader(first))
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if !reflect.DeepEqual(got, lib) {
		gj, _ := json.Marshal(got)
		wj, _ := json.Marshal(lib)
		t.Fatalf("round trip mismatch:\n got %s\nwant %s", gj, wj)
	}

	buf.Reset()
	if err := Write(&buf, got); err != nil {
		t.Fatalf("second Write() error: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), first) {
		t.Error("second Write() produced different bytes")
	}
}

// record builds a raw record for hand-assembled streams.
func record(t, dt uint8, data []byte) []byte {
	out := binary.BigEndian.AppendUint16(nil, uint16(len(data)+4))
	out = append(out, t, dt)
	return append(out, data...)
}

func TestUnsetFieldsPassThrough(t *testing.T) {
	// Units as produced by writers that round the last mantissa digit
	// differently, plus odd dates and optional header records.
	units := binary.BigEndian.AppendUint64(nil, 0x3E4189374BC6A7EF)
	units = binary.BigEndian.AppendUint64(units, 0x3944B82FA09B5A51)
	dates := make([]byte, 24)
	for i := range dates {
		dates[i] = byte(i)
	}

	var in []byte
	in = append(in, record(recHeader, dtInt16, []byte{0, 3})...)
	in = append(in, record(recBgnLib, dtInt16, dates)...)
	in = append(in, record(0x39, dtInt16, []byte{0, 7})...)      // LIBDIRSIZE
	in = append(in, record(recLibName, dtString, []byte("AB"))...)
	in = append(in, record(0x36, dtInt16, []byte{0, 0})...)      // FORMAT
	in = append(in, record(recUnits, dtReal8, units)...)
	in = append(in, record(recEndLib, dtNone, nil)...)
	in = append(in, 0, 0, 0, 0) // tape padding

	lib, err := Read(bytes.NewReader(in))
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if lib.Version != 3 || lib.Name != "AB" {
		t.Errorf("header = %d %q", lib.Version, lib.Name)
	}
	if len(lib.PreName) != 1 || len(lib.PostName) != 1 {
		t.Fatalf("kept records = %d/%d, want 1/1", len(lib.PreName), len(lib.PostName))
	}

	var out bytes.Buffer
	if err := Write(&out, lib); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if !bytes.Equal(out.Bytes(), in[:len(in)-4]) {
		t.Error("unset fields did not pass through bit-exactly")
	}
}

func TestOddStringsArePadded(t *testing.T) {
	lib := NewLibrary("ODD", time.Time{})
	var buf bytes.Buffer
	if err := Write(&buf, lib); err != nil {
		t.Fatal(err)
	}
	if buf.Len()%2 != 0 {
		t.Errorf("stream length %d is odd", buf.Len())
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "ODD" {
		t.Errorf("Name = %q, want ODD", got.Name)
	}
}

func TestReadErrors(t *testing.T) {
	var valid bytes.Buffer
	if err := Write(&valid, sampleLibrary()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"truncated", valid.Bytes()[:valid.Len()/2]},
		{"bad first record", record(recBgnLib, dtInt16, make([]byte, 24))},
		{"bad length", []byte{0, 3, 0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(tt.data))
			if !errors.Is(err, errors.ErrCodeParse) {
				t.Errorf("Read() error = %v, want %s", err, errors.ErrCodeParse)
			}
		})
	}
}

func TestWriteRejectsOversizedRecords(t *testing.T) {
	lib := NewLibrary("BIG", time.Time{})
	pts := make([]geom.Point, 9000)
	for i := range pts {
		pts[i] = geom.Pt(int32(i), int32(i%2))
	}
	s := NewStruct("S", time.Time{})
	s.Elements = []Element{&Boundary{Layer: 1, XY: closedRing(pts)}}
	lib.Structs = []*Struct{s}

	err := Write(&bytes.Buffer{}, lib)
	if !errors.Is(err, errors.ErrCodeUnrepresentableGeometry) {
		t.Errorf("Write() error = %v, want %s", err, errors.ErrCodeUnrepresentableGeometry)
	}
}

// closedRing returns pts with the first point appended.
func closedRing(pts []geom.Point) []geom.Point {
	return append(append([]geom.Point(nil), pts...), pts[0])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleLibrary()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{`"type": "sref"`, `"type": "boundary"`, `"angle": 270`, `"name": "LEAF"`} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON output missing %s", want)
		}
	}
}

func TestLibraryLookup(t *testing.T) {
	lib := sampleLibrary()
	lib.Structs = append(lib.Structs, NewStruct("TOP_2", time.Time{}))

	if lib.Struct("TOP") == nil || lib.Struct("MISSING") != nil {
		t.Error("Struct() lookup mismatch")
	}
	if got := len(lib.StructsWithPrefix("TOP")); got != 2 {
		t.Errorf("StructsWithPrefix(TOP) = %d structs, want 2", got)
	}
}

func TestDates(t *testing.T) {
	d := Dates(time.Date(2024, 5, 17, 9, 30, 12, 0, time.UTC))
	want := []int16{2024, 5, 17, 9, 30, 12, 2024, 5, 17, 9, 30, 12}
	if !reflect.DeepEqual(d, want) {
		t.Errorf("Dates() = %v, want %v", d, want)
	}
	if zero := Dates(time.Time{}); !reflect.DeepEqual(zero, make([]int16, 12)) {
		t.Errorf("Dates(zero) = %v", zero)
	}
}
