package io

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
	"github.com/cloudcalvin/gdsutil/pkg/geom"
	"github.com/cloudcalvin/gdsutil/pkg/hier"
)

var samplePlacements = []hier.Placement{
	{Parent: "TOP", Name: "A", Layout: hier.PlacementLayout{Position: geom.Pt(130, 250), Rotation: 270, Scale: 1, Mirrored: true}},
	{Parent: "TOP", Name: "B", Layout: hier.PlacementLayout{Position: geom.Pt(-5, 0), Scale: 1}},
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"out.yaml", FormatYAML, true},
		{"out.YML", FormatYAML, true},
		{"dir/out.toml", FormatTOML, true},
		{"out.json", FormatJSON, true},
		{"table.csv", FormatCSV, true},
		{"out.txt", "", false},
		{"noext", "", false},
	}

	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if tt.ok != (err == nil) {
			t.Errorf("FormatFromPath(%q) error = %v, want ok=%v", tt.path, err, tt.ok)
			continue
		}
		if !tt.ok && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("FormatFromPath(%q) error = %v, want %s", tt.path, err, errors.ErrCodeInvalidFormat)
		}
		if got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestWritePlacementsYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePlacements(&buf, FormatYAML, samplePlacements); err != nil {
		t.Fatalf("WritePlacements() error: %v", err)
	}

	var got []hier.Placement
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("yaml.Unmarshal() error: %v\n%s", err, buf.String())
	}
	if !reflect.DeepEqual(got, samplePlacements) {
		t.Errorf("decoded = %+v, want %+v", got, samplePlacements)
	}
	if !strings.Contains(buf.String(), "mirrored: true") {
		t.Errorf("yaml output missing mirrored flag:\n%s", buf.String())
	}
}

func TestWritePlacementsTOML(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePlacements(&buf, FormatTOML, samplePlacements); err != nil {
		t.Fatalf("WritePlacements() error: %v", err)
	}

	var got placementFile
	if _, err := toml.Decode(buf.String(), &got); err != nil {
		t.Fatalf("toml.Decode() error: %v\n%s", err, buf.String())
	}
	if !reflect.DeepEqual(got.Placements, samplePlacements) {
		t.Errorf("decoded = %+v, want %+v", got.Placements, samplePlacements)
	}
	if !strings.Contains(buf.String(), "[[placements]]") {
		t.Errorf("toml output is not a placements array:\n%s", buf.String())
	}
}

func TestWritePlacementsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePlacements(&buf, FormatJSON, nil); err != nil {
		t.Fatalf("WritePlacements(nil) error: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty listing = %q, want []", buf.String())
	}

	buf.Reset()
	if err := WritePlacements(&buf, FormatJSON, samplePlacements); err != nil {
		t.Fatalf("WritePlacements() error: %v", err)
	}
	var got []hier.Placement
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, samplePlacements) {
		t.Errorf("decoded = %+v, want %+v", got, samplePlacements)
	}

	if err := WritePlacements(&buf, FormatCSV, samplePlacements); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("WritePlacements(csv) error = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

func TestExportPlacements(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "srefs.yaml")

	if err := ExportPlacements(path, samplePlacements); err != nil {
		t.Fatalf("ExportPlacements() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "name: A") {
		t.Errorf("file content:\n%s", data)
	}

	if err := ExportPlacements(filepath.Join(dir, "srefs.csv"), samplePlacements); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ExportPlacements(csv) error = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

func TestReadRenameTable(t *testing.T) {
	want := map[string]string{"A": "A_v2", "B": "B_v2"}
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"csv", FormatCSV, "A,A_v2\n# comment\nB, B_v2\n"},
		{"toml", FormatTOML, "A = \"A_v2\"\nB = \"B_v2\"\n"},
		{"yaml", FormatYAML, "A: A_v2\nB: B_v2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadRenameTable(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("ReadRenameTable() error: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("ReadRenameTable() = %v, want %v", got, want)
			}
		})
	}
}

func TestReadRenameTableErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		code   errors.Code
	}{
		{"csv three columns", FormatCSV, "A,B,C\n", errors.ErrCodeInvalidFormat},
		{"csv empty value", FormatCSV, "A,\n", errors.ErrCodeInvalidFormat},
		{"csv conflict", FormatCSV, "A,X\nA,Y\n", errors.ErrCodeDuplicateName},
		{"toml nested", FormatTOML, "[A]\nx = 1\n", errors.ErrCodeParse},
		{"yaml list", FormatYAML, "- A\n- B\n", errors.ErrCodeParse},
		{"json", FormatJSON, "{}", errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRenameTable(strings.NewReader(tt.input), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("ReadRenameTable() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestReadRenameTableDuplicateSameTarget(t *testing.T) {
	got, err := ReadRenameTable(strings.NewReader("A,X\nA,X\n"), FormatCSV)
	if err != nil {
		t.Fatalf("ReadRenameTable() error: %v", err)
	}
	if len(got) != 1 || got["A"] != "X" {
		t.Errorf("ReadRenameTable() = %v, want {A: X}", got)
	}
}

func TestImportRenameTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "renames.csv")
	if err := os.WriteFile(path, []byte("A,A_v2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ImportRenameTable(path)
	if err != nil {
		t.Fatalf("ImportRenameTable() error: %v", err)
	}
	if got["A"] != "A_v2" {
		t.Errorf("ImportRenameTable() = %v", got)
	}

	_, err = ImportRenameTable(filepath.Join(dir, "missing.csv"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ImportRenameTable(missing) error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}
