package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
	"github.com/cloudcalvin/gdsutil/pkg/hier"
)

// Format is a side-file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// FormatFromPath returns the format named by the extension of path.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat,
			"unsupported file extension %q (use .yaml, .toml, .json or .csv)", ext).For(path)
	}
}

type placementFile struct {
	Placements []hier.Placement `toml:"placements"`
}

// WritePlacements encodes placements in format f and writes them to w.
func WritePlacements(w io.Writer, f Format, placements []hier.Placement) error {
	if placements == nil {
		placements = []hier.Placement{}
	}
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(placements); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(placementFile{Placements: placements}); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(placements); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "placements cannot be written as %s", f).For(string(f))
	}
}

// ExportPlacements writes placements to path in the format named by its
// extension.
func ExportPlacements(path string, placements []hier.Placement) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if f == FormatCSV {
		return errors.New(errors.ErrCodeInvalidFormat, "placements cannot be written as csv").For(path)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WritePlacements(out, f, placements); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
