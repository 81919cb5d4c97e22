package io

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
)

// ReadRenameTable decodes a rename table in format f from r.
//
// Keys and values are trimmed of surrounding whitespace; empty keys or
// values are rejected with ErrCodeInvalidFormat, and a key mapped to two
// different names with ErrCodeDuplicateName. ReadRenameTable does not
// close r.
func ReadRenameTable(r io.Reader, f Format) (map[string]string, error) {
	var raw [][2]string
	switch f {
	case FormatCSV:
		rows, err := readCSV(r)
		if err != nil {
			return nil, err
		}
		raw = rows
	case FormatTOML:
		var m map[string]string
		if _, err := toml.NewDecoder(r).Decode(&m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "decode toml rename table")
		}
		raw = pairs(m)
	case FormatYAML:
		var m map[string]string
		if err := yaml.NewDecoder(r).Decode(&m); err != nil && !stderrors.Is(err, io.EOF) {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "decode yaml rename table")
		}
		raw = pairs(m)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "rename tables cannot be read from %s", f).For(string(f))
	}

	table := make(map[string]string, len(raw))
	for _, kv := range raw {
		from, to := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])
		if from == "" || to == "" {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "rename entry %q -> %q is incomplete", from, to).For(from)
		}
		if prev, ok := table[from]; ok && prev != to {
			return nil, errors.New(errors.ErrCodeDuplicateName,
				"%q is renamed to both %q and %q", from, prev, to).For(from)
		}
		table[from] = to
	}
	return table, nil
}

func readCSV(r io.Reader) ([][2]string, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out [][2]string
	for {
		rec, err := cr.Read()
		if stderrors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "read csv rename table")
		}
		if len(rec) != 2 {
			line, _ := cr.FieldPos(0)
			return nil, errors.New(errors.ErrCodeInvalidFormat,
				"line %d: want 2 columns, got %d", line, len(rec))
		}
		out = append(out, [2]string{rec[0], rec[1]})
	}
}

func pairs(m map[string]string) [][2]string {
	out := make([][2]string, 0, len(m))
	for k, v := range m {
		out = append(out, [2]string{k, v})
	}
	return out
}

// ImportRenameTable reads the rename table at path in the format named by
// its extension.
func ImportRenameTable(path string) (map[string]string, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if f == FormatJSON {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "rename tables cannot be read from json").For(path)
	}

	in, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "rename table %s not found", path).For(path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer in.Close()

	table, err := ReadRenameTable(in, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}
