// Package io reads and writes the side files of the hierarchy commands:
// placement listings produced by extraction and rename tables consumed by
// reference rewriting.
//
// # Formats
//
// The file format is chosen from the path extension with [FormatFromPath]:
//
//   - .yaml, .yml: YAML (gopkg.in/yaml.v3)
//   - .toml: TOML (github.com/BurntSushi/toml)
//   - .json: JSON
//   - .csv: comma-separated values, rename tables only
//
// # Placement Listings
//
// [WritePlacements] and [ExportPlacements] write extracted placements. YAML
// and JSON listings are a top-level sequence:
//
//	- parent: TOP
//	  name: A
//	  layout:
//	    position: {x: 130, y: 250}
//	    rotation: 270
//	    scale: 1
//	    mirrored: true
//
// TOML has no top-level arrays, so TOML listings wrap the sequence in a
// placements array of tables:
//
//	[[placements]]
//	parent = "TOP"
//	name = "A"
//
// # Rename Tables
//
// [ReadRenameTable] and [ImportRenameTable] read a mapping from old to new
// struct names. CSV tables have two columns and no header; lines starting
// with # are comments. TOML and YAML tables are a flat mapping of strings:
//
//	A = "A_v2"
//	B = "B_v2"
//
// A name mapped twice to different targets is rejected.
package io
