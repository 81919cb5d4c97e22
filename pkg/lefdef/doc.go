// Package lefdef reads the subset of LEF and DEF needed to build a layout:
// macro footprints and geometry from LEF, and placed components plus routed
// wiring from DEF.
//
// # Parsing
//
// [ParseLEF] returns a [Tech] and [ParseDEF] returns a [Design]. Both share
// one tokenizer ([Lexer], built with participle) and skip every section they
// do not model, so full production files can be read as long as their block
// structure is well formed. Distances stay in microns as written; the
// conversion to database units happens on import.
//
// Tech values are plain data and encode to JSON, which lets callers cache
// parsed LEF files.
//
// # Import
//
// [Import] turns one or more Techs and a Design into a [layout.Layout]:
//
//   - every LEF layer becomes a layout layer, numbered from 1 in order of
//     first definition, plus an outline layer for footprints;
//   - every macro becomes a cell holding its pin and obstruction shapes and
//     its SIZE rectangle on the outline layer;
//   - the design becomes the top cell, with the die area on the outline
//     layer, one instance per placed component and one net per DEF net.
//
// Component orientations map onto layout transforms as follows, where the
// placement point is the lower-left corner of the placed footprint:
//
//	N  R0          FN  mirrored, R0
//	W  R90         FE  mirrored, R90
//	S  R180        FS  mirrored, R180
//	E  R270        FW  mirrored, R270
package lefdef
