// Package pipeline runs the gdsutil commands as a sequence of stages:
// load the inputs, transform, save the outputs.
//
// # Architecture
//
// Every command is a method on [Runner]:
//
//   - [Runner.Import]: LEF/DEF files to a stream-format library (def2gds)
//   - [Runner.Snap]: snap hierarchy geometry to a grid
//   - [Runner.Replace]: rename struct references through a rename table
//   - [Runner.Extract]: list struct references as placement records
//   - [Runner.Print]: dump a library as JSON
//   - [Runner.Hierarchy]: draw the struct reference graph
//
// Each stage reports to the [observability] pipeline hooks and the context is
// checked between stages; a stage, once started, runs to completion.
//
// # Caching
//
// Parsed LEF files are the only cached values. They are stored as JSON under
// [cache.TechKey] of the file content, so editing a LEF file invalidates its
// entry without any bookkeeping.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, logger)
//	defer runner.Close()
//	res, err := runner.Import(ctx, pipeline.ImportOptions{
//	    Top:    "top",
//	    DEF:    "top.def",
//	    LEFs:   []string{"tech.lef", "cells.lef"},
//	    Output: "top.gds",
//	})
//
// [observability]: github.com/cloudcalvin/gdsutil/pkg/observability
package pipeline

import (
	stderrors "errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
	"github.com/cloudcalvin/gdsutil/pkg/hier"
	"github.com/cloudcalvin/gdsutil/pkg/lefdef"
	"github.com/cloudcalvin/gdsutil/pkg/render"
)

// Stage names reported to the pipeline hooks.
const (
	StageParseLEF  = "parse-lef"
	StageParseDEF  = "parse-def"
	StageImport    = "import"
	StageExport    = "export"
	StageLoad      = "load"
	StageTransform = "transform"
	StageSave      = "save"
	StageRender    = "render"
)

// DefaultCacheTTL is how long parsed LEF files stay cached.
const DefaultCacheTTL = 7 * 24 * time.Hour

var validate = validator.New(validator.WithRequiredStructEnabled())

// Walk selects the part of a hierarchy a command visits.
type Walk struct {
	// Root is the struct name prefix the walk starts from.
	Root string `validate:"required"`
	// Depth is the number of reference levels below the root structs.
	Depth int
	// Patterns filter reference targets; empty matches everything.
	Patterns []string
	// DetectCycles rejects reachable reference cycles before any edit.
	DetectCycles bool
}

func (w Walk) options() hier.Options {
	return hier.Options{MaxDepth: w.Depth, Patterns: w.Patterns, DetectCycles: w.DetectCycles}
}

// ImportOptions configures Runner.Import.
type ImportOptions struct {
	// Top must equal the design name of the DEF file.
	Top  string   `validate:"required"`
	DEF  string   `validate:"required"`
	LEFs []string `validate:"required,min=1,dive,required"`
	// Output is the stream file to write; empty skips writing.
	Output string

	OutlineLayer string
	OutlineIndex int16
	Layers       map[string]lefdef.LayerSpec `validate:"dive"`

	// Timestamp stamps the library; the zero time writes zero dates.
	Timestamp time.Time
	// Refresh re-parses LEF files even when they are cached.
	Refresh bool
}

// SnapOptions configures Runner.Snap.
type SnapOptions struct {
	Input  string `validate:"required"`
	Output string `validate:"required"`
	Walk
	Grid int32
}

// ReplaceOptions configures Runner.Replace.
type ReplaceOptions struct {
	Input  string `validate:"required"`
	Output string `validate:"required"`
	// Table is the rename table file (.csv, .toml or .yaml).
	Table string `validate:"required"`
	Walk
}

// ExtractOptions configures Runner.Extract.
type ExtractOptions struct {
	Input string `validate:"required"`
	// Output is the listing to write (.yaml, .toml or .json); empty skips
	// writing.
	Output string
	Walk
	// LowerLeft reports positions as the lower-left corner of the placed
	// template instead of the reference origin.
	LowerLeft bool
}

// HierarchyOptions configures Runner.Hierarchy.
type HierarchyOptions struct {
	Input string `validate:"required"`
	// Top restricts the graph to structs reachable from this struct.
	Top         string
	Format      render.Format `validate:"required,oneof=dot svg pdf png"`
	LeftToRight bool
}

// Result describes a completed Import.
type Result struct {
	// Top is the name of the top struct.
	Top string
	// Structs is the number of structs written.
	Structs int
	// CacheHits counts LEF files served from the cache.
	CacheHits int
	// Stats holds the time spent per stage.
	Stats map[string]time.Duration
}

// validateOptions checks struct tags and reports the first failure as an
// ErrCodeInvalidInput naming the field.
func validateOptions(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" || fe.Tag() == "min" {
			return errors.New(errors.ErrCodeInvalidInput, "%s is required", fe.Field()).For(fe.Field())
		}
		return errors.New(errors.ErrCodeInvalidInput, "%s: invalid value %v (%s=%s)",
			fe.Field(), fe.Value(), fe.Tag(), fe.Param()).For(fe.Field())
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
}
