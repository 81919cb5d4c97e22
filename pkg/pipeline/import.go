package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
	"github.com/cloudcalvin/gdsutil/pkg/export"
	"github.com/cloudcalvin/gdsutil/pkg/gds"
	"github.com/cloudcalvin/gdsutil/pkg/layout"
	"github.com/cloudcalvin/gdsutil/pkg/lefdef"
)

// Import converts a DEF design and its LEF libraries to a stream-format
// library and, when opts.Output is set, writes it.
func (r *Runner) Import(ctx context.Context, opts ImportOptions) (*gds.Library, *Result, error) {
	if err := validateOptions(opts); err != nil {
		return nil, nil, err
	}
	if err := errors.ValidateStructName(opts.Top); err != nil {
		return nil, nil, err
	}
	res := &Result{Top: opts.Top, Stats: make(map[string]time.Duration)}

	techs := make([]*lefdef.Tech, 0, len(opts.LEFs))
	for _, path := range opts.LEFs {
		err := r.stage(ctx, StageParseLEF, path, res.Stats, func() error {
			tech, hit, err := r.LoadTech(ctx, path, opts.Refresh)
			if err != nil {
				return err
			}
			if hit {
				res.CacheHits++
			}
			r.Logger.Debug("loaded LEF", "file", path, "cached", hit,
				"layers", len(tech.Layers), "macros", len(tech.Macros))
			techs = append(techs, tech)
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
	}

	var design *lefdef.Design
	err := r.stage(ctx, StageParseDEF, opts.DEF, res.Stats, func() error {
		data, err := readInput(opts.DEF)
		if err != nil {
			return err
		}
		design, err = lefdef.ParseDEF(opts.DEF, bytes.NewReader(data), r.Logger)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	if design.Name != opts.Top {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput,
			"top %q does not match design %q in %s", opts.Top, design.Name, opts.DEF).For(opts.Top)
	}

	var (
		lay *layout.Layout
		top layout.CellID
	)
	err = r.stage(ctx, StageImport, design.Name, res.Stats, func() error {
		var err error
		lay, top, err = lefdef.Import(techs, design, lefdef.Options{
			OutlineLayer: opts.OutlineLayer,
			OutlineIndex: opts.OutlineIndex,
			Layers:       opts.Layers,
			Logger:       r.Logger,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	var lib *gds.Library
	err = r.stage(ctx, StageExport, design.Name, res.Stats, func() error {
		var err error
		lib, err = export.Export(lay, top, export.Options{
			OutlineLayer: opts.OutlineLayer,
			Timestamp:    opts.Timestamp,
			Logger:       r.Logger,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	res.Structs = len(lib.Structs)

	if opts.Output != "" {
		start := time.Now()
		if err := r.save(ctx, opts.Output, lib); err != nil {
			return nil, nil, err
		}
		res.Stats[StageSave] = time.Since(start)
	}

	r.Logger.Info("converted design",
		"design", design.Name,
		"components", len(design.Components),
		"nets", len(design.Nets),
		"structs", res.Structs)
	return lib, res, nil
}
