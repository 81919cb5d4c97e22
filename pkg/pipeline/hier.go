package pipeline

import (
	"context"
	"io"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
	"github.com/cloudcalvin/gdsutil/pkg/gds"
	"github.com/cloudcalvin/gdsutil/pkg/hier"
	gdsio "github.com/cloudcalvin/gdsutil/pkg/io"
	"github.com/cloudcalvin/gdsutil/pkg/render"
)

// Snap loads opts.Input, snaps the hierarchy below opts.Root to opts.Grid
// and writes the result to opts.Output. Nothing is written when snapping
// fails.
func (r *Runner) Snap(ctx context.Context, opts SnapOptions) error {
	if err := validateOptions(opts); err != nil {
		return err
	}
	lib, err := r.load(ctx, opts.Input)
	if err != nil {
		return err
	}
	err = r.stage(ctx, StageTransform, opts.Root, nil, func() error {
		return hier.Quantize(lib, opts.Root, opts.Grid, opts.Walk.options())
	})
	if err != nil {
		return err
	}
	if err := r.save(ctx, opts.Output, lib); err != nil {
		return err
	}
	r.Logger.Info("snapped hierarchy", "root", opts.Root, "grid", opts.Grid, "depth", opts.Depth)
	return nil
}

// Replace loads opts.Input, renames the references below opts.Root through
// the rename table in opts.Table and writes the result to opts.Output.
func (r *Runner) Replace(ctx context.Context, opts ReplaceOptions) error {
	if err := validateOptions(opts); err != nil {
		return err
	}
	var table map[string]string
	err := r.stage(ctx, StageLoad, opts.Table, nil, func() error {
		var err error
		table, err = gdsio.ImportRenameTable(opts.Table)
		return err
	})
	if err != nil {
		return err
	}
	lib, err := r.load(ctx, opts.Input)
	if err != nil {
		return err
	}
	err = r.stage(ctx, StageTransform, opts.Root, nil, func() error {
		return hier.RewriteReferences(lib, opts.Root, table, opts.Walk.options())
	})
	if err != nil {
		return err
	}
	if err := r.save(ctx, opts.Output, lib); err != nil {
		return err
	}
	r.Logger.Info("rewrote references", "root", opts.Root, "entries", len(table))
	return nil
}

// Extract lists the references below opts.Root and, when opts.Output is
// set, writes the listing in the format named by its extension.
func (r *Runner) Extract(ctx context.Context, opts ExtractOptions) ([]hier.Placement, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	if opts.Output != "" {
		f, err := gdsio.FormatFromPath(opts.Output)
		if err != nil {
			return nil, err
		}
		if f == gdsio.FormatCSV {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "placements cannot be written as csv").For(opts.Output)
		}
	}
	lib, err := r.load(ctx, opts.Input)
	if err != nil {
		return nil, err
	}

	var placements []hier.Placement
	err = r.stage(ctx, StageTransform, opts.Root, nil, func() error {
		var err error
		if placements, err = hier.Extract(lib, opts.Root, opts.Walk.options()); err != nil {
			return err
		}
		if opts.LowerLeft {
			return hier.LowerLeft(lib, placements)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if opts.Output != "" {
		err := r.stage(ctx, StageSave, opts.Output, nil, func() error {
			return gdsio.ExportPlacements(opts.Output, placements)
		})
		if err != nil {
			return nil, err
		}
	}
	r.Logger.Info("extracted references", "root", opts.Root, "count", len(placements))
	return placements, nil
}

// Print writes the library at path to w as indented JSON.
func (r *Runner) Print(ctx context.Context, path string, w io.Writer) error {
	lib, err := r.load(ctx, path)
	if err != nil {
		return err
	}
	return r.stage(ctx, StageRender, path, nil, func() error {
		return gds.WriteJSON(w, lib)
	})
}

// Hierarchy renders the struct reference graph of opts.Input. The error
// return covers loading and rendering only; cycles are drawn, not rejected.
// The cycle, if any, is returned as a closed name sequence.
func (r *Runner) Hierarchy(ctx context.Context, opts HierarchyOptions) ([]byte, []string, error) {
	if err := validateOptions(opts); err != nil {
		return nil, nil, err
	}
	lib, err := r.load(ctx, opts.Input)
	if err != nil {
		return nil, nil, err
	}

	if opts.Top != "" && lib.Struct(opts.Top) == nil {
		return nil, nil, errors.New(errors.ErrCodeUnresolvedReference, "struct %q not found", opts.Top).For(opts.Top)
	}
	g := gds.NewGraph(lib)
	var roots []string
	if opts.Top != "" {
		roots = []string{opts.Top}
	}
	cycle := g.FindCycle(roots...)
	if undefined := g.Undefined(); len(undefined) > 0 {
		r.Logger.Warn("references to undefined structs", "structs", undefined)
	}

	var out []byte
	err = r.stage(ctx, StageRender, opts.Input, nil, func() error {
		dot := render.ToDOT(g, render.Options{Top: opts.Top, LeftToRight: opts.LeftToRight})
		var err error
		out, err = render.Render(ctx, dot, opts.Format)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return out, cycle, nil
}
