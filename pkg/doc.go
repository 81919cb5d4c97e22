// Package pkg provides the libraries behind gdsutil, a tool for editing and
// converting hierarchical IC layouts stored as GDSII stream files.
//
// # Overview
//
// The pkg directory is organized into four areas:
//
//  1. Data model: [geom] coordinates and transforms, [layout] the in-memory
//     layout model, [gds] the stream-format library and its codec
//  2. Engine: [export] layout to stream conversion, [hier] hierarchy walks
//     that snap, rename and list references
//  3. Adapters: [lefdef] LEF/DEF import, [io] side files (rename tables,
//     placement listings), [render] reference graph drawing
//  4. Orchestration: [pipeline] runs the commands as stages with caching
//     ([cache]) and instrumentation ([observability])
//
// # Architecture
//
// The typical data flow of a LEF/DEF conversion:
//
//	LEF files + DEF file
//	         ↓
//	    [lefdef] package (parse, import into a layout)
//	         ↓
//	    [export] package (cells to structs, placements to references)
//	         ↓
//	    [gds] package (write the stream file)
//
// Hierarchy edits start from a stream file instead:
//
//	[gds].Load → [hier].Quantize / [hier].RewriteReferences → [gds].Save
//
// # Quick Start
//
//	lib, err := gds.Load("chip.gds")
//	if err != nil {
//	    return err
//	}
//	err = hier.Quantize(lib, "TOP", 5, hier.Options{MaxDepth: 2})
//	if err != nil {
//	    return err
//	}
//	return gds.Save("chip_snapped.gds", lib)
//
// # Errors
//
// Every package reports failures as [errors.Error] values carrying a code
// and the offending name. Test the kind with errors.Is(err, code).
//
// [geom]: https://pkg.go.dev/github.com/cloudcalvin/gdsutil/pkg/geom
// [layout]: https://pkg.go.dev/github.com/cloudcalvin/gdsutil/pkg/layout
// [gds]: https://pkg.go.dev/github.com/cloudcalvin/gdsutil/pkg/gds
// [export]: https://pkg.go.dev/github.com/cloudcalvin/gdsutil/pkg/export
// [hier]: https://pkg.go.dev/github.com/cloudcalvin/gdsutil/pkg/hier
// [lefdef]: https://pkg.go.dev/github.com/cloudcalvin/gdsutil/pkg/lefdef
// [io]: https://pkg.go.dev/github.com/cloudcalvin/gdsutil/pkg/io
// [render]: https://pkg.go.dev/github.com/cloudcalvin/gdsutil/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/cloudcalvin/gdsutil/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/cloudcalvin/gdsutil/pkg/cache
// [observability]: https://pkg.go.dev/github.com/cloudcalvin/gdsutil/pkg/observability
// [errors.Error]: https://pkg.go.dev/github.com/cloudcalvin/gdsutil/pkg/errors#Error
package pkg
