// Package render draws the struct reference graph of a stream-format library.
//
// # Overview
//
// [ToDOT] turns a [gds.Graph] into Graphviz DOT source: one box per struct
// and one arrow per distinct reference, labelled with the number of
// reference elements when there is more than one. Names that are referenced
// but never defined are drawn dashed, and the edges of a reference cycle are
// drawn red.
//
//	g := gds.NewGraph(lib)
//	dot := render.ToDOT(g, render.Options{Top: "TOP"})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Format Conversion
//
// [RenderSVG] and [RenderPNG] render in-process with
// [github.com/goccy/go-graphviz]. [Render] dispatches on [Format]; PDF
// converts the SVG with the external rsvg-convert tool from librsvg.
//
// [gds.Graph]: github.com/cloudcalvin/gdsutil/pkg/gds.Graph
package render
