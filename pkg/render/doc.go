// Package render provides visualization rendering for placed floorplans.
//
// # Overview
//
// This package contains the rendering pipeline that transforms finished
// layouts into visual outputs. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Floorplan drawings (in [plan] subpackage)
//   - Connectivity diagrams (in [netgraph] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). These are used by both
// the plan and netgraph renderers.
//
//	svg := plan.RenderSVG(layout, opts...)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Floorplan Drawings
//
// The [plan] subpackage draws the outline, the placed macros and any
// constraint regions (blockages, fences, guides) as a scaled SVG.
//
// # Connectivity Diagrams
//
// The [netgraph] subpackage renders the bundled-net connectivity as a
// Graphviz diagram. Macros appear as boxes connected by weighted edges.
//
//	dot := netgraph.ToDOT(layout, nets, names, netgraph.Options{})
//	svg, err := netgraph.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//
// [plan]: github.com/matzehuels/macroplace/pkg/render/plan
// [netgraph]: github.com/matzehuels/macroplace/pkg/render/netgraph
package render
