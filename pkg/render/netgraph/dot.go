// Package netgraph renders macro connectivity as Graphviz diagrams.
package netgraph

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/macroplace/pkg/macro"
	"github.com/matzehuels/macroplace/pkg/place"
	"github.com/matzehuels/macroplace/pkg/render"
)

// Options configures connectivity rendering.
type Options struct {
	// Detailed includes each block's dimensions in its label.
	// When false, only the name is shown.
	Detailed bool
}

// ToDOT converts a layout's connectivity to Graphviz DOT format. The names
// slice maps a terminal's macro index to its block name. Fixed terminals
// are rendered as small grey points.
//
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF],
// or [RenderPNG].
func ToDOT(l *place.Layout, nets []macro.BundledNet, names []string, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("\n")

	for _, b := range l.Blocks {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", b.Name, fmtLabel(b, opts.Detailed))
	}

	buf.WriteString("\n")
	fixed := 0
	for _, n := range nets {
		src, ok := endpoint(&buf, n.Src, names, &fixed)
		if !ok {
			continue
		}
		dst, ok := endpoint(&buf, n.Dst, names, &fixed)
		if !ok {
			continue
		}
		fmt.Fprintf(&buf, "  %q -- %q [penwidth=%g];\n", src, dst, n.Weight)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(b place.Block, detailed bool) string {
	if !detailed {
		return b.Name
	}
	label := fmt.Sprintf("%s\n%.0fx%.0f", b.Name, b.Width, b.Height)
	if b.Orientation != "" {
		label += " " + b.Orientation
	}
	return label
}

// endpoint emits a point node for fixed terminals and returns the node id.
func endpoint(buf *bytes.Buffer, t macro.Terminal, names []string, fixed *int) (string, bool) {
	if !t.IsFixed() {
		if t.Macro < 0 || t.Macro >= len(names) {
			return "", false
		}
		return names[t.Macro], true
	}
	*fixed++
	id := fmt.Sprintf("pin%d", *fixed)
	fmt.Fprintf(buf, "  %q [shape=point, fillcolor=grey, label=\"\", xlabel=\"(%g, %g)\"];\n", id, t.X, t.Y)
	return id, true
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
