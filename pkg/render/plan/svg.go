// Package plan draws finished floorplans as SVG.
package plan

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/macroplace/pkg/geometry"
	"github.com/matzehuels/macroplace/pkg/macro"
	"github.com/matzehuels/macroplace/pkg/place"
	"github.com/matzehuels/macroplace/pkg/render"
)

// targetWidth is the rendered width in pixels; height follows the outline's
// aspect ratio.
const targetWidth = 800.0

// margin is the padding around the outline, in outline units relative to
// the larger outline dimension.
const marginFrac = 0.04

// blockPalette cycles across macros.
var blockPalette = []string{
	"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3",
	"#fdb462", "#b3de69", "#fccde5", "#d9d9d9", "#bc80bd",
}

// SVGOption configures floorplan rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	nets      []macro.BundledNet
	names     []string
	blockages []geometry.Rect
	fences    map[int]geometry.Rect
	guides    map[int]geometry.Rect
	labels    bool
}

// WithNets draws the bundled nets as lines between macro centers. The names
// slice maps a terminal's macro index to its block name.
func WithNets(nets []macro.BundledNet, names []string) SVGOption {
	return func(r *svgRenderer) { r.nets = nets; r.names = names }
}

// WithBlockages draws keep-out regions as hatched rectangles.
func WithBlockages(blockages []geometry.Rect) SVGOption {
	return func(r *svgRenderer) { r.blockages = blockages }
}

// WithFences draws keep-in regions as dashed rectangles.
func WithFences(fences map[int]geometry.Rect) SVGOption {
	return func(r *svgRenderer) { r.fences = fences }
}

// WithGuides draws guidance regions as dotted rectangles.
func WithGuides(guides map[int]geometry.Rect) SVGOption {
	return func(r *svgRenderer) { r.guides = guides }
}

// WithLabels writes each macro's name at its center.
func WithLabels() SVGOption {
	return func(r *svgRenderer) { r.labels = true }
}

// RenderSVG draws the layout. The outline is a thick frame; macros are
// filled rectangles in a repeating palette.
func RenderSVG(l *place.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	m := marginFrac * max(l.OutlineWidth, l.OutlineHeight)
	viewW := l.OutlineWidth + 2*m
	viewH := l.OutlineHeight + 2*m
	pxH := targetWidth * viewH / viewW

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`+"\n",
		viewW, viewH, targetWidth, pxH)
	fmt.Fprintf(&buf, `<g transform="translate(%.2f, %.2f)">`+"\n", m, m)

	// SVG y grows downward; flip so the layout origin is bottom-left.
	flipY := func(y, h float64) float64 { return l.OutlineHeight - y - h }

	fmt.Fprintf(&buf, `<rect x="0" y="0" width="%.2f" height="%.2f" fill="none" stroke="#333" stroke-width="%.2f"/>`+"\n",
		l.OutlineWidth, l.OutlineHeight, m/4)

	for _, blk := range r.blockages {
		fmt.Fprintf(&buf, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="#999" fill-opacity="0.4" stroke="#666" stroke-width="%.2f"/>`+"\n",
			blk.LX, flipY(blk.LY, blk.Height()), blk.Width(), blk.Height(), m/16)
	}

	for i, b := range l.Blocks {
		fill := blockPalette[i%len(blockPalette)]
		fmt.Fprintf(&buf, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" fill-opacity="0.85" stroke="#333" stroke-width="%.2f"/>`+"\n",
			b.X, flipY(b.Y, b.Height), b.Width, b.Height, fill, m/16)
		if r.labels {
			fontSize := min(b.Width, b.Height) / 4
			fmt.Fprintf(&buf, `<text x="%.2f" y="%.2f" font-size="%.2f" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif">%s</text>`+"\n",
				b.X+b.Width/2, flipY(b.Y, b.Height)+b.Height/2, fontSize, b.Name)
		}
	}

	for _, rect := range r.fences {
		fmt.Fprintf(&buf, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="#c0392b" stroke-width="%.2f" stroke-dasharray="%.2f %.2f"/>`+"\n",
			rect.LX, flipY(rect.LY, rect.Height()), rect.Width(), rect.Height(), m/16, m/4, m/8)
	}
	for _, rect := range r.guides {
		fmt.Fprintf(&buf, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="#2980b9" stroke-width="%.2f" stroke-dasharray="%.2f %.2f"/>`+"\n",
			rect.LX, flipY(rect.LY, rect.Height()), rect.Width(), rect.Height(), m/16, m/8, m/8)
	}

	if len(r.nets) > 0 {
		centers := blockCenters(l, flipY)
		for _, n := range r.nets {
			sx, sy, ok1 := terminalPoint(n.Src, r.names, centers, l, flipY)
			dx, dy, ok2 := terminalPoint(n.Dst, r.names, centers, l, flipY)
			if !ok1 || !ok2 {
				continue
			}
			fmt.Fprintf(&buf, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="#555" stroke-width="%.2f" stroke-opacity="0.6"/>`+"\n",
				sx, sy, dx, dy, m/16*n.Weight)
		}
	}

	buf.WriteString("</g>\n</svg>\n")
	return buf.Bytes()
}

func blockCenters(l *place.Layout, flipY func(y, h float64) float64) map[string][2]float64 {
	centers := make(map[string][2]float64, len(l.Blocks))
	for _, b := range l.Blocks {
		centers[b.Name] = [2]float64{b.X + b.Width/2, flipY(b.Y, b.Height) + b.Height/2}
	}
	return centers
}

func terminalPoint(t macro.Terminal, names []string, centers map[string][2]float64, l *place.Layout, flipY func(y, h float64) float64) (float64, float64, bool) {
	if t.IsFixed() {
		return t.X, flipY(t.Y, 0), true
	}
	if t.Macro < 0 || t.Macro >= len(names) {
		return 0, 0, false
	}
	c, ok := centers[names[t.Macro]]
	if !ok {
		return 0, 0, false
	}
	return c[0], c[1], true
}

// RenderPDF renders the layout as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(l *place.Layout, opts ...SVGOption) ([]byte, error) {
	return render.ToPDF(RenderSVG(l, opts...))
}

// RenderPNG renders the layout as PNG via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(l *place.Layout, scale float64, opts ...SVGOption) ([]byte, error) {
	return render.ToPNG(RenderSVG(l, opts...), scale)
}
