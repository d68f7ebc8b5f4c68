package plan

import (
	"strings"
	"testing"

	"github.com/matzehuels/macroplace/pkg/geometry"
	"github.com/matzehuels/macroplace/pkg/macro"
	"github.com/matzehuels/macroplace/pkg/place"
)

func testLayout() *place.Layout {
	return &place.Layout{
		OutlineWidth:  100,
		OutlineHeight: 100,
		Blocks: []place.Block{
			{Name: "cpu", X: 0, Y: 0, Width: 40, Height: 40},
			{Name: "cache", X: 40, Y: 0, Width: 30, Height: 30},
		},
	}
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(testLayout(), WithLabels()))

	if !strings.HasPrefix(svg, "<svg xmlns") {
		t.Error("output is not an SVG document")
	}
	if !strings.HasSuffix(strings.TrimSpace(svg), "</svg>") {
		t.Error("SVG document not closed")
	}
	if count := strings.Count(svg, "<rect"); count != 3 {
		t.Errorf("got %d rects, want outline + 2 blocks = 3", count)
	}
	for _, name := range []string{"cpu", "cache"} {
		if !strings.Contains(svg, ">"+name+"</text>") {
			t.Errorf("label %q missing", name)
		}
	}
}

func TestRenderSVGFlipsY(t *testing.T) {
	// A block at the layout origin must be drawn at the bottom of the SVG.
	l := &place.Layout{
		OutlineWidth:  100,
		OutlineHeight: 100,
		Blocks:        []place.Block{{Name: "a", X: 0, Y: 0, Width: 10, Height: 10}},
	}
	svg := string(RenderSVG(l))
	if !strings.Contains(svg, `<rect x="0.00" y="90.00"`) {
		t.Error("block at the origin not flipped to the bottom edge")
	}
}

func TestRenderSVGOverlays(t *testing.T) {
	nets := []macro.BundledNet{
		{Src: macro.MacroTerminal(0), Dst: macro.MacroTerminal(1), Weight: 1},
		{Src: macro.MacroTerminal(0), Dst: macro.FixedTerminal(0, 50), Weight: 2},
	}
	svg := string(RenderSVG(testLayout(),
		WithNets(nets, []string{"cpu", "cache"}),
		WithBlockages([]geometry.Rect{geometry.NewRect(60, 60, 20, 20)}),
		WithFences(map[int]geometry.Rect{0: geometry.NewRect(0, 0, 50, 50)}),
		WithGuides(map[int]geometry.Rect{1: geometry.NewRect(30, 30, 40, 40)}),
	))

	if count := strings.Count(svg, "<line"); count != 2 {
		t.Errorf("got %d net lines, want 2", count)
	}
	if !strings.Contains(svg, "stroke-dasharray") {
		t.Error("fence/guide overlays missing")
	}
	if count := strings.Count(svg, "<rect"); count != 6 {
		t.Errorf("got %d rects, want outline + 2 blocks + blockage + fence + guide = 6", count)
	}
}
