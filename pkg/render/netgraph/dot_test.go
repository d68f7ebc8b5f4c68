package netgraph

import (
	"strings"
	"testing"

	"github.com/matzehuels/macroplace/pkg/macro"
	"github.com/matzehuels/macroplace/pkg/place"
)

func testLayout() *place.Layout {
	return &place.Layout{
		OutlineWidth:  100,
		OutlineHeight: 100,
		Blocks: []place.Block{
			{Name: "cpu", X: 0, Y: 0, Width: 40, Height: 40},
			{Name: "cache", X: 40, Y: 0, Width: 30, Height: 30, Orientation: "R90"},
		},
	}
}

func TestToDOT(t *testing.T) {
	nets := []macro.BundledNet{
		{Src: macro.MacroTerminal(0), Dst: macro.MacroTerminal(1), Weight: 3},
		{Src: macro.MacroTerminal(1), Dst: macro.FixedTerminal(0, 50), Weight: 1},
	}
	dot := ToDOT(testLayout(), nets, []string{"cpu", "cache"}, Options{})

	if !strings.HasPrefix(dot, "graph G {") {
		t.Error("not an undirected graph")
	}
	if !strings.Contains(dot, `"cpu" -- "cache" [penwidth=3];`) {
		t.Errorf("macro edge missing:\n%s", dot)
	}
	if !strings.Contains(dot, `"pin1" [shape=point`) {
		t.Errorf("fixed terminal node missing:\n%s", dot)
	}
	if !strings.Contains(dot, `"cache" -- "pin1"`) {
		t.Errorf("fixed terminal edge missing:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(testLayout(), nil, nil, Options{Detailed: true})
	if !strings.Contains(dot, "40x40") {
		t.Error("detailed label missing dimensions")
	}
	if !strings.Contains(dot, "R90") {
		t.Error("detailed label missing orientation")
	}
}

func TestToDOTSkipsUnknownTerminals(t *testing.T) {
	nets := []macro.BundledNet{
		{Src: macro.MacroTerminal(5), Dst: macro.MacroTerminal(0), Weight: 1},
	}
	dot := ToDOT(testLayout(), nets, []string{"cpu", "cache"}, Options{})
	if strings.Contains(dot, "--") {
		t.Error("edge with out-of-range terminal should be skipped")
	}
}
