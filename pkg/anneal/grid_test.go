package anneal

import (
	"testing"

	"github.com/matzehuels/macroplace/pkg/geometry"
	"github.com/matzehuels/macroplace/pkg/macro"
)

func TestSegmentLoc(t *testing.T) {
	lines := []float64{0, 10, 25, 40}
	tests := []struct {
		v    float64
		want int
	}{
		{0, 0},
		{5, 0},
		{10, 1}, // values on a grid line belong to the segment starting there
		{24.9, 1},
		{25, 2},
		{39, 2},
	}
	for _, tt := range tests {
		if got := segmentLoc(lines, tt.v); got != tt.want {
			t.Errorf("segmentLoc(%g) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestNotchPenalty(t *testing.T) {
	cfg := testConfig(100, 100)
	cfg.NotchHTh = 10
	cfg.NotchVTh = 10

	t.Run("thin strip counts", func(t *testing.T) {
		macros := []*macro.SoftMacro{mustSoft(t, "slab", macro.Shape{W: 100, H: 95})}
		s, err := NewSoftCore(cfg, macros)
		if err != nil {
			t.Fatalf("NewSoftCore: %v", err)
		}
		s.macros[0].SetLoc(0, 0)
		s.calNotchPenalty()
		// A 100x5 strip remains above the slab: wide enough, too short.
		if s.notchPenalty != 500 {
			t.Errorf("notch penalty = %g, want 500", s.notchPenalty)
		}
	})

	t.Run("roomy gap does not count", func(t *testing.T) {
		macros := []*macro.SoftMacro{mustSoft(t, "slab", macro.Shape{W: 100, H: 50})}
		s, err := NewSoftCore(cfg, macros)
		if err != nil {
			t.Fatalf("NewSoftCore: %v", err)
		}
		s.macros[0].SetLoc(0, 0)
		s.calNotchPenalty()
		if s.notchPenalty != 0 {
			t.Errorf("notch penalty = %g, want 0", s.notchPenalty)
		}
	})

	t.Run("zero thresholds disable the sweep", func(t *testing.T) {
		flat := cfg
		flat.NotchHTh, flat.NotchVTh = 0, 0
		macros := []*macro.SoftMacro{mustSoft(t, "slab", macro.Shape{W: 100, H: 95})}
		s, err := NewSoftCore(flat, macros)
		if err != nil {
			t.Fatalf("NewSoftCore: %v", err)
		}
		s.macros[0].SetLoc(0, 0)
		s.calNotchPenalty()
		if s.notchPenalty != 0 {
			t.Errorf("notch penalty = %g, want 0", s.notchPenalty)
		}
	})
}

func TestFillDeadSpace(t *testing.T) {
	macros := []*macro.SoftMacro{mustSoft(t, "a", macro.Shape{W: 50, H: 50})}
	s, err := NewSoftCore(testConfig(100, 100), macros)
	if err != nil {
		t.Fatalf("NewSoftCore: %v", err)
	}
	s.macros[0].SetLoc(0, 0)
	s.FillDeadSpace()

	m := s.Macros()[0]
	if m.X() != 0 || m.Y() != 0 || m.Width() != 100 || m.Height() != 100 {
		t.Errorf("macro grew to (%g, %g) %gx%g, want (0, 0) 100x100", m.X(), m.Y(), m.Width(), m.Height())
	}
}

func TestFillDeadSpaceStopsAtNeighbors(t *testing.T) {
	macros := []*macro.SoftMacro{
		mustSoft(t, "left", macro.Shape{W: 50, H: 100}),
		mustSoft(t, "right", macro.Shape{W: 30, H: 100}),
	}
	s, err := NewSoftCore(testConfig(100, 100), macros)
	if err != nil {
		t.Fatalf("NewSoftCore: %v", err)
	}
	s.macros[0].SetLoc(0, 0)
	s.macros[1].SetLoc(50, 0)
	s.FillDeadSpace()

	left, right := s.Macros()[0], s.Macros()[1]
	if left.Width() != 50 {
		t.Errorf("left macro width = %g, want 50", left.Width())
	}
	// Only the right macro can claim the empty 20-wide column.
	if right.X() != 50 || right.Width() != 50 {
		t.Errorf("right macro at x=%g width %g, want x=50 width 50", right.X(), right.Width())
	}
}

func TestFillDeadSpaceStopsAtBlockages(t *testing.T) {
	macros := []*macro.SoftMacro{mustSoft(t, "a", macro.Shape{W: 40, H: 100})}
	s, err := NewSoftCore(testConfig(100, 100), macros)
	if err != nil {
		t.Fatalf("NewSoftCore: %v", err)
	}
	blockage := geometry.NewRect(60, 0, 40, 40)
	s.SetBlockages([]geometry.Rect{blockage})
	s.macros[0].SetLoc(0, 0)
	s.FillDeadSpace()

	// The macro may claim the empty column up to the keep-out but no further.
	m := s.Macros()[0]
	if m.X() != 0 || m.Y() != 0 || m.Width() != 60 || m.Height() != 100 {
		t.Errorf("macro grew to (%g, %g) %gx%g, want (0, 0) 60x100", m.X(), m.Y(), m.Width(), m.Height())
	}
	if overlap := s.bounds(0).Overlap(blockage); overlap > 0 {
		t.Errorf("macro overlaps keep-out region by %g", overlap)
	}
}

func TestAlignMacroClusters(t *testing.T) {
	cfg := testConfig(100, 100)
	cfg.NotchHTh = 10
	cfg.NotchVTh = 10
	macros := []*macro.SoftMacro{
		mustSoft(t, "a", macro.Shape{W: 20, H: 20}),
		mustSoft(t, "b", macro.Shape{W: 20, H: 20}),
	}
	s, err := NewSoftCore(cfg, macros)
	if err != nil {
		t.Fatalf("NewSoftCore: %v", err)
	}
	// Macro a sits just off the origin; macro b just off the right edge.
	s.macros[0].SetLoc(3, 2)
	s.macros[1].SetLoc(77, 50)
	s.AlignMacroClusters()

	a, b := s.Macros()[0], s.Macros()[1]
	if a.X() != 0 || a.Y() != 0 {
		t.Errorf("macro a at (%g, %g), want snapped to origin", a.X(), a.Y())
	}
	if b.X() != 80 {
		t.Errorf("macro b at x=%g, want snapped to 80", b.X())
	}
}
