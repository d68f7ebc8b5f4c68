package anneal

import (
	"math"
	"testing"

	"github.com/matzehuels/macroplace/pkg/geometry"
	"github.com/matzehuels/macroplace/pkg/macro"
)

func TestInitializeFitsOutline(t *testing.T) {
	macros := []*macro.SoftMacro{
		mustSoft(t, "a", macro.Shape{W: 40, H: 40}),
		mustSoft(t, "b", macro.Shape{W: 30, H: 30}),
	}
	s, err := NewSoftCore(testConfig(100, 100), macros)
	if err != nil {
		t.Fatalf("NewSoftCore: %v", err)
	}
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	// The identity packing is 70x40 and fits; no outline penalty.
	if got := s.Penalties().Outline.Raw; got != 0 {
		t.Errorf("outline penalty = %g, want 0", got)
	}
	if s.width != 70 || s.height != 40 {
		t.Errorf("bbox %gx%g, want 70x40", s.width, s.height)
	}
}

func TestInitializeNormDefaults(t *testing.T) {
	// With no nets, guides or fences those raw terms stay zero throughout
	// the sampling walk and must fall back to a unit normalizer.
	macros := []*macro.SoftMacro{
		mustSoft(t, "a", macro.Shape{W: 40, H: 40}),
		mustSoft(t, "b", macro.Shape{W: 30, H: 30}),
	}
	s, err := NewSoftCore(testConfig(100, 100), macros)
	if err != nil {
		t.Fatalf("NewSoftCore: %v", err)
	}
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	b := s.Penalties()
	for name, term := range map[string]Term{
		"wirelength": b.Wirelength,
		"guidance":   b.Guidance,
		"fence":      b.Fence,
	} {
		if term.Norm != 1 {
			t.Errorf("%s norm = %g, want 1", name, term.Norm)
		}
	}
	if b.Area.Norm <= 0 {
		t.Errorf("area norm = %g, want positive", b.Area.Norm)
	}
}

func TestResizeConservesArea(t *testing.T) {
	macros := []*macro.SoftMacro{
		mustSoft(t, "flex",
			macro.Shape{W: 20, H: 20},
			macro.Shape{W: 10, H: 40},
			macro.Shape{W: 40, H: 10},
		),
		mustSoft(t, "fixed", macro.Shape{W: 30, H: 30}),
	}
	s, err := NewSoftCore(testConfig(60, 60), macros)
	if err != nil {
		t.Fatalf("NewSoftCore: %v", err)
	}
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := s.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	flex := s.Macros()[0]
	if got := flex.Width() * flex.Height(); math.Abs(got-400) > 1e-9 {
		t.Errorf("flex macro area = %g, want 400", got)
	}
	idx := flex.ShapeIndex()
	if idx < 0 || idx >= flex.NumShapes() {
		t.Errorf("shape index %d out of range", idx)
	}
}

func TestBlockagePenalty(t *testing.T) {
	macros := []*macro.SoftMacro{
		mustSoft(t, "a", macro.Shape{W: 40, H: 40}),
		mustSoft(t, "b", macro.Shape{W: 30, H: 30}),
	}
	s, err := NewSoftCore(testConfig(100, 100), macros)
	if err != nil {
		t.Fatalf("NewSoftCore: %v", err)
	}
	// Keep-out over the whole outline: any placement overlaps it fully.
	s.SetBlockages([]geometry.Rect{geometry.NewRect(0, 0, 100, 100)})
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if got := s.Penalties().MacroBlockage.Raw; got != 40*40+30*30 {
		t.Errorf("blockage penalty = %g, want %g", got, float64(40*40+30*30))
	}
	if err := s.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestBoundaryPenalty(t *testing.T) {
	macros := []*macro.SoftMacro{
		mustSoft(t, "corner", macro.Shape{W: 20, H: 20}),
	}
	macros[0].SetPreferBoundary(true)
	s, err := NewSoftCore(testConfig(100, 100), macros)
	if err != nil {
		t.Fatalf("NewSoftCore: %v", err)
	}

	tests := []struct {
		name string
		x, y float64
		want float64
	}{
		{"flush at origin", 0, 0, 0},
		{"ten off the left edge", 10, 50, 10},
		{"center", 40, 40, 40},
		{"near the top", 40, 75, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.macros[0].SetLoc(tt.x, tt.y)
			s.calBoundaryPenalty()
			if s.boundaryPenalty != tt.want {
				t.Errorf("boundary penalty = %g, want %g", s.boundaryPenalty, tt.want)
			}
		})
	}
}

func TestGuidanceAndFencePenalties(t *testing.T) {
	macros := []*macro.SoftMacro{
		mustSoft(t, "a", macro.Shape{W: 20, H: 20}),
	}
	cfg := testConfig(100, 100)
	cfg.Guides = map[int]geometry.Rect{0: geometry.NewRect(60, 60, 20, 20)}
	cfg.Fences = map[int]geometry.Rect{0: geometry.NewRect(0, 0, 30, 30)}
	s, err := NewSoftCore(cfg, macros)
	if err != nil {
		t.Fatalf("NewSoftCore: %v", err)
	}

	// Macro at the origin: center (10, 10) is 50+50 away from the guide,
	// and the macro sits entirely inside its fence.
	s.macros[0].SetLoc(0, 0)
	s.calGuidancePenalty()
	s.calFencePenalty()
	if s.guidancePenalty != 100 {
		t.Errorf("guidance penalty = %g, want 100", s.guidancePenalty)
	}
	if s.fencePenalty != 0 {
		t.Errorf("fence penalty = %g, want 0", s.fencePenalty)
	}

	// Half in, half out of the fence.
	s.macros[0].SetLoc(20, 0)
	s.calFencePenalty()
	if s.fencePenalty != 200 {
		t.Errorf("fence penalty = %g, want 200", s.fencePenalty)
	}
}

func TestCostScalesWithWeights(t *testing.T) {
	// Normalizers come from raw term samples and never depend on the
	// weights, so scaling every weight uniformly scales the cost exactly.
	build := func(scale float64) *SoftCore {
		cfg := testConfig(100, 100)
		cfg.Weights = Weights{
			Area:          cfg.Weights.Area * scale,
			Outline:       cfg.Weights.Outline * scale,
			Wirelength:    cfg.Weights.Wirelength * scale,
			Guidance:      cfg.Weights.Guidance * scale,
			Fence:         cfg.Weights.Fence * scale,
			Boundary:      cfg.Weights.Boundary * scale,
			MacroBlockage: cfg.Weights.MacroBlockage * scale,
			Notch:         cfg.Weights.Notch * scale,
		}
		macros := []*macro.SoftMacro{
			mustSoft(t, "a", macro.Shape{W: 40, H: 40}),
			mustSoft(t, "b", macro.Shape{W: 30, H: 30}),
			mustSoft(t, "c", macro.Shape{W: 20, H: 50}),
		}
		s, err := NewSoftCore(cfg, macros)
		if err != nil {
			t.Fatalf("NewSoftCore: %v", err)
		}
		if err := s.Initialize(); err != nil {
			t.Fatalf("Initialize: %v", err)
		}
		return s
	}

	base := build(1)
	scaled := build(10)

	if base.Cost() == 0 {
		t.Fatal("base cost should be positive")
	}
	ratio := scaled.Cost() / base.Cost()
	if math.Abs(ratio-10) > 1e-9 {
		t.Errorf("cost ratio = %g, want 10", ratio)
	}
}
