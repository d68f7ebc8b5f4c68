package macro

import (
	"math"
	"testing"

	"github.com/matzehuels/macroplace/pkg/errors"
)

func TestNewHardMacro(t *testing.T) {
	tests := []struct {
		name          string
		width, height float64
		wantErr       bool
	}{
		{"Valid", 40, 40, false},
		{"ZeroWidth", 0, 10, true},
		{"NegativeHeight", 10, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewHardMacro("m", tt.width, tt.height)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, errors.ErrCodeInvalidMacro) {
					t.Errorf("error code = %v, want INVALID_MACRO", errors.GetCode(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.Width() != tt.width || m.Height() != tt.height {
				t.Errorf("dims = %gx%g, want %gx%g", m.Width(), m.Height(), tt.width, tt.height)
			}
		})
	}
}

func TestHardMacroOrientation(t *testing.T) {
	m, err := NewHardMacro("cpu", 30, 20)
	if err != nil {
		t.Fatal(err)
	}
	area := m.Area()

	for o := R0; o <= MY90; o++ {
		m.SetOrientation(o)
		if m.Area() != area {
			t.Errorf("%v: area = %g, want %g", o, m.Area(), area)
		}
		wantSwap := o.SwapsDims()
		if gotSwap := m.Width() == 20 && m.Height() == 30; gotSwap != wantSwap {
			t.Errorf("%v: dims = %gx%g, swap = %v, want %v", o, m.Width(), m.Height(), gotSwap, wantSwap)
		}
	}
}

func TestHardMacroBounds(t *testing.T) {
	m, _ := NewHardMacro("m", 4, 2)
	m.SetLoc(1, 3)
	b := m.Bounds()
	if b.LX != 1 || b.LY != 3 || b.UX != 5 || b.UY != 5 {
		t.Errorf("Bounds() = %+v", b)
	}
}

func TestNewSoftMacro(t *testing.T) {
	tests := []struct {
		name    string
		shapes  []Shape
		wantErr errors.Code
	}{
		{"Valid", []Shape{{20, 20}, {10, 40}, {40, 10}}, ""},
		{"Empty", nil, errors.ErrCodeInvalidShape},
		{"InconsistentArea", []Shape{{20, 20}, {10, 10}}, errors.ErrCodeInvalidShape},
		{"ZeroDim", []Shape{{0, 20}}, errors.ErrCodeInvalidShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewSoftMacro("m", tt.shapes)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want code %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.ShapeIndex() != 0 {
				t.Errorf("ShapeIndex() = %d, want 0", m.ShapeIndex())
			}
			if m.Width() != tt.shapes[0].W || m.Height() != tt.shapes[0].H {
				t.Errorf("dims = %gx%g, want first shape", m.Width(), m.Height())
			}
		})
	}
}

func TestSoftMacroResizeConservesArea(t *testing.T) {
	m, err := NewSoftMacro("blk", []Shape{{20, 20}, {10, 40}, {40, 10}})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < m.NumShapes(); i++ {
		m.SetShape(i)
		if math.Abs(m.Area()-400) > 400*1e-9 {
			t.Errorf("shape %d: area = %g, want 400", i, m.Area())
		}
	}

	// Out-of-range selections leave the macro untouched.
	m.SetShape(2)
	m.SetShape(99)
	if m.ShapeIndex() != 2 {
		t.Errorf("ShapeIndex() = %d after out-of-range SetShape, want 2", m.ShapeIndex())
	}
}

func TestSoftMacroSetDims(t *testing.T) {
	m, _ := NewSoftMacro("blk", []Shape{{20, 20}})
	m.SetDims(25, 30)
	if m.Width() != 25 || m.Height() != 30 {
		t.Errorf("dims = %gx%g, want 25x30", m.Width(), m.Height())
	}
	if m.RequiredArea() != 400 {
		t.Errorf("RequiredArea() = %g, want 400", m.RequiredArea())
	}
}

func TestCloneIndependence(t *testing.T) {
	h, _ := NewHardMacro("h", 2, 3)
	hc := h.Clone()
	hc.SetLoc(9, 9)
	if h.X() != 0 || h.Y() != 0 {
		t.Error("HardMacro.Clone() shares position with original")
	}

	s, _ := NewSoftMacro("s", []Shape{{4, 4}, {2, 8}})
	sc := s.Clone()
	sc.SetShape(1)
	if s.ShapeIndex() != 0 {
		t.Error("SoftMacro.Clone() shares shape index with original")
	}
}

func TestBundledNetValidate(t *testing.T) {
	tests := []struct {
		name    string
		net     BundledNet
		wantErr bool
	}{
		{"Valid", BundledNet{Src: MacroTerminal(0), Dst: MacroTerminal(1), Weight: 2}, false},
		{"FixedEndpoint", BundledNet{Src: MacroTerminal(0), Dst: FixedTerminal(0, 50), Weight: 1}, false},
		{"OutOfRange", BundledNet{Src: MacroTerminal(5), Dst: MacroTerminal(0), Weight: 1}, true},
		{"NegativeWeight", BundledNet{Src: MacroTerminal(0), Dst: MacroTerminal(1), Weight: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.net.Validate(2)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
