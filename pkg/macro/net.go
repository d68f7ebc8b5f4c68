package macro

import "github.com/matzehuels/macroplace/pkg/errors"

// Terminal is one endpoint of a bundled net: either a macro (by index into
// the engine's macro list) or a fixed point such as a bundled IO pin on the
// die boundary.
type Terminal struct {
	// Macro is the index of the endpoint macro, or -1 for a fixed point.
	Macro int
	// X, Y locate the endpoint when Macro < 0.
	X, Y float64
}

// MacroTerminal returns a terminal referencing the macro at index i.
func MacroTerminal(i int) Terminal { return Terminal{Macro: i} }

// FixedTerminal returns a terminal pinned at (x, y), typically a bundled IO
// location on the outline boundary.
func FixedTerminal(x, y float64) Terminal { return Terminal{Macro: -1, X: x, Y: y} }

// IsFixed reports whether the terminal is a fixed point rather than a macro.
func (t Terminal) IsFixed() bool { return t.Macro < 0 }

// BundledNet represents the aggregated connections between two endpoints.
// Weight is the number of individual connections bundled into the net; the
// wirelength penalty scales with it.
type BundledNet struct {
	Src, Dst Terminal
	Weight   float64
}

// Validate checks that both terminals reference macros within [0, numMacros)
// or are fixed points, and that the weight is non-negative.
func (n BundledNet) Validate(numMacros int) error {
	for _, t := range []Terminal{n.Src, n.Dst} {
		if !t.IsFixed() && t.Macro >= numMacros {
			return errors.New(errors.ErrCodeInvalidNet,
				"net references macro index %d, have %d macros", t.Macro, numMacros)
		}
	}
	if n.Weight < 0 {
		return errors.New(errors.ErrCodeInvalidNet, "net weight must be non-negative, got %g", n.Weight)
	}
	return nil
}
