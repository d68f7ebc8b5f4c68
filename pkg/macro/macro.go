// Package macro defines the placeable objects handled by the floorplanning
// engine: hard macros with fixed dimensions, soft macros whose aspect ratio
// can vary among equal-area shape candidates, and the bundled nets connecting
// them.
//
// All macros expose a position (lower-left corner), current width/height and
// area. Positions are mutated in place by the annealing engine; callers that
// run several optimizations in parallel must give each run its own copies
// (see Clone).
package macro

import (
	"math"

	"github.com/matzehuels/macroplace/pkg/errors"
	"github.com/matzehuels/macroplace/pkg/geometry"
)

// areaTolerance is the relative tolerance used when checking that all shape
// candidates of a soft macro enclose the same area.
const areaTolerance = 1e-6

// Orientation is one of the eight discrete placements of a hard macro.
// The 90-degree variants swap the macro's width and height; flips keep them.
// Area is invariant under every orientation.
type Orientation int

const (
	R0 Orientation = iota
	R90
	R180
	R270
	MX   // mirrored about the x axis
	MY   // mirrored about the y axis
	MX90 // mirrored about x, then rotated 90
	MY90 // mirrored about y, then rotated 90

	// NumOrientations is the count of distinct orientations.
	NumOrientations = int(MY90) + 1
)

var orientationNames = [...]string{"R0", "R90", "R180", "R270", "MX", "MY", "MX90", "MY90"}

// String returns the canonical orientation name (e.g. "R90").
func (o Orientation) String() string {
	if o < 0 || int(o) >= len(orientationNames) {
		return "R0"
	}
	return orientationNames[o]
}

// SwapsDims reports whether the orientation exchanges width and height.
func (o Orientation) SwapsDims() bool {
	return o == R90 || o == R270 || o == MX90 || o == MY90
}

// HardMacro is a placeable block with fixed dimensions and a discrete
// orientation. Width and Height reflect the current orientation; the
// underlying footprint never changes, so Area is constant for the macro's
// lifetime.
type HardMacro struct {
	name   string
	w, h   float64 // dimensions at R0
	x, y   float64 // lower-left corner
	orient Orientation
}

// NewHardMacro creates a hard macro with the given R0 dimensions.
// Returns ErrCodeInvalidMacro if either dimension is not strictly positive.
func NewHardMacro(name string, width, height float64) (*HardMacro, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidMacro,
			"hard macro %q must have positive dimensions, got %gx%g", name, width, height)
	}
	return &HardMacro{name: name, w: width, h: height}, nil
}

// Name returns the macro's identifier.
func (m *HardMacro) Name() string { return m.name }

// X returns the x coordinate of the lower-left corner.
func (m *HardMacro) X() float64 { return m.x }

// Y returns the y coordinate of the lower-left corner.
func (m *HardMacro) Y() float64 { return m.y }

// SetLoc moves the macro's lower-left corner.
func (m *HardMacro) SetLoc(x, y float64) { m.x, m.y = x, y }

// Width returns the horizontal extent under the current orientation.
func (m *HardMacro) Width() float64 {
	if m.orient.SwapsDims() {
		return m.h
	}
	return m.w
}

// Height returns the vertical extent under the current orientation.
func (m *HardMacro) Height() float64 {
	if m.orient.SwapsDims() {
		return m.w
	}
	return m.h
}

// Area returns the macro footprint area, invariant across orientations.
func (m *HardMacro) Area() float64 { return m.w * m.h }

// Orientation returns the current orientation.
func (m *HardMacro) Orientation() Orientation { return m.orient }

// SetOrientation rotates or flips the macro in place. The lower-left corner
// is kept, so a dimension-swapping orientation changes the occupied region.
func (m *HardMacro) SetOrientation(o Orientation) { m.orient = o }

// Bounds returns the rectangle currently occupied by the macro.
func (m *HardMacro) Bounds() geometry.Rect {
	return geometry.NewRect(m.x, m.y, m.Width(), m.Height())
}

// Clone returns an independent copy of the macro.
func (m *HardMacro) Clone() *HardMacro {
	c := *m
	return &c
}

// Shape is one (width, height) candidate of a soft macro.
type Shape struct {
	W, H float64
}

// Area returns W * H.
func (s Shape) Area() float64 { return s.W * s.H }

// SoftMacro is a placeable block backed by a discrete list of equal-area
// shape candidates. The current shape is always one element of that list
// until FillDeadSpace-style post-processing overrides the dimensions
// directly via SetDims.
type SoftMacro struct {
	name     string
	area     float64
	shapes   []Shape
	shapeIdx int
	w, h     float64 // current dimensions
	x, y     float64 // lower-left corner

	preferBoundary bool
}

// NewSoftMacro creates a soft macro from its candidate shape list.
// All candidates must enclose the same strictly positive area (within a small
// relative tolerance); otherwise ErrCodeInvalidShape is returned. The macro
// starts with the first candidate selected.
func NewSoftMacro(name string, shapes []Shape) (*SoftMacro, error) {
	if len(shapes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidShape,
			"soft macro %q has an empty shape list", name)
	}
	area := shapes[0].Area()
	for i, s := range shapes {
		if s.W <= 0 || s.H <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidShape,
				"soft macro %q shape %d must have positive dimensions, got %gx%g", name, i, s.W, s.H)
		}
		if math.Abs(s.Area()-area) > area*areaTolerance {
			return nil, errors.New(errors.ErrCodeInvalidShape,
				"soft macro %q shape %d has area %g, want %g", name, i, s.Area(), area)
		}
	}
	return &SoftMacro{
		name:   name,
		area:   area,
		shapes: append([]Shape(nil), shapes...),
		w:      shapes[0].W,
		h:      shapes[0].H,
	}, nil
}

// Name returns the macro's identifier.
func (m *SoftMacro) Name() string { return m.name }

// X returns the x coordinate of the lower-left corner.
func (m *SoftMacro) X() float64 { return m.x }

// Y returns the y coordinate of the lower-left corner.
func (m *SoftMacro) Y() float64 { return m.y }

// SetLoc moves the macro's lower-left corner.
func (m *SoftMacro) SetLoc(x, y float64) { m.x, m.y = x, y }

// Width returns the current horizontal extent.
func (m *SoftMacro) Width() float64 { return m.w }

// Height returns the current vertical extent.
func (m *SoftMacro) Height() float64 { return m.h }

// Area returns the current width * height. It equals the required area for
// every candidate shape; only SetDims can change it.
func (m *SoftMacro) Area() float64 { return m.w * m.h }

// RequiredArea returns the area shared by all candidate shapes.
func (m *SoftMacro) RequiredArea() float64 { return m.area }

// NumShapes returns the number of candidate shapes.
func (m *SoftMacro) NumShapes() int { return len(m.shapes) }

// Shape returns the candidate at index i.
func (m *SoftMacro) Shape(i int) Shape { return m.shapes[i] }

// ShapeIndex returns the index of the currently selected candidate.
func (m *SoftMacro) ShapeIndex() int { return m.shapeIdx }

// SetShape selects the candidate at index i, updating the current dimensions.
// Out-of-range indices are ignored.
func (m *SoftMacro) SetShape(i int) {
	if i < 0 || i >= len(m.shapes) {
		return
	}
	m.shapeIdx = i
	m.w = m.shapes[i].W
	m.h = m.shapes[i].H
}

// SetDims overrides the current dimensions directly. This is intended for
// dead-space filling and cluster alignment after annealing, where the macro
// may grow past its candidate shapes.
func (m *SoftMacro) SetDims(w, h float64) { m.w, m.h = w, h }

// PreferBoundary reports whether the macro should be pulled toward the
// nearest outline edge by the boundary penalty.
func (m *SoftMacro) PreferBoundary() bool { return m.preferBoundary }

// SetPreferBoundary marks the macro as boundary-preferring.
func (m *SoftMacro) SetPreferBoundary(v bool) { m.preferBoundary = v }

// Bounds returns the rectangle currently occupied by the macro.
func (m *SoftMacro) Bounds() geometry.Rect {
	return geometry.NewRect(m.x, m.y, m.w, m.h)
}

// Clone returns an independent copy of the macro. The shape list is shared:
// it is immutable after construction.
func (m *SoftMacro) Clone() *SoftMacro {
	c := *m
	return &c
}
