// Package geometry provides the axis-aligned rectangle primitives used by the
// floorplanning engine.
//
// All coordinates are in the same (caller-defined) unit, typically microns.
// Rectangles are half-open in spirit: two rectangles that merely share an edge
// have zero overlap area and are not considered intersecting.
package geometry

import "math"

// Rect is an axis-aligned rectangle described by its lower-left corner
// (LX, LY) and upper-right corner (UX, UY).
//
// The zero value is an empty rectangle at the origin. A Rect with UX < LX or
// UY < LY is treated as empty by Width, Height and Area.
type Rect struct {
	LX, LY, UX, UY float64
}

// NewRect creates a rectangle from its lower-left corner and dimensions.
func NewRect(lx, ly, width, height float64) Rect {
	return Rect{LX: lx, LY: ly, UX: lx + width, UY: ly + height}
}

// Width returns the horizontal extent, or 0 for an empty rectangle.
func (r Rect) Width() float64 { return math.Max(0, r.UX-r.LX) }

// Height returns the vertical extent, or 0 for an empty rectangle.
func (r Rect) Height() float64 { return math.Max(0, r.UY-r.LY) }

// Area returns Width * Height.
func (r Rect) Area() float64 { return r.Width() * r.Height() }

// CenterX returns the x coordinate of the rectangle's center.
func (r Rect) CenterX() float64 { return (r.LX + r.UX) / 2 }

// CenterY returns the y coordinate of the rectangle's center.
func (r Rect) CenterY() float64 { return (r.LY + r.UY) / 2 }

// Valid reports whether the rectangle has strictly positive width and height.
func (r Rect) Valid() bool { return r.UX > r.LX && r.UY > r.LY }

// Intersects reports whether r and o overlap with positive area.
// Rectangles that only touch along an edge or corner do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.LX < o.UX && o.LX < r.UX && r.LY < o.UY && o.LY < r.UY
}

// Overlap returns the area of the intersection of r and o, or 0 if they
// do not intersect.
func (r Rect) Overlap(o Rect) float64 {
	w := math.Min(r.UX, o.UX) - math.Max(r.LX, o.LX)
	h := math.Min(r.UY, o.UY) - math.Max(r.LY, o.LY)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Contains reports whether o lies entirely within r (boundary included).
func (r Rect) Contains(o Rect) bool {
	return o.LX >= r.LX && o.LY >= r.LY && o.UX <= r.UX && o.UY <= r.UY
}

// Union returns the bounding box of r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		LX: math.Min(r.LX, o.LX),
		LY: math.Min(r.LY, o.LY),
		UX: math.Max(r.UX, o.UX),
		UY: math.Max(r.UY, o.UY),
	}
}

// Distance returns the Manhattan distance between r and o: the sum of the
// horizontal and vertical gaps between the two rectangles. The distance is 0
// when the rectangles overlap or touch.
func (r Rect) Distance(o Rect) float64 {
	return IntervalDistance(r.LX, r.UX, o.LX, o.UX) + IntervalDistance(r.LY, r.UY, o.LY, o.UY)
}

// IntervalDistance returns the gap between the 1-D intervals [lo1, hi1] and
// [lo2, hi2], or 0 if they overlap or touch.
func IntervalDistance(lo1, hi1, lo2, hi2 float64) float64 {
	if hi1 < lo2 {
		return lo2 - hi1
	}
	if hi2 < lo1 {
		return lo1 - hi2
	}
	return 0
}
