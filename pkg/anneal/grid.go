package anneal

import (
	"sort"

	"github.com/matzehuels/macroplace/pkg/geometry"
)

// segmentLoc returns the index i of the half-open segment [lines[i],
// lines[i+1]) containing v. Values on a grid line map to the segment
// starting there.
func segmentLoc(lines []float64, v float64) int {
	i := sort.SearchFloat64s(lines, v)
	if i < len(lines) && lines[i] == v {
		return i
	}
	return i - 1
}

// gridLines collects the outline edges and every macro and blockage edge
// clamped to the outline into a sorted, deduplicated coordinate list.
func (s *SoftCore) gridLines() (xs, ys []float64) {
	xs = []float64{0, s.outlineW}
	ys = []float64{0, s.outlineH}
	edges := func(b geometry.Rect) {
		for _, x := range []float64{b.LX, b.UX} {
			if x > 0 && x < s.outlineW {
				xs = append(xs, x)
			}
		}
		for _, y := range []float64{b.LY, b.UY} {
			if y > 0 && y < s.outlineH {
				ys = append(ys, y)
			}
		}
	}
	for i := range s.macros {
		edges(s.bounds(i))
	}
	for _, b := range s.blockages {
		edges(b)
	}
	return dedupe(xs), dedupe(ys)
}

func dedupe(v []float64) []float64 {
	sort.Float64s(v)
	out := v[:1]
	for _, x := range v[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}

// Occupancy cell sentinels. Non-negative values are macro indices.
const (
	cellEmpty   = -1
	cellBlocked = -2
)

// occupancy rasterizes the layout onto the grid. Each cell holds the index
// of the first macro covering it, cellBlocked under a blockage, or cellEmpty.
// Grid lines include every macro and blockage edge, so a cell is never
// partially covered.
func (s *SoftCore) occupancy(xs, ys []float64) [][]int {
	nx, ny := len(xs)-1, len(ys)-1
	occ := make([][]int, ny)
	for r := range occ {
		occ[r] = make([]int, nx)
		for c := range occ[r] {
			occ[r][c] = cellEmpty
		}
	}
	outline := s.Outline()
	mark := func(b geometry.Rect, val int) {
		clamped := geometry.Rect{
			LX: clamp(b.LX, 0, outline.UX), LY: clamp(b.LY, 0, outline.UY),
			UX: clamp(b.UX, 0, outline.UX), UY: clamp(b.UY, 0, outline.UY),
		}
		if clamped.Width() <= 0 || clamped.Height() <= 0 {
			return
		}
		c0, c1 := segmentLoc(xs, clamped.LX), segmentLoc(xs, clamped.UX)
		r0, r1 := segmentLoc(ys, clamped.LY), segmentLoc(ys, clamped.UY)
		for r := r0; r < r1; r++ {
			for c := c0; c < c1; c++ {
				if occ[r][c] == cellEmpty {
					occ[r][c] = val
				}
			}
		}
	}
	for i := range s.macros {
		mark(s.bounds(i), i)
	}
	// Keep-out regions block dead-space fill and break notch runs.
	for _, b := range s.blockages {
		mark(b, cellBlocked)
	}
	return occ
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// calNotchPenalty sums the area of empty cells whose contiguous empty span
// is narrower than the horizontal threshold or shorter than the vertical
// one. Such slivers are dead space no downstream block can use.
func (s *SoftCore) calNotchPenalty() {
	s.notchPenalty = 0
	if s.weights.Notch == 0 || (s.notchHTh <= 0 && s.notchVTh <= 0) {
		return
	}
	xs, ys := s.gridLines()
	occ := s.occupancy(xs, ys)
	nx, ny := len(xs)-1, len(ys)-1

	// Width of the contiguous empty run each cell belongs to, per row.
	runW := make([][]float64, ny)
	for r := 0; r < ny; r++ {
		runW[r] = make([]float64, nx)
		for c := 0; c < nx; {
			if occ[r][c] != cellEmpty {
				c++
				continue
			}
			c0 := c
			for c < nx && occ[r][c] == cellEmpty {
				c++
			}
			w := xs[c] - xs[c0]
			for k := c0; k < c; k++ {
				runW[r][k] = w
			}
		}
	}
	// Height of the contiguous empty run each cell belongs to, per column.
	runH := make([][]float64, ny)
	for r := range runH {
		runH[r] = make([]float64, nx)
	}
	for c := 0; c < nx; c++ {
		for r := 0; r < ny; {
			if occ[r][c] != cellEmpty {
				r++
				continue
			}
			r0 := r
			for r < ny && occ[r][c] == cellEmpty {
				r++
			}
			h := ys[r] - ys[r0]
			for k := r0; k < r; k++ {
				runH[k][c] = h
			}
		}
	}

	total := 0.0
	for r := 0; r < ny; r++ {
		for c := 0; c < nx; c++ {
			if occ[r][c] != cellEmpty {
				continue
			}
			if runW[r][c] < s.notchHTh || runH[r][c] < s.notchVTh {
				total += (xs[c+1] - xs[c]) * (ys[r+1] - ys[r])
			}
		}
	}
	s.notchPenalty = total
}

// FillDeadSpace grows each soft macro into adjacent empty grid cells so the
// final layout wastes less of the outline. Macros are expanded in index
// order, one full side at a time, and their dimensions are rewritten in
// place. Call after Run.
func (s *SoftCore) FillDeadSpace() {
	xs, ys := s.gridLines()
	occ := s.occupancy(xs, ys)
	nx, ny := len(xs)-1, len(ys)-1

	for i, m := range s.macros {
		c0, c1, r0, r1 := -1, -1, -1, -1
		for r := 0; r < ny; r++ {
			for c := 0; c < nx; c++ {
				if occ[r][c] != i {
					continue
				}
				if c0 == -1 || c < c0 {
					c0 = c
				}
				if c > c1 {
					c1 = c
				}
				if r0 == -1 || r < r0 {
					r0 = r
				}
				if r > r1 {
					r1 = r
				}
			}
		}
		if c0 == -1 {
			continue
		}
		claim := func(rs, re, cs, ce int) bool {
			for r := rs; r <= re; r++ {
				for c := cs; c <= ce; c++ {
					if occ[r][c] != cellEmpty {
						return false
					}
				}
			}
			for r := rs; r <= re; r++ {
				for c := cs; c <= ce; c++ {
					occ[r][c] = i
				}
			}
			return true
		}
		for c1+1 < nx && claim(r0, r1, c1+1, c1+1) {
			c1++
		}
		for c0 > 0 && claim(r0, r1, c0-1, c0-1) {
			c0--
		}
		for r1+1 < ny && claim(r1+1, r1+1, c0, c1) {
			r1++
		}
		for r0 > 0 && claim(r0-1, r0-1, c0, c1) {
			r0--
		}
		m.SetLoc(xs[c0], ys[r0])
		m.SetDims(xs[c1+1]-xs[c0], ys[r1+1]-ys[r0])
	}
}

// AlignMacroClusters snaps macros that ended up within the notch thresholds
// of the outline boundary flush against it, then snaps near-aligned neighbor
// edges together. Pure translation: dimensions are untouched. Call after
// Run.
func (s *SoftCore) AlignMacroClusters() {
	hTh, vTh := s.notchHTh/2, s.notchVTh/2
	for i, m := range s.macros {
		b := s.bounds(i)
		x, y := m.X(), m.Y()
		if b.LX > 0 && b.LX < hTh {
			x = 0
		} else if d := s.outlineW - b.UX; d > 0 && d < hTh {
			x += d
		}
		if b.LY > 0 && b.LY < vTh {
			y = 0
		} else if d := s.outlineH - b.UY; d > 0 && d < vTh {
			y += d
		}
		m.SetLoc(x, y)
	}

	for i, m := range s.macros {
		b := s.bounds(i)
		for j := range s.macros {
			if j == i {
				continue
			}
			nb := s.bounds(j)
			x, y := m.X(), m.Y()
			if d := nb.LX - b.LX; d != 0 && absf(d) < hTh {
				x += d
			} else if d := nb.UX - b.UX; d != 0 && absf(d) < hTh {
				x += d
			}
			if d := nb.LY - b.LY; d != 0 && absf(d) < vTh {
				y += d
			} else if d := nb.UY - b.UY; d != 0 && absf(d) < vTh {
				y += d
			}
			if x != m.X() || y != m.Y() {
				m.SetLoc(x, y)
				break
			}
		}
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
