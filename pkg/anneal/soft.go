package anneal

import (
	"math"

	"github.com/matzehuels/macroplace/pkg/errors"
	"github.com/matzehuels/macroplace/pkg/geometry"
	"github.com/matzehuels/macroplace/pkg/macro"
)

// SoftCore anneals soft macros: blocks with a fixed area that may take any
// of their registered shapes. On top of the shared terms it scores boundary
// preference, blockage overlap and notch area, and its action set includes
// resizing.
type SoftCore struct {
	*core[*macro.SoftMacro]

	blockages []geometry.Rect
	notchHTh  float64
	notchVTh  float64

	boundaryPenalty, preBoundaryPenalty, normBoundaryPenalty float64
	blockagePenalty, preBlockagePenalty, normBlockagePenalty float64
	notchPenalty, preNotchPenalty, normNotchPenalty          float64

	preShape []int
}

var softActions = []actionKind{
	actionPosSwap, actionNegSwap, actionDoubleSwap, actionExchange, actionResize,
}

// NewSoftCore builds a soft-macro engine over clones of the given macros.
// The caller's macros are never mutated; read results back via Macros.
func NewSoftCore(cfg Config, macros []*macro.SoftMacro) (*SoftCore, error) {
	owned := make([]*macro.SoftMacro, len(macros))
	for i, m := range macros {
		if m == nil {
			return nil, errors.New(errors.ErrCodeInvalidMacro, "nil soft macro")
		}
		owned[i] = m.Clone()
	}
	base, err := newCore(cfg, owned, softActions)
	if err != nil {
		return nil, err
	}
	s := &SoftCore{
		core:                base,
		notchHTh:            cfg.NotchHTh,
		notchVTh:            cfg.NotchVTh,
		normBoundaryPenalty: 1,
		normBlockagePenalty: 1,
		normNotchPenalty:    1,
		preShape:            make([]int, len(owned)),
	}
	return s, nil
}

// SetBlockages registers keep-out rectangles scored by the blockage term.
// Call before Initialize so the normalization walk sees them.
func (s *SoftCore) SetBlockages(blockages []geometry.Rect) {
	s.blockages = append([]geometry.Rect(nil), blockages...)
}

// Macros returns the engine's macros. After Run they carry the best layout.
func (s *SoftCore) Macros() []*macro.SoftMacro { return s.macros }

// Initialize packs the identity sequence pair, derives the normalization
// constants and the initial temperature from a random sampling walk, and
// restores the initial layout.
func (s *SoftCore) Initialize() error { return s.initialize(s) }

// Run executes the annealing schedule and leaves the macros on the best
// layout seen.
func (s *SoftCore) Run() error {
	if !s.initialized {
		return errors.New(errors.ErrCodeInvalidInput, "core not initialized")
	}
	s.anneal(s)
	return nil
}

// Cost returns the weighted normalized cost of the current layout.
func (s *SoftCore) Cost() float64 { return s.normCost() }

// Penalties returns the per-term breakdown of the current layout.
func (s *SoftCore) Penalties() Breakdown {
	b := s.baseBreakdown()
	b.Boundary = Term{Raw: s.boundaryPenalty, Norm: s.normBoundaryPenalty, Weight: s.weights.Boundary}
	b.MacroBlockage = Term{Raw: s.blockagePenalty, Norm: s.normBlockagePenalty, Weight: s.weights.MacroBlockage}
	b.Notch = Term{Raw: s.notchPenalty, Norm: s.normNotchPenalty, Weight: s.weights.Notch}
	b.Total = s.normCost()
	return b
}

// ----------------------------------------------------------------------------
// worker implementation
// ----------------------------------------------------------------------------

func (s *SoftCore) perturb() {
	s.saveState()
	for i, m := range s.macros {
		s.preShape[i] = m.ShapeIndex()
	}
	s.preBoundaryPenalty = s.boundaryPenalty
	s.preBlockagePenalty = s.blockagePenalty
	s.preNotchPenalty = s.notchPenalty

	switch s.pickAction() {
	case actionPosSwap:
		s.posSwap()
	case actionNegSwap:
		s.negSwap()
	case actionDoubleSwap:
		s.doubleSwap()
	case actionExchange:
		s.exchange()
	case actionResize:
		s.resize()
	}
	s.pack()
	s.calPenalty()
}

func (s *SoftCore) restore() {
	for i, m := range s.macros {
		m.SetShape(s.preShape[i])
	}
	s.restoreState()
	s.boundaryPenalty = s.preBoundaryPenalty
	s.blockagePenalty = s.preBlockagePenalty
	s.notchPenalty = s.preNotchPenalty
}

// resize moves a random multi-shape macro to another of its shapes. When the
// packing overflows the outline the candidate that most relieves the
// dominant overflow direction is chosen; otherwise the shape is drawn
// uniformly from the alternatives.
func (s *SoftCore) resize() {
	candidates := make([]int, 0, len(s.macros))
	for i, m := range s.macros {
		if m.NumShapes() > 1 {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return
	}
	idx := candidates[s.rng.Intn(len(candidates))]
	m := s.macros[idx]

	overW := s.width - s.outlineW
	overH := s.height - s.outlineH
	if overW > 0 || overH > 0 {
		// Shrink along the dominant overflow axis.
		best := m.ShapeIndex()
		for i := 0; i < m.NumShapes(); i++ {
			sh, cur := m.Shape(i), m.Shape(best)
			if overW >= overH && sh.W < cur.W {
				best = i
			} else if overH > overW && sh.H < cur.H {
				best = i
			}
		}
		if best != m.ShapeIndex() {
			m.SetShape(best)
			return
		}
	}
	next := s.rng.Intn(m.NumShapes() - 1)
	if next >= m.ShapeIndex() {
		next++
	}
	m.SetShape(next)
}

func (s *SoftCore) calPenalty() {
	s.calBasePenalty()
	s.calBoundaryPenalty()
	s.calBlockagePenalty()
	s.calNotchPenalty()
}

// calBoundaryPenalty sums, for every boundary-preferring macro, the smallest
// Manhattan distance from the macro to one of the four outline edges.
func (s *SoftCore) calBoundaryPenalty() {
	total := 0.0
	for i, m := range s.macros {
		if !m.PreferBoundary() {
			continue
		}
		b := s.bounds(i)
		d := math.Min(
			math.Min(math.Max(b.LX, 0), math.Max(s.outlineW-b.UX, 0)),
			math.Min(math.Max(b.LY, 0), math.Max(s.outlineH-b.UY, 0)),
		)
		total += d
	}
	s.boundaryPenalty = total
}

// calBlockagePenalty sums the overlap area between every macro and every
// keep-out rectangle.
func (s *SoftCore) calBlockagePenalty() {
	total := 0.0
	for i := range s.macros {
		b := s.bounds(i)
		for _, blk := range s.blockages {
			total += b.Overlap(blk)
		}
	}
	s.blockagePenalty = total
}

func (s *SoftCore) rawPenalties() []float64 {
	return append(s.baseRaw(), s.boundaryPenalty, s.blockagePenalty, s.notchPenalty)
}

func (s *SoftCore) weightVec() []float64 {
	return append(s.baseWeights(), s.weights.Boundary, s.weights.MacroBlockage, s.weights.Notch)
}

func (s *SoftCore) setNorms(norms []float64) {
	s.setBaseNorms(norms[:5])
	s.normBoundaryPenalty = norms[5]
	s.normBlockagePenalty = norms[6]
	s.normNotchPenalty = norms[7]
}

func (s *SoftCore) normCost() float64 {
	return s.baseNormCost() +
		s.weights.Boundary*s.boundaryPenalty/s.normBoundaryPenalty +
		s.weights.MacroBlockage*s.blockagePenalty/s.normBlockagePenalty +
		s.weights.Notch*s.notchPenalty/s.normNotchPenalty
}

func (s *SoftCore) extra(i int) int { return s.macros[i].ShapeIndex() }

func (s *SoftCore) setExtra(i, v int) { s.macros[i].SetShape(v) }
