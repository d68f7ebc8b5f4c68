package anneal

import (
	"github.com/matzehuels/macroplace/pkg/errors"
	"github.com/matzehuels/macroplace/pkg/macro"
)

// HardCore anneals hard macros: fixed-dimension blocks whose only degree of
// freedom besides placement is orientation. Its action set swaps resizing
// for flips.
type HardCore struct {
	*core[*macro.HardMacro]

	preOrient []macro.Orientation
}

var hardActions = []actionKind{
	actionPosSwap, actionNegSwap, actionDoubleSwap, actionExchange, actionFlip,
}

// NewHardCore builds a hard-macro engine over clones of the given macros.
func NewHardCore(cfg Config, macros []*macro.HardMacro) (*HardCore, error) {
	owned := make([]*macro.HardMacro, len(macros))
	for i, m := range macros {
		if m == nil {
			return nil, errors.New(errors.ErrCodeInvalidMacro, "nil hard macro")
		}
		owned[i] = m.Clone()
	}
	base, err := newCore(cfg, owned, hardActions)
	if err != nil {
		return nil, err
	}
	return &HardCore{
		core:      base,
		preOrient: make([]macro.Orientation, len(owned)),
	}, nil
}

// Macros returns the engine's macros. After Run they carry the best layout.
func (h *HardCore) Macros() []*macro.HardMacro { return h.macros }

// Initialize packs the identity sequence pair and derives the normalization
// constants and initial temperature from a random sampling walk.
func (h *HardCore) Initialize() error { return h.initialize(h) }

// Run executes the annealing schedule and leaves the macros on the best
// layout seen.
func (h *HardCore) Run() error {
	if !h.initialized {
		return errors.New(errors.ErrCodeInvalidInput, "core not initialized")
	}
	h.anneal(h)
	return nil
}

// Cost returns the weighted normalized cost of the current layout.
func (h *HardCore) Cost() float64 { return h.normCost() }

// Penalties returns the per-term breakdown of the current layout.
func (h *HardCore) Penalties() Breakdown {
	b := h.baseBreakdown()
	b.Total = h.normCost()
	return b
}

// ----------------------------------------------------------------------------
// worker implementation
// ----------------------------------------------------------------------------

func (h *HardCore) perturb() {
	h.saveState()
	for i, m := range h.macros {
		h.preOrient[i] = m.Orientation()
	}

	switch h.pickAction() {
	case actionPosSwap:
		h.posSwap()
	case actionNegSwap:
		h.negSwap()
	case actionDoubleSwap:
		h.doubleSwap()
	case actionExchange:
		h.exchange()
	case actionFlip:
		h.flip()
	}
	h.pack()
	h.calPenalty()
}

func (h *HardCore) restore() {
	for i, m := range h.macros {
		m.SetOrientation(h.preOrient[i])
	}
	h.restoreState()
}

// flip rotates or mirrors a random macro into a different orientation.
func (h *HardCore) flip() {
	m := h.macros[h.rng.Intn(len(h.macros))]
	next := macro.Orientation(h.rng.Intn(macro.NumOrientations - 1))
	if next >= m.Orientation() {
		next++
	}
	m.SetOrientation(next)
}

func (h *HardCore) calPenalty() { h.calBasePenalty() }

func (h *HardCore) rawPenalties() []float64 { return h.baseRaw() }

func (h *HardCore) weightVec() []float64 { return h.baseWeights() }

func (h *HardCore) setNorms(norms []float64) { h.setBaseNorms(norms) }

func (h *HardCore) normCost() float64 { return h.baseNormCost() }

func (h *HardCore) extra(i int) int { return int(h.macros[i].Orientation()) }

func (h *HardCore) setExtra(i, v int) { h.macros[i].SetOrientation(macro.Orientation(v)) }
