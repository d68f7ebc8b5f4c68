package anneal

import (
	"math"
	"math/rand"

	"github.com/matzehuels/macroplace/pkg/geometry"
	"github.com/matzehuels/macroplace/pkg/macro"
)

// minTemperature is the floor applied to the cooling schedule so the
// acceptance probability never divides by zero.
const minTemperature = 1e-12

// worker is the per-variant surface the shared annealing loop drives.
// SoftCore and HardCore implement it; the base engine never inspects the
// concrete macro type beyond the Placeable capability set.
type worker interface {
	perturb()
	restore()
	calPenalty()

	// rawPenalties, weightVec and setNorms use a fixed per-variant term
	// order; the three views must stay aligned.
	rawPenalties() []float64
	weightVec() []float64
	setNorms([]float64)
	normCost() float64

	// extra reads and writes the variant state of macro i (shape index or
	// orientation) for best-layout snapshots.
	extra(i int) int
	setExtra(i, v int)
}

// bestState is the lowest-cost layout seen so far.
type bestState struct {
	xs, ys []float64
	extras []int
	cost   float64
	valid  bool
}

// core is the generic annealing engine shared by SoftCore and HardCore.
// It owns the sequence-pair representation, the shared penalty terms, the
// cooling schedule and the accept/reject loop.
type core[M Placeable[M]] struct {
	outlineW, outlineH float64

	macros []M
	nets   []macro.BundledNet
	fences map[int]geometry.Rect
	guides map[int]geometry.Rect

	weights Weights
	sched   Schedule
	actions actionTable
	rng     *rand.Rand

	posSeq, negSeq       []int
	prePosSeq, preNegSeq []int
	negIdx               []int
	tree                 *maxTree

	// layout bounding box from the last pack
	width, height       float64
	preWidth, preHeight float64
	preX, preY          []float64

	// shared penalty terms: raw, pre-move snapshot, normalization constant
	areaPenalty, preAreaPenalty, normAreaPenalty                   float64
	outlinePenalty, preOutlinePenalty, normOutlinePenalty          float64
	wirelengthPenalty, preWirelengthPenalty, normWirelengthPenalty float64
	guidancePenalty, preGuidancePenalty, normGuidancePenalty       float64
	fencePenalty, preFencePenalty, normFencePenalty                float64

	initT       float64
	lastT       float64
	initialized bool

	best bestState

	// progress, if set, is invoked after every temperature step.
	progress func(step int, temperature, cost float64)
}

// newCore validates cfg and builds the shared engine state. The macro slice
// is owned by the caller-facing constructor, which clones before handing it
// over.
func newCore[M Placeable[M]](cfg Config, macros []M, kinds []actionKind) (*core[M], error) {
	if err := cfg.Validate(len(macros)); err != nil {
		return nil, err
	}
	table, err := buildActionTable(cfg.Probs, kinds)
	if err != nil {
		return nil, err
	}
	n := len(macros)
	c := &core[M]{
		outlineW: cfg.OutlineWidth,
		outlineH: cfg.OutlineHeight,
		macros:   macros,
		nets:     cfg.Nets,
		fences:   cfg.Fences,
		guides:   cfg.Guides,
		weights:  cfg.Weights,
		sched:    cfg.Schedule,
		actions:  table,
		rng:      rand.New(rand.NewSource(int64(cfg.Schedule.Seed))),

		posSeq:    identity(n),
		negSeq:    identity(n),
		prePosSeq: make([]int, n),
		preNegSeq: make([]int, n),
		negIdx:    make([]int, n),
		tree:      newMaxTree(n),
		preX:      make([]float64, n),
		preY:      make([]float64, n),

		normAreaPenalty:       1,
		normOutlinePenalty:    1,
		normWirelengthPenalty: 1,
		normGuidancePenalty:   1,
		normFencePenalty:      1,

		lastT: math.Inf(1),
	}
	return c, nil
}

func identity(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}

// NumMacros returns the number of placeable macros.
func (c *core[M]) NumMacros() int { return len(c.macros) }

// Outline returns the outline rectangle anchored at the origin.
func (c *core[M]) Outline() geometry.Rect {
	return geometry.NewRect(0, 0, c.outlineW, c.outlineH)
}

// SetProgress registers a callback invoked once per temperature step with
// the step index (1-based), the step's temperature and the current cost.
func (c *core[M]) SetProgress(fn func(step int, temperature, cost float64)) {
	c.progress = fn
}

// saveState snapshots everything a rejected move must roll back: both
// sequences, every macro position, the bounding box and the shared penalty
// terms. Variant cores snapshot their own extras on top.
func (c *core[M]) saveState() {
	copy(c.prePosSeq, c.posSeq)
	copy(c.preNegSeq, c.negSeq)
	for i, m := range c.macros {
		c.preX[i], c.preY[i] = m.X(), m.Y()
	}
	c.preWidth, c.preHeight = c.width, c.height
	c.preAreaPenalty = c.areaPenalty
	c.preOutlinePenalty = c.outlinePenalty
	c.preWirelengthPenalty = c.wirelengthPenalty
	c.preGuidancePenalty = c.guidancePenalty
	c.preFencePenalty = c.fencePenalty
}

// restoreState rolls the shared state back to the last saveState snapshot.
// No repacking happens: positions and penalties are restored exactly.
func (c *core[M]) restoreState() {
	copy(c.posSeq, c.prePosSeq)
	copy(c.negSeq, c.preNegSeq)
	for i, m := range c.macros {
		m.SetLoc(c.preX[i], c.preY[i])
	}
	c.width, c.height = c.preWidth, c.preHeight
	c.areaPenalty = c.preAreaPenalty
	c.outlinePenalty = c.preOutlinePenalty
	c.wirelengthPenalty = c.preWirelengthPenalty
	c.guidancePenalty = c.preGuidancePenalty
	c.fencePenalty = c.preFencePenalty
}

// ----------------------------------------------------------------------------
// Shared penalty terms
// ----------------------------------------------------------------------------

func (c *core[M]) bounds(i int) geometry.Rect {
	m := c.macros[i]
	return geometry.NewRect(m.X(), m.Y(), m.Width(), m.Height())
}

// calAreaPenalty measures the occupied bounding box against the outline.
func (c *core[M]) calAreaPenalty() {
	c.areaPenalty = (c.width * c.height) / (c.outlineW * c.outlineH)
}

// calOutlinePenalty measures the area by which the packing bounding box
// exceeds the outline. Zero when the layout fits.
func (c *core[M]) calOutlinePenalty() {
	w := math.Max(c.width, c.outlineW)
	h := math.Max(c.height, c.outlineH)
	c.outlinePenalty = w*h - c.outlineW*c.outlineH
}

func (c *core[M]) terminalCenter(t macro.Terminal) (float64, float64) {
	if t.IsFixed() {
		return t.X, t.Y
	}
	b := c.bounds(t.Macro)
	return b.CenterX(), b.CenterY()
}

// calWirelengthPenalty sums the weighted Manhattan distance between the
// centers of every net's endpoints.
func (c *core[M]) calWirelengthPenalty() {
	total := 0.0
	for _, n := range c.nets {
		sx, sy := c.terminalCenter(n.Src)
		dx, dy := c.terminalCenter(n.Dst)
		total += n.Weight * (math.Abs(sx-dx) + math.Abs(sy-dy))
	}
	c.wirelengthPenalty = total
}

// calGuidancePenalty sums, for every guided macro, the Manhattan distance of
// its center from the guidance rectangle. Zero when the center is inside.
func (c *core[M]) calGuidancePenalty() {
	total := 0.0
	for i, g := range c.guides {
		b := c.bounds(i)
		cx, cy := b.CenterX(), b.CenterY()
		total += geometry.IntervalDistance(cx, cx, g.LX, g.UX) +
			geometry.IntervalDistance(cy, cy, g.LY, g.UY)
	}
	c.guidancePenalty = total
}

// calFencePenalty sums, for every fenced macro, the portion of its area that
// lies outside the fence rectangle.
func (c *core[M]) calFencePenalty() {
	total := 0.0
	for i, f := range c.fences {
		b := c.bounds(i)
		deficit := b.Area() - b.Overlap(f)
		if deficit > 0 {
			total += deficit
		}
	}
	c.fencePenalty = total
}

// calBasePenalty recomputes the five shared raw terms from the current
// layout.
func (c *core[M]) calBasePenalty() {
	c.calAreaPenalty()
	c.calOutlinePenalty()
	c.calWirelengthPenalty()
	c.calGuidancePenalty()
	c.calFencePenalty()
}

func (c *core[M]) baseRaw() []float64 {
	return []float64{c.areaPenalty, c.outlinePenalty, c.wirelengthPenalty, c.guidancePenalty, c.fencePenalty}
}

func (c *core[M]) baseWeights() []float64 {
	return []float64{c.weights.Area, c.weights.Outline, c.weights.Wirelength, c.weights.Guidance, c.weights.Fence}
}

func (c *core[M]) setBaseNorms(norms []float64) {
	c.normAreaPenalty = norms[0]
	c.normOutlinePenalty = norms[1]
	c.normWirelengthPenalty = norms[2]
	c.normGuidancePenalty = norms[3]
	c.normFencePenalty = norms[4]
}

func (c *core[M]) baseNormCost() float64 {
	return c.weights.Area*c.areaPenalty/c.normAreaPenalty +
		c.weights.Outline*c.outlinePenalty/c.normOutlinePenalty +
		c.weights.Wirelength*c.wirelengthPenalty/c.normWirelengthPenalty +
		c.weights.Guidance*c.guidancePenalty/c.normGuidancePenalty +
		c.weights.Fence*c.fencePenalty/c.normFencePenalty
}

func (c *core[M]) baseBreakdown() Breakdown {
	return Breakdown{
		Area:       Term{Raw: c.areaPenalty, Norm: c.normAreaPenalty, Weight: c.weights.Area},
		Outline:    Term{Raw: c.outlinePenalty, Norm: c.normOutlinePenalty, Weight: c.weights.Outline},
		Wirelength: Term{Raw: c.wirelengthPenalty, Norm: c.normWirelengthPenalty, Weight: c.weights.Wirelength},
		Guidance:   Term{Raw: c.guidancePenalty, Norm: c.normGuidancePenalty, Weight: c.weights.Guidance},
		Fence:      Term{Raw: c.fencePenalty, Norm: c.normFencePenalty, Weight: c.weights.Fence},
	}
}

// ----------------------------------------------------------------------------
// Cooling schedule and annealing loop
// ----------------------------------------------------------------------------

// temperature evaluates the Fast-SA schedule at the given 1-based step:
// T/(C*step) for the first K steps and T/step afterwards, clamped to be
// non-increasing and floored at minTemperature. The clamp keeps the schedule
// monotone across the K boundary (see DESIGN notes).
func (c *core[M]) temperature(step int) float64 {
	var t float64
	if step <= c.sched.K {
		t = c.initT / (float64(c.sched.C) * float64(step))
	} else {
		t = c.initT / float64(step)
	}
	if t > c.lastT {
		t = c.lastT
	}
	if t < minTemperature {
		t = minTemperature
	}
	c.lastT = t
	return t
}

// initialize builds the initial packing, derives the normalization constant
// of every penalty term from a sampling walk of NumPerturbPerStep random
// moves, sets the initial temperature from the walk's average cost delta and
// InitProb, and restores the initial layout.
func (c *core[M]) initialize(w worker) error {
	n := len(c.macros)
	copy(c.posSeq, identity(n))
	copy(c.negSeq, identity(n))
	c.pack()
	w.calPenalty()

	// Remember the pre-sampling state so the walk leaves no trace.
	initExtras := make([]int, n)
	for i := range c.macros {
		initExtras[i] = w.extra(i)
	}

	numTerms := len(w.rawPenalties())
	sums := make([]float64, numTerms)
	samples := make([][]float64, 0, c.sched.NumPerturbPerStep)
	for i := 0; i < c.sched.NumPerturbPerStep; i++ {
		w.perturb()
		raw := append([]float64(nil), w.rawPenalties()...)
		samples = append(samples, raw)
		for j, v := range raw {
			sums[j] += v
		}
	}

	// First-observed scale: the average raw value over the walk, defaulting
	// to 1 when a term never left zero.
	norms := make([]float64, numTerms)
	for j, s := range sums {
		norms[j] = s / float64(len(samples))
		if norms[j] == 0 {
			norms[j] = 1
		}
	}
	w.setNorms(norms)

	weights := w.weightVec()
	cost := func(raw []float64) float64 {
		total := 0.0
		for j, v := range raw {
			total += weights[j] * v / norms[j]
		}
		return total
	}
	deltaSum, deltaNum := 0.0, 0
	for i := 1; i < len(samples); i++ {
		deltaSum += math.Abs(cost(samples[i]) - cost(samples[i-1]))
		deltaNum++
	}
	deltaAvg := 0.0
	if deltaNum > 0 {
		deltaAvg = deltaSum / float64(deltaNum)
	}
	c.initT = initialTemperature(deltaAvg, c.sched.InitProb)
	c.lastT = math.Inf(1)

	// Rewind the sampling walk.
	copy(c.posSeq, identity(n))
	copy(c.negSeq, identity(n))
	for i := range c.macros {
		w.setExtra(i, initExtras[i])
	}
	c.pack()
	w.calPenalty()

	c.best = bestState{
		xs:     make([]float64, n),
		ys:     make([]float64, n),
		extras: make([]int, n),
	}
	c.initialized = true
	return nil
}

// initialTemperature derives the starting temperature so that an average
// uphill move is accepted with probability initProb. Degenerate walks (no
// cost movement) and initProb == 1 fall back to a high finite temperature.
func initialTemperature(deltaAvg, initProb float64) float64 {
	if deltaAvg <= 0 {
		return 1.0
	}
	logP := math.Log(initProb)
	if logP == 0 {
		return deltaAvg * 1e6
	}
	return -deltaAvg / logP
}

// anneal runs the full Fast-SA schedule: MaxNumStep temperature levels with
// NumPerturbPerStep accept/reject trials each. The engine finishes on the
// best layout seen, not necessarily the last.
func (c *core[M]) anneal(w worker) {
	cost := w.normCost()
	preCost := cost
	c.captureBest(w, cost)

	for step := 1; step <= c.sched.MaxNumStep; step++ {
		t := c.temperature(step)
		for i := 0; i < c.sched.NumPerturbPerStep; i++ {
			w.perturb()
			cost = w.normCost()
			delta := cost - preCost
			if delta <= 0 || c.rng.Float64() < math.Exp(-delta/t) {
				preCost = cost
				if cost < c.best.cost || !c.best.valid {
					c.captureBest(w, cost)
				}
			} else {
				w.restore()
			}
		}
		if c.progress != nil {
			c.progress(step, t, preCost)
		}
	}

	c.loadBest(w)
}

// captureBest snapshots the current layout as the best seen.
func (c *core[M]) captureBest(w worker, cost float64) {
	for i, m := range c.macros {
		c.best.xs[i] = m.X()
		c.best.ys[i] = m.Y()
		c.best.extras[i] = w.extra(i)
	}
	c.best.cost = cost
	c.best.valid = true
}

// loadBest reinstates the best layout and recomputes every penalty term so
// the final readback is consistent.
func (c *core[M]) loadBest(w worker) {
	if !c.best.valid {
		return
	}
	width, height := 0.0, 0.0
	for i, m := range c.macros {
		w.setExtra(i, c.best.extras[i])
		m.SetLoc(c.best.xs[i], c.best.ys[i])
		if r := m.X() + m.Width(); r > width {
			width = r
		}
		if t := m.Y() + m.Height(); t > height {
			height = t
		}
	}
	c.width, c.height = width, height
	w.calPenalty()
}
