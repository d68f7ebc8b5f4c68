package anneal

// The sequence pair encodes the relative placement order of all macros as
// two permutations. Macro a precedes macro b in both sequences exactly when
// a is packed to the left of b; a follows b in the positive sequence but
// precedes it in the negative sequence exactly when a is packed below b.
//
// Packing evaluates, for every macro, the longest weighted chain of macros
// that must sit to its left (x) or below it (y). The chains are resolved
// with a prefix-max bucket tree over negative-sequence positions, giving an
// O(n log n) sweep instead of the O(n^2) pairwise formulation.

// maxTree is a Fenwick-style bucket tree answering prefix-maximum queries.
// Each position is updated at most once per packing sweep.
type maxTree struct {
	vals []float64
}

func newMaxTree(n int) *maxTree {
	return &maxTree{vals: make([]float64, n+1)}
}

// reset clears the tree for a sweep over n positions.
func (t *maxTree) reset(n int) {
	if cap(t.vals) < n+1 {
		t.vals = make([]float64, n+1)
		return
	}
	t.vals = t.vals[:n+1]
	for i := range t.vals {
		t.vals[i] = 0
	}
}

// update raises the value at 1-based position i to at least v.
func (t *maxTree) update(i int, v float64) {
	for ; i < len(t.vals); i += i & (-i) {
		if t.vals[i] < v {
			t.vals[i] = v
		}
	}
}

// query returns the maximum over 1-based positions [1, i], or 0 for i == 0.
func (t *maxTree) query(i int) float64 {
	var max float64
	for ; i > 0; i -= i & (-i) {
		if t.vals[i] > max {
			max = t.vals[i]
		}
	}
	return max
}

// pack recomputes every macro's lower-left corner from the current sequence
// pair and updates the layout bounding box. Coordinates start at the origin;
// the outline is not consulted here (violations are penalized, not
// prevented).
func (c *core[M]) pack() {
	n := len(c.macros)
	for pos, id := range c.negSeq {
		c.negIdx[id] = pos
	}

	// x sweep: macros earlier in both sequences are packed to the left.
	c.tree.reset(n)
	width := 0.0
	for _, id := range c.posSeq {
		q := c.negIdx[id]
		x := c.tree.query(q)
		m := c.macros[id]
		m.SetLoc(x, 0)
		right := x + m.Width()
		c.tree.update(q+1, right)
		if right > width {
			width = right
		}
	}

	// y sweep: macros later in the positive but earlier in the negative
	// sequence are packed below.
	c.tree.reset(n)
	height := 0.0
	for i := n - 1; i >= 0; i-- {
		id := c.posSeq[i]
		q := c.negIdx[id]
		y := c.tree.query(q)
		m := c.macros[id]
		m.SetLoc(m.X(), y)
		top := y + m.Height()
		c.tree.update(q+1, top)
		if top > height {
			height = top
		}
	}

	c.width = width
	c.height = height
}
