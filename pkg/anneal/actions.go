package anneal

import "github.com/matzehuels/macroplace/pkg/errors"

// actionKind enumerates the perturbation moves. Soft and hard cores register
// different subsets; resize applies to soft macros only and flip to hard.
type actionKind int

const (
	actionPosSwap actionKind = iota
	actionNegSwap
	actionDoubleSwap
	actionExchange
	actionResize
	actionFlip
)

// actionTable maps a uniform draw in [0,1) onto an action via cumulative
// probabilities. Built once per core.
type actionTable []struct {
	kind actionKind
	cum  float64
}

func (p ActionProbs) of(k actionKind) float64 {
	switch k {
	case actionPosSwap:
		return p.PosSwap
	case actionNegSwap:
		return p.NegSwap
	case actionDoubleSwap:
		return p.DoubleSwap
	case actionExchange:
		return p.Exchange
	case actionResize:
		return p.Resize
	case actionFlip:
		return p.Flip
	}
	return 0
}

// buildActionTable normalizes the probabilities of the registered kinds into
// a cumulative lookup table. Zero-probability kinds are skipped.
func buildActionTable(probs ActionProbs, kinds []actionKind) (actionTable, error) {
	total := 0.0
	for _, k := range kinds {
		total += probs.of(k)
	}
	if total <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "action probabilities sum to zero")
	}
	var table actionTable
	cum := 0.0
	for _, k := range kinds {
		p := probs.of(k)
		if p == 0 {
			continue
		}
		cum += p / total
		table = append(table, struct {
			kind actionKind
			cum  float64
		}{kind: k, cum: cum})
	}
	// Guard against float drift on the last slot.
	table[len(table)-1].cum = 1.0
	return table, nil
}

// pickAction draws one move from the cumulative table.
func (c *core[M]) pickAction() actionKind {
	r := c.rng.Float64()
	for _, slot := range c.actions {
		if r < slot.cum {
			return slot.kind
		}
	}
	return c.actions[len(c.actions)-1].kind
}

// randPair draws two distinct indices in [0, n).
func (c *core[M]) randPair() (int, int) {
	n := len(c.macros)
	if n < 2 {
		return 0, 0
	}
	a := c.rng.Intn(n)
	b := c.rng.Intn(n - 1)
	if b >= a {
		b++
	}
	return a, b
}

// posSwap exchanges two entries of the positive sequence.
func (c *core[M]) posSwap() {
	a, b := c.randPair()
	c.posSeq[a], c.posSeq[b] = c.posSeq[b], c.posSeq[a]
}

// negSwap exchanges two entries of the negative sequence.
func (c *core[M]) negSwap() {
	a, b := c.randPair()
	c.negSeq[a], c.negSeq[b] = c.negSeq[b], c.negSeq[a]
}

// doubleSwap applies an independent swap to each sequence.
func (c *core[M]) doubleSwap() {
	c.posSwap()
	c.negSwap()
}

// exchange swaps two macro ids in both sequences, exchanging the macros'
// relative positions while keeping everything else fixed.
func (c *core[M]) exchange() {
	a, b := c.randPair()
	swapIDs(c.posSeq, a, b)
	swapIDs(c.negSeq, a, b)
}

func swapIDs(seq []int, a, b int) {
	ai, bi := -1, -1
	for i, id := range seq {
		if id == a {
			ai = i
		} else if id == b {
			bi = i
		}
	}
	seq[ai], seq[bi] = seq[bi], seq[ai]
}
