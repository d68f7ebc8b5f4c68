package anneal

import (
	"github.com/matzehuels/macroplace/pkg/errors"
	"github.com/matzehuels/macroplace/pkg/geometry"
	"github.com/matzehuels/macroplace/pkg/macro"
)

// Placeable is the capability set the engine requires from a macro element:
// position, dimensions and cloning. The type parameter lets Clone return the
// concrete macro type so the engine never loses static type information.
type Placeable[M any] interface {
	X() float64
	Y() float64
	SetLoc(x, y float64)
	Width() float64
	Height() float64
	Area() float64
	Clone() M
}

// Weights holds the non-negative multiplier of each penalty term.
// A zero weight disables the term without any code change.
type Weights struct {
	Area          float64
	Outline       float64
	Wirelength    float64
	Guidance      float64
	Fence         float64
	Boundary      float64
	MacroBlockage float64
	Notch         float64
}

// DefaultWeights returns the weight set used by the reference flow.
func DefaultWeights() Weights {
	return Weights{
		Area:          0.1,
		Outline:       1.0,
		Wirelength:    1.0,
		Guidance:      10.0,
		Fence:         10.0,
		Boundary:      5.0,
		MacroBlockage: 1.0,
		Notch:         1.0,
	}
}

// Default notch detection thresholds used by the reference flow. An unused
// strip narrower than the horizontal threshold or shorter than the vertical
// one counts as notch waste.
const (
	DefaultNotchHTh = 10.0
	DefaultNotchVTh = 10.0
)

func (w Weights) validate() error {
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"area", w.Area}, {"outline", w.Outline}, {"wirelength", w.Wirelength},
		{"guidance", w.Guidance}, {"fence", w.Fence}, {"boundary", w.Boundary},
		{"macro_blockage", w.MacroBlockage}, {"notch", w.Notch},
	} {
		if v.val < 0 {
			return errors.New(errors.ErrCodeInvalidWeight, "%s weight must be non-negative, got %g", v.name, v.val)
		}
	}
	return nil
}

// Schedule holds the Fast-SA hyperparameters.
//
// The temperature starts at a value derived from InitProb and the average
// cost delta of sampled moves, then decays as T/(C*step) for the first K
// steps and T/step afterwards, clamped to be non-increasing.
type Schedule struct {
	// InitProb is the target acceptance probability of an average
	// cost-increasing move at the first step. Must be in (0, 1].
	InitProb float64
	// MaxNumStep is the number of temperature levels.
	MaxNumStep int
	// NumPerturbPerStep is the number of perturb/evaluate/accept trials
	// performed at each temperature level.
	NumPerturbPerStep int
	// K and C shape the temperature decay.
	K, C int
	// Seed fixes the pseudo-random sequence; equal seeds (with equal inputs)
	// give bit-identical runs.
	Seed uint64
}

// DefaultSchedule returns the hyperparameters used by the reference flow.
func DefaultSchedule() Schedule {
	return Schedule{
		InitProb:          0.9,
		MaxNumStep:        2000,
		NumPerturbPerStep: 500,
		K:                 5,
		C:                 100,
	}
}

func (s Schedule) validate() error {
	if s.InitProb <= 0 || s.InitProb > 1 {
		return errors.New(errors.ErrCodeInvalidSchedule, "init_prob must be in (0, 1], got %g", s.InitProb)
	}
	if s.MaxNumStep < 1 {
		return errors.New(errors.ErrCodeInvalidSchedule, "max_num_step must be >= 1, got %d", s.MaxNumStep)
	}
	if s.NumPerturbPerStep < 1 {
		return errors.New(errors.ErrCodeInvalidSchedule, "num_perturb_per_step must be >= 1, got %d", s.NumPerturbPerStep)
	}
	if s.K < 1 {
		return errors.New(errors.ErrCodeInvalidSchedule, "k must be >= 1, got %d", s.K)
	}
	if s.C < 1 {
		return errors.New(errors.ErrCodeInvalidSchedule, "c must be >= 1, got %d", s.C)
	}
	return nil
}

// ActionProbs holds the relative selection probability of each perturbation.
// The values are normalized at construction, so only their ratios matter.
// Resize applies to soft cores, Flip to hard cores; the inapplicable entry is
// ignored.
type ActionProbs struct {
	PosSwap    float64
	NegSwap    float64
	DoubleSwap float64
	Exchange   float64
	Resize     float64
	Flip       float64
}

// DefaultActionProbs returns the action mix used by the reference flow.
func DefaultActionProbs() ActionProbs {
	return ActionProbs{
		PosSwap:    0.2,
		NegSwap:    0.2,
		DoubleSwap: 0.2,
		Exchange:   0.2,
		Resize:     0.4,
		Flip:       0.4,
	}
}

func (p ActionProbs) validate() error {
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"pos_swap", p.PosSwap}, {"neg_swap", p.NegSwap}, {"double_swap", p.DoubleSwap},
		{"exchange", p.Exchange}, {"resize", p.Resize}, {"flip", p.Flip},
	} {
		if v.val < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s probability must be non-negative, got %g", v.name, v.val)
		}
	}
	return nil
}

// Config collects the construction-time inputs shared by soft and hard
// cores. All fields are copied or treated as immutable for the run.
type Config struct {
	// OutlineWidth and OutlineHeight describe the fixed outline all macros
	// should fit within. Both must be strictly positive.
	OutlineWidth, OutlineHeight float64

	Weights  Weights
	Probs    ActionProbs
	Schedule Schedule

	// Nets are the bundled connections driving the wirelength term.
	Nets []macro.BundledNet

	// Fences maps a macro index to its hard keep-in rectangle.
	Fences map[int]geometry.Rect

	// Guides maps a macro index to its soft guidance rectangle.
	Guides map[int]geometry.Rect

	// NotchHTh and NotchVTh are the thresholds below which an unused strip
	// counts as notch waste (soft cores only). Zero disables detection.
	NotchHTh, NotchVTh float64
}

// Validate checks the configuration against the given macro count.
func (c Config) Validate(numMacros int) error {
	if c.OutlineWidth <= 0 || c.OutlineHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidOutline,
			"outline must have positive dimensions, got %gx%g", c.OutlineWidth, c.OutlineHeight)
	}
	if numMacros == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no macros to place")
	}
	if err := c.Weights.validate(); err != nil {
		return err
	}
	if err := c.Probs.validate(); err != nil {
		return err
	}
	if err := c.Schedule.validate(); err != nil {
		return err
	}
	for _, n := range c.Nets {
		if err := n.Validate(numMacros); err != nil {
			return err
		}
	}
	return nil
}

// Term is the state of one penalty term after evaluation.
type Term struct {
	Raw    float64 // raw value computed from the layout
	Norm   float64 // normalization divisor (1 if the term was never non-zero)
	Weight float64 // caller-supplied weight
}

// Normalized returns Raw / Norm.
func (t Term) Normalized() float64 {
	if t.Norm == 0 {
		return t.Raw
	}
	return t.Raw / t.Norm
}

// Cost returns the term's contribution to the total: Weight * Raw / Norm.
func (t Term) Cost() float64 { return t.Weight * t.Normalized() }

// Breakdown reports every penalty term plus the combined total, for
// diagnostics and for selecting among parallel runs. Boundary, MacroBlockage
// and Notch are zero for hard cores.
type Breakdown struct {
	Area          Term
	Outline       Term
	Wirelength    Term
	Guidance      Term
	Fence         Term
	Boundary      Term
	MacroBlockage Term
	Notch         Term
	Total         float64
}
