// Package manifest loads floorplanning problems from TOML files.
//
// A manifest describes the fixed outline, the macros with their shapes or
// dimensions, the connectivity, and optional placement constraints
// (blockages, fences, guidance regions). Annealing hyperparameters may be
// overridden per file; anything omitted falls back to the defaults.
package manifest

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/macroplace/pkg/anneal"
	"github.com/matzehuels/macroplace/pkg/errors"
	"github.com/matzehuels/macroplace/pkg/geometry"
	"github.com/matzehuels/macroplace/pkg/macro"
)

// Macro kinds accepted in a manifest.
const (
	KindSoft = "soft"
	KindHard = "hard"
)

// Problem is the parsed, validated form of a manifest file.
type Problem struct {
	Name string

	Config anneal.Config

	// Exactly one of Soft and Hard is populated; manifests with mixed
	// macro kinds model the hard blocks as single-shape soft macros.
	Soft []*macro.SoftMacro
	Hard []*macro.HardMacro

	Blockages []geometry.Rect
}

// IsHard reports whether the problem anneals hard macros.
func (p *Problem) IsHard() bool { return len(p.Hard) > 0 }

// MacroNames returns the macro names in index order.
func (p *Problem) MacroNames() []string {
	var names []string
	for _, m := range p.Soft {
		names = append(names, m.Name())
	}
	for _, m := range p.Hard {
		names = append(names, m.Name())
	}
	return names
}

// file mirrors the TOML structure.
type file struct {
	Name    string      `toml:"name"`
	Outline rectSpec    `toml:"outline"`
	Weights *weightSpec `toml:"weights"`
	SA      *saSpec     `toml:"sa"`
	Actions *actionSpec `toml:"actions"`
	Notch   *notchSpec  `toml:"notch"`

	Macros    []macroSpec         `toml:"macros"`
	Nets      []netSpec           `toml:"nets"`
	Blockages []rectSpec          `toml:"blockages"`
	Fences    map[string]rectSpec `toml:"fences"`
	Guides    map[string]rectSpec `toml:"guides"`
}

type rectSpec struct {
	X      float64 `toml:"x"`
	Y      float64 `toml:"y"`
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

func (r rectSpec) rect() geometry.Rect {
	return geometry.NewRect(r.X, r.Y, r.Width, r.Height)
}

type weightSpec struct {
	Area          *float64 `toml:"area"`
	Outline       *float64 `toml:"outline"`
	Wirelength    *float64 `toml:"wirelength"`
	Guidance      *float64 `toml:"guidance"`
	Fence         *float64 `toml:"fence"`
	Boundary      *float64 `toml:"boundary"`
	MacroBlockage *float64 `toml:"macro_blockage"`
	Notch         *float64 `toml:"notch"`
}

type saSpec struct {
	InitProb          *float64 `toml:"init_prob"`
	MaxNumStep        *int     `toml:"max_num_step"`
	NumPerturbPerStep *int     `toml:"num_perturb_per_step"`
	K                 *int     `toml:"k"`
	C                 *int     `toml:"c"`
	Seed              *uint64  `toml:"seed"`
}

type actionSpec struct {
	PosSwap    *float64 `toml:"pos_swap"`
	NegSwap    *float64 `toml:"neg_swap"`
	DoubleSwap *float64 `toml:"double_swap"`
	Exchange   *float64 `toml:"exchange"`
	Resize     *float64 `toml:"resize"`
	Flip       *float64 `toml:"flip"`
}

type notchSpec struct {
	HThreshold *float64 `toml:"h_threshold"`
	VThreshold *float64 `toml:"v_threshold"`
}

type macroSpec struct {
	Name string `toml:"name"`
	Kind string `toml:"kind"`

	// Hard macros give fixed dimensions.
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`

	// Soft macros give [width, height] shape alternatives.
	Shapes [][]float64 `toml:"shapes"`

	PreferBoundary bool `toml:"prefer_boundary"`
}

type netSpec struct {
	Src      string    `toml:"src"`
	Dst      string    `toml:"dst"`
	SrcPoint []float64 `toml:"src_point"`
	DstPoint []float64 `toml:"dst_point"`
	Weight   float64   `toml:"weight"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read manifest %s", path)
	}
	return Parse(data)
}

// Parse validates manifest bytes.
func Parse(data []byte) (*Problem, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse manifest")
	}
	return f.problem()
}

func (f *file) problem() (*Problem, error) {
	if len(f.Macros) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "manifest declares no macros")
	}

	cfg := anneal.Config{
		OutlineWidth:  f.Outline.Width,
		OutlineHeight: f.Outline.Height,
		Weights:       f.weights(),
		Probs:         f.actions(),
		Schedule:      f.schedule(),
	}
	cfg.NotchHTh, cfg.NotchVTh = f.notch()

	p := &Problem{Name: f.Name}

	allHard := true
	for _, m := range f.Macros {
		if m.Kind != KindHard {
			allHard = false
		}
	}
	index := make(map[string]int, len(f.Macros))
	for i, spec := range f.Macros {
		if spec.Name == "" {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "macro %d has no name", i)
		}
		if _, dup := index[spec.Name]; dup {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "duplicate macro name %q", spec.Name)
		}
		index[spec.Name] = i

		switch spec.Kind {
		case KindHard:
			if allHard {
				m, err := macro.NewHardMacro(spec.Name, spec.Width, spec.Height)
				if err != nil {
					return nil, err
				}
				p.Hard = append(p.Hard, m)
				continue
			}
			// Mixed manifest: a hard block is a soft macro with one shape.
			m, err := macro.NewSoftMacro(spec.Name, []macro.Shape{{W: spec.Width, H: spec.Height}})
			if err != nil {
				return nil, err
			}
			p.Soft = append(p.Soft, m)
		case KindSoft, "":
			shapes := make([]macro.Shape, 0, len(spec.Shapes))
			for _, s := range spec.Shapes {
				if len(s) != 2 {
					return nil, errors.New(errors.ErrCodeInvalidManifest, "macro %q: shapes must be [width, height] pairs", spec.Name)
				}
				shapes = append(shapes, macro.Shape{W: s[0], H: s[1]})
			}
			m, err := macro.NewSoftMacro(spec.Name, shapes)
			if err != nil {
				return nil, err
			}
			m.SetPreferBoundary(spec.PreferBoundary)
			p.Soft = append(p.Soft, m)
		default:
			return nil, errors.New(errors.ErrCodeInvalidManifest, "macro %q: unknown kind %q", spec.Name, spec.Kind)
		}
	}

	for i, n := range f.Nets {
		src, err := terminal(n.Src, n.SrcPoint, index)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "net %d source", i)
		}
		dst, err := terminal(n.Dst, n.DstPoint, index)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "net %d target", i)
		}
		weight := n.Weight
		if weight == 0 {
			weight = 1
		}
		cfg.Nets = append(cfg.Nets, macro.BundledNet{Src: src, Dst: dst, Weight: weight})
	}

	for name, r := range f.Fences {
		i, ok := index[name]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "fence references unknown macro %q", name)
		}
		if cfg.Fences == nil {
			cfg.Fences = make(map[int]geometry.Rect)
		}
		cfg.Fences[i] = r.rect()
	}
	for name, r := range f.Guides {
		i, ok := index[name]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "guide references unknown macro %q", name)
		}
		if cfg.Guides == nil {
			cfg.Guides = make(map[int]geometry.Rect)
		}
		cfg.Guides[i] = r.rect()
	}

	for _, r := range f.Blockages {
		p.Blockages = append(p.Blockages, r.rect())
	}

	if err := cfg.Validate(len(f.Macros)); err != nil {
		return nil, err
	}
	p.Config = cfg
	return p, nil
}

func terminal(name string, point []float64, index map[string]int) (macro.Terminal, error) {
	switch {
	case name != "" && len(point) > 0:
		return macro.Terminal{}, errors.New(errors.ErrCodeInvalidNet, "terminal gives both a macro and a fixed point")
	case name != "":
		i, ok := index[name]
		if !ok {
			return macro.Terminal{}, errors.New(errors.ErrCodeInvalidNet, "unknown macro %q", name)
		}
		return macro.MacroTerminal(i), nil
	case len(point) == 2:
		return macro.FixedTerminal(point[0], point[1]), nil
	default:
		return macro.Terminal{}, errors.New(errors.ErrCodeInvalidNet, "terminal needs a macro name or an [x, y] point")
	}
}

func (f *file) weights() anneal.Weights {
	w := anneal.DefaultWeights()
	if f.Weights == nil {
		return w
	}
	setIf(&w.Area, f.Weights.Area)
	setIf(&w.Outline, f.Weights.Outline)
	setIf(&w.Wirelength, f.Weights.Wirelength)
	setIf(&w.Guidance, f.Weights.Guidance)
	setIf(&w.Fence, f.Weights.Fence)
	setIf(&w.Boundary, f.Weights.Boundary)
	setIf(&w.MacroBlockage, f.Weights.MacroBlockage)
	setIf(&w.Notch, f.Weights.Notch)
	return w
}

func (f *file) schedule() anneal.Schedule {
	s := anneal.DefaultSchedule()
	if f.SA == nil {
		return s
	}
	setIf(&s.InitProb, f.SA.InitProb)
	setIf(&s.MaxNumStep, f.SA.MaxNumStep)
	setIf(&s.NumPerturbPerStep, f.SA.NumPerturbPerStep)
	setIf(&s.K, f.SA.K)
	setIf(&s.C, f.SA.C)
	setIf(&s.Seed, f.SA.Seed)
	return s
}

// notch returns the detection thresholds, defaulting like the other specs.
// An explicit zero in [notch] still disables detection.
func (f *file) notch() (h, v float64) {
	h, v = anneal.DefaultNotchHTh, anneal.DefaultNotchVTh
	if f.Notch == nil {
		return h, v
	}
	setIf(&h, f.Notch.HThreshold)
	setIf(&v, f.Notch.VThreshold)
	return h, v
}

func (f *file) actions() anneal.ActionProbs {
	p := anneal.DefaultActionProbs()
	if f.Actions == nil {
		return p
	}
	setIf(&p.PosSwap, f.Actions.PosSwap)
	setIf(&p.NegSwap, f.Actions.NegSwap)
	setIf(&p.DoubleSwap, f.Actions.DoubleSwap)
	setIf(&p.Exchange, f.Actions.Exchange)
	setIf(&p.Resize, f.Actions.Resize)
	setIf(&p.Flip, f.Actions.Flip)
	return p
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
