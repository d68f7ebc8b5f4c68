// Package place orchestrates annealing runs: it spawns independent seeded
// engines in parallel, keeps the cheapest layout, and caches results so a
// repeated invocation with the same problem is free.
package place

import (
	"encoding/json"

	"github.com/matzehuels/macroplace/pkg/anneal"
	"github.com/matzehuels/macroplace/pkg/errors"
	"github.com/matzehuels/macroplace/pkg/geometry"
	"github.com/matzehuels/macroplace/pkg/macro"
)

// DefaultNumRuns is the number of independent seeded runs when the caller
// does not choose one.
const DefaultNumRuns = 10

// Block is one placed macro in a finished layout.
type Block struct {
	Name        string  `json:"name"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Orientation string  `json:"orientation,omitempty"`
}

// Layout is the result of a placement: the winning run's blocks plus its
// cost accounting.
type Layout struct {
	OutlineWidth  float64          `json:"outline_width"`
	OutlineHeight float64          `json:"outline_height"`
	Blocks        []Block          `json:"blocks"`
	Cost          float64          `json:"cost"`
	Breakdown     anneal.Breakdown `json:"breakdown"`
	RunID         string           `json:"run_id"`
	Seed          uint64           `json:"seed"`
}

// MarshalLayout serializes a layout for caching and API responses.
func MarshalLayout(l *Layout) ([]byte, error) {
	return json.Marshal(l)
}

// UnmarshalLayout deserializes a cached layout.
func UnmarshalLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout")
	}
	return &l, nil
}

// Options describes one placement request. Exactly one of Soft and Hard
// must be populated.
type Options struct {
	Config anneal.Config

	Soft []*macro.SoftMacro
	Hard []*macro.HardMacro

	// Blockages are keep-out rectangles (soft problems only).
	Blockages []geometry.Rect

	// NumRuns is the number of independent seeded runs. Defaults to
	// DefaultNumRuns.
	NumRuns int

	// FillDeadSpace grows the winning layout's soft macros into unused
	// grid cells before returning.
	FillDeadSpace bool

	// Align snaps the winning layout's macros to the outline and to each
	// other within the notch thresholds.
	Align bool

	// Refresh bypasses the cache lookup and recomputes.
	Refresh bool
}

// ValidateAndSetDefaults checks the request and fills defaults in place.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Soft) > 0 && len(o.Hard) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "a problem holds soft or hard macros, not both")
	}
	if len(o.Soft) == 0 && len(o.Hard) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no macros to place")
	}
	if len(o.Hard) > 0 && len(o.Blockages) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "blockages apply to soft problems only")
	}
	if o.NumRuns == 0 {
		o.NumRuns = DefaultNumRuns
	}
	if o.NumRuns < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "number of runs must be positive")
	}
	return o.Config.Validate(o.numMacros())
}

func (o *Options) numMacros() int {
	if len(o.Soft) > 0 {
		return len(o.Soft)
	}
	return len(o.Hard)
}

// macroDigest is the hashing view of a macro. Only properties that change
// the annealing outcome participate.
type macroDigest struct {
	Name           string        `json:"name"`
	Shapes         []macro.Shape `json:"shapes,omitempty"`
	Width          float64       `json:"width,omitempty"`
	Height         float64       `json:"height,omitempty"`
	PreferBoundary bool          `json:"prefer_boundary,omitempty"`
}

// digest serializes everything that determines the result, for cache keys.
func (o *Options) digest() ([]byte, error) {
	macros := make([]macroDigest, 0, o.numMacros())
	for _, m := range o.Soft {
		d := macroDigest{Name: m.Name(), PreferBoundary: m.PreferBoundary()}
		for i := 0; i < m.NumShapes(); i++ {
			d.Shapes = append(d.Shapes, m.Shape(i))
		}
		macros = append(macros, d)
	}
	for _, m := range o.Hard {
		macros = append(macros, macroDigest{Name: m.Name(), Width: m.Width(), Height: m.Height()})
	}
	return json.Marshal(struct {
		Config    anneal.Config   `json:"config"`
		Macros    []macroDigest   `json:"macros"`
		Blockages []geometry.Rect `json:"blockages,omitempty"`
		Fill      bool            `json:"fill,omitempty"`
		Align     bool            `json:"align,omitempty"`
	}{o.Config, macros, o.Blockages, o.FillDeadSpace, o.Align})
}
