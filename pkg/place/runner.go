package place

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/macroplace/pkg/anneal"
	"github.com/matzehuels/macroplace/pkg/cache"
	"github.com/matzehuels/macroplace/pkg/observability"
)

// Runner executes placement requests with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store placement results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Place runs the full placement: cache lookup, parallel annealing runs,
// winner selection, optional post-processing, cache write-back.
func (r *Runner) Place(ctx context.Context, opts Options) (*Layout, error) {
	layout, _, err := r.PlaceWithCacheInfo(ctx, opts)
	return layout, err
}

// PlaceWithCacheInfo is Place plus a flag reporting whether the layout came
// from cache.
func (r *Runner) PlaceWithCacheInfo(ctx context.Context, opts Options) (*Layout, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, fmt.Errorf("invalid options: %w", err)
	}

	digest, err := opts.digest()
	if err != nil {
		return nil, false, fmt.Errorf("digest options: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(digest), cache.LayoutKeyOpts{
		NumRuns: opts.NumRuns,
		Seed:    opts.Config.Schedule.Seed,
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if layout, err := UnmarshalLayout(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				r.Logger.Debug("layout cache hit", "key", cacheKey)
				return layout, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	start := time.Now()
	layout, err := r.anneal(ctx, opts)
	if err != nil {
		return nil, false, err
	}
	r.Logger.Info("placement complete",
		"macros", opts.numMacros(),
		"runs", opts.NumRuns,
		"cost", layout.Cost,
		"duration", time.Since(start))

	if data, err := MarshalLayout(layout); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return layout, false, nil
}

// runResult is one seeded run's outcome.
type runResult struct {
	layout *Layout
	err    error
}

// anneal executes opts.NumRuns independent runs and returns the cheapest
// layout. Run i gets seed base+i, so the whole ensemble is reproducible.
func (r *Runner) anneal(ctx context.Context, opts Options) (*Layout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]runResult, opts.NumRuns)
	var wg sync.WaitGroup
	for i := 0; i < opts.NumRuns; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seed := opts.Config.Schedule.Seed + uint64(i)
			results[i] = r.singleRun(ctx, opts, seed)
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	best := -1
	for i, res := range results {
		if res.err != nil {
			return nil, fmt.Errorf("run %d: %w", i, res.err)
		}
		if best == -1 || res.layout.Cost < results[best].layout.Cost {
			best = i
		}
	}
	return results[best].layout, nil
}

// singleRun anneals one engine with the given seed.
func (r *Runner) singleRun(ctx context.Context, opts Options, seed uint64) runResult {
	runID := uuid.NewString()
	cfg := opts.Config
	cfg.Schedule.Seed = seed

	observability.Place().OnRunStart(ctx, runID, opts.numMacros())
	start := time.Now()

	layout, err := r.runEngine(ctx, cfg, opts, runID, seed)
	var cost float64
	if layout != nil {
		cost = layout.Cost
	}
	observability.Place().OnRunComplete(ctx, runID, cost, time.Since(start), err)
	if err != nil {
		return runResult{err: err}
	}
	r.Logger.Debug("run finished", "run", runID, "seed", seed, "cost", layout.Cost)
	return runResult{layout: layout}
}

func (r *Runner) runEngine(ctx context.Context, cfg anneal.Config, opts Options, runID string, seed uint64) (*Layout, error) {
	if len(opts.Hard) > 0 {
		core, err := anneal.NewHardCore(cfg, opts.Hard)
		if err != nil {
			return nil, err
		}
		core.SetProgress(func(step int, temperature, cost float64) {
			observability.Place().OnStep(ctx, runID, step, temperature, cost)
		})
		if err := core.Initialize(); err != nil {
			return nil, err
		}
		if err := core.Run(); err != nil {
			return nil, err
		}
		return hardLayout(core, cfg, runID, seed), nil
	}

	core, err := anneal.NewSoftCore(cfg, opts.Soft)
	if err != nil {
		return nil, err
	}
	core.SetBlockages(opts.Blockages)
	core.SetProgress(func(step int, temperature, cost float64) {
		observability.Place().OnStep(ctx, runID, step, temperature, cost)
	})
	if err := core.Initialize(); err != nil {
		return nil, err
	}
	if err := core.Run(); err != nil {
		return nil, err
	}
	if opts.Align {
		core.AlignMacroClusters()
	}
	if opts.FillDeadSpace {
		core.FillDeadSpace()
	}
	return softLayout(core, cfg, runID, seed), nil
}

func softLayout(core *anneal.SoftCore, cfg anneal.Config, runID string, seed uint64) *Layout {
	layout := &Layout{
		OutlineWidth:  cfg.OutlineWidth,
		OutlineHeight: cfg.OutlineHeight,
		Cost:          core.Cost(),
		Breakdown:     core.Penalties(),
		RunID:         runID,
		Seed:          seed,
	}
	for _, m := range core.Macros() {
		layout.Blocks = append(layout.Blocks, Block{
			Name:   m.Name(),
			X:      m.X(),
			Y:      m.Y(),
			Width:  m.Width(),
			Height: m.Height(),
		})
	}
	sortBlocks(layout.Blocks)
	return layout
}

func hardLayout(core *anneal.HardCore, cfg anneal.Config, runID string, seed uint64) *Layout {
	layout := &Layout{
		OutlineWidth:  cfg.OutlineWidth,
		OutlineHeight: cfg.OutlineHeight,
		Cost:          core.Cost(),
		Breakdown:     core.Penalties(),
		RunID:         runID,
		Seed:          seed,
	}
	for _, m := range core.Macros() {
		layout.Blocks = append(layout.Blocks, Block{
			Name:        m.Name(),
			X:           m.X(),
			Y:           m.Y(),
			Width:       m.Width(),
			Height:      m.Height(),
			Orientation: m.Orientation().String(),
		})
	}
	sortBlocks(layout.Blocks)
	return layout
}

// sortBlocks keeps block order stable regardless of engine internals.
func sortBlocks(blocks []Block) {
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Name < blocks[j].Name })
}

// Fitting reports whether every block of the layout lies inside the outline.
func (l *Layout) Fitting() bool {
	for _, b := range l.Blocks {
		if b.X < 0 || b.Y < 0 || b.X+b.Width > l.OutlineWidth || b.Y+b.Height > l.OutlineHeight {
			return false
		}
	}
	return true
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
