package place

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/macroplace/pkg/anneal"
	"github.com/matzehuels/macroplace/pkg/cache"
	"github.com/matzehuels/macroplace/pkg/macro"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	mkSoft := func(name string, shapes ...macro.Shape) *macro.SoftMacro {
		m, err := macro.NewSoftMacro(name, shapes)
		if err != nil {
			t.Fatalf("NewSoftMacro(%s): %v", name, err)
		}
		return m
	}
	return Options{
		Config: anneal.Config{
			OutlineWidth:  100,
			OutlineHeight: 100,
			Weights:       anneal.DefaultWeights(),
			Probs:         anneal.DefaultActionProbs(),
			Schedule: anneal.Schedule{
				InitProb:          0.9,
				MaxNumStep:        10,
				NumPerturbPerStep: 20,
				K:                 5,
				C:                 100,
				Seed:              1,
			},
		},
		Soft: []*macro.SoftMacro{
			mkSoft("a", macro.Shape{W: 40, H: 40}),
			mkSoft("b", macro.Shape{W: 30, H: 30}, macro.Shape{W: 45, H: 20}),
			mkSoft("c", macro.Shape{W: 20, H: 20}),
		},
		NumRuns: 2,
	}
}

func quietRunner(c cache.Cache) *Runner {
	logger := log.New(io.Discard)
	return NewRunner(c, nil, logger)
}

func TestPlaceReproducible(t *testing.T) {
	r := quietRunner(cache.NewNullCache())
	ctx := context.Background()

	first, err := r.Place(ctx, testOptions(t))
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	second, err := r.Place(ctx, testOptions(t))
	if err != nil {
		t.Fatalf("Place: %v", err)
	}

	if first.Cost != second.Cost {
		t.Fatalf("costs differ across identical requests: %v vs %v", first.Cost, second.Cost)
	}
	if len(first.Blocks) != len(second.Blocks) {
		t.Fatalf("block counts differ: %d vs %d", len(first.Blocks), len(second.Blocks))
	}
	for i := range first.Blocks {
		if first.Blocks[i] != second.Blocks[i] {
			t.Errorf("block %d differs: %+v vs %+v", i, first.Blocks[i], second.Blocks[i])
		}
	}
	if first.Seed != second.Seed {
		t.Errorf("winning seeds differ: %d vs %d", first.Seed, second.Seed)
	}
}

func TestPlaceUsesCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := quietRunner(c)
	ctx := context.Background()

	first, hit, err := r.PlaceWithCacheInfo(ctx, testOptions(t))
	if err != nil {
		t.Fatalf("PlaceWithCacheInfo: %v", err)
	}
	if hit {
		t.Fatal("first placement reported a cache hit")
	}

	second, hit, err := r.PlaceWithCacheInfo(ctx, testOptions(t))
	if err != nil {
		t.Fatalf("PlaceWithCacheInfo: %v", err)
	}
	if !hit {
		t.Fatal("second placement missed the cache")
	}
	if first.Cost != second.Cost || first.RunID != second.RunID {
		t.Error("cached layout differs from computed layout")
	}

	// Refresh bypasses the cache.
	opts := testOptions(t)
	opts.Refresh = true
	if _, hit, err = r.PlaceWithCacheInfo(ctx, opts); err != nil {
		t.Fatalf("PlaceWithCacheInfo: %v", err)
	} else if hit {
		t.Error("refresh request reported a cache hit")
	}
}

func TestPlaceHardProblem(t *testing.T) {
	mkHard := func(name string, w, h float64) *macro.HardMacro {
		m, err := macro.NewHardMacro(name, w, h)
		if err != nil {
			t.Fatalf("NewHardMacro(%s): %v", name, err)
		}
		return m
	}
	opts := testOptions(t)
	opts.Soft = nil
	opts.Hard = []*macro.HardMacro{
		mkHard("x", 40, 20),
		mkHard("y", 30, 30),
	}

	layout, err := quietRunner(cache.NewNullCache()).Place(context.Background(), opts)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if len(layout.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(layout.Blocks))
	}
	for _, b := range layout.Blocks {
		if b.Orientation == "" {
			t.Errorf("block %s has no orientation", b.Name)
		}
	}
}

func TestOptionsValidation(t *testing.T) {
	r := quietRunner(cache.NewNullCache())
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"no macros", func(o *Options) { o.Soft = nil }},
		{"both kinds", func(o *Options) {
			m, _ := macro.NewHardMacro("h", 10, 10)
			o.Hard = []*macro.HardMacro{m}
		}},
		{"negative runs", func(o *Options) { o.NumRuns = -1 }},
		{"bad outline", func(o *Options) { o.Config.OutlineWidth = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(t)
			tt.mutate(&opts)
			if _, err := r.Place(ctx, opts); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLayoutFitting(t *testing.T) {
	l := &Layout{
		OutlineWidth:  100,
		OutlineHeight: 100,
		Blocks: []Block{
			{Name: "a", X: 0, Y: 0, Width: 50, Height: 50},
		},
	}
	if !l.Fitting() {
		t.Error("in-bounds layout reported as not fitting")
	}
	l.Blocks = append(l.Blocks, Block{Name: "b", X: 90, Y: 0, Width: 20, Height: 10})
	if l.Fitting() {
		t.Error("out-of-bounds layout reported as fitting")
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	layout, err := quietRunner(cache.NewNullCache()).Place(context.Background(), testOptions(t))
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	data, err := MarshalLayout(layout)
	if err != nil {
		t.Fatalf("MarshalLayout: %v", err)
	}
	got, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if got.Cost != layout.Cost || len(got.Blocks) != len(layout.Blocks) {
		t.Error("layout changed across serialization")
	}
}
