// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about annealing runs and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPlaceHooks(&myPlaceHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Place().OnRunStart(ctx, runID, numMacros)
//	// ... anneal ...
//	observability.Place().OnRunComplete(ctx, runID, cost, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Placement Hooks
// =============================================================================

// PlaceHooks receives events from annealing runs.
type PlaceHooks interface {
	// OnRunStart records the start of one annealing run.
	OnRunStart(ctx context.Context, runID string, numMacros int)

	// OnStep records one completed temperature step of a run.
	OnStep(ctx context.Context, runID string, step int, temperature, cost float64)

	// OnRunComplete records the end of one annealing run.
	OnRunComplete(ctx context.Context, runID string, cost float64, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPlaceHooks is a no-op implementation of PlaceHooks.
type NoopPlaceHooks struct{}

func (NoopPlaceHooks) OnRunStart(context.Context, string, int)                            {}
func (NoopPlaceHooks) OnStep(context.Context, string, int, float64, float64)              {}
func (NoopPlaceHooks) OnRunComplete(context.Context, string, float64, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	placeHooks PlaceHooks = NoopPlaceHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetPlaceHooks registers custom placement hooks.
// This should be called once at application startup before any runs.
func SetPlaceHooks(h PlaceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		placeHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Place returns the registered placement hooks.
func Place() PlaceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return placeHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	placeHooks = NoopPlaceHooks{}
	cacheHooks = NoopCacheHooks{}
}
