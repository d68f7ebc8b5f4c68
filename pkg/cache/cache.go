// Package cache provides storage backends and key generation for caching
// annealed layouts and rendered artifacts.
//
// Placement runs are expensive; a layout for a given problem and run
// configuration is fully determined by its seed, so results can be reused
// across invocations. The CLI uses a FileCache, tests and one-shot runs a
// NullCache.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry kind.
const (
	// TTLLayout applies to annealed layouts. Layouts are deterministic in
	// the problem and run options, so they keep for a long time.
	TTLLayout = 30 * 24 * time.Hour

	// TTLArtifact applies to rendered outputs derived from a layout.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented store with TTL expiry.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// LayoutKeyOpts are the run parameters that distinguish cached layouts for
// the same problem.
type LayoutKeyOpts struct {
	NumRuns int
	Seed    uint64
}

// ArtifactKeyOpts distinguish rendered outputs derived from one layout.
type ArtifactKeyOpts struct {
	Format string
	Theme  string
}

// Keyer generates cache keys. Implementations must be deterministic: the
// same inputs always yield the same key.
type Keyer interface {
	// LayoutKey generates a key for an annealed layout.
	LayoutKey(problemHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the structured options into stable keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey generates a key for an annealed layout.
func (k *DefaultKeyer) LayoutKey(problemHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", problemHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
