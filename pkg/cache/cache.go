// Package cache provides the rendered-page cache.
//
// Page builds are deterministic functions of the API snapshot and the
// generation options, so rendered Markdown is cached under content-hash
// keys: an unchanged snapshot re-renders for free. Backends share one
// small Cache interface; the file backend serves CLI runs, the redis
// backend serves shared CI runners, and the null backend disables
// caching entirely.
package cache

import (
	"context"
	"time"
)

// TTL values per key type.
const (
	// TTLPage is how long rendered pages stay valid. Pages are keyed by
	// snapshot hash, so staleness only matters for cache size.
	TTLPage = 30 * 24 * time.Hour

	// TTLSnapshot is how long parsed snapshot metadata stays valid.
	TTLSnapshot = 7 * 24 * time.Hour
)

// Cache stores and retrieves byte values under string keys.
//
// Get returns (nil, false, nil) on a miss; errors are reserved for
// backend failures. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// PageKeyOpts are the option fields that change a page's rendered output
// and therefore participate in its cache key.
type PageKeyOpts struct {
	FullName      string
	SitePath      string
	CodeURLPrefix string
}

// Keyer generates cache keys for the generation pipeline.
type Keyer interface {
	// PageKey generates a key for one rendered page. snapshotHash is the
	// content hash of the loaded API snapshot.
	PageKey(snapshotHash string, opts PageKeyOpts) string

	// SnapshotKey generates a key for parsed snapshot metadata.
	SnapshotKey(snapshotHash string) string
}

// DefaultKeyer generates hash-based keys with type prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// PageKey generates a key for one rendered page.
func (k *DefaultKeyer) PageKey(snapshotHash string, opts PageKeyOpts) string {
	return hashKey("page", snapshotHash, opts)
}

// SnapshotKey generates a key for parsed snapshot metadata.
func (k *DefaultKeyer) SnapshotKey(snapshotHash string) string {
	return hashKey("snapshot", snapshotHash)
}
