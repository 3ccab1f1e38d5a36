// Package cache provides the caching layer for scan results.
//
// A Cache stores opaque byte values under string keys with optional
// expiration. Backends exist for local files (CLI usage), Redis (server
// usage), and a null implementation that disables caching entirely. Key
// construction is separated into the Keyer so that callers never
// concatenate key strings by hand.
package cache

import (
	"context"
	"time"
)

// Cache is the storage contract shared by all backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ProfileKeyOpts are the scan parameters that must invalidate a cached
// profile when they change.
type ProfileKeyOpts struct {
	MaxDepth        int
	AdvisoryVersion int
}

// Keyer builds cache keys for scan artifacts.
type Keyer interface {
	// ProfileKey generates a key for a cached repository profile.
	ProfileKey(root string, opts ProfileKeyOpts) string

	// RenderKey generates a key for a rendered artifact derived from a
	// profile (SVG or PNG dependency graphs).
	RenderKey(profileHash, format string) string
}

// DefaultKeyer hashes key components so that path separators and scan
// options never leak into backend key syntax.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ProfileKey generates a key for a cached repository profile.
func (DefaultKeyer) ProfileKey(root string, opts ProfileKeyOpts) string {
	return hashKey("profile", root, opts.MaxDepth, opts.AdvisoryVersion)
}

// RenderKey generates a key for a rendered artifact.
func (DefaultKeyer) RenderKey(profileHash, format string) string {
	return hashKey("render", profileHash, format)
}

var _ Keyer = (*DefaultKeyer)(nil)
