// Package cache provides pluggable byte caches used for registry responses
// and update-check reports.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON file per entry, for CLI usage
//   - [RedisCache]: shared cache for multiple admin hosts
//   - [Disabled]: stands in when caching is off
//
// Keys are produced by a [Keyer] so that every backend sees the same key
// layout, and [ScopedKeyer] adds a prefix for multi-store isolation.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads with an optional TTL.
type Cache interface {
	// Get returns the stored data and whether the key was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys.
type Keyer interface {
	// HTTPKey generates a key for a registry HTTP response.
	HTTPKey(namespace, key string) string
	// ReportKey generates a key for the update-check report of a project root.
	ReportKey(projectRoot string) string
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// ReportKey returns "report:<sha256 of root>".
func (DefaultKeyer) ReportKey(projectRoot string) string {
	return hashKey("report", projectRoot)
}
