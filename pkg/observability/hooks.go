// Package observability provides hooks for metrics and tracing.
//
// Libraries emit events through globally registered hooks; main registers
// a backend at startup (see the metrics package for the Prometheus one).
// This keeps the composer and integrations packages free of any
// metrics dependency and avoids import cycles.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetInspectorHooks(recorder)
//	    observability.SetHTTPHooks(recorder)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Inspector().OnSyncStart(ctx, root, sessionID)
//	// ... run update check ...
//	observability.Inspector().OnSyncComplete(ctx, root, sessionID, outdated, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Inspector Hooks
// =============================================================================

// InspectorHooks receives events from Composer update checks.
type InspectorHooks interface {
	OnSyncStart(ctx context.Context, root, sessionID string)
	OnSyncComplete(ctx context.Context, root, sessionID string, outdated int, duration time.Duration, err error)
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
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from registry HTTP calls.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopInspectorHooks is a no-op implementation of InspectorHooks.
type NoopInspectorHooks struct{}

func (NoopInspectorHooks) OnSyncStart(context.Context, string, string) {}
func (NoopInspectorHooks) OnSyncComplete(context.Context, string, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	inspectorHooks InspectorHooks = NoopInspectorHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetInspectorHooks registers custom inspector hooks.
// This should be called once at application startup.
func SetInspectorHooks(h InspectorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		inspectorHooks = h
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

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Inspector returns the registered inspector hooks.
func Inspector() InspectorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return inspectorHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	inspectorHooks = NoopInspectorHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
