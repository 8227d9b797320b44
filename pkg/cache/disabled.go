package cache

import (
	"context"
	"time"
)

// Disabled stands in for a real backend when caching is off, either because
// the user asked for it or because no backend could be opened. Lookups
// always miss and writes are dropped, so callers never branch on "no cache".
type Disabled struct {
	Reason string // shown in debug logs, e.g. "--no-cache"
}

func (Disabled) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (Disabled) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Disabled) Delete(context.Context, string) error                     { return nil }
func (Disabled) Close() error                                             { return nil }

func (d Disabled) String() string {
	if d.Reason == "" {
		return "cache disabled"
	}
	return "cache disabled: " + d.Reason
}
