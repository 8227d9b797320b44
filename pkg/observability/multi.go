package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// MultiInspectorHooks forwards every event to each hook in order.
type MultiInspectorHooks []InspectorHooks

func (m MultiInspectorHooks) OnSyncStart(ctx context.Context, root, sessionID string) {
	for _, h := range m {
		h.OnSyncStart(ctx, root, sessionID)
	}
}

func (m MultiInspectorHooks) OnSyncComplete(ctx context.Context, root, sessionID string, outdated int, d time.Duration, err error) {
	for _, h := range m {
		h.OnSyncComplete(ctx, root, sessionID, outdated, d, err)
	}
}

// LogInspectorHooks writes sync events to a logger at debug level, and
// failures at warn level.
type LogInspectorHooks struct {
	Logger *log.Logger
}

func (h LogInspectorHooks) OnSyncStart(_ context.Context, root, sessionID string) {
	h.Logger.Debug("update check started", "root", root, "session", sessionID)
}

func (h LogInspectorHooks) OnSyncComplete(_ context.Context, root, sessionID string, outdated int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("update check failed", "root", root, "session", sessionID, "elapsed", d.Round(time.Millisecond), "error", err)
		return
	}
	h.Logger.Debug("update check finished", "root", root, "session", sessionID, "outdated", outdated, "elapsed", d.Round(time.Millisecond))
}
