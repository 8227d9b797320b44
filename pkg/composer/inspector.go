package composer

import (
	"context"
	"encoding/json"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/storekit/pkg/cache"
	"github.com/matzehuels/storekit/pkg/observability"
)

// DefaultReportTTL is how long a persisted update report stays valid.
const DefaultReportTTL = 24 * time.Hour

const extPrefix = "ext-"

// RequiredPackage is a root requirement's type and version constraint.
type RequiredPackage struct {
	Type    string `json:"type"`
	Version string `json:"version"`
}

// Inspector answers questions about one project's Composer manifests.
type Inspector struct {
	root         string
	manifestPath string
	lockPath     string

	finder    Finder
	logger    *log.Logger
	cache     cache.Cache
	keyer     cache.Keyer
	checker   UpdateChecker
	reportTTL time.Duration
	sessionID string

	mu     sync.Mutex
	report UpdateReport
	synced bool
}

// Option configures an [Inspector].
type Option func(*Inspector)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(i *Inspector) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithCache persists update reports in c.
func WithCache(c cache.Cache) Option {
	return func(i *Inspector) {
		if c != nil {
			i.cache = c
		}
	}
}

// WithKeyer sets the key layout used for persisted reports.
func WithKeyer(k cache.Keyer) Option {
	return func(i *Inspector) {
		if k != nil {
			i.keyer = k
		}
	}
}

// WithChecker sets the registry update checker used by SyncPackagesForUpdate.
func WithChecker(c UpdateChecker) Option {
	return func(i *Inspector) { i.checker = c }
}

// WithReportTTL sets how long persisted reports stay valid.
func WithReportTTL(d time.Duration) Option {
	return func(i *Inspector) {
		if d > 0 {
			i.reportTTL = d
		}
	}
}

// WithFinder overrides manifest file lookup.
func WithFinder(f Finder) Option {
	return func(i *Inspector) { i.finder = f }
}

// NewInspector binds an inspector to the project at root. It fails with a
// MANIFEST_NOT_FOUND error when root has no manifest.
func NewInspector(root string, opts ...Option) (*Inspector, error) {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	i := &Inspector{
		root:      root,
		logger:    log.New(io.Discard),
		cache:     cache.Disabled{},
		keyer:     cache.NewDefaultKeyer(),
		reportTTL: DefaultReportTTL,
		sessionID: uuid.NewString(),
		report:    emptyReport(),
	}
	for _, opt := range opts {
		opt(i)
	}

	path, err := i.finder.ManifestPath(root)
	if err != nil {
		return nil, err
	}
	i.manifestPath = path
	i.lockPath = i.finder.LockPath(root)

	i.warm(context.Background())
	return i, nil
}

// Root returns the absolute project root.
func (i *Inspector) Root() string { return i.root }

// ManifestPath returns the resolved composer.json path.
func (i *Inspector) ManifestPath() string { return i.manifestPath }

// SessionID identifies this inspection session in logs and hooks.
func (i *Inspector) SessionID() string { return i.sessionID }

func (i *Inspector) load() (*Manifest, *Lock, error) {
	m, err := readManifest(i.manifestPath)
	if err != nil {
		return nil, nil, err
	}
	lock, err := readLock(i.lockPath)
	if err != nil {
		return nil, nil, err
	}
	return m, lock, nil
}

// RequiredPHPVersion returns the root "php" constraint verbatim. Without
// one it falls back to the platform constraint recorded in the lock file,
// and to "" when neither exists.
func (i *Inspector) RequiredPHPVersion() (string, error) {
	m, lock, err := i.load()
	if err != nil {
		return "", err
	}
	if v, ok := m.Require["php"]; ok {
		return v, nil
	}
	return lock.Platform["php"], nil
}

// RequiredExtensions returns the PHP extensions required by the root
// manifest and the lock platform section, without the "ext-" prefix.
func (i *Inspector) RequiredExtensions() ([]string, error) {
	m, lock, err := i.load()
	if err != nil {
		return nil, err
	}
	var exts []string
	for _, reqs := range []map[string]string{m.Require, map[string]string(lock.Platform)} {
		for name := range reqs {
			if ext, ok := strings.CutPrefix(strings.ToLower(name), extPrefix); ok && ext != "" {
				exts = append(exts, ext)
			}
		}
	}
	slices.Sort(exts)
	return slices.Compact(exts), nil
}

// RootRequiredPackageTypesByName maps each required package to its type.
// Platform requirements are excluded.
func (i *Inspector) RootRequiredPackageTypesByName() (map[string]string, error) {
	m, lock, err := i.load()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, p := range InstalledPackages(m, lock) {
		out[p.Name] = p.Type
	}
	return out, nil
}

// RootRequiredPackageTypesByNameVersion maps each required package to its
// type and root version constraint.
func (i *Inspector) RootRequiredPackageTypesByNameVersion() (map[string]RequiredPackage, error) {
	m, lock, err := i.load()
	if err != nil {
		return nil, err
	}
	out := make(map[string]RequiredPackage)
	for _, p := range InstalledPackages(m, lock) {
		out[p.Name] = RequiredPackage{Type: p.Type, Version: p.Constraint}
	}
	return out, nil
}

// SyncPackagesForUpdate runs the registry update check and replaces the
// stored report with its result. It reports whether the check succeeded;
// on failure the stored report is left empty. The check is not retried.
func (i *Inspector) SyncPackagesForUpdate(ctx context.Context) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.report = emptyReport()
	i.synced = false
	key := i.keyer.ReportKey(i.root)

	hooks := observability.Inspector()
	hooks.OnSyncStart(ctx, i.root, i.sessionID)
	start := time.Now()

	report, err := i.check(ctx)
	hooks.OnSyncComplete(ctx, i.root, i.sessionID, len(report.Packages), time.Since(start), err)
	if err != nil {
		i.logger.Warn("update check failed", "root", i.root, "session", i.sessionID, "error", err)
		if derr := i.cache.Delete(ctx, key); derr != nil {
			i.logger.Debug("drop cached report", "error", derr)
		}
		return false
	}

	i.report = report
	i.synced = true
	i.logger.Info("update check complete", "root", i.root, "outdated", len(report.Packages), "elapsed", time.Since(start).Round(time.Millisecond))

	data, err := json.Marshal(report)
	if err != nil {
		i.logger.Debug("encode update report", "error", err)
		return true
	}
	if err := i.cache.Set(ctx, key, data, i.reportTTL); err != nil {
		i.logger.Warn("persist update report", "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "report", len(data))
	}
	return true
}

func (i *Inspector) check(ctx context.Context) (UpdateReport, error) {
	if i.checker == nil {
		return emptyReport(), errNoChecker
	}
	if err := ctx.Err(); err != nil {
		return emptyReport(), err
	}
	digest := i.digest()
	m, lock, err := i.load()
	if err != nil {
		return emptyReport(), err
	}
	raw, err := i.checker.CheckForUpdates(ctx, m, lock)
	if err != nil {
		return emptyReport(), err
	}
	if raw == nil {
		raw = &UpdateReport{}
	}
	report := raw.clone()
	report.SessionID = i.sessionID
	report.Digest = digest
	if report.CheckedAt.IsZero() {
		report.CheckedAt = time.Now().UTC()
	}
	return report, nil
}

// PackagesForUpdate returns a copy of the report from the last successful
// sync. Before any sync, or after a failed one, the report has no packages.
func (i *Inspector) PackagesForUpdate() UpdateReport {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := i.report
	out.Packages = maps.Clone(i.report.Packages)
	return out
}

// Synced reports whether the inspector holds a successful update report.
func (i *Inspector) Synced() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.synced
}

// digest fingerprints the current manifest and lock contents.
func (i *Inspector) digest() string {
	m, _ := os.ReadFile(i.manifestPath)
	lock, _ := os.ReadFile(i.lockPath)
	return cache.Hash(append(append(m, 0), lock...))
}

// warm restores a persisted report for this root if it is fresh and was
// computed from the current manifest and lock files.
func (i *Inspector) warm(ctx context.Context) {
	key := i.keyer.ReportKey(i.root)
	data, ok, err := i.cache.Get(ctx, key)
	if err != nil {
		i.logger.Debug("load cached report", "error", err)
		return
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, "report")
		return
	}
	var report UpdateReport
	if err := json.Unmarshal(data, &report); err != nil {
		i.logger.Debug("decode cached report", "error", err)
		return
	}
	if report.Digest != i.digest() {
		i.logger.Debug("cached report is stale", "root", i.root)
		if err := i.cache.Delete(ctx, key); err != nil {
			i.logger.Debug("drop cached report", "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, "report")
		return
	}
	observability.Cache().OnCacheHit(ctx, "report")
	i.report = report.clone()
	i.synced = true
	i.logger.Debug("restored update report", "root", i.root, "checked_at", report.CheckedAt)
}

func emptyReport() UpdateReport {
	return UpdateReport{Packages: map[string]PackageUpdate{}}
}
