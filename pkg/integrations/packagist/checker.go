package packagist

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storekit/pkg/composer"
	"github.com/matzehuels/storekit/pkg/errors"
	"github.com/matzehuels/storekit/pkg/version"
)

const defaultConcurrency = 8

// UpdateChecker implements [composer.UpdateChecker] against Packagist.
type UpdateChecker struct {
	client      *Client
	logger      *log.Logger
	refresh     bool
	concurrency int
}

// CheckerOption configures an [UpdateChecker].
type CheckerOption func(*UpdateChecker)

// WithLogger sets the logger for per-package failures.
func WithLogger(l *log.Logger) CheckerOption {
	return func(u *UpdateChecker) {
		if l != nil {
			u.logger = l
		}
	}
}

// WithRefresh bypasses cached registry responses.
func WithRefresh(refresh bool) CheckerOption {
	return func(u *UpdateChecker) { u.refresh = refresh }
}

// WithConcurrency limits parallel registry requests.
func WithConcurrency(n int) CheckerOption {
	return func(u *UpdateChecker) {
		if n > 0 {
			u.concurrency = n
		}
	}
}

// NewUpdateChecker creates an update checker using client.
func NewUpdateChecker(client *Client, opts ...CheckerOption) *UpdateChecker {
	u := &UpdateChecker{
		client:      client,
		logger:      log.New(io.Discard),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// CheckForUpdates fetches the latest release of every non-platform root
// requirement and reports those newer than the installed version.
//
// Packages whose installed version cannot be determined, such as an
// unlocked "*" requirement, are not checked. A package that cannot be
// fetched is logged and skipped. The check fails
// when the context ends or when no package could be fetched at all.
func (u *UpdateChecker) CheckForUpdates(ctx context.Context, m *composer.Manifest, lock *composer.Lock) (*composer.UpdateReport, error) {
	var installed []composer.InstalledPackage
	for _, p := range composer.InstalledPackages(m, lock) {
		if p.Version == "" {
			u.logger.Debug("skip package without installed version", "package", p.Name, "constraint", p.Constraint)
			continue
		}
		installed = append(installed, p)
	}
	report := &composer.UpdateReport{
		Packages:  make(map[string]composer.PackageUpdate),
		CheckedAt: time.Now().UTC(),
	}
	if len(installed) == 0 {
		return report, nil
	}

	type result struct {
		info *PackageInfo
		err  error
	}
	results := make([]result, len(installed))
	var wg sync.WaitGroup
	sem := make(chan struct{}, u.concurrency)

	for i, p := range installed {
		wg.Add(1)
		go func(idx int, name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			info, err := u.client.FetchPackage(ctx, name, u.refresh)
			results[idx] = result{info: info, err: err}
		}(i, p.Name)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var failed int
	var lastErr error
	for i, p := range installed {
		r := results[i]
		if r.err != nil {
			failed++
			lastErr = r.err
			u.logger.Warn("skip package", "package", p.Name, "error", r.err)
			continue
		}
		if !version.IsNewer(r.info.Version, p.Version) {
			continue
		}
		report.Packages[p.Name] = composer.PackageUpdate{
			Name:             p.Name,
			InstalledVersion: p.Version,
			LatestVersion:    r.info.Version,
		}
	}

	if failed == len(installed) {
		return nil, errors.Wrap(errors.ErrCodeNetwork, lastErr, "no package could be checked against packagist")
	}
	return report, nil
}
