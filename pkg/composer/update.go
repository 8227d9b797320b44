package composer

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/matzehuels/storekit/pkg/errors"
	"github.com/matzehuels/storekit/pkg/version"
)

var errNoChecker = errors.New(errors.ErrCodeInternal, "no update checker configured")

// PackageUpdate describes an installed package with a newer release.
type PackageUpdate struct {
	Name             string `json:"name"`
	InstalledVersion string `json:"installed_version"`
	LatestVersion    string `json:"latest_version"`
}

// UpdateReport is the result of an update check.
type UpdateReport struct {
	Packages  map[string]PackageUpdate `json:"packages"`
	CheckedAt time.Time                `json:"checked_at"`
	SessionID string                   `json:"session_id,omitempty"`
	Digest    string                   `json:"digest,omitempty"` // manifest and lock fingerprint
}

// Names returns the package names in the report, sorted.
func (r UpdateReport) Names() []string {
	return slices.Sorted(maps.Keys(r.Packages))
}

// clone returns a deep copy keeping only strictly newer entries.
func (r UpdateReport) clone() UpdateReport {
	out := UpdateReport{
		Packages:  make(map[string]PackageUpdate, len(r.Packages)),
		CheckedAt: r.CheckedAt,
		SessionID: r.SessionID,
		Digest:    r.Digest,
	}
	for name, p := range r.Packages {
		if !version.IsNewer(p.LatestVersion, p.InstalledVersion) {
			continue
		}
		if p.Name == "" {
			p.Name = name
		}
		out.Packages[name] = p
	}
	return out
}

// UpdateChecker looks up the latest available versions for a project's
// required packages. Implementations call out to a package registry.
type UpdateChecker interface {
	CheckForUpdates(ctx context.Context, m *Manifest, lock *Lock) (*UpdateReport, error)
}

// UpdateCheckerFunc adapts a function to [UpdateChecker].
type UpdateCheckerFunc func(ctx context.Context, m *Manifest, lock *Lock) (*UpdateReport, error)

// CheckForUpdates calls f.
func (f UpdateCheckerFunc) CheckForUpdates(ctx context.Context, m *Manifest, lock *Lock) (*UpdateReport, error) {
	return f(ctx, m, lock)
}

// InstalledPackage is a root requirement together with the version
// currently installed.
type InstalledPackage struct {
	Name       string
	Constraint string
	Version    string // locked version, or the lowest version the constraint names
	Type       string
	Locked     bool
}

// InstalledPackages lists the non-platform root requirements of m, sorted
// by name. The installed version comes from lock when the package is
// locked and from the constraint otherwise.
func InstalledPackages(m *Manifest, lock *Lock) []InstalledPackage {
	if m == nil {
		return nil
	}
	out := make([]InstalledPackage, 0, len(m.Require))
	for _, name := range slices.Sorted(maps.Keys(m.Require)) {
		if IsPlatformRequirement(name) {
			continue
		}
		p := InstalledPackage{
			Name:       name,
			Constraint: m.Require[name],
			Type:       DefaultPackageType,
		}
		if locked, ok := lock.Find(name); ok {
			p.Version = locked.Version
			p.Locked = true
			if locked.Type != "" {
				p.Type = locked.Type
			}
		} else {
			p.Version = version.FromConstraint(p.Constraint)
		}
		out = append(out, p)
	}
	return out
}
