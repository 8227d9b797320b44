// Package version compares Composer package versions.
//
// Composer accepts versions semver cannot parse directly: a "v" prefix,
// four numeric components, unseparated stability suffixes ("1.0.0-alpha10",
// "2.1.0RC1") and patch-level releases ("1.2.3-p1") that sort after the
// stable release. [Parse] normalizes these and delegates the core ordering,
// including pre-release identifiers, to Masterminds/semver.
//
// Ordering within one numeric version is dev < alpha < beta < RC < stable < patch.
// Branch versions such as "dev-master" or "2.x-dev" do not parse; use
// [CompareLoose] to fall back to a lexicographic comparison for them.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/storekit/pkg/errors"
)

// Version is a parsed Composer version.
type Version struct {
	raw    string
	sem    *semver.Version
	fourth uint64
	patch  int // patch-level release number; 0 when not a patch release
}

var versionRegex = regexp.MustCompile(`^(\d+(?:\.\d+){0,3})(?:[-_.]?(alpha|a|beta|b|rc|pl|p|patch|stable)[.-]?(\d*))?$`)

// Parse normalizes a Composer version string.
func Parse(raw string) (*Version, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "v")
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s = s[:i]
	}

	m := versionRegex.FindStringSubmatch(s)
	if m == nil {
		return nil, errors.New(errors.ErrCodeInvalidVersion, "invalid version %q", raw)
	}

	parts := strings.Split(m[1], ".")
	nums := make([]uint64, 4)
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidVersion, err, "invalid version %q", raw)
		}
		nums[i] = n
	}

	v := &Version{raw: raw, fourth: nums[3]}
	core := fmt.Sprintf("%d.%d.%d", nums[0], nums[1], nums[2])

	switch stability, num := m[2], m[3]; stability {
	case "", "stable":
	case "p", "pl", "patch":
		v.patch = 1
		if num != "" {
			v.patch, _ = strconv.Atoi(num)
		}
	default:
		core += "-" + prerelease(stability, num)
	}

	sem, err := semver.NewVersion(core)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidVersion, err, "invalid version %q", raw)
	}
	v.sem = sem
	return v, nil
}

// prerelease builds a semver pre-release tag whose lexical order matches
// Composer's stability order (alpha < beta < rc).
func prerelease(stability, num string) string {
	switch stability {
	case "a":
		stability = "alpha"
	case "b":
		stability = "beta"
	}
	if num == "" {
		return stability
	}
	return stability + "." + num
}

// String returns the version as originally written.
func (v *Version) String() string { return v.raw }

// Stable reports whether v is neither a pre-release nor a branch.
func (v *Version) Stable() bool { return v.sem.Prerelease() == "" }

// Compare returns -1, 0 or 1 when v is lower than, equal to, or greater than o.
func (v *Version) Compare(o *Version) int {
	a, b := v.sem, o.sem
	for _, pair := range [][2]uint64{
		{a.Major(), b.Major()},
		{a.Minor(), b.Minor()},
		{a.Patch(), b.Patch()},
		{v.fourth, o.fourth},
	} {
		if pair[0] != pair[1] {
			if pair[0] < pair[1] {
				return -1
			}
			return 1
		}
	}

	if c := a.Compare(b); c != 0 {
		return c
	}

	switch {
	case v.patch < o.patch:
		return -1
	case v.patch > o.patch:
		return 1
	}
	return 0
}

// Compare parses and compares two version strings.
// Returns an error if either version is invalid.
func Compare(v1, v2 string) (int, error) {
	a, err := Parse(v1)
	if err != nil {
		return 0, err
	}
	b, err := Parse(v2)
	if err != nil {
		return 0, err
	}
	return a.Compare(b), nil
}

// CompareLoose compares like [Compare] and falls back to a lexicographic
// comparison when either version cannot be parsed.
func CompareLoose(v1, v2 string) int {
	if c, err := Compare(v1, v2); err == nil {
		return c
	}
	return strings.Compare(v1, v2)
}

// IsNewer reports whether latest is strictly greater than installed.
// Either side being empty means the versions cannot be compared, which is
// never newer.
func IsNewer(latest, installed string) bool {
	if latest == "" || installed == "" {
		return false
	}
	return CompareLoose(latest, installed) > 0
}

// FindMax returns the greatest parsable version in versions.
// If stableOnly is set, pre-releases are skipped. Returns "" when nothing qualifies.
func FindMax(versions []string, stableOnly bool) string {
	var best *Version
	for _, raw := range versions {
		v, err := Parse(raw)
		if err != nil {
			continue
		}
		if stableOnly && !v.Stable() {
			continue
		}
		if best == nil || v.Compare(best) > 0 {
			best = v
		}
	}
	if best == nil {
		return ""
	}
	return best.raw
}

var constraintOps = strings.NewReplacer("^", "", "~", "", ">", "", "<", "", "=", "", "!", "", "@", " ")

// FromConstraint extracts the lowest concrete version a constraint names,
// e.g. "~5.5.0|~5.6.0" yields "5.5.0". Wildcards yield "".
func FromConstraint(constraint string) string {
	c := strings.TrimSpace(constraint)
	if i := strings.IndexByte(c, '|'); i >= 0 {
		c = c[:i]
	}
	c = constraintOps.Replace(c)
	fields := strings.FieldsFunc(c, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) == 0 {
		return ""
	}
	v := fields[0]
	if strings.ContainsAny(v, "*x") && !strings.HasPrefix(v, "dev-") {
		return strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(v, "*"), "x"), ".")
	}
	return v
}
