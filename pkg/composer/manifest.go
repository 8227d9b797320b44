package composer

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/matzehuels/storekit/pkg/errors"
)

// DefaultPackageType is Composer's type for packages that declare none.
const DefaultPackageType = "library"

// Manifest is the subset of composer.json the inspector reads.
type Manifest struct {
	Name        string            `json:"name"`
	Type        string            `json:"type"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Require     map[string]string `json:"require"`
	RequireDev  map[string]string `json:"require-dev"`
	Extra       map[string]any    `json:"extra"`
}

// Lock is the subset of composer.lock the inspector reads.
type Lock struct {
	Packages    []LockedPackage `json:"packages"`
	PackagesDev []LockedPackage `json:"packages-dev"`
	Platform    Platform        `json:"platform"`
	PlatformDev Platform        `json:"platform-dev"`
}

// Platform holds the platform requirements recorded in composer.lock.
type Platform map[string]string

// UnmarshalJSON accepts the empty array composer writes for an empty section.
func (p *Platform) UnmarshalJSON(data []byte) error {
	if trimmed := strings.TrimSpace(string(data)); trimmed == "[]" || trimmed == "null" {
		*p = nil
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*p = m
	return nil
}

// LockedPackage is one installed package recorded in composer.lock.
type LockedPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Type    string `json:"type"`
}

// Find returns the locked package named name. Names compare case-insensitively.
// A nil Lock finds nothing.
func (l *Lock) Find(name string) (LockedPackage, bool) {
	if l == nil {
		return LockedPackage{}, false
	}
	for _, set := range [][]LockedPackage{l.Packages, l.PackagesDev} {
		for _, p := range set {
			if strings.EqualFold(p.Name, name) {
				return p, true
			}
		}
	}
	return LockedPackage{}, false
}

// IsPlatformRequirement reports whether name refers to the PHP runtime or
// an extension/library of it rather than an installable package.
func IsPlatformRequirement(name string) bool {
	ln := strings.ToLower(name)
	switch {
	case ln == "php" || strings.HasPrefix(ln, "php-"):
		return true
	case strings.HasPrefix(ln, "ext-") || strings.HasPrefix(ln, "lib-"):
		return true
	case ln == "composer-plugin-api" || ln == "composer-runtime-api" || ln == "composer":
		return true
	}
	return false
}

func readManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, manifestNotFound(path, err)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read %s", path)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", path)
	}
	return &m, nil
}

// readLock returns an empty Lock when the file does not exist.
func readLock(path string) (*Lock, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Lock{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read %s", path)
	}

	var l Lock
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", path)
	}
	return &l, nil
}
