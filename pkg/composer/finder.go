package composer

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/storekit/pkg/errors"
)

// DefaultManifestName is the manifest file name looked up in a project root.
const DefaultManifestName = "composer.json"

// ManifestEnv overrides the manifest file name, as the composer CLI does.
const ManifestEnv = "COMPOSER"

// Finder resolves manifest and lock paths for a project root.
type Finder struct {
	Name string // manifest file name; empty means $COMPOSER or composer.json
}

func (f Finder) name() string {
	if f.Name != "" {
		return f.Name
	}
	if env := strings.TrimSpace(os.Getenv(ManifestEnv)); env != "" {
		return env
	}
	return DefaultManifestName
}

// ManifestPath returns the manifest path under root. It fails with
// MANIFEST_NOT_FOUND when no regular file exists there.
func (f Finder) ManifestPath(root string) (string, error) {
	path := filepath.Join(root, f.name())
	info, err := os.Stat(path)
	if err != nil {
		return "", manifestNotFound(path, err)
	}
	if info.IsDir() {
		return "", manifestNotFound(path, nil)
	}
	return path, nil
}

// LockPath returns the lock file path matching the manifest under root:
// composer.json pairs with composer.lock.
func (f Finder) LockPath(root string) string {
	name := f.name()
	return filepath.Join(root, strings.TrimSuffix(name, filepath.Ext(name))+".lock")
}

// ErrManifestNotFound is the cause of every MANIFEST_NOT_FOUND error
// returned by this package.
var ErrManifestNotFound = stderrors.New("composer file not found")

func manifestNotFound(path string, cause error) error {
	c := ErrManifestNotFound
	if cause != nil && !os.IsNotExist(cause) {
		c = stderrors.Join(ErrManifestNotFound, cause)
	}
	return errors.Wrap(errors.ErrCodeManifestNotFound, c, "Composer file not found: %s", path)
}

// IsManifestNotFound reports whether err is a MANIFEST_NOT_FOUND error.
func IsManifestNotFound(err error) bool {
	return errors.Is(err, errors.ErrCodeManifestNotFound) || stderrors.Is(err, ErrManifestNotFound)
}
