package composer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/storekit/pkg/errors"
	"github.com/matzehuels/storekit/pkg/version"
)

func TestIsPlatformRequirement(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"php", true},
		{"PHP", true},
		{"php-64bit", true},
		{"ext-intl", true},
		{"lib-libxml", true},
		{"composer-plugin-api", true},
		{"composer-runtime-api", true},
		{"composer/composer", false},
		{"phpunit/phpunit", false},
		{"monolog/monolog", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPlatformRequirement(tt.name))
		})
	}
}

func TestLockFind(t *testing.T) {
	lock := &Lock{
		Packages:    []LockedPackage{{Name: "Monolog/Monolog", Version: "2.9.1", Type: "library"}},
		PackagesDev: []LockedPackage{{Name: "phpunit/phpunit", Version: "10.5.0", Type: "library"}},
	}

	p, ok := lock.Find("monolog/monolog")
	require.True(t, ok)
	assert.Equal(t, "2.9.1", p.Version)

	_, ok = lock.Find("phpunit/phpunit")
	assert.True(t, ok)

	_, ok = lock.Find("acme/missing")
	assert.False(t, ok)

	var nilLock *Lock
	_, ok = nilLock.Find("monolog/monolog")
	assert.False(t, ok)
}

func TestReadManifestInvalidJSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "composer.json", `{"require": `)
	_, err := readManifest(filepath.Join(root, "composer.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidManifest))
}

func TestReadLockMissingIsEmpty(t *testing.T) {
	lock, err := readLock(filepath.Join(t.TempDir(), "composer.lock"))
	require.NoError(t, err)
	assert.Empty(t, lock.Packages)
}

func TestReadLockEmptyPlatformArray(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "composer.lock", `{"packages": [], "platform": [], "platform-dev": []}`)
	lock, err := readLock(filepath.Join(root, "composer.lock"))
	require.NoError(t, err)
	assert.Empty(t, lock.Platform)
}

func TestFinder(t *testing.T) {
	t.Setenv(ManifestEnv, "")
	root := t.TempDir()

	var f Finder
	_, err := f.ManifestPath(root)
	assert.True(t, IsManifestNotFound(err))

	require.NoError(t, os.Mkdir(filepath.Join(root, "composer.json"), 0o755))
	_, err = f.ManifestPath(root)
	assert.True(t, IsManifestNotFound(err), "a directory is not a manifest")

	other := t.TempDir()
	writeFile(t, other, "composer.json", `{}`)
	path, err := f.ManifestPath(other)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(other, "composer.json"), path)
	assert.Equal(t, filepath.Join(other, "composer.lock"), f.LockPath(other))
}

func TestFinderHonorsEnv(t *testing.T) {
	t.Setenv(ManifestEnv, "composer-dev.json")
	root := t.TempDir()
	writeFile(t, root, "composer-dev.json", `{}`)

	var f Finder
	path, err := f.ManifestPath(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "composer-dev.json"), path)
	assert.Equal(t, filepath.Join(root, "composer-dev.lock"), f.LockPath(root))
}

func TestInstalledPackages(t *testing.T) {
	m := &Manifest{Require: map[string]string{
		"php":             "^8.1",
		"ext-json":        "*",
		"monolog/monolog": "^2.0",
		"acme/widgets":    "~1.4.2",
	}}
	lock := &Lock{Packages: []LockedPackage{{Name: "monolog/monolog", Version: "2.9.1", Type: "library"}}}

	got := InstalledPackages(m, lock)
	require.Len(t, got, 2)
	assert.Equal(t, InstalledPackage{Name: "acme/widgets", Constraint: "~1.4.2", Version: "1.4.2", Type: DefaultPackageType}, got[0])
	assert.Equal(t, InstalledPackage{Name: "monolog/monolog", Constraint: "^2.0", Version: "2.9.1", Type: "library", Locked: true}, got[1])

	assert.Nil(t, InstalledPackages(nil, lock))
}

func compareForTest(t *testing.T, a, b string) int {
	t.Helper()
	c, err := version.Compare(a, b)
	require.NoError(t, err)
	return c
}
