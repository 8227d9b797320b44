package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/storekit/pkg/composer"
	pkgerrors "github.com/matzehuels/storekit/pkg/errors"
)

const skeleton = "../../pkg/composer/testdata/testSkeleton"

// newRegistry serves Packagist p2 metadata for composer/composer only.
func newRegistry(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/p2/composer/composer.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"packages": {"composer/composer": [
			{"name": "composer/composer", "version": "2.7.7", "type": "library"},
			{"name": "composer/composer", "version": "1.0.0-alpha10", "type": "library"}
		]}}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestComposerPHP(t *testing.T) {
	out := captureOutput(t)
	if err := runCommand(t, "composer", "php", skeleton, "--no-cache"); err != nil {
		t.Fatalf("composer php: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "~5.5.0|~5.6.0" {
		t.Errorf("composer php = %q", got)
	}
}

func TestComposerExtensions(t *testing.T) {
	out := captureOutput(t)
	if err := runCommand(t, "composer", "extensions", skeleton, "--no-cache"); err != nil {
		t.Fatalf("composer extensions: %v", err)
	}
	got := strings.Fields(out.String())
	want := []string{"ctype", "curl", "dom", "gd", "hash", "iconv", "intl", "mcrypt", "simplexml", "spl"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("composer extensions = %v, want %v", got, want)
	}
}

func TestComposerPackages(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"types", nil, []string{"metapackage", "magento/product-community-edition", "library", "composer/composer"}},
		{"versions", []string{"--versions"}, []string{"composer/composer", "1.0.0-alpha10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureOutput(t)
			args := append([]string{"composer", "packages", skeleton, "--no-cache"}, tt.args...)
			if err := runCommand(t, args...); err != nil {
				t.Fatalf("composer packages: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out.String(), w) {
					t.Errorf("output missing %q:\n%s", w, out.String())
				}
			}
			if strings.Contains(out.String(), "ext-") || strings.Contains(out.String(), "php ") {
				t.Errorf("platform requirements listed:\n%s", out.String())
			}
		})
	}
}

func TestComposerManifestNotFound(t *testing.T) {
	captureOutput(t)
	err := runCommand(t, "composer", "php", t.TempDir(), "--no-cache")
	if !composer.IsManifestNotFound(err) {
		t.Errorf("error = %v, want manifest not found", err)
	}
}

func TestComposerOutdated(t *testing.T) {
	srv, _ := newRegistry(t)
	out := captureOutput(t)

	err := runCommand(t, "composer", "outdated", skeleton, "--no-cache", "--registry", srv.URL)
	if err != nil {
		t.Fatalf("composer outdated: %v", err)
	}
	for _, w := range []string{"composer/composer", "1.0.0-alpha10", "2.7.7", "fresh"} {
		if !strings.Contains(out.String(), w) {
			t.Errorf("output missing %q:\n%s", w, out.String())
		}
	}
	if strings.Contains(out.String(), "magento/product-community-edition") {
		t.Errorf("package without registry entry listed:\n%s", out.String())
	}
}

func TestComposerOutdatedCachedReport(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	srv, hits := newRegistry(t)
	root, err := filepath.Abs(skeleton)
	if err != nil {
		t.Fatal(err)
	}

	captureOutput(t)
	if err := runCommand(t, "composer", "outdated", root, "--registry", srv.URL); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := hits.Load()
	if first == 0 {
		t.Fatal("first run did not query the registry")
	}

	out := captureOutput(t)
	if err := runCommand(t, "composer", "outdated", root, "--registry", srv.URL); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if hits.Load() != first {
		t.Errorf("cached run queried the registry: %d hits, want %d", hits.Load(), first)
	}
	if !strings.Contains(out.String(), "cached") || !strings.Contains(out.String(), "2.7.7") {
		t.Errorf("cached run output:\n%s", out.String())
	}
}

func TestComposerOutdatedCacheScopes(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	srv, hits := newRegistry(t)
	root, err := filepath.Abs(skeleton)
	if err != nil {
		t.Fatal(err)
	}
	run := func(scope string) string {
		t.Helper()
		out := captureOutput(t)
		if err := runCommand(t, "composer", "outdated", root, "--registry", srv.URL, "--cache-scope", scope); err != nil {
			t.Fatalf("outdated --cache-scope %s: %v", scope, err)
		}
		return out.String()
	}

	run("default")
	afterDefault := hits.Load()
	if afterDefault == 0 {
		t.Fatal("first run did not query the registry")
	}

	run("b2b")
	afterB2B := hits.Load()
	if afterB2B == afterDefault {
		t.Error("second scope reused the first scope's cache")
	}

	out := run("default")
	if hits.Load() != afterB2B {
		t.Errorf("rerun in the first scope queried the registry: %d hits, want %d", hits.Load(), afterB2B)
	}
	if !strings.Contains(out, "cached") {
		t.Errorf("rerun in the first scope did not use the cached report:\n%s", out)
	}
}

func TestComposerOutdatedRegistryFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	captureOutput(t)

	err := runCommand(t, "composer", "outdated", skeleton, "--no-cache", "--registry", srv.URL)
	if err == nil || !strings.Contains(err.Error(), "update check failed") {
		t.Errorf("error = %v, want update check failure", err)
	}
}

func TestSyncOnceCanceled(t *testing.T) {
	captureOutput(t)
	c := New(&bytes.Buffer{}, LogInfo)
	insp := newTestInspector(t, outdatedChecker)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.syncOnce(ctx, insp, time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("syncOnce() error = %v, want context.Canceled", err)
	}
}

func TestSyncOnceTimeout(t *testing.T) {
	captureOutput(t)
	c := New(&bytes.Buffer{}, LogInfo)
	insp := newTestInspector(t, func(ctx context.Context, _ *composer.Manifest, _ *composer.Lock) (*composer.UpdateReport, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	err := c.syncOnce(context.Background(), insp, 20*time.Millisecond)
	if pkgerrors.GetCode(err) != pkgerrors.ErrCodeTimeout {
		t.Errorf("syncOnce() error = %v, want code %s", err, pkgerrors.ErrCodeTimeout)
	}
	if errors.Is(err, context.Canceled) {
		t.Error("timeout must not look like an interrupt")
	}
}
