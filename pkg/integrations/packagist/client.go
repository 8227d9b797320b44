package packagist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/storekit/pkg/cache"
	pkgerrors "github.com/matzehuels/storekit/pkg/errors"
	"github.com/matzehuels/storekit/pkg/integrations"
	"github.com/matzehuels/storekit/pkg/version"
)

// DefaultBaseURL is the public Packagist metadata endpoint.
const DefaultBaseURL = "https://repo.packagist.org"

// PackageInfo holds metadata for a PHP package from Packagist.
//
// Version is the greatest stable release; when a package has no stable
// release the greatest pre-release is used instead. Branch versions
// (dev-*) are never selected.
type PackageInfo struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Versions    []string `json:"versions,omitempty"`
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	HomePage    string   `json:"homepage,omitempty"`
	Repository  string   `json:"repository,omitempty"`
	License     string   `json:"license,omitempty"`
}

// Client provides access to the Packagist package registry API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL points the client at a Packagist-compatible mirror.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.SetHTTPClient(h) }
}

// WithKeyer sets the cache key layout.
func WithKeyer(k cache.Keyer) Option {
	return func(c *Client) { c.SetKeyer(k) }
}

// NewClient creates a Packagist client caching responses in c for cacheTTL.
// A nil cache disables caching.
func NewClient(c cache.Cache, cacheTTL time.Duration, opts ...Option) *Client {
	client := &Client{
		Client:  integrations.NewClient(c, "packagist", cacheTTL, nil),
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// FetchPackage retrieves metadata for a PHP package from Packagist.
//
// The pkg parameter must be in "vendor/package" format (e.g., "symfony/console");
// it is lowercased before the lookup. If refresh is true, the cache is bypassed.
//
// Returns:
//   - [integrations.ErrNotFound] if the package doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
//   - an INVALID_PACKAGE error for malformed names
func (c *Client) FetchPackage(ctx context.Context, pkg string, refresh bool) (*PackageInfo, error) {
	pkg = integrations.NormalizePkgName(pkg)
	if err := pkgerrors.ValidateComposerPackageName(pkg); err != nil {
		return nil, err
	}

	var info PackageInfo
	err := c.Cached(ctx, pkg, refresh, &info, func() error {
		return c.fetch(ctx, pkg, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, info *PackageInfo) error {
	var data p2Response
	if err := c.Get(ctx, fmt.Sprintf("%s/p2/%s.json", c.baseURL, pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: packagist package %s", err, pkg)
		}
		return err
	}

	versions := data.Packages[pkg]
	if len(versions) == 0 {
		return pkgerrors.New(pkgerrors.ErrCodePackageNotFound, "no versions found for %s", pkg)
	}

	v, all := latest(versions)
	var license string
	if len(v.License) > 0 {
		license = v.License[0]
	}
	name := v.Name
	if name == "" {
		name = pkg
	}

	*info = PackageInfo{
		Name:        name,
		Version:     v.Version,
		Versions:    all,
		Type:        v.Type,
		Description: v.Description,
		HomePage:    v.Homepage,
		Repository:  integrations.NormalizeRepoURL(v.Source.URL),
		License:     license,
	}
	return nil
}

// latest picks the greatest stable release, falling back to the greatest
// pre-release and finally to the first listed version. It also returns all
// tagged version strings.
func latest(versions []p2Version) (p2Version, []string) {
	tagged := make([]string, 0, len(versions))
	byVersion := make(map[string]p2Version, len(versions))
	for _, v := range versions {
		if strings.HasPrefix(strings.ToLower(v.Version), "dev-") || strings.HasSuffix(strings.ToLower(v.Version), "-dev") {
			continue
		}
		tagged = append(tagged, v.Version)
		byVersion[v.Version] = v
	}

	best := version.FindMax(tagged, true)
	if best == "" {
		best = version.FindMax(tagged, false)
	}
	if v, ok := byVersion[best]; ok {
		return v, tagged
	}
	return versions[0], tagged
}

type p2Response struct {
	Packages map[string][]p2Version `json:"packages"`
}

type p2Version struct {
	Name        string
	Version     string
	Type        string
	Description string
	Homepage    string
	License     []string
	Source      struct {
		URL string `json:"url"`
	}
}

func (v *p2Version) UnmarshalJSON(b []byte) error {
	type raw struct {
		Name        string          `json:"name"`
		Version     string          `json:"version"`
		Type        string          `json:"type"`
		Description string          `json:"description"`
		Homepage    string          `json:"homepage"`
		License     json.RawMessage `json:"license"`
		Source      json.RawMessage `json:"source"`
	}

	var r raw
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}

	v.Name = r.Name
	v.Version = r.Version
	v.Type = r.Type
	v.Description = r.Description
	v.Homepage = r.Homepage

	// Minified p2 metadata uses the string "__unset" for removed fields.
	if len(r.Source) > 0 && r.Source[0] == '{' {
		_ = json.Unmarshal(r.Source, &v.Source)
	}

	if len(r.License) > 0 && string(r.License) != "null" {
		if err := json.Unmarshal(r.License, &v.License); err != nil {
			var single string
			if json.Unmarshal(r.License, &single) == nil && single != "" && single != "__unset" {
				v.License = []string{single}
			}
		}
	}
	return nil
}
