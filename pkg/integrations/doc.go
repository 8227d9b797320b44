// Package integrations provides the shared HTTP client for package
// registry APIs.
//
// The [packagist] subpackage builds on it to fetch Composer package
// metadata and to implement the composer update check.
//
// # Client Pattern
//
//	c := integrations.NewClient(cache, "packagist", 24*time.Hour, nil)
//	err := c.Cached(ctx, "monolog/monolog", false, &info, func() error {
//	    return c.Get(ctx, url, &info)
//	})
//
// The client handles:
//   - HTTP requests with retry and exponential backoff on network errors and 5xx
//   - Response caching through any [cache.Cache] backend
//   - Cache and HTTP events reported to the [observability] hooks
//
// [packagist]: github.com/matzehuels/storekit/pkg/integrations/packagist
// [cache.Cache]: github.com/matzehuels/storekit/pkg/cache.Cache
// [observability]: github.com/matzehuels/storekit/pkg/observability
package integrations
