// Package composer inspects the Composer manifests of a PHP project.
//
// An [Inspector] is bound to one project root. It reads composer.json and,
// when present, composer.lock to answer the questions the package-update
// admin screens ask:
//
//   - [Inspector.RequiredPHPVersion]: the "php" constraint
//   - [Inspector.RequiredExtensions]: ext-* requirements without the prefix
//   - [Inspector.RootRequiredPackageTypesByName]: required package → type
//   - [Inspector.RootRequiredPackageTypesByNameVersion]: same plus constraint
//   - [Inspector.SyncPackagesForUpdate] / [Inspector.PackagesForUpdate]:
//     registry update check and its cached result
//
// # Missing manifests
//
// When the root has no composer.json, [NewInspector] and every query fail
// with a MANIFEST_NOT_FOUND error ("Composer file not found"). The error is
// meant to be shown to the user; it is never retried.
//
// # Update checks
//
// The registry call sits behind [UpdateChecker] so the inspection logic can
// be exercised without network access. The packagist package provides the
// production implementation. The last successful report is kept in memory
// and, when a [cache.Cache] is configured, persisted so that a later
// inspector for the same root starts out synced.
//
// An Inspector is meant for a single inspection session; its methods are
// safe to call from one goroutine at a time.
//
// [cache.Cache]: github.com/matzehuels/storekit/pkg/cache.Cache
package composer
