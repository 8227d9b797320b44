// Package packagist provides an HTTP client for the Packagist API and a
// Composer update checker built on it.
//
// # Overview
//
// Package metadata comes from the p2 endpoint (<base>/p2/<vendor>/<name>.json)
// of Packagist (https://packagist.org) or any compatible mirror.
//
// # Usage
//
//	client := packagist.NewClient(fileCache, 24*time.Hour)
//	pkg, err := client.FetchPackage(ctx, "monolog/monolog", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(pkg.Version)
//
// [UpdateChecker] plugs the client into a composer.Inspector:
//
//	checker := packagist.NewUpdateChecker(client, packagist.WithLogger(logger))
//	insp, err := composer.NewInspector(root, composer.WithChecker(checker))
//	ok := insp.SyncPackagesForUpdate(ctx)
package packagist
