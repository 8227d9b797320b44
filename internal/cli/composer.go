package cli

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storekit/pkg/cache"
	"github.com/matzehuels/storekit/pkg/composer"
	pkgerrors "github.com/matzehuels/storekit/pkg/errors"
	"github.com/matzehuels/storekit/pkg/integrations/packagist"
)

const (
	defaultSyncTimeout = 30 * time.Second
	registryCacheTTL   = 24 * time.Hour
)

// composerOpts holds the flags shared by the composer subcommands.
type composerOpts struct {
	timeout   time.Duration // limit for one update check
	refresh   bool          // bypass cached registry responses
	noCache   bool          // disable caching entirely
	redisAddr string        // shared cache instead of the file cache
	registry  string        // Packagist-compatible base URL
	scope     string        // cache key namespace, e.g. a store code
	versions  bool          // packages: include version constraints
}

// inspectorSession is an inspector wired to its cache backend.
type inspectorSession struct {
	*composer.Inspector
	cache cache.Cache
}

func (s *inspectorSession) Close() error { return s.cache.Close() }

// newInspector builds an inspector for root with the Packagist update checker.
func (c *CLI) newInspector(ctx context.Context, root string, opts *composerOpts) (*inspectorSession, error) {
	cc, err := newCache(ctx, opts.noCache, opts.redisAddr)
	if err != nil {
		return nil, err
	}

	var keyer cache.Keyer = cache.NewDefaultKeyer()
	if opts.scope != "" {
		keyer = cache.NewScopedKeyer(keyer, opts.scope+":")
	}

	client := packagist.NewClient(cc, registryCacheTTL,
		packagist.WithBaseURL(opts.registry),
		packagist.WithKeyer(keyer),
	)
	checker := packagist.NewUpdateChecker(client,
		packagist.WithLogger(c.Logger),
		packagist.WithRefresh(opts.refresh),
	)

	insp, err := composer.NewInspector(root,
		composer.WithLogger(c.Logger),
		composer.WithCache(cc),
		composer.WithKeyer(keyer),
		composer.WithChecker(checker),
	)
	if err != nil {
		cc.Close()
		return nil, err
	}
	sessionLogger(c.Logger, insp.SessionID(), insp.Root()).Debug("inspecting project", "manifest", insp.ManifestPath())
	return &inspectorSession{Inspector: insp, cache: cc}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

func rootArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

// composerCommand creates the composer command.
func (c *CLI) composerCommand() *cobra.Command {
	opts := composerOpts{timeout: defaultSyncTimeout, registry: packagist.DefaultBaseURL}

	cmd := &cobra.Command{
		Use:   "composer",
		Short: "Inspect a PHP project's Composer manifests",
		Long: `Inspect composer.json and composer.lock of a PHP project.

Every subcommand takes the project root as optional argument (default ".").

Examples:
  storekit composer php /srv/shop
  storekit composer extensions
  storekit composer packages --versions
  storekit composer outdated --timeout 1m
  storekit composer watch /srv/shop --schedule "@hourly" --metrics-addr :9090`,
	}

	cmd.PersistentFlags().BoolVar(&opts.noCache, "no-cache", false, "disable the report and registry cache")
	cmd.PersistentFlags().StringVar(&opts.redisAddr, "redis-addr", "", "use a Redis cache at host:port")
	cmd.PersistentFlags().StringVar(&opts.registry, "registry", opts.registry, "Packagist-compatible registry URL")
	cmd.PersistentFlags().StringVar(&opts.scope, "cache-scope", "", "prefix cache keys, e.g. with a store code when several stores share Redis")

	cmd.AddCommand(c.composerPHPCommand(&opts))
	cmd.AddCommand(c.composerExtensionsCommand(&opts))
	cmd.AddCommand(c.composerPackagesCommand(&opts))
	cmd.AddCommand(c.composerOutdatedCommand(&opts))
	cmd.AddCommand(c.composerWatchCommand(&opts))

	return cmd
}

// composerPHPCommand creates the "composer php" subcommand.
func (c *CLI) composerPHPCommand(opts *composerOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "php [root]",
		Short: "Print the required PHP version constraint",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			insp, err := c.newInspector(cmd.Context(), rootArg(args), opts)
			if err != nil {
				return err
			}
			defer insp.Close()

			v, err := insp.RequiredPHPVersion()
			if err != nil {
				return err
			}
			if v == "" {
				printInfo("No PHP version constraint")
				return nil
			}
			fmt.Fprintln(stdout, v)
			return nil
		},
	}
}

// composerExtensionsCommand creates the "composer extensions" subcommand.
func (c *CLI) composerExtensionsCommand(opts *composerOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "extensions [root]",
		Short: "List required PHP extensions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			insp, err := c.newInspector(cmd.Context(), rootArg(args), opts)
			if err != nil {
				return err
			}
			defer insp.Close()

			exts, err := insp.RequiredExtensions()
			if err != nil {
				return err
			}
			for _, ext := range exts {
				fmt.Fprintln(stdout, ext)
			}
			return nil
		},
	}
}

// composerPackagesCommand creates the "composer packages" subcommand.
func (c *CLI) composerPackagesCommand(opts *composerOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "packages [root]",
		Short: "List required packages with their types",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			insp, err := c.newInspector(cmd.Context(), rootArg(args), opts)
			if err != nil {
				return err
			}
			defer insp.Close()

			pkgs, err := insp.RootRequiredPackageTypesByNameVersion()
			if err != nil {
				return err
			}
			for _, name := range sortedKeys(pkgs) {
				p := pkgs[name]
				if opts.versions {
					printKeyValue(p.Type, name+" "+StyleDim.Render(p.Version))
				} else {
					printKeyValue(p.Type, name)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.versions, "versions", false, "include version constraints")
	return cmd
}

// composerOutdatedCommand creates the "composer outdated" subcommand.
func (c *CLI) composerOutdatedCommand(opts *composerOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outdated [root]",
		Short: "Check the registry for newer releases of required packages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			insp, err := c.newInspector(cmd.Context(), rootArg(args), opts)
			if err != nil {
				return err
			}
			defer insp.Close()

			cached := insp.Synced() && !opts.refresh
			if !cached {
				if err := c.syncOnce(cmd.Context(), insp.Inspector, opts.timeout); err != nil {
					return err
				}
			}

			report := insp.PackagesForUpdate()
			printReportStatus(len(report.Packages), cached)
			if len(report.Packages) == 0 {
				printSuccess("All packages are up to date")
				return nil
			}
			printNewline()
			for _, name := range report.Names() {
				p := report.Packages[name]
				printUpgrade(name, p.InstalledVersion, p.LatestVersion)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "timeout for the registry check")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached reports and registry responses")
	return cmd
}

// syncOnce runs one update check with a spinner and timeout.
func (c *CLI) syncOnce(ctx context.Context, insp *composer.Inspector, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Checking packagist for updates...")
	spinner.Start()
	ok := insp.SyncPackagesForUpdate(ctx)
	spinner.Stop()

	if !ok {
		switch err := ctx.Err(); {
		case errors.Is(err, context.Canceled):
			return err
		case errors.Is(err, context.DeadlineExceeded):
			return pkgerrors.Wrap(pkgerrors.ErrCodeTimeout, err, "update check timed out after %s", timeout)
		}
		return errors.New("update check failed (run with -v for details)")
	}
	prog.done("Update check complete")
	return nil
}
