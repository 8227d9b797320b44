// Package cli implements the storekit command-line interface.
//
// # Commands
//
//   - payment: check free payment eligibility against a store configuration
//   - composer: inspect a PHP project's Composer manifests and check for updates
//   - cache: manage the registry response and report cache
//   - completion: generate shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Long-running
// commands pass the logger through context.Context to scheduled jobs.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/storekit/pkg/buildinfo"
	"github.com/matzehuels/storekit/pkg/cache"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "storekit"

	// defaultConfigFile is the store configuration read when --config is not set.
	defaultConfigFile = "storekit.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Storekit checks payment eligibility and Composer package health",
		Long:         `Storekit is a CLI for shop operators: it evaluates the free payment method against store configuration and inspects the Composer manifests of a PHP shop for required platform features and outdated packages.`,
		Version:      buildinfo.Read().Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.paymentCommand())
	root.AddCommand(c.composerCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache picks the cache backend: none, Redis when an address is given,
// otherwise the file cache under cacheDir.
func newCache(ctx context.Context, noCache bool, redisAddr string) (cache.Cache, error) {
	if noCache {
		return cache.Disabled{Reason: "--no-cache"}, nil
	}
	if redisAddr != "" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: redisAddr})
	}
	dir, err := cacheDir()
	if err != nil {
		off := cache.Disabled{Reason: "no cache directory"}
		loggerFromContext(ctx).Debug(off.String(), "error", err)
		return off, nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/storekit/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
