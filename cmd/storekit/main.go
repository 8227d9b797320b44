package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storekit/internal/cli"
	pkgerrors "github.com/matzehuels/storekit/pkg/errors"
)

// Exit codes.
const (
	exitFailure  = 1
	exitUsage    = 2   // user-correctable input, config or manifest
	exitCanceled = 130 // SIGINT
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(exitCanceled)
		}
		fmt.Fprintln(os.Stderr, "Error:", pkgerrors.UserMessage(err))
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}

func exitCode(err error) int {
	if pkgerrors.GetCode(err).Usage() {
		return exitUsage
	}
	return exitFailure
}
