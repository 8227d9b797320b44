package cli

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storekit/pkg/config"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for storekit.

Bash:
  $ source <(storekit completion bash)

Zsh:
  $ storekit completion zsh > "${fpath[1]}/_storekit"

Fish:
  $ storekit completion fish > ~/.config/fish/completions/storekit.fish

PowerShell:
  PS> storekit completion powershell | Out-String | Invoke-Expression

Completions include store codes from the --config file and common
--schedule descriptors.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(stdout, true)
			case "zsh":
				return root.GenZshCompletion(stdout)
			case "fish":
				return root.GenFishCompletion(stdout, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(stdout)
			}
			return nil
		},
	}
}

// completeStores suggests the store codes defined in the file named by the
// --config flag.
func completeStores(configPath *string) cobra.CompletionFunc {
	return func(*cobra.Command, []string, string) ([]cobra.Completion, cobra.ShellCompDirective) {
		store, err := config.Load(*configPath)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		codes := append(store.Stores(), config.DefaultScope)
		slices.Sort(codes)
		return slices.Compact(codes), cobra.ShellCompDirectiveNoFileComp
	}
}

// scheduleDescriptors are the predefined robfig/cron schedules.
var scheduleDescriptors = []cobra.Completion{
	"@hourly", "@daily", "@weekly", "@monthly", "@every 30m", "@every 6h",
}

func completeSchedules(*cobra.Command, []string, string) ([]cobra.Completion, cobra.ShellCompDirective) {
	return scheduleDescriptors, cobra.ShellCompDirectiveNoFileComp
}
