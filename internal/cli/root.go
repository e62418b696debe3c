package cli

import (
	"github.com/spf13/cobra"
)

// createRootCommand creates the root command with global flags
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "orbit",
		Short: "Parallel development environments on git worktrees and tmux",
		Long: `orbit manages parallel development environments: one git worktree plus one
tmux session per branch. Launch an orbit to get an isolated checkout with
your project's window layout, ports, and environment already set up; destroy
it to clean everything up again.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	return rootCmd
}
