package commands

import (
	"github.com/spf13/cobra"

	"orbit/internal/operations"
	"orbit/internal/tmux"
)

// JumpCommands creates the jump command
func JumpCommands() []*cobra.Command {
	jumpCmd := &cobra.Command{
		Use:     "jump [name]",
		Short:   "Attach to an existing orbit's session",
		Aliases: []string{"j", "attach"},
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			return runJump(cmd, name)
		},
	}
	return []*cobra.Command{jumpCmd}
}

func runJump(cmd *cobra.Command, name string) error {
	ops, _, err := newOperations(cmd)
	if err != nil {
		return err
	}

	resp, err := ops.Jump(cmd.Context(), operations.JumpRequest{
		Name:       name,
		InsideTmux: tmux.InsideTmux(),
	})
	if err != nil {
		return err
	}

	printNotices(resp.Notices)
	if resp.Attach != nil {
		return attach(resp.Attach, tmux.New().AttachCommand(resp.Attach.Session))
	}
	return nil
}
