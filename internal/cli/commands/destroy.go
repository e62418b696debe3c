package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"orbit/internal/operations"
)

// DestroyCommands creates the destroy command
func DestroyCommands() []*cobra.Command {
	destroyCmd := &cobra.Command{
		Use:     "destroy [name]",
		Short:   "Tear down an orbit: kill its session, remove its worktree, forget it",
		Aliases: []string{"d", "rm"},
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			return runDestroy(cmd, name)
		},
	}
	return []*cobra.Command{destroyCmd}
}

func runDestroy(cmd *cobra.Command, name string) error {
	ops, _, err := newOperations(cmd)
	if err != nil {
		return err
	}

	resp, err := ops.Destroy(cmd.Context(), operations.DestroyRequest{Name: name})
	if err != nil {
		return err
	}

	printNotices(resp.Notices)
	fmt.Printf("Destroyed orbit '%s'\n", resp.Name)
	return nil
}
