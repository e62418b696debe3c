package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// ListCommands creates the list command
func ListCommands() []*cobra.Command {
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List all orbits with live/stale status",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd)
		},
	}
	return []*cobra.Command{listCmd}
}

func runList(cmd *cobra.Command) error {
	ops, _, err := newOperations(cmd)
	if err != nil {
		return err
	}

	statuses, err := ops.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(statuses) == 0 {
		fmt.Println("No orbits. Run 'orbit launch' to create one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPLANET\tBRANCH\tSTATUS\tCREATED")
	for _, s := range statuses {
		status := "live"
		if !s.Live {
			status = "stale"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.Name, s.Planet, s.Branch, status, s.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
