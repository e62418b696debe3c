package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// KeysCommands creates the tmux cheat-sheet command
func KeysCommands() []*cobra.Command {
	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "Print a tmux key cheat sheet for working inside orbits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print(keysCheatSheet)
			return nil
		},
	}
	return []*cobra.Command{keysCmd}
}

const keysCheatSheet = `tmux keys (prefix is Ctrl-b unless remapped):

  Sessions
    prefix d        detach from the session (orbit keeps running)
    prefix s        pick another session interactively
    prefix $        rename the session

  Windows
    prefix c        new window
    prefix n / p    next / previous window
    prefix 0-9      jump to window by number
    prefix ,        rename the window

  Panes
    prefix %        split left/right
    prefix "        split top/bottom
    prefix arrows   move between panes
    prefix z        zoom the current pane
    prefix x        kill the current pane

  orbit
    orbit jump      attach or switch to another orbit
    orbit list      see which orbits are live
`
