package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"orbit/internal/config"
	"orbit/internal/errors"
	"orbit/internal/git"
	"orbit/internal/operations"
	"orbit/internal/tmux"
)

// LaunchCommands creates the launch command
func LaunchCommands() []*cobra.Command {
	launchCmd := &cobra.Command{
		Use:     "launch [branch]",
		Short:   "Launch a new orbit: worktree plus tmux session for a branch",
		Aliases: []string{"l", "new"},
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			branch := ""
			if len(args) > 0 {
				branch = args[0]
			}
			name, _ := cmd.Flags().GetString("name")
			base, _ := cmd.Flags().GetString("base")
			return runLaunch(cmd, branch, name, base)
		},
	}
	launchCmd.Flags().StringP("name", "n", "", "Explicit orbit name (default: derived from branch)")
	launchCmd.Flags().StringP("base", "b", "", "Base branch for a brand-new branch (default: remote default branch)")

	return []*cobra.Command{launchCmd}
}

func runLaunch(cmd *cobra.Command, branch, name, base string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	ops, cfgPath, err := newOperations(cmd)
	if err != nil {
		if errors.HasCode(err, errors.ErrConfigNotFound) {
			// First run: the starter config was just scaffolded.
			fmt.Println(err.Error())
			return nil
		}
		return err
	}

	req := operations.LaunchRequest{
		Branch:     branch,
		Name:       name,
		Base:       base,
		WorkingDir: cwd,
		InsideTmux: tmux.InsideTmux(),
	}

	resp, err := ops.Launch(cmd.Context(), req)
	if errors.HasCode(err, errors.ErrNoPlanet) {
		resp, err = retryWithScaffoldedPlanet(cmd, req, cwd, cfgPath, err)
	}
	if err != nil {
		return err
	}

	printNotices(resp.Notices)
	fmt.Printf("Orbit '%s' ready: %s\n", resp.Orbit.Name, resp.Orbit.Worktree)

	if resp.Attach != nil {
		return attach(resp.Attach, tmux.New().AttachCommand(resp.Attach.Session))
	}
	return nil
}

// retryWithScaffoldedPlanet offers to register the current repository as a
// planet when launch is run somewhere unconfigured, then retries once.
func retryWithScaffoldedPlanet(cmd *cobra.Command, req operations.LaunchRequest, cwd, cfgPath string, orig error) (*operations.LaunchResponse, error) {
	repoPath, err := git.New().MainRepoPath(cmd.Context(), cwd)
	if err != nil {
		return nil, orig
	}

	name := filepath.Base(repoPath)
	confirmed, err := (promptUI{}).Confirm(fmt.Sprintf("%s is not a configured planet. Add it", name))
	if err != nil || !confirmed {
		return nil, orig
	}
	if err := config.AppendPlanet(cfgPath, name, repoPath); err != nil {
		return nil, err
	}
	fmt.Printf("Added planet '%s' (%s) to %s\n", name, repoPath, cfgPath)

	ops, _, err := newOperations(cmd)
	if err != nil {
		return nil, err
	}
	return ops.Launch(cmd.Context(), req)
}
