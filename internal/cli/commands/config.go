package commands

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"orbit/internal/config"
)

// ConfigCommands creates configuration commands
func ConfigCommands() []*cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Edit the planets config in $EDITOR",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pathOnly, _ := cmd.Flags().GetBool("path")
			show, _ := cmd.Flags().GetBool("show")
			return runConfig(pathOnly, show)
		},
	}
	configCmd.Flags().Bool("path", false, "Print only the config file path")
	configCmd.Flags().Bool("show", false, "Print configured planets instead of editing")

	return []*cobra.Command{configCmd}
}

func runConfig(pathOnly, show bool) error {
	path, err := config.DefaultPath()
	if err != nil {
		return err
	}
	if pathOnly {
		fmt.Println(path)
		return nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.Scaffold(path); err != nil {
			return err
		}
		fmt.Printf("Created starter config at %s\n", path)
	}

	if show {
		return showPlanets(path)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		fmt.Printf("$EDITOR is not set; config lives at %s\n", path)
		return showPlanets(path)
	}

	editorCmd := exec.Command(editor, path)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr
	return editorCmd.Run()
}

func showPlanets(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if len(cfg.Planets) == 0 {
		fmt.Println("No planets configured.")
		return nil
	}
	fmt.Println("Planets:")
	for _, planet := range cfg.Planets {
		line := fmt.Sprintf("  %s\t%s", planet.Name, planet.Path)
		if planet.Description != "" {
			line += "\t" + planet.Description
		}
		fmt.Println(line)
	}
	return nil
}
