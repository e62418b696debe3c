package commands

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"orbit/internal/config"
	"orbit/internal/git"
	"orbit/internal/logger"
	"orbit/internal/operations"
	"orbit/internal/state"
	"orbit/internal/tmux"
)

// newOperations loads configuration and state and builds the operations
// manager with the real drivers. The planets config path is returned so
// commands can reference it in messages.
func newOperations(cmd *cobra.Command) (*operations.Manager, string, error) {
	settingsPath, err := config.SettingsPath()
	if err != nil {
		return nil, "", err
	}
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return nil, "", err
	}
	applyLogLevel(cmd, settings)

	cfgPath, err := config.DefaultPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, cfgPath, err
	}

	statePath, err := settings.StateFilePath()
	if err != nil {
		return nil, cfgPath, err
	}

	ops := operations.New(git.New(), tmux.New(), promptUI{}, state.NewStore(statePath), cfg, settings)
	return ops, cfgPath, nil
}

func applyLogLevel(cmd *cobra.Command, settings *config.Settings) {
	if debug, _ := cmd.Root().PersistentFlags().GetBool("debug"); debug {
		logger.SetLevel("debug")
		return
	}
	logger.SetLevel(settings.LogLevel)
}

// printNotices writes informational output to stdout, one notice per line.
func printNotices(notices []string) {
	for _, notice := range notices {
		fmt.Println(notice)
	}
}

// attach exec-replaces the current process with the given argv. On success
// this never returns.
func attach(action *operations.AttachAction, argv []string) error {
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return fmt.Errorf("%s not found in PATH: %w", argv[0], err)
	}
	logger.WithField("session", action.Session).Debug("Replacing process with attach")
	return syscall.Exec(path, argv, os.Environ())
}

// promptUI implements the interactive prompts with promptui.
type promptUI struct{}

func (promptUI) Select(label string, candidates []string) (int, error) {
	prompt := promptui.Select{
		Label: label,
		Items: candidates,
		Size:  len(candidates),
	}
	index, _, err := prompt.Run()
	return index, err
}

func (promptUI) Confirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	if err == promptui.ErrAbort {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
