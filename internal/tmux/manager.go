// Package tmux wraps the terminal multiplexer behind named operations. Every
// method shells out to the tmux binary through the shared command runner so
// tests can record and replay invocations.
package tmux

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"orbit/internal/config"
	"orbit/internal/errors"
	"orbit/internal/execx"
)

// Manager handles tmux session operations
type Manager struct {
	runner execx.Runner
}

// New creates a new tmux manager using the real tmux binary
func New() *Manager {
	return &Manager{runner: execx.ExecRunner{}}
}

// NewWithRunner creates a tmux manager with a custom command runner
func NewWithRunner(r execx.Runner) *Manager {
	return &Manager{runner: r}
}

// InsideTmux reports whether the current process is running inside a tmux
// client.
func InsideTmux() bool {
	return os.Getenv("TMUX") != ""
}

func (m *Manager) run(ctx context.Context, op string, args ...string) (string, error) {
	stdout, stderr, err := m.runner.Run(ctx, "", "tmux", args...)
	if err != nil {
		return "", errors.WrapWithDetails(errors.ErrTmuxCommand, fmt.Sprintf("tmux %s failed", op), stderr, err)
	}
	return stdout, nil
}

// SessionExists reports whether a session with exactly the given name is
// running. The "=" prefix disables tmux's prefix matching.
func (m *Manager) SessionExists(ctx context.Context, session string) bool {
	_, _, err := m.runner.Run(ctx, "", "tmux", "has-session", "-t", "="+session)
	return err == nil
}

// NewSession creates a detached session rooted at dir. A session name already
// taken is reported as a name collision rather than a generic tmux failure.
func (m *Manager) NewSession(ctx context.Context, session, dir string) error {
	_, stderr, err := m.runner.Run(ctx, "", "tmux", "new-session", "-d", "-s", session, "-c", dir)
	if err != nil {
		if strings.Contains(stderr, "duplicate session") {
			return errors.NewWithDetails(errors.ErrOrbitExists,
				fmt.Sprintf("tmux session '%s' already exists", session),
				"use a different name or kill the session first")
		}
		return errors.WrapWithDetails(errors.ErrTmuxCommand, "tmux new-session failed", stderr, err)
	}
	return nil
}

// KillSession destroys the named session.
func (m *Manager) KillSession(ctx context.Context, session string) error {
	_, err := m.run(ctx, "kill-session", "kill-session", "-t", "="+session)
	return err
}

// SetEnvironment injects an environment variable scoped to the session. New
// panes and windows inherit it; existing shells do not.
func (m *Manager) SetEnvironment(ctx context.Context, session, key, value string) error {
	_, err := m.run(ctx, "set-environment", "set-environment", "-t", session, key, value)
	return err
}

// SetOption sets a session-scoped option.
func (m *Manager) SetOption(ctx context.Context, session, option, value string) error {
	_, err := m.run(ctx, "set-option", "set-option", "-t", session, option, value)
	return err
}

// SetWindowOption sets a window-scoped option on target ("session:index").
func (m *Manager) SetWindowOption(ctx context.Context, target, option, value string) error {
	_, err := m.run(ctx, "set-window-option", "set-window-option", "-t", target, option, value)
	return err
}

// SetPaneTitle titles the pane at target ("session:window.pane").
func (m *Manager) SetPaneTitle(ctx context.Context, target, title string) error {
	_, err := m.run(ctx, "select-pane", "select-pane", "-t", target, "-T", title)
	return err
}

// SplitWindow splits the window at target, starting the new pane in dir.
func (m *Manager) SplitWindow(ctx context.Context, target, dir string) error {
	_, err := m.run(ctx, "split-window", "split-window", "-t", target, "-c", dir)
	return err
}

// SelectLayout applies a named layout to the window at target.
func (m *Manager) SelectLayout(ctx context.Context, target, layout string) error {
	_, err := m.run(ctx, "select-layout", "select-layout", "-t", target, layout)
	return err
}

// NewWindow creates a named window in the session rooted at dir and returns
// its index.
func (m *Manager) NewWindow(ctx context.Context, session, name, dir string) (int, error) {
	stdout, err := m.run(ctx, "new-window", "new-window", "-t", session, "-n", name, "-c", dir, "-P", "-F", "#{window_index}")
	if err != nil {
		return 0, err
	}
	index, convErr := strconv.Atoi(strings.TrimSpace(stdout))
	if convErr != nil {
		return 0, errors.Wrap(errors.ErrTmuxCommand, "failed to parse new window index", convErr)
	}
	return index, nil
}

// RenameWindow renames the window at target.
func (m *Manager) RenameWindow(ctx context.Context, target, name string) error {
	_, err := m.run(ctx, "rename-window", "rename-window", "-t", target, name)
	return err
}

// SelectWindow makes the window at target current.
func (m *Manager) SelectWindow(ctx context.Context, target string) error {
	_, err := m.run(ctx, "select-window", "select-window", "-t", target)
	return err
}

// SendKeys types a command into the pane at target and presses Enter.
func (m *Manager) SendKeys(ctx context.Context, target, command string) error {
	_, err := m.run(ctx, "send-keys", "send-keys", "-t", target, command, "Enter")
	return err
}

// ChooseSession opens the interactive session picker in the current client.
// Only meaningful when already inside tmux.
func (m *Manager) ChooseSession(ctx context.Context) error {
	_, err := m.run(ctx, "choose-session", "choose-session")
	return err
}

// SwitchClient switches the current client to the given session. Only works
// from inside tmux.
func (m *Manager) SwitchClient(ctx context.Context, session string) error {
	_, err := m.run(ctx, "switch-client", "switch-client", "-t", "="+session)
	return err
}

// AttachCommand returns the argv for attaching to the session. The caller is
// expected to exec-replace the current process with it; that decision stays at
// the CLI boundary.
func (m *Manager) AttachCommand(session string) []string {
	return []string{"tmux", "attach-session", "-t", "=" + session}
}

// FirstWindowIndex returns the index of the session's first window. Users may
// set base-index, so 0 must never be assumed.
func (m *Manager) FirstWindowIndex(ctx context.Context, session string) (int, error) {
	stdout, err := m.run(ctx, "list-windows", "list-windows", "-t", session, "-F", "#{window_index}")
	if err != nil {
		return 0, err
	}
	return parseFirstIndex(stdout, "window")
}

// FirstPaneIndex returns the index of the first pane in the given window.
func (m *Manager) FirstPaneIndex(ctx context.Context, session string, window int) (int, error) {
	target := fmt.Sprintf("%s:%d", session, window)
	stdout, err := m.run(ctx, "list-panes", "list-panes", "-t", target, "-F", "#{pane_index}")
	if err != nil {
		return 0, err
	}
	return parseFirstIndex(stdout, "pane")
}

func parseFirstIndex(stdout, kind string) (int, error) {
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		index, err := strconv.Atoi(line)
		if err != nil {
			return 0, errors.Wrap(errors.ErrTmuxCommand, fmt.Sprintf("failed to parse %s index", kind), err)
		}
		return index, nil
	}
	return 0, errors.New(errors.ErrTmuxCommand, fmt.Sprintf("no %ss listed", kind))
}

// layoutFor maps pane count to the tmux layout applied to the window. A
// single pane needs none; two sit side by side; three get a large primary
// pane with a stacked column; anything more tiles.
func layoutFor(paneCount int) string {
	switch {
	case paneCount <= 1:
		return ""
	case paneCount == 2:
		return "even-horizontal"
	case paneCount == 3:
		return "main-vertical"
	default:
		return "tiled"
	}
}

// SetupPanes splits the window at (session, window) into the declared panes,
// applies the layout policy, and titles and seeds each pane. Pane indices are
// introspected rather than assumed to start at 0.
func (m *Manager) SetupPanes(ctx context.Context, session string, window int, panes []config.Pane, worktreePath string) error {
	if len(panes) == 0 {
		return nil
	}
	target := fmt.Sprintf("%s:%d", session, window)

	for _, pane := range panes[1:] {
		if err := m.SplitWindow(ctx, target, filepath.Join(worktreePath, pane.Dir())); err != nil {
			return err
		}
	}

	if layout := layoutFor(len(panes)); layout != "" {
		if err := m.SelectLayout(ctx, target, layout); err != nil {
			return err
		}
	}
	if len(panes) > 1 {
		if err := m.SetWindowOption(ctx, target, "pane-border-status", "top"); err != nil {
			return err
		}
	}

	base, err := m.FirstPaneIndex(ctx, session, window)
	if err != nil {
		return err
	}
	for i, pane := range panes {
		paneTarget := fmt.Sprintf("%s.%d", target, base+i)
		if err := m.SetPaneTitle(ctx, paneTarget, pane.Name); err != nil {
			return err
		}
		if pane.Command != "" {
			if err := m.SendKeys(ctx, paneTarget, pane.Command); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetupWindows replicates the declared window/pane layout into the session.
// The session's real first window is renamed in place; subsequent windows are
// created rooted at the worktree. The first window is reselected at the end
// so the user lands there on attach.
func (m *Manager) SetupWindows(ctx context.Context, session string, windows []config.Window, worktreePath string) error {
	if len(windows) == 0 {
		return nil
	}

	first, err := m.FirstWindowIndex(ctx, session)
	if err != nil {
		return err
	}
	firstTarget := fmt.Sprintf("%s:%d", session, first)

	if err := m.RenameWindow(ctx, firstTarget, windows[0].Name); err != nil {
		return err
	}
	if err := m.populateWindow(ctx, session, first, windows[0], worktreePath); err != nil {
		return err
	}

	for _, window := range windows[1:] {
		index, err := m.NewWindow(ctx, session, window.Name, worktreePath)
		if err != nil {
			return err
		}
		if err := m.populateWindow(ctx, session, index, window, worktreePath); err != nil {
			return err
		}
	}

	return m.SelectWindow(ctx, firstTarget)
}

func (m *Manager) populateWindow(ctx context.Context, session string, index int, window config.Window, worktreePath string) error {
	if len(window.Panes) > 0 {
		return m.SetupPanes(ctx, session, index, window.Panes, worktreePath)
	}
	if window.Command != "" {
		return m.SendKeys(ctx, fmt.Sprintf("%s:%d", session, index), window.Command)
	}
	return nil
}
