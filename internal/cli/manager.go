// Package cli wires the cobra command tree. This is the only layer that
// talks to the terminal: prompts, notices, and the attach exec all happen
// here, never inside operations.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"orbit/internal/cli/commands"
)

// Manager handles CLI operations
type Manager struct {
	rootCmd *cobra.Command
}

// New creates a new CLI manager
func New() *Manager {
	m := &Manager{rootCmd: createRootCommand()}
	m.setupCommands()
	return m
}

// Execute executes the CLI with the given arguments
func (m *Manager) Execute(args []string) error {
	return m.ExecuteWithContext(context.Background(), args)
}

// ExecuteWithContext executes the CLI with the given arguments and context
func (m *Manager) ExecuteWithContext(ctx context.Context, args []string) error {
	m.rootCmd.SetArgs(args)
	return m.rootCmd.ExecuteContext(ctx)
}

// setupCommands sets up all CLI commands
func (m *Manager) setupCommands() {
	for _, cmd := range commands.LaunchCommands() {
		m.rootCmd.AddCommand(cmd)
	}
	for _, cmd := range commands.DestroyCommands() {
		m.rootCmd.AddCommand(cmd)
	}
	for _, cmd := range commands.ListCommands() {
		m.rootCmd.AddCommand(cmd)
	}
	for _, cmd := range commands.JumpCommands() {
		m.rootCmd.AddCommand(cmd)
	}
	for _, cmd := range commands.ConfigCommands() {
		m.rootCmd.AddCommand(cmd)
	}
	for _, cmd := range commands.KeysCommands() {
		m.rootCmd.AddCommand(cmd)
	}
}
