// Package operations implements the orbit lifecycle: launching, destroying,
// listing, and resolving environments. It talks to the external tools only
// through the driver interfaces and never replaces the process itself;
// attaching is returned to the CLI boundary as an intent.
package operations

import (
	"orbit/internal/config"
	"orbit/internal/interfaces"
	"orbit/internal/state"
)

// Manager wires the drivers, configuration, and state store together.
type Manager struct {
	git      interfaces.GitManager
	tmux     interfaces.TmuxManager
	ui       interfaces.UI
	store    *state.Store
	cfg      *config.Config
	settings *config.Settings
}

// New creates an operations manager.
func New(git interfaces.GitManager, tmux interfaces.TmuxManager, ui interfaces.UI, store *state.Store, cfg *config.Config, settings *config.Settings) *Manager {
	return &Manager{
		git:      git,
		tmux:     tmux,
		ui:       ui,
		store:    store,
		cfg:      cfg,
		settings: settings,
	}
}

// AttachAction asks the CLI boundary to exec-replace the process with an
// attach to the session.
type AttachAction struct {
	Session string
}
