package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"orbit/internal/constants"
	"orbit/internal/errors"
	"orbit/internal/xdg"
)

// Settings is the global settings file, tool-wide defaults a planet can't
// override. All fields are optional; a missing file means defaults.
type Settings struct {
	StatePath    string   `toml:"state_path"`    // override for the orbit state file location
	WorktreeBase string   `toml:"worktree_base"` // override for where worktree namespaces are created
	SyncDefaults []string `toml:"sync_defaults"` // default sync_untracked patterns
	LogLevel     string   `toml:"log_level"`     // trace/debug/info/warn/error
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() *Settings {
	return &Settings{
		SyncDefaults: []string{".*"},
		LogLevel:     "warn",
	}
}

// SettingsPath returns the settings file location under the XDG config
// directory.
func SettingsPath() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.SettingsFileName), nil
}

// LoadSettings reads the settings file at path, falling back to defaults when
// it doesn't exist. Unset fields are filled with their defaults.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigNotFound, fmt.Sprintf("failed to read settings %s", path), err)
	}

	if err := toml.Unmarshal(data, settings); err != nil {
		return nil, errors.WrapWithDetails(errors.ErrConfigParse,
			fmt.Sprintf("invalid TOML in %s", path), err.Error(), err)
	}

	if settings.SyncDefaults == nil {
		settings.SyncDefaults = DefaultSettings().SyncDefaults
	}
	if settings.LogLevel == "" {
		settings.LogLevel = DefaultSettings().LogLevel
	}
	return settings, nil
}

// StateFilePath resolves the state-file location: the settings override wins,
// otherwise the XDG data directory.
func (s *Settings) StateFilePath() (string, error) {
	if s.StatePath != "" {
		return ExpandHome(s.StatePath)
	}
	dir, err := xdg.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.StateFileName), nil
}
