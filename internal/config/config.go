// Package config loads the planets configuration and global settings. Planets
// live in a YAML file the user edits by hand; global settings are a TOML file
// with tool-wide defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"orbit/internal/constants"
	"orbit/internal/errors"
	"orbit/internal/validation"
	"orbit/internal/xdg"
)

// Config is the parsed planets file.
type Config struct {
	Planets []Planet `yaml:"planets"`
}

// Planet is one configured source repository.
type Planet struct {
	Name          string            `yaml:"name"`
	Path          string            `yaml:"path"`
	Description   string            `yaml:"description,omitempty"`
	Env           map[string]string `yaml:"env,omitempty"`
	SyncUntracked *[]string         `yaml:"sync_untracked,omitempty"`
	Windows       []Window          `yaml:"windows,omitempty"`
}

// Window describes one tmux window of a planet's session layout.
type Window struct {
	Name    string `yaml:"name"`
	Command string `yaml:"command,omitempty"`
	Panes   []Pane `yaml:"panes,omitempty"`
}

// Pane describes one pane of a window.
type Pane struct {
	Name      string `yaml:"name"`
	Command   string `yaml:"command,omitempty"`
	Directory string `yaml:"directory,omitempty"`
	Ports     []int  `yaml:"ports,omitempty"`
}

// Dir returns the pane's start directory relative to the worktree, defaulting
// to the worktree root.
func (p Pane) Dir() string {
	if p.Directory == "" {
		return "."
	}
	return p.Directory
}

// ResolvedPath returns the planet's path with home shorthand and symlinks
// resolved.
func (p Planet) ResolvedPath() (string, error) {
	path, err := ExpandHome(p.Path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidPath, fmt.Sprintf("failed to resolve planet path %s", path), err)
	}
	return resolved, nil
}

// Slug returns the planet's directory basename, used to namespace worktrees
// and sessions.
func (p Planet) Slug() string {
	path, err := ExpandHome(p.Path)
	if err != nil {
		return filepath.Base(p.Path)
	}
	return filepath.Base(filepath.Clean(path))
}

// SyncPatterns returns the planet's untracked-file mirror patterns, or the
// given defaults when the planet doesn't declare any.
func (p Planet) SyncPatterns(defaults []string) []string {
	if p.SyncUntracked != nil {
		return *p.SyncUntracked
	}
	return defaults
}

// DeclaredPorts collects every port declared by the planet's panes, in
// configuration order.
func (p Planet) DeclaredPorts() []int {
	var ports []int
	for _, window := range p.Windows {
		for _, pane := range window.Panes {
			ports = append(ports, pane.Ports...)
		}
	}
	return ports
}

// ExpandHome expands a leading ~ or ~/ in path to the current home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidPath, "failed to determine home directory", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// DefaultPath returns the planets file location under the XDG config
// directory.
func DefaultPath() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}

// Load reads and validates the planets file at path. A missing file is
// scaffolded from a commented template and reported through a NotFound error
// so the caller can surface the first-run notice and halt.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if scaffoldErr := Scaffold(path); scaffoldErr != nil {
			return nil, scaffoldErr
		}
		return nil, errors.NewWithDetails(errors.ErrConfigNotFound,
			"no configuration found",
			fmt.Sprintf("created a starter config at %s; edit it to add your planets and rerun", path))
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigNotFound, fmt.Sprintf("failed to read config %s", path), err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WrapWithDetails(errors.ErrConfigParse,
			fmt.Sprintf("invalid YAML in %s", path), err.Error(), err)
	}

	if err := cfg.Validate(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields; the file path is included in messages so
// the user can fix the config without reading source.
func (c *Config) Validate(path string) error {
	for i, planet := range c.Planets {
		if planet.Name == "" {
			return errors.New(errors.ErrConfigValidation,
				fmt.Sprintf("%s: planets[%d] is missing required field 'name'", path, i))
		}
		if planet.Path == "" {
			return errors.New(errors.ErrConfigValidation,
				fmt.Sprintf("%s: planet '%s' is missing required field 'path'", path, planet.Name))
		}
		for key := range planet.Env {
			if err := validation.EnvVarKey(key); err != nil {
				return errors.New(errors.ErrConfigValidation,
					fmt.Sprintf("%s: planet '%s' env: %v", path, planet.Name, err))
			}
		}
		for _, window := range planet.Windows {
			if window.Name == "" {
				return errors.New(errors.ErrConfigValidation,
					fmt.Sprintf("%s: planet '%s' has a window missing required field 'name'", path, planet.Name))
			}
			for _, pane := range window.Panes {
				if pane.Name == "" {
					return errors.New(errors.ErrConfigValidation,
						fmt.Sprintf("%s: window '%s' of planet '%s' has a pane missing required field 'name'", path, window.Name, planet.Name))
				}
				if pane.Directory != "" {
					if _, err := validation.Path(pane.Directory); err != nil {
						return errors.New(errors.ErrConfigValidation,
							fmt.Sprintf("%s: pane '%s' of window '%s' in planet '%s': %v", path, pane.Name, window.Name, planet.Name, err))
					}
				}
			}
		}
	}
	return nil
}

// DetectPlanet resolves cwd to the configured planet containing it. Symlinks
// are resolved on both sides; the first match in configuration order wins.
func (c *Config) DetectPlanet(cwd string) (*Planet, error) {
	resolved, err := filepath.EvalSymlinks(cwd)
	if err != nil {
		resolved = cwd
	}

	for i := range c.Planets {
		planetPath, err := c.Planets[i].ResolvedPath()
		if err != nil {
			continue
		}
		if resolved == planetPath || strings.HasPrefix(resolved, planetPath+string(filepath.Separator)) {
			return &c.Planets[i], nil
		}
	}

	names := make([]string, 0, len(c.Planets))
	for _, p := range c.Planets {
		names = append(names, p.Name)
	}
	return nil, errors.NewWithDetails(errors.ErrNoPlanet,
		fmt.Sprintf("%s is not inside any configured planet", cwd),
		fmt.Sprintf("configured planets: %s", strings.Join(names, ", ")))
}

const configTemplate = `# orbit planets
#
# Each planet is a repository orbit manages parallel environments for.
# Uncomment and edit:
#
# planets:
#   - name: myapp
#     path: ~/src/myapp
#     description: main web app
#     env:
#       APP_ENV: development
#     sync_untracked:
#       - ".*"
#     windows:
#       - name: edit
#         command: $EDITOR .
#       - name: run
#         panes:
#           - name: server
#             command: make dev
#             ports: [3000]
#           - name: logs
#             directory: ./log
`

// Scaffold writes the commented starter config at path, creating parent
// directories.
func Scaffold(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.Wrap(errors.ErrInvalidPath, "failed to create config directory", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), constants.FilePermissions); err != nil {
		return errors.Wrap(errors.ErrStateWrite, "failed to write starter config", err)
	}
	return nil
}

// AppendPlanet adds a minimal planet entry for repoPath to the config file at
// path, creating the file when absent. Used to scaffold the current
// repository when launch is run somewhere unconfigured.
func AppendPlanet(path, name, repoPath string) error {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrConfigNotFound, fmt.Sprintf("failed to read config %s", path), err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return errors.WrapWithDetails(errors.ErrConfigParse,
				fmt.Sprintf("invalid YAML in %s", path), err.Error(), err)
		}
	}

	cfg.Planets = append(cfg.Planets, Planet{Name: name, Path: repoPath})
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "failed to render config", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.Wrap(errors.ErrInvalidPath, "failed to create config directory", err)
	}
	if err := os.WriteFile(path, out, constants.FilePermissions); err != nil {
		return errors.Wrap(errors.ErrStateWrite, fmt.Sprintf("failed to write config %s", path), err)
	}
	return nil
}
