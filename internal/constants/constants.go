// Package constants defines application-wide constants to avoid magic numbers
package constants

// File System Permissions
const (
	// DirPermissions is the standard directory permissions for orbit directories
	DirPermissions = 0755

	// FilePermissions is the standard file permissions for orbit config files
	FilePermissions = 0644
)

// Naming
const (
	// SlugMaxLen caps the length of a branch-derived slug
	SlugMaxLen = 40

	// WorktreeDirSuffix namespaces per-planet worktree directories,
	// e.g. ~/src/myapp -> ~/src/myapp.wt/<orbit>
	WorktreeDirSuffix = ".wt"

	// GitignoreEntry is appended to each worktree's .gitignore
	GitignoreEntry = ".orbit/"

	// TaskEnvVar is injected into every orbit session, set to the orbit name
	TaskEnvVar = "ORBIT_TASK_ID"

	// PortEnvPrefix prefixes the per-declared-port environment variables,
	// e.g. ORBIT_PORT_3000=3001
	PortEnvPrefix = "ORBIT_PORT_"
)

// File names under the orbit config/state directories
const (
	ConfigFileName   = "config.yaml"
	SettingsFileName = "settings.toml"
	StateFileName    = "state.json"
)
