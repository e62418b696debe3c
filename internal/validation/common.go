// Package validation guards user-supplied values that end up in tmux targets,
// filesystem paths, and shell environments.
package validation

import (
	"path/filepath"
	"regexp"
	"strings"

	"orbit/internal/errors"
)

var (
	// orbitNameRegex keeps names safe as tmux session names and directory
	// leaves.
	orbitNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

	// envVarKeyRegex validates environment variable keys
	envVarKeyRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// OrbitName validates an explicit orbit name.
func OrbitName(name string) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "orbit name cannot be empty")
	}
	if len(name) > 100 {
		return errors.New(errors.ErrInvalidInput, "orbit name too long (max 100 characters)")
	}
	if !orbitNameRegex.MatchString(name) {
		return errors.NewWithDetails(errors.ErrInvalidInput,
			"invalid orbit name '"+name+"'",
			"names must start with a letter or digit and contain only letters, digits, '_', '.', '-'")
	}
	return nil
}

// EnvVarKey validates an environment variable name from planet config.
func EnvVarKey(key string) error {
	if !envVarKeyRegex.MatchString(key) {
		return errors.New(errors.ErrInvalidInput, "invalid environment variable name '"+key+"'")
	}
	return nil
}

// Path cleans a path and rejects traversal outside its root.
func Path(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrInvalidPath, "path cannot be empty")
	}
	cleaned := filepath.Clean(path)
	if strings.Contains(cleaned, "..") {
		return "", errors.New(errors.ErrInvalidPath, "path must not contain '..': "+path)
	}
	return cleaned, nil
}
