// Package execx runs external commands behind a narrow interface so drivers
// can swap in recording fakes during tests.
package execx

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"orbit/internal/logger"
)

// Runner executes one external command and returns its separated output.
// A non-nil error means a non-zero exit or a failure to start; stderr still
// carries whatever diagnostic text the tool produced.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner implements Runner using os/exec.
type ExecRunner struct{}

// Run executes a command in dir and returns trimmed stdout/stderr.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	logger.Debugf("+ %s %s", name, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return strings.TrimSpace(stdout.String()), strings.TrimSpace(stderr.String()), err
}
