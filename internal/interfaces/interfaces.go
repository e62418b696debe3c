// Package interfaces defines the capability seams between the orchestrator
// and the external tools, so operations can be tested against recording
// fakes.
package interfaces

import (
	"context"

	"orbit/internal/config"
)

// GitManager is the branch/worktree driver surface the orchestrator uses.
type GitManager interface {
	DetectBranch(repoPath string) (string, error)
	ChooseRemote(repoPath string) (remote, notice string, err error)
	BranchExistsLocally(repoPath, branch string) bool
	RemoteBranchExists(ctx context.Context, repoPath, remote, branch string) bool
	DetectDefaultBranch(ctx context.Context, repoPath, remote string) string
	CreateWorktree(ctx context.Context, repoPath, worktreePath, branch, remote, base string) error
	RemoveWorktree(ctx context.Context, repoPath, worktreePath string) error
	MainRepoPath(ctx context.Context, worktreePath string) (string, error)
	HasUncommittedChanges(ctx context.Context, path string) bool
	SyncUntracked(ctx context.Context, sourcePath, worktreePath string, patterns []string) ([]string, error)
	EnsureGitignore(worktreePath string) error
}

// TmuxManager is the session driver surface the orchestrator uses.
type TmuxManager interface {
	SessionExists(ctx context.Context, session string) bool
	NewSession(ctx context.Context, session, dir string) error
	KillSession(ctx context.Context, session string) error
	SetEnvironment(ctx context.Context, session, key, value string) error
	SetOption(ctx context.Context, session, option, value string) error
	SetupWindows(ctx context.Context, session string, windows []config.Window, worktreePath string) error
	ChooseSession(ctx context.Context) error
	SwitchClient(ctx context.Context, session string) error
	AttachCommand(session string) []string
}

// UI covers the interactive prompts: numbered selection from a candidate
// list and yes/no confirmation. Implementations may talk to a terminal or be
// scripted in tests.
type UI interface {
	Select(label string, candidates []string) (int, error)
	Confirm(label string) (bool, error)
}
