// Package testutil provides shared fakes for the driver interfaces.
package testutil

import (
	"context"

	"orbit/internal/config"
)

// MockGitManager is a scriptable git driver. Each operation delegates to its
// Fn field when set and falls back to the zero behavior otherwise.
type MockGitManager struct {
	DetectBranchFn          func(repoPath string) (string, error)
	ChooseRemoteFn          func(repoPath string) (string, string, error)
	BranchExistsLocallyFn   func(repoPath, branch string) bool
	RemoteBranchExistsFn    func(ctx context.Context, repoPath, remote, branch string) bool
	DetectDefaultBranchFn   func(ctx context.Context, repoPath, remote string) string
	CreateWorktreeFn        func(ctx context.Context, repoPath, worktreePath, branch, remote, base string) error
	RemoveWorktreeFn        func(ctx context.Context, repoPath, worktreePath string) error
	MainRepoPathFn          func(ctx context.Context, worktreePath string) (string, error)
	HasUncommittedChangesFn func(ctx context.Context, path string) bool
	SyncUntrackedFn         func(ctx context.Context, sourcePath, worktreePath string, patterns []string) ([]string, error)
	EnsureGitignoreFn       func(worktreePath string) error

	CreatedWorktrees []string
	RemovedWorktrees []string
}

func (m *MockGitManager) DetectBranch(repoPath string) (string, error) {
	if m.DetectBranchFn != nil {
		return m.DetectBranchFn(repoPath)
	}
	return "main", nil
}

func (m *MockGitManager) ChooseRemote(repoPath string) (string, string, error) {
	if m.ChooseRemoteFn != nil {
		return m.ChooseRemoteFn(repoPath)
	}
	return "origin", "", nil
}

func (m *MockGitManager) BranchExistsLocally(repoPath, branch string) bool {
	if m.BranchExistsLocallyFn != nil {
		return m.BranchExistsLocallyFn(repoPath, branch)
	}
	return false
}

func (m *MockGitManager) RemoteBranchExists(ctx context.Context, repoPath, remote, branch string) bool {
	if m.RemoteBranchExistsFn != nil {
		return m.RemoteBranchExistsFn(ctx, repoPath, remote, branch)
	}
	return false
}

func (m *MockGitManager) DetectDefaultBranch(ctx context.Context, repoPath, remote string) string {
	if m.DetectDefaultBranchFn != nil {
		return m.DetectDefaultBranchFn(ctx, repoPath, remote)
	}
	return "main"
}

func (m *MockGitManager) CreateWorktree(ctx context.Context, repoPath, worktreePath, branch, remote, base string) error {
	m.CreatedWorktrees = append(m.CreatedWorktrees, worktreePath)
	if m.CreateWorktreeFn != nil {
		return m.CreateWorktreeFn(ctx, repoPath, worktreePath, branch, remote, base)
	}
	return nil
}

func (m *MockGitManager) RemoveWorktree(ctx context.Context, repoPath, worktreePath string) error {
	m.RemovedWorktrees = append(m.RemovedWorktrees, worktreePath)
	if m.RemoveWorktreeFn != nil {
		return m.RemoveWorktreeFn(ctx, repoPath, worktreePath)
	}
	return nil
}

func (m *MockGitManager) MainRepoPath(ctx context.Context, worktreePath string) (string, error) {
	if m.MainRepoPathFn != nil {
		return m.MainRepoPathFn(ctx, worktreePath)
	}
	return worktreePath, nil
}

func (m *MockGitManager) HasUncommittedChanges(ctx context.Context, path string) bool {
	if m.HasUncommittedChangesFn != nil {
		return m.HasUncommittedChangesFn(ctx, path)
	}
	return false
}

func (m *MockGitManager) SyncUntracked(ctx context.Context, sourcePath, worktreePath string, patterns []string) ([]string, error) {
	if m.SyncUntrackedFn != nil {
		return m.SyncUntrackedFn(ctx, sourcePath, worktreePath, patterns)
	}
	return nil, nil
}

func (m *MockGitManager) EnsureGitignore(worktreePath string) error {
	if m.EnsureGitignoreFn != nil {
		return m.EnsureGitignoreFn(worktreePath)
	}
	return nil
}

// MockTmuxManager is a scriptable session driver that records mutations.
type MockTmuxManager struct {
	SessionExistsFn func(ctx context.Context, session string) bool
	NewSessionFn    func(ctx context.Context, session, dir string) error
	SetupWindowsFn  func(ctx context.Context, session string, windows []config.Window, worktreePath string) error

	Sessions   []string // sessions created
	Killed     []string // sessions killed
	Env        map[string]map[string]string
	Options    map[string]map[string]string
	WindowsFor map[string][]config.Window
	SwitchedTo []string

	ChooseSessionCalls int
}

func NewMockTmuxManager() *MockTmuxManager {
	return &MockTmuxManager{
		Env:        map[string]map[string]string{},
		Options:    map[string]map[string]string{},
		WindowsFor: map[string][]config.Window{},
	}
}

func (m *MockTmuxManager) SessionExists(ctx context.Context, session string) bool {
	if m.SessionExistsFn != nil {
		return m.SessionExistsFn(ctx, session)
	}
	for _, s := range m.Sessions {
		if s == session {
			return true
		}
	}
	return false
}

func (m *MockTmuxManager) NewSession(ctx context.Context, session, dir string) error {
	if m.NewSessionFn != nil {
		if err := m.NewSessionFn(ctx, session, dir); err != nil {
			return err
		}
	}
	m.Sessions = append(m.Sessions, session)
	return nil
}

func (m *MockTmuxManager) KillSession(ctx context.Context, session string) error {
	m.Killed = append(m.Killed, session)
	for i, s := range m.Sessions {
		if s == session {
			m.Sessions = append(m.Sessions[:i], m.Sessions[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MockTmuxManager) SetEnvironment(ctx context.Context, session, key, value string) error {
	if m.Env[session] == nil {
		m.Env[session] = map[string]string{}
	}
	m.Env[session][key] = value
	return nil
}

func (m *MockTmuxManager) SetOption(ctx context.Context, session, option, value string) error {
	if m.Options[session] == nil {
		m.Options[session] = map[string]string{}
	}
	m.Options[session][option] = value
	return nil
}

func (m *MockTmuxManager) SetupWindows(ctx context.Context, session string, windows []config.Window, worktreePath string) error {
	if m.SetupWindowsFn != nil {
		return m.SetupWindowsFn(ctx, session, windows, worktreePath)
	}
	m.WindowsFor[session] = windows
	return nil
}

func (m *MockTmuxManager) ChooseSession(ctx context.Context) error {
	m.ChooseSessionCalls++
	return nil
}

func (m *MockTmuxManager) SwitchClient(ctx context.Context, session string) error {
	m.SwitchedTo = append(m.SwitchedTo, session)
	return nil
}

func (m *MockTmuxManager) AttachCommand(session string) []string {
	return []string{"tmux", "attach-session", "-t", "=" + session}
}

// MockUI scripts the interactive prompts.
type MockUI struct {
	SelectFn  func(label string, candidates []string) (int, error)
	ConfirmFn func(label string) (bool, error)

	SelectCalls  []string
	ConfirmCalls []string
}

func (m *MockUI) Select(label string, candidates []string) (int, error) {
	m.SelectCalls = append(m.SelectCalls, label)
	if m.SelectFn != nil {
		return m.SelectFn(label, candidates)
	}
	return 0, nil
}

func (m *MockUI) Confirm(label string) (bool, error) {
	m.ConfirmCalls = append(m.ConfirmCalls, label)
	if m.ConfirmFn != nil {
		return m.ConfirmFn(label)
	}
	return true, nil
}
