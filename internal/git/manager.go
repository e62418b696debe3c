// Package git wraps the version-control tool behind a small set of named
// operations. Read-only probes go through go-git; anything that mutates the
// repository or talks to a remote shells out to the git binary, whose
// diagnostic text is preserved on the returned error.
package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"orbit/internal/constants"
	"orbit/internal/errors"
	"orbit/internal/execx"
)

// Manager handles git operations including worktree management
type Manager struct {
	runner execx.Runner
}

// New creates a new git manager using the real git binary
func New() *Manager {
	return &Manager{runner: execx.ExecRunner{}}
}

// NewWithRunner creates a git manager with a custom command runner
func NewWithRunner(r execx.Runner) *Manager {
	return &Manager{runner: r}
}

var (
	slugInvalid  = regexp.MustCompile(`[^a-z0-9-]`)
	slugCollapse = regexp.MustCompile(`-+`)
	checkedOutRe = regexp.MustCompile(`already used by worktree at '([^']+)'`)
)

// Slugify derives a filesystem- and session-name-safe slug from a branch
// name: lowercase, slashes and other unsafe characters become hyphens,
// hyphen runs collapse, and the result is capped at 40 characters.
func Slugify(branch string) string {
	slug := strings.ToLower(branch)
	slug = strings.ReplaceAll(slug, "/", "-")
	slug = slugInvalid.ReplaceAllString(slug, "-")
	slug = slugCollapse.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > constants.SlugMaxLen {
		slug = slug[:constants.SlugMaxLen]
	}
	return slug
}

// DetectBranch returns the current branch name of the checkout at repoPath.
// A detached HEAD is an error.
func (m *Manager) DetectBranch(repoPath string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(repoPath, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", errors.Wrap(errors.ErrGitCommand, "failed to open repository", err).WithContext("path", repoPath)
	}

	head, err := repo.Head()
	if err != nil {
		return "", errors.Wrap(errors.ErrGitCommand, "failed to detect branch", err).WithContext("path", repoPath)
	}

	if !head.Name().IsBranch() {
		return "", errors.New(errors.ErrDetachedHead, "repository is in detached HEAD state")
	}
	return head.Name().Short(), nil
}

// Remotes returns the sorted list of configured remote names.
func (m *Manager) Remotes(repoPath string) ([]string, error) {
	repo, err := gogit.PlainOpenWithOptions(repoPath, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.Wrap(errors.ErrGitCommand, "failed to open repository", err).WithContext("path", repoPath)
	}

	remotes, err := repo.Remotes()
	if err != nil {
		return nil, errors.Wrap(errors.ErrGitCommand, "failed to list remotes", err)
	}

	names := make([]string, 0, len(remotes))
	for _, r := range remotes {
		names = append(names, r.Config().Name)
	}
	sort.Strings(names)
	return names, nil
}

// ChooseRemote picks the remote to use for branch resolution. An "origin"
// remote wins; otherwise the first remote alphabetically is chosen and a
// notice string informs the caller. No remotes yields empty values.
func (m *Manager) ChooseRemote(repoPath string) (remote, notice string, err error) {
	remotes, err := m.Remotes(repoPath)
	if err != nil {
		return "", "", err
	}
	if len(remotes) == 0 {
		return "", "", nil
	}
	for _, r := range remotes {
		if r == "origin" {
			return "origin", "", nil
		}
	}
	return remotes[0], fmt.Sprintf("No 'origin' remote found; using '%s'", remotes[0]), nil
}

// BranchExistsLocally reports whether branch exists as a local branch.
func (m *Manager) BranchExistsLocally(repoPath, branch string) bool {
	repo, err := gogit.PlainOpenWithOptions(repoPath, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return false
	}
	_, err = repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	return err == nil
}

// RemoteBranchExists reports whether branch exists on the given remote.
// This queries the remote directly and therefore needs network access.
func (m *Manager) RemoteBranchExists(ctx context.Context, repoPath, remote, branch string) bool {
	stdout, _, err := m.runner.Run(ctx, repoPath, "git", "ls-remote", "--heads", remote, branch)
	return err == nil && stdout != ""
}

// DetectDefaultBranch determines the remote's default branch. The live
// remote HEAD symref is authoritative; a locally cached symref is the
// fallback, then a probe for conventional branch names. Empty means unknown.
func (m *Manager) DetectDefaultBranch(ctx context.Context, repoPath, remote string) string {
	// Ask the remote directly, not affected by stale local state.
	stdout, _, err := m.runner.Run(ctx, repoPath, "git", "ls-remote", "--symref", remote, "HEAD")
	if err == nil {
		const prefix = "ref: refs/heads/"
		const suffix = "\tHEAD"
		for _, line := range strings.Split(stdout, "\n") {
			if strings.HasPrefix(line, prefix) && strings.HasSuffix(line, suffix) {
				return line[len(prefix) : len(line)-len(suffix)]
			}
		}
	}

	// Fall back to the locally cached symref (set during clone/fetch).
	stdout, _, err = m.runner.Run(ctx, repoPath, "git", "symbolic-ref", fmt.Sprintf("refs/remotes/%s/HEAD", remote))
	if err == nil {
		prefix := fmt.Sprintf("refs/remotes/%s/", remote)
		if strings.HasPrefix(stdout, prefix) {
			return strings.TrimPrefix(stdout, prefix)
		}
	}

	for _, candidate := range []string{"main", "master", "develop"} {
		if m.BranchExistsLocally(repoPath, candidate) {
			return candidate
		}
	}
	return ""
}

// CreateWorktree materializes a worktree at worktreePath for branch,
// resolving the branch three ways in order: an existing local branch is
// checked out as-is; a branch existing on the remote is fetched and tracked;
// otherwise a brand-new branch is created, from base when given.
func (m *Manager) CreateWorktree(ctx context.Context, repoPath, worktreePath, branch, remote, base string) error {
	if err := os.MkdirAll(filepath.Dir(worktreePath), constants.DirPermissions); err != nil {
		return errors.Wrap(errors.ErrInvalidPath, "failed to create worktree parent directory", err)
	}

	var args []string
	switch {
	case m.BranchExistsLocally(repoPath, branch):
		args = []string{"worktree", "add", worktreePath, branch}
	case remote != "" && m.RemoteBranchExists(ctx, repoPath, remote, branch):
		if _, stderr, err := m.runner.Run(ctx, repoPath, "git", "fetch", remote, branch); err != nil {
			return errors.WrapWithDetails(errors.ErrGitCommand, "failed to fetch branch", stderr, err)
		}
		args = []string{"worktree", "add", "-b", branch, worktreePath, fmt.Sprintf("%s/%s", remote, branch)}
	default:
		args = []string{"worktree", "add", "-b", branch, worktreePath}
		if base != "" {
			args = append(args, base)
		}
	}

	if _, stderr, err := m.runner.Run(ctx, repoPath, "git", args...); err != nil {
		if strings.Contains(stderr, "already used by worktree") {
			location := ""
			if match := checkedOutRe.FindStringSubmatch(stderr); match != nil {
				location = " at " + match[1]
			}
			return errors.Newf(errors.ErrBranchCheckedOut,
				"branch '%s' is already checked out%s; run 'orbit launch <new-branch>' to start on a different branch",
				branch, location)
		}
		return errors.WrapWithDetails(errors.ErrGitCommand, "failed to create worktree", stderr, err)
	}
	return nil
}

// RemoveWorktree force-removes the worktree registration at worktreePath.
func (m *Manager) RemoveWorktree(ctx context.Context, repoPath, worktreePath string) error {
	if _, stderr, err := m.runner.Run(ctx, repoPath, "git", "worktree", "remove", "--force", worktreePath); err != nil {
		return errors.WrapWithDetails(errors.ErrGitCommand, "failed to remove worktree", stderr, err)
	}
	return nil
}

// MainRepoPath resolves the primary (non-worktree) repository that owns the
// checkout at worktreePath.
func (m *Manager) MainRepoPath(ctx context.Context, worktreePath string) (string, error) {
	stdout, stderr, err := m.runner.Run(ctx, worktreePath, "git", "rev-parse", "--git-common-dir")
	if err != nil {
		return "", errors.WrapWithDetails(errors.ErrGitCommand, "failed to find main git repository", stderr, err)
	}
	gitDir := stdout
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(worktreePath, gitDir)
	}
	return filepath.Dir(gitDir), nil
}

// HasUncommittedChanges reports whether the checkout at path has modified,
// staged, or untracked files.
func (m *Manager) HasUncommittedChanges(ctx context.Context, path string) bool {
	stdout, _, err := m.runner.Run(ctx, path, "git", "status", "--short")
	return err == nil && stdout != ""
}

// SyncUntracked mirrors untracked files from sourcePath into worktreePath,
// limited to paths whose name matches one of the shell-glob patterns.
// Ancestor directories are checked shallowest-first, so a pattern naming a
// directory symlinks the whole directory rather than its individual files.
// Returns the relative paths actually mirrored.
func (m *Manager) SyncUntracked(ctx context.Context, sourcePath, worktreePath string, patterns []string) ([]string, error) {
	stdout, stderr, err := m.runner.Run(ctx, sourcePath, "git", "ls-files", "--others")
	if err != nil {
		return nil, errors.WrapWithDetails(errors.ErrGitCommand,
			fmt.Sprintf("failed to list untracked files in %s", sourcePath), stderr, err)
	}
	if stdout == "" {
		return nil, nil
	}

	synced := []string{}
	done := map[string]bool{}

	for _, entry := range strings.Split(stdout, "\n") {
		if entry == "" {
			continue
		}

		// Patterns are checked against path segments shallowest-first; a
		// non-matching ancestor blocks everything beneath it, so a dotfile
		// inside a plain directory stays put while a matched directory is
		// mirrored whole.
		parts := strings.Split(entry, "/")
		if parts[0] == ".git" || !matchesAny(parts[0], patterns) {
			continue
		}
		matched := parts[0]

		if done[matched] {
			continue
		}
		done[matched] = true

		src, err := filepath.Abs(filepath.Join(sourcePath, matched))
		if err != nil {
			return nil, errors.Wrap(errors.ErrInvalidPath, "failed to resolve source path", err)
		}
		dst := filepath.Join(worktreePath, matched)
		if _, err := os.Lstat(dst); err == nil {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dst), constants.DirPermissions); err != nil {
			return nil, errors.Wrap(errors.ErrInvalidPath, "failed to create parent directory", err)
		}
		if err := os.Symlink(src, dst); err != nil {
			return nil, errors.Wrap(errors.ErrInvalidPath, fmt.Sprintf("failed to link %s", matched), err)
		}
		synced = append(synced, matched)
	}

	return synced, nil
}

func matchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// EnsureGitignore idempotently appends the orbit ignore entry to the
// worktree's .gitignore, creating the file if absent.
func (m *Manager) EnsureGitignore(worktreePath string) error {
	path := filepath.Join(worktreePath, ".gitignore")

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrInvalidPath, "failed to read .gitignore", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == constants.GitignoreEntry {
			return nil
		}
	}

	content := string(data)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += constants.GitignoreEntry + "\n"

	if err := os.WriteFile(path, []byte(content), constants.FilePermissions); err != nil {
		return errors.Wrap(errors.ErrInvalidPath, "failed to write .gitignore", err)
	}
	return nil
}
