package operations

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbit/internal/config"
	"orbit/internal/git"
	"orbit/internal/state"
	"orbit/internal/testutil"
)

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

// initRepo builds a repository with one commit on main. The orbit ignore
// entry is committed up front so a freshly launched worktree is clean.
func initRepo(t *testing.T, dir string) {
	t.Helper()
	runGit(t, dir, "init")
	runGit(t, dir, "symbolic-ref", "HEAD", "refs/heads/main")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# myapp\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(".orbit/\n"), 0644))
	runGit(t, dir, "add", ".")
	runGit(t, dir, "-c", "user.email=dev@example.com", "-c", "user.name=dev", "commit", "-m", "initial commit")
}

func TestLaunchAndDestroyAgainstRealRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	repoDir := filepath.Join(t.TempDir(), "myapp")
	require.NoError(t, os.MkdirAll(repoDir, 0755))
	initRepo(t, repoDir)

	cfg := &config.Config{Planets: []config.Planet{{Name: "myapp", Path: repoDir}}}
	tmux := testutil.NewMockTmuxManager()
	store := state.NewStore(filepath.Join(t.TempDir(), "state.json"))
	mgr := New(git.New(), tmux, &testutil.MockUI{}, store, cfg, config.DefaultSettings())

	resp, err := mgr.Launch(context.Background(), LaunchRequest{
		Branch:     "feat",
		Name:       "demo",
		WorkingDir: repoDir,
	})
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(repoDir)
	require.NoError(t, err)
	wantWorktree := filepath.Join(filepath.Dir(resolved), "myapp.wt", "demo")
	assert.Equal(t, wantWorktree, resp.Orbit.Worktree)

	// The worktree is a real checkout of the new branch with the repo's files.
	assert.FileExists(t, filepath.Join(wantWorktree, "README.md"))
	assert.Equal(t, "feat", runGit(t, wantWorktree, "rev-parse", "--abbrev-ref", "HEAD"))
	assert.Equal(t, []string{"demo"}, tmux.Sessions)

	st, err := store.Load()
	require.NoError(t, err)
	assert.True(t, st.Has("demo"))

	_, err = mgr.Destroy(context.Background(), DestroyRequest{Name: "demo"})
	require.NoError(t, err)

	_, statErr := os.Stat(wantWorktree)
	assert.True(t, os.IsNotExist(statErr))
	assert.NotContains(t, runGit(t, repoDir, "worktree", "list"), "demo")

	st, err = store.Load()
	require.NoError(t, err)
	assert.False(t, st.Has("demo"))
}
