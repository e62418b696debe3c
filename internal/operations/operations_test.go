package operations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbit/internal/config"
	"orbit/internal/errors"
	"orbit/internal/state"
	"orbit/internal/testutil"
)

type fixture struct {
	git    *testutil.MockGitManager
	tmux   *testutil.MockTmuxManager
	ui     *testutil.MockUI
	store  *state.Store
	planet string
	mgr    *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	planetDir := filepath.Join(t.TempDir(), "myapp")
	require.NoError(t, os.MkdirAll(planetDir, 0755))

	f := &fixture{
		git:    &testutil.MockGitManager{},
		tmux:   testutil.NewMockTmuxManager(),
		ui:     &testutil.MockUI{},
		store:  state.NewStore(filepath.Join(t.TempDir(), "state.json")),
		planet: planetDir,
	}
	cfg := &config.Config{Planets: []config.Planet{{
		Name: "myapp",
		Path: planetDir,
		Env:  map[string]string{"APP_ENV": "dev"},
	}}}
	f.mgr = New(f.git, f.tmux, f.ui, f.store, cfg, config.DefaultSettings())
	return f
}

func (f *fixture) addOrbit(t *testing.T, name string, live bool) {
	t.Helper()
	st, err := f.store.Load()
	require.NoError(t, err)
	require.NoError(t, st.Add(state.Orbit{
		Name:        name,
		Planet:      "myapp",
		Branch:      name,
		Worktree:    filepath.Join(filepath.Dir(f.planet), "myapp.wt", name),
		TmuxSession: name,
		CreatedAt:   time.Now().UTC(),
	}))
	require.NoError(t, f.store.Save(st))
	if live {
		f.tmux.Sessions = append(f.tmux.Sessions, name)
	}
}

func TestLaunchCreatesWorktreeSessionAndState(t *testing.T) {
	f := newFixture(t)

	resp, err := f.mgr.Launch(context.Background(), LaunchRequest{
		Branch:     "feat",
		WorkingDir: f.planet,
	})
	require.NoError(t, err)

	wantWorktree := filepath.Join(filepath.Dir(f.planet), "myapp.wt", "feat")
	assert.Equal(t, "feat", resp.Orbit.Name)
	assert.Equal(t, "feat", resp.Orbit.Branch)
	assert.Equal(t, wantWorktree, resp.Orbit.Worktree)
	assert.Equal(t, []string{wantWorktree}, f.git.CreatedWorktrees)
	assert.Equal(t, []string{"feat"}, f.tmux.Sessions)
	assert.Equal(t, "dev", f.tmux.Env["feat"]["APP_ENV"])
	assert.Equal(t, "feat", f.tmux.Env["feat"]["ORBIT_TASK_ID"])
	assert.Equal(t, "on", f.tmux.Options["feat"]["mouse"])

	require.NotNil(t, resp.Attach)
	assert.Equal(t, "feat", resp.Attach.Session)
	assert.Empty(t, f.tmux.SwitchedTo)

	st, err := f.store.Load()
	require.NoError(t, err)
	orbit, ok := st.Get("feat")
	require.True(t, ok)
	assert.Equal(t, "feat", orbit.Branch)
}

func TestLaunchRecordsPlanetSlugNotDisplayName(t *testing.T) {
	f := newFixture(t)
	f.mgr.cfg.Planets[0].Name = "My App (display)"

	resp, err := f.mgr.Launch(context.Background(), LaunchRequest{
		Branch:     "feat",
		WorkingDir: f.planet,
	})
	require.NoError(t, err)
	assert.Equal(t, "myapp", resp.Orbit.Planet)

	st, err := f.store.Load()
	require.NoError(t, err)
	orbit, ok := st.Get("feat")
	require.True(t, ok)
	assert.Equal(t, "myapp", orbit.Planet)
}

func TestLaunchInsideTmuxSwitchesClient(t *testing.T) {
	f := newFixture(t)

	resp, err := f.mgr.Launch(context.Background(), LaunchRequest{
		Branch:     "feat",
		WorkingDir: f.planet,
		InsideTmux: true,
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Attach)
	assert.Equal(t, []string{"feat"}, f.tmux.SwitchedTo)
}

func TestLaunchAutoNumbersDerivedNames(t *testing.T) {
	f := newFixture(t)

	for _, want := range []string{"feat", "feat-2", "feat-3"} {
		resp, err := f.mgr.Launch(context.Background(), LaunchRequest{
			Branch:     "feat",
			WorkingDir: f.planet,
		})
		require.NoError(t, err)
		assert.Equal(t, want, resp.Orbit.Name)
	}
}

func TestLaunchExplicitNameLiveCollision(t *testing.T) {
	f := newFixture(t)
	f.addOrbit(t, "demo", true)

	_, err := f.mgr.Launch(context.Background(), LaunchRequest{
		Branch:     "feat",
		Name:       "demo",
		WorkingDir: f.planet,
	})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrOrbitExists))
	assert.Contains(t, err.Error(), "use a different name")
}

func TestLaunchExplicitNameStaleCollision(t *testing.T) {
	f := newFixture(t)
	f.addOrbit(t, "demo", false)

	_, err := f.mgr.Launch(context.Background(), LaunchRequest{
		Branch:     "feat",
		Name:       "demo",
		WorkingDir: f.planet,
	})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrOrbitStale))
	assert.Contains(t, err.Error(), "stale")
}

func TestLaunchRejectsUnsafeExplicitName(t *testing.T) {
	f := newFixture(t)

	_, err := f.mgr.Launch(context.Background(), LaunchRequest{
		Branch:     "feat",
		Name:       "bad name!",
		WorkingDir: f.planet,
	})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidInput))
	assert.Empty(t, f.git.CreatedWorktrees)
}

func TestLaunchOutsideAnyPlanet(t *testing.T) {
	f := newFixture(t)

	_, err := f.mgr.Launch(context.Background(), LaunchRequest{
		Branch:     "feat",
		WorkingDir: t.TempDir(),
	})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrNoPlanet))
	assert.Contains(t, err.Error(), "myapp")
}

func TestLaunchNewBranchAutoDetectsBase(t *testing.T) {
	f := newFixture(t)
	f.git.DetectDefaultBranchFn = func(context.Context, string, string) string { return "trunk" }

	var gotBase string
	f.git.CreateWorktreeFn = func(_ context.Context, _, _, _, _, base string) error {
		gotBase = base
		return nil
	}

	resp, err := f.mgr.Launch(context.Background(), LaunchRequest{
		Branch:     "feat",
		WorkingDir: f.planet,
	})
	require.NoError(t, err)
	assert.Equal(t, "trunk", gotBase)
	assert.Contains(t, resp.Notices, "Creating 'feat' from 'trunk'")
}

func TestLaunchExistingBranchSkipsBaseDetection(t *testing.T) {
	f := newFixture(t)
	f.git.BranchExistsLocallyFn = func(string, string) bool { return true }

	var gotBase string
	f.git.CreateWorktreeFn = func(_ context.Context, _, _, _, _, base string) error {
		gotBase = base
		return nil
	}

	_, err := f.mgr.Launch(context.Background(), LaunchRequest{
		Branch:     "feat",
		WorkingDir: f.planet,
	})
	require.NoError(t, err)
	assert.Empty(t, gotBase)
}

func TestLaunchFailedWorktreeLeavesNoState(t *testing.T) {
	f := newFixture(t)
	f.git.CreateWorktreeFn = func(context.Context, string, string, string, string, string) error {
		return errors.New(errors.ErrGitCommand, "worktree add failed")
	}

	_, err := f.mgr.Launch(context.Background(), LaunchRequest{
		Branch:     "feat",
		WorkingDir: f.planet,
	})
	require.Error(t, err)

	st, loadErr := f.store.Load()
	require.NoError(t, loadErr)
	assert.Empty(t, st.Orbits)
	assert.Empty(t, f.tmux.Sessions)
}

func TestLaunchAssignsDeclaredPorts(t *testing.T) {
	f := newFixture(t)
	f.mgr.cfg.Planets[0].Windows = []config.Window{{
		Name:  "run",
		Panes: []config.Pane{{Name: "server", Ports: []int{3000}}},
	}}

	resp, err := f.mgr.Launch(context.Background(), LaunchRequest{
		Branch:     "feat",
		WorkingDir: f.planet,
	})
	require.NoError(t, err)
	require.Len(t, resp.Orbit.Ports, 1)
	for declared, assigned := range resp.Orbit.Ports {
		assert.Equal(t, 3000, declared)
		assert.GreaterOrEqual(t, assigned, declared)
		key := fmt.Sprintf("ORBIT_PORT_%d", declared)
		assert.Equal(t, fmt.Sprintf("%d", assigned), f.tmux.Env["feat"][key])
	}
}

func TestDestroyKillsSessionRemovesWorktreeAndState(t *testing.T) {
	f := newFixture(t)
	f.addOrbit(t, "demo", true)
	st, _ := f.store.Load()
	orbit, _ := st.Get("demo")
	require.NoError(t, os.MkdirAll(orbit.Worktree, 0755))

	resp, err := f.mgr.Destroy(context.Background(), DestroyRequest{Name: "demo"})
	require.NoError(t, err)
	assert.Equal(t, "demo", resp.Name)
	assert.Equal(t, []string{"demo"}, f.tmux.Killed)
	assert.Equal(t, []string{orbit.Worktree}, f.git.RemovedWorktrees)

	st, err = f.store.Load()
	require.NoError(t, err)
	assert.False(t, st.Has("demo"))
}

func TestDestroyMissingWorktreeStillCleansState(t *testing.T) {
	f := newFixture(t)
	f.addOrbit(t, "demo", false)

	resp, err := f.mgr.Destroy(context.Background(), DestroyRequest{Name: "demo"})
	require.NoError(t, err)
	assert.Empty(t, f.git.RemovedWorktrees)
	assert.NotEmpty(t, resp.Notices)
	assert.Contains(t, resp.Notices[len(resp.Notices)-1], "no longer exists")

	st, err := f.store.Load()
	require.NoError(t, err)
	assert.False(t, st.Has("demo"))
}

func TestDestroyWorktreeRemovalFailureDowngradedToWarning(t *testing.T) {
	f := newFixture(t)
	f.addOrbit(t, "demo", false)
	st, _ := f.store.Load()
	orbit, _ := st.Get("demo")
	require.NoError(t, os.MkdirAll(orbit.Worktree, 0755))
	f.git.RemoveWorktreeFn = func(context.Context, string, string) error {
		return errors.New(errors.ErrGitCommand, "worktree remove failed")
	}

	resp, err := f.mgr.Destroy(context.Background(), DestroyRequest{Name: "demo"})
	require.NoError(t, err)
	assert.Contains(t, resp.Notices[len(resp.Notices)-1], "state cleaned up anyway")

	st, err = f.store.Load()
	require.NoError(t, err)
	assert.False(t, st.Has("demo"))
}

func TestDestroyDirtyWorktreeRefusedAbortsWithoutStateChange(t *testing.T) {
	f := newFixture(t)
	f.addOrbit(t, "demo", false)
	st, _ := f.store.Load()
	orbit, _ := st.Get("demo")
	require.NoError(t, os.MkdirAll(orbit.Worktree, 0755))
	f.git.HasUncommittedChangesFn = func(context.Context, string) bool { return true }
	f.ui.ConfirmFn = func(string) (bool, error) { return false, nil }

	_, err := f.mgr.Destroy(context.Background(), DestroyRequest{Name: "demo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aborted")
	assert.Empty(t, f.git.RemovedWorktrees)

	st, loadErr := f.store.Load()
	require.NoError(t, loadErr)
	assert.True(t, st.Has("demo"))
}

func TestDestroyPrefixResolution(t *testing.T) {
	f := newFixture(t)
	f.addOrbit(t, "feature-login", false)
	f.addOrbit(t, "bugfix", false)

	resp, err := f.mgr.Destroy(context.Background(), DestroyRequest{Name: "feat"})
	require.NoError(t, err)
	assert.Equal(t, "feature-login", resp.Name)
}

func TestResolveNameCases(t *testing.T) {
	f := newFixture(t)
	f.addOrbit(t, "alpha", false)
	f.addOrbit(t, "alpine", false)
	f.addOrbit(t, "beta", false)
	st, err := f.store.Load()
	require.NoError(t, err)

	name, _, err := f.mgr.ResolveName("beta", st)
	require.NoError(t, err)
	assert.Equal(t, "beta", name)

	_, _, err = f.mgr.ResolveName("zeta", st)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrOrbitNotFound))

	f.ui.SelectFn = func(_ string, candidates []string) (int, error) {
		require.Equal(t, []string{"alpha", "alpine"}, candidates)
		return 1, nil
	}
	name, _, err = f.mgr.ResolveName("alp", st)
	require.NoError(t, err)
	assert.Equal(t, "alpine", name)
}

func TestResolveNameUnnamed(t *testing.T) {
	f := newFixture(t)
	st, err := f.store.Load()
	require.NoError(t, err)

	_, _, err = f.mgr.ResolveName("", st)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrOrbitNotFound))

	f.addOrbit(t, "solo", false)
	st, err = f.store.Load()
	require.NoError(t, err)
	name, notices, err := f.mgr.ResolveName("", st)
	require.NoError(t, err)
	assert.Equal(t, "solo", name)
	require.Len(t, notices, 1)
	assert.Contains(t, notices[0], "solo")
}

func TestListReportsLiveAndStale(t *testing.T) {
	f := newFixture(t)
	f.addOrbit(t, "live", true)
	f.addOrbit(t, "stale", false)

	statuses, err := f.mgr.List(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	byName := map[string]bool{}
	for _, s := range statuses {
		byName[s.Name] = s.Live
	}
	assert.True(t, byName["live"])
	assert.False(t, byName["stale"])
}

func TestJumpStaleOrbit(t *testing.T) {
	f := newFixture(t)
	f.addOrbit(t, "demo", false)

	_, err := f.mgr.Jump(context.Background(), JumpRequest{Name: "demo"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrOrbitStale))
}

func TestJumpUnnamedInsideTmuxOpensPicker(t *testing.T) {
	f := newFixture(t)
	f.addOrbit(t, "demo", true)

	resp, err := f.mgr.Jump(context.Background(), JumpRequest{InsideTmux: true})
	require.NoError(t, err)
	assert.Nil(t, resp.Attach)
	assert.Equal(t, 1, f.tmux.ChooseSessionCalls)
	assert.Empty(t, f.ui.SelectCalls)
}

func TestJumpOutsideTmuxReturnsAttachIntent(t *testing.T) {
	f := newFixture(t)
	f.addOrbit(t, "demo", true)

	resp, err := f.mgr.Jump(context.Background(), JumpRequest{Name: "demo"})
	require.NoError(t, err)
	require.NotNil(t, resp.Attach)
	assert.Equal(t, "demo", resp.Attach.Session)
}
