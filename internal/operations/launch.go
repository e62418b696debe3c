package operations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"orbit/internal/config"
	"orbit/internal/constants"
	"orbit/internal/errors"
	"orbit/internal/git"
	"orbit/internal/logger"
	"orbit/internal/ports"
	"orbit/internal/state"
	"orbit/internal/validation"
)

// LaunchRequest carries the launch inputs.
type LaunchRequest struct {
	Branch     string // empty means detect from the working directory
	Name       string // explicit orbit name, empty means derive from the branch
	Base       string // explicit base for brand-new branches
	WorkingDir string
	InsideTmux bool
}

// LaunchResponse reports what launch did and how to get the user there.
type LaunchResponse struct {
	Orbit   state.Orbit
	Notices []string
	Attach  *AttachAction // nil when the client was switched in place
}

// Launch creates a worktree and tmux session for a branch and records the
// orbit. State is only persisted after every external step has succeeded; a
// failure partway leaves no state entry but may leave a worktree on disk.
func (m *Manager) Launch(ctx context.Context, req LaunchRequest) (*LaunchResponse, error) {
	resp := &LaunchResponse{}

	st, err := m.store.Load()
	if err != nil {
		return nil, err
	}

	planet, err := m.cfg.DetectPlanet(req.WorkingDir)
	if err != nil {
		return nil, err
	}
	planetPath, err := planet.ResolvedPath()
	if err != nil {
		return nil, err
	}

	branch := req.Branch
	if branch == "" {
		branch, err = m.git.DetectBranch(req.WorkingDir)
		if err != nil {
			return nil, err
		}
	}

	remote, notice, err := m.git.ChooseRemote(planetPath)
	if err != nil {
		return nil, err
	}
	if notice != "" {
		resp.Notices = append(resp.Notices, notice)
	}

	name, err := m.resolveLaunchName(ctx, st, req.Name, git.Slugify(branch))
	if err != nil {
		return nil, err
	}

	namespace, err := m.worktreeNamespace(planetPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(namespace, constants.DirPermissions); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidPath, "failed to create worktree namespace", err)
	}
	worktreePath := filepath.Join(namespace, name)

	if m.git.HasUncommittedChanges(ctx, req.WorkingDir) {
		resp.Notices = append(resp.Notices,
			"Working directory has uncommitted changes; the new worktree reflects committed history only")
	}

	base := req.Base
	isNewBranch := !m.git.BranchExistsLocally(planetPath, branch) &&
		!(remote != "" && m.git.RemoteBranchExists(ctx, planetPath, remote, branch))
	if isNewBranch && base == "" && remote != "" {
		if base = m.git.DetectDefaultBranch(ctx, planetPath, remote); base != "" {
			resp.Notices = append(resp.Notices, fmt.Sprintf("Creating '%s' from '%s'", branch, base))
		}
	}

	if err := m.git.CreateWorktree(ctx, planetPath, worktreePath, branch, remote, base); err != nil {
		return nil, err
	}
	if err := m.git.EnsureGitignore(worktreePath); err != nil {
		logger.WithError(err).Warn("Failed to update worktree .gitignore")
	}

	patterns := planet.SyncPatterns(m.settings.SyncDefaults)
	synced, err := m.git.SyncUntracked(ctx, planetPath, worktreePath, patterns)
	if err != nil {
		return nil, err
	}
	if len(synced) > 0 {
		resp.Notices = append(resp.Notices, fmt.Sprintf("Mirrored %d untracked path(s) into the worktree", len(synced)))
	}

	portMap := ports.Assign(planet.DeclaredPorts(), st.AllPorts())

	session := name
	if err := m.setupSession(ctx, session, worktreePath, *planet, name, branch, portMap); err != nil {
		return nil, err
	}

	orbit := state.Orbit{
		Name:        name,
		Planet:      planet.Slug(),
		Branch:      branch,
		Worktree:    worktreePath,
		TmuxSession: session,
		Ports:       portMap,
		CreatedAt:   time.Now().UTC(),
	}
	if err := st.Add(orbit); err != nil {
		return nil, err
	}
	if err := m.store.Save(st); err != nil {
		return nil, err
	}
	resp.Orbit = orbit

	if req.InsideTmux {
		if err := m.tmux.SwitchClient(ctx, session); err != nil {
			return nil, err
		}
	} else {
		resp.Attach = &AttachAction{Session: session}
	}
	return resp, nil
}

// resolveLaunchName applies the collision policy: an explicit name must be
// free, with the remediation advice depending on whether the holder is live
// or stale; a derived name auto-numbers until free.
func (m *Manager) resolveLaunchName(ctx context.Context, st *state.State, explicit, slug string) (string, error) {
	if explicit != "" {
		if err := validation.OrbitName(explicit); err != nil {
			return "", err
		}
		existing, ok := st.Get(explicit)
		if !ok {
			return explicit, nil
		}
		if m.tmux.SessionExists(ctx, existing.TmuxSession) {
			return "", errors.NewWithDetails(errors.ErrOrbitExists,
				fmt.Sprintf("orbit '%s' already exists", explicit),
				"use a different name or run 'orbit destroy "+explicit+"' first")
		}
		return "", errors.NewWithDetails(errors.ErrOrbitStale,
			fmt.Sprintf("orbit '%s' exists but its session is gone", explicit),
			"run 'orbit destroy "+explicit+"' to clean up the stale record first")
	}

	name := slug
	for i := 2; st.Has(name); i++ {
		name = slug + "-" + strconv.Itoa(i)
	}
	return name, nil
}

// worktreeNamespace returns the per-planet directory worktrees are created
// under: a sibling of the planet named "<dirname>.wt", or the same layout
// under the global worktree_base override.
func (m *Manager) worktreeNamespace(planetPath string) (string, error) {
	leaf := filepath.Base(planetPath) + constants.WorktreeDirSuffix
	if m.settings.WorktreeBase != "" {
		base, err := config.ExpandHome(m.settings.WorktreeBase)
		if err != nil {
			return "", err
		}
		return filepath.Join(base, leaf), nil
	}
	return filepath.Join(filepath.Dir(planetPath), leaf), nil
}

func (m *Manager) setupSession(ctx context.Context, session, worktreePath string, planet config.Planet, name, branch string, portMap map[int]int) error {
	if err := m.tmux.NewSession(ctx, session, worktreePath); err != nil {
		return err
	}
	if err := m.tmux.SetOption(ctx, session, "mouse", "on"); err != nil {
		return err
	}
	if err := m.tmux.SetOption(ctx, session, "status-left", fmt.Sprintf(" %s (%s) ", name, branch)); err != nil {
		return err
	}

	for key, value := range planet.Env {
		if err := m.tmux.SetEnvironment(ctx, session, key, value); err != nil {
			return err
		}
	}
	if err := m.tmux.SetEnvironment(ctx, session, constants.TaskEnvVar, name); err != nil {
		return err
	}
	for declared, assigned := range portMap {
		key := fmt.Sprintf("%s%d", constants.PortEnvPrefix, declared)
		if err := m.tmux.SetEnvironment(ctx, session, key, strconv.Itoa(assigned)); err != nil {
			return err
		}
	}

	return m.tmux.SetupWindows(ctx, session, planet.Windows, worktreePath)
}
