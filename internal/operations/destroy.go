package operations

import (
	"context"
	"fmt"
	"os"

	"orbit/internal/errors"
	"orbit/internal/logger"
)

// DestroyRequest carries the destroy inputs. Name may be empty or a prefix;
// it is resolved against the state store first.
type DestroyRequest struct {
	Name string
}

// DestroyResponse reports what destroy did.
type DestroyResponse struct {
	Name    string
	Notices []string
}

// Destroy tears an orbit down: kill the session if live, remove the worktree
// if present, then drop the state record. Physical cleanup is best effort;
// the state record is always removed so a broken worktree can't wedge an
// orbit forever.
func (m *Manager) Destroy(ctx context.Context, req DestroyRequest) (*DestroyResponse, error) {
	st, err := m.store.Load()
	if err != nil {
		return nil, err
	}

	name, notices, err := m.ResolveName(req.Name, st)
	if err != nil {
		return nil, err
	}
	resp := &DestroyResponse{Name: name, Notices: notices}

	orbit, ok := st.Get(name)
	if !ok {
		return nil, errors.New(errors.ErrOrbitNotFound, fmt.Sprintf("no orbit named '%s'", name))
	}

	if m.tmux.SessionExists(ctx, orbit.TmuxSession) {
		if err := m.tmux.KillSession(ctx, orbit.TmuxSession); err != nil {
			return nil, err
		}
	}

	if _, statErr := os.Stat(orbit.Worktree); statErr == nil {
		if m.git.HasUncommittedChanges(ctx, orbit.Worktree) {
			confirmed, err := m.ui.Confirm(fmt.Sprintf("Worktree %s has uncommitted changes. Destroy anyway", orbit.Worktree))
			if err != nil {
				return nil, errors.Wrap(errors.ErrInvalidSelection, "confirmation failed", err)
			}
			if !confirmed {
				return nil, errors.New(errors.ErrInvalidInput,
					fmt.Sprintf("aborted: worktree %s has uncommitted changes", orbit.Worktree))
			}
		}

		mainRepo, err := m.git.MainRepoPath(ctx, orbit.Worktree)
		if err != nil {
			mainRepo = orbit.Worktree
		}
		if err := m.git.RemoveWorktree(ctx, mainRepo, orbit.Worktree); err != nil {
			logger.WithError(err).WithField("worktree", orbit.Worktree).Warn("Failed to remove worktree")
			resp.Notices = append(resp.Notices,
				fmt.Sprintf("Warning: could not remove worktree %s; state cleaned up anyway", orbit.Worktree))
		}
	} else {
		resp.Notices = append(resp.Notices,
			fmt.Sprintf("Worktree %s no longer exists; skipping removal", orbit.Worktree))
	}

	st.Remove(name)
	if err := m.store.Save(st); err != nil {
		return nil, err
	}
	return resp, nil
}
