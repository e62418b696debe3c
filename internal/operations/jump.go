package operations

import (
	"context"
	"fmt"

	"orbit/internal/errors"
)

// JumpRequest carries the jump (attach/switch) inputs.
type JumpRequest struct {
	Name       string
	InsideTmux bool
}

// JumpResponse reports the resolved orbit and, outside tmux, the attach
// intent for the CLI boundary to exec.
type JumpResponse struct {
	Name    string
	Notices []string
	Attach  *AttachAction
}

// Jump moves the user to an existing orbit's session. A stale orbit can't be
// jumped to. Unnamed jumps from inside tmux open the multiplexer's own
// session picker instead of resolving a name.
func (m *Manager) Jump(ctx context.Context, req JumpRequest) (*JumpResponse, error) {
	if req.Name == "" && req.InsideTmux {
		return &JumpResponse{}, m.tmux.ChooseSession(ctx)
	}

	st, err := m.store.Load()
	if err != nil {
		return nil, err
	}

	name, notices, err := m.ResolveName(req.Name, st)
	if err != nil {
		return nil, err
	}
	resp := &JumpResponse{Name: name, Notices: notices}

	orbit, ok := st.Get(name)
	if !ok {
		return nil, errors.New(errors.ErrOrbitNotFound, fmt.Sprintf("no orbit named '%s'", name))
	}
	if !m.tmux.SessionExists(ctx, orbit.TmuxSession) {
		return nil, errors.NewWithDetails(errors.ErrOrbitStale,
			fmt.Sprintf("orbit '%s' has no running session", name),
			"run 'orbit destroy "+name+"' to clean up the stale record")
	}

	if req.InsideTmux {
		if err := m.tmux.SwitchClient(ctx, orbit.TmuxSession); err != nil {
			return nil, err
		}
	} else {
		resp.Attach = &AttachAction{Session: orbit.TmuxSession}
	}
	return resp, nil
}
