package operations

import (
	"context"

	"orbit/internal/state"
)

// OrbitStatus pairs an orbit record with whether its session is actually
// running right now.
type OrbitStatus struct {
	state.Orbit
	Live bool
}

// List returns every orbit with its live/stale status, checked against the
// multiplexer at call time.
func (m *Manager) List(ctx context.Context) ([]OrbitStatus, error) {
	st, err := m.store.Load()
	if err != nil {
		return nil, err
	}

	statuses := make([]OrbitStatus, 0, len(st.Orbits))
	for _, orbit := range st.All() {
		statuses = append(statuses, OrbitStatus{
			Orbit: orbit,
			Live:  m.tmux.SessionExists(ctx, orbit.TmuxSession),
		})
	}
	return statuses, nil
}
