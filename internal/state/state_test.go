package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbit/internal/errors"
)

func testOrbit(name string, created time.Time) Orbit {
	return Orbit{
		Name:        name,
		Planet:      "myapp",
		Branch:      "feat",
		Worktree:    "/home/u/src/myapp.wt/" + name,
		TmuxSession: name,
		Ports:       map[int]int{3000: 3000},
		CreatedAt:   created,
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state.json"))
	st, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, st.Orbits)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "state.json"))

	st := NewState()
	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	require.NoError(t, st.Add(testOrbit("demo", created)))
	require.NoError(t, store.Save(st))

	loaded, err := store.Load()
	require.NoError(t, err)
	orbit, ok := loaded.Get("demo")
	require.True(t, ok)
	assert.Equal(t, "feat", orbit.Branch)
	assert.Equal(t, map[int]int{3000: 3000}, orbit.Ports)
	assert.True(t, orbit.CreatedAt.Equal(created))
}

func TestSaveWritesUTCTimestamps(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state.json"))

	st := NewState()
	require.NoError(t, st.Add(testOrbit("demo", time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC))))
	require.NoError(t, store.Save(st))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"created_at": "2026-03-14T09:26:53Z"`)
	assert.Contains(t, string(data), `"orbits"`)
}

func TestLoadMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewStore(path).Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrStateParse))
	assert.Contains(t, err.Error(), path)
}

func TestLoadInvalidRecordNamesKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	content := `{"orbits": {"demo": {"name": "demo", "planet": "myapp", "branch": "", "worktree": "/w", "tmux_session": "demo", "created_at": "2026-03-14T09:26:53Z"}}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := NewStore(path).Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrStateValidation))
	assert.Contains(t, err.Error(), "'demo'")
	assert.Contains(t, err.Error(), "'branch'")
}

func TestAddRejectsDuplicate(t *testing.T) {
	st := NewState()
	require.NoError(t, st.Add(testOrbit("demo", time.Now())))
	assert.Error(t, st.Add(testOrbit("demo", time.Now())))
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	st := NewState()
	st.Remove("ghost")
	assert.Empty(t, st.Orbits)
}

func TestAllOrderedByCreation(t *testing.T) {
	st := NewState()
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.Add(testOrbit("zeta", base)))
	require.NoError(t, st.Add(testOrbit("alpha", base.Add(time.Hour))))
	require.NoError(t, st.Add(testOrbit("beta", base)))

	var names []string
	for _, o := range st.All() {
		names = append(names, o.Name)
	}
	assert.Equal(t, []string{"beta", "zeta", "alpha"}, names)
}

func TestAllPorts(t *testing.T) {
	st := NewState()
	a := testOrbit("a", time.Now())
	a.Ports = map[int]int{3000: 3000, 3001: 3002}
	b := testOrbit("b", time.Now())
	b.Ports = map[int]int{8080: 8081}
	require.NoError(t, st.Add(a))
	require.NoError(t, st.Add(b))

	assert.Equal(t, map[int]bool{3000: true, 3002: true, 8081: true}, st.AllPorts())
}
