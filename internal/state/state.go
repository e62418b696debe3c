// Package state persists orbit records as a flat JSON file. The file is the
// source of truth for which environments exist; sessions and worktrees are
// checked against the live system at read time, never cached here.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"

	"orbit/internal/constants"
	"orbit/internal/errors"
)

// Orbit is one persisted environment record.
type Orbit struct {
	Name        string      `json:"name"`
	Planet      string      `json:"planet"`
	Branch      string      `json:"branch"`
	Worktree    string      `json:"worktree"`
	TmuxSession string      `json:"tmux_session"`
	Ports       map[int]int `json:"ports,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// State is the in-memory view of the state file.
type State struct {
	Orbits map[string]Orbit `json:"orbits"`
}

// NewState returns an empty state.
func NewState() *State {
	return &State{Orbits: map[string]Orbit{}}
}

// Add inserts an orbit. The name must be free; collision policy lives in the
// orchestrator, so a duplicate here is an internal error.
func (s *State) Add(o Orbit) error {
	if _, ok := s.Orbits[o.Name]; ok {
		return errors.New(errors.ErrInternal, fmt.Sprintf("orbit '%s' already present in state", o.Name))
	}
	s.Orbits[o.Name] = o
	return nil
}

// Remove deletes the named orbit. Removing an absent name is a no-op.
func (s *State) Remove(name string) {
	delete(s.Orbits, name)
}

// Get returns the named orbit.
func (s *State) Get(name string) (Orbit, bool) {
	o, ok := s.Orbits[name]
	return o, ok
}

// Has reports whether the named orbit exists.
func (s *State) Has(name string) bool {
	_, ok := s.Orbits[name]
	return ok
}

// All returns every orbit ordered by creation time, oldest first, name as the
// tiebreak. Listing output stays stable across invocations.
func (s *State) All() []Orbit {
	orbits := make([]Orbit, 0, len(s.Orbits))
	for _, o := range s.Orbits {
		orbits = append(orbits, o)
	}
	sort.Slice(orbits, func(i, j int) bool {
		if !orbits[i].CreatedAt.Equal(orbits[j].CreatedAt) {
			return orbits[i].CreatedAt.Before(orbits[j].CreatedAt)
		}
		return orbits[i].Name < orbits[j].Name
	})
	return orbits
}

// AllPorts returns the union of assigned ports across all orbits.
func (s *State) AllPorts() map[int]bool {
	claimed := map[int]bool{}
	for _, o := range s.Orbits {
		for _, port := range o.Ports {
			claimed[port] = true
		}
	}
	return claimed
}

// Store reads and writes the state file. Concurrent invocations serialize on
// a sidecar flock; readers take a shared lock, writers an exclusive one. The
// read-modify-write window between Load and Save is still unguarded, so two
// simultaneous launches can lose one update.
type Store struct {
	path string
}

// NewStore creates a store for the state file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the state file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) lockPath() string {
	return s.path + ".lock"
}

// Load reads the state file. A missing file is an empty state; malformed
// JSON or an invalid record is fatal, naming the offending key.
func (s *Store) Load() (*State, error) {
	fl := flock.New(s.lockPath())
	if err := os.MkdirAll(filepath.Dir(s.path), constants.DirPermissions); err != nil {
		return nil, errors.Wrap(errors.ErrStateWrite, "failed to create state directory", err)
	}
	if err := fl.RLock(); err != nil {
		return nil, errors.Wrap(errors.ErrStateWrite, "failed to lock state file", err)
	}
	defer func() { _ = fl.Unlock() }()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return NewState(), nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrStateParse, fmt.Sprintf("failed to read state %s", s.path), err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, errors.WrapWithDetails(errors.ErrStateParse,
			fmt.Sprintf("invalid JSON in %s", s.path), err.Error(), err)
	}
	if st.Orbits == nil {
		st.Orbits = map[string]Orbit{}
	}

	for key, o := range st.Orbits {
		if err := validateOrbit(key, o); err != nil {
			return nil, err
		}
	}
	return &st, nil
}

// Save atomically replaces the state file under an exclusive lock.
func (s *Store) Save(st *State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), constants.DirPermissions); err != nil {
		return errors.Wrap(errors.ErrStateWrite, "failed to create state directory", err)
	}

	fl := flock.New(s.lockPath())
	if err := fl.Lock(); err != nil {
		return errors.Wrap(errors.ErrStateWrite, "failed to lock state file", err)
	}
	defer func() { _ = fl.Unlock() }()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "failed to encode state", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), constants.FilePermissions); err != nil {
		return errors.Wrap(errors.ErrStateWrite, fmt.Sprintf("failed to write state %s", s.path), err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(errors.ErrStateWrite, fmt.Sprintf("failed to replace state %s", s.path), err)
	}
	return nil
}

func validateOrbit(key string, o Orbit) error {
	missing := ""
	switch {
	case o.Name == "":
		missing = "name"
	case o.Planet == "":
		missing = "planet"
	case o.Branch == "":
		missing = "branch"
	case o.Worktree == "":
		missing = "worktree"
	case o.TmuxSession == "":
		missing = "tmux_session"
	}
	if missing != "" {
		return errors.New(errors.ErrStateValidation,
			fmt.Sprintf("state record '%s' is missing required field '%s'", key, missing))
	}
	if o.Name != key {
		return errors.New(errors.ErrStateValidation,
			fmt.Sprintf("state record '%s' has mismatched name '%s'", key, o.Name))
	}
	return nil
}
