package operations

import (
	"fmt"
	"strings"

	"orbit/internal/errors"
	"orbit/internal/state"
)

// ResolveName turns an optional name or prefix into exactly one orbit name.
// An empty input auto-selects a sole orbit or prompts; a prefix matching
// several orbits prompts; zero matches is fatal.
func (m *Manager) ResolveName(nameOrPrefix string, st *state.State) (string, []string, error) {
	candidates := make([]string, 0, len(st.Orbits))
	for _, o := range st.All() {
		candidates = append(candidates, o.Name)
	}

	if nameOrPrefix != "" {
		var matches []string
		for _, name := range candidates {
			if strings.HasPrefix(name, nameOrPrefix) {
				matches = append(matches, name)
			}
		}
		switch len(matches) {
		case 0:
			return "", nil, errors.NewWithDetails(errors.ErrOrbitNotFound,
				fmt.Sprintf("no orbit matching '%s'", nameOrPrefix),
				availableDetail(candidates))
		case 1:
			return matches[0], nil, nil
		default:
			name, err := m.selectFrom(matches)
			return name, nil, err
		}
	}

	switch len(candidates) {
	case 0:
		return "", nil, errors.New(errors.ErrOrbitNotFound, "no orbits exist")
	case 1:
		return candidates[0], []string{fmt.Sprintf("Selected the only orbit: %s", candidates[0])}, nil
	default:
		name, err := m.selectFrom(candidates)
		return name, nil, err
	}
}

func (m *Manager) selectFrom(candidates []string) (string, error) {
	index, err := m.ui.Select("Select orbit", candidates)
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidSelection, "selection failed", err)
	}
	if index < 0 || index >= len(candidates) {
		return "", errors.New(errors.ErrInvalidSelection,
			fmt.Sprintf("selection %d out of range 1-%d", index+1, len(candidates)))
	}
	return candidates[index], nil
}

func availableDetail(names []string) string {
	if len(names) == 0 {
		return "no orbits exist"
	}
	return "existing orbits: " + strings.Join(names, ", ")
}
