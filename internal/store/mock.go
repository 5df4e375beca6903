package store

import (
	"fmt"
	"strings"
)

// MockProfileStore is an in-memory ProfileRepository for testing.
type MockProfileStore struct {
	Profiles []Profile

	// Error flags for testing error conditions
	LoadError   error
	SaveError   error
	DeleteError error
}

// Load returns a copy of the mock profiles.
func (m *MockProfileStore) Load() ([]Profile, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	out := make([]Profile, len(m.Profiles))
	copy(out, m.Profiles)
	return out, nil
}

// Get returns the named mock profile.
func (m *MockProfileStore) Get(name string) (*Profile, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	for i := range m.Profiles {
		if strings.EqualFold(m.Profiles[i].Name, name) {
			p := m.Profiles[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// Save upserts a mock profile.
func (m *MockProfileStore) Save(p Profile) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	for i := range m.Profiles {
		if strings.EqualFold(m.Profiles[i].Name, p.Name) {
			m.Profiles[i] = p
			return nil
		}
	}
	m.Profiles = append(m.Profiles, p)
	return nil
}

// Delete removes a mock profile.
func (m *MockProfileStore) Delete(name string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	for i := range m.Profiles {
		if strings.EqualFold(m.Profiles[i].Name, name) {
			m.Profiles = append(m.Profiles[:i], m.Profiles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

var (
	_ ProfileRepository = (*ProfileStore)(nil)
	_ ProfileRepository = (*MockProfileStore)(nil)
)
