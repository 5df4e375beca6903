// Package store persists named field-mapping profiles in a YAML file.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fjacquet/mpr-recon/internal/fileutils"
	"fjacquet/mpr-recon/internal/logging"
	"fjacquet/mpr-recon/internal/mapping"
	"fjacquet/mpr-recon/internal/models"
	"fjacquet/mpr-recon/internal/validation"

	"gopkg.in/yaml.v3"
)

// DefaultProfilesFile is used when no profiles file is configured.
const DefaultProfilesFile = "mapping_profiles.yaml"

// ErrProfileNotFound is returned when a named profile does not exist.
var ErrProfileNotFound = errors.New("profile not found")

// Profile is a saved field mapping for one dataset role, typically one
// gateway's or one bank's export layout.
type Profile struct {
	Name        string            `yaml:"name"`
	Role        models.Role       `yaml:"role"`
	Description string            `yaml:"description,omitempty"`
	Mapping     map[string]string `yaml:"mapping"`
}

// FieldMapping converts the profile into a FieldMapping, rejecting field
// names that do not belong to the role's schema.
func (p Profile) FieldMapping() (mapping.FieldMapping, error) {
	schema := mapping.SchemaFor(p.Role)
	m := make(mapping.FieldMapping, len(p.Mapping))
	for field, column := range p.Mapping {
		f := models.Field(field)
		if !schema.Has(f) {
			return nil, fmt.Errorf("profile %q: field %q is not part of the %s schema", p.Name, field, p.Role)
		}
		m[f] = column
	}
	return m, nil
}

type profilesDocument struct {
	Profiles []Profile `yaml:"profiles"`
}

// ProfileRepository is the behaviour the CLI needs from a profile store.
type ProfileRepository interface {
	Load() ([]Profile, error)
	Get(name string) (*Profile, error)
	Save(p Profile) error
	Delete(name string) error
}

// ProfileStore manages loading and saving of mapping profiles
type ProfileStore struct {
	ProfilesFile string
	logger       logging.Logger
}

// NewProfileStore creates a new store backed by profilesFile
func NewProfileStore(profilesFile string, logger logging.Logger) *ProfileStore {
	if profilesFile == "" {
		profilesFile = DefaultProfilesFile
	}
	return &ProfileStore{
		ProfilesFile: profilesFile,
		logger:       logging.Component(logger, "profiles"),
	}
}

// FindConfigFile looks for a configuration file in standard locations
func (s *ProfileStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "mpr-recon", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// Path returns the file profiles are read from and written to. An existing
// file in a standard location wins; otherwise the configured name is used.
func (s *ProfileStore) Path() string {
	if path, err := s.FindConfigFile(s.ProfilesFile); err == nil {
		return path
	}
	return s.ProfilesFile
}

// Load returns every saved profile sorted by name. A missing file yields an
// empty list.
func (s *ProfileStore) Load() ([]Profile, error) {
	path, err := s.FindConfigFile(s.ProfilesFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("Profiles file not found", logging.F(logging.FieldFile, s.ProfilesFile))
			return []Profile{}, nil
		}
		return nil, fmt.Errorf("error resolving profiles file: %w", err)
	}

	if info, statErr := os.Stat(path); statErr == nil {
		if permErr := validation.IsValidFilePermissions(info.Mode().Perm()); permErr != nil {
			s.logger.Warn("Profiles file is readable by others", logging.F(logging.FieldFile, path), logging.F(logging.FieldReason, permErr.Error()))
		}
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("error reading profiles file: %w", err)
	}

	var doc profilesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing profiles file %s: %w", path, err)
	}
	if doc.Profiles == nil {
		doc.Profiles = []Profile{}
	}

	for i := range doc.Profiles {
		role, err := models.ParseRole(string(doc.Profiles[i].Role))
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", doc.Profiles[i].Name, err)
		}
		doc.Profiles[i].Role = role
	}
	sortProfiles(doc.Profiles)

	s.logger.Debug("Loaded mapping profiles", logging.F(logging.FieldCount, len(doc.Profiles)), logging.F(logging.FieldFile, path))
	return doc.Profiles, nil
}

// Get returns the named profile. Names compare case-insensitively.
func (s *ProfileStore) Get(name string) (*Profile, error) {
	profiles, err := s.Load()
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if strings.EqualFold(profiles[i].Name, name) {
			return &profiles[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// Save inserts p or replaces the profile with the same name.
func (s *ProfileStore) Save(p Profile) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("profile name must not be empty")
	}
	role, err := models.ParseRole(string(p.Role))
	if err != nil {
		return err
	}
	p.Role = role
	if _, err := p.FieldMapping(); err != nil {
		return err
	}

	profiles, err := s.Load()
	if err != nil {
		return err
	}

	replaced := false
	for i := range profiles {
		if strings.EqualFold(profiles[i].Name, p.Name) {
			profiles[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		profiles = append(profiles, p)
	}

	if err := s.write(profiles); err != nil {
		return err
	}
	s.logger.Info("Saved mapping profile", logging.F(logging.FieldProfile, p.Name), logging.F(logging.FieldRole, p.Role))
	return nil
}

// Delete removes the named profile.
func (s *ProfileStore) Delete(name string) error {
	profiles, err := s.Load()
	if err != nil {
		return err
	}

	kept := profiles[:0]
	found := false
	for _, p := range profiles {
		if strings.EqualFold(p.Name, name) {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}

	if err := s.write(kept); err != nil {
		return err
	}
	s.logger.Info("Deleted mapping profile", logging.F(logging.FieldProfile, name))
	return nil
}

func (s *ProfileStore) write(profiles []Profile) error {
	sortProfiles(profiles)
	data, err := yaml.Marshal(profilesDocument{Profiles: profiles})
	if err != nil {
		return fmt.Errorf("error marshaling profiles: %w", err)
	}
	if err := fileutils.WriteFile(s.Path(), data, 0600); err != nil {
		return fmt.Errorf("error writing profiles: %w", err)
	}
	return nil
}

func sortProfiles(profiles []Profile) {
	sort.SliceStable(profiles, func(i, j int) bool {
		return strings.ToLower(profiles[i].Name) < strings.ToLower(profiles[j].Name)
	})
}
