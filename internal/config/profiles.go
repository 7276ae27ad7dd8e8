package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/zalando/go-keyring"
)

const (
	profilesFileName = "profiles.json"
	keyringService   = "ssh-x-transfer"
)

// Profile is a saved connection. The password is kept in the OS keyring
// under the profile ID, never in the JSON file.
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Username  string `json:"username"`
	RemoteDir string `json:"remote_dir,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Label is the one-line description used in listings.
func (p Profile) Label() string {
	return fmt.Sprintf("%s (%s@%s:%d)", p.Name, p.Username, p.Host, p.Port)
}

// Profiles is the on-disk document.
type Profiles struct {
	Profiles []Profile `json:"profiles"`
	LastUsed string    `json:"last_used,omitempty"`
}

// ProfileManager stores profiles as JSON in the config directory.
type ProfileManager struct {
	Path string
	Data *Profiles
}

var _ Storage = (*ProfileManager)(nil)

// NewProfileManager manages profiles.json inside dir. An empty dir selects
// the default config directory.
func NewProfileManager(dir string) (*ProfileManager, error) {
	if dir == "" {
		var err error
		if dir, err = Dir(); err != nil {
			return nil, err
		}
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	return &ProfileManager{
		Path: filepath.Join(dir, profilesFileName),
		Data: &Profiles{Profiles: []Profile{}},
	}, nil
}

func (pm *ProfileManager) Load() error {
	data, err := os.ReadFile(pm.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read profiles file: %w", err)
	}
	if err := json.Unmarshal(data, pm.Data); err != nil {
		return fmt.Errorf("failed to parse profiles file: %w", err)
	}
	return nil
}

func (pm *ProfileManager) Save() error {
	data, err := json.MarshalIndent(pm.Data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}
	if err := os.WriteFile(pm.Path, data, 0600); err != nil {
		return fmt.Errorf("failed to write profiles file: %w", err)
	}
	return nil
}

// AddProfile inserts p, or replaces the profile with the same ID or name.
func (pm *ProfileManager) AddProfile(p Profile) (Profile, error) {
	if strings.TrimSpace(p.Host) == "" {
		return Profile{}, errors.New("profile host is required")
	}
	if p.Port == 0 {
		p.Port = 22
	}
	if p.Name == "" {
		p.Name = p.Host
	}

	for i, existing := range pm.Data.Profiles {
		if (p.ID != "" && existing.ID == p.ID) || (p.ID == "" && existing.Name == p.Name) {
			p.ID = existing.ID
			pm.Data.Profiles[i] = p
			return p, pm.Save()
		}
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	pm.Data.Profiles = append(pm.Data.Profiles, p)
	return p, pm.Save()
}

// DeleteProfile removes the profile matching ref (ID or name) and its
// keyring entry.
func (pm *ProfileManager) DeleteProfile(ref string) error {
	for i, p := range pm.Data.Profiles {
		if p.ID == ref || p.Name == ref {
			if err := keyring.Delete(keyringService, p.ID); err != nil && !errors.Is(err, keyring.ErrNotFound) {
				return fmt.Errorf("failed to delete password from keyring: %w", err)
			}
			pm.Data.Profiles = slices.Delete(pm.Data.Profiles, i, i+1)
			if pm.Data.LastUsed == p.ID {
				pm.Data.LastUsed = ""
			}
			return pm.Save()
		}
	}
	return fmt.Errorf("profile %s not found", ref)
}

// GetProfile finds a profile by ID or name.
func (pm *ProfileManager) GetProfile(ref string) (Profile, bool) {
	for _, p := range pm.Data.Profiles {
		if p.ID == ref || p.Name == ref {
			return p, true
		}
	}
	return Profile{}, false
}

func (pm *ProfileManager) ListProfiles() []Profile {
	return pm.Data.Profiles
}

// MarkUsed records id as the most recently connected profile.
func (pm *ProfileManager) MarkUsed(id string) error {
	pm.Data.LastUsed = id
	return pm.Save()
}

// LastUsed returns the most recently connected profile, if any.
func (pm *ProfileManager) LastUsed() (Profile, bool) {
	if pm.Data.LastUsed == "" {
		return Profile{}, false
	}
	return pm.GetProfile(pm.Data.LastUsed)
}

// Password reads the profile password from the keyring. A missing entry is
// not an error and yields "".
func (pm *ProfileManager) Password(id string) (string, error) {
	password, err := keyring.Get(keyringService, id)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read password from keyring: %w", err)
	}
	return password, nil
}

// SetPassword stores the profile password in the keyring. An empty password
// removes the entry.
func (pm *ProfileManager) SetPassword(id, password string) error {
	if password == "" {
		if err := keyring.Delete(keyringService, id); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to delete password from keyring: %w", err)
		}
		return nil
	}
	if err := keyring.Set(keyringService, id, password); err != nil {
		return fmt.Errorf("failed to save password to keyring: %w", err)
	}
	return nil
}

// Import adds every profile whose name is not taken yet and returns how many
// were added.
func (pm *ProfileManager) Import(profiles []Profile) (int, error) {
	added := 0
	for _, p := range profiles {
		if _, exists := pm.GetProfile(p.Name); exists {
			continue
		}
		p.ID = ""
		if _, err := pm.AddProfile(p); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
