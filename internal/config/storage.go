package config

// Storage defines the backend interface for saved connection profiles.
type Storage interface {
	Load() error
	Save() error
	AddProfile(p Profile) (Profile, error)
	DeleteProfile(ref string) error
	GetProfile(ref string) (Profile, bool)
	ListProfiles() []Profile
	MarkUsed(id string) error
	Password(id string) (string, error)
	SetPassword(id, password string) error
}
