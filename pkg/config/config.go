// Package config stores named serial port profiles so operators can
// reconnect to a device without retyping line settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hht-term/pkg/serial"
)

// Manager defines the contract for profile storage.
type Manager interface {
	SaveProfile(name string, config serial.Config) error
	LoadProfile(name string) (serial.Config, error)
	ListProfiles() ([]ProfileInfo, error)
	DeleteProfile(name string) error
	ProfileExists(name string) bool
}

// ProfileInfo contains a saved profile and its metadata.
type ProfileInfo struct {
	Name       string        `json:"name"`
	Config     serial.Config `json:"config"`
	CreatedAt  time.Time     `json:"created_at"`
	LastUsedAt time.Time     `json:"last_used_at"`
}

// Validate checks if the profile info is valid.
func (p ProfileInfo) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	if err := p.Config.Validate(); err != nil {
		return fmt.Errorf("invalid serial config: %w", err)
	}
	return nil
}

// profileStorage is the on-disk format.
type profileStorage struct {
	Profiles map[string]ProfileInfo `json:"profiles"`
	Version  string                 `json:"version"`
}

// FileManager implements Manager using a JSON file.
type FileManager struct {
	configDir   string
	profileFile string
}

// NewFileManager creates a file-backed profile manager. An empty dir
// selects the per-user config directory.
func NewFileManager(configDir string) *FileManager {
	if configDir == "" {
		if base, err := os.UserConfigDir(); err == nil {
			configDir = filepath.Join(base, "hht-term")
		} else {
			configDir = ".hht-term"
		}
	}
	return &FileManager{
		configDir:   configDir,
		profileFile: "profiles.json",
	}
}

// SaveProfile saves a profile under the given name, preserving creation
// time when overwriting.
func (fm *FileManager) SaveProfile(name string, config serial.Config) error {
	if name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	storage, err := fm.loadStorage()
	if err != nil {
		return fmt.Errorf("failed to load existing profiles: %w", err)
	}

	now := time.Now()
	info := ProfileInfo{
		Name:       name,
		Config:     config,
		CreatedAt:  now,
		LastUsedAt: now,
	}
	if existing, exists := storage.Profiles[name]; exists {
		info.CreatedAt = existing.CreatedAt
	}

	storage.Profiles[name] = info

	if err := fm.saveStorage(storage); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	return nil
}

// LoadProfile loads a profile by name and marks it used.
func (fm *FileManager) LoadProfile(name string) (serial.Config, error) {
	if name == "" {
		return serial.Config{}, fmt.Errorf("profile name cannot be empty")
	}

	storage, err := fm.loadStorage()
	if err != nil {
		return serial.Config{}, fmt.Errorf("failed to load profiles: %w", err)
	}

	info, exists := storage.Profiles[name]
	if !exists {
		return serial.Config{}, fmt.Errorf("profile '%s' not found", name)
	}

	info.LastUsedAt = time.Now()
	storage.Profiles[name] = info
	// Last-used bookkeeping is best effort.
	fm.saveStorage(storage)

	return info.Config, nil
}

// ListProfiles returns all saved profiles.
func (fm *FileManager) ListProfiles() ([]ProfileInfo, error) {
	storage, err := fm.loadStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}

	profiles := make([]ProfileInfo, 0, len(storage.Profiles))
	for _, info := range storage.Profiles {
		profiles = append(profiles, info)
	}

	return profiles, nil
}

// DeleteProfile deletes a profile by name.
func (fm *FileManager) DeleteProfile(name string) error {
	if name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}

	storage, err := fm.loadStorage()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	if _, exists := storage.Profiles[name]; !exists {
		return fmt.Errorf("profile '%s' not found", name)
	}

	delete(storage.Profiles, name)

	if err := fm.saveStorage(storage); err != nil {
		return fmt.Errorf("failed to save profiles after deletion: %w", err)
	}

	return nil
}

// ProfileExists checks if a profile with the given name exists.
func (fm *FileManager) ProfileExists(name string) bool {
	if name == "" {
		return false
	}

	storage, err := fm.loadStorage()
	if err != nil {
		return false
	}

	_, exists := storage.Profiles[name]
	return exists
}

// StoragePath returns the full path to the profile file.
func (fm *FileManager) StoragePath() string {
	return filepath.Join(fm.configDir, fm.profileFile)
}

func (fm *FileManager) loadStorage() (profileStorage, error) {
	data, err := os.ReadFile(fm.StoragePath())
	if err != nil {
		if os.IsNotExist(err) {
			return profileStorage{
				Profiles: make(map[string]ProfileInfo),
				Version:  "1.0",
			}, nil
		}
		return profileStorage{}, fmt.Errorf("failed to read profile file: %w", err)
	}

	var storage profileStorage
	if err := json.Unmarshal(data, &storage); err != nil {
		return profileStorage{}, fmt.Errorf("failed to parse profile file: %w", err)
	}
	if storage.Profiles == nil {
		storage.Profiles = make(map[string]ProfileInfo)
	}

	return storage, nil
}

func (fm *FileManager) saveStorage(storage profileStorage) error {
	if err := os.MkdirAll(fm.configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(storage, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile data: %w", err)
	}

	// Temp file plus rename keeps a crash from truncating the store.
	path := fm.StoragePath()
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary profile file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary profile file: %w", err)
	}

	return nil
}
