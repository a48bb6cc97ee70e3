// Package settings persists the chat preferences of the local user.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// DefaultTemperature is the sampling temperature used when none is set.
const DefaultTemperature = 0.7

// Settings are the user's chat preferences.
type Settings struct {
	APIKey       string  `toml:"api_key"`
	Model        string  `toml:"model"`
	SystemPrompt string  `toml:"system_prompt"`
	Temperature  float64 `toml:"temperature"`
}

// Defaults returns the settings used before anything is saved.
func Defaults() Settings {
	return Settings{Temperature: DefaultTemperature}
}

// Repository loads and saves Settings.
type Repository interface {
	Load() (Settings, error)
	Save(Settings) error
}

// FileRepository stores settings as TOML. The file holds an API key, so it is
// written with owner-only permissions.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileRepository returns a repository backed by the file at path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Path returns the backing file path.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the settings file. A missing file yields Defaults.
func (r *FileRepository) Load() (Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Defaults()
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return Defaults(), fmt.Errorf("failed to parse settings: %w", err)
	}
	return s, nil
}

// Save writes s to the settings file, creating its directory if needed.
func (r *FileRepository) Save(s Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return os.Chmod(r.path, 0600)
}

// MemoryRepository keeps settings in memory.
type MemoryRepository struct {
	mu sync.Mutex
	s  Settings
}

// NewMemoryRepository returns a repository holding s.
func NewMemoryRepository(s Settings) *MemoryRepository {
	return &MemoryRepository{s: s}
}

// Load returns the stored settings.
func (r *MemoryRepository) Load() (Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.s, nil
}

// Save replaces the stored settings.
func (r *MemoryRepository) Save(s Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s = s
	return nil
}

// Masked returns key with everything but its last four characters hidden.
func Masked(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
