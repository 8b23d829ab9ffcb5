package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v2"
)

// Provider loads and saves settings.
type Provider interface {
	Load() (Settings, error)
	Save(Settings) error
}

// FileProvider persists settings as a YAML file.
type FileProvider struct {
	path string
}

// NewFileProvider stores settings at path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Load reads the file; a missing file yields the defaults.
func (p *FileProvider) Load() (Settings, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("failed to read settings: %w", err)
	}

	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("failed to parse settings %s: %w", p.path, err)
	}
	return s, nil
}

// Save writes the file, creating its directory when needed.
func (p *FileProvider) Save(s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if dir := filepath.Dir(p.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(p.path, data, 0644)
}

// MemoryProvider keeps settings in memory only.
type MemoryProvider struct {
	mu    sync.Mutex
	saved *Settings
}

func (p *MemoryProvider) Load() (Settings, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.saved == nil {
		return Default(), nil
	}
	return *p.saved, nil
}

func (p *MemoryProvider) Save(s Settings) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saved = &s
	return nil
}
