// Package settings holds the user's display preferences. Persistence is
// behind Provider so the service never touches storage directly.
package settings

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
)

// ErrInvalidColor is returned for a secondary colour that is not a preset.
var ErrInvalidColor = errors.New("secondary color must be one of the presets")

// DefaultColor is the cyan preset.
const DefaultColor = "#00bcd4"

// Settings are the persisted display preferences.
type Settings struct {
	DarkMode       bool   `json:"dark_mode" yaml:"dark_mode"`
	SecondaryColor string `json:"secondary_color" yaml:"secondary_color"`
}

// Preset is a selectable accent colour.
type Preset struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

var presets = []Preset{
	{Name: "Cyan", Value: "#00bcd4"},
	{Name: "Blue", Value: "#2196f3"},
	{Name: "Purple", Value: "#9c27b0"},
	{Name: "Pink", Value: "#e91e63"},
	{Name: "Red", Value: "#f44336"},
	{Name: "Orange", Value: "#ff9800"},
	{Name: "Yellow", Value: "#ffeb3b"},
	{Name: "Green", Value: "#4caf50"},
	{Name: "Teal", Value: "#009688"},
	{Name: "Indigo", Value: "#3f51b5"},
	{Name: "Brown", Value: "#795548"},
	{Name: "Gray", Value: "#607d8b"},
}

// Presets returns the selectable colours in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// Default returns light mode with the cyan accent.
func Default() Settings {
	return Settings{DarkMode: false, SecondaryColor: DefaultColor}
}

// Normalize lower-cases the colour and fills an empty one with the default.
func (s Settings) Normalize() Settings {
	s.SecondaryColor = strings.ToLower(strings.TrimSpace(s.SecondaryColor))
	if s.SecondaryColor == "" {
		s.SecondaryColor = DefaultColor
	}
	return s
}

// Validate checks the colour against the presets.
func (s Settings) Validate() error {
	for _, p := range presets {
		if p.Value == s.SecondaryColor {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidColor, s.SecondaryColor)
}

// Service keeps the current settings in memory and saves every change.
type Service struct {
	mu       sync.RWMutex
	provider Provider
	current  Settings
}

// NewService loads settings from provider. Unreadable or invalid stored
// settings are logged and replaced by the defaults.
func NewService(provider Provider) *Service {
	current, err := provider.Load()
	if err != nil {
		log.Printf("[SETTINGS] using defaults: %v", err)
		current = Default()
	}
	current = current.Normalize()
	if err := current.Validate(); err != nil {
		log.Printf("[SETTINGS] stored settings rejected, using defaults: %v", err)
		current = Default()
	}
	return &Service{provider: provider, current: current}
}

// Get returns the current settings.
func (s *Service) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update validates and saves next. The in-memory value changes only when the
// save succeeds.
func (s *Service) Update(next Settings) (Settings, error) {
	next = next.Normalize()
	if err := next.Validate(); err != nil {
		return s.Get(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.provider.Save(next); err != nil {
		return s.current, fmt.Errorf("failed to save settings: %w", err)
	}
	s.current = next
	return next, nil
}
