// Package config loads application configuration from config/app.yaml with
// environment overrides. A missing file means defaults; a malformed one is a
// configuration error.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// DefaultPath is where the API server looks for its configuration.
const DefaultPath = "config/app.yaml"

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	AlphaVantage AlphaVantageConfig `yaml:"alpha_vantage"`
	Synthetic    SyntheticConfig    `yaml:"synthetic"`
	Cache        CacheConfig        `yaml:"cache"`
	Settings     SettingsConfig     `yaml:"settings"`
	Session      SessionConfig      `yaml:"session"`
}

type ServerConfig struct {
	Port          string `yaml:"port"`
	AllowedOrigin string `yaml:"allowed_origin"`
}

type AlphaVantageConfig struct {
	APIKey            string `yaml:"api_key"`
	BaseURL           string `yaml:"base_url"`
	AnnualReports     bool   `yaml:"annual_reports"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
}

type SyntheticConfig struct {
	Seed int64 `yaml:"seed"` // 0 = time-based
}

type CacheConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Dir         string `yaml:"dir"`
	TTLMinutes  int    `yaml:"ttl_minutes"`
	DatabaseURL string `yaml:"database_url"`
}

type SettingsConfig struct {
	Path string `yaml:"path"`
}

type SessionConfig struct {
	IdleMinutes  int `yaml:"idle_minutes"`
	SweepSeconds int `yaml:"sweep_seconds"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", AllowedOrigin: "*"},
		AlphaVantage: AlphaVantageConfig{
			RequestsPerMinute: 5,
			TimeoutSeconds:    30,
		},
		Cache: CacheConfig{
			Enabled:    true,
			Dir:        ".cache/snapshots",
			TTLMinutes: 24 * 60,
		},
		Settings: SettingsConfig{Path: ".cache/settings.yaml"},
		Session:  SessionConfig{IdleMinutes: 60, SweepSeconds: 60},
	}
}

// Load reads path over the defaults and applies environment overrides:
// ALPHA_VANTAGE_API_KEY, DATABASE_URL and PORT.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		c.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Cache.DatabaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
}

func (c *Config) validate() error {
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("invalid server port %q", c.Server.Port)
	}
	if c.AlphaVantage.RequestsPerMinute < 0 || c.AlphaVantage.TimeoutSeconds < 0 {
		return fmt.Errorf("alpha_vantage limits must not be negative")
	}
	if c.Cache.TTLMinutes < 0 || c.Session.IdleMinutes < 0 || c.Session.SweepSeconds < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return ":" + c.Server.Port }

func (c CacheConfig) TTL() time.Duration { return time.Duration(c.TTLMinutes) * time.Minute }

func (c SessionConfig) Idle() time.Duration { return time.Duration(c.IdleMinutes) * time.Minute }

func (c SessionConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepSeconds) * time.Second
}

func (c AlphaVantageConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
