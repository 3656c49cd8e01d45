// Package config loads snapback's YAML configuration and supplies the
// built-in defaults used when no config file exists.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the effective snapback configuration.
type Config struct {
	// DataDir is where the preset collection lives.
	// Default: ~/.local/share/snapback
	DataDir string `yaml:"data_dir"`

	Capture CaptureConfig `yaml:"capture"`
	Restore RestoreConfig `yaml:"restore"`
}

// CaptureConfig controls window enumeration filters.
type CaptureConfig struct {
	// ExcludedProcesses is a deny-list of executable base names that are
	// never captured (desktop shells, panels, compositors).
	ExcludedProcesses []string `yaml:"excluded_processes"`
	// ExcludedTitles skips windows whose title contains any of these
	// substrings (case-insensitive).
	ExcludedTitles []string `yaml:"excluded_titles"`
	// IncludeMinimized captures minimized windows too. Off by default;
	// restoring a pile of minimized windows is rarely what anyone wants.
	IncludeMinimized bool `yaml:"include_minimized"`
	// IncludeTabs asks the external tab provider for browser tabs.
	IncludeTabs bool `yaml:"include_tabs"`
}

// RestoreConfig controls the restoration orchestrator.
type RestoreConfig struct {
	// PollAttempts is the total number of polls for a launched process's
	// window before giving up (each poll is followed by one interval wait).
	PollAttempts int `yaml:"poll_attempts"`
	// PollIntervalMS is the wait between polls, in milliseconds.
	PollIntervalMS int `yaml:"poll_interval_ms"`
	// Concurrency bounds how many windows restore at once.
	Concurrency int `yaml:"concurrency"`
	// SessionManagedApps are executables (base names) that restore their
	// own window sessions; snapback surfaces or launches them but never
	// repositions them.
	SessionManagedApps []string `yaml:"session_managed_apps"`
}

// PollInterval returns the poll interval as a duration.
func (r RestoreConfig) PollInterval() time.Duration {
	return time.Duration(r.PollIntervalMS) * time.Millisecond
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Capture: CaptureConfig{
			ExcludedProcesses: []string{
				"plasmashell",
				"gnome-shell",
				"xfce4-panel",
				"polybar",
				"waybar",
				"picom",
				"xfdesktop",
				"krunner",
			},
			ExcludedTitles: []string{
				"Desktop",
			},
		},
		Restore: RestoreConfig{
			PollAttempts:   3,
			PollIntervalMS: 2000,
			Concurrency:    4,
			SessionManagedApps: []string{
				"chrome",
				"chromium",
				"google-chrome",
				"msedge",
				"firefox",
				"brave",
				"opera",
			},
		},
	}
}

// DefaultConfigPath returns the standard config file location.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "snapback", "config.yaml"), nil
}

// DefaultDataDir returns the standard preset storage directory.
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "snapback"), nil
}

// Load reads the configuration from the standard location, honoring the
// SNAPBACK_CONFIG environment override. A missing file yields the defaults.
func Load() (*Config, error) {
	path := os.Getenv("SNAPBACK_CONFIG")
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}
	return LoadFromPath(path)
}

// LoadFromPath reads configuration from an explicit path. A missing file
// yields the defaults; a malformed file is an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return normalize(cfg), nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	return normalize(cfg), nil
}

func applyEnvOverrides(cfg *Config) {
	if dir := os.Getenv("SNAPBACK_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
}

// normalize fills in anything a partial config file left zeroed.
func normalize(cfg *Config) *Config {
	def := DefaultConfig()
	if cfg.Restore.PollAttempts <= 0 {
		cfg.Restore.PollAttempts = def.Restore.PollAttempts
	}
	if cfg.Restore.PollIntervalMS <= 0 {
		cfg.Restore.PollIntervalMS = def.Restore.PollIntervalMS
	}
	if cfg.Restore.Concurrency <= 0 {
		cfg.Restore.Concurrency = def.Restore.Concurrency
	}
	return cfg
}
