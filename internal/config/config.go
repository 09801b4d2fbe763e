// Package config loads the launcher configuration from a TOML file.
package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	DataDir string       `toml:"data_dir"`
	Apps    AppsConfig   `toml:"apps"`
	Search  SearchConfig `toml:"search"`
	Icons   IconsConfig  `toml:"icons"`
	Order   OrderConfig  `toml:"order"`
	Load    LoadConfig   `toml:"load"`
}

type AppsConfig struct {
	// ScanDirs lists the application directories to enumerate. Empty means
	// the standard XDG locations.
	ScanDirs []string `toml:"scan_dirs"`
	// WatchChanges enables the directory watcher that picks up installs
	// and uninstalls while running.
	WatchChanges bool `toml:"watch_changes"`
}

type SearchConfig struct {
	MaxResults int `toml:"max_results"`
	CacheSize  int `toml:"cache_size"`
	// FuzzyRanking re-ranks substring filter results with fuzzy match
	// scores. The visible set is always the substring match set.
	FuzzyRanking bool `toml:"fuzzy_ranking"`
}

type IconsConfig struct {
	Enabled      bool     `toml:"enabled"`
	SizePixels   int      `toml:"size_pixels"`
	CacheSize    int      `toml:"cache_size"`
	FallbackIcon string   `toml:"fallback_icon"`
	SearchPaths  []string `toml:"search_paths"`
	// MaxLoadThreads caps the icon-loading pool; the pool is sized to
	// cores-1 up to this cap.
	MaxLoadThreads int `toml:"max_load_threads"`
	QueueCapacity  int `toml:"queue_capacity"`
}

type OrderConfig struct {
	// Preferred is "recent", "usage" or "none". Recent and usage ordering
	// are mutually exclusive.
	Preferred string `toml:"preferred"`
}

type LoadConfig struct {
	// MaxThreads caps the bulk-load pool.
	MaxThreads int `toml:"max_threads"`
	// ShutdownTimeoutSeconds bounds the blocking drain at the end of the
	// bulk load. Zero waits forever.
	ShutdownTimeoutSeconds int `toml:"shutdown_timeout_seconds"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Apps: AppsConfig{
			WatchChanges: true,
		},
		Search: SearchConfig{
			MaxResults: 50,
			CacheSize:  100,
		},
		Icons: IconsConfig{
			Enabled:        true,
			SizePixels:     48,
			CacheSize:      200,
			FallbackIcon:   "application-x-executable",
			MaxLoadThreads: 8,
			QueueCapacity:  300,
		},
		Order: OrderConfig{
			Preferred: "recent",
		},
		Load: LoadConfig{
			MaxThreads:             8,
			ShutdownTimeoutSeconds: 30,
		},
	}
}

// Load reads the config file at path, filling unset fields with defaults.
// A missing file yields the defaults without error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.DataDir = expandPath(cfg.DataDir)
	for i, dir := range cfg.Apps.ScanDirs {
		cfg.Apps.ScanDirs[i] = expandPath(dir)
	}
	return cfg, nil
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(cfgDir, "hayai", "config.toml")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hayai"
	}
	return filepath.Join(home, ".local", "share", "hayai")
}

// expandPath expands a leading ~ or ~/ to the home directory. ~user
// forms are left untouched.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		usr, err := user.Current()
		if err == nil {
			return filepath.Join(usr.HomeDir, path[1:])
		}
	}
	return path
}
