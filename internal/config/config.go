// Package config handles TOML-based configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"mangadventure/internal/site"
)

const appName = "mangadventure"

// Config holds all application configuration.
type Config struct {
	Site              string      `toml:"site"`
	RequestsPerSecond float64     `toml:"requests_per_second"`
	TimeoutSeconds    int         `toml:"timeout_seconds"`
	Language          string      `toml:"language"`
	History           bool        `toml:"history"`
	DownloadDir       string      `toml:"download_dir"`
	Debug             bool        `toml:"debug"`
	Listen            string      `toml:"listen"`
	ExtraSites        []site.Site `toml:"sites"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Site:              "Arc-Relight",
		RequestsPerSecond: 6,
		TimeoutSeconds:    30,
		Language:          "gb",
		History:           true,
		DownloadDir:       "~/Downloads/mangadventure",
		Debug:             false,
		Listen:            "127.0.0.1:8080",
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path over the defaults. A missing file
// yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("parsing config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if c.RequestsPerSecond <= 0 || c.RequestsPerSecond > 50 {
		return fmt.Errorf("requests_per_second must be in (0, 50], got %g", c.RequestsPerSecond)
	}
	if c.TimeoutSeconds <= 0 || c.TimeoutSeconds > 300 {
		return fmt.Errorf("timeout_seconds must be in [1, 300], got %d", c.TimeoutSeconds)
	}
	if c.Language == "" {
		return fmt.Errorf("language cannot be empty")
	}
	if c.Listen == "" {
		return fmt.Errorf("listen address cannot be empty")
	}

	sites := c.Sites()
	for _, s := range sites {
		if err := s.Validate(); err != nil {
			return err
		}
	}

	if c.Site == "" {
		return fmt.Errorf("site cannot be empty")
	}
	if !hasSite(sites, c.Site) {
		return fmt.Errorf("unknown site %q (valid: %s)", c.Site, strings.Join(siteNames(sites), ", "))
	}

	return nil
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Sites returns the built-in sites merged with the [[sites]] entries, sorted
// by name. An entry whose key matches a built-in site replaces it. Entries
// without a language inherit the configured one.
func (c *Config) Sites() []site.Site {
	byKey := make(map[string]site.Site)
	for _, s := range site.Builtin() {
		byKey[s.Key()] = s
	}
	for _, s := range c.ExtraSites {
		if s.Language == "" {
			s.Language = c.Language
		}
		byKey[s.Key()] = s.WithDefaults()
	}

	sites := make([]site.Site, 0, len(byKey))
	for _, s := range byKey {
		sites = append(sites, s)
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].Name < sites[j].Name })
	return sites
}

func hasSite(sites []site.Site, name string) bool {
	key := site.Key(name)
	for _, s := range sites {
		if s.Key() == key {
			return true
		}
	}
	return false
}

func siteNames(sites []site.Site) []string {
	names := make([]string, len(sites))
	for i, s := range sites {
		names[i] = s.Name
	}
	return names
}

// ExpandDownloadDir resolves ~ in the download directory path.
func (c *Config) ExpandDownloadDir() (string, error) {
	dir := c.DownloadDir
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}
	return filepath.Abs(dir)
}

// HistoryPath returns the path to the history file.
func HistoryPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, appName, "history.tsv"), nil
}
