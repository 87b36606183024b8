// Package config loads the cmdbox configuration from
// ~/.cmdbox/config.yaml, applying documented defaults for anything the
// file omits and environment overrides on top.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the cmdbox configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Search SearchConfig `yaml:"search"`
	Log    LogConfig    `yaml:"log"`
	Serve  ServeConfig  `yaml:"serve"`
}

// StoreConfig holds database settings.
type StoreConfig struct {
	DBPath        string `yaml:"db_path"`        // SQLite file path (empty = default)
	MaxCandidates int    `yaml:"max_candidates"` // Upper bound on rows fetched per search
}

// SearchConfig holds the scoring parameters of the ranking engine.
type SearchConfig struct {
	CommandWeight     float64 `yaml:"command_weight"`     // Weight of the command text field
	DescriptionWeight float64 `yaml:"description_weight"` // Weight of the description field
	TagWeight         float64 `yaml:"tag_weight"`         // Weight of the best-matching tag
	Threshold         float64 `yaml:"threshold"`          // Minimum aggregate score to include
	ContainmentFloor  float64 `yaml:"containment_floor"`  // Minimum field score on substring containment
	DefaultLimit      int     `yaml:"default_limit"`      // Result limit when the caller gives none
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// ServeConfig holds RPC server settings.
type ServeConfig struct {
	SocketPath string `yaml:"socket_path"` // Unix socket path (empty = stdio or default)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			DBPath:        "", // resolved via Paths at open time
			MaxCandidates: 1000,
		},
		Search: SearchConfig{
			CommandWeight:     0.6,
			DescriptionWeight: 0.25,
			TagWeight:         0.15,
			Threshold:         0.3,
			ContainmentFloor:  0.75,
			DefaultLimit:      10,
		},
		Log: LogConfig{
			Level: "info",
		},
		Serve: ServeConfig{
			SocketPath: "",
		},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	paths := DefaultPaths()
	return LoadFromFile(paths.ConfigFile())
}

// LoadFromFile loads configuration from the specified file. A missing
// file is not an error: defaults are returned. Environment overrides are
// applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid config: %w", err)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CMDBOX_DB"); v != "" {
		c.Store.DBPath = v
	}
	if v := os.Getenv("CMDBOX_SOCKET"); v != "" {
		c.Serve.SocketPath = v
	}
	if v := os.Getenv("CMDBOX_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if os.Getenv("CMDBOX_DEBUG") == "1" {
		c.Log.Level = "debug"
	}
}

// Validate checks that the loaded values are usable.
func (c *Config) Validate() error {
	if c.Store.MaxCandidates <= 0 {
		return fmt.Errorf("store.max_candidates must be positive, got %d", c.Store.MaxCandidates)
	}
	if c.Search.CommandWeight < 0 || c.Search.DescriptionWeight < 0 || c.Search.TagWeight < 0 {
		return fmt.Errorf("search weights must be non-negative")
	}
	if c.Search.CommandWeight+c.Search.DescriptionWeight+c.Search.TagWeight <= 0 {
		return fmt.Errorf("at least one search weight must be positive")
	}
	if c.Search.Threshold < 0 || c.Search.Threshold > 1 {
		return fmt.Errorf("search.threshold must be in [0, 1], got %v", c.Search.Threshold)
	}
	if c.Search.ContainmentFloor < 0 || c.Search.ContainmentFloor > 1 {
		return fmt.Errorf("search.containment_floor must be in [0, 1], got %v", c.Search.ContainmentFloor)
	}
	if c.Search.DefaultLimit <= 0 {
		return fmt.Errorf("search.default_limit must be positive, got %d", c.Search.DefaultLimit)
	}
	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, or error, got %q", c.Log.Level)
	}
	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
