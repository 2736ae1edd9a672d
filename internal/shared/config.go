package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Library  LibraryConfig  `toml:"library"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Ledger   LedgerConfig   `toml:"ledger"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

// LibraryConfig controls how the media application is driven.
type LibraryConfig struct {
	App           string        `toml:"app"`
	OSAScript     string        `toml:"osascript"`
	FetchAll      bool          `toml:"fetch_all"`
	Playlist      string        `toml:"playlist"`
	LaunchWait    time.Duration `toml:"launch_wait"`
	PollInterval  time.Duration `toml:"poll_interval"`
	ScriptTimeout time.Duration `toml:"script_timeout"`
}

// CatalogConfig contains the search API settings.
type CatalogConfig struct {
	BaseURL   string        `toml:"base_url"`
	Country   string        `toml:"country"`
	Entity    string        `toml:"entity"`
	Limit     int           `toml:"limit"`
	RateLimit float64       `toml:"rate_limit"`
	Timeout   time.Duration `toml:"timeout"`
}

// LedgerConfig locates the processed-ID ledger.
type LedgerConfig struct {
	Path string `toml:"path"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports the first setting that would make a sync run misbehave.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Library.App) == "":
		return fmt.Errorf("%w: library.app is empty", ErrInvalidConfig)
	case !c.Library.FetchAll && strings.TrimSpace(c.Library.Playlist) == "":
		return fmt.Errorf("%w: library.playlist is required when fetch_all is false", ErrInvalidConfig)
	case c.Library.LaunchWait < 0:
		return fmt.Errorf("%w: library.launch_wait must not be negative", ErrInvalidConfig)
	case strings.TrimSpace(c.Catalog.BaseURL) == "":
		return fmt.Errorf("%w: catalog.base_url is empty", ErrInvalidConfig)
	case strings.TrimSpace(c.Catalog.Country) == "":
		return fmt.Errorf("%w: catalog.country is empty", ErrInvalidConfig)
	case c.Catalog.Limit <= 0:
		return fmt.Errorf("%w: catalog.limit must be positive", ErrInvalidConfig)
	case c.Catalog.RateLimit <= 0:
		return fmt.Errorf("%w: catalog.rate_limit must be positive", ErrInvalidConfig)
	case strings.TrimSpace(c.Ledger.Path) == "":
		return fmt.Errorf("%w: ledger.path is empty", ErrInvalidConfig)
	}
	return nil
}
