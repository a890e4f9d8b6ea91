package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// PhaseConfig is one starter phase of new projects.
type PhaseConfig struct {
	Name  string `toml:"name"`
	Color string `toml:"color"`
}

// Config holds the user-editable settings read from config.toml.
type Config struct {
	LogFile  string `toml:"log_file"`
	LogLevel string `toml:"log_level"`
	// ActingUser is the name of the seeded user the board acts as.
	ActingUser          string        `toml:"acting_user"`
	DueSoonDays         int           `toml:"due_soon_days"`
	RecentActivityLimit int           `toml:"recent_activity_limit"`
	DropMode            string        `toml:"drop_mode"`
	SeedDemoData        bool          `toml:"seed_demo_data"`
	StarterPhases       []PhaseConfig `toml:"starter_phases"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	dir, _ := Dir()

	return &Config{
		LogFile:             filepath.Join(dir, "debug.log"),
		LogLevel:            "info",
		ActingUser:          "Mario Rossi",
		DueSoonDays:         3,
		RecentActivityLimit: 5,
		DropMode:            "append",
		SeedDemoData:        true,
		StarterPhases: []PhaseConfig{
			{Name: "To Do", Color: "#a855f7"},
			{Name: "In Progress", Color: "#22c55e"},
			{Name: "Done", Color: "#84cc16"},
		},
	}
}

// Dir returns ~/.taskboard.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".taskboard"), nil
}

// Path returns the default location of config.toml.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config at path on top of the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("error reading config %s: %w", path, err)
	}

	cfg.LogFile = expandPath(cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg *Config) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing config %s: %w", path, cerr)
		}
	}()

	return toml.NewEncoder(f).Encode(cfg)
}

// Validate checks the values that can't be fixed up silently.
func (c *Config) Validate() error {
	switch c.DropMode {
	case "", "append", "insert":
	default:
		return fmt.Errorf("drop_mode must be append or insert, got %q", c.DropMode)
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	if c.DueSoonDays < 0 {
		return fmt.Errorf("due_soon_days must not be negative, got %d", c.DueSoonDays)
	}

	for i, p := range c.StarterPhases {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("starter_phases[%d] has no name", i)
		}
	}

	return nil
}

// Level parses LogLevel; an empty level means info.
func (c *Config) Level() (zerolog.Level, error) {
	if strings.TrimSpace(c.LogLevel) == "" {
		return zerolog.InfoLevel, nil
	}

	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("log_level: %w", err)
	}

	return level, nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, _ := os.UserHomeDir()

		return filepath.Join(homeDir, path[1:])
	}

	return path
}
