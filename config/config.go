package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds persistent client settings stored at <profileDir>/config.toml.
type Config struct {
	Endpoint string `toml:"endpoint"`
	Theme    string `toml:"theme"`
	// IdleTimeout is a Go duration string; empty disables the timeout.
	IdleTimeout string `toml:"idle_timeout,omitempty"`
	LogFile     string `toml:"log_file,omitempty"`
	WordWrap    int    `toml:"word_wrap,omitempty"`

	// Source is the file the config was read from.
	Source string `toml:"-"`
}

const filename = "config.toml"

// DefaultEndpoint mirrors client.DefaultEndpoint; config does not import the
// transport.
const DefaultEndpoint = "https://api.wxve.io/chat"

// Themes lists the accepted theme names in toggle order.
var Themes = []string{"dark", "light", "catppuccin"}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Endpoint: DefaultEndpoint,
		Theme:    "dark",
	}
}

// ProfileDir returns ~/.xve, or ~/.xve/profiles/<name> for a named profile.
func ProfileDir(profile string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	if profile != "" {
		return filepath.Join(home, ".xve", "profiles", profile), nil
	}
	return filepath.Join(home, ".xve"), nil
}

// Path returns the config file path inside profileDir.
func Path(profileDir string) string {
	return filepath.Join(profileDir, filename)
}

// Load reads <profileDir>/config.toml over the defaults and then applies
// XVE_ENDPOINT and XVE_THEME. A missing file is not an error; a malformed
// one is.
func Load(profileDir string) (Config, error) {
	cfg := Default()
	path := Path(profileDir)
	cfg.Source = path

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := toml.Unmarshal(content, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to <profileDir>/config.toml, creating the directory if needed.
func Save(profileDir string, cfg Config) error {
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(Path(profileDir), data, 0o644)
}

// Edit applies fn to the settings stored in profileDir and writes them
// back. Environment overrides are not applied, so they never leak into the
// file.
func Edit(profileDir string, fn func(*Config)) error {
	cfg := Default()
	content, err := os.ReadFile(Path(profileDir))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return err
	default:
		if err := toml.Unmarshal(content, &cfg); err != nil {
			return fmt.Errorf("parse %s: %w", Path(profileDir), err)
		}
	}
	fn(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	return Save(profileDir, cfg)
}

// Validate checks the fields that have a restricted form.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint is empty")
	}
	if !ValidTheme(c.Theme) {
		return fmt.Errorf("unknown theme %q", c.Theme)
	}
	if _, err := c.IdleTimeoutDuration(); err != nil {
		return err
	}
	if c.WordWrap < 0 {
		return fmt.Errorf("word_wrap must not be negative")
	}
	return nil
}

// IdleTimeoutDuration parses IdleTimeout; empty means disabled (zero).
func (c Config) IdleTimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(c.IdleTimeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.IdleTimeout)
	if err != nil {
		return 0, fmt.Errorf("idle_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("idle_timeout must not be negative")
	}
	return d, nil
}

// ValidTheme reports whether name is one of Themes.
func ValidTheme(name string) bool {
	for _, t := range Themes {
		if t == name {
			return true
		}
	}
	return false
}

// NextTheme returns the theme after name in toggle order.
func NextTheme(name string) string {
	for i, t := range Themes {
		if t == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func applyEnv(cfg *Config) {
	if env := strings.TrimSpace(os.Getenv("XVE_ENDPOINT")); env != "" {
		cfg.Endpoint = env
	}
	if env := strings.TrimSpace(os.Getenv("XVE_THEME")); env != "" {
		cfg.Theme = env
	}
}
