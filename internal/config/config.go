// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Config is the root configuration structure.
type Config struct {
	Editor  EditorConfig  `toml:"editor"`
	Diff    DiffConfig    `toml:"diff"`
	Minimap MinimapConfig `toml:"minimap"`
	Search  SearchConfig  `toml:"search"`
	Log     LogConfig     `toml:"log"`
	Store   StoreConfig   `toml:"store"`
}

// EditorConfig holds buffer and presentation settings.
type EditorConfig struct {
	TabWidth int `toml:"tab_width" validate:"gte=1,lte=16"`
	// Theme is the Chroma style used for syntax and UI chrome in dark
	// appearance. LightTheme is used when Appearance is "light".
	Theme       string `toml:"theme" validate:"chroma_theme"`
	LightTheme  string `toml:"light_theme" validate:"omitempty,chroma_theme"`
	Appearance  string `toml:"appearance" validate:"oneof=dark light"`
	Height      string `toml:"height" validate:"height_mode"`
	LineNumbers *bool  `toml:"line_numbers"`
}

// DiffConfig holds diff editor settings.
type DiffConfig struct {
	TimeoutMS       int   `toml:"timeout_ms" validate:"gte=100"`
	Revert          *bool `toml:"revert"`
	CollapseContext int   `toml:"collapse_context" validate:"gte=0,lte=50"`
}

// MinimapConfig holds minimap settings.
type MinimapConfig struct {
	Enabled    *bool `toml:"enabled"`
	Width      int   `toml:"width" validate:"gte=2,lte=16"`
	MinOverlay int   `toml:"min_overlay" validate:"gte=1"`
	DebounceMS int   `toml:"debounce_ms" validate:"gte=0"`
}

// SearchConfig holds search panel settings.
type SearchConfig struct {
	Enabled *bool `toml:"enabled"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" validate:"oneof=trace debug info warn error disabled"`
	Path  string `toml:"path"`
}

// StoreConfig holds preference store settings.
type StoreConfig struct {
	Path    string `toml:"path"`
	TTLDays int    `toml:"ttl_days" validate:"gte=0"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			TabWidth:   2,
			Theme:      "vulcan",
			Appearance: "dark",
			Height:     "auto",
		},
		Diff: DiffConfig{
			TimeoutMS:       5000,
			CollapseContext: 3,
		},
		Minimap: MinimapConfig{
			Width:      2,
			MinOverlay: 2,
			DebounceMS: 300,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads configuration from a TOML file and applies environment variable
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	err := validatorInstance().Struct(c)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	errs := make([]error, 0, len(ves))
	for _, fe := range ves {
		errs = append(errs, fmt.Errorf("%s=%v failed rule %q", fieldName(fe), fe.Value(), fe.Tag()))
	}
	return errors.Join(errs...)
}

// ActiveTheme returns the theme matching the configured appearance.
func (e EditorConfig) ActiveTheme() string {
	if e.Appearance == "light" && e.LightTheme != "" {
		return e.LightTheme
	}
	return e.Theme
}

// ShowLineNumbers reports whether the gutter shows line numbers (default true).
func (e EditorConfig) ShowLineNumbers() bool { return boolOr(e.LineNumbers, true) }

// Timeout returns the diff timeout.
func (d DiffConfig) Timeout() time.Duration { return time.Duration(d.TimeoutMS) * time.Millisecond }

// RevertEnabled reports whether chunk revert is offered (default true).
func (d DiffConfig) RevertEnabled() bool { return boolOr(d.Revert, true) }

// On reports whether the minimap is shown (default true).
func (m MinimapConfig) On() bool { return boolOr(m.Enabled, true) }

// Debounce returns the shadow mirror delay.
func (m MinimapConfig) Debounce() time.Duration {
	return time.Duration(m.DebounceMS) * time.Millisecond
}

// On reports whether the search panel is available (default true).
func (s SearchConfig) On() bool { return boolOr(s.Enabled, true) }

// TTL returns how long session preferences are kept; zero means the store default.
func (s StoreConfig) TTL() time.Duration { return time.Duration(s.TTLDays) * 24 * time.Hour }

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func fieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return strings.Join(parts, ".")
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) error {
	var errs []error
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{"CODEVIEW_THEME", func(v string) {
			if v != "" {
				cfg.Editor.Theme = v
			}
		}},
		{"CODEVIEW_TAB_WIDTH", func(v string) {
			if v == "" {
				return
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("CODEVIEW_TAB_WIDTH=%q is not a number", v))
				return
			}
			cfg.Editor.TabWidth = n
		}},
		{"CODEVIEW_LOG_LEVEL", func(v string) {
			if v != "" {
				cfg.Log.Level = strings.ToLower(v)
			}
		}},
	} {
		setter.apply(os.Getenv(setter.env))
	}
	return errors.Join(errs...)
}

// DataDir returns the path to the codeview data directory (~/.config/codeview).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "codeview"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
