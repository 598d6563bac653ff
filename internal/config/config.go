package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/techdufus/axon/internal/theme"
)

// Config holds the global application configuration.
type Config struct {
	Theme             string `json:"theme"`
	DefaultAIProvider string `json:"default_ai_provider"`
	ScrollbackLines   int    `json:"scrollback_lines"`
	FontSize          int    `json:"font_size"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Theme:             theme.Default,
		DefaultAIProvider: "anthropic",
		ScrollbackLines:   10000,
		FontSize:          14,
	}
}

// ConfigDir returns the configuration directory path. AXON_CONFIG_DIR
// overrides the default (used by tests).
func ConfigDir() (string, error) {
	if dir := os.Getenv("AXON_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "axon"), nil
}

// ConfigPath returns the default config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// HistoryPath returns the default history file path.
func HistoryPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.json"), nil
}

// SessionPath returns the file backing a named session.
func SessionPath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessions", name+".json"), nil
}

// Load reads configuration from file or returns defaults. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	cfg, _, err := LoadWithValidation(path)
	return cfg, err
}

// LoadWithValidation loads config and returns a structured validation
// result alongside it. An invalid file yields defaults plus the problems
// found — startup continues and the initial pane shows a warning block.
func LoadWithValidation(path string) (*Config, *ValidationResult, error) {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return DefaultConfig(), nil, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			return cfg, cfg.Validate(), nil
		}
		return nil, nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		result := &ValidationResult{}
		result.AddError("json", formatJSONError(err))
		return DefaultConfig(), result, nil
	}

	result := cfg.Validate()
	cfg.applyFallbacks(result)
	return cfg, result, nil
}

// Validate checks field values without mutating them.
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}
	if _, err := theme.Lookup(c.Theme); err != nil {
		result.AddWarning("theme", fmt.Sprintf("unknown theme %q, using %q", c.Theme, theme.Default))
	}
	if c.ScrollbackLines < 100 {
		result.AddWarning("scrollback_lines", fmt.Sprintf("%d is below the minimum of 100, using default", c.ScrollbackLines))
	}
	if c.FontSize < 6 || c.FontSize > 72 {
		result.AddWarning("font_size", fmt.Sprintf("%d is out of range 6-72, using default", c.FontSize))
	}
	return result
}

// applyFallbacks replaces flagged values with defaults so the rest of the
// program never sees an invalid config.
func (c *Config) applyFallbacks(result *ValidationResult) {
	defaults := DefaultConfig()
	for _, w := range result.Warnings {
		switch w.Field {
		case "theme":
			c.Theme = defaults.Theme
		case "scrollback_lines":
			c.ScrollbackLines = defaults.ScrollbackLines
		case "font_size":
			c.FontSize = defaults.FontSize
		}
	}
}

// Save writes configuration to file.
func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// formatJSONError attempts to provide better JSON error context.
func formatJSONError(err error) string {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Sprintf("invalid JSON at byte %d: %s", syntaxErr.Offset, syntaxErr.Error())
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("field %q expects %s but got %s", typeErr.Field, typeErr.Type, typeErr.Value)
	}

	return err.Error()
}
