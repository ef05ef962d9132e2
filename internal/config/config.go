package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/jask/dropselect/internal/keys"
	"github.com/jask/dropselect/internal/selector"
)

// Config holds application configuration.
type Config struct {
	Options []OptionConfig
	UI      UIConfig
	Log     LogConfig
	State   StateConfig
	Keys    []KeyConfig
}

// OptionConfig is one [[options]] entry. Value may be a TOML string or number.
type OptionConfig struct {
	Label string
	Value any
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Width int
}

// LogConfig holds rotating log file settings.
type LogConfig struct {
	Path       string
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	Compress   bool `mapstructure:"compress"`
}

// StateConfig controls sqlite persistence of the harness selections.
type StateConfig struct {
	Enabled bool
	Path    string
}

// KeyConfig is one [[keys]] override.
type KeyConfig struct {
	Scope  string
	Action string
	Keys   []string
}

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "dropselect")
}

// Path returns the config file location. DROPSELECT_CONFIG wins over the default.
func Path() string {
	if p := os.Getenv("DROPSELECT_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "dropselect", "config.toml")
}

// DefaultOptions is the shared five-item list both harness widgets start from.
func DefaultOptions() []OptionConfig {
	return []OptionConfig{
		{Label: "first", Value: 1},
		{Label: "second", Value: 2},
		{Label: "third", Value: 3},
		{Label: "fourth", Value: 4},
		{Label: "fifth", Value: 5},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("ui.width", 40)
	v.SetDefault("log.path", filepath.Join(dataDir(), "dropselect.log"))
	v.SetDefault("log.max_size_mb", 5)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", true)
	v.SetDefault("state.enabled", false)
	v.SetDefault("state.path", filepath.Join(dataDir(), "state.db"))
	return v
}

// Default returns the built-in configuration without reading a file or env.
func Default() (Config, error) {
	var c Config
	if err := newViper().Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal defaults: %w", err)
	}
	c.Options = DefaultOptions()
	return c, nil
}

// Load reads configuration from file and env. Env var overrides use prefix DROPSELECT_.
// An explicit path takes precedence over DROPSELECT_CONFIG.
func Load(path string) (Config, error) {
	v := newViper()

	v.SetConfigType("toml")

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = os.Getenv("DROPSELECT_CONFIG")
		explicit = path != ""
	}
	if explicit {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "dropselect"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("DROPSELECT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing default file is fine; a named file that cannot be read is not.
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(c.Options) == 0 {
		c.Options = DefaultOptions()
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects option lists the widget would silently mishandle.
func (c Config) Validate() error {
	seen := make(map[string]int, len(c.Options))
	for i, o := range c.Options {
		if strings.TrimSpace(o.Label) == "" {
			return fmt.Errorf("options[%d]: label is required", i)
		}
		v, err := optionValue(o.Value)
		if err != nil {
			return fmt.Errorf("options[%d] %q: %w", i, o.Label, err)
		}
		if prev, dup := seen[v.String()]; dup {
			return fmt.Errorf("options[%d] %q: value %s duplicates options[%d]", i, o.Label, v, prev)
		}
		seen[v.String()] = i
	}
	if c.UI.Width < 0 {
		return fmt.Errorf("ui.width must not be negative, got %d", c.UI.Width)
	}
	return nil
}

// SelectorOptions converts the configured list into stable option pointers.
func (c Config) SelectorOptions() ([]*selector.Option, error) {
	pairs := make([]selector.Option, 0, len(c.Options))
	for i, o := range c.Options {
		v, err := optionValue(o.Value)
		if err != nil {
			return nil, fmt.Errorf("options[%d] %q: %w", i, o.Label, err)
		}
		pairs = append(pairs, selector.Option{Label: strings.TrimSpace(o.Label), Value: v})
	}
	return selector.Options(pairs...), nil
}

// KeyOverrides adapts the [[keys]] tables for the key registry.
func (c Config) KeyOverrides() []keys.Override {
	out := make([]keys.Override, 0, len(c.Keys))
	for _, k := range c.Keys {
		out = append(out, keys.Override{Scope: k.Scope, Action: k.Action, Keys: k.Keys})
	}
	return out
}

// SetKeyOverrides replaces the [[keys]] tables, typically with Registry.Export.
func (c *Config) SetKeyOverrides(items []keys.Override) {
	c.Keys = make([]KeyConfig, 0, len(items))
	for _, k := range items {
		c.Keys = append(c.Keys, KeyConfig{Scope: k.Scope, Action: k.Action, Keys: k.Keys})
	}
}

func optionValue(raw any) (selector.Value, error) {
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return selector.Value{}, fmt.Errorf("value is required")
		}
		return selector.StringValue(v), nil
	case int:
		return selector.NumberValue(float64(v)), nil
	case int64:
		return selector.NumberValue(float64(v)), nil
	case float64:
		return selector.NumberValue(v), nil
	case nil:
		return selector.Value{}, fmt.Errorf("value is required")
	default:
		if n, err := strconv.ParseFloat(fmt.Sprint(v), 64); err == nil {
			return selector.NumberValue(n), nil
		}
		return selector.Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(path string, cfg Config) error {
	if strings.TrimSpace(path) == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	options := make([]map[string]any, 0, len(cfg.Options))
	for _, o := range cfg.Options {
		options = append(options, map[string]any{"label": o.Label, "value": o.Value})
	}
	bindings := make([]map[string]any, 0, len(cfg.Keys))
	for _, k := range cfg.Keys {
		bindings = append(bindings, map[string]any{"scope": k.Scope, "action": k.Action, "keys": k.Keys})
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("options", options)
	v.Set("ui.width", cfg.UI.Width)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.max_size_mb", cfg.Log.MaxSizeMB)
	v.Set("log.max_backups", cfg.Log.MaxBackups)
	v.Set("log.max_age_days", cfg.Log.MaxAgeDays)
	v.Set("log.compress", cfg.Log.Compress)
	v.Set("state.enabled", cfg.State.Enabled)
	v.Set("state.path", cfg.State.Path)
	if len(bindings) > 0 {
		v.Set("keys", bindings)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
