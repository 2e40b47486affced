// Package config loads lawabbrev settings from defaults, an optional
// lawabbrev.yaml, LAWABBREV_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/coolbeans/lawabbrev/pkg/driver"
	"github.com/coolbeans/lawabbrev/pkg/logging"
	"github.com/coolbeans/lawabbrev/pkg/store"
)

// EnvPrefix is prepended to every environment variable, e.g. LAWABBREV_WORKERS.
const EnvPrefix = "LAWABBREV"

// Config is the resolved configuration.
type Config struct {
	WorkDir     string    `mapstructure:"work" yaml:"work"`
	Index       string    `mapstructure:"index" yaml:"index"`
	Output      string    `mapstructure:"output" yaml:"output"`
	ErrorOutput string    `mapstructure:"error_output" yaml:"error_output"`
	Database    string    `mapstructure:"database" yaml:"database"`
	Workers     int       `mapstructure:"workers" yaml:"workers"`
	Mode        string    `mapstructure:"mode" yaml:"mode"`
	Format      string    `mapstructure:"format" yaml:"format"`
	ParseScopes bool      `mapstructure:"parse_scopes" yaml:"parse_scopes"`
	Log         LogConfig `mapstructure:"log" yaml:"log"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"work":         "work",
	"index":        "index",
	"output":       "output",
	"error-output": "error_output",
	"database":     "database",
	"workers":      "workers",
	"mode":         "mode",
	"format":       "format",
	"parse-scopes": "parse_scopes",
	"log-level":    "log.level",
	"log-format":   "log.format",
}

// DefaultCatalogPath is where batch writes the catalog when no output is
// configured. Single-document commands write to stdout instead.
const DefaultCatalogPath = "abbreviations.json"

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		WorkDir:     ".",
		ErrorOutput: "errors.json",
		Workers:     4,
		Mode:        string(driver.ModeCitation),
		Format:      string(store.FormatJSON),
		Log: LogConfig{
			Level:  "info",
			Format: string(logging.FormatText),
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("work", d.WorkDir)
	v.SetDefault("index", d.Index)
	v.SetDefault("output", d.Output)
	v.SetDefault("error_output", d.ErrorOutput)
	v.SetDefault("database", d.Database)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("mode", d.Mode)
	v.SetDefault("format", d.Format)
	v.SetDefault("parse_scopes", d.ParseScopes)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// CatalogPath is Output, or DefaultCatalogPath when Output is empty.
func (c *Config) CatalogPath() string {
	if c.Output == "" {
		return DefaultCatalogPath
	}
	return c.Output
}

// Load resolves the configuration. When configPath is empty, lawabbrev.yaml
// is looked up in the working directory and $HOME/.config/lawabbrev, and a
// missing file is not an error. Only flags in flags that were set on the
// command line override the other sources; flags may be nil.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
		}
	} else {
		v.SetConfigName("lawabbrev")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "lawabbrev"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks every field that has a closed set of values.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return &ConfigError{Field: "workers", Message: fmt.Sprintf("must be at least 1, got %d", c.Workers)}
	}
	if _, err := driver.ParseMode(c.Mode); err != nil {
		return &ConfigError{Field: "mode", Message: err.Error()}
	}
	if _, err := store.ParseFormat(c.Format); err != nil {
		return &ConfigError{Field: "format", Message: err.Error()}
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ConfigError{Field: "log.level", Message: fmt.Sprintf("unknown level %q", c.Log.Level)}
	}
	switch strings.ToLower(c.Log.Format) {
	case string(logging.FormatText), string(logging.FormatJSON):
	default:
		return &ConfigError{Field: "log.format", Message: fmt.Sprintf("unknown format %q", c.Log.Format)}
	}
	return nil
}

// ExtractMode returns the validated extraction mode.
func (c *Config) ExtractMode() driver.Mode {
	mode, err := driver.ParseMode(c.Mode)
	if err != nil {
		return driver.ModeCitation
	}
	return mode
}

// OutputFormat returns the validated output format.
func (c *Config) OutputFormat() store.Format {
	format, err := store.ParseFormat(c.Format)
	if err != nil {
		return store.FormatJSON
	}
	return format
}

// Logger builds the slog logger described by c.Log.
func (c *Config) Logger() *slog.Logger {
	return logging.New(os.Stderr, logging.LevelFromString(c.Log.Level), logging.ParseFormat(c.Log.Format))
}

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
