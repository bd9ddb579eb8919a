package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"github.com/BadgerOps/otpmigrate/internal/export"
)

// ErrNotFound is returned by FindConfigFile when no config file exists.
var ErrNotFound = errors.New("no config file found")

// Config is the top-level configuration
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Input  InputConfig  `yaml:"input"`
	Export ExportConfig `yaml:"export"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level" env:"OTPMIGRATE_LOG_LEVEL,overwrite"`
	Format string `yaml:"format" env:"OTPMIGRATE_LOG_FORMAT,overwrite"`
}

// InputConfig holds limits applied to input images
type InputConfig struct {
	MaxImageBytes int64 `yaml:"max_image_bytes" env:"OTPMIGRATE_INPUT_MAX_IMAGE_BYTES,overwrite"`
}

// ExportConfig holds export defaults, overridable per invocation
type ExportConfig struct {
	Type   string `yaml:"type" env:"OTPMIGRATE_EXPORT_TYPE,overwrite"`
	Secret string `yaml:"secret" env:"OTPMIGRATE_EXPORT_SECRET,overwrite"`
	Format string `yaml:"format" env:"OTPMIGRATE_EXPORT_FORMAT,overwrite"`
	Pretty bool   `yaml:"pretty" env:"OTPMIGRATE_EXPORT_PRETTY,overwrite"`
	Output string `yaml:"output" env:"OTPMIGRATE_EXPORT_OUTPUT,overwrite"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	opts := export.DefaultOptions()
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Input: InputConfig{
			MaxImageBytes: 32 << 20,
		},
		Export: ExportConfig{
			Type:   string(opts.Types),
			Secret: string(opts.Secret),
			Format: string(opts.Format),
			Pretty: opts.Pretty,
			Output: "-",
		},
	}
}

// Load reads a config file from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() (string, error) {
	searchPaths := []string{
		"otpmigrate.yaml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths,
			filepath.Join(home, ".config", "otpmigrate", "otpmigrate.yaml"),
		)
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w (searched: %v)", ErrNotFound, searchPaths)
}

// ApplyEnv overlays OTPMIGRATE_* environment variables onto the config.
func (c *Config) ApplyEnv(ctx context.Context) error {
	return c.applyEnvWith(ctx, envconfig.OsLookuper())
}

func (c *Config) applyEnvWith(ctx context.Context, l envconfig.Lookuper) error {
	if err := envconfig.ProcessWith(ctx, c, l); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	return nil
}

// ExportOptions converts the export section into export.Options.
func (c *Config) ExportOptions() (export.Options, error) {
	var result *multierror.Error

	types, err := export.ParseTypeFilter(c.Export.Type)
	if err != nil {
		result = multierror.Append(result, err)
	}
	secret, err := export.ParseSecretFormat(c.Export.Secret)
	if err != nil {
		result = multierror.Append(result, err)
	}
	format, err := export.ParseFormat(c.Export.Format)
	if err != nil {
		result = multierror.Append(result, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		return export.Options{}, err
	}

	return export.Options{
		Types:  types,
		Secret: secret,
		Format: format,
		Pretty: c.Export.Pretty,
	}, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		result = multierror.Append(result, fmt.Errorf("log.level %q: want debug, info, warn or error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		result = multierror.Append(result, fmt.Errorf("log.format %q: want text or json", c.Log.Format))
	}
	if c.Input.MaxImageBytes <= 0 {
		result = multierror.Append(result, fmt.Errorf("input.max_image_bytes must be positive, got %d", c.Input.MaxImageBytes))
	}
	if _, err := c.ExportOptions(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.Export.Output == "" {
		result = multierror.Append(result, errors.New("export.output must not be empty; use - for stdout"))
	}

	return result.ErrorOrNil()
}
