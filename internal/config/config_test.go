package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"
	"github.com/sethvargo/go-envconfig"

	"github.com/BadgerOps/otpmigrate/internal/export"
)

// TestDefaultConfig verifies that DefaultConfig returns sensible defaults
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		getValue func(*Config) string
		want     string
	}{
		{"log level", func(c *Config) string { return c.Log.Level }, "info"},
		{"log format", func(c *Config) string { return c.Log.Format }, "text"},
		{"export type", func(c *Config) string { return c.Export.Type }, "all"},
		{"export secret", func(c *Config) string { return c.Export.Secret }, "url"},
		{"export format", func(c *Config) string { return c.Export.Format }, "text"},
		{"export output", func(c *Config) string { return c.Export.Output }, "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.getValue(cfg)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if cfg.Input.MaxImageBytes != 33554432 {
		t.Errorf("Input.MaxImageBytes = %d, want 33554432", cfg.Input.MaxImageBytes)
	}
	if cfg.Export.Pretty {
		t.Errorf("Export.Pretty = true, want false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults failed: %v", err)
	}
}

// TestLoad tests loading a valid config file
func TestLoad(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "otpmigrate.yaml")

	configContent := `
log:
  level: debug
  format: json
input:
  max_image_bytes: 1048576
export:
  type: totp
  secret: raw
  format: json
  pretty: true
  output: tokens.json
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configFile)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	want := &Config{
		Log:   LogConfig{Level: "debug", Format: "json"},
		Input: InputConfig{MaxImageBytes: 1048576},
		Export: ExportConfig{
			Type:   "totp",
			Secret: "raw",
			Format: "json",
			Pretty: true,
			Output: "tokens.json",
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

// TestLoadPartial tests that unspecified settings keep their defaults
func TestLoadPartial(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "otpmigrate.yaml")
	if err := os.WriteFile(configFile, []byte("export:\n  format: yaml\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configFile)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	want := DefaultConfig()
	want.Export.Format = "yaml"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

// TestLoadInvalidYAML tests that malformed YAML is rejected
func TestLoadInvalidYAML(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "otpmigrate.yaml")
	if err := os.WriteFile(configFile, []byte("log:\n  level: [unclosed\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := Load(configFile)
	if err == nil {
		t.Fatal("Load() succeeded, want error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("error = %q, want it to mention parsing", err)
	}
}

// TestLoadNonexistentFile tests that a missing file is reported
func TestLoadNonexistentFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Load() succeeded, want error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func chdirTemp(t *testing.T) string {
	t.Helper()

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	tempDir := t.TempDir()
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Fatalf("failed to restore working directory: %v", err)
		}
	})

	// Keep the user config directory out of the search.
	t.Setenv("HOME", filepath.Join(tempDir, "home"))
	return tempDir
}

// TestFindConfigFileNotFound tests that FindConfigFile returns ErrNotFound
func TestFindConfigFileNotFound(t *testing.T) {
	chdirTemp(t)

	_, err := FindConfigFile()
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("FindConfigFile() error = %v, want ErrNotFound", err)
	}
}

// TestFindConfigFileFound tests the working directory and the user config dir
func TestFindConfigFileFound(t *testing.T) {
	t.Run("working directory", func(t *testing.T) {
		chdirTemp(t)
		if err := os.WriteFile("otpmigrate.yaml", []byte("log:\n  level: debug\n"), 0644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		found, err := FindConfigFile()
		if err != nil {
			t.Fatalf("FindConfigFile() failed: %v", err)
		}
		if found != "otpmigrate.yaml" {
			t.Errorf("FindConfigFile() = %q, want %q", found, "otpmigrate.yaml")
		}
	})

	t.Run("user config dir", func(t *testing.T) {
		tempDir := chdirTemp(t)
		dir := filepath.Join(tempDir, "home", ".config", "otpmigrate")
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create config dir: %v", err)
		}
		want := filepath.Join(dir, "otpmigrate.yaml")
		if err := os.WriteFile(want, []byte("{}\n"), 0644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		found, err := FindConfigFile()
		if err != nil {
			t.Fatalf("FindConfigFile() failed: %v", err)
		}
		if found != want {
			t.Errorf("FindConfigFile() = %q, want %q", found, want)
		}
	})
}

// TestApplyEnv tests that environment values override file values
func TestApplyEnv(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		env     map[string]string
		want    func(*Config)
		wantErr bool
	}{
		{
			name: "no variables keeps values",
			env:  map[string]string{},
			want: func(*Config) {},
		},
		{
			name: "overrides every section",
			env: map[string]string{
				"OTPMIGRATE_LOG_LEVEL":             "debug",
				"OTPMIGRATE_LOG_FORMAT":            "json",
				"OTPMIGRATE_INPUT_MAX_IMAGE_BYTES": "1024",
				"OTPMIGRATE_EXPORT_TYPE":           "hotp",
				"OTPMIGRATE_EXPORT_SECRET":         "raw",
				"OTPMIGRATE_EXPORT_FORMAT":         "sqlite",
				"OTPMIGRATE_EXPORT_PRETTY":         "true",
				"OTPMIGRATE_EXPORT_OUTPUT":         "tokens.db",
			},
			want: func(c *Config) {
				c.Log = LogConfig{Level: "debug", Format: "json"}
				c.Input.MaxImageBytes = 1024
				c.Export = ExportConfig{Type: "hotp", Secret: "raw", Format: "sqlite", Pretty: true, Output: "tokens.db"}
			},
		},
		{
			name:    "bad integer",
			env:     map[string]string{"OTPMIGRATE_INPUT_MAX_IMAGE_BYTES": "lots"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Export.Format = "yaml"

			err := cfg.applyEnvWith(ctx, envconfig.MapLookuper(tt.env))
			if tt.wantErr {
				if err == nil {
					t.Fatal("applyEnvWith() succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("applyEnvWith() failed: %v", err)
			}

			want := DefaultConfig()
			want.Export.Format = "yaml"
			tt.want(want)
			if diff := cmp.Diff(want, cfg); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestValidate tests that every problem is reported together
func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = "verbose"
	cfg.Log.Format = "xml"
	cfg.Input.MaxImageBytes = 0
	cfg.Export.Type = "steam"
	cfg.Export.Format = "csv"
	cfg.Export.Output = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() succeeded, want error")
	}

	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("Validate() error type = %T, want *multierror.Error", err)
	}
	if got := len(merr.Errors); got != 6 {
		t.Errorf("Validate() reported %d errors, want 6:\n%v", got, err)
	}
	if !errors.Is(err, export.ErrUnsupported) {
		t.Errorf("Validate() error should wrap export.ErrUnsupported")
	}
}

// TestExportOptions tests conversion of the export section
func TestExportOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Export.Type = "TOTP"
	cfg.Export.Format = "json"
	cfg.Export.Pretty = true

	opts, err := cfg.ExportOptions()
	if err != nil {
		t.Fatalf("ExportOptions() failed: %v", err)
	}

	want := export.Options{
		Types:  export.TypeTOTP,
		Secret: export.SecretURL,
		Format: export.FormatJSON,
		Pretty: true,
	}
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Errorf("ExportOptions() mismatch (-want +got):\n%s", diff)
	}
}

// TestDefaultConfigMatchesExportDefaults keeps the config defaults in step
// with the exporter's own defaults
func TestDefaultConfigMatchesExportDefaults(t *testing.T) {
	opts, err := DefaultConfig().ExportOptions()
	if err != nil {
		t.Fatalf("ExportOptions() failed: %v", err)
	}
	if diff := cmp.Diff(export.DefaultOptions(), opts); diff != "" {
		t.Errorf("default export options mismatch (-want +got):\n%s", diff)
	}
}
