package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BadgerOps/otpmigrate/internal/config"
	"github.com/BadgerOps/otpmigrate/internal/migration"
	"github.com/BadgerOps/otpmigrate/internal/qrscan"
)

// errUsage marks invalid invocations and configuration.
var errUsage = errors.New("invalid usage")

var (
	// Global flags
	cfgPath   string
	logLevel  string
	logFormat string
	quiet     bool
	uriText   string
	globalCfg *config.Config
	logger    *slog.Logger
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "otpmigrate",
		Short: "Decode Google Authenticator export QR codes",
		Long: `otpmigrate reads the QR code shown by Google Authenticator's "Transfer
accounts" screen, decodes the otpauth-migration payload it carries and
prints or exports the contained OTP credentials.

The input is a screenshot or photo of the QR code, or the
otpauth-migration:// text itself passed with --uri.`,
		Example: `  otpmigrate info screenshot.png
  otpmigrate extract screenshot.png
  otpmigrate export screenshot.png --format json --pretty
  otpmigrate export screenshot.png --type totp --secret raw --format sqlite --output tokens.db
  otpmigrate --uri 'otpauth-migration://offline?data=...' info`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd.Name()) {
				setupLogging("info", "text")
				return nil
			}

			cfg, err := loadConfig(cmd.Context())
			if err != nil {
				setupLogging("info", "text")
				return err
			}
			globalCfg = cfg

			setupLogging(cfg.Log.Level, cfg.Log.Format)
			logger.Debug("config loaded", "path", cfgPath, "log_level", cfg.Log.Level)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (auto-discovered if not specified)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text or json)")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress logging and error messages")
	cmd.PersistentFlags().StringVar(&uriText, "uri", "", "decode this otpauth-migration:// URL instead of an image")

	cmd.AddCommand(
		newInfoCmd(),
		newExtractCmd(),
		newExportCmd(),
		newConfigCmd(),
	)

	return cmd
}

// loadConfig applies file, environment and flag settings in increasing
// precedence on top of the defaults.
func loadConfig(ctx context.Context) (*config.Config, error) {
	path := cfgPath
	if path == "" {
		found, err := config.FindConfigFile()
		if err == nil {
			path = found
		}
	}

	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to load config: %w", errUsage, err)
		}
		cfg = loaded
		cfgPath = path
	}

	if err := cfg.ApplyEnv(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid configuration: %w", errUsage, err)
	}
	return cfg, nil
}

// setupLogging initializes the slog logger. Quiet mode discards all output.
func setupLogging(levelName, format string) {
	var level slog.Level
	switch strings.ToLower(levelName) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stderr
	if quiet {
		out = io.Discard
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	}

	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// shouldSkipConfig checks if a command should skip config loading
func shouldSkipConfig(cmdName string) bool {
	skipConfigCmds := map[string]bool{
		"help":       true,
		"completion": true,
	}
	return skipConfigCmds[cmdName]
}

// readMigrationText returns the otpauth-migration text from --uri or from
// the QR code in the image named by args.
func readMigrationText(args []string) (string, error) {
	switch {
	case uriText != "" && len(args) > 0:
		return "", fmt.Errorf("%w: pass either an IMAGE or --uri, not both", errUsage)
	case uriText != "":
		logger.Debug("using migration URL from flag")
		return strings.TrimSpace(uriText), nil
	case len(args) == 0:
		return "", fmt.Errorf("%w: an IMAGE argument or --uri is required", errUsage)
	}

	img, err := qrscan.LoadImage(args[0], globalCfg.Input.MaxImageBytes)
	if err != nil {
		return "", err
	}
	b := img.Bounds()
	logger.Debug("image loaded", "path", args[0], "width", b.Dx(), "height", b.Dy())

	text, err := qrscan.Decode(qrscan.NewZXing(logger), img)
	if err != nil {
		return "", err
	}
	logger.Debug("QR code decoded", "length", len(text))
	return text, nil
}

// loadPayload reads and decodes the migration payload for a command.
func loadPayload(args []string) (*migration.Payload, error) {
	text, err := readMigrationText(args)
	if err != nil {
		return nil, err
	}

	payload, err := migration.ParseURL(text)
	if err != nil {
		return nil, err
	}
	logger.Debug("migration payload decoded",
		"accounts", len(payload.OtpParameters),
		"version", payload.Version,
		"batch_size", payload.BatchSize,
		"batch_index", payload.BatchIndex)

	if payload.IsPartialBatch() {
		logger.Warn("export is split over several QR codes; only this one is decoded",
			"batch_index", payload.BatchIndex, "batch_size", payload.BatchSize)
	}
	return payload, nil
}
