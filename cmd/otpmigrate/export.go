package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BadgerOps/otpmigrate/internal/export"
)

type exportFlags struct {
	tokenType string
	secret    string
	format    string
	output    string
	pretty    bool
}

func newExportCmd() *cobra.Command {
	flags := &exportFlags{}

	cmd := &cobra.Command{
		Use:   "export [IMAGE]",
		Short: "Export accounts as text, JSON, YAML or SQLite",
		Long: `Decode the export QR code and write the selected accounts to a
container keyed by account name.

Text output has one name:value line per account. JSON and YAML output is a
single mapping; when two accounts share a name the later one wins. SQLite
output needs --output and stores the batch metadata alongside the accounts.

Files are written atomically: a failed export leaves any existing file
untouched. Defaults come from the export section of the config file.`,
		Example: `  otpmigrate export screenshot.png
  otpmigrate export screenshot.png --type totp --secret raw
  otpmigrate export screenshot.png --format json --pretty --output tokens.json
  otpmigrate export screenshot.png --format sqlite --output tokens.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportRun(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.tokenType, "type", "", "token types to export (totp, hotp, all)")
	cmd.Flags().StringVar(&flags.secret, "secret", "", "secret representation (raw or url)")
	cmd.Flags().StringVar(&flags.format, "format", "", "output format (text, json, yaml, sqlite)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file, - for stdout")
	cmd.Flags().BoolVar(&flags.pretty, "pretty", false, "indent JSON output")

	return cmd
}

func exportRun(cmd *cobra.Command, args []string, flags *exportFlags) error {
	settings := globalCfg.Export
	if cmd.Flags().Changed("type") {
		settings.Type = flags.tokenType
	}
	if cmd.Flags().Changed("secret") {
		settings.Secret = flags.secret
	}
	if cmd.Flags().Changed("format") {
		settings.Format = flags.format
	}
	if cmd.Flags().Changed("output") {
		settings.Output = flags.output
	}
	if cmd.Flags().Changed("pretty") {
		settings.Pretty = flags.pretty
	}

	cfg := *globalCfg
	cfg.Export = settings
	opts, err := cfg.ExportOptions()
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	payload, err := loadPayload(args)
	if err != nil {
		return err
	}

	exporter := export.NewExporter(logger)
	if settings.Output == "-" || settings.Output == "" {
		return exporter.Write(cmd.OutOrStdout(), payload, opts)
	}

	if err := exporter.WriteFile(settings.Output, payload, opts); err != nil {
		return err
	}
	logger.Info("export written", "path", settings.Output, "format", opts.Format,
		"accounts", len(export.Entries(payload, opts)))
	return nil
}
