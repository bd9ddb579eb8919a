package main

import (
	"github.com/spf13/cobra"

	"github.com/BadgerOps/otpmigrate/internal/report"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info [IMAGE]",
		Short: "Show the batch metadata and account names",
		Long: `Decode the export QR code and print the payload version, the batch
position and the names of the contained accounts. Secrets are not shown.`,
		Example: `  otpmigrate info screenshot.png
  otpmigrate --uri 'otpauth-migration://offline?data=...' info`,
		Args: cobra.MaximumNArgs(1),
		RunE: infoRun,
	}

	return cmd
}

func infoRun(cmd *cobra.Command, args []string) error {
	payload, err := loadPayload(args)
	if err != nil {
		return err
	}
	return report.Info(cmd.OutOrStdout(), payload)
}
