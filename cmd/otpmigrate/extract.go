package main

import (
	"github.com/spf13/cobra"

	"github.com/BadgerOps/otpmigrate/internal/report"
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [IMAGE]",
		Short: "Print every account with its secret",
		Long: `Decode the export QR code and print each account's issuer, algorithm,
type, digits and base32 secret. TOTP accounts also get their
otpauth:// provisioning URL, HOTP accounts their counter.`,
		Example: `  otpmigrate extract screenshot.png`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    extractRun,
	}

	return cmd
}

func extractRun(cmd *cobra.Command, args []string) error {
	payload, err := loadPayload(args)
	if err != nil {
		return err
	}
	return report.Extract(cmd.OutOrStdout(), payload)
}
