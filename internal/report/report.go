// Package report renders human readable views of a migration payload.
package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/BadgerOps/otpmigrate/internal/migration"
)

// Info writes the batch metadata and the account names.
func Info(w io.Writer, p *migration.Payload) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "Migration payload:")
	fmt.Fprintf(bw, "    Version: %d\n", p.Version)
	fmt.Fprintf(bw, "    Batch size: %d\n", p.BatchSize)
	fmt.Fprintf(bw, "    Batch index: %d\n", p.BatchIndex)
	fmt.Fprintf(bw, "    Batch ID: %d\n", p.BatchID)
	fmt.Fprintf(bw, "    Contained accounts (%d):\n", len(p.OtpParameters))
	for _, name := range p.Names() {
		fmt.Fprintf(bw, "        %s\n", name)
	}

	return bw.Flush()
}

// Extract writes every credential with its secret and, for TOTP, the
// provisioning URL.
func Extract(w io.Writer, p *migration.Payload) error {
	bw := bufio.NewWriter(w)

	for _, param := range p.OtpParameters {
		fmt.Fprintf(bw, "%s:\n", param.Name)
		fmt.Fprintf(bw, "    Issuer: %s\n", param.Issuer)
		fmt.Fprintf(bw, "    Algorithm: %s\n", param.Algorithm)
		fmt.Fprintf(bw, "    Type: %s\n", param.Type)
		if digits, ok := param.DigitsNumeric(); ok {
			fmt.Fprintf(bw, "    Digits: %d\n", digits)
		}
		fmt.Fprintf(bw, "    Secret: %s\n", param.SecretBase32())
		if param.Type == migration.OtpTypeHOTP {
			fmt.Fprintf(bw, "    Counter: %d\n", param.Counter)
		}
		if u, ok := param.ProvisioningURL(); ok {
			fmt.Fprintf(bw, "    URL: %s\n", u)
		}
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}
