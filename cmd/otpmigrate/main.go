package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BadgerOps/otpmigrate/internal/export"
	"github.com/BadgerOps/otpmigrate/internal/migration"
	"github.com/BadgerOps/otpmigrate/internal/qrscan"
	"github.com/BadgerOps/otpmigrate/internal/safety"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitInput   = 2
	exitParse   = 3
	exitExport  = 4
)

const hint = "Are you sure the QR code is a valid Google Authenticator App export code?"

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the command line and maps the outcome to an exit status.
func run(args []string, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err == nil {
		return exitOK
	}

	code := exitCode(err)
	if !quiet {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if showHint(err) {
			fmt.Fprintln(stderr, hint)
		}
	}
	return code
}

// exitCode classifies err by the sentinel it wraps.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		return exitFailure
	case errors.Is(err, qrscan.ErrImage),
		errors.Is(err, qrscan.ErrNoSymbol),
		errors.Is(err, qrscan.ErrMultipleSymbols),
		errors.Is(err, qrscan.ErrInvalidText),
		errors.Is(err, qrscan.ErrDecodeFailed),
		errors.Is(err, safety.ErrTooLarge):
		return exitInput
	case errors.Is(err, migration.ErrInvalidPrefix),
		errors.Is(err, migration.ErrInvalidText),
		errors.Is(err, migration.ErrInvalidBase64),
		errors.Is(err, migration.ErrSchemaDecode):
		return exitParse
	case errors.Is(err, export.ErrUnsupported),
		errors.Is(err, export.ErrSerialize),
		errors.Is(err, export.ErrDestination):
		return exitExport
	default:
		return exitFailure
	}
}

// showHint reports whether the failure suggests the image is not an export
// code at all. Unreadable files get no hint.
func showHint(err error) bool {
	if errors.Is(err, errUsage) || errors.Is(err, qrscan.ErrImage) || errors.Is(err, safety.ErrTooLarge) {
		return false
	}
	code := exitCode(err)
	return code == exitInput || code == exitParse
}
