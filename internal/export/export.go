// Package export writes filtered credentials to text, JSON, YAML or SQLite
// containers.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BadgerOps/otpmigrate/internal/migration"
)

var (
	ErrUnsupported = errors.New("unsupported export option")
	ErrSerialize   = errors.New("export serialization failed")
	ErrDestination = errors.New("writing export destination failed")
)

// Entry is one exported credential after filtering.
type Entry struct {
	Name   string
	Issuer string
	Type   migration.OtpType
	Value  string
}

// Entries filters the payload's credentials and renders their secrets.
// Export order is preserved and duplicates are kept.
func Entries(p *migration.Payload, opts Options) []Entry {
	entries := make([]Entry, 0, len(p.OtpParameters))
	for _, param := range p.OtpParameters {
		if !opts.Types.Match(param.Type) {
			continue
		}
		entries = append(entries, Entry{
			Name:   param.Name,
			Issuer: param.Issuer,
			Type:   param.Type,
			Value:  secretValue(param, opts.Secret),
		})
	}
	return entries
}

func secretValue(param migration.OtpParameter, f SecretFormat) string {
	if f == SecretURL {
		if u, ok := param.ProvisioningURL(); ok {
			return u
		}
	}
	return param.SecretBase32()
}

// Exporter writes payloads in the configured container.
type Exporter struct {
	logger *slog.Logger
}

// NewExporter creates an Exporter.
func NewExporter(logger *slog.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// Write encodes the payload to w. SQLite output needs a file and is
// rejected here; use WriteFile.
func (e *Exporter) Write(w io.Writer, p *migration.Payload, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if opts.Format == FormatSQLite {
		return fmt.Errorf("%w: sqlite output requires a file destination", ErrUnsupported)
	}

	entries := Entries(p, opts)
	e.logger.Debug("export entries selected",
		"selected", len(entries), "total", len(p.OtpParameters),
		"types", opts.Types, "secret", opts.Secret, "format", opts.Format)

	data, err := encode(entries, opts)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(data); err != nil {
		return fmt.Errorf("%w: %w", ErrDestination, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrDestination, err)
	}
	return nil
}

// WriteFile writes the export to path. The content is assembled in a
// temporary file next to path and renamed into place, so a failed export
// never leaves a partial file behind.
func (e *Exporter) WriteFile(path string, p *migration.Payload, opts Options) (err error) {
	if err := opts.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDestination, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	if opts.Format == FormatSQLite {
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("%w: %w", ErrDestination, err)
		}
		if err := e.writeSQLite(tmpPath, p, opts); err != nil {
			return err
		}
	} else {
		if err := e.Write(tmp, p, opts); err != nil {
			tmp.Close()
			return err
		}
		if err := tmp.Sync(); err != nil {
			tmp.Close()
			return fmt.Errorf("%w: %w", ErrDestination, err)
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("%w: %w", ErrDestination, err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: %w", ErrDestination, err)
	}

	e.logger.Debug("export written", "path", path, "format", opts.Format)
	return nil
}
