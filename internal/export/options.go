package export

import (
	"fmt"
	"strings"

	"github.com/BadgerOps/otpmigrate/internal/migration"
)

// TypeFilter selects which credential types are exported.
type TypeFilter string

const (
	TypeTOTP TypeFilter = "totp"
	TypeHOTP TypeFilter = "hotp"
	TypeAll  TypeFilter = "all"
)

// Match reports whether a credential of type t passes the filter.
// Credentials of unspecified type only pass TypeAll.
func (f TypeFilter) Match(t migration.OtpType) bool {
	switch f {
	case TypeAll:
		return true
	case TypeTOTP:
		return t == migration.OtpTypeTOTP
	case TypeHOTP:
		return t == migration.OtpTypeHOTP
	default:
		return false
	}
}

// SecretFormat selects how a credential's secret is represented.
type SecretFormat string

const (
	// SecretRaw exports the base32 secret.
	SecretRaw SecretFormat = "raw"
	// SecretURL exports the provisioning URL, falling back to the base32
	// secret for credentials that have none.
	SecretURL SecretFormat = "url"
)

// Format is the output container.
type Format string

const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatSQLite Format = "sqlite"
)

// Options configures an export.
type Options struct {
	Types  TypeFilter
	Secret SecretFormat
	Format Format
	Pretty bool
}

// DefaultOptions exports every credential as provisioning URL text lines.
func DefaultOptions() Options {
	return Options{
		Types:  TypeAll,
		Secret: SecretURL,
		Format: FormatText,
	}
}

// Validate checks that every option holds a known value.
func (o Options) Validate() error {
	switch o.Types {
	case TypeTOTP, TypeHOTP, TypeAll:
	default:
		return fmt.Errorf("%w: token type %q (want totp, hotp or all)", ErrUnsupported, o.Types)
	}
	switch o.Secret {
	case SecretRaw, SecretURL:
	default:
		return fmt.Errorf("%w: secret format %q (want raw or url)", ErrUnsupported, o.Secret)
	}
	switch o.Format {
	case FormatText, FormatJSON, FormatYAML, FormatSQLite:
	default:
		return fmt.Errorf("%w: format %q (want text, json, yaml or sqlite)", ErrUnsupported, o.Format)
	}
	return nil
}

// ParseTypeFilter parses a case-insensitive token type name.
func ParseTypeFilter(s string) (TypeFilter, error) {
	f := TypeFilter(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case TypeTOTP, TypeHOTP, TypeAll:
		return f, nil
	}
	return "", fmt.Errorf("%w: token type %q (want totp, hotp or all)", ErrUnsupported, s)
}

// ParseSecretFormat parses a case-insensitive secret format name.
func ParseSecretFormat(s string) (SecretFormat, error) {
	f := SecretFormat(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case SecretRaw, SecretURL:
		return f, nil
	}
	return "", fmt.Errorf("%w: secret format %q (want raw or url)", ErrUnsupported, s)
}

// ParseFormat parses a case-insensitive container format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatText, FormatJSON, FormatYAML, FormatSQLite:
		return f, nil
	}
	return "", fmt.Errorf("%w: format %q (want text, json, yaml or sqlite)", ErrUnsupported, s)
}
