package migration

import (
	"encoding/base32"
	"net/url"
	"strconv"
	"strings"
)

var secretEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// SecretBase32 returns the secret as unpadded upper case base32, the form
// authenticator apps accept for manual entry.
func (p OtpParameter) SecretBase32() string {
	return secretEncoding.EncodeToString(p.Secret)
}

// DecodeSecret reverses SecretBase32. Padded input is accepted too.
func DecodeSecret(s string) ([]byte, error) {
	s = strings.TrimRight(strings.ToUpper(s), "=")
	return secretEncoding.DecodeString(s)
}

// DigitsNumeric returns the code length, or false when the export left it
// unspecified.
func (p OtpParameter) DigitsNumeric() (int, bool) {
	switch p.Digits {
	case DigitCountSix:
		return 6, true
	case DigitCountEight:
		return 8, true
	default:
		return 0, false
	}
}

// ProvisioningURL rebuilds the otpauth://totp/ URL for a TOTP credential.
// Other types have no such representation and report false.
//
// Parameters are always written in the order issuer, secret, digits,
// algorithm so that output is stable.
func (p OtpParameter) ProvisioningURL() (string, bool) {
	if p.Type != OtpTypeTOTP {
		return "", false
	}

	var b strings.Builder
	b.WriteString("otpauth://totp/")
	b.WriteString(url.PathEscape(p.Name))
	b.WriteString("?issuer=")
	b.WriteString(queryEscape(p.Issuer))
	b.WriteString("&secret=")
	b.WriteString(p.SecretBase32())

	if digits, ok := p.DigitsNumeric(); ok {
		b.WriteString("&digits=")
		b.WriteString(strconv.Itoa(digits))
	}
	if p.Algorithm != AlgorithmUnspecified {
		b.WriteString("&algorithm=")
		b.WriteString(p.Algorithm.String())
	}

	return b.String(), true
}

// queryEscape escapes a query value with spaces as %20; several
// authenticators show a literal '+' otherwise.
func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
