package migration

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Prefix is the scheme and path every export URL starts with.
const Prefix = "otpauth-migration://offline?data="

var (
	ErrInvalidPrefix = errors.New("invalid migration URL prefix")
	ErrInvalidText   = errors.New("invalid text encoding")
	ErrInvalidBase64 = errors.New("invalid base64 data")
	ErrSchemaDecode  = errors.New("schema decoding failed")
)

// Stage names one step of the decode pipeline.
type Stage string

const (
	StagePrefix        Stage = "prefix"
	StagePercentDecode Stage = "percent-decode"
	StageBase64        Stage = "base64"
	StageSchema        Stage = "schema"
)

// DecodeError reports which stage of ParseURL failed. Kind is one of the
// package sentinels and Err the underlying cause.
type DecodeError struct {
	Stage Stage
	Kind  error
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s stage: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s stage: %v: %v", e.Stage, e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ParseURL decodes an otpauth-migration URL into its payload.
func ParseURL(s string) (*Payload, error) {
	data, ok := strings.CutPrefix(s, Prefix)
	if !ok {
		return nil, &DecodeError{
			Stage: StagePrefix,
			Kind:  ErrInvalidPrefix,
			Err:   fmt.Errorf("expected URL starting with %q", Prefix),
		}
	}

	unescaped := percentDecode(data)
	if !utf8.ValidString(unescaped) {
		return nil, &DecodeError{
			Stage: StagePercentDecode,
			Kind:  ErrInvalidText,
			Err:   errors.New("percent-decoded data is not valid UTF-8"),
		}
	}

	// The decoder silently drops line breaks; they are not base64.
	if i := strings.IndexAny(unescaped, "\r\n"); i >= 0 {
		return nil, &DecodeError{
			Stage: StageBase64,
			Kind:  ErrInvalidBase64,
			Err:   base64.CorruptInputError(i),
		}
	}
	raw, err := base64.StdEncoding.Strict().DecodeString(unescaped)
	if err != nil {
		return nil, &DecodeError{Stage: StageBase64, Kind: ErrInvalidBase64, Err: err}
	}

	payload, err := decodePayload(raw)
	if err != nil {
		return nil, &DecodeError{Stage: StageSchema, Kind: ErrSchemaDecode, Err: err}
	}
	return payload, nil
}

// percentDecode replaces every well formed %XX escape with its byte. Malformed
// escapes and '+' are kept as they are and left for the base64 stage.
func percentDecode(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
