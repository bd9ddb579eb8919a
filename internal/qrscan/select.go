// Package qrscan locates QR symbols in images and selects the single text
// payload an export screenshot is expected to carry.
package qrscan

import (
	"errors"
	"fmt"
	"image"
	"unicode/utf8"
)

var (
	ErrNoSymbol        = errors.New("no QR code found")
	ErrMultipleSymbols = errors.New("multiple QR codes found")
	ErrInvalidText     = errors.New("QR code data is not valid UTF-8 text")
	ErrDecodeFailed    = errors.New("QR code decoding failed")
	ErrImage           = errors.New("cannot read image")
)

// Extractor returns the raw, error corrected payload of every QR symbol
// found in an image.
type Extractor interface {
	Extract(img image.Image) ([][]byte, error)
}

// SelectText requires exactly one payload and returns it as text. Ambiguous
// input is rejected instead of guessing which symbol is meant.
func SelectText(payloads [][]byte) (string, error) {
	switch len(payloads) {
	case 0:
		return "", ErrNoSymbol
	case 1:
	default:
		return "", fmt.Errorf("%w: %d symbols in image", ErrMultipleSymbols, len(payloads))
	}

	if !utf8.Valid(payloads[0]) {
		return "", ErrInvalidText
	}
	return string(payloads[0]), nil
}

// Decode extracts the symbols in img and selects the single text payload.
func Decode(ex Extractor, img image.Image) (string, error) {
	payloads, err := ex.Extract(img)
	if err != nil {
		return "", err
	}
	return SelectText(payloads)
}
