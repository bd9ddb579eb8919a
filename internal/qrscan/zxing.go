package qrscan

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"unicode/utf8"

	"github.com/makiuchi-d/gozxing"
	multiqrcode "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// ZXing is an Extractor backed by the gozxing QR readers.
type ZXing struct {
	logger *slog.Logger
	hints  map[gozxing.DecodeHintType]interface{}
}

// NewZXing creates a ZXing extractor.
func NewZXing(logger *slog.Logger) *ZXing {
	return &ZXing{
		logger: logger,
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// Extract implements Extractor. An image without any readable symbol yields
// no payloads rather than an error.
func (z *ZXing) Extract(img image.Image) ([][]byte, error) {
	gray := toGray(img)
	bmp, err := gozxing.NewBinaryBitmapFromImage(gray)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	multi := multiqrcode.NewQRCodeMultiReader()
	results, err := multi.DecodeMultiple(bmp, z.hints)
	if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	// The multi detector is stricter about finder patterns than the single
	// symbol reader, so give the latter a chance before reporting nothing.
	if len(results) == 0 {
		z.logger.Debug("multi-symbol reader found nothing, trying single reader")
		single := qrcode.NewQRCodeReader()
		result, err := single.Decode(bmp, z.hints)
		if err != nil {
			if isNotFound(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
		}
		results = []*gozxing.Result{result}
	}

	payloads := make([][]byte, 0, len(results))
	for _, r := range results {
		payloads = append(payloads, resultBytes(r))
	}

	z.logger.Debug("QR symbols extracted", "count", len(payloads),
		"width", gray.Bounds().Dx(), "height", gray.Bounds().Dy())
	return payloads, nil
}

// resultBytes returns the symbol payload. gozxing decodes byte segments
// with a guessed character set, so non-ASCII text is taken from the raw
// segments instead.
func resultBytes(r *gozxing.Result) []byte {
	text := r.GetText()
	if isASCII(text) {
		return []byte(text)
	}
	if segs, ok := r.GetResultMetadata()[gozxing.ResultMetadataType_BYTE_SEGMENTS].([][]byte); ok && len(segs) > 0 {
		return bytes.Join(segs, nil)
	}
	return []byte(text)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func isNotFound(err error) bool {
	var nf gozxing.NotFoundException
	return errors.As(err, &nf)
}

// toGray flattens img onto a white background as an 8-bit grayscale grid.
// Transparent screenshot regions would otherwise turn black.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(b)
	draw.Draw(g, b, image.White, image.Point{}, draw.Src)
	draw.Draw(g, b, img, b.Min, draw.Over)
	return g
}
