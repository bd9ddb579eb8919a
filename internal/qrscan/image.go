package qrscan

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/BadgerOps/otpmigrate/internal/safety"
)

// LoadImage reads and decodes an image file of at most maxBytes bytes.
func LoadImage(path string, maxBytes int64) (image.Image, error) {
	data, err := safety.ReadFileWithLimit(path, maxBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open file %q: %w", ErrImage, path, err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image file %q: %w", ErrImage, path, err)
	}

	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: image %q has no pixels", ErrImage, path)
	}
	return img, nil
}
