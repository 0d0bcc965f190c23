package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrEmptyImage indicates a zero-length payload
	ErrEmptyImage = errors.New("empty image payload")

	// ErrUnsupportedFormat indicates no registered decoder recognised the payload
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrTooManyPixels indicates a frame whose declared dimensions exceed the
	// pixel limit. It matches ErrImageTooLarge.
	ErrTooManyPixels = fmt.Errorf("%w: too many pixels", ErrImageTooLarge)
)

// Decode decodes data with the registered decoders and returns the image
// with its format name. The header is read first so frames declaring more
// than maxPixels are rejected before any pixel buffer is allocated; a
// maxPixels of 0 disables the check.
func Decode(data []byte, maxPixels int64) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyImage
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", decodeError(err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); maxPixels > 0 && pixels > maxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %d", ErrTooManyPixels, cfg.Width, cfg.Height, maxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", decodeError(err)
	}
	return img, format, nil
}

func decodeError(err error) error {
	if errors.Is(err, image.ErrFormat) {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return fmt.Errorf("failed to decode image: %w", err)
}
