package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrNotFound indicates the source has no image at the location
	ErrNotFound = errors.New("no such object")

	// ErrImageTooLarge indicates the payload exceeded the configured limit
	ErrImageTooLarge = errors.New("image exceeds size limit")

	// ErrUnsupportedSource indicates no fetcher handles the location
	ErrUnsupportedSource = errors.New("unsupported image source")
)

// ImageFetcher retrieves the raw bytes of an image. Callers decode them so
// metadata embedded in the file survives.
type ImageFetcher interface {
	FetchImage(ctx context.Context, location string) ([]byte, error)
}

// readLimited reads r fully, failing once more than maxBytes arrive.
// maxBytes <= 0 disables the limit.
func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w (limit %d bytes)", ErrImageTooLarge, maxBytes)
	}
	return data, nil
}
