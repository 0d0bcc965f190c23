package analyzer

import "errors"

var (
	// ErrInvalidImage indicates an image with non-positive dimensions
	ErrInvalidImage = errors.New("invalid image: dimensions must be positive")

	// ErrDegenerateWindow indicates the response map cannot hold a window of
	// the configured size. Callers recover by scoring the whole map.
	ErrDegenerateWindow = errors.New("degenerate window: map too small for patch size")

	// ErrNumericOverflow indicates a Laplacian response outside the int16 range
	ErrNumericOverflow = errors.New("numeric overflow in edge response")

	// ErrInvalidPatchSize indicates a non-positive patch size
	ErrInvalidPatchSize = errors.New("invalid patch size: must be > 0")
)
