package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anime-shed/blur-inspector-go/internal/capture"
	"github.com/anime-shed/blur-inspector-go/internal/logger"
	"github.com/anime-shed/blur-inspector-go/internal/storage"
)

// imageRepository implements ImageRepository over a storage fetcher
type imageRepository struct {
	fetcher   storage.ImageFetcher
	validator URLValidator
	maxPixels int64
}

// NewImageRepository creates an image repository. A nil validator only
// rejects empty URLs; frames above maxPixels are refused before decoding
// and 0 means no limit.
func NewImageRepository(fetcher storage.ImageFetcher, validator URLValidator, maxPixels int64) ImageRepository {
	return &imageRepository{
		fetcher:   fetcher,
		validator: validator,
		maxPixels: maxPixels,
	}
}

// FetchImage retrieves an image and decodes it
func (r *imageRepository) FetchImage(ctx context.Context, imageURL string) (*Image, error) {
	data, err := r.fetcher.FetchImage(ctx, imageURL)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("%w: %w", ErrImageNotFound, err)
		case errors.Is(err, storage.ErrUnsupportedSource):
			return nil, fmt.Errorf("%w: %w", ErrRepositoryUnavailable, err)
		default:
			return nil, fmt.Errorf("fetch %s: %w", imageURL, err)
		}
	}
	return r.DecodeImage(imageURL, data)
}

// DecodeImage decodes data and reads its capture metadata
func (r *imageRepository) DecodeImage(source string, data []byte) (*Image, error) {
	img, format, err := storage.Decode(data, r.maxPixels)
	if err != nil {
		if errors.Is(err, storage.ErrImageTooLarge) {
			return nil, fmt.Errorf("decode %s: %w", source, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrUndecodableImage, err)
	}

	info, err := capture.ExtractInfo(data)
	if err != nil {
		// EXIF is advisory; a corrupt block must not fail scoring
		logger.WithError(err).WithField("source", source).Warn("Failed to parse EXIF")
	}

	bounds := img.Bounds()
	return &Image{
		Source: source,
		Data:   data,
		Image:  img,
		Metadata: ImageMetadata{
			ContentLength: int64(len(data)),
			Width:         bounds.Dx(),
			Height:        bounds.Dy(),
			Format:        format,
			Capture:       info,
		},
	}, nil
}

// ValidateImageURL validates if the provided URL is acceptable
func (r *imageRepository) ValidateImageURL(imageURL string) error {
	if r.validator != nil {
		return r.validator.ValidateImageURL(imageURL)
	}
	if strings.TrimSpace(imageURL) == "" {
		return ErrInvalidImageURL
	}
	return nil
}
