package repository

import (
	"context"
	"image"

	"github.com/anime-shed/blur-inspector-go/internal/capture"
)

// ImageRepository defines the interface for image data access operations
type ImageRepository interface {
	// FetchImage retrieves and decodes an image from a URL or path
	FetchImage(ctx context.Context, imageURL string) (*Image, error)

	// DecodeImage decodes bytes that were obtained elsewhere, such as an upload
	DecodeImage(source string, data []byte) (*Image, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error
}

// URLValidator checks a location before it is fetched
type URLValidator interface {
	ValidateImageURL(imageURL string) error
}

// Image is a decoded image together with its encoded bytes
type Image struct {
	Source   string
	Data     []byte
	Image    image.Image
	Metadata ImageMetadata
}

// ImageMetadata contains metadata about an image
type ImageMetadata struct {
	ContentLength int64        `json:"content_length"`
	Width         int          `json:"width"`
	Height        int          `json:"height"`
	Format        string       `json:"format"`
	Capture       capture.Info `json:"capture"`
}
