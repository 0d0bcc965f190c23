package config

import "errors"

// Configuration validation errors returned by Config.Validate, usable with errors.Is.
var (
	ErrInvalidPort        = errors.New("invalid PORT")
	ErrInvalidBodySize    = errors.New("MAX_REQUEST_BODY_SIZE must be > 0")
	ErrInvalidPixelLimit  = errors.New("MAX_IMAGE_PIXELS must be > 0")
	ErrInvalidTimeout     = errors.New("timeouts must be > 0")
	ErrInvalidPatchSize   = errors.New("PATCH_SIZE must be > 0")
	ErrInvalidThreshold   = errors.New("MIN_BLURRINESS must be >= 0")
	ErrInvalidBorderMode  = errors.New("invalid BORDER_MODE")
	ErrInvalidConcurrency = errors.New("worker and batch limits must be positive")

	// ErrIncompleteAzureCredentials is returned when only one of the account
	// name and key is set.
	ErrIncompleteAzureCredentials = errors.New("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY must be set together")

	// ErrConfigNotFound is returned when an explicitly requested file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
