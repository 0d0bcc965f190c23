package repository

import "errors"

var (
	// ErrInvalidImageURL indicates an invalid image URL
	ErrInvalidImageURL = errors.New("invalid image URL")

	// ErrImageNotFound indicates the image was not found
	ErrImageNotFound = errors.New("image not found")

	// ErrUndecodableImage indicates bytes that no registered decoder accepts
	ErrUndecodableImage = errors.New("image could not be decoded")

	// ErrRepositoryUnavailable indicates no storage backend serves the location
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
