package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot indicates a path that escapes the configured root
var ErrOutsideRoot = errors.New("path outside allowed root")

// FileFetcher reads images from the local filesystem
type FileFetcher struct {
	root     string
	maxBytes int64
}

// NewFileFetcher creates a file fetcher. A non-empty root confines reads to
// that directory.
func NewFileFetcher(root string, maxBytes int64) *FileFetcher {
	if root != "" {
		root = filepath.Clean(root)
	}
	return &FileFetcher{root: root, maxBytes: maxBytes}
}

// FetchImage reads location, a plain path or a file:// URL
func (f *FileFetcher) FetchImage(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := f.resolve(location)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path) //nolint:gosec // path is confined by resolve
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if f.maxBytes > 0 && info.Size() > f.maxBytes {
		return nil, fmt.Errorf("%w (limit %d bytes)", ErrImageTooLarge, f.maxBytes)
	}

	return readLimited(file, f.maxBytes)
}

func (f *FileFetcher) resolve(location string) (string, error) {
	path := location
	if strings.HasPrefix(location, "file://") {
		parsed, err := url.Parse(location)
		if err != nil {
			return "", fmt.Errorf("invalid file URL: %w", err)
		}
		path = parsed.Path
	}
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrNotFound)
	}

	if f.root == "" {
		return filepath.Clean(path), nil
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(f.root, path)
	}
	path = filepath.Clean(path)
	rel, err := filepath.Rel(f.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, location)
	}
	return path, nil
}
