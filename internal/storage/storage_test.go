package storage

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

type stubFetcher struct {
	name string
	got  []string
}

func (s *stubFetcher) FetchImage(ctx context.Context, location string) ([]byte, error) {
	s.got = append(s.got, location)
	return []byte(s.name), nil
}

// pngHeader returns a PNG signature and IHDR chunk for an 8-bit gray frame,
// with no pixel data
func pngHeader(width, height uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], width)
	binary.BigEndian.PutUint32(ihdr[4:8], height)
	ihdr[8] = 8
	chunk := append([]byte("IHDR"), ihdr...)

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	t.Run("PNG", func(t *testing.T) {
		img, format, err := Decode(encodePNG(t, 3, 2), 0)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if format != "png" || img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
			t.Errorf("Unexpected decode result %s %v", format, img.Bounds())
		}
	})

	t.Run("JPEG", func(t *testing.T) {
		src := image.NewRGBA(image.Rect(0, 0, 8, 8))
		for i := 0; i < 8; i++ {
			src.Set(i, i, color.RGBA{255, 0, 0, 255})
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, src, nil); err != nil {
			t.Fatal(err)
		}
		_, format, err := Decode(buf.Bytes(), 0)
		if err != nil || format != "jpeg" {
			t.Errorf("Expected jpeg, got %q (%v)", format, err)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if _, _, err := Decode(nil, 0); !errors.Is(err, ErrEmptyImage) {
			t.Errorf("Expected ErrEmptyImage, got %v", err)
		}
	})

	t.Run("Within Pixel Limit", func(t *testing.T) {
		if _, _, err := Decode(encodePNG(t, 20, 10), 200); err != nil {
			t.Errorf("Unexpected error at exactly the limit: %v", err)
		}
	})

	t.Run("Over Pixel Limit", func(t *testing.T) {
		_, _, err := Decode(encodePNG(t, 20, 10), 199)
		if !errors.Is(err, ErrTooManyPixels) || !errors.Is(err, ErrImageTooLarge) {
			t.Errorf("Expected ErrTooManyPixels, got %v", err)
		}
	})

	t.Run("Huge Declared Frame", func(t *testing.T) {
		header := pngHeader(12000, 12000)
		if len(header) > 64 {
			t.Fatalf("Expected a tiny payload, got %d bytes", len(header))
		}
		if _, _, err := Decode(header, 40_000_000); !errors.Is(err, ErrTooManyPixels) {
			t.Errorf("Expected ErrTooManyPixels before decoding pixels, got %v", err)
		}
	})

	t.Run("Unknown Format", func(t *testing.T) {
		if _, _, err := Decode([]byte("definitely not an image"), 0); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
		}
	})
}

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	data := encodePNG(t, 4, 4)
	path := filepath.Join(dir, "photo.png")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name     string
		fetcher  *FileFetcher
		location string
		expected error
	}{
		{"Plain Path", NewFileFetcher("", 0), path, nil},
		{"File URL", NewFileFetcher("", 0), "file://" + path, nil},
		{"Relative To Root", NewFileFetcher(dir, 0), "photo.png", nil},
		{"Missing", NewFileFetcher("", 0), filepath.Join(dir, "missing.png"), ErrNotFound},
		{"Escapes Root", NewFileFetcher(dir, 0), "../etc/passwd", ErrOutsideRoot},
		{"Too Large", NewFileFetcher("", 10), path, ErrImageTooLarge},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.fetcher.FetchImage(context.Background(), tc.location)
			if tc.expected != nil {
				if !errors.Is(err, tc.expected) {
					t.Errorf("Expected %v, got %v", tc.expected, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Error("Expected file contents")
			}
		})
	}
}

func TestFileFetcher_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewFileFetcher("", 0).FetchImage(ctx, "/tmp/x.png"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRouter(t *testing.T) {
	httpFetcher := &stubFetcher{name: "http"}
	fileFetcher := &stubFetcher{name: "file"}
	blobFetcher := &stubFetcher{name: "blob"}

	router := NewRouter().
		Handle("http", httpFetcher).
		Handle("https", httpFetcher).
		Handle("file", fileFetcher).
		HandleHostSuffix(BlobHostSuffix, blobFetcher)

	testCases := []struct {
		location string
		expected string
	}{
		{"https://example.com/a.jpg", "http"},
		{"HTTP://example.com/a.jpg", "http"},
		{"https://acct.blob.core.windows.net/photos/a.jpg", "blob"},
		{"file:///tmp/a.jpg", "file"},
		{"/tmp/a.jpg", "file"},
		{"photos/a.jpg", "file"},
	}

	for _, tc := range testCases {
		got, err := router.FetchImage(context.Background(), tc.location)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tc.location, err)
			continue
		}
		if string(got) != tc.expected {
			t.Errorf("%s: expected %s fetcher, got %s", tc.location, tc.expected, got)
		}
	}

	if _, err := router.FetchImage(context.Background(), "ftp://example.com/a.jpg"); !errors.Is(err, ErrUnsupportedSource) {
		t.Errorf("Expected ErrUnsupportedSource, got %v", err)
	}

	schemes := router.Schemes()
	if len(schemes) != 3 || schemes[0] != "file" || schemes[2] != "https" {
		t.Errorf("Unexpected schemes %v", schemes)
	}
}

func TestParseBlobURL(t *testing.T) {
	testCases := []struct {
		name      string
		url       string
		container string
		blob      string
		wantErr   bool
	}{
		{"Path Form", "https://acct.blob.core.windows.net/photos/2024/a.jpg", "photos", "2024/a.jpg", false},
		{"Query Form", "https://acct.blob.core.windows.net/photos?blob=a.jpg", "photos", "a.jpg", false},
		{"No Blob", "https://acct.blob.core.windows.net/photos", "", "", true},
		{"No Container", "https://acct.blob.core.windows.net/", "", "", true},
		{"Foreign Host", "https://example.com/photos/a.jpg", "", "", true},
		{"Upper Case Host", "https://ACCT.Blob.Core.Windows.Net/photos/a.jpg", "photos", "a.jpg", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			container, blob, err := ParseBlobURL(tc.url)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidBlobURL) {
					t.Errorf("Expected ErrInvalidBlobURL, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if container != tc.container || blob != tc.blob {
				t.Errorf("Expected %s/%s, got %s/%s", tc.container, tc.blob, container, blob)
			}
		})
	}
}

func TestNewAzureFetcher(t *testing.T) {
	if _, err := NewAzureFetcher("acct", "not base64!", 0); err == nil {
		t.Error("Expected error for malformed account key")
	}

	fetcher, err := NewAzureFetcher("acct", "c2VjcmV0LWtleQ==", 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := fetcher.FetchImage(context.Background(), "https://acct.blob.core.windows.net/only-container"); !errors.Is(err, ErrInvalidBlobURL) {
		t.Errorf("Expected ErrInvalidBlobURL before any request, got %v", err)
	}
	if !IsBlobHost("ACCT.blob.core.windows.net") || IsBlobHost("example.com") {
		t.Error("Unexpected IsBlobHost result")
	}
}
