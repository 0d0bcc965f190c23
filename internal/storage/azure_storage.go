package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// BlobHostSuffix identifies Azure blob endpoints
const BlobHostSuffix = ".blob.core.windows.net"

// ErrInvalidBlobURL indicates a URL without container or blob name
var ErrInvalidBlobURL = errors.New("invalid blob URL")

// AzureFetcher downloads images from Azure Blob Storage with a shared key
type AzureFetcher struct {
	client   *azblob.Client
	maxBytes int64
}

// NewAzureFetcher creates a fetcher for the given storage account
func NewAzureFetcher(accountName, accountKey string, maxBytes int64) (*AzureFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s%s", accountName, BlobHostSuffix),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure client: %w", err)
	}

	return &AzureFetcher{client: client, maxBytes: maxBytes}, nil
}

// FetchImage downloads the blob addressed by blobURL
func (s *AzureFetcher) FetchImage(ctx context.Context, blobURL string) ([]byte, error) {
	containerName, blobName, err := ParseBlobURL(blobURL)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, containerName, blobName)
		}
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	return readLimited(resp.Body, s.maxBytes)
}

// ParseBlobURL extracts container and blob names from a URL on an Azure
// blob host. Both
// https://acct.blob.core.windows.net/container/path/to/blob and the
// query form https://acct.blob.core.windows.net/container?blob=name are
// accepted.
func ParseBlobURL(blobURL string) (containerName, blobName string, err error) {
	parsedURL, err := url.Parse(blobURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidBlobURL, err)
	}
	if !IsBlobHost(parsedURL.Hostname()) {
		return "", "", fmt.Errorf("%w: %s is not a blob host", ErrInvalidBlobURL, parsedURL.Host)
	}

	path := strings.TrimPrefix(parsedURL.Path, "/")
	containerName, blobName, _ = strings.Cut(path, "/")
	if queryBlob := parsedURL.Query().Get("blob"); queryBlob != "" && blobName == "" {
		blobName = queryBlob
	}

	if containerName == "" || blobName == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidBlobURL, blobURL)
	}
	return containerName, blobName, nil
}

// IsBlobHost reports whether host is an Azure blob endpoint
func IsBlobHost(host string) bool {
	return strings.HasSuffix(strings.ToLower(host), BlobHostSuffix)
}
