package factory

import (
	"fmt"
	"time"

	"github.com/anime-shed/blur-inspector-go/internal/analyzer"
	"github.com/anime-shed/blur-inspector-go/internal/config"
	"github.com/anime-shed/blur-inspector-go/internal/storage"
)

// AnalyzerType represents the analyzer presets
type AnalyzerType string

const (
	// StandardAnalyzer uses the configured options
	StandardAnalyzer AnalyzerType = "standard"
	// StrictAnalyzer doubles the blurriness threshold
	StrictAnalyzer AnalyzerType = "strict"
	// OpenCVAnalyzer uses OpenCV's reflect-101 border
	OpenCVAnalyzer AnalyzerType = "opencv"
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
	// LocalStorage for local file system
	LocalStorage StorageType = "local"
)

// AnalyzerFactory creates image analyzers
type AnalyzerFactory interface {
	CreateAnalyzer(analyzerType AnalyzerType) (analyzer.ImageAnalyzer, error)
}

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ImageFetcher, error)
	CreateRouter() (*storage.Router, error)
}

// analyzerFactory implements AnalyzerFactory
type analyzerFactory struct {
	cfg *config.Config
}

// NewAnalyzerFactory creates a new analyzer factory
func NewAnalyzerFactory(cfg *config.Config) AnalyzerFactory {
	return &analyzerFactory{cfg: cfg}
}

// CreateAnalyzer creates an analyzer based on the specified type. Presets
// keep the configured patch size.
func (f *analyzerFactory) CreateAnalyzer(analyzerType AnalyzerType) (analyzer.ImageAnalyzer, error) {
	options, err := f.cfg.AnalysisOptions()
	if err != nil {
		return nil, err
	}

	switch analyzerType {
	case StandardAnalyzer, "":
	case StrictAnalyzer:
		options = analyzer.StrictOptions().WithPatchSize(options.PatchSize)
	case OpenCVAnalyzer:
		options = analyzer.OpenCVOptions().WithPatchSize(options.PatchSize).WithThreshold(options.MinBlurriness)
	default:
		return nil, fmt.Errorf("unsupported analyzer type: %s", analyzerType)
	}

	return analyzer.NewImageAnalyzer(options, f.cfg.AnalysisWorkers)
}

// storageFactory implements StorageFactory
type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ImageFetcher, error) {
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPImageFetcher(f.fetchTimeout(), f.cfg.MaxRequestBodySize), nil
	case AzureStorage:
		if !f.cfg.AzureEnabled() {
			return nil, fmt.Errorf("azure storage requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
		}
		return storage.NewAzureFetcher(f.cfg.AzureStorageAccount, f.cfg.AzureStorageKey, f.cfg.MaxRequestBodySize)
	case LocalStorage:
		return storage.NewFileFetcher(f.cfg.FileRoot, f.cfg.MaxRequestBodySize), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// CreateRouter wires every enabled backend behind one fetcher: http and https
// always, Azure blob hosts when credentials are set, file paths when allowed
func (f *storageFactory) CreateRouter() (*storage.Router, error) {
	httpFetcher, err := f.CreateStorage(HTTPStorage)
	if err != nil {
		return nil, err
	}
	router := storage.NewRouter().
		Handle("http", httpFetcher).
		Handle("https", httpFetcher)

	if f.cfg.AzureEnabled() {
		blobFetcher, err := f.CreateStorage(AzureStorage)
		if err != nil {
			return nil, err
		}
		router.HandleHostSuffix(storage.BlobHostSuffix, blobFetcher)
	}

	if f.cfg.AllowFileURLs {
		fileFetcher, err := f.CreateStorage(LocalStorage)
		if err != nil {
			return nil, err
		}
		router.Handle("file", fileFetcher)
	}

	return router, nil
}

func (f *storageFactory) fetchTimeout() time.Duration {
	if f.cfg.ImageFetchTimeout > 0 {
		return f.cfg.ImageFetchTimeout
	}
	return 15 * time.Second
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	AnalyzerFactory AnalyzerFactory
	StorageFactory  StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		AnalyzerFactory: NewAnalyzerFactory(cfg),
		StorageFactory:  NewStorageFactory(cfg),
	}
}
