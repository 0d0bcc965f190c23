package analyzer

import "image"

// ImageAnalyzer defines the main interface for blurriness analysis
type ImageAnalyzer interface {
	// Analyze scores img with the analyzer's default options
	Analyze(img image.Image) (Result, error)

	// AnalyzeWithOptions scores img with explicit options
	AnalyzeWithOptions(img image.Image, options AnalysisOptions) (Result, error)

	// Lifecycle management
	Close() error
}

// PoolReporter is implemented by analyzers that run on a WorkerPool
type PoolReporter interface {
	PoolStats() PoolStats
}
