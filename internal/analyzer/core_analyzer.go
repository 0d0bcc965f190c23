package analyzer

import (
	"errors"
	"fmt"
	"image"
	"time"
)

// ScoreBlurriness runs the full pipeline on img and returns the standard
// deviation of edge magnitudes around the strongest edge. When the map is too
// small for a 2*radius window the whole map is scored instead.
func ScoreBlurriness(img image.Image, patchSize int) (float64, error) {
	result, err := analyze(img, DefaultOptions().WithPatchSize(patchSize), sequentialRunner{}, 1)
	if err != nil {
		return 0, err
	}
	return result.Score, nil
}

// coreAnalyzer implements ImageAnalyzer and spreads the Laplacian over a worker pool
type coreAnalyzer struct {
	workerPool *WorkerPool
	options    AnalysisOptions
}

// NewImageAnalyzer creates an analyzer with the given default options.
// workers <= 0 uses one worker per CPU.
func NewImageAnalyzer(options AnalysisOptions, workers int) (ImageAnalyzer, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}

	workerPool := NewWorkerPool(workers)
	workerPool.Start()

	return &coreAnalyzer{
		workerPool: workerPool,
		options:    options,
	}, nil
}

// Analyze scores img with the analyzer's default options
func (ca *coreAnalyzer) Analyze(img image.Image) (Result, error) {
	return ca.AnalyzeWithOptions(img, ca.options)
}

// AnalyzeWithOptions scores img with explicit options
func (ca *coreAnalyzer) AnalyzeWithOptions(img image.Image, options AnalysisOptions) (Result, error) {
	if err := options.Validate(); err != nil {
		return Result{}, err
	}
	return analyze(img, options, ca.workerPool, ca.workerPool.Workers())
}

// PoolStats reports the worker pool counters
func (ca *coreAnalyzer) PoolStats() PoolStats {
	return ca.workerPool.GetStats()
}

// Close shuts down the worker pool
func (ca *coreAnalyzer) Close() error {
	ca.workerPool.Close()
	return nil
}

func analyze(img image.Image, options AnalysisOptions, runner stripRunner, strips int) (Result, error) {
	start := time.Now()

	if options.PatchSize <= 0 {
		return Result{}, fmt.Errorf("%w (got %d)", ErrInvalidPatchSize, options.PatchSize)
	}

	gray, err := ToGray(img)
	if err != nil {
		return Result{}, err
	}

	response, err := laplacian(gray, options.Border, runner, strips)
	if err != nil {
		return Result{}, err
	}
	magnitudes := response.Abs()

	width, height := magnitudes.Bounds().Dx(), magnitudes.Bounds().Dy()
	result := Result{
		Width:     width,
		Height:    height,
		Peak:      FindPeak(magnitudes),
		Radius:    Radius(width, options.PatchSize),
		Threshold: options.MinBlurriness,
		Timestamp: start,
	}

	window := magnitudes.Bounds()
	if options.FullFrame {
		result.FullFrame = true
	} else {
		selected, err := SelectWindow(result.Peak.Point(), result.Radius, width, height)
		switch {
		case err == nil:
			window = selected
		case errors.Is(err, ErrDegenerateWindow):
			result.FullFrame = true
		default:
			return Result{}, err
		}
	}
	result.Window = window

	result.Mean, result.Score, err = Dispersion(magnitudes, window)
	if err != nil {
		return Result{}, err
	}
	result.Classification = Classify(result.Score, options.MinBlurriness)
	result.ProcessingTimeSec = time.Since(start).Seconds()

	return result, nil
}
