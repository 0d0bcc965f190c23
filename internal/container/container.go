package container

import (
	"fmt"
	"image"
	"image/color"
	"net/http"
	"time"

	"github.com/anime-shed/blur-inspector-go/internal/analyzer"
	"github.com/anime-shed/blur-inspector-go/internal/config"
	"github.com/anime-shed/blur-inspector-go/internal/factory"
	"github.com/anime-shed/blur-inspector-go/internal/logger"
	"github.com/anime-shed/blur-inspector-go/internal/observer"
	"github.com/anime-shed/blur-inspector-go/internal/repository"
	"github.com/anime-shed/blur-inspector-go/internal/service"
	"github.com/anime-shed/blur-inspector-go/internal/storage"
	"github.com/anime-shed/blur-inspector-go/internal/strategy"
	"github.com/anime-shed/blur-inspector-go/internal/syncx"
	"github.com/anime-shed/blur-inspector-go/internal/transport"
	"github.com/anime-shed/blur-inspector-go/pkg/models"
	"github.com/anime-shed/blur-inspector-go/pkg/validation"
	"github.com/sirupsen/logrus"
)

// Container holds all application dependencies
type Container struct {
	imageFetcher        *storage.Router
	imageAnalyzer       analyzer.ImageAnalyzer
	imageRepository     repository.ImageRepository
	strategies          *strategy.Registry
	events              *observer.EventPublisher
	metrics             *observer.MetricsObserver
	blurAnalysisService service.BlurAnalysisService
	ready               *syncx.Gate
	started             time.Time
	handler             http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	components := factory.NewComponentFactory(cfg)

	imageFetcher, err := components.StorageFactory.CreateRouter()
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}

	imageAnalyzer, err := components.AnalyzerFactory.CreateAnalyzer(factory.StandardAnalyzer)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}
	defaults, err := cfg.AnalysisOptions()
	if err != nil {
		imageAnalyzer.Close()
		return nil, err
	}

	urlValidator := validation.NewURLValidator()
	if cfg.AllowFileURLs {
		urlValidator = urlValidator.AllowFiles()
	}
	imageRepository := repository.NewImageRepository(imageFetcher, urlValidator, cfg.MaxImagePixels)

	events := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	strategies := strategy.NewRegistry(imageAnalyzer)
	blurAnalysisService := service.NewBlurAnalysisService(
		imageRepository,
		strategies,
		events,
		validation.NewQualityValidator(),
		service.Options{
			Defaults:         defaults,
			BatchConcurrency: cfg.BatchConcurrency,
			MaxBatchSize:     cfg.MaxBatchSize,
			AnalysisTimeout:  cfg.AnalysisTimeout,
		},
	)

	c := &Container{
		imageFetcher:        imageFetcher,
		imageAnalyzer:       imageAnalyzer,
		imageRepository:     imageRepository,
		strategies:          strategies,
		events:              events,
		metrics:             metrics,
		blurAnalysisService: blurAnalysisService,
		ready:               syncx.NewGate(),
		started:             time.Now(),
	}
	c.handler = transport.NewHandler(blurAnalysisService, c.ready, c, cfg)

	logger.WithFields(logrus.Fields{
		"sources":    imageFetcher.Schemes(),
		"modes":      strategies.Names(),
		"patch_size": defaults.PatchSize,
		"threshold":  defaults.MinBlurriness,
		"border":     defaults.Border,
	}).Info("Container initialized")

	return c, nil
}

// Warmup scores a synthetic frame so the first request does not pay for
// pool start-up, then opens the readiness gate
func (c *Container) Warmup() error {
	frame := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		frame.SetGray(32, y, color.Gray{Y: 255})
	}

	start := time.Now()
	result, err := c.imageAnalyzer.Analyze(frame)
	if err != nil {
		return fmt.Errorf("warm-up scoring failed: %w", err)
	}
	if result.Score <= 0 {
		return fmt.Errorf("warm-up scoring returned %f for a frame with an edge", result.Score)
	}

	c.ready.Open()
	logger.WithField("processing_time_ms", time.Since(start).Milliseconds()).Info("Scorer ready")
	return nil
}

// Stats implements transport.StatsSource
func (c *Container) Stats() models.StatsResponse {
	stats := models.StatsResponse{
		Ready:     c.ready.IsOpen(),
		UptimeSec: time.Since(c.started).Seconds(),
		Scoring:   c.metrics.GetMetrics(),
		Modes:     c.strategies.Names(),
		Sources:   c.imageFetcher.Schemes(),
	}
	if reporter, ok := c.imageAnalyzer.(analyzer.PoolReporter); ok {
		pool := reporter.PoolStats()
		stats.Workers = pool.Workers
		stats.CompletedJobs = pool.CompletedJobs
	}
	return stats
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Service returns the blur analysis service
func (c *Container) Service() service.BlurAnalysisService {
	return c.blurAnalysisService
}

// Ready returns the readiness gate
func (c *Container) Ready() *syncx.Gate {
	return c.ready
}

// Close drains pending events and stops the analyzer
func (c *Container) Close() error {
	c.events.Flush()
	return c.imageAnalyzer.Close()
}
