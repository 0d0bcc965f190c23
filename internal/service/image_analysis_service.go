package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/anime-shed/blur-inspector-go/internal/analyzer"
	"github.com/anime-shed/blur-inspector-go/internal/capture"
	apperrors "github.com/anime-shed/blur-inspector-go/internal/errors"
	"github.com/anime-shed/blur-inspector-go/internal/logger"
	"github.com/anime-shed/blur-inspector-go/internal/observer"
	"github.com/anime-shed/blur-inspector-go/internal/repository"
	"github.com/anime-shed/blur-inspector-go/internal/storage"
	"github.com/anime-shed/blur-inspector-go/internal/strategy"
	"github.com/anime-shed/blur-inspector-go/pkg/models"
	"github.com/anime-shed/blur-inspector-go/pkg/validation"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// BlurAnalysisService scores images fetched by URL, uploaded, or in batches
type BlurAnalysisService interface {
	ScoreURL(ctx context.Context, req models.AnalysisRequest) (*models.BlurAnalysisResponse, error)
	ScoreUpload(ctx context.Context, filename string, data []byte, params models.UploadParams) (*models.BlurAnalysisResponse, error)
	ScoreBatch(ctx context.Context, req models.BatchRequest) (*models.BatchResponse, error)

	// Common validation
	ValidateImageURL(imageURL string) error

	// Modes lists the scoring modes requests may select
	Modes() []string
}

// Options tunes the service
type Options struct {
	// Defaults fill in whatever a request leaves out
	Defaults         analyzer.AnalysisOptions
	BatchConcurrency int
	MaxBatchSize     int
	// AnalysisTimeout bounds one scoring run; zero means no bound
	AnalysisTimeout time.Duration
}

// blurAnalysisService implements BlurAnalysisService
type blurAnalysisService struct {
	imageRepo  repository.ImageRepository
	strategies *strategy.Registry
	events     observer.Subject
	validator  *validation.QualityValidator
	options    Options
}

// NewBlurAnalysisService creates a new blur analysis service
func NewBlurAnalysisService(
	imageRepository repository.ImageRepository,
	strategies *strategy.Registry,
	events observer.Subject,
	validator *validation.QualityValidator,
	options Options,
) BlurAnalysisService {
	if options.BatchConcurrency <= 0 {
		options.BatchConcurrency = 1
	}
	if validator == nil {
		validator = validation.NewQualityValidator()
	}
	return &blurAnalysisService{
		imageRepo:  imageRepository,
		strategies: strategies,
		events:     events,
		validator:  validator,
		options:    options,
	}
}

// scoringPlan is a request resolved against the service defaults
type scoringPlan struct {
	options             analyzer.AnalysisOptions
	strategy            strategy.ScoringStrategy
	previousFingerprint string
}

// ScoreURL fetches one image and scores it
func (s *blurAnalysisService) ScoreURL(ctx context.Context, req models.AnalysisRequest) (*models.BlurAnalysisResponse, error) {
	start := time.Now()
	s.publish(ctx, observer.ScoringEvent{EventType: observer.ScoringStarted, Source: req.URL, Mode: req.Mode})

	plan, err := s.plan(req.ScoringParams, req.PreviousFingerprint)
	if err != nil {
		return nil, s.fail(ctx, req.URL, req.Mode, start, err)
	}

	if err := s.ValidateImageURL(req.URL); err != nil {
		return nil, s.fail(ctx, req.URL, req.Mode, start, asValidationError(err))
	}

	img, err := s.imageRepo.FetchImage(ctx, req.URL)
	if err != nil {
		appErr := mapFetchError(err)
		s.publish(ctx, observer.ScoringEvent{
			EventType:      observer.ImageFetchFailed,
			Source:         req.URL,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, s.fail(ctx, req.URL, req.Mode, start, appErr)
	}
	s.publish(ctx, observer.ScoringEvent{
		EventType:      observer.ImageFetched,
		Source:         req.URL,
		Success:        true,
		ProcessingTime: time.Since(start),
		Metadata: map[string]interface{}{
			"format": img.Metadata.Format,
			"bytes":  img.Metadata.ContentLength,
		},
	})

	return s.score(ctx, img, plan, start)
}

// ScoreUpload scores image bytes received directly from the client
func (s *blurAnalysisService) ScoreUpload(ctx context.Context, filename string, data []byte, params models.UploadParams) (*models.BlurAnalysisResponse, error) {
	start := time.Now()
	source := "upload:" + filename
	s.publish(ctx, observer.ScoringEvent{EventType: observer.ScoringStarted, Source: source, Mode: params.Mode})

	plan, err := s.plan(params.ScoringParams, params.PreviousFingerprint)
	if err != nil {
		return nil, s.fail(ctx, source, params.Mode, start, err)
	}

	img, err := s.imageRepo.DecodeImage(source, data)
	if err != nil {
		return nil, s.fail(ctx, source, params.Mode, start, mapFetchError(err))
	}

	return s.score(ctx, img, plan, start)
}

// ScoreBatch scores every URL with bounded concurrency. Per-item failures are
// reported in the item; only cancellation fails the whole batch.
func (s *blurAnalysisService) ScoreBatch(ctx context.Context, req models.BatchRequest) (*models.BatchResponse, error) {
	start := time.Now()

	if len(req.URLs) == 0 {
		return nil, apperrors.NewValidationError("batch must contain at least one URL", nil)
	}
	if s.options.MaxBatchSize > 0 && len(req.URLs) > s.options.MaxBatchSize {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("batch of %d exceeds the limit of %d", len(req.URLs), s.options.MaxBatchSize), nil)
	}
	if _, err := s.plan(req.ScoringParams, req.PreviousFingerprint); err != nil {
		return nil, err
	}

	items := make([]models.BatchItem, len(req.URLs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.options.BatchConcurrency)

	for i, url := range req.URLs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			items[i].Source = url
			result, err := s.ScoreURL(gctx, models.AnalysisRequest{
				URL:                 url,
				ScoringParams:       req.ScoringParams,
				PreviousFingerprint: req.PreviousFingerprint,
			})
			if err != nil {
				items[i].Error = ToErrorResponse(err)
				return nil
			}
			items[i].Result = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, apperrors.FromAnalysisError(err)
	}

	response := &models.BatchResponse{
		Items: items,
		Total: len(items),
	}
	for _, item := range items {
		if item.Result == nil {
			response.Failed++
			continue
		}
		response.Succeeded++
		if item.Result.Verdict.Blurry {
			response.Blurry++
		}
	}
	response.ProcessingTimeSec = time.Since(start).Seconds()

	logger.WithFields(logrus.Fields{
		"total":              response.Total,
		"succeeded":          response.Succeeded,
		"failed":             response.Failed,
		"concurrency":        s.options.BatchConcurrency,
		"processing_time_ms": time.Since(start).Milliseconds(),
	}).Info("Batch scoring completed")

	return response, nil
}

// ValidateImageURL validates the image URL
func (s *blurAnalysisService) ValidateImageURL(imageURL string) error {
	return s.imageRepo.ValidateImageURL(imageURL)
}

// Modes lists the registered scoring modes
func (s *blurAnalysisService) Modes() []string {
	return s.strategies.Names()
}

// plan merges request overrides into the defaults and picks the strategy
func (s *blurAnalysisService) plan(params models.ScoringParams, previousFingerprint string) (scoringPlan, error) {
	opts := s.options.Defaults
	if params.PatchSize != nil {
		if *params.PatchSize <= 0 {
			return scoringPlan{}, apperrors.NewValidationError("patch_size must be positive", nil)
		}
		opts = opts.WithPatchSize(*params.PatchSize)
	}
	if params.Threshold != nil {
		if *params.Threshold < 0 {
			return scoringPlan{}, apperrors.NewValidationError("threshold must not be negative", nil)
		}
		opts = opts.WithThreshold(*params.Threshold)
	}
	if params.Border != "" {
		border, err := analyzer.ParseBorderMode(params.Border)
		if err != nil {
			return scoringPlan{}, apperrors.NewValidationError("invalid border mode", err)
		}
		opts.Border = border
	}
	if err := opts.Validate(); err != nil {
		return scoringPlan{}, apperrors.FromAnalysisError(err)
	}

	scorer, err := s.strategies.Get(params.Mode)
	if err != nil {
		return scoringPlan{}, apperrors.NewValidationError("invalid scoring mode", err)
	}

	if previousFingerprint != "" {
		if err := capture.ValidateFingerprint(previousFingerprint); err != nil {
			return scoringPlan{}, apperrors.NewValidationError("invalid previous_fingerprint", err)
		}
	}

	return scoringPlan{
		options:             opts,
		strategy:            scorer,
		previousFingerprint: previousFingerprint,
	}, nil
}

// score runs the selected strategy and assembles the response
func (s *blurAnalysisService) score(ctx context.Context, img *repository.Image, plan scoringPlan, start time.Time) (*models.BlurAnalysisResponse, error) {
	mode := plan.strategy.GetStrategyName()

	if err := ctx.Err(); err != nil {
		return nil, s.fail(ctx, img.Source, mode, start, apperrors.FromAnalysisError(err))
	}

	result, err := s.runStrategy(ctx, img.Image, plan)
	if err != nil {
		return nil, s.fail(ctx, img.Source, mode, start, apperrors.FromAnalysisError(err))
	}

	response := &models.BlurAnalysisResponse{
		Source:    img.Source,
		Timestamp: start.UTC().Format(time.RFC3339),
		Mode:      mode,
		Metrics: models.BlurMetrics{
			Score:     result.Score,
			Mean:      result.Mean,
			Threshold: result.Threshold,
			PatchSize: plan.options.PatchSize,
			Border:    string(plan.options.Border),
			Radius:    result.Radius,
			Peak:      models.Peak{X: result.Peak.X, Y: result.Peak.Y, Value: result.Peak.Value},
			Window: models.Window{
				X0: result.Window.Min.X, Y0: result.Window.Min.Y,
				X1: result.Window.Max.X, Y1: result.Window.Max.Y,
			},
			FullFrame: result.FullFrame,
		},
		ImageMetadata: models.ImageMetadata{
			ContentLength: img.Metadata.ContentLength,
			Width:         img.Metadata.Width,
			Height:        img.Metadata.Height,
			Format:        img.Metadata.Format,
		},
	}
	if img.Metadata.Capture.HasExif {
		info := img.Metadata.Capture
		response.Capture = &info
	}

	quality := validation.CaptureQuality{
		Width:           result.Width,
		Height:          result.Height,
		Score:           result.Score,
		Threshold:       result.Threshold,
		IsBlurry:        result.Classification.IsBlurry,
		SeverityPercent: result.Classification.SeverityPercent,
		FullFrame:       result.FullFrame,
	}

	fingerprint, err := capture.Fingerprint(img.Image)
	if err != nil {
		logger.WithError(err).WithField("source", img.Source).Warn("Failed to fingerprint image")
	} else {
		response.Fingerprint = fingerprint
		if plan.previousFingerprint != "" {
			same, distance, err := capture.IsRetake(plan.previousFingerprint, fingerprint, capture.DefaultRetakeDistance)
			if err == nil {
				response.Retake = &models.RetakeInfo{
					PreviousFingerprint: plan.previousFingerprint,
					Distance:            distance,
					SameShot:            same,
				}
				quality.Retake = same
				quality.RetakeDistance = distance
			}
		}
	}

	title, message := validation.Verdict(quality)
	response.Verdict = models.Verdict{
		Blurry:          result.Classification.IsBlurry,
		SeverityPercent: result.Classification.SeverityPercent,
		Title:           title,
		Message:         message,
	}
	response.Issues = s.validator.Validate(quality)
	response.Accepted = !s.validator.HasCriticalIssues(response.Issues)
	response.ProcessingTimeSec = time.Since(start).Seconds()

	s.publish(ctx, observer.ScoringEvent{
		EventType:      observer.ScoringCompleted,
		Source:         img.Source,
		Mode:           mode,
		Success:        true,
		ProcessingTime: time.Since(start),
		Score:          result.Score,
		Blurry:         result.Classification.IsBlurry,
	})

	return response, nil
}

func (s *blurAnalysisService) publish(ctx context.Context, event observer.ScoringEvent) {
	if s.events != nil {
		s.events.NotifyObservers(ctx, event)
	}
}

// fail publishes a failure event and returns err as an AppError
func (s *blurAnalysisService) fail(ctx context.Context, source, mode string, start time.Time, err error) error {
	appErr := apperrors.FromAnalysisError(err)
	s.publish(ctx, observer.ScoringEvent{
		EventType:      observer.ScoringFailed,
		Source:         source,
		Mode:           mode,
		ProcessingTime: time.Since(start),
		ErrorMessage:   appErr.Error(),
	})
	return appErr
}

func asValidationError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.NewValidationError("invalid image URL", err)
}

// runStrategy scores img, giving up once the analysis timeout elapses.
// The abandoned run finishes in the background and its result is dropped.
func (s *blurAnalysisService) runStrategy(ctx context.Context, img image.Image, plan scoringPlan) (analyzer.Result, error) {
	if s.options.AnalysisTimeout <= 0 {
		return plan.strategy.Score(img, plan.options)
	}

	ctx, cancel := context.WithTimeout(ctx, s.options.AnalysisTimeout)
	defer cancel()

	type outcome struct {
		result analyzer.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := plan.strategy.Score(img, plan.options)
		done <- outcome{result, err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-ctx.Done():
		return analyzer.Result{}, fmt.Errorf("scoring: %w", ctx.Err())
	}
}

// mapFetchError turns repository failures into application errors
func mapFetchError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, repository.ErrImageNotFound):
		return apperrors.NewNotFoundError("image not found", err)
	case errors.Is(err, storage.ErrImageTooLarge):
		return apperrors.NewTooLargeError("image too large", err)
	case errors.Is(err, repository.ErrUndecodableImage):
		return apperrors.NewProcessingError("image could not be decoded", err)
	case errors.Is(err, repository.ErrRepositoryUnavailable):
		return apperrors.NewUnavailableError("no storage backend for this location", err)
	case errors.Is(err, storage.ErrOutsideRoot), errors.Is(err, storage.ErrInvalidBlobURL):
		return apperrors.NewValidationError("invalid image location", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("image fetch timeout", err)
	default:
		return apperrors.NewNetworkError("failed to fetch image", err)
	}
}

// ToErrorResponse renders err for clients
func ToErrorResponse(err error) *models.ErrorResponse {
	appErr := apperrors.FromAnalysisError(err)
	if appErr == nil {
		return nil
	}
	resp := &models.ErrorResponse{
		Error:   appErr.Message,
		Type:    string(appErr.Type),
		Details: appErr.Details,
	}
	if appErr.Cause != nil {
		resp.Message = strings.TrimPrefix(appErr.Cause.Error(), appErr.Message+": ")
	}
	return resp
}
