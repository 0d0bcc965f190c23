package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anime-shed/blur-inspector-go/internal/config"
	apperrors "github.com/anime-shed/blur-inspector-go/internal/errors"
	"github.com/anime-shed/blur-inspector-go/internal/logger"
	"github.com/anime-shed/blur-inspector-go/internal/service"
	"github.com/anime-shed/blur-inspector-go/internal/syncx"
	"github.com/anime-shed/blur-inspector-go/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Version is reported by /health
const Version = "1.0.0"

// StatsSource supplies the /stats payload
type StatsSource interface {
	Stats() models.StatsResponse
}

// NewHandler builds the gin engine. Route debug output is only kept when
// the log level is debug.
func NewHandler(svc service.BlurAnalysisService, ready *syncx.Gate, stats StatsSource, cfg *config.Config) http.Handler {
	if gin.Mode() == gin.DebugMode && !strings.EqualFold(cfg.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// Add middleware
	r.Use(
		gin.Recovery(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.GET("/ready", readinessCheck(ready))
	r.GET("/stats", statsHandler(stats))

	analyze := r.Group("/analyze", requireReady(ready))
	analyze.POST("", analyzeImage(svc, cfg))
	analyze.POST("/upload", analyzeUpload(svc, cfg))
	analyze.POST("/batch", analyzeBatch(svc, cfg))

	return r
}

func analyzeImage(svc service.BlurAnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.AnalysisRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError("invalid request format", err))
			return
		}

		// Query parameter takes precedence over the JSON body
		if mode := c.Query("mode"); mode != "" {
			req.Mode = mode
		}

		logger.WithFields(logrus.Fields{
			"url":  req.URL,
			"mode": req.Mode,
		}).Debug("Scoring image by URL")

		resp, err := svc.ScoreURL(ctx, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func analyzeUpload(svc service.BlurAnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var params models.UploadParams
		if err := c.ShouldBind(&params); err != nil {
			respondError(c, apperrors.NewValidationError("invalid form fields", err))
			return
		}

		fileHeader, err := c.FormFile("image")
		if err != nil {
			respondError(c, apperrors.NewValidationError("multipart field \"image\" is required", err))
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, apperrors.NewValidationError("cannot read uploaded image", err))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			respondError(c, apperrors.NewValidationError("cannot read uploaded image", err))
			return
		}

		resp, err := svc.ScoreUpload(ctx, fileHeader.Filename, data, params)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func analyzeBatch(svc service.BlurAnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError("invalid request format", err))
			return
		}

		resp, err := svc.ScoreBatch(ctx, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func readinessCheck(ready *syncx.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ready.IsOpen() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "warming_up"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

func statsHandler(stats StatsSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, stats.Stats())
	}
}

// Middleware and helper functions
func requireReady(ready *syncx.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ready.IsOpen() {
			respondError(c, apperrors.NewUnavailableError("scorer is warming up", nil))
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":             c.Request.Method,
			"path":               c.Request.URL.Path,
			"status":             c.Writer.Status(),
			"ip":                 c.ClientIP(),
			"user_agent":         c.Request.UserAgent(),
			"processing_time_ms": time.Since(start).Milliseconds(),
		}).Info("Request handled")
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			respondError(c, c.Errors.Last().Err)
		}
	}
}

func determineStatusCode(err error) int {
	// Body limit hits surface wrapped in bind errors
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	code := determineStatusCode(err)

	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	resp := service.ToErrorResponse(err)
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		resp.Error = "request body too large"
		resp.Type = string(apperrors.ErrorTypeValidation)
	}
	c.AbortWithStatusJSON(code, resp)
}
