package models

import (
	"github.com/anime-shed/blur-inspector-go/internal/capture"
	"github.com/anime-shed/blur-inspector-go/pkg/validation"
)

// BlurAnalysisResponse is the result of scoring one image
type BlurAnalysisResponse struct {
	Source            string  `json:"source"`
	Timestamp         string  `json:"timestamp"`
	ProcessingTimeSec float64 `json:"processing_time_sec"`
	Mode              string  `json:"mode"`

	Metrics BlurMetrics `json:"metrics"`
	Verdict Verdict     `json:"verdict"`

	ImageMetadata ImageMetadata `json:"image_metadata"`
	Capture       *capture.Info `json:"capture,omitempty"`

	// Fingerprint is a perceptual hash a client sends back as
	// previous_fingerprint to detect retakes of the same shot
	Fingerprint string      `json:"fingerprint,omitempty"`
	Retake      *RetakeInfo `json:"retake,omitempty"`

	// Accepted is false when any issue is severe enough to reject the photo
	Accepted bool                      `json:"accepted"`
	Issues   []validation.QualityIssue `json:"issues,omitempty"`
}

// BlurMetrics are the numbers behind a verdict
type BlurMetrics struct {
	Score     float64 `json:"score"`
	Mean      float64 `json:"mean"`
	Threshold float64 `json:"threshold"`
	PatchSize int     `json:"patch_size"`
	Border    string  `json:"border"`
	Radius    int     `json:"radius"`
	Peak      Peak    `json:"peak"`
	Window    Window  `json:"window"`
	FullFrame bool    `json:"full_frame"`
}

// Peak is the strongest edge response
type Peak struct {
	X     int   `json:"x"`
	Y     int   `json:"y"`
	Value uint8 `json:"value"`
}

// Window is a half-open pixel rectangle [X0,X1) x [Y0,Y1)
type Window struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
}

// Verdict is the user-facing classification
type Verdict struct {
	Blurry          bool   `json:"blurry"`
	SeverityPercent int    `json:"severity_percent"`
	Title           string `json:"title,omitempty"`
	Message         string `json:"message"`
}

// RetakeInfo compares the capture with a previous one
type RetakeInfo struct {
	PreviousFingerprint string `json:"previous_fingerprint"`
	Distance            int    `json:"distance"`
	SameShot            bool   `json:"same_shot"`
}

// ImageMetadata contains metadata about an image
type ImageMetadata struct {
	ContentLength int64  `json:"content_length"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Format        string `json:"format"`
}

// BatchItem is the outcome for one location of a batch
type BatchItem struct {
	Source string                `json:"source"`
	Result *BlurAnalysisResponse `json:"result,omitempty"`
	Error  *ErrorResponse        `json:"error,omitempty"`
}

// BatchResponse holds batch outcomes in request order
type BatchResponse struct {
	Items             []BatchItem `json:"items"`
	Total             int         `json:"total"`
	Succeeded         int         `json:"succeeded"`
	Failed            int         `json:"failed"`
	Blurry            int         `json:"blurry"`
	ProcessingTimeSec float64     `json:"processing_time_sec"`
}
