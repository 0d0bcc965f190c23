package validation

import "fmt"

// Verdict strings shown to the photographer
const (
	BlurryTitle   = "Blurry Image"
	SharpMessage  = "Good job! Photo is not blurry"
	blurryMessage = "Image blurriness is %% %d, please take another photo!"
)

// QualityThresholds defines configurable thresholds for capture validation
type QualityThresholds struct {
	// Resolution below which the score rests on a thin window
	MinWidth  int
	MinHeight int
}

// DefaultQualityThresholds returns thresholds matching a 200 px patch
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{
		MinWidth:  400,
		MinHeight: 400,
	}
}

// QualityValidator turns a scoring outcome into user-facing issues
type QualityValidator struct {
	thresholds QualityThresholds
}

// NewQualityValidator creates a new quality validator with default thresholds
func NewQualityValidator() *QualityValidator {
	return &QualityValidator{
		thresholds: DefaultQualityThresholds(),
	}
}

// NewQualityValidatorWithThresholds creates a quality validator with custom thresholds
func NewQualityValidatorWithThresholds(thresholds QualityThresholds) *QualityValidator {
	return &QualityValidator{
		thresholds: thresholds,
	}
}

// QualityIssue represents a quality validation issue
type QualityIssue struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"` // "error", "warning", "info"
	ActualValue float64 `json:"actual_value,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
}

// CaptureQuality is the part of a scoring outcome the validator reads
type CaptureQuality struct {
	Width           int
	Height          int
	Score           float64
	Threshold       float64
	IsBlurry        bool
	SeverityPercent int
	FullFrame       bool

	// Retake is set when the caller supplied a previous fingerprint that matched
	Retake         bool
	RetakeDistance int
}

// Verdict returns the dialog title and message for a capture. Sharp captures
// have no title.
func Verdict(q CaptureQuality) (title, message string) {
	if q.IsBlurry {
		return BlurryTitle, fmt.Sprintf(blurryMessage, q.SeverityPercent)
	}
	return "", SharpMessage
}

// Validate lists the issues found in a capture
func (qv *QualityValidator) Validate(q CaptureQuality) []QualityIssue {
	var issues []QualityIssue

	if q.IsBlurry {
		_, message := Verdict(q)
		issues = append(issues, QualityIssue{
			Type:        "blurriness",
			Message:     message,
			Severity:    "error",
			ActualValue: q.Score,
			Threshold:   q.Threshold,
		})
	}

	if q.Width < qv.thresholds.MinWidth || q.Height < qv.thresholds.MinHeight {
		issues = append(issues, QualityIssue{
			Type:        "low_resolution",
			Message:     "Image is small. Take the photo closer or at a higher resolution.",
			Severity:    "warning",
			ActualValue: float64(q.Width * q.Height),
			Threshold:   float64(qv.thresholds.MinWidth * qv.thresholds.MinHeight),
		})
	}

	if q.FullFrame {
		issues = append(issues, QualityIssue{
			Type:     "full_frame",
			Message:  "The whole frame was scored because it cannot hold a focus window.",
			Severity: "info",
		})
	}

	if q.Retake {
		issues = append(issues, QualityIssue{
			Type:        "retake",
			Message:     "This photo looks the same as the previous one. Please take a new photo.",
			Severity:    "warning",
			ActualValue: float64(q.RetakeDistance),
		})
	}

	return issues
}

// HasCriticalIssues checks if there are any critical (error severity) issues
func (qv *QualityValidator) HasCriticalIssues(issues []QualityIssue) bool {
	for _, issue := range issues {
		if issue.Severity == "error" {
			return true
		}
	}
	return false
}
