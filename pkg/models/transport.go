package models

// ScoringParams are the optional per-request scoring overrides
type ScoringParams struct {
	PatchSize *int     `json:"patch_size,omitempty" form:"patch_size"`
	Threshold *float64 `json:"threshold,omitempty" form:"threshold"`
	Border    string   `json:"border,omitempty" form:"border"`
	Mode      string   `json:"mode,omitempty" form:"mode"`
}

// AnalysisRequest represents a request to score one image by URL
type AnalysisRequest struct {
	URL string `json:"url" binding:"required"`
	ScoringParams
	PreviousFingerprint string `json:"previous_fingerprint,omitempty"`
}

// UploadParams are the form fields accompanying an uploaded image
type UploadParams struct {
	ScoringParams
	PreviousFingerprint string `form:"previous_fingerprint"`
}

// BatchRequest represents a request to score several images
type BatchRequest struct {
	URLs []string `json:"urls" binding:"required,min=1"`
	ScoringParams
	// PreviousFingerprint is compared against every image of the batch
	PreviousFingerprint string `json:"previous_fingerprint,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}
