package analyzer

import "math"

// Classify compares score against threshold. Severity is the relative
// shortfall below the threshold as a rounded percentage in [0,100].
func Classify(score, threshold float64) Classification {
	if !(score < threshold) {
		return Classification{}
	}

	severity := math.Round((threshold - score) / threshold * 100)
	if severity < 0 {
		severity = 0
	}
	if severity > 100 {
		severity = 100
	}
	return Classification{
		IsBlurry:        true,
		SeverityPercent: int(severity),
	}
}
