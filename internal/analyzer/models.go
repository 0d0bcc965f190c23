package analyzer

import (
	"image"
	"time"
)

// Peak is the location and magnitude of the strongest edge response
type Peak struct {
	X     int
	Y     int
	Value uint8
}

// Point returns the peak location as an image.Point
func (p Peak) Point() image.Point {
	return image.Pt(p.X, p.Y)
}

// Classification is the sharp/blurry verdict for a score
type Classification struct {
	IsBlurry bool
	// SeverityPercent is in [0,100] and only meaningful when IsBlurry is set
	SeverityPercent int
}

// Result holds everything a single scoring call produced
type Result struct {
	Width  int
	Height int

	Peak   Peak
	Radius int
	// Window is the scored region of the response map. When FullFrame is
	// set it covers the whole map.
	Window    image.Rectangle
	FullFrame bool

	Mean  float64
	Score float64

	Threshold      float64
	Classification Classification

	Timestamp         time.Time
	ProcessingTimeSec float64
}
