//go:build !gocv

package cvref

import (
	"image"

	"github.com/anime-shed/blur-inspector-go/internal/analyzer"
)

// Available reports whether the OpenCV reference is compiled in
func Available() bool { return false }

// Analyze returns ErrUnavailable when built without the gocv tag
func Analyze(_ image.Image, _ analyzer.AnalysisOptions) (analyzer.Result, error) {
	return analyzer.Result{}, ErrUnavailable
}
