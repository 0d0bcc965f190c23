//go:build gocv

package cvref

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/anime-shed/blur-inspector-go/internal/analyzer"
	"gocv.io/x/gocv"
)

// Available reports whether the OpenCV reference is compiled in
func Available() bool { return true }

// Analyze runs grayscale, CV_16S Laplacian, convertScaleAbs, minMaxLoc and
// meanStdDev through OpenCV with the same window rules as the analyzer.
func Analyze(img image.Image, options analyzer.AnalysisOptions) (analyzer.Result, error) {
	start := time.Now()
	if err := options.Validate(); err != nil {
		return analyzer.Result{}, err
	}

	gray, err := analyzer.ToGray(img)
	if err != nil {
		return analyzer.Result{}, err
	}

	src, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return analyzer.Result{}, fmt.Errorf("convert to mat: %w", err)
	}
	defer src.Close()

	response := gocv.NewMat()
	defer response.Close()
	border := gocv.BorderReplicate
	if options.Border == analyzer.BorderReflect101 {
		border = gocv.BorderDefault
	}
	gocv.Laplacian(src, &response, gocv.MatTypeCV16S, 1, 1, 0, border)

	magnitudes := gocv.NewMat()
	defer magnitudes.Close()
	gocv.ConvertScaleAbs(response, &magnitudes, 1, 0)

	width, height := magnitudes.Cols(), magnitudes.Rows()
	_, maxVal, _, maxLoc := gocv.MinMaxLoc(magnitudes)

	result := analyzer.Result{
		Width:     width,
		Height:    height,
		Peak:      analyzer.Peak{X: maxLoc.X, Y: maxLoc.Y, Value: uint8(maxVal)},
		Radius:    analyzer.Radius(width, options.PatchSize),
		Threshold: options.MinBlurriness,
		Timestamp: start,
	}

	window := image.Rect(0, 0, width, height)
	if options.FullFrame {
		result.FullFrame = true
	} else {
		selected, err := analyzer.SelectWindow(maxLoc, result.Radius, width, height)
		switch {
		case err == nil:
			window = selected
		case errors.Is(err, analyzer.ErrDegenerateWindow):
			result.FullFrame = true
		default:
			return analyzer.Result{}, err
		}
	}
	result.Window = window

	region := magnitudes.Region(window)
	defer region.Close()

	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()
	gocv.MeanStdDev(region, &mean, &stddev)

	result.Mean = mean.GetDoubleAt(0, 0)
	result.Score = stddev.GetDoubleAt(0, 0)
	result.Classification = analyzer.Classify(result.Score, options.MinBlurriness)
	result.ProcessingTimeSec = time.Since(start).Seconds()
	return result, nil
}
