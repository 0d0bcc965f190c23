package analyzer

import (
	"fmt"
	"image"
	"sync"

	"gonum.org/v1/gonum/stat"
)

var samplePool = sync.Pool{
	New: func() interface{} {
		return make([]float64, 0, 4*DefaultPatchSize*DefaultPatchSize)
	},
}

// Dispersion returns the mean and standard deviation of the magnitudes of m
// inside window. The deviation is normalised by N.
func Dispersion(m *image.Gray, window image.Rectangle) (mean, std float64, err error) {
	bounds := m.Bounds()
	local := window.Add(bounds.Min)
	if window.Empty() || !local.In(bounds) {
		return 0, 0, fmt.Errorf("%w: window %v outside %dx%d map",
			ErrDegenerateWindow, window, bounds.Dx(), bounds.Dy())
	}

	samples := samplePool.Get().([]float64)[:0]
	defer func() { samplePool.Put(samples[:0]) }()

	for y := local.Min.Y; y < local.Max.Y; y++ {
		row := m.PixOffset(local.Min.X, y)
		for _, v := range m.Pix[row : row+local.Dx()] {
			samples = append(samples, float64(v))
		}
	}

	mean, std = stat.PopMeanStdDev(samples, nil)
	return mean, std, nil
}
