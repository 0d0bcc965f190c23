package analyzer

import (
	"fmt"
	"image"
)

// FindPeak returns the strongest response in m. Ties go to the first cell in
// row-major order (top-to-bottom, left-to-right).
func FindPeak(m *image.Gray) Peak {
	bounds := m.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var peak Peak
	found := false
	for y := 0; y < height; y++ {
		row := m.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		for x := 0; x < width; x++ {
			v := m.Pix[row+x]
			if !found || v > peak.Value {
				peak = Peak{X: x, Y: y, Value: v}
				found = true
			}
		}
	}
	return peak
}

// Radius derives the window half side from the map width only. The same
// radius is applied to both axes.
func Radius(width, patchSize int) int {
	if width > 2*patchSize {
		return patchSize
	}
	return width / 2
}

// SelectWindow centers a square of side 2*radius on peak and clamps it into
// a width x height map. ErrDegenerateWindow is returned when no valid
// non-empty window fits.
func SelectWindow(peak image.Point, radius, width, height int) (image.Rectangle, error) {
	if radius <= 0 {
		return image.Rectangle{}, fmt.Errorf("%w: radius %d", ErrDegenerateWindow, radius)
	}

	x1, x2 := clampAxis(peak.X, radius, width)
	y1, y2 := clampAxis(peak.Y, radius, height)

	if x1 < 0 || x1 >= x2 || x2 > width || y1 < 0 || y1 >= y2 || y2 > height {
		return image.Rectangle{}, fmt.Errorf("%w: window [%d,%d)x[%d,%d) in %dx%d map",
			ErrDegenerateWindow, x1, x2, y1, y2, width, height)
	}

	// Built directly: image.Rect would canonicalize and hide a bad window.
	return image.Rectangle{Min: image.Pt(x1, y1), Max: image.Pt(x2, y2)}, nil
}

// clampAxis places [lo, hi) of length 2r around p. When hi reaches the
// extent it is pulled back to extent-1, which drops the last column/row even
// when the window would fit exactly.
func clampAxis(p, r, extent int) (lo, hi int) {
	if p > r {
		lo = p - r
	}
	hi = lo + 2*r
	if hi >= extent {
		hi = extent - 1
		lo = hi - 2*r
	}
	return lo, hi
}
