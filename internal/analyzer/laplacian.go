package analyzer

import (
	"fmt"
	"image"
	"math"
)

// ResponseMap holds the signed Laplacian response of an intensity grid,
// row-major, one int16 per pixel.
type ResponseMap struct {
	Width  int
	Height int
	Pix    []int16
}

// At returns the response at (x, y)
func (m *ResponseMap) At(x, y int) int16 {
	return m.Pix[y*m.Width+x]
}

// Abs converts the response to saturated 8-bit magnitudes, min(|v|, 255)
func (m *ResponseMap) Abs() *image.Gray {
	abs := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		mag := int(v)
		if mag < 0 {
			mag = -mag
		}
		if mag > math.MaxUint8 {
			mag = math.MaxUint8
		}
		abs.Pix[i] = uint8(mag)
	}
	return abs
}

// stripRunner executes independent row-strip jobs and returns once all finish
type stripRunner interface {
	Run(jobs []func())
}

type sequentialRunner struct{}

func (sequentialRunner) Run(jobs []func()) {
	for _, job := range jobs {
		job()
	}
}

// Laplacian computes the 4-neighbour Laplacian [0 1 0; 1 -4 1; 0 1 0] of
// gray. Pixels outside the grid are supplied by border.
func Laplacian(gray *image.Gray, border BorderMode) (*ResponseMap, error) {
	return laplacian(gray, border, sequentialRunner{}, 1)
}

func laplacian(gray *image.Gray, border BorderMode, runner stripRunner, strips int) (*ResponseMap, error) {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w (got %dx%d)", ErrInvalidImage, width, height)
	}
	index, err := borderIndex(border)
	if err != nil {
		return nil, err
	}

	out := &ResponseMap{
		Width:  width,
		Height: height,
		Pix:    make([]int16, width*height),
	}

	if strips < 1 {
		strips = 1
	}
	if strips > height {
		strips = height
	}
	rowsPerStrip := (height + strips - 1) / strips // ceil division

	errs := make([]error, strips)
	jobs := make([]func(), 0, strips)
	for i := 0; i < strips; i++ {
		startY := i * rowsPerStrip
		endY := startY + rowsPerStrip
		if endY > height {
			endY = height
		}
		if startY >= endY {
			continue
		}
		i := i
		jobs = append(jobs, func() {
			errs[i] = laplacianRows(gray, out, index, startY, endY)
		})
	}
	runner.Run(jobs)

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// laplacianRows fills rows [startY, endY) of out. Each row only reads gray,
// so strips never touch each other's output.
func laplacianRows(gray *image.Gray, out *ResponseMap, index func(i, n int) int, startY, endY int) error {
	width, height := out.Width, out.Height
	origin := gray.Bounds().Min
	pixel := func(x, y int) int {
		return int(gray.Pix[gray.PixOffset(origin.X+index(x, width), origin.Y+index(y, height))])
	}

	for y := startY; y < endY; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			v := pixel(x-1, y) + pixel(x+1, y) + pixel(x, y-1) + pixel(x, y+1) - 4*pixel(x, y)
			if v < math.MinInt16 || v > math.MaxInt16 {
				return fmt.Errorf("%w at (%d,%d): %d", ErrNumericOverflow, x, y, v)
			}
			out.Pix[row+x] = int16(v)
		}
	}
	return nil
}

func borderIndex(border BorderMode) (func(i, n int) int, error) {
	switch border {
	case BorderReplicate, "":
		return replicateIndex, nil
	case BorderReflect101:
		return reflect101Index, nil
	default:
		return nil, fmt.Errorf("unknown border mode %q", border)
	}
}

func replicateIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func reflect101Index(i, n int) int {
	if n == 1 {
		return 0
	}
	if i < 0 {
		return -i
	}
	if i >= n {
		return 2*(n-1) - i
	}
	return i
}
