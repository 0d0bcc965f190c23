package analyzer

import (
	"errors"
	"image"
	"math"
	"testing"
)

func TestDispersion(t *testing.T) {
	testCases := []struct {
		name         string
		m            *image.Gray
		window       image.Rectangle
		expectedMean float64
		expectedStd  float64
	}{
		{"Two Values", newGray(2, 2, 0, 10, 0, 10), image.Rect(0, 0, 2, 2), 5, 5},
		{"Constant", newGray(3, 1, 7, 7, 7), image.Rect(0, 0, 3, 1), 7, 0},
		{"Single Sample", newGray(1, 1, 42), image.Rect(0, 0, 1, 1), 42, 0},
		{"Inner Window", newGray(3, 3,
			255, 255, 255,
			255, 2, 4,
			255, 4, 6), image.Rect(1, 1, 3, 3), 4, math.Sqrt(2)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mean, std, err := Dispersion(tc.m, tc.window)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if math.Abs(mean-tc.expectedMean) > 1e-9 {
				t.Errorf("Expected mean %f, got %f", tc.expectedMean, mean)
			}
			if math.Abs(std-tc.expectedStd) > 1e-9 {
				t.Errorf("Expected std %f, got %f", tc.expectedStd, std)
			}
		})
	}
}

func TestDispersion_InvalidWindow(t *testing.T) {
	m := newGray(4, 4)

	testCases := []struct {
		name   string
		window image.Rectangle
	}{
		{"Empty", image.Rectangle{}},
		{"Outside", image.Rect(2, 2, 6, 6)},
		{"Negative", image.Rect(-1, 0, 2, 2)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Dispersion(m, tc.window)
			if !errors.Is(err, ErrDegenerateWindow) {
				t.Errorf("Expected ErrDegenerateWindow, got %v", err)
			}
		})
	}
}
