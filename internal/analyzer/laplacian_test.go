package analyzer

import (
	"image"
	"image/color"
	"testing"
)

func newGray(width, height int, pix ...uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	copy(img.Pix, pix)
	return img
}

func TestLaplacian_UniformIsZero(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 9, 6))
	for i := range gray.Pix {
		gray.Pix[i] = 173
	}

	for _, border := range []BorderMode{BorderReplicate, BorderReflect101} {
		t.Run(string(border), func(t *testing.T) {
			response, err := Laplacian(gray, border)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			for i, v := range response.Pix {
				if v != 0 {
					t.Fatalf("Expected zero response at %d, got %d", i, v)
				}
			}
		})
	}
}

func TestLaplacian_SinglePoint(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 5, 5))
	gray.SetGray(2, 2, color.Gray{Y: 100})

	response, err := Laplacian(gray, BorderReplicate)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	testCases := []struct {
		x, y     int
		expected int16
	}{
		{2, 2, -400},
		{1, 2, 100},
		{3, 2, 100},
		{2, 1, 100},
		{2, 3, 100},
		{1, 1, 0},
		{3, 3, 0},
		{0, 0, 0},
	}
	for _, tc := range testCases {
		if got := response.At(tc.x, tc.y); got != tc.expected {
			t.Errorf("At(%d,%d): expected %d, got %d", tc.x, tc.y, tc.expected, got)
		}
	}

	abs := response.Abs()
	if abs.GrayAt(2, 2).Y != 255 {
		t.Errorf("Expected saturated magnitude at centre, got %d", abs.GrayAt(2, 2).Y)
	}
	if abs.GrayAt(1, 2).Y != 100 {
		t.Errorf("Expected magnitude 100 next to centre, got %d", abs.GrayAt(1, 2).Y)
	}
}

func TestLaplacian_BorderModes(t *testing.T) {
	gray := newGray(3, 1, 0, 10, 20)

	testCases := []struct {
		border   BorderMode
		expected []int16
	}{
		{BorderReplicate, []int16{10, 0, -10}},
		{BorderReflect101, []int16{20, 0, -20}},
	}

	for _, tc := range testCases {
		t.Run(string(tc.border), func(t *testing.T) {
			response, err := Laplacian(gray, tc.border)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			for i, want := range tc.expected {
				if response.Pix[i] != want {
					t.Errorf("Pix[%d]: expected %d, got %d", i, want, response.Pix[i])
				}
			}
		})
	}
}

func TestLaplacian_UnknownBorder(t *testing.T) {
	if _, err := Laplacian(newGray(2, 2), "wrap"); err == nil {
		t.Error("Expected error for unknown border mode")
	}
}

func TestLaplacian_SubImage(t *testing.T) {
	src := createGrayGradient(20, 20)
	sub := src.SubImage(image.Rect(4, 5, 15, 17)).(*image.Gray)
	copied, err := ToGray(sub)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	fromSub, err := Laplacian(sub, BorderReplicate)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	fromCopy, err := Laplacian(copied, BorderReplicate)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if fromSub.Width != 11 || fromSub.Height != 12 {
		t.Fatalf("Expected 11x12 map, got %dx%d", fromSub.Width, fromSub.Height)
	}
	for i := range fromCopy.Pix {
		if fromSub.Pix[i] != fromCopy.Pix[i] {
			t.Fatalf("Pix[%d]: sub-image %d differs from copy %d", i, fromSub.Pix[i], fromCopy.Pix[i])
		}
	}
}

func TestResponseMap_AbsSaturates(t *testing.T) {
	m := &ResponseMap{Width: 2, Height: 2, Pix: []int16{-300, 300, -5, 0}}
	abs := m.Abs()

	expected := []uint8{255, 255, 5, 0}
	for i, want := range expected {
		if abs.Pix[i] != want {
			t.Errorf("Pix[%d]: expected %d, got %d", i, want, abs.Pix[i])
		}
	}
}

func TestLaplacian_StripsMatchSequential(t *testing.T) {
	gray := createGrayGradient(131, 97)
	sequential, err := Laplacian(gray, BorderReflect101)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	pool := NewWorkerPool(4)
	pool.Start()
	defer pool.Close()

	for _, strips := range []int{1, 2, 3, 8, 97, 500} {
		parallel, err := laplacian(gray, BorderReflect101, pool, strips)
		if err != nil {
			t.Fatalf("strips=%d: unexpected error: %v", strips, err)
		}
		for i := range sequential.Pix {
			if parallel.Pix[i] != sequential.Pix[i] {
				t.Fatalf("strips=%d: Pix[%d] expected %d, got %d", strips, i, sequential.Pix[i], parallel.Pix[i])
			}
		}
	}
}

func TestBorderIndex(t *testing.T) {
	testCases := []struct {
		name     string
		fn       func(i, n int) int
		i, n     int
		expected int
	}{
		{"Replicate Below", replicateIndex, -1, 5, 0},
		{"Replicate Above", replicateIndex, 5, 5, 4},
		{"Replicate Inside", replicateIndex, 3, 5, 3},
		{"Reflect Below", reflect101Index, -1, 5, 1},
		{"Reflect Above", reflect101Index, 5, 5, 3},
		{"Reflect Single", reflect101Index, -1, 1, 0},
		{"Reflect Inside", reflect101Index, 2, 5, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.fn(tc.i, tc.n); got != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, got)
			}
		})
	}
}
