package analyzer

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestToGray_InvalidImage(t *testing.T) {
	testCases := []struct {
		name string
		img  image.Image
	}{
		{"Nil Image", nil},
		{"Zero Width", image.NewRGBA(image.Rect(0, 0, 0, 5))},
		{"Zero Height", image.NewRGBA(image.Rect(0, 0, 5, 0))},
		{"Empty Gray", image.NewGray(image.Rectangle{})},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ToGray(tc.img)
			if !errors.Is(err, ErrInvalidImage) {
				t.Errorf("Expected ErrInvalidImage, got %v", err)
			}
		})
	}
}

func TestToGray_ColorUsesLumaWeights(t *testing.T) {
	testCases := []struct {
		name  string
		color color.RGBA
	}{
		{"Red", color.RGBA{255, 0, 0, 255}},
		{"Green", color.RGBA{0, 255, 0, 255}},
		{"Blue", color.RGBA{0, 0, 255, 255}},
		{"Gray", color.RGBA{128, 128, 128, 255}},
		{"Mixed", color.RGBA{12, 200, 77, 255}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			img := createTestImage(3, 2, tc.color)
			gray, err := ToGray(img)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			expected := color.GrayModel.Convert(tc.color).(color.Gray).Y
			for i, v := range gray.Pix {
				if v != expected {
					t.Fatalf("Pixel %d: expected %d, got %d", i, expected, v)
				}
			}
		})
	}

	// Green dominates luma, blue contributes least
	red, _ := ToGray(createTestImage(1, 1, color.RGBA{255, 0, 0, 255}))
	green, _ := ToGray(createTestImage(1, 1, color.RGBA{0, 255, 0, 255}))
	blue, _ := ToGray(createTestImage(1, 1, color.RGBA{0, 0, 255, 255}))
	if !(green.Pix[0] > red.Pix[0] && red.Pix[0] > blue.Pix[0]) {
		t.Errorf("Expected green > red > blue, got %d, %d, %d", green.Pix[0], red.Pix[0], blue.Pix[0])
	}
}

func TestToGray_GrayIsIdentity(t *testing.T) {
	src := createGrayGradient(7, 5)

	gray, err := ToGray(src)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if gray == src {
		t.Error("Expected a copy, not the input image")
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			if gray.GrayAt(x, y) != src.GrayAt(x, y) {
				t.Fatalf("Pixel (%d,%d) differs: %d vs %d", x, y, gray.GrayAt(x, y).Y, src.GrayAt(x, y).Y)
			}
		}
	}
}

func TestToGray_SubImageIsAnchoredAtOrigin(t *testing.T) {
	src := createGrayGradient(10, 10)
	sub := src.SubImage(image.Rect(3, 4, 8, 9)).(*image.Gray)

	gray, err := ToGray(sub)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if gray.Bounds() != image.Rect(0, 0, 5, 5) {
		t.Fatalf("Expected bounds (0,0)-(5,5), got %v", gray.Bounds())
	}
	if gray.GrayAt(0, 0) != src.GrayAt(3, 4) || gray.GrayAt(4, 4) != src.GrayAt(7, 8) {
		t.Error("Sub-image pixels were not copied from the right offset")
	}

	rgba := createGradientImage(10, 10)
	subRGBA := rgba.SubImage(image.Rect(2, 2, 6, 6))
	grayRGBA, err := ToGray(subRGBA)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := color.GrayModel.Convert(rgba.At(2, 2)).(color.Gray)
	if grayRGBA.GrayAt(0, 0) != expected {
		t.Errorf("Expected %d at origin, got %d", expected.Y, grayRGBA.GrayAt(0, 0).Y)
	}
}
