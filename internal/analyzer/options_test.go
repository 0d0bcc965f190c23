package analyzer

import (
	"errors"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.PatchSize != 200 {
		t.Errorf("Expected PatchSize to be 200, got %d", opts.PatchSize)
	}
	if opts.MinBlurriness != 10.0 {
		t.Errorf("Expected MinBlurriness to be 10.0, got %f", opts.MinBlurriness)
	}
	if opts.Border != BorderReplicate {
		t.Errorf("Expected replicate border, got %q", opts.Border)
	}
	if opts.FullFrame {
		t.Error("Expected FullFrame to be false by default")
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("Expected default options to validate, got %v", err)
	}
}

func TestStrictOptions(t *testing.T) {
	opts := StrictOptions()
	if opts.MinBlurriness != 20.0 {
		t.Errorf("Expected MinBlurriness to be 20.0, got %f", opts.MinBlurriness)
	}
	if opts.PatchSize != DefaultPatchSize {
		t.Errorf("Expected default patch size, got %d", opts.PatchSize)
	}
}

func TestOpenCVOptions(t *testing.T) {
	opts := OpenCVOptions()
	if opts.Border != BorderReflect101 {
		t.Errorf("Expected reflect101 border, got %q", opts.Border)
	}
}

func TestChainedOptions(t *testing.T) {
	base := DefaultOptions()
	opts := base.WithPatchSize(50).WithThreshold(3.5)

	if opts.PatchSize != 50 || opts.MinBlurriness != 3.5 {
		t.Errorf("Expected (50, 3.5), got (%d, %f)", opts.PatchSize, opts.MinBlurriness)
	}
	if base.PatchSize != DefaultPatchSize {
		t.Error("Expected With* to leave the receiver untouched")
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultOptions().WithPatchSize(-1).Validate(); !errors.Is(err, ErrInvalidPatchSize) {
		t.Errorf("Expected ErrInvalidPatchSize, got %v", err)
	}

	opts := DefaultOptions()
	opts.Border = "constant"
	if err := opts.Validate(); err == nil {
		t.Error("Expected error for unknown border")
	}
}

func TestParseBorderMode(t *testing.T) {
	testCases := []struct {
		input    string
		expected BorderMode
		wantErr  bool
	}{
		{"", BorderReplicate, false},
		{"replicate", BorderReplicate, false},
		{"reflect101", BorderReflect101, false},
		{"REFLECT", "", true},
	}

	for _, tc := range testCases {
		mode, err := ParseBorderMode(tc.input)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseBorderMode(%q): unexpected error state %v", tc.input, err)
		}
		if mode != tc.expected {
			t.Errorf("ParseBorderMode(%q): expected %q, got %q", tc.input, tc.expected, mode)
		}
	}
}
