package analyzer

import "fmt"

const (
	// DefaultPatchSize is the half side of the scored window
	DefaultPatchSize = 200
	// DefaultMinBlurriness is the score below which an image is blurry
	DefaultMinBlurriness = 10.0
)

// BorderMode selects how the Laplacian reads pixels outside the grid
type BorderMode string

const (
	// BorderReplicate repeats the edge pixel (aaa|abcd|ddd)
	BorderReplicate BorderMode = "replicate"
	// BorderReflect101 mirrors without repeating the edge (cb|abcd|cb), OpenCV's default
	BorderReflect101 BorderMode = "reflect101"
)

// ParseBorderMode converts a configuration string into a BorderMode
func ParseBorderMode(s string) (BorderMode, error) {
	switch BorderMode(s) {
	case BorderReplicate, "":
		return BorderReplicate, nil
	case BorderReflect101:
		return BorderReflect101, nil
	default:
		return "", fmt.Errorf("unknown border mode %q", s)
	}
}

// AnalysisOptions configures a scoring call
type AnalysisOptions struct {
	PatchSize     int
	MinBlurriness float64
	Border        BorderMode

	// FullFrame skips window selection and scores the whole response map
	FullFrame bool
}

// DefaultOptions returns default analysis options
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		PatchSize:     DefaultPatchSize,
		MinBlurriness: DefaultMinBlurriness,
		Border:        BorderReplicate,
	}
}

// StrictOptions doubles the default threshold for document captures and archival
func StrictOptions() AnalysisOptions {
	opts := DefaultOptions()
	opts.MinBlurriness = 2 * DefaultMinBlurriness
	return opts
}

// OpenCVOptions matches the border handling of cv::Laplacian
func OpenCVOptions() AnalysisOptions {
	opts := DefaultOptions()
	opts.Border = BorderReflect101
	return opts
}

// WithPatchSize returns options with the given patch size
func (opts AnalysisOptions) WithPatchSize(patchSize int) AnalysisOptions {
	opts.PatchSize = patchSize
	return opts
}

// WithThreshold returns options with the given blurriness threshold
func (opts AnalysisOptions) WithThreshold(threshold float64) AnalysisOptions {
	opts.MinBlurriness = threshold
	return opts
}

// Validate checks the options before a scoring call
func (opts AnalysisOptions) Validate() error {
	if opts.PatchSize <= 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidPatchSize, opts.PatchSize)
	}
	if _, err := ParseBorderMode(string(opts.Border)); err != nil {
		return err
	}
	return nil
}
