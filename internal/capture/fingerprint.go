package capture

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/corona10/goimagehash"
)

// DefaultRetakeDistance is the largest Hamming distance between two
// fingerprints still treated as the same shot
const DefaultRetakeDistance = 6

// ErrInvalidFingerprint indicates a string that is not a "p:<hex>" perceptual hash
var ErrInvalidFingerprint = errors.New("invalid fingerprint")

// Fingerprint returns the perceptual hash of img as "p:<16 hex digits>"
func Fingerprint(img image.Image) (string, error) {
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hash.ToString(), nil
}

// Distance returns the Hamming distance between two fingerprints
func Distance(a, b string) (int, error) {
	ha, err := parseFingerprint(a)
	if err != nil {
		return 0, err
	}
	hb, err := parseFingerprint(b)
	if err != nil {
		return 0, err
	}
	return ha.Distance(hb)
}

// IsRetake reports whether current looks like the same shot as previous
func IsRetake(previous, current string, maxDistance int) (bool, int, error) {
	distance, err := Distance(previous, current)
	if err != nil {
		return false, 0, err
	}
	return distance <= maxDistance, distance, nil
}

// ValidateFingerprint checks that s has the form Fingerprint produces
func ValidateFingerprint(s string) error {
	_, err := parseFingerprint(s)
	return err
}

// parseFingerprint accepts only the canonical form ToString produces, so
// trailing garbage after the hex digits is rejected
func parseFingerprint(s string) (*goimagehash.ImageHash, error) {
	s = strings.TrimSpace(s)
	hash, err := goimagehash.ImageHashFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFingerprint, s)
	}
	if hash.GetKind() != goimagehash.PHash || !strings.EqualFold(hash.ToString(), s) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFingerprint, s)
	}
	return hash, nil
}
