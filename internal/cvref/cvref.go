// Package cvref scores blurriness with OpenCV so the pure-Go pipeline can be
// cross-checked against cv::Laplacian. The OpenCV path is only compiled with
// the gocv build tag.
package cvref

import "errors"

// ErrUnavailable is returned when the binary was built without OpenCV
var ErrUnavailable = errors.New("opencv reference unavailable: build with -tags gocv")
