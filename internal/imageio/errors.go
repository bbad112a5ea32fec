package imageio

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"image-enhancer/internal/core"
)

var (
	// ErrAcquisitionFailed matches every failure to obtain a source image.
	ErrAcquisitionFailed = errors.New("image acquisition failed")
	// ErrInvalidURL is returned before any request is made.
	ErrInvalidURL = errors.New("invalid image URL")
	// ErrEmptyURL is ErrInvalidURL for blank input.
	ErrEmptyURL = fmt.Errorf("%w: empty", ErrInvalidURL)
	// ErrUnsupportedFormat rejects files by extension.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// AcquisitionError wraps a fetch, read or decode failure. Status is the HTTP
// status of the failing response, or 0 when no response was received.
type AcquisitionError struct {
	Source string
	Status int
	Err    error
}

func (e *AcquisitionError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("load %s: status %d: %v", e.Source, e.Status, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

func (e *AcquisitionError) Is(target error) bool {
	return target == ErrAcquisitionFailed
}

// Describe turns a load error into the message shown to the user.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyURL):
		return "Please enter an image URL"
	case errors.Is(err, ErrInvalidURL):
		return "Please enter a valid image URL (must be .jpg, .jpeg, .png, .gif, .bmp, .webp, or .svg)"
	case errors.Is(err, ErrUnsupportedFormat):
		return "Please select a valid image file (JPEG, PNG, GIF, etc.)"
	}

	var ae *AcquisitionError
	if errors.As(err, &ae) && ae.Status == 0 && isFileSource(ae.Source) && errors.Is(err, core.ErrInvalidSource) {
		return "Error loading the selected image. Please try another file."
	}

	var statuses []int
	var causes []string
	collectCauses(err, &statuses, &causes)

	msg := "Failed to load image. "
	switch {
	case slices.Contains(statuses, http.StatusForbidden):
		msg += "Access to this image is forbidden by the server. "
	case slices.ContainsFunc(causes, isCrossOrigin):
		msg += "The server is blocking cross-origin requests. "
	}
	return msg + "Please try a different image or website."
}

// collectCauses walks the error tree and records response statuses and the
// messages of the underlying causes. URLs are left out, since the proxy
// prefix or a file name can contain any keyword.
func collectCauses(err error, statuses *[]int, causes *[]string) {
	switch e := err.(type) {
	case nil:
	case *AcquisitionError:
		if e.Status != 0 {
			*statuses = append(*statuses, e.Status)
		}
		collectCauses(e.Err, statuses, causes)
	case *url.Error:
		collectCauses(e.Err, statuses, causes)
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			collectCauses(inner, statuses, causes)
		}
	default:
		*causes = append(*causes, strings.ToLower(err.Error()))
	}
}

func isCrossOrigin(cause string) bool {
	return strings.Contains(cause, "cors policy") || strings.Contains(cause, "cross-origin")
}

func isFileSource(source string) bool {
	return !strings.Contains(source, "://")
}
