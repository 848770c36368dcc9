package service

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks caller mistakes that the caller can correct.
var ErrInvalidInput = errors.New("invalid input")

var (
	// ErrImageRequired indicates the request carried no image data.
	ErrImageRequired = fmt.Errorf("%w: no image data provided", ErrInvalidInput)
	// ErrImageFormat indicates the declared or detected media type is not an image.
	ErrImageFormat = fmt.Errorf("%w: invalid image format", ErrInvalidInput)
	// ErrImageEncoding indicates the image is not valid base64.
	ErrImageEncoding = fmt.Errorf("%w: image is not valid base64", ErrInvalidInput)
	// ErrImageTooLarge indicates the decoded image exceeds the configured limit.
	ErrImageTooLarge = fmt.Errorf("%w: image exceeds maximum allowed size", ErrInvalidInput)
	// ErrAnswersRequired indicates one of the answers to compare is missing.
	ErrAnswersRequired = fmt.Errorf("%w: both model and student answers are required", ErrInvalidInput)
)

// ErrNoTextFound indicates OCR ran but produced no usable text.
var ErrNoTextFound = errors.New("no text could be extracted from the image")
