// Package imaging prepares photographed answer sheets for upload.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"math"

	// Decoders for the formats phones and scanners commonly produce.
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultMaxWidth bounds the width of normalized images.
	DefaultMaxWidth = 1200
	// DefaultMaxHeight bounds the height of normalized images.
	DefaultMaxHeight = 1200
	// DefaultQuality is the JPEG quality used for re-encoding (0.7).
	DefaultQuality = 70
	// OutputMediaType is the media type of every normalized image.
	OutputMediaType = "image/jpeg"
)

// ErrDecode indicates the source could not be decoded as a raster image.
var ErrDecode = errors.New("image could not be decoded")

// DecodeError wraps the decoder failure for a source image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v", ErrDecode.Error(), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrDecode.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// Normalized is a re-encoded, size-bounded image.
type Normalized struct {
	Data         []byte
	MediaType    string
	Width        int
	Height       int
	SourceFormat string
	SourceWidth  int
	SourceHeight int
}

// Normalizer downsamples and recompresses images.
type Normalizer struct {
	maxWidth  int
	maxHeight int
	quality   int
}

// Option customises a Normalizer.
type Option func(*Normalizer)

// WithMaxDimensions overrides the bounding box.
func WithMaxDimensions(width, height int) Option {
	return func(n *Normalizer) {
		if width > 0 {
			n.maxWidth = width
		}
		if height > 0 {
			n.maxHeight = height
		}
	}
}

// WithQuality overrides the JPEG quality (1-100).
func WithQuality(quality int) Option {
	return func(n *Normalizer) {
		if quality >= 1 && quality <= 100 {
			n.quality = quality
		}
	}
}

// NewNormalizer builds a normalizer with the 1200x1200 / q70 defaults.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		maxWidth:  DefaultMaxWidth,
		maxHeight: DefaultMaxHeight,
		quality:   DefaultQuality,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize decodes the source, bounds it to the configured box and re-encodes it as JPEG.
func (n *Normalizer) Normalize(r io.Reader) (Normalized, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return Normalized{}, &DecodeError{Err: err}
	}

	bounds := src.Bounds()
	width, height := TargetSize(bounds.Dx(), bounds.Dy(), n.maxWidth, n.maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	// JPEG has no alpha channel; flatten onto white so transparent scans stay legible.
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: n.quality}); err != nil {
		return Normalized{}, fmt.Errorf("encode jpeg: %w", err)
	}

	return Normalized{
		Data:         buf.Bytes(),
		MediaType:    OutputMediaType,
		Width:        width,
		Height:       height,
		SourceFormat: format,
		SourceWidth:  bounds.Dx(),
		SourceHeight: bounds.Dy(),
	}, nil
}

// TargetSize computes the largest size that fits within both bounds, preserving
// aspect ratio. Images never grow.
func TargetSize(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= 0 || height <= 0 {
		return 1, 1
	}

	scaleW := float64(maxWidth) / float64(width)
	scaleH := float64(maxHeight) / float64(height)
	switch {
	case scaleW >= 1 && scaleH >= 1:
	case scaleW <= scaleH:
		height = int(math.Round(float64(height) * float64(maxWidth) / float64(width)))
		width = maxWidth
	default:
		width = int(math.Round(float64(width) * float64(maxHeight) / float64(height)))
		height = maxHeight
	}

	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}
