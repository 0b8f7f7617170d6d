// Package codec is the boundary shim between the orchestration core and
// the host: it decodes uploaded payloads, normalizes color channels, and
// encodes pixel buffers to the supported wire formats.
package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"photo-enhance-backend/internal/topaz"
)

var imagingFormats = map[topaz.OutputFormat]imaging.Format{
	topaz.FormatJPEG: imaging.JPEG,
	topaz.FormatPNG:  imaging.PNG,
	topaz.FormatTIFF: imaging.TIFF,
}

var mimeTypes = map[topaz.OutputFormat]string{
	topaz.FormatJPEG: "image/jpeg",
	topaz.FormatPNG:  "image/png",
	topaz.FormatTIFF: "image/tiff",
}

// Decode parses an encoded image and returns the pixel buffer with its
// dimensions.
func Decode(data []byte) (image.Image, int, int, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("codec: decode image: %w", err)
	}
	bounds := img.Bounds()
	return img, bounds.Dx(), bounds.Dy(), nil
}

// Flatten drops any alpha channel by compositing over white. Applied
// identically regardless of the requested output format, so callers see
// the same channel layout whether they asked for jpeg, png, or tiff.
func Flatten(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	background := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(background, img, image.Pt(0, 0), 1.0)
}

// Encode serializes a pixel buffer to the given wire format.
func Encode(img image.Image, format topaz.OutputFormat) ([]byte, error) {
	imagingFormat, ok := imagingFormats[format]
	if !ok {
		return nil, fmt.Errorf("codec: unsupported output format %q", format)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imagingFormat); err != nil {
		return nil, fmt.Errorf("codec: encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// MimeType returns the content type for a supported output format,
// defaulting to JPEG.
func MimeType(format topaz.OutputFormat) string {
	if mime, ok := mimeTypes[format]; ok {
		return mime
	}
	return mimeTypes[topaz.FormatJPEG]
}
