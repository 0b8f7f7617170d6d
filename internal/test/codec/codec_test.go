package codec_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"photo-enhance-backend/internal/codec"
	"photo-enhance-backend/internal/topaz"
)

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestEncodeDecode_RoundTripDimensions(t *testing.T) {
	src := solidImage(40, 25, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	for _, format := range []topaz.OutputFormat{topaz.FormatJPEG, topaz.FormatPNG, topaz.FormatTIFF} {
		t.Run(string(format), func(t *testing.T) {
			data, err := codec.Encode(src, format)
			require.NoError(t, err)
			assert.True(t, topaz.MatchesSignature(data, format))

			_, w, h, err := codec.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, 40, w)
			assert.Equal(t, 25, h)
		})
	}
}

func TestEncode_UnsupportedFormat(t *testing.T) {
	src := solidImage(2, 2, color.White)

	_, err := codec.Encode(src, topaz.OutputFormat("webp"))
	assert.Error(t, err)
}

func TestDecode_GarbageInput(t *testing.T) {
	_, _, _, err := codec.Decode([]byte("definitely not an image"))
	assert.Error(t, err)
}

func TestFlatten_CompositesAlphaOverWhite(t *testing.T) {
	// Fully transparent pixels must come out white, opaque pixels unchanged.
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 255})
	src.Set(1, 0, color.NRGBA{A: 0})

	flat := codec.Flatten(src)

	opaque := flat.NRGBAAt(0, 0)
	assert.Equal(t, uint8(255), opaque.R)
	assert.Equal(t, uint8(0), opaque.G)
	assert.Equal(t, uint8(255), opaque.A)

	cleared := flat.NRGBAAt(1, 0)
	assert.Equal(t, uint8(255), cleared.R)
	assert.Equal(t, uint8(255), cleared.G)
	assert.Equal(t, uint8(255), cleared.B)
	assert.Equal(t, uint8(255), cleared.A)
}

func TestMimeType(t *testing.T) {
	assert.Equal(t, "image/png", codec.MimeType(topaz.FormatPNG))
	assert.Equal(t, "image/tiff", codec.MimeType(topaz.FormatTIFF))
	assert.Equal(t, "image/jpeg", codec.MimeType(topaz.FormatJPEG))
	assert.Equal(t, "image/jpeg", codec.MimeType(topaz.OutputFormat("bmp")))
}
