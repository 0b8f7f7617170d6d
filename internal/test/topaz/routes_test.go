package topaz_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"photo-enhance-backend/internal/topaz"
)

func TestResolveEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		mode     topaz.Mode
		model    string
		expected string
	}{
		{"enhance standard", topaz.ModeEnhance, "Standard V2", "/enhance/async"},
		{"enhance low resolution", topaz.ModeEnhance, "Low Resolution V2", "/enhance/async"},
		{"enhance generative redefine", topaz.ModeEnhance, "Redefine", "/enhance-gen/async"},
		{"enhance generative recovery", topaz.ModeEnhance, "Recovery", "/enhance-gen/async"},
		{"sharpen standard", topaz.ModeSharpen, "Standard V2", "/sharpen/async"},
		{"sharpen generative", topaz.ModeSharpen, "Super Focus", "/sharpen-gen/async"},
		{"denoise", topaz.ModeDenoise, "Normal V2", "/denoise/async"},
		{"restore dust-scratch", topaz.ModeRestore, "Dust-Scratch", "/restore/async"},
		{"lighting adjust", topaz.ModeLighting, "Adjust", "/lighting/async"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint, err := topaz.ResolveEndpoint(tt.mode, tt.model)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, endpoint)
		})
	}
}

func TestResolveEndpoint_InvalidCombination(t *testing.T) {
	tests := []struct {
		name  string
		mode  topaz.Mode
		model string
	}{
		{"unknown mode", topaz.Mode("upscale"), "Standard V2"},
		{"model from another mode", topaz.ModeDenoise, "Dust-Scratch"},
		{"unknown model", topaz.ModeEnhance, "Ultra V9"},
		{"empty model", topaz.ModeEnhance, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := topaz.ResolveEndpoint(tt.mode, tt.model)
			var invalid *topaz.InvalidInputError
			assert.True(t, errors.As(err, &invalid))
		})
	}
}

func TestOutputSize_Multiplier(t *testing.T) {
	req := &topaz.ProcessRequest{
		Mode:            topaz.ModeEnhance,
		Model:           "Standard V2",
		SourceWidth:     100,
		SourceHeight:    200,
		ScaleMultiplier: 2.0,
	}

	width, height, overridden := topaz.OutputSize(req)
	assert.Equal(t, 200, width)
	assert.Equal(t, 400, height)
	assert.False(t, overridden)
}

func TestOutputSize_MultiplierOverridesExplicit(t *testing.T) {
	req := &topaz.ProcessRequest{
		Mode:            topaz.ModeEnhance,
		Model:           "Standard V2",
		SourceWidth:     100,
		SourceHeight:    200,
		Width:           640,
		Height:          480,
		ScaleMultiplier: 3.0,
	}

	width, height, overridden := topaz.OutputSize(req)
	assert.Equal(t, 300, width)
	assert.Equal(t, 600, height)
	assert.True(t, overridden)
}

func TestOutputSize_UnitMultiplierKeepsExplicit(t *testing.T) {
	req := &topaz.ProcessRequest{
		Mode:            topaz.ModeEnhance,
		Model:           "Standard V2",
		SourceWidth:     100,
		SourceHeight:    200,
		Width:           640,
		Height:          480,
		ScaleMultiplier: 1.0,
	}

	width, height, overridden := topaz.OutputSize(req)
	assert.Equal(t, 640, width)
	assert.Equal(t, 480, height)
	assert.False(t, overridden)
}

func TestOutputSize_ClampsToBounds(t *testing.T) {
	req := &topaz.ProcessRequest{
		Mode:            topaz.ModeEnhance,
		Model:           "Standard V2",
		SourceWidth:     20000,
		SourceHeight:    1,
		ScaleMultiplier: 4.0,
	}

	width, height, _ := topaz.OutputSize(req)
	assert.Equal(t, topaz.MaxDimension, width)
	assert.Equal(t, 4, height)

	req.ScaleMultiplier = 0.001
	width, height, _ = topaz.OutputSize(req)
	assert.Equal(t, 20, width)
	assert.Equal(t, topaz.MinDimension, height)
}

func TestOutputSize_GenerativeFloor(t *testing.T) {
	req := &topaz.ProcessRequest{
		Mode:            topaz.ModeEnhance,
		Model:           "Redefine",
		SourceWidth:     100,
		SourceHeight:    100,
		ScaleMultiplier: 2.0,
	}

	width, height, _ := topaz.OutputSize(req)
	assert.Equal(t, topaz.MinGenerativeDimension, width)
	assert.Equal(t, topaz.MinGenerativeDimension, height)
}

func TestOutputSize_NonResizingModesIgnoreDimensions(t *testing.T) {
	for _, mode := range []topaz.Mode{topaz.ModeSharpen, topaz.ModeDenoise, topaz.ModeRestore, topaz.ModeLighting} {
		req := &topaz.ProcessRequest{
			Mode:            mode,
			SourceWidth:     100,
			SourceHeight:    200,
			Width:           640,
			Height:          480,
			ScaleMultiplier: 2.0,
		}

		width, height, overridden := topaz.OutputSize(req)
		assert.Zero(t, width, "mode %s", mode)
		assert.Zero(t, height, "mode %s", mode)
		assert.False(t, overridden, "mode %s", mode)
	}
}

func TestCatalog_CoversEveryMode(t *testing.T) {
	catalog := topaz.Catalog()

	for _, mode := range []topaz.Mode{topaz.ModeEnhance, topaz.ModeSharpen, topaz.ModeDenoise, topaz.ModeRestore, topaz.ModeLighting} {
		assert.NotEmpty(t, catalog[mode], "mode %s", mode)
	}
	assert.True(t, topaz.IsGenerative(topaz.ModeEnhance, "Redefine"))
	assert.False(t, topaz.IsGenerative(topaz.ModeEnhance, "Standard V2"))
	assert.False(t, topaz.IsGenerative(topaz.ModeRestore, "Dust-Scratch"))
}
