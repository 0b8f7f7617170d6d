package topaz

import (
	"fmt"
	"math"
	"strconv"
)

// Mode selects one of the Topaz Image API processing families.
type Mode string

const (
	ModeEnhance  Mode = "enhance"
	ModeSharpen  Mode = "sharpen"
	ModeDenoise  Mode = "denoise"
	ModeRestore  Mode = "restore"
	ModeLighting Mode = "lighting"
)

// OutputFormat is the wire format requested for the processed image.
type OutputFormat string

const (
	FormatJPEG OutputFormat = "jpeg"
	FormatPNG  OutputFormat = "png"
	FormatTIFF OutputFormat = "tiff"
)

const (
	MinDimension           = 1
	MaxDimension           = 32000
	MinGenerativeDimension = 512
)

// modelAllowList enumerates every model accepted per mode. Models in
// generativeModels route to the mode's "-gen" endpoint variant; everything
// else goes to the base async endpoint.
var modelAllowList = map[Mode][]string{
	ModeEnhance: {
		"Standard V2",
		"Low Resolution V2",
		"CGI",
		"High Fidelity V2",
		"Text Refine",
		"Redefine",
		"Recovery",
		"Recovery V2",
	},
	ModeSharpen: {
		"Standard V2",
		"Strong V2",
		"Lens Blur V2",
		"Motion Blur V2",
		"Natural",
		"Refocus",
		"Super Focus",
		"Super Focus V2",
	},
	ModeDenoise: {
		"Normal V2",
		"Strong V2",
		"Extreme V2",
	},
	ModeRestore: {
		"Dust-Scratch",
	},
	ModeLighting: {
		"Adjust",
		"White Balance",
	},
}

var generativeModels = map[Mode]map[string]bool{
	ModeEnhance: {
		"Redefine":    true,
		"Recovery":    true,
		"Recovery V2": true,
	},
	ModeSharpen: {
		"Super Focus":    true,
		"Super Focus V2": true,
	},
}

var modeEndpoints = map[Mode]string{
	ModeEnhance:  "/enhance",
	ModeSharpen:  "/sharpen",
	ModeDenoise:  "/denoise",
	ModeRestore:  "/restore",
	ModeLighting: "/lighting",
}

func init() {
	// Every allow-listed combination must resolve to an endpoint. A gap here
	// is a programming error, caught at process start rather than mid-job.
	for mode, models := range modelAllowList {
		if _, ok := modeEndpoints[mode]; !ok {
			panic(fmt.Sprintf("topaz: mode %q has no endpoint mapping", mode))
		}
		for _, model := range models {
			if _, err := ResolveEndpoint(mode, model); err != nil {
				panic(fmt.Sprintf("topaz: unroutable combination %s/%s", mode, model))
			}
		}
	}
	for mode := range generativeModels {
		if _, ok := modeEndpoints[mode]; !ok {
			panic(fmt.Sprintf("topaz: generative mode %q has no endpoint mapping", mode))
		}
	}
}

// ResolveEndpoint maps an allow-listed (mode, model) pair to its async
// submission path. Generative models get the "-gen" endpoint variant.
func ResolveEndpoint(mode Mode, model string) (string, error) {
	base, ok := modeEndpoints[mode]
	if !ok {
		return "", &InvalidInputError{Reason: fmt.Sprintf("unknown mode %q", mode)}
	}
	if !modelAllowed(mode, model) {
		return "", &InvalidInputError{
			Reason: fmt.Sprintf("model %q is not available for mode %q", model, mode),
		}
	}
	if generativeModels[mode][model] {
		return base + "-gen/async", nil
	}
	return base + "/async", nil
}

func modelAllowed(mode Mode, model string) bool {
	for _, m := range modelAllowList[mode] {
		if m == model {
			return true
		}
	}
	return false
}

// IsGenerative reports whether the model belongs to the mode's generative
// sub-family. Generative jobs poll slower and carry a larger minimum size.
func IsGenerative(mode Mode, model string) bool {
	return generativeModels[mode][model]
}

// Catalog returns the full (mode, model) allow-list for discovery endpoints.
func Catalog() map[Mode][]string {
	out := make(map[Mode][]string, len(modelAllowList))
	for mode, models := range modelAllowList {
		out[mode] = append([]string(nil), models...)
	}
	return out
}

// OutputSize resolves the effective target size for a request. Only
// enhance supports resizing; other modes ignore width/height/multiplier
// entirely. A multiplier other than 1.0 takes precedence over explicit
// width/height, and that override is reported back so the caller is not
// silently ignored.
func OutputSize(req *ProcessRequest) (width, height int, overridden bool) {
	if req.Mode != ModeEnhance {
		return 0, 0, false
	}
	floor := MinDimension
	if IsGenerative(req.Mode, req.Model) {
		floor = MinGenerativeDimension
	}
	if req.ScaleMultiplier > 0 && req.ScaleMultiplier != 1.0 {
		w := clampDimension(int(math.Round(float64(req.SourceWidth)*req.ScaleMultiplier)), floor)
		h := clampDimension(int(math.Round(float64(req.SourceHeight)*req.ScaleMultiplier)), floor)
		overridden = req.Width > 0 || req.Height > 0
		return w, h, overridden
	}
	if req.Width > 0 && req.Height > 0 {
		return clampDimension(req.Width, floor), clampDimension(req.Height, floor), false
	}
	return 0, 0, false
}

func clampDimension(v, floor int) int {
	if v < floor {
		return floor
	}
	if v > MaxDimension {
		return MaxDimension
	}
	return v
}

// buildParams normalizes request options into the submission form fields.
// Booleans serialize as lowercase literals, numerics in their native form.
func buildParams(req *ProcessRequest) map[string]string {
	params := map[string]string{
		"model":         req.Model,
		"output_format": string(req.OutputFormat),
	}

	if w, h, _ := OutputSize(req); w > 0 && h > 0 {
		params["output_width"] = strconv.Itoa(w)
		params["output_height"] = strconv.Itoa(h)
		params["crop_to_fill"] = strconv.FormatBool(req.CropToFill)
	}

	if req.FaceEnhancement != nil {
		params["face_enhancement"] = strconv.FormatBool(*req.FaceEnhancement)
	}
	if req.DenoiseStrength != nil {
		params["denoise"] = formatFloat(*req.DenoiseStrength)
	}
	if req.SharpenStrength != nil {
		params["sharpen"] = formatFloat(*req.SharpenStrength)
	}
	if req.Strength != nil {
		params["strength"] = formatFloat(*req.Strength)
	}
	if req.FixCompression != nil {
		params["fix_compression"] = formatFloat(*req.FixCompression)
	}
	return params
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
