package models

// EnhanceOptions documents the multipart form fields accepted by the
// enhance endpoint alongside the "image" file part.
type EnhanceOptions struct {
	// Mode selects the processing family: enhance, sharpen, denoise,
	// restore, or lighting.
	Mode string `form:"mode" example:"enhance"`
	// Model must belong to the mode's allow-list (see GET /models).
	Model string `form:"model" example:"Standard V2"`
	// OutputFormat is jpeg, png, or tiff. Defaults to jpeg.
	OutputFormat string `form:"output_format" example:"jpeg"`

	// Width/Height request an explicit output size (enhance mode only).
	Width  int `form:"width"`
	Height int `form:"height"`
	// Scale multiplies the source dimensions and takes precedence over
	// explicit width/height when it is not 1.0.
	Scale      float64 `form:"scale" example:"2.0"`
	CropToFill bool    `form:"crop_to_fill"`

	// Tuning options, each independently optional.
	FaceEnhancement *bool    `form:"face_enhancement"`
	DenoiseStrength *float64 `form:"denoise_strength"`
	SharpenStrength *float64 `form:"sharpen_strength"`
	Strength        *float64 `form:"strength"`
	FixCompression  *float64 `form:"fix_compression"`

	// TimeoutSeconds overrides the server default job budget.
	TimeoutSeconds int `form:"timeout_seconds"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	// ProcessID is included when a remote job exists, to support manual
	// recovery against the status endpoint.
	ProcessID string `json:"process_id,omitempty"`
}
