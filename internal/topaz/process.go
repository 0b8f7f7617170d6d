package topaz

import (
	"context"
	"time"
)

// ProcessRequest carries everything needed for one end-to-end job. All
// fields are request-scoped; nothing here outlives the Process call.
type ProcessRequest struct {
	Mode  Mode
	Model string

	// Image is the encoded source payload; ContentType its wire type.
	Image       []byte
	ContentType string

	OutputFormat OutputFormat

	// SourceWidth/SourceHeight are the decoded input dimensions, used by
	// the multiplier sizing path.
	SourceWidth  int
	SourceHeight int

	// Width/Height request an explicit output size. A ScaleMultiplier
	// other than 1.0 takes precedence over them.
	Width           int
	Height          int
	ScaleMultiplier float64
	CropToFill      bool

	FaceEnhancement *bool
	DenoiseStrength *float64
	SharpenStrength *float64
	Strength        *float64
	FixCompression  *float64

	// Timeout is the overall wall-clock budget. Zero means DefaultJobTimeout.
	Timeout time.Duration
}

// ProcessResult is the validated artifact of a finished job.
type ProcessResult struct {
	ProcessID string
	Bytes     []byte
	Format    OutputFormat

	// DimensionsOverridden is set when explicit width/height were ignored
	// in favor of a scale multiplier.
	DimensionsOverridden bool
	OutputWidth          int
	OutputHeight         int
}

// Process runs one job through the whole remote workflow: endpoint
// resolution, submission, status polling, and validated download, strictly
// in that order. Input validation happens before any network call.
func (c *Client) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	if !c.HasCredentials() {
		return nil, &InvalidInputError{Reason: "api key is required"}
	}
	if len(req.Image) == 0 {
		return nil, &InvalidInputError{Reason: "image payload is empty"}
	}
	if req.OutputFormat == "" {
		req.OutputFormat = FormatJPEG
	}
	if _, ok := formatAccept[req.OutputFormat]; !ok {
		return nil, &InvalidInputError{Reason: "unsupported output format " + string(req.OutputFormat)}
	}

	endpoint, err := ResolveEndpoint(req.Mode, req.Model)
	if err != nil {
		return nil, err
	}

	width, height, overridden := OutputSize(&req)
	if overridden {
		c.logger.Warn().
			Str("mode", string(req.Mode)).
			Float64("scale", req.ScaleMultiplier).
			Msg("topaz: explicit width/height ignored in favor of scale multiplier")
	}
	params := buildParams(&req)

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	start := c.now()
	deadline := start.Add(timeout)

	sub, err := c.Submit(ctx, endpoint, req.Image, req.ContentType, params)
	if err != nil {
		return nil, err
	}

	// A server-reported ETA beyond our budget widens the deadline, but only
	// by a fixed safety margin: the estimate is advisory, not a promise.
	if !sub.ETA.IsZero() && sub.ETA.After(deadline) {
		deadline = sub.ETA.Add(etaSafetyMargin)
		c.logger.Debug().
			Str("process_id", sub.ProcessID).
			Time("deadline", deadline).
			Msg("topaz: deadline widened to server eta")
	}

	interval := DefaultPollInterval
	if IsGenerative(req.Mode, req.Model) {
		interval = GenerativePollInterval
	}
	if err := c.WaitForCompletion(ctx, sub.ProcessID, deadline, interval); err != nil {
		return nil, err
	}

	data, err := c.DownloadResult(ctx, sub.ProcessID, req.OutputFormat)
	if err != nil {
		return nil, err
	}

	return &ProcessResult{
		ProcessID:            sub.ProcessID,
		Bytes:                data,
		Format:               req.OutputFormat,
		DimensionsOverridden: overridden,
		OutputWidth:          width,
		OutputHeight:         height,
	}, nil
}
