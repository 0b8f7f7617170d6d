package topaz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var formatAccept = map[OutputFormat]string{
	FormatJPEG: "image/jpeg",
	FormatPNG:  "image/png",
	FormatTIFF: "image/tiff",
}

// formatSignatures holds the leading magic bytes accepted per output format.
// TIFF has both byte orders.
var formatSignatures = map[OutputFormat][][]byte{
	FormatJPEG: {{0xFF, 0xD8, 0xFF}},
	FormatPNG:  {{0x89, 0x50, 0x4E, 0x47}},
	FormatTIFF: {{0x49, 0x49, 0x2A, 0x00}, {0x4D, 0x4D, 0x00, 0x2A}},
}

// MatchesSignature reports whether data begins with one of the magic-byte
// signatures for the given format.
func MatchesSignature(data []byte, format OutputFormat) bool {
	for _, sig := range formatSignatures[format] {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// DownloadResult fetches the finished artifact for a completed job.
//
// The endpoint has two response shapes: the image bytes directly, or a JSON
// record carrying a secondary download_url that must be followed. It also
// lags the status endpoint by a second or two, answers 404/409 while the
// artifact settles, and has been seen returning HTTP 200 with an HTML error
// page in the body. Every payload is therefore validated against the
// expected format's magic bytes before being accepted; anything else is
// retried up to the policy's attempt budget.
func (c *Client) DownloadResult(ctx context.Context, processID string, format OutputFormat) ([]byte, error) {
	accept, ok := formatAccept[format]
	if !ok {
		accept = formatAccept[FormatJPEG]
		format = FormatJPEG
	}
	url := c.baseURL + "/download/" + processID

	for attempt := 1; attempt <= c.download.MaxAttempts; attempt++ {
		data, err := c.downloadOnce(ctx, url, accept)
		if err == nil {
			if MatchesSignature(data, format) {
				c.logger.Debug().
					Str("process_id", processID).
					Int("bytes", len(data)).
					Int("attempt", attempt).
					Msg("topaz: valid image received")
				return data, nil
			}
			err = fmt.Errorf("topaz: payload does not match %s signature: %s", format, excerpt(data))
		}
		c.logger.Warn().
			Str("process_id", processID).
			Int("attempt", attempt).
			Err(err).
			Msg("topaz: download attempt failed")
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("topaz: downloading job %s: %w", processID, err)
		}
		if attempt < c.download.MaxAttempts {
			c.sleep(c.download.Delay)
		}
	}
	return nil, &DownloadValidationError{ProcessID: processID, Attempts: c.download.MaxAttempts}
}

func (c *Client) downloadOnce(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("topaz: build download request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("topaz: download request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("topaz: read download response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("topaz: download returned %d: %s", resp.StatusCode, excerpt(body))
	}

	// Indirection shape: a JSON record pointing at the real artifact.
	if indirect := downloadURLFrom(resp.Header.Get("Content-Type"), body); indirect != "" {
		return c.followDownloadURL(ctx, indirect)
	}
	return body, nil
}

func downloadURLFrom(contentType string, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if !strings.Contains(contentType, "json") && (len(trimmed) == 0 || trimmed[0] != '{') {
		return ""
	}
	var record struct {
		DownloadURL string `json:"download_url"`
		URL         string `json:"url"`
	}
	if err := json.Unmarshal(trimmed, &record); err != nil {
		return ""
	}
	if record.DownloadURL != "" {
		return record.DownloadURL
	}
	return record.URL
}

// followDownloadURL fetches the artifact from a presigned secondary URL.
// No API key: the URL carries its own authorization.
func (c *Client) followDownloadURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("topaz: build artifact request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("topaz: artifact request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("topaz: read artifact response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("topaz: artifact fetch returned %d: %s", resp.StatusCode, excerpt(body))
	}
	return body, nil
}
