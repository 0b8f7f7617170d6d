package topaz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const submissionBodyExcerptLimit = 512

// Options configures the Topaz Image API client. Field-name strategies and
// the 404-during-status policy are configuration because both changed
// between API versions.
type Options struct {
	APIKey  string
	BaseURL string

	// JobIDFields are JSON field names tried in order when extracting the
	// job identifier from a submission response. JobIDHeader is the final
	// fallback. Defaults cover both historical naming conventions.
	JobIDFields []string
	JobIDHeader string

	// NotFoundMeansPending controls whether a 404 during a status check is
	// read as "job not provisioned yet" (default) or as a transient fault.
	// Set the pointer explicitly to opt out of the default.
	NotFoundMeansPending *bool

	Backoff  BackoffPolicy
	Download DownloadPolicy

	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Logger         *zerolog.Logger

	// Now and Sleep exist so polling behavior is testable without real
	// wall-clock delays.
	Now   func() time.Time
	Sleep func(time.Duration)
}

// Client talks to the Topaz Image API. It holds no per-job state; a single
// client may drive any number of concurrent jobs.
type Client struct {
	apiKey      string
	baseURL     string
	jobIDFields []string
	jobIDHeader string
	notFound404 bool
	backoff     BackoffPolicy
	download    DownloadPolicy
	httpClient  *http.Client
	logger      zerolog.Logger
	now         func() time.Time
	sleep       func(time.Duration)
}

// Submission is the immutable outcome of a successful job submission.
type Submission struct {
	ProcessID string
	// ETA is the server-estimated completion time, zero when not reported.
	ETA time.Time
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.topazlabs.com/image/v1"
	}
	jobIDFields := opts.JobIDFields
	if len(jobIDFields) == 0 {
		jobIDFields = []string{"process_id", "task_id"}
	}
	jobIDHeader := opts.JobIDHeader
	if jobIDHeader == "" {
		jobIDHeader = "X-Process-ID"
	}
	notFound404 := true
	if opts.NotFoundMeansPending != nil {
		notFound404 = *opts.NotFoundMeansPending
	}
	backoff := opts.Backoff
	if backoff.MaxConsecutiveFaults == 0 {
		backoff = DefaultBackoff
	}
	download := opts.Download
	if download.MaxAttempts == 0 {
		download = DefaultDownload
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Client{
		apiKey:      strings.TrimSpace(opts.APIKey),
		baseURL:     baseURL,
		jobIDFields: jobIDFields,
		jobIDHeader: jobIDHeader,
		notFound404: notFound404,
		backoff:     backoff,
		download:    download,
		httpClient:  httpClient,
		logger:      logger,
		now:         now,
		sleep:       sleep,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Submit uploads the source image and normalized parameters to the given
// async endpoint and extracts the job identifier from the response. A
// failed submission is never retried here: some plans charge per accepted
// submission, so a silent repeat could double-bill.
func (c *Client) Submit(ctx context.Context, endpoint string, image []byte, contentType string, params map[string]string) (*Submission, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	partHeader := make(map[string][]string)
	partHeader["Content-Disposition"] = []string{`form-data; name="image"; filename="input.jpg"`}
	if contentType == "" {
		contentType = "image/jpeg"
	}
	partHeader["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(partHeader)
	if err != nil {
		return nil, fmt.Errorf("topaz: create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("topaz: write form file: %w", err)
	}
	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("topaz: write form field %s: %w", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("topaz: close form: %w", err)
	}

	url := c.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("topaz: build submit request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("topaz: submit request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("topaz: read submit response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &SubmissionError{StatusCode: resp.StatusCode, Body: excerpt(body)}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		fields = nil
	}

	processID := c.extractJobID(fields, resp.Header)
	if processID == "" {
		return nil, &MissingJobIDError{RawResponse: excerpt(body)}
	}

	sub := &Submission{ProcessID: processID, ETA: parseETA(fields, c.now())}
	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("process_id", sub.ProcessID).
		Msg("topaz: job submitted")
	return sub, nil
}

// extractJobID tries the configured JSON fields in order, then the
// fallback header. The first non-empty value wins.
func (c *Client) extractJobID(fields map[string]json.RawMessage, header http.Header) string {
	for _, name := range c.jobIDFields {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
		// A few API builds returned numeric ids.
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil && n.String() != "" {
			return n.String()
		}
	}
	return strings.TrimSpace(header.Get(c.jobIDHeader))
}

// parseETA accepts both historical encodings: an RFC3339 timestamp or a
// numeric duration in seconds relative to now.
func parseETA(fields map[string]json.RawMessage, now time.Time) time.Time {
	raw, ok := fields["eta"]
	if !ok {
		return time.Time{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
		if secs, err := strconv.ParseFloat(s, 64); err == nil && secs > 0 {
			return now.Add(time.Duration(secs * float64(time.Second)))
		}
		return time.Time{}
	}
	var secs float64
	if err := json.Unmarshal(raw, &secs); err == nil && secs > 0 {
		return now.Add(time.Duration(secs * float64(time.Second)))
	}
	return time.Time{}
}

func excerpt(body []byte) string {
	s := string(body)
	if len(s) > submissionBodyExcerptLimit {
		return s[:submissionBodyExcerptLimit]
	}
	return s
}
