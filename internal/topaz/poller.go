package topaz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Status is the transient outcome of one status check. It is re-fetched on
// every poll and never cached across polls.
type Status struct {
	State    string  `json:"status"`
	Progress float64 `json:"progress"`
	Error    string  `json:"error"`
}

// Pending reports whether the state is any of the in-flight vocabulary the
// API has used across versions.
func (s *Status) Pending() bool {
	switch strings.ToLower(strings.TrimSpace(s.State)) {
	case "pending", "processing", "in progress", "queued":
		return true
	}
	return false
}

// Completed reports terminal success, case-insensitively.
func (s *Status) Completed() bool {
	return strings.EqualFold(strings.TrimSpace(s.State), "completed")
}

// Failed reports terminal failure, case-insensitively.
func (s *Status) Failed() bool {
	return strings.EqualFold(strings.TrimSpace(s.State), "failed")
}

// errNotProvisioned marks a 404 status response under the
// 404-means-not-ready policy.
type errNotProvisioned struct{}

func (errNotProvisioned) Error() string { return "topaz: job not provisioned yet" }

// CheckStatus queries the job status once.
func (c *Client) CheckStatus(ctx context.Context, processID string) (*Status, error) {
	url := c.baseURL + "/status/" + processID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("topaz: build status request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("topaz: status request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("topaz: read status response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound && c.notFound404 {
		return nil, errNotProvisioned{}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("topaz: status check returned %d: %s", resp.StatusCode, excerpt(body))
	}

	var status Status
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("topaz: decode status response: %w, body: %s", err, excerpt(body))
	}
	return &status, nil
}

// WaitForCompletion polls the job until it reaches a terminal state or the
// wall-clock deadline elapses. Transient faults (transport errors, non-2xx
// statuses, unrecognized state values) are tolerated up to the policy's
// consecutive-fault bound with backoff between attempts; the counter resets
// on every successful recognized status regardless of the reported state.
// A 404 stays pending under the default policy and waits the normal poll
// interval without touching the fault counter.
func (c *Client) WaitForCompletion(ctx context.Context, processID string, deadline time.Time, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	start := c.now()
	faults := 0

	for {
		if now := c.now(); !now.Before(deadline) {
			return &TimeoutError{ProcessID: processID, Elapsed: now.Sub(start)}
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("topaz: polling job %s: %w", processID, err)
		}

		status, err := c.CheckStatus(ctx, processID)
		switch {
		case err == nil && status.Completed():
			c.logger.Debug().Str("process_id", processID).Msg("topaz: job completed")
			return nil

		case err == nil && status.Failed():
			return &RemoteJobError{ProcessID: processID, Message: status.Error}

		case err == nil && status.Pending():
			faults = 0
			c.logger.Debug().
				Str("process_id", processID).
				Float64("progress", status.Progress).
				Msg("topaz: job still pending")
			c.sleep(interval)

		case isNotProvisioned(err):
			// Not an error: the job simply has not been picked up yet.
			c.sleep(interval)

		default:
			// Transport failure, unexpected HTTP status, or an unrecognized
			// state value. All count toward the same consecutive-fault bound.
			if err == nil {
				err = fmt.Errorf("topaz: unrecognized job state %q", status.State)
			}
			faults++
			c.logger.Warn().
				Str("process_id", processID).
				Int("consecutive_faults", faults).
				Err(err).
				Msg("topaz: transient status fault")
			if faults >= c.backoff.MaxConsecutiveFaults {
				return &StatusCheckError{ProcessID: processID, Faults: faults, Err: err}
			}
			c.sleep(c.backoff.Delay(faults))
		}
	}
}

func isNotProvisioned(err error) bool {
	_, ok := err.(errNotProvisioned)
	return ok
}
