package topaz

import (
	"fmt"
	"time"
)

// InvalidInputError reports a request rejected before any network call:
// a missing credential or a (mode, model) pair outside the allow-lists.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "topaz: invalid input: " + e.Reason
}

// SubmissionError reports a non-success HTTP status from the submit call.
// Submissions are never retried automatically: an accepted submission may
// already have consumed credits.
type SubmissionError struct {
	StatusCode int
	Body       string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("topaz: submission failed: status %d, body: %s", e.StatusCode, e.Body)
}

// MissingJobIDError reports a 2xx submission response that yielded no job
// identifier through any of the configured extraction strategies.
type MissingJobIDError struct {
	RawResponse string
}

func (e *MissingJobIDError) Error() string {
	return "topaz: no job id in submission response: " + e.RawResponse
}

// RemoteJobError reports a job the API itself marked failed.
type RemoteJobError struct {
	ProcessID string
	Message   string
}

func (e *RemoteJobError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("topaz: job %s failed remotely", e.ProcessID)
	}
	return fmt.Sprintf("topaz: job %s failed remotely: %s", e.ProcessID, e.Message)
}

// StatusCheckError reports too many consecutive transient faults while
// polling job status.
type StatusCheckError struct {
	ProcessID string
	Faults    int
	Err       error
}

func (e *StatusCheckError) Error() string {
	return fmt.Sprintf("topaz: status check for job %s failed after %d consecutive faults: %v",
		e.ProcessID, e.Faults, e.Err)
}

func (e *StatusCheckError) Unwrap() error { return e.Err }

// TimeoutError reports a wall-clock deadline exceeded while the job was
// still pending. The job may still complete server-side; the status
// endpoint can be queried manually with the process id.
type TimeoutError struct {
	ProcessID string
	Elapsed   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("topaz: timed out after %s waiting for job %s; the job may still complete, check status/%s manually",
		e.Elapsed.Round(time.Second), e.ProcessID, e.ProcessID)
}

// DownloadValidationError reports that no download attempt produced a
// payload matching the expected image signature within the attempt budget.
type DownloadValidationError struct {
	ProcessID string
	Attempts  int
}

func (e *DownloadValidationError) Error() string {
	return fmt.Sprintf("topaz: no valid image for job %s after %d download attempts", e.ProcessID, e.Attempts)
}
