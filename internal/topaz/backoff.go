package topaz

import (
	"math"
	"time"
)

// BackoffPolicy bounds the transient-fault tolerance of the status poller.
// Fault backoff is independent of the regular poll interval; both are honored.
type BackoffPolicy struct {
	MaxConsecutiveFaults int
	BaseDelay            time.Duration
	Factor               float64
	MaxDelay             time.Duration
}

// Delay returns the backoff for the given 1-based consecutive fault count.
func (p BackoffPolicy) Delay(fault int) time.Duration {
	if fault < 1 {
		fault = 1
	}
	d := time.Duration(float64(p.BaseDelay) * math.Pow(p.Factor, float64(fault-1)))
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// DownloadPolicy bounds the result-fetch retry loop. The download endpoint
// often lags a second or two behind a completed status, so a fixed short
// delay between attempts is enough.
type DownloadPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultBackoff tolerates a handful of consecutive poll faults with
// exponential spacing before giving up.
var DefaultBackoff = BackoffPolicy{
	MaxConsecutiveFaults: 5,
	BaseDelay:            2 * time.Second,
	Factor:               2,
	MaxDelay:             30 * time.Second,
}

// DefaultDownload mirrors the documented behavior of the download endpoint.
var DefaultDownload = DownloadPolicy{
	MaxAttempts: 5,
	Delay:       3 * time.Second,
}

const (
	// DefaultPollInterval paces status checks for standard models.
	DefaultPollInterval = 5 * time.Second
	// GenerativePollInterval paces status checks for the slower generative family.
	GenerativePollInterval = 10 * time.Second
	// DefaultJobTimeout is the overall wall-clock budget when the caller sets none.
	DefaultJobTimeout = 5 * time.Minute
	// etaSafetyMargin caps how far a server-reported ETA may push the deadline.
	etaSafetyMargin = 60 * time.Second
)
