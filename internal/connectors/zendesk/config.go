package zendesk

import "time"

const (
	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 120 * time.Second

	// DefaultBackoff is the fixed sleep between retries, used both for
	// rate-limit responses without a Retry-After header and for generic
	// transient failures.
	DefaultBackoff = 60 * time.Second

	// DefaultMaxRetries is the number of retries after the first attempt,
	// so a request is attempted at most DefaultMaxRetries+1 times.
	DefaultMaxRetries = 3

	// DefaultRequestRate is the proactive throttle in requests per second.
	DefaultRequestRate = 5.0

	// DefaultSmallDiff is the watermark delta at or below which two
	// consecutive incremental pages are considered "barely advancing".
	DefaultSmallDiff = 10 * time.Second

	// DefaultSmallDiffLimit is how many consecutive small watermark deltas
	// end an incremental walk.
	DefaultSmallDiffLimit = 3

	// DefaultLiveEdgeWindow bounds how recent a watermark must be for the
	// small-delta heuristic to apply. Old watermarks advancing slowly mean
	// a dense stretch of history, not the live edge.
	DefaultLiveEdgeWindow = 24 * time.Hour

	// MaxBatchSize is the remote service's cap on ids per bulk mutation.
	MaxBatchSize = 100
)

// Config holds the Client tunables. Zero values are replaced by defaults
// in NewClient, so Config{} is usable as-is.
type Config struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// Backoff is the fixed sleep between retries.
	Backoff time.Duration

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// RequestRate is the proactive throttle in requests per second.
	RequestRate float64
}

// withDefaults fills unset fields with the package defaults.
func (c Config) withDefaults() Config {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Backoff == 0 {
		c.Backoff = DefaultBackoff
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RequestRate == 0 {
		c.RequestRate = DefaultRequestRate
	}
	return c
}

// WalkConfig holds the Walker tunables. Zero values are replaced by
// defaults in NewWalker.
type WalkConfig struct {
	// SmallDiff is the watermark delta at or below which a page advance
	// counts towards the live-edge heuristic.
	SmallDiff time.Duration

	// SmallDiffLimit is how many consecutive small deltas stop the walk.
	SmallDiffLimit int

	// LiveEdgeWindow is how recent a watermark must be for the heuristic
	// to apply.
	LiveEdgeWindow time.Duration

	// MaxTickets, when positive, stops the walk once that many tickets
	// have been collected. Debug and testing aid only.
	MaxTickets int
}

func (c WalkConfig) withDefaults() WalkConfig {
	if c.SmallDiff == 0 {
		c.SmallDiff = DefaultSmallDiff
	}
	if c.SmallDiffLimit == 0 {
		c.SmallDiffLimit = DefaultSmallDiffLimit
	}
	if c.LiveEdgeWindow == 0 {
		c.LiveEdgeWindow = DefaultLiveEdgeWindow
	}
	return c
}
