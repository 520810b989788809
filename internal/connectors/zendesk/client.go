package zendesk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/zenpurge-cli/internal/core/domain"
	"github.com/custodia-labs/zenpurge-cli/internal/logger"
)

// Response is the outcome of a successfully executed request.
//
// EndOfStream marks the HTTP 422 sentinel from the incremental feed:
// "start_time too recent" means the walk has caught up with the present,
// which is the intended termination path, not a failure. When EndOfStream
// is true the Body is empty.
type Response struct {
	Body        []byte
	EndOfStream bool
}

// Client executes single HTTP requests against the remote API with auth,
// fixed-interval retry and rate-limit backoff. Retry state is local to
// each Execute call; concurrent requests never share a budget.
type Client struct {
	http     *http.Client
	creds    domain.Credentials
	cfg      Config
	throttle *rate.Limiter
}

// NewClient creates a client for the given credentials. Zero fields in
// cfg fall back to the package defaults.
func NewClient(creds domain.Credentials, cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		http:     &http.Client{Timeout: cfg.Timeout},
		creds:    creds,
		cfg:      cfg,
		throttle: rate.NewLimiter(rate.Limit(cfg.RequestRate), 1),
	}
}

// Execute performs one logical request, retrying transient and rate-limit
// failures up to the configured budget. It returns:
//
//   - a Response with the body on any 2xx status;
//   - a Response with EndOfStream set on HTTP 422, immediately and
//     without consuming further attempts;
//   - a *MaxRetriesError once cfg.MaxRetries+1 attempts have failed.
//
// Rate-limit responses honor the Retry-After header when present and fall
// back to the fixed backoff otherwise. They consume the same attempt
// budget as other failures but are always retried, never turned into a
// distinct terminal condition.
func (c *Client) Execute(ctx context.Context, method, rawURL string) (*Response, error) {
	attempts := c.cfg.MaxRetries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if err := c.throttle.Wait(ctx); err != nil {
			return nil, err
		}

		resp, retryIn, err := c.attempt(ctx, method, rawURL)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		logger.Debug("request %s %s attempt %d/%d failed: %v", method, rawURL, attempt+1, attempts, err)

		if attempt == attempts-1 {
			break
		}
		if err := sleepCtx(ctx, retryIn); err != nil {
			return nil, err
		}
	}

	return nil, &MaxRetriesError{URL: rawURL, Attempts: attempts, Last: lastErr}
}

// attempt issues a single HTTP request. On failure it returns the error
// together with how long to wait before the next attempt.
func (c *Client) attempt(ctx context.Context, method, rawURL string) (*Response, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	header, err := BasicAuthHeader(c.creds)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", header)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport failure: timeout, connection error, and the like.
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		logger.Info("waiting %s after transport error", c.cfg.Backoff)
		return nil, c.cfg.Backoff, fmt.Errorf("transport: %w", err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnprocessableEntity:
		// End-of-window sentinel from the incremental feed.
		logger.Debug("HTTP 422 from %s: %s", rawURL, body)
		return &Response{EndOfStream: true}, 0, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		logger.Debug("HTTP 429 from %s", rawURL)
		wait := c.retryAfter(resp)
		logger.Info("rate limit reached, waiting %s before trying again", wait)
		return nil, wait, fmt.Errorf("rate limited (HTTP 429)")

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if readErr != nil {
			logger.Info("waiting %s after read error", c.cfg.Backoff)
			return nil, c.cfg.Backoff, fmt.Errorf("read body: %w", readErr)
		}
		if resp.StatusCode != http.StatusOK {
			logger.Warn("server replied %s instead of 200 OK", resp.Status)
		}
		return &Response{Body: body}, 0, nil

	default:
		logger.Debug("HTTP %d from %s: %s", resp.StatusCode, rawURL, body)
		logger.Info("request failed with HTTP %d, waiting %s before trying again",
			resp.StatusCode, c.cfg.Backoff)
		return nil, c.cfg.Backoff, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
}

// retryAfter returns the server-suggested wait from the Retry-After
// header, or the fixed backoff when the header is missing or malformed.
func (c *Client) retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return c.cfg.Backoff
}

// sleepCtx sleeps for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
