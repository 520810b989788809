package zendesk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/zenpurge-cli/internal/core/domain"
)

func testCreds() domain.Credentials {
	return domain.Credentials{
		Username: "sally@codebros.com",
		Secret:   "H34h2hd38hFD29fah",
		Scheme:   domain.AuthAPIToken,
	}
}

// fastConfig keeps retries enabled but makes the backoff negligible so
// tests do not sleep for real.
func fastConfig() Config {
	return Config{
		Timeout:     time.Second,
		Backoff:     time.Millisecond,
		MaxRetries:  3,
		RequestRate: 10000,
	}
}

func TestClient_Execute(t *testing.T) {
	t.Run("returns the body on 200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		client := NewClient(testCreds(), fastConfig())
		resp, err := client.Execute(context.Background(), http.MethodGet, srv.URL)

		require.NoError(t, err)
		assert.False(t, resp.EndOfStream)
		assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
	})

	t.Run("sends the Basic auth header", func(t *testing.T) {
		var got string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("Authorization")
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		client := NewClient(testCreds(), fastConfig())
		_, err := client.Execute(context.Background(), http.MethodGet, srv.URL)

		require.NoError(t, err)
		want, err := BasicAuthHeader(testCreds())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("422 is an end-of-stream sentinel with a single attempt", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"error":"InvalidValue","description":"Too recent start_time."}`))
		}))
		defer srv.Close()

		client := NewClient(testCreds(), fastConfig())
		resp, err := client.Execute(context.Background(), http.MethodGet, srv.URL)

		require.NoError(t, err)
		assert.True(t, resp.EndOfStream)
		assert.Equal(t, int32(1), hits.Load(), "the sentinel must not be retried")
	})

	t.Run("retries through 429 responses and returns the eventual body", func(t *testing.T) {
		// Scenario: [429, 429, 200] with max retries 3.
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if hits.Add(1) <= 2 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(`{"tickets":[]}`))
		}))
		defer srv.Close()

		client := NewClient(testCreds(), fastConfig())
		resp, err := client.Execute(context.Background(), http.MethodGet, srv.URL)

		require.NoError(t, err)
		assert.JSONEq(t, `{"tickets":[]}`, string(resp.Body))
		assert.Equal(t, int32(3), hits.Load())
	})

	t.Run("retries generic server errors up to the budget", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewClient(testCreds(), fastConfig())
		_, err := client.Execute(context.Background(), http.MethodGet, srv.URL)

		require.Error(t, err)
		assert.True(t, IsMaxRetries(err))
		// 3 retries means 4 attempts total.
		assert.Equal(t, int32(4), hits.Load())

		var mr *MaxRetriesError
		require.ErrorAs(t, err, &mr)
		assert.Equal(t, 4, mr.Attempts)
		assert.Equal(t, srv.URL, mr.URL)
	})

	t.Run("2xx other than 200 still returns the body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusAccepted)
			w.Write([]byte(`{"queued":true}`))
		}))
		defer srv.Close()

		client := NewClient(testCreds(), fastConfig())
		resp, err := client.Execute(context.Background(), http.MethodGet, srv.URL)

		require.NoError(t, err)
		assert.JSONEq(t, `{"queued":true}`, string(resp.Body))
	})

	t.Run("cancelled context aborts the backoff wait", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		cfg := fastConfig()
		cfg.Backoff = time.Hour
		client := NewClient(testCreds(), cfg)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := client.Execute(ctx, http.MethodGet, srv.URL)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestClient_retryAfter(t *testing.T) {
	client := NewClient(testCreds(), fastConfig())

	t.Run("uses the Retry-After header when present", func(t *testing.T) {
		resp := &http.Response{Header: http.Header{"Retry-After": []string{"7"}}}
		assert.Equal(t, 7*time.Second, client.retryAfter(resp))
	})

	t.Run("falls back to the fixed backoff", func(t *testing.T) {
		resp := &http.Response{Header: http.Header{}}
		assert.Equal(t, time.Millisecond, client.retryAfter(resp))

		resp.Header.Set("Retry-After", "soon")
		assert.Equal(t, time.Millisecond, client.retryAfter(resp))
	})
}

func TestConfig_withDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultBackoff, cfg.Backoff)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, DefaultRequestRate, cfg.RequestRate)

	custom := Config{Timeout: time.Second}.withDefaults()
	assert.Equal(t, time.Second, custom.Timeout)
	assert.Equal(t, DefaultBackoff, custom.Backoff)
}
