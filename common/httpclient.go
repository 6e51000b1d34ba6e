package common

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// HttpClient is the transport used by the TalentIQ client.
// This allows mocking or custom transport layers in testing.
type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
	CloseIdleConnections()
	RetryWithExponentialBackoff(ctx context.Context, operation func() (interface{}, error)) (interface{}, error)
	SetRandAndSleepForTest(sleep func(d time.Duration), seed int64)
}

// HTTPError is a custom error that captures unexpected status codes and response bodies.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.StatusCode, string(e.Body))
}

// IsStatus reports whether err is an *HTTPError with the given status code.
func IsStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == status
}

// userAgentRoundTripper is a custom RoundTripper that adds a User-Agent header.
type userAgentRoundTripper struct {
	Wrapped   http.RoundTripper
	UserAgent string
}

func (rt *userAgentRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone request to avoid mutating the original
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", rt.UserAgent)
	return rt.Wrapped.RoundTrip(clone)
}

// Implementation of HttpClient that wraps a standard *http.Client with retry logic.
type httpClient struct {
	client *http.Client
	// sleepFunc replaces the context-aware wait in tests.
	sleepFunc func(d time.Duration)

	mu  sync.Mutex
	rnd *rand.Rand
}

// DefaultTimeout is applied when the caller does not set one on the base client.
const DefaultTimeout = 10 * time.Second

// NewHttpClient returns a new HttpClient with a custom User-Agent.
// A zero base.Timeout is replaced with DefaultTimeout.
func NewHttpClient(userAgent string, base *http.Client) HttpClient {
	if base.Transport == nil {
		base.Transport = http.DefaultTransport
	}
	base.Transport = &userAgentRoundTripper{
		Wrapped:   base.Transport,
		UserAgent: userAgent,
	}
	if base.Timeout == 0 {
		base.Timeout = DefaultTimeout
	}

	return &httpClient{
		client: base,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (h *httpClient) Do(req *http.Request) (*http.Response, error) {
	return h.client.Do(req)
}

func (h *httpClient) CloseIdleConnections() {
	h.client.CloseIdleConnections()
}

// Exponential backoff constants
const (
	maxRetries = 5
	baseDelay  = 1 * time.Second
	maxDelay   = 32 * time.Second
)

// RetryWithExponentialBackoff attempts the given operation() multiple times if
// we encounter a retryable HTTPError (5xx gateway family).
// API resource calls never go through here; only health polling does.
// Waiting between attempts stops as soon as ctx is done.
func (h *httpClient) RetryWithExponentialBackoff(ctx context.Context, operation func() (interface{}, error)) (interface{}, error) {
	var result interface{}
	var err error
	delay := baseDelay

	for i := 0; i < maxRetries; i++ {
		if result, err = operation(); err == nil {
			return result, nil
		}

		if !retryable(err) || i == maxRetries-1 {
			break
		}

		if waitErr := h.wait(ctx, delay+h.jitter(delay)); waitErr != nil {
			return nil, fmt.Errorf("backoff interrupted after %d attempts: %w", i+1, waitErr)
		}

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
	return nil, err
}

func (h *httpClient) wait(ctx context.Context, d time.Duration) error {
	h.mu.Lock()
	sleep := h.sleepFunc
	h.mu.Unlock()

	if sleep != nil {
		sleep(d)
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (h *httpClient) jitter(delay time.Duration) time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return time.Duration(h.rnd.Int63n(int64(delay)))
}

func retryable(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	switch httpErr.StatusCode {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (h *httpClient) SetRandAndSleepForTest(sleep func(d time.Duration), seed int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sleepFunc = sleep
	h.rnd = rand.New(rand.NewSource(seed))
}
