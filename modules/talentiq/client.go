package talentiq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/guarzo/talentiq/common"
	"github.com/guarzo/talentiq/common/model"
	"github.com/guarzo/talentiq/modules/session"
	"github.com/guarzo/talentiq/modules/store"
)

// DefaultBaseURL is used when no API URL is configured.
const DefaultBaseURL = "http://localhost:8000"

// ApiClient defines lower-level HTTP operations for the TalentIQ API:
// bearer injection, the refresh-and-retry cycle, JSON helpers.
type ApiClient interface {
	GetJSON(ctx context.Context, endpoint string, entity interface{}) error
	PostJSON(ctx context.Context, endpoint string, body, entity interface{}) error
	PutJSON(ctx context.Context, endpoint string, body, entity interface{}) error
	DeleteJSON(ctx context.Context, endpoint string, entity interface{}) error
	// GetJSONWithBackoff retries 5xx answers with exponential backoff. Only meant for
	// unauthenticated checks such as /health; resource calls never retry.
	GetJSONWithBackoff(ctx context.Context, endpoint string, entity interface{}) error
	Do(ctx context.Context, req Request) ([]byte, error)
	Session() *session.Session
}

// Request describes one outbound call.
type Request struct {
	Method      string
	Endpoint    string
	Body        []byte
	ContentType string
	// Expected statuses; any 2xx when empty.
	Expected []int
	// NoRefresh hands a 401 straight back to the caller. Used where 401 means
	// bad credentials rather than an expired token (login, register, logout).
	NoRefresh bool
}

// RefreshError is returned when a 401 could not be recovered because the refresh
// itself failed. The session has already been cleared when a caller sees it.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("session refresh failed: %v", e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

type apiClient struct {
	baseURL    string
	httpClient common.HttpClient
	session    *session.Session
	authClient common.AuthClient
	log        *slog.Logger
	metrics    *Metrics
}

// Option tweaks an apiClient.
type Option func(*apiClient)

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *apiClient) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics sets the client metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *apiClient) { c.metrics = m }
}

// NewClient creates an ApiClient for baseURL. A nil authClient defaults to one
// that talks to baseURL through the same httpClient; a nil session keeps state
// in memory only.
func NewClient(baseURL string, httpClient common.HttpClient, sess *session.Session, authClient common.AuthClient, opts ...Option) ApiClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if authClient == nil {
		authClient = NewAuthClient(baseURL, httpClient)
	}
	if sess == nil {
		sess = session.New(store.NewMemory(), session.Options{})
	}
	c := &apiClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		session:    sess,
		authClient: authClient,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ---------------------------------------------------
// Implementation of ApiClient interface
// ---------------------------------------------------

func (c *apiClient) Session() *session.Session {
	return c.session
}

// GetJSON retrieves JSON from an endpoint and unmarshals into entity.
func (c *apiClient) GetJSON(ctx context.Context, endpoint string, entity interface{}) error {
	return c.sendJSON(ctx, http.MethodGet, endpoint, nil, entity)
}

// PostJSON sends body as JSON and decodes the answer into entity (if non-nil).
func (c *apiClient) PostJSON(ctx context.Context, endpoint string, body, entity interface{}) error {
	return c.sendJSON(ctx, http.MethodPost, endpoint, body, entity)
}

// PutJSON is PostJSON with PUT.
func (c *apiClient) PutJSON(ctx context.Context, endpoint string, body, entity interface{}) error {
	return c.sendJSON(ctx, http.MethodPut, endpoint, body, entity)
}

// DeleteJSON sends a DELETE and decodes the answer into entity (if non-nil).
func (c *apiClient) DeleteJSON(ctx context.Context, endpoint string, entity interface{}) error {
	return c.sendJSON(ctx, http.MethodDelete, endpoint, nil, entity)
}

func (c *apiClient) GetJSONWithBackoff(ctx context.Context, endpoint string, entity interface{}) error {
	operation := func() (interface{}, error) {
		return c.Do(ctx, Request{Method: http.MethodGet, Endpoint: endpoint, NoRefresh: true})
	}
	result, err := c.httpClient.RetryWithExponentialBackoff(ctx, operation)
	if err != nil {
		return err
	}
	return decodeInto(result.([]byte), entity)
}

func (c *apiClient) sendJSON(ctx context.Context, method, endpoint string, body, entity interface{}) error {
	req := Request{Method: method, Endpoint: endpoint}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		req.Body = b
		req.ContentType = "application/json"
	}
	data, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return decodeInto(data, entity)
}

// outboundRequest is one logical call; retried is the single-use refresh marker.
type outboundRequest struct {
	Request
	url       string
	requestID string
	retried   bool
}

// Do is the core method that actually performs the HTTP request, including the
// one-shot refresh-and-retry on 401.
func (c *apiClient) Do(ctx context.Context, r Request) ([]byte, error) {
	urlStr, err := buildURL(c.baseURL, r.Endpoint)
	if err != nil {
		return nil, err
	}

	req := &outboundRequest{
		Request:   r,
		url:       urlStr,
		requestID: uuid.NewString(),
		retried:   r.NoRefresh,
	}
	log := common.LoggerFrom(ctx, c.log).With(
		slog.String("request_id", req.requestID),
		slog.String("method", r.Method),
		slog.String("endpoint", r.Endpoint),
	)
	ctx = common.IntoLogger(ctx, log)

	for {
		data, status, sentWith, err := c.executeRequest(ctx, req)
		if err != nil {
			c.metrics.observe(0)
			return nil, err
		}

		if statusMatches(status, r.Expected) {
			c.metrics.observe(status)
			return data, nil
		}

		// 401 on a first attempt: refresh once, then resend with the new bearer
		if status == http.StatusUnauthorized && !req.retried {
			req.retried = true
			log.Debug("access token rejected, refreshing")

			if _, refreshErr := c.session.Refresh(ctx, sentWith, c.authClient.RefreshToken); refreshErr != nil {
				c.metrics.observe(status)
				if ctx.Err() != nil && errors.Is(refreshErr, ctx.Err()) {
					return nil, fmt.Errorf("waiting for session refresh: %w", refreshErr)
				}
				c.metrics.refreshed(false)
				return nil, &RefreshError{Err: refreshErr}
			}
			c.metrics.refreshed(true)
			continue
		}

		c.metrics.observe(status)
		return nil, &common.HTTPError{
			StatusCode: status,
			Body:       data,
		}
	}
}

// executeRequest does the low-level HTTP. It reports which access token went out
// so a refresh can tell whether someone else already rotated the pair.
func (c *apiClient) executeRequest(ctx context.Context, req *outboundRequest) ([]byte, int, string, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.url, body)
	if err != nil {
		return nil, 0, "", err
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-Id", req.requestID)
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	// request interceptor: attach the bearer when we have one, never fail without
	access := c.session.AccessToken()
	if access != "" {
		httpReq.Header.Set("Authorization", "Bearer "+access)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, access, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, resp.StatusCode, access, fmt.Errorf("failed to read response body: %w", readErr)
	}

	common.LoggerFrom(ctx, c.log).Debug("api call",
		slog.Int("status", resp.StatusCode),
		slog.Bool("retry", req.retried && !req.NoRefresh),
		slog.Duration("dur", time.Since(start)),
	)
	return data, resp.StatusCode, access, nil
}

// buildURL merges baseURL + endpoint
func buildURL(baseURL, endpoint string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	path, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	return base.ResolveReference(path).String(), nil
}

func statusMatches(statusCode int, expected []int) bool {
	if len(expected) == 0 {
		return statusCode >= 200 && statusCode < 300
	}
	for _, s := range expected {
		if statusCode == s {
			return true
		}
	}
	return false
}

func decodeInto(data []byte, entity interface{}) error {
	if entity == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := model.JSONUnmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
