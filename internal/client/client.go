// Package client implements the HTTP client for the JSON API backend.
// All calls are blocking; callers that must not block offload to their own
// goroutines.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/devidclub/devid-go/internal/metrics"
)

const defaultTimeout = 30 * time.Second

// Client issues GET and POST requests against a configured backend root.
// When constructed with a token, every request carries the bearer
// credential in the Authentication header (the header name the backend
// reads; it is not the standard Authorization header).
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken attaches a bearer credential to every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit enables client-side rate limiting. A non-positive rps
// leaves limiting disabled.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 {
			if burst < 1 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the given backend root URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET request and returns the raw response body. An empty
// body is returned as an empty slice, not an error; callers that require
// content decide how to treat it.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post marshals body to JSON, performs a POST request and returns the raw
// response body.
func (c *Client) Post(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, payload)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &RequestError{Method: method, Path: path, Err: err}
		}
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, &RequestError{Method: method, Path: path, Err: err}
	}

	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authentication", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ClientRequestsTotal.WithLabelValues(method, "error").Inc()
		return nil, &RequestError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	metrics.ClientRequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
	if err != nil {
		metrics.ClientRequestsTotal.WithLabelValues(method, "error").Inc()
		return nil, &RequestError{Method: method, Path: path, Status: resp.StatusCode, Err: err}
	}
	metrics.ClientRequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Int("bytes", len(body)).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The backend reports application-level failures (such as bad
		// credentials) as a JSON body on a non-2xx status; those are for
		// the caller to interpret. Anything else is a transport failure.
		if len(body) > 0 && json.Valid(body) {
			return body, nil
		}
		return nil, &RequestError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	return body, nil
}
