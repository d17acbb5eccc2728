// Package client provides the Go SDK for the SafeSpeak analysis API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Version is the SDK version reported in the User-Agent header.
const Version = "0.1.0"

// Logger is the minimal logging interface the SDK accepts.  The zero value
// of the client logs nothing.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(format string, args ...interface{}) {}
func (noopLogger) Infof(format string, args ...interface{})  {}
func (noopLogger) Errorf(format string, args ...interface{}) {}

// Client is the SafeSpeak API client.  It is safe for concurrent use.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	userAgent    string
	logger       Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
}

// APIError is a structured error returned by the API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id,omitempty"`
	Retryable  bool   `json:"retryable"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("safespeak: %s (%s, http %d)", e.Message, e.Code, e.StatusCode)
}

// IsEmptyInput reports whether the server rejected the request for missing
// content.
func (e *APIError) IsEmptyInput() bool { return e.Code == "ANLZ_001" }

// IsSchemaViolation reports whether the provider output failed validation.
func (e *APIError) IsSchemaViolation() bool { return e.Code == "SCHEMA_001" }

// IsRateLimited reports whether the request was throttled.
func (e *APIError) IsRateLimited() bool { return e.StatusCode == http.StatusTooManyRequests }

// NewClient creates a client for the API server at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("safespeak: baseURL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("safespeak: invalid baseURL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("safespeak: baseURL scheme must be http or https")
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 120 * time.Second},
		userAgent:    fmt.Sprintf("safespeak-go-sdk/%s", Version),
		logger:       noopLogger{},
		retryMax:     2,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// do performs one API call with retries on transport failures and throttled
// or transient responses.
func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte, result interface{}) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	fullURL := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			backoff := c.calculateBackoff(attempt)
			c.logger.Debugf("retry attempt %d after %v", attempt, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("safespeak: building request: %w", err)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("safespeak: request failed: %w", err)
			if ctx.Err() != nil {
				return lastErr
			}
			continue
		}

		raw, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("safespeak: reading response: %w", readErr)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			if result != nil {
				if err := json.Unmarshal(raw, result); err != nil {
					return fmt.Errorf("safespeak: decoding response: %w", err)
				}
			}
			return nil
		}

		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Code == "" {
			apiErr.Code = http.StatusText(resp.StatusCode)
			apiErr.Message = strings.TrimSpace(string(raw))
			if apiErr.Message == "" {
				apiErr.Message = "request failed"
			}
		}
		if !c.shouldRetry(apiErr) {
			return apiErr
		}
		lastErr = apiErr
	}
	return lastErr
}

func (c *Client) post(ctx context.Context, path, contentType string, body []byte, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, contentType, body, result)
}

// shouldRetry allows retries only for throttling and responses the server
// itself marks as retryable.
func (c *Client) shouldRetry(err *APIError) bool {
	if err.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return err.Retryable
}

// calculateBackoff returns exponential backoff with jitter, capped at
// retryWaitMax.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.retryWaitMin * time.Duration(1<<uint(attempt-1))
	if backoff > c.retryWaitMax {
		backoff = c.retryWaitMax
	}
	jitter := time.Duration(rand.Int63n(int64(backoff) / 4))
	return backoff + jitter
}
