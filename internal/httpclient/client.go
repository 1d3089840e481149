// Package httpclient provides the HTTP transport used to talk to the upstream reporting API
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	// DefaultTimeout is the default timeout for HTTP requests
	DefaultTimeout = 5 * time.Minute
	// MaxResponseSize is the maximum allowed response size (512MB)
	MaxResponseSize = 512 * 1024 * 1024
	// UserAgent is the user agent string for HTTP requests
	UserAgent = "wb-sync/1.0"

	maxErrorBody = 512
)

// Client is an interface for HTTP operations
type Client interface {
	// Get performs an HTTP GET request and returns the response body.
	// A 204 No Content response yields a nil body and no error.
	Get(ctx context.Context, url string, header http.Header) ([]byte, error)
}

// DefaultClient is the default HTTP client implementation
type DefaultClient struct {
	client *http.Client
}

// NewDefaultClient creates a new default HTTP client with the specified timeout
// If timeout is 0, uses DefaultTimeout
func NewDefaultClient(timeout time.Duration) Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &DefaultClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get performs an HTTP GET request
func (c *DefaultClient) Get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrInvalidRequest, err)
	}

	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		return nil, nil
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		httpErr := NewHTTPError(resp.StatusCode, url, errorMessage(msg))
		if httpErr.Message == "" {
			httpErr.Message = resp.Status
		}
		httpErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, httpErr
	}

	if resp.ContentLength > MaxResponseSize {
		return nil, fmt.Errorf("%w: response size %d bytes exceeds maximum allowed size of %d bytes (%.2f MB)",
			ErrResponseTooLarge, resp.ContentLength, MaxResponseSize, float64(MaxResponseSize)/(1024*1024))
	}

	// +1 to detect if limit exceeded
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("%w: response size exceeds maximum allowed size of %d bytes (%.2f MB)",
			ErrResponseTooLarge, MaxResponseSize, float64(MaxResponseSize)/(1024*1024))
	}

	return body, nil
}

// errorMessage reduces an error body to its message. JSON bodies yield their
// detail, message or title field; anything else is returned trimmed.
func errorMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"detail", "message", "title", "errors.0"} {
			if v := gjson.GetBytes(body, path); v.Exists() && v.String() != "" {
				return v.String()
			}
		}
	}
	return strings.TrimSpace(string(body))
}

// parseRetryAfter understands both the delay-seconds and the HTTP-date forms.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
