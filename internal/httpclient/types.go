package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrResponseTooLarge is returned when a response body exceeds MaxResponseSize
	ErrResponseTooLarge = errors.New("response too large")
	// ErrInvalidRequest is returned when a request cannot be built
	ErrInvalidRequest = errors.New("invalid request")
)

// HTTPError represents a non-success HTTP response
type HTTPError struct {
	StatusCode int
	URL        string
	Message    string
	// RetryAfter is the server-suggested delay, zero when absent
	RetryAfter time.Duration
}

// NewHTTPError creates a new HTTPError
func NewHTTPError(statusCode int, url, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		URL:        url,
		Message:    message,
	}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %s", e.StatusCode, e.URL, e.Message)
}

// Temporary reports whether the request may succeed if retried
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}
