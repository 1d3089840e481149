package httpclient_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/httpclient"
)

// newTestServer creates a new test server with keep-alives disabled.
// Closing a server with keep-alives enabled can affect parallel tests sharing the transport.
func newTestServer(handler http.Handler) *httptest.Server {
	server := httptest.NewServer(handler)
	server.Config.SetKeepAlivesEnabled(false)
	return server
}

func TestDefaultClient_Get_Success(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		expected []byte
	}{
		{
			name:     "json body",
			status:   http.StatusOK,
			body:     `[{"rrd_id":1}]`,
			expected: []byte(`[{"rrd_id":1}]`),
		},
		{
			name:     "empty 200 body",
			status:   http.StatusOK,
			body:     "",
			expected: []byte{},
		},
		{
			name:     "no content",
			status:   http.StatusNoContent,
			body:     "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := httpclient.NewDefaultClient(30 * time.Second)
			data, err := client.Get(context.Background(), server.URL, nil)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, data)
		})
	}
}

func TestDefaultClient_Get_HTTPErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		statusCode    int
		retryAfter    string
		body          string
		message       string
		temporary     bool
		expectedDelay time.Duration
	}{
		{
			name:       "401 unauthorized",
			statusCode: http.StatusUnauthorized,
			body:       "bad token",
		},
		{
			name:       "400 bad request",
			statusCode: http.StatusBadRequest,
			body:       "bad dateFrom",
		},
		{
			name:       "json error body",
			statusCode: http.StatusForbidden,
			body:       `{"title":"forbidden","detail":"token scope does not cover statistics","requestId":"abc"}`,
			message:    "token scope does not cover statistics",
		},
		{
			name:       "json array body",
			statusCode: http.StatusBadRequest,
			body:       `{"errors":["limit is too large"]}`,
			message:    "limit is too large",
		},
		{
			name:          "429 with retry after seconds",
			statusCode:    http.StatusTooManyRequests,
			retryAfter:    "7",
			temporary:     true,
			expectedDelay: 7 * time.Second,
		},
		{
			name:       "503 without body",
			statusCode: http.StatusServiceUnavailable,
			temporary:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := httpclient.NewDefaultClient(30 * time.Second)
			_, err := client.Get(context.Background(), server.URL, nil)
			require.Error(t, err)

			var httpErr *httpclient.HTTPError
			require.True(t, errors.As(err, &httpErr))
			assert.Equal(t, tt.statusCode, httpErr.StatusCode)
			assert.Equal(t, tt.temporary, httpErr.Temporary())
			assert.Equal(t, tt.expectedDelay, httpErr.RetryAfter)
			assert.Contains(t, err.Error(), fmt.Sprintf("HTTP %d", tt.statusCode))
			switch {
			case tt.message != "":
				assert.Equal(t, tt.message, httpErr.Message)
			case tt.body != "":
				assert.Contains(t, err.Error(), tt.body)
			default:
				assert.NotEmpty(t, httpErr.Message)
			}
		})
	}
}

func TestDefaultClient_Get_NetworkErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		url           string
		errorContains string
		sentinel      error
	}{
		{
			name:          "invalid URL scheme",
			url:           "://invalid-url",
			errorContains: "failed to create request",
			sentinel:      httpclient.ErrInvalidRequest,
		},
		{
			name:          "unreachable host",
			url:           "http://invalid-host-does-not-exist.local:9999",
			errorContains: "failed to execute request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := httpclient.NewDefaultClient(30 * time.Second)
			_, err := client.Get(context.Background(), tt.url, nil)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
		})
	}
}

func TestDefaultClient_Get_ContextCancellation(t *testing.T) {
	t.Parallel()

	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := httpclient.NewDefaultClient(30 * time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := client.Get(ctx, server.URL, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDefaultClient_Get_SizeLimitExceeded(t *testing.T) {
	t.Parallel()

	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", httpclient.MaxResponseSize+1))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := httpclient.NewDefaultClient(30 * time.Second)
	_, err := client.Get(context.Background(), server.URL, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, httpclient.ErrResponseTooLarge)
	assert.Contains(t, err.Error(), "exceeds maximum allowed size")
}

func TestDefaultClient_Get_Headers(t *testing.T) {
	t.Parallel()

	var received http.Header
	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := httpclient.NewDefaultClient(30 * time.Second)
	header := http.Header{}
	header.Set("Authorization", "secret-token")

	_, err := client.Get(context.Background(), server.URL, header)

	require.NoError(t, err)
	assert.Equal(t, "secret-token", received.Get("Authorization"))
	assert.Equal(t, httpclient.UserAgent, received.Get("User-Agent"))
	assert.Equal(t, "application/json", received.Get("Accept"))
}
