package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/httpclient"
)

const (
	// ReportPath is the path of the detailed report endpoint.
	ReportPath = "/api/v5/supplier/reportDetailByPeriod"

	// DefaultRequestInterval is the upstream quota: one report request per minute.
	DefaultRequestInterval = time.Minute
	// DefaultPageSize is the largest page the upstream serves.
	DefaultPageSize = 100000

	defaultInitialBackoff = 5 * time.Second
	defaultMaxBackoff     = 5 * time.Minute
)

// ErrUnauthorized is returned when the upstream rejects the API token.
var ErrUnauthorized = errors.New("upstream rejected credentials")

// Client fetches report pages from the upstream API.
//
// All requests made through one Client share a single rate limiter, so concurrent
// foreground and background tasks never exceed the upstream quota together.
// Rate limiting, 5xx and network failures are retried until the context is done.
type Client struct {
	http       httpclient.Client
	endpoint   string
	token      string
	userAgent  string
	limiter    *rate.Limiter
	newBackoff func() backoff.BackOff
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP transport.
func WithHTTPClient(c httpclient.Client) ClientOption {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// WithRequestInterval sets the minimum interval between two requests.
// A non-positive interval disables limiting.
func WithRequestInterval(interval time.Duration) ClientOption {
	return func(cl *Client) {
		if interval <= 0 {
			cl.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		cl.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithBackoff sets the exponential backoff bounds used between retries.
func WithBackoff(initial, maxInterval time.Duration) ClientOption {
	return func(cl *Client) {
		cl.newBackoff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = initial
			b.MaxInterval = maxInterval
			return b
		}
	}
}

// NewClient creates a report client for the given API endpoint.
func NewClient(endpoint, token string, opts ...ClientOption) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if token == "" {
		return nil, fmt.Errorf("API token is required")
	}

	c := &Client{
		http:     httpclient.NewDefaultClient(0),
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
		limiter:  rate.NewLimiter(rate.Every(DefaultRequestInterval), 1),
	}
	WithBackoff(defaultInitialBackoff, defaultMaxBackoff)(c)

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchPage implements Fetcher.
func (c *Client) FetchPage(ctx context.Context, req PageRequest) ([]Row, error) {
	pageURL := c.pageURL(req)
	header := http.Header{}
	header.Set("Authorization", c.token)
	if c.userAgent != "" {
		header.Set("User-Agent", c.userAgent)
	}

	attempt := 0
	operation := func() ([]Row, error) {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}

		body, err := c.http.Get(ctx, pageURL, header)
		if err != nil {
			return nil, classify(ctx, err)
		}
		if len(body) == 0 {
			return nil, nil
		}

		var rows []Row
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to decode report page: %w", err))
		}
		return rows, nil
	}

	rows, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.newBackoff()),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.WarnContext(ctx, "Report request failed, retrying",
				"kind", req.Kind,
				"range", req.Range.String(),
				"after", req.After,
				"attempt", attempt,
				"retry_in", next,
				"error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) pageURL(req PageRequest) string {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	q := url.Values{}
	q.Set("dateFrom", req.Range.StartParam())
	q.Set("dateTo", req.Range.EndParam())
	q.Set("limit", strconv.Itoa(limit))
	q.Set("rrdid", strconv.FormatInt(req.After, 10))
	if req.Kind.Valid() {
		q.Set("period", req.Kind.String())
	}
	return c.endpoint + ReportPath + "?" + q.Encode()
}

// classify maps a transport error onto the retry policy.
func classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return backoff.Permanent(ctxErr)
	}

	var httpErr *httpclient.HTTPError
	if !errors.As(err, &httpErr) {
		if isTransportError(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	if httpErr.Temporary() {
		if httpErr.RetryAfter > 0 {
			return errors.Join(err, backoff.RetryAfter(int(httpErr.RetryAfter.Round(time.Second)/time.Second)))
		}
		return err
	}

	if httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden {
		return backoff.Permanent(fmt.Errorf("%w: %w", ErrUnauthorized, err))
	}
	return backoff.Permanent(err)
}

// isTransportError reports whether err is a network failure worth retrying.
// Oversize bodies and unbuildable requests fail the same way on every attempt.
func isTransportError(err error) bool {
	if errors.Is(err, httpclient.ErrResponseTooLarge) || errors.Is(err, httpclient.ErrInvalidRequest) {
		return false
	}
	var urlErr *url.Error
	var netErr net.Error
	return errors.As(err, &urlErr) || errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF)
}
