package http

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// Client is a wrapper for HTTP client with rate limiting
type Client struct {
	HTTPClient *http.Client
	Limiter    *rate.Limiter

	maxRetryTimeout time.Duration
}

// ClientOptions holds options for creating a new Client
type ClientOptions struct {
	Timeout         time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new HTTP client with rate limiting
func NewClient(opts ClientOptions) *Client {
	// Set default values if not provided
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 5
	}
	if opts.MaxRetryTimeout == 0 {
		opts.MaxRetryTimeout = 30 * time.Second
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: opts.Timeout,
		},
		Limiter:         rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.RequestsPerSec),
		maxRetryTimeout: opts.MaxRetryTimeout,
	}
}

// DoRequest executes the request produced by build under the rate limit,
// retrying transport errors, 5xx and 429 responses with exponential
// backoff. build runs once per attempt so time-sensitive headers
// (request signatures) stay fresh. Returns the drained response body.
func (c *Client) DoRequest(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	// Wait for rate limiter
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var body []byte
	operation := func() error {
		req, err := build(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return errors.Wrap(err, "request failed")
		}
		defer resp.Body.Close()

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return errors.Wrap(err, "read response body")
		}

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		}
		if resp.StatusCode != http.StatusOK {
			// Client-side errors (bad request, bad credentials) will not
			// get better on retry.
			return backoff.Permanent(&StatusError{StatusCode: resp.StatusCode, Body: string(body)})
		}
		return nil
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.MaxElapsedTime = c.maxRetryTimeout

	if err := backoff.Retry(operation, backoff.WithContext(backoffStrategy, ctx)); err != nil {
		return nil, err
	}

	return body, nil
}

// StatusError represents an error due to a non-200 HTTP status code
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	msg := "status " + strconv.Itoa(e.StatusCode) + " " + http.StatusText(e.StatusCode)
	if e.Body != "" {
		snippet := e.Body
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		msg += ": " + snippet
	}
	return msg
}
