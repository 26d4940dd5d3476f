package kucoin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	platformhttp "github.com/Alias1177/KuFutures/internal/platform/http"
)

// DefaultBaseURL is the KuCoin futures REST endpoint.
const DefaultBaseURL = "https://api-futures.kucoin.com"

// Client talks to the KuCoin futures REST API.
type Client struct {
	baseURL    string
	key        string
	secret     string
	passphrase string

	http   *platformhttp.Client
	logger zerolog.Logger
}

// Options configures the client. Credentials may be empty for
// public-data-only use (candles, tickers).
type Options struct {
	BaseURL        string
	Key            string
	Secret         string
	Passphrase     string
	Timeout        time.Duration
	RequestsPerSec int
}

// New creates a KuCoin futures client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:    opts.BaseURL,
		key:        opts.Key,
		secret:     opts.Secret,
		passphrase: opts.Passphrase,
		http: platformhttp.NewClient(platformhttp.ClientOptions{
			Timeout:        opts.Timeout,
			RequestsPerSec: opts.RequestsPerSec,
		}),
		logger: log.With().Str("component", "kucoin").Logger(),
	}
}

// APIError is a KuCoin error envelope (code != "200000").
type APIError struct {
	Code string
	Msg  string
}

func (e *APIError) Error() string {
	return "kucoin: code " + e.Code + ": " + e.Msg
}

type apiResponse struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// get performs a GET request and unwraps the KuCoin envelope.
func (c *Client) get(ctx context.Context, endpoint string, signed bool) (json.RawMessage, error) {
	build := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
		if err != nil {
			return nil, err
		}
		if signed {
			c.signRequest(req, http.MethodGet, endpoint, nil)
		}
		return req, nil
	}

	body, err := c.http.DoRequest(ctx, build)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", endpoint)
	}
	return unwrap(body, endpoint)
}

// post performs a POST request with a JSON payload and unwraps the
// KuCoin envelope.
func (c *Client) post(ctx context.Context, endpoint string, payload []byte, signed bool) (json.RawMessage, error) {
	build := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if signed {
			c.signRequest(req, http.MethodPost, endpoint, payload)
		}
		return req, nil
	}

	body, err := c.http.DoRequest(ctx, build)
	if err != nil {
		return nil, errors.Wrapf(err, "POST %s", endpoint)
	}
	return unwrap(body, endpoint)
}

func unwrap(body []byte, endpoint string) (json.RawMessage, error) {
	var resp apiResponse
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrapf(err, "decode response from %s", endpoint)
	}
	if resp.Code != "200000" {
		return nil, &APIError{Code: resp.Code, Msg: resp.Msg}
	}
	return resp.Data, nil
}
