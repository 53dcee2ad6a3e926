// Package transport provides the HTTP client used to fetch spectrum
// payloads from remote archives.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agentstation/sedmap/pkg/constants"
	"github.com/agentstation/sedmap/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client provides HTTP client functionality with optional authentication.
type Client struct {
	http     *http.Client
	auth     Authenticator
	maxBytes int64
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithAuth applies auth to every request. A nil auth sends no credentials.
func WithAuth(auth Authenticator) Option {
	return func(c *Client) {
		c.auth = auth
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithMaxBytes caps the size of a fetched body.
func WithMaxBytes(n int64) Option {
	return func(c *Client) {
		c.maxBytes = n
	}
}

// New creates a new transport client.
func New(opts ...Option) *Client {
	c := &Client{
		http:     &http.Client{Timeout: DefaultHTTPTimeout},
		maxBytes: constants.MaxSpectrumBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HTTPClient returns the underlying http.Client.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Do performs an HTTP request with authentication applied.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.auth != nil {
		c.auth.Apply(req)
	}
	return c.http.Do(req.WithContext(ctx))
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", "GET "+url, err)
	}
	return c.Do(ctx, req)
}

// Fetch GETs url and returns the body. Non-2xx responses are errors.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, errors.WrapIO("fetch", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NewNotFoundError("spectrum", url)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.NewIOError("fetch", url, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, errors.WrapIO("read", url, err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, errors.NewIOError("read", url, fmt.Errorf("body exceeds %d bytes", c.maxBytes))
	}
	return body, nil
}
