package transport

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/sedmap/pkg/errors"
)

func newMockedClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c := New(opts...)
	httpmock.ActivateNonDefault(c.HTTPClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestNewDefaults(t *testing.T) {
	c := New()
	assert.Equal(t, DefaultHTTPTimeout, c.HTTPClient().Timeout)

	c = New(WithTimeout(5 * time.Second))
	assert.Equal(t, 5*time.Second, c.HTTPClient().Timeout)

	c = New(WithTimeout(0))
	assert.Equal(t, DefaultHTTPTimeout, c.HTTPClient().Timeout)
}

func TestFetch(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, "https://archive.example.org/twa27.txt",
		httpmock.NewStringResponder(200, "1.0 2.0\n"))

	body, err := c.Fetch(context.Background(), "https://archive.example.org/twa27.txt")
	require.NoError(t, err)
	assert.Equal(t, "1.0 2.0\n", string(body))
}

func TestFetchNotFound(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, "https://archive.example.org/missing.txt",
		httpmock.NewStringResponder(404, "no"))

	_, err := c.Fetch(context.Background(), "https://archive.example.org/missing.txt")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestFetchServerError(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, "https://archive.example.org/boom.txt",
		httpmock.NewStringResponder(500, "boom"))

	_, err := c.Fetch(context.Background(), "https://archive.example.org/boom.txt")
	require.Error(t, err)

	var ioErr *errors.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Contains(t, ioErr.Error(), "unexpected status 500")
}

func TestFetchTooLarge(t *testing.T) {
	c := newMockedClient(t, WithMaxBytes(4))
	httpmock.RegisterResponder(http.MethodGet, "https://archive.example.org/big.txt",
		httpmock.NewStringResponder(200, "123456789"))

	_, err := c.Fetch(context.Background(), "https://archive.example.org/big.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 4 bytes")
}

func TestFetchAppliesAuth(t *testing.T) {
	c := newMockedClient(t, WithAuth(Bearer("secret")))
	httpmock.RegisterResponder(http.MethodGet, "https://archive.example.org/private.txt",
		func(req *http.Request) (*http.Response, error) {
			if req.Header.Get("Authorization") != "Bearer secret" {
				return httpmock.NewStringResponse(401, "denied"), nil
			}
			return httpmock.NewStringResponse(200, "ok"), nil
		})

	body, err := c.Fetch(context.Background(), "https://archive.example.org/private.txt")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}
