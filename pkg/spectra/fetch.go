package spectra

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/sedmap/internal/transport"
	"github.com/agentstation/sedmap/pkg/errors"
)

// Fetcher retrieves the raw bytes of a payload.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, rawURL string) ([]byte, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	return f(ctx, rawURL)
}

// FileFetcher reads local files. Relative paths resolve against BaseDir.
type FileFetcher struct {
	BaseDir string
}

// Fetch implements Fetcher.
func (f FileFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := rawURL
	if strings.HasPrefix(rawURL, "file://") {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, errors.NewValidationError("url", rawURL, err.Error())
		}
		p = u.Path
	}
	if !filepath.IsAbs(p) && f.BaseDir != "" {
		p = filepath.Join(f.BaseDir, p)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("spectrum", p)
		}
		return nil, errors.WrapIO("read", p, err)
	}
	return data, nil
}

// HTTPFetcher fetches over HTTP(S) with a transport client.
type HTTPFetcher struct {
	Client *transport.Client
}

// Fetch implements Fetcher.
func (f HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = transport.New()
	}
	return client.Fetch(ctx, rawURL)
}

// scheme returns the lower-cased URL scheme, "file" for bare paths.
func scheme(rawURL string) (string, error) {
	if rawURL == "" {
		return "", errors.NewValidationError("url", rawURL, "empty payload location")
	}
	i := strings.Index(rawURL, "://")
	if i <= 1 {
		// bare path, or a Windows drive letter
		return "file", nil
	}
	s := strings.ToLower(rawURL[:i])
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return "", errors.NewValidationError("url", rawURL, fmt.Sprintf("invalid scheme %q", s))
		}
	}
	return s, nil
}
