package spectra

import (
	"context"
	"net/url"

	"github.com/agentstation/sedmap/internal/transport"
	"github.com/agentstation/sedmap/pkg/errors"
)

// Reader resolves payload URLs to decoded spectra.
type Reader struct {
	fetchers map[string]Fetcher
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithFetcher registers f for a URL scheme, replacing any existing one.
func WithFetcher(scheme string, f Fetcher) ReaderOption {
	return func(r *Reader) {
		r.fetchers[scheme] = f
	}
}

// WithBaseDir resolves relative local paths against dir.
func WithBaseDir(dir string) ReaderOption {
	return WithFetcher("file", FileFetcher{BaseDir: dir})
}

// WithHTTPClient fetches http and https URLs with c.
func WithHTTPClient(c *transport.Client) ReaderOption {
	return func(r *Reader) {
		f := HTTPFetcher{Client: c}
		r.fetchers["http"] = f
		r.fetchers["https"] = f
	}
}

// NewReader returns a Reader handling local files and HTTP(S). S3 support
// is added with WithFetcher("s3", store).
func NewReader(opts ...ReaderOption) *Reader {
	web := HTTPFetcher{Client: transport.New()}
	r := &Reader{fetchers: map[string]Fetcher{
		"file":  FileFetcher{},
		"http":  web,
		"https": web,
	}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read fetches and decodes the payload at rawURL.
func (r *Reader) Read(ctx context.Context, rawURL string) (*Spectrum, error) {
	s, err := scheme(rawURL)
	if err != nil {
		return nil, err
	}
	fetcher, ok := r.fetchers[s]
	if !ok {
		return nil, errors.NewResourceError("fetch", "spectrum", rawURL, errors.ErrUnsupported)
	}

	// Reject unknown formats before any network round trip.
	name := rawURL
	if s != "file" {
		if u, err := url.Parse(rawURL); err == nil {
			name = u.Path
		}
	}
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}
	if !format.Supported() {
		return nil, errors.NewParseError(string(format), name, "format not supported", errors.ErrUnsupported)
	}

	data, err := fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	spec, err := Decode(name, data)
	if err != nil {
		return nil, err
	}
	spec.URL = rawURL
	return spec, nil
}
