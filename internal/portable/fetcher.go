package portable

import (
	"io"
	"net/http"
	"strings"
)

// Fetcher downloads and installs portable distributions.
type Fetcher struct {
	httpClient *http.Client
	mirror     string
	progress   io.Writer
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithMirror sets a mirror base URL. The archive file name is appended to it.
func WithMirror(mirror string) Option {
	return func(f *Fetcher) {
		f.mirror = mirror
	}
}

// WithProgress sets where download progress is reported. Nil disables it.
func WithProgress(w io.Writer) Option {
	return func(f *Fetcher) {
		f.progress = w
	}
}

// New creates a Fetcher with the given options.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SourceURL returns the URL the distribution is fetched from, honoring the
// configured mirror.
func (f *Fetcher) SourceURL(d Distribution) string {
	if f.mirror == "" {
		return d.URL
	}
	name := d.URL[strings.LastIndex(d.URL, "/")+1:]
	return strings.TrimRight(f.mirror, "/") + "/" + name
}
