package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/proxy"

	"github.com/sakya146/termscan/internal/model"
)

// ErrTooManyRedirects is returned when a fetch exceeds the redirect limit.
var ErrTooManyRedirects = errors.New("stopped after too many redirects")

// maxRedirects bounds redirect chains during a fetch.
const maxRedirects = 10

// Fetcher performs HTTP page fetches.
//
// Design decision: We use a struct holding the http.Client rather than
// passing the client on each call because:
//  1. Client configuration (proxy, timeouts) should be consistent
//  2. Connection pooling works better with a shared client
//  3. Easier to test with a custom transport
type Fetcher struct {
	// client is the configured HTTP client.
	client *http.Client

	// userAgent is the User-Agent header sent with requests.
	userAgent string

	// maxBodySize limits the response body size to prevent memory
	// exhaustion from unexpectedly large pages.
	maxBodySize int64

	// headers are extra request headers, e.g. from per-host config.
	headers map[string]string

	// cookie is an optional Cookie header value for sites that gate
	// their footer links behind a session.
	cookie string

	// timeout is the per-request timeout.
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher) error

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) error {
		f.userAgent = ua
		return nil
	}
}

// WithMaxBodySize sets the maximum response body size in bytes.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) error {
		if size > 0 {
			f.maxBodySize = size
		}
		return nil
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) error {
		if timeout > 0 {
			f.timeout = timeout
		}
		return nil
	}
}

// WithHeaders sets extra request headers applied to every fetch.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) error {
		f.headers = headers
		return nil
	}
}

// WithCookie sets a Cookie header value applied to every fetch.
func WithCookie(cookie string) Option {
	return func(f *Fetcher) error {
		f.cookie = cookie
		return nil
	}
}

// WithSOCKSProxy routes all fetches through a SOCKS5 proxy at the given
// "host:port" address. No authentication is used, matching the common
// local-proxy setup (e.g. a corporate egress proxy).
func WithSOCKSProxy(address string) Option {
	return func(f *Fetcher) error {
		dialer, err := proxy.SOCKS5("tcp", address, nil, proxy.Direct)
		if err != nil {
			return fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		f.client.Transport = &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				// x/net/proxy dialers are not context-aware; honor
				// cancellation by checking before dialing.
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				default:
				}
				return dialer.Dial(network, addr)
			},
		}
		return nil
	}
}

// New creates a Fetcher with the given options.
func New(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		client:      &http.Client{},
		userAgent:   "termscan/1.0 (+https://github.com/sakya146/termscan)",
		maxBodySize: 5 * 1024 * 1024, // 5MB
		timeout:     30 * time.Second,
	}

	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}

	f.client.Timeout = f.timeout
	f.client.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return ErrTooManyRedirects
		}
		return nil
	}

	return f, nil
}

// Fetch retrieves the page at rawURL.
// The response body is read up to the configured size cap; a non-2xx
// status is not an error, the caller decides what to do with it.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*model.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &model.Page{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		Hash:        model.HashBody(body),
	}, nil
}
