// Package httploader fetches source objects from absolute http(s) URLs.
// It serves the requests tcaws.UseHTTPLoader routes away from the object store.
package httploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sagarc03/tcaws"
)

const (
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 20 * time.Second

	// DefaultMaxBodySize caps how much of a response body is read (32 MiB).
	DefaultMaxBodySize int64 = 32 << 20
)

// ErrBodyTooLarge is returned when a response exceeds the configured maximum size.
var ErrBodyTooLarge = errors.New("response body too large")

// Fetcher implements tcaws.Fetcher over net/http.
type Fetcher struct {
	httpClient  *http.Client
	maxBodySize int64
	userAgent   string
}

var _ tcaws.Fetcher = (*Fetcher)(nil)

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		f.httpClient.Timeout = timeout
	}
}

// WithMaxBodySize sets the largest response body accepted.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		maxBodySize: DefaultMaxBodySize,
		userAgent:   "tcaws",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads url into memory.
//
// Returns tcaws.ErrNotFound for 404 and 410, tcaws.ErrPermission for 401 and
// 403, tcaws.ErrUpstream for any other non-2xx status and tcaws.ErrNetwork
// when the request itself fails.
func (f *Fetcher) Fetch(ctx context.Context, url string) (tcaws.Object, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return tcaws.Object{}, fmt.Errorf("fetch: %w: not an http url: %q", tcaws.ErrInvalidInput, url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return tcaws.Object{}, fmt.Errorf("create request: %w: %w", tcaws.ErrInvalidInput, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return tcaws.Object{}, ctxErr
		}
		return tcaws.Object{}, fmt.Errorf("do request: %w: %w", tcaws.ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := statusError(resp.StatusCode); err != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return tcaws.Object{}, fmt.Errorf("fetch %s: %w", url, err)
	}

	if resp.ContentLength > f.maxBodySize {
		return tcaws.Object{}, fmt.Errorf("fetch %s: %w: %d bytes", url, ErrBodyTooLarge, resp.ContentLength)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return tcaws.Object{}, fmt.Errorf("read response: %w: %w", tcaws.ErrNetwork, err)
	}
	if int64(len(body)) > f.maxBodySize {
		return tcaws.Object{}, fmt.Errorf("fetch %s: %w", url, ErrBodyTooLarge)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = tcaws.DetectContentType(body)
	}

	var lastModified time.Time
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, parseErr := http.ParseTime(lm); parseErr == nil {
			lastModified = t
		}
	}

	return tcaws.Object{
		Key:          url,
		Body:         body,
		ContentType:  contentType,
		ETag:         strings.Trim(resp.Header.Get("ETag"), `"`),
		Size:         int64(len(body)),
		LastModified: lastModified,
	}, nil
}

func statusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound || code == http.StatusGone:
		return fmt.Errorf("%w: status %d", tcaws.ErrNotFound, code)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", tcaws.ErrPermission, code)
	default:
		return fmt.Errorf("%w: status %d", tcaws.ErrUpstream, code)
	}
}
