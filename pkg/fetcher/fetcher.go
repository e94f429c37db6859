package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "imgbot/1.0 (media downloader; github.com/dtnitsch/imgbot)"
	// DefaultMaxPageBytes caps the HTML pages read by GetHtml.
	DefaultMaxPageBytes int64 = 8 << 20
)

// ErrTooLarge is returned when a body exceeds its size limit.
var ErrTooLarge = errors.New("response body too large")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch %s, status code: %d", e.URL, e.StatusCode)
}

// Page is a fetched HTML document together with the URL it was finally
// served from, after redirects.
type Page struct {
	URL *url.URL
	Doc *goquery.Document
	Raw []byte
}

// Fetcher performs GET requests with one shared client. It is safe for
// concurrent use.
type Fetcher struct {
	client       *http.Client
	userAgent    string
	maxPageBytes int64
}

type Option func(*Fetcher)

// WithTimeout bounds every request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxPageBytes changes the size cap applied by GetHtml.
func WithMaxPageBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxPageBytes = n
		}
	}
}

// WithClient replaces the HTTP client. The client's timeout is kept as is.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:       &http.Client{Timeout: DefaultTimeout},
		userAgent:    DefaultUserAgent,
		maxPageBytes: DefaultMaxPageBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) do(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

// Open issues a GET and returns the streaming body. The caller closes it.
func (f *Fetcher) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	resp, err := f.do(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// GetBytes reads the whole body. A limit above zero caps the body size.
func (f *Fetcher) GetBytes(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	resp, err := f.do(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if limit > 0 {
		if resp.ContentLength > limit {
			return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
		}
		body = io.LimitReader(resp.Body, limit+1)
	}

	bodyBytes, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if limit > 0 && int64(len(bodyBytes)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return bodyBytes, nil
}

// GetHtml fetches a page and parses it as HTML. Pages larger than the
// page cap fail with ErrTooLarge.
func (f *Fetcher) GetHtml(ctx context.Context, rawURL string) (*Page, error) {
	resp, err := f.do(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, f.maxPageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(bodyBytes)) > f.maxPageBytes {
		return nil, fmt.Errorf("%w: page %s is more than %d bytes", ErrTooLarge, rawURL, f.maxPageBytes)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	final := resp.Request.URL
	if final == nil {
		final, _ = url.Parse(rawURL)
	}
	return &Page{URL: final, Doc: doc, Raw: bodyBytes}, nil
}
