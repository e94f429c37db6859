// Package resolver turns the target URL of a feed entry into something that
// can be downloaded: a direct media file, an album archive, or a failure.
package resolver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/dtnitsch/imgbot/pkg/fetcher"
	"github.com/dtnitsch/imgbot/pkg/rules"
	"github.com/go-shiori/go-readability"
)

var (
	// ErrUnreachable means the page could not be fetched.
	ErrUnreachable = errors.New("unreachable")
	// ErrUnresolvable means the page was fetched but held no media link.
	ErrUnresolvable = errors.New("unresolvable")
)

// mediaExtensions are recognised as direct media without a request.
var mediaExtensions = []string{".png", ".gif", ".gifv", ".jpg", ".jpeg"}

// gifExtensions are the animated subset of mediaExtensions.
var gifExtensions = []string{".gif", ".gifv"}

const (
	albumMarker = "/a/"
	albumSuffix = "/zip"
)

// PageFetcher fetches and parses an HTML page.
type PageFetcher interface {
	GetHtml(ctx context.Context, rawURL string) (*fetcher.Page, error)
}

// Resolver maps post URLs to media URLs. It holds no per-call state and is
// safe for concurrent use.
type Resolver struct {
	pages       PageFetcher
	rules       *rules.Table
	readability bool
	logger      *slog.Logger
}

type Option func(*Resolver)

// WithReadabilityFallback uses the page's lead image when the extraction
// rule finds nothing.
func WithReadabilityFallback(enabled bool) Option {
	return func(r *Resolver) {
		r.readability = enabled
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func New(pages PageFetcher, table *rules.Table, opts ...Option) *Resolver {
	if table == nil {
		table = rules.Defaults()
	}
	r := &Resolver{
		pages:  pages,
		rules:  table,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve classifies rawURL. Direct media and albums are recognised from
// the URL text alone. Anything else costs exactly one GET, and the link
// found on that page is returned as is, without being resolved again.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) Result {
	if IsDirectMedia(rawURL) {
		return DirectMedia(rawURL)
	}
	if IsAlbum(rawURL) {
		return Album(strings.TrimRight(rawURL, "/") + albumSuffix)
	}

	target := Normalize(rawURL)
	page, err := r.pages.GetHtml(ctx, target)
	if err != nil {
		r.logger.Debug("Page fetch failed", "url", target, "error", err)
		return Unreachable(fmt.Errorf("%w: %s: %w", ErrUnreachable, target, err))
	}

	host := page.URL.Hostname()
	link, ok := r.rules.Extract(host, page.Doc)
	if !ok && r.readability {
		link, ok = leadImage(page)
		if ok {
			r.logger.Debug("Using readability lead image", "url", target, "image", link)
		}
	}
	if !ok {
		rule := r.rules.Lookup(host)
		return Unresolvable(fmt.Errorf("%w: no %s in %s on %s", ErrUnresolvable, rule.LinkAttribute, rule.Selector(), target))
	}

	return DirectMedia(absolute(page.URL, link))
}

func leadImage(page *fetcher.Page) (string, bool) {
	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(page.Raw), page.URL)
	if err != nil || strings.TrimSpace(article.Image) == "" {
		return "", false
	}
	return strings.TrimSpace(article.Image), true
}

// absolute resolves protocol-relative and relative links against the page.
func absolute(base *url.URL, link string) string {
	ref, err := url.Parse(link)
	if err != nil || ref.IsAbs() {
		return link
	}
	return base.ResolveReference(ref).String()
}

// Normalize prepends http:// to URLs without a scheme. Some sites post
// links as "imgur.com/abc" or "//imgur.com/abc".
func Normalize(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if strings.HasPrefix(rawURL, "//") {
		return "http:" + rawURL
	}
	lower := strings.ToLower(rawURL)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return rawURL
	}
	return "http://" + rawURL
}

// urlPath returns the lower-cased path of rawURL, or the whole string when
// it does not parse.
func urlPath(rawURL string) string {
	u, err := url.Parse(Normalize(rawURL))
	if err != nil {
		return strings.ToLower(rawURL)
	}
	return strings.ToLower(u.Path)
}

func hasSuffix(rawURL string, suffixes []string) bool {
	p := urlPath(rawURL)
	for _, ext := range suffixes {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

// IsDirectMedia reports whether the URL path ends in an image extension.
func IsDirectMedia(rawURL string) bool {
	return hasSuffix(rawURL, mediaExtensions)
}

// IsGif reports whether the URL path ends in .gif or .gifv.
func IsGif(rawURL string) bool {
	return hasSuffix(rawURL, gifExtensions)
}

// IsAlbum reports whether the URL path holds the /a/ album segment.
func IsAlbum(rawURL string) bool {
	return strings.Contains(urlPath(rawURL), albumMarker)
}
