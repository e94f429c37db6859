package feedsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dtnitsch/imgbot/models"
	"github.com/dtnitsch/imgbot/pkg/fetcher"
)

const (
	DefaultRedditURL = "https://www.reddit.com"
	// maxRedditLimit is the largest page the listing API returns.
	maxRedditLimit = 100
)

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data post   `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type post struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Stickied bool   `json:"stickied"`
	IsSelf   bool   `json:"is_self"`
	Over18   bool   `json:"over_18"`
}

type about struct {
	Kind string `json:"kind"`
}

// Reddit lists subreddit posts through the public JSON listing endpoints.
type Reddit struct {
	fetcher BytesFetcher
	baseURL string
}

func NewReddit(f BytesFetcher) *Reddit {
	return &Reddit{fetcher: f, baseURL: DefaultRedditURL}
}

// WithBaseURL points the source at another host, e.g. a test server.
func (r *Reddit) WithBaseURL(base string) *Reddit {
	r.baseURL = base
	return r
}

func (r *Reddit) Name() string { return "reddit" }

func (r *Reddit) listingURL(feed string, sort models.Sort, limit int) string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("raw_json", "1")
	if sort.Period != "" {
		q.Set("t", sort.Period)
	}
	return fmt.Sprintf("%s/r/%s/%s.json?%s", r.baseURL, url.PathEscape(feed), sort.Order, q.Encode())
}

// List returns up to limit posts. Only the first page is read.
func (r *Reddit) List(ctx context.Context, feed string, sort models.Sort, limit int) ([]models.FeedEntry, error) {
	if sort.Order == "" {
		sort = models.DefaultSort
	}
	if limit <= 0 {
		return nil, nil
	}
	if limit > maxRedditLimit {
		limit = maxRedditLimit
	}

	data, err := r.fetcher.GetBytes(ctx, r.listingURL(feed, sort, limit), maxFeedBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to list r/%s: %w", feed, err)
	}

	var l listing
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to decode r/%s listing: %w", feed, err)
	}
	if l.Kind != "Listing" {
		return nil, fmt.Errorf("unexpected response kind %q for r/%s", l.Kind, feed)
	}

	entries := make([]models.FeedEntry, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		p := child.Data
		entries = append(entries, models.FeedEntry{
			TargetURL:     p.URL,
			Title:         p.Title,
			IsPinned:      p.Stickied,
			IsSelfContent: p.IsSelf,
			IsRestricted:  p.Over18,
		})
		if len(entries) == limit {
			break
		}
	}
	return entries, nil
}

// Validate checks that the subreddit exists. Unknown names either 404 or
// redirect to a search listing.
func (r *Reddit) Validate(ctx context.Context, feed string) error {
	data, err := r.fetcher.GetBytes(ctx, fmt.Sprintf("%s/r/%s/about.json", r.baseURL, url.PathEscape(feed)), maxFeedBytes)
	if err != nil {
		var statusErr *fetcher.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return fmt.Errorf("r/%s: %w", feed, ErrFeedNotFound)
		}
		return fmt.Errorf("failed to look up r/%s: %w", feed, err)
	}

	var a about
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("failed to decode r/%s: %w", feed, err)
	}
	if a.Kind != "t5" {
		return fmt.Errorf("r/%s: %w", feed, ErrFeedNotFound)
	}
	return nil
}
