package feedsource

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/dtnitsch/imgbot/models"
	"github.com/mmcdole/gofeed"
)

// RSS reads entries from an RSS or Atom feed URL. Feeds carry no pinned,
// self or restricted flags, and only the publisher's own order exists, so
// the sort is ignored.
type RSS struct {
	fetcher BytesFetcher
}

func NewRSS(f BytesFetcher) *RSS {
	return &RSS{fetcher: f}
}

func (r *RSS) Name() string { return "rss" }

func (r *RSS) parse(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	data, err := r.fetcher.GetBytes(ctx, feedURL, maxFeedBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", feedURL, err)
	}
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
	}
	return feed, nil
}

func (r *RSS) List(ctx context.Context, feedURL string, _ models.Sort, limit int) ([]models.FeedEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	feed, err := r.parse(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	entries := make([]models.FeedEntry, 0, min(limit, len(feed.Items)))
	for _, item := range feed.Items {
		target := itemTarget(item)
		entries = append(entries, models.FeedEntry{
			TargetURL:     target,
			Title:         strings.TrimSpace(item.Title),
			IsSelfContent: target == "",
		})
		if len(entries) == limit {
			break
		}
	}
	return entries, nil
}

func (r *RSS) Validate(ctx context.Context, feedURL string) error {
	_, err := r.parse(ctx, feedURL)
	return err
}

// itemTarget prefers an image enclosure, then the item image, then the link.
func itemTarget(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	return strings.TrimSpace(item.Link)
}
