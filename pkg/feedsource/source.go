// Package feedsource enumerates feed entries from external providers.
package feedsource

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtnitsch/imgbot/models"
)

// ErrFeedNotFound is returned by Validate for feeds the provider does not
// know about.
var ErrFeedNotFound = errors.New("feed does not exist")

// Source lists the entries of a named feed in the provider's order.
type Source interface {
	Name() string
	List(ctx context.Context, feed string, sort models.Sort, limit int) ([]models.FeedEntry, error)
	Validate(ctx context.Context, feed string) error
}

// BytesFetcher is the part of the fetcher the sources need.
type BytesFetcher interface {
	GetBytes(ctx context.Context, rawURL string, limit int64) ([]byte, error)
}

// maxFeedBytes caps the size of a listing or feed document.
const maxFeedBytes int64 = 8 << 20

// New returns the source registered under name.
func New(name string, f BytesFetcher) (Source, error) {
	switch name {
	case "", "reddit":
		return NewReddit(f), nil
	case "rss":
		return NewRSS(f), nil
	default:
		return nil, &models.ConfigError{Field: "source", Value: name, Err: fmt.Errorf("expected reddit or rss")}
	}
}
