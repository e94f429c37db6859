// Package dispatcher filters, resolves, fetches and saves the entries of a
// feed, producing one outcome per entry in feed order.
package dispatcher

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/dtnitsch/imgbot/models"
	"github.com/dtnitsch/imgbot/pkg/fetcher"
	"github.com/dtnitsch/imgbot/pkg/resolver"
	"github.com/dtnitsch/imgbot/pkg/storage"
)

// Resolver classifies an entry's target URL.
type Resolver interface {
	Resolve(ctx context.Context, rawURL string) resolver.Result
}

// Downloader retrieves resolved media.
type Downloader interface {
	Open(ctx context.Context, rawURL string) (io.ReadCloser, error)
	GetBytes(ctx context.Context, rawURL string, limit int64) ([]byte, error)
}

// Report pairs an entry with its terminal outcome.
type Report struct {
	Entry   models.FeedEntry
	Outcome models.Outcome
}

// Reporter is called once per entry, in processing order.
type Reporter func(Report)

type Dispatcher struct {
	resolver Resolver
	fetcher  Downloader
	storage  *storage.Storage
	limits   storage.ArchiveLimits
	logger   *slog.Logger
}

type Option func(*Dispatcher)

func WithArchiveLimits(l storage.ArchiveLimits) Option {
	return func(d *Dispatcher) {
		d.limits = l
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func New(r Resolver, f Downloader, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		resolver: r,
		fetcher:  f,
		storage:  &storage.Storage{},
		limits:   storage.DefaultArchiveLimits(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch processes entries one at a time in the order given. A failing
// entry never stops the ones after it, and nothing is retried.
func (d *Dispatcher) Dispatch(ctx context.Context, entries []models.FeedEntry, opts models.DownloadOptions, report Reporter) []Report {
	reports := make([]Report, 0, len(entries))
	for _, entry := range entries {
		r := Report{Entry: entry, Outcome: d.DispatchEntry(ctx, entry, opts)}
		d.log(r)
		if report != nil {
			report(r)
		}
		reports = append(reports, r)
	}
	return reports
}

// DispatchEntry runs one entry through the filters and, if it survives
// them, fetches and stores it. Local checks run before any request; the
// album and gif filters need the resolved URL and run after resolution.
func (d *Dispatcher) DispatchEntry(ctx context.Context, entry models.FeedEntry, opts models.DownloadOptions) models.Outcome {
	if entry.IsSelfContent || entry.IsPinned {
		return models.Skipped(models.ReasonSelfOrPinned)
	}
	if entry.IsRestricted && !opts.IncludeRestricted {
		return models.Skipped(models.ReasonRestricted)
	}

	res := d.resolver.Resolve(ctx, entry.TargetURL)
	switch res.Kind {
	case resolver.KindUnreachable:
		return models.Failed(models.ReasonUnreachable, res.Err)
	case resolver.KindUnresolvable:
		return models.Failed(models.ReasonUnresolvable, res.Err)
	}

	var out models.Outcome
	switch {
	case res.Kind == resolver.KindAlbum && !opts.IncludeAlbums:
		out = models.Skipped(models.ReasonAlbumExcluded)
	case resolver.IsGif(res.URL) && !opts.IncludeGifs:
		out = models.Skipped(models.ReasonGifExcluded)
	case res.Kind == resolver.KindAlbum:
		out = d.fetchAlbum(ctx, res.URL, opts.Destination)
	default:
		out = d.fetchMedia(ctx, res.URL, opts.Destination)
	}
	out.Location = res.URL
	return out
}

func (d *Dispatcher) fetchMedia(ctx context.Context, mediaURL, dest string) models.Outcome {
	body, err := d.fetcher.Open(ctx, resolver.Normalize(mediaURL))
	if err != nil {
		return models.Failed(models.ReasonFetchError, err)
	}
	defer body.Close()

	n, err := d.storage.SaveStream(destination(dest), storage.FileNameFromURL(mediaURL), body)
	if err != nil {
		return models.Failed(models.ReasonFetchError, err)
	}
	return models.Saved(n)
}

func (d *Dispatcher) fetchAlbum(ctx context.Context, archiveURL, dest string) models.Outcome {
	data, err := d.fetcher.GetBytes(ctx, resolver.Normalize(archiveURL), d.limits.MaxBytes)
	if errors.Is(err, fetcher.ErrTooLarge) {
		return models.Failed(models.ReasonBadArchive, err)
	}
	if err != nil {
		return models.Failed(models.ReasonFetchError, err)
	}

	n, names, err := d.storage.ExtractArchive(destination(dest), data, d.limits)
	if errors.Is(err, storage.ErrBadArchive) {
		return models.Failed(models.ReasonBadArchive, err)
	}
	if err != nil {
		return models.Failed(models.ReasonFetchError, err)
	}
	d.logger.Debug("Extracted album", "url", archiveURL, "files", len(names))
	return models.Saved(n)
}

func destination(dest string) string {
	if dest == "" {
		return "."
	}
	return dest
}

func (d *Dispatcher) log(r Report) {
	o := r.Outcome
	switch o.Kind {
	case models.OutcomeSaved:
		d.logger.Info("Downloaded", "title", r.Entry.Title, "url", o.Location, "bytes", o.Bytes)
	case models.OutcomeSkipped:
		d.logger.Info("Ignoring", "title", r.Entry.Title, "url", r.Entry.TargetURL, "reason", o.Reason)
	default:
		d.logger.Warn("Failed", "title", r.Entry.Title, "url", r.Entry.TargetURL, "reason", o.Reason, "error", o.Err)
	}
}
