package download

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dtnitsch/imgbot/models"
	"github.com/dtnitsch/imgbot/pkg/dispatcher"
	"github.com/dtnitsch/imgbot/pkg/feedsource"
)

// FeedDispatcher runs the entries of one feed.
type FeedDispatcher interface {
	Dispatch(ctx context.Context, entries []models.FeedEntry, opts models.DownloadOptions, report dispatcher.Reporter) []dispatcher.Report
}

// FeedReporter receives entry reports and feed completions as they happen.
// Calls may come from several workers at once.
type FeedReporter interface {
	Entry(feed string, r dispatcher.Report)
	Finished(result Result)
}

type runner struct {
	logger     *slog.Logger
	config     *models.DownloadConfig
	source     feedsource.Source
	dispatcher FeedDispatcher
	reporter   FeedReporter
}

// run downloads every configured feed. A single feed runs inline; several
// feeds are spread over a bounded pool, one job per feed, and each is
// validated first so unknown names are skipped. Results come back in
// command-line order.
func run(ctx context.Context, r *runner) []Result {
	feeds := r.config.Feeds
	if len(feeds) == 0 {
		return nil
	}
	if len(feeds) == 1 {
		return []Result{r.processFeed(ctx, 0, Job{Index: 0, Feed: feeds[0]}, false)}
	}

	workers := r.config.WorkerCount
	if workers < 1 {
		workers = 1
	}
	if workers > len(feeds) {
		workers = len(feeds)
	}

	r.logger.Info("Starting concurrent download phase", "feed_count", len(feeds), "workers", workers)
	var wg sync.WaitGroup
	jobs := make(chan Job, len(feeds))
	results := make(chan Result, len(feeds))

	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go r.worker(ctx, w, &wg, jobs, results)
	}

	for i, feed := range feeds {
		jobs <- Job{Index: i, Feed: feed}
	}
	close(jobs)

	wg.Wait()
	close(results)
	r.logger.Info("All download workers finished")

	all := make([]Result, 0, len(feeds))
	for result := range results {
		all = append(all, result)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Index < all[j].Index
	})
	return all
}

func (r *runner) worker(ctx context.Context, id int, wg *sync.WaitGroup, jobs <-chan Job, results chan<- Result) {
	defer wg.Done()
	for job := range jobs {
		results <- r.processFeed(ctx, id, job, true)
	}
}

func (r *runner) processFeed(ctx context.Context, id int, job Job, validate bool) (result Result) {
	logger := r.logger.With("worker_id", id, "feed", job.Feed)
	start := time.Now()
	result = Result{Index: job.Index, Feed: job.Feed}
	defer func() {
		result.Elapsed = time.Since(start)
		if r.reporter != nil {
			r.reporter.Finished(result)
		}
	}()

	order, err := models.ParseSort(r.config.Sort)
	if err != nil {
		logger.Error("Invalid sort", "sort", r.config.Sort, "error", err)
		result.Error = err
		return result
	}

	if validate {
		if err := r.source.Validate(ctx, job.Feed); err != nil {
			logger.Warn("Skipping feed", "error", err)
			result.Error = err
			return result
		}
	}

	logger.Info("Listing feed", "source", r.source.Name(), "sort", order.String(), "limit", r.config.Limit)
	entries, err := r.source.List(ctx, job.Feed, order, r.config.Limit)
	if err != nil {
		logger.Error("Error listing feed", "error", err)
		result.Error = fmt.Errorf("failed to list %s: %w", job.Feed, err)
		return result
	}

	result.Reports = r.dispatcher.Dispatch(ctx, entries, r.config.Options, func(rep dispatcher.Report) {
		if r.reporter != nil {
			r.reporter.Entry(job.Feed, rep)
		}
	})
	logger.Info("Finished feed", "entries", len(entries), "elapsed", time.Since(start).String())
	return result
}
