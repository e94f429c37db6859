package download

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dtnitsch/imgbot/models"
	"github.com/dtnitsch/imgbot/pkg/dispatcher"
	"github.com/dtnitsch/imgbot/pkg/manifest"
	"github.com/dustin/go-humanize"
)

// skipLabels names what was ignored, per skip reason.
var skipLabels = map[string]string{
	models.ReasonSelfOrPinned:  "self or pinned post",
	models.ReasonRestricted:    "NSFW post",
	models.ReasonAlbumExcluded: "album",
	models.ReasonGifExcluded:   "gif",
}

// FormatEntryLine renders one report as a progress line.
func FormatEntryLine(r dispatcher.Report) string {
	o := r.Outcome
	switch o.Kind {
	case models.OutcomeSaved:
		return fmt.Sprintf("[+] Downloaded %s (%s)", r.Entry.Title, humanize.Bytes(uint64(o.Bytes)))
	case models.OutcomeSkipped:
		label, ok := skipLabels[o.Reason]
		if !ok {
			label = o.Reason
		}
		return fmt.Sprintf("[-] Ignoring %s: %s", label, r.Entry.Title)
	default:
		return fmt.Sprintf("[-] Failed (%s): %s <%s>", o.Reason, r.Entry.Title, r.Entry.TargetURL)
	}
}

// FormatFinishedLine renders the per-feed completion line.
func FormatFinishedLine(result Result) string {
	if result.Error != nil {
		return fmt.Sprintf("[-] Skipped %s: %v", result.Feed, result.Error)
	}
	return fmt.Sprintf("Finished downloading from %s in %.2f seconds", result.Feed, result.Elapsed.Seconds())
}

// lineReporter writes progress lines as entries complete. Lines from
// different feeds interleave but are never torn.
type lineReporter struct {
	mu sync.Mutex
	w  io.Writer
}

func newLineReporter(w io.Writer) *lineReporter {
	return &lineReporter{w: w}
}

func (l *lineReporter) Entry(_ string, r dispatcher.Report) {
	l.println(FormatEntryLine(r))
}

func (l *lineReporter) Finished(result Result) {
	l.println(FormatFinishedLine(result))
}

func (l *lineReporter) println(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, line)
}

func BuildEntryOutput(r dispatcher.Report) EntryOutput {
	o := r.Outcome
	out := EntryOutput{
		Title:    r.Entry.Title,
		URL:      r.Entry.TargetURL,
		Status:   o.Kind.String(),
		Reason:   o.Reason,
		Location: o.Location,
	}
	if o.Kind == models.OutcomeSaved {
		out.Bytes = o.Bytes
		out.Size = humanize.Bytes(uint64(o.Bytes))
	}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	return out
}

func BuildFeedOutput(result Result) FeedOutput {
	out := FeedOutput{
		Feed:           result.Feed,
		Status:         "success",
		ElapsedSeconds: result.Elapsed.Seconds(),
	}
	if result.Error != nil {
		out.Status = "failed"
		out.Error = result.Error.Error()
		return out
	}
	out.Entries = make([]EntryOutput, 0, len(result.Reports))
	for _, r := range result.Reports {
		out.Entries = append(out.Entries, BuildEntryOutput(r))
	}
	return out
}

// BuildFinalOutput summarizes a run. Status is "success" when every feed was
// listed, "partial_failure" when some were not and "failed" when none were.
func BuildFinalOutput(runID string, results []Result, elapsed time.Duration) *FinalOutput {
	final := &FinalOutput{
		RunID: runID,
		Feeds: make([]FeedOutput, 0, len(results)),
	}
	stats := Stats{Feeds: len(results), TotalTimeSeconds: elapsed.Seconds()}

	for _, result := range results {
		final.Feeds = append(final.Feeds, BuildFeedOutput(result))
		if result.Error != nil {
			stats.FailedFeeds++
			continue
		}
		for _, r := range result.Reports {
			stats.Entries++
			switch r.Outcome.Kind {
			case models.OutcomeSaved:
				stats.Saved++
				stats.Bytes += r.Outcome.Bytes
			case models.OutcomeSkipped:
				stats.Skipped++
			default:
				stats.Failed++
			}
		}
	}
	stats.Size = humanize.Bytes(uint64(stats.Bytes))
	final.Stats = stats

	switch {
	case stats.FailedFeeds == 0:
		final.Status = "success"
	case stats.FailedFeeds < stats.Feeds:
		final.Status = "partial_failure"
	default:
		final.Status = "failed"
	}
	return final
}

// FormatTotals renders the closing line of a text run.
func FormatTotals(final *FinalOutput) string {
	s := final.Stats
	return fmt.Sprintf("Saved %d, skipped %d, failed %d of %d entries (%s) in %s",
		s.Saved, s.Skipped, s.Failed, s.Entries, s.Size,
		humanize.FtoaWithDigits(s.TotalTimeSeconds, 2)+"s")
}

// ManifestResults flattens feed results into manifest rows, feeds in
// command-line order and entries in feed order.
func ManifestResults(results []Result) []manifest.EntryResult {
	var rows []manifest.EntryResult
	for _, result := range results {
		for _, r := range result.Reports {
			rows = append(rows, manifest.EntryResult{Feed: result.Feed, Entry: r.Entry, Outcome: r.Outcome})
		}
	}
	return rows
}
