package download

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dtnitsch/imgbot/models"
	"github.com/dtnitsch/imgbot/pkg/dispatcher"
	"github.com/dtnitsch/imgbot/pkg/feedsource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func report(title string, o models.Outcome) dispatcher.Report {
	return dispatcher.Report{
		Entry:   models.FeedEntry{Title: title, TargetURL: "http://imgur.com/" + title},
		Outcome: o,
	}
}

func TestFormatEntryLine(t *testing.T) {
	tests := []struct {
		name string
		rep  dispatcher.Report
		want string
	}{
		{name: "saved", rep: report("cat", models.Saved(2048)), want: "[+] Downloaded cat (2.0 kB)"},
		{name: "album", rep: report("trip", models.Skipped(models.ReasonAlbumExcluded)), want: "[-] Ignoring album: trip"},
		{name: "gif", rep: report("dance", models.Skipped(models.ReasonGifExcluded)), want: "[-] Ignoring gif: dance"},
		{name: "restricted", rep: report("oops", models.Skipped(models.ReasonRestricted)), want: "[-] Ignoring NSFW post: oops"},
		{name: "self", rep: report("rules", models.Skipped(models.ReasonSelfOrPinned)), want: "[-] Ignoring self or pinned post: rules"},
		{
			name: "failed",
			rep:  report("gone", models.Failed(models.ReasonUnreachable, errors.New("404"))),
			want: "[-] Failed (unreachable): gone <http://imgur.com/gone>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatEntryLine(tt.rep))
		})
	}
}

func TestFormatFinishedLine(t *testing.T) {
	line := FormatFinishedLine(Result{Feed: "pics", Elapsed: 1500 * time.Millisecond})
	assert.Equal(t, "Finished downloading from pics in 1.50 seconds", line)

	line = FormatFinishedLine(Result{Feed: "nope", Error: feedsource.ErrFeedNotFound})
	assert.Equal(t, "[-] Skipped nope: feed does not exist", line)
}

func TestLineReporterKeepsLinesWhole(t *testing.T) {
	var buf bytes.Buffer
	lr := newLineReporter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				lr.Entry("pics", report("cat", models.Saved(10)))
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 400)
	for _, line := range lines {
		assert.Equal(t, "[+] Downloaded cat (10 B)", line)
	}
}

func TestBuildFinalOutput(t *testing.T) {
	results := []Result{
		{Index: 0, Feed: "pics", Elapsed: time.Second, Reports: []dispatcher.Report{
			report("a", models.Saved(1000)),
			report("b", models.Skipped(models.ReasonRestricted)),
			report("c", models.Failed(models.ReasonUnresolvable, errors.New("no element"))),
		}},
		{Index: 1, Feed: "nope", Error: feedsource.ErrFeedNotFound},
	}

	final := BuildFinalOutput("run-1", results, 2*time.Second)
	assert.Equal(t, "partial_failure", final.Status)
	assert.Equal(t, "run-1", final.RunID)
	assert.Equal(t, Stats{
		Feeds:            2,
		FailedFeeds:      1,
		Entries:          3,
		Saved:            1,
		Skipped:          1,
		Failed:           1,
		Bytes:            1000,
		Size:             "1.0 kB",
		TotalTimeSeconds: 2,
	}, final.Stats)

	require.Len(t, final.Feeds, 2)
	assert.Equal(t, "success", final.Feeds[0].Status)
	assert.Equal(t, "saved", final.Feeds[0].Entries[0].Status)
	assert.Equal(t, "1.0 kB", final.Feeds[0].Entries[0].Size)
	assert.Equal(t, "restricted", final.Feeds[0].Entries[1].Reason)
	assert.Equal(t, "no element", final.Feeds[0].Entries[2].Error)
	assert.Equal(t, "failed", final.Feeds[1].Status)
	assert.Empty(t, final.Feeds[1].Entries)

	data, err := yaml.Marshal(final)
	require.NoError(t, err)
	assert.Contains(t, string(data), "status: partial_failure")

	assert.Equal(t, "success", BuildFinalOutput("r", results[:1], 0).Status)
	assert.Equal(t, "failed", BuildFinalOutput("r", results[1:], 0).Status)
}

func TestFormatTotals(t *testing.T) {
	final := &FinalOutput{Stats: Stats{Entries: 4, Saved: 2, Skipped: 1, Failed: 1, Size: "3.0 kB", TotalTimeSeconds: 1.25}}
	assert.Equal(t, "Saved 2, skipped 1, failed 1 of 4 entries (3.0 kB) in 1.25s", FormatTotals(final))
}
