package download

import (
	"time"

	"github.com/dtnitsch/imgbot/pkg/dispatcher"
)

type Job struct {
	Index int
	Feed  string
}

// Result holds the outcome of one feed.
type Result struct {
	Index   int
	Feed    string
	Reports []dispatcher.Report
	Error   error
	Elapsed time.Duration
}

// EntryOutput is the structured output for a single entry.
type EntryOutput struct {
	Title    string `json:"title" yaml:"title"`
	URL      string `json:"url" yaml:"url"`
	Status   string `json:"status" yaml:"status"`
	Reason   string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	Bytes    int64  `json:"bytes,omitempty" yaml:"bytes,omitempty"`
	Size     string `json:"size,omitempty" yaml:"size,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// FeedOutput is the structured output for a single feed.
type FeedOutput struct {
	Feed           string        `json:"feed" yaml:"feed"`
	Status         string        `json:"status" yaml:"status"`
	Error          string        `json:"error,omitempty" yaml:"error,omitempty"`
	ElapsedSeconds float64       `json:"elapsed_seconds" yaml:"elapsed_seconds"`
	Entries        []EntryOutput `json:"entries,omitempty" yaml:"entries,omitempty"`
}

// FinalOutput is the structured output for the entire run.
type FinalOutput struct {
	Status string       `json:"status" yaml:"status"`
	RunID  string       `json:"run_id" yaml:"run_id"`
	Feeds  []FeedOutput `json:"feeds" yaml:"feeds"`
	Stats  Stats        `json:"stats" yaml:"stats"`
}

// Stats provides summary statistics for the run.
type Stats struct {
	Feeds            int     `json:"feeds" yaml:"feeds"`
	FailedFeeds      int     `json:"failed_feeds" yaml:"failed_feeds"`
	Entries          int     `json:"entries" yaml:"entries"`
	Saved            int     `json:"saved" yaml:"saved"`
	Skipped          int     `json:"skipped" yaml:"skipped"`
	Failed           int     `json:"failed" yaml:"failed"`
	Bytes            int64   `json:"bytes" yaml:"bytes"`
	Size             string  `json:"size" yaml:"size"`
	TotalTimeSeconds float64 `json:"total_time_seconds" yaml:"total_time_seconds"`
}
