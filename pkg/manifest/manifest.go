package manifest

// Manifest records what a single run did with every entry it saw. It is
// written once at the end of a run and never read back.
type Manifest struct {
	GeneratedAt  string         `json:"generated_at" yaml:"generated_at"`
	RunID        string         `json:"run_id" yaml:"run_id"`
	Destination  string         `json:"destination" yaml:"destination"`
	TotalEntries int            `json:"total_entries" yaml:"total_entries"`
	Saved        int            `json:"saved" yaml:"saved"`
	Skipped      int            `json:"skipped" yaml:"skipped"`
	Failed       int            `json:"failed" yaml:"failed"`
	TotalBytes   int64          `json:"total_bytes" yaml:"total_bytes"`
	Results      []EntrySummary `json:"results" yaml:"results"`
}

// EntrySummary is one entry's line in the manifest.
type EntrySummary struct {
	Feed         string `json:"feed" yaml:"feed"`
	Title        string `json:"title" yaml:"title"`
	URL          string `json:"url" yaml:"url"`
	Status       string `json:"status" yaml:"status"` // "saved", "skipped" or "failed"
	Reason       string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Location     string `json:"location,omitempty" yaml:"location,omitempty"`
	SizeBytes    int64  `json:"size_bytes,omitempty" yaml:"size_bytes,omitempty"`
	ErrorMessage string `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}
