package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dtnitsch/imgbot/models"
	"github.com/dtnitsch/imgbot/pkg/storage"
	"gopkg.in/yaml.v3"
)

// EntryResult is the outcome of one entry together with the feed it came
// from. This is passed in by the caller to avoid an import cycle with the
// dispatcher.
type EntryResult struct {
	Feed    string
	Entry   models.FeedEntry
	Outcome models.Outcome
}

// Generate aggregates entry results into a manifest.
func Generate(runID, destination string, results []EntryResult, now time.Time) Manifest {
	m := Manifest{
		GeneratedAt:  now.Format(time.RFC3339),
		RunID:        runID,
		Destination:  destination,
		TotalEntries: len(results),
		Results:      make([]EntrySummary, 0, len(results)),
	}

	for _, result := range results {
		o := result.Outcome
		summary := EntrySummary{
			Feed:     result.Feed,
			Title:    result.Entry.Title,
			URL:      result.Entry.TargetURL,
			Status:   o.Kind.String(),
			Reason:   o.Reason,
			Location: o.Location,
		}

		switch o.Kind {
		case models.OutcomeSaved:
			m.Saved++
			m.TotalBytes += o.Bytes
			summary.SizeBytes = o.Bytes
		case models.OutcomeSkipped:
			m.Skipped++
		default:
			m.Failed++
			if o.Err != nil {
				summary.ErrorMessage = o.Err.Error()
			}
		}

		m.Results = append(m.Results, summary)
	}
	return m
}

// Save writes the manifest to path, as JSON when the extension is .json and
// YAML otherwise.
func Save(s *storage.Storage, path string, m Manifest) error {
	var data []byte
	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(m, "", "  ")
	} else {
		data, err = yaml.Marshal(m)
	}
	if err != nil {
		return fmt.Errorf("error marshalling manifest: %w", err)
	}

	if _, err := s.SaveStream(filepath.Dir(path), filepath.Base(path), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("error saving manifest: %w", err)
	}
	return nil
}
