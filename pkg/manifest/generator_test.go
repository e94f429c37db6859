package manifest

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dtnitsch/imgbot/models"
	"github.com/dtnitsch/imgbot/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleResults() []EntryResult {
	saved := models.Saved(7)
	saved.Location = "http://imgur.com/xyz.png"
	return []EntryResult{
		{Feed: "pics", Entry: models.FeedEntry{Title: "pic", TargetURL: "http://imgur.com/xyz.png"}, Outcome: saved},
		{Feed: "pics", Entry: models.FeedEntry{Title: "album", TargetURL: "http://imgur.com/a/xyz"}, Outcome: models.Skipped(models.ReasonAlbumExcluded)},
		{Feed: "aww", Entry: models.FeedEntry{Title: "gone", TargetURL: "http://example.com/gone"}, Outcome: models.Failed(models.ReasonUnreachable, errors.New("status 404"))},
	}
}

func TestGenerate(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	m := Generate("run-1", "/tmp/out", sampleResults(), now)

	assert.Equal(t, "2026-01-15T10:00:00Z", m.GeneratedAt)
	assert.Equal(t, 3, m.TotalEntries)
	assert.Equal(t, 1, m.Saved)
	assert.Equal(t, 1, m.Skipped)
	assert.Equal(t, 1, m.Failed)
	assert.Equal(t, int64(7), m.TotalBytes)

	require.Len(t, m.Results, 3)
	assert.Equal(t, EntrySummary{
		Feed:      "pics",
		Title:     "pic",
		URL:       "http://imgur.com/xyz.png",
		Status:    "saved",
		Location:  "http://imgur.com/xyz.png",
		SizeBytes: 7,
	}, m.Results[0])
	assert.Equal(t, "album-excluded", m.Results[1].Reason)
	assert.Equal(t, "status 404", m.Results[2].ErrorMessage)
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	m := Generate("run-1", dir, sampleResults(), time.Now())
	s := &storage.Storage{}

	yamlPath := filepath.Join(dir, "reports", "manifest.yaml")
	require.NoError(t, Save(s, yamlPath, m))
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML Manifest
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	assert.Equal(t, m.Results, fromYAML.Results)

	jsonPath := filepath.Join(dir, "manifest.json")
	require.NoError(t, Save(s, jsonPath, m))
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	var fromJSON Manifest
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Equal(t, "run-1", fromJSON.RunID)
	assert.Equal(t, 1, fromJSON.Saved)
}
