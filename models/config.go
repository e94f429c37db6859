// Package models defines the data structures shared by the resolver,
// dispatcher and feed sources.
package models

import "time"

// DownloadConfig holds runtime configuration for a download run.
// All values come from CLI flags, not external config files.
type DownloadConfig struct {
	Feeds       []string
	Sort        string
	Limit       int
	WorkerCount int
	Timeout     time.Duration
	UserAgent   string
	Selectors   string
	Source      string
	Readability bool
	Options     DownloadOptions
}

// DownloadOptions are the per-entry filters applied by the dispatcher.
type DownloadOptions struct {
	IncludeAlbums     bool   `json:"include_albums" yaml:"include_albums"`
	IncludeGifs       bool   `json:"include_gifs" yaml:"include_gifs"`
	IncludeRestricted bool   `json:"include_restricted" yaml:"include_restricted"`
	Destination       string `json:"destination" yaml:"destination"`
}

// DefaultDownloadOptions returns albums and gifs enabled, restricted
// content disabled, saving into the working directory.
func DefaultDownloadOptions() DownloadOptions {
	return DownloadOptions{
		IncludeAlbums:     true,
		IncludeGifs:       true,
		IncludeRestricted: false,
		Destination:       ".",
	}
}
