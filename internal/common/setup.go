package common

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"

	"github.com/dtnitsch/imgbot/pkg/rules"
)

// NewLogger returns the JSON logger shared by the commands. quiet wins
// over verbose.
func NewLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	if quiet {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// LoadRules loads the extraction rule table. A missing file is only worth
// a warning when the user named it; the builtin rules are used whenever the
// file cannot be read.
func LoadRules(logger *slog.Logger, path string, explicit bool) *rules.Table {
	table, err := rules.Load(path)
	switch {
	case err == nil:
		logger.Debug("Loaded extraction rules", "path", path, "domains", len(table.Domains()))
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		logger.Debug("No selector overrides found, using builtin rules", "path", path)
	default:
		logger.Warn("Ignoring selector overrides, using builtin rules", "path", path, "error", err)
	}
	return table
}
