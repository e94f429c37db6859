package download

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/dtnitsch/imgbot/internal/common"
	"github.com/dtnitsch/imgbot/models"
	"github.com/dtnitsch/imgbot/pkg/dispatcher"
	"github.com/dtnitsch/imgbot/pkg/feedsource"
	"github.com/dtnitsch/imgbot/pkg/fetcher"
	"github.com/dtnitsch/imgbot/pkg/manifest"
	"github.com/dtnitsch/imgbot/pkg/resolver"
	"github.com/dtnitsch/imgbot/pkg/storage"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func DownloadAction(c *cli.Context) error {
	runID := uuid.NewString()
	logger := common.NewLogger(os.Stderr, c.Bool("quiet"), c.Bool("verbose")).With("run_id", runID)
	startTime := time.Now()

	opts := models.DefaultDownloadOptions()
	opts.IncludeAlbums = !c.Bool("no-albums")
	opts.IncludeGifs = !c.Bool("no-gifs")
	opts.IncludeRestricted = c.Bool("nsfw")
	if dest := c.String("dest"); dest != "" {
		opts.Destination = dest
	}

	// Initialize runtime config from CLI flags
	config := &models.DownloadConfig{
		Feeds:       c.Args().Slice(),
		Sort:        c.String("sort"),
		Limit:       c.Int("limit"),
		WorkerCount: c.Int("workers"),
		Timeout:     c.Duration("timeout"),
		UserAgent:   c.String("user-agent"),
		Selectors:   c.String("selectors"),
		Source:      strings.ToLower(c.String("source")),
		Readability: c.Bool("readability-fallback"),
		Options:     opts,
	}

	if len(config.Feeds) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no feed given")
		fmt.Fprintln(os.Stderr, "Usage: imgbot download [flags] <feed> [feed...]")
		return cli.Exit("", 1)
	}

	outputFormat := strings.ToLower(c.String("format"))
	switch outputFormat {
	case "text", "yaml", "json":
	default:
		return cli.Exit(fmt.Sprintf("Error: unknown format %q (expected text, yaml or json)", outputFormat), 2)
	}

	feeds, invalid := common.SanitizeFeedNames(config.Feeds, config.Source == "rss")
	for _, raw := range invalid {
		logger.Warn("Ignoring invalid feed name", "feed", raw)
		fmt.Fprintf(os.Stderr, "Warning: ignoring invalid feed %q\n", raw)
	}
	if len(feeds) == 0 {
		return cli.Exit("Error: no valid feed given", 1)
	}
	config.Feeds = feeds

	if err := os.MkdirAll(opts.Destination, 0o755); err != nil {
		logger.Error("failed to create destination", "path", opts.Destination, "error", err)
		return cli.Exit("", 2)
	}

	f := fetcher.NewFetcher(fetcher.WithTimeout(config.Timeout), fetcher.WithUserAgent(config.UserAgent))
	source, err := feedsource.New(config.Source, f)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	table := common.LoadRules(logger, config.Selectors, c.IsSet("selectors"))
	res := resolver.New(f, table,
		resolver.WithReadabilityFallback(config.Readability),
		resolver.WithLogger(logger),
	)
	disp := dispatcher.New(res, f, dispatcher.WithLogger(logger))

	r := &runner{
		logger:     logger,
		config:     config,
		source:     source,
		dispatcher: disp,
	}
	if outputFormat == "text" {
		r.reporter = newLineReporter(os.Stdout)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	logger.Info("Starting download",
		"feeds", config.Feeds,
		"source", source.Name(),
		"sort", config.Sort,
		"limit", config.Limit,
		"options", config.Options,
	)
	results := run(ctx, r)
	finalOutput := BuildFinalOutput(runID, results, time.Since(startTime))

	if manifestPath := c.String("manifest"); manifestPath != "" {
		m := manifest.Generate(runID, opts.Destination, ManifestResults(results), time.Now())
		if err := manifest.Save(&storage.Storage{}, manifestPath, m); err != nil {
			logger.Error("failed to write manifest", "path", manifestPath, "error", err)
		} else {
			logger.Info("Wrote manifest", "path", manifestPath, "entries", m.TotalEntries)
		}
	}

	var outputData []byte
	var marshalErr error
	switch outputFormat {
	case "yaml":
		outputData, marshalErr = yaml.Marshal(finalOutput)
	case "json":
		outputData, marshalErr = json.MarshalIndent(finalOutput, "", "  ")
	default:
		outputData = []byte(FormatTotals(finalOutput) + "\n")
	}
	if marshalErr != nil {
		logger.Error("failed to marshal output", "error", marshalErr)
		return cli.Exit("", 2)
	}
	if _, err := os.Stdout.Write(outputData); err != nil {
		logger.Error("failed to write output", "error", err)
		return cli.Exit("", 2)
	}
	if outputFormat == "json" {
		fmt.Println()
	}

	if finalOutput.Status == "failed" {
		return cli.Exit("", 1)
	}
	return nil
}
