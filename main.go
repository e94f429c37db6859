package main

import (
	"fmt"
	"os"

	"github.com/dtnitsch/imgbot/internal/download"
	"github.com/dtnitsch/imgbot/internal/rules"
	"github.com/dtnitsch/imgbot/models"
	"github.com/dtnitsch/imgbot/pkg/fetcher"
	"github.com/dtnitsch/imgbot/pkg/help"
	rulespkg "github.com/dtnitsch/imgbot/pkg/rules"
	"github.com/urfave/cli/v2"
)

func logFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Only log errors", EnvVars: []string{"IMGBOT_QUIET"}},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Log debug detail", EnvVars: []string{"IMGBOT_VERBOSE"}},
	}
}

func resolveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "selectors",
			Value:   rulespkg.DefaultFile,
			Usage:   "Extraction rule overrides (JSON, YAML or TOML)",
			EnvVars: []string{"IMGBOT_SELECTORS"},
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Value:   fetcher.DefaultTimeout,
			Usage:   "Per-request timeout",
			EnvVars: []string{"IMGBOT_TIMEOUT"},
		},
		&cli.StringFlag{
			Name:    "user-agent",
			Value:   fetcher.DefaultUserAgent,
			Usage:   "User-Agent header sent with every request",
			EnvVars: []string{"IMGBOT_USER_AGENT"},
		},
		&cli.BoolFlag{
			Name:    "readability-fallback",
			Usage:   "Use the page's lead image when no rule element is found",
			EnvVars: []string{"IMGBOT_READABILITY_FALLBACK"},
		},
	}
}

func downloadFlags() []cli.Flag {
	defaults := models.DefaultDownloadOptions()
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Value:   models.DefaultSort.String(),
			Usage:   "hot, new, rising, controversial, top, or top followed by hour|day|week|month|year|all",
			EnvVars: []string{"IMGBOT_SORT"},
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"l"},
			Value:   10,
			Usage:   "Maximum entries per feed",
			EnvVars: []string{"IMGBOT_LIMIT"},
		},
		&cli.BoolFlag{Name: "no-albums", Usage: "Skip albums", EnvVars: []string{"IMGBOT_NO_ALBUMS"}},
		&cli.BoolFlag{Name: "no-gifs", Usage: "Skip gifs", EnvVars: []string{"IMGBOT_NO_GIFS"}},
		&cli.BoolFlag{Name: "nsfw", Usage: "Include NSFW posts", EnvVars: []string{"IMGBOT_NSFW"}},
		&cli.StringFlag{
			Name:    "dest",
			Aliases: []string{"o"},
			Value:   defaults.Destination,
			Usage:   "Directory to save into",
			EnvVars: []string{"IMGBOT_DEST"},
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Value:   4,
			Usage:   "Feeds downloaded at once",
			EnvVars: []string{"IMGBOT_WORKERS"},
		},
		&cli.StringFlag{
			Name:    "source",
			Value:   "reddit",
			Usage:   "Feed source: reddit or rss",
			EnvVars: []string{"IMGBOT_SOURCE"},
		},
		&cli.StringFlag{
			Name:    "manifest",
			Usage:   "Write a YAML (or .json) record of every entry to this file",
			EnvVars: []string{"IMGBOT_MANIFEST"},
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   "text",
			Usage:   "Output format: text, yaml or json",
			EnvVars: []string{"IMGBOT_FORMAT"},
		},
	}
	flags = append(flags, resolveFlags()...)
	return append(flags, logFlags()...)
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "imgbot",
		Usage: "Download images from subreddits and feeds",
		Commands: []*cli.Command{
			{
				Name:      "download",
				Aliases:   []string{"dl"},
				Usage:     "Download the media of one or more feeds",
				ArgsUsage: "<feed> [feed...]",
				Flags:     downloadFlags(),
				Action:    download.DownloadAction,
			},
			{
				Name:      "resolve",
				Usage:     "Show what a download would fetch for each URL",
				ArgsUsage: "<url> [url...]",
				Flags:     append(resolveFlags(), logFlags()...),
				Action:    rules.ResolveAction,
			},
			{
				Name:  "rules",
				Usage: "Print the effective extraction rules",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "selectors",
						Value:   rulespkg.DefaultFile,
						Usage:   "Extraction rule overrides (JSON, YAML or TOML)",
						EnvVars: []string{"IMGBOT_SELECTORS"},
					},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "yaml", Usage: "yaml or json"},
				}, logFlags()...),
				Action: rules.RulesAction,
			},
			{
				Name:  "coldstart",
				Usage: "Print a quick start guide",
				Action: func(c *cli.Context) error {
					fmt.Print(help.ColdstartYAML)
					return nil
				},
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
