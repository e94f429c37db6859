package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dtnitsch/imgbot/internal/common"
	"github.com/dtnitsch/imgbot/pkg/fetcher"
	"github.com/dtnitsch/imgbot/pkg/resolver"
	rulespkg "github.com/dtnitsch/imgbot/pkg/rules"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// RulesAction prints the effective extraction rule table.
func RulesAction(c *cli.Context) error {
	logger := common.NewLogger(os.Stderr, c.Bool("quiet"), c.Bool("verbose"))
	table := common.LoadRules(logger, c.String("selectors"), c.IsSet("selectors"))

	if strings.ToLower(c.String("format")) == "json" {
		out := make(map[string]ruleOutput, len(table.Domains()))
		for _, r := range table.Rules() {
			out[r.Domain] = toRuleOutput(r)
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal rules: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	data, err := rulespkg.Marshal(table.Rules())
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

// ResolveAction resolves each URL argument and prints what a download
// would fetch, without downloading anything.
func ResolveAction(c *cli.Context) error {
	if c.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no URL given")
		fmt.Fprintln(os.Stderr, "Usage: imgbot resolve [flags] <url> [url...]")
		return cli.Exit("", 1)
	}

	logger := common.NewLogger(os.Stderr, c.Bool("quiet"), c.Bool("verbose"))
	table := common.LoadRules(logger, c.String("selectors"), c.IsSet("selectors"))
	f := fetcher.NewFetcher(fetcher.WithTimeout(c.Duration("timeout")), fetcher.WithUserAgent(c.String("user-agent")))
	res := resolver.New(f, table,
		resolver.WithReadabilityFallback(c.Bool("readability-fallback")),
		resolver.WithLogger(logger),
	)

	results := make([]resolveOutput, 0, c.NArg())
	failed := 0
	for _, raw := range c.Args().Slice() {
		r := res.Resolve(c.Context, raw)
		out := resolveOutput{URL: raw, Kind: r.Kind.String(), Target: r.URL}
		if r.Err != nil {
			out.Error = r.Err.Error()
			failed++
		}
		results = append(results, out)
	}

	data, err := yaml.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	fmt.Print(string(data))

	if failed == len(results) {
		return cli.Exit("", 1)
	}
	return nil
}
