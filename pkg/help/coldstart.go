package help

const ColdstartYAML = `# imgbot Quick Start

sources:
  reddit: "Subreddit names, e.g. pics or r/pics (default)"
  rss: "RSS or Atom feed URLs"

sorts:
  plain: "hot (default), new, rising, controversial, top"
  top_period: "tophour, topday, topweek, topmonth, topyear, topall"

commands:
  basic_download: |
    imgbot download pics

  several_feeds: |
    imgbot download --sort topweek --limit 25 --workers 4 pics earthporn aww

  images_only: |
    imgbot download --no-albums --no-gifs -o ./wallpapers wallpapers

  rss_feed: |
    imgbot download --source rss https://example.com/feed.xml

  summary_yaml: |
    imgbot download --format yaml --quiet pics

  show_rules: |
    imgbot rules --selectors selectors.json

resolution_order:
  - "URL ending in .png .gif .gifv .jpg .jpeg: downloaded as is, no page request"
  - "URL containing /a/: album, fetched as <url>/zip and unpacked"
  - "Anything else: page fetched once, media link read with the rule for its host"
  - "Hosts without a rule use the default rule (og:image)"

builtin_rules:
  default: 'meta[property="og:image"] -> content'
  imgur.com: 'link[rel~="image_src"] -> href'
  tinypic.com: 'a[class~="thickbox"] -> href'
  gfycat.com: 'meta[property="og:url"] -> content'

selector_overrides:
  file: "selectors.json in the working directory, or --selectors <path>"
  formats: "JSON, YAML, or TOML (by .toml extension)"
  shape: '{"example.com": {"name": "img", "id": "main", "link": "src"}}'
  merge: "Entries replace the builtin rule for the same host; other builtins stay"

filters:
  - "Self and pinned posts are always skipped"
  - "NSFW posts are skipped unless --nsfw"
  - "--no-albums and --no-gifs skip those after resolution"

error_behavior:
  - "A failing entry never stops the rest of the feed"
  - "Unknown feeds are skipped when several are given"
  - "Failed albums and downloads leave no partial files"
  - "Exit codes: 0=ran, 1=no feed could be listed or bad arguments, 2=setup failure"
`
