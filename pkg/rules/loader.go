package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dtnitsch/imgbot/models"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the override table looked up in the working directory.
const DefaultFile = "selectors.json"

// Reserved keys of an override entry. Every other key is an attribute
// constraint.
const (
	keyTag  = "name"
	keyLink = "link"
)

// rawTable is the on-disk shape:
//
//	{"imgur.com": {"name": "link", "rel": "image_src", "link": "href"}}
type rawTable map[string]map[string]string

// Load reads an override table and merges it over the builtin rules.
// The returned table is always usable: when the file cannot be read or
// parsed, the builtin table is returned together with a *models.ConfigError.
func Load(path string) (*Table, error) {
	if path == "" {
		return Defaults(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults(), &models.ConfigError{Field: "selectors", Value: path, Err: err}
	}

	overrides, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return Defaults(), &models.ConfigError{Field: "selectors", Value: path, Err: err}
	}

	t, err := New(overrides)
	if err != nil {
		return Defaults(), &models.ConfigError{Field: "selectors", Value: path, Err: err}
	}
	return t, nil
}

// Parse decodes an override table. ext selects the decoder: ".toml" uses
// TOML, anything else YAML, which also accepts JSON.
func Parse(data []byte, ext string) ([]Rule, error) {
	raw := rawTable{}
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode toml: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode selectors: %w", err)
		}
	}

	out := make([]Rule, 0, len(raw))
	for domain, fields := range raw {
		r := Rule{Domain: domain, Attributes: map[string]string{}}
		for k, v := range fields {
			switch k {
			case keyTag:
				r.Tag = v
			case keyLink:
				r.LinkAttribute = v
			default:
				r.Attributes[k] = v
			}
		}
		if strings.TrimSpace(r.Tag) == "" {
			return nil, fmt.Errorf("selector %q is missing %q", domain, keyTag)
		}
		if r.LinkAttribute == "" {
			return nil, fmt.Errorf("selector %q is missing %q", domain, keyLink)
		}
		out = append(out, r)
	}
	return out, nil
}

// Marshal renders rules in the override file shape as YAML.
func Marshal(rules []Rule) ([]byte, error) {
	raw := rawTable{}
	for _, r := range rules {
		fields := map[string]string{keyLink: r.LinkAttribute}
		if r.Tag != "" {
			fields[keyTag] = r.Tag
		}
		for k, v := range r.Attributes {
			fields[k] = v
		}
		raw[r.Domain] = fields
	}
	return yaml.Marshal(raw)
}
