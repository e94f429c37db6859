// Package rules holds the per-domain extraction rules used to pull a direct
// media URL out of an HTML page.
package rules

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// DefaultDomain is the key of the rule used when no domain rule matches.
const DefaultDomain = "default"

// multiValued attributes match when the constraint is one of their
// whitespace separated tokens.
var multiValued = map[string]bool{
	"class": true,
	"rel":   true,
}

// Rule describes how to find the media link on pages of one domain.
type Rule struct {
	Domain        string            `json:"domain" yaml:"-"`
	Tag           string            `json:"name" yaml:"name"`
	Attributes    map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	LinkAttribute string            `json:"link" yaml:"link"`
}

// Selector renders the rule as a CSS selector, e.g. meta[property="og:image"].
func (r Rule) Selector() string {
	var sb strings.Builder
	if r.Tag == "" {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.ToLower(r.Tag))
	}

	keys := slices.Sorted(maps.Keys(r.Attributes))
	for _, k := range keys {
		op := "="
		if multiValued[strings.ToLower(k)] {
			op = "~="
		}
		fmt.Fprintf(&sb, "[%s%s%s]", k, op, strconv.Quote(r.Attributes[k]))
	}
	return sb.String()
}

func (r Rule) clone() Rule {
	r.Attributes = maps.Clone(r.Attributes)
	return r
}

func (r Rule) validate() error {
	if strings.TrimSpace(r.LinkAttribute) == "" {
		return fmt.Errorf("rule for %q has no link attribute", r.Domain)
	}
	for k := range r.Attributes {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("rule for %q has an empty attribute name", r.Domain)
		}
	}
	return nil
}

type compiledRule struct {
	rule    Rule
	matcher cascadia.Selector
}

func compile(r Rule) (compiledRule, error) {
	if err := r.validate(); err != nil {
		return compiledRule{}, err
	}
	sel, err := cascadia.Compile(r.Selector())
	if err != nil {
		return compiledRule{}, fmt.Errorf("rule for %q: %w", r.Domain, err)
	}
	return compiledRule{rule: r.clone(), matcher: sel}, nil
}

// Table is an immutable set of rules keyed by exact hostname. It is safe
// for concurrent use.
type Table struct {
	rules map[string]compiledRule
}

// Builtin returns the rules compiled into the binary.
func Builtin() []Rule {
	return []Rule{
		{Domain: DefaultDomain, Tag: "meta", Attributes: map[string]string{"property": "og:image"}, LinkAttribute: "content"},
		{Domain: "imgur.com", Tag: "link", Attributes: map[string]string{"rel": "image_src"}, LinkAttribute: "href"},
		{Domain: "tinypic.com", Tag: "a", Attributes: map[string]string{"class": "thickbox"}, LinkAttribute: "href"},
		{Domain: "gfycat.com", Tag: "meta", Attributes: map[string]string{"property": "og:url"}, LinkAttribute: "content"},
	}
}

// Defaults returns a table of the builtin rules.
func Defaults() *Table {
	t, err := New(nil)
	if err != nil {
		panic(fmt.Sprintf("builtin extraction rules: %v", err))
	}
	return t
}

// New builds a table from the builtin rules with overrides applied on top.
// An override replaces the builtin rule of the same domain.
func New(overrides []Rule) (*Table, error) {
	t := &Table{rules: make(map[string]compiledRule)}
	for _, r := range append(Builtin(), overrides...) {
		r.Domain = strings.ToLower(strings.TrimSpace(r.Domain))
		if r.Domain == "" {
			return nil, fmt.Errorf("rule with empty domain")
		}
		c, err := compile(r)
		if err != nil {
			return nil, err
		}
		t.rules[r.Domain] = c
	}
	if _, ok := t.rules[DefaultDomain]; !ok {
		return nil, fmt.Errorf("no %s rule", DefaultDomain)
	}
	return t, nil
}

func (t *Table) lookup(host string) compiledRule {
	if c, ok := t.rules[strings.ToLower(host)]; ok {
		return c
	}
	return t.rules[DefaultDomain]
}

// Lookup returns the rule for host, or the default rule. Matching is on the
// exact hostname: www.imgur.com does not use the imgur.com rule.
func (t *Table) Lookup(host string) Rule {
	return t.lookup(host).rule.clone()
}

// Has reports whether host has a rule of its own.
func (t *Table) Has(host string) bool {
	_, ok := t.rules[strings.ToLower(host)]
	return ok
}

// Extract finds the first element on the page matching the rule for host
// and returns the value of its link attribute. ok is false when no element
// matches or the attribute is missing or empty.
func (t *Table) Extract(host string, doc *goquery.Document) (link string, ok bool) {
	c := t.lookup(host)
	sel := doc.FindMatcher(c.matcher).First()
	if sel.Length() == 0 {
		return "", false
	}
	link, ok = sel.Attr(c.rule.LinkAttribute)
	link = strings.TrimSpace(link)
	return link, ok && link != ""
}

// Domains returns the configured domains in sorted order.
func (t *Table) Domains() []string {
	return slices.Sorted(maps.Keys(t.rules))
}

// Rules returns a copy of every rule, sorted by domain.
func (t *Table) Rules() []Rule {
	out := make([]Rule, 0, len(t.rules))
	for _, d := range t.Domains() {
		out = append(out, t.rules[d].rule.clone())
	}
	return out
}
