package rules

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/imgbot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestSelector(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		want string
	}{
		{
			name: "exact attribute",
			rule: Rule{Tag: "meta", Attributes: map[string]string{"property": "og:image"}},
			want: `meta[property="og:image"]`,
		},
		{
			name: "class matches a token",
			rule: Rule{Tag: "a", Attributes: map[string]string{"class": "thickbox"}},
			want: `a[class~="thickbox"]`,
		},
		{
			name: "rel matches a token",
			rule: Rule{Tag: "LINK", Attributes: map[string]string{"rel": "image_src"}},
			want: `link[rel~="image_src"]`,
		},
		{
			name: "no tag, sorted attributes",
			rule: Rule{Attributes: map[string]string{"b": "2", "a": "1"}},
			want: `*[a="1"][b="2"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Selector())
		})
	}
}

func TestLookup(t *testing.T) {
	table := Defaults()

	tests := []struct {
		host       string
		wantDomain string
	}{
		{"imgur.com", "imgur.com"},
		{"IMGUR.com", "imgur.com"},
		{"tinypic.com", "tinypic.com"},
		{"gfycat.com", "gfycat.com"},
		{"i.imgur.com", DefaultDomain},
		{"www.imgur.com", DefaultDomain},
		{"example.org", DefaultDomain},
		{"", DefaultDomain},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.wantDomain, table.Lookup(tt.host).Domain)
		})
	}
}

func TestLookupRepeatable(t *testing.T) {
	table := Defaults()

	first := table.Lookup("imgur.com")
	first.Attributes["rel"] = "mutated"
	first.LinkAttribute = "mutated"

	second := table.Lookup("imgur.com")
	third := table.Lookup("imgur.com")
	assert.Equal(t, second, third)
	assert.Equal(t, "href", second.LinkAttribute)
	assert.Equal(t, "image_src", second.Attributes["rel"])
}

func TestLookupConcurrent(t *testing.T) {
	table := Defaults()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r := table.Lookup("tinypic.com")
				if r.LinkAttribute != "href" {
					t.Errorf("unexpected link attribute %q", r.LinkAttribute)
				}
			}
		}()
	}
	wg.Wait()
}

func TestExtract(t *testing.T) {
	table := Defaults()

	tests := []struct {
		name   string
		host   string
		html   string
		want   string
		wantOK bool
	}{
		{
			name:   "imgur link rel",
			host:   "imgur.com",
			html:   `<html><head><link rel="image_src" href="http://i.imgur.com/abc.jpg"></head></html>`,
			want:   "http://i.imgur.com/abc.jpg",
			wantOK: true,
		},
		{
			name:   "first match wins",
			host:   "example.com",
			html:   `<meta property="og:image" content="http://a/1.png"><meta property="og:image" content="http://a/2.png">`,
			want:   "http://a/1.png",
			wantOK: true,
		},
		{
			name:   "tinypic class token",
			host:   "tinypic.com",
			html:   `<a class="big thickbox" href="http://tinypic.com/x.png">x</a>`,
			want:   "http://tinypic.com/x.png",
			wantOK: true,
		},
		{
			name:   "no element",
			host:   "example.com",
			html:   `<html><body><p>nothing here</p></body></html>`,
			wantOK: false,
		},
		{
			name:   "element without attribute",
			host:   "imgur.com",
			html:   `<link rel="image_src">`,
			wantOK: false,
		},
		{
			name:   "empty attribute",
			host:   "example.com",
			html:   `<meta property="og:image" content="  ">`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.Extract(tt.host, parseDoc(t, tt.html))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewOverridesReplaceBuiltin(t *testing.T) {
	table, err := New([]Rule{
		{Domain: "imgur.com", Tag: "meta", Attributes: map[string]string{"property": "twitter:image"}, LinkAttribute: "content"},
		{Domain: "example.com", Tag: "img", Attributes: map[string]string{"id": "main"}, LinkAttribute: "src"},
	})
	require.NoError(t, err)

	imgur := table.Lookup("imgur.com")
	assert.Equal(t, "meta", imgur.Tag)
	assert.Equal(t, "content", imgur.LinkAttribute)

	assert.True(t, table.Has("example.com"))
	for _, d := range []string{DefaultDomain, "tinypic.com", "gfycat.com"} {
		assert.True(t, table.Has(d), d)
	}
	assert.Equal(t, []string{DefaultDomain, "example.com", "gfycat.com", "imgur.com", "tinypic.com"}, table.Domains())
}

func TestNewRejectsBadRules(t *testing.T) {
	_, err := New([]Rule{{Domain: "x.com", Tag: "img"}})
	assert.Error(t, err)

	_, err = New([]Rule{{Domain: "", Tag: "img", LinkAttribute: "src"}})
	assert.Error(t, err)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses builtin", func(t *testing.T) {
		table, err := Load("")
		require.NoError(t, err)
		assert.Len(t, table.Domains(), len(Builtin()))
	})

	t.Run("json override", func(t *testing.T) {
		path := writeFile(t, "selectors.json", `{
			"imgur.com": {"name": "meta", "property": "og:image", "link": "content"},
			"i.redd.it": {"name": "img", "class": "preview", "link": "src"}
		}`)
		table, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "meta", table.Lookup("imgur.com").Tag)
		assert.Equal(t, "src", table.Lookup("i.redd.it").LinkAttribute)
		assert.Equal(t, "thickbox", table.Lookup("tinypic.com").Attributes["class"])
	})

	t.Run("yaml override", func(t *testing.T) {
		path := writeFile(t, "selectors.yaml", "gfycat.com:\n  name: video\n  id: main\n  link: src\n")
		table, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "video", table.Lookup("gfycat.com").Tag)
	})

	t.Run("toml override", func(t *testing.T) {
		path := writeFile(t, "selectors.toml", "[\"example.net\"]\nname = \"img\"\nid = \"hero\"\nlink = \"src\"\n")
		table, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, `img[id="hero"]`, table.Lookup("example.net").Selector())
	})

	t.Run("malformed falls back", func(t *testing.T) {
		path := writeFile(t, "selectors.json", `{"imgur.com": [`)
		table, err := Load(path)
		var cfgErr *models.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "selectors", cfgErr.Field)
		require.NotNil(t, table)
		assert.Equal(t, "link", table.Lookup("imgur.com").Tag)
	})

	t.Run("missing link falls back", func(t *testing.T) {
		path := writeFile(t, "selectors.json", `{"imgur.com": {"name": "meta"}}`)
		table, err := Load(path)
		assert.Error(t, err)
		assert.Equal(t, "href", table.Lookup("imgur.com").LinkAttribute)
	})

	t.Run("missing tag falls back", func(t *testing.T) {
		path := writeFile(t, "selectors.json", `{"imgur.com": {"rel": "image_src", "link": "src"}}`)
		table, err := Load(path)
		var cfgErr *models.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, err.Error(), `missing "name"`)
		assert.Equal(t, `link[rel~="image_src"]`, table.Lookup("imgur.com").Selector())
	})

	t.Run("missing file", func(t *testing.T) {
		table, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		assert.True(t, errors.Is(err, fs.ErrNotExist))
		assert.NotNil(t, table)
	})
}

func TestMarshalRoundTripsThroughParse(t *testing.T) {
	data, err := Marshal(Defaults().Rules())
	require.NoError(t, err)

	parsed, err := Parse(data, ".yaml")
	require.NoError(t, err)

	table, err := New(parsed)
	require.NoError(t, err)
	assert.Equal(t, Defaults().Rules(), table.Rules())
}
