package linkcheck

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><body>
<a href="installation.html">Install</a>
<a href="https://example.com/external">External</a>
<a href="#usage">Usage</a>
<a href="mailto:docs@example.com">Mail</a>
<img src="_images/plot.png">
<script src="_static/app.js"></script>
<link href="_static/style.css" rel="stylesheet">
<h2 id="usage">Usage</h2>
<a name="legacy-anchor"></a>
</body></html>`

func TestExtractLinksFromReader(t *testing.T) {
	links, err := ExtractLinksFromReader(strings.NewReader(samplePage))
	require.NoError(t, err)
	require.Len(t, links, 7)

	byURL := make(map[string]Link, len(links))
	for _, l := range links {
		byURL[l.URL] = l
	}

	assert.True(t, byURL["installation.html"].IsInternal)
	assert.Equal(t, "a", byURL["installation.html"].Tag)
	assert.False(t, byURL["https://example.com/external"].IsInternal)
	assert.True(t, byURL["#usage"].IsInternal)
	assert.False(t, byURL["mailto:docs@example.com"].IsInternal)
	assert.Equal(t, "src", byURL["_images/plot.png"].Attribute)
	assert.True(t, byURL["_static/app.js"].IsInternal)
	assert.Equal(t, "link", byURL["_static/style.css"].Tag)
}

func TestAnchors(t *testing.T) {
	ids, err := Anchors(strings.NewReader(samplePage))
	require.NoError(t, err)

	assert.True(t, ids["usage"], "element id should be collected")
	assert.True(t, ids["legacy-anchor"], "named anchor should be collected")
	assert.False(t, ids["missing"])
}

func TestIsInternal(t *testing.T) {
	tests := []struct {
		link     string
		internal bool
	}{
		{"installation.html", true},
		{"../api/core.html#method", true},
		{"#fragment", true},
		{"_static/style.css", true},
		{"https://example.com", false},
		{"//cdn.example.com/lib.js", false},
		{"mailto:a@b.c", false},
		{"tel:+123", false},
		{"javascript:void(0)", false},
		{"data:image/png;base64,xyz", false},
	}

	for _, test := range tests {
		if got := isInternal(test.link); got != test.internal {
			t.Errorf("isInternal(%q) = %v, want %v", test.link, got, test.internal)
		}
	}
}

func TestExtractMarkdownLinks(t *testing.T) {
	source := []byte(`# Title

See the [install guide](installation.md) and [upstream](https://example.com).

![diagram](_images/diagram.png)

<https://auto.example.com>
`)
	links := ExtractMarkdownLinks(source)
	require.Len(t, links, 4)

	assert.Equal(t, "installation.md", links[0].URL)
	assert.True(t, links[0].IsInternal)
	assert.False(t, links[1].IsInternal)
	assert.Equal(t, "img", links[2].Tag)
	assert.Equal(t, "https://auto.example.com", links[3].URL)
}
