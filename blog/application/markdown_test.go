package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRelativeLink(t *testing.T) {
	tests := []struct {
		url      string
		expected bool
	}{
		{"Other.md", true},
		{"./Other.md", true},
		{"../drafts/Other.md", true},
		{"/about", false},
		{"//example.com/page", false},
		{"#section", false},
		{"https://example.com/Other.md", false},
		{"mailto:test@example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, isRelativeLink(tt.url))
		})
	}
}

func TestPostSlug(t *testing.T) {
	tests := []struct {
		name   string
		dest   string
		slug   string
		linked bool
	}{
		{name: "markdown file", dest: "Hello.md", slug: "Hello", linked: true},
		{name: "escaped spaces", dest: "Hello%20World.md", slug: "Hello-World", linked: true},
		{name: "nested path", dest: "../posts/Hello World.html", slug: "Hello-World", linked: true},
		{name: "other extension", dest: "photo.jpg", linked: false},
		{name: "no extension", dest: "Hello", linked: false},
		{name: "bare extension", dest: ".md", linked: false},
		{name: "absolute", dest: "https://example.com/Hello.md", linked: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slug, ok := postSlug(tt.dest)
			assert.Equal(t, tt.linked, ok)
			assert.Equal(t, tt.slug, slug)
		})
	}
}

func TestMarkdownRenderer_Render(t *testing.T) {
	renderer := NewMarkdownRenderer()

	tests := []struct {
		name      string
		markdown  string
		contains  []string
		notInHTML []string
	}{
		{
			name:     "Heading and emphasis",
			markdown: "## Intro\n\nSome *emphasis* and **strong** text",
			contains: []string{`<h2 id="intro">Intro</h2>`, "<em>emphasis</em>", "<strong>strong</strong>"},
		},
		{
			name:     "Sibling post link",
			markdown: "See [the other post](<Other Post.md>)",
			contains: []string{`href="/blog/Other-Post"`},
		},
		{
			name:      "Site link unchanged",
			markdown:  "[About](/about)",
			contains:  []string{`href="/about"`},
			notInHTML: []string{"/blog/"},
		},
		{
			name:      "External link unchanged",
			markdown:  "[External](https://example.com/page.md)",
			contains:  []string{`href="https://example.com/page.md"`},
			notInHTML: []string{"/blog/"},
		},
		{
			name:     "Image unchanged",
			markdown: "![Alt](photo.jpg)",
			contains: []string{`src="photo.jpg"`},
		},
		{
			name:     "Raw HTML kept",
			markdown: "<div class=\"note\">kept</div>",
			contains: []string{`<div class="note">kept</div>`},
		},
		{
			name:     "GFM table",
			markdown: "| a | b |\n|---|---|\n| 1 | 2 |",
			contains: []string{"<table>", "<td>1</td>"},
		},
		{
			name:     "Hard wraps",
			markdown: "first line\nsecond line",
			contains: []string{"first line<br>", "second line"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := renderer.Render(tt.markdown)
			require.NoError(t, err)

			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.notInHTML {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}
