package application

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/dfryer1193/quill/blog/domain"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Body formats accepted by the write and edit forms
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// postLinkTransformer points relative links at sibling documents ("Other Post.md")
// to the post published under that title
type postLinkTransformer struct{}

func (t *postLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}

		if slug, ok := postSlug(string(link.Destination)); ok {
			link.Destination = []byte(domain.BlogPath(slug))
		}
		return ast.WalkContinue, nil
	})
}

// postSlug returns the slug a relative document link refers to
func postSlug(dest string) (string, bool) {
	if !isRelativeLink(dest) {
		return "", false
	}

	name := path.Base(dest)
	ext := path.Ext(name)
	if ext != ".md" && ext != ".html" {
		return "", false
	}

	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	title := strings.TrimSuffix(name, ext)
	if strings.TrimSpace(title) == "" {
		return "", false
	}
	return domain.Slugify(title), true
}

func isRelativeLink(dest string) bool {
	if dest == "" || strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "#") {
		return false
	}
	return !strings.Contains(dest, ":")
}

// MarkdownRenderer converts Markdown post bodies to the HTML that gets stored
type MarkdownRenderer interface {
	Render(markdown string) (string, error)
}

type goldmarkRenderer struct {
	md goldmark.Markdown
}

func NewMarkdownRenderer() MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(&postLinkTransformer{}, 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithUnsafe(),
		),
	)

	return &goldmarkRenderer{md: md}
}

func (r *goldmarkRenderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
