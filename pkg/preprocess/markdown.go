package preprocess

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// MarkdownTransform compiles .md pages to HTML. The frontmatter block is
// validated and carried over verbatim so route discovery can read it.
type MarkdownTransform struct {
	md goldmark.Markdown
}

func NewMarkdown(style string) *MarkdownTransform {
	if style == "" {
		style = "monokai"
	}
	return &MarkdownTransform{
		md: goldmark.New(
			goldmark.WithExtensions(
				meta.Meta,
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle(style),
				),
			),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

func (t *MarkdownTransform) Name() string {
	return "markdown"
}

func (t *MarkdownTransform) Match(filename string) bool {
	return hasExt(filename, ".md", ".markdown")
}

func (t *MarkdownTransform) Transform(filename string, src []byte) ([]byte, error) {
	src = normalizeNewlines(src)
	front, _, hasFront := SplitFrontmatter(src)

	var buf bytes.Buffer
	ctx := parser.NewContext()
	if err := t.md.Convert(src, &buf, parser.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	if _, err := meta.TryGet(ctx); err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return JoinFrontmatter(front, buf.Bytes(), hasFront), nil
}
