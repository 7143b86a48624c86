// Package markdown renders post bodies to HTML with goldmark.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts Markdown to HTML. It is safe for concurrent use once built.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer builds a renderer with GFM, footnotes and typographic quotes,
// plus any extensions registered by plugins.
//
// Raw HTML in the source is passed through: content is written by the site
// author, not by visitors.
func NewRenderer(extensions ...goldmark.Extender) *Renderer {
	exts := append([]goldmark.Extender{extension.GFM, extension.Footnote}, extensions...)
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(exts...),
			goldmark.WithParserOptions(parser.WithAttribute()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Render converts a Markdown body (frontmatter already removed) to HTML.
func (r *Renderer) Render(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
