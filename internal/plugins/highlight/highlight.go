// Package highlight is the syntax highlighting plugin. It highlights fenced
// code blocks during Markdown rendering and adds a "highlight" filter for
// code embedded directly in templates.
package highlight

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	highlighting "github.com/yuin/goldmark-highlighting/v2"

	"github.com/florentdestremau/florent.cc/internal/site"
)

const (
	PluginName = "syntaxhighlight"
	// Filter renders `{{ highlight "go" .Code }}`.
	Filter = "highlight"
	// CSSFilter renders the stylesheet for the configured style: `<style>{{ highlightCSS }}</style>`.
	CSSFilter = "highlightCSS"
)

// Plugin highlights code with chroma using CSS classes.
type Plugin struct {
	style       *chroma.Style
	lineNumbers bool
}

// New returns a plugin for the named chroma style. Unknown styles use chroma's fallback.
func New(style string, lineNumbers bool) *Plugin {
	return &Plugin{style: styles.Get(style), lineNumbers: lineNumbers}
}

func (p *Plugin) Name() string { return PluginName }

// Register adds the Markdown extension and the template filters.
func (p *Plugin) Register(r *site.Registry) error {
	r.AddMarkdownExtension(highlighting.NewHighlighting(
		highlighting.WithCustomStyle(p.style),
		highlighting.WithFormatOptions(p.formatOptions()...),
	))
	if err := r.AddFilter(Filter, p.Highlight); err != nil {
		return err
	}
	return r.AddFilter(CSSFilter, p.CSS)
}

func (p *Plugin) formatOptions() []chromahtml.Option {
	return []chromahtml.Option{
		chromahtml.WithClasses(true),
		chromahtml.WithLineNumbers(p.lineNumbers),
	}
}

// Highlight renders code as highlighted HTML. An unknown or empty language
// renders as plain text.
func (p *Plugin) Highlight(language string, code string) (template.HTML, error) {
	lexer := lexers.Get(strings.TrimSpace(language))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := chromahtml.New(p.formatOptions()...).Format(&buf, p.style, iterator); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil //nolint:gosec // chroma escapes token text
}

// CSS returns the class-based stylesheet for the configured style.
func (p *Plugin) CSS() (template.CSS, error) {
	var buf bytes.Buffer
	if err := chromahtml.New(p.formatOptions()...).WriteCSS(&buf, p.style); err != nil {
		return "", err
	}
	return template.CSS(buf.String()), nil //nolint:gosec // generated by chroma
}
