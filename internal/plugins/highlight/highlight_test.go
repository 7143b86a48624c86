package highlight

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"

	"github.com/florentdestremau/florent.cc/internal/site"
)

func TestRegister(t *testing.T) {
	r := site.NewRegistry()
	require.NoError(t, r.AddPlugin(New("github", false)))

	require.Contains(t, r.Filters(), Filter)
	require.Contains(t, r.Filters(), CSSFilter)
	require.Len(t, r.MarkdownExtensions(), 1)
	require.Equal(t, []string{PluginName}, r.Plugins())
}

func TestHighlight_KnownLanguage(t *testing.T) {
	out, err := New("github", false).Highlight("go", "func main() {}")
	require.NoError(t, err)
	require.Contains(t, string(out), `class="chroma"`)
	require.Contains(t, string(out), "main")
}

func TestHighlight_UnknownLanguageEscapes(t *testing.T) {
	out, err := New("github", false).Highlight("no-such-lang", "<script>alert(1)</script>")
	require.NoError(t, err)
	require.NotContains(t, string(out), "<script>")
	require.Contains(t, string(out), "&lt;script&gt;")
}

func TestCSS(t *testing.T) {
	css, err := New("monokai", false).CSS()
	require.NoError(t, err)
	require.Contains(t, string(css), ".chroma")
}

func TestMarkdownExtension_HighlightsFencedCode(t *testing.T) {
	r := site.NewRegistry()
	require.NoError(t, r.AddPlugin(New("github", false)))

	md := goldmark.New(goldmark.WithExtensions(r.MarkdownExtensions()...))
	var buf bytes.Buffer
	require.NoError(t, md.Convert([]byte("```go\npackage main\n```\n"), &buf))
	require.Contains(t, buf.String(), `class="chroma"`)
	require.Contains(t, buf.String(), "package")
}
