package frontmatter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	fm, body, had, err := Split([]byte("---\ntitle: Bonjour\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "title: Bonjour\n", string(fm))
	require.Equal(t, "# Title\n", string(body))
}

func TestSplit_CRLF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\r\ndraft: true\r\n---\r\nBody\r\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "draft: true\r\n", string(fm))
	require.Equal(t, "Body\r\n", string(body))
}

func TestSplit_EmptyBlock(t *testing.T) {
	fm, body, had, err := Split([]byte("---\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, "# Title\n", string(body))
}

func TestSplit_ClosingDelimiterAtEOF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\ntitle: x\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "title: x\n", string(fm))
	require.Empty(t, body)
}

func TestSplit_StripsBOM(t *testing.T) {
	fm, _, had, err := Split(append([]byte{0xEF, 0xBB, 0xBF}, []byte("---\na: 1\n---\n")...))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "a: 1\n", string(fm))
}

func TestSplit_MissingClosingDelimiter(t *testing.T) {
	_, _, had, err := Split([]byte("---\ntitle: x\n# Title\n"))
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestParseYAML_ValidYAML_ReturnsMap(t *testing.T) {
	fields, err := ParseYAML([]byte("title: Bonjour\ndate: 2023-02-12\ntags:\n  - posts\ndraft: true\n"))
	require.NoError(t, err)
	require.Equal(t, "Bonjour", fields["title"])
	require.Equal(t, []any{"posts"}, fields["tags"])
	require.Equal(t, true, fields["draft"])
	require.IsType(t, time.Time{}, fields["date"])
}

func TestParseYAML_Empty_ReturnsEmptyMap(t *testing.T) {
	fields, err := ParseYAML(nil)
	require.NoError(t, err)
	require.NotNil(t, fields)
	require.Empty(t, fields)
}

func TestParseYAML_InvalidYAML_ReturnsError(t *testing.T) {
	_, err := ParseYAML([]byte(": not yaml"))
	require.Error(t, err)
}
