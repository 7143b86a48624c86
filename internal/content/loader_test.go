package content

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/florentdestremau/florent.cc/internal/foundation/errors"
)

func writeFile(t *testing.T, root, rel, body string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_DiscoversAndSkips(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.md", "# Accueil\n")
	writeFile(t, root, "posts/hello.md", "---\ntitle: Hello\ndate: 2023-02-12\ntags: posts\n---\nBonjour\n")
	writeFile(t, root, "posts/.hidden.md", "nope")
	writeFile(t, root, "_includes/post.md", "layout fragment")
	writeFile(t, root, ".git/notes.md", "nope")
	writeFile(t, root, "node_modules/pkg/readme.md", "nope")
	writeFile(t, root, "public/old.md", "nope")
	writeFile(t, root, "posts/cover.png", "png")

	docs, err := Load(Options{Root: root, Exclude: []string{filepath.Join(root, "public")}})
	require.NoError(t, err)

	var paths []string
	for _, d := range docs {
		paths = append(paths, d.Item.InputPath)
	}
	require.Equal(t, []string{"index.md", "posts/hello.md"}, paths)

	hello := docs[1]
	require.Equal(t, "Hello", hello.Item.Title)
	require.Equal(t, []string{"posts"}, hello.Item.Tags)
	require.Equal(t, "/posts/hello/", hello.Item.URL)
	require.Equal(t, "posts/hello/index.html", hello.Item.OutputPath)
	require.Equal(t, time.Date(2023, 2, 12, 0, 0, 0, 0, time.UTC), hello.Item.Date.UTC())
	require.Equal(t, "Bonjour\n", string(hello.Body))
}

func TestLoad_RelativeExcludeResolvesFromWorkingDir(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "sub/posts/hello.md", "# Hello\n")
	writeFile(t, base, "sub/public/posts/hello/index.md", "stale copy")
	t.Chdir(base)

	docs, err := Load(Options{Root: "sub", Exclude: []string{filepath.Join("sub", "public")}})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "posts/hello.md", docs[0].Item.InputPath)
}

func TestLoad_MissingRoot(t *testing.T) {
	_, err := Load(Options{Root: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestLoadFile_Frontmatter(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name   string
		body   string
		assert func(t *testing.T, d *Document)
	}{
		{
			name: "tag list and draft",
			body: "---\ntitle: Brouillon\ntags: [posts, go]\ndraft: true\nlayout: note.html\n---\ntexte",
			assert: func(t *testing.T, d *Document) {
				require.Equal(t, []string{"posts", "go"}, d.Item.Tags)
				require.True(t, d.Item.Draft)
				require.Equal(t, "note.html", d.Item.Layout)
			},
		},
		{
			name: "draft as string",
			body: "---\ndraft: \"TRUE\"\n---\n",
			assert: func(t *testing.T, d *Document) {
				require.True(t, d.Item.Draft)
			},
		},
		{
			name: "draft other string",
			body: "---\ndraft: maybe\n---\n",
			assert: func(t *testing.T, d *Document) {
				require.False(t, d.Item.Draft)
			},
		},
		{
			name: "crlf",
			body: "---\r\ntitle: Windows\r\n---\r\nbody\r\n",
			assert: func(t *testing.T, d *Document) {
				require.Equal(t, "Windows", d.Item.Title)
				require.Equal(t, "body\r\n", string(d.Body))
			},
		},
		{
			name: "extra fields kept in data",
			body: "---\ntitle: T\ndescription: Un résumé\n---\n",
			assert: func(t *testing.T, d *Document) {
				require.Equal(t, "Un résumé", d.Item.Data["description"])
			},
		},
		{
			name: "permalink with trailing slash",
			body: "---\npermalink: /a-propos/\n---\n",
			assert: func(t *testing.T, d *Document) {
				require.Equal(t, "/a-propos/", d.Item.URL)
				require.Equal(t, "a-propos/index.html", d.Item.OutputPath)
			},
		},
		{
			name: "permalink to a file",
			body: "---\npermalink: feed.xml\n---\n",
			assert: func(t *testing.T, d *Document) {
				require.Equal(t, "/feed.xml", d.Item.URL)
				require.Equal(t, "feed.xml", d.Item.OutputPath)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeFile(t, root, "doc.md", tt.body)
			d, err := LoadFile(p, "doc.md")
			require.NoError(t, err)
			tt.assert(t, d)
		})
	}
}

func TestLoadFile_DateFallsBackToModTime(t *testing.T) {
	root := t.TempDir()
	p := writeFile(t, root, "note.md", "---\ntitle: Sans date\n---\n")
	mtime := time.Date(2022, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(p, mtime, mtime))

	d, err := LoadFile(p, "note.md")
	require.NoError(t, err)
	require.True(t, d.Item.Date.Equal(mtime))
}

func TestLoadFile_Errors(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name string
		body string
	}{
		{"unclosed frontmatter", "---\ntitle: x\n"},
		{"invalid yaml", "---\ntitle: [x\n---\n"},
		{"bad date", "---\ndate: someday\n---\n"},
		{"escaping permalink", "---\npermalink: ../../etc/passwd\n---\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeFile(t, root, "bad.md", tt.body)
			_, err := LoadFile(p, "bad.md")
			require.Error(t, err)
			require.True(t, errors.HasCategory(err, errors.CategoryContent), "got %v", err)
		})
	}
}

func TestRouteFor(t *testing.T) {
	tests := []struct {
		rel, permalink string
		url, out       string
	}{
		{"index.md", "", "/", "index.html"},
		{"about.md", "", "/about/", "about/index.html"},
		{"posts/index.md", "", "/posts/", "posts/index.html"},
		{"posts/2023/hello.md", "", "/posts/2023/hello/", "posts/2023/hello/index.html"},
		{"x.md", "/", "/", "index.html"},
		{"x.md", "/notes/", "/notes/", "notes/index.html"},
	}
	for _, tt := range tests {
		t.Run(tt.rel+tt.permalink, func(t *testing.T) {
			url, out, err := routeFor(tt.rel, tt.permalink)
			require.NoError(t, err)
			require.Equal(t, tt.url, url)
			require.Equal(t, tt.out, out)
		})
	}
}
