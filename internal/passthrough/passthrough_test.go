package passthrough

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/florentdestremau/florent.cc/internal/site"
)

func setup(t *testing.T) (string, string) {
	t.Helper()
	in := t.TempDir()
	out := t.TempDir()
	files := map[string]string{
		"bundle.css":         "body{}",
		"robots.txt":         "User-agent: *",
		"img/logo.png":       "png",
		"img/icons/rss.svg":  "<svg/>",
		"fonts/a.woff2":      "a",
		"fonts/b.woff2":      "b",
		"fonts/license.txt":  "ofl",
		"static/favicon.ico": "ico",
	}
	for rel, body := range files {
		p := filepath.Join(in, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return in, out
}

func TestCopyAll_DefaultRules(t *testing.T) {
	in, out := setup(t)
	c := NewCopier(in, out, nil)

	n, err := c.CopyAll(context.Background(), []site.PassthroughCopy{
		{From: "bundle.css", To: "bundle.css"},
		{From: "img", To: "img"},
		{From: "robots.txt", To: "robots.txt"},
	})
	require.NoError(t, err)
	require.Equal(t, 4, n)

	for _, rel := range []string{"bundle.css", "robots.txt", "img/logo.png", "img/icons/rss.svg"} {
		require.FileExists(t, filepath.Join(out, filepath.FromSlash(rel)))
	}
	got, err := os.ReadFile(filepath.Join(out, "bundle.css"))
	require.NoError(t, err)
	require.Equal(t, "body{}", string(got))
}

func TestCopy_MissingSourceIsSkipped(t *testing.T) {
	in, out := setup(t)
	var logs bytes.Buffer
	c := NewCopier(in, out, slog.New(slog.NewTextHandler(&logs, nil)))

	n, err := c.Copy(site.PassthroughCopy{From: "missing.css"})
	require.NoError(t, err)
	require.Zero(t, n)
	require.Contains(t, logs.String(), "missing.css")

	n, err = c.Copy(site.PassthroughCopy{From: "nothing/*.js"})
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestCopy_Glob(t *testing.T) {
	in, out := setup(t)
	c := NewCopier(in, out, nil)

	n, err := c.Copy(site.PassthroughCopy{From: "fonts/*.woff2"})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.FileExists(t, filepath.Join(out, "fonts", "a.woff2"))
	require.NoFileExists(t, filepath.Join(out, "fonts", "license.txt"))

	n, err = c.Copy(site.PassthroughCopy{From: "fonts/*.woff2", To: "assets"})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.FileExists(t, filepath.Join(out, "assets", "b.woff2"))
}

func TestCopy_RenamedTarget(t *testing.T) {
	in, out := setup(t)
	c := NewCopier(in, out, nil)

	n, err := c.Copy(site.PassthroughCopy{From: "static/favicon.ico", To: "favicon.ico"})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.FileExists(t, filepath.Join(out, "favicon.ico"))
}

func TestCopyFile_PreservesMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not preserved on windows")
	}
	in, out := setup(t)
	script := filepath.Join(in, "deploy.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh"), 0o755))

	_, err := NewCopier(in, out, nil).Copy(site.PassthroughCopy{From: "deploy.sh"})
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(out, "deploy.sh"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestCopy_ReadOnlySourceCopiesTwice(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not preserved on windows")
	}
	in, out := setup(t)
	src := filepath.Join(in, "robots.txt")
	require.NoError(t, os.Chmod(src, 0o444))
	c := NewCopier(in, out, nil)

	_, err := c.Copy(site.PassthroughCopy{From: "robots.txt"})
	require.NoError(t, err)

	require.NoError(t, os.Chmod(src, 0o644))
	require.NoError(t, os.WriteFile(src, []byte("User-agent: *\nDisallow: /brouillons/"), 0o644))
	require.NoError(t, os.Chmod(src, 0o444))

	_, err = c.Copy(site.PassthroughCopy{From: "robots.txt"})
	require.NoError(t, err)

	dst := filepath.Join(out, "robots.txt")
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "User-agent: *\nDisallow: /brouillons/", string(got))
	info, err := os.Stat(dst)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o444), info.Mode().Perm())
}

func TestCopyAll_Canceled(t *testing.T) {
	in, out := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCopier(in, out, nil).CopyAll(ctx, []site.PassthroughCopy{{From: "img", To: "img"}})
	require.ErrorIs(t, err, context.Canceled)
}
