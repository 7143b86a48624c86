package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/florentdestremau/florent.cc/internal/config"
	"github.com/florentdestremau/florent.cc/internal/foundation/errors"
)

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
}

// newSite writes a minimal site and returns the path of its configuration.
func newSite(t *testing.T) string {
	t.Helper()
	t.Setenv("ELEVENTY_ENV", "")
	root := t.TempDir()
	writeFile(t, root, "site.yaml", "title: Test\ninput: .\noutput: _site\nlayouts: _includes\nlogging:\n  level: error\n")
	writeFile(t, root, "_includes/post.html", `<h1>{{ .Page.Title }}</h1>{{ .Content }}`)
	writeFile(t, root, "posts/a.md", "---\ntitle: Publié\ndate: 2023-02-12\ntags: posts\n---\nTexte.\n")
	writeFile(t, root, "posts/b.md", "---\ntitle: Brouillon\ndate: 2023-03-01\ntags: posts\ndraft: true\n---\nTexte.\n")
	writeFile(t, root, "bundle.css", "body{}")
	return filepath.Join(root, "site.yaml")
}

func TestBuildCmd_Production(t *testing.T) {
	cfgPath := newSite(t)
	root := filepath.Dir(cfgPath)
	var out bytes.Buffer

	cmd := &BuildCmd{Env: "production"}
	require.NoError(t, cmd.Run(&Global{Out: &out}, &CLI{Config: cfgPath}))

	require.Contains(t, out.String(), "success: 1 written")
	require.Contains(t, out.String(), "1 drafts skipped")
	require.FileExists(t, filepath.Join(root, "_site", "posts", "a", "index.html"))
	require.NoFileExists(t, filepath.Join(root, "_site", "posts", "b", "index.html"))
	require.FileExists(t, filepath.Join(root, "_site", "bundle.css"))
}

func TestBuildCmd_OutputOverride(t *testing.T) {
	cfgPath := newSite(t)
	dest := filepath.Join(t.TempDir(), "public")

	cmd := &BuildCmd{Output: dest}
	require.NoError(t, cmd.Run(&Global{Out: &bytes.Buffer{}}, &CLI{Config: cfgPath}))
	require.FileExists(t, filepath.Join(dest, "posts", "b", "index.html"))
}

func TestBuildCmd_Errors(t *testing.T) {
	cfgPath := newSite(t)

	err := (&BuildCmd{Env: "staging"}).Run(&Global{}, &CLI{Config: cfgPath})
	require.True(t, errors.HasCategory(err, errors.CategoryValidation), "got %v", err)

	err = (&BuildCmd{}).Run(&Global{}, &CLI{Config: filepath.Join(t.TempDir(), "missing.yaml")})
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound), "got %v", err)
}

func TestCollectionsCmd(t *testing.T) {
	cfgPath := newSite(t)

	var dev bytes.Buffer
	require.NoError(t, (&CollectionsCmd{}).Run(&Global{Out: &dev}, &CLI{Config: cfgPath}))
	require.Contains(t, dev.String(), "environment: development")
	require.Contains(t, dev.String(), "posts (1)")
	require.Contains(t, dev.String(), "drafts (1)")
	require.Contains(t, dev.String(), "Brouillon")

	var prod bytes.Buffer
	require.NoError(t, (&CollectionsCmd{Env: "prod"}).Run(&Global{Out: &prod}, &CLI{Config: cfgPath}))
	require.Contains(t, prod.String(), "drafts (0)")
	require.NotContains(t, prod.String(), "Brouillon")
}

func TestInitCmd(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "site.yaml")
	var out bytes.Buffer

	require.NoError(t, (&InitCmd{}).Run(&Global{Out: &out}, &CLI{Config: cfgPath}))
	require.Contains(t, out.String(), cfgPath)

	err := (&InitCmd{}).Run(&Global{Out: &out}, &CLI{Config: cfgPath})
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))

	require.NoError(t, (&InitCmd{Force: true}).Run(&Global{Out: &out}, &CLI{Config: cfgPath}))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, config.DefaultLocale, cfg.Locale)
}

func TestWatchDirs(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.Input = root
	cfg.Layouts = filepath.Join(root, "_includes")
	require.Equal(t, []string{root}, watchDirs(cfg))

	outside := filepath.Join(t.TempDir(), "layouts")
	cfg.Layouts = outside
	require.Equal(t, []string{root, outside}, watchDirs(cfg))
}
