package build

import (
	"bytes"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/florentdestremau/florent.cc/internal/collections"
	"github.com/florentdestremau/florent.cc/internal/foundation/errors"
)

// NoLayout in frontmatter writes the rendered content as-is.
const NoLayout = "none"

// SiteData is exposed to layouts as .Site.
type SiteData struct {
	Title       string
	URL         string
	Environment string
	BuildID     string
}

// PageData is the data every layout is executed with.
type PageData struct {
	Page        *collections.Item
	Content     template.HTML
	Collections map[string][]*collections.Item
	Site        SiteData
}

// layoutSet holds every template under the layouts directory, named by its
// slash-separated path relative to that directory, so layouts can include
// partials with {{ template "partials/head.html" . }}.
type layoutSet struct {
	root *template.Template
	dir  string
}

func loadLayouts(dir string, funcs template.FuncMap) (*layoutSet, error) {
	root := template.New("").Funcs(funcs)
	set := &layoutSet{root: root, dir: dir}

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return set, nil
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read layouts directory").
			WithContext("path", dir).Build()
	}
	if !info.IsDir() {
		return nil, errors.ConfigError("layouts path is not a directory").WithContext("path", dir).Build()
	}

	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") || !isLayoutFile(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		src, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if _, err := root.New(name).Parse(string(src)); err != nil {
			return errors.WrapError(err, errors.CategoryRender, "parse layout").
				WithContext("layout", name).Build()
		}
		return nil
	})
	if err != nil {
		if errors.IsClassified(err) {
			return nil, err
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "load layouts").
			WithContext("path", dir).Build()
	}
	return set, nil
}

func isLayoutFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".tmpl", ".xml":
		return true
	}
	return false
}

// has reports whether a layout called name was loaded.
func (s *layoutSet) has(name string) bool {
	return s.root.Lookup(name) != nil
}

// render executes the named layout. An empty name writes the content unwrapped.
func (s *layoutSet) render(name string, data PageData) ([]byte, error) {
	if name == "" || name == NoLayout {
		return []byte(data.Content), nil
	}
	t := s.root.Lookup(name)
	if t == nil {
		return nil, errors.RenderError("layout not found").
			WithContext("layout", name).WithContext("path", s.dir).Build()
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "execute layout").
			WithContext("layout", name).Build()
	}
	return buf.Bytes(), nil
}
