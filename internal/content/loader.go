// Package content discovers Markdown documents under the input root and turns
// their frontmatter into collection items.
package content

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/florentdestremau/florent.cc/internal/collections"
	"github.com/florentdestremau/florent.cc/internal/filters"
	"github.com/florentdestremau/florent.cc/internal/foundation/errors"
	"github.com/florentdestremau/florent.cc/internal/frontmatter"
	"github.com/florentdestremau/florent.cc/internal/logfields"
)

// Document is a loaded source file: its item metadata plus the raw Markdown body.
type Document struct {
	Item *collections.Item
	Body []byte
}

// Options controls which parts of the input tree are walked.
type Options struct {
	// Root is the input directory.
	Root string
	// Exclude lists directories that are never walked, typically the output
	// and layout directories. Relative entries resolve against the working
	// directory, like Root.
	Exclude []string
}

// Load walks opts.Root and loads every Markdown document, ordered by path.
func Load(opts Options) ([]*Document, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "resolve input root").
			WithContext("path", opts.Root).Build()
	}
	if info, statErr := os.Stat(root); statErr != nil || !info.IsDir() {
		return nil, errors.NewError(errors.CategoryNotFound, "input directory not found").
			Fatal().WithContext("path", opts.Root).Build()
	}

	excluded := make(map[string]bool, len(opts.Exclude))
	for _, ex := range opts.Exclude {
		if abs, absErr := filepath.Abs(ex); absErr == nil {
			excluded[abs] = true
		}
	}

	var docs []*Document
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == root {
			return nil
		}
		if d.IsDir() {
			if skipDir(d.Name()) || excluded[p] {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !isMarkdownFile(d.Name()) {
			return nil
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		doc, loadErr := LoadFile(p, filepath.ToSlash(rel))
		if loadErr != nil {
			return loadErr
		}
		docs = append(docs, doc)
		slog.Debug("Discovered document", logfields.File(doc.Item.InputPath), logfields.URL(doc.Item.URL))
		return nil
	})
	if err != nil {
		if errors.IsClassified(err) {
			return nil, err
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "walk input directory").
			WithContext("path", opts.Root).Build()
	}
	return docs, nil
}

// LoadFile reads a single document. rel is its slash-separated path relative
// to the input root and determines the default URL.
func LoadFile(filePath, rel string) (*Document, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read document").
			WithContext("file", rel).Build()
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "stat document").
			WithContext("file", rel).Build()
	}

	fm, body, _, err := frontmatter.Split(raw)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "invalid frontmatter").
			WithContext("file", rel).Build()
	}
	fields, err := frontmatter.ParseYAML(fm)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "invalid frontmatter yaml").
			WithContext("file", rel).Build()
	}

	item, err := newItem(rel, fields, info)
	if err != nil {
		return nil, err
	}
	return &Document{Item: item, Body: body}, nil
}

func newItem(rel string, fields map[string]any, info fs.FileInfo) (*collections.Item, error) {
	item := &collections.Item{
		InputPath: rel,
		Title:     stringField(fields, "title"),
		Layout:    stringField(fields, "layout"),
		Tags:      tagsField(fields["tags"]),
		Draft:     boolField(fields["draft"]),
		Data:      fields,
	}

	if raw, ok := fields["date"]; ok && raw != nil {
		d, parsed := filters.ParseDate(raw)
		if !parsed {
			return nil, errors.ContentError("unparsable date in frontmatter").
				WithContext("file", rel).WithContext("date", fmt.Sprint(raw)).Build()
		}
		item.Date = d
	} else {
		item.Date = info.ModTime()
	}

	url, out, err := routeFor(rel, stringField(fields, "permalink"))
	if err != nil {
		return nil, err
	}
	item.URL = url
	item.OutputPath = out
	return item, nil
}

// routeFor derives the public URL and output path of a document.
//
//	posts/hello.md       -> /posts/hello/        posts/hello/index.html
//	posts/index.md       -> /posts/              posts/index.html
//	index.md             -> /                    index.html
//	permalink /feed.xml  -> /feed.xml            feed.xml
//	permalink /about/    -> /about/              about/index.html
func routeFor(rel, permalink string) (url, outputPath string, err error) {
	if permalink != "" {
		clean := path.Clean("/" + strings.TrimSpace(permalink))
		if strings.Contains(permalink, "..") {
			return "", "", errors.ContentError("permalink escapes the output directory").
				WithContext("file", rel).WithContext("permalink", permalink).Build()
		}
		if clean == "/" {
			return "/", "index.html", nil
		}
		if strings.HasSuffix(permalink, "/") {
			return clean + "/", strings.TrimPrefix(clean, "/") + "/index.html", nil
		}
		return clean, strings.TrimPrefix(clean, "/"), nil
	}

	dir := path.Dir(rel)
	slug := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	if slug != "index" {
		dir = path.Join(dir, slug)
	}
	if dir == "." {
		return "/", "index.html", nil
	}
	return "/" + dir + "/", dir + "/index.html", nil
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "node_modules"
}

func isMarkdownFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".markdown"
}

func stringField(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// tagsField accepts `tags: posts` as well as `tags: [posts, go]`.
func tagsField(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return []string{strings.TrimSpace(t)}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if e == nil {
				continue
			}
			if s := strings.TrimSpace(fmt.Sprint(e)); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{fmt.Sprint(t)}
	}
}

func boolField(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	default:
		return false
	}
}
