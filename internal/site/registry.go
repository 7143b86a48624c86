// Package site holds the registry the site configuration writes into and the
// build reads from: filters, collections, passthrough copies, plugins, output
// transforms and Markdown extensions, all keyed by name.
package site

import (
	"fmt"
	"html/template"
	"reflect"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/florentdestremau/florent.cc/internal/collections"
	"github.com/florentdestremau/florent.cc/internal/foundation/errors"
)

// CollectionFunc derives a named collection from the content set.
type CollectionFunc func(api CollectionAPI) []*collections.Item

// TransformFunc rewrites a generated page before it is written.
// outputPath is relative to the output root.
type TransformFunc func(content []byte, outputPath string) ([]byte, error)

// Plugin bundles registrations. Register is called once, from AddPlugin.
type Plugin interface {
	Name() string
	Register(r *Registry) error
}

// PassthroughCopy maps a source pattern onto an output-relative target.
type PassthroughCopy struct {
	From string
	To   string
}

// Transform is a named output transform.
type Transform struct {
	Name string
	Fn   TransformFunc
}

// Registry collects everything the configuration registers. It is built once
// per build and is not safe for concurrent mutation.
type Registry struct {
	filters         template.FuncMap
	filterOrder     []string
	collections     map[string]CollectionFunc
	collectionOrder []string
	passthrough     []PassthroughCopy
	transforms      []Transform
	mdExtensions    []goldmark.Extender
	plugins         []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		filters:     template.FuncMap{},
		collections: map[string]CollectionFunc{},
	}
}

// AddPassthroughCopy copies pattern to the same relative path in the output.
func (r *Registry) AddPassthroughCopy(pattern string) error {
	return r.AddPassthroughCopyTo(pattern, "")
}

// AddPassthroughCopyTo copies pattern to target, relative to the output root.
// An empty target keeps the source path.
func (r *Registry) AddPassthroughCopyTo(pattern, target string) error {
	if strings.TrimSpace(pattern) == "" {
		return errors.ValidationError("passthrough pattern must not be empty").Build()
	}
	if target == "" {
		target = pattern
	}
	r.passthrough = append(r.passthrough, PassthroughCopy{From: pattern, To: target})
	return nil
}

// AddFilter registers a template filter under name. fn must be a function
// returning one value, or a value and an error.
func (r *Registry) AddFilter(name string, fn any) error {
	if err := checkName("filter", name); err != nil {
		return err
	}
	if _, exists := r.filters[name]; exists {
		return duplicate("filter", name)
	}
	if err := checkFilterFunc(fn); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid filter function").
			Fatal().WithContext("filter", name).Build()
	}
	r.filters[name] = fn
	r.filterOrder = append(r.filterOrder, name)
	return nil
}

// AddCollection registers a named collection.
func (r *Registry) AddCollection(name string, fn CollectionFunc) error {
	if err := checkName("collection", name); err != nil {
		return err
	}
	if fn == nil {
		return errors.ValidationError("collection function must not be nil").
			WithContext("collection", name).Build()
	}
	if _, exists := r.collections[name]; exists {
		return duplicate("collection", name)
	}
	r.collections[name] = fn
	r.collectionOrder = append(r.collectionOrder, name)
	return nil
}

// AddTransform registers an output transform. Transforms run in registration order.
func (r *Registry) AddTransform(name string, fn TransformFunc) error {
	if err := checkName("transform", name); err != nil {
		return err
	}
	if fn == nil {
		return errors.ValidationError("transform function must not be nil").
			WithContext("transform", name).Build()
	}
	for _, t := range r.transforms {
		if t.Name == name {
			return duplicate("transform", name)
		}
	}
	r.transforms = append(r.transforms, Transform{Name: name, Fn: fn})
	return nil
}

// AddMarkdownExtension adds a goldmark extension to the Markdown renderer.
func (r *Registry) AddMarkdownExtension(ext goldmark.Extender) {
	if ext != nil {
		r.mdExtensions = append(r.mdExtensions, ext)
	}
}

// AddPlugin applies p immediately. A plugin can only be added once.
func (r *Registry) AddPlugin(p Plugin) error {
	if p == nil {
		return errors.ValidationError("plugin must not be nil").Build()
	}
	name := p.Name()
	for _, existing := range r.plugins {
		if existing == name {
			return duplicate("plugin", name)
		}
	}
	if err := p.Register(r); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "plugin registration failed").
			Fatal().WithContext("plugin", name).Build()
	}
	r.plugins = append(r.plugins, name)
	return nil
}

// Filters returns a copy of the registered filters as a template FuncMap.
func (r *Registry) Filters() template.FuncMap {
	out := make(template.FuncMap, len(r.filters))
	for k, v := range r.filters {
		out[k] = v
	}
	return out
}

// FilterNames returns the filter names in registration order.
func (r *Registry) FilterNames() []string { return append([]string(nil), r.filterOrder...) }

// CollectionNames returns the collection names in registration order.
func (r *Registry) CollectionNames() []string { return append([]string(nil), r.collectionOrder...) }

// Passthrough returns the passthrough copies in registration order.
func (r *Registry) Passthrough() []PassthroughCopy {
	return append([]PassthroughCopy(nil), r.passthrough...)
}

// Transforms returns the output transforms in registration order.
func (r *Registry) Transforms() []Transform { return append([]Transform(nil), r.transforms...) }

// MarkdownExtensions returns the goldmark extensions added by plugins.
func (r *Registry) MarkdownExtensions() []goldmark.Extender {
	return append([]goldmark.Extender(nil), r.mdExtensions...)
}

// Plugins returns the names of applied plugins.
func (r *Registry) Plugins() []string { return append([]string(nil), r.plugins...) }

func checkName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.ValidationError(kind + " name must not be empty").Build()
	}
	return nil
}

func duplicate(kind, name string) error {
	return errors.ValidationError(kind+" already registered").WithContext(kind, name).Build()
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func checkFilterFunc(fn any) error {
	if fn == nil {
		return fmt.Errorf("filter is nil")
	}
	t := reflect.TypeOf(fn)
	if t.Kind() != reflect.Func {
		return fmt.Errorf("filter is %s, not a function", t.Kind())
	}
	switch {
	case t.NumOut() == 1:
		return nil
	case t.NumOut() == 2 && t.Out(1) == errorType:
		return nil
	default:
		return fmt.Errorf("filter must return one value, or a value and an error")
	}
}
