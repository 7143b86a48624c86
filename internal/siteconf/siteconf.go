// Package siteconf is the site's configuration entry point: it declares the
// passthrough copies, plugins, filters and collections the build uses.
package siteconf

import (
	"github.com/florentdestremau/florent.cc/internal/collections"
	"github.com/florentdestremau/florent.cc/internal/config"
	"github.com/florentdestremau/florent.cc/internal/filters"
	"github.com/florentdestremau/florent.cc/internal/plugins/highlight"
	"github.com/florentdestremau/florent.cc/internal/plugins/idattr"
	"github.com/florentdestremau/florent.cc/internal/site"
)

// Collection names.
const (
	PostsCollection  = "posts"
	DraftsCollection = "drafts"
)

// Option tunes Configure.
type Option func(*options)

type options struct {
	onFallback filters.FallbackFunc
}

// WithFallbackHook is called whenever a filter degrades to its fallback output.
func WithFallbackHook(fn filters.FallbackFunc) Option {
	return func(o *options) { o.onFallback = fn }
}

// Configure registers everything the site needs on r. The environment is
// taken from cfg.Environment, never from the process.
func Configure(r *site.Registry, cfg *config.Config, opts ...Option) error {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	for _, rule := range cfg.Passthrough {
		if err := r.AddPassthroughCopyTo(rule.From, rule.Target()); err != nil {
			return err
		}
	}

	if err := r.AddPlugin(highlight.New(cfg.Highlight.Style, cfg.Highlight.LineNumbers)); err != nil {
		return err
	}

	set := filters.NewSet(filters.Options{
		Locale:         cfg.Locale,
		WordsPerMinute: cfg.WordsPerMinute,
		OnFallback:     o.onFallback,
	})
	if err := r.AddFilter(filters.DateFilter, set.FormatDate); err != nil {
		return err
	}
	if err := r.AddFilter(filters.ISODateFilter, set.ISODate); err != nil {
		return err
	}
	if err := r.AddFilter(filters.ReadingTimeFilter, set.ReadingTime); err != nil {
		return err
	}

	if err := r.AddCollection(PostsCollection, func(api site.CollectionAPI) []*collections.Item {
		return collections.Posts(api.GetFilteredByTag(collections.PostsTag))
	}); err != nil {
		return err
	}
	env := cfg.Environment
	if err := r.AddCollection(DraftsCollection, func(api site.CollectionAPI) []*collections.Item {
		return collections.Drafts(api.GetFilteredByTag(collections.PostsTag), env)
	}); err != nil {
		return err
	}

	return r.AddPlugin(idattr.New())
}
