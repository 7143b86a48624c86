// Package collections derives the named content views exposed to templates.
//
// All functions are pure: they never read process state, and the deployment
// environment is passed in explicitly.
package collections

import (
	"slices"
	"sort"
	"time"
)

// PostsTag is the tag that marks an item as a blog post.
const PostsTag = "posts"

// Item is a single content document as seen by collections and templates.
type Item struct {
	// InputPath is the source path relative to the input root, using forward slashes.
	InputPath string
	// OutputPath is the destination path relative to the output root.
	OutputPath string
	URL        string
	Title      string
	Date       time.Time
	Tags       []string
	Draft      bool
	Layout     string
	// Content holds the rendered HTML body once the item has been rendered.
	Content string
	// Data carries the remaining frontmatter fields.
	Data map[string]any
}

// HasTag reports whether the item carries tag.
func (i *Item) HasTag(tag string) bool {
	return slices.Contains(i.Tags, tag)
}

// Tagged returns the items carrying tag, preserving input order.
func Tagged(items []*Item, tag string) []*Item {
	out := make([]*Item, 0, len(items))
	for _, it := range items {
		if it.HasTag(tag) {
			out = append(out, it)
		}
	}
	return out
}

// SortByDate orders items the way the host exposes them by default:
// ascending by date, ties broken by input path. It sorts in place.
func SortByDate(items []*Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.Before(items[j].Date)
		}
		return items[i].InputPath < items[j].InputPath
	})
}
