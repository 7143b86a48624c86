package site

import (
	"github.com/florentdestremau/florent.cc/internal/collections"
)

// CollectionAPI is what a CollectionFunc sees of the content set.
type CollectionAPI interface {
	// All returns every item in default order.
	All() []*collections.Item
	// GetFilteredByTag returns the items carrying tag in default order.
	GetFilteredByTag(tag string) []*collections.Item
}

type collectionAPI struct {
	items []*collections.Item
}

// NewCollectionAPI wraps items, sorted into the default date order.
// The caller's slice is not modified.
func NewCollectionAPI(items []*collections.Item) CollectionAPI {
	sorted := append([]*collections.Item(nil), items...)
	collections.SortByDate(sorted)
	return &collectionAPI{items: sorted}
}

func (a *collectionAPI) All() []*collections.Item {
	return append([]*collections.Item(nil), a.items...)
}

func (a *collectionAPI) GetFilteredByTag(tag string) []*collections.Item {
	return collections.Tagged(a.items, tag)
}

// ResolveCollections evaluates every registered collection against the items
// publishable in env. "all" is always present and cannot be overridden.
// In production no collection, "all" included, can see a draft.
func (r *Registry) ResolveCollections(items []*collections.Item, env collections.Environment) map[string][]*collections.Item {
	visible := make([]*collections.Item, 0, len(items))
	for _, it := range items {
		if collections.Publishable(it, env) {
			visible = append(visible, it)
		}
	}
	api := NewCollectionAPI(visible)
	out := make(map[string][]*collections.Item, len(r.collections)+1)
	for _, name := range r.collectionOrder {
		result := r.collections[name](api)
		if result == nil {
			result = []*collections.Item{}
		}
		out[name] = result
	}
	out["all"] = api.All()
	return out
}
