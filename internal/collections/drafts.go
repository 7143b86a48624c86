package collections

import (
	"github.com/florentdestremau/florent.cc/internal/foundation/normalization"
)

// Environment distinguishes local authoring from the published build.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

var environmentNormalizer = normalization.NewNormalizer(map[string]Environment{
	"development": EnvDevelopment,
	"dev":         EnvDevelopment,
	"production":  EnvProduction,
	"prod":        EnvProduction,
}, EnvDevelopment)

// ParseEnvironment maps a raw flag value to an Environment.
// Anything that is not a production spelling is development.
func ParseEnvironment(raw string) Environment {
	return environmentNormalizer.Normalize(raw)
}

// ValidateEnvironment is ParseEnvironment for explicit input such as a CLI
// flag: unknown spellings are reported instead of falling back.
func ValidateEnvironment(raw string) (Environment, error) {
	return environmentNormalizer.NormalizeWithError(raw)
}

func (e Environment) IsProduction() bool { return e == EnvProduction }

func (e Environment) String() string { return string(e) }

// Posts returns the items tagged "posts" that are not drafts.
// Draft posts never appear here, whatever the environment.
func Posts(items []*Item) []*Item {
	out := make([]*Item, 0, len(items))
	for _, it := range items {
		if it.HasTag(PostsTag) && !it.Draft {
			out = append(out, it)
		}
	}
	return out
}

// Drafts returns the draft items tagged "posts" outside production.
// In production it returns an empty, non-nil slice.
func Drafts(items []*Item, env Environment) []*Item {
	out := make([]*Item, 0)
	if env.IsProduction() {
		return out
	}
	for _, it := range items {
		if it.HasTag(PostsTag) && it.Draft {
			out = append(out, it)
		}
	}
	return out
}

// Publishable reports whether an item's page should be written in env.
func Publishable(it *Item, env Environment) bool {
	return !it.Draft || !env.IsProduction()
}
