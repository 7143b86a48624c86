package collections

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func samplePosts() []*Item {
	return []*Item{
		{InputPath: "posts/first.md", Title: "First", Tags: []string{"posts"}},
		{InputPath: "posts/wip.md", Title: "Work in progress", Tags: []string{"posts"}, Draft: true},
		{InputPath: "posts/second.md", Title: "Second", Tags: []string{"posts", "go"}},
	}
}

func titles(items []*Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}

func TestPosts_ExcludesDrafts(t *testing.T) {
	posts := Posts(samplePosts())
	require.Equal(t, []string{"First", "Second"}, titles(posts))
}

func TestDrafts_Production(t *testing.T) {
	items := samplePosts()

	require.Len(t, Posts(items), 2)
	drafts := Drafts(items, EnvProduction)
	require.NotNil(t, drafts)
	require.Empty(t, drafts)
}

func TestDrafts_Development(t *testing.T) {
	drafts := Drafts(samplePosts(), EnvDevelopment)
	require.Len(t, drafts, 1)
	require.Equal(t, "Work in progress", drafts[0].Title)
}

func TestPosts_IgnoresUntaggedItems(t *testing.T) {
	items := []*Item{
		{Title: "About", Tags: nil},
		{Title: "Hidden note", Draft: true, Tags: []string{"notes"}},
		{Title: "Post", Tags: []string{"posts"}},
	}

	require.Equal(t, []string{"Post"}, titles(Posts(items)))
	require.Empty(t, Drafts(items, EnvDevelopment))
}

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		raw  string
		want Environment
	}{
		{"production", EnvProduction},
		{"PROD", EnvProduction},
		{" production ", EnvProduction},
		{"development", EnvDevelopment},
		{"staging", EnvDevelopment},
		{"", EnvDevelopment},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			require.Equal(t, tt.want, ParseEnvironment(tt.raw))
		})
	}
}

func TestValidateEnvironment(t *testing.T) {
	env, err := ValidateEnvironment("prod")
	require.NoError(t, err)
	require.Equal(t, EnvProduction, env)

	env, err = ValidateEnvironment("")
	require.NoError(t, err)
	require.Equal(t, EnvDevelopment, env)

	_, err = ValidateEnvironment("staging")
	require.Error(t, err)
	require.Contains(t, err.Error(), "staging")
}

func TestPublishable(t *testing.T) {
	draft := &Item{Draft: true}
	post := &Item{}

	require.True(t, Publishable(post, EnvProduction))
	require.False(t, Publishable(draft, EnvProduction))
	require.True(t, Publishable(draft, EnvDevelopment))
}

func TestSortByDate(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2023, 2, d, 0, 0, 0, 0, time.UTC) }
	items := []*Item{
		{InputPath: "c.md", Title: "C", Date: day(3)},
		{InputPath: "b.md", Title: "B", Date: day(1)},
		{InputPath: "a.md", Title: "A", Date: day(1)},
	}

	SortByDate(items)
	require.Equal(t, []string{"A", "B", "C"}, titles(items))
}

func TestTagged(t *testing.T) {
	items := samplePosts()
	require.Equal(t, []string{"Second"}, titles(Tagged(items, "go")))
	require.Empty(t, Tagged(items, "rust"))
}
