package commands

import (
	"fmt"
	"io"

	"github.com/florentdestremau/florent.cc/internal/build"
	"github.com/florentdestremau/florent.cc/internal/collections"
)

// CollectionsCmd implements the 'collections' command.
type CollectionsCmd struct {
	Env string `name:"env" help:"Environment (production or development); overrides the environment variable"`
}

func (c *CollectionsCmd) Run(g *Global, root *CLI) error {
	cfg, logger, err := root.loadConfig(g, c.Env)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	names, colls, err := build.New(cfg, build.WithLogger(logger)).Collections(ctx)
	if err != nil {
		return err
	}

	out := g.out()
	_, _ = fmt.Fprintf(out, "environment: %s\n", cfg.Environment)
	for _, name := range names {
		printCollection(out, name, colls[name])
	}
	return nil
}

func printCollection(w io.Writer, name string, items []*collections.Item) {
	_, _ = fmt.Fprintf(w, "%s (%d)\n", name, len(items))
	for _, it := range items {
		title := it.Title
		if title == "" {
			title = it.InputPath
		}
		_, _ = fmt.Fprintf(w, "  %s  %-40s %s\n", it.Date.Format("2006-01-02"), title, it.URL)
	}
}
