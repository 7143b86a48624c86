package commands

import (
	"fmt"

	"github.com/florentdestremau/florent.cc/internal/build"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Output directory (overrides the configuration file)"`
	Env    string `name:"env" help:"Environment (production or development); overrides the environment variable"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, logger, err := root.loadConfig(g, b.Env)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output = b.Output
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	report, err := build.New(cfg, build.WithLogger(logger)).Build(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(g.out(), report.Summary())
	return nil
}
