// Package commands implements the florentcc subcommands.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/florentdestremau/florent.cc/internal/collections"
	"github.com/florentdestremau/florent.cc/internal/config"
	"github.com/florentdestremau/florent.cc/internal/foundation/errors"
)

// Global is shared state passed to every subcommand.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Site configuration file" default:"site.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build       BuildCmd       `cmd:"" help:"Build the site into the output directory"`
	Serve       ServeCmd       `cmd:"" help:"Build and serve the site, rebuilding on changes"`
	Collections CollectionsCmd `cmd:"" help:"List the posts and drafts collections"`
	Init        InitCmd        `cmd:"" help:"Write a default configuration file"`
}

// AfterApply runs after flag parsing; it installs a logger for the time
// before the configuration (and its logging section) is loaded.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig loads the configuration file, applies an --env override and
// switches the default logger to the configured one.
func (c *CLI) loadConfig(g *Global, env string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, nil, err
	}
	if env != "" {
		parsed, err := collections.ValidateEnvironment(env)
		if err != nil {
			return nil, nil, errors.WrapError(err, errors.CategoryValidation, "invalid --env").Build()
		}
		cfg.Environment = parsed
	}

	logger := cfg.Logging.NewLogger(os.Stderr, c.Verbose)
	slog.SetDefault(logger)
	if g != nil {
		g.Logger = logger
	}
	return cfg, logger, nil
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
