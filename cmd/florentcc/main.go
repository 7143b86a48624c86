package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/florentdestremau/florent.cc/cmd/florentcc/commands"
	"github.com/florentdestremau/florent.cc/internal/foundation/errors"
	"github.com/florentdestremau/florent.cc/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("florentcc"),
		kong.Description("Static site builder for florent.cc"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := &commands.Global{Out: os.Stdout}
	if err := parser.Run(global, cli); err != nil {
		adapter := errors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
		os.Exit(adapter.Report(err))
	}
}
