package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/florentdestremau/florent.cc/internal/build"
	"github.com/florentdestremau/florent.cc/internal/config"
	"github.com/florentdestremau/florent.cc/internal/metrics"
	"github.com/florentdestremau/florent.cc/internal/preview"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Port int    `help:"Port to listen on (overrides preview.port)"`
	Env  string `name:"env" help:"Environment (production or development); overrides the environment variable"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, logger, err := root.loadConfig(g, s.Env)
	if err != nil {
		return err
	}
	port := cfg.Preview.Port
	if s.Port != 0 {
		port = s.Port
	}

	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(reg)

	builder := build.New(cfg, build.WithRecorder(recorder), build.WithLogger(logger))
	srv := preview.New(builder, preview.Options{
		OutputDir:   cfg.Output,
		WatchDirs:   watchDirs(cfg),
		Addr:        fmt.Sprintf(":%d", port),
		MetricsPath: cfg.Preview.MetricsPath,
		Registry:    reg,
		Logger:      logger,
	})

	ctx, cancel := signalContext()
	defer cancel()
	return srv.Run(ctx)
}

// watchDirs returns the input root plus the layouts directory when it lives
// outside the input tree.
func watchDirs(cfg *config.Config) []string {
	dirs := []string{cfg.Input}
	in, errIn := filepath.Abs(cfg.Input)
	layouts, errL := filepath.Abs(cfg.Layouts)
	if errIn != nil || errL != nil {
		return dirs
	}
	if layouts != in && !strings.HasPrefix(layouts, in+string(filepath.Separator)) {
		dirs = append(dirs, cfg.Layouts)
	}
	return dirs
}
