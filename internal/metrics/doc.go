// Package metrics provides build metrics for the site generator.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics cost nothing unless the preview server (or a
// caller) swaps in a PrometheusRecorder:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	builder := build.New(cfg, build.WithRecorder(rec))
//	mux.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
