package config

import "github.com/florentdestremau/florent.cc/internal/collections"

const (
	DefaultInput               = "."
	DefaultOutput              = "_site"
	DefaultLayouts             = "_includes"
	DefaultLayout              = "post.html"
	DefaultLocale              = "fr-FR"
	DefaultWordsPerMinute      = 200
	DefaultHighlightStyle      = "github"
	DefaultEnvironmentVariable = "ELEVENTY_ENV"
	DefaultPreviewPort         = 8080
	DefaultMetricsPath         = "/metrics"
)

// DefaultPassthrough lists the files copied verbatim into every build.
func DefaultPassthrough() []PassthroughRule {
	return []PassthroughRule{
		{From: "bundle.css"},
		{From: "img"},
		{From: "robots.txt"},
	}
}

// Default returns a fully populated configuration for a development build.
func Default() *Config {
	cfg := &Config{Title: "florent.cc", URL: "https://florent.cc"}
	applyDefaults(cfg)
	cfg.Environment = collections.EnvDevelopment
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Input == "" {
		cfg.Input = DefaultInput
	}
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if cfg.Layouts == "" {
		cfg.Layouts = DefaultLayouts
	}
	if cfg.DefaultLayout == "" {
		cfg.DefaultLayout = DefaultLayout
	}
	if cfg.Locale == "" {
		cfg.Locale = DefaultLocale
	}
	if cfg.WordsPerMinute == 0 {
		cfg.WordsPerMinute = DefaultWordsPerMinute
	}
	// nil means "not configured"; an explicit empty list disables passthrough.
	if cfg.Passthrough == nil {
		cfg.Passthrough = DefaultPassthrough()
	}
	if cfg.Highlight.Style == "" {
		cfg.Highlight.Style = DefaultHighlightStyle
	}
	if cfg.EnvironmentVariable == "" {
		cfg.EnvironmentVariable = DefaultEnvironmentVariable
	}
	if cfg.Preview.Port == 0 {
		cfg.Preview.Port = DefaultPreviewPort
	}
	if cfg.Preview.MetricsPath == "" {
		cfg.Preview.MetricsPath = DefaultMetricsPath
	}
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
}
