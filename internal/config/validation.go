package config

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"github.com/florentdestremau/florent.cc/internal/foundation/errors"
)

// Validate checks the configuration after defaults have been applied.
func (c *Config) Validate() error {
	if c.WordsPerMinute < 0 {
		return errors.ValidationError("words_per_minute must be positive").
			WithContext("words_per_minute", c.WordsPerMinute).Build()
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid locale").
			Fatal().WithContext("locale", c.Locale).Build()
	}
	if filepath.Clean(c.Output) == filepath.Clean(c.Input) {
		return errors.ValidationError("output directory must differ from input directory").
			WithContext("output", c.Output).Build()
	}
	if c.Preview.Port < 0 || c.Preview.Port > 65535 {
		return errors.ValidationError("preview port out of range").
			WithContext("port", c.Preview.Port).Build()
	}
	if !strings.HasPrefix(c.Preview.MetricsPath, "/") {
		return errors.ValidationError("metrics_path must start with /").
			WithContext("metrics_path", c.Preview.MetricsPath).Build()
	}
	for i, rule := range c.Passthrough {
		if err := validatePassthrough(rule); err != nil {
			return err.WithContext("index", i)
		}
	}
	return nil
}

func validatePassthrough(rule PassthroughRule) *errors.ClassifiedError {
	if strings.TrimSpace(rule.From) == "" {
		return errors.ValidationError("passthrough rule has an empty source").Build()
	}
	for _, p := range []string{rule.From, rule.Target()} {
		if filepath.IsAbs(p) || strings.HasPrefix(filepath.Clean(p), "..") {
			return errors.ValidationError("passthrough paths must stay inside the site").
				WithContext("path", p).Build()
		}
	}
	if _, err := filepath.Match(rule.From, ""); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid passthrough pattern").
			Fatal().WithContext("path", rule.From).Build()
	}
	return nil
}
