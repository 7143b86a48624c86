package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/florentdestremau/florent.cc/internal/collections"
	"github.com/florentdestremau/florent.cc/internal/foundation/errors"
)

// Config is the site configuration read from site.yaml.
type Config struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`

	// Input is the content root. Output, Layouts and passthrough sources are
	// resolved relative to the directory holding the config file.
	Input         string `yaml:"input"`
	Output        string `yaml:"output"`
	Layouts       string `yaml:"layouts"`
	DefaultLayout string `yaml:"default_layout"`

	Locale         string `yaml:"locale"`
	WordsPerMinute int    `yaml:"words_per_minute"`

	Passthrough []PassthroughRule `yaml:"passthrough"`
	Highlight   HighlightConfig   `yaml:"highlight"`
	Logging     LoggingConfig     `yaml:"logging"`
	Preview     PreviewConfig     `yaml:"preview"`

	// EnvironmentVariable names the process variable that selects the environment.
	EnvironmentVariable string `yaml:"environment_variable"`

	// Environment is resolved once at load time and never read from the process again.
	Environment collections.Environment `yaml:"-"`
}

// PassthroughRule copies From (relative to the input root) verbatim to To
// (relative to the output root). A bare string in YAML sets From only.
type PassthroughRule struct {
	From string `yaml:"from"`
	To   string `yaml:"to,omitempty"`
}

// UnmarshalYAML accepts either "img" or {from: img, to: assets/img}.
func (r *PassthroughRule) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		r.From = value.Value
		return nil
	}
	type plain PassthroughRule
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*r = PassthroughRule(p)
	return nil
}

// Target returns the output-relative destination of the rule.
func (r PassthroughRule) Target() string {
	if r.To != "" {
		return r.To
	}
	return r.From
}

// HighlightConfig configures the syntax highlighting plugin.
type HighlightConfig struct {
	Style       string `yaml:"style"`
	LineNumbers bool   `yaml:"line_numbers"`
}

// PreviewConfig configures the local preview server.
type PreviewConfig struct {
	Port        int    `yaml:"port"`
	MetricsPath string `yaml:"metrics_path"`
}

// Load reads configPath, loads .env files next to it, applies defaults,
// resolves the environment and validates the result.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewError(errors.CategoryNotFound, "configuration file not found").
				WithContext("file", configPath).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read configuration").
			WithContext("file", configPath).Build()
	}

	baseDir := filepath.Dir(configPath)
	loadEnvFiles(baseDir)

	cfg, err := Parse(data, os.LookupEnv)
	if err != nil {
		return nil, err
	}
	cfg.resolvePaths(baseDir)
	return cfg, nil
}

// Parse decodes YAML configuration, expanding ${VAR} references with lookup.
func Parse(data []byte, lookup LookupFunc) (*Config, error) {
	expanded := os.Expand(string(data), func(key string) string {
		v, _ := lookup(key)
		return v
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse configuration").Build()
	}
	applyDefaults(cfg)
	cfg.Environment = ResolveEnvironment(lookup, cfg.EnvironmentVariable)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) resolvePaths(baseDir string) {
	if baseDir == "" || baseDir == "." {
		return
	}
	join := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}
	c.Input = join(c.Input)
	c.Output = join(c.Output)
	c.Layouts = join(c.Layouts)
}

// Init writes the default configuration to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("file", configPath).Build()
	}

	cfg := Default()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to encode default configuration").Build()
	}
	header := fmt.Sprintf("# Site configuration. %s=production hides drafts.\n", cfg.EnvironmentVariable)
	if err := os.WriteFile(configPath, append([]byte(header), data...), 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write configuration").
			WithContext("file", configPath).Build()
	}
	return nil
}
