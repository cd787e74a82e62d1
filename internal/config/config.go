// Package config loads the mdead YAML configuration.
package config

import (
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/mdead/internal/ead"
	"git.home.luguber.info/inful/mdead/internal/foundation/errors"
	"git.home.luguber.info/inful/mdead/internal/markdown"
)

// CurrentVersion is the only configuration version Load accepts.
const CurrentVersion = "1.0"

const (
	DefaultExtension = ".xml"
	DefaultStateFile = ".mdead-state.yaml"
	DefaultDebounce  = "300ms"
)

// Config is the root of the configuration file.
type Config struct {
	Version     string            `yaml:"version"`
	Output      OutputConfig      `yaml:"output"`
	Render      RenderConfig      `yaml:"render"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics,omitempty"`
	Incremental IncrementalConfig `yaml:"incremental,omitempty"`
	Watch       WatchConfig       `yaml:"watch,omitempty"`
	Workers     int               `yaml:"workers,omitempty"`
}

// OutputConfig controls where and how EAD files are written.
type OutputConfig struct {
	// Directory receives output files. Empty writes next to each source file.
	Directory string `yaml:"directory,omitempty"`
	Extension string `yaml:"extension,omitempty"`
	Pretty    bool   `yaml:"pretty"`
	// Wrap names an element enclosing each document's markup.
	Wrap string `yaml:"wrap,omitempty"`
}

// RenderConfig controls parsing and serialization.
type RenderConfig struct {
	MaxDepth      int                                 `yaml:"max_depth,omitempty"`
	Extensions    []string                            `yaml:"extensions,omitempty"`
	Abbreviations map[string]string                   `yaml:"abbreviations,omitempty"`
	References    map[string]markdown.ReferenceTarget `yaml:"references,omitempty"`
}

type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig names a Prometheus textfile written after each batch.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

type IncrementalConfig struct {
	Enabled   bool   `yaml:"enabled"`
	StateFile string `yaml:"state_file,omitempty"`
}

type WatchConfig struct {
	Debounce string `yaml:"debounce,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{Version: CurrentVersion}
	applyDefaults(cfg)
	return cfg
}

// Load reads, expands, normalizes and validates a configuration file.
// Variables from .env and .env.local are visible to ${VAR} expansion.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", path).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			Fatal().WithContext("path", path).Build()
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").
			Fatal().WithContext("path", path).Build()
	}

	if cfg.Version != CurrentVersion {
		return nil, errors.ConfigError(fmt.Sprintf("unsupported configuration version: %q (expected %s)", cfg.Version, CurrentVersion)).
			WithContext("path", path).Build()
	}

	if err := normalize(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalize(cfg *Config) error {
	level, err := logLevelNormalizer.Parse(string(cfg.Logging.Level))
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "logging.level").Fatal().Build()
	}
	format, err := logFormatNormalizer.Parse(string(cfg.Logging.Format))
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "logging.format").Fatal().Build()
	}
	cfg.Logging.Level = level
	cfg.Logging.Format = format

	cfg.Output.Wrap = strings.TrimSpace(cfg.Output.Wrap)
	cfg.Output.Extension = strings.TrimSpace(cfg.Output.Extension)
	for i, name := range cfg.Render.Extensions {
		cfg.Render.Extensions[i] = strings.ToLower(strings.TrimSpace(name))
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Output.Extension == "" {
		cfg.Output.Extension = DefaultExtension
	}
	if cfg.Render.MaxDepth <= 0 {
		cfg.Render.MaxDepth = ead.DefaultMaxDepth
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
	if cfg.Incremental.StateFile == "" {
		cfg.Incremental.StateFile = DefaultStateFile
	}
	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = DefaultDebounce
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
}

var xmlName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9._-]*$`)

// ValidWrapElement reports whether name can be used as a wrapper element.
func ValidWrapElement(name string) bool {
	return xmlName.MatchString(name) && !strings.HasPrefix(strings.ToLower(name), "xml")
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Output.Extension, ".") {
		return errors.ValidationError("output.extension must start with a dot").
			WithContext("extension", c.Output.Extension).Build()
	}
	if c.Output.Wrap != "" && !ValidWrapElement(c.Output.Wrap) {
		return errors.ValidationError("output.wrap is not a valid element name").
			WithContext("wrap", c.Output.Wrap).Build()
	}
	for _, name := range c.Render.Extensions {
		if !markdown.KnownExtension(name) {
			return errors.ValidationError(fmt.Sprintf("unknown markdown extension %q (valid: %s)",
				name, strings.Join(markdown.ExtensionNames(), ", "))).Build()
		}
	}
	for label, ref := range c.Render.References {
		if strings.TrimSpace(ref.URL) == "" {
			return errors.ValidationError("render.references entry has no url").
				WithContext("label", label).Build()
		}
	}
	if _, err := c.DebounceDuration(); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "watch.debounce is not a duration").
			Fatal().WithContext("debounce", c.Watch.Debounce).Build()
	}
	return nil
}

// DebounceDuration parses Watch.Debounce.
func (c *Config) DebounceDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", d)
	}
	return d, nil
}

// MarkdownOptions returns the parser options shared by every document.
func (c *Config) MarkdownOptions() markdown.Options {
	return markdown.Options{
		Extensions:    c.Render.Extensions,
		Abbreviations: c.Render.Abbreviations,
		References:    c.Render.References,
	}
}

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).Build()
	}

	example := Config{
		Version: CurrentVersion,
		Output: OutputConfig{
			Directory: "./ead",
			Extension: DefaultExtension,
			Pretty:    true,
			Wrap:      "archdesc",
		},
		Render: RenderConfig{
			MaxDepth:   ead.DefaultMaxDepth,
			Extensions: append([]string(nil), markdown.DefaultExtensions...),
			Abbreviations: map[string]string{
				"EAD": "Encoded Archival Description",
			},
			References: map[string]markdown.ReferenceTarget{
				"loc": {URL: "https://www.loc.gov/ead/", Title: "EAD Official Site"},
			},
		},
		Logging:     LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Incremental: IncrementalConfig{Enabled: true, StateFile: DefaultStateFile},
		Watch:       WatchConfig{Debounce: DefaultDebounce},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal config").Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", path).Build()
	}
	return nil
}
