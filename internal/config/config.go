package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	KindDir    = "dir"
	KindHTTP   = "http"
	KindDocker = "docker"

	FormatRecords = "records"
	FormatMeta    = "meta"
)

var validate = validator.New()

type Config struct {
	Sources   []Source  `yaml:"sources" validate:"required,min=1,dive"`
	Parallel  int       `yaml:"parallel" validate:"gte=0"`
	Baseline  string    `yaml:"baseline"`
	Pricing   string    `yaml:"pricing"`
	Secrets   Secrets   `yaml:"secrets"`
	Results   Results   `yaml:"results"`
	Composite Composite `yaml:"composite"`
}

// Source is one place experiment outputs are retrieved from.
type Source struct {
	Name   string `yaml:"name" validate:"required,excludesall=/\\"`
	Kind   string `yaml:"kind" validate:"required,oneof=dir http docker"`
	Format string `yaml:"format" validate:"omitempty,oneof=records meta"`

	// dir
	Path string `yaml:"path"`

	// http
	URL        string            `yaml:"url" validate:"omitempty,url"`
	Headers    map[string]string `yaml:"headers"`
	RatePerSec float64           `yaml:"rate_per_sec" validate:"gte=0"`

	// docker
	Image          string            `yaml:"image"`
	Command        []string          `yaml:"command"`
	Mount          string            `yaml:"mount"`
	Env            map[string]string `yaml:"env"`
	TimeoutMinutes int               `yaml:"timeout_minutes" validate:"gte=0"`
}

// Composite derives a weighted metric from other metrics at fetch time.
type Composite struct {
	Name    string             `yaml:"name"`
	Weights map[string]float64 `yaml:"weights" validate:"dive,gte=0"`
}

type Secrets struct {
	EnvFile string `yaml:"env_file"`
}

type Results struct {
	Dir      string `yaml:"dir"`
	Compress string `yaml:"compress" validate:"omitempty,oneof=none gzip zstd"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := check(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// check applies per-kind rules and fills defaults.
func check(cfg *Config) error {
	seen := map[string]bool{}
	for i := range cfg.Sources {
		s := &cfg.Sources[i]
		if seen[s.Name] {
			return fmt.Errorf("source %q: duplicate name", s.Name)
		}
		seen[s.Name] = true
		// Names become result file names.
		if s.Name == "." || s.Name == ".." {
			return fmt.Errorf("source %q: name must not be a path", s.Name)
		}

		switch s.Kind {
		case KindDir:
			if s.Path == "" {
				return fmt.Errorf("source %q: path is required for dir sources", s.Name)
			}
		case KindHTTP:
			if s.URL == "" {
				return fmt.Errorf("source %q: url is required for http sources", s.Name)
			}
		case KindDocker:
			if s.Image == "" {
				return fmt.Errorf("source %q: image is required for docker sources", s.Name)
			}
			if s.TimeoutMinutes == 0 {
				s.TimeoutMinutes = 10
			}
		}
		if s.Format == "" {
			s.Format = FormatRecords
		}
		if s.Format == FormatMeta && s.Kind != KindDir {
			return fmt.Errorf("source %q: meta format is only supported for dir sources", s.Name)
		}
	}
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	if cfg.Results.Dir == "" {
		cfg.Results.Dir = "results"
	}
	if cfg.Results.Compress == "" {
		cfg.Results.Compress = "none"
	}
	return nil
}

// Lookup returns the source with the given name.
func (c *Config) Lookup(name string) (*Source, bool) {
	for i := range c.Sources {
		if c.Sources[i].Name == name {
			return &c.Sources[i], true
		}
	}
	return nil, false
}
