package interp

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"gwbasic/internal/mbf"
)

// Config holds the interpreter settings. Zero fields take the value
// from DefaultConfig.
type Config struct {
	Math        string `yaml:"math"` // native or legacy
	Width       int    `yaml:"width"`
	StringSpace int    `yaml:"string_space"`
	Trace       bool   `yaml:"trace"`
	Dump        bool   `yaml:"dump"`
	MaxGosub    int    `yaml:"max_gosub"`
	MaxFor      int    `yaml:"max_for"`
}

func DefaultConfig() Config {

	return Config{
		Math:        "native",
		Width:       80,
		StringSpace: 32768,
		MaxGosub:    512,
		MaxFor:      256,
	}
}

// LoadConfig reads a YAML configuration file over the defaults.
func LoadConfig(path string) (Config, error) {

	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrap(err, "config")
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, errors.Wrapf(err, "config: parse %s", path)
	}

	if _, err := cfg.math(); err != nil {
		return cfg, errors.Wrapf(err, "config: %s", path)
	}

	return cfg.withDefaults(), nil
}

func (cfg Config) withDefaults() Config {

	def := DefaultConfig()
	if cfg.Math == "" {
		cfg.Math = def.Math
	}
	if cfg.Width <= 0 || cfg.Width > 255 {
		cfg.Width = def.Width
	}
	if cfg.StringSpace <= 0 {
		cfg.StringSpace = def.StringSpace
	}
	if cfg.MaxGosub <= 0 {
		cfg.MaxGosub = def.MaxGosub
	}
	if cfg.MaxFor <= 0 {
		cfg.MaxFor = def.MaxFor
	}

	return cfg
}

func (cfg Config) math() (mbf.Math, error) {

	switch cfg.Math {
	default:
		return nil, errors.Errorf("unknown math %q", cfg.Math)
	case "", "native":
		return mbf.Native{}, nil
	case "legacy":
		return mbf.Legacy{}, nil
	}
}
