// Package config loads seanode settings from YAML.
//
// A configuration file looks like:
//
//	strength_reduce: true
//	reassociate: true
//	min_max: false
//	max_iterations: 10000
//	trace: false
//	emit: text
//
// Omitted keys keep their defaults.
package config // import "github.com/andrewarchi/seanode/internal/config"

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/andrewarchi/seanode/ir"
	"github.com/andrewarchi/seanode/ir/optimize"
	"gopkg.in/yaml.v3"
)

// Config holds the canonicalizer options and tool defaults.
type Config struct {
	StrengthReduce bool   `yaml:"strength_reduce"`
	Reassociate    bool   `yaml:"reassociate"`
	MinMax         bool   `yaml:"min_max"`
	MaxIterations  int    `yaml:"max_iterations"`
	Trace          bool   `yaml:"trace"`
	Emit           string `yaml:"emit"` // default backend: text or llvm
}

// Default returns the configuration used when no file is given.
func Default() Config {
	opts := ir.DefaultOptions()
	return Config{
		StrengthReduce: opts.StrengthReduce,
		Reassociate:    opts.Reassociate,
		MinMax:         opts.MinMax,
		MaxIterations:  optimize.DefaultMaxIterations,
		Emit:           "text",
	}
}

// Load reads the configuration file at path. A missing file yields the
// defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML configuration over the defaults. Unknown keys
// are an error.
func Parse(data []byte) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	if c.MaxIterations < 0 {
		return fmt.Errorf("config: negative max_iterations %d", c.MaxIterations)
	}
	switch c.Emit {
	case "text", "llvm":
	default:
		return fmt.Errorf("config: unknown emit backend %q", c.Emit)
	}
	return nil
}

// GraphOptions returns the rewrite switches for ir.Graph.
func (c Config) GraphOptions() ir.Options {
	return ir.Options{
		StrengthReduce: c.StrengthReduce,
		Reassociate:    c.Reassociate,
		MinMax:         c.MinMax,
	}
}

// OptimizeOptions returns the driver options. Rewrites are traced to
// logger when tracing is on.
func (c Config) OptimizeOptions(logger *slog.Logger) optimize.Options {
	opts := optimize.Options{MaxIterations: c.MaxIterations}
	if c.Trace {
		opts.Logger = logger
	}
	return opts
}
