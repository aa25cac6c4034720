package config

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents an adjoint.yaml file.
type Config struct {
	// Package is the Go package clause of generated files. When empty the
	// driver derives it from the output directory.
	Package string `yaml:"package,omitempty"`

	// Runtime is the import path of the differentiable-number runtime.
	Runtime string `yaml:"runtime,omitempty"`

	// Suffix is appended to every source function name to form the name of
	// its lifted Go function (sqr -> sqrAD).
	Suffix string `yaml:"suffix,omitempty"`

	// Export capitalises lifted function names.
	Export bool `yaml:"export,omitempty"`

	// Externs declares functions implemented outside the compilation unit.
	// Each must follow the lifted calling convention:
	//   func(ctx *ad.Context, args ...) (result, reset func(), backprop func())
	Externs []Extern `yaml:"externs,omitempty"`

	// Constants maps source paths (consts::PI) to Go expressions (math.Pi).
	// Entries override the built-in table.
	Constants map[string]string `yaml:"constants,omitempty"`

	// NoCache disables the compile cache.
	NoCache bool `yaml:"no_cache,omitempty"`
}

// Extern is a function the generated code may call but does not define.
type Extern struct {
	// Name is the callee as written in source (e.g. "fresnel").
	Name string `yaml:"name"`

	// Go is the Go expression naming the lifted implementation
	// (e.g. "optics.FresnelAD").
	Go string `yaml:"go"`

	// Returns is the source type of the result (f32, Vec3, ...).
	Returns string `yaml:"returns"`

	// Arity is the number of arguments. Zero disables the check.
	Arity int `yaml:"arity,omitempty"`
}

// Default returns the configuration used when no adjoint.yaml is found.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses an adjoint.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses adjoint.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for adjoint.yaml starting from dir and walking up
// to parent directories.
// Returns the path to the config file and nil error if found,
// or empty string and nil error if not found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if c.Package != "" && !token.IsIdentifier(c.Package) {
		return fmt.Errorf("%s: package %q is not a valid Go identifier", path, c.Package)
	}
	if c.Suffix != "" && !token.IsIdentifier("x"+c.Suffix) {
		return fmt.Errorf("%s: suffix %q cannot form a Go identifier", path, c.Suffix)
	}

	seen := make(map[string]int)
	for i, ext := range c.Externs {
		if ext.Name == "" {
			return fmt.Errorf("%s: externs[%d]: name is required", path, i)
		}
		if ext.Go == "" {
			return fmt.Errorf("%s: externs[%d] (%s): go is required", path, i, ext.Name)
		}
		if ext.Returns == "" {
			return fmt.Errorf("%s: externs[%d] (%s): returns is required", path, i, ext.Name)
		}
		if !IsLiftable(ext.Returns) {
			return fmt.Errorf("%s: externs[%d] (%s): returns %q has no runtime lift", path, i, ext.Name, ext.Returns)
		}
		if ext.Arity < 0 {
			return fmt.Errorf("%s: externs[%d] (%s): arity must not be negative", path, i, ext.Name)
		}
		if prev, ok := seen[ext.Name]; ok {
			return fmt.Errorf("%s: externs[%d]: %q already declared at externs[%d]", path, i, ext.Name, prev)
		}
		seen[ext.Name] = i
	}

	for src, goExpr := range c.Constants {
		if strings.TrimSpace(goExpr) == "" {
			return fmt.Errorf("%s: constants[%q]: empty Go expression", path, src)
		}
	}
	return nil
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	if c.Runtime == "" {
		c.Runtime = DefaultRuntimePath
	}
	if c.Suffix == "" {
		c.Suffix = DefaultSuffix
	}
}

// Extern returns the extern declared under name.
func (c *Config) Extern(name string) (Extern, bool) {
	for _, ext := range c.Externs {
		if ext.Name == name {
			return ext, true
		}
	}
	return Extern{}, false
}

// Constant resolves a source path to a Go expression, preferring
// user-declared constants over the built-in table.
func (c *Config) Constant(path string) (string, bool) {
	if expr, ok := c.Constants[path]; ok {
		return expr, true
	}
	expr, ok := BuiltinConstants[path]
	return expr, ok
}

// LiftedName returns the Go name of the lifted form of a source function.
func (c *Config) LiftedName(fn string) string {
	name := fn + c.Suffix
	if c.Export && name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return name
}

// Fingerprint returns a canonical encoding of the configuration, used as
// part of the compile cache key.
func (c *Config) Fingerprint() ([]byte, error) {
	return yaml.Marshal(c)
}
