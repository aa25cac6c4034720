// Package driver runs a source unit through the compiler stages and manages
// the compile cache.
package driver

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/funvibe/adjoint/internal/analyzer"
	"github.com/funvibe/adjoint/internal/codegen"
	"github.com/funvibe/adjoint/internal/config"
	"github.com/funvibe/adjoint/internal/ir"
	"github.com/funvibe/adjoint/internal/lexer"
	"github.com/funvibe/adjoint/internal/lower"
	"github.com/funvibe/adjoint/internal/parser"
	"github.com/funvibe/adjoint/internal/pipeline"
	"github.com/funvibe/adjoint/internal/utils"
)

// Emit selects what Compile produces.
type Emit string

const (
	EmitGo Emit = "go"
	EmitIR Emit = "ir"
)

func ParseEmit(s string) (Emit, error) {
	switch Emit(s) {
	case EmitGo, EmitIR:
		return Emit(s), nil
	case "":
		return EmitGo, nil
	}
	return "", fmt.Errorf("unknown emit mode %q (want go or ir)", s)
}

type Options struct {
	Emit Emit
	// Output is where the generated file will be written. When the config
	// names no package, the package is derived from its directory.
	Output string
	// CacheDir overrides the default .adjoint directory next to the source.
	CacheDir string
	NoCache  bool
	Logger   *log.Logger
}

type Result struct {
	Output []byte
	// Module is the lowered IR; nil when the output came from the cache.
	Module *ir.Module
	Cached bool
}

// Stages returns the pipeline for an emit mode. IR output still runs the
// analyzer so that SSA violations are reported.
func Stages(emit Emit) *pipeline.Pipeline {
	stages := []pipeline.Processor{
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&lower.LowerProcessor{},
		&analyzer.AnalyzerProcessor{},
	}
	if emit != EmitIR {
		stages = append(stages, &codegen.CodegenProcessor{})
	}
	return pipeline.New(stages...)
}

// Compile compiles src, read from path. Diagnostics are returned as a
// diagnostics.ErrorList; nothing is produced for a failed unit.
func Compile(src, path string, cfg *config.Config, opts Options) (*Result, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	emit, err := ParseEmit(string(opts.Emit))
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	unitCfg := *cfg
	if unitCfg.Package == "" && opts.Output != "" {
		unitCfg.Package = utils.PackageName(filepath.Dir(opts.Output))
	}

	var cache *Cache
	var key string
	if !opts.NoCache && !unitCfg.NoCache {
		cache, key = openCache(src, path, &unitCfg, emit, opts.CacheDir, logger)
	}
	if cache != nil {
		defer cache.Close()
		out, ok, err := cache.Lookup(key)
		if err != nil {
			logger.Printf("cache: %v", err)
		} else if ok {
			logger.Printf("cache: hit %s for %s", key, path)
			return &Result{Output: out, Cached: true}, nil
		}
	}

	ctx := pipeline.NewContext(src, path, &unitCfg)
	ctx.Logger = logger
	ctx = Stages(emit).Run(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := ctx.Output
	if emit == EmitIR {
		out = []byte(ctx.Module.String())
	}
	if cache != nil {
		if err := cache.Store(key, path, out); err != nil {
			logger.Printf("cache: %v", err)
		}
	}
	return &Result{Output: out, Module: ctx.Module}, nil
}

// openCache returns nil when the cache cannot be used; compiling proceeds
// without it.
func openCache(src, path string, cfg *config.Config, emit Emit, dir string, logger *log.Logger) (*Cache, string) {
	fp, err := cfg.Fingerprint()
	if err != nil {
		logger.Printf("cache: fingerprint: %v", err)
		return nil, ""
	}
	if dir == "" {
		dir = CacheDirFor(filepath.Dir(path))
	}
	cache, err := OpenCache(dir)
	if err != nil {
		logger.Printf("cache: %v", err)
		return nil, ""
	}
	return cache, CacheKey([]byte(src), fp, filepath.Base(path), string(emit))
}

// CompileFile reads path and compiles it with cfg, or with the nearest
// adjoint.yaml when cfg is nil.
func CompileFile(path string, cfg *config.Config, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	if cfg == nil {
		cfg, err = LoadConfigFor(filepath.Dir(path))
		if err != nil {
			return nil, err
		}
	}
	return Compile(string(data), path, cfg, opts)
}

// LoadConfigFor finds the adjoint.yaml governing dir, falling back to the
// defaults when there is none.
func LoadConfigFor(dir string) (*config.Config, error) {
	path, err := config.FindConfig(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadConfig(path)
}
