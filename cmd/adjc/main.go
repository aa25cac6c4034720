// Command adjc compiles .adj sources into differentiable Go code.
//
//	adjc [-o out.go] [-pkg name] [-config adjoint.yaml] [-emit go|ir] [-no-cache] [-v] file.adj
//	adjc vec [-pkg name] [-o out.go]
//	adjc lut [-pkg name] [-o out.go]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/adjoint/internal/config"
	"github.com/funvibe/adjoint/internal/diagnostics"
	"github.com/funvibe/adjoint/internal/driver"
	"github.com/funvibe/adjoint/internal/lutgen"
	"github.com/funvibe/adjoint/internal/utils"
	"github.com/funvibe/adjoint/internal/vecgen"
)

func main() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, useColor()))
}

func useColor() bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// run executes one invocation and returns the exit status.
func run(args []string, stdout, stderr io.Writer, color bool) int {
	if len(args) > 0 {
		switch args[0] {
		case "vec":
			return runGenerator("vec", args[1:], stdout, stderr, func(pkg string) ([]byte, error) {
				return vecgen.Generate(pkg, vecgen.DefaultTypes)
			})
		case "lut":
			return runGenerator("lut", args[1:], stdout, stderr, lutgen.Generate)
		}
	}
	return runCompile(args, stdout, stderr, color)
}

func runCompile(args []string, stdout, stderr io.Writer, color bool) int {
	fs := flag.NewFlagSet("adjc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("o", "", "output file (default <name>_ad.go next to the source, - for stdout)")
	pkg := fs.String("pkg", "", "package clause of the generated file")
	cfgPath := fs.String("config", "", "adjoint.yaml to use instead of searching from the source directory")
	emit := fs.String("emit", string(driver.EmitGo), "output kind: go or ir")
	noCache := fs.Bool("no-cache", false, "bypass the compile cache")
	verbose := fs.Bool("v", false, "trace compiler stages")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: adjc [flags] file.adj")
		fmt.Fprintln(stderr, "       adjc vec|lut [-pkg name] [-o out.go]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	src := fs.Arg(0)

	cfg, err := loadConfig(*cfgPath, filepath.Dir(src))
	if err != nil {
		fmt.Fprintf(stderr, "adjc: %v\n", err)
		return 1
	}
	if *pkg != "" {
		cfg.Package = *pkg
	}

	mode, err := driver.ParseEmit(*emit)
	if err != nil {
		fmt.Fprintf(stderr, "adjc: %v\n", err)
		return 2
	}

	target := *out
	if target == "" {
		target = utils.OutputPath(src)
		if mode == driver.EmitIR {
			target = "-"
		}
	}

	opts := driver.Options{Emit: mode, NoCache: *noCache}
	if target != "-" {
		opts.Output = target
	}
	if *verbose {
		opts.Logger = log.New(stderr, "adjc: ", 0)
	}

	res, err := driver.CompileFile(src, cfg, opts)
	if err != nil {
		report(stderr, err, color)
		return 1
	}
	if *verbose && res.Cached {
		opts.Logger.Printf("%s: up to date", src)
	}
	return write(target, res.Output, stdout, stderr)
}

func loadConfig(path, dir string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}
	return driver.LoadConfigFor(dir)
}

func runGenerator(name string, args []string, stdout, stderr io.Writer, gen func(pkg string) ([]byte, error)) int {
	fs := flag.NewFlagSet("adjc "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	pkg := fs.String("pkg", "", "package clause (default derived from the output directory)")
	out := fs.String("o", "-", "output file, - for stdout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(stderr, "adjc %s: unexpected arguments %v\n", name, fs.Args())
		return 2
	}

	pkgName := *pkg
	if pkgName == "" {
		dir := "."
		if *out != "-" {
			dir = filepath.Dir(*out)
		}
		pkgName = utils.PackageName(dir)
	}

	data, err := gen(pkgName)
	if err != nil {
		fmt.Fprintf(stderr, "adjc %s: %v\n", name, err)
		return 1
	}
	return write(*out, data, stdout, stderr)
}

func write(target string, data []byte, stdout, stderr io.Writer) int {
	if target == "-" {
		if _, err := stdout.Write(data); err != nil {
			fmt.Fprintf(stderr, "adjc: %v\n", err)
			return 1
		}
		return 0
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		fmt.Fprintf(stderr, "adjc: writing output: %v\n", err)
		return 1
	}
	return 0
}

const (
	ansiRed   = "\x1b[31m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// report prints one line per diagnostic.
func report(w io.Writer, err error, color bool) {
	var list diagnostics.ErrorList
	if !errors.As(err, &list) {
		fmt.Fprintf(w, "adjc: %v\n", err)
		return
	}
	for _, d := range list {
		if !color {
			fmt.Fprintln(w, d.Error())
			continue
		}
		loc := d.File
		if d.Token.Line > 0 {
			loc = fmt.Sprintf("%s:%d:%d", d.File, d.Token.Line, d.Token.Column)
		}
		fmt.Fprintf(w, "%s%s:%s %s[%s]%s %s\n", ansiBold, loc, ansiReset, ansiRed, d.Code, ansiReset, d.Message)
	}
}
