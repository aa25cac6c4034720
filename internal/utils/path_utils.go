package utils

import (
	"go/token"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/funvibe/adjoint/internal/config"
)

// GeneratedSuffix is appended to a source file's name to form its output.
const GeneratedSuffix = "_ad.go"

// SourceName derives the base name of a source file without its extension.
func SourceName(path string) string {
	return config.TrimSourceExt(filepath.Base(path))
}

// OutputPath returns the generated file for a source file, next to it:
// shading.adj -> shading_ad.go.
func OutputPath(src string) string {
	return filepath.Join(filepath.Dir(src), SourceName(src)+GeneratedSuffix)
}

// PackageName derives a Go package name from the directory that will hold
// generated code. It falls back to config.DefaultPackage when the directory
// name cannot be made into an identifier.
func PackageName(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	base := strings.ToLower(filepath.Base(dir))
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return -1
	}, base)
	if !token.IsIdentifier(name) || token.IsKeyword(name) {
		return config.DefaultPackage
	}
	return name
}
