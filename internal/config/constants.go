package config

import "strings"

const SourceFileExt = ".adj"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".adj", ".ad"}

// Config file names, searched in this order.
var ConfigFileNames = []string{"adjoint.yaml", "adjoint.yml"}

const (
	DefaultRuntimePath = "github.com/funvibe/adjoint/pkg/ad"
	DefaultSuffix      = "AD"
	DefaultPackage     = "main"
	CacheDirName       = ".adjoint"
)

// Scalar source types. All of them lift to ad.Dual.
var ScalarTypeNames = map[string]bool{
	"f32":  true,
	"f64":  true,
	"i32":  true,
	"bool": true,
}

// Vector source types and their lane counts. All of them lift to ad.Vec.
var VectorTypeNames = map[string]int{
	"Vec2":  2,
	"Vec3":  3,
	"Vec4":  4,
	"f32x2": 2,
	"f32x3": 3,
	"f32x4": 4,
}

// IsLiftable reports whether a source type name has a runtime lift.
func IsLiftable(name string) bool {
	if ScalarTypeNames[name] {
		return true
	}
	_, ok := VectorTypeNames[name]
	return ok
}

// Lane names accepted by field access on vectors.
var LaneNames = map[string]int{
	"x": 0, "y": 1, "z": 2, "w": 3,
	"r": 0, "g": 1, "b": 2, "a": 3,
	"0": 0, "1": 1, "2": 2, "3": 3,
}

// Built-in free identifiers and the Go expressions they translate to.
var BuiltinConstants = map[string]string{
	"consts::PI":        "math.Pi",
	"consts::E":         "math.E",
	"consts::FRAC_1_PI": "(1 / math.Pi)",
	"consts::SQRT_2":    "math.Sqrt2",
	"consts::LN_2":      "math.Ln2",
	"f32::consts::PI":   "math.Pi",
	"f32::consts::E":    "math.E",
	"f32::INFINITY":     "math.Inf(1)",
	"f32::NEG_INFINITY": "math.Inf(-1)",
	"f32::EPSILON":      "1.1920929e-07",
}

// HasSourceExt reports whether path ends in a recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// TrimSourceExt removes a recognized source extension from name.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}
