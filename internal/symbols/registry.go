package symbols

import (
	"fmt"
	"sort"

	"github.com/funvibe/adjoint/internal/config"
)

type CalleeKind int

const (
	CalleeUser CalleeKind = iota
	CalleeIntrinsic
	CalleeExtern
	CalleeConstructor
)

func (k CalleeKind) String() string {
	switch k {
	case CalleeUser:
		return "function"
	case CalleeIntrinsic:
		return "intrinsic"
	case CalleeExtern:
		return "extern"
	case CalleeConstructor:
		return "constructor"
	}
	return fmt.Sprintf("CalleeKind(%d)", int(k))
}

// Signature describes a callable name.
type Signature struct {
	Name   string
	Kind   CalleeKind
	Arity  int // -1 accepts any count
	Result Kind
	// Go is the Go expression to call: a lifted function name, an extern's
	// qualified name, or the runtime function for an intrinsic (without the
	// runtime package qualifier).
	Go string
	// Params are the declared parameter kinds of a user function.
	Params []Kind
	// Accept validates argument kinds; nil accepts anything.
	Accept func(args []Kind) error
	// Int marks a result declared i32.
	Int bool
}

// CheckArgs validates the argument count and kinds of a call.
func (s *Signature) CheckArgs(args []Kind) error {
	if s.Arity >= 0 && len(args) != s.Arity {
		return fmt.Errorf("%s %s takes %d argument(s), got %d", s.Kind, s.Name, s.Arity, len(args))
	}
	for i, want := range s.Params {
		if args[i] != want {
			return fmt.Errorf("argument %d of %s: expected %s, got %s", i+1, s.Name, want, args[i])
		}
	}
	if s.Accept != nil {
		return s.Accept(args)
	}
	return nil
}

func allScalar(args []Kind) error {
	for i, k := range args {
		if !k.IsScalar() {
			return fmt.Errorf("argument %d: expected scalar, got %s", i+1, k)
		}
	}
	return nil
}

func sameVectors(args []Kind) error {
	for i, k := range args {
		if !k.IsVector() {
			return fmt.Errorf("argument %d: expected vector, got %s", i+1, k)
		}
		if k != args[0] {
			return fmt.Errorf("argument %d: expected %s, got %s", i+1, args[0], k)
		}
	}
	return nil
}

// Registry resolves callee names. User functions shadow intrinsics, which
// shadow externs.
type Registry struct {
	entries map[string]*Signature
}

// intrinsics are implemented by the runtime package under the Go name.
var intrinsics = []*Signature{
	{Name: "sqrt", Arity: 1, Go: "Sqrt"},
	{Name: "exp", Arity: 1, Go: "Exp"},
	{Name: "log", Arity: 1, Go: "Log"},
	{Name: "ln", Arity: 1, Go: "Log"},
	{Name: "sin", Arity: 1, Go: "Sin"},
	{Name: "cos", Arity: 1, Go: "Cos"},
	{Name: "abs", Arity: 1, Go: "Abs"},
	{Name: "pow", Arity: 2, Go: "Pow"},
	{Name: "powf", Arity: 2, Go: "Pow"},
	{Name: "min", Arity: 2, Go: "Min"},
	{Name: "max", Arity: 2, Go: "Max"},
	{Name: "dot", Arity: 2, Go: "Dot", Accept: sameVectors},
	{Name: "length", Arity: 1, Go: "Length", Accept: sameVectors},
}

var constructors = map[string]int{"vec2": 2, "vec3": 3, "vec4": 4}

// NewRegistry returns a registry preloaded with intrinsics, vector
// constructors, and the externs declared in cfg.
func NewRegistry(cfg *config.Config) *Registry {
	r := &Registry{entries: make(map[string]*Signature)}
	if cfg != nil {
		for _, ext := range cfg.Externs {
			arity := ext.Arity
			if arity == 0 {
				arity = -1
			}
			r.entries[ext.Name] = &Signature{
				Name:   ext.Name,
				Kind:   CalleeExtern,
				Arity:  arity,
				Result: KindOfType(ext.Returns),
				Go:     ext.Go,
				Int:    IsIntType(ext.Returns),
			}
		}
	}
	for _, sig := range intrinsics {
		s := *sig
		s.Kind = CalleeIntrinsic
		s.Result = Scalar
		if s.Accept == nil {
			s.Accept = allScalar
		}
		r.entries[s.Name] = &s
	}
	for name, n := range constructors {
		r.entries[name] = &Signature{
			Name:   name,
			Kind:   CalleeConstructor,
			Arity:  n,
			Result: Vector(n),
			Accept: allScalar,
		}
	}
	return r
}

// DefineFunction registers a user function, shadowing any intrinsic or
// extern of the same name.
func (r *Registry) DefineFunction(name, goName string, params []Kind, result Kind) *Signature {
	sig := &Signature{
		Name:   name,
		Kind:   CalleeUser,
		Arity:  len(params),
		Result: result,
		Go:     goName,
		Params: params,
	}
	r.entries[name] = sig
	return sig
}

func (r *Registry) Lookup(name string) (*Signature, bool) {
	sig, ok := r.entries[name]
	return sig, ok
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
