package loader

import (
	"go/types"
)

// Kind classifies a discovered type.
type Kind string

const (
	// KindStruct is a struct type; it can be built.
	KindStruct Kind = "struct"

	// KindInterface is an interface type; it can only be described
	// or doubled.
	KindInterface Kind = "interface"
)

// Type is an exported named type of a package.
type Type struct {
	Name string
	Kind Kind

	// Constructor is the name of the New<Type> func building the
	// type, or "" if there is none.
	Constructor string

	// Pointer reports whether Constructor returns *Type.
	Pointer bool

	// Fallible reports whether Constructor also returns an error.
	Fallible bool
}

// Discover returns the exported, non-generic struct and interface
// types declared in pkg, sorted by name. A func New<Type> returning
// Type or *Type, optionally with an error, is recorded as the type's
// constructor.
func Discover(pkg *types.Package) []Type {
	if pkg == nil {
		return nil
	}
	scope := pkg.Scope()

	var out []Type
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !tn.Exported() || tn.IsAlias() {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok || named.TypeParams().Len() > 0 {
			continue
		}

		t := Type{Name: name}
		switch named.Underlying().(type) {
		case *types.Struct:
			t.Kind = KindStruct
		case *types.Interface:
			t.Kind = KindInterface
		default:
			continue
		}
		if fn, ok := scope.Lookup("New" + name).(*types.Func); ok {
			if ptr, fallible, ok := constructs(fn, named); ok {
				t.Constructor = fn.Name()
				t.Pointer = ptr
				t.Fallible = fallible
			}
		}
		out = append(out, t)
	}
	return out
}

var errorType = types.Universe.Lookup("error").Type()

// constructs reports whether fn returns named (or *named), optionally
// followed by an error.
func constructs(fn *types.Func, named *types.Named) (ptr, fallible, ok bool) {
	sig, _ := fn.Type().(*types.Signature)
	if sig == nil || sig.Recv() != nil || sig.TypeParams().Len() > 0 {
		return false, false, false
	}

	res := sig.Results()
	switch {
	case res.Len() == 1:
	case res.Len() == 2 && types.Identical(res.At(1).Type(), errorType):
		fallible = true
	default:
		return false, false, false
	}

	got := res.At(0).Type()
	if p, isPtr := got.(*types.Pointer); isPtr {
		got = p.Elem()
		ptr = true
	}
	if !types.Identical(got, named) {
		return false, false, false
	}
	return ptr, fallible, true
}
