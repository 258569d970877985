// Package instance builds test subjects and reflective type
// descriptors from declarative type specifications.
//
// Go cannot instantiate a type from its name, so type identifiers
// resolve through a Registry mapping names to constructor funcs or
// reflect.Types. Package-level helpers use the Default registry.
package instance

import (
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/unbound-force/harness/fault"
	"github.com/unbound-force/harness/member"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Default is the process-wide registry used by the package-level
// helpers and by the harness root package.
var Default = NewRegistry()

type entry struct {
	name string
	ctor reflect.Value
	typ  reflect.Type
}

// Registry maps type identifiers to constructors. The zero value is
// not usable; call NewRegistry.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register binds name to ctor. ctor must be a func returning T or
// (T, error); the type identifier then describes T.
func (r *Registry) Register(name string, ctor any) error {
	fn := reflect.ValueOf(ctor)
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return fault.FromComponent("instance.Registry", "constructor for %q must be a func, got %T", name, ctor)
	}
	ft := fn.Type()
	switch {
	case ft.NumOut() == 1 && ft.Out(0) != errorType:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		return fault.FromComponent("instance.Registry", "constructor for %q must return T or (T, error), got %s", name, ft)
	}
	r.put(&entry{name: name, ctor: fn, typ: ft.Out(0)})
	return nil
}

// MustRegister is like Register but panics on error. It is meant for
// package-level registration in test files.
func (r *Registry) MustRegister(name string, ctor any) {
	if err := r.Register(name, ctor); err != nil {
		panic(err)
	}
}

// RegisterType binds name to typ without a constructor. Struct types
// are then built as a pointer to their zero value; other types can
// only be described, not built.
func (r *Registry) RegisterType(name string, typ reflect.Type) error {
	if typ == nil {
		return fault.FromComponent("instance.Registry", "type for %q must not be nil", name)
	}
	r.put(&entry{name: name, typ: typ})
	return nil
}

// RegisterType registers T under name in r.
func RegisterType[T any](r *Registry, name string) error {
	return r.RegisterType(name, reflect.TypeOf((*T)(nil)).Elem())
}

func (r *Registry) put(e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.name] = e
}

func (r *Registry) lookup(name string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[name]; ok {
		return e, true
	}
	// Names differing only in case resolve to the smallest one.
	var best *entry
	for key, e := range r.entries {
		if strings.EqualFold(key, name) && (best == nil || key < best.name) {
			best = e
		}
	}
	return best, best != nil
}

// Lookup returns the constructor registered for name. Types registered
// without a constructor report false.
func (r *Registry) Lookup(name string) (reflect.Value, bool) {
	e, ok := r.lookup(name)
	if !ok || !e.ctor.IsValid() {
		return reflect.Value{}, false
	}
	return e.ctor, true
}

// TypeOf returns the type described by name.
func (r *Registry) TypeOf(name string) (reflect.Type, bool) {
	e, ok := r.lookup(name)
	if !ok {
		return nil, false
	}
	return e.typ, true
}

// Has reports whether name is a registered type identifier.
func (r *Registry) Has(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

// Names returns the registered type identifiers, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// nameOf returns the identifier registered for typ, or its Go name.
func (r *Registry) nameOf(typ reflect.Type) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	best := ""
	for name, e := range r.entries {
		if e.typ == typ && (best == "" || name < best) {
			best = name
		}
	}
	if best == "" {
		return typ.String()
	}
	return best
}

// New constructs the type registered under name with args.
func (r *Registry) New(name string, args ...any) (any, error) {
	e, ok := r.lookup(name)
	if !ok {
		return nil, fault.FromComponent("instance.Build", "type %q not found", name)
	}
	return e.build(args)
}

func (e *entry) build(args []any) (any, error) {
	if e.ctor.IsValid() {
		v, err := member.Invoke(e.ctor, args...)
		if err != nil {
			return nil, fault.FromComponent("instance.Build", "constructing %q", e.name, err)
		}
		return v, nil
	}
	if e.typ.Kind() != reflect.Struct {
		return nil, fault.FromComponent("instance.Build", "type %q (%s) has no constructor", e.name, e.typ)
	}
	if len(args) > 0 {
		return nil, fault.FromComponent("instance.Build", "type %q has no constructor accepting %d argument(s)", e.name, len(args))
	}
	return reflect.New(e.typ).Interface(), nil
}
