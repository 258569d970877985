// Package member provides reflective access to the methods and
// fields of a context object, including unexported fields.
//
// Go reflection cannot invoke unexported methods. A context that keeps
// its helpers unexported exposes them through an explicit lookup table
// by implementing Provider: func values in the table act as methods,
// any other value acts as a field.
//
// Names are matched exactly first and then case-insensitively, so the
// declarative names used in specifications ("getTarget") find the Go
// names ("GetTarget").
package member

import (
	"fmt"
	"reflect"
	"strings"
	"unsafe"
)

// Provider is implemented by contexts that expose members Go
// reflection cannot reach. TestMembers must return the same map on
// every call when fields stored in it are written back.
type Provider interface {
	TestMembers() map[string]any
}

// Accessor reads and invokes the members of one context object. It is
// cheap to keep for the duration of a single resolution.
type Accessor struct {
	value reflect.Value
	table map[string]any
}

// Of returns an Accessor for v. A nil v yields an Accessor without any
// members.
func Of(v any) *Accessor {
	a := &Accessor{}
	if v == nil {
		return a
	}
	a.value = reflect.ValueOf(v)
	if p, ok := v.(Provider); ok {
		a.table = p.TestMembers()
	}
	return a
}

// Valid reports whether the accessor wraps a non-nil context.
func (a *Accessor) Valid() bool {
	return a.value.IsValid()
}

// Type returns the dynamic type of the context, or nil.
func (a *Accessor) Type() reflect.Type {
	if !a.value.IsValid() {
		return nil
	}
	return a.value.Type()
}

// HasMethod reports whether a method (or lookup-table func) with the
// given name exists.
func (a *Accessor) HasMethod(name string) bool {
	_, ok := a.MethodFunc(name)
	return ok
}

// MethodFunc returns the bound method (or lookup-table func) with the
// given name.
func (a *Accessor) MethodFunc(name string) (reflect.Value, bool) {
	if !a.value.IsValid() || name == "" {
		return reflect.Value{}, false
	}

	if m := a.value.MethodByName(name); m.IsValid() {
		return m, true
	}
	if fn, ok := a.tableFunc(name, false); ok {
		return fn, true
	}

	t := a.value.Type()
	for i := 0; i < t.NumMethod(); i++ {
		if strings.EqualFold(t.Method(i).Name, name) {
			return a.value.Method(i), true
		}
	}
	if fn, ok := a.tableFunc(name, true); ok {
		return fn, true
	}

	return reflect.Value{}, false
}

func (a *Accessor) tableFunc(name string, fold bool) (reflect.Value, bool) {
	key, ok := a.tableKey(name, fold)
	if !ok {
		return reflect.Value{}, false
	}
	fn := reflect.ValueOf(a.table[key])
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return reflect.Value{}, false
	}
	return fn, true
}

func (a *Accessor) tableKey(name string, fold bool) (string, bool) {
	if a.table == nil {
		return "", false
	}
	if _, ok := a.table[name]; ok {
		return name, true
	}
	if !fold {
		return "", false
	}
	for key := range a.table {
		if strings.EqualFold(key, name) {
			return key, true
		}
	}
	return "", false
}

// CallMethod invokes the named method with args. A trailing error
// result is returned as the error; the first other result is returned
// as the value.
func (a *Accessor) CallMethod(name string, args ...any) (any, error) {
	m, ok := a.MethodFunc(name)
	if !ok {
		return nil, fmt.Errorf("method %q not found on %s", name, a.typeName())
	}
	return Invoke(m, args...)
}

// HasField reports whether the context has a field (or non-func
// lookup-table entry) with the given name.
func (a *Accessor) HasField(name string) bool {
	_, ok := a.Field(name)
	return ok
}

// Field returns the value of the named field. Unexported struct fields
// are readable.
func (a *Accessor) Field(name string) (any, bool) {
	if f, ok := a.structField(name); ok {
		return readable(f).Interface(), true
	}
	if key, ok := a.tableKey(name, true); ok {
		v := a.table[key]
		if rv := reflect.ValueOf(v); rv.Kind() != reflect.Func {
			return v, true
		}
	}
	return nil, false
}

// SetField writes v into the named field. The context must be a
// pointer to a struct, or the field must live in the lookup table.
func (a *Accessor) SetField(name string, v any) error {
	if f, ok := a.structField(name); ok {
		if !Indirect(a.value).CanAddr() {
			return fmt.Errorf("field %q of %s is not settable: pass a pointer", name, a.typeName())
		}
		f = readable(f)
		val, err := Coerce(v, f.Type())
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		f.Set(val)
		return nil
	}
	if key, ok := a.tableKey(name, true); ok {
		a.table[key] = v
		return nil
	}
	return fmt.Errorf("field %q not found on %s", name, a.typeName())
}

// structField locates a field of the underlying struct, matching the
// exact name first. Struct values passed by value are copied into an
// addressable value so unexported fields stay readable.
func (a *Accessor) structField(name string) (reflect.Value, bool) {
	sv := Indirect(a.value)
	if sv.Kind() != reflect.Struct || name == "" {
		return reflect.Value{}, false
	}
	if !sv.CanAddr() {
		tmp := reflect.New(sv.Type()).Elem()
		tmp.Set(sv)
		sv = tmp
	}

	sf, ok := sv.Type().FieldByName(name)
	if !ok {
		sf, ok = sv.Type().FieldByNameFunc(func(n string) bool {
			return strings.EqualFold(n, name)
		})
	}
	if !ok {
		return reflect.Value{}, false
	}
	// Promoted through a nil embedded pointer: not reachable.
	f, err := sv.FieldByIndexErr(sf.Index)
	return f, err == nil
}

func (a *Accessor) typeName() string {
	if t := a.Type(); t != nil {
		return t.String()
	}
	return "<nil>"
}

// readable returns a view of f that can be read (and, when
// addressable, written) even if the field is unexported.
func readable(f reflect.Value) reflect.Value {
	if f.CanInterface() || !f.CanAddr() {
		return f
	}
	return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
}

// Indirect follows pointers and interfaces until a non-pointer value
// (or a nil pointer) is reached.
func Indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return v
		}
		v = v.Elem()
	}
	return v
}

// FieldNames lists the field names of the struct behind v, in
// declaration order, including unexported ones.
func FieldNames(v any) []string {
	sv := Indirect(reflect.ValueOf(v))
	if sv.Kind() != reflect.Struct {
		return nil
	}
	t := sv.Type()
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		names = append(names, t.Field(i).Name)
	}
	return names
}
