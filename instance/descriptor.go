package instance

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/unbound-force/harness/member"
)

// Descriptor is the reflective view of a type: what "!pkg.Foo"
// resolves to.
type Descriptor struct {
	Name string
	Type reflect.Type

	ctor reflect.Value
}

// NewDescriptor describes typ under name. The descriptor cannot build
// instances beyond the zero value of struct types.
func NewDescriptor(name string, typ reflect.Type) *Descriptor {
	if name == "" {
		name = typ.String()
	}
	return &Descriptor{Name: name, Type: typ}
}

func (d *Descriptor) String() string {
	return d.Name
}

// Struct returns the struct type behind Type, or nil.
func (d *Descriptor) Struct() reflect.Type {
	t := d.Type
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

// Implements reports whether the described type, or a pointer to it,
// implements iface.
func (d *Descriptor) Implements(iface reflect.Type) bool {
	if iface == nil || iface.Kind() != reflect.Interface {
		return false
	}
	if d.Type.Implements(iface) {
		return true
	}
	return d.Type.Kind() != reflect.Pointer && reflect.PointerTo(d.Type).Implements(iface)
}

// EmbeddedTypes lists the embedded field types of the described struct
// in declaration order. With deep set, types embedded by embedded
// structs follow each of their parents.
func (d *Descriptor) EmbeddedTypes(deep bool) []reflect.Type {
	st := d.Struct()
	if st == nil {
		return nil
	}
	var out []reflect.Type
	collectEmbedded(st, deep, &out, map[reflect.Type]bool{st: true})
	return out
}

func collectEmbedded(st reflect.Type, deep bool, out *[]reflect.Type, seen map[reflect.Type]bool) {
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if !f.Anonymous {
			continue
		}
		*out = append(*out, f.Type)
		if !deep {
			continue
		}
		inner := baseType(f.Type)
		if inner.Kind() == reflect.Struct && !seen[inner] {
			seen[inner] = true
			collectEmbedded(inner, deep, out, seen)
		}
	}
}

// Embeds reports whether t (or the type t points to) is embedded at
// any depth.
func (d *Descriptor) Embeds(t reflect.Type) bool {
	return containsType(d.EmbeddedTypes(true), t)
}

// EmbedsDirectly reports whether t is embedded by the described struct
// itself.
func (d *Descriptor) EmbedsDirectly(t reflect.Type) bool {
	return containsType(d.EmbeddedTypes(false), t)
}

func containsType(types []reflect.Type, t reflect.Type) bool {
	if t == nil {
		return false
	}
	want := baseType(t)
	for _, et := range types {
		if baseType(et) == want {
			return true
		}
	}
	return false
}

func baseType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// HasMethod reports whether the method set of the type, or of a
// pointer to it, has name (case-insensitive).
func (d *Descriptor) HasMethod(name string) bool {
	t := d.Type
	if t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface {
		t = reflect.PointerTo(t)
	}
	if _, ok := t.MethodByName(name); ok {
		return true
	}
	for i := 0; i < t.NumMethod(); i++ {
		if strings.EqualFold(t.Method(i).Name, name) {
			return true
		}
	}
	return false
}

// HasField reports whether the described struct declares or promotes
// a field called name (case-insensitive).
func (d *Descriptor) HasField(name string) bool {
	st := d.Struct()
	if st == nil {
		return false
	}
	if _, ok := st.FieldByName(name); ok {
		return true
	}
	_, ok := st.FieldByNameFunc(func(n string) bool { return strings.EqualFold(n, name) })
	return ok
}

// New builds a default instance: the registered constructor called
// without arguments, or a pointer to the zero struct.
func (d *Descriptor) New() (any, error) {
	if d.ctor.IsValid() {
		return member.Invoke(d.ctor)
	}
	if st := d.Struct(); st != nil {
		return reflect.New(st).Interface(), nil
	}
	return nil, fmt.Errorf("type %s cannot be instantiated", d.Name)
}

// DefaultFields returns the field values of a default instance, keyed
// by field name.
func (d *Descriptor) DefaultFields() (map[string]any, error) {
	obj, err := d.New()
	if err != nil {
		return nil, err
	}
	acc := member.Of(obj)
	out := make(map[string]any)
	for _, name := range member.FieldNames(obj) {
		if v, ok := acc.Field(name); ok {
			out[name] = v
		}
	}
	return out, nil
}
