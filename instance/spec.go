package instance

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/unbound-force/harness/fault"
)

// ReflectionPrefix marks a type identifier that asks for a reflective
// descriptor instead of an instance.
const ReflectionPrefix = "!"

// TypeSpec identifies what to build: one type identifier and an ordered
// argument list.
type TypeSpec struct {
	Type       string
	Arguments  []Argument
	Extends    string
	Implements []string

	// Reflect is set when the identifier carried the reflection prefix.
	Reflect bool
}

// ParseTypeSpec decodes the declarative forms of a type specification:
//
//	"pkg.Foo"                                 bare identifier
//	"!pkg.Foo"                                descriptor request
//	[]any{"pkg.Foo", a, b}                    positional
//	map[string]any{"class": "pkg.Foo",        structured
//	    "arguments": []any{a, b},
//	    "extends": "pkg.Base", "implements": []any{"io.Reader"}}
//
// In maps, "type" is accepted as an alias of "class" and numeric keys
// are positional: key "0" is the identifier unless "class" is given,
// the remaining numeric keys are arguments unless "arguments" is given.
func ParseTypeSpec(raw any) (TypeSpec, error) {
	switch v := raw.(type) {
	case string:
		return parseIdentifier(v, nil)
	case TypeSpec:
		return v, nil
	case *TypeSpec:
		if v != nil {
			return *v, nil
		}
	}

	if list, ok := AsList(raw); ok {
		if len(list) == 0 {
			return TypeSpec{}, fault.FromComponent("instance.ParseTypeSpec", "empty type specification")
		}
		return parseIdentifier(list[0], ParseArguments(list[1:]))
	}

	m, ok := AsMap(raw)
	if !ok {
		return TypeSpec{}, errNotIdentifier(raw)
	}

	numeric, _ := SplitKeys(m)
	id, hasClass := m["class"]
	if !hasClass {
		id, hasClass = m["type"]
	}
	positional := numeric
	if !hasClass {
		if len(numeric) == 0 || numeric[0] != "0" {
			return TypeSpec{}, fault.FromComponent("instance.ParseTypeSpec", "type specification has neither a \"class\" key nor a first element")
		}
		id = m["0"]
		positional = numeric[1:]
	}

	var args []Argument
	if a, ok := m["arguments"]; ok {
		args = ParseArguments(a)
	} else {
		vals := make([]any, 0, len(positional))
		for _, key := range positional {
			vals = append(vals, m[key])
		}
		args = ParseArguments(vals)
	}

	ts, err := parseIdentifier(id, args)
	if err != nil {
		return ts, err
	}
	if ext, ok := m["extends"]; ok {
		s, ok := ext.(string)
		if !ok {
			return ts, fault.FromComponent("instance.ParseTypeSpec", "\"extends\" must be a type identifier, got %T", ext)
		}
		ts.Extends = s
	}
	if impl, ok := m["implements"]; ok {
		names, err := stringList(impl)
		if err != nil {
			return ts, fault.FromComponent("instance.ParseTypeSpec", "\"implements\": %s", err.Error())
		}
		ts.Implements = names
	}
	return ts, nil
}

func parseIdentifier(id any, args []Argument) (TypeSpec, error) {
	s, ok := id.(string)
	if !ok {
		return TypeSpec{}, errNotIdentifier(id)
	}
	ts := TypeSpec{Type: s, Arguments: args}
	if strings.HasPrefix(s, ReflectionPrefix) {
		ts.Type = strings.TrimPrefix(s, ReflectionPrefix)
		ts.Reflect = true
	}
	if ts.Type == "" {
		return TypeSpec{}, fault.FromComponent("instance.ParseTypeSpec", "empty type identifier")
	}
	return ts, nil
}

func errNotIdentifier(v any) error {
	return fault.FromComponent("instance.Build", "Expected a string as type identifier, but received %s", kindName(v))
}

func kindName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}

// Values returns the arguments without resolving callbacks.
func (ts TypeSpec) Values() []any {
	vals := make([]any, len(ts.Arguments))
	for i, a := range ts.Arguments {
		vals[i] = a.Raw()
	}
	return vals
}

// String renders the positional form.
func (ts TypeSpec) String() string {
	id := ts.Type
	if ts.Reflect {
		id = ReflectionPrefix + id
	}
	if len(ts.Arguments) == 0 {
		return id
	}
	return fmt.Sprintf("%s%v", id, ts.Values())
}

func stringList(v any) ([]string, error) {
	if s, ok := v.(string); ok {
		return []string{s}, nil
	}
	list, ok := AsList(v)
	if !ok {
		return nil, fmt.Errorf("expected a list of type identifiers, got %T", v)
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("element %d: expected a type identifier, got %T", i, item)
		}
		out = append(out, s)
	}
	return out, nil
}

// AsList returns v as []any when it is a slice or array. Byte slices
// are values, not lists.
func AsList(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// AsMap returns v as map[string]any when it is a map. Non-string keys
// (as decoded from YAML numeric keys) are rendered with fmt.
func AsMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
	}
	return out, true
}

// SplitKeys partitions the keys of m into canonical non-negative
// integer keys (ascending) and the remaining keys (sorted).
func SplitKeys(m map[string]any) (numeric, named []string) {
	for key := range m {
		if n, err := strconv.Atoi(key); err == nil && n >= 0 && strconv.Itoa(n) == key {
			numeric = append(numeric, key)
			continue
		}
		named = append(named, key)
	}
	sort.Slice(numeric, func(i, j int) bool {
		a, _ := strconv.Atoi(numeric[i])
		b, _ := strconv.Atoi(numeric[j])
		return a < b
	})
	sort.Strings(named)
	return numeric, named
}
