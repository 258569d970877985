package setget

import (
	"reflect"

	"github.com/unbound-force/harness/fault"
	"github.com/unbound-force/harness/instance"
	"github.com/unbound-force/harness/member"
)

const component = "setget.Normalizer"

type sourceKind int

const (
	fromLiteral sourceKind = iota
	fromObject
	fromCallback
)

// Source is where a value comes from: a literal, an object built from
// a type specification, or a callback.
type Source struct {
	kind    sourceKind
	Literal any
	Object  instance.TypeSpec
	Ref     any
}

// Wire renders the source in the declarative format.
func (s Source) Wire() any {
	switch s.kind {
	case fromObject:
		return map[string]any{"object": s.Object.String()}
	case fromCallback:
		if name, ok := s.Ref.(string); ok {
			return map[string]any{"callback": name}
		}
		return map[string]any{"callback": funcName(s.Ref)}
	}
	return s.Literal
}

// Directives are the decoded keys of one specification, before any
// object is built or callback invoked.
type Directives struct {
	Target         any
	TargetCallback any

	Value       *Source
	Expect      *Source
	SetterValue *Source

	// SetterValueSelf is set by setter_value "__SELF__".
	SetterValueSelf bool

	// ValueObject is set when value came from value_object.
	ValueObject bool

	Getter *Call
	Setter *Call

	Assert         any
	SetterAssert   any
	PropertyAssert any

	Property  *PropertyCheck
	Exception *ExpectedError
}

// Parse decodes a specification without side effects. A scalar is
// shorthand for {"value": scalar}.
func Parse(spec any) (*Directives, error) {
	d := &Directives{}
	if isScalar(spec) {
		d.Value = &Source{Literal: spec}
		return d, nil
	}

	m, ok := instance.AsMap(spec)
	if !ok {
		return nil, fault.FromComponent(component, "Invalid specification. Must be a scalar or a map, got %s", kindOf(spec))
	}

	if v, ok := m["target"]; ok && v != nil {
		d.Target = v
	}
	if v, ok := m["target_callback"]; ok && v != nil {
		if err := checkCallback("target_callback", v); err != nil {
			return nil, err
		}
		d.TargetCallback = v
	}

	var err error
	if d.Value, err = parseSource(m, "value"); err != nil {
		return nil, err
	}
	_, d.ValueObject = m["value_object"]
	if _, ok := m["value_callback"]; ok {
		d.ValueObject = false
	}
	if d.Expect, err = parseSource(m, "expect"); err != nil {
		return nil, err
	}
	if d.SetterValue, err = parseSource(m, "setter_value"); err != nil {
		return nil, err
	}
	if d.SetterValue != nil && d.SetterValue.kind == fromLiteral && d.SetterValue.Literal == Self {
		d.SetterValue = nil
		d.SetterValueSelf = true
	}

	if d.Getter, err = parseCall(m, "getter"); err != nil {
		return nil, err
	}
	if d.Setter, err = parseCall(m, "setter"); err != nil {
		return nil, err
	}

	for _, c := range []struct {
		key string
		dst *any
	}{
		{"assert", &d.Assert},
		{"setter_assert", &d.SetterAssert},
		{"property_assert", &d.PropertyAssert},
	} {
		key, dst := c.key, c.dst
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		if _, isString := v.(string); !isString {
			if _, ok := FromFunc(key, v); !ok {
				return nil, fault.FromComponent(component, "Invalid callback for %q.", key)
			}
		}
		*dst = v
	}

	if d.Property, err = parseProperty(m["property"]); err != nil {
		return nil, err
	}
	if d.Exception, err = parseException(m["exception"]); err != nil {
		return nil, err
	}
	return d, nil
}

// parseSource applies key, key_object and key_callback in that order,
// later ones taking precedence.
func parseSource(m map[string]any, key string) (*Source, error) {
	var src *Source
	if v, ok := m[key]; ok {
		src = &Source{Literal: v}
	}
	if v, ok := m[key+"_object"]; ok {
		ts, err := parseObject(v)
		if err != nil {
			return nil, fault.FromComponent(component, "Invalid type specification for %q", key+"_object", err)
		}
		src = &Source{kind: fromObject, Object: ts}
	}
	if v, ok := m[key+"_callback"]; ok {
		if err := checkCallback(key+"_callback", v); err != nil {
			return nil, err
		}
		src = &Source{kind: fromCallback, Ref: v}
	}
	return src, nil
}

// parseObject accepts a type identifier, [type, [args...]], or any
// other type specification.
func parseObject(v any) (instance.TypeSpec, error) {
	if list, ok := instance.AsList(v); ok && len(list) == 2 {
		if args, ok := instance.AsList(list[1]); ok {
			return instance.ParseTypeSpec(append([]any{list[0]}, args...))
		}
	}
	return instance.ParseTypeSpec(v)
}

func checkCallback(key string, v any) error {
	if _, ok := v.(string); ok || member.Callable(v) {
		return nil
	}
	return fault.FromComponent(component, "Invalid callback for %q.", key)
}

func parseCall(m map[string]any, key string) (*Call, error) {
	v, ok := m[key]
	if !ok {
		return nil, nil
	}
	name, args := v, []any(nil)
	if list, ok := instance.AsList(v); ok {
		if len(list) == 0 || len(list) > 2 {
			return nil, fault.FromComponent(component, "%q must be a name or [name, [args...]]", key)
		}
		name = list[0]
		if len(list) == 2 {
			if args, ok = instance.AsList(list[1]); !ok {
				args = []any{list[1]}
			}
		}
	}
	switch n := name.(type) {
	case bool:
		if n {
			return nil, fault.FromComponent(component, "%q must be a method name or false", key)
		}
		return &Call{Args: args, Disabled: true}, nil
	case string:
		if n == "" {
			return nil, fault.FromComponent(component, "%q must not be empty", key)
		}
		return &Call{Template: n, Args: args}, nil
	}
	return nil, fault.FromComponent(component, "%q must be a method name or false, got %s", key, kindOf(name))
}

func parseProperty(v any) (*PropertyCheck, error) {
	switch p := v.(type) {
	case nil:
		return nil, nil
	case bool:
		if !p {
			return nil, nil
		}
		return &PropertyCheck{Expect: UseInput}, nil
	case string:
		return &PropertyCheck{Field: p, Expect: UseInput}, nil
	}

	list, ok := instance.AsList(v)
	if !ok || len(list) == 0 || len(list) > 2 {
		return nil, fault.FromComponent(component, "\"property\" must be true, a field name or [name, value]")
	}
	check := &PropertyCheck{Expect: UseInput}
	switch name := list[0].(type) {
	case bool:
		if !name {
			return nil, fault.FromComponent(component, "\"property\" name must be a string or true")
		}
	case string:
		check.Field = name
	default:
		return nil, fault.FromComponent(component, "\"property\" name must be a string or true, got %s", kindOf(name))
	}
	if len(list) == 2 {
		if s, ok := list[1].(string); !ok || s != UseInputValue {
			check.Expect = Literal(list[1])
		}
	}
	return check, nil
}

func parseException(v any) (*ExpectedError, error) {
	if v == nil || v == false {
		return nil, nil
	}
	var id, msg any
	if list, ok := instance.AsList(v); ok {
		if len(list) == 0 || len(list) > 2 {
			return nil, fault.FromComponent(component, "\"exception\" must be a type or [type, message]")
		}
		id = list[0]
		if len(list) == 2 {
			msg = list[1]
		}
	} else if m, ok := instance.AsMap(v); ok {
		id, msg = m["type"], m["message"]
	} else {
		id = v
	}

	e := &ExpectedError{}
	switch x := id.(type) {
	case string:
		e.Type = x
	case error:
		e.Target = x
	default:
		return nil, fault.FromComponent(component, "\"exception\" type must be a type name or an error, got %s", kindOf(id))
	}
	if msg != nil {
		s, ok := msg.(string)
		if !ok {
			return nil, fault.FromComponent(component, "\"exception\" message must be a string, got %s", kindOf(msg))
		}
		e.Message = s
	}
	if e.Type == "" && e.Target == nil {
		return nil, fault.FromComponent(component, "\"exception\" type must not be empty")
	}
	return e, nil
}

func isScalar(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

func kindOf(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
