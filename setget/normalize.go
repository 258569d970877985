package setget

import (
	"reflect"

	"github.com/unbound-force/harness/fault"
	"github.com/unbound-force/harness/instance"
	"github.com/unbound-force/harness/member"
)

// Defaults are the values used for keys a specification omits.
type Defaults struct {
	Getter         string
	Setter         string
	Assert         string
	SetterAssert   string
	PropertyAssert string
}

// DefaultDefaults returns the built-in defaults.
func DefaultDefaults() Defaults {
	return Defaults{
		Getter:         "get*",
		Setter:         "set*",
		Assert:         "Equal",
		SetterAssert:   "Equal",
		PropertyAssert: "Equal",
	}
}

// Normalizer expands specifications into cases.
type Normalizer struct {
	// Registry builds *_object values and per-case targets.
	// Defaults to instance.Default.
	Registry *instance.Registry

	// Context is the test suite object: its methods serve callbacks
	// and custom comparators.
	Context any

	// Defaults override the built-in defaults field by field.
	Defaults Defaults
}

func (n *Normalizer) registry() *instance.Registry {
	if n.Registry == nil {
		return instance.Default
	}
	return n.Registry
}

func (n *Normalizer) defaults() Defaults {
	d := DefaultDefaults()
	if n.Defaults.Getter != "" {
		d.Getter = n.Defaults.Getter
	}
	if n.Defaults.Setter != "" {
		d.Setter = n.Defaults.Setter
	}
	if n.Defaults.Assert != "" {
		d.Assert = n.Defaults.Assert
	}
	if n.Defaults.SetterAssert != "" {
		d.SetterAssert = n.Defaults.SetterAssert
	}
	if n.Defaults.PropertyAssert != "" {
		d.PropertyAssert = n.Defaults.PropertyAssert
	}
	return d
}

func (n *Normalizer) usage(format string, args ...any) error {
	return fault.FromHelper(component, fault.TypeName(n.Context), format, args...)
}

// Normalize parses spec and resolves it for property against target.
func (n *Normalizer) Normalize(spec any, property string, target any) (*Case, error) {
	d, err := Parse(spec)
	if err != nil {
		return nil, err
	}
	return n.Resolve(d, property, target)
}

// Subject returns the per-case subject named by target or
// target_callback, and whether one was named.
func (n *Normalizer) Subject(d *Directives) (any, bool, error) {
	switch {
	case d.Target != nil:
		if _, ok := d.Target.(string); !ok && !isSpecValue(d.Target) {
			return d.Target, true, nil
		}
		obj, err := n.registry().WithMappedArguments(d.Target, nil, n.Context)
		if err != nil {
			return nil, true, n.usage("building target", err)
		}
		return obj, true, nil

	case d.TargetCallback != nil:
		v, err := n.invoke(d.TargetCallback, "target_callback")
		if err != nil {
			return nil, true, err
		}
		if !isObject(v) {
			return nil, true, n.usage("Target callback must return an object.")
		}
		return v, true, nil
	}
	return nil, false, nil
}

// Resolve builds the case for property: objects are constructed and
// callbacks invoked now, before any setter or getter runs.
func (n *Normalizer) Resolve(d *Directives, property string, target any) (*Case, error) {
	defs := n.defaults()
	ctx := member.Of(n.Context)

	c := &Case{
		Property:    property,
		Getter:      Call{Template: defs.Getter},
		Setter:      Call{Template: defs.Setter},
		Expect:      SameAsInput,
		SetterValue: DontCheck,
	}
	if d.Target != nil || d.TargetCallback != nil {
		c.Subject = target
	}
	if d.Getter != nil {
		c.Getter = *d.Getter
	}
	if d.Setter != nil {
		c.Setter = *d.Setter
	}

	if d.Value != nil {
		v, err := n.source(*d.Value, "value")
		if err != nil {
			return nil, err
		}
		c.Value = v
	}
	if d.Expect != nil {
		v, err := n.source(*d.Expect, "expect")
		if err != nil {
			return nil, err
		}
		if s, ok := v.(string); !ok || s != Unset {
			c.Expect = Literal(v)
		}
	}
	switch {
	case d.SetterValueSelf:
		c.SetterValue = Literal(target)
	case d.SetterValue != nil:
		v, err := n.source(*d.SetterValue, "setter_value")
		if err != nil {
			return nil, err
		}
		if s, ok := v.(string); !ok || s != Unset {
			c.SetterValue = Literal(v)
		}
	}

	if d.Property != nil {
		check := *d.Property
		if check.Field == "" {
			check.Field = property
		}
		c.Check = &check
	}
	if d.Exception != nil {
		e := *d.Exception
		if e.Type != "" && e.Resolved == nil {
			e.Resolved, _ = n.registry().TypeOf(e.Type)
		}
		c.Exception = &e
	}

	identity := d.ValueObject && isPointer(c.Value)

	var err error
	if c.Assert, err = n.comparator(ctx, d.Assert, defs.Assert, identity, false, "assert"); err != nil {
		return nil, err
	}
	if c.SetterAssert, err = n.comparator(ctx, d.SetterAssert, defs.SetterAssert, d.SetterValueSelf && isPointer(target), false, "setter_assert"); err != nil {
		return nil, err
	}
	if c.PropertyAssert, err = n.comparator(ctx, d.PropertyAssert, defs.PropertyAssert, identity, true, "property_assert"); err != nil {
		return nil, err
	}
	return c, nil
}

func (n *Normalizer) comparator(ctx *member.Accessor, raw any, def string, identity, attribute bool, key string) (Comparator, error) {
	if raw == nil {
		raw = def
		if identity {
			raw = "Same"
		}
	}
	c, ok := lookupComparator(raw, ctx, attribute)
	if !ok {
		return Comparator{}, n.usage("Invalid callback for %q: %v is neither a context method nor a known comparator", key, raw)
	}
	return c, nil
}

func (n *Normalizer) source(s Source, key string) (any, error) {
	switch s.kind {
	case fromObject:
		obj, err := n.registry().WithMappedArguments(s.Object, nil, n.Context)
		if err != nil {
			return nil, n.usage("building %q", key+"_object", err)
		}
		return obj, nil
	case fromCallback:
		return n.invoke(s.Ref, key+"_callback")
	}
	return s.Literal, nil
}

// invoke calls ref: a zero-argument func, or the name of a context
// method.
func (n *Normalizer) invoke(ref any, key string) (any, error) {
	if member.Callable(ref) {
		v, err := member.Call(ref)
		if err != nil {
			return nil, n.usage("%s", key, err)
		}
		return v, nil
	}
	name, ok := ref.(string)
	if !ok {
		return nil, n.usage("Invalid callback for %q.", key)
	}
	ctx := member.Of(n.Context)
	if !ctx.HasMethod(name) {
		return nil, n.usage("Invalid callback for %q: no method %q", key, name)
	}
	v, err := ctx.CallMethod(name)
	if err != nil {
		return nil, n.usage("%s", key, err)
	}
	return v, nil
}

func isPointer(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Pointer
}

func isObject(v any) bool {
	if v == nil || isScalar(v) {
		return false
	}
	_, isList := instance.AsList(v)
	_, isMap := instance.AsMap(v)
	return !isList && !isMap
}

func isSpecValue(v any) bool {
	if _, ok := v.(instance.TypeSpec); ok {
		return true
	}
	_, isList := instance.AsList(v)
	_, isMap := instance.AsMap(v)
	return isList || isMap
}
