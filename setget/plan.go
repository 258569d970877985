package setget

import (
	"sort"
	"strings"

	"github.com/unbound-force/harness/instance"
)

var specKeys = map[string]bool{
	"target": true, "target_callback": true,
	"value": true, "value_object": true, "value_callback": true,
	"expect": true, "expect_object": true, "expect_callback": true,
	"setter_value": true, "setter_value_object": true, "setter_value_callback": true,
	"getter": true, "setter": true,
	"assert": true, "setter_assert": true, "property_assert": true,
	"property": true, "exception": true,
}

// Keys lists the specification keys the normalizer recognizes, sorted.
func Keys() []string {
	keys := make([]string, 0, len(specKeys))
	for k := range specKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsKey reports whether key is a recognized specification key.
func IsKey(key string) bool {
	return specKeys[key]
}

// References are the names a specification needs from its
// environment: suite methods, registered types and comparators that
// are not built in.
type References struct {
	Methods     []string
	Types       []string
	Comparators []string
}

// Plan renders d for property without building objects or invoking
// callbacks: sources print in their declarative form and comparators
// by name. It is what `harness lint` shows for a case.
func (n *Normalizer) Plan(d *Directives, property string) map[string]any {
	defs := n.defaults()
	getter, setter := Call{Template: defs.Getter}, Call{Template: defs.Setter}
	if d.Getter != nil {
		getter = *d.Getter
	}
	if d.Setter != nil {
		setter = *d.Setter
	}

	plan := map[string]any{
		"property":        nil,
		"getter":          getter.wire(),
		"setter":          setter.wire(),
		"value":           wireSource(d.Value, nil),
		"expect":          wireSource(d.Expect, Unset),
		"setter_value":    wireSource(d.SetterValue, Unset),
		"assert":          comparatorName(d.Assert, defs.Assert, d.ValueObject),
		"setter_assert":   comparatorName(d.SetterAssert, defs.SetterAssert, d.SetterValueSelf),
		"property_assert": attributeName(comparatorName(d.PropertyAssert, defs.PropertyAssert, d.ValueObject)),
		"exception":       nil,
	}
	if d.SetterValueSelf {
		plan["setter_value"] = Self
	}
	if d.Property != nil {
		field := d.Property.Field
		if field == "" {
			field = property
		}
		plan["property"] = []any{field, d.Property.Expect.Wire()}
	}
	if d.Exception != nil {
		var id any = d.Exception.Type
		if d.Exception.Target != nil {
			id = d.Exception.Target.Error()
		}
		plan["exception"] = []any{id, d.Exception.Message}
	}
	if d.Target != nil {
		plan["target"] = d.Target
	}
	if d.TargetCallback != nil {
		plan["target_callback"] = callbackName(d.TargetCallback)
	}
	return plan
}

func wireSource(s *Source, unset any) any {
	if s == nil {
		return unset
	}
	return s.Wire()
}

// comparatorName names a comparator without resolving suite methods.
// Built-in names are canonicalized, other names are kept as written.
// A value object is assumed to be a pointer.
func comparatorName(raw any, def string, identity bool) string {
	if raw == nil {
		if identity {
			return "Same"
		}
		raw = def
	}
	name, ok := raw.(string)
	if !ok {
		return funcName(raw)
	}
	if c, ok := Builtin(strings.TrimPrefix(name, AttributePrefix)); ok {
		return c.Name
	}
	return name
}

func attributeName(name string) string {
	if _, ok := Builtin(name); ok {
		return AttributePrefix + name
	}
	return name
}

func callbackName(ref any) string {
	if name, ok := ref.(string); ok {
		return name
	}
	return funcName(ref)
}

// References reports what d needs from the suite and the registry.
// Comparators that are built in are not listed.
func (d *Directives) References() References {
	var refs References
	addMethod := func(ref any) {
		if name, ok := ref.(string); ok {
			refs.Methods = append(refs.Methods, name)
		}
	}
	for _, s := range []*Source{d.Value, d.Expect, d.SetterValue} {
		if s == nil {
			continue
		}
		switch s.kind {
		case fromObject:
			refs.Types = append(refs.Types, s.Object.Type)
		case fromCallback:
			addMethod(s.Ref)
		}
	}
	addMethod(d.TargetCallback)
	if name, ok := d.Target.(string); ok {
		refs.Types = append(refs.Types, strings.TrimPrefix(name, instance.ReflectionPrefix))
	}
	for _, raw := range []any{d.Assert, d.SetterAssert, d.PropertyAssert} {
		name, ok := raw.(string)
		if !ok {
			continue
		}
		if _, builtin := Builtin(strings.TrimPrefix(name, AttributePrefix)); !builtin {
			refs.Comparators = append(refs.Comparators, name)
		}
	}
	return refs
}
