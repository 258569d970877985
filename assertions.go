package harness

import (
	"github.com/unbound-force/harness/constraint"
	"github.com/unbound-force/harness/fault"
	"github.com/unbound-force/harness/instance"
	"github.com/unbound-force/harness/member"
)

// TestInheritance asserts that the subject implements or embeds every
// type listed in the suite's Inheritance field. The first entry of the
// list (or its "target" entry) is the subject unless the suite provides
// one through GetInheritanceTarget, GetTarget, InheritanceTarget or
// Target.
func TestInheritance(t T, suite any) bool {
	t.Helper()
	subject, types, ok := prepare(t, suite, "harness.TestInheritance", "inheritance")
	if !ok {
		return false
	}
	c := constraint.ExtendsOrImplements(types...)
	c.Registry = registryOf(suite)
	return constraint.Assert(t, c, subject)
}

// TestUsesTraits asserts that the subject directly embeds every type
// listed in the suite's UsesTraits field. The subject is resolved like
// in TestInheritance, with GetUsesTraitsTarget and UsesTraitsTarget.
func TestUsesTraits(t T, suite any) bool {
	t.Helper()
	subject, types, ok := prepare(t, suite, "harness.TestUsesTraits", "usesTraits")
	if !ok {
		return false
	}
	c := constraint.UsesTraits(types...)
	c.Registry = registryOf(suite)
	return constraint.Assert(t, c, subject)
}

// TestDefaultAttributes asserts the default field values listed in the
// suite's DefaultAttributes field (a map of field to value, or a list of
// fields expected to hold their zero value).
func TestDefaultAttributes(t T, suite any) bool {
	t.Helper()
	const helper = "harness.TestDefaultAttributes"
	acc := member.Of(suite)
	raw, ok := acc.Field("defaultAttributes")
	if !ok {
		t.Fatalf("%v", fault.FromHelper(helper, fault.TypeName(suite), `must define the field "defaultAttributes".`))
		return false
	}
	if !isCollection(raw) {
		t.Fatalf("%v", fault.FromHelper(helper, fault.TypeName(suite), `Field "defaultAttributes" must be a map or a list.`))
		return false
	}

	subject, err := GetTargetInstance(suite,
		[]string{"getDefaultAttributesTarget", "getTarget"},
		[]string{"defaultAttributesTarget", "target"},
		"defaultAttributes", false)
	if err != nil {
		t.Fatalf("%v", err)
		return false
	}
	attrs, _ := acc.Field("defaultAttributes")
	c := constraint.DefaultAttributesValues(attrs)
	c.Registry = registryOf(suite)
	return constraint.Assert(t, c, subject)
}

// prepare resolves the subject and reads the remaining entries of the
// list field named field.
func prepare(t T, suite any, helper, field string) (any, []any, bool) {
	t.Helper()
	acc := member.Of(suite)
	raw, ok := acc.Field(field)
	if !ok || !isCollection(raw) {
		t.Fatalf("%v", fault.FromHelper(helper, fault.TypeName(suite), "Field %q is not defined or is not a list.", field))
		return nil, nil, false
	}

	subject, err := GetTargetInstance(suite,
		[]string{"get" + field + "Target", "getTarget"},
		[]string{field + "Target", "target"},
		field, false)
	if err != nil {
		t.Fatalf("%v", err)
		return nil, nil, false
	}

	raw, _ = acc.Field(field)
	return subject, listEntries(raw), true
}

// listEntries returns the entries of a list, or the values of a map
// with numeric keys first in numeric order.
func listEntries(v any) []any {
	if l, ok := instance.AsList(v); ok {
		return l
	}
	m, _ := instance.AsMap(v)
	numeric, named := instance.SplitKeys(m)
	out := make([]any, 0, len(m))
	for _, key := range append(numeric, named...) {
		out = append(out, m[key])
	}
	return out
}

func isCollection(v any) bool {
	_, isList := instance.AsList(v)
	_, isMap := instance.AsMap(v)
	return isList || isMap
}
