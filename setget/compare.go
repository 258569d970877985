package setget

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/stretchr/testify/assert"

	"github.com/unbound-force/harness/member"
)

// AttributePrefix names comparators used for property checks.
const AttributePrefix = "Attribute"

// Comparator compares an expected with an actual value and reports
// failures to the TestingT it is given.
type Comparator struct {
	Name string
	Fn   assert.ComparisonAssertionFunc
}

// Valid reports whether the comparator can be called.
func (c Comparator) Valid() bool {
	return c.Fn != nil
}

func swap(fn func(assert.TestingT, any, any, ...any) bool) assert.ComparisonAssertionFunc {
	return func(t assert.TestingT, expected, actual any, msgAndArgs ...any) bool {
		return fn(t, actual, expected, msgAndArgs...)
	}
}

func text(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func asError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return nil
}

// comparators maps canonical names to assertion funcs. Lookups are
// case-insensitive and accept an "assert" prefix.
var comparators = map[string]assert.ComparisonAssertionFunc{
	"Equal":       assert.Equal,
	"NotEqual":    assert.NotEqual,
	"EqualValues": assert.EqualValues,
	"Exactly":     assert.Exactly,
	"Same":        assert.Same,
	"NotSame":     assert.NotSame,
	"Contains": swap(func(t assert.TestingT, s, contains any, msgAndArgs ...any) bool {
		return assert.Contains(t, s, contains, msgAndArgs...)
	}),
	"NotContains": swap(func(t assert.TestingT, s, contains any, msgAndArgs ...any) bool {
		return assert.NotContains(t, s, contains, msgAndArgs...)
	}),
	"ElementsMatch": func(t assert.TestingT, expected, actual any, msgAndArgs ...any) bool {
		return assert.ElementsMatch(t, expected, actual, msgAndArgs...)
	},
	"Subset": swap(func(t assert.TestingT, list, subset any, msgAndArgs ...any) bool {
		return assert.Subset(t, list, subset, msgAndArgs...)
	}),
	"JSONEq": func(t assert.TestingT, expected, actual any, msgAndArgs ...any) bool {
		return assert.JSONEq(t, text(expected), text(actual), msgAndArgs...)
	},
	"YAMLEq": func(t assert.TestingT, expected, actual any, msgAndArgs ...any) bool {
		return assert.YAMLEq(t, text(expected), text(actual), msgAndArgs...)
	},
	"ErrorIs": func(t assert.TestingT, expected, actual any, msgAndArgs ...any) bool {
		return assert.ErrorIs(t, asError(actual), asError(expected), msgAndArgs...)
	},
	"IsType": func(t assert.TestingT, expected, actual any, msgAndArgs ...any) bool {
		return assert.IsType(t, expected, actual, msgAndArgs...)
	},
}

var aliases = map[string]string{
	"equals":    "Equal",
	"notequals": "NotEqual",
	"identical": "Same",
}

// ComparatorNames lists the built-in comparator names, sorted.
func ComparatorNames() []string {
	names := make([]string, 0, len(comparators))
	for name := range comparators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin looks up a built-in comparator by name.
func Builtin(name string) (Comparator, bool) {
	key := strings.ToLower(name)
	if strings.HasPrefix(key, "assert") && len(key) > len("assert") {
		key = strings.TrimPrefix(key, "assert")
	}
	if canonical, ok := aliases[key]; ok {
		return Comparator{Name: canonical, Fn: comparators[canonical]}, true
	}
	for canonical, fn := range comparators {
		if strings.ToLower(canonical) == key {
			return Comparator{Name: canonical, Fn: fn}, true
		}
	}
	return Comparator{}, false
}

// builtinAttribute looks up a comparator for a property check. The
// returned name carries the Attribute prefix.
func builtinAttribute(name string) (Comparator, bool) {
	key := name
	if len(key) > len(AttributePrefix) && strings.EqualFold(key[:len(AttributePrefix)], AttributePrefix) {
		key = key[len(AttributePrefix):]
	}
	c, ok := Builtin(key)
	if !ok {
		return c, false
	}
	c.Name = AttributePrefix + c.Name
	return c, true
}

// FromFunc adapts a func value to a Comparator. Accepted shapes are
// assert.ComparisonAssertionFunc and func(expected, actual any) bool.
func FromFunc(name string, fn any) (Comparator, bool) {
	switch f := fn.(type) {
	case assert.ComparisonAssertionFunc:
		return Comparator{Name: name, Fn: f}, f != nil
	case func(assert.TestingT, any, any, ...any) bool:
		return Comparator{Name: name, Fn: f}, f != nil
	case func(any, any) bool:
		if f == nil {
			return Comparator{}, false
		}
		return Comparator{Name: name, Fn: func(t assert.TestingT, expected, actual any, msgAndArgs ...any) bool {
			if f(expected, actual) {
				return true
			}
			return assert.Fail(t, fmt.Sprintf("%s failed:\nexpected: %#v\nactual  : %#v", name, expected, actual), msgAndArgs...)
		}}, true
	}
	return Comparator{}, false
}

func funcName(fn any) string {
	if fn == nil {
		return ""
	}
	return reflect.TypeOf(fn).String()
}

// lookupComparator resolves a comparator specification: a method of
// the context, a built-in name, or a func value.
func lookupComparator(raw any, ctx *member.Accessor, attribute bool) (Comparator, bool) {
	name, ok := raw.(string)
	if !ok {
		return FromFunc(funcName(raw), raw)
	}
	if m, ok := ctx.MethodFunc(name); ok {
		if c, ok := FromFunc(name, m.Interface()); ok {
			return c, true
		}
	}
	if attribute {
		return builtinAttribute(name)
	}
	return Builtin(name)
}
