package constraint

import (
	"fmt"
	"reflect"

	"github.com/stretchr/testify/assert"

	"github.com/unbound-force/harness/instance"
	"github.com/unbound-force/harness/member"
)

type attribute struct {
	name    string
	want    any
	zero    bool
	invalid string
}

// DefaultAttributes requires a subject to define each expected field
// with the expected value. Objects are checked as they are; type
// subjects are checked on a default instance.
type DefaultAttributes struct {
	Registry *instance.Registry

	attrs   []attribute
	results []itemResult
	err     error
}

// DefaultAttributesValues returns a DefaultAttributes constraint. attrs
// is a map of field name to expected value, or a list of field names
// which must hold their zero value. In a map, entries with numeric
// keys name a field the same way a list entry does.
func DefaultAttributesValues(attrs any) *DefaultAttributes {
	return &DefaultAttributes{attrs: parseAttributes(attrs)}
}

func parseAttributes(raw any) []attribute {
	if raw == nil {
		return nil
	}
	if m, ok := instance.AsMap(raw); ok {
		numeric, named := instance.SplitKeys(m)
		out := make([]attribute, 0, len(m))
		for _, k := range numeric {
			out = append(out, nameOnly(m[k]))
		}
		for _, k := range named {
			out = append(out, attribute{name: k, want: m[k]})
		}
		return out
	}
	if list, ok := instance.AsList(raw); ok {
		out := make([]attribute, 0, len(list))
		for _, v := range list {
			out = append(out, nameOnly(v))
		}
		return out
	}
	return []attribute{{name: fmt.Sprint(raw), invalid: "expected a map or a list of field names"}}
}

func nameOnly(v any) attribute {
	name, ok := v.(string)
	if !ok {
		return attribute{name: fmt.Sprint(v), invalid: "not a field name"}
	}
	return attribute{name: name, zero: true}
}

func (c *DefaultAttributes) Count() int { return len(c.attrs) }

func (c *DefaultAttributes) String() string {
	return "has expected default attributes and its values."
}

func (c *DefaultAttributes) Matches(subject any) bool {
	c.results, c.err = nil, nil
	lookup, err := c.fields(subject)
	if err != nil {
		c.err = err
		return false
	}
	success := true
	for _, a := range c.attrs {
		r := check(a, lookup)
		c.results = append(c.results, r)
		success = success && r.ok
	}
	return success
}

func check(a attribute, lookup func(string) (any, bool)) itemResult {
	r := itemResult{label: a.name}
	if a.invalid != "" {
		r.note = a.invalid
		return r
	}
	actual, ok := lookup(a.name)
	if !ok {
		r.note = "Attribute is not defined."
		return r
	}
	if a.zero {
		v := reflect.ValueOf(actual)
		r.ok = !v.IsValid() || v.IsZero()
		if !r.ok {
			r.note = fmt.Sprintf("expected the zero value, actual %#v", actual)
		}
		return r
	}
	r.ok = assert.ObjectsAreEqual(a.want, actual)
	if !r.ok {
		r.note = fmt.Sprintf("expected %#v, actual %#v", a.want, actual)
	}
	return r
}

// fields returns a field reader for subject. Type subjects are read
// from a default instance.
func (c *DefaultAttributes) fields(subject any) (func(string) (any, bool), error) {
	switch subject.(type) {
	case nil:
		return nil, fmt.Errorf("subject is nil")
	case *instance.Descriptor, reflect.Type, string:
		d, err := describe(c.Registry, subject)
		if err != nil {
			return nil, err
		}
		obj, err := d.New()
		if err != nil {
			return nil, err
		}
		return member.Of(obj).Field, nil
	}
	return member.Of(subject).Field, nil
}

func (c *DefaultAttributes) FailureDescription(subject any) string {
	return subjectName(c.Registry, subject) + " " + c.String()
}

func (c *DefaultAttributes) AdditionalFailureDescription(any) string {
	return listing(c.results, c.err)
}

// AssertDefaultAttributesValues asserts that subject defines each of
// attrs with the expected value.
func AssertDefaultAttributesValues(t assert.TestingT, attrs, subject any, msgAndArgs ...any) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	return Assert(t, DefaultAttributesValues(attrs), subject, msgAndArgs...)
}
