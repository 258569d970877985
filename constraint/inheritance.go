package constraint

import (
	"reflect"

	"github.com/stretchr/testify/assert"

	"github.com/unbound-force/harness/instance"
)

// Inheritance requires a subject to implement every expected interface
// and to embed every expected concrete type, at any depth.
type Inheritance struct {
	// Registry resolves type names. Defaults to instance.Default.
	Registry *instance.Registry

	refs    []any
	results []itemResult
	err     error
}

// ExtendsOrImplements returns an Inheritance constraint for types.
func ExtendsOrImplements(types ...any) *Inheritance {
	return &Inheritance{refs: types}
}

func (c *Inheritance) Count() int { return len(c.refs) }

func (c *Inheritance) String() string {
	return "extends or implements required types and interfaces"
}

func (c *Inheritance) Matches(subject any) bool {
	c.results, c.err = nil, nil
	d, err := describe(c.Registry, subject)
	if err != nil {
		c.err = err
		return false
	}
	success := true
	for _, e := range expectedTypes(c.Registry, c.refs) {
		ok := inherits(d, e.typ)
		c.results = append(c.results, itemResult{label: e.label, ok: ok})
		success = success && ok
	}
	return success
}

func inherits(d *instance.Descriptor, t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Interface {
		return d.Implements(t)
	}
	return d.Embeds(t)
}

func (c *Inheritance) FailureDescription(subject any) string {
	return subjectName(c.Registry, subject) + " " + c.String()
}

func (c *Inheritance) AdditionalFailureDescription(any) string {
	return listing(c.results, c.err)
}

// AssertInheritance asserts that subject implements or embeds every
// one of types.
func AssertInheritance(t assert.TestingT, types []any, subject any, msgAndArgs ...any) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	return Assert(t, ExtendsOrImplements(types...), subject, msgAndArgs...)
}
