package constraint

import (
	"github.com/stretchr/testify/assert"

	"github.com/unbound-force/harness/instance"
)

// Traits requires a subject to embed each expected type directly.
type Traits struct {
	Registry *instance.Registry

	refs    []any
	results []itemResult
	err     error
}

// UsesTraits returns a Traits constraint for types.
func UsesTraits(types ...any) *Traits {
	return &Traits{refs: types}
}

func (c *Traits) Count() int { return len(c.refs) }

func (c *Traits) String() string { return "uses required traits" }

func (c *Traits) Matches(subject any) bool {
	c.results, c.err = nil, nil
	d, err := describe(c.Registry, subject)
	if err != nil {
		c.err = err
		return false
	}
	success := true
	for _, e := range expectedTypes(c.Registry, c.refs) {
		ok := d.EmbedsDirectly(e.typ)
		c.results = append(c.results, itemResult{label: e.label, ok: ok})
		success = success && ok
	}
	return success
}

func (c *Traits) FailureDescription(subject any) string {
	return subjectName(c.Registry, subject) + " " + c.String()
}

func (c *Traits) AdditionalFailureDescription(any) string {
	return listing(c.results, c.err)
}

// AssertUsesTraits asserts that subject directly embeds every one of
// types.
func AssertUsesTraits(t assert.TestingT, types []any, subject any, msgAndArgs ...any) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	return Assert(t, UsesTraits(types...), subject, msgAndArgs...)
}
