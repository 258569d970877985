// Package constraint provides aggregate assertions over a type: which
// interfaces it implements, which types it embeds, and the default
// values of its fields. Every expected item is evaluated, and a failure
// lists each item with a + (satisfied) or - (not satisfied) marker.
//
// A subject is an object, a *instance.Descriptor, a reflect.Type, or
// the name of a registered type.
package constraint

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/stretchr/testify/assert"

	"github.com/unbound-force/harness/instance"
)

// Constraint is an assertion evaluated against a subject.
type Constraint interface {
	// Matches evaluates the subject and records per-item results for
	// AdditionalFailureDescription.
	Matches(subject any) bool
	Count() int
	String() string
	FailureDescription(subject any) string
	AdditionalFailureDescription(subject any) string
}

type tHelper interface {
	Helper()
}

// Assert evaluates c against subject and reports a failure through t.
func Assert(t assert.TestingT, c Constraint, subject any, msgAndArgs ...any) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	if c.Matches(subject) {
		return true
	}
	return assert.Fail(t, "Failed asserting that "+c.FailureDescription(subject)+c.AdditionalFailureDescription(subject), msgAndArgs...)
}

func registryOr(r *instance.Registry) *instance.Registry {
	if r == nil {
		return instance.Default
	}
	return r
}

// describe returns the descriptor of subject. A nil subject is an error.
func describe(r *instance.Registry, subject any) (*instance.Descriptor, error) {
	if subject == nil {
		return nil, fmt.Errorf("subject is nil")
	}
	return registryOr(r).BuildReflection(subject)
}

func subjectName(r *instance.Registry, subject any) string {
	d, err := describe(r, subject)
	if err != nil {
		return fmt.Sprint(subject)
	}
	return d.Name
}

// expected is one type a constraint checks for.
type expected struct {
	label string
	typ   reflect.Type
}

// expectedTypes converts type references: a reflect.Type, a registered
// type name, a nil pointer to an interface such as (*io.Reader)(nil),
// or any other value standing for its own type.
func expectedTypes(r *instance.Registry, refs []any) []expected {
	out := make([]expected, 0, len(refs))
	for _, ref := range refs {
		out = append(out, expectedType(r, ref))
	}
	return out
}

func expectedType(r *instance.Registry, ref any) expected {
	switch v := ref.(type) {
	case nil:
		return expected{label: "<nil>"}
	case reflect.Type:
		return expected{label: v.String(), typ: v}
	case string:
		typ, _ := registryOr(r).TypeOf(v)
		return expected{label: v, typ: typ}
	}
	typ := reflect.TypeOf(ref)
	if typ.Kind() == reflect.Pointer && typ.Elem().Kind() == reflect.Interface {
		typ = typ.Elem()
	}
	return expected{label: typ.String(), typ: typ}
}

// itemResult is the outcome for one expected item.
type itemResult struct {
	label string
	ok    bool
	note  string
}

func listing(results []itemResult, err error) string {
	var b strings.Builder
	if err != nil {
		fmt.Fprintf(&b, "\n ! %v", err)
	}
	for _, r := range results {
		switch {
		case r.ok:
			fmt.Fprintf(&b, "\n + %s", r.label)
		case r.note != "":
			fmt.Fprintf(&b, "\n - %-25s: %s", r.label, r.note)
		default:
			fmt.Fprintf(&b, "\n - %s", r.label)
		}
	}
	return b.String()
}
