package setget

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/stretchr/testify/assert"

	"github.com/unbound-force/harness/instance"
	"github.com/unbound-force/harness/member"
)

type tHelper interface {
	Helper()
}

// Execute runs c against subject: the setter (with the value followed
// by the setter arguments), the setter return check, then either the
// property check or the getter check. It reports through t and
// returns whether the case passed.
func Execute(t assert.TestingT, c *Case, subject any) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	if c.Subject != nil {
		subject = c.Subject
	}
	if subject == nil {
		return assert.Fail(t, fmt.Sprintf("property %q: no subject to test", c.Property))
	}

	passed, err := run(t, c, subject)
	return settle(t, c, passed, err)
}

func run(t assert.TestingT, c *Case, subject any) (bool, error) {
	acc := member.Of(subject)
	passed := true

	if !c.Setter.Disabled {
		name := c.Setter.Method(c.Property)
		if !acc.HasMethod(name) {
			return assert.Fail(t, fmt.Sprintf("property %q: setter %s not found on %T", c.Property, name, subject)), nil
		}
		got, err := invoke(acc, name, append([]any{c.Value}, c.Setter.Args...))
		if err != nil {
			return false, err
		}
		if c.SetterValue.Checked() {
			passed = c.SetterAssert.Fn(t, c.SetterValue.Want(c.Value), got,
				fmt.Sprintf("property %q: setter %s returned an unexpected value", c.Property, name)) && passed
		}
	}

	if c.Check != nil {
		got, ok := acc.Field(c.Check.Field)
		if !ok {
			return assert.Fail(t, fmt.Sprintf("property %q: field %s not found on %T", c.Property, c.Check.Field, subject)), nil
		}
		return c.PropertyAssert.Fn(t, c.Check.Expect.Want(c.Value), got,
			fmt.Sprintf("property %q: field %s", c.Property, c.Check.Field)) && passed, nil
	}

	if !c.Getter.Disabled {
		name := c.Getter.Method(c.Property)
		if !acc.HasMethod(name) {
			return assert.Fail(t, fmt.Sprintf("property %q: getter %s not found on %T", c.Property, name, subject)), nil
		}
		got, err := invoke(acc, name, c.Getter.Args)
		if err != nil {
			return false, err
		}
		passed = c.Assert.Fn(t, c.Expect.Want(c.Value), got,
			fmt.Sprintf("property %q: getter %s", c.Property, name)) && passed
	}
	return passed, nil
}

// invoke calls a method, turning a recovered panic into an error.
func invoke(acc *member.Accessor, name string, args []any) (got any, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return acc.CallMethod(name, args...)
}

func settle(t assert.TestingT, c *Case, passed bool, err error) bool {
	if c.Exception == nil {
		if err != nil {
			return assert.Fail(t, fmt.Sprintf("property %q: unexpected error: %v", c.Property, err))
		}
		return passed
	}
	if err == nil {
		return assert.Fail(t, fmt.Sprintf("property %q: expected error %s, got none", c.Property, c.Exception))
	}
	if !Matches(c.Exception, err) {
		return assert.Fail(t, fmt.Sprintf("property %q: expected error %s, got %T: %v", c.Property, c.Exception, err, err))
	}
	return true
}

// Matches reports whether err satisfies the expectation.
func Matches(e *ExpectedError, err error) bool {
	if err == nil {
		return false
	}
	if e.Target != nil && !errors.Is(err, e.Target) {
		return false
	}
	if e.Type != "" && !hasType(err, e) {
		return false
	}
	return e.Message == "" || strings.Contains(err.Error(), e.Message)
}

// hasType walks the unwrap tree of err looking for the dynamic type
// named by e.Type. Names match the full Go type ("*fs.PathError"), the
// type without pointer or package, or the registered type: e.Resolved,
// else the one registered in instance.Default.
func hasType(err error, e *ExpectedError) bool {
	name, want := e.Type, e.Resolved
	registered := want != nil
	if !registered {
		want, registered = instance.Default.TypeOf(name)
	}
	var match bool
	walk(err, func(e error) bool {
		typ := reflect.TypeOf(e)
		if registered && (typ == want || (typ.Kind() == reflect.Pointer && typ.Elem() == want)) {
			match = true
		} else {
			match = typeNameMatches(typ, name)
		}
		return match
	})
	return match
}

func typeNameMatches(typ reflect.Type, name string) bool {
	full := typ.String()
	if full == name {
		return true
	}
	bare := strings.TrimPrefix(full, "*")
	if bare == name || strings.TrimPrefix(name, "*") == bare {
		return true
	}
	if i := strings.LastIndex(bare, "."); i >= 0 {
		return bare[i+1:] == strings.TrimPrefix(name, "*")
	}
	return false
}

func walk(err error, visit func(error) bool) bool {
	if err == nil {
		return false
	}
	if visit(err) {
		return true
	}
	switch u := err.(type) {
	case interface{ Unwrap() error }:
		return walk(u.Unwrap(), visit)
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			if walk(inner, visit) {
				return true
			}
		}
	}
	return false
}
