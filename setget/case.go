// Package setget expands terse setter/getter specifications into
// canonical test cases and executes them against a subject.
//
// A specification is either a scalar (the value to set) or a map of
// recognized keys:
//
//	property, property_assert   check a field instead of the getter
//	getter, setter              method name templates ("*" = property)
//	assert, setter_assert       comparators
//	value, expect, setter_value values (also *_object, *_callback)
//	exception                   expected error type and message
//	target, target_callback     per-case subject
//
// Unrecognized keys are ignored.
package setget

import (
	"fmt"
	"reflect"
	"strings"
)

// Wire-format sentinels.
const (
	// Unset marks expect and setter_value as not given.
	Unset = "__SETTER_AND_GETTER__"

	// UseInputValue marks a property check against the input value.
	UseInputValue = "__USE_INPUT_VALUE__"

	// Self as setter_value stands for the subject itself.
	Self = "__SELF__"

	// Wildcard in a method name template is replaced by the property.
	Wildcard = "*"
)

type expectKind int

const (
	sameAsInput expectKind = iota
	dontCheck
	useInput
	literal
)

// Expectation is what a check compares against.
type Expectation struct {
	kind  expectKind
	value any
}

var (
	// SameAsInput compares against the input value (default of expect).
	SameAsInput = Expectation{kind: sameAsInput}

	// DontCheck skips the comparison (default of setter_value).
	DontCheck = Expectation{kind: dontCheck}

	// UseInput compares a property against the input value.
	UseInput = Expectation{kind: useInput}
)

// Literal compares against v.
func Literal(v any) Expectation {
	return Expectation{kind: literal, value: v}
}

// Checked reports whether a comparison is performed.
func (e Expectation) Checked() bool {
	return e.kind != dontCheck
}

// IsLiteral reports whether the expectation carries its own value.
func (e Expectation) IsLiteral() bool {
	return e.kind == literal
}

// Want returns the expected value given the input value.
func (e Expectation) Want(input any) any {
	if e.kind == literal {
		return e.value
	}
	return input
}

// Wire renders the expectation in the declarative format.
func (e Expectation) Wire() any {
	switch e.kind {
	case literal:
		return e.value
	case useInput:
		return UseInputValue
	default:
		return Unset
	}
}

// Call is a setter or getter invocation.
type Call struct {
	// Template is the method name; "*" stands for the property name.
	Template string
	Args     []any
	Disabled bool
}

// Method returns the method name for property.
func (c Call) Method(property string) string {
	return strings.ReplaceAll(c.Template, Wildcard, property)
}

func (c Call) wire() []any {
	args := c.Args
	if args == nil {
		args = []any{}
	}
	if c.Disabled {
		return []any{false, args}
	}
	return []any{c.Template, args}
}

// PropertyCheck compares a field of the subject after the setter ran.
type PropertyCheck struct {
	Field  string
	Expect Expectation
}

// ExpectedError declares an error the setter or getter must produce.
// Type is matched against the dynamic type names along the unwrap
// chain; Target is matched with errors.Is. Message, when set, must be
// a substring of the error text.
type ExpectedError struct {
	Type    string
	Target  error
	Message string

	// Resolved is the type registered under Type, set by
	// Normalizer.Resolve from its registry.
	Resolved reflect.Type
}

func (e *ExpectedError) String() string {
	id := e.Type
	if e.Target != nil {
		id = fmt.Sprintf("%v", e.Target)
	}
	if e.Message == "" {
		return id
	}
	return fmt.Sprintf("%s(%q)", id, e.Message)
}

// Case is the normalized execution plan for one property.
type Case struct {
	// Property is the name the case was declared for.
	Property string

	// Subject is the per-case subject, when the specification named one.
	Subject any

	Check  *PropertyCheck
	Getter Call
	Setter Call

	Value       any
	Expect      Expectation
	SetterValue Expectation

	Assert         Comparator
	SetterAssert   Comparator
	PropertyAssert Comparator

	Exception *ExpectedError
}

// Plan renders the case in the declarative format, with comparators
// by name. Two normalizations of one specification yield equal plans.
func (c *Case) Plan() map[string]any {
	plan := map[string]any{
		"property":        nil,
		"getter":          c.Getter.wire(),
		"setter":          c.Setter.wire(),
		"value":           c.Value,
		"expect":          c.Expect.Wire(),
		"setter_value":    c.SetterValue.Wire(),
		"assert":          c.Assert.Name,
		"setter_assert":   c.SetterAssert.Name,
		"property_assert": c.PropertyAssert.Name,
		"exception":       nil,
	}
	if c.Check != nil {
		plan["property"] = []any{c.Check.Field, c.Check.Expect.Wire()}
	}
	if c.Exception != nil {
		var id any = c.Exception.Type
		if c.Exception.Target != nil {
			id = c.Exception.Target.Error()
		}
		plan["exception"] = []any{id, c.Exception.Message}
	}
	return plan
}
