// Package fault defines the error taxonomy shared by the harness
// helpers: misconfigured specifications (invalid usage) and missing
// test subjects (target not found).
//
// Both categories are test-authoring defects. They are deterministic,
// never retried, and surface immediately to abort the current test.
package fault

import (
	"errors"
	"fmt"
)

// ErrInvalidUsage is matched (via errors.Is) by every error reporting
// a misconfigured specification: wrong shape, missing required field,
// uncallable callback reference, unknown type identifier.
var ErrInvalidUsage = errors.New("invalid usage")

// ErrTargetNotFound is matched by errors reporting that no method,
// field or list entry of a context yielded a subject under test.
var ErrTargetNotFound = errors.New("could not find or create a target instance")

// UsageError is a templated-message error carrying the name of the
// component (and optionally the context type) that detected the
// misuse.
type UsageError struct {
	// Component names the helper reporting the error
	// (e.g. "setget.Normalizer").
	Component string

	// Context names the type of the context object, when known.
	Context string

	// Message is the formatted message without prefixes.
	Message string

	// Cause is the underlying error, if any.
	Cause error

	kind error
}

// Error renders "<component>: <context>: <message>", omitting empty
// prefixes.
func (e *UsageError) Error() string {
	msg := e.Message
	if e.Context != "" {
		msg = e.Context + ": " + msg
	}
	if e.Component != "" {
		msg = e.Component + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the category sentinel and the cause.
func (e *UsageError) Unwrap() []error {
	errs := []error{e.category()}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func (e *UsageError) category() error {
	if e.kind == nil {
		return ErrInvalidUsage
	}
	return e.kind
}

// Create builds an invalid-usage error from a printf-style template.
// If the last argument is an error it becomes the cause and is not
// used as a format argument.
func Create(format string, args ...any) *UsageError {
	var cause error
	if n := len(args); n > 0 {
		if err, ok := args[n-1].(error); ok {
			cause = err
			args = args[:n-1]
		}
	}
	return &UsageError{
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// FromComponent builds an invalid-usage error whose message is
// prefixed with the component name.
func FromComponent(component, format string, args ...any) *UsageError {
	e := Create(format, args...)
	e.Component = component
	return e
}

// FromHelper builds an invalid-usage error prefixed with the helper
// name and the context type name.
func FromHelper(helper, context, format string, args ...any) *UsageError {
	e := Create(format, args...)
	e.Component = helper
	e.Context = context
	return e
}

// TargetNotFound reports that no subject could be located for the
// given helper and context.
func TargetNotFound(helper, context string) *UsageError {
	return &UsageError{
		Component: helper,
		Context:   context,
		Message:   ErrTargetNotFound.Error(),
		kind:      ErrTargetNotFound,
	}
}

// TypeName returns a printable type name for v, used as the Context of
// usage errors.
func TypeName(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%T", v)
}
