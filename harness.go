// Package harness provides declarative, reflection-driven test helpers.
//
// A test describes what it expects in a suite struct and hands the
// suite to one of the Test* helpers:
//
//	type accountSuite struct {
//		Inheritance       []any
//		DefaultAttributes map[string]any
//		SetterAndGetter   []any
//	}
//
//	func TestAccount(t *testing.T) {
//		s := &accountSuite{
//			Inheritance:     []any{"Account", (*fmt.Stringer)(nil)},
//			SetterAndGetter: []any{[]any{"name", "alice"}},
//		}
//		harness.TestInheritance(t, s)
//		harness.TestSetterAndGetter(t, s)
//	}
//
// Suite members are found by name, ignoring case, so the helpers look
// up "inheritance" and find the Inheritance field. Type names resolve
// through instance.Default, or through the registry returned by the
// suite's Registry method.
package harness

import (
	"github.com/unbound-force/harness/double"
	"github.com/unbound-force/harness/instance"
	"github.com/unbound-force/harness/target"
)

// T is the part of *testing.T the assertion helpers use.
type T interface {
	Helper()
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
}

// RegistryProvider is implemented by suites that resolve type names
// through their own registry.
type RegistryProvider interface {
	Registry() *instance.Registry
}

func registryOf(suite any) *instance.Registry {
	if p, ok := suite.(RegistryProvider); ok {
		if r := p.Registry(); r != nil {
			return r
		}
	}
	return instance.Default
}

// GetTargetInstance resolves the subject under test from suite: the
// first existing method of methods, then the first existing field of
// fields, then the first entry of listField. Bare type names are built
// only when forceObject is set.
func GetTargetInstance(suite any, methods, fields []string, listField string, forceObject bool) (any, error) {
	return target.Resolve(suite, target.Options{
		Methods:     methods,
		Fields:      fields,
		ListField:   listField,
		ForceObject: forceObject,
		Registry:    registryOf(suite),
		Helper:      "harness.GetTargetInstance",
	})
}

// CreateTarget builds the type registered under name in
// instance.Default.
func CreateTarget(name string, args ...any) (any, error) {
	return instance.Default.New(name, args...)
}

// CreateTargetReflection describes a type name or an object.
func CreateTargetReflection(v any) (*instance.Descriptor, error) {
	return instance.Default.BuildReflection(v)
}

// CreateTargetDouble builds and scripts a mock (see package double),
// resolving types and callbacks through suite.
func CreateTargetDouble(t double.T, suite, spec any, chains [][]any) (any, error) {
	return double.Factory{Registry: registryOf(suite)}.Create(t, spec, chains, suite)
}
