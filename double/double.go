// Package double creates and scripts testify mocks from declarative
// specifications.
//
// A double is any type embedding mock.Mock. Expectations are declared
// as chains of steps; each step is a method call on the result of the
// previous one:
//
//	[]any{map[string]any{"Load": "a"}, map[string]any{"Return": []any{"v", nil}}, "Once"}
//
// is the declarative form of d.On("Load", "a").Return("v", nil).Once().
package double

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/unbound-force/harness/fault"
	"github.com/unbound-force/harness/instance"
	"github.com/unbound-force/harness/member"
)

const component = "double"

// T is the test handle doubles report to.
type T interface {
	mock.TestingT
	Cleanup(func())
}

var mockType = reflect.TypeOf(&mock.Mock{})

// Factory builds doubles through a registry.
type Factory struct {
	// Registry resolves type specifications. Defaults to
	// instance.Default.
	Registry *instance.Registry
}

func (f Factory) registry() *instance.Registry {
	if f.Registry == nil {
		return instance.Default
	}
	return f.Registry
}

// Create builds the double described by spec, checks the interfaces
// and embedded type the specification requires, applies chains, and
// asserts the expectations when t cleans up.
func (f Factory) Create(t T, spec any, chains [][]any, ctx any) (any, error) {
	ts, err := instance.ParseTypeSpec(spec)
	if err != nil {
		return nil, err
	}
	r := f.registry()
	args, err := r.MapArguments(ts.Arguments, ctx)
	if err != nil {
		return nil, err
	}
	d, err := r.New(ts.Type, args...)
	if err != nil {
		return nil, err
	}
	if err := f.verify(d, ts); err != nil {
		return nil, err
	}
	if err := f.Script(d, chains, ctx); err != nil {
		return nil, err
	}
	if t != nil {
		acc := member.Of(d)
		t.Cleanup(func() {
			if _, err := acc.CallMethod("AssertExpectations", t); err != nil {
				t.Errorf("asserting expectations of %T: %v", d, err)
			}
		})
	}
	return d, nil
}

func (f Factory) verify(d any, ts instance.TypeSpec) error {
	desc, err := f.registry().BuildReflection(d)
	if err != nil {
		return err
	}
	for _, name := range ts.Implements {
		iface, ok := f.registry().TypeOf(name)
		if !ok || !desc.Implements(iface) {
			return fault.FromComponent(component, "%s does not implement %s", desc, name)
		}
	}
	if ts.Extends != "" {
		base, ok := f.registry().TypeOf(ts.Extends)
		if !ok || !desc.Embeds(base) {
			return fault.FromComponent(component, "%s does not embed %s", desc, ts.Extends)
		}
	}
	return nil
}

// Script applies chains to the double. The first step of a chain
// naming a method of mock.Mock (On, Test, ...) is called on the double
// directly; any other first step is declared with On.
func (f Factory) Script(d any, chains [][]any, ctx any) error {
	acc := member.Of(d)
	if len(chains) > 0 && !acc.HasMethod("On") {
		return fault.FromComponent(component, "%T does not embed mock.Mock", d)
	}
	for i, chain := range chains {
		if err := f.chain(acc, chain, ctx); err != nil {
			return fault.FromComponent(component, "chain %d", i, err)
		}
	}
	return nil
}

func (f Factory) chain(acc *member.Accessor, chain []any, ctx any) error {
	current := acc
	for i, raw := range chain {
		name, args, err := parseStep(raw)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		values, err := f.registry().MapArguments(args, ctx)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if i == 0 && !isMockMethod(name) {
			name, values = "On", append([]any{name}, values...)
		}
		if !current.HasMethod(name) {
			return fmt.Errorf("step %d: %s has no method %s", i, current.Type(), name)
		}
		next, err := current.CallMethod(name, values...)
		if err != nil {
			return fmt.Errorf("step %d: %s: %w", i, name, err)
		}
		current = member.Of(next)
	}
	return nil
}

// parseStep decodes a step: a method name, a single-entry map of name
// to arguments, or a list [name, args...]. A non-list argument value
// is a single argument.
func parseStep(raw any) (string, []instance.Argument, error) {
	if name, ok := raw.(string); ok {
		return name, nil, nil
	}
	if m, ok := instance.AsMap(raw); ok {
		if len(m) != 1 {
			return "", nil, fmt.Errorf("a step map must hold exactly one method, got %d", len(m))
		}
		for name, args := range m {
			return name, stepArguments(args), nil
		}
	}
	if list, ok := instance.AsList(raw); ok && len(list) > 0 {
		if name, ok := list[0].(string); ok {
			return name, instance.ParseArguments(list[1:]), nil
		}
	}
	return "", nil, fmt.Errorf("expected a method name, a {method: args} map or a [method, args...] list, got %s", fault.TypeName(raw))
}

func stepArguments(raw any) []instance.Argument {
	if raw == nil {
		return nil
	}
	if list, ok := instance.AsList(raw); ok {
		return instance.ParseArguments(list)
	}
	return []instance.Argument{instance.ParseArgument(raw)}
}

func isMockMethod(name string) bool {
	if _, ok := mockType.MethodByName(name); ok {
		return true
	}
	for i := 0; i < mockType.NumMethod(); i++ {
		if strings.EqualFold(mockType.Method(i).Name, name) {
			return true
		}
	}
	return false
}

// Create builds a double with the Default registry.
func Create(t T, spec any, chains [][]any, ctx any) (any, error) {
	return Factory{}.Create(t, spec, chains, ctx)
}

// Script applies chains to d using the Default registry.
func Script(d any, chains [][]any, ctx any) error {
	return Factory{}.Script(d, chains, ctx)
}
