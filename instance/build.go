package instance

import (
	"reflect"
	"strings"

	"github.com/unbound-force/harness/fault"
)

// BuildReflection returns the descriptor for spec: a type identifier
// (with or without the reflection prefix), a reflect.Type, an object
// (described by its dynamic type), or a list/map type specification.
func (r *Registry) BuildReflection(spec any) (*Descriptor, error) {
	switch v := spec.(type) {
	case nil:
		return nil, errNotIdentifier(nil)
	case *Descriptor:
		return v, nil
	case reflect.Type:
		return NewDescriptor(r.nameOf(v), v), nil
	case string:
		return r.describe(strings.TrimPrefix(v, ReflectionPrefix))
	}

	if _, ok := AsList(spec); ok {
		return r.describeSpec(spec)
	}
	if _, ok := AsMap(spec); ok {
		return r.describeSpec(spec)
	}

	typ := reflect.TypeOf(spec)
	return NewDescriptor(r.nameOf(typ), typ), nil
}

func (r *Registry) describeSpec(spec any) (*Descriptor, error) {
	ts, err := ParseTypeSpec(spec)
	if err != nil {
		return nil, err
	}
	return r.describe(ts.Type)
}

func (r *Registry) describe(name string) (*Descriptor, error) {
	e, ok := r.lookup(name)
	if !ok {
		return nil, fault.FromComponent("instance.BuildReflection", "type %q not found", name)
	}
	return &Descriptor{Name: e.name, Type: e.typ, ctor: e.ctor}, nil
}

// Build creates an instance from spec. For list and map
// specifications the arguments come from the specification and args
// is ignored. An identifier with the reflection prefix yields a
// *Descriptor.
func (r *Registry) Build(spec any, args ...any) (any, error) {
	var ts TypeSpec
	if s, ok := spec.(string); ok {
		parsed, err := parseIdentifier(s, ParseArguments(args))
		if err != nil {
			return nil, err
		}
		ts = parsed
	} else {
		parsed, err := ParseTypeSpec(spec)
		if err != nil {
			return nil, err
		}
		ts = parsed
	}
	return r.BuildSpec(ts)
}

// BuildSpec creates an instance from a parsed specification without
// resolving callback arguments.
func (r *Registry) BuildSpec(ts TypeSpec) (any, error) {
	if ts.Reflect {
		return r.describe(ts.Type)
	}
	return r.New(ts.Type, ts.Values()...)
}

// WithMappedArguments creates an instance from spec, resolving every
// argument against context first (see Callback and Keyed). When spec
// is a list or map specification its own arguments are used. An
// arguments value that is neither a list nor a map is taken as the
// context and no arguments are passed.
func (r *Registry) WithMappedArguments(spec, arguments, context any) (any, error) {
	if arguments != nil {
		_, isList := AsList(arguments)
		_, isMap := AsMap(arguments)
		if !isList && !isMap {
			context = arguments
			arguments = nil
		}
	}

	var ts TypeSpec
	if s, ok := spec.(string); ok {
		parsed, err := parseIdentifier(s, ParseArguments(arguments))
		if err != nil {
			return nil, err
		}
		ts = parsed
	} else {
		parsed, err := ParseTypeSpec(spec)
		if err != nil {
			return nil, err
		}
		ts = parsed
	}

	mapped, err := r.MapArguments(ts.Arguments, context)
	if err != nil {
		return nil, err
	}
	if ts.Reflect {
		return r.describe(ts.Type)
	}
	return r.New(ts.Type, mapped...)
}

// MapArguments resolves each argument against context, in order.
func (r *Registry) MapArguments(args []Argument, context any) ([]any, error) {
	res := &resolver{registry: r, context: context}
	out := make([]any, len(args))
	for i, arg := range args {
		v, err := res.resolve(arg)
		if err != nil {
			return nil, fault.FromComponent("instance.WithMappedArguments", "argument %d", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Resolve maps a single argument against context.
func (r *Registry) Resolve(arg Argument, context any) (any, error) {
	res := &resolver{registry: r, context: context}
	return res.resolve(arg)
}

// BuildReflection describes spec using the Default registry.
func BuildReflection(spec any) (*Descriptor, error) {
	return Default.BuildReflection(spec)
}

// Build creates an instance using the Default registry.
func Build(spec any, args ...any) (any, error) {
	return Default.Build(spec, args...)
}

// WithMappedArguments creates an instance using the Default registry.
func WithMappedArguments(spec, arguments, context any) (any, error) {
	return Default.WithMappedArguments(spec, arguments, context)
}
