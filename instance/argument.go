package instance

import (
	"strings"

	"github.com/unbound-force/harness/member"
)

// CallbackPrefix marks a string argument naming a callback.
const CallbackPrefix = "@"

// CallbackKey is the single key of a map argument naming a callback.
const CallbackKey = "@"

// Argument is one constructor or method argument as declared. It is
// one of Literal, Callback or Keyed.
type Argument interface {
	// Raw returns the argument as it was declared.
	Raw() any
}

// Literal is passed unchanged.
type Literal struct {
	Value any
}

func (a Literal) Raw() any { return a.Value }

// Callback is replaced by the result of invoking Ref: a zero-argument
// func, or the name of a method on the context.
type Callback struct {
	Ref any

	raw any
}

func (a Callback) Raw() any {
	if a.raw == nil {
		return a.Ref
	}
	return a.raw
}

// Keyed is a string-keyed argument. It is replaced by the result of
// calling Value if Value is callable, else by calling the method Key
// on Value. A Value naming a registered type is built first.
type Keyed struct {
	Key   string
	Value any
}

func (a Keyed) Raw() any { return a.Value }

// ParseArgument decodes "@name" and {"@": ref} into a Callback. Every
// other value is a Literal.
func ParseArgument(raw any) Argument {
	switch v := raw.(type) {
	case Argument:
		return v
	case string:
		if strings.HasPrefix(v, CallbackPrefix) && len(v) > len(CallbackPrefix) {
			return Callback{Ref: strings.TrimPrefix(v, CallbackPrefix), raw: v}
		}
	default:
		if m, ok := AsMap(raw); ok {
			if ref, ok := m[CallbackKey]; ok && ref != nil {
				return Callback{Ref: ref, raw: raw}
			}
		}
	}
	return Literal{Value: raw}
}

// ParseArguments decodes an argument list. A list yields positional
// arguments. A map yields its numeric keys in ascending order as
// positional arguments, followed by its other keys (sorted) as Keyed
// arguments. nil yields no arguments; any other value is one Literal.
func ParseArguments(raw any) []Argument {
	if raw == nil {
		return nil
	}
	if args, ok := raw.([]Argument); ok {
		return args
	}
	if list, ok := AsList(raw); ok {
		args := make([]Argument, len(list))
		for i, v := range list {
			args[i] = ParseArgument(v)
		}
		return args
	}
	if m, ok := AsMap(raw); ok {
		numeric, named := SplitKeys(m)
		args := make([]Argument, 0, len(m))
		for _, key := range numeric {
			args = append(args, ParseArgument(m[key]))
		}
		for _, key := range named {
			args = append(args, Keyed{Key: key, Value: m[key]})
		}
		return args
	}
	return []Argument{Literal{Value: raw}}
}

// resolver maps arguments against one context. The context accessor
// is built on first use and reused for the remaining arguments.
type resolver struct {
	registry *Registry
	context  any
	accessor *member.Accessor
}

func (r *resolver) ctx() *member.Accessor {
	if r.accessor == nil {
		r.accessor = member.Of(r.context)
	}
	return r.accessor
}

func (r *resolver) resolve(arg Argument) (any, error) {
	switch a := arg.(type) {
	case Callback:
		return r.callback(a.Ref, a.Raw())
	case Keyed:
		return r.keyed(a)
	default:
		return arg.Raw(), nil
	}
}

// callback tries, in order: invoking ref as a func, invoking the
// context method named ref, and finally returning the declared marker.
func (r *resolver) callback(ref, marker any) (any, error) {
	if member.Callable(ref) {
		return member.Call(ref)
	}
	name, ok := ref.(string)
	if !ok || r.context == nil {
		return marker, nil
	}
	if acc := r.ctx(); acc.HasMethod(name) {
		return acc.CallMethod(name)
	}
	return marker, nil
}

func (r *resolver) keyed(a Keyed) (any, error) {
	if member.Callable(a.Value) {
		return member.Call(a.Value)
	}
	if acc := member.Of(a.Value); acc.HasMethod(a.Key) {
		return acc.CallMethod(a.Key)
	}
	if name, ok := a.Value.(string); ok && r.registry.Has(name) {
		obj, err := r.registry.New(name)
		if err != nil {
			return nil, err
		}
		if acc := member.Of(obj); acc.HasMethod(a.Key) {
			return acc.CallMethod(a.Key)
		}
	}
	return a.Value, nil
}
