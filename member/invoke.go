package member

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Callable reports whether v is a func that can be invoked without
// arguments.
func Callable(v any) bool {
	fn := reflect.ValueOf(v)
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return false
	}
	t := fn.Type()
	return t.NumIn() == 0 || (t.NumIn() == 1 && t.IsVariadic())
}

// Call invokes a zero-argument func. See Invoke for result handling.
func Call(v any) (any, error) {
	if !Callable(v) {
		return nil, fmt.Errorf("%T is not callable without arguments", v)
	}
	return Invoke(reflect.ValueOf(v))
}

// Invoke calls fn with args coerced to its parameter types. Variadic
// funcs receive the trailing args individually. If the last result is
// an error it is returned as the error; the first other result is the
// returned value.
func Invoke(fn reflect.Value, args ...any) (any, error) {
	in, err := coerceArgs(fn.Type(), args)
	if err != nil {
		return nil, err
	}

	out := fn.Call(in)
	if len(out) == 0 {
		return nil, nil
	}

	var callErr error
	if last := out[len(out)-1]; fn.Type().Out(len(out)-1) == errorType {
		if !last.IsNil() {
			callErr = last.Interface().(error)
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil, callErr
	}
	return out[0].Interface(), callErr
}

func coerceArgs(t reflect.Type, args []any) ([]reflect.Value, error) {
	fixed := t.NumIn()
	if t.IsVariadic() {
		fixed--
	}
	if len(args) < fixed {
		return nil, fmt.Errorf("%s expects %d argument(s), got %d", t, fixed, len(args))
	}
	if !t.IsVariadic() && len(args) > fixed {
		return nil, fmt.Errorf("%s expects %d argument(s), got %d", t, fixed, len(args))
	}

	in := make([]reflect.Value, 0, len(args))
	for i, arg := range args {
		var pt reflect.Type
		if i < fixed {
			pt = t.In(i)
		} else {
			pt = t.In(fixed).Elem()
		}
		v, err := Coerce(arg, pt)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in = append(in, v)
	}
	return in, nil
}

// Coerce converts v to a value of type t. nil becomes the zero value;
// assignable values pass through; numeric kinds convert between each
// other; []any converts element-wise into other slice types.
func Coerce(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}

	switch {
	case isNumeric(rv.Kind()) && isNumeric(t.Kind()):
		return rv.Convert(t), nil
	case rv.Kind() == t.Kind() && rv.Kind() != reflect.Slice && rv.Type().ConvertibleTo(t):
		return rv.Convert(t), nil
	case rv.Kind() == reflect.Slice && t.Kind() == reflect.Slice:
		out := reflect.MakeSlice(t, rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := Coerce(rv.Index(i).Interface(), t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	}

	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", v, t)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
