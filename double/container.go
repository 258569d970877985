package double

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/unbound-force/harness/fault"
	"github.com/unbound-force/harness/instance"
)

// ErrServiceNotFound is matched by errors returned for services
// declared as false.
var ErrServiceNotFound = errors.New("service not found")

// NotFoundError reports a service the container does not provide.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("service %q not found", e.Name) }

func (e *NotFoundError) Unwrap() error { return ErrServiceNotFound }

// Container is a service locator.
type Container interface {
	Get(name string, args ...any) (any, error)
	Has(name string, args ...any) bool
}

// ContainerDouble is a mocked Container.
type ContainerDouble struct {
	mock.Mock
}

var _ Container = (*ContainerDouble)(nil)

func (c *ContainerDouble) Get(name string, args ...any) (any, error) {
	ret := c.Called(append([]any{name}, args...)...)
	return ret.Get(0), ret.Error(1)
}

func (c *ContainerDouble) Has(name string, args ...any) bool {
	return c.Called(append([]any{name}, args...)...).Bool(0)
}

// Promise names how Get answers.
const (
	PromiseReturn = "Return"
	PromiseError  = "Error"
	PromisePanic  = "Panic"
)

var promiseAliases = map[string]string{
	"return":     PromiseReturn,
	"willreturn": PromiseReturn,
	"error":      PromiseError,
	"willthrow":  PromiseError,
	"panic":      PromisePanic,
}

// ContainerOptions are defaults applied to every service.
type ContainerOptions struct {
	ArgsGet  []any
	ArgsHas  []any
	CountGet int
	CountHas int
	Promise  string
}

type service struct {
	name     string
	value    any
	missing  bool
	argsGet  []any
	argsHas  []any
	countGet int
	countHas int
	promise  string
}

// NewContainer returns a ContainerDouble providing services. A service
// is declared in one of three styles:
//
//	"name": svc                                        // short
//	"name": {"service": svc, "count_get": 1, ...}      // verbose
//	"name": []any{svc, countGet, countHas}              // compact
//
// Verbose keys are service, args_get, args_has, count_get, count_has
// and promise (Return, Error or Panic). A service declared as false is
// not found: Has reports false and Get returns a *NotFoundError.
// Unless a count is given, calls are optional. Expectations are
// asserted when t cleans up.
func NewContainer(t T, services map[string]any, opts ContainerOptions) (*ContainerDouble, error) {
	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	sort.Strings(names)

	c := &ContainerDouble{}
	if t != nil {
		c.Test(t)
	}
	for _, name := range names {
		s, err := parseService(name, services[name], opts)
		if err != nil {
			return nil, fault.FromComponent("double.NewContainer", "service %q", name, err)
		}
		if err := s.expect(c); err != nil {
			return nil, fault.FromComponent("double.NewContainer", "service %q", name, err)
		}
	}
	if t != nil {
		t.Cleanup(func() { c.AssertExpectations(t) })
	}
	return c, nil
}

func parseService(name string, raw any, opts ContainerOptions) (*service, error) {
	s := &service{
		name:     name,
		argsGet:  opts.ArgsGet,
		argsHas:  opts.ArgsHas,
		countGet: opts.CountGet,
		countHas: opts.CountHas,
		promise:  opts.Promise,
	}

	spec, ok := instance.AsMap(raw)
	if list, isList := instance.AsList(raw); isList {
		spec = make(map[string]any, len(list))
		for i, v := range list {
			spec[fmt.Sprint(i)] = v
		}
		ok = true
	}
	if !ok {
		s.value = raw
	} else {
		s.value = first(spec, "service", "0")
		var err error
		if s.countGet, err = count(spec, s.countGet, "count_get", "1"); err != nil {
			return nil, err
		}
		if s.countHas, err = count(spec, s.countHas, "count_has", "2"); err != nil {
			return nil, err
		}
		if v, ok := spec["args_get"]; ok {
			if s.argsGet, ok = instance.AsList(v); !ok {
				return nil, fmt.Errorf("args_get must be a list, got %s", fault.TypeName(v))
			}
		}
		if v, ok := spec["args_has"]; ok {
			if s.argsHas, ok = instance.AsList(v); !ok {
				return nil, fmt.Errorf("args_has must be a list, got %s", fault.TypeName(v))
			}
		}
		if v, ok := spec["promise"]; ok {
			if s.promise, ok = v.(string); !ok {
				return nil, fmt.Errorf("promise must be a string, got %s", fault.TypeName(v))
			}
		}
	}

	if b, ok := s.value.(bool); ok && !b {
		s.missing = true
	}
	if s.promise == "" {
		s.promise = PromiseReturn
	}
	p, ok := promiseAliases[strings.ToLower(s.promise)]
	if !ok {
		return nil, fmt.Errorf("unknown promise %q", s.promise)
	}
	s.promise = p
	return s, nil
}

func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

func count(m map[string]any, def int, keys ...string) (int, error) {
	v := first(m, keys...)
	if v == nil {
		return def, nil
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		if rv.Int() >= 0 {
			return int(rv.Int()), nil
		}
	case rv.CanUint():
		return int(rv.Uint()), nil
	case rv.CanFloat():
		if f := rv.Float(); f >= 0 && f == float64(int(f)) {
			return int(f), nil
		}
	}
	return 0, fmt.Errorf("%s must be a non-negative integer, got %v", keys[0], v)
}

func (s *service) expect(c *ContainerDouble) error {
	get := c.On("Get", append([]any{s.name}, s.argsGet...)...)
	switch {
	case s.missing:
		get.Return(nil, &NotFoundError{Name: s.name})
	case s.promise == PromiseError:
		err, ok := s.value.(error)
		if !ok {
			return fmt.Errorf("promise Error needs an error service, got %s", fault.TypeName(s.value))
		}
		get.Return(nil, err)
	case s.promise == PromisePanic:
		get.Panic(fmt.Sprint(s.value))
	default:
		get.Return(s.value, nil)
	}
	times(get, s.countGet)

	has := c.On("Has", append([]any{s.name}, s.argsHas...)...).Return(!s.missing)
	times(has, s.countHas)
	return nil
}

func times(call *mock.Call, n int) {
	if n > 0 {
		call.Times(n)
		return
	}
	call.Maybe()
}
