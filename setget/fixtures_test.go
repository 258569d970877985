package setget

import (
	"errors"
	"fmt"
	"strings"

	"github.com/unbound-force/harness/instance"
)

// recordingT captures assertion failures instead of failing the test.
type recordingT struct {
	errors []string
}

func (r *recordingT) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *recordingT) failed() bool { return len(r.errors) > 0 }

func (r *recordingT) contains(s string) bool {
	for _, e := range r.errors {
		if strings.Contains(e, s) {
			return true
		}
	}
	return false
}

var errFrozen = errors.New("account is frozen")

type LimitError struct {
	Limit int
}

func (e *LimitError) Error() string { return fmt.Sprintf("limit %d out of range", e.Limit) }

type owner struct {
	Name string
}

type account struct {
	name   string
	count  int
	owner  *owner
	frozen bool
	limit  int
}

func (a *account) SetName(name string) *account {
	a.name = name
	return a
}

func (a *account) GetName() string             { return a.name }
func (a *account) SetCount(n int)              { a.count = n }
func (a *account) GetCount() int               { return a.count }
func (a *account) SetOwner(o *owner)           { a.owner = o }
func (a *account) GetOwner() *owner            { return a.owner }
func (a *account) GetPrefixed(p string) string { return p + a.name }
func (a *account) Unchanged() string           { return "constant" }

func (a *account) SetFrozen(frozen bool) error {
	if a.frozen {
		return fmt.Errorf("set frozen: %w", errFrozen)
	}
	a.frozen = frozen
	return nil
}

func (a *account) SetLimit(n int) {
	if n < 0 {
		panic(&LimitError{Limit: n})
	}
	a.limit = n
}

func (a *account) SetUpper(s string) { a.name = strings.ToUpper(s) }
func (a *account) GetUpper() string  { return a.name }

// suite plays the test-case context: callbacks and custom
// comparators are its methods.
type suite struct {
	subject *account
}

func (s *suite) DefaultOwner() *owner { return &owner{Name: "root"} }
func (s *suite) NewAccount() *account { return &account{name: "from-callback"} }
func (s *suite) Loose(expected, actual any) bool {
	return strings.EqualFold(fmt.Sprint(expected), fmt.Sprint(actual))
}

func testRegistry() *instance.Registry {
	r := instance.NewRegistry()
	r.MustRegister("Owner", func(name ...string) *owner {
		o := &owner{}
		if len(name) > 0 {
			o.Name = name[0]
		}
		return o
	})
	r.MustRegister("Account", func() *account { return &account{} })
	return r
}

func normalizer() *Normalizer {
	return &Normalizer{Registry: testRegistry(), Context: &suite{}}
}
