package harness

import (
	"testing"

	"github.com/unbound-force/harness/fault"
	"github.com/unbound-force/harness/member"
	"github.com/unbound-force/harness/setget"
)

// DefaultsProvider is implemented by suites overriding the setter and
// getter defaults (method templates and comparators).
type DefaultsProvider interface {
	SetterAndGetterDefaults() setget.Defaults
}

// TestSetterAndGetter runs one subtest per case of the suite's setter
// and getter table. The table comes from a SetterAndGetterData method,
// or else from the SetterAndGetter field. It is a list of [property,
// spec] pairs (see package setget), a []setget.Row, or the path of a
// YAML or JSON case file.
//
// A leading [type] entry declares the subject for all cases. Without
// one, each case gets a fresh subject from GetSetterAndGetterTarget,
// GetTarget, SetterAndGetterTarget or Target, with type names built.
func TestSetterAndGetter(t *testing.T, suite any) {
	t.Helper()
	rows, err := setterAndGetterRows(suite)
	if err != nil {
		t.Fatal(err)
	}

	n := &setget.Normalizer{Registry: registryOf(suite), Context: suite}
	if p, ok := suite.(DefaultsProvider); ok {
		n.Defaults = p.SetterAndGetterDefaults()
	}
	n.Run(t, rows, func(t *testing.T) any {
		t.Helper()
		subject, err := GetTargetInstance(suite,
			[]string{"getSetterAndGetterTarget", "getTarget"},
			[]string{"setterAndGetterTarget", "target"},
			"", true)
		if err != nil {
			t.Fatal(err)
		}
		return subject
	})
}

func setterAndGetterRows(suite any) ([]setget.Row, error) {
	const helper = "harness.TestSetterAndGetter"
	acc := member.Of(suite)

	var raw any
	switch {
	case acc.HasMethod("setterAndGetterData"):
		v, err := acc.CallMethod("setterAndGetterData")
		if err != nil {
			return nil, fault.FromHelper(helper, fault.TypeName(suite), "setterAndGetterData", err)
		}
		raw = v
	default:
		v, ok := acc.Field("setterAndGetter")
		if !ok {
			return nil, fault.FromHelper(helper, fault.TypeName(suite),
				"Field setterAndGetter is not defined and method setterAndGetterData is not provided.")
		}
		raw = v
	}

	switch v := raw.(type) {
	case []setget.Row:
		return v, nil
	case string:
		return setget.LoadFile(v)
	}
	return setget.ParseRows(raw)
}
