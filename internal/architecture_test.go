package internal

import (
	"testing"

	"github.com/kcmvp/archunit"
)

func TestArchitecture(t *testing.T) {
	fault := archunit.Packages("fault", []string{".../harness/fault"})
	member := archunit.Packages("member", []string{".../harness/member"})
	instance := archunit.Packages("instance", []string{".../harness/instance"})
	helpers := archunit.Packages("helpers", []string{
		".../harness/target",
		".../harness/setget",
		".../harness/constraint",
		".../harness/double",
	})
	tooling := archunit.Packages("tooling", []string{".../harness/internal/..."})
	commands := archunit.Packages("commands", []string{".../harness/cmd/..."})

	check := func(rule string, err error) {
		t.Helper()
		if err != nil {
			t.Errorf("Architecture violation: %s: %v", rule, err)
		}
	}
	check("fault depends on member", fault.ShouldNotReferLayers(member))
	check("fault depends on instance", fault.ShouldNotReferLayers(instance))
	check("member depends on instance", member.ShouldNotReferLayers(instance))
	check("member depends on helpers", member.ShouldNotReferLayers(helpers))
	check("instance depends on helpers", instance.ShouldNotReferLayers(helpers))
	check("helpers depend on internal tooling", helpers.ShouldNotReferLayers(tooling))
	check("helpers depend on commands", helpers.ShouldNotReferLayers(commands))
	check("internal tooling depends on commands", tooling.ShouldNotReferLayers(commands))
}

func TestLayersExist(t *testing.T) {
	for _, name := range []string{"fault", "member", "instance", "setget"} {
		layer := archunit.Packages(name, []string{".../harness/" + name})
		if len(layer.Packages()) == 0 {
			t.Errorf("no %s package found", name)
		}
	}
}
