package setget_test

import (
	"testing"

	. "github.com/onsi/gomega"
	"pgregory.net/rapid"

	"github.com/unbound-force/harness/setget"
)

type gadget struct {
	label string
}

func (g *gadget) SetLabel(s string) { g.label = s }
func (g *gadget) GetLabel() string  { return g.label }

func specs() *rapid.Generator[any] {
	return rapid.OneOf(
		rapid.Map(rapid.StringMatching(`[a-z]{0,8}`), func(s string) any { return s }),
		rapid.Map(rapid.Int(), func(i int) any { return i }),
		rapid.Custom(func(t *rapid.T) any {
			spec := map[string]any{"value": rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "value")}
			if rapid.Bool().Draw(t, "withProperty") {
				spec["property"] = true
			}
			if rapid.Bool().Draw(t, "withAssert") {
				spec["assert"] = rapid.SampledFrom([]string{"Equal", "equals", "assertEqualValues", "notequal"}).Draw(t, "assert")
			}
			if rapid.Bool().Draw(t, "withGetter") {
				spec["getter"] = []any{"get*", []any{}}
			}
			return spec
		}),
	)
}

func TestProperty_Normalize(t *testing.T) {
	t.Parallel()

	t.Run("NormalizationIsDeterministic", func(t *testing.T) {
		t.Parallel()
		rapid.Check(t, func(t *rapid.T) {
			g := NewWithT(t)
			n := &setget.Normalizer{}
			spec := specs().Draw(t, "spec")

			a, err := n.Normalize(spec, "label", &gadget{})
			g.Expect(err).NotTo(HaveOccurred())
			b, err := n.Normalize(spec, "label", &gadget{})
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(a.Plan()).To(Equal(b.Plan()))
		})
	})

	t.Run("ScalarEqualsValueKey", func(t *testing.T) {
		t.Parallel()
		rapid.Check(t, func(t *rapid.T) {
			g := NewWithT(t)
			n := &setget.Normalizer{}
			v := rapid.StringMatching(`[a-z]{0,8}`).Draw(t, "v")

			a, err := n.Normalize(v, "label", &gadget{})
			g.Expect(err).NotTo(HaveOccurred())
			b, err := n.Normalize(map[string]any{"value": v}, "label", &gadget{})
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(a.Plan()).To(Equal(b.Plan()))
		})
	})

	t.Run("PropertyTrueChecksTheNamedField", func(t *testing.T) {
		t.Parallel()
		rapid.Check(t, func(t *rapid.T) {
			g := NewWithT(t)
			property := rapid.StringMatching(`[a-z]{1,10}`).Draw(t, "property")

			c, err := (&setget.Normalizer{}).Normalize(map[string]any{"property": true}, property, &gadget{})
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(c.Plan()["property"]).To(Equal([]any{property, setget.UseInputValue}))
		})
	})

	t.Run("SetThenGetRoundTrips", func(t *testing.T) {
		t.Parallel()
		rapid.Check(t, func(t *rapid.T) {
			g := NewWithT(t)
			v := rapid.String().Draw(t, "v")

			c, err := (&setget.Normalizer{}).Normalize(map[string]any{"value": v}, "label", &gadget{})
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(setget.Execute(t, c, &gadget{})).To(BeTrue())
		})
	})
}
