package member

import (
	"errors"
	"reflect"
	"testing"
)

type widget struct {
	Name  string
	count int
	tags  []string
}

func (w *widget) GetName() string       { return w.Name }
func (w *widget) SetName(name string)   { w.Name = name }
func (w *widget) Fail() (string, error) { return "", errors.New("boom") }
func (w *widget) Sum(base int, xs ...int) int {
	for _, x := range xs {
		base += x
	}
	return base
}

type suite struct {
	helpers map[string]any
	target  string
}

func (s *suite) TestMembers() map[string]any {
	if s.helpers == nil {
		s.helpers = map[string]any{
			"initTarget": func() string { return "from-helper" },
			"presets":    []string{"a", "b"},
		}
	}
	return s.helpers
}

func TestAccessor_MethodExactAndCaseInsensitive(t *testing.T) {
	a := Of(&widget{Name: "gear"})

	for _, name := range []string{"GetName", "getName", "getname"} {
		if !a.HasMethod(name) {
			t.Errorf("HasMethod(%q) = false, want true", name)
		}
	}
	got, err := a.CallMethod("getname")
	if err != nil {
		t.Fatalf("CallMethod: %v", err)
	}
	if got != "gear" {
		t.Errorf("CallMethod = %v, want gear", got)
	}
	if a.HasMethod("missing") {
		t.Error("HasMethod(missing) = true")
	}
}

func TestAccessor_CallMethod_TrailingError(t *testing.T) {
	_, err := Of(&widget{}).CallMethod("Fail")
	if err == nil || err.Error() != "boom" {
		t.Errorf("expected boom error, got %v", err)
	}
}

func TestAccessor_CallMethod_Variadic(t *testing.T) {
	got, err := Of(&widget{}).CallMethod("Sum", 1, 2, 3)
	if err != nil {
		t.Fatalf("CallMethod: %v", err)
	}
	if got != 6 {
		t.Errorf("Sum = %v, want 6", got)
	}
}

func TestAccessor_CallMethod_NoResult(t *testing.T) {
	w := &widget{}
	got, err := Of(w).CallMethod("SetName", "cog")
	if err != nil || got != nil {
		t.Fatalf("CallMethod = (%v, %v), want (nil, nil)", got, err)
	}
	if w.Name != "cog" {
		t.Errorf("Name = %q, want cog", w.Name)
	}
}

func TestAccessor_CallMethod_Missing(t *testing.T) {
	if _, err := Of(&widget{}).CallMethod("Nope"); err == nil {
		t.Error("expected error for missing method")
	}
}

func TestAccessor_UnexportedFields(t *testing.T) {
	w := &widget{count: 3, tags: []string{"x"}}
	a := Of(w)

	got, ok := a.Field("count")
	if !ok || got != 3 {
		t.Errorf("Field(count) = (%v, %v), want (3, true)", got, ok)
	}
	if err := a.SetField("count", 7); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if w.count != 7 {
		t.Errorf("count = %d, want 7", w.count)
	}
	if err := a.SetField("tags", []any{"y", "z"}); err != nil {
		t.Fatalf("SetField(tags): %v", err)
	}
	if !reflect.DeepEqual(w.tags, []string{"y", "z"}) {
		t.Errorf("tags = %v", w.tags)
	}
}

func TestAccessor_FieldOfStructValue(t *testing.T) {
	a := Of(widget{count: 5})
	got, ok := a.Field("count")
	if !ok || got != 5 {
		t.Errorf("Field(count) = (%v, %v), want (5, true)", got, ok)
	}
	if err := a.SetField("count", 1); err == nil {
		t.Error("expected error writing a field of a non-pointer struct")
	}
}

func TestAccessor_FieldCaseInsensitive(t *testing.T) {
	got, ok := Of(&widget{Name: "n"}).Field("name")
	if !ok || got != "n" {
		t.Errorf("Field(name) = (%v, %v)", got, ok)
	}
}

func TestAccessor_LookupTable(t *testing.T) {
	s := &suite{}
	a := Of(s)

	if !a.HasMethod("initTarget") {
		t.Fatal("expected lookup-table func to act as a method")
	}
	got, err := a.CallMethod("INITTARGET")
	if err != nil || got != "from-helper" {
		t.Errorf("CallMethod = (%v, %v)", got, err)
	}

	if a.HasField("initTarget") {
		t.Error("func entries must not act as fields")
	}
	v, ok := a.Field("presets")
	if !ok || !reflect.DeepEqual(v, []string{"a", "b"}) {
		t.Errorf("Field(presets) = (%v, %v)", v, ok)
	}
	if err := a.SetField("presets", []string{"c"}); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if !reflect.DeepEqual(s.helpers["presets"], []string{"c"}) {
		t.Errorf("presets not written back: %v", s.helpers["presets"])
	}
}

func TestAccessor_StructFieldBeatsLookupTable(t *testing.T) {
	s := &suite{target: "field"}
	got, ok := Of(s).Field("target")
	if !ok || got != "field" {
		t.Errorf("Field(target) = (%v, %v)", got, ok)
	}
}

func TestAccessor_Nil(t *testing.T) {
	a := Of(nil)
	if a.Valid() || a.Type() != nil {
		t.Error("nil accessor must be invalid")
	}
	if a.HasMethod("x") || a.HasField("x") {
		t.Error("nil accessor must have no members")
	}
	if err := a.SetField("x", 1); err == nil {
		t.Error("expected error")
	}
}

func TestCallable(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"zero-arg", func() int { return 1 }, true},
		{"variadic", func(...int) int { return 1 }, true},
		{"one-arg", func(int) int { return 1 }, false},
		{"nil func", (func())(nil), false},
		{"string", "getTarget", false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Callable(tt.v); got != tt.want {
				t.Errorf("Callable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCall(t *testing.T) {
	got, err := Call(func() (int, error) { return 4, nil })
	if err != nil || got != 4 {
		t.Errorf("Call = (%v, %v)", got, err)
	}
	if _, err := Call("nope"); err == nil {
		t.Error("expected error for non-callable")
	}
}

func TestCoerce(t *testing.T) {
	v, err := Coerce(3, reflect.TypeOf(int64(0)))
	if err != nil || v.Interface() != int64(3) {
		t.Errorf("Coerce(int→int64) = (%v, %v)", v, err)
	}
	v, err = Coerce(nil, reflect.TypeOf(""))
	if err != nil || v.Interface() != "" {
		t.Errorf("Coerce(nil→string) = (%v, %v)", v, err)
	}
	if _, err := Coerce(3, reflect.TypeOf("")); err == nil {
		t.Error("int must not convert to string")
	}
	if _, err := Coerce([]any{"a", 1}, reflect.TypeOf([]string{})); err == nil {
		t.Error("expected element error")
	}
}

func TestFieldNames(t *testing.T) {
	got := FieldNames(&widget{})
	want := []string{"Name", "count", "tags"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FieldNames = %v, want %v", got, want)
	}
	if FieldNames(3) != nil {
		t.Error("expected nil for non-struct")
	}
}
