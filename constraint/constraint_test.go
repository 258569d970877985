package constraint

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unbound-force/harness/instance"
)

type recordingT struct {
	messages []string
}

func (r *recordingT) Errorf(format string, args ...any) {
	r.messages = append(r.messages, fmt.Sprintf(format, args...))
}

func (r *recordingT) output() string { return strings.Join(r.messages, "\n") }

type Base struct {
	ID int
}

type Timestamps struct {
	created string
}

type Middle struct {
	Base
}

type Document struct {
	*Middle
	Timestamps

	Title   string
	pages   int
	tags    []string
	Visible bool
}

func NewDocument() *Document {
	return &Document{Title: "untitled", pages: 1, Visible: true}
}

func (d *Document) Read(p []byte) (int, error) { return 0, io.EOF }

func (d *Document) String() string { return d.Title }

func testRegistry(t *testing.T) *instance.Registry {
	t.Helper()
	r := instance.NewRegistry()
	require.NoError(t, r.Register("Document", NewDocument))
	require.NoError(t, instance.RegisterType[Base](r, "Base"))
	require.NoError(t, instance.RegisterType[io.Reader](r, "Reader"))
	return r
}

func TestInheritance(t *testing.T) {
	r := testRegistry(t)

	tests := []struct {
		name    string
		types   []any
		subject any
		want    bool
	}{
		{"interfaceByPointer", []any{(*io.Reader)(nil)}, &Document{}, true},
		{"interfaceOfValueType", []any{(*fmt.Stringer)(nil)}, reflect.TypeOf(Document{}), true},
		{"interfaceByName", []any{"Reader"}, "Document", true},
		{"embeddedDeep", []any{Base{}}, &Document{}, true},
		{"embeddedByName", []any{"Base", Timestamps{}}, "!Document", true},
		{"embeddedByType", []any{reflect.TypeOf(&Middle{})}, &Document{}, true},
		{"notImplemented", []any{(*io.Writer)(nil)}, &Document{}, false},
		{"notEmbedded", []any{Document{}}, &Middle{}, false},
		{"unknownName", []any{"Nope"}, &Document{}, false},
		{"nilReference", []any{nil}, &Document{}, false},
		{"nothingExpected", nil, &Document{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ExtendsOrImplements(tt.types...)
			c.Registry = r
			assert.Equal(t, tt.want, c.Matches(tt.subject))
			assert.Equal(t, len(tt.types), c.Count())
		})
	}
}

func TestInheritance_FailureListsEveryItem(t *testing.T) {
	c := ExtendsOrImplements((*io.Reader)(nil), (*io.Writer)(nil))
	rec := &recordingT{}

	assert.False(t, Assert(rec, c, &Document{}, "inheritance"))
	out := rec.output()
	assert.Contains(t, out, "*constraint.Document extends or implements required types and interfaces")
	assert.Contains(t, out, "inheritance")
	assert.Equal(t, "\n + io.Reader\n - io.Writer", c.AdditionalFailureDescription(&Document{}))
}

func TestInheritance_NilSubject(t *testing.T) {
	c := ExtendsOrImplements((*io.Reader)(nil))
	assert.False(t, c.Matches(nil))
	assert.Contains(t, c.AdditionalFailureDescription(nil), "subject is nil")
}

func TestUsesTraits(t *testing.T) {
	r := testRegistry(t)

	tests := []struct {
		name    string
		types   []any
		subject any
		want    bool
	}{
		{"direct", []any{Timestamps{}, &Middle{}}, &Document{}, true},
		{"pointerInsensitive", []any{Middle{}}, Document{}, true},
		{"byName", []any{"Base"}, &Middle{}, true},
		{"deepIsNotDirect", []any{Base{}}, &Document{}, false},
		{"notAStruct", []any{Base{}}, 42, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := UsesTraits(tt.types...)
			c.Registry = r
			assert.Equal(t, tt.want, c.Matches(tt.subject))
		})
	}
}

func TestAssertUsesTraits(t *testing.T) {
	assert.True(t, AssertUsesTraits(t, []any{Timestamps{}}, &Document{}))

	rec := &recordingT{}
	assert.False(t, AssertUsesTraits(rec, []any{Timestamps{}, Base{}}, &Document{}))
	assert.Contains(t, rec.output(), "*constraint.Document uses required traits")
	assert.Contains(t, rec.output(), "+ constraint.Timestamps")
	assert.Contains(t, rec.output(), "- constraint.Base")
}

func TestDefaultAttributes(t *testing.T) {
	r := testRegistry(t)

	tests := []struct {
		name    string
		attrs   any
		subject any
		want    bool
	}{
		{"constructorDefaults", map[string]any{"Title": "untitled", "pages": 1, "visible": true}, "Document", true},
		{"zeroValues", []string{"tags", "Middle"}, "Document", true},
		{"numericKeysNameFields", map[string]any{"0": "tags", "Title": "untitled"}, "Document", true},
		{"promotedField", []any{"created"}, "Document", true},
		{"strictEquality", map[string]any{"pages": int64(1)}, "Document", false},
		{"wrongValue", map[string]any{"Title": "other"}, "Document", false},
		{"notZero", []string{"Title"}, "Document", false},
		{"missing", []string{"author"}, "Document", false},
		{"instanceValues", map[string]any{"Title": "mine", "pages": 0}, &Document{Title: "mine"}, true},
		{"structValue", map[string]any{"Title": "v"}, Document{Title: "v"}, true},
		{"zeroStructType", []string{"Title", "pages"}, reflect.TypeOf(Document{}), true},
		{"invalidEntry", []any{3}, "Document", false},
		{"invalidAttrs", 3, "Document", false},
		{"unknownType", []string{"Title"}, "Nope", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultAttributesValues(tt.attrs)
			c.Registry = r
			assert.Equal(t, tt.want, c.Matches(tt.subject), c.AdditionalFailureDescription(tt.subject))
		})
	}
}

func TestDefaultAttributes_FailureDescription(t *testing.T) {
	c := DefaultAttributesValues(map[string]any{"Title": "untitled", "pages": 2, "author": nil})
	c.Registry = testRegistry(t)
	rec := &recordingT{}

	assert.False(t, Assert(rec, c, "Document"))
	assert.Contains(t, rec.output(), "Document has expected default attributes and its values.")

	details := c.AdditionalFailureDescription("Document")
	assert.Contains(t, details, "\n + Title")
	assert.Contains(t, details, fmt.Sprintf("\n - %-25s: %s", "pages", "expected 2, actual 1"))
	assert.Contains(t, details, fmt.Sprintf("\n - %-25s: %s", "author", "Attribute is not defined."))
	assert.Equal(t, 3, c.Count())
}

func TestAssertDefaultAttributesValues(t *testing.T) {
	assert.True(t, AssertDefaultAttributesValues(t, map[string]any{"Visible": true}, NewDocument()))
}
