package report

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/unbound-force/harness/internal/taxonomy"
	"github.com/unbound-force/harness/setget"
)

func plan(overrides map[string]any) map[string]any {
	p := map[string]any{
		"property":        nil,
		"getter":          []any{"get*", []any{}},
		"setter":          []any{"set*", []any{}},
		"value":           nil,
		"expect":          setget.Unset,
		"setter_value":    setget.Unset,
		"assert":          "Same",
		"setter_assert":   "Equal",
		"property_assert": "AttributeSame",
		"exception":       nil,
	}
	for k, v := range overrides {
		p[k] = v
	}
	return p
}

func sampleReports() []taxonomy.FileReport {
	return []taxonomy.FileReport{
		{
			Path:    "testdata/account.yaml",
			Subject: "Account",
			Cases: []taxonomy.CasePlan{
				{
					ID: "cf-00000001", Row: 2, Property: "name",
					Plan: plan(map[string]any{"value": "alice"}),
				},
				{
					ID: "cf-00000002", Row: 3, Property: "balance",
					Plan: plan(map[string]any{
						"value":    10,
						"property": []any{"balance", setget.UseInputValue},
					}),
				},
				{
					ID: "cf-00000003", Row: 4, Name: "negative", Property: "balance",
					Plan: plan(map[string]any{
						"value":     -1,
						"getter":    []any{false, []any{}},
						"exception": []any{"*errors.errorString", "negative"},
					}),
				},
			},
			Findings: []taxonomy.Finding{
				{
					ID: "cf-0000000a", Kind: taxonomy.UnknownKey, Level: taxonomy.LevelWarning,
					Row: 3, Message: `unknown key "expected"`,
				},
				{
					ID: "cf-0000000b", Kind: taxonomy.RegisteredType, Level: taxonomy.LevelNote,
					Row: 0, Message: `type "Account" must be registered`,
				},
			},
		},
	}
}

func sampleMetadata() taxonomy.Metadata {
	return taxonomy.Metadata{
		HarnessVersion: "test",
		GoVersion:      "go1.24.2",
		Timestamp:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:       1500 * time.Millisecond,
	}
}

func TestWriteJSON_ValidJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleReports(), sampleMetadata()); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput:\n%s", err, buf.String())
	}
}

func TestWriteJSON_HasFiles(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleReports(), sampleMetadata()); err != nil {
		t.Fatal(err)
	}

	var report JSONReport
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.Version != "0.1.0" {
		t.Errorf("expected version 0.1.0, got %q", report.Version)
	}
	if len(report.Files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(report.Files))
	}
	if got := len(report.Files[0].Cases); got != 3 {
		t.Errorf("expected 3 cases, got %d", got)
	}
	if got := report.Files[0].Findings[0].Kind; got != taxonomy.UnknownKey {
		t.Errorf("expected UnknownKey finding, got %q", got)
	}
}

func TestWriteJSON_Metadata(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil, sampleMetadata()); err != nil {
		t.Fatal(err)
	}

	output := buf.String()
	for _, want := range []string{`"duration_ms": 1500`, `"timestamp": "2026-01-02T03:04:05Z"`, `"files": []`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output:\n%s", want, output)
		}
	}
}

func TestWriteJSON_NilSlicesBecomeEmpty(t *testing.T) {
	files := []taxonomy.FileReport{{Path: "empty.yaml"}}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, files, sampleMetadata()); err != nil {
		t.Fatal(err)
	}

	output := buf.String()
	if !strings.Contains(output, `"cases": []`) || !strings.Contains(output, `"findings": []`) {
		t.Errorf("expected empty arrays, got:\n%s", output)
	}
	if files[0].Cases != nil {
		t.Error("WriteJSON must not modify its input")
	}
}

func compileSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	sch, err := jsonschema.UnmarshalJSON(strings.NewReader(Schema))
	if err != nil {
		t.Fatalf("failed to parse schema JSON: %v", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", sch); err != nil {
		t.Fatalf("failed to add schema resource: %v", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		t.Fatalf("failed to compile schema: %v", err)
	}
	return compiled
}

func TestWriteJSON_ValidAgainstSchema(t *testing.T) {
	compiled := compileSchema(t)

	tests := []struct {
		name  string
		files []taxonomy.FileReport
	}{
		{"sample", sampleReports()},
		{"empty", nil},
		{"noCases", []taxonomy.FileReport{{Path: "x.yaml"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteJSON(&buf, tt.files, sampleMetadata()); err != nil {
				t.Fatalf("WriteJSON failed: %v", err)
			}

			inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("failed to parse JSON output: %v", err)
			}
			if err := compiled.Validate(inst); err != nil {
				t.Errorf("JSON output does not conform to schema:\n%v", err)
			}
		})
	}
}

func TestSchema_RejectsUnknownLevel(t *testing.T) {
	compiled := compileSchema(t)

	doc := `{"version":"0.1.0","metadata":{"harness_version":"x","go_version":"y","duration_ms":0},
"files":[{"path":"a","cases":[],"findings":[{"id":"cf-1","kind":"UnknownKey","level":"fatal","row":1,"message":"m"}]}]}`
	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if err := compiled.Validate(inst); err == nil {
		t.Error("expected schema to reject level \"fatal\"")
	}
}

func TestWriteText_HasCases(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleReports(), TextOptions{}); err != nil {
		t.Fatal(err)
	}

	output := buf.String()
	for _, want := range []string{
		"=== testdata/account.yaml ===",
		"subject: Account",
		"ROW", "CASE", "EXPECT",
		`setname("alice")`,
		"negative",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestWriteText_HasFindings(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleReports(), TextOptions{}); err != nil {
		t.Fatal(err)
	}

	output := buf.String()
	if !strings.Contains(output, `warning row 3: unknown key "expected"`) {
		t.Errorf("expected row warning in output:\n%s", output)
	}
	if !strings.Contains(output, "note file: type") {
		t.Errorf("expected file-level note in output:\n%s", output)
	}
}

func TestWriteText_PassAndFail(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleReports(), TextOptions{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "PASS") {
		t.Errorf("expected PASS without strict:\n%s", buf.String())
	}

	buf.Reset()
	if err := WriteText(&buf, sampleReports(), TextOptions{Strict: true}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "FAIL") {
		t.Errorf("expected FAIL with strict, warnings present:\n%s", buf.String())
	}
}

func TestWriteText_HasSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleReports(), TextOptions{}); err != nil {
		t.Fatal(err)
	}

	want := "1 file(s) checked, 3 case(s), 0 error(s), 1 warning(s)"
	if !strings.Contains(buf.String(), want) {
		t.Errorf("expected summary %q in output:\n%s", want, buf.String())
	}
}

func TestWriteText_NoCases(t *testing.T) {
	files := []taxonomy.FileReport{{Path: "empty.yaml"}}
	var buf bytes.Buffer
	if err := WriteText(&buf, files, TextOptions{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No cases.") {
		t.Errorf("expected 'No cases.' for empty file:\n%s", buf.String())
	}
}

// stripANSI removes ANSI escape sequences from text for width measurement.
var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

func TestWriteText_FitsIn80Columns(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleReports(), TextOptions{}); err != nil {
		t.Fatal(err)
	}

	const maxWidth = 80
	lines := strings.Split(buf.String(), "\n")
	for i, line := range lines {
		plain := stripANSI(line)
		width := utf8.RuneCountInString(plain)
		if width > maxWidth {
			t.Errorf("line %d exceeds %d columns (%d runes): %q",
				i+1, maxWidth, width, plain)
		}
	}
}

func TestCaseColumns(t *testing.T) {
	cases := sampleReports()[0].Cases

	tests := []struct {
		name               string
		c                  taxonomy.CasePlan
		setter, check, exp string
	}{
		{"getter", cases[0], `setname("alice")`, "getname() Same", `"alice"`},
		{"property", cases[1], "setbalance(10)", "field balance AttributeSame", "10"},
		{"exception", cases[2], "setbalance(-1)", "-", `error *errors.errorString "negative"`},
		{
			"disabledSetter",
			taxonomy.CasePlan{Property: "id", Plan: plan(map[string]any{
				"setter": []any{false, []any{}},
				"expect": 7,
			})},
			"-", "getid() Same", "7",
		},
		{
			"objectValue",
			taxonomy.CasePlan{Property: "owner", Plan: plan(map[string]any{
				"value":  map[string]any{"object": "Owner[bob]"},
				"expect": setget.UseInputValue,
			})},
			"setowner(object Owner[bob])", "getowner() Same", "object Owner[bob]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SetterCall(tt.c); got != tt.setter {
				t.Errorf("SetterCall = %q, want %q", got, tt.setter)
			}
			if got := Check(tt.c); got != tt.check {
				t.Errorf("Check = %q, want %q", got, tt.check)
			}
			if got := Expectation(tt.c); got != tt.exp {
				t.Errorf("Expectation = %q, want %q", got, tt.exp)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("a-very-long-method-name", 10); got != "a-very-..." {
		t.Errorf("truncate(long) = %q", got)
	}
}

func TestLevelStyle(_ *testing.T) {
	s := DefaultStyles()
	for _, l := range []taxonomy.Level{taxonomy.LevelError, taxonomy.LevelWarning, taxonomy.LevelNote, "other"} {
		_ = s.LevelStyle(l).Render(string(l))
	}
}
