// Package casefile validates setter and getter case files against
// their JSON Schema and renders the plan of every case without running
// it.
package casefile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/unbound-force/harness/instance"
	"github.com/unbound-force/harness/internal/taxonomy"
	"github.com/unbound-force/harness/setget"
)

// Schema is the JSON Schema (Draft 2020-12) of a case file.
//
//go:embed schema.json
var Schema string

const schemaURL = "case-file.schema.json"

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(Schema))
	if err != nil {
		return nil, fmt.Errorf("parsing case-file schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("adding case-file schema: %w", err)
	}
	return c.Compile(schemaURL)
})

// Validate checks a decoded case table against Schema.
func Validate(raw any) error {
	sch, err := compiled()
	if err != nil {
		return err
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encoding case table: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding case table: %w", err)
	}
	return sch.Validate(inst)
}

// Options configures Lint.
type Options struct {
	// Defaults are the setter and getter defaults the plans show.
	Defaults setget.Defaults
}

// Lint reads the case file at path and reports the plan of every case
// together with its findings.
func Lint(path string, opts Options) (*taxonomy.FileReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading case file: %w", err)
	}
	return LintData(path, data, opts), nil
}

// LintData lints the content of a case file. The extension of path
// selects JSON decoding; path also names the file in the report.
// Rows are numbered from 1, a map's target counting as the first row.
func LintData(path string, data []byte, opts Options) *taxonomy.FileReport {
	r := &taxonomy.FileReport{
		Path:     path,
		Cases:    []taxonomy.CasePlan{},
		Findings: []taxonomy.Finding{},
	}

	raw, err := setget.Decode(data, strings.EqualFold(filepath.Ext(path), ".json"))
	if err != nil {
		r.Add(taxonomy.DecodeError, 0, "%v", err)
		return r
	}
	if err := Validate(raw); err != nil {
		r.Add(taxonomy.SchemaViolation, 0, "%s", strings.TrimSpace(err.Error()))
	}
	rows, err := setget.ParseRows(raw)
	if err != nil {
		r.Add(taxonomy.RowError, 0, "%v", err)
		return r
	}

	n := &setget.Normalizer{Defaults: opts.Defaults}
	seen := make(map[string]int)
	declared, suiteSubject := false, false
	for i, row := range rows {
		pos := i + 1
		if row.Property == "" {
			r.Subject = row.Spec
			declared = row.Spec != nil
			continue
		}
		if row.Spec == nil {
			continue
		}

		label := row.Label()
		d, err := setget.Parse(row.Spec)
		if err != nil {
			r.Add(taxonomy.SpecError, pos, "%s: %v", label, err)
			continue
		}
		if prev, dup := seen[label]; dup {
			r.Add(taxonomy.DuplicateCase, pos, "case %q repeats row %d", label, prev)
		} else {
			seen[label] = pos
		}
		checkKeys(r, pos, label, row.Spec)
		checkReferences(r, pos, label, d.References())
		if !declared && d.Target == nil && d.TargetCallback == nil {
			suiteSubject = true
		}

		r.Cases = append(r.Cases, taxonomy.CasePlan{
			ID:       taxonomy.GenerateID(path, pos, "case", label),
			Row:      pos,
			Name:     row.Name,
			Property: row.Property,
			Plan:     n.Plan(d, row.Property),
		})
	}

	if len(r.Cases) == 0 && r.Count(taxonomy.LevelError) == 0 {
		r.Add(taxonomy.EmptyTable, 0, "the case table declares no cases")
	}
	if suiteSubject {
		r.Add(taxonomy.SuiteSubject, 0, "some cases have no declared subject; the suite must provide one")
	}
	return r
}

func checkKeys(r *taxonomy.FileReport, pos int, label string, spec any) {
	m, ok := instance.AsMap(spec)
	if !ok {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !setget.IsKey(k) {
			r.Add(taxonomy.UnknownKey, pos, "%s: unknown key %q is ignored", label, k)
		}
	}
}

func checkReferences(r *taxonomy.FileReport, pos int, label string, refs setget.References) {
	for _, name := range refs.Methods {
		r.Add(taxonomy.SuiteMethod, pos, "%s: needs suite method %q", label, name)
	}
	for _, name := range refs.Types {
		r.Add(taxonomy.RegisteredType, pos, "%s: needs registered type %q", label, name)
	}
	for _, name := range refs.Comparators {
		r.Add(taxonomy.CustomComparator, pos, "%s: comparator %q is not built in; the suite must define it", label, name)
	}
}
