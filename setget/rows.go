package setget

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/unbound-force/harness/fault"
	"github.com/unbound-force/harness/instance"
)

// Row is one entry of a case table. A Row with an empty Property
// declares the subject for the rows that follow.
type Row struct {
	Name     string
	Property string
	Spec     any
}

// Label returns the subtest name of the row.
func (r Row) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Property
}

// LoadFile reads a case table from a YAML or JSON file. JSON is
// recognized by the .json extension.
func LoadFile(path string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading case file: %w", err)
	}
	raw, err := Decode(data, strings.EqualFold(filepath.Ext(path), ".json"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rows, err := ParseRows(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// Decode parses YAML (or JSON when asJSON is set) into plain maps and
// lists. JSON integers decode as int.
func Decode(data []byte, asJSON bool) (any, error) {
	var raw any
	if asJSON {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		return numbers(raw), nil
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return raw, nil
}

func numbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil && int64(int(i)) == i {
			return int(i)
		}
		f, _ := x.Float64()
		return f
	case []any:
		for i := range x {
			x[i] = numbers(x[i])
		}
	case map[string]any:
		for k := range x {
			x[k] = numbers(x[k])
		}
	}
	return v
}

// ParseRows converts a decoded case table into rows. Accepted shapes:
//
//	[[property, spec], ...]
//	[{property: p, spec: s, name: n}, ...]
//	{target: subject, cases: [...]}
func ParseRows(raw any) ([]Row, error) {
	var rows []Row
	entries := raw
	if m, ok := instance.AsMap(raw); ok {
		cases, ok := m["cases"]
		if !ok {
			return nil, fault.FromComponent("setget.ParseRows", "case table map needs a \"cases\" list")
		}
		if subject, ok := m["target"]; ok && subject != nil {
			rows = append(rows, Row{Spec: subject})
		}
		entries = cases
	}

	list, ok := instance.AsList(entries)
	if !ok {
		return nil, fault.FromComponent("setget.ParseRows", "case table must be a list, got %s", kindOf(entries))
	}
	for i, entry := range list {
		row, err := parseRow(entry)
		if err != nil {
			return nil, fault.FromComponent("setget.ParseRows", "row %d", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(entry any) (Row, error) {
	if pair, ok := instance.AsList(entry); ok {
		switch len(pair) {
		case 1:
			return Row{Spec: pair[0]}, nil
		case 2:
			name, ok := pair[0].(string)
			if !ok {
				return Row{}, fmt.Errorf("property name must be a string, got %s", kindOf(pair[0]))
			}
			return Row{Property: name, Spec: pair[1]}, nil
		}
		return Row{}, fmt.Errorf("expected [property, spec], got %d elements", len(pair))
	}
	m, ok := instance.AsMap(entry)
	if !ok {
		return Row{}, fmt.Errorf("expected a list or a map, got %s", kindOf(entry))
	}
	var row Row
	if v, ok := m["property"]; ok {
		if row.Property, ok = v.(string); !ok {
			return Row{}, fmt.Errorf("property name must be a string, got %s", kindOf(v))
		}
	}
	if v, ok := m["name"]; ok {
		if row.Name, ok = v.(string); !ok {
			return Row{}, fmt.Errorf("row name must be a string, got %s", kindOf(v))
		}
	}
	row.Spec = m["spec"]
	if row.Property != "" && row.Spec == nil {
		return Row{}, fmt.Errorf("row %q has no spec", row.Property)
	}
	return row, nil
}

// Run executes rows as subtests of t. A subject row applies to the
// rows after it; otherwise subject supplies a fresh subject per case.
// Rows declaring their own target override both.
func (n *Normalizer) Run(t *testing.T, rows []Row, subject func(t *testing.T) any) {
	t.Helper()
	var declared any
	for _, row := range rows {
		if row.Property == "" {
			declared = row.Spec
			continue
		}
		if row.Spec == nil {
			continue
		}
		table := declared
		t.Run(row.Label(), func(t *testing.T) {
			t.Helper()
			d, err := Parse(row.Spec)
			if err != nil {
				t.Fatal(err)
			}
			target, ok, err := n.Subject(d)
			if err != nil {
				t.Fatal(err)
			}
			switch {
			case ok:
			case table != nil:
				if target, _, err = n.Subject(&Directives{Target: table}); err != nil {
					t.Fatal(err)
				}
			case subject != nil:
				target = subject(t)
			default:
				t.Fatal("no subject for the case")
			}
			c, err := n.Resolve(d, row.Property, target)
			if err != nil {
				t.Fatal(err)
			}
			Execute(t, c, target)
		})
	}
}
