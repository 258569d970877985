package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse_Full(t *testing.T) {
	cfg, err := Parse([]byte(`
defaults:
  getter: "read*"
  setter: "write*"
  assert: equals
  property_assert: EqualValues
lint:
  format: json
  strict: true
`))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if cfg.Lint.Format != FormatJSON || !cfg.Lint.Strict {
		t.Errorf("unexpected lint section: %+v", cfg.Lint)
	}
	d := cfg.SetterAndGetter()
	if d.Getter != "read*" || d.Setter != "write*" || d.Assert != "equals" || d.PropertyAssert != "EqualValues" {
		t.Errorf("unexpected defaults: %+v", d)
	}
	if d.SetterAssert != "" {
		t.Errorf("expected setter_assert to keep the built-in default, got %q", d.SetterAssert)
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if cfg.Lint.Format != FormatText {
		t.Errorf("expected text format by default, got %q", cfg.Lint.Format)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknownKey", "lint:\n  colour: red\n", "colour"},
		{"badFormat", "lint:\n  format: html\n", "invalid lint.format"},
		{"badComparator", "defaults:\n  assert: Roughly\n", "not a built-in comparator"},
		{"badYAML", "defaults: [", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("lint:\n  strict: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !cfg.Lint.Strict {
		t.Error("expected strict lint")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for an explicit missing file")
	}
}

func TestLoad_DefaultFileIsOptional(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Lint.Format != FormatText || cfg.Lint.Strict {
		t.Errorf("expected defaults, got %+v", cfg.Lint)
	}
}
