// Package scaffold generates the Go source registering a package's
// types in an instance.Registry, so case files can name them.
package scaffold

import (
	"bytes"
	_ "embed"
	"fmt"
	"go/format"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/unbound-force/harness/internal/loader"
)

//go:embed assets/registry.go.tmpl
var registrySource string

var registryTmpl = template.Must(template.New("registry").Parse(registrySource))

// generatedPrefix starts the first line of every generated file.
const generatedPrefix = "// Code generated by harness registry"

// Options configures the registry generation.
type Options struct {
	// PkgPath and PkgName identify the package whose types are
	// registered.
	PkgPath string
	PkgName string

	// Types are the discovered types to register.
	Types []loader.Type

	// Name is the package clause of the generated file. When it
	// equals PkgName the file is meant to live inside the package and
	// references its types unqualified. Defaults to PkgName.
	Name string

	// Out is the file to write. When empty the source is written to
	// Stdout.
	Out string

	// Force overwrites an existing Out that was not generated by
	// harness. Files carrying the generated marker are always
	// regenerated.
	Force bool

	// Version is the harness version embedded in the generated
	// marker. Defaults to "dev".
	Version string

	// Stdout is the writer for the source or the summary.
	// Defaults to os.Stdout.
	Stdout io.Writer
}

// Action is what Run did with the output file.
type Action string

const (
	Printed     Action = "printed"
	Created     Action = "created"
	Skipped     Action = "skipped"
	Overwritten Action = "overwritten"
)

// Result reports what the generation did.
type Result struct {
	Path   string
	Action Action

	// Registered counts the types in the generated Register func.
	Registered int
}

type templateData struct {
	Version string
	Name    string
	Path    string
	Alias   string
	Qual    string
	Types   []loader.Type
}

// Generate renders the gofmt-ed registry source for opts.
func Generate(opts Options) ([]byte, error) {
	if opts.PkgPath == "" || opts.PkgName == "" {
		return nil, fmt.Errorf("package path and name are required")
	}
	if len(opts.Types) == 0 {
		return nil, fmt.Errorf("package %s has no exported struct or interface types", opts.PkgPath)
	}

	data := templateData{
		Version: opts.Version,
		Name:    opts.Name,
		Path:    opts.PkgPath,
		Types:   opts.Types,
	}
	if data.Version == "" {
		data.Version = "dev"
	}
	if data.Name == "" {
		data.Name = opts.PkgName
	}
	if data.Name != opts.PkgName {
		data.Alias = opts.PkgName
		if data.Alias == "instance" {
			data.Alias = "subject"
		}
		data.Qual = data.Alias + "."
	}

	var buf bytes.Buffer
	if err := registryTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering registry: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting registry: %w", err)
	}
	return src, nil
}

// Run generates the registry source and writes it to opts.Out, or to
// opts.Stdout when no output file is given.
//
// An existing output file is replaced when it starts with the
// generated marker:
//
//	// Code generated by harness registry vX.Y.Z; DO NOT EDIT.
//
// Any other existing file is skipped unless opts.Force is set.
func Run(opts Options) (*Result, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	src, err := Generate(opts)
	if err != nil {
		return nil, err
	}
	result := &Result{Path: opts.Out, Registered: len(opts.Types)}

	if opts.Out == "" {
		result.Action = Printed
		if _, err := opts.Stdout.Write(src); err != nil {
			return nil, fmt.Errorf("writing registry: %w", err)
		}
		return result, nil
	}

	existing, readErr := os.ReadFile(opts.Out)
	exists := readErr == nil
	if exists && !opts.Force && !IsGenerated(existing) {
		result.Action = Skipped
		printSummary(opts.Stdout, result)
		return result, nil
	}

	if dir := filepath.Dir(opts.Out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(opts.Out, src, 0o644); err != nil {
		return nil, fmt.Errorf("creating %s: %w", opts.Out, err)
	}

	result.Action = Created
	if exists {
		result.Action = Overwritten
	}
	printSummary(opts.Stdout, result)
	return result, nil
}

// IsGenerated reports whether src was written by harness registry.
func IsGenerated(src []byte) bool {
	first, _, _ := strings.Cut(string(src), "\n")
	return strings.HasPrefix(first, generatedPrefix) && strings.HasSuffix(first, "DO NOT EDIT.")
}

func printSummary(w io.Writer, r *Result) {
	switch r.Action {
	case Skipped:
		fmt.Fprintf(w, "  skipped: %s (not generated by harness)\n", r.Path)
		fmt.Fprintln(w, "Use --force to overwrite.")
	default:
		fmt.Fprintf(w, "  %s: %s\n", r.Action, r.Path)
		fmt.Fprintf(w, "%d type(s) registered.\n", r.Registered)
	}
}
