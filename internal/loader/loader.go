// Package loader wraps go/packages to load a Go package with type
// information and discover the types a case file can name.
package loader

import (
	"fmt"
	"strings"

	"golang.org/x/tools/go/packages"
)

// LoadMode is the minimum set of flags needed to read the exported
// API of a package.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedImports |
	packages.NeedTypes |
	packages.NeedTypesSizes

// Result holds the loaded package and the types found in it.
type Result struct {
	// Pkg is the loaded package.
	Pkg *packages.Package

	// Types lists the buildable and describable exported types,
	// sorted by name.
	Types []Type
}

// Load loads a Go package at the given import path or directory
// pattern. It returns an error if loading or type-checking fails or
// the pattern matches more than one package.
func Load(pattern string) (*Result, error) {
	return LoadDir("", pattern)
}

// LoadDir is like Load but resolves pattern relative to dir.
func LoadDir(dir, pattern string) (*Result, error) {
	cfg := &packages.Config{
		Mode:  LoadMode,
		Dir:   dir,
		Tests: false,
	}

	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("loading package %q: %w", pattern, err)
	}

	switch len(pkgs) {
	case 0:
		return nil, fmt.Errorf("no packages found for pattern %q", pattern)
	case 1:
	default:
		return nil, fmt.Errorf("pattern %q matches %d packages, want one", pattern, len(pkgs))
	}

	pkg := pkgs[0]

	var errs []string
	for _, e := range pkg.Errors {
		errs = append(errs, e.Error())
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package %q has errors:\n  %s",
			pattern, strings.Join(errs, "\n  "))
	}
	if pkg.Name == "main" {
		return nil, fmt.Errorf("package %q is a command and cannot be imported", pattern)
	}

	return &Result{
		Pkg:   pkg,
		Types: Discover(pkg.Types),
	}, nil
}
