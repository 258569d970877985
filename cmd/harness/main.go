package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/unbound-force/harness/internal/casefile"
	"github.com/unbound-force/harness/internal/config"
	"github.com/unbound-force/harness/internal/loader"
	"github.com/unbound-force/harness/internal/report"
	"github.com/unbound-force/harness/internal/scaffold"
	"github.com/unbound-force/harness/internal/taxonomy"
)

// logger is the application-wide structured logger (writes to stderr).
var logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: false,
})

// Set by build flags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "harness",
		Short: "Harness: declarative setter/getter test tables for Go",
		Long: `Harness checks the declarative case files driven by the
setter/getter test helpers, prints their JSON Schema, and generates
the registry code that lets case files name Go types.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(charmlog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")

	root.AddCommand(newLintCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newRegistryCmd())
	return root
}

// lintParams holds the parsed flags for the lint command.
type lintParams struct {
	paths       []string
	format      string
	configPath  string
	strict      bool
	interactive bool
	stdout      io.Writer
	stderr      io.Writer
}

// runLint is the extracted, testable body of the lint command.
func runLint(p lintParams) error {
	start := time.Now()

	cfg, err := config.Load(p.configPath)
	if err != nil {
		return err
	}
	format := config.Format(p.format)
	if format == "" {
		format = cfg.Lint.Format
	}
	if format != config.FormatText && format != config.FormatJSON {
		return fmt.Errorf("invalid format %q: must be 'text' or 'json'", format)
	}
	strict := p.strict || cfg.Lint.Strict

	files, err := expandPaths(p.paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no case files found in %s", strings.Join(p.paths, ", "))
	}

	logger.Info("linting case files", "files", len(files))
	opts := casefile.Options{Defaults: cfg.SetterAndGetter()}
	reports := make([]taxonomy.FileReport, 0, len(files))
	for _, path := range files {
		r, err := casefile.Lint(path, opts)
		if err != nil {
			return err
		}
		logger.Debug("linted", "file", path, "cases", len(r.Cases), "findings", len(r.Findings))
		reports = append(reports, *r)
	}

	sum := report.Summarize(reports, strict)
	logger.Info("lint complete", "cases", sum.Cases, "errors", sum.Errors, "warnings", sum.Warnings)

	if p.interactive {
		if err := runInteractiveLint(reports, strict); err != nil {
			return err
		}
	} else if err := writeLintReport(p.stdout, format, reports, strict, start); err != nil {
		return err
	}

	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d case file(s) failed lint", sum.Failed, sum.Files)
	}
	return nil
}

// writeLintReport outputs the lint reports in the requested format.
func writeLintReport(w io.Writer, format config.Format, reports []taxonomy.FileReport, strict bool, start time.Time) error {
	switch format {
	case config.FormatJSON:
		return report.WriteJSON(w, reports, taxonomy.Metadata{
			HarnessVersion: version,
			GoVersion:      runtime.Version(),
			Timestamp:      start,
			Duration:       time.Since(start),
		})
	default:
		return report.WriteText(w, reports, report.TextOptions{Strict: strict})
	}
}

// expandPaths replaces directories by the case files beneath them.
// Explicit files are kept whatever their extension.
func expandPaths(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("reading case file: %w", err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(p)) {
			case ".yaml", ".yml", ".json":
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", path, err)
		}
	}
	return files, nil
}

func newLintCmd() *cobra.Command {
	var (
		format      string
		configPath  string
		strict      bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "lint [files or directories...]",
		Short: "Check setter/getter case files",
		Long: `Validate YAML or JSON case files against the case-file schema,
normalize every row the way the test helpers do, and report the
resulting plans together with errors, warnings and notes.

Directories are searched for .yaml, .yml and .json files. The
command fails when any file has errors, or warnings with --strict.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(lintParams{
				paths:       args,
				format:      format,
				configPath:  configPath,
				strict:      strict,
				interactive: interactive,
				stdout:      cmd.OutOrStdout(),
				stderr:      cmd.ErrOrStderr(),
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "",
		"output format: text or json (default from config, else text)")
	cmd.Flags().StringVar(&configPath, "config", "",
		"path to the configuration file (default "+config.FileName+")")
	cmd.Flags().BoolVar(&strict, "strict", false,
		"fail on warnings")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false,
		"launch interactive TUI for browsing results")

	return cmd
}

func newSchemaCmd() *cobra.Command {
	var lintReport bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for case files",
		Long: `Print the JSON Schema (Draft 2020-12) that case files are
validated against. With --report, print the schema of
harness lint --format=json output instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schema := casefile.Schema
			if lintReport {
				schema = report.Schema
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(schema))
			return err
		},
	}

	cmd.Flags().BoolVar(&lintReport, "report", false,
		"print the lint report schema")

	return cmd
}

// registryParams holds the parsed flags for the registry command.
type registryParams struct {
	pkgPath string
	out     string
	name    string
	force   bool
	stdout  io.Writer
}

// runRegistry is the extracted, testable body of the registry command.
func runRegistry(p registryParams) error {
	logger.Info("loading package", "pkg", p.pkgPath)
	res, err := loader.Load(p.pkgPath)
	if err != nil {
		return err
	}
	logger.Debug("discovered types", "count", len(res.Types))

	result, err := scaffold.Run(scaffold.Options{
		PkgPath: res.Pkg.PkgPath,
		PkgName: res.Pkg.Name,
		Types:   res.Types,
		Name:    p.name,
		Out:     p.out,
		Force:   p.force,
		Version: version,
		Stdout:  p.stdout,
	})
	if err != nil {
		return err
	}
	if result.Action == scaffold.Skipped {
		logger.Warn("output exists and was not generated by harness", "file", result.Path)
	}
	return nil
}

func newRegistryCmd() *cobra.Command {
	var (
		out   string
		name  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "registry [package]",
		Short: "Generate the registry code for a package's types",
		Long: `Load a Go package and write a Register func adding its exported
struct and interface types to an instance.Registry. Types with a
New<Type> constructor returning the type (and optionally an error)
are registered through it; the others by type.

Without --out the source is printed to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistry(registryParams{
				pkgPath: args[0],
				out:     out,
				name:    name,
				force:   force,
				stdout:  cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "",
		"file to write (default: stdout)")
	cmd.Flags().StringVar(&name, "name", "",
		"package clause of the generated file (default: the loaded package)")
	cmd.Flags().BoolVar(&force, "force", false,
		"overwrite an existing file not generated by harness")

	return cmd
}
