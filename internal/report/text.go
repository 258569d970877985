package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/unbound-force/harness/internal/taxonomy"
	"github.com/unbound-force/harness/setget"
)

// TextOptions tunes WriteText.
type TextOptions struct {
	// Strict marks files with warnings as failing.
	Strict bool
}

// WriteText writes lint reports as human-readable styled text to the
// writer. Output uses lipgloss for color and formatting when the
// output is a TTY; degrades gracefully for pipes and CI.
func WriteText(w io.Writer, files []taxonomy.FileReport, opts TextOptions) error {
	s := DefaultStyles()

	for i, f := range files {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeOneFile(w, f, opts, s)
	}

	sum := Summarize(files, opts.Strict)
	fmt.Fprintf(w, "\n%s\n", s.Header.Render(sum.String()))
	return nil
}

func writeOneFile(w io.Writer, f taxonomy.FileReport, opts TextOptions, s Styles) {
	status := s.Pass.Render("PASS")
	if f.Failed(opts.Strict) {
		status = s.Fail.Render("FAIL")
	}
	fmt.Fprintf(w, "%s %s\n", s.Header.Render(fmt.Sprintf("=== %s ===", f.Path)), status)
	if f.Subject != nil {
		fmt.Fprintln(w, s.SubHeader.Render(fmt.Sprintf("    subject: %v", f.Subject)))
	}

	if len(f.Cases) == 0 {
		fmt.Fprintln(w, s.Muted.Render("    No cases."))
	} else {
		fmt.Fprintln(w, CaseTable(f.Cases, s, 76))
	}

	for _, fd := range f.Findings {
		where := "file"
		if fd.Row > 0 {
			where = fmt.Sprintf("row %d", fd.Row)
		}
		fmt.Fprintf(w, "    %s %s: %s\n",
			s.LevelStyle(fd.Level).Render(string(fd.Level)), where, fd.Message)
	}
}

// CaseTable renders cases as a table of the given width. Cells are
// truncated so that five columns fit in 76.
func CaseTable(cases []taxonomy.CasePlan, s Styles, width int) *table.Table {
	rows := make([][]string, 0, len(cases))
	for _, c := range cases {
		rows = append(rows, []string{
			fmt.Sprint(c.Row),
			truncate(c.Label(), 14),
			truncate(SetterCall(c), 16),
			truncate(Check(c), 16),
			truncate(Expectation(c), 14),
		})
	}

	return table.New().
		Width(width).
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader
			}
			if col == 4 && row >= 0 && row < len(rows) && strings.HasPrefix(rows[row][4], "error ") {
				return s.Warning
			}
			return s.TableCell
		}).
		Headers("ROW", "CASE", "SETTER", "CHECK", "EXPECT").
		Rows(rows...)
}

// SetterCall describes the setter invocation of a case.
func SetterCall(c taxonomy.CasePlan) string {
	name, ok := method(c.Plan["setter"], c.Property)
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%s(%s)", name, brief(c.Plan["value"]))
}

// Check describes what a case verifies after the setter ran: a field
// or the getter, with the comparator.
func Check(c taxonomy.CasePlan) string {
	if p, ok := c.Plan["property"].([]any); ok && len(p) > 0 {
		return fmt.Sprintf("field %v %s", p[0], c.Plan["property_assert"])
	}
	name, ok := method(c.Plan["getter"], c.Property)
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%s() %s", name, c.Plan["assert"])
}

// Expectation describes the outcome a case expects.
func Expectation(c taxonomy.CasePlan) string {
	if e, ok := c.Plan["exception"].([]any); ok && len(e) > 0 {
		if len(e) > 1 {
			if msg, _ := e[1].(string); msg != "" {
				return fmt.Sprintf("error %v %q", e[0], msg)
			}
		}
		return fmt.Sprintf("error %v", e[0])
	}
	want := c.Plan["expect"]
	if p, ok := c.Plan["property"].([]any); ok && len(p) > 1 {
		want = p[1]
	}
	if want == setget.Unset || want == setget.UseInputValue {
		want = c.Plan["value"]
	}
	return brief(want)
}

func method(wire any, property string) (string, bool) {
	call, ok := wire.([]any)
	if !ok || len(call) == 0 {
		return "", false
	}
	template, ok := call[0].(string)
	if !ok {
		return "", false
	}
	return strings.ReplaceAll(template, setget.Wildcard, property), true
}

func brief(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return fmt.Sprintf("%q", x)
	case map[string]any:
		for _, k := range []string{"object", "callback"} {
			if ref, ok := x[k]; ok {
				return fmt.Sprintf("%s %v", k, ref)
			}
		}
	}
	return fmt.Sprint(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// Summary counts a set of lint reports.
type Summary struct {
	Files    int
	Failed   int
	Cases    int
	Errors   int
	Warnings int
}

// Summarize counts files, cases and findings.
func Summarize(files []taxonomy.FileReport, strict bool) Summary {
	sum := Summary{Files: len(files)}
	for _, f := range files {
		sum.Cases += len(f.Cases)
		sum.Errors += f.Count(taxonomy.LevelError)
		sum.Warnings += f.Count(taxonomy.LevelWarning)
		if f.Failed(strict) {
			sum.Failed++
		}
	}
	return sum
}

func (s Summary) String() string {
	return fmt.Sprintf("%d file(s) checked, %d case(s), %d error(s), %d warning(s)",
		s.Files, s.Cases, s.Errors, s.Warnings)
}
