package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unbound-force/harness/internal/report"
	"github.com/unbound-force/harness/internal/taxonomy"
)

// keyMap defines keybindings for the interactive TUI.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	NextFile key.Binding
	PrevFile key.Binding
	Quit     key.Binding
	Help     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextFile, k.Quit, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.NextFile, k.PrevFile},
		{k.Quit, k.Help},
	}
}

var defaultKeyMap = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("^/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("v/j", "down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	NextFile: key.NewBinding(key.WithKeys("tab", "n"), key.WithHelp("tab/n", "next file")),
	PrevFile: key.NewBinding(key.WithKeys("shift+tab", "p"), key.WithHelp("S-tab/p", "prev file")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// Styles for the TUI.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// lintModel is the Bubble Tea model for browsing lint reports one
// file at a time.
type lintModel struct {
	files    []taxonomy.FileReport
	strict   bool
	current  int
	viewport viewport.Model
	help     help.Model
	keys     keyMap
	ready    bool
	width    int
}

func newLintModel(files []taxonomy.FileReport, strict bool) lintModel {
	return lintModel{
		files:  files,
		strict: strict,
		help:   help.New(),
		keys:   defaultKeyMap,
		width:  80,
	}
}

// renderLintContent renders the file at index i of files, with the
// cases table sized to width.
func renderLintContent(files []taxonomy.FileReport, i int, strict bool, width int) string {
	var sb strings.Builder
	s := report.DefaultStyles()

	sum := report.Summarize(files, strict)
	sb.WriteString(titleStyle.Render(
		fmt.Sprintf("Harness Lint: %d file(s), %d case(s), %d failing",
			sum.Files, sum.Cases, sum.Failed)))
	sb.WriteString("\n\n")

	if len(files) == 0 {
		sb.WriteString(statusStyle.Render("No case files."))
		sb.WriteString("\n")
		return sb.String()
	}

	f := files[i]
	status := s.Pass.Render("PASS")
	if f.Failed(strict) {
		status = s.Fail.Render("FAIL")
	}
	sb.WriteString(s.Header.Render(fmt.Sprintf("=== %s ===", f.Path)))
	sb.WriteString(" " + status + "\n")
	sb.WriteString(statusStyle.Render(fmt.Sprintf("    file %d of %d", i+1, len(files))))
	sb.WriteString("\n")
	if f.Subject != nil {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("    subject: %v", f.Subject)))
		sb.WriteString("\n")
	}

	if len(f.Cases) == 0 {
		sb.WriteString(statusStyle.Render("    No cases."))
		sb.WriteString("\n")
	} else {
		sb.WriteString(report.CaseTable(f.Cases, s, max(width-4, 40)).String())
		sb.WriteString("\n")
	}

	if len(f.Findings) > 0 {
		sb.WriteString("\n")
	}
	for _, fd := range f.Findings {
		where := "file"
		if fd.Row > 0 {
			where = fmt.Sprintf("row %d", fd.Row)
		}
		sb.WriteString(fmt.Sprintf("  %s %s %s: %s\n",
			s.LevelStyle(fd.Level).Render(string(fd.Level)), statusStyle.Render(string(fd.Kind)), where, fd.Message))
	}

	return sb.String()
}

func (m lintModel) content() string {
	return renderLintContent(m.files, m.current, m.strict, m.width)
}

func (m lintModel) Init() tea.Cmd {
	return nil
}

func (m lintModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		footerHeight := 2
		m.width = msg.Width

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - footerHeight
		}
		m.viewport.SetContent(m.content())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.NextFile):
			m = m.switchFile(1)
		case key.Matches(msg, m.keys.PrevFile):
			m = m.switchFile(-1)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m lintModel) switchFile(delta int) lintModel {
	n := len(m.files)
	if n == 0 {
		return m
	}
	m.current = (m.current + delta + n) % n
	if m.ready {
		m.viewport.SetContent(m.content())
		m.viewport.GotoTop()
	}
	return m
}

func (m lintModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	footer := statusStyle.Render(
		fmt.Sprintf(" %3.f%% ", m.viewport.ScrollPercent()*100)) +
		" " + m.help.View(m.keys)

	return m.viewport.View() + "\n" + footer
}

// runInteractiveLint launches the Bubble Tea TUI for browsing lint
// reports.
func runInteractiveLint(files []taxonomy.FileReport, strict bool) error {
	model := newLintModel(files, strict)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
