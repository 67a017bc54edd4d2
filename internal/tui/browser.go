// Package tui is an interactive terminal browser over analysis results.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/linstab/internal/pipeline"
	"github.com/san-kum/linstab/internal/report"
	"github.com/san-kum/linstab/internal/stability"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

type state int

const (
	stateList state = iota
	stateDetail
)

// Loader runs the analysis for a named preset.
type Loader func(name string) (*pipeline.Bundle, error)

type browser struct {
	state  state
	cursor int
	title  string
	bundle *pipeline.Bundle

	presets []string
	preset  int
	load    Loader
	err     error

	width  int
	height int
}

// NewBrowser shows b under the given title.
func NewBrowser(title string, b *pipeline.Bundle) *browser {
	return &browser{
		state:  stateList,
		title:  title,
		bundle: b,
		width:  80,
		height: 24,
	}
}

// WithPresets lets the user cycle through named presets with tab.
func (m *browser) WithPresets(names []string, current string, load Loader) *browser {
	m.presets = names
	m.load = load
	for i, n := range names {
		if n == current {
			m.preset = i
		}
	}
	return m
}

func (m browser) Init() tea.Cmd { return nil }

type loadedMsg struct {
	name   string
	bundle *pipeline.Bundle
	err    error
}

func (m browser) loadPreset(name string) tea.Cmd {
	load := m.load
	return func() tea.Msg {
		b, err := load(name)
		return loadedMsg{name: name, bundle: b, err: err}
	}
}

func (m browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.title = msg.name
			m.bundle = msg.bundle
			m.cursor = 0
			m.state = stateList
		}
		return m, nil
	}
	return m, nil
}

func (m browser) handleKey(msg tea.KeyMsg) (browser, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		if len(m.presets) > 0 && m.load != nil {
			m.preset = (m.preset + 1) % len(m.presets)
			return m, m.loadPreset(m.presets[m.preset])
		}
		return m, nil
	}
	switch m.state {
	case stateList:
		return m.listKey(msg)
	case stateDetail:
		return m.detailKey(msg)
	}
	return m, nil
}

func (m browser) listKey(msg tea.KeyMsg) (browser, tea.Cmd) {
	n := len(m.entries())
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < n-1 {
			m.cursor++
		}
	case "enter", " ":
		if n > 0 {
			m.state = stateDetail
		}
	case "g":
		if m.bundle != nil && m.bundle.Gain.Index >= 0 {
			m.cursor = m.bundle.Gain.Index
			m.state = stateDetail
		}
	}
	return m, nil
}

func (m browser) detailKey(msg tea.KeyMsg) (browser, tea.Cmd) {
	n := len(m.entries())
	switch msg.String() {
	case "esc", "backspace":
		m.state = stateList
	case "left", "h":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor < n-1 {
			m.cursor++
		}
	}
	return m, nil
}

func (m browser) entries() []pipeline.Entry {
	if m.bundle == nil {
		return nil
	}
	return m.bundle.Entries
}

func (m browser) View() string {
	switch m.state {
	case stateList:
		return m.viewList()
	case stateDetail:
		return m.viewDetail()
	}
	return ""
}

func (m browser) header(b *strings.Builder) {
	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + cyan.Render("l i n s t a b") + "  " + dim.Render(m.title) + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")
}

func (m browser) viewList() string {
	var b strings.Builder
	m.header(&b)

	switch {
	case m.bundle == nil:
		b.WriteString("      " + dim.Render("nothing to show") + "\n")
	case m.bundle.Outcome == pipeline.NoEquilibrium:
		b.WriteString("      " + yellow.Render(report.MsgNoEquilibrium) + "\n")
	case m.bundle.Outcome == pipeline.Failed:
		b.WriteString("      " + red.Render("analysis failed: "+m.bundle.Err.Error()) + "\n")
	}

	for i, e := range m.entries() {
		point := fmt.Sprintf("%-28s", e.Point.String())
		mark := ""
		if m.bundle.Gain.Index == i {
			mark = magenta.Render(" ◆ K")
		}
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(point) + labelView(e) + mark + "\n")
		} else {
			b.WriteString("        " + dim.Render(point) + labelView(e) + mark + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n      " + red.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n")
	hint := "      ↑↓ select   enter details   g gain   q quit"
	if len(m.presets) > 0 {
		hint += "   tab next preset"
	}
	b.WriteString(dim.Render(hint) + "\n")
	return b.String()
}

func (m browser) viewDetail() string {
	var b strings.Builder
	m.header(&b)

	entries := m.entries()
	if m.cursor >= len(entries) {
		return b.String()
	}
	e := entries[m.cursor]

	b.WriteString("      " + cyan.Render(fmt.Sprintf("Point %d", e.Index+1)) + "  " + white.Render(e.Point.String()) + "\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 30)) + "\n\n")

	b.WriteString("      " + dim.Render("A") + "\n")
	b.WriteString(indent(report.Matrix([][]string{
		{e.Jacobian.A[0][0].String(), e.Jacobian.A[0][1].String()},
		{e.Jacobian.A[1][0].String(), e.Jacobian.A[1][1].String()},
	})))
	b.WriteString("      " + dim.Render("B") + "\n")
	b.WriteString(indent(report.Matrix([][]string{{e.Jacobian.B[0].String()}, {e.Jacobian.B[1].String()}})))
	b.WriteString("\n")
	b.WriteString("      " + dim.Render("eigenvalues  ") + white.Render(report.Eigenvalues(e.Spectrum)) + "\n")
	b.WriteString("      " + dim.Render("stability    ") + labelView(e) + "\n")

	if m.bundle.Gain.Index == m.cursor {
		b.WriteString("\n")
		if m.bundle.Gain.K != nil {
			b.WriteString("      " + dim.Render("gain K       ") + magenta.Render(report.Gain(m.bundle.Gain.K)) + "\n")
		} else if m.bundle.Gain.Err != nil {
			b.WriteString("      " + dim.Render("gain K       ") + red.Render(m.bundle.Gain.Err.Error()) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ←→ point   esc back   q quit") + "\n")
	return b.String()
}

func labelView(e pipeline.Entry) string {
	switch {
	case e.Err != nil:
		return yellow.Render("indeterminate")
	case e.Label == stability.Stable:
		return green.Render(e.Label.String())
	}
	return red.Render(e.Label.String())
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n") + "\n"
}

// Run starts the browser in the alternate screen.
func Run(m *browser) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
