package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateBrowse modelState = iota
	stateEdit
)

type interactiveModel struct {
	err      error
	ctx      context.Context
	opts     options
	s        *session
	status   string
	rows     []fieldRow
	input    textinput.Model
	selected int
	state    modelState
}

type openedMsg struct {
	err error
	s   *session
}

func newInteractiveModel(ctx context.Context, o options) *interactiveModel {
	return &interactiveModel{ctx: ctx, opts: o, state: stateBrowse}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.open
}

func (m *interactiveModel) open() tea.Msg {
	s, err := m.opts.open(m.ctx)
	return openedMsg{s: s, err: err}
}

func (m *interactiveModel) quit() (tea.Model, tea.Cmd) {
	if m.s != nil {
		m.s.close(m.ctx)
		m.s = nil
	}
	return m, tea.Quit
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case openedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.s = msg.s
		m.rows = m.s.rows()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		if m.state == stateEdit {
			return m.updateEdit(msg)
		}

		switch msg.String() {
		case "q":
			return m.quit()

		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.selected < len(m.rows)-1 {
				m.selected++
			}

		case "enter", "e":
			if m.s == nil || len(m.rows) == 0 {
				break
			}
			row := m.rows[m.selected]
			if row.str == nil {
				m.status = row.name + " is not a string field"
				break
			}
			ti := textinput.New()
			ti.Prompt = row.name + ": "
			ti.SetValue(row.str.String())
			ti.Width = 48
			ti.Focus()
			m.input = ti
			m.status = ""
			m.state = stateEdit
		}
	}
	return m, nil
}

func (m *interactiveModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateBrowse
		return m, nil

	case "enter":
		name := m.rows[m.selected].name
		if err := m.s.setString(name, m.input.Value()); err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error: %v", err))
		} else {
			m.status = resultStyle.Render(name + " updated")
		}
		m.rows = m.s.rows()
		m.state = stateBrowse
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.s == nil {
		return "Loading record..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Escadra"))
	fmt.Fprintf(&b, " %s  ammo %s at %#x (%d bytes)\n\n", m.opts.in, m.s.rec.Version(), m.s.addr, m.s.ct.Size())

	for i, row := range m.rows {
		line := fmt.Sprintf("%#05x  %-8s %3d  %-20s %s", row.offset, row.kind, row.size, row.name, row.value)
		if st := m.s.storage(row); st != "" {
			line += "  " + st
		}
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	stats := m.s.heap.Stats()
	fmt.Fprintf(&b, "\nheap blocks %d (%d bytes), live %d, frees %d\n",
		m.s.list.Count(), m.s.list.Bytes(), stats.Live, stats.Frees)

	if m.state == stateEdit {
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter apply • esc cancel"))
		return b.String()
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • enter edit string • q quit"))
	return b.String()
}

func runInteractive(ctx context.Context, o options) error {
	m := newInteractiveModel(ctx, o)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	if m.s != nil {
		m.s.close(ctx)
	}
	return err
}
