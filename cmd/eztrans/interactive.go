package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/multierr"

	"github.com/wippyai/eztrans/internal/config"
	"github.com/wippyai/eztrans/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	sourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// historyLimit bounds the translations kept on screen.
const historyLimit = 10

type interactiveModel struct {
	err      error
	tr       translator
	close    func(context.Context) error
	load     func() (translator, func(context.Context) error, error)
	library  string
	input    textinput.Model
	history  []entry
	busy     bool
	loaded   bool
	quitting bool
}

type entry struct {
	err    error
	source string
	result string
}

func newInteractiveModel(library string, load func() (translator, func(context.Context) error, error)) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "日本語のテキスト"
	ti.Prompt = "ja> "
	ti.Width = 60
	ti.Focus()

	return &interactiveModel{
		library: library,
		load:    load,
		input:   ti,
	}
}

type loadedMsg struct {
	err   error
	tr    translator
	close func(context.Context) error
}

type translatedMsg struct {
	err    error
	source string
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(m.loadEngine, textinput.Blink)
}

func (m *interactiveModel) loadEngine() tea.Msg {
	tr, closeFn, err := m.load()
	return loadedMsg{err: err, tr: tr, close: closeFn}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if m.busy || m.loading() {
				// Close once the running call returns.
				m.quitting = true
				return m, nil
			}
			return m, m.quit()

		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.tr == nil || m.busy {
				return m, nil
			}
			m.busy = true
			m.input.Reset()
			return m, m.translate(text)
		}

	case loadedMsg:
		m.loaded = true
		if msg.err != nil {
			m.err = msg.err
			if m.quitting {
				return m, tea.Quit
			}
			return m, nil
		}
		m.tr = msg.tr
		m.close = msg.close
		if m.quitting {
			return m, m.quit()
		}

	case translatedMsg:
		m.busy = false
		m.history = append(m.history, entry(msg))
		if len(m.history) > historyLimit {
			m.history = m.history[len(m.history)-historyLimit:]
		}
		if m.quitting {
			return m, m.quit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// translate runs one translation. The session is not safe for concurrent
// use, so Update starts a new one only after the previous result arrived.
func (m *interactiveModel) translate(text string) tea.Cmd {
	tr := m.tr
	return func() tea.Msg {
		out, err := tr.Translate(context.Background(), text)
		return translatedMsg{err: err, source: text, result: out}
	}
}

func (m *interactiveModel) loading() bool {
	return !m.loaded
}

func (m *interactiveModel) quit() tea.Cmd {
	if m.close != nil {
		if err := m.close(context.Background()); err != nil {
			m.err = err
		}
		m.close = nil
		m.tr = nil
	}
	return tea.Quit
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress esc to quit.", m.err))
	}

	if m.tr == nil {
		return "Loading engine..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("ezTrans J2K"))
	b.WriteString(" ")
	b.WriteString(m.library)
	b.WriteString("\n\n")

	for _, e := range m.history {
		b.WriteString(sourceStyle.Render(e.source))
		b.WriteString("\n")
		if e.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("  Error: %v", e.err)))
		} else {
			b.WriteString(resultStyle.Render("  " + e.result))
		}
		b.WriteString("\n\n")
	}

	b.WriteString(m.input.View())
	if m.busy {
		b.WriteString(helpStyle.Render("  translating..."))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter translate • esc quit"))

	return b.String()
}

func runInteractive(cfg config.Config, opts []runtime.Option) error {
	load := func() (translator, func(context.Context) error, error) {
		sess, err := openSession(context.Background(), cfg, opts)
		if err != nil {
			return nil, nil, err
		}
		return sess, sess.Close, nil
	}

	m := newInteractiveModel(cfg.Library, load)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()

	// Quitting through a signal skips the model's own teardown.
	if m.close != nil {
		err = multierr.Append(err, m.close(context.Background()))
	}
	return err
}
