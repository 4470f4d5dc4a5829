// Package tui is the terminal front end for the calculator engine.
package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"go-chi-calculator/internal/engine"
	"go-chi-calculator/internal/keypad"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/tape"
	"go-chi-calculator/internal/theme"
)

const (
	tapeRows    = 5
	tapeTimeout = 2 * time.Second
)

// TapeStore is the subset of the tape the UI needs.
type TapeStore interface {
	Append(ctx context.Context, e tape.Entry) (tape.Entry, error)
	Recent(ctx context.Context, limit int) ([]tape.Entry, error)
}

// Options configure a Model. A nil Tape hides the tape; a nil SaveTheme
// keeps theme changes for this run only.
type Options struct {
	Theme     theme.Name
	Tape      TapeStore
	SaveTheme func(theme.Name) error
	SessionID string
}

type tapeLoadedMsg struct {
	entries []tape.Entry
	err     error
}

type tapeAppendedMsg struct {
	entry tape.Entry
	err   error
}

type themeSavedMsg struct {
	err error
}

// recorder collects calculations resolved by the engine between key presses.
type recorder struct {
	calcs []engine.Calculation
}

func (r *recorder) take() []engine.Calculation {
	out := r.calcs
	r.calcs = nil
	return out
}

// Model is the bubbletea model.
type Model struct {
	calc      *engine.Calculator
	rec       *recorder
	theme     theme.Name
	styles    theme.Styles
	tape      TapeStore
	saveTheme func(theme.Name) error
	sessionID string

	entries   []tape.Entry
	status    string
	statusErr bool
}

// New builds a model with a fresh engine.
func New(opts Options) Model {
	rec := &recorder{}
	name := opts.Theme
	if name != theme.Dark {
		name = theme.Light
	}
	return Model{
		calc: engine.New(engine.WithObserver(func(c engine.Calculation) {
			rec.calcs = append(rec.calcs, c)
		})),
		rec:       rec,
		theme:     name,
		styles:    theme.NewStyles(name),
		tape:      opts.Tape,
		saveTheme: opts.SaveTheme,
		sessionID: opts.SessionID,
	}
}

// Display is the text currently on the calculator screen.
func (m Model) Display() string { return m.calc.Display() }

// Theme is the active palette.
func (m Model) Theme() theme.Name { return m.theme }

func (m Model) Init() tea.Cmd {
	if m.tape == nil {
		return nil
	}
	store := m.tape
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), tapeTimeout)
		defer cancel()
		entries, err := store.Recent(ctx, tapeRows)
		return tapeLoadedMsg{entries: entries, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	case tapeLoadedMsg:
		if msg.err != nil {
			return m.fail("tape unavailable", msg.err), nil
		}
		m.entries = msg.entries
		return m, nil
	case tapeAppendedMsg:
		if msg.err != nil {
			return m.fail("tape write failed", msg.err), nil
		}
		m.entries = append([]tape.Entry{msg.entry}, m.entries...)
		if len(m.entries) > tapeRows {
			m.entries = m.entries[:tapeRows]
		}
		return m, nil
	case themeSavedMsg:
		if msg.err != nil {
			return m.fail("saving theme failed", msg.err), nil
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(k string) (tea.Model, tea.Cmd) {
	switch k {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "t":
		return m.toggleTheme()
	}

	action, err := keypad.Resolve(k)
	if err != nil {
		m.status, m.statusErr = err.Error(), true
		return m, nil
	}
	if err := action.Apply(m.calc); err != nil {
		return m.fail("key rejected", err), nil
	}
	m.status, m.statusErr = "", false

	var cmds []tea.Cmd
	for _, c := range m.rec.take() {
		cmds = append(cmds, m.appendCmd(c))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) toggleTheme() (tea.Model, tea.Cmd) {
	m.theme = m.theme.Toggle()
	m.styles = theme.NewStyles(m.theme)
	m.status, m.statusErr = string(m.theme)+" theme", false
	if m.saveTheme == nil {
		return m, nil
	}
	save, name := m.saveTheme, m.theme
	return m, func() tea.Msg {
		return themeSavedMsg{err: save(name)}
	}
}

func (m Model) appendCmd(c engine.Calculation) tea.Cmd {
	entry := tape.FromCalculation(m.sessionID, c)
	if m.tape == nil {
		return nil
	}
	store := m.tape
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), tapeTimeout)
		defer cancel()
		saved, err := store.Append(ctx, entry)
		return tapeAppendedMsg{entry: saved, err: err}
	}
}

func (m Model) fail(msg string, err error) Model {
	observability.Logger.Error(msg, zap.Error(err))
	m.status, m.statusErr = msg+": "+err.Error(), true
	return m
}

func (m Model) View() string {
	s := m.styles

	display := s.Display.Render(m.calc.Display())
	if m.calc.Phase() == engine.PhaseErrorShown {
		display = s.DisplayError.Render(m.calc.Display())
	}

	sections := []string{display, "", m.keypadView()}

	if m.tape != nil {
		sections = append(sections, "", m.tapeView())
	}

	status := s.Status.Render("t theme · q quit")
	if m.status != "" {
		status = s.Status.Render(m.status)
		if m.statusErr {
			status = s.StatusError.Render(m.status)
		}
	}
	sections = append(sections, "", status)

	return s.Frame.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// button is one cell of the on-screen keypad.
type button struct {
	label string
	op    engine.Operator
}

func (m Model) rows() [][]button {
	st := m.calc.State()
	return [][]button{
		{{label: keypad.ClearLabel(st)}, {label: "±"}, {label: "%"}, {label: engine.OpDivide.Symbol(), op: engine.OpDivide}},
		{{label: "7"}, {label: "8"}, {label: "9"}, {label: engine.OpMultiply.Symbol(), op: engine.OpMultiply}},
		{{label: "4"}, {label: "5"}, {label: "6"}, {label: engine.OpSubtract.Symbol(), op: engine.OpSubtract}},
		{{label: "1"}, {label: "2"}, {label: "3"}, {label: engine.OpAdd.Symbol(), op: engine.OpAdd}},
		{{label: "0"}, {label: "."}, {label: "⌫"}, {label: "="}},
	}
}

func (m Model) keypadView() string {
	s := m.styles
	active := keypad.ActiveOperator(m.calc.State())

	lines := make([]string, 0, 5)
	for _, row := range m.rows() {
		cells := make([]string, 0, len(row))
		for _, b := range row {
			style := s.Key
			switch {
			case b.op != engine.OpNone && b.op == active:
				style = s.ActiveOperator
			case b.op != engine.OpNone || b.label == "=":
				style = s.OperatorKey
			}
			cells = append(cells, style.Render(b.label))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(lines, "\n")
}

func (m Model) tapeView() string {
	if len(m.entries) == 0 {
		return m.styles.Tape.Render("no calculations yet")
	}
	lines := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		lines = append(lines, e.String())
	}
	return m.styles.Tape.Render(strings.Join(lines, "\n"))
}
