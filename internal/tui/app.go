package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jask/jaskcalc/internal/service"
	"github.com/jask/jaskcalc/internal/solver"
)

// Opener builds and loads the calculator of a variant; used when the user
// switches between drilling and milling.
type Opener func(ctx context.Context, v solver.Variant) (*service.CalculatorService, error)

// chrome is the number of lines around the field list: title, blank,
// separator, keypad, status and the short help line.
const chrome = 6

// App is the keypad front end of one calculator.
type App struct {
	ctx    context.Context
	calc   *service.CalculatorService
	open   Opener
	logger *zap.Logger
	keys   keyMap
	help   help.Model
	width  int
	height int
	scroll scrollWindow
	status string

	// Writes go out one at a time, in keystroke order.
	queue    []persistJob
	writing  bool
	quitting bool
}

func New(ctx context.Context, calc *service.CalculatorService, open Opener, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		ctx:    ctx,
		calc:   calc,
		open:   open,
		logger: logger,
		keys:   defaultKeys(),
		help:   help.New(),
		status: "↓ selects the first field",
	}
}

func (a *App) Init() tea.Cmd { return nil }

// Calculator returns the active calculator.
func (a *App) Calculator() *service.CalculatorService { return a.calc }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.help.Width = m.Width
		a.scroll.height = a.height - chrome
		a.reveal()
	case tea.KeyMsg:
		return a.handleKey(m)
	case variantMsg:
		a.calc = m.calc
		a.scroll.top = 0
		a.status = "switched to " + string(m.calc.FieldSet().Variant)
	case persistedMsg:
		if m.err != nil {
			a.status = "error: " + m.err.Error()
		}
		return a, a.nextPersist()
	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Quit):
		if a.writing {
			a.quitting = true
			a.status = "saving…"
			return a, nil
		}
		return a, tea.Quit
	case key.Matches(m, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
	case key.Matches(m, a.keys.Prev):
		return a.press(solver.KeyUp)
	case key.Matches(m, a.keys.Next):
		return a.press(solver.KeyDown)
	case key.Matches(m, a.keys.Clear):
		return a.press(solver.KeyClear)
	case key.Matches(m, a.keys.Decimal):
		return a.press(solver.KeyDecimal)
	case key.Matches(m, a.keys.Digit):
		return a.press(m.Runes[0])
	case key.Matches(m, a.keys.Units):
		u := solver.Imperial
		if a.calc.Units() == solver.Imperial {
			u = solver.Metric
		}
		a.setting(a.calc.SetUnits(a.ctx, u), "units "+unitsName(u))
	case key.Matches(m, a.keys.Lock):
		l := solver.LockSpindle
		if a.calc.Modes().Lock == solver.LockSpindle {
			l = solver.LockFeed
		}
		a.setting(a.calc.SetLock(a.ctx, l), "lock "+l.Name())
	case key.Matches(m, a.keys.Speed):
		s := solver.SpeedFast
		if a.calc.Modes().Speed == solver.SpeedFast {
			s = solver.SpeedNormal
		}
		a.setting(a.calc.SetSpeedMode(a.ctx, s), "speed mode "+s.Name())
	case key.Matches(m, a.keys.Variant):
		return a, a.switchVariantCmd()
	}
	return a, nil
}

func (a *App) press(k rune) (tea.Model, tea.Cmd) {
	res, w := a.calc.Press(k)
	a.status = ""
	if res.Reset {
		a.status = "all fields cleared"
	}
	a.reveal()
	return a, a.enqueue(w)
}

func (a *App) setting(err error, done string) {
	if err != nil {
		a.status = "error: " + err.Error()
		return
	}
	a.status = done
}

// reveal scrolls the field list so the selected field is on screen.
func (a *App) reveal() {
	sel := a.calc.State().Selected
	if sel == 0 {
		return
	}
	_, offsets := a.layoutRows()
	if line, ok := offsets[sel]; ok {
		a.scroll.reveal(line)
	}
}

// commands

type persistJob struct {
	calc *service.CalculatorService
	w    service.Writes
}

// enqueue queues w and starts a write unless one is in flight. A failed
// write only surfaces in the status line.
func (a *App) enqueue(w service.Writes) tea.Cmd {
	if len(w.Entries) == 0 {
		return nil
	}
	a.queue = append(a.queue, persistJob{calc: a.calc, w: w})
	if a.writing {
		return nil
	}
	return a.nextPersist()
}

// nextPersist issues the oldest queued write, or quits once the queue is
// empty and the user asked to leave.
func (a *App) nextPersist() tea.Cmd {
	if len(a.queue) == 0 {
		a.writing = false
		if a.quitting {
			return tea.Quit
		}
		return nil
	}
	job := a.queue[0]
	a.queue = a.queue[1:]
	a.writing = true
	ctx := a.ctx
	return func() tea.Msg {
		return persistedMsg{err: job.calc.Persist(ctx, job.w)}
	}
}

func (a *App) switchVariantCmd() tea.Cmd {
	if a.open == nil {
		return nil
	}
	next := solver.Drilling
	if a.calc.FieldSet().Variant == solver.Drilling {
		next = solver.Milling
	}
	return func() tea.Msg {
		calc, err := a.open(a.ctx, next)
		if err != nil {
			return errMsg{err}
		}
		return variantMsg{calc: calc}
	}
}

type variantMsg struct{ calc *service.CalculatorService }

type errMsg struct{ error }

type persistedMsg struct{ err error }

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	modeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	derivedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("109"))
	keyStyle      = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, true).Padding(0, 1)
	disabledStyle = keyStyle.Foreground(lipgloss.Color("238"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func unitsName(u solver.Units) string {
	if u == solver.Imperial {
		return "imperial"
	}
	return "metric"
}

func formatRow(r service.Row) string {
	return fmt.Sprintf("%-3s %14s %-8s", r.ID, r.Value, r.Unit)
}

// layoutRows renders the field list and records the line each selectable
// field sits on.
func (a *App) layoutRows() ([]string, map[int]int) {
	rows := a.calc.Snapshot()
	lines := make([]string, 0, len(rows)+1)
	offsets := make(map[int]int, len(rows))
	separated := false
	for _, r := range rows {
		if r.Derived && !separated {
			lines = append(lines, strings.Repeat("─", 27))
			separated = true
		}
		line := formatRow(r)
		switch {
		case r.Selected:
			line = selectedStyle.Render(line)
		case r.Derived:
			line = derivedStyle.Render(line)
		}
		if r.Index != 0 {
			offsets[r.Index] = len(lines)
		}
		lines = append(lines, line)
	}
	return lines, offsets
}

func (a *App) View() string {
	var b strings.Builder
	set := a.calc.FieldSet()
	modes := a.calc.Modes()
	b.WriteString(titleStyle.Render(strings.ToUpper(string(set.Variant[:1])) + string(set.Variant[1:])))
	b.WriteString("  ")
	b.WriteString(modeStyle.Render(fmt.Sprintf("%s · lock %s · speed %s", unitsName(a.calc.Units()), modes.Lock.Name(), modes.Speed.Name())))
	b.WriteString("\n\n")

	lines, _ := a.layoutRows()
	b.WriteString(strings.Join(a.scroll.slice(lines), "\n"))
	b.WriteString("\n\n")

	st := a.calc.State()
	dot := keyStyle.Render(".")
	if st.Selected == 0 || !st.DecimalEnabled {
		dot = disabledStyle.Render(".")
	}
	b.WriteString(keyStyle.Render(string(st.Caption)) + " " + dot)
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(a.status))
	b.WriteString("\n")
	b.WriteString(a.help.View(a.keys))
	return b.String()
}
