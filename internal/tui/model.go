// Package tui is the interactive form: pick a deck, an engine and a font,
// then watch the batch render.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/pfassina/rendercards/internal/batch"
	"github.com/pfassina/rendercards/internal/session"
)

// maxFailureLines is how many failures the run view keeps on screen.
const maxFailureLines = 8

// RunFunc renders the deck described by req, reporting progress through
// onEvent.
type RunFunc func(ctx context.Context, req Request, onEvent func(batch.Event)) (batch.Summary, error)

// Options configures a Model.
type Options struct {
	// Context bounds every run started from the form. Runs stop when it
	// is cancelled.
	Context     context.Context
	Families    []string // installed font families, for suggestions
	DefaultFont string
	DefaultJobs int
	Store       *session.Store // nil disables persistence
	Run         RunFunc
	Logger      *log.Logger
}

type viewState int

const (
	stateForm viewState = iota
	stateRunning
	stateDone
)

type eventMsg struct{ event batch.Event }

type doneMsg struct {
	summary batch.Summary
	err     error
}

// Model is the Bubble Tea model for the form and its run view.
type Model struct {
	opts   Options
	logger *log.Logger
	form   form
	state  viewState
	err    string

	spinner  spinner.Model
	progress progress.Model
	events   chan tea.Msg
	result   chan tea.Msg
	cancel   context.CancelFunc
	stopping bool

	subset   string
	done     int
	total    int
	failures []string

	summary batch.Summary
	runErr  error

	width int
}

// New builds the form, restoring saved choices from the store.
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	st := session.Default()
	if opts.Store != nil {
		loaded, err := opts.Store.Load()
		if err != nil {
			logger.Warn("load form state", "err", err)
		}
		st = loaded
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedItem

	return Model{
		opts:     opts,
		logger:   logger,
		form:     newForm(st, opts.Families, opts.DefaultFont, opts.DefaultJobs),
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(max(msg.Width-8, 10), 80)
		return m, nil

	case eventMsg:
		m.applyEvent(msg.event)
		return m, m.listen()

	case doneMsg:
		m.state = stateDone
		m.summary = msg.summary
		m.runErr = msg.err
		m.events, m.result = nil, nil
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		return m, nil

	case spinner.TickMsg:
		if m.state != stateRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.state {
		case stateRunning:
			return m.updateRunning(msg)
		case stateDone:
			return m.updateDone(msg)
		}
		return m.updateForm(msg)
	}

	if m.state == stateForm {
		return m.forwardToInput(msg)
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.form
	switch msg.String() {
	case "esc", "ctrl+c":
		return m, tea.Quit

	case "tab":
		// Tab completes a font suggestion before it moves on.
		if f.focus == fieldFont {
			if s := f.font.CurrentSuggestion(); s != "" && s != f.font.Value() {
				return m.forwardToInput(msg)
			}
		}
		f.next()
		return m, nil

	case "shift+tab":
		f.prev()
		return m, nil

	case "down", "up":
		if f.focus == fieldFont {
			return m.forwardToInput(msg)
		}
		if msg.String() == "down" {
			f.next()
		} else {
			f.prev()
		}
		return m, nil

	case " ", "left", "right":
		if f.toggle() {
			return m, nil
		}

	case "enter":
		return m.start()
	}

	m.err = ""
	return m.forwardToInput(msg)
}

func (m Model) forwardToInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.form.focus {
	case fieldDeck:
		m.form.deck, cmd = m.form.deck.Update(msg)
	case fieldFont:
		m.form.font, cmd = m.form.font.Update(msg)
	case fieldJobs:
		m.form.jobs, cmd = m.form.jobs.Update(msg)
	}
	return m, cmd
}

func (m Model) start() (tea.Model, tea.Cmd) {
	req, err := m.form.request()
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	if m.opts.Store != nil {
		if err := m.opts.Store.Save(m.form.state()); err != nil {
			m.logger.Warn("save form state", "err", err)
		}
	}
	if m.opts.Run == nil {
		m.err = "rendering is not available"
		return m, nil
	}

	base := m.opts.Context
	if base == nil {
		base = context.Background()
	}
	ctx, cancel := context.WithCancel(base)
	events := make(chan tea.Msg, 64)
	result := make(chan tea.Msg, 1)
	run := m.opts.Run
	go func() {
		defer close(events)
		sum, err := run(ctx, req, func(e batch.Event) {
			// Progress is dropped once the run is cancelled; nobody may be
			// reading any more.
			select {
			case events <- eventMsg{e}:
			case <-ctx.Done():
			}
		})
		result <- doneMsg{summary: sum, err: err}
	}()

	m.state = stateRunning
	m.err = ""
	m.events = events
	m.result = result
	m.cancel = cancel
	m.stopping = false
	m.subset = ""
	m.done, m.total = 0, 0
	m.failures = nil
	m.summary = batch.Summary{}
	m.runErr = nil
	m.logger.Info("batch started", "deck", req.DeckPath, "engine", req.Engine, "font", req.Font)
	return m, tea.Batch(m.spinner.Tick, m.listen())
}

// listen waits for the next message from the running batch. The summary
// follows the last event.
func (m Model) listen() tea.Cmd {
	events, result := m.events, m.result
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		if msg, ok := <-events; ok {
			return msg
		}
		return <-result
	}
}

func (m *Model) applyEvent(e batch.Event) {
	m.done, m.total = e.Done, e.Total
	switch e.Kind {
	case batch.SubsetStarted:
		m.subset = e.Subset
	case batch.ItemDone:
		if e.Err != nil {
			m.failures = append(m.failures, fmt.Sprintf("%s/%s: %v", e.Subset, e.Label, e.Err))
			if len(m.failures) > maxFailureLines {
				m.failures = m.failures[len(m.failures)-maxFailureLines:]
			}
		}
	}
}

func (m Model) updateRunning(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c", "q":
		if m.cancel != nil && !m.stopping {
			m.cancel()
			m.stopping = true
		}
	}
	return m, nil
}

func (m Model) updateDone(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.state = stateForm
		m.form.setFocus(m.form.focus)
		return m, textinput.Blink
	case "esc", "ctrl+c", "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString("\n " + titleStyle.Render("rendercards") + "\n\n")

	switch m.state {
	case stateRunning:
		s.WriteString(m.runningView())
	case stateDone:
		s.WriteString(m.doneView())
	default:
		s.WriteString(indent(m.form.view()))
		s.WriteString("\n")
		if m.err != "" {
			s.WriteString(" " + errText.Render(m.err) + "\n\n")
		}
		s.WriteString(" " + dimText.Render("Tab/Shift+Tab to move, Space to toggle, Enter to render, Esc to quit") + "\n")
	}
	return s.String()
}

func (m Model) runningView() string {
	var s strings.Builder
	status := "rendering"
	if m.stopping {
		status = "stopping"
	}
	if m.subset != "" {
		status += " " + m.subset
	}
	s.WriteString(" " + m.spinner.View() + " " + normalItem.Render(status) + "\n\n")

	pct := 0.0
	if m.total > 0 {
		pct = float64(m.done) / float64(m.total)
	}
	s.WriteString(" " + m.progress.ViewAs(pct) + "\n")
	s.WriteString(" " + dimText.Render(fmt.Sprintf("%d of %d", m.done, m.total)) + "\n\n")

	if len(m.failures) > 0 {
		var lines []string
		for _, f := range m.failures {
			lines = append(lines, errText.Render(f))
		}
		s.WriteString(panelBorder.Render(strings.Join(lines, "\n")) + "\n\n")
	}
	s.WriteString(" " + dimText.Render("Esc to cancel") + "\n")
	return s.String()
}

func (m Model) doneView() string {
	var s strings.Builder
	switch {
	case m.runErr != nil:
		s.WriteString(" " + errText.Render(m.runErr.Error()) + "\n")
		if m.summary.OutputDir != "" {
			s.WriteString(" " + dimText.Render(m.summary.String()) + "\n")
		}
	case m.summary.OK():
		s.WriteString(" " + okText.Render(m.summary.String()) + "\n")
	default:
		s.WriteString(" " + errText.Render(m.summary.String()) + "\n")
	}
	s.WriteString("\n")

	if len(m.summary.Failures) > 0 {
		var lines []string
		for i, f := range m.summary.Failures {
			if i == maxFailureLines {
				lines = append(lines, dimText.Render(fmt.Sprintf("... %d more", len(m.summary.Failures)-i)))
				break
			}
			lines = append(lines, errText.Render(fmt.Sprintf("%s/%s: %v", f.Subset, f.Label, f.Err)))
		}
		s.WriteString(panelBorder.Render(strings.Join(lines, "\n")) + "\n\n")
	}
	for want, got := range m.summary.Substitutions {
		s.WriteString(" " + dimText.Render(fmt.Sprintf("font %q is not installed; rendered with %q", want, got)) + "\n")
	}
	s.WriteString("\n " + dimText.Render("Enter to go back, Esc to quit") + "\n")
	return s.String()
}

func indent(s string) string {
	return " " + strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n ") + "\n"
}

// Run starts the form on the current terminal and returns when it exits.
func Run(opts Options, programOpts ...tea.ProgramOption) error {
	p := tea.NewProgram(New(opts), programOpts...)
	final, err := p.Run()
	if fm, ok := final.(Model); ok && fm.cancel != nil {
		fm.cancel()
	}
	return err
}
