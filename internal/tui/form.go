package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/pfassina/rendercards/internal/config"
	"github.com/pfassina/rendercards/internal/render"
	"github.com/pfassina/rendercards/internal/session"
)

type field int

const (
	fieldDeck field = iota
	fieldEngine
	fieldFont
	fieldHebrew
	fieldSkipCached
	fieldJobs
	fieldCount
)

func (f field) label() string {
	switch f {
	case fieldDeck:
		return "Deck"
	case fieldEngine:
		return "Engine"
	case fieldFont:
		return "Font"
	case fieldHebrew:
		return "Hebrew RTL"
	case fieldSkipCached:
		return "Skip cached"
	case fieldJobs:
		return "Jobs"
	}
	return ""
}

// Request is what the form hands to the batch runner.
type Request struct {
	DeckPath   string
	Engine     render.Engine
	Font       string
	HebrewRTL  bool
	SkipCached bool
	Jobs       int
}

// form holds the editable choices.
type form struct {
	deck       textinput.Model
	font       textinput.Model
	jobs       textinput.Model
	engine     render.Engine
	hebrew     bool
	skipCached bool
	focus      field
}

func newForm(st session.State, families []string, defaultFont string, defaultJobs int) form {
	deck := textinput.New()
	deck.Placeholder = "~/cards/deck.json"
	deck.CharLimit = 512
	deck.Width = 50
	deck.SetValue(st.DeckPath)

	font := textinput.New()
	font.Placeholder = "font family"
	font.CharLimit = 128
	font.Width = 40
	font.ShowSuggestions = len(families) > 0
	font.SetSuggestions(families)
	font.SetValue(pickFont(st.Font, defaultFont, families))

	jobs := textinput.New()
	jobs.CharLimit = 3
	jobs.Width = 4
	n := st.Jobs
	if n <= 0 {
		n = defaultJobs
	}
	if n <= 0 {
		n = 1
	}
	jobs.SetValue(strconv.Itoa(n))

	engine, err := render.ParseEngine(st.Engine)
	if err != nil {
		engine = render.Pango
	}

	f := form{
		deck:       deck,
		font:       font,
		jobs:       jobs,
		engine:     engine,
		hebrew:     st.HebrewRTL,
		skipCached: st.SkipCached,
	}
	f.setFocus(fieldDeck)
	return f
}

// pickFont prefers the saved font, then the configured default when it is
// installed, then the first installed family.
func pickFont(saved, def string, families []string) string {
	if saved != "" {
		return saved
	}
	if len(families) == 0 || slices.Contains(families, def) {
		return def
	}
	return families[0]
}

func (f *form) setFocus(to field) {
	f.focus = (to + fieldCount) % fieldCount
	f.deck.Blur()
	f.font.Blur()
	f.jobs.Blur()
	switch f.focus {
	case fieldDeck:
		f.deck.Focus()
	case fieldFont:
		f.font.Focus()
	case fieldJobs:
		f.jobs.Focus()
	}
}

func (f *form) next() { f.setFocus(f.focus + 1) }
func (f *form) prev() { f.setFocus(f.focus - 1) }

// toggle flips the focused choice field. It reports false for text fields.
func (f *form) toggle() bool {
	switch f.focus {
	case fieldEngine:
		if f.engine == render.Pango {
			f.engine = render.Xelatex
		} else {
			f.engine = render.Pango
		}
	case fieldHebrew:
		f.hebrew = !f.hebrew
	case fieldSkipCached:
		f.skipCached = !f.skipCached
	default:
		return false
	}
	return true
}

func (f form) request() (Request, error) {
	path := strings.TrimSpace(f.deck.Value())
	if path == "" {
		return Request{}, fmt.Errorf("choose a deck file")
	}
	path, err := filepath.Abs(config.ExpandHome(path))
	if err != nil {
		return Request{}, fmt.Errorf("deck: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return Request{}, fmt.Errorf("deck: %w", err)
	}
	if info.IsDir() {
		return Request{}, fmt.Errorf("%s is a directory", path)
	}

	jobs, err := strconv.Atoi(strings.TrimSpace(f.jobs.Value()))
	if err != nil || jobs < 1 {
		return Request{}, fmt.Errorf("jobs must be a positive number")
	}

	return Request{
		DeckPath:   path,
		Engine:     f.engine,
		Font:       strings.TrimSpace(f.font.Value()),
		HebrewRTL:  f.hebrew,
		SkipCached: f.skipCached,
		Jobs:       jobs,
	}, nil
}

func (f form) state() session.State {
	jobs, _ := strconv.Atoi(strings.TrimSpace(f.jobs.Value()))
	return session.State{
		DeckPath:   strings.TrimSpace(f.deck.Value()),
		Engine:     string(f.engine),
		Font:       strings.TrimSpace(f.font.Value()),
		HebrewRTL:  f.hebrew,
		SkipCached: f.skipCached,
		Jobs:       jobs,
	}
}

func (f form) view() string {
	var b strings.Builder
	for i := field(0); i < fieldCount; i++ {
		cursor := "  "
		label := labelStyle.Render(i.label())
		if i == f.focus {
			cursor = selectedItem.Render("> ")
			label = selectedItem.Inherit(labelStyle).Render(i.label())
		}
		b.WriteString(cursor + label + f.valueView(i) + "\n")
	}
	return b.String()
}

func (f form) valueView(i field) string {
	switch i {
	case fieldDeck:
		return f.deck.View()
	case fieldFont:
		return f.font.View()
	case fieldJobs:
		return f.jobs.View()
	case fieldEngine:
		pango, xelatex := normalItem.Render("Pango"), normalItem.Render("XeLaTeX")
		if f.engine == render.Pango {
			pango = selectedItem.Render("[Pango]")
		} else {
			xelatex = selectedItem.Render("[XeLaTeX]")
		}
		return pango + "  " + xelatex
	case fieldHebrew:
		v := checkbox(f.hebrew)
		if f.engine != render.Xelatex {
			v += dimText.Render("  (XeLaTeX only)")
		}
		return v
	case fieldSkipCached:
		return checkbox(f.skipCached)
	}
	return ""
}

func checkbox(on bool) string {
	if on {
		return normalItem.Render("[x]")
	}
	return normalItem.Render("[ ]")
}
