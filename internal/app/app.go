// Package app wires configuration, the render cache, fontconfig and the
// batch driver together for the command-line modes.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/pfassina/rendercards/internal/batch"
	"github.com/pfassina/rendercards/internal/config"
	"github.com/pfassina/rendercards/internal/deck"
	"github.com/pfassina/rendercards/internal/index"
	"github.com/pfassina/rendercards/internal/render"
	"github.com/pfassina/rendercards/internal/session"
	"github.com/pfassina/rendercards/internal/tui"
)

// App holds the long-lived resources shared by every run.
type App struct {
	cfg    config.Config
	logger *log.Logger
	runner render.Runner
	fonts  *render.FontResolver
	db     *index.DB
}

// New opens the render cache when it is enabled. runner may be nil to use
// the real tools.
func New(cfg config.Config, logger *log.Logger, runner render.Runner) (*App, error) {
	if runner == nil {
		runner = render.ExecRunner{}
	}
	a := &App{
		cfg:    cfg,
		logger: logger,
		runner: runner,
		fonts:  render.NewFontResolver(cfg.FcList, cfg.FcMatch, cfg.FontCacheSize, runner),
	}
	if cfg.Cache {
		db, err := index.Open(cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("open render cache: %w", err)
		}
		a.db = db
	}
	return a, nil
}

// Close releases the render cache.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// DB is the open render cache, or nil when caching is disabled.
func (a *App) DB() *index.DB { return a.db }

// Fonts is the shared fontconfig resolver.
func (a *App) Fonts() *render.FontResolver { return a.fonts }

// Request builds a render request from the configuration.
func (a *App) Request(deckPath string) tui.Request {
	engine, _ := render.ParseEngine(a.cfg.Engine)
	return tui.Request{
		DeckPath:   deckPath,
		Engine:     engine,
		Font:       a.cfg.DefaultFont,
		HebrewRTL:  a.cfg.HebrewRTL,
		SkipCached: a.cfg.Cache,
		Jobs:       a.cfg.Jobs,
	}
}

// Render loads the deck and renders it. It satisfies tui.RunFunc.
func (a *App) Render(ctx context.Context, req tui.Request, onEvent func(batch.Event)) (batch.Summary, error) {
	if req.Engine == "" {
		return batch.Summary{}, fmt.Errorf("no engine selected (use -engine pango or -engine xelatex)")
	}
	d, err := deck.Load(req.DeckPath)
	if err != nil {
		return batch.Summary{}, err
	}

	opts := batch.Options{
		Engine:      req.Engine,
		DefaultFont: req.Font,
		HebrewRTL:   req.HebrewRTL,
		OutputRoot:  a.cfg.OutputRoot,
		Jobs:        req.Jobs,
		Magick:      a.cfg.Magick,
		Xelatex:     a.cfg.Xelatex,
		Runner:      a.runner,
		Fonts:       a.fonts,
		Logger:      a.logger.With("deck", filepath.Base(req.DeckPath)),
		OnEvent:     onEvent,
	}
	if req.SkipCached && a.db != nil {
		opts.Cache = a.db
	}
	return batch.Run(ctx, d, opts)
}

// FormOptions prepares the interactive form. Font families are listed once
// up front; a missing fontconfig only disables suggestions.
func (a *App) FormOptions(ctx context.Context) tui.Options {
	families, err := a.fonts.Families(ctx)
	if err != nil {
		a.logger.Warn("list fonts", "err", err)
	}
	return tui.Options{
		Context:     ctx,
		Families:    families,
		DefaultFont: a.cfg.DefaultFont,
		DefaultJobs: a.cfg.Jobs,
		Store:       session.NewStore(config.ConfigDir()),
		Run:         a.Render,
		Logger:      a.logger,
	}
}
