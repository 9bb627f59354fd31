package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pfassina/rendercards/internal/app"
	"github.com/pfassina/rendercards/internal/config"
	"github.com/pfassina/rendercards/internal/logging"
	"github.com/pfassina/rendercards/internal/render"
	"github.com/pfassina/rendercards/internal/ssh"
	"github.com/pfassina/rendercards/internal/tui"
)

func main() {
	if err := config.LoadDotenv(); err != nil {
		fmt.Fprintln(os.Stderr, "error loading .env:", err)
		os.Exit(1)
	}

	cfg := config.Default()
	configExisted, err := config.LoadFile(&cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error loading config:", err)
		os.Exit(1)
	}
	config.ApplyEnv(&cfg)

	engine := flag.String("engine", cfg.Engine, "rendering engine: pango|xelatex")
	font := flag.String("font", cfg.DefaultFont, "default font when the deck names none")
	hebrewRTL := flag.Bool("hebrew-rtl", cfg.HebrewRTL, "use the right-to-left XeLaTeX template")
	out := flag.String("out", cfg.OutputRoot, "output root (default: the deck file's directory)")
	jobs := flag.Int("jobs", cfg.Jobs, "parallel renders")
	noCache := flag.Bool("no-cache", !cfg.Cache, "disable the render cache")
	watchDeck := flag.Bool("watch", false, "re-render when the deck changes")
	interactive := flag.Bool("i", false, "open the interactive form")
	serve := flag.Bool("serve", false, "serve the interactive form over SSH")
	listen := flag.String("listen", cfg.Listen, "listen address for -serve (e.g. :2323)")
	cacheStats := flag.Bool("cache-stats", false, "print render cache statistics and exit")
	cachePrune := flag.Duration("cache-prune", 0, "remove cached renders older than `DURATION` and exit")
	logLevel := flag.String("log-level", cfg.LogLevel, "log level: debug|info|warn|error")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: rendercards [flags] [deck-file]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg.Engine = *engine
	cfg.DefaultFont = *font
	cfg.HebrewRTL = *hebrewRTL
	cfg.OutputRoot = config.ExpandHome(*out)
	cfg.Jobs = max(*jobs, 1)
	cfg.Cache = !*noCache
	cfg.Listen = *listen
	cfg.LogLevel = *logLevel

	if cfg.Engine != "" {
		e, err := render.ParseEngine(cfg.Engine)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(2)
		}
		cfg.Engine = string(e)
	}

	deckPath := flag.Arg(0)
	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	}
	if deckPath != "" {
		// Absolute so watch mode and the output root stay stable.
		deckPath = config.ExpandHome(deckPath)
		if abs, err := filepath.Abs(deckPath); err == nil {
			deckPath = abs
		}
	}

	cacheMode := *cacheStats || *cachePrune != 0
	if cacheMode {
		cfg.Cache = true
	}
	formMode := !cacheMode && !*serve && (*interactive || deckPath == "")

	logger, err := logging.New(logging.Options{
		Level:       cfg.LogLevel,
		File:        cfg.LogFile,
		Quiet:       formMode,
		DefaultFile: filepath.Join(config.CacheDir(), "rendercards.log"),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error opening log:", err)
		os.Exit(1)
	}

	a, err := app.New(cfg, logger.Logger, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := 0
	switch {
	case cacheMode:
		code = runCache(a, *cacheStats, *cachePrune)
	case *serve:
		code = runServe(ctx, a, cfg.Listen)
	case formMode:
		if !configExisted {
			if err := config.SaveFile(cfg); err != nil {
				logger.Warn("write starter config", "err", err)
			}
		}
		code = runForm(ctx, a, deckPath)
	case *watchDeck:
		code = runWatch(ctx, a, deckPath)
	default:
		code = runBatch(ctx, a, deckPath)
	}

	stop()
	if err := a.Close(); err != nil {
		logger.Warn("close render cache", "err", err)
	}
	_ = logger.Close()
	os.Exit(code)
}

func runBatch(ctx context.Context, a *app.App, deckPath string) int {
	req, ok := batchRequest(a, deckPath)
	if !ok {
		return 2
	}
	sum, err := a.Render(ctx, req, nil)
	if sum.OutputDir != "" {
		fmt.Println(sum.String())
	}
	if err := app.RunError(sum, err); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func runWatch(ctx context.Context, a *app.App, deckPath string) int {
	req, ok := batchRequest(a, deckPath)
	if !ok {
		return 2
	}
	err := a.Watch(ctx, req, func(err error) {
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

// batchRequest checks the engine, which the form would otherwise ask for.
func batchRequest(a *app.App, deckPath string) (tui.Request, bool) {
	req := a.Request(deckPath)
	if req.Engine == "" {
		fmt.Fprintln(os.Stderr, "error: choose an engine with -engine pango or -engine xelatex")
		return req, false
	}
	return req, true
}

func runForm(ctx context.Context, a *app.App, deckPath string) int {
	opts := a.FormOptions(ctx)
	if deckPath != "" && opts.Store != nil {
		st, _ := opts.Store.Load()
		st.DeckPath = deckPath
		_ = opts.Store.Save(st)
	}
	if err := tui.Run(opts, tea.WithAltScreen(), tea.WithContext(ctx)); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func runServe(ctx context.Context, a *app.App, listen string) int {
	s, err := ssh.New(listen, a.FormOptions(ctx))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		<-ctx.Done()
		if err := s.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing server: %v\n", err)
		}
	}()

	fmt.Fprintf(os.Stderr, "serving on %s\n", s.Addr())
	if err := s.ListenAndServe(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runCache(a *app.App, stats bool, prune time.Duration) int {
	if prune != 0 {
		if err := a.CachePrune(os.Stdout, prune); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return 1
		}
	}
	if stats {
		if err := a.CacheStats(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return 1
		}
	}
	return 0
}
