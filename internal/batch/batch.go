// Package batch renders every rendition of a deck into a fresh output
// directory.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/pfassina/rendercards/internal/deck"
	"github.com/pfassina/rendercards/internal/index"
	"github.com/pfassina/rendercards/internal/naming"
	"github.com/pfassina/rendercards/internal/render"
)

// workDirName is the scratch directory inside the output directory. It is
// removed when the run ends. Normalized subset names never contain a dot, so
// it cannot collide with a subset directory.
const workDirName = ".tmp"

// Options configures a batch run.
type Options struct {
	Engine      render.Engine
	DefaultFont string // used when neither the rendition nor the deck names a font
	HebrewRTL   bool
	OutputRoot  string // defaults to the deck file's directory
	Jobs        int

	Magick  string
	Xelatex string
	Runner  render.Runner
	// Renderer overrides the renderer built from the deck settings.
	Renderer render.Renderer

	Cache   *index.DB            // nil disables the render cache
	Fonts   *render.FontResolver // nil skips the font substitution check
	Logger  *log.Logger
	OnEvent func(Event)
}

// Run renders the deck. Item failures are collected in the summary and do
// not stop the run; the returned error is set when the run could not start
// or was cancelled.
func Run(ctx context.Context, d *deck.Deck, opts Options) (Summary, error) {
	start := time.Now()
	var sum Summary

	if opts.Jobs <= 0 {
		opts.Jobs = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	if err := d.Validate(string(opts.Engine)); err != nil {
		return sum, err
	}

	// Subset names are checked before anything is written. Two subsets
	// sharing a directory would overwrite each other's files.
	subsetDirs := make([]string, len(d.Subsets))
	owner := make(map[string]string, len(d.Subsets))
	for i, s := range d.Subsets {
		name, err := naming.Normalize(s.Name)
		if err != nil {
			return sum, fmt.Errorf("subset %q: %w", s.Name, err)
		}
		if prev, ok := owner[name]; ok {
			return sum, fmt.Errorf("subsets %q and %q both map to directory %q", prev, s.Name, name)
		}
		owner[name] = s.Name
		subsetDirs[i] = name
	}

	root := opts.OutputRoot
	if root == "" {
		root = filepath.Dir(d.Path)
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return sum, fmt.Errorf("output root: %w", err)
	}
	out, err := allocateDir(root, d.Settings.Name, string(opts.Engine))
	if err != nil {
		return sum, err
	}
	sum.OutputDir = out
	logger.Info("output directory", "path", out)

	r := opts.Renderer
	if r == nil {
		r = newRenderer(opts, d.Settings)
	}

	b := &run{
		opts:     opts,
		deck:     d,
		renderer: r,
		logger:   logger,
		sum:      &sum,
		total:    d.Items(),
		workRoot: filepath.Join(out, workDirName),
	}
	defer func() { _ = os.RemoveAll(b.workRoot) }()

	if opts.Cache != nil {
		id, err := opts.Cache.StartRun(d.Path, string(opts.Engine))
		if err != nil {
			logger.Warn("render cache unavailable", "err", err)
			b.opts.Cache = nil
		} else {
			sum.RunID = id
		}
	}

	if opts.Fonts != nil {
		sum.Substitutions = b.checkFonts(ctx)
	}

	var runErr error
	for i, s := range d.Subsets {
		dir := filepath.Join(out, subsetDirs[i])
		if err := os.Mkdir(dir, 0755); err != nil {
			runErr = fmt.Errorf("create subset dir: %w", err)
			break
		}
		if err := b.subset(ctx, s, dir); err != nil {
			runErr = err
			break
		}
	}

	sum.Elapsed = time.Since(start)
	if b.opts.Cache != nil && sum.RunID != "" {
		if err := b.opts.Cache.FinishRun(sum.RunID, sum.Written, len(sum.Failures), sum.CacheHits); err != nil {
			logger.Warn("record run", "err", err)
		}
	}
	return sum, runErr
}

// allocateDir creates "<base>-1", or the first free "<base>-N", under root.
func allocateDir(root, deckName, engine string) (string, error) {
	base, err := naming.OutputDirBase(deckName, engine)
	if err != nil {
		return "", fmt.Errorf("deck name: %w", err)
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return "", fmt.Errorf("create output root: %w", err)
	}
	for n := 1; ; n++ {
		dir := filepath.Join(root, base+"-"+strconv.Itoa(n))
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}
}

func newRenderer(opts Options, s deck.Settings) render.Renderer {
	if opts.Engine == render.Xelatex {
		return render.NewXelatexRenderer(opts.Xelatex, opts.Magick, s.Xelatex, opts.HebrewRTL, opts.Runner)
	}
	return render.NewPangoRenderer(opts.Magick, s.Pango, opts.Runner)
}

type run struct {
	opts     Options
	deck     *deck.Deck
	renderer render.Renderer
	logger   *log.Logger
	workRoot string
	total    int

	mu   sync.Mutex // guards sum, done, jobs and event delivery
	sum  *Summary
	done int
	jobs int
}

// item is one rendition scheduled for rendering.
type item struct {
	job     render.Job
	nameErr error
}

func (b *run) subset(ctx context.Context, s deck.Subset, dir string) error {
	items := b.items(s, dir)
	res := SubsetResult{Name: s.Name, Dir: dir, Items: len(items)}
	b.logger.Info("processing subset", "subset", s.Name, "items", len(items))
	b.emit(Event{Kind: SubsetStarted, Subset: s.Name, Items: len(items)})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Jobs)
	var mu sync.Mutex
	for _, it := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			cached, size, err := b.renderItem(gctx, it)
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			mu.Lock()
			if err != nil {
				res.Failed++
			} else {
				res.Written++
			}
			mu.Unlock()
			b.finish(s.Name, it.job, cached, size, err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	b.sum.Subsets = append(b.sum.Subsets, res)
	b.mu.Unlock()
	b.logger.Info("subset done", "subset", s.Name, "written", res.Written, "failed", res.Failed, "dir", dir)
	b.emit(Event{Kind: SubsetDone, Subset: s.Name, Items: res.Written})
	return nil
}

// items expands the segments of a subset into jobs. Sequence numbers count
// segments from 1, including segments whose name cannot be used.
func (b *run) items(s deck.Subset, dir string) []item {
	engine := string(b.opts.Engine)
	var items []item
	for i, seg := range s.Segments {
		for j, rend := range seg.Renditions {
			text, pre := rend.Source(engine)
			job := render.Job{
				Label:      seg.Name,
				Text:       text,
				PreEscaped: pre,
				Font:       b.font(rend),
			}
			if b.opts.Engine == render.Pango {
				job.Flip = rend.PangoFlip
				job.Flop = rend.PangoFlop
			}
			name, err := naming.ItemFileName(i+1, seg.Name, j+1)
			if err == nil {
				job.Output = filepath.Join(dir, name)
			}
			items = append(items, item{job: job, nameErr: err})
		}
	}
	return items
}

func (b *run) font(r deck.Rendition) string {
	switch {
	case r.Font != "":
		return r.Font
	case b.deck.Settings.DefaultFont != "":
		return b.deck.Settings.DefaultFont
	}
	return b.opts.DefaultFont
}

func (b *run) renderItem(ctx context.Context, it item) (cached bool, size int64, err error) {
	if it.nameErr != nil {
		return false, 0, it.nameErr
	}
	job := it.job

	var key string
	if b.opts.Cache != nil {
		key, err = render.Key(b.renderer, job)
		if err != nil {
			return false, 0, err
		}
		png, err := b.opts.Cache.Get(key)
		if err != nil {
			b.logger.Warn("cache lookup", "label", job.Label, "err", err)
		} else if png != nil {
			if err := os.WriteFile(job.Output, png, 0644); err != nil {
				return false, 0, fmt.Errorf("write %s: %w", job.Output, err)
			}
			return true, int64(len(png)), nil
		}
	}

	if b.opts.Engine == render.Xelatex {
		b.mu.Lock()
		b.jobs++
		job.WorkDir = filepath.Join(b.workRoot, strconv.Itoa(b.jobs))
		b.mu.Unlock()
		defer func() { _ = os.RemoveAll(job.WorkDir) }()
	}

	if err := b.renderer.Render(ctx, job); err != nil {
		return false, 0, err
	}

	png, err := os.ReadFile(job.Output)
	if err != nil {
		return false, 0, fmt.Errorf("read %s: %w", job.Output, err)
	}
	if key != "" {
		if err := b.opts.Cache.Put(key, string(b.opts.Engine), job.Label, b.sum.RunID, png); err != nil {
			b.logger.Warn("cache store", "label", job.Label, "err", err)
		}
	}
	return false, int64(len(png)), nil
}

func (b *run) finish(subset string, job render.Job, cached bool, size int64, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.done++
	if err != nil {
		b.sum.Failures = append(b.sum.Failures, Failure{Subset: subset, Label: job.Label, File: job.Output, Err: err})
		b.logger.Error("render failed", "subset", subset, "label", job.Label, "err", err)
	} else {
		b.sum.Written++
		b.sum.Bytes += size
		if cached {
			b.sum.CacheHits++
		}
		b.logger.Debug("rendered", "label", job.Label, "file", job.Output, "cached", cached)
	}
	b.deliver(Event{
		Kind:   ItemDone,
		Subset: subset,
		Label:  job.Label,
		File:   job.Output,
		Cached: cached,
		Err:    err,
	})
}

// emit delivers an event outside of finish.
func (b *run) emit(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deliver(e)
}

// deliver must be called with mu held, so the callback never runs
// concurrently with itself.
func (b *run) deliver(e Event) {
	if b.opts.OnEvent == nil {
		return
	}
	e.Done = b.done
	e.Total = b.total
	b.opts.OnEvent(e)
}

// checkFonts resolves every font the deck uses and logs a warning once per
// family that fontconfig substitutes.
func (b *run) checkFonts(ctx context.Context) map[string]string {
	seen := make(map[string]bool)
	subs := make(map[string]string)
	for _, s := range b.deck.Subsets {
		for _, seg := range s.Segments {
			for _, r := range seg.Renditions {
				family := b.font(r)
				if family == "" || seen[family] {
					continue
				}
				seen[family] = true
				installed, err := b.opts.Fonts.Installed(ctx, family)
				if err != nil {
					b.logger.Warn("font lookup failed", "font", family, "err", err)
					continue
				}
				if !installed {
					match, _ := b.opts.Fonts.Match(ctx, family)
					subs[family] = match
					b.logger.Warn("font not installed, fontconfig substitutes another", "font", family, "match", match)
				}
			}
		}
	}
	return subs
}
