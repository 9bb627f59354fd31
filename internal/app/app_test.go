package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfassina/rendercards/internal/config"
	"github.com/pfassina/rendercards/internal/render"
)

// toolRunner stands in for magick, xelatex and fontconfig.
type toolRunner struct {
	mu    sync.Mutex
	calls map[string]int
	fail  string // label text that makes magick fail
}

func (r *toolRunner) Run(_ context.Context, c render.Command) ([]byte, error) {
	r.mu.Lock()
	if r.calls == nil {
		r.calls = make(map[string]int)
	}
	r.calls[c.Name]++
	r.mu.Unlock()

	switch c.Name {
	case "fc-list":
		return []byte("Arial\nDavid,David CLM\n@Vertical\n"), nil
	case "fc-match":
		return []byte(c.Args[len(c.Args)-1]), nil
	case "xelatex":
		dir := strings.TrimPrefix(c.Args[0], "-output-directory=")
		return nil, os.WriteFile(filepath.Join(dir, "texput.pdf"), c.Stdin, 0644)
	case "magick":
		if r.fail != "" && strings.Contains(strings.Join(c.Args, " "), r.fail) {
			return nil, &render.ToolError{Tool: "magick", Err: errors.New("exit status 1")}
		}
		out := c.Args[len(c.Args)-1]
		return nil, os.WriteFile(out, []byte(strings.Join(c.Args, " ")), 0644)
	}
	return nil, nil
}

func (r *toolRunner) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[name]
}

const deckJSON = `{
  "settings": {"name": "Hebrew", "defaultFont": "David"},
  "subsets": {
    "Letters": [
      {"name": "alef", "renditions": [{"utf8": "א"}, {"utf8": "א & more"}]},
      {"name": "bet", "renditions": [{"utf8": "ב"}]}
    ]
  }
}`

func newTestApp(t *testing.T, runner render.Runner) (*App, string) {
	t.Helper()
	dir := t.TempDir()
	deckPath := filepath.Join(dir, "hebrew.json")
	require.NoError(t, os.WriteFile(deckPath, []byte(deckJSON), 0644))

	cfg := config.Default()
	cfg.Engine = "pango"
	cfg.CachePath = filepath.Join(dir, "cache", "cache.db")
	cfg.Jobs = 2

	a, err := New(cfg, log.New(io.Discard), runner)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, deckPath
}

func TestRender(t *testing.T) {
	runner := &toolRunner{}
	a, deckPath := newTestApp(t, runner)

	sum, err := a.Render(context.Background(), a.Request(deckPath), nil)
	require.NoError(t, err)
	require.NoError(t, RunError(sum, nil))

	assert.Equal(t, filepath.Join(filepath.Dir(deckPath), "Hebrew-pango-png-1"), sum.OutputDir)
	data, err := os.ReadFile(filepath.Join(sum.OutputDir, "Letters", "001-alef-2.png"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `א &amp\; more`)
	assert.Contains(t, string(data), `font_family="David"`)
	assert.Equal(t, 3, runner.count("magick"))

	// The second run is served from the cache.
	sum, err = a.Render(context.Background(), a.Request(deckPath), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.CacheHits)
	assert.Equal(t, 3, runner.count("magick"))
	assert.Equal(t, filepath.Join(filepath.Dir(deckPath), "Hebrew-pango-png-2"), sum.OutputDir)
}

func TestRender_SkipCachedOff(t *testing.T) {
	runner := &toolRunner{}
	a, deckPath := newTestApp(t, runner)

	req := a.Request(deckPath)
	req.SkipCached = false
	for range 2 {
		_, err := a.Render(context.Background(), req, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 6, runner.count("magick"))
}

func TestRender_Xelatex(t *testing.T) {
	runner := &toolRunner{}
	a, deckPath := newTestApp(t, runner)

	req := a.Request(deckPath)
	req.Engine = render.Xelatex
	req.HebrewRTL = true
	sum, err := a.Render(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Written)
	assert.Equal(t, 3, runner.count("xelatex"))
	assert.NoDirExists(t, filepath.Join(sum.OutputDir, ".tmp"))
}

func TestRender_Failures(t *testing.T) {
	runner := &toolRunner{fail: "ב"}
	a, deckPath := newTestApp(t, runner)

	sum, err := a.Render(context.Background(), a.Request(deckPath), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, RunError(sum, err), ErrItemsFailed)

	var te *render.ToolError
	require.Len(t, sum.Failures, 1)
	assert.ErrorAs(t, sum.Failures[0].Err, &te)
}

func TestRender_Errors(t *testing.T) {
	a, deckPath := newTestApp(t, &toolRunner{})

	req := a.Request(deckPath)
	req.Engine = ""
	_, err := a.Render(context.Background(), req, nil)
	assert.Error(t, err)

	_, err = a.Render(context.Background(), a.Request(filepath.Join(t.TempDir(), "missing.json")), nil)
	assert.Error(t, err)
}

func TestFormOptions(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	a, _ := newTestApp(t, &toolRunner{})

	opts := a.FormOptions(context.Background())
	assert.Equal(t, []string{"Arial", "David", "David CLM"}, opts.Families)
	assert.Equal(t, "Arial", opts.DefaultFont)
	assert.NotNil(t, opts.Store)
	assert.NotNil(t, opts.Run)
}

func TestCacheCommands(t *testing.T) {
	a, deckPath := newTestApp(t, &toolRunner{})
	_, err := a.Render(context.Background(), a.Request(deckPath), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, a.CacheStats(&buf))
	assert.Contains(t, buf.String(), "3 renders")
	assert.Contains(t, buf.String(), "hebrew.json")

	buf.Reset()
	require.NoError(t, a.CachePrune(&buf, -time.Hour))
	assert.Contains(t, buf.String(), "removed 3")
}

func TestCacheDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Cache = false
	a, err := New(cfg, log.New(io.Discard), &toolRunner{})
	require.NoError(t, err)
	assert.Nil(t, a.DB())
	assert.Error(t, a.CacheStats(io.Discard))
	assert.Error(t, a.CachePrune(io.Discard, time.Hour))
}

func TestWatch(t *testing.T) {
	a, deckPath := newTestApp(t, &toolRunner{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runs := make(chan error, 4)
	done := make(chan error, 1)
	go func() { done <- a.Watch(ctx, a.Request(deckPath), func(err error) { runs <- err }) }()

	select {
	case err := <-runs:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("initial run did not happen")
	}

	// Give the watcher time to start its event loop.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(deckPath, []byte(deckJSON), 0644))

	select {
	case err := <-runs:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("change did not trigger a run")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
